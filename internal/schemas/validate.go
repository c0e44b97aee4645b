// Package schemas provides JSON Schema validation and decoding for persisted and AI-generated CV records.
package schemas

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
	"github.com/xeipuuv/gojsonschema"
)

//go:embed record.schema.json
var recordSchema string

// ErrEmpty is returned when there is no JSON to decode.
var ErrEmpty = errors.New("empty record document")

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema: %s", e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// SchemaText returns the record JSON Schema, e.g. for embedding into prompts.
func SchemaText() string {
	return recordSchema
}

// ValidateRecord validates raw JSON against the record schema.
func ValidateRecord(data []byte) error {
	return ValidateJSONString(recordSchema, string(data))
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}

	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}

// DecodeRecord validates data against the record schema and decodes it into a
// fully defined Record. Sequences missing from data default to empty and
// language levels outside the closed set are coerced, so one stray value
// never costs the rest of the record.
func DecodeRecord(data []byte) (types.Record, error) {
	return decode(data, true)
}

// DecodeRecordStrict is DecodeRecord without coercion: a level outside the
// closed set is reported as a validation error.
func DecodeRecordStrict(data []byte) (types.Record, error) {
	return decode(data, false)
}

func decode(data []byte, coerce bool) (types.Record, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return types.Record{}, ErrEmpty
	}

	if err := ValidateRecord(data); err != nil {
		return types.Record{}, err
	}

	var rec types.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return types.Record{}, fmt.Errorf("failed to decode record: %w", err)
	}
	if coerce {
		rec.CoerceProficiencies()
	}
	rec.Normalize()

	if err := rec.Validate(); err != nil {
		return types.Record{}, fmt.Errorf("invalid record: %w", err)
	}

	return rec, nil
}

// EncodeRecord serializes a record in its persisted form.
func EncodeRecord(rec types.Record) ([]byte, error) {
	rec = rec.Clone()
	rec.Normalize()
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}
	return data, nil
}
