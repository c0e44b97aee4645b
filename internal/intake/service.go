// Package intake turns four free-text answers into a complete CV record by
// asking a text-generation service, then commits it to the record store.
package intake

import (
	"context"
	"encoding/json"
	"log"
	"strings"

	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/prompts"
	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
)

const (
	promptFile = "intake.json"
	promptKey  = "generate-record"
)

// Service generates records. It holds no record state and never touches a store.
type Service struct {
	client  llm.Client
	tier    llm.ModelTier
	ids     func() string
	verbose bool
}

// Option configures a Service.
type Option func(*Service)

// WithTier selects the model tier. The default is llm.TierAdvanced.
func WithTier(tier llm.ModelTier) Option {
	return func(s *Service) { s.tier = tier }
}

// WithIDs sets the source of ids for generated entries.
func WithIDs(next func() string) Option {
	return func(s *Service) { s.ids = next }
}

// WithVerbose enables debug logging.
func WithVerbose(v bool) Option {
	return func(s *Service) { s.verbose = v }
}

// NewService returns a Service calling client. A nil client means no
// credential is configured and every Generate fails with ErrNoCredential.
func NewService(client llm.Client, opts ...Option) *Service {
	s := &Service{
		client: client,
		tier:   llm.TierAdvanced,
		ids:    types.SequentialIDs(1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether a client is configured.
func (s *Service) Available() bool {
	return s.client != nil
}

// Prompt builds the instruction sent for a.
func Prompt(a Answers) (string, error) {
	return prompts.Render(promptFile, promptKey, a.Trimmed().promptData(schemas.SchemaText()))
}

// Generate sends one request and parses the reply into a normalized record
// with ids assigned. The answers' name and email fill blank personal fields.
func (s *Service) Generate(ctx context.Context, a Answers) (types.Record, error) {
	if s.client == nil {
		return types.Record{}, ErrNoCredential
	}
	if err := a.Validate(); err != nil {
		return types.Record{}, err
	}
	a = a.Trimmed()

	prompt, err := Prompt(a)
	if err != nil {
		return types.Record{}, err
	}

	if s.verbose {
		log.Printf("[INTAKE] Requesting record from %s", s.client.GetModel(s.tier))
	}
	text, err := s.client.GenerateJSON(ctx, prompt, s.tier)
	if err != nil {
		log.Printf("[INTAKE] Generation failed: %v", err)
		return types.Record{}, &APICallError{Message: "AI request failed", Cause: err}
	}

	rec, err := ParseResponse(text)
	if err != nil {
		log.Printf("[INTAKE] Unusable response: %v", err)
		return types.Record{}, err
	}

	if rec.PersonalInfo.FullName == "" {
		rec.PersonalInfo.FullName = a.FullName
	}
	if rec.PersonalInfo.Email == "" {
		rec.PersonalInfo.Email = a.Email
	}
	rec.AssignMissingIDs(s.ids)

	if s.verbose {
		log.Printf("[INTAKE] Generated record: %d jobs, %d education, %d skills",
			len(rec.WorkExperience), len(rec.Education), len(rec.HardSkills)+len(rec.SoftSkills))
	}
	return rec, nil
}

// ParseResponse extracts the first JSON object from free-form model output
// and coerces it into a valid record. Ids are not assigned.
func ParseResponse(text string) (types.Record, error) {
	obj := llm.ExtractJSONObject(llm.CleanJSONBlock(text))
	if obj == "" {
		return types.Record{}, ErrNoJSON
	}

	if err := schemas.ValidateRecord([]byte(obj)); err != nil {
		return types.Record{}, &ParseError{Message: "response does not match the record schema", Cause: err}
	}

	var rec types.Record
	if err := json.Unmarshal([]byte(obj), &rec); err != nil {
		return types.Record{}, &ParseError{Message: "failed to decode response", Cause: err}
	}

	rec.HardSkills = cleanSkills(rec.HardSkills)
	rec.SoftSkills = cleanSkills(rec.SoftSkills)
	rec.CoerceProficiencies()
	rec.Normalize()

	if err := rec.Validate(); err != nil {
		return types.Record{}, &ParseError{Message: "generated record is invalid", Cause: err}
	}
	return rec, nil
}

// Commit replaces the whole store content with rec in one update.
func Commit(ctx context.Context, st *store.Store, rec types.Record) error {
	return st.Replace(ctx, rec)
}

func cleanSkills(skills []string) []string {
	out := make([]string, 0, len(skills))
	seen := make(map[string]bool, len(skills))
	for _, s := range skills {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
