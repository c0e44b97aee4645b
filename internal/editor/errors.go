package editor

import "errors"

var (
	// ErrInvalidValue is returned when a value is outside a closed set,
	// e.g. a language proficiency. The record is left unchanged.
	ErrInvalidValue = errors.New("invalid value")

	// ErrUnknownField is returned when a field name does not belong to the entity.
	ErrUnknownField = errors.New("unknown field")

	// ErrUnknownSection is returned for a section or skill group name that does not exist.
	ErrUnknownSection = errors.New("unknown section")
)
