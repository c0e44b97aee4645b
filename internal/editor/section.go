package editor

import (
	"context"
	"fmt"

	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
)

// entry is satisfied by every repeatable-section item.
type entry interface {
	types.Entry
	comparable
}

// EntryEditor is the string-keyed view of a Section used at the HTTP, CLI
// and inline-edit boundaries.
type EntryEditor interface {
	Name() string
	Fields() []string
	Add(ctx context.Context) (string, error)
	UpdateField(ctx context.Context, id, field, value string) error
	Remove(ctx context.Context, id string) error
}

// Section edits one repeatable list of the record. T is the entry kind and F
// its closed set of field identifiers.
type Section[T entry, F ~string] struct {
	name   string
	store  *store.Store
	ids    *IDGenerator
	list   func(*types.Record) *[]T
	blank  func(id string) T
	with   func(T, F, string) (T, error)
	fields []F
	parse  func(string) (F, error)
}

// Name returns the record key of the section, e.g. "workExperience".
func (s *Section[T, F]) Name() string {
	return s.name
}

// Fields lists the editable field names.
func (s *Section[T, F]) Fields() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = string(f)
	}
	return out
}

// List returns a copy of the current entries.
func (s *Section[T, F]) List() []T {
	rec := s.store.Get()
	return append([]T{}, *s.list(&rec)...)
}

// Add appends a blank entry with a fresh id and returns that id.
func (s *Section[T, F]) Add(ctx context.Context) (string, error) {
	var id string
	_, err := s.store.Modify(ctx, func(r *types.Record) bool {
		items := s.list(r)
		id = s.ids.Next()
		for indexOf(*items, id) >= 0 {
			id = s.ids.Next()
		}
		*items = append(*items, s.blank(id))
		return true
	})
	return id, err
}

// Update replaces one field of the entry with the given id. A missing id is
// a no-op.
func (s *Section[T, F]) Update(ctx context.Context, id string, field F, value string) error {
	var zero T
	if _, err := s.with(zero, field, value); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidValue, err)
	}

	_, err := s.store.Modify(ctx, func(r *types.Record) bool {
		items := *s.list(r)
		i := indexOf(items, id)
		if i < 0 {
			return false
		}
		updated, _ := s.with(items[i], field, value)
		if updated == items[i] {
			return false
		}
		items[i] = updated
		return true
	})
	return err
}

// UpdateField is Update with the field given by name.
func (s *Section[T, F]) UpdateField(ctx context.Context, id, field, value string) error {
	f, err := s.parse(field)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownField, err)
	}
	return s.Update(ctx, id, f, value)
}

// Remove deletes the entry with the given id. Removing a missing id is a no-op.
func (s *Section[T, F]) Remove(ctx context.Context, id string) error {
	_, err := s.store.Modify(ctx, func(r *types.Record) bool {
		items := s.list(r)
		i := indexOf(*items, id)
		if i < 0 {
			return false
		}
		*items = append((*items)[:i:i], (*items)[i+1:]...)
		return true
	})
	return err
}

func indexOf[T types.Entry](items []T, id string) int {
	for i, item := range items {
		if item.EntryID() == id {
			return i
		}
	}
	return -1
}

func pure[T any, F ~string](with func(T, F, string) T) func(T, F, string) (T, error) {
	return func(e T, f F, v string) (T, error) {
		return with(e, f, v), nil
	}
}
