package editor

import (
	"context"
	"slices"
	"strings"

	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
)

// Skill group names as they appear in the record.
const (
	GroupHard = "hardSkills"
	GroupSoft = "softSkills"
)

// SkillList edits one of the flat skill sequences.
type SkillList struct {
	name  string
	store *store.Store
	list  func(*types.Record) *[]string
}

// Name returns the record key of the group.
func (l *SkillList) Name() string {
	return l.name
}

// List returns a copy of the current skills.
func (l *SkillList) List() []string {
	rec := l.store.Get()
	return append([]string{}, *l.list(&rec)...)
}

// Add appends the trimmed candidate unless it is empty or already present
// verbatim. It reports whether the list changed.
func (l *SkillList) Add(ctx context.Context, candidate string) (bool, error) {
	skill := strings.TrimSpace(candidate)
	if skill == "" {
		return false, nil
	}
	return l.store.Modify(ctx, func(r *types.Record) bool {
		items := l.list(r)
		if slices.Contains(*items, skill) {
			return false
		}
		*items = append(*items, skill)
		return true
	})
}

// Remove deletes the first exact match of value. It reports whether the list changed.
func (l *SkillList) Remove(ctx context.Context, value string) (bool, error) {
	return l.store.Modify(ctx, func(r *types.Record) bool {
		items := l.list(r)
		i := slices.Index(*items, value)
		if i < 0 {
			return false
		}
		*items = slices.Delete(*items, i, i+1)
		return true
	})
}

// Replace swaps the whole list. Values are trimmed and blanks and duplicates
// dropped, the same rules Add applies one at a time.
func (l *SkillList) Replace(ctx context.Context, values []string) error {
	next := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(next, v) {
			next = append(next, v)
		}
	}
	_, err := l.store.Modify(ctx, func(r *types.Record) bool {
		items := l.list(r)
		if slices.Equal(*items, next) {
			return false
		}
		*items = next
		return true
	})
	return err
}
