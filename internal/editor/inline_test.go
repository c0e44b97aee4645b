package editor

import (
	"context"
	"testing"

	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyInline(t *testing.T) {
	ctx := context.Background()
	ed := newTestEditor(t)
	require.NoError(t, ed.Store().Replace(ctx, types.SampleRecord()))

	edits := []InlineEdit{
		{Kind: InlinePersonal, Field: "fullName", Value: "Augusta Ada King"},
		{Kind: InlineSummary, Value: "Poetical scientist."},
		{Kind: InlineEntry, Section: "projects", EntryID: "1", Field: "title", Value: "Note G (revised)"},
		{Kind: InlineSkills, Section: "hardSkills", Template: "classic", Value: "Mathematics • Poetry • Mathematics"},
		{Kind: InlineSkills, Section: "softSkills", Template: "minimal", Value: "Writing, Correspondence"},
		{Kind: InlineHeading, Section: "organizations", Value: "Circles"},
	}
	for _, edit := range edits {
		require.NoError(t, ed.ApplyInline(ctx, edit), edit.Kind)
	}

	rec := ed.Store().Get()
	assert.Equal(t, "Augusta Ada King", rec.PersonalInfo.FullName)
	assert.Equal(t, "Poetical scientist.", rec.ProfileSummary)
	assert.Equal(t, "Note G (revised)", rec.Projects[0].Title)
	assert.Equal(t, []string{"Mathematics", "Poetry"}, rec.HardSkills)
	assert.Equal(t, []string{"Writing", "Correspondence"}, rec.SoftSkills)
	assert.Equal(t, "Circles", rec.SectionHeadings[types.SectionOrganizations])
}

func TestApplyInline_UnknownTemplateUsesMinimalSeparator(t *testing.T) {
	ctx := context.Background()
	ed := newTestEditor(t)

	require.NoError(t, ed.ApplyInline(ctx, InlineEdit{Kind: InlineSkills, Section: "hardSkills", Value: "Go, SQL"}))
	assert.Equal(t, []string{"Go", "SQL"}, ed.HardSkills.List())
}

func TestApplyInline_Errors(t *testing.T) {
	ctx := context.Background()
	ed := newTestEditor(t)
	before := ed.Store().Get()

	tests := []struct {
		name string
		edit InlineEdit
		want error
	}{
		{name: "unknown kind", edit: InlineEdit{Kind: "photo"}, want: ErrUnknownField},
		{name: "unknown personal field", edit: InlineEdit{Kind: InlinePersonal, Field: "age"}, want: ErrUnknownField},
		{name: "unknown section", edit: InlineEdit{Kind: InlineEntry, Section: "hobbies"}, want: ErrUnknownSection},
		{name: "unknown skill group", edit: InlineEdit{Kind: InlineSkills, Section: "skills"}, want: ErrUnknownSection},
		{name: "unknown heading", edit: InlineEdit{Kind: InlineHeading, Section: "hobbies"}, want: ErrUnknownSection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ed.ApplyInline(ctx, tt.edit), tt.want)
		})
	}
	assert.Equal(t, before, ed.Store().Get())
}
