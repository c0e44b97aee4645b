package editor

import (
	"context"
	"fmt"

	"github.com/jonathan/cv-builder/internal/rendering"
)

// InlineKind says which editor an inline edit is routed to.
type InlineKind string

// Inline edit kinds
const (
	InlinePersonal InlineKind = "personal"
	InlineSummary  InlineKind = "summary"
	InlineEntry    InlineKind = "entry"
	InlineSkills   InlineKind = "skills"
	InlineHeading  InlineKind = "heading"
)

// InlineEdit is a write-back from an edited region of a rendered template.
// Its fields mirror the data-edit-* attributes the renderer emits.
type InlineEdit struct {
	Kind     InlineKind `json:"kind"`
	Section  string     `json:"section,omitempty"`
	EntryID  string     `json:"entryId,omitempty"`
	Field    string     `json:"field,omitempty"`
	Value    string     `json:"value"`
	Template string     `json:"template,omitempty"`
}

// ApplyInline routes edit to the matching editor. Skills edits are split
// back into a list with the separator of the template that rendered them.
func (e *Editor) ApplyInline(ctx context.Context, edit InlineEdit) error {
	switch edit.Kind {
	case InlinePersonal:
		return e.SetPersonalField(ctx, edit.Field, edit.Value)
	case InlineSummary:
		return e.SetSummary(ctx, edit.Value)
	case InlineEntry:
		section, err := e.Entries(edit.Section)
		if err != nil {
			return err
		}
		return section.UpdateField(ctx, edit.EntryID, edit.Field, edit.Value)
	case InlineSkills:
		list, err := e.Skills(edit.Section)
		if err != nil {
			return err
		}
		sep := rendering.Lookup(edit.Template).Separator()
		return list.Replace(ctx, rendering.SplitSkills(edit.Value, sep))
	case InlineHeading:
		return e.SetHeadingField(ctx, edit.Section, edit.Value)
	default:
		return fmt.Errorf("%w: inline edit kind %q", ErrUnknownField, edit.Kind)
	}
}
