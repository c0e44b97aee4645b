// Package editor implements the per-section editing operations over a
// record store. Every operation is a single atomic store transition.
package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
)

// Editor groups every section editor over one store.
type Editor struct {
	store *store.Store

	Education      *Section[types.Education, types.EducationField]
	WorkExperience *Section[types.WorkExperience, types.WorkExperienceField]
	Certifications *Section[types.Certification, types.CertificationField]
	Projects       *Section[types.Project, types.ProjectField]
	Organizations  *Section[types.Organization, types.OrganizationField]
	Languages      *Section[types.Language, types.LanguageField]
	References     *Section[types.Reference, types.ReferenceField]

	HardSkills *SkillList
	SoftSkills *SkillList
}

// New wires editors to s. A nil ids uses a wall-clock generator.
func New(s *store.Store, ids *IDGenerator) *Editor {
	if ids == nil {
		ids = NewIDGenerator(nil)
	}
	return &Editor{
		store: s,
		Education: &Section[types.Education, types.EducationField]{
			name:   "education",
			store:  s,
			ids:    ids,
			list:   func(r *types.Record) *[]types.Education { return &r.Education },
			blank:  func(id string) types.Education { return types.Education{ID: id} },
			with:   pure(types.Education.With),
			fields: types.EducationFields,
			parse:  types.ParseEducationField,
		},
		WorkExperience: &Section[types.WorkExperience, types.WorkExperienceField]{
			name:   "workExperience",
			store:  s,
			ids:    ids,
			list:   func(r *types.Record) *[]types.WorkExperience { return &r.WorkExperience },
			blank:  func(id string) types.WorkExperience { return types.WorkExperience{ID: id} },
			with:   pure(types.WorkExperience.With),
			fields: types.WorkExperienceFields,
			parse:  types.ParseWorkExperienceField,
		},
		Certifications: &Section[types.Certification, types.CertificationField]{
			name:   "certifications",
			store:  s,
			ids:    ids,
			list:   func(r *types.Record) *[]types.Certification { return &r.Certifications },
			blank:  func(id string) types.Certification { return types.Certification{ID: id} },
			with:   pure(types.Certification.With),
			fields: types.CertificationFields,
			parse:  types.ParseCertificationField,
		},
		Projects: &Section[types.Project, types.ProjectField]{
			name:   "projects",
			store:  s,
			ids:    ids,
			list:   func(r *types.Record) *[]types.Project { return &r.Projects },
			blank:  func(id string) types.Project { return types.Project{ID: id} },
			with:   pure(types.Project.With),
			fields: types.ProjectFields,
			parse:  types.ParseProjectField,
		},
		Organizations: &Section[types.Organization, types.OrganizationField]{
			name:   "organizations",
			store:  s,
			ids:    ids,
			list:   func(r *types.Record) *[]types.Organization { return &r.Organizations },
			blank:  func(id string) types.Organization { return types.Organization{ID: id} },
			with:   pure(types.Organization.With),
			fields: types.OrganizationFields,
			parse:  types.ParseOrganizationField,
		},
		Languages: &Section[types.Language, types.LanguageField]{
			name:  "languages",
			store: s,
			ids:   ids,
			list:  func(r *types.Record) *[]types.Language { return &r.Languages },
			blank: func(id string) types.Language {
				return types.Language{ID: id, Proficiency: types.ProficiencyBasic}
			},
			with:   types.Language.With,
			fields: types.LanguageFields,
			parse:  types.ParseLanguageField,
		},
		References: &Section[types.Reference, types.ReferenceField]{
			name:   "references",
			store:  s,
			ids:    ids,
			list:   func(r *types.Record) *[]types.Reference { return &r.References },
			blank:  func(id string) types.Reference { return types.Reference{ID: id} },
			with:   pure(types.Reference.With),
			fields: types.ReferenceFields,
			parse:  types.ParseReferenceField,
		},
		HardSkills: &SkillList{
			name:  GroupHard,
			store: s,
			list:  func(r *types.Record) *[]string { return &r.HardSkills },
		},
		SoftSkills: &SkillList{
			name:  GroupSoft,
			store: s,
			list:  func(r *types.Record) *[]string { return &r.SoftSkills },
		},
	}
}

// Store returns the store the editors write to.
func (e *Editor) Store() *store.Store {
	return e.store
}

// Sections lists the repeatable-section editors in record order.
func (e *Editor) Sections() []EntryEditor {
	return []EntryEditor{
		e.Education,
		e.WorkExperience,
		e.Certifications,
		e.Projects,
		e.Organizations,
		e.Languages,
		e.References,
	}
}

// Entries resolves a repeatable section by its record key.
func (e *Editor) Entries(name string) (EntryEditor, error) {
	for _, s := range e.Sections() {
		if s.Name() == name {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
}

// Skills resolves a skill group by its record key.
func (e *Editor) Skills(name string) (*SkillList, error) {
	switch name {
	case GroupHard:
		return e.HardSkills, nil
	case GroupSoft:
		return e.SoftSkills, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownSection, name)
}

// SetPersonal overwrites one personal info field.
func (e *Editor) SetPersonal(ctx context.Context, field types.PersonalField, value string) error {
	_, err := e.store.Modify(ctx, func(r *types.Record) bool {
		next := r.PersonalInfo.With(field, value)
		if next == r.PersonalInfo {
			return false
		}
		r.PersonalInfo = next
		return true
	})
	return err
}

// SetPersonalField is SetPersonal with the field given by name.
func (e *Editor) SetPersonalField(ctx context.Context, field, value string) error {
	f, err := types.ParsePersonalField(field)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownField, err)
	}
	return e.SetPersonal(ctx, f, value)
}

// SetSummary replaces the profile summary.
func (e *Editor) SetSummary(ctx context.Context, value string) error {
	_, err := e.store.Modify(ctx, func(r *types.Record) bool {
		if r.ProfileSummary == value {
			return false
		}
		r.ProfileSummary = value
		return true
	})
	return err
}

// SetHeading overrides the display title of a section. A blank title removes
// the override so the template default applies again.
func (e *Editor) SetHeading(ctx context.Context, key types.SectionKey, title string) error {
	title = strings.TrimSpace(title)
	_, err := e.store.Modify(ctx, func(r *types.Record) bool {
		current, ok := r.SectionHeadings[key]
		if title == "" {
			if !ok {
				return false
			}
			delete(r.SectionHeadings, key)
			return true
		}
		if ok && current == title {
			return false
		}
		r.SectionHeadings[key] = title
		return true
	})
	return err
}

// SetHeadingField is SetHeading with the section given by name.
func (e *Editor) SetHeadingField(ctx context.Context, section, title string) error {
	key, err := types.ParseSectionKey(section)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnknownSection, err)
	}
	return e.SetHeading(ctx, key, title)
}
