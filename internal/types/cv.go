// Package types provides type definitions for the CV record shared by the store, editors, renderer and AI intake.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Record is the complete CV document. Exactly one instance is live per session.
type Record struct {
	PersonalInfo    PersonalInfo          `json:"personalInfo"`
	ProfileSummary  string                `json:"profileSummary"`
	Education       []Education           `json:"education" validate:"dive"`
	WorkExperience  []WorkExperience      `json:"workExperience" validate:"dive"`
	HardSkills      []string              `json:"hardSkills"`
	SoftSkills      []string              `json:"softSkills"`
	Certifications  []Certification       `json:"certifications" validate:"dive"`
	Projects        []Project             `json:"projects" validate:"dive"`
	Organizations   []Organization        `json:"organizations" validate:"dive"`
	Languages       []Language            `json:"languages" validate:"dive"`
	References      []Reference           `json:"references" validate:"dive"`
	SectionHeadings map[SectionKey]string `json:"sectionHeadings"`
}

// PersonalInfo holds the header contact fields. No field is required.
type PersonalInfo struct {
	FullName string `json:"fullName"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
}

// Entry is implemented by every item of a repeatable section.
type Entry interface {
	EntryID() string
}

// Education is one education entry
type Education struct {
	ID          string `json:"id"`
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	StartYear   string `json:"startYear"`
	EndYear     string `json:"endYear"`
	GPA         string `json:"gpa"`
}

// WorkExperience is one job entry
type WorkExperience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

// Certification is one certification entry
type Certification struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

// Project is one project entry
type Project struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Role         string `json:"role"`
	Achievements string `json:"achievements"`
	DemoLink     string `json:"demoLink"`
}

// Organization is one organization / activity entry
type Organization struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	Activities string `json:"activities"`
}

// Language is one spoken language entry
type Language struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Proficiency Proficiency `json:"proficiency" validate:"oneof=Basic Intermediate Advanced Native"`
}

// Reference is one professional reference entry
type Reference struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Contact  string `json:"contact"`
}

// EntryID implements Entry.
func (e Education) EntryID() string { return e.ID }

// EntryID implements Entry.
func (e WorkExperience) EntryID() string { return e.ID }

// EntryID implements Entry.
func (e Certification) EntryID() string { return e.ID }

// EntryID implements Entry.
func (e Project) EntryID() string { return e.ID }

// EntryID implements Entry.
func (e Organization) EntryID() string { return e.ID }

// EntryID implements Entry.
func (e Language) EntryID() string { return e.ID }

// EntryID implements Entry.
func (e Reference) EntryID() string { return e.ID }

// Proficiency is the closed set of language proficiency levels
type Proficiency string

// Proficiency levels
const (
	ProficiencyBasic        Proficiency = "Basic"
	ProficiencyIntermediate Proficiency = "Intermediate"
	ProficiencyAdvanced     Proficiency = "Advanced"
	ProficiencyNative       Proficiency = "Native"
)

// Proficiencies lists the levels in display order.
var Proficiencies = []Proficiency{ProficiencyBasic, ProficiencyIntermediate, ProficiencyAdvanced, ProficiencyNative}

// ParseProficiency returns the level matching s exactly.
func ParseProficiency(s string) (Proficiency, error) {
	for _, p := range Proficiencies {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown proficiency %q", s)
}

var proficiencySynonyms = map[string]Proficiency{
	"native":         ProficiencyNative,
	"mother tongue":  ProficiencyNative,
	"bilingual":      ProficiencyNative,
	"fluent":         ProficiencyAdvanced,
	"proficient":     ProficiencyAdvanced,
	"advanced":       ProficiencyAdvanced,
	"intermediate":   ProficiencyIntermediate,
	"conversational": ProficiencyIntermediate,
	"basic":          ProficiencyBasic,
	"beginner":       ProficiencyBasic,
	"elementary":     ProficiencyBasic,
}

// CoerceProficiency maps free text onto the closed set. Anything unrecognized is Basic.
func CoerceProficiency(s string) Proficiency {
	if p, ok := proficiencySynonyms[strings.ToLower(strings.TrimSpace(s))]; ok {
		return p
	}
	return ProficiencyBasic
}

// CoerceProficiencies replaces every language level outside the closed set
// with its closest member, leaving valid levels untouched.
func (r *Record) CoerceProficiencies() {
	for i := range r.Languages {
		if _, err := ParseProficiency(string(r.Languages[i].Proficiency)); err != nil {
			r.Languages[i].Proficiency = CoerceProficiency(string(r.Languages[i].Proficiency))
		}
	}
}

// SectionKey names one of the nine rendered sections. It is the key of Record.SectionHeadings.
type SectionKey string

// Rendered sections
const (
	SectionProfile        SectionKey = "profileSummary"
	SectionExperience     SectionKey = "workExperience"
	SectionEducation      SectionKey = "education"
	SectionSkills         SectionKey = "skills"
	SectionProjects       SectionKey = "projects"
	SectionCertifications SectionKey = "certifications"
	SectionLanguages      SectionKey = "languages"
	SectionOrganizations  SectionKey = "organizations"
	SectionReferences     SectionKey = "references"
)

// SectionKeys lists every rendered section.
var SectionKeys = []SectionKey{
	SectionProfile,
	SectionExperience,
	SectionEducation,
	SectionSkills,
	SectionProjects,
	SectionCertifications,
	SectionLanguages,
	SectionOrganizations,
	SectionReferences,
}

// ParseSectionKey validates a section name coming from outside the process.
func ParseSectionKey(s string) (SectionKey, error) {
	for _, k := range SectionKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown section %q", s)
}

// DefaultRecord returns the all-empty record used when nothing is persisted.
func DefaultRecord() Record {
	var r Record
	r.Normalize()
	return r
}

// Normalize replaces every nil sequence or map with an empty one and defaults
// blank proficiencies, so no top-level field is ever undefined.
func (r *Record) Normalize() {
	if r.Education == nil {
		r.Education = []Education{}
	}
	if r.WorkExperience == nil {
		r.WorkExperience = []WorkExperience{}
	}
	if r.HardSkills == nil {
		r.HardSkills = []string{}
	}
	if r.SoftSkills == nil {
		r.SoftSkills = []string{}
	}
	if r.Certifications == nil {
		r.Certifications = []Certification{}
	}
	if r.Projects == nil {
		r.Projects = []Project{}
	}
	if r.Organizations == nil {
		r.Organizations = []Organization{}
	}
	if r.Languages == nil {
		r.Languages = []Language{}
	}
	for i := range r.Languages {
		if r.Languages[i].Proficiency == "" {
			r.Languages[i].Proficiency = ProficiencyBasic
		}
	}
	if r.References == nil {
		r.References = []Reference{}
	}
	if r.SectionHeadings == nil {
		r.SectionHeadings = map[SectionKey]string{}
	}
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	out := r
	out.Education = append([]Education{}, r.Education...)
	out.WorkExperience = append([]WorkExperience{}, r.WorkExperience...)
	out.HardSkills = append([]string{}, r.HardSkills...)
	out.SoftSkills = append([]string{}, r.SoftSkills...)
	out.Certifications = append([]Certification{}, r.Certifications...)
	out.Projects = append([]Project{}, r.Projects...)
	out.Organizations = append([]Organization{}, r.Organizations...)
	out.Languages = append([]Language{}, r.Languages...)
	out.References = append([]Reference{}, r.References...)
	out.SectionHeadings = make(map[SectionKey]string, len(r.SectionHeadings))
	for k, v := range r.SectionHeadings {
		out.SectionHeadings[k] = v
	}
	return out
}

// Validate checks the closed enumerations of the record.
func (r *Record) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// IsEmpty reports whether a section has no content to render.
func (r *Record) IsEmpty(key SectionKey) bool {
	switch key {
	case SectionProfile:
		return r.ProfileSummary == ""
	case SectionExperience:
		return len(r.WorkExperience) == 0
	case SectionEducation:
		return len(r.Education) == 0
	case SectionSkills:
		return len(r.HardSkills) == 0 && len(r.SoftSkills) == 0
	case SectionProjects:
		return len(r.Projects) == 0
	case SectionCertifications:
		return len(r.Certifications) == 0
	case SectionLanguages:
		return len(r.Languages) == 0
	case SectionOrganizations:
		return len(r.Organizations) == 0
	case SectionReferences:
		return len(r.References) == 0
	default:
		return true
	}
}

// AssignMissingIDs gives every entry without an id a fresh one from next and
// re-keys any id already used earlier in the same sequence.
func (r *Record) AssignMissingIDs(next func() string) {
	r.Education = assignIDs(r.Education, next, func(e *Education) *string { return &e.ID })
	r.WorkExperience = assignIDs(r.WorkExperience, next, func(e *WorkExperience) *string { return &e.ID })
	r.Certifications = assignIDs(r.Certifications, next, func(e *Certification) *string { return &e.ID })
	r.Projects = assignIDs(r.Projects, next, func(e *Project) *string { return &e.ID })
	r.Organizations = assignIDs(r.Organizations, next, func(e *Organization) *string { return &e.ID })
	r.Languages = assignIDs(r.Languages, next, func(e *Language) *string { return &e.ID })
	r.References = assignIDs(r.References, next, func(e *Reference) *string { return &e.ID })
}

func assignIDs[T any](items []T, next func() string, id func(*T) *string) []T {
	seen := make(map[string]bool, len(items))
	for i := range items {
		p := id(&items[i])
		for *p == "" || seen[*p] {
			*p = next()
		}
		seen[*p] = true
	}
	return items
}

// SequentialIDs returns an id source counting up from start. Useful where
// timestamps are not wanted, e.g. for fixtures.
func SequentialIDs(start int) func() string {
	n := start
	return func() string {
		id := strconv.Itoa(n)
		n++
		return id
	}
}
