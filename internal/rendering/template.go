package rendering

import (
	"bytes"
	"embed"
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"

	"github.com/jonathan/cv-builder/internal/types"
)

//go:embed templates/*.html
var templateFS embed.FS

// Placeholders shown for blank fields in editable mode.
const (
	NamePlaceholder    = "Your Name"
	SummaryPlaceholder = "Click to add a profile summary"
)

// TemplateID names one of the built-in templates.
type TemplateID string

// Built-in templates
const (
	Minimal TemplateID = "minimal"
	Modern  TemplateID = "modern"
	Classic TemplateID = "classic"
)

// DefaultTemplate is used for any unrecognized id.
const DefaultTemplate = Minimal

// Options controls a single render.
type Options struct {
	// Editable marks text regions contenteditable and shows placeholders.
	Editable bool
}

// Template renders a record in one visual style.
type Template interface {
	ID() TemplateID
	Name() string
	// Separator joins skill lists for display and splits them back on inline edit.
	Separator() string
	// Order lists the sections in render order.
	Order() []types.SectionKey
	DefaultHeading(key types.SectionKey) string
	// Heading returns the record's override for key, or the default label.
	Heading(rec types.Record, key types.SectionKey) string
	Render(w io.Writer, rec types.Record, opts Options) error
}

type variant struct {
	id       TemplateID
	name     string
	sep      string
	order    []types.SectionKey
	headings map[types.SectionKey]string
	tmpl     *template.Template
}

var variants = []*variant{
	{
		id:   Minimal,
		name: "Minimal",
		sep:  ", ",
		order: []types.SectionKey{
			types.SectionProfile,
			types.SectionExperience,
			types.SectionEducation,
			types.SectionSkills,
			types.SectionProjects,
			types.SectionCertifications,
			types.SectionLanguages,
			types.SectionOrganizations,
			types.SectionReferences,
		},
		headings: map[types.SectionKey]string{
			types.SectionProfile:        "PROFILE",
			types.SectionExperience:     "EXPERIENCE",
			types.SectionEducation:      "EDUCATION",
			types.SectionSkills:         "SKILLS",
			types.SectionProjects:       "PROJECTS",
			types.SectionCertifications: "CERTIFICATIONS",
			types.SectionLanguages:      "LANGUAGES",
			types.SectionOrganizations:  "ACTIVITIES",
			types.SectionReferences:     "REFERENCES",
		},
	},
	{
		id:   Modern,
		name: "Modern",
		sep:  " | ",
		order: []types.SectionKey{
			types.SectionProfile,
			types.SectionExperience,
			types.SectionEducation,
			types.SectionProjects,
			types.SectionSkills,
			types.SectionCertifications,
			types.SectionLanguages,
			types.SectionOrganizations,
			types.SectionReferences,
		},
		headings: map[types.SectionKey]string{
			types.SectionProfile:        "Profile",
			types.SectionExperience:     "Experience",
			types.SectionEducation:      "Education",
			types.SectionSkills:         "Skills",
			types.SectionProjects:       "Projects",
			types.SectionCertifications: "Certifications",
			types.SectionLanguages:      "Languages",
			types.SectionOrganizations:  "Activities",
			types.SectionReferences:     "References",
		},
	},
	{
		id:   Classic,
		name: "Classic",
		sep:  " • ",
		order: []types.SectionKey{
			types.SectionProfile,
			types.SectionExperience,
			types.SectionEducation,
			types.SectionSkills,
			types.SectionProjects,
			types.SectionCertifications,
			types.SectionLanguages,
			types.SectionOrganizations,
			types.SectionReferences,
		},
		headings: map[types.SectionKey]string{
			types.SectionProfile:        "Profile",
			types.SectionExperience:     "Professional Experience",
			types.SectionEducation:      "Education",
			types.SectionSkills:         "Skills & Competencies",
			types.SectionProjects:       "Notable Projects",
			types.SectionCertifications: "Certifications",
			types.SectionLanguages:      "Languages",
			types.SectionOrganizations:  "Professional Activities",
			types.SectionReferences:     "References",
		},
	},
}

func init() {
	for _, v := range variants {
		v.tmpl = template.Must(parseVariant(v.id))
	}
}

// parseVariant parses the shared document skeleton plus the variant's section bodies
func parseVariant(id TemplateID) (*template.Template, error) {
	tmpl, err := template.New(string(id)).Funcs(funcs).ParseFS(templateFS,
		"templates/document.html",
		"templates/"+string(id)+".html",
	)
	if err != nil {
		return nil, &TemplateError{Template: id, Message: "failed to parse", Cause: err}
	}
	return tmpl, nil
}

// Templates returns every built-in template in selector order.
func Templates() []Template {
	out := make([]Template, len(variants))
	for i, v := range variants {
		out[i] = v
	}
	return out
}

// ParseTemplateID reports whether s names a built-in template.
func ParseTemplateID(s string) (TemplateID, bool) {
	for _, v := range variants {
		if string(v.id) == s {
			return v.id, true
		}
	}
	return "", false
}

// Lookup returns the template named id, falling back to minimal.
func Lookup(id string) Template {
	for _, v := range variants {
		if string(v.id) == id {
			return v
		}
	}
	return variants[0]
}

func (v *variant) ID() TemplateID { return v.id }

func (v *variant) Name() string { return v.name }

func (v *variant) Separator() string { return v.sep }

func (v *variant) Order() []types.SectionKey {
	return append([]types.SectionKey{}, v.order...)
}

func (v *variant) DefaultHeading(key types.SectionKey) string {
	return v.headings[key]
}

func (v *variant) Heading(rec types.Record, key types.SectionKey) string {
	if title := strings.TrimSpace(rec.SectionHeadings[key]); title != "" {
		return title
	}
	return v.DefaultHeading(key)
}

func (v *variant) Render(w io.Writer, rec types.Record, opts Options) error {
	rec = rec.Clone()
	rec.Normalize()

	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, "document", v.view(rec, opts)); err != nil {
		return &TemplateError{Template: v.id, Message: "failed to execute", Cause: err}
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// RenderString renders into a string.
func RenderString(t Template, rec types.Record, opts Options) (string, error) {
	var sb strings.Builder
	if err := t.Render(&sb, rec, opts); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// documentView is the data the document templates execute against
type documentView struct {
	Template  TemplateID
	Editable  bool
	Separator string
	Personal  types.PersonalInfo
	Name      string
	Sections  []sectionView
}

// sectionView is one rendered section
type sectionView struct {
	Key      types.SectionKey
	Heading  string
	Editable bool
	Summary  string
	Record   *types.Record
	Hard     string
	Soft     string
}

func (v *variant) view(rec types.Record, opts Options) documentView {
	doc := documentView{
		Template:  v.id,
		Editable:  opts.Editable,
		Separator: v.sep,
		Personal:  rec.PersonalInfo,
		Name:      rec.PersonalInfo.FullName,
	}
	if doc.Name == "" && opts.Editable {
		doc.Name = NamePlaceholder
	}

	for _, key := range v.order {
		if rec.IsEmpty(key) && !(key == types.SectionProfile && opts.Editable) {
			continue
		}
		sv := sectionView{
			Key:      key,
			Heading:  v.Heading(rec, key),
			Editable: opts.Editable,
			Record:   &rec,
		}
		switch key {
		case types.SectionProfile:
			sv.Summary = rec.ProfileSummary
			if sv.Summary == "" {
				sv.Summary = SummaryPlaceholder
			}
		case types.SectionSkills:
			sv.Hard = JoinSkills(rec.HardSkills, v.sep)
			sv.Soft = JoinSkills(rec.SoftSkills, v.sep)
		}
		doc.Sections = append(doc.Sections, sv)
	}
	return doc
}

var funcs = template.FuncMap{
	"edit":  editAttrs,
	"lines": func(s string) []string { return strings.Split(s, "\n") },
}

// editAttrs marks an element as an inline edit target. The attributes mirror
// the fields of an inline edit request. Outside editable mode it yields nothing.
func editAttrs(editable bool, kind string, section any, id, field string) template.HTMLAttr {
	if !editable {
		return ""
	}
	var b strings.Builder
	b.WriteString(`contenteditable="true" data-edit-kind="`)
	b.WriteString(html.EscapeString(kind))
	b.WriteString(`"`)
	if sec := fmt.Sprint(section); section != nil && sec != "" {
		b.WriteString(` data-edit-section="`)
		b.WriteString(html.EscapeString(sec))
		b.WriteString(`"`)
	}
	if id != "" {
		b.WriteString(` data-edit-id="`)
		b.WriteString(html.EscapeString(id))
		b.WriteString(`"`)
	}
	if field != "" {
		b.WriteString(` data-edit-field="`)
		b.WriteString(html.EscapeString(field))
		b.WriteString(`"`)
	}
	return template.HTMLAttr(b.String())
}
