package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/jonathan/cv-builder/internal/editor"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/types"
)

//go:embed templates/*.html
var pageFS embed.FS

var pages = template.Must(template.ParseFS(pageFS, "templates/*.html"))

type templateOption struct {
	ID       string
	Name     string
	Selected bool
}

type sectionForm struct {
	Name   string   `json:"name"`
	Fields []string `json:"fields"`
}

type builderView struct {
	Templates     []templateOption
	Template      string
	Theme         string
	Personal      []string
	Sections      []sectionForm
	SkillGroups   []string
	AIAvailable   bool
	Proficiencies []string
}

func (s *Server) handleLanding(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, "landing.html", nil)
}

func (s *Server) handleBuilder(w http.ResponseWriter, r *http.Request) {
	ws, ok := s.workspace(w, r)
	if !ok {
		return
	}

	current := s.templateParam(r)
	theme := r.URL.Query().Get("theme")
	if theme != rendering.ThemeDark {
		theme = rendering.ThemeLight
	}

	view := builderView{
		Template:    current,
		Theme:       theme,
		SkillGroups: []string{editor.GroupHard, editor.GroupSoft},
		AIAvailable: ws.Intake.Status().Available,
	}
	for _, t := range rendering.Templates() {
		view.Templates = append(view.Templates, templateOption{
			ID:       string(t.ID()),
			Name:     t.Name(),
			Selected: string(t.ID()) == current,
		})
	}
	for _, f := range types.PersonalFields {
		view.Personal = append(view.Personal, string(f))
	}
	for _, sec := range ws.Editor.Sections() {
		view.Sections = append(view.Sections, sectionForm{Name: sec.Name(), Fields: sec.Fields()})
	}
	for _, p := range types.Proficiencies {
		view.Proficiencies = append(view.Proficiencies, string(p))
	}

	s.renderPage(w, "builder.html", view)
}

func (s *Server) renderPage(w http.ResponseWriter, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		s.failure(w, &rendering.TemplateError{Message: "failed to render " + name, Cause: err})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes()) //nolint:errcheck
}
