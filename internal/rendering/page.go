package rendering

import (
	"bytes"
	"fmt"
	"html/template"
	"io"

	"github.com/jonathan/cv-builder/internal/types"
)

// PreviewAnchorID is the id of the element wrapping the rendered document.
// Export captures exactly this subtree.
const PreviewAnchorID = "cv-preview"

// Themes
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// PageOptions controls a full-page render.
type PageOptions struct {
	Editable bool
	Theme    string
	Title    string
	// InlineEndpoint, when set in editable mode, is where the page posts
	// inline edits on blur.
	InlineEndpoint string
}

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/page.html"))

type pageView struct {
	Theme          string
	Title          string
	Template       TemplateID
	Document       template.HTML
	InlineEndpoint string
}

// RenderPage renders rec with the template named id inside a standalone HTML
// page. The document sits in the element whose id is PreviewAnchorID.
func RenderPage(w io.Writer, rec types.Record, id string, opts PageOptions) error {
	t := Lookup(id)

	var doc bytes.Buffer
	if err := t.Render(&doc, rec, Options{Editable: opts.Editable}); err != nil {
		return err
	}

	view := pageView{
		Theme:    opts.Theme,
		Title:    opts.Title,
		Template: t.ID(),
		// Already escaped by the document template.
		Document: template.HTML(doc.String()),
	}
	if view.Theme != ThemeDark {
		view.Theme = ThemeLight
	}
	if view.Title == "" {
		view.Title = rec.PersonalInfo.FullName
	}
	if view.Title == "" {
		view.Title = "CV"
	}
	if opts.Editable {
		view.InlineEndpoint = opts.InlineEndpoint
	}

	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, "page", view); err != nil {
		return &TemplateError{Message: "failed to execute page template", Cause: err}
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
