// Package export turns the rendered document region into a downloadable PDF.
package export

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/types"
)

// DefaultFileName is used when the record has no name.
const DefaultFileName = "CV.pdf"

// PageSettings describes the printed page in inches.
type PageSettings struct {
	WidthIn   float64
	HeightIn  float64
	MarginIn  float64
	Landscape bool
}

// A4Portrait is the only page format exports use: A4, portrait, half-inch margins.
func A4Portrait() PageSettings {
	return PageSettings{WidthIn: 8.27, HeightIn: 11.69, MarginIn: 0.5}
}

// Printer converts a standalone HTML page into PDF bytes.
type Printer interface {
	PrintPDF(ctx context.Context, html string, settings PageSettings) ([]byte, error)
}

// Document is a finished export.
type Document struct {
	FileName string
	Data     []byte
	Pages    int
}

// Error represents an export failure
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("export error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Exporter prints the anchored region of a rendered page.
type Exporter struct {
	printer  Printer
	settings PageSettings
	verbose  bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithVerbose enables debug logging.
func WithVerbose(v bool) Option {
	return func(e *Exporter) { e.verbose = v }
}

// NewExporter returns an exporter printing A4 portrait pages with p.
func NewExporter(p Printer, opts ...Option) *Exporter {
	e := &Exporter{printer: p, settings: A4Portrait()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export prints the subtree of renderedHTML whose id is anchorID. When the
// anchor is absent the export is skipped: it returns nil, nil and the printer
// is never called.
func (e *Exporter) Export(ctx context.Context, rec types.Record, renderedHTML, anchorID string) (*Document, error) {
	page, ok, err := standalonePage(renderedHTML, anchorID)
	if err != nil {
		return nil, &Error{Message: "failed to parse rendered page", Cause: err}
	}
	if !ok {
		if e.verbose {
			log.Printf("[EXPORT] Anchor #%s not found, skipping export", anchorID)
		}
		return nil, nil
	}

	data, err := e.printer.PrintPDF(ctx, page, e.settings)
	if err != nil {
		return nil, &Error{Message: "failed to print PDF", Cause: err}
	}

	doc := &Document{
		FileName: FileName(rec.PersonalInfo.FullName),
		Data:     data,
		Pages:    CountPages(data),
	}
	if e.verbose {
		log.Printf("[EXPORT] Exported %s: %d bytes, %d page(s)", doc.FileName, len(doc.Data), doc.Pages)
	}
	return doc, nil
}

// ExportRecord renders rec read-only with the named template and exports the preview region.
func (e *Exporter) ExportRecord(ctx context.Context, rec types.Record, templateID string) (*Document, error) {
	var buf bytes.Buffer
	if err := rendering.RenderPage(&buf, rec, templateID, rendering.PageOptions{}); err != nil {
		return nil, &Error{Message: "failed to render page", Cause: err}
	}
	return e.Export(ctx, rec, buf.String(), rendering.PreviewAnchorID)
}

// FileName derives the download name from the record's full name.
func FileName(fullName string) string {
	name := strings.TrimSpace(fullName)
	if name == "" {
		return DefaultFileName
	}
	name = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\':
			return '-'
		case r < 0x20 || r == 0x7f:
			return -1
		}
		return r
	}, name)
	return name + ".pdf"
}

// standalonePage keeps the page head and the anchor subtree, minus scripts and
// editing affordances.
func standalonePage(renderedHTML, anchorID string) (string, bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(renderedHTML))
	if err != nil {
		return "", false, err
	}

	anchor := doc.Find("[id]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		return id == anchorID
	}).First()
	if anchor.Length() == 0 {
		return "", false, nil
	}

	doc.Find("script").Remove()
	anchor.Find("[contenteditable]").RemoveAttr("contenteditable")

	head, err := doc.Find("head").Html()
	if err != nil {
		return "", false, err
	}
	body, err := goquery.OuterHtml(anchor)
	if err != nil {
		return "", false, err
	}

	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>")
	sb.WriteString(head)
	sb.WriteString("</head>\n<body>")
	sb.WriteString(body)
	sb.WriteString("</body>\n</html>\n")
	return sb.String(), true, nil
}
