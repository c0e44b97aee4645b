package export

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonathan/cv-builder/internal/editor"
	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePrinter records what it was asked to print
type fakePrinter struct {
	calls    int
	html     string
	settings PageSettings
	err      error
}

func (f *fakePrinter) PrintPDF(_ context.Context, html string, settings PageSettings) ([]byte, error) {
	f.calls++
	f.html = html
	f.settings = settings
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func renderedPage(t *testing.T, rec types.Record, editable bool) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, rendering.RenderPage(&buf, rec, "classic", rendering.PageOptions{
		Editable:       editable,
		InlineEndpoint: "/api/inline",
	}))
	return buf.String()
}

func TestFileName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Ada Lovelace", "Ada Lovelace.pdf"},
		{"  Ada  ", "Ada.pdf"},
		{"", "CV.pdf"},
		{"   ", "CV.pdf"},
		{"AC/DC", "AC-DC.pdf"},
		{`a\b`, "a-b.pdf"},
		{"tab\there", "tabhere.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.input))
		})
	}
}

func TestA4Portrait(t *testing.T) {
	s := A4Portrait()
	assert.InDelta(t, 8.27, s.WidthIn, 0.001)
	assert.InDelta(t, 11.69, s.HeightIn, 0.001)
	assert.InDelta(t, 0.5, s.MarginIn, 0.001)
	assert.False(t, s.Landscape)
}

func TestExport_NameFromRecord(t *testing.T) {
	ctx := context.Background()
	s, err := store.New(ctx, nil)
	require.NoError(t, err)
	ed := editor.New(s, nil)
	require.NoError(t, ed.SetPersonal(ctx, types.PersonalFullName, "Ada Lovelace"))

	printer := &fakePrinter{}
	doc, err := NewExporter(printer).ExportRecord(ctx, s.Get(), "minimal")
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Contains(t, doc.FileName, "Ada Lovelace")
	assert.Equal(t, []byte("%PDF-1.4 fake"), doc.Data)
	assert.Equal(t, 0, doc.Pages)
	assert.Equal(t, A4Portrait(), printer.settings)
	assert.Equal(t, 1, printer.calls)
}

func TestExport_MissingAnchorIsSkipped(t *testing.T) {
	printer := &fakePrinter{}
	exp := NewExporter(printer, WithVerbose(true))

	doc, err := exp.Export(context.Background(), types.SampleRecord(), renderedPage(t, types.SampleRecord(), false), "no-such-anchor")
	assert.NoError(t, err)
	assert.Nil(t, doc)
	assert.Equal(t, 0, printer.calls)

	doc, err = exp.Export(context.Background(), types.SampleRecord(), "", rendering.PreviewAnchorID)
	assert.NoError(t, err)
	assert.Nil(t, doc)
	assert.Equal(t, 0, printer.calls)
}

func TestExport_PrintsOnlyTheAnchor(t *testing.T) {
	printer := &fakePrinter{}
	rendered := `<html><head><style>.x{}</style><script>alert(1)</script></head>
<body><nav>Template selector</nav><div id="cv-preview"><h1 contenteditable="true">Ada</h1></div><footer>Export button</footer></body></html>`

	doc, err := NewExporter(printer).Export(context.Background(), types.DefaultRecord(), rendered, "cv-preview")
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, DefaultFileName, doc.FileName)
	assert.Contains(t, printer.html, `<div id="cv-preview">`)
	assert.Contains(t, printer.html, "<style>.x{}</style>")
	assert.Contains(t, printer.html, "<h1>Ada</h1>")
	assert.NotContains(t, printer.html, "Template selector")
	assert.NotContains(t, printer.html, "Export button")
	assert.NotContains(t, printer.html, "<script")
}

func TestExport_EditablePageIsCleaned(t *testing.T) {
	printer := &fakePrinter{}

	_, err := NewExporter(printer).Export(context.Background(), types.SampleRecord(), renderedPage(t, types.SampleRecord(), true), rendering.PreviewAnchorID)
	require.NoError(t, err)

	assert.NotContains(t, printer.html, "contenteditable")
	assert.NotContains(t, printer.html, "<script")
	assert.Contains(t, printer.html, "Ada Lovelace")
	assert.True(t, strings.HasPrefix(printer.html, "<!DOCTYPE html>"))
}

func TestExport_PrinterFailure(t *testing.T) {
	printer := &fakePrinter{err: errors.New("chrome not found")}

	doc, err := NewExporter(printer).ExportRecord(context.Background(), types.SampleRecord(), "modern")
	assert.Nil(t, doc)

	var exportErr *Error
	require.ErrorAs(t, err, &exportErr)
	assert.Contains(t, err.Error(), "chrome not found")
}

func TestCountPages_Unreadable(t *testing.T) {
	assert.Equal(t, 0, CountPages(nil))
	assert.Equal(t, 0, CountPages([]byte("not a pdf")))
	assert.Equal(t, 0, CountPages([]byte("%PDF-1.4 fake")))
}
