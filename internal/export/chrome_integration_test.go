//go:build integration

package export

import (
	"context"
	"os"
	"testing"

	"github.com/jonathan/cv-builder/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a local Chrome/Chromium. Set CHROME_PATH to run.
func TestIntegration_ChromePrinter(t *testing.T) {
	chromePath := os.Getenv("CHROME_PATH")
	if chromePath == "" {
		t.Skip("CHROME_PATH not set, skipping integration test")
	}

	exp := NewExporter(NewChromePrinter(chromePath, true))
	doc, err := exp.ExportRecord(context.Background(), types.SampleRecord(), "modern")
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "Ada Lovelace.pdf", doc.FileName)
	assert.True(t, len(doc.Data) > 4 && string(doc.Data[:4]) == "%PDF")
	assert.GreaterOrEqual(t, doc.Pages, 1)
}
