package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored CV to an A4 PDF",
	Long: "Prints the rendered CV with headless Chrome. The file is named after the CV's full name " +
		"(\"CV.pdf\" when blank) unless --out names a .pdf file.",
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportTemplate string
	exportOutput   string
)

func init() {
	exportCmd.Flags().StringVarP(&exportTemplate, "template", "t", "", "Template id (defaults to the configured template)")
	exportCmd.Flags().StringVarP(&exportOutput, "out", "o", ".", "Output directory or .pdf file")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	tmpl := exportTemplate
	if tmpl == "" {
		tmpl = cfg.Template
	}

	exporter := export.NewExporter(newPrinter(cfg), export.WithVerbose(cfg.Verbose))
	doc, err := exporter.ExportRecord(cmd.Context(), ws.store.Get(), tmpl)
	if err != nil {
		return err
	}
	if doc == nil {
		return fmt.Errorf("nothing to export")
	}

	path := exportOutput
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		path = filepath.Join(path, doc.FileName)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, doc.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if cfg.Verbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintExport(doc, path)
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Exported %d page(s) to %s\n", doc.Pages, path)
	return nil
}
