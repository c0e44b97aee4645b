package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/cv-builder/internal/rendering"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the stored CV as a standalone HTML page",
	Long:  "Renders the record with one of the built-in templates (minimal, modern, classic). Unknown template names fall back to minimal.",
	Args:  cobra.NoArgs,
	RunE:  runRender,
}

var (
	renderTemplate string
	renderEditable bool
	renderTheme    string
	renderOutput   string
)

func init() {
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", "", "Template id (defaults to the configured template)")
	renderCmd.Flags().BoolVar(&renderEditable, "editable", false, "Mark text regions editable and show placeholders")
	renderCmd.Flags().StringVar(&renderTheme, "theme", rendering.ThemeLight, "Page theme: light or dark")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Output HTML file (default stdout)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	tmpl := renderTemplate
	if tmpl == "" {
		tmpl = cfg.Template
	}

	var buf bytes.Buffer
	opts := rendering.PageOptions{Editable: renderEditable, Theme: renderTheme, Title: "CV"}
	if err := rendering.RenderPage(&buf, ws.store.Get(), tmpl, opts); err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}

	if renderOutput == "" {
		_, err := cmd.OutOrStdout().Write(buf.Bytes())
		return err
	}

	if dir := filepath.Dir(renderOutput); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(renderOutput, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", renderOutput, err)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s template to %s\n", rendering.Lookup(tmpl).ID(), renderOutput)
	return nil
}
