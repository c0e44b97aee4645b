package main

import (
	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored CV record",
	Long:  "Prints a summary of the stored record, or the full record as JSON with --json.",
	Args:  cobra.NoArgs,
	RunE:  runShow,
}

var showJSON bool

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the full record as JSON")
	rootCmd.AddCommand(showCmd)
}

func runShow(cmd *cobra.Command, _ []string) error {
	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	rec := ws.store.Get()
	if showJSON {
		return writeRecord(cmd.OutOrStdout(), rec)
	}

	p := observability.NewPrinter(cmd.OutOrStdout())
	p.PrintRecord(&rec)
	if cfg.Verbose {
		p.PrintSkills("hardSkills", rec.HardSkills)
		p.PrintSkills("softSkills", rec.SoftSkills)
	}
	return nil
}
