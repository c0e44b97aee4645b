// Package main provides the entry point for the CV builder CLI and HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	verbose     bool
	storageFlag string
	dataDirFlag string
	keyFlag     string

	// cfg is resolved before every command runs.
	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cv_builder",
	Short: "Build a CV, preview it in three templates and export it to PDF",
	Long: "cv_builder edits a single CV record stored in the configured backend. " +
		"Use the subcommands to edit it from the shell, or 'serve' for the browser builder.",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed debug information")
	rootCmd.PersistentFlags().StringVar(&storageFlag, "storage", "", "Storage backend: file, memory, sqlite, postgres, redis")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Directory for the file and sqlite backends")
	rootCmd.PersistentFlags().StringVar(&keyFlag, "key", "", "Storage key of the record")
}

// loadConfig resolves env, config file and defaults, then applies flags on top.
func loadConfig(_ *cobra.Command, _ []string) error {
	resolved, err := config.Resolve(configPath)
	if err != nil {
		return err
	}

	if storageFlag != "" {
		resolved.Storage = storageFlag
	}
	if dataDirFlag != "" {
		resolved.DataDir = dataDirFlag
	}
	if keyFlag != "" {
		resolved.StorageKey = keyFlag
	}
	if verbose {
		resolved.Verbose = true
	}
	if err := resolved.Validate(); err != nil {
		return err
	}

	cfg = resolved
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
