package main

import (
	"fmt"
	"log"

	"github.com/jonathan/cv-builder/internal/db"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the stored CV record",
	Long: "Removes the record stored under the configured key, so the next command starts from an empty CV. " +
		"The stored value is not read first, which also clears a record that no longer loads.",
	Args: cobra.NoArgs,
	RunE: runReset,
}

var resetYes bool

func init() {
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Confirm the deletion")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if !resetYes {
		return fmt.Errorf("refusing to delete %q without --yes", cfg.StorageKey)
	}

	kv, err := db.Open(cmd.Context(), cfg.DBOptions())
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage, err)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Printf("[STORE] Failed to close storage: %v", err)
		}
	}()

	if err := kv.Delete(cmd.Context(), cfg.StorageKey); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", cfg.StorageKey)
	return nil
}
