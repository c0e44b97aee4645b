package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a CV record JSON file, or the stored record",
	Long:  "Checks a record document against the record JSON Schema and the closed value sets (e.g. language proficiency).",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runValidate,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the stored record with a validated JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

// errInvalidRecord is returned after the problems have been printed.
var errInvalidRecord = errors.New("record is invalid")

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(importCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	var data []byte
	if len(args) == 1 {
		var err error
		if data, err = os.ReadFile(args[0]); err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
	} else {
		ws, err := openWorkspace(cmd.Context())
		if err != nil {
			return err
		}
		defer ws.Close()
		if data, err = schemas.EncodeRecord(ws.store.Get()); err != nil {
			return err
		}
	}

	problems := recordProblems(data)
	observability.NewPrinter(cmd.OutOrStdout()).PrintProblems(problems)
	if len(problems) > 0 {
		return errInvalidRecord
	}
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	if problems := recordProblems(data); len(problems) > 0 {
		observability.NewPrinter(cmd.OutOrStdout()).PrintProblems(problems)
		return errInvalidRecord
	}

	rec, err := schemas.DecodeRecordStrict(data)
	if err != nil {
		return err
	}

	ws, err := openWorkspace(cmd.Context())
	if err != nil {
		return err
	}
	defer ws.Close()

	rec.AssignMissingIDs(ws.ids.Next)
	if err := ws.store.Replace(cmd.Context(), rec); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %s into %q\n", args[0], cfg.StorageKey)
	return nil
}

// recordProblems lists every schema and value problem of a record document.
func recordProblems(data []byte) []string {
	var problems []string

	err := schemas.ValidateRecord(data)
	var schemaErr *schemas.ValidationError
	switch {
	case errors.As(err, &schemaErr):
		for _, fe := range schemaErr.Errors {
			problems = append(problems, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
		}
		return problems
	case err != nil:
		return []string{err.Error()}
	}

	_, err = schemas.DecodeRecordStrict(data)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}
	for _, fe := range fieldErrs {
		if fe.Tag() == "oneof" {
			problems = append(problems, fmt.Sprintf("%s: must be one of %s, got %q", fe.Namespace(), fe.Param(), fe.Value()))
			continue
		}
		problems = append(problems, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
	}
	return problems
}
