package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jonathan/cv-builder/internal/intake"
	"github.com/jonathan/cv-builder/internal/observability"
	"github.com/spf13/cobra"
)

var intakeCmd = &cobra.Command{
	Use:   "intake",
	Short: "Generate a complete CV from four answers with the configured LLM",
	Long: "Sends the answers to the configured provider (LLM_PROVIDER, GEMINI_API_KEY or OPENAI_API_KEY) " +
		"and replaces the stored record with the generated one. Nothing is stored when generation fails.",
	Args: cobra.NoArgs,
	RunE: runIntake,
}

var (
	intakeName           string
	intakeEmail          string
	intakePosition       string
	intakeBackground     string
	intakeBackgroundFile string
	intakeDryRun         bool
	intakeTimeout        time.Duration
)

func init() {
	intakeCmd.Flags().StringVar(&intakeName, "name", "", "Full name")
	intakeCmd.Flags().StringVar(&intakeEmail, "email", "", "Email address")
	intakeCmd.Flags().StringVar(&intakePosition, "position", "", "Position you are applying for (required)")
	intakeCmd.Flags().StringVar(&intakeBackground, "background", "", "Free-text description of your background")
	intakeCmd.Flags().StringVar(&intakeBackgroundFile, "background-file", "", "Read the background from a file")
	intakeCmd.Flags().BoolVar(&intakeDryRun, "dry-run", false, "Print the generated record without storing it")
	intakeCmd.Flags().DurationVar(&intakeTimeout, "timeout", 2*time.Minute, "Timeout for the generation request")

	if err := intakeCmd.MarkFlagRequired("position"); err != nil {
		panic(fmt.Sprintf("failed to mark position flag as required: %v", err))
	}
	intakeCmd.MarkFlagsMutuallyExclusive("background", "background-file")

	rootCmd.AddCommand(intakeCmd)
}

func runIntake(cmd *cobra.Command, _ []string) error {
	answers := intake.Answers{
		FullName:   intakeName,
		Email:      intakeEmail,
		Position:   intakePosition,
		Background: intakeBackground,
	}
	if intakeBackgroundFile != "" {
		data, err := os.ReadFile(intakeBackgroundFile)
		if err != nil {
			return fmt.Errorf("failed to read background file %s: %w", intakeBackgroundFile, err)
		}
		answers.Background = string(data)
	}
	if err := answers.Validate(); err != nil {
		return err
	}
	if cfg.APIKey == "" {
		return intake.ErrNoCredential
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), intakeTimeout)
	defer cancel()

	client, err := newLLMClient(ctx, cfg.LLMConfig(), cfg.APIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	p := observability.NewPrinter(cmd.OutOrStdout())
	if cfg.Verbose {
		p.PrintIntakeAnswers(&answers)
	}

	svc := intake.NewService(client, intake.WithIDs(ws.ids.Next), intake.WithVerbose(cfg.Verbose))
	rec, err := svc.Generate(ctx, answers)
	if err != nil {
		return err
	}

	if intakeDryRun {
		return writeRecord(cmd.OutOrStdout(), rec)
	}
	if err := intake.Commit(ctx, ws.store, rec); err != nil {
		return err
	}

	p.PrintRecord(&rec)
	return nil
}
