package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/server"
	"github.com/spf13/cobra"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the browser CV builder",
	Long: "Start an HTTP server with the landing page, the builder (form, live preview, template " +
		"and theme selection), PDF export and AI intake. Each browser session edits its own record.",
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default from PORT or 8080)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := cfg.Port
	if servePort != "" {
		port = servePort
	}

	session, err := config.NewSessionConfig()
	if errors.Is(err, config.ErrNoSessionSecret) {
		log.Printf("[SERVER] SESSION_SECRET not set, sessions will not survive a restart")
		session, err = config.EphemeralSessionConfig()
	}
	if err != nil {
		return err
	}

	kv, err := db.Open(ctx, cfg.DBOptions())
	if err != nil {
		return fmt.Errorf("failed to open %s storage: %w", cfg.Storage, err)
	}
	defer kv.Close()

	var client llm.Client
	if cfg.APIKey != "" {
		client, err = newLLMClient(ctx, cfg.LLMConfig(), cfg.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()
	} else {
		log.Printf("[SERVER] No %s API key configured, AI intake is disabled", cfg.LLMProvider)
	}

	srv, err := server.New(server.Config{
		Port:       port,
		Template:   cfg.Template,
		StorageKey: cfg.StorageKey,
		Verbose:    cfg.Verbose,
		Session:    session,
	}, server.Deps{
		KV:      kv,
		LLM:     client,
		Printer: newPrinter(cfg),
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	if err := srv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
