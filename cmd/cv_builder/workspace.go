package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/editor"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
)

// Seams replaced in tests.
var (
	newLLMClient = llm.NewClient
	newPrinter   = func(c config.Config) export.Printer { return export.NewChromePrinter(c.ChromePath, c.Verbose) }
)

// workspace is the record of the configured backend and key plus its editors.
type workspace struct {
	kv     db.KV
	ids    *editor.IDGenerator
	store  *store.Store
	editor *editor.Editor
}

func openWorkspace(ctx context.Context) (*workspace, error) {
	kv, err := db.Open(ctx, cfg.DBOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage, err)
	}

	st, err := store.New(ctx, store.NewKVPersistence(kv, cfg.StorageKey), store.WithVerbose(cfg.Verbose))
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("failed to load %q (run 'reset --yes' to discard it): %w", cfg.StorageKey, err)
	}
	ids := editor.NewIDGenerator(nil)
	return &workspace{
		kv:     kv,
		ids:    ids,
		store:  st,
		editor: editor.New(st, ids),
	}, nil
}

func (w *workspace) Close() {
	if err := w.kv.Close(); err != nil {
		log.Printf("[STORE] Failed to close storage: %v", err)
	}
}

// writeRecord prints rec as indented JSON.
func writeRecord(out io.Writer, rec types.Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record to JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
