package server

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/cv-builder/internal/editor"
	"github.com/jonathan/cv-builder/internal/intake"
	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
)

// DefaultSessionIdleTTL is how long an untouched workspace stays in memory.
const DefaultSessionIdleTTL = time.Hour

// Workspace is everything one browser session edits: its record store, the
// editors over it and the AI intake dialog.
type Workspace struct {
	ID     uuid.UUID
	Store  *store.Store
	Editor *editor.Editor
	Intake *intake.Dialog

	// instance tells this load of the record apart from earlier ones, since
	// revision restarts at zero whenever the workspace is rebuilt.
	instance    string
	revision    atomic.Uint64
	unsubscribe func()
}

// ETag identifies the current revision of the record.
func (w *Workspace) ETag() string {
	return fmt.Sprintf(`"%s-%d"`, w.instance, w.revision.Load())
}

func (w *Workspace) close() {
	w.unsubscribe()
	w.Intake.Close()
}

// Workspaces hands out one Workspace per session id, creating it from the
// persisted record on first use. Workspaces idle for longer than the TTL are
// dropped from memory; their records stay in the backend.
type Workspaces struct {
	kv        store.KV
	keyPrefix string
	llm       llm.Client
	verbose   bool
	idleTTL   time.Duration
	interval  time.Duration
	now       func() time.Time

	mu         sync.Mutex
	items      map[uuid.UUID]*Workspace
	lastAccess map[uuid.UUID]time.Time

	stopOnce sync.Once
	stop     chan struct{}
}

// WorkspacesOption configures Workspaces.
type WorkspacesOption func(*Workspaces)

// WithIdleTTL sets how long an unused workspace is kept. Zero means one hour.
func WithIdleTTL(ttl time.Duration) WorkspacesOption {
	return func(ws *Workspaces) {
		if ttl > 0 {
			ws.idleTTL = ttl
		}
	}
}

// WithCleanupInterval starts a goroutine that evicts idle workspaces every
// interval until Stop is called.
func WithCleanupInterval(interval time.Duration) WorkspacesOption {
	return func(ws *Workspaces) { ws.interval = interval }
}

// WithWorkspaceClock replaces time.Now, for tests.
func WithWorkspaceClock(now func() time.Time) WorkspacesOption {
	return func(ws *Workspaces) { ws.now = now }
}

// NewWorkspaces persists every workspace in kv under "<keyPrefix>:<session id>".
// A nil client disables AI intake.
func NewWorkspaces(kv store.KV, keyPrefix string, client llm.Client, verbose bool, opts ...WorkspacesOption) *Workspaces {
	if keyPrefix == "" {
		keyPrefix = store.DefaultKey
	}
	ws := &Workspaces{
		kv:         kv,
		keyPrefix:  keyPrefix,
		llm:        client,
		verbose:    verbose,
		idleTTL:    DefaultSessionIdleTTL,
		now:        time.Now,
		items:      make(map[uuid.UUID]*Workspace),
		lastAccess: make(map[uuid.UUID]time.Time),
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(ws)
	}

	if ws.interval > 0 {
		go ws.cleanupLoop(ws.interval)
	}
	return ws
}

// Key returns the storage key of a session.
func (ws *Workspaces) Key(id uuid.UUID) string {
	return ws.keyPrefix + ":" + id.String()
}

// Get returns the workspace of session id. A record that cannot be read is
// an error and nothing is cached, so the next request tries again instead of
// editing an empty record over the saved one.
func (ws *Workspaces) Get(ctx context.Context, id uuid.UUID) (*Workspace, error) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	now := ws.now()
	if w, ok := ws.items[id]; ok {
		ws.lastAccess[id] = now
		return w, nil
	}

	st, err := store.New(ctx, store.NewKVPersistence(ws.kv, ws.Key(id)), store.WithVerbose(ws.verbose))
	if err != nil {
		return nil, fmt.Errorf("failed to load session record: %w", err)
	}
	ids := editor.NewIDGenerator(nil)
	svc := intake.NewService(ws.llm, intake.WithIDs(ids.Next), intake.WithVerbose(ws.verbose))

	w := &Workspace{
		ID:       id,
		Store:    st,
		Editor:   editor.New(st, ids),
		Intake:   intake.NewDialog(svc, st),
		instance: uuid.NewString(),
	}
	w.unsubscribe = st.Subscribe(func(types.Record) { w.revision.Add(1) })

	ws.items[id] = w
	ws.lastAccess[id] = now
	return w, nil
}

// Len returns the number of live workspaces.
func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.items)
}

func (ws *Workspaces) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			ws.Cleanup()
		case <-ws.stop:
			return
		}
	}
}

// Cleanup drops workspaces idle for longer than the TTL and returns how many
// went. A workspace waiting on an AI intake reply is kept until it settles.
func (ws *Workspaces) Cleanup() int {
	cutoff := ws.now().Add(-ws.idleTTL)

	ws.mu.Lock()
	defer ws.mu.Unlock()

	evicted := 0
	for id, last := range ws.lastAccess {
		if !last.Before(cutoff) {
			continue
		}
		w := ws.items[id]
		if w.Intake.Status().Busy {
			continue
		}
		w.close()
		delete(ws.items, id)
		delete(ws.lastAccess, id)
		evicted++
	}
	if evicted > 0 && ws.verbose {
		log.Printf("[SERVER] Evicted %d idle sessions, %d remain", evicted, len(ws.items))
	}
	return evicted
}

// Stop ends the cleanup goroutine. It is safe to call more than once.
func (ws *Workspaces) Stop() {
	ws.stopOnce.Do(func() { close(ws.stop) })
}

// Close abandons every open intake dialog.
func (ws *Workspaces) Close() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for _, w := range ws.items {
		w.Intake.Close()
	}
}
