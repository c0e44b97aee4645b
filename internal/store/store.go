// Package store holds the live CV record, the single source of truth that
// editors mutate and templates render.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/jonathan/cv-builder/internal/types"
)

var (
	// ErrNotFound is returned by a Persistence when nothing has been saved yet.
	ErrNotFound = errors.New("no persisted record")
	// ErrCorrupt wraps a persisted value that was read but does not decode
	// into a record.
	ErrCorrupt = errors.New("persisted record is unreadable")
)

// Persistence is the durable storage port of a Store.
type Persistence interface {
	Load(ctx context.Context) (types.Record, error)
	Save(ctx context.Context, rec types.Record) error
}

// PersistError reports a save failure. The in-memory transition has already
// happened when it is returned.
type PersistError struct {
	Cause error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("failed to persist record: %v", e.Cause)
}

func (e *PersistError) Unwrap() error {
	return e.Cause
}

// Store holds the current record. Update is the only mutation path.
type Store struct {
	mu          sync.Mutex
	record      types.Record
	persistence Persistence
	subscribers map[int]func(types.Record)
	nextSub     int
	verbose     bool
}

// Option configures a Store.
type Option func(*Store)

// WithVerbose enables debug logging.
func WithVerbose(v bool) Option {
	return func(s *Store) { s.verbose = v }
}

// New creates a store, rehydrating from p. A missing or corrupt persisted
// value yields the default empty record. Any other load failure is returned,
// since editing a store that could not read its backend would overwrite the
// saved record on the next save.
func New(ctx context.Context, p Persistence, opts ...Option) (*Store, error) {
	s := &Store{
		persistence: p,
		subscribers: make(map[int]func(types.Record)),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.record = types.DefaultRecord()
	if p == nil {
		return s, nil
	}

	rec, err := p.Load(ctx)
	switch {
	case err == nil:
		rec.Normalize()
		s.record = rec
	case errors.Is(err, ErrNotFound):
	case errors.Is(err, ErrCorrupt):
		log.Printf("[STORE] Ignoring persisted record: %v", err)
	default:
		return nil, err
	}

	return s, nil
}

// Get returns a copy of the current record.
func (s *Store) Get() types.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// Update replaces the record with fn(current). fn receives a copy it may
// modify freely. Subscribers are notified synchronously, then the new record
// is persisted, overwriting the previous value.
func (s *Store) Update(ctx context.Context, fn func(types.Record) types.Record) error {
	_, err := s.Modify(ctx, func(r *types.Record) bool {
		*r = fn(*r)
		return true
	})
	return err
}

// Modify applies fn to a copy of the record. When fn reports no change the
// store is left untouched: nobody is notified and nothing is written.
func (s *Store) Modify(ctx context.Context, fn func(*types.Record) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.record.Clone()
	if !fn(&next) {
		return false, nil
	}
	next.Normalize()
	s.record = next

	for _, sub := range s.subscribers {
		sub(next.Clone())
	}

	if s.persistence == nil {
		return true, nil
	}
	if err := s.persistence.Save(ctx, next); err != nil {
		log.Printf("[STORE] Failed to persist record: %v", err)
		return true, &PersistError{Cause: err}
	}
	if s.verbose {
		log.Printf("[STORE] Record persisted")
	}
	return true, nil
}

// Replace swaps the whole record in one Update.
func (s *Store) Replace(ctx context.Context, rec types.Record) error {
	return s.Update(ctx, func(types.Record) types.Record { return rec.Clone() })
}

// Subscribe registers fn to receive every new record. Subscribers run while
// the store is locked and must not call back into it.
func (s *Store) Subscribe(fn func(types.Record)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}
