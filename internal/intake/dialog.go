package intake

import (
	"context"
	"log"
	"sync"

	"github.com/jonathan/cv-builder/internal/store"
	"github.com/jonathan/cv-builder/internal/types"
)

// Result is the outcome of one Submit.
type Result struct {
	Record types.Record
	Err    error
	// Committed is false when the result arrived after the dialog was closed
	// or when generation failed.
	Committed bool
}

// Status is a snapshot of the dialog.
type Status struct {
	Open      bool   `json:"open"`
	Busy      bool   `json:"busy"`
	Available bool   `json:"available"`
	LastError string `json:"lastError,omitempty"`
}

// Dialog guards one intake conversation. Every Open starts a new session
// token; a response belonging to an older token is discarded.
type Dialog struct {
	svc   *Service
	store *store.Store

	mu      sync.Mutex
	token   uint64
	open    bool
	busy    bool
	cancel  context.CancelFunc
	lastErr error
}

// NewDialog returns a closed dialog committing into st.
func NewDialog(svc *Service, st *store.Store) *Dialog {
	return &Dialog{svc: svc, store: st}
}

// Open starts a new session, abandoning any request still in flight.
func (d *Dialog) Open() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.invalidate()
	d.open = true
}

// Close abandons the session. An outstanding request is cancelled and its
// result, if it still arrives, is never committed.
func (d *Dialog) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.invalidate()
	d.open = false
}

func (d *Dialog) invalidate() {
	d.token++
	d.busy = false
	d.lastErr = nil
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Status reports the current state.
func (d *Dialog) Status() Status {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := Status{Open: d.open, Busy: d.busy, Available: d.svc.Available()}
	if d.lastErr != nil {
		st.LastError = d.lastErr.Error()
	}
	return st
}

// Submit starts generation for a. The returned channel receives exactly one
// Result and is then closed. On success the record replaces the store content
// and the dialog closes; on failure the dialog stays open for a retry and the
// store is untouched.
func (d *Dialog) Submit(ctx context.Context, a Answers) (<-chan Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.open {
		return nil, ErrClosed
	}
	if d.busy {
		return nil, ErrBusy
	}

	callCtx, cancel := context.WithCancel(ctx)
	d.busy = true
	d.cancel = cancel
	d.lastErr = nil
	token := d.token

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		defer cancel()

		rec, err := d.svc.Generate(callCtx, a)
		out <- d.finish(token, rec, err)
	}()
	return out, nil
}

func (d *Dialog) finish(token uint64, rec types.Record, err error) Result {
	d.mu.Lock()
	defer d.mu.Unlock()

	if token != d.token {
		log.Printf("[INTAKE] Discarding result of a closed session")
		if err == nil {
			err = ErrClosed
		}
		return Result{Err: err}
	}

	d.busy = false
	d.cancel = nil
	if err != nil {
		d.lastErr = err
		return Result{Err: err}
	}

	// d.mu stays held through the commit: Close must not interleave.
	if err := Commit(context.Background(), d.store, rec); err != nil {
		d.lastErr = err
		d.open = false
		return Result{Record: rec, Err: err, Committed: true}
	}
	d.open = false
	return Result{Record: rec, Committed: true}
}
