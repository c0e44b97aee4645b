package store

import (
	"context"
	"fmt"

	"github.com/jonathan/cv-builder/internal/schemas"
	"github.com/jonathan/cv-builder/internal/types"
)

// DefaultKey is the storage key the record is persisted under.
const DefaultKey = "cvData"

// KV is a key/value backend. Get returns nil, nil for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// KVPersistence stores the JSON-serialized record under a single key.
type KVPersistence struct {
	kv  KV
	key string
}

// NewKVPersistence returns a Persistence backed by kv. An empty key uses DefaultKey.
func NewKVPersistence(kv KV, key string) *KVPersistence {
	if key == "" {
		key = DefaultKey
	}
	return &KVPersistence{kv: kv, key: key}
}

// Key returns the storage key.
func (p *KVPersistence) Key() string {
	return p.key
}

// Load implements Persistence.
func (p *KVPersistence) Load(ctx context.Context) (types.Record, error) {
	data, err := p.kv.Get(ctx, p.key)
	if err != nil {
		return types.Record{}, fmt.Errorf("failed to read %s: %w", p.key, err)
	}
	if data == nil {
		return types.Record{}, ErrNotFound
	}
	rec, err := schemas.DecodeRecord(data)
	if err != nil {
		return types.Record{}, fmt.Errorf("%w: %s: %w", ErrCorrupt, p.key, err)
	}
	return rec, nil
}

// Save implements Persistence.
func (p *KVPersistence) Save(ctx context.Context, rec types.Record) error {
	data, err := schemas.EncodeRecord(rec)
	if err != nil {
		return err
	}
	if err := p.kv.Put(ctx, p.key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", p.key, err)
	}
	return nil
}
