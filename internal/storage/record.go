package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
)

// Record is a single JSON value persisted under one KV key.
//
// Missing or malformed data is never an error: Load falls back to the
// configured default and logs a warning. Failures of the underlying store,
// on read or on write, are always returned to the caller.
type Record[T any] struct {
	kv       KV
	key      string
	fallback func() T
}

func NewRecord[T any](kv KV, key string, fallback func() T) *Record[T] {
	return &Record[T]{kv: kv, key: key, fallback: fallback}
}

// Key returns the KV key backing the record.
func (r *Record[T]) Key() string {
	return r.key
}

func (r *Record[T]) Load(ctx context.Context) (T, error) {
	raw, found, err := r.kv.Get(ctx, r.key)
	if err != nil {
		return r.fallback(), fmt.Errorf("read %s: %w", r.key, err)
	}
	raw = bytes.TrimSpace(raw)
	if !found || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return r.fallback(), nil
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		slog.WarnContext(ctx, "Malformed persisted value, using default",
			"key", r.key,
			"bytes", len(raw),
			"error", err)
		return r.fallback(), nil
	}
	return v, nil
}

func (r *Record[T]) Save(ctx context.Context, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.key, err)
	}
	if err := r.kv.Set(ctx, r.key, raw); err != nil {
		return fmt.Errorf("write %s: %w", r.key, err)
	}
	return nil
}
