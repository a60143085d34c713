package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// KeyValues exposes the kv table as a kv.Store. It is the client-local
// persisted store for flags such as cookie consent.
type KeyValues struct {
	s *SQLiteStore
}

// KeyValues returns the key-value view of the store.
func (s *SQLiteStore) KeyValues() *KeyValues {
	return &KeyValues{s: s}
}

// Get returns the value stored under key.
func (kv *KeyValues) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := kv.s.db.GetContext(ctx, &value, "SELECT value FROM kv WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("getting value %q: %w", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (kv *KeyValues) Set(ctx context.Context, key, value string) error {
	_, err := kv.s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("setting value %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (kv *KeyValues) Delete(ctx context.Context, key string) error {
	if _, err := kv.s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting value %q: %w", key, err)
	}
	return nil
}
