package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// KVStore is a string key/value view over the settings table. Each Set is a
// single UPSERT so a write either replaces the value or leaves the old one.
type KVStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewKVStore creates a key/value store from a base store
func NewKVStore(store *Store) *KVStore {
	if store == nil {
		return nil
	}
	return &KVStore{db: store.DB(), now: time.Now}
}

// Get returns the value stored under key and whether it exists
func (kv *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	if kv == nil || kv.db == nil {
		return "", false, fmt.Errorf("kv store not initialized")
	}
	var out string
	err := kv.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key=?`, key).Scan(&out)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("load %s: %w", key, err)
	}
	return out, true, nil
}

// Set upserts value under key
func (kv *KVStore) Set(ctx context.Context, key, value string) error {
	if kv == nil || kv.db == nil {
		return fmt.Errorf("kv store not initialized")
	}
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("empty key")
	}
	_, err := kv.db.ExecContext(ctx, `INSERT INTO settings(key, value, updated_at)
VALUES(?,?,?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at;
`, key, value, kv.now().Unix())
	if err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (kv *KVStore) Delete(ctx context.Context, key string) error {
	if kv == nil || kv.db == nil {
		return fmt.Errorf("kv store not initialized")
	}
	if _, err := kv.db.ExecContext(ctx, `DELETE FROM settings WHERE key=?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys in lexical order
func (kv *KVStore) Keys(ctx context.Context) ([]string, error) {
	if kv == nil || kv.db == nil {
		return nil, fmt.Errorf("kv store not initialized")
	}
	rows, err := kv.db.QueryContext(ctx, `SELECT key FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
