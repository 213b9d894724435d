// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jeranaias/cody/internal/mode"
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Setting keys.
const (
	KeySize           = "character_size"
	KeyMode           = "interaction_mode"
	KeyWindowPosition = "window_position"
)

// DecodeError reports a stored value that no longer decodes into the
// requested type.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return "decode " + e.Key + ": " + e.Err.Error()
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// =============================================================================
// TYPES
// =============================================================================

// Position is the top-left corner of the pet window in screen pixels.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Settings is everything restored at startup. Has* report whether the
// value was found; callers fall back to config defaults otherwise.
type Settings struct {
	Size     int       `json:"size,omitempty"`
	Mode     mode.Mode `json:"mode"`
	Position *Position `json:"window_position,omitempty"`

	HasSize bool `json:"-"`
	HasMode bool `json:"-"`
}

// =============================================================================
// SETTINGS STORE
// =============================================================================

// SettingsStore is a JSON key/value store in SQLite. It is safe for
// concurrent use.
type SettingsStore struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the settings database at path.
func Open(path string) (*SettingsStore, error) {
	if path == "" {
		return nil, errors.New("settings path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return open(path, []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	})
}

// OpenMemory opens a store that lives only as long as the process. Used
// when persistence is disabled.
func OpenMemory() (*SettingsStore, error) {
	return open(":memory:", nil)
}

func open(dsn string, pragmas []string) (*SettingsStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; a single connection also keeps :memory: alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SettingsStore{db: db, path: dsn}, nil
}

// Path returns the database location (":memory:" for in-memory stores).
func (s *SettingsStore) Path() string {
	return s.path
}

// Close closes the database.
func (s *SettingsStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// RAW ACCESS
// =============================================================================

// Put stores v as JSON under key, replacing any previous value.
func (s *SettingsStore) Put(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, string(data), time.Now().UnixMilli())
	if err != nil {
		return wrapDBErr("store "+key, err)
	}
	return nil
}

// Get decodes the value under key into v. It reports false when the key
// is absent.
func (s *SettingsStore) Get(ctx context.Context, key string, v any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, wrapDBErr("load "+key, err)
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, &DecodeError{Key: key, Err: err}
	}
	return true, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *SettingsStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key); err != nil {
		return wrapDBErr("delete "+key, err)
	}
	return nil
}

// Keys lists stored keys in order.
func (s *SettingsStore) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM settings ORDER BY key`)
	if err != nil {
		return nil, wrapDBErr("list keys", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, wrapDBErr("list keys", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func wrapDBErr(op string, err error) error {
	return fmt.Errorf("settings: %s: %w", op, err)
}

// =============================================================================
// TYPED ACCESS
// =============================================================================

// Load reads every known setting. Values that fail to decode or are out of
// range are treated as absent.
func (s *SettingsStore) Load(ctx context.Context) (Settings, error) {
	var out Settings

	var size int
	ok, err := s.Get(ctx, KeySize, &size)
	if err != nil && !isDecode(err) {
		return Settings{}, err
	}
	if ok && size > 0 {
		out.Size, out.HasSize = size, true
	}

	var m mode.Mode
	ok, err = s.Get(ctx, KeyMode, &m)
	if err != nil && !isDecode(err) {
		return Settings{}, err
	}
	if ok {
		out.Mode, out.HasMode = m, true
	}

	var pos Position
	ok, err = s.Get(ctx, KeyWindowPosition, &pos)
	if err != nil && !isDecode(err) {
		return Settings{}, err
	}
	if ok {
		out.Position = &pos
	}

	return out, nil
}

// SaveSize records the character size.
func (s *SettingsStore) SaveSize(ctx context.Context, size int) error {
	if size <= 0 {
		return fmt.Errorf("invalid size %d", size)
	}
	return s.Put(ctx, KeySize, size)
}

// SaveMode records the interaction mode.
func (s *SettingsStore) SaveMode(ctx context.Context, m mode.Mode) error {
	if !m.Valid() {
		return fmt.Errorf("invalid mode %d", int(m))
	}
	return s.Put(ctx, KeyMode, m)
}

// SaveWindowPosition records where the pet window was left.
func (s *SettingsStore) SaveWindowPosition(ctx context.Context, pos Position) error {
	return s.Put(ctx, KeyWindowPosition, pos)
}

func isDecode(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
