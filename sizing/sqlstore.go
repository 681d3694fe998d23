// Copyright © 2025 Tabulon contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: sizing/sqlstore.go
// Summary: SQLite persistence substrate.

package sizing

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// Current schema version - increment when the row layout changes.
const sqlStoreSchemaVersion = 1

const sqlStoreSchema = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);

-- One row per logical table, keyed by the serialized canonical identity.
CREATE TABLE IF NOT EXISTS table_sizes (
    key        TEXT PRIMARY KEY,
    record     TEXT NOT NULL,    -- Record as JSON
    updated_at INTEGER NOT NULL  -- unix millis, duplicated for queries
);

CREATE INDEX IF NOT EXISTS idx_table_sizes_updated ON table_sizes(updated_at);

-- Singleton row carrying the opaque settings payload.
CREATE TABLE IF NOT EXISTS settings (
    id       INTEGER PRIMARY KEY CHECK (id = 1),
    payload  TEXT NOT NULL
);
`

// SQLStore persists the payload in a SQLite database, one row per record.
// Hosts that already carry a database substrate can share it instead of a
// loose JSON file.
type SQLStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLStore opens (creating if needed) the database at dbPath.
func NewSQLStore(dbPath string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := dbPath +
		"?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if _, err := db.Exec(sqlStoreSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := db.Exec(
		"INSERT OR IGNORE INTO schema_version (version) VALUES (?)",
		sqlStoreSchemaVersion,
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to record schema version: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Load reads every stored record plus the settings payload. An empty
// database yields (nil, nil).
func (s *SQLStore) Load() (*PluginData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query("SELECT key, record FROM table_sizes")
	if err != nil {
		return nil, fmt.Errorf("query table_sizes: %w", err)
	}
	defer rows.Close()

	tables := make(map[string]Record)
	for rows.Next() {
		var key, recJSON string
		if err := rows.Scan(&key, &recJSON); err != nil {
			return nil, fmt.Errorf("scan table_sizes row: %w", err)
		}
		var rec Record
		if err := json.Unmarshal([]byte(recJSON), &rec); err != nil {
			// A damaged row is skipped, not fatal.
			continue
		}
		tables[key] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate table_sizes: %w", err)
	}

	var settings json.RawMessage
	var payload string
	err = s.db.QueryRow("SELECT payload FROM settings WHERE id = 1").Scan(&payload)
	switch {
	case err == sql.ErrNoRows:
		// no settings saved yet
	case err != nil:
		return nil, fmt.Errorf("query settings: %w", err)
	default:
		settings = json.RawMessage(payload)
	}

	if len(tables) == 0 && settings == nil {
		return nil, nil
	}
	return &PluginData{Tables: tables, Version: StoreVersion, Settings: settings}, nil
}

// Save upserts every record and the settings payload in one transaction.
// Rows whose key no longer appears in the payload are removed so renames do
// not leave stale entries behind.
func (s *SQLStore) Save(payload *PluginData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM table_sizes"); err != nil {
		return fmt.Errorf("clear table_sizes: %w", err)
	}
	stmt, err := tx.Prepare(
		"INSERT INTO table_sizes (key, record, updated_at) VALUES (?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for key, rec := range payload.Tables {
		recJSON, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal record %s: %w", key, err)
		}
		if _, err := stmt.Exec(key, string(recJSON), rec.UpdatedAt); err != nil {
			return fmt.Errorf("insert record %s: %w", key, err)
		}
	}

	if payload.Settings != nil {
		if _, err := tx.Exec(
			"INSERT INTO settings (id, payload) VALUES (1, ?) "+
				"ON CONFLICT(id) DO UPDATE SET payload = excluded.payload",
			string(payload.Settings),
		); err != nil {
			return fmt.Errorf("save settings: %w", err)
		}
	}

	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}
