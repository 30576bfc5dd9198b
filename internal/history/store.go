// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Register driver

	"github.com/relabs-tech/jump_tracker/internal/jump"
)

// Store persists jump events to a local SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	// Enable WAL mode for better concurrency and set busy timeout
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Enforce single connection to avoid SQLITE_BUSY errors during concurrent writes
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	q := `CREATE TABLE IF NOT EXISTS jumps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		t REAL NOT NULL,
		height_m REAL NOT NULL,
		flight_time_s REAL NOT NULL,
		quality REAL NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	if _, err := s.db.Exec(q); err != nil {
		return fmt.Errorf("exec error: %w query: %s", err, q)
	}
	return nil
}

// Insert records one jump event.
func (s *Store) Insert(ev jump.Event) error {
	_, err := s.db.Exec(
		"INSERT INTO jumps (t, height_m, flight_time_s, quality) VALUES (?, ?, ?, ?)",
		ev.Timestamp, ev.HeightM, ev.FlightTime, ev.Quality,
	)
	if err != nil {
		return fmt.Errorf("failed to insert jump: %w", err)
	}
	return nil
}

// Recent returns the n most recent jumps, newest first.
func (s *Store) Recent(n int) ([]jump.Event, error) {
	rows, err := s.db.Query(
		"SELECT t, height_m, flight_time_s, quality FROM jumps ORDER BY id DESC LIMIT ?", n)
	if err != nil {
		return nil, fmt.Errorf("failed to query jumps: %w", err)
	}
	defer rows.Close()

	var events []jump.Event
	for rows.Next() {
		var ev jump.Event
		if err := rows.Scan(&ev.Timestamp, &ev.HeightM, &ev.FlightTime, &ev.Quality); err != nil {
			return nil, fmt.Errorf("failed to scan jump row: %w", err)
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Best returns the highest recorded jump, or false when the table is empty.
func (s *Store) Best() (jump.Event, bool, error) {
	var ev jump.Event
	err := s.db.QueryRow(
		"SELECT t, height_m, flight_time_s, quality FROM jumps ORDER BY height_m DESC LIMIT 1").
		Scan(&ev.Timestamp, &ev.HeightM, &ev.FlightTime, &ev.Quality)
	if err == sql.ErrNoRows {
		return jump.Event{}, false, nil
	}
	if err != nil {
		return jump.Event{}, false, fmt.Errorf("failed to query best jump: %w", err)
	}
	return ev, true, nil
}

// Count returns the total number of recorded jumps.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM jumps").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count jumps: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
