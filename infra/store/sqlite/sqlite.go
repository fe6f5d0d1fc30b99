// Package sqlite persists the bloodlink stores in a single SQLite database.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Open opens or creates the database at path and ensures the schema.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Single connection: concurrent writers would otherwise surface
	// SQLITE_BUSY, and the claim UPDATE must serialize anyway.
	db.SetMaxOpenConns(1)
	schema := `
CREATE TABLE IF NOT EXISTS donors (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    blood_group TEXT NOT NULL,
    roll_no TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS requests (
    id TEXT PRIMARY KEY,
    hospital_id TEXT NOT NULL,
    blood_group TEXT NOT NULL,
    quantity INTEGER NOT NULL,
    urgency TEXT NOT NULL,
    status TEXT NOT NULL,
    required_by INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS tokens (
    token TEXT PRIMARY KEY,
    request_id TEXT NOT NULL,
    donor_id TEXT NOT NULL,
    is_used INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    UNIQUE(request_id, donor_id)
);
CREATE TABLE IF NOT EXISTS responses (
    id TEXT PRIMARY KEY,
    donor_id TEXT NOT NULL,
    request_id TEXT NOT NULL,
    latitude REAL NOT NULL,
    longitude REAL NOT NULL,
    is_available INTEGER NOT NULL,
    address TEXT NOT NULL DEFAULT '',
    response_time INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_responses_request ON responses(request_id, response_time);
CREATE TABLE IF NOT EXISTS legacy_locations (
    address TEXT NOT NULL DEFAULT '',
    latitude REAL NOT NULL,
    longitude REAL NOT NULL,
    user_name TEXT NOT NULL DEFAULT '',
    roll_number TEXT NOT NULL DEFAULT '',
    mobile_number TEXT NOT NULL DEFAULT '',
    timestamp INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return db, nil
}

// toNano converts a time to its stored representation, keeping zero times zero.
func toNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

// fromNano restores a stored timestamp.
func fromNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
