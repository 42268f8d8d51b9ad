// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the single point where the database schema is loaded for
// tests. All test setup uses db.GetSchemaSQL() so tests run against the
// authoritative schema; a repository referencing a column that doesn't exist
// fails immediately with "no such column" instead of drifting silently.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/canopy/internal/db"
	"github.com/example/canopy/internal/ports/secondary"
)

const testStamp = "2026-03-01T10:00:00Z"

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if _, err := testDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}

	// Use the authoritative schema from schema.go
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedRun inserts a test run and returns its ID.
func seedRun(t *testing.T, db *sql.DB, id, scopeID, status string) string {
	t.Helper()
	if id == "" {
		id = "RUN-001"
	}
	if scopeID == "" {
		scopeID = "ward-7"
	}
	if status == "" {
		status = "draft"
	}
	_, err := db.Exec(
		"INSERT INTO runs (id, scope_id, status, allow_partial, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?)",
		id, scopeID, status, testStamp, testStamp,
	)
	if err != nil {
		t.Fatalf("failed to seed run: %v", err)
	}
	return id
}

// seedSource inserts a test source and returns its ID.
func seedSource(t *testing.T, db *sql.DB, id, runID string) string {
	t.Helper()
	if id == "" {
		id = "SRC-001"
	}
	if runID == "" {
		runID = "RUN-001"
	}
	_, err := db.Exec(
		"INSERT INTO sources (id, run_id, kind, title, parse_status, created_at) VALUES (?, ?, 'file', 'Soil survey', 'pending', ?)",
		id, runID, testStamp,
	)
	if err != nil {
		t.Fatalf("failed to seed source: %v", err)
	}
	return id
}

// strPtr returns a pointer to s, for nullable value columns.
func strPtr(s string) *string { return &s }

// numPtr returns a pointer to n.
func numPtr(n float64) *float64 { return &n }

// testInput builds a minimal valid input record answering the given pointer.
func testInput(id, runID, pointer string) *secondary.InputRecord {
	return &secondary.InputRecord{
		ID:          id,
		RunID:       runID,
		Pointer:     pointer,
		Domain:      "site",
		FieldType:   "text",
		ValueKind:   "string",
		ValueString: strPtr("1200 Elm St NW"),
		Provenance:  "user_entered",
		UpdatedBy:   "user",
		UpdatedAt:   testStamp,
	}
}
