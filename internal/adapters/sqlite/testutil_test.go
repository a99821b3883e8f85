// Package sqlite_test contains integration tests for SQLite repositories.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for tests.
// All test setup functions use db.GetSchemaSQL() so tests run against the
// authoritative schema and cannot drift from production.
//
// DO NOT hardcode CREATE TABLE statements in test files. Use setupTestDB()
// and the seed* helpers instead.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/upshot/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedUpgrader inserts a PILOT 2025 upgrader and returns its ID.
func seedUpgrader(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "JANEDOE"
	}
	if name == "" {
		name = "Jane Doe"
	}
	_, err := db.Exec(
		"INSERT INTO upgraders (id, name, position, syllabus_year, start_date) VALUES (?, ?, 'PILOT', '2025', '2025-01-01')",
		id, name,
	)
	if err != nil {
		t.Fatalf("failed to seed upgrader: %v", err)
	}
	return id
}

// seedCompletion appends a completion for an upgrader.
func seedCompletion(t *testing.T, db *sql.DB, upgraderID string, ordinal int, event, date string) {
	t.Helper()
	_, err := db.Exec(
		"INSERT INTO completions (upgrader_id, ordinal, event, completed_on) VALUES (?, ?, ?, ?)",
		upgraderID, ordinal, event, date,
	)
	if err != nil {
		t.Fatalf("failed to seed completion: %v", err)
	}
}

// seedDerived stores a minimal derived snapshot for an upgrader.
func seedDerived(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(
		"UPDATE upgraders SET derived_pqs_level = 200, derived_readiness = 'ON_TRACK', derived_computed_at = '2025-06-01T00:00:00Z' WHERE id = ?",
		id,
	)
	if err != nil {
		t.Fatalf("failed to seed derived snapshot: %v", err)
	}
}

// hasDerived reports whether an upgrader currently carries a snapshot.
func hasDerived(t *testing.T, db *sql.DB, id string) bool {
	t.Helper()
	var computed sql.NullString
	if err := db.QueryRow("SELECT derived_computed_at FROM upgraders WHERE id = ?", id).Scan(&computed); err != nil {
		t.Fatalf("failed to read derived snapshot: %v", err)
	}
	return computed.Valid
}
