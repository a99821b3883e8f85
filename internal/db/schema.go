package db

import "database/sql"

// SchemaSQL is the complete schema for fresh UPSHOT installs.
// It reflects the state after every migration in migrations.go.
//
// # Schema Drift Protection
//
// This is the single source of truth for the database schema. Repository
// tests load it through GetSchemaSQL(), so a column referenced by repository
// code but missing here fails immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
//  3. Run the migration test to verify both paths produce the same tables
const SchemaSQL = `
-- Syllabi (one per position and catalog year)
CREATE TABLE IF NOT EXISTS syllabi (
	id TEXT PRIMARY KEY,
	position TEXT NOT NULL,
	year TEXT NOT NULL,
	display_name TEXT,
	base_level INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(position, year)
);

-- Per-level target and deadline months carried by a syllabus
CREATE TABLE IF NOT EXISTS syllabus_curves (
	syllabus_id TEXT NOT NULL,
	level INTEGER NOT NULL,
	target_months INTEGER NOT NULL,
	deadline_months INTEGER NOT NULL,
	PRIMARY KEY (syllabus_id, level),
	FOREIGN KEY (syllabus_id) REFERENCES syllabi(id) ON DELETE CASCADE
);

-- Requirements in syllabus order
CREATE TABLE IF NOT EXISTS requirements (
	syllabus_id TEXT NOT NULL,
	ordinal INTEGER NOT NULL,
	name TEXT NOT NULL,
	display_name TEXT,
	kind TEXT NOT NULL CHECK(kind IN ('PQS', 'EVENT', 'BOARD', 'OTHER')) DEFAULT 'OTHER',
	level INTEGER NOT NULL,
	waived_by_default INTEGER NOT NULL DEFAULT 0,
	sequence INTEGER,
	PRIMARY KEY (syllabus_id, ordinal),
	FOREIGN KEY (syllabus_id) REFERENCES syllabi(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS requirement_prerequisites (
	syllabus_id TEXT NOT NULL,
	requirement_ordinal INTEGER NOT NULL,
	ordinal INTEGER NOT NULL,
	prerequisite TEXT NOT NULL,
	PRIMARY KEY (syllabus_id, requirement_ordinal, ordinal),
	FOREIGN KEY (syllabus_id) REFERENCES syllabi(id) ON DELETE CASCADE
);

-- Validation warnings recorded at import
CREATE TABLE IF NOT EXISTS syllabus_issues (
	syllabus_id TEXT NOT NULL,
	ordinal INTEGER NOT NULL,
	code TEXT NOT NULL,
	severity TEXT NOT NULL CHECK(severity IN ('error', 'warning')),
	requirement TEXT,
	detail TEXT NOT NULL,
	PRIMARY KEY (syllabus_id, ordinal),
	FOREIGN KEY (syllabus_id) REFERENCES syllabi(id) ON DELETE CASCADE
);

-- Upgraders (roster). derived_* columns are engine-owned cache.
CREATE TABLE IF NOT EXISTS upgraders (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	display_name TEXT,
	rank TEXT,
	position TEXT NOT NULL,
	syllabus_year TEXT NOT NULL,
	target_level INTEGER NOT NULL DEFAULT 0,
	start_date TEXT,
	on_waiver INTEGER NOT NULL DEFAULT 0,
	derived_pqs_level INTEGER,
	derived_events_level INTEGER,
	derived_pqs_percent REAL,
	derived_events_percent REAL,
	derived_readiness TEXT CHECK(derived_readiness IN ('UNKNOWN', 'ON_TRACK', 'AT_RISK', 'BEHIND_SCHEDULE', 'BLOCKED')),
	derived_pacing_days INTEGER,
	derived_target_pacing_days INTEGER,
	derived_projected_complete TEXT,
	derived_computed_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_upgraders_position ON upgraders(position, syllabus_year);

-- Data sets (one per completion-source import)
CREATE TABLE IF NOT EXISTS data_sets (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	sources INTEGER NOT NULL DEFAULT 0,
	records INTEGER NOT NULL DEFAULT 0,
	matched INTEGER NOT NULL DEFAULT 0,
	added INTEGER NOT NULL DEFAULT 0,
	replaced INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL CHECK(status IN ('pending', 'complete', 'failed')) DEFAULT 'complete',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS data_set_unmatched (
	data_set_id TEXT NOT NULL,
	name TEXT NOT NULL,
	closest TEXT,
	score REAL NOT NULL DEFAULT 0,
	records INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (data_set_id, name),
	FOREIGN KEY (data_set_id) REFERENCES data_sets(id) ON DELETE CASCADE
);

-- Completions in merge order
CREATE TABLE IF NOT EXISTS completions (
	upgrader_id TEXT NOT NULL,
	ordinal INTEGER NOT NULL,
	event TEXT NOT NULL,
	completed_on TEXT,
	instructor TEXT,
	grade TEXT,
	status TEXT,
	data_set_id TEXT,
	PRIMARY KEY (upgrader_id, ordinal),
	FOREIGN KEY (upgrader_id) REFERENCES upgraders(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_completions_data_set ON completions(data_set_id);
`

// InitSchema creates the schema on a fresh database or migrates an existing one.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount > 0 {
		return RunMigrations(database)
	}

	var existing int
	err = database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='upgraders'").Scan(&existing)
	if err != nil {
		return err
	}
	if existing > 0 {
		// Tables predate version tracking; let migrations bring them forward.
		return RunMigrations(database)
	}

	if _, err := database.Exec(SchemaSQL); err != nil {
		return err
	}
	if err := createVersionTable(database); err != nil {
		return err
	}
	// Fresh installs start at the latest version.
	for _, m := range migrations {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
