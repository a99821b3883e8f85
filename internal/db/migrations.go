package db

import (
	"database/sql"
	"fmt"
	"os"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_roster_and_syllabus_tables",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_rank_and_derived_columns_to_upgraders",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "add_data_sets",
		Up:      migrationV3,
	},
	{
		Version: 4,
		Name:    "add_syllabus_issues",
		Up:      migrationV4,
	},
	{
		Version: 5,
		Name:    "add_on_waiver_to_upgraders",
		Up:      migrationV5,
	},
	{
		Version: 6,
		Name:    "add_status_to_data_sets",
		Up:      migrationV6,
	},
}

// LatestVersion returns the highest known migration version.
func LatestVersion() int {
	return migrations[len(migrations)-1].Version
}

func createVersionTable(database *sql.DB) error {
	_, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// RunMigrations executes all pending migrations
func RunMigrations(database *sql.DB) error {
	if err := createVersionTable(database); err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		fmt.Fprintf(os.Stderr, "Running migration %d: %s\n", migration.Version, migration.Name)

		tx, err := database.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		fmt.Fprintf(os.Stderr, "✓ Migration %d completed\n", migration.Version)
	}

	return nil
}

func execAll(tx *sql.Tx, statements ...string) error {
	for _, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// migrationV1 creates the roster, syllabus and completion tables.
func migrationV1(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS syllabi (
			id TEXT PRIMARY KEY,
			position TEXT NOT NULL,
			year TEXT NOT NULL,
			display_name TEXT,
			base_level INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(position, year)
		)`,
		`CREATE TABLE IF NOT EXISTS syllabus_curves (
			syllabus_id TEXT NOT NULL,
			level INTEGER NOT NULL,
			target_months INTEGER NOT NULL,
			deadline_months INTEGER NOT NULL,
			PRIMARY KEY (syllabus_id, level),
			FOREIGN KEY (syllabus_id) REFERENCES syllabi(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS requirements (
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
		)`,
		`CREATE TABLE IF NOT EXISTS requirement_prerequisites (
			syllabus_id TEXT NOT NULL,
			requirement_ordinal INTEGER NOT NULL,
			ordinal INTEGER NOT NULL,
			prerequisite TEXT NOT NULL,
			PRIMARY KEY (syllabus_id, requirement_ordinal, ordinal),
			FOREIGN KEY (syllabus_id) REFERENCES syllabi(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS upgraders (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			display_name TEXT,
			position TEXT NOT NULL,
			syllabus_year TEXT NOT NULL,
			target_level INTEGER NOT NULL DEFAULT 0,
			start_date TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_upgraders_position ON upgraders(position, syllabus_year)`,
		`CREATE TABLE IF NOT EXISTS completions (
			upgrader_id TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			event TEXT NOT NULL,
			completed_on TEXT,
			instructor TEXT,
			grade TEXT,
			status TEXT,
			PRIMARY KEY (upgrader_id, ordinal),
			FOREIGN KEY (upgrader_id) REFERENCES upgraders(id) ON DELETE CASCADE
		)`,
	)
}

// migrationV2 adds rank and the engine-owned derived columns.
func migrationV2(tx *sql.Tx) error {
	return execAll(tx,
		`ALTER TABLE upgraders ADD COLUMN rank TEXT`,
		`ALTER TABLE upgraders ADD COLUMN derived_pqs_level INTEGER`,
		`ALTER TABLE upgraders ADD COLUMN derived_events_level INTEGER`,
		`ALTER TABLE upgraders ADD COLUMN derived_pqs_percent REAL`,
		`ALTER TABLE upgraders ADD COLUMN derived_events_percent REAL`,
		`ALTER TABLE upgraders ADD COLUMN derived_readiness TEXT CHECK(derived_readiness IN ('UNKNOWN', 'ON_TRACK', 'AT_RISK', 'BEHIND_SCHEDULE', 'BLOCKED'))`,
		`ALTER TABLE upgraders ADD COLUMN derived_pacing_days INTEGER`,
		`ALTER TABLE upgraders ADD COLUMN derived_target_pacing_days INTEGER`,
		`ALTER TABLE upgraders ADD COLUMN derived_projected_complete TEXT`,
		`ALTER TABLE upgraders ADD COLUMN derived_computed_at DATETIME`,
	)
}

// migrationV3 adds data sets and tags completions with the set that delivered them.
func migrationV3(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS data_sets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			sources INTEGER NOT NULL DEFAULT 0,
			records INTEGER NOT NULL DEFAULT 0,
			matched INTEGER NOT NULL DEFAULT 0,
			added INTEGER NOT NULL DEFAULT 0,
			replaced INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS data_set_unmatched (
			data_set_id TEXT NOT NULL,
			name TEXT NOT NULL,
			closest TEXT,
			score REAL NOT NULL DEFAULT 0,
			records INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (data_set_id, name),
			FOREIGN KEY (data_set_id) REFERENCES data_sets(id) ON DELETE CASCADE
		)`,
		`ALTER TABLE completions ADD COLUMN data_set_id TEXT`,
		`CREATE INDEX IF NOT EXISTS idx_completions_data_set ON completions(data_set_id)`,
	)
}

// migrationV4 stores validation warnings alongside imported syllabi.
func migrationV4(tx *sql.Tx) error {
	return execAll(tx,
		`CREATE TABLE IF NOT EXISTS syllabus_issues (
			syllabus_id TEXT NOT NULL,
			ordinal INTEGER NOT NULL,
			code TEXT NOT NULL,
			severity TEXT NOT NULL CHECK(severity IN ('error', 'warning')),
			requirement TEXT,
			detail TEXT NOT NULL,
			PRIMARY KEY (syllabus_id, ordinal),
			FOREIGN KEY (syllabus_id) REFERENCES syllabi(id) ON DELETE CASCADE
		)`,
	)
}

// migrationV5 adds the deadline waiver flag.
func migrationV5(tx *sql.Tx) error {
	return execAll(tx,
		`ALTER TABLE upgraders ADD COLUMN on_waiver INTEGER NOT NULL DEFAULT 0`,
	)
}

// migrationV6 tracks whether an import finished. Sets recorded before this
// version were only written on success.
func migrationV6(tx *sql.Tx) error {
	return execAll(tx,
		`ALTER TABLE data_sets ADD COLUMN status TEXT NOT NULL CHECK(status IN ('pending', 'complete', 'failed')) DEFAULT 'complete'`,
	)
}
