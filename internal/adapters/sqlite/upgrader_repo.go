// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/upshot/internal/ports/secondary"
)

// UpgraderRepository implements secondary.UpgraderRepository with SQLite.
type UpgraderRepository struct {
	db *sql.DB
}

// NewUpgraderRepository creates a new SQLite upgrader repository.
func NewUpgraderRepository(db *sql.DB) *UpgraderRepository {
	return &UpgraderRepository{db: db}
}

const upgraderSelectCols = `id, name, display_name, rank, position, syllabus_year, target_level, start_date, on_waiver,
	derived_pqs_level, derived_events_level, derived_pqs_percent, derived_events_percent, derived_readiness,
	derived_pacing_days, derived_target_pacing_days, derived_projected_complete, derived_computed_at,
	created_at, updated_at`

// scanUpgrader scans an upgrader row into an UpgraderRecord.
func scanUpgrader(scanner interface {
	Scan(dest ...any) error
}) (*secondary.UpgraderRecord, error) {
	var (
		displayName       sql.NullString
		rank              sql.NullString
		startDate         sql.NullString
		pqsLevel          sql.NullInt64
		eventsLevel       sql.NullInt64
		pqsPercent        sql.NullFloat64
		eventsPercent     sql.NullFloat64
		readiness         sql.NullString
		pacingDays        sql.NullInt64
		targetPacingDays  sql.NullInt64
		projectedComplete sql.NullString
		computedAt        sql.NullTime
		createdAt         time.Time
		updatedAt         time.Time
	)

	record := &secondary.UpgraderRecord{}
	err := scanner.Scan(
		&record.ID, &record.Name, &displayName, &rank, &record.Position, &record.SyllabusYear,
		&record.TargetLevel, &startDate, &record.OnWaiver,
		&pqsLevel, &eventsLevel, &pqsPercent, &eventsPercent, &readiness,
		&pacingDays, &targetPacingDays, &projectedComplete, &computedAt,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	record.DisplayName = displayName.String
	record.Rank = rank.String
	record.StartDate = startDate.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	// derived_computed_at marks a snapshot that is stored and not yet cleared.
	if computedAt.Valid {
		record.Derived = &secondary.DerivedRecord{
			PQSLevel:          int(pqsLevel.Int64),
			EventsLevel:       int(eventsLevel.Int64),
			PQSPercent:        pqsPercent.Float64,
			EventsPercent:     eventsPercent.Float64,
			Readiness:         readiness.String,
			PacingDays:        intPtr(pacingDays),
			TargetPacingDays:  intPtr(targetPacingDays),
			ProjectedComplete: projectedComplete.String,
			ComputedAt:        formatTime(computedAt),
		}
	}

	return record, nil
}

// Save inserts an upgrader or updates its roster fields. An update clears
// the derived snapshot.
func (r *UpgraderRepository) Save(ctx context.Context, upgrader *secondary.UpgraderRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO upgraders (id, name, display_name, rank, position, syllabus_year, target_level, start_date, on_waiver)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			display_name = excluded.display_name,
			rank = excluded.rank,
			position = excluded.position,
			syllabus_year = excluded.syllabus_year,
			target_level = excluded.target_level,
			start_date = excluded.start_date,
			on_waiver = excluded.on_waiver,
			`+clearDerived+`,
			updated_at = CURRENT_TIMESTAMP`,
		upgrader.ID, upgrader.Name, nullString(upgrader.DisplayName), nullString(upgrader.Rank),
		upgrader.Position, upgrader.SyllabusYear, upgrader.TargetLevel, nullString(upgrader.StartDate),
		upgrader.OnWaiver,
	)
	if err != nil {
		return fmt.Errorf("failed to save upgrader: %w", err)
	}

	return nil
}

// GetByID retrieves an upgrader by its normalized ID.
func (r *UpgraderRepository) GetByID(ctx context.Context, id string) (*secondary.UpgraderRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+upgraderSelectCols+" FROM upgraders WHERE id = ?",
		id,
	)

	record, err := scanUpgrader(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("upgrader %s %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get upgrader: %w", err)
	}

	return record, nil
}

// List retrieves upgraders matching the given filters, ordered by ID.
func (r *UpgraderRepository) List(ctx context.Context, filters secondary.UpgraderFilters) ([]*secondary.UpgraderRecord, error) {
	query := "SELECT " + upgraderSelectCols + " FROM upgraders"
	var (
		where []string
		args  []any
	)
	if filters.Position != "" {
		where = append(where, "position = ?")
		args = append(args, filters.Position)
	}
	if filters.SyllabusYear != "" {
		where = append(where, "syllabus_year = ?")
		args = append(args, filters.SyllabusYear)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list upgraders: %w", err)
	}
	defer rows.Close()

	var upgraders []*secondary.UpgraderRecord
	for rows.Next() {
		record, err := scanUpgrader(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upgrader: %w", err)
		}
		upgraders = append(upgraders, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list upgraders: %w", err)
	}

	return upgraders, nil
}

// Delete removes an upgrader and, through the foreign key, its completions.
func (r *UpgraderRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Explicit delete so the result does not depend on PRAGMA foreign_keys.
	if _, err := tx.ExecContext(ctx, "DELETE FROM completions WHERE upgrader_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete completions: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM upgraders WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete upgrader: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("upgrader %s %w", id, secondary.ErrNotFound)
	}

	return tx.Commit()
}

// SaveDerived replaces the derived snapshot of an upgrader.
func (r *UpgraderRepository) SaveDerived(ctx context.Context, id string, derived *secondary.DerivedRecord) error {
	if derived == nil {
		return fmt.Errorf("derived snapshot for %s is nil", id)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE upgraders SET
			derived_pqs_level = ?,
			derived_events_level = ?,
			derived_pqs_percent = ?,
			derived_events_percent = ?,
			derived_readiness = ?,
			derived_pacing_days = ?,
			derived_target_pacing_days = ?,
			derived_projected_complete = ?,
			derived_computed_at = ?
		WHERE id = ?`,
		derived.PQSLevel, derived.EventsLevel, derived.PQSPercent, derived.EventsPercent,
		nullString(derived.Readiness), nullInt(derived.PacingDays), nullInt(derived.TargetPacingDays),
		nullString(derived.ProjectedComplete), nullTime(derived.ComputedAt),
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to save derived fields: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("upgrader %s %w", id, secondary.ErrNotFound)
	}

	return nil
}

// Ensure UpgraderRepository implements the interface
var _ secondary.UpgraderRepository = (*UpgraderRepository)(nil)
