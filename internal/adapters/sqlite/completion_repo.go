package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/upshot/internal/ports/secondary"
)

// CompletionRepository implements secondary.CompletionRepository with SQLite.
type CompletionRepository struct {
	db *sql.DB
}

// NewCompletionRepository creates a new SQLite completion repository.
func NewCompletionRepository(db *sql.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// ListByUpgrader returns an upgrader's completions in merge order.
func (r *CompletionRepository) ListByUpgrader(ctx context.Context, upgraderID string) ([]*secondary.CompletionRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT upgrader_id, event, completed_on, instructor, grade, status, data_set_id
		FROM completions WHERE upgrader_id = ? ORDER BY ordinal ASC`,
		upgraderID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	var completions []*secondary.CompletionRecord
	for rows.Next() {
		var completedOn, instructor, grade, status, dataSetID sql.NullString

		record := &secondary.CompletionRecord{}
		if err := rows.Scan(&record.UpgraderID, &record.Event, &completedOn, &instructor, &grade, &status, &dataSetID); err != nil {
			return nil, fmt.Errorf("failed to scan completion: %w", err)
		}

		record.CompletedOn = completedOn.String
		record.Instructor = instructor.String
		record.Grade = grade.String
		record.Status = status.String
		record.DataSetID = dataSetID.String

		completions = append(completions, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}

	return completions, nil
}

// Replace atomically replaces all completions of an upgrader. The slice
// order becomes the stored merge order. The derived snapshot is cleared in
// the same transaction.
func (r *CompletionRepository) Replace(ctx context.Context, upgraderID string, completions []*secondary.CompletionRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM upgraders WHERE id = ?", upgraderID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check upgrader: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("upgrader %s %w", upgraderID, secondary.ErrNotFound)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM completions WHERE upgrader_id = ?", upgraderID); err != nil {
		return fmt.Errorf("failed to clear completions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO completions (upgrader_id, ordinal, event, completed_on, instructor, grade, status, data_set_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare completion insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range completions {
		_, err := stmt.ExecContext(ctx,
			upgraderID, i, c.Event, nullString(c.CompletedOn), nullString(c.Instructor),
			nullString(c.Grade), nullString(c.Status), nullString(c.DataSetID),
		)
		if err != nil {
			return fmt.Errorf("failed to insert completion %q: %w", c.Event, err)
		}
	}

	if _, err := tx.ExecContext(ctx, "UPDATE upgraders SET "+clearDerived+" WHERE id = ?", upgraderID); err != nil {
		return fmt.Errorf("failed to clear derived fields: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit completions: %w", err)
	}
	return nil
}

// CountByDataSet returns how many stored completions came from a data set.
func (r *CompletionRepository) CountByDataSet(ctx context.Context, dataSetID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM completions WHERE data_set_id = ?",
		dataSetID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}
	return count, nil
}

// Ensure CompletionRepository implements the interface
var _ secondary.CompletionRepository = (*CompletionRepository)(nil)
