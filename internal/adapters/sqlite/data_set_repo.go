package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/upshot/internal/ports/secondary"
)

// DataSetRepository implements secondary.DataSetRepository with SQLite.
type DataSetRepository struct {
	db *sql.DB
}

// NewDataSetRepository creates a new SQLite data set repository.
func NewDataSetRepository(db *sql.DB) *DataSetRepository {
	return &DataSetRepository{db: db}
}

// Create persists a data set together with its unmatched names. An empty
// status is stored as pending.
func (r *DataSetRepository) Create(ctx context.Context, dataSet *secondary.DataSetRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	status := dataSet.Status
	if status == "" {
		status = secondary.DataSetPending
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO data_sets (id, name, sources, records, matched, added, replaced, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		dataSet.ID, dataSet.Name, dataSet.Sources, dataSet.Records, dataSet.Matched, dataSet.Added, dataSet.Replaced, status,
	)
	if err != nil {
		return fmt.Errorf("failed to create data set: %w", err)
	}

	for _, u := range dataSet.Unmatched {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO data_set_unmatched (data_set_id, name, closest, score, records) VALUES (?, ?, ?, ?, ?)",
			dataSet.ID, u.Name, nullString(u.Closest), u.Score, u.Records,
		)
		if err != nil {
			return fmt.Errorf("failed to record unmatched name %q: %w", u.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit data set: %w", err)
	}
	return nil
}

// Finish records the outcome of an import and the merge totals reached.
func (r *DataSetRepository) Finish(ctx context.Context, id, status string, added, replaced int) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE data_sets SET status = ?, added = ?, replaced = ? WHERE id = ?",
		status, added, replaced, id,
	)
	if err != nil {
		return fmt.Errorf("failed to finish data set: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("data set %s %w", id, secondary.ErrNotFound)
	}
	return nil
}

// GetByID retrieves a data set by its ID.
func (r *DataSetRepository) GetByID(ctx context.Context, id string) (*secondary.DataSetRecord, error) {
	var createdAt time.Time

	record := &secondary.DataSetRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, sources, records, matched, added, replaced, status, created_at FROM data_sets WHERE id = ?",
		id,
	).Scan(&record.ID, &record.Name, &record.Sources, &record.Records, &record.Matched, &record.Added, &record.Replaced, &record.Status, &createdAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("data set %s %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get data set: %w", err)
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)

	rows, err := r.db.QueryContext(ctx,
		"SELECT name, closest, score, records FROM data_set_unmatched WHERE data_set_id = ? ORDER BY name ASC",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load unmatched names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			u       secondary.UnmatchedRecord
			closest sql.NullString
		)
		if err := rows.Scan(&u.Name, &closest, &u.Score, &u.Records); err != nil {
			return nil, fmt.Errorf("failed to scan unmatched name: %w", err)
		}
		u.Closest = closest.String
		record.Unmatched = append(record.Unmatched, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load unmatched names: %w", err)
	}

	return record, nil
}

// List retrieves data sets, newest first. Unmatched names are not loaded.
func (r *DataSetRepository) List(ctx context.Context) ([]*secondary.DataSetRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, sources, records, matched, added, replaced, status, created_at FROM data_sets ORDER BY created_at DESC, rowid DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list data sets: %w", err)
	}
	defer rows.Close()

	var dataSets []*secondary.DataSetRecord
	for rows.Next() {
		var createdAt time.Time

		record := &secondary.DataSetRecord{}
		err := rows.Scan(&record.ID, &record.Name, &record.Sources, &record.Records, &record.Matched, &record.Added, &record.Replaced, &record.Status, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan data set: %w", err)
		}
		record.CreatedAt = createdAt.Format(time.RFC3339)

		dataSets = append(dataSets, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list data sets: %w", err)
	}

	return dataSets, nil
}

// Ensure DataSetRepository implements the interface
var _ secondary.DataSetRepository = (*DataSetRepository)(nil)
