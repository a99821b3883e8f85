package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/upshot/internal/ports/secondary"
)

// SyllabusRepository implements secondary.SyllabusRepository with SQLite.
type SyllabusRepository struct {
	db *sql.DB
}

// NewSyllabusRepository creates a new SQLite syllabus repository.
func NewSyllabusRepository(db *sql.DB) *SyllabusRepository {
	return &SyllabusRepository{db: db}
}

// childTables hold rows keyed by syllabus_id.
var childTables = []string{"requirement_prerequisites", "requirements", "syllabus_curves", "syllabus_issues"}

// Save stores a syllabus, replacing any syllabus with the same position and
// year. Upgraders assigned to it lose their derived snapshot.
func (r *SyllabusRepository) Save(ctx context.Context, syllabus *secondary.SyllabusRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := deleteSyllabus(ctx, tx,
		"SELECT id FROM syllabi WHERE id = ? OR (position = ? AND year = ?)",
		syllabus.ID, syllabus.Position, syllabus.Year,
	); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO syllabi (id, position, year, display_name, base_level) VALUES (?, ?, ?, ?, ?)",
		syllabus.ID, syllabus.Position, syllabus.Year, nullString(syllabus.DisplayName), syllabus.BaseLevel,
	)
	if err != nil {
		return fmt.Errorf("failed to create syllabus: %w", err)
	}

	for i, req := range syllabus.Requirements {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO requirements (syllabus_id, ordinal, name, display_name, kind, level, waived_by_default, sequence)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			syllabus.ID, i, req.Name, nullString(req.DisplayName), req.Kind, req.Level, req.WaivedByDefault, nullInt(req.Sequence),
		)
		if err != nil {
			return fmt.Errorf("failed to create requirement %q: %w", req.Name, err)
		}
		for j, prereq := range req.Prerequisites {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO requirement_prerequisites (syllabus_id, requirement_ordinal, ordinal, prerequisite) VALUES (?, ?, ?, ?)",
				syllabus.ID, i, j, prereq,
			)
			if err != nil {
				return fmt.Errorf("failed to create prerequisite of %q: %w", req.Name, err)
			}
		}
	}

	for _, c := range syllabus.Curves {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO syllabus_curves (syllabus_id, level, target_months, deadline_months) VALUES (?, ?, ?, ?)",
			syllabus.ID, c.Level, c.TargetMonths, c.DeadlineMonths,
		)
		if err != nil {
			return fmt.Errorf("failed to create curve for level %d: %w", c.Level, err)
		}
	}

	for i, issue := range syllabus.Issues {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO syllabus_issues (syllabus_id, ordinal, code, severity, requirement, detail) VALUES (?, ?, ?, ?, ?, ?)",
			syllabus.ID, i, issue.Code, issue.Severity, nullString(issue.Requirement), issue.Detail,
		)
		if err != nil {
			return fmt.Errorf("failed to record syllabus issue: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE upgraders SET "+clearDerived+" WHERE position = ? AND syllabus_year = ?",
		syllabus.Position, syllabus.Year,
	)
	if err != nil {
		return fmt.Errorf("failed to clear derived fields: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit syllabus: %w", err)
	}
	return nil
}

// deleteSyllabus removes every syllabus selected by query and its child rows.
func deleteSyllabus(ctx context.Context, tx *sql.Tx, query string, args ...any) error {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to find syllabus: %w", err)
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan syllabus id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()

	for _, id := range ids {
		for _, table := range childTables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE syllabus_id = ?", id); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		_, err := tx.ExecContext(ctx,
			`UPDATE upgraders SET `+clearDerived+`
			WHERE EXISTS (SELECT 1 FROM syllabi s WHERE s.id = ? AND s.position = upgraders.position AND s.year = upgraders.syllabus_year)`,
			id,
		)
		if err != nil {
			return fmt.Errorf("failed to clear derived fields: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM syllabi WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete syllabus: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a full syllabus by its ID.
func (r *SyllabusRepository) GetByID(ctx context.Context, id string) (*secondary.SyllabusRecord, error) {
	return r.get(ctx, id, "WHERE id = ?", id)
}

// GetByKey retrieves a full syllabus by position and year.
func (r *SyllabusRepository) GetByKey(ctx context.Context, position, year string) (*secondary.SyllabusRecord, error) {
	return r.get(ctx, position+" "+year, "WHERE position = ? AND year = ?", position, year)
}

func (r *SyllabusRepository) get(ctx context.Context, label, where string, args ...any) (*secondary.SyllabusRecord, error) {
	var (
		displayName sql.NullString
		createdAt   time.Time
		updatedAt   time.Time
	)

	record := &secondary.SyllabusRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, position, year, display_name, base_level, created_at, updated_at FROM syllabi "+where,
		args...,
	).Scan(&record.ID, &record.Position, &record.Year, &displayName, &record.BaseLevel, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("syllabus %s %w", label, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get syllabus: %w", err)
	}

	record.DisplayName = displayName.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)

	if err := r.loadRequirements(ctx, record); err != nil {
		return nil, err
	}
	if err := r.loadCurves(ctx, record); err != nil {
		return nil, err
	}
	if err := r.loadIssues(ctx, record); err != nil {
		return nil, err
	}
	record.RequirementCount = len(record.Requirements)

	return record, nil
}

func (r *SyllabusRepository) loadRequirements(ctx context.Context, record *secondary.SyllabusRecord) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, display_name, kind, level, waived_by_default, sequence
		FROM requirements WHERE syllabus_id = ? ORDER BY ordinal ASC`,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load requirements: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			displayName sql.NullString
			sequence    sql.NullInt64
		)
		req := secondary.RequirementRecord{}
		if err := rows.Scan(&req.Name, &displayName, &req.Kind, &req.Level, &req.WaivedByDefault, &sequence); err != nil {
			return fmt.Errorf("failed to scan requirement: %w", err)
		}
		req.DisplayName = displayName.String
		req.Sequence = intPtr(sequence)
		record.Requirements = append(record.Requirements, req)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to load requirements: %w", err)
	}

	prereqs, err := r.db.QueryContext(ctx,
		`SELECT requirement_ordinal, prerequisite FROM requirement_prerequisites
		WHERE syllabus_id = ? ORDER BY requirement_ordinal ASC, ordinal ASC`,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load prerequisites: %w", err)
	}
	defer prereqs.Close()

	for prereqs.Next() {
		var (
			ordinal int
			name    string
		)
		if err := prereqs.Scan(&ordinal, &name); err != nil {
			return fmt.Errorf("failed to scan prerequisite: %w", err)
		}
		if ordinal < 0 || ordinal >= len(record.Requirements) {
			continue
		}
		record.Requirements[ordinal].Prerequisites = append(record.Requirements[ordinal].Prerequisites, name)
	}
	return prereqs.Err()
}

func (r *SyllabusRepository) loadCurves(ctx context.Context, record *secondary.SyllabusRecord) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT level, target_months, deadline_months FROM syllabus_curves WHERE syllabus_id = ? ORDER BY level ASC",
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load curves: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c secondary.CurveRecord
		if err := rows.Scan(&c.Level, &c.TargetMonths, &c.DeadlineMonths); err != nil {
			return fmt.Errorf("failed to scan curve: %w", err)
		}
		record.Curves = append(record.Curves, c)
	}
	return rows.Err()
}

func (r *SyllabusRepository) loadIssues(ctx context.Context, record *secondary.SyllabusRecord) error {
	rows, err := r.db.QueryContext(ctx,
		"SELECT code, severity, requirement, detail FROM syllabus_issues WHERE syllabus_id = ? ORDER BY ordinal ASC",
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load syllabus issues: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			issue       secondary.IssueRecord
			requirement sql.NullString
		)
		if err := rows.Scan(&issue.Code, &issue.Severity, &requirement, &issue.Detail); err != nil {
			return fmt.Errorf("failed to scan syllabus issue: %w", err)
		}
		issue.Requirement = requirement.String
		record.Issues = append(record.Issues, issue)
	}
	return rows.Err()
}

// List retrieves syllabus headers ordered by position and year.
func (r *SyllabusRepository) List(ctx context.Context) ([]*secondary.SyllabusRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.id, s.position, s.year, s.display_name, s.base_level, s.created_at, s.updated_at,
			(SELECT COUNT(*) FROM requirements q WHERE q.syllabus_id = s.id)
		FROM syllabi s
		ORDER BY s.position ASC, s.year ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list syllabi: %w", err)
	}
	defer rows.Close()

	var syllabi []*secondary.SyllabusRecord
	for rows.Next() {
		var (
			displayName sql.NullString
			createdAt   time.Time
			updatedAt   time.Time
		)

		record := &secondary.SyllabusRecord{}
		err := rows.Scan(&record.ID, &record.Position, &record.Year, &displayName, &record.BaseLevel,
			&createdAt, &updatedAt, &record.RequirementCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan syllabus: %w", err)
		}

		record.DisplayName = displayName.String
		record.CreatedAt = createdAt.Format(time.RFC3339)
		record.UpdatedAt = updatedAt.Format(time.RFC3339)

		syllabi = append(syllabi, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list syllabi: %w", err)
	}

	return syllabi, nil
}

// Delete removes a syllabus and its child rows.
func (r *SyllabusRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM syllabi WHERE id = ?", id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check syllabus: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("syllabus %s %w", id, secondary.ErrNotFound)
	}

	if err := deleteSyllabus(ctx, tx, "SELECT id FROM syllabi WHERE id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// Ensure SyllabusRepository implements the interface
var _ secondary.SyllabusRepository = (*SyllabusRepository)(nil)
