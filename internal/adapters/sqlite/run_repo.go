// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/canopy/internal/core/run"
	"github.com/example/canopy/internal/ports/secondary"
)

// RunRepository implements secondary.RunRepository with SQLite.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new SQLite run repository.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

var _ secondary.RunRepository = (*RunRepository)(nil)

// Create persists a new run.
// The record must have ID, Status, and timestamps pre-populated by the
// service layer.
func (r *RunRepository) Create(ctx context.Context, rec *secondary.RunRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("run ID must be pre-populated by service layer")
	}
	if rec.Status == "" {
		return fmt.Errorf("run Status must be pre-populated by service layer")
	}

	var committedAt sql.NullString
	if rec.CommittedAt != "" {
		committedAt = sql.NullString{String: rec.CommittedAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO runs (id, scope_id, status, allow_partial, committed_at, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		rec.ID, rec.ScopeID, rec.Status, rec.AllowPartial, committedAt, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*secondary.RunRecord, error) {
	var committedAt sql.NullString

	rec := &secondary.RunRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, scope_id, status, allow_partial, committed_at, created_at, updated_at FROM runs WHERE id = ?",
		id,
	).Scan(&rec.ID, &rec.ScopeID, &rec.Status, &rec.AllowPartial, &committedAt, &rec.CreatedAt, &rec.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, secondary.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	rec.CommittedAt = committedAt.String

	return rec, nil
}

// ListByScope retrieves every run belonging to a scope, newest first.
func (r *RunRepository) ListByScope(ctx context.Context, scopeID string) ([]*secondary.RunRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, scope_id, status, allow_partial, committed_at, created_at, updated_at FROM runs WHERE scope_id = ? ORDER BY created_at DESC, id DESC",
		scopeID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*secondary.RunRecord
	for rows.Next() {
		var committedAt sql.NullString

		rec := &secondary.RunRecord{}
		err := rows.Scan(&rec.ID, &rec.ScopeID, &rec.Status, &rec.AllowPartial, &committedAt, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		rec.CommittedAt = committedAt.String
		runs = append(runs, rec)
	}

	return runs, rows.Err()
}

// Commit atomically transitions a draft run to the given terminal status.
// The WHERE status = 'draft' guard makes the transition a compare-and-swap:
// of two concurrent committers exactly one sees a row update, the other
// gets ErrNotDraft.
func (r *RunRepository) Commit(ctx context.Context, id, status, committedAt string, allowPartial bool) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE runs SET status = ?, allow_partial = ?, committed_at = ?, updated_at = ? WHERE id = ? AND status = ?",
		status, allowPartial, committedAt, committedAt, id, run.StatusDraft,
	)
	if err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check commit result: %w", err)
	}
	if affected == 0 {
		// Either the run doesn't exist or it already left draft.
		var exists int
		if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE id = ?", id).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check run existence: %w", err)
		}
		if exists == 0 {
			return secondary.ErrNotFound
		}
		return secondary.ErrNotDraft
	}

	return nil
}

// Touch bumps the run's updatedAt without any other change.
func (r *RunRepository) Touch(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE runs SET updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now') WHERE id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to touch run: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check touch result: %w", err)
	}
	if affected == 0 {
		return secondary.ErrNotFound
	}

	return nil
}

// GetNextID returns the next available run ID in RUN-NNN format.
func (r *RunRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT MAX(id) FROM runs WHERE id LIKE 'RUN-%'",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get max run ID: %w", err)
	}

	if !maxID.Valid {
		return run.GenerateRunID(0), nil
	}

	num := run.ParseRunNumber(maxID.String)
	if num < 0 {
		return "", fmt.Errorf("malformed run ID %q in database", maxID.String)
	}

	return run.GenerateRunID(num), nil
}
