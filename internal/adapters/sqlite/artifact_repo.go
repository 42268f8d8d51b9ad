package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/canopy/internal/ports/secondary"
)

// ArtifactRepository implements secondary.ArtifactRepository with SQLite.
type ArtifactRepository struct {
	db *sql.DB
}

// NewArtifactRepository creates a new SQLite artifact repository.
func NewArtifactRepository(db *sql.DB) *ArtifactRepository {
	return &ArtifactRepository{db: db}
}

var _ secondary.ArtifactRepository = (*ArtifactRepository)(nil)

// Upsert writes an artifact, overwriting an existing record with the same ID.
func (r *ArtifactRepository) Upsert(ctx context.Context, rec *secondary.ArtifactRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("artifact ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, run_id, artifact_type, title, uri, superseded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			artifact_type = excluded.artifact_type,
			title = excluded.title,
			uri = excluded.uri,
			superseded = excluded.superseded`,
		rec.ID, rec.RunID, rec.Kind, rec.Title, nullString(rec.URI), rec.Superseded, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert artifact: %w", err)
	}

	return nil
}

// ListByRun retrieves every artifact belonging to a run.
func (r *ArtifactRepository) ListByRun(ctx context.Context, runID string) ([]*secondary.ArtifactRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, run_id, artifact_type, title, uri, superseded, created_at FROM artifacts WHERE run_id = ? ORDER BY created_at, id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []*secondary.ArtifactRecord
	for rows.Next() {
		var uri sql.NullString

		rec := &secondary.ArtifactRecord{}
		err := rows.Scan(&rec.ID, &rec.RunID, &rec.Kind, &rec.Title, &uri, &rec.Superseded, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}

		rec.URI = uri.String
		artifacts = append(artifacts, rec)
	}

	return artifacts, rows.Err()
}

// MarkSuperseded flags an artifact as replaced without deleting the row.
func (r *ArtifactRepository) MarkSuperseded(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE artifacts SET superseded = 1 WHERE id = ?",
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark artifact superseded: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check supersede result: %w", err)
	}
	if affected == 0 {
		return secondary.ErrNotFound
	}

	return nil
}
