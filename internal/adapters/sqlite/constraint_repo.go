package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/canopy/internal/ports/secondary"
)

// ConstraintRepository implements secondary.ConstraintRepository with SQLite.
type ConstraintRepository struct {
	db *sql.DB
}

// NewConstraintRepository creates a new SQLite constraint repository.
func NewConstraintRepository(db *sql.DB) *ConstraintRepository {
	return &ConstraintRepository{db: db}
}

var _ secondary.ConstraintRepository = (*ConstraintRepository)(nil)

// Upsert writes a constraint, overwriting an existing record with the same ID.
func (r *ConstraintRepository) Upsert(ctx context.Context, rec *secondary.ConstraintRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("constraint ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO run_constraints (id, run_id, key, domain, label,
			value_kind, value_string, value_number, value_boolean, value_enum, value_json,
			provenance, source_id, snippet, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			key = excluded.key,
			domain = excluded.domain,
			label = excluded.label,
			value_kind = excluded.value_kind,
			value_string = excluded.value_string,
			value_number = excluded.value_number,
			value_boolean = excluded.value_boolean,
			value_enum = excluded.value_enum,
			value_json = excluded.value_json,
			provenance = excluded.provenance,
			source_id = excluded.source_id,
			snippet = excluded.snippet`,
		rec.ID, rec.RunID, rec.Key, nullString(rec.Domain), nullString(rec.Label),
		nullString(rec.ValueKind), rec.ValueString, rec.ValueNumber, boolPtrToInt(rec.ValueBoolean),
		rec.ValueEnum, rec.ValueJSON, rec.Provenance, nullString(rec.SourceID),
		nullString(rec.Snippet), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert constraint: %w", err)
	}

	return nil
}

// ListByRun retrieves every constraint belonging to a run.
func (r *ConstraintRepository) ListByRun(ctx context.Context, runID string) ([]*secondary.ConstraintRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, run_id, key, domain, label,
			value_kind, value_string, value_number, value_boolean, value_enum, value_json,
			provenance, source_id, snippet, created_at
		FROM run_constraints WHERE run_id = ? ORDER BY key, id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list constraints: %w", err)
	}
	defer rows.Close()

	var constraints []*secondary.ConstraintRecord
	for rows.Next() {
		var (
			domain, label, valueKind, sourceID, snippet sql.NullString
			valueBoolean                                sql.NullInt64
		)

		rec := &secondary.ConstraintRecord{}
		err := rows.Scan(&rec.ID, &rec.RunID, &rec.Key, &domain, &label,
			&valueKind, &rec.ValueString, &rec.ValueNumber, &valueBoolean,
			&rec.ValueEnum, &rec.ValueJSON, &rec.Provenance, &sourceID,
			&snippet, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan constraint: %w", err)
		}

		rec.Domain = domain.String
		rec.Label = label.String
		rec.ValueKind = valueKind.String
		rec.SourceID = sourceID.String
		rec.Snippet = snippet.String
		if valueBoolean.Valid {
			b := valueBoolean.Int64 != 0
			rec.ValueBoolean = &b
		}

		constraints = append(constraints, rec)
	}

	return constraints, rows.Err()
}
