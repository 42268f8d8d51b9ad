package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/canopy/internal/ports/secondary"
)

// InputRepository implements secondary.InputRepository with SQLite.
type InputRepository struct {
	db *sql.DB
}

// NewInputRepository creates a new SQLite input repository.
func NewInputRepository(db *sql.DB) *InputRepository {
	return &InputRepository{db: db}
}

var _ secondary.InputRepository = (*InputRepository)(nil)

// Upsert writes an input, overwriting an existing record with the same ID.
// The UNIQUE(run_id, pointer) constraint rejects a second input answering
// the same pointer under a different ID.
func (r *InputRepository) Upsert(ctx context.Context, rec *secondary.InputRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("input ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inputs (id, run_id, pointer, label, domain, required, field_type, options_json,
			value_kind, value_string, value_number, value_boolean, value_enum, value_json,
			provenance, snippet, updated_by, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			pointer = excluded.pointer,
			label = excluded.label,
			domain = excluded.domain,
			required = excluded.required,
			field_type = excluded.field_type,
			options_json = excluded.options_json,
			value_kind = excluded.value_kind,
			value_string = excluded.value_string,
			value_number = excluded.value_number,
			value_boolean = excluded.value_boolean,
			value_enum = excluded.value_enum,
			value_json = excluded.value_json,
			provenance = excluded.provenance,
			snippet = excluded.snippet,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at`,
		rec.ID, rec.RunID, rec.Pointer, nullString(rec.Label), rec.Domain, rec.Required,
		rec.FieldType, nullString(rec.OptionsJSON), nullString(rec.ValueKind),
		rec.ValueString, rec.ValueNumber, boolPtrToInt(rec.ValueBoolean), rec.ValueEnum, rec.ValueJSON,
		rec.Provenance, nullString(rec.Snippet), rec.UpdatedBy, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert input: %w", err)
	}

	return nil
}

// GetByID retrieves an input by its ID.
func (r *InputRepository) GetByID(ctx context.Context, id string) (*secondary.InputRecord, error) {
	rec, err := scanInput(r.db.QueryRowContext(ctx,
		"SELECT "+inputColumns+" FROM inputs WHERE id = ?",
		id,
	))
	if err == sql.ErrNoRows {
		return nil, secondary.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get input: %w", err)
	}

	return rec, nil
}

// ListByRun retrieves every input belonging to a run, ordered by pointer for
// stable output.
func (r *InputRepository) ListByRun(ctx context.Context, runID string) ([]*secondary.InputRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+inputColumns+" FROM inputs WHERE run_id = ? ORDER BY pointer",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list inputs: %w", err)
	}
	defer rows.Close()

	var inputs []*secondary.InputRecord
	for rows.Next() {
		rec, err := scanInput(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan input: %w", err)
		}
		inputs = append(inputs, rec)
	}

	return inputs, rows.Err()
}

// LinkSource records an evidence link between an input and a source.
// Linking the same pair twice is a no-op.
func (r *InputRepository) LinkSource(ctx context.Context, inputID, sourceID string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO input_sources (input_id, source_id, created_at) VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now')) ON CONFLICT(input_id, source_id) DO NOTHING",
		inputID, sourceID,
	)
	if err != nil {
		return fmt.Errorf("failed to link input to source: %w", err)
	}

	return nil
}

// ListLinks retrieves all evidence links for a run's inputs.
func (r *InputRepository) ListLinks(ctx context.Context, runID string) ([]*secondary.InputSourceLink, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT l.input_id, l.source_id
		FROM input_sources l
		JOIN inputs i ON i.id = l.input_id
		WHERE i.run_id = ?
		ORDER BY l.input_id, l.source_id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list input-source links: %w", err)
	}
	defer rows.Close()

	var links []*secondary.InputSourceLink
	for rows.Next() {
		link := &secondary.InputSourceLink{}
		if err := rows.Scan(&link.InputID, &link.SourceID); err != nil {
			return nil, fmt.Errorf("failed to scan input-source link: %w", err)
		}
		links = append(links, link)
	}

	return links, rows.Err()
}

const inputColumns = `id, run_id, pointer, label, domain, required, field_type, options_json,
	value_kind, value_string, value_number, value_boolean, value_enum, value_json,
	provenance, snippet, updated_by, updated_at`

func scanInput(row rowScanner) (*secondary.InputRecord, error) {
	var (
		label, optionsJSON, valueKind, snippet sql.NullString
		valueBoolean                           sql.NullInt64
	)

	rec := &secondary.InputRecord{}
	err := row.Scan(&rec.ID, &rec.RunID, &rec.Pointer, &label, &rec.Domain, &rec.Required,
		&rec.FieldType, &optionsJSON, &valueKind,
		&rec.ValueString, &rec.ValueNumber, &valueBoolean, &rec.ValueEnum, &rec.ValueJSON,
		&rec.Provenance, &snippet, &rec.UpdatedBy, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rec.Label = label.String
	rec.OptionsJSON = optionsJSON.String
	rec.ValueKind = valueKind.String
	rec.Snippet = snippet.String
	if valueBoolean.Valid {
		b := valueBoolean.Int64 != 0
		rec.ValueBoolean = &b
	}

	return rec, nil
}

// boolPtrToInt maps a nullable bool to the INTEGER column representation.
func boolPtrToInt(b *bool) any {
	if b == nil {
		return nil
	}
	if *b {
		return 1
	}
	return 0
}
