package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/example/canopy/internal/ports/secondary"
)

// SourceRepository implements secondary.SourceRepository with SQLite.
type SourceRepository struct {
	db *sql.DB
}

// NewSourceRepository creates a new SQLite source repository.
func NewSourceRepository(db *sql.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

var _ secondary.SourceRepository = (*SourceRepository)(nil)

// Upsert writes a source, overwriting an existing record with the same ID.
func (r *SourceRepository) Upsert(ctx context.Context, rec *secondary.SourceRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("source ID must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sources (id, run_id, kind, title, uri, file_ref, mime_type, size_bytes, parse_status, excerpt, raw_metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			title = excluded.title,
			uri = excluded.uri,
			file_ref = excluded.file_ref,
			mime_type = excluded.mime_type,
			size_bytes = excluded.size_bytes,
			parse_status = excluded.parse_status,
			excerpt = excluded.excerpt,
			raw_metadata = excluded.raw_metadata`,
		rec.ID, rec.RunID, rec.Kind, rec.Title,
		nullString(rec.URI), nullString(rec.FileRef), nullString(rec.MimeType),
		nullInt64(rec.SizeBytes), rec.ParseStatus, nullString(rec.Excerpt),
		nullString(rec.RawMetadata), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert source: %w", err)
	}

	return nil
}

// GetByID retrieves a source by its ID.
func (r *SourceRepository) GetByID(ctx context.Context, id string) (*secondary.SourceRecord, error) {
	rec, err := scanSource(r.db.QueryRowContext(ctx,
		"SELECT id, run_id, kind, title, uri, file_ref, mime_type, size_bytes, parse_status, excerpt, raw_metadata, created_at FROM sources WHERE id = ?",
		id,
	))
	if err == sql.ErrNoRows {
		return nil, secondary.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get source: %w", err)
	}

	return rec, nil
}

// ListByRun retrieves every source belonging to a run.
func (r *SourceRepository) ListByRun(ctx context.Context, runID string) ([]*secondary.SourceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, run_id, kind, title, uri, file_ref, mime_type, size_bytes, parse_status, excerpt, raw_metadata, created_at FROM sources WHERE run_id = ? ORDER BY created_at, id",
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []*secondary.SourceRecord
	for rows.Next() {
		rec, err := scanSource(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan source: %w", err)
		}
		sources = append(sources, rec)
	}

	return sources, rows.Err()
}

// UpdateParseStatus records what the extractor made of the source.
func (r *SourceRepository) UpdateParseStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE sources SET parse_status = ? WHERE id = ?",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update parse status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check parse status result: %w", err)
	}
	if affected == 0 {
		return secondary.ErrNotFound
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*secondary.SourceRecord, error) {
	var (
		uri, fileRef, mimeType, excerpt, rawMetadata sql.NullString
		sizeBytes                                    sql.NullInt64
	)

	rec := &secondary.SourceRecord{}
	err := row.Scan(&rec.ID, &rec.RunID, &rec.Kind, &rec.Title, &uri, &fileRef, &mimeType, &sizeBytes, &rec.ParseStatus, &excerpt, &rawMetadata, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	rec.URI = uri.String
	rec.FileRef = fileRef.String
	rec.MimeType = mimeType.String
	rec.SizeBytes = sizeBytes.Int64
	rec.Excerpt = excerpt.String
	rec.RawMetadata = rawMetadata.String

	return rec, nil
}

// nullString maps "" to NULL so empty optionals don't masquerade as values.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullInt64 maps 0 to NULL; sizes and counts are never legitimately zero here.
func nullInt64(n int64) sql.NullInt64 {
	if n == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: n, Valid: true}
}
