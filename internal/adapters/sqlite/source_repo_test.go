package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/canopy/internal/adapters/sqlite"
	"github.com/example/canopy/internal/ports/secondary"
)

func TestSourceRepository_UpsertAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSourceRepository(db)
	ctx := context.Background()

	seedRun(t, db, "RUN-001", "", "")

	rec := &secondary.SourceRecord{
		ID:          "SRC-001",
		RunID:       "RUN-001",
		Kind:        "url",
		Title:       "Setback ordinance 14-302",
		URI:         "https://example.gov/ordinances/14-302",
		ParseStatus: "pending",
		CreatedAt:   testStamp,
	}
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "SRC-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Setback ordinance 14-302" {
		t.Errorf("unexpected title %q", got.Title)
	}
	if got.URI != rec.URI {
		t.Errorf("unexpected URI %q", got.URI)
	}
	if got.FileRef != "" || got.MimeType != "" || got.SizeBytes != 0 {
		t.Error("expected file fields to stay empty for a url source")
	}
}

func TestSourceRepository_Upsert_Overwrites(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSourceRepository(db)
	ctx := context.Background()

	seedRun(t, db, "RUN-001", "", "")

	rec := &secondary.SourceRecord{
		ID:          "SRC-001",
		RunID:       "RUN-001",
		Kind:        "file",
		Title:       "Soil survey",
		ParseStatus: "pending",
		CreatedAt:   testStamp,
	}
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}

	rec.Title = "Soil survey (revised)"
	rec.Excerpt = "Predominantly loam with clay pockets"
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "SRC-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Soil survey (revised)" {
		t.Errorf("expected overwritten title, got %q", got.Title)
	}
	if got.Excerpt != rec.Excerpt {
		t.Errorf("expected excerpt persisted, got %q", got.Excerpt)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row after upsert, got %d", count)
	}
}

func TestSourceRepository_ListByRun(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSourceRepository(db)
	ctx := context.Background()

	seedRun(t, db, "RUN-001", "", "")
	seedRun(t, db, "RUN-002", "", "")
	seedSource(t, db, "SRC-001", "RUN-001")
	seedSource(t, db, "SRC-002", "RUN-001")
	seedSource(t, db, "SRC-003", "RUN-002")

	sources, err := repo.ListByRun(ctx, "RUN-001")
	if err != nil {
		t.Fatalf("ListByRun failed: %v", err)
	}
	if len(sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(sources))
	}
	if sources[0].ID != "SRC-001" || sources[1].ID != "SRC-002" {
		t.Errorf("unexpected order: %s, %s", sources[0].ID, sources[1].ID)
	}
}

func TestSourceRepository_UpdateParseStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewSourceRepository(db)
	ctx := context.Background()

	seedRun(t, db, "RUN-001", "", "")
	seedSource(t, db, "SRC-001", "RUN-001")

	if err := repo.UpdateParseStatus(ctx, "SRC-001", "parsed"); err != nil {
		t.Fatalf("UpdateParseStatus failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "SRC-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ParseStatus != "parsed" {
		t.Errorf("expected parse status parsed, got %s", got.ParseStatus)
	}

	err = repo.UpdateParseStatus(ctx, "SRC-999", "failed")
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
