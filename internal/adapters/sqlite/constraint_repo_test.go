package sqlite_test

import (
	"context"
	"testing"

	"github.com/example/canopy/internal/adapters/sqlite"
	"github.com/example/canopy/internal/ports/secondary"
)

func TestConstraintRepository_UpsertAndList(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewConstraintRepository(db)
	ctx := context.Background()

	seedRun(t, db, "RUN-001", "", "")
	seedSource(t, db, "SRC-001", "RUN-001")

	rec := &secondary.ConstraintRecord{
		ID:          "CON-001",
		RunID:       "RUN-001",
		Key:         "regulatory.setback_m",
		Domain:      "regulatory",
		ValueKind:   "number",
		ValueNumber: numPtr(4.5),
		Provenance:  "source_backed",
		SourceID:    "SRC-001",
		Snippet:     "minimum setback of 4.5 metres from the curb",
		CreatedAt:   testStamp,
	}
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	constraints, err := repo.ListByRun(ctx, "RUN-001")
	if err != nil {
		t.Fatalf("ListByRun failed: %v", err)
	}
	if len(constraints) != 1 {
		t.Fatalf("expected 1 constraint, got %d", len(constraints))
	}

	got := constraints[0]
	if got.Key != "regulatory.setback_m" {
		t.Errorf("unexpected key %q", got.Key)
	}
	if got.ValueNumber == nil || *got.ValueNumber != 4.5 {
		t.Error("number value did not round-trip")
	}
	if got.SourceID != "SRC-001" {
		t.Errorf("unexpected source reference %q", got.SourceID)
	}
	if got.Snippet != rec.Snippet {
		t.Errorf("unexpected snippet %q", got.Snippet)
	}
}

func TestConstraintRepository_ListByRun_KeyOrder(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewConstraintRepository(db)
	ctx := context.Background()

	seedRun(t, db, "RUN-001", "", "")

	// Same key twice under different IDs is allowed for constraints; the
	// read side resolves duplicates. Insert out of order to check sorting.
	for _, c := range []struct{ id, key string }{
		{"CON-003", "site.soil_type"},
		{"CON-001", "regulatory.setback_m"},
		{"CON-002", "regulatory.setback_m"},
	} {
		rec := &secondary.ConstraintRecord{
			ID:         c.id,
			RunID:      "RUN-001",
			Key:        c.key,
			ValueKind:  "string",
			ValueString: strPtr("x"),
			Provenance: "user_entered",
			CreatedAt:  testStamp,
		}
		if err := repo.Upsert(ctx, rec); err != nil {
			t.Fatalf("Upsert %s failed: %v", c.id, err)
		}
	}

	constraints, err := repo.ListByRun(ctx, "RUN-001")
	if err != nil {
		t.Fatalf("ListByRun failed: %v", err)
	}
	if len(constraints) != 3 {
		t.Fatalf("expected 3 constraints, got %d", len(constraints))
	}
	wantOrder := []string{"CON-001", "CON-002", "CON-003"}
	for i, want := range wantOrder {
		if constraints[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, constraints[i].ID)
		}
	}
}

func TestConstraintRepository_Upsert_NoEvidence(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewConstraintRepository(db)
	ctx := context.Background()

	seedRun(t, db, "RUN-001", "", "")

	rec := &secondary.ConstraintRecord{
		ID:          "CON-001",
		RunID:       "RUN-001",
		Key:         "equity.priority_zone",
		ValueKind:   "boolean",
		Provenance:  "user_entered",
		CreatedAt:   testStamp,
	}
	tr := true
	rec.ValueBoolean = &tr
	if err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	constraints, err := repo.ListByRun(ctx, "RUN-001")
	if err != nil {
		t.Fatalf("ListByRun failed: %v", err)
	}
	if constraints[0].SourceID != "" {
		t.Errorf("expected empty source reference, got %q", constraints[0].SourceID)
	}
	if constraints[0].ValueBoolean == nil || !*constraints[0].ValueBoolean {
		t.Error("boolean value did not round-trip")
	}
}
