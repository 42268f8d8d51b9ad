package app

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/example/canopy/internal/core/fact"
	"github.com/example/canopy/internal/core/run"
	"github.com/example/canopy/internal/core/view"
	"github.com/example/canopy/internal/ports/primary"
)

// seedCommittedContext populates a committed run with one source, one
// evidence-backed input, two constraints, and one artifact, returning the
// generated source ID.
func seedCommittedContext(t *testing.T, f *contextFixture, runID string) string {
	t.Helper()
	ctx := context.Background()
	intake := f.intakeFixture.svc

	f.runs.seedRun(runID, "ward-7", run.StatusDraft, "")

	srcIDs, err := intake.UpsertSources(ctx, runID, []fact.Source{
		{Kind: fact.SourceKindFile, Title: "Soil survey", ParseStatus: fact.ParseStatusParsed},
	})
	if err != nil {
		t.Fatalf("UpsertSources failed: %v", err)
	}
	if _, err := intake.UpsertInputs(ctx, runID, []fact.Input{
		{
			Pointer:    "site.soil_type",
			Domain:     fact.DomainSite,
			FieldType:  fact.FieldTypeSelect,
			Value:      fact.EnumValue("loam"),
			Provenance: fact.ProvenanceSourceBacked,
			SourceIDs:  []string{srcIDs[0]},
			UpdatedBy:  fact.ActorModel,
		},
	}); err != nil {
		t.Fatalf("UpsertInputs failed: %v", err)
	}
	if _, err := intake.UpsertConstraints(ctx, runID, []fact.Constraint{
		{Key: "regulatory.setback_m", Domain: fact.DomainRegulatory, Value: fact.NumberValue(4.5), Provenance: fact.ProvenanceUserEntered},
		{Key: "equity.priority_score", Domain: fact.DomainEquity, Value: fact.NumberValue(0.8), Provenance: fact.ProvenanceModelInferred},
	}); err != nil {
		t.Fatalf("UpsertConstraints failed: %v", err)
	}
	if _, err := intake.AddArtifacts(ctx, runID, []fact.Artifact{
		{Kind: "summary", Title: "Intake summary"},
	}); err != nil {
		t.Fatalf("AddArtifacts failed: %v", err)
	}
	if _, err := intake.CommitRun(ctx, primary.CommitRunRequest{RunID: runID}); err != nil {
		t.Fatalf("CommitRun failed: %v", err)
	}
	return srcIDs[0]
}

func TestContextService_Resolve(t *testing.T) {
	f := newContextFixture()
	srcID := seedCommittedContext(t, f, "RUN-001")

	v, err := f.svc.Resolve(context.Background(), "ward-7", primary.ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	if v.Run.ID != "RUN-001" {
		t.Errorf("expected RUN-001, got %s", v.Run.ID)
	}
	if _, ok := v.SourcesByID[srcID]; !ok {
		t.Errorf("expected source %s in view", srcID)
	}
	in, ok := v.InputsByPointer["site.soil_type"]
	if !ok {
		t.Fatal("expected site.soil_type input in view")
	}
	if len(in.SourceIDs) != 1 || in.SourceIDs[0] != srcID {
		t.Errorf("expected evidence link carried into the view, got %v", in.SourceIDs)
	}
	// Constraints come back in (key, id) order regardless of write order.
	if len(v.Constraints) != 2 {
		t.Fatalf("expected 2 constraints, got %d", len(v.Constraints))
	}
	if v.Constraints[0].Key != "equity.priority_score" || v.Constraints[1].Key != "regulatory.setback_m" {
		t.Errorf("constraints not in canonical order: %s, %s", v.Constraints[0].Key, v.Constraints[1].Key)
	}
	if len(v.ArtifactsByType["summary"]) != 1 {
		t.Errorf("expected one summary artifact, got %d", len(v.ArtifactsByType["summary"]))
	}
}

func TestContextService_Resolve_PicksLatestCommit(t *testing.T) {
	f := newContextFixture()
	f.runs.seedRun("RUN-001", "ward-7", run.StatusCommitted, "2026-02-01T10:00:00Z")
	f.runs.seedRun("RUN-002", "ward-7", run.StatusCommitted, "2026-02-15T10:00:00Z")
	f.runs.seedRun("RUN-003", "ward-7", run.StatusDraft, "")

	v, err := f.svc.Resolve(context.Background(), "ward-7", primary.ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if v.Run.ID != "RUN-002" {
		t.Errorf("expected latest committed run RUN-002, got %s", v.Run.ID)
	}
}

func TestContextService_Resolve_PinnedRun(t *testing.T) {
	f := newContextFixture()
	f.runs.seedRun("RUN-001", "ward-7", run.StatusCommitted, "2026-02-01T10:00:00Z")
	f.runs.seedRun("RUN-002", "ward-7", run.StatusCommitted, "2026-02-15T10:00:00Z")

	v, err := f.svc.Resolve(context.Background(), "ward-7", primary.ResolveOptions{RunID: "RUN-001"})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if v.Run.ID != "RUN-001" {
		t.Errorf("expected pinned RUN-001, got %s", v.Run.ID)
	}
}

func TestContextService_Resolve_PreferLatestOverridesPin(t *testing.T) {
	f := newContextFixture()
	f.runs.seedRun("RUN-001", "ward-7", run.StatusCommitted, "2026-02-01T10:00:00Z")
	f.runs.seedRun("RUN-002", "ward-7", run.StatusCommitted, "2026-02-15T10:00:00Z")

	v, err := f.svc.Resolve(context.Background(), "ward-7", primary.ResolveOptions{
		RunID:  "RUN-001",
		Prefer: primary.PreferLatestCommit,
	})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if v.Run.ID != "RUN-002" {
		t.Errorf("expected latest commit despite pin, got %s", v.Run.ID)
	}
}

func TestContextService_Resolve_PinnedDraftRefused(t *testing.T) {
	f := newContextFixture()
	f.runs.seedRun("RUN-001", "ward-7", run.StatusDraft, "")

	if _, err := f.svc.Resolve(context.Background(), "ward-7", primary.ResolveOptions{RunID: "RUN-001"}); err == nil {
		t.Fatal("expected pinned draft to be refused")
	}
}

func TestContextService_Resolve_PinnedScopeMismatch(t *testing.T) {
	f := newContextFixture()
	f.runs.seedRun("RUN-001", "ward-3", run.StatusCommitted, fixedStamp)

	if _, err := f.svc.Resolve(context.Background(), "ward-7", primary.ResolveOptions{RunID: "RUN-001"}); err == nil {
		t.Fatal("expected cross-scope pin to be refused")
	}
}

func TestContextService_Resolve_NoCommittedContext(t *testing.T) {
	f := newContextFixture()
	f.runs.seedRun("RUN-001", "ward-7", run.StatusDraft, "")

	_, err := f.svc.Resolve(context.Background(), "ward-7", primary.ResolveOptions{})
	var noCtx *view.NoCommittedContextError
	if !errors.As(err, &noCtx) {
		t.Fatalf("expected NoCommittedContextError, got %v", err)
	}
	if noCtx.ScopeID != "ward-7" {
		t.Errorf("expected scope ward-7 in error, got %s", noCtx.ScopeID)
	}
}

func TestContextService_Resolve_ExcludesSupersededArtifacts(t *testing.T) {
	f := newContextFixture()
	seedCommittedContext(t, f, "RUN-001")
	ctx := context.Background()

	// Supersede the original summary and register a replacement. The old
	// row stays in storage but must never surface in a resolved view.
	var oldID string
	for id := range f.artifacts.artifacts {
		oldID = id
	}
	newIDs, err := f.intakeFixture.svc.AddArtifacts(ctx, "RUN-001", []fact.Artifact{
		{Kind: "summary", Title: "Corrected intake summary"},
	})
	if err != nil {
		t.Fatalf("AddArtifacts failed: %v", err)
	}
	if err := f.artifacts.MarkSuperseded(ctx, oldID); err != nil {
		t.Fatalf("MarkSuperseded failed: %v", err)
	}

	v, err := f.svc.Resolve(ctx, "ward-7", primary.ResolveOptions{})
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	bucket := v.ArtifactsByType["summary"]
	if len(bucket) != 1 {
		t.Fatalf("expected superseded artifact excluded, got %d artifacts", len(bucket))
	}
	if bucket[0].ID != newIDs[0] {
		t.Errorf("expected replacement %s to surface, got %s", newIDs[0], bucket[0].ID)
	}
}

func TestContextService_Resolve_SurfacesBrokenEvidence(t *testing.T) {
	f := newContextFixture()
	seedCommittedContext(t, f, "RUN-001")
	ctx := context.Background()

	// Corrupt the store directly: an evidence link to a source that does
	// not exist. The resolver must refuse to hand out the view.
	var inputID string
	for id := range f.inputs.inputs {
		inputID = id
	}
	if err := f.inputs.LinkSource(ctx, inputID, "SRC-ghost"); err != nil {
		t.Fatalf("LinkSource failed: %v", err)
	}

	_, err := f.svc.Resolve(ctx, "ward-7", primary.ResolveOptions{})
	var invErr *view.InvariantError
	if !errors.As(err, &invErr) {
		t.Fatalf("expected InvariantError, got %v", err)
	}
	if invErr.Invariant != view.InvariantEvidenceResolution {
		t.Errorf("expected evidence_resolution violation, got %s", invErr.Invariant)
	}
}

func TestContextService_Resolve_Deterministic(t *testing.T) {
	f := newContextFixture()
	seedCommittedContext(t, f, "RUN-001")
	ctx := context.Background()

	first, err := f.svc.Resolve(ctx, "ward-7", primary.ResolveOptions{})
	if err != nil {
		t.Fatalf("first Resolve failed: %v", err)
	}
	second, err := f.svc.Resolve(ctx, "ward-7", primary.ResolveOptions{})
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(a) != string(b) {
		t.Error("two resolves of the same run must serialize identically")
	}
}
