package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/example/canopy/internal/core/fact"
	"github.com/example/canopy/internal/core/run"
	"github.com/example/canopy/internal/core/view"
	"github.com/example/canopy/internal/ports/primary"
)

// mockIntakeService implements primary.IntakeService for testing
type mockIntakeService struct {
	createDraftRunFn func(ctx context.Context, scopeID string) (*view.Run, error)
	getRunFn         func(ctx context.Context, runID string) (*view.Run, error)
	listRunsFn       func(ctx context.Context, scopeID string) ([]*view.Run, error)
	commitRunFn      func(ctx context.Context, req primary.CommitRunRequest) (*view.Run, error)
	upsertSourcesFn  func(ctx context.Context, runID string, sources []fact.Source) ([]string, error)
	upsertInputsFn   func(ctx context.Context, runID string, inputs []fact.Input) ([]string, error)
	listSourcesFn    func(ctx context.Context, runID string) ([]fact.Source, error)
	listInputsFn     func(ctx context.Context, runID string) ([]fact.Input, error)

	// Track calls for verification
	lastCommitReq primary.CommitRunRequest
}

func (m *mockIntakeService) CreateDraftRun(ctx context.Context, scopeID string) (*view.Run, error) {
	if m.createDraftRunFn != nil {
		return m.createDraftRunFn(ctx, scopeID)
	}
	return &view.Run{ID: "RUN-001", ScopeID: scopeID, Status: run.StatusDraft}, nil
}

func (m *mockIntakeService) GetRun(ctx context.Context, runID string) (*view.Run, error) {
	if m.getRunFn != nil {
		return m.getRunFn(ctx, runID)
	}
	return &view.Run{ID: runID, ScopeID: "ward-7", Status: run.StatusDraft}, nil
}

func (m *mockIntakeService) ListRuns(ctx context.Context, scopeID string) ([]*view.Run, error) {
	if m.listRunsFn != nil {
		return m.listRunsFn(ctx, scopeID)
	}
	return []*view.Run{}, nil
}

func (m *mockIntakeService) TouchRun(ctx context.Context, runID string) error {
	return nil
}

func (m *mockIntakeService) CommitRun(ctx context.Context, req primary.CommitRunRequest) (*view.Run, error) {
	m.lastCommitReq = req
	if m.commitRunFn != nil {
		return m.commitRunFn(ctx, req)
	}
	return &view.Run{ID: req.RunID, ScopeID: "ward-7", Status: run.StatusCommitted, CommittedAt: "2026-03-01T10:00:00Z"}, nil
}

func (m *mockIntakeService) UpsertSources(ctx context.Context, runID string, sources []fact.Source) ([]string, error) {
	if m.upsertSourcesFn != nil {
		return m.upsertSourcesFn(ctx, runID, sources)
	}
	return []string{"SRC-001"}, nil
}

func (m *mockIntakeService) UpsertInputs(ctx context.Context, runID string, inputs []fact.Input) ([]string, error) {
	if m.upsertInputsFn != nil {
		return m.upsertInputsFn(ctx, runID, inputs)
	}
	return []string{"INP-001"}, nil
}

func (m *mockIntakeService) UpsertConstraints(ctx context.Context, runID string, constraints []fact.Constraint) ([]string, error) {
	return []string{"CON-001"}, nil
}

func (m *mockIntakeService) LinkInputSources(ctx context.Context, runID string, links []primary.InputSourceLink) error {
	return nil
}

func (m *mockIntakeService) AddArtifacts(ctx context.Context, runID string, artifacts []fact.Artifact) ([]string, error) {
	return []string{"ART-001"}, nil
}

func (m *mockIntakeService) MarkSourceParsed(ctx context.Context, runID, sourceID string, status fact.ParseStatus) error {
	return nil
}

func (m *mockIntakeService) SupersedeArtifact(ctx context.Context, runID, artifactID string) error {
	return nil
}

func (m *mockIntakeService) ListSources(ctx context.Context, runID string) ([]fact.Source, error) {
	if m.listSourcesFn != nil {
		return m.listSourcesFn(ctx, runID)
	}
	return []fact.Source{}, nil
}

func (m *mockIntakeService) ListInputs(ctx context.Context, runID string) ([]fact.Input, error) {
	if m.listInputsFn != nil {
		return m.listInputsFn(ctx, runID)
	}
	return []fact.Input{}, nil
}

func (m *mockIntakeService) ListConstraints(ctx context.Context, runID string) ([]fact.Constraint, error) {
	return []fact.Constraint{}, nil
}

func (m *mockIntakeService) ListArtifacts(ctx context.Context, runID string) ([]fact.Artifact, error) {
	return []fact.Artifact{}, nil
}

var _ primary.IntakeService = (*mockIntakeService)(nil)

func TestIntakeAdapter_CreateRun(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewIntakeAdapter(&mockIntakeService{}, &buf)

	if err := adapter.CreateRun(context.Background(), "ward-7"); err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "RUN-001") || !strings.Contains(output, "ward-7") {
		t.Errorf("unexpected output: %s", output)
	}
}

func TestIntakeAdapter_Commit_PassesAllowPartial(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockIntakeService{}
	adapter := NewIntakeAdapter(mock, &buf)

	if err := adapter.Commit(context.Background(), "RUN-001", true); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if !mock.lastCommitReq.AllowPartial {
		t.Error("expected allowPartial forwarded to the service")
	}
	if !strings.Contains(buf.String(), "committed") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestIntakeAdapter_Commit_Error(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockIntakeService{
		commitRunFn: func(ctx context.Context, req primary.CommitRunRequest) (*view.Run, error) {
			return nil, errors.New("run RUN-001 is already committed")
		},
	}
	adapter := NewIntakeAdapter(mock, &buf)

	if err := adapter.Commit(context.Background(), "RUN-001", false); err == nil {
		t.Fatal("expected error to propagate")
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be printed on failure, got: %s", buf.String())
	}
}

func TestIntakeAdapter_ListRuns_Empty(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewIntakeAdapter(&mockIntakeService{}, &buf)

	if err := adapter.ListRuns(context.Background(), "ward-7"); err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No runs found") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}

func TestIntakeAdapter_ListRuns_Table(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockIntakeService{
		listRunsFn: func(ctx context.Context, scopeID string) ([]*view.Run, error) {
			return []*view.Run{
				{ID: "RUN-002", ScopeID: scopeID, Status: run.StatusDraft, CreatedAt: "2026-03-02T09:00:00Z"},
				{ID: "RUN-001", ScopeID: scopeID, Status: run.StatusCommitted, CommittedAt: "2026-03-01T10:00:00Z", CreatedAt: "2026-03-01T09:00:00Z"},
			}, nil
		},
	}
	adapter := NewIntakeAdapter(mock, &buf)

	if err := adapter.ListRuns(context.Background(), "ward-7"); err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "RUN-001") || !strings.Contains(output, "RUN-002") {
		t.Errorf("expected both runs listed: %s", output)
	}
	if !strings.Contains(output, "committed") {
		t.Errorf("expected status column: %s", output)
	}
}

func TestIntakeAdapter_ListInputs_FormatsValues(t *testing.T) {
	var buf bytes.Buffer
	mock := &mockIntakeService{
		listInputsFn: func(ctx context.Context, runID string) ([]fact.Input, error) {
			return []fact.Input{
				{Pointer: "site.plot_count", Value: fact.NumberValue(14), Provenance: fact.ProvenanceUserEntered},
				{Pointer: "site.soil_type", Value: fact.NoValue(), Provenance: fact.ProvenanceUnknown},
			}, nil
		},
	}
	adapter := NewIntakeAdapter(mock, &buf)

	if err := adapter.ListInputs(context.Background(), "RUN-001"); err != nil {
		t.Fatalf("ListInputs failed: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "14") {
		t.Errorf("expected number rendered: %s", output)
	}
	if !strings.Contains(output, "(unset)") {
		t.Errorf("expected unset marker: %s", output)
	}
}

func TestIntakeAdapter_AddSource(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewIntakeAdapter(&mockIntakeService{}, &buf)

	err := adapter.AddSource(context.Background(), "RUN-001", fact.Source{
		Kind:  fact.SourceKindFile,
		Title: "Soil survey",
	})
	if err != nil {
		t.Fatalf("AddSource failed: %v", err)
	}
	if !strings.Contains(buf.String(), "SRC-001") {
		t.Errorf("expected returned ID in output: %s", buf.String())
	}
}

func TestIntakeAdapter_ImportSuggestions_ForcesProvenance(t *testing.T) {
	var got []fact.Input
	mock := &mockIntakeService{
		upsertInputsFn: func(ctx context.Context, runID string, inputs []fact.Input) ([]string, error) {
			got = inputs
			return []string{"INP-001", "INP-002"}, nil
		},
	}
	var buf bytes.Buffer
	adapter := NewIntakeAdapter(mock, &buf)

	batch := []fact.Input{
		{Pointer: "site.soil_type", Domain: fact.DomainSite, Value: fact.EnumValue("loam"), Provenance: fact.ProvenanceUserEntered},
		{Pointer: "site.plot_count", Domain: fact.DomainSite, Value: fact.NumberValue(12)},
	}
	if err := adapter.ImportSuggestions(context.Background(), "RUN-002", batch); err != nil {
		t.Fatalf("ImportSuggestions failed: %v", err)
	}

	for _, in := range got {
		if in.Provenance != fact.ProvenanceModelInferred {
			t.Errorf("input %s provenance = %s, want model_inferred", in.Pointer, in.Provenance)
		}
	}
	if !strings.Contains(buf.String(), "Imported 2 suggested input(s)") {
		t.Errorf("unexpected output: %s", buf.String())
	}
}
