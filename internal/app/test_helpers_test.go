package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/example/canopy/internal/core/run"
	"github.com/example/canopy/internal/ports/secondary"
)

// testLogger discards output; service tests assert behavior, not logs.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fixedNow pins service clocks for deterministic stamps.
var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

const fixedStamp = "2026-03-01T10:00:00Z"

// Ensure mocks implement the interfaces
var (
	_ secondary.RunRepository        = (*mockRunRepo)(nil)
	_ secondary.SourceRepository     = (*mockSourceRepo)(nil)
	_ secondary.InputRepository      = (*mockInputRepo)(nil)
	_ secondary.ConstraintRepository = (*mockConstraintRepo)(nil)
	_ secondary.ArtifactRepository   = (*mockArtifactRepo)(nil)
)

// mockRunRepo implements secondary.RunRepository in memory.
type mockRunRepo struct {
	runs      map[string]*secondary.RunRecord
	createErr error
	commitErr error
}

func newMockRunRepo() *mockRunRepo {
	return &mockRunRepo{runs: make(map[string]*secondary.RunRecord)}
}

func (m *mockRunRepo) Create(ctx context.Context, rec *secondary.RunRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	cp := *rec
	m.runs[rec.ID] = &cp
	return nil
}

func (m *mockRunRepo) GetByID(ctx context.Context, id string) (*secondary.RunRecord, error) {
	rec, ok := m.runs[id]
	if !ok {
		return nil, secondary.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *mockRunRepo) ListByScope(ctx context.Context, scopeID string) ([]*secondary.RunRecord, error) {
	var out []*secondary.RunRecord
	for _, rec := range m.runs {
		if rec.ScopeID == scopeID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockRunRepo) Commit(ctx context.Context, id, status, committedAt string, allowPartial bool) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	rec, ok := m.runs[id]
	if !ok {
		return secondary.ErrNotFound
	}
	if rec.Status != string(run.StatusDraft) {
		return secondary.ErrNotDraft
	}
	rec.Status = status
	rec.AllowPartial = allowPartial
	rec.CommittedAt = committedAt
	rec.UpdatedAt = committedAt
	return nil
}

func (m *mockRunRepo) Touch(ctx context.Context, id string) error {
	rec, ok := m.runs[id]
	if !ok {
		return secondary.ErrNotFound
	}
	rec.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return nil
}

func (m *mockRunRepo) GetNextID(ctx context.Context) (string, error) {
	return fmt.Sprintf("RUN-%03d", len(m.runs)+1), nil
}

// seedRun installs a run record directly.
func (m *mockRunRepo) seedRun(id, scopeID string, status run.Status, committedAt string) {
	m.runs[id] = &secondary.RunRecord{
		ID:          id,
		ScopeID:     scopeID,
		Status:      string(status),
		CommittedAt: committedAt,
		CreatedAt:   fixedStamp,
		UpdatedAt:   fixedStamp,
	}
}

// mockSourceRepo implements secondary.SourceRepository in memory.
type mockSourceRepo struct {
	sources   map[string]*secondary.SourceRecord
	upsertErr error
}

func newMockSourceRepo() *mockSourceRepo {
	return &mockSourceRepo{sources: make(map[string]*secondary.SourceRecord)}
}

func (m *mockSourceRepo) Upsert(ctx context.Context, rec *secondary.SourceRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	cp := *rec
	m.sources[rec.ID] = &cp
	return nil
}

func (m *mockSourceRepo) GetByID(ctx context.Context, id string) (*secondary.SourceRecord, error) {
	rec, ok := m.sources[id]
	if !ok {
		return nil, secondary.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *mockSourceRepo) ListByRun(ctx context.Context, runID string) ([]*secondary.SourceRecord, error) {
	var out []*secondary.SourceRecord
	for _, rec := range m.sources {
		if rec.RunID == runID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockSourceRepo) UpdateParseStatus(ctx context.Context, id, status string) error {
	rec, ok := m.sources[id]
	if !ok {
		return secondary.ErrNotFound
	}
	rec.ParseStatus = status
	return nil
}

// mockInputRepo implements secondary.InputRepository in memory.
type mockInputRepo struct {
	inputs map[string]*secondary.InputRecord
	links  map[string]map[string]bool // inputID -> sourceID set
}

func newMockInputRepo() *mockInputRepo {
	return &mockInputRepo{
		inputs: make(map[string]*secondary.InputRecord),
		links:  make(map[string]map[string]bool),
	}
}

func (m *mockInputRepo) Upsert(ctx context.Context, rec *secondary.InputRecord) error {
	// Mirror the UNIQUE(run_id, pointer) constraint.
	for _, other := range m.inputs {
		if other.ID != rec.ID && other.RunID == rec.RunID && other.Pointer == rec.Pointer {
			return fmt.Errorf("UNIQUE constraint failed: inputs.run_id, inputs.pointer")
		}
	}
	cp := *rec
	m.inputs[rec.ID] = &cp
	return nil
}

func (m *mockInputRepo) GetByID(ctx context.Context, id string) (*secondary.InputRecord, error) {
	rec, ok := m.inputs[id]
	if !ok {
		return nil, secondary.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *mockInputRepo) ListByRun(ctx context.Context, runID string) ([]*secondary.InputRecord, error) {
	var out []*secondary.InputRecord
	for _, rec := range m.inputs {
		if rec.RunID == runID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Pointer < out[j].Pointer })
	return out, nil
}

func (m *mockInputRepo) LinkSource(ctx context.Context, inputID, sourceID string) error {
	if m.links[inputID] == nil {
		m.links[inputID] = make(map[string]bool)
	}
	m.links[inputID][sourceID] = true
	return nil
}

func (m *mockInputRepo) ListLinks(ctx context.Context, runID string) ([]*secondary.InputSourceLink, error) {
	var out []*secondary.InputSourceLink
	for inputID, set := range m.links {
		rec, ok := m.inputs[inputID]
		if !ok || rec.RunID != runID {
			continue
		}
		for sourceID := range set {
			out = append(out, &secondary.InputSourceLink{InputID: inputID, SourceID: sourceID})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].InputID != out[j].InputID {
			return out[i].InputID < out[j].InputID
		}
		return out[i].SourceID < out[j].SourceID
	})
	return out, nil
}

// mockConstraintRepo implements secondary.ConstraintRepository in memory.
type mockConstraintRepo struct {
	constraints map[string]*secondary.ConstraintRecord
}

func newMockConstraintRepo() *mockConstraintRepo {
	return &mockConstraintRepo{constraints: make(map[string]*secondary.ConstraintRecord)}
}

func (m *mockConstraintRepo) Upsert(ctx context.Context, rec *secondary.ConstraintRecord) error {
	cp := *rec
	m.constraints[rec.ID] = &cp
	return nil
}

func (m *mockConstraintRepo) ListByRun(ctx context.Context, runID string) ([]*secondary.ConstraintRecord, error) {
	var out []*secondary.ConstraintRecord
	for _, rec := range m.constraints {
		if rec.RunID == runID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// mockArtifactRepo implements secondary.ArtifactRepository in memory.
type mockArtifactRepo struct {
	artifacts map[string]*secondary.ArtifactRecord
}

func newMockArtifactRepo() *mockArtifactRepo {
	return &mockArtifactRepo{artifacts: make(map[string]*secondary.ArtifactRecord)}
}

func (m *mockArtifactRepo) Upsert(ctx context.Context, rec *secondary.ArtifactRecord) error {
	cp := *rec
	m.artifacts[rec.ID] = &cp
	return nil
}

func (m *mockArtifactRepo) ListByRun(ctx context.Context, runID string) ([]*secondary.ArtifactRecord, error) {
	var out []*secondary.ArtifactRecord
	for _, rec := range m.artifacts {
		if rec.RunID == runID {
			cp := *rec
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockArtifactRepo) MarkSuperseded(ctx context.Context, id string) error {
	rec, ok := m.artifacts[id]
	if !ok {
		return secondary.ErrNotFound
	}
	rec.Superseded = true
	return nil
}

// intakeFixture wires an IntakeService over fresh mocks with a pinned clock.
type intakeFixture struct {
	svc         *IntakeServiceImpl
	runs        *mockRunRepo
	sources     *mockSourceRepo
	inputs      *mockInputRepo
	constraints *mockConstraintRepo
	artifacts   *mockArtifactRepo
}

func newIntakeFixture() *intakeFixture {
	f := &intakeFixture{
		runs:        newMockRunRepo(),
		sources:     newMockSourceRepo(),
		inputs:      newMockInputRepo(),
		constraints: newMockConstraintRepo(),
		artifacts:   newMockArtifactRepo(),
	}
	f.svc = NewIntakeService(f.runs, f.sources, f.inputs, f.constraints, f.artifacts, testLogger())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

// contextFixture wires a ContextService over the same mocks.
type contextFixture struct {
	svc *ContextServiceImpl
	*intakeFixture
}

func newContextFixture() *contextFixture {
	f := newIntakeFixture()
	return &contextFixture{
		svc:           NewContextService(f.runs, f.sources, f.inputs, f.constraints, f.artifacts, testLogger()),
		intakeFixture: f,
	}
}
