package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/example/canopy/internal/core/fact"
	corerun "github.com/example/canopy/internal/core/run"
	"github.com/example/canopy/internal/core/view"
	"github.com/example/canopy/internal/ctxutil"
	"github.com/example/canopy/internal/ports/primary"
	"github.com/example/canopy/internal/ports/secondary"
)

// IntakeServiceImpl implements the IntakeService interface.
type IntakeServiceImpl struct {
	runRepo        secondary.RunRepository
	sourceRepo     secondary.SourceRepository
	inputRepo      secondary.InputRepository
	constraintRepo secondary.ConstraintRepository
	artifactRepo   secondary.ArtifactRepository
	logger         *slog.Logger
	now            func() time.Time
}

// NewIntakeService creates a new IntakeService with injected dependencies.
func NewIntakeService(
	runRepo secondary.RunRepository,
	sourceRepo secondary.SourceRepository,
	inputRepo secondary.InputRepository,
	constraintRepo secondary.ConstraintRepository,
	artifactRepo secondary.ArtifactRepository,
	logger *slog.Logger,
) *IntakeServiceImpl {
	return &IntakeServiceImpl{
		runRepo:        runRepo,
		sourceRepo:     sourceRepo,
		inputRepo:      inputRepo,
		constraintRepo: constraintRepo,
		artifactRepo:   artifactRepo,
		logger:         logger,
		now:            time.Now,
	}
}

var _ primary.IntakeService = (*IntakeServiceImpl)(nil)

// stamp formats the current time the way every record stores it.
func (s *IntakeServiceImpl) stamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

// CreateDraftRun opens a new intake run for a scope.
func (s *IntakeServiceImpl) CreateDraftRun(ctx context.Context, scopeID string) (*view.Run, error) {
	if scopeID == "" {
		return nil, fmt.Errorf("scope ID is required")
	}

	nextID, err := s.runRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate run ID: %w", err)
	}

	now := s.stamp()
	rec := &secondary.RunRecord{
		ID:        nextID,
		ScopeID:   scopeID,
		Status:    string(corerun.InitialStatus()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.runRepo.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	s.logger.Info("run created", "run", rec.ID, "scope", scopeID)
	return runRecordToView(rec), nil
}

// GetRun retrieves a run by ID.
func (s *IntakeServiceImpl) GetRun(ctx context.Context, runID string) (*view.Run, error) {
	rec, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	return runRecordToView(rec), nil
}

// ListRuns lists every run for a scope, newest first.
func (s *IntakeServiceImpl) ListRuns(ctx context.Context, scopeID string) ([]*view.Run, error) {
	recs, err := s.runRepo.ListByScope(ctx, scopeID)
	if err != nil {
		return nil, err
	}

	runs := make([]*view.Run, len(recs))
	for i, rec := range recs {
		runs[i] = runRecordToView(rec)
	}
	return runs, nil
}

// TouchRun bumps the run's updatedAt. Only draft runs accept touches; a
// committed run's stamps are frozen.
func (s *IntakeServiceImpl) TouchRun(ctx context.Context, runID string) error {
	rec, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return err
	}
	if result := corerun.CanMutate(runID, corerun.Status(rec.Status)); !result.Allowed {
		return result.Error()
	}
	return s.runRepo.Touch(ctx, runID)
}

// CommitRun transitions a draft run to committed or partial_committed.
func (s *IntakeServiceImpl) CommitRun(ctx context.Context, req primary.CommitRunRequest) (*view.Run, error) {
	rec, err := s.runRepo.GetByID(ctx, req.RunID)
	if err != nil {
		return nil, err
	}

	if result := corerun.CanCommit(req.RunID, corerun.Status(rec.Status)); !result.Allowed {
		return nil, result.Error()
	}

	// The pure transition decides the terminal status; the repository's
	// guarded UPDATE makes it atomic against a concurrent committer.
	commit := corerun.ApplyCommit(req.AllowPartial, s.now().UTC())
	committedAt := commit.CommittedAt.Format(time.RFC3339)
	if err := s.runRepo.Commit(ctx, req.RunID, string(commit.NewStatus), committedAt, req.AllowPartial); err != nil {
		return nil, err
	}

	s.logger.Info("run committed", "run", req.RunID, "status", commit.NewStatus, "committedAt", committedAt)

	rec, err = s.runRepo.GetByID(ctx, req.RunID)
	if err != nil {
		return nil, err
	}
	return runRecordToView(rec), nil
}

// UpsertSources validates and writes a batch of evidence sources.
func (s *IntakeServiceImpl) UpsertSources(ctx context.Context, runID string, sources []fact.Source) ([]string, error) {
	if err := s.guardDraft(ctx, runID); err != nil {
		return nil, err
	}

	now := s.stamp()
	for i := range sources {
		if sources[i].RunID != "" && sources[i].RunID != runID {
			return nil, fmt.Errorf("source %d belongs to run %s, not %s", i, sources[i].RunID, runID)
		}
		sources[i].RunID = runID
		if sources[i].ID == "" {
			sources[i].ID = uuid.NewString()
		}
		if sources[i].ParseStatus == "" {
			sources[i].ParseStatus = fact.ParseStatusPending
		}
		if sources[i].CreatedAt == "" {
			sources[i].CreatedAt = now
		}
	}

	// Validate the whole batch before writing anything.
	if err := fact.ValidateSources(sources); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(sources))
	for i := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.sourceRepo.Upsert(ctx, sourceToRecord(sources[i])); err != nil {
			return nil, fmt.Errorf("failed to write source %s: %w", sources[i].ID, err)
		}
		ids = append(ids, sources[i].ID)
	}

	s.logger.Info("sources upserted", "run", runID, "count", len(ids))
	return ids, nil
}

// UpsertInputs validates and writes a batch of input facts. Evidence links
// named in SourceIDs are recorded alongside each input.
func (s *IntakeServiceImpl) UpsertInputs(ctx context.Context, runID string, inputs []fact.Input) ([]string, error) {
	if err := s.guardDraft(ctx, runID); err != nil {
		return nil, err
	}

	// Inputs are keyed by (run, pointer): re-setting an answered pointer
	// overwrites the existing row instead of minting a second ID, which
	// also keeps that row's evidence links intact.
	existing, err := s.inputRepo.ListByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	idByPointer := make(map[string]string, len(existing))
	for _, rec := range existing {
		idByPointer[rec.Pointer] = rec.ID
	}

	now := s.stamp()
	for i := range inputs {
		if inputs[i].RunID != "" && inputs[i].RunID != runID {
			return nil, fmt.Errorf("input %d belongs to run %s, not %s", i, inputs[i].RunID, runID)
		}
		inputs[i].RunID = runID
		if inputs[i].ID == "" {
			if id, ok := idByPointer[inputs[i].Pointer]; ok {
				inputs[i].ID = id
			} else {
				inputs[i].ID = uuid.NewString()
			}
		}
		idByPointer[inputs[i].Pointer] = inputs[i].ID
		if inputs[i].UpdatedAt == "" {
			inputs[i].UpdatedAt = now
		}
		if inputs[i].UpdatedBy == "" {
			inputs[i].UpdatedBy = fact.Actor(ctxutil.ActorFromContext(ctx))
		}
		if inputs[i].UpdatedBy == "" {
			inputs[i].UpdatedBy = fact.ActorUser
		}
	}

	if err := fact.ValidateInputs(inputs); err != nil {
		return nil, err
	}

	// Evidence references must resolve within the run before any write.
	for i := range inputs {
		for _, srcID := range inputs[i].SourceIDs {
			if err := s.checkSourceInRun(ctx, runID, srcID); err != nil {
				return nil, fmt.Errorf("input %s: %w", inputs[i].ID, err)
			}
		}
	}

	ids := make([]string, 0, len(inputs))
	for i := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := inputToRecord(inputs[i])
		if err != nil {
			return nil, fmt.Errorf("failed to encode input %s: %w", inputs[i].ID, err)
		}
		if err := s.inputRepo.Upsert(ctx, rec); err != nil {
			return nil, fmt.Errorf("failed to write input %s: %w", inputs[i].ID, err)
		}
		for _, srcID := range inputs[i].SourceIDs {
			if err := s.inputRepo.LinkSource(ctx, inputs[i].ID, srcID); err != nil {
				return nil, fmt.Errorf("failed to link input %s to source %s: %w", inputs[i].ID, srcID, err)
			}
		}
		ids = append(ids, inputs[i].ID)
	}

	s.logger.Info("inputs upserted", "run", runID, "count", len(ids))
	return ids, nil
}

// UpsertConstraints validates and writes a batch of constraint facts.
func (s *IntakeServiceImpl) UpsertConstraints(ctx context.Context, runID string, constraints []fact.Constraint) ([]string, error) {
	if err := s.guardDraft(ctx, runID); err != nil {
		return nil, err
	}

	now := s.stamp()
	for i := range constraints {
		if constraints[i].RunID != "" && constraints[i].RunID != runID {
			return nil, fmt.Errorf("constraint %d belongs to run %s, not %s", i, constraints[i].RunID, runID)
		}
		constraints[i].RunID = runID
		if constraints[i].ID == "" {
			constraints[i].ID = uuid.NewString()
		}
		if constraints[i].CreatedAt == "" {
			constraints[i].CreatedAt = now
		}
	}

	if err := fact.ValidateConstraints(constraints); err != nil {
		return nil, err
	}

	for i := range constraints {
		if constraints[i].SourceID != "" {
			if err := s.checkSourceInRun(ctx, runID, constraints[i].SourceID); err != nil {
				return nil, fmt.Errorf("constraint %s: %w", constraints[i].ID, err)
			}
		}
	}

	ids := make([]string, 0, len(constraints))
	for i := range constraints {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.constraintRepo.Upsert(ctx, constraintToRecord(constraints[i])); err != nil {
			return nil, fmt.Errorf("failed to write constraint %s: %w", constraints[i].ID, err)
		}
		ids = append(ids, constraints[i].ID)
	}

	s.logger.Info("constraints upserted", "run", runID, "count", len(ids))
	return ids, nil
}

// LinkInputSources records evidence links between inputs and sources of the
// same run.
func (s *IntakeServiceImpl) LinkInputSources(ctx context.Context, runID string, links []primary.InputSourceLink) error {
	if err := s.guardDraft(ctx, runID); err != nil {
		return err
	}

	for _, link := range links {
		input, err := s.inputRepo.GetByID(ctx, link.InputID)
		if err != nil {
			return fmt.Errorf("input %s: %w", link.InputID, err)
		}
		if input.RunID != runID {
			return fmt.Errorf("input %s belongs to run %s, not %s", link.InputID, input.RunID, runID)
		}
		if err := s.checkSourceInRun(ctx, runID, link.SourceID); err != nil {
			return err
		}
	}

	for _, link := range links {
		if err := s.inputRepo.LinkSource(ctx, link.InputID, link.SourceID); err != nil {
			return fmt.Errorf("failed to link input %s to source %s: %w", link.InputID, link.SourceID, err)
		}
	}

	return nil
}

// AddArtifacts registers generated artifacts against a run. Unlike every
// other fact write this is allowed after commit: re-rendering an output
// adds a new artifact rather than reopening the run.
func (s *IntakeServiceImpl) AddArtifacts(ctx context.Context, runID string, artifacts []fact.Artifact) ([]string, error) {
	if _, err := s.runRepo.GetByID(ctx, runID); err != nil {
		return nil, err
	}

	now := s.stamp()
	for i := range artifacts {
		if artifacts[i].RunID != "" && artifacts[i].RunID != runID {
			return nil, fmt.Errorf("artifact %d belongs to run %s, not %s", i, artifacts[i].RunID, runID)
		}
		if artifacts[i].Kind == "" {
			return nil, fmt.Errorf("artifact %d: kind is required", i)
		}
		if artifacts[i].Title == "" {
			return nil, fmt.Errorf("artifact %d: title is required", i)
		}
		artifacts[i].RunID = runID
		if artifacts[i].ID == "" {
			artifacts[i].ID = uuid.NewString()
		}
		if artifacts[i].CreatedAt == "" {
			artifacts[i].CreatedAt = now
		}
	}

	ids := make([]string, 0, len(artifacts))
	for i := range artifacts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.artifactRepo.Upsert(ctx, artifactToRecord(artifacts[i])); err != nil {
			return nil, fmt.Errorf("failed to write artifact %s: %w", artifacts[i].ID, err)
		}
		ids = append(ids, artifacts[i].ID)
	}

	s.logger.Info("artifacts added", "run", runID, "count", len(ids))
	return ids, nil
}

// MarkSourceParsed updates a source's parse status while the run is draft.
func (s *IntakeServiceImpl) MarkSourceParsed(ctx context.Context, runID, sourceID string, status fact.ParseStatus) error {
	if !fact.KnownParseStatus(status) {
		return fmt.Errorf("unknown parse status %q", status)
	}
	if err := s.guardDraft(ctx, runID); err != nil {
		return err
	}
	if err := s.checkSourceInRun(ctx, runID, sourceID); err != nil {
		return err
	}
	return s.sourceRepo.UpdateParseStatus(ctx, sourceID, string(status))
}

// SupersedeArtifact flags an artifact as replaced. Allowed after commit for
// the same reason AddArtifacts is: it records a fact about the outputs, not
// a change to the committed record.
func (s *IntakeServiceImpl) SupersedeArtifact(ctx context.Context, runID, artifactID string) error {
	if _, err := s.runRepo.GetByID(ctx, runID); err != nil {
		return err
	}
	recs, err := s.artifactRepo.ListByRun(ctx, runID)
	if err != nil {
		return err
	}
	found := false
	for _, rec := range recs {
		if rec.ID == artifactID {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("artifact %s does not belong to run %s: %w", artifactID, runID, secondary.ErrNotFound)
	}

	if err := s.artifactRepo.MarkSuperseded(ctx, artifactID); err != nil {
		return err
	}
	s.logger.Info("artifact superseded", "run", runID, "artifact", artifactID)
	return nil
}

// ListSources lists a run's evidence sources in creation order.
func (s *IntakeServiceImpl) ListSources(ctx context.Context, runID string) ([]fact.Source, error) {
	if _, err := s.runRepo.GetByID(ctx, runID); err != nil {
		return nil, err
	}
	recs, err := s.sourceRepo.ListByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	sources := make([]fact.Source, len(recs))
	for i, rec := range recs {
		sources[i] = recordToSource(rec)
	}
	return sources, nil
}

// ListInputs lists a run's inputs in pointer order, evidence links populated.
func (s *IntakeServiceImpl) ListInputs(ctx context.Context, runID string) ([]fact.Input, error) {
	if _, err := s.runRepo.GetByID(ctx, runID); err != nil {
		return nil, err
	}
	recs, err := s.inputRepo.ListByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	links, err := s.inputRepo.ListLinks(ctx, runID)
	if err != nil {
		return nil, err
	}
	linksByInput := make(map[string][]string)
	for _, link := range links {
		linksByInput[link.InputID] = append(linksByInput[link.InputID], link.SourceID)
	}

	inputs := make([]fact.Input, len(recs))
	for i, rec := range recs {
		in, err := recordToInput(rec, linksByInput[rec.ID])
		if err != nil {
			return nil, fmt.Errorf("failed to decode input %s: %w", rec.ID, err)
		}
		inputs[i] = in
	}
	return inputs, nil
}

// ListConstraints lists a run's constraints in key order.
func (s *IntakeServiceImpl) ListConstraints(ctx context.Context, runID string) ([]fact.Constraint, error) {
	if _, err := s.runRepo.GetByID(ctx, runID); err != nil {
		return nil, err
	}
	recs, err := s.constraintRepo.ListByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	constraints := make([]fact.Constraint, len(recs))
	for i, rec := range recs {
		constraints[i] = recordToConstraint(rec)
	}
	return constraints, nil
}

// ListArtifacts lists a run's artifacts in creation order, superseded ones
// included.
func (s *IntakeServiceImpl) ListArtifacts(ctx context.Context, runID string) ([]fact.Artifact, error) {
	if _, err := s.runRepo.GetByID(ctx, runID); err != nil {
		return nil, err
	}
	recs, err := s.artifactRepo.ListByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	artifacts := make([]fact.Artifact, len(recs))
	for i, rec := range recs {
		artifacts[i] = recordToArtifact(rec)
	}
	return artifacts, nil
}

// guardDraft fetches the run and rejects fact writes unless it is draft.
func (s *IntakeServiceImpl) guardDraft(ctx context.Context, runID string) error {
	rec, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return err
	}
	if result := corerun.CanMutate(runID, corerun.Status(rec.Status)); !result.Allowed {
		return result.Error()
	}
	return nil
}

// checkSourceInRun verifies an evidence reference resolves inside the run.
func (s *IntakeServiceImpl) checkSourceInRun(ctx context.Context, runID, sourceID string) error {
	src, err := s.sourceRepo.GetByID(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("source %s: %w", sourceID, err)
	}
	if src.RunID != runID {
		return fmt.Errorf("source %s belongs to run %s, not %s", sourceID, src.RunID, runID)
	}
	return nil
}
