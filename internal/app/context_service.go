package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/canopy/internal/core/fact"
	corerun "github.com/example/canopy/internal/core/run"
	"github.com/example/canopy/internal/core/view"
	"github.com/example/canopy/internal/ports/primary"
	"github.com/example/canopy/internal/ports/secondary"
)

// ContextServiceImpl implements the ContextService interface.
//
// Every resolve re-reads from the durable store and re-normalizes. There is
// deliberately no cache: determinism comes from re-deriving the view, not
// from sharing one.
type ContextServiceImpl struct {
	runRepo        secondary.RunRepository
	sourceRepo     secondary.SourceRepository
	inputRepo      secondary.InputRepository
	constraintRepo secondary.ConstraintRepository
	artifactRepo   secondary.ArtifactRepository
	logger         *slog.Logger
}

// NewContextService creates a new ContextService with injected dependencies.
func NewContextService(
	runRepo secondary.RunRepository,
	sourceRepo secondary.SourceRepository,
	inputRepo secondary.InputRepository,
	constraintRepo secondary.ConstraintRepository,
	artifactRepo secondary.ArtifactRepository,
	logger *slog.Logger,
) *ContextServiceImpl {
	return &ContextServiceImpl{
		runRepo:        runRepo,
		sourceRepo:     sourceRepo,
		inputRepo:      inputRepo,
		constraintRepo: constraintRepo,
		artifactRepo:   artifactRepo,
		logger:         logger,
	}
}

var _ primary.ContextService = (*ContextServiceImpl)(nil)

// Resolve assembles, normalizes, and invariant-checks the context view for
// a scope.
func (s *ContextServiceImpl) Resolve(ctx context.Context, scopeID string, opts primary.ResolveOptions) (*view.ContextView, error) {
	selected, err := s.selectRun(ctx, scopeID, opts)
	if err != nil {
		return nil, err
	}

	v, err := s.assemble(ctx, selected)
	if err != nil {
		return nil, err
	}

	view.Normalize(v)
	if err := view.Check(v); err != nil {
		// A violated invariant means corrupted state; surfacing a broken
		// view would poison every consumer downstream.
		return nil, err
	}

	s.logger.Debug("context resolved",
		"scope", scopeID,
		"run", selected.ID,
		"inputs", len(v.InputsByPointer),
		"constraints", len(v.Constraints),
	)
	return v, nil
}

// selectRun picks the run to resolve: the pinned one when requested,
// otherwise the scope's latest committed run.
func (s *ContextServiceImpl) selectRun(ctx context.Context, scopeID string, opts primary.ResolveOptions) (view.Run, error) {
	usePinned := opts.RunID != "" && opts.Prefer != primary.PreferLatestCommit

	if usePinned {
		rec, err := s.runRepo.GetByID(ctx, opts.RunID)
		if err != nil {
			return view.Run{}, err
		}
		if rec.ScopeID != scopeID {
			return view.Run{}, fmt.Errorf("run %s belongs to scope %s, not %s", opts.RunID, rec.ScopeID, scopeID)
		}
		if !corerun.IsCommitted(corerun.Status(rec.Status)) {
			return view.Run{}, fmt.Errorf("run %s is %s - only committed runs resolve into a context view", opts.RunID, rec.Status)
		}
		return *runRecordToView(rec), nil
	}

	recs, err := s.runRepo.ListByScope(ctx, scopeID)
	if err != nil {
		return view.Run{}, err
	}

	runs := make([]view.Run, len(recs))
	for i, rec := range recs {
		runs[i] = *runRecordToView(rec)
	}

	picked, ok := view.PickRun(runs)
	if !ok {
		return view.Run{}, &view.NoCommittedContextError{ScopeID: scopeID}
	}
	return picked, nil
}

// assemble loads the run's facts and builds the raw (unnormalized) view.
func (s *ContextServiceImpl) assemble(ctx context.Context, r view.Run) (*view.ContextView, error) {
	sourceRecs, err := s.sourceRepo.ListByRun(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	sources := make(map[string]fact.Source, len(sourceRecs))
	for _, rec := range sourceRecs {
		sources[rec.ID] = recordToSource(rec)
	}

	links, err := s.inputRepo.ListLinks(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load evidence links: %w", err)
	}
	linksByInput := make(map[string][]string)
	for _, l := range links {
		linksByInput[l.InputID] = append(linksByInput[l.InputID], l.SourceID)
	}

	inputRecs, err := s.inputRepo.ListByRun(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load inputs: %w", err)
	}
	inputs := make(map[string]fact.Input, len(inputRecs))
	for _, rec := range inputRecs {
		in, err := recordToInput(rec, linksByInput[rec.ID])
		if err != nil {
			return nil, fmt.Errorf("failed to decode input %s: %w", rec.ID, err)
		}
		inputs[in.Pointer] = in
	}

	constraintRecs, err := s.constraintRepo.ListByRun(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load constraints: %w", err)
	}
	constraints := make([]fact.Constraint, len(constraintRecs))
	for i, rec := range constraintRecs {
		constraints[i] = recordToConstraint(rec)
	}

	artifactRecs, err := s.artifactRepo.ListByRun(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifacts: %w", err)
	}
	artifacts := make(map[string][]fact.Artifact)
	for _, rec := range artifactRecs {
		if rec.Superseded {
			// Replaced renders stay in storage for audit but never
			// surface in a resolved view.
			continue
		}
		artifacts[rec.Kind] = append(artifacts[rec.Kind], recordToArtifact(rec))
	}

	return &view.ContextView{
		Run:             r,
		SourcesByID:     sources,
		InputsByPointer: inputs,
		Constraints:     constraints,
		ArtifactsByType: artifacts,
	}, nil
}
