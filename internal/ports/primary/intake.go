// Package primary defines the primary ports (driving adapters) for the
// application. These are the interfaces through which the outside world
// drives the application.
//
// Fact and view types from the functional core appear directly in these
// contracts: they are the shared vocabulary of the system, and the one-of
// value discriminant must not be re-flattened at every boundary.
package primary

import (
	"context"

	"github.com/example/canopy/internal/core/fact"
	"github.com/example/canopy/internal/core/view"
)

// IntakeService defines the primary port for intake mutations: run
// lifecycle plus the fact store (sources, inputs, constraints, artifacts).
type IntakeService interface {
	// CreateDraftRun opens a new intake run for a scope.
	CreateDraftRun(ctx context.Context, scopeID string) (*view.Run, error)

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, runID string) (*view.Run, error)

	// ListRuns lists every run for a scope, newest first.
	ListRuns(ctx context.Context, scopeID string) ([]*view.Run, error)

	// TouchRun bumps the run's updatedAt. Fact writes never do this
	// implicitly.
	TouchRun(ctx context.Context, runID string) error

	// CommitRun transitions a draft run to committed or partial_committed.
	// allowPartial is the caller's explicit acknowledgment that required
	// inputs may be unset; the service never infers it.
	CommitRun(ctx context.Context, req CommitRunRequest) (*view.Run, error)

	// UpsertSources validates and writes a batch of evidence sources.
	// Every record must belong to the given run; a single mismatch or
	// validation failure rejects the whole batch. Returns the IDs in batch
	// order (generated for records submitted without one).
	UpsertSources(ctx context.Context, runID string, sources []fact.Source) ([]string, error)

	// UpsertInputs validates and writes a batch of input facts. Inputs are
	// keyed by (run, pointer): a record submitted without an ID reuses the
	// ID of the run's existing input for that pointer, so re-setting an
	// answered pointer overwrites rather than forks.
	UpsertInputs(ctx context.Context, runID string, inputs []fact.Input) ([]string, error)

	// UpsertConstraints validates and writes a batch of constraint facts.
	UpsertConstraints(ctx context.Context, runID string, constraints []fact.Constraint) ([]string, error)

	// LinkInputSources records evidence links between inputs and sources of
	// the same run. Re-linking an existing pair is a no-op.
	LinkInputSources(ctx context.Context, runID string, links []InputSourceLink) error

	// AddArtifacts registers generated artifacts against a run. This is the
	// one write allowed after commit (superseding renders).
	AddArtifacts(ctx context.Context, runID string, artifacts []fact.Artifact) ([]string, error)

	// MarkSourceParsed updates a source's parse status while the run is
	// draft.
	MarkSourceParsed(ctx context.Context, runID, sourceID string, status fact.ParseStatus) error

	// SupersedeArtifact flags an artifact as replaced. The row stays in
	// storage for audit but never surfaces in a resolved view.
	SupersedeArtifact(ctx context.Context, runID, artifactID string) error

	// ListSources lists a run's evidence sources in creation order. Works
	// on drafts; resolved views only exist for committed runs.
	ListSources(ctx context.Context, runID string) ([]fact.Source, error)

	// ListInputs lists a run's inputs in pointer order, evidence links
	// populated.
	ListInputs(ctx context.Context, runID string) ([]fact.Input, error)

	// ListConstraints lists a run's constraints in key order.
	ListConstraints(ctx context.Context, runID string) ([]fact.Constraint, error)

	// ListArtifacts lists a run's artifacts in creation order, superseded
	// ones included.
	ListArtifacts(ctx context.Context, runID string) ([]fact.Artifact, error)
}

// CommitRunRequest contains parameters for committing a run.
type CommitRunRequest struct {
	RunID        string
	AllowPartial bool
}

// InputSourceLink names one input-to-source evidence edge at the port
// boundary.
type InputSourceLink struct {
	InputID  string
	SourceID string
}
