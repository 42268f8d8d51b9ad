package primary

import (
	"context"

	"github.com/example/canopy/internal/core/view"
)

// ResolvePreference selects how a run is chosen for a scope.
type ResolvePreference string

const (
	// PreferLatestCommit resolves the scope's latest committed run even
	// when a run ID is supplied.
	PreferLatestCommit ResolvePreference = "latest_commit"
	// PreferPinnedRun resolves the supplied run ID directly.
	PreferPinnedRun ResolvePreference = "pinned_run"
)

// ResolveOptions control run selection for a resolve.
type ResolveOptions struct {
	// RunID pins a specific run. Ignored when Prefer is PreferLatestCommit.
	RunID string
	// Prefer defaults to PreferPinnedRun when RunID is set, otherwise
	// PreferLatestCommit.
	Prefer ResolvePreference
}

// ContextService defines the primary port for resolving normalized context
// views. Every resolve re-reads from the durable store and re-normalizes;
// there is no cache, which is what keeps independent consumers
// byte-identical.
type ContextService interface {
	// Resolve assembles, normalizes, and invariant-checks the context view
	// for a scope. Returns view.NoCommittedContextError when nothing
	// qualifies - never an empty view.
	Resolve(ctx context.Context, scopeID string, opts ResolveOptions) (*view.ContextView, error)
}
