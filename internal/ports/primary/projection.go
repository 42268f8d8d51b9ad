package primary

import (
	"github.com/example/canopy/internal/core/projection"
	"github.com/example/canopy/internal/core/view"
)

// ProjectionService defines the primary port for merging resolved views
// into an execution-state tree.
type ProjectionService interface {
	// BuildPatches converts a resolved view into its ordered patch set.
	BuildPatches(v *view.ContextView) projection.BuildReport

	// ApplyPatches merges patches into the state tree. Individual failures
	// are skipped and reported, never fatal.
	ApplyPatches(state map[string]any, patches []projection.Patch) (map[string]any, projection.ApplyReport)

	// Project is BuildPatches followed by ApplyPatches.
	Project(v *view.ContextView, state map[string]any) (map[string]any, ProjectReport)
}

// ProjectReport aggregates both phases of a projection for observability.
type ProjectReport struct {
	Build projection.BuildReport
	Apply projection.ApplyReport
}
