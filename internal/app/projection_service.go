package app

import (
	"log/slog"

	"github.com/example/canopy/internal/core/projection"
	"github.com/example/canopy/internal/core/view"
	"github.com/example/canopy/internal/ports/primary"
)

// ProjectionServiceImpl implements the ProjectionService interface.
type ProjectionServiceImpl struct {
	keyToPointer map[string]string
	logger       *slog.Logger
}

// NewProjectionService creates a new ProjectionService over the static
// constraint key mapping.
func NewProjectionService(keyToPointer map[string]string, logger *slog.Logger) *ProjectionServiceImpl {
	return &ProjectionServiceImpl{
		keyToPointer: keyToPointer,
		logger:       logger,
	}
}

var _ primary.ProjectionService = (*ProjectionServiceImpl)(nil)

// BuildPatches converts a resolved view into its ordered patch set.
func (s *ProjectionServiceImpl) BuildPatches(v *view.ContextView) projection.BuildReport {
	report := projection.Build(v, s.keyToPointer)
	for _, key := range report.DroppedKeys {
		s.logger.Warn("constraint key has no pointer mapping, dropped", "run", v.Run.ID, "key", key)
	}
	return report
}

// ApplyPatches merges patches into the state tree.
func (s *ProjectionServiceImpl) ApplyPatches(state map[string]any, patches []projection.Patch) (map[string]any, projection.ApplyReport) {
	merged, report := projection.Apply(state, patches)
	for _, skipped := range report.Skipped {
		s.logger.Warn("patch skipped", "pointer", skipped.Pointer, "reason", skipped.Reason)
	}
	return merged, report
}

// Project is BuildPatches followed by ApplyPatches.
func (s *ProjectionServiceImpl) Project(v *view.ContextView, state map[string]any) (map[string]any, primary.ProjectReport) {
	build := s.BuildPatches(v)
	merged, apply := s.ApplyPatches(state, build.Patches)
	return merged, primary.ProjectReport{Build: build, Apply: apply}
}
