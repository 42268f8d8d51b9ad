package app

import (
	"github.com/example/canopy/internal/core/gap"
	"github.com/example/canopy/internal/ports/primary"
)

// GapServiceImpl implements the GapService interface over a loaded
// requirement registry.
type GapServiceImpl struct {
	registry []gap.Requirement
}

// NewGapService creates a new GapService.
func NewGapService(registry []gap.Requirement) *GapServiceImpl {
	return &GapServiceImpl{registry: registry}
}

var _ primary.GapService = (*GapServiceImpl)(nil)

// MissingPointers returns registry pointers of the given severity that are
// unset in state, in registry-declared order.
func (s *GapServiceImpl) MissingPointers(state map[string]any, severity gap.Severity) []string {
	return gap.MissingPointers(state, s.registry, severity)
}

// Requirements exposes the registry entries, in declared order.
func (s *GapServiceImpl) Requirements() []gap.Requirement {
	out := make([]gap.Requirement, len(s.registry))
	copy(out, s.registry)
	return out
}
