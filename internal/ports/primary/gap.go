package primary

import "github.com/example/canopy/internal/core/gap"

// GapService defines the primary port for requirement gap analysis.
type GapService interface {
	// MissingPointers returns registry pointers of the given severity that
	// are unset in state, in registry-declared order.
	MissingPointers(state map[string]any, severity gap.Severity) []string

	// Requirements exposes the registry entries, in declared order.
	Requirements() []gap.Requirement
}
