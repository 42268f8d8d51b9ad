package projection

import (
	"fmt"
	"strings"
)

// SkippedPatch records one patch that could not be applied.
type SkippedPatch struct {
	Pointer string
	Reason  string
}

// ApplyReport aggregates the outcome of applying a patch set.
type ApplyReport struct {
	Applied int
	Skipped []SkippedPatch
}

// Apply writes each patch into the execution-state tree at its dot-separated
// pointer path, creating intermediate containers as needed. Patches are
// applied in the order given (Build emits them sorted by pointer).
//
// A patch that cannot be applied - a scalar sitting where the path needs a
// container - is skipped and reported, and the remaining patches still
// apply. Partial hydration is an explicit policy: in an interactive tool it
// beats total failure.
func Apply(state map[string]any, patches []Patch) (map[string]any, ApplyReport) {
	if state == nil {
		state = make(map[string]any)
	}

	var report ApplyReport
	for _, p := range patches {
		if err := applyOne(state, p); err != nil {
			report.Skipped = append(report.Skipped, SkippedPatch{Pointer: p.Pointer, Reason: err.Error()})
			continue
		}
		report.Applied++
	}
	return state, report
}

func applyOne(state map[string]any, p Patch) error {
	segments := strings.Split(p.Pointer, ".")
	for _, seg := range segments {
		if seg == "" {
			return fmt.Errorf("malformed pointer %q", p.Pointer)
		}
	}

	node := state
	for _, seg := range segments[:len(segments)-1] {
		child, ok := node[seg]
		if !ok {
			next := make(map[string]any)
			node[seg] = next
			node = next
			continue
		}
		next, ok := child.(map[string]any)
		if !ok {
			return fmt.Errorf("segment %q holds %T, not a container", seg, child)
		}
		node = next
	}

	leaf := segments[len(segments)-1]
	if existing, ok := node[leaf]; ok {
		if _, isContainer := existing.(map[string]any); isContainer {
			return fmt.Errorf("segment %q holds a container, refusing to overwrite with a scalar", leaf)
		}
	}
	node[leaf] = p.Value
	return nil
}
