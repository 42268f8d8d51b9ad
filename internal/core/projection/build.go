// Package projection contains the pure rules for turning a resolved context
// view into pointer patches and merging them into an execution-state tree.
// This is part of the Functional Core - no I/O, only pure functions.
package projection

import (
	"sort"

	"github.com/example/canopy/internal/core/view"
)

// ContextVersionPointer is the synthetic patch every projection emits so
// consumers can detect a stale hydration. Its value is the run's commit
// timestamp.
const ContextVersionPointer = "contextVersionId"

// Patch is a single pointer write derived from a resolved view.
type Patch struct {
	Pointer string `json:"pointer"`
	Value   any    `json:"value"`
}

// BuildReport carries the patch set plus the observability counters for
// everything Build chose to leave out.
type BuildReport struct {
	Patches []Patch
	// DroppedKeys lists constraint keys absent from the key-to-pointer
	// mapping, in encounter order. Dropping them is intentional
	// (forward-compatible schema evolution) but must stay observable.
	DroppedKeys []string
	// SkippedEmpty counts facts whose value was empty or blank. Projecting
	// "no information" must never overwrite downstream state with a null.
	SkippedEmpty int
}

// Build converts a normalized view into its patch set.
//
// Evaluation order is fixed and is the tie-break for pointer collisions:
// constraints are folded in first, inputs after, so when an input and a
// mapped constraint target the same pointer the input's value wins. Within
// constraints, later entries in normalized (key, id) order overwrite earlier
// ones. The final list is sorted by pointer ascending; combined with
// last-write-wins application this makes repeated application idempotent.
func Build(v *view.ContextView, keyToPointer map[string]string) BuildReport {
	var report BuildReport
	byPointer := make(map[string]any)

	for _, c := range v.Constraints {
		pointer, mapped := keyToPointer[c.Key]
		if !mapped {
			report.DroppedKeys = append(report.DroppedKeys, c.Key)
			continue
		}
		if c.Value.IsEmpty() {
			report.SkippedEmpty++
			continue
		}
		byPointer[pointer] = c.Value.Scalar()
	}

	for pointer, in := range v.InputsByPointer {
		if in.Value.IsEmpty() {
			report.SkippedEmpty++
			continue
		}
		byPointer[pointer] = in.Value.Scalar()
	}

	byPointer[ContextVersionPointer] = v.Run.CommittedAt

	report.Patches = make([]Patch, 0, len(byPointer))
	for pointer, value := range byPointer {
		report.Patches = append(report.Patches, Patch{Pointer: pointer, Value: value})
	}
	sort.Slice(report.Patches, func(i, j int) bool {
		return report.Patches[i].Pointer < report.Patches[j].Pointer
	})

	return report
}
