package view

import (
	"fmt"

	"github.com/example/canopy/internal/core/run"
)

// Invariant names the structural cross-checks a resolved view must pass.
type Invariant string

const (
	// InvariantKeyDrift: every map key equals the id/pointer field of its
	// value.
	InvariantKeyDrift Invariant = "map_key_drift"
	// InvariantEvidenceResolution: every evidence reference resolves to a
	// source present in the view.
	InvariantEvidenceResolution Invariant = "evidence_resolution"
	// InvariantCommitStamp: committedAt is present iff the run is committed.
	InvariantCommitStamp Invariant = "commit_stamp"
)

// InvariantError reports a structurally inconsistent view. It names the
// scope, the run, and the specific invariant broken - never a generic
// failure - because this check is the last line of defense against
// corrupted reads.
type InvariantError struct {
	ScopeID   string
	RunID     string
	Invariant Invariant
	Detail    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("context view invariant %s violated for run %s (scope %s): %s",
		e.Invariant, e.RunID, e.ScopeID, e.Detail)
}

// NoCommittedContextError reports that a scope has no committed run to
// resolve. Raised instead of returning an empty or default view.
type NoCommittedContextError struct {
	ScopeID string
}

func (e *NoCommittedContextError) Error() string {
	return fmt.Sprintf("no committed context for scope %s", e.ScopeID)
}

// Check validates the structural invariants. Called on every resolve, after
// normalization, regardless of what the store enforced at write time.
func Check(v *ContextView) error {
	fail := func(inv Invariant, format string, args ...any) error {
		return &InvariantError{
			ScopeID:   v.Run.ScopeID,
			RunID:     v.Run.ID,
			Invariant: inv,
			Detail:    fmt.Sprintf(format, args...),
		}
	}

	if violation := run.CheckCommitStamp(v.Run.Status, v.Run.CommittedAt); violation != "" {
		return fail(InvariantCommitStamp, "%s", violation)
	}

	for key, src := range v.SourcesByID {
		if key != src.ID {
			return fail(InvariantKeyDrift, "sourcesById[%s] holds source %s", key, src.ID)
		}
	}
	for key, in := range v.InputsByPointer {
		if key != in.Pointer {
			return fail(InvariantKeyDrift, "inputsByPointer[%s] holds input with pointer %s", key, in.Pointer)
		}
	}

	for pointer, in := range v.InputsByPointer {
		for _, srcID := range in.SourceIDs {
			if _, ok := v.SourcesByID[srcID]; !ok {
				return fail(InvariantEvidenceResolution, "input %s links source %s which is not in the view", pointer, srcID)
			}
		}
	}
	for _, c := range v.Constraints {
		if c.SourceID == "" {
			continue
		}
		if _, ok := v.SourcesByID[c.SourceID]; !ok {
			return fail(InvariantEvidenceResolution, "constraint %s references source %s which is not in the view", c.Key, c.SourceID)
		}
	}

	return nil
}
