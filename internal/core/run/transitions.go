// Package run contains the pure lifecycle rules for intake runs.
// This is part of the Functional Core - no I/O, only pure functions.
package run

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotDraft marks a commit or intake write attempted on a run that
// already left draft. Callers assert on it with errors.Is; the guard's
// Reason carries the human detail.
var ErrNotDraft = errors.New("run is not in draft status")

// Status represents the lifecycle states of a run.
type Status string

const (
	// StatusDraft is the initial, mutable state.
	StatusDraft Status = "draft"
	// StatusCommitted is terminal: every required fact was asserted filled
	// by the caller.
	StatusCommitted Status = "committed"
	// StatusPartialCommitted is terminal: the caller explicitly acknowledged
	// committing with required facts still unset.
	StatusPartialCommitted Status = "partial_committed"
)

// InitialStatus returns the status for a newly created run.
func InitialStatus() Status {
	return StatusDraft
}

// IsCommitted reports whether s is one of the two terminal commit states.
func IsCommitted(s Status) bool {
	return s == StatusCommitted || s == StatusPartialCommitted
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error returns the guard result as an error if not allowed, nil otherwise.
// Disallowed results wrap ErrNotDraft so callers can distinguish the
// lifecycle refusal from other failures.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s: %w", r.Reason, ErrNotDraft)
}

// CanCommit evaluates whether a run in the given status may commit.
// Rule: a run commits exactly once; there is no re-commit and no un-commit.
func CanCommit(runID string, s Status) GuardResult {
	if IsCommitted(s) {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("run %s is already committed (status %s) - a new intake cycle needs a new run", runID, s),
		}
	}
	if s != StatusDraft {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("run %s has unexpected status %q, only draft runs can commit", runID, s),
		}
	}
	return GuardResult{Allowed: true}
}

// CanMutate evaluates whether a run in the given status accepts fact writes.
// Rule: sources, inputs, and constraints are append-only while draft and
// frozen after commit. Artifacts are exempt (superseding renders).
func CanMutate(runID string, s Status) GuardResult {
	if s != StatusDraft {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("run %s is %s and no longer accepts intake writes", runID, s),
		}
	}
	return GuardResult{Allowed: true}
}

// CommitResult captures the state produced by a commit transition.
type CommitResult struct {
	NewStatus   Status
	CommittedAt time.Time
}

// ApplyCommit computes the commit transition. allowPartial is the caller's
// explicit acknowledgment that required facts may be unset; this function
// never inspects fact completeness itself.
func ApplyCommit(allowPartial bool, now time.Time) CommitResult {
	status := StatusCommitted
	if allowPartial {
		status = StatusPartialCommitted
	}
	return CommitResult{
		NewStatus:   status,
		CommittedAt: now,
	}
}

// CheckCommitStamp verifies the commit-timestamp invariant: committedAt is
// present iff the status is a terminal commit state. Returns a description
// of the violation, or empty when the invariant holds.
func CheckCommitStamp(s Status, committedAt string) string {
	committed := IsCommitted(s)
	stamped := committedAt != ""
	switch {
	case committed && !stamped:
		return fmt.Sprintf("status %s requires committedAt", s)
	case !committed && stamped:
		return fmt.Sprintf("status %s forbids committedAt (have %s)", s, committedAt)
	}
	return ""
}
