package secondary

import (
	"errors"

	"github.com/example/canopy/internal/core/run"
)

// Sentinel errors the persistence layer may return. Services pass them
// through untouched so adapters can be swapped without rewriting error
// handling.
var (
	// ErrNotFound reports that no record matches the given identity.
	ErrNotFound = errors.New("record not found")

	// ErrNotDraft reports that a run-state transition found the run no
	// longer in draft (already committed, possibly by a concurrent
	// caller). Shared with the pure lifecycle guards so errors.Is matches
	// whichever layer refused first.
	ErrNotDraft = run.ErrNotDraft

	// ErrDenied reports that the storage layer's authorization policy
	// rejected the operation for an authenticated caller. Distinct from
	// ErrUnauthenticated because the recovery differs: request access
	// versus log in. The local sqlite adapter never returns either; remote
	// adapters may.
	ErrDenied = errors.New("access denied by storage policy")

	// ErrUnauthenticated reports that the storage layer could not identify
	// the caller at all.
	ErrUnauthenticated = errors.New("not authenticated to storage")
)
