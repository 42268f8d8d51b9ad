// Package view contains the pure assembly rules for resolved context views:
// run selection, normalization, and the structural invariants every consumer
// relies on. This is part of the Functional Core - no I/O, only pure
// functions.
package view

import (
	"time"

	"github.com/example/canopy/internal/core/fact"
	"github.com/example/canopy/internal/core/run"
)

// Run is an intake run as seen by consumers of a resolved view.
type Run struct {
	ID           string     `json:"id"`
	ScopeID      string     `json:"scopeId"`
	Status       run.Status `json:"status"`
	AllowPartial bool       `json:"allowPartial"`
	CommittedAt  string     `json:"committedAt,omitempty"` // RFC3339, empty while draft
	CreatedAt    string     `json:"createdAt"`             // RFC3339
	UpdatedAt    string     `json:"updatedAt"`             // RFC3339
}

// ContextView is the read-only aggregate resolved from a committed run.
//
// Serialization is deterministic: encoding/json emits map keys in sorted
// order, constraints and artifact buckets are pre-sorted by Normalize, so
// two independent consumers marshaling the same view produce identical
// bytes.
type ContextView struct {
	Run             Run                        `json:"run"`
	SourcesByID     map[string]fact.Source     `json:"sourcesById"`
	InputsByPointer map[string]fact.Input      `json:"inputsByPointer"`
	Constraints     []fact.Constraint          `json:"constraints"`
	ArtifactsByType map[string][]fact.Artifact `json:"artifactsByType"`
}

// parseStamp parses an RFC3339 timestamp, returning the zero time for empty
// or malformed input so comparisons stay total.
func parseStamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
