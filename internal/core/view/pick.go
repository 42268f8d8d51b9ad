package view

import (
	"sort"

	"github.com/example/canopy/internal/core/run"
)

// PickRun selects the run a scope resolves to when no run is pinned: the
// latest commit. Draft runs never qualify. The order is total so selection
// is deterministic even under data that should be impossible in practice:
//
//  1. committedAt descending
//  2. updatedAt descending
//  3. id ascending
//
// The boolean is false when no committed run exists; callers turn that into
// a no-committed-context error rather than an empty view.
func PickRun(runs []Run) (Run, bool) {
	var qualified []Run
	for _, r := range runs {
		if run.IsCommitted(r.Status) {
			qualified = append(qualified, r)
		}
	}
	if len(qualified) == 0 {
		return Run{}, false
	}

	sort.Slice(qualified, func(i, j int) bool {
		ci, cj := parseStamp(qualified[i].CommittedAt), parseStamp(qualified[j].CommittedAt)
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		ui, uj := parseStamp(qualified[i].UpdatedAt), parseStamp(qualified[j].UpdatedAt)
		if !ui.Equal(uj) {
			return ui.After(uj)
		}
		return qualified[i].ID < qualified[j].ID
	})

	return qualified[0], true
}
