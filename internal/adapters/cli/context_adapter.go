package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/example/canopy/internal/core/fact"
	"github.com/example/canopy/internal/core/view"
	"github.com/example/canopy/internal/ports/primary"
)

// ContextAdapter translates CLI operations to ContextService and
// ProjectionService calls.
type ContextAdapter struct {
	contexts    primary.ContextService
	projections primary.ProjectionService
	out         io.Writer
}

// NewContextAdapter creates a new ContextAdapter.
func NewContextAdapter(contexts primary.ContextService, projections primary.ProjectionService, out io.Writer) *ContextAdapter {
	return &ContextAdapter{
		contexts:    contexts,
		projections: projections,
		out:         out,
	}
}

// Show resolves a scope's context view and prints a human-readable summary.
func (a *ContextAdapter) Show(ctx context.Context, scopeID string, opts primary.ResolveOptions) error {
	v, err := a.contexts.Resolve(ctx, scopeID, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "\nContext for scope %s (run %s, %s)\n", v.Run.ScopeID, v.Run.ID, v.Run.Status)
	fmt.Fprintf(a.out, "Committed: %s\n\n", v.Run.CommittedAt)

	fmt.Fprintf(a.out, "Inputs (%d):\n", len(v.InputsByPointer))
	for _, in := range sortedInputs(v) {
		evidence := ""
		if n := len(in.SourceIDs); n > 0 {
			evidence = fmt.Sprintf(" [%d source(s)]", n)
		}
		fmt.Fprintf(a.out, "  %s = %s (%s)%s\n", in.Pointer, formatValue(in.Value), in.Provenance, evidence)
	}

	fmt.Fprintf(a.out, "\nConstraints (%d):\n", len(v.Constraints))
	for _, c := range v.Constraints {
		fmt.Fprintf(a.out, "  %s = %s (%s)\n", c.Key, formatValue(c.Value), c.Provenance)
	}

	fmt.Fprintf(a.out, "\nSources: %d, artifact kinds: %d\n\n", len(v.SourcesByID), len(v.ArtifactsByType))
	return nil
}

// Export resolves a scope's context view and writes it as indented JSON.
// Output is deterministic: two exports of the same run are byte-identical.
func (a *ContextAdapter) Export(ctx context.Context, scopeID string, opts primary.ResolveOptions) error {
	v, err := a.contexts.Resolve(ctx, scopeID, opts)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Project resolves a scope's context view and merges it into the given
// execution-state tree, printing a report of what was applied, dropped,
// and skipped.
func (a *ContextAdapter) Project(ctx context.Context, scopeID string, opts primary.ResolveOptions, state map[string]any) (map[string]any, error) {
	v, err := a.contexts.Resolve(ctx, scopeID, opts)
	if err != nil {
		return nil, err
	}

	merged, report := a.projections.Project(v, state)

	fmt.Fprintf(a.out, "✓ Projected run %s: %d patch(es) applied\n", v.Run.ID, report.Apply.Applied)
	if report.Build.SkippedEmpty > 0 {
		fmt.Fprintf(a.out, "  %d empty value(s) skipped\n", report.Build.SkippedEmpty)
	}
	for _, key := range report.Build.DroppedKeys {
		fmt.Fprintf(a.out, "  dropped constraint key %s (no pointer mapping)\n", key)
	}
	for _, skipped := range report.Apply.Skipped {
		fmt.Fprintf(a.out, "  skipped %s: %s\n", skipped.Pointer, skipped.Reason)
	}

	return merged, nil
}

// sortedInputs returns the view's inputs in pointer order for stable
// display.
func sortedInputs(v *view.ContextView) []fact.Input {
	pointers := make([]string, 0, len(v.InputsByPointer))
	for p := range v.InputsByPointer {
		pointers = append(pointers, p)
	}
	sort.Strings(pointers)

	inputs := make([]fact.Input, len(pointers))
	for i, p := range pointers {
		inputs[i] = v.InputsByPointer[p]
	}
	return inputs
}
