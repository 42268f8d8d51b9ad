// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/example/canopy/internal/core/fact"
	"github.com/example/canopy/internal/ports/primary"
)

// IntakeAdapter is a thin adapter that translates CLI operations to
// IntakeService calls. It depends only on the IntakeService interface,
// enabling easy testing with mocks.
type IntakeAdapter struct {
	service primary.IntakeService
	out     io.Writer
}

// NewIntakeAdapter creates a new IntakeAdapter with the given service.
func NewIntakeAdapter(service primary.IntakeService, out io.Writer) *IntakeAdapter {
	return &IntakeAdapter{
		service: service,
		out:     out,
	}
}

// CreateRun opens a new draft run for a scope.
func (a *IntakeAdapter) CreateRun(ctx context.Context, scopeID string) error {
	r, err := a.service.CreateDraftRun(ctx, scopeID)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Created draft run %s for scope %s\n", r.ID, r.ScopeID)
	return nil
}

// ListRuns lists a scope's runs, newest first.
func (a *IntakeAdapter) ListRuns(ctx context.Context, scopeID string) error {
	runs, err := a.service.ListRuns(ctx, scopeID)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintf(a.out, "No runs found for scope %s\n", scopeID)
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCOMMITTED\tCREATED")
	fmt.Fprintln(w, "--\t------\t---------\t-------")
	for _, r := range runs {
		committed := r.CommittedAt
		if committed == "" {
			committed = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.Status, committed, r.CreatedAt)
	}
	return w.Flush()
}

// ShowRun displays details for a single run, with record counts.
func (a *IntakeAdapter) ShowRun(ctx context.Context, runID string) error {
	r, err := a.service.GetRun(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	fmt.Fprintf(a.out, "\nRun:     %s\n", r.ID)
	fmt.Fprintf(a.out, "Scope:   %s\n", r.ScopeID)
	fmt.Fprintf(a.out, "Status:  %s\n", r.Status)
	if r.CommittedAt != "" {
		fmt.Fprintf(a.out, "Committed: %s\n", r.CommittedAt)
	}
	fmt.Fprintf(a.out, "Created: %s\n", r.CreatedAt)
	fmt.Fprintf(a.out, "Updated: %s\n", r.UpdatedAt)

	sources, err := a.service.ListSources(ctx, runID)
	if err != nil {
		return err
	}
	inputs, err := a.service.ListInputs(ctx, runID)
	if err != nil {
		return err
	}
	constraints, err := a.service.ListConstraints(ctx, runID)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Records: %d sources, %d inputs, %d constraints\n",
		len(sources), len(inputs), len(constraints))
	fmt.Fprintln(a.out)

	return nil
}

// Commit transitions a draft run to committed or partial_committed.
func (a *IntakeAdapter) Commit(ctx context.Context, runID string, allowPartial bool) error {
	r, err := a.service.CommitRun(ctx, primary.CommitRunRequest{
		RunID:        runID,
		AllowPartial: allowPartial,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Run %s committed as %s at %s\n", r.ID, r.Status, r.CommittedAt)
	return nil
}

// AddSource records a single evidence source.
func (a *IntakeAdapter) AddSource(ctx context.Context, runID string, src fact.Source) error {
	ids, err := a.service.UpsertSources(ctx, runID, []fact.Source{src})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Added source %s (%s) to run %s\n", ids[0], src.Kind, runID)
	return nil
}

// ListSources lists a run's evidence sources.
func (a *IntakeAdapter) ListSources(ctx context.Context, runID string) error {
	sources, err := a.service.ListSources(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		fmt.Fprintf(a.out, "No sources on run %s\n", runID)
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tPARSE\tTITLE")
	fmt.Fprintln(w, "--\t----\t-----\t-----")
	for _, s := range sources {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.Kind, s.ParseStatus, s.Title)
	}
	return w.Flush()
}

// MarkParsed updates a source's parse status.
func (a *IntakeAdapter) MarkParsed(ctx context.Context, runID, sourceID string, status fact.ParseStatus) error {
	if err := a.service.MarkSourceParsed(ctx, runID, sourceID, status); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Source %s marked %s\n", sourceID, status)
	return nil
}

// SetInput records a single input fact.
func (a *IntakeAdapter) SetInput(ctx context.Context, runID string, in fact.Input) error {
	ids, err := a.service.UpsertInputs(ctx, runID, []fact.Input{in})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Set input %s (%s) on run %s\n", in.Pointer, ids[0], runID)
	return nil
}

// ListInputs lists a run's inputs in pointer order.
func (a *IntakeAdapter) ListInputs(ctx context.Context, runID string) error {
	inputs, err := a.service.ListInputs(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to list inputs: %w", err)
	}

	if len(inputs) == 0 {
		fmt.Fprintf(a.out, "No inputs on run %s\n", runID)
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "POINTER\tVALUE\tPROVENANCE\tEVIDENCE")
	fmt.Fprintln(w, "-------\t-----\t----------\t--------")
	for _, in := range inputs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			in.Pointer, formatValue(in.Value), in.Provenance, len(in.SourceIDs))
	}
	return w.Flush()
}

// ImportSuggestions records a batch of candidate inputs produced by an
// external extractor. Provenance is forced to model_inferred regardless of
// what the batch claims; the records go through the same validation path
// as hand-entered inputs.
func (a *IntakeAdapter) ImportSuggestions(ctx context.Context, runID string, inputs []fact.Input) error {
	for i := range inputs {
		inputs[i].Provenance = fact.ProvenanceModelInferred
	}

	ids, err := a.service.UpsertInputs(ctx, runID, inputs)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Imported %d suggested input(s) into run %s\n", len(ids), runID)
	return nil
}

// LinkEvidence records evidence links from one input to sources.
func (a *IntakeAdapter) LinkEvidence(ctx context.Context, runID, inputID string, sourceIDs []string) error {
	links := make([]primary.InputSourceLink, len(sourceIDs))
	for i, srcID := range sourceIDs {
		links[i] = primary.InputSourceLink{InputID: inputID, SourceID: srcID}
	}
	if err := a.service.LinkInputSources(ctx, runID, links); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Linked input %s to %d source(s)\n", inputID, len(sourceIDs))
	return nil
}

// AddConstraint records a single constraint fact.
func (a *IntakeAdapter) AddConstraint(ctx context.Context, runID string, c fact.Constraint) error {
	ids, err := a.service.UpsertConstraints(ctx, runID, []fact.Constraint{c})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Added constraint %s (%s) to run %s\n", c.Key, ids[0], runID)
	return nil
}

// ListConstraints lists a run's constraints in key order.
func (a *IntakeAdapter) ListConstraints(ctx context.Context, runID string) error {
	constraints, err := a.service.ListConstraints(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to list constraints: %w", err)
	}

	if len(constraints) == 0 {
		fmt.Fprintf(a.out, "No constraints on run %s\n", runID)
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE\tPROVENANCE\tSOURCE")
	fmt.Fprintln(w, "---\t-----\t----------\t------")
	for _, c := range constraints {
		srcID := c.SourceID
		if srcID == "" {
			srcID = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Key, formatValue(c.Value), c.Provenance, srcID)
	}
	return w.Flush()
}

// AddArtifact registers a generated artifact against a run.
func (a *IntakeAdapter) AddArtifact(ctx context.Context, runID string, art fact.Artifact) error {
	ids, err := a.service.AddArtifacts(ctx, runID, []fact.Artifact{art})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Added %s artifact %s to run %s\n", art.Kind, ids[0], runID)
	return nil
}

// ListArtifacts lists a run's artifacts, superseded ones flagged.
func (a *IntakeAdapter) ListArtifacts(ctx context.Context, runID string) error {
	artifacts, err := a.service.ListArtifacts(ctx, runID)
	if err != nil {
		return fmt.Errorf("failed to list artifacts: %w", err)
	}

	if len(artifacts) == 0 {
		fmt.Fprintf(a.out, "No artifacts on run %s\n", runID)
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tKIND\tTITLE\tCREATED")
	fmt.Fprintln(w, "--\t----\t-----\t-------")
	for _, art := range artifacts {
		title := art.Title
		if art.Superseded {
			title += " (superseded)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", art.ID, art.Kind, title, art.CreatedAt)
	}
	return w.Flush()
}

// SupersedeArtifact flags an artifact as replaced.
func (a *IntakeAdapter) SupersedeArtifact(ctx context.Context, runID, artifactID string) error {
	if err := a.service.SupersedeArtifact(ctx, runID, artifactID); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Artifact %s superseded\n", artifactID)
	return nil
}

// formatValue renders a one-of value for table output.
func formatValue(v fact.Value) string {
	if !v.IsSet() {
		return "(unset)"
	}
	return fmt.Sprintf("%v", v.Scalar())
}
