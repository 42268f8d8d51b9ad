package app

import (
	"encoding/json"

	"github.com/example/canopy/internal/core/fact"
	"github.com/example/canopy/internal/core/run"
	"github.com/example/canopy/internal/core/view"
	"github.com/example/canopy/internal/ports/secondary"
)

// Conversions between the core fact vocabulary and the flat persistence
// records. The one-of value invariant is enforced in the core before
// anything reaches a record, so these stay mechanical.

func runRecordToView(rec *secondary.RunRecord) *view.Run {
	return &view.Run{
		ID:           rec.ID,
		ScopeID:      rec.ScopeID,
		Status:       run.Status(rec.Status),
		AllowPartial: rec.AllowPartial,
		CommittedAt:  rec.CommittedAt,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func sourceToRecord(s fact.Source) *secondary.SourceRecord {
	return &secondary.SourceRecord{
		ID:          s.ID,
		RunID:       s.RunID,
		Kind:        string(s.Kind),
		Title:       s.Title,
		URI:         s.URI,
		FileRef:     s.FileRef,
		MimeType:    s.MimeType,
		SizeBytes:   s.SizeBytes,
		ParseStatus: string(s.ParseStatus),
		Excerpt:     s.Excerpt,
		RawMetadata: s.RawMetadata,
		CreatedAt:   s.CreatedAt,
	}
}

func recordToSource(rec *secondary.SourceRecord) fact.Source {
	return fact.Source{
		ID:          rec.ID,
		RunID:       rec.RunID,
		Kind:        fact.SourceKind(rec.Kind),
		Title:       rec.Title,
		URI:         rec.URI,
		FileRef:     rec.FileRef,
		MimeType:    rec.MimeType,
		SizeBytes:   rec.SizeBytes,
		ParseStatus: fact.ParseStatus(rec.ParseStatus),
		Excerpt:     rec.Excerpt,
		RawMetadata: rec.RawMetadata,
		CreatedAt:   rec.CreatedAt,
	}
}

func inputToRecord(in fact.Input) (*secondary.InputRecord, error) {
	var optionsJSON string
	if len(in.Options) > 0 {
		raw, err := json.Marshal(in.Options)
		if err != nil {
			return nil, err
		}
		optionsJSON = string(raw)
	}

	return &secondary.InputRecord{
		ID:           in.ID,
		RunID:        in.RunID,
		Pointer:      in.Pointer,
		Label:        in.Label,
		Domain:       string(in.Domain),
		Required:     in.Required,
		FieldType:    string(in.FieldType),
		OptionsJSON:  optionsJSON,
		ValueKind:    valueKindColumn(in.Value),
		ValueString:  in.Value.String,
		ValueNumber:  in.Value.Number,
		ValueBoolean: in.Value.Boolean,
		ValueEnum:    in.Value.Enum,
		ValueJSON:    in.Value.JSON,
		Provenance:   string(in.Provenance),
		Snippet:      in.Snippet,
		UpdatedBy:    string(in.UpdatedBy),
		UpdatedAt:    in.UpdatedAt,
	}, nil
}

func recordToInput(rec *secondary.InputRecord, sourceIDs []string) (fact.Input, error) {
	var options []string
	if rec.OptionsJSON != "" {
		if err := json.Unmarshal([]byte(rec.OptionsJSON), &options); err != nil {
			return fact.Input{}, err
		}
	}

	return fact.Input{
		ID:         rec.ID,
		RunID:      rec.RunID,
		Pointer:    rec.Pointer,
		Label:      rec.Label,
		Domain:     fact.Domain(rec.Domain),
		Required:   rec.Required,
		FieldType:  fact.FieldType(rec.FieldType),
		Options:    options,
		Value:      recordValue(rec.ValueKind, rec.ValueString, rec.ValueNumber, rec.ValueBoolean, rec.ValueEnum, rec.ValueJSON),
		Provenance: fact.Provenance(rec.Provenance),
		Snippet:    rec.Snippet,
		SourceIDs:  sourceIDs,
		UpdatedBy:  fact.Actor(rec.UpdatedBy),
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}

func constraintToRecord(c fact.Constraint) *secondary.ConstraintRecord {
	return &secondary.ConstraintRecord{
		ID:           c.ID,
		RunID:        c.RunID,
		Key:          c.Key,
		Domain:       string(c.Domain),
		Label:        c.Label,
		ValueKind:    valueKindColumn(c.Value),
		ValueString:  c.Value.String,
		ValueNumber:  c.Value.Number,
		ValueBoolean: c.Value.Boolean,
		ValueEnum:    c.Value.Enum,
		ValueJSON:    c.Value.JSON,
		Provenance:   string(c.Provenance),
		SourceID:     c.SourceID,
		Snippet:      c.Snippet,
		CreatedAt:    c.CreatedAt,
	}
}

func recordToConstraint(rec *secondary.ConstraintRecord) fact.Constraint {
	return fact.Constraint{
		ID:         rec.ID,
		RunID:      rec.RunID,
		Key:        rec.Key,
		Domain:     fact.Domain(rec.Domain),
		Label:      rec.Label,
		Value:      recordValue(rec.ValueKind, rec.ValueString, rec.ValueNumber, rec.ValueBoolean, rec.ValueEnum, rec.ValueJSON),
		Provenance: fact.Provenance(rec.Provenance),
		SourceID:   rec.SourceID,
		Snippet:    rec.Snippet,
		CreatedAt:  rec.CreatedAt,
	}
}

func artifactToRecord(a fact.Artifact) *secondary.ArtifactRecord {
	return &secondary.ArtifactRecord{
		ID:         a.ID,
		RunID:      a.RunID,
		Kind:       a.Kind,
		Title:      a.Title,
		URI:        a.URI,
		CreatedAt:  a.CreatedAt,
		Superseded: a.Superseded,
	}
}

func recordToArtifact(rec *secondary.ArtifactRecord) fact.Artifact {
	return fact.Artifact{
		ID:         rec.ID,
		RunID:      rec.RunID,
		Kind:       rec.Kind,
		Title:      rec.Title,
		URI:        rec.URI,
		CreatedAt:  rec.CreatedAt,
		Superseded: rec.Superseded,
	}
}

// valueKindColumn returns the kind discriminant for storage, empty for an
// unset value.
func valueKindColumn(v fact.Value) string {
	if !v.IsSet() {
		return ""
	}
	return string(v.Kind)
}

// recordValue reassembles a Value from its flat columns.
func recordValue(kind string, s *string, n *float64, b *bool, e *string, j *string) fact.Value {
	if kind == "" {
		return fact.NoValue()
	}
	return fact.Value{
		Kind:    fact.ValueKind(kind),
		String:  s,
		Number:  n,
		Boolean: b,
		Enum:    e,
		JSON:    j,
	}
}
