package fact

import (
	"fmt"
	"strings"
)

// Rule is a machine-readable identifier for a validation rule.
// Tests and callers assert on rules, not on message text.
type Rule string

const (
	// RuleValueOneOf fires when more than one value field is populated.
	RuleValueOneOf Rule = "value_one_of"
	// RuleValueKindMismatch fires when the populated field is not the one
	// selected by the kind tag.
	RuleValueKindMismatch Rule = "value_kind_mismatch"
	// RuleValueKindUnknown fires on an undeclared kind tag with a set value.
	RuleValueKindUnknown Rule = "value_kind_unknown"
	// RuleProvenanceUnknownValue fires when a fact claims unknown provenance
	// but carries a value. An unknown fact cannot know anything.
	RuleProvenanceUnknownValue Rule = "provenance_unknown_value"
	// RuleProvenanceInvalid fires on an undeclared provenance tier.
	RuleProvenanceInvalid Rule = "provenance_invalid"
	// RuleEvidenceMissing fires when a source-backed fact has no evidence
	// reference.
	RuleEvidenceMissing Rule = "evidence_missing"
	// RulePointerMissing fires on an input without a pointer.
	RulePointerMissing Rule = "pointer_missing"
	// RuleKeyMissing fires on a constraint without a key.
	RuleKeyMissing Rule = "key_missing"
	// RuleDomainInvalid fires on an undeclared domain.
	RuleDomainInvalid Rule = "domain_invalid"
	// RuleFieldTypeInvalid fires on an undeclared input field type.
	RuleFieldTypeInvalid Rule = "field_type_invalid"
	// RuleActorInvalid fires on an undeclared updated-by actor.
	RuleActorInvalid Rule = "actor_invalid"
	// RuleSourceKindInvalid fires on an undeclared source kind.
	RuleSourceKindInvalid Rule = "source_kind_invalid"
	// RuleParseStatusInvalid fires on an undeclared parse status.
	RuleParseStatusInvalid Rule = "parse_status_invalid"
	// RuleTitleMissing fires on a source without a title.
	RuleTitleMissing Rule = "title_missing"
)

// ValidationError reports a single record failing a single rule, with
// field-level detail.
type ValidationError struct {
	RecordID string
	Field    string
	Rule     Rule
	Detail   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for record %s: field %s violates %s: %s",
		e.RecordID, e.Field, e.Rule, e.Detail)
}

// BatchError wraps a ValidationError with the position of the offending
// record in its batch. Batch validation aborts on the first violation; no
// part of a failing batch is applied.
type BatchError struct {
	Index int
	Err   *ValidationError
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *BatchError) Unwrap() error { return e.Err }

// ValidateValue enforces the one-of-N discriminant: either no value field is
// set (an unset value), or exactly one is set and it is the field selected
// by the kind tag.
func ValidateValue(recordID string, v Value) *ValidationError {
	set := v.setFields()
	if len(set) == 0 {
		return nil
	}
	if len(set) > 1 {
		return &ValidationError{
			RecordID: recordID,
			Field:    strings.Join(set, ","),
			Rule:     RuleValueOneOf,
			Detail:   fmt.Sprintf("%d value fields set, want at most one", len(set)),
		}
	}
	if !KnownKind(v.Kind) {
		return &ValidationError{
			RecordID: recordID,
			Field:    "valueKind",
			Rule:     RuleValueKindUnknown,
			Detail:   fmt.Sprintf("unknown value kind %q", v.Kind),
		}
	}
	if want := fieldForKind(v.Kind); set[0] != want {
		return &ValidationError{
			RecordID: recordID,
			Field:    set[0],
			Rule:     RuleValueKindMismatch,
			Detail:   fmt.Sprintf("kind %s selects %s but %s is set", v.Kind, want, set[0]),
		}
	}
	return nil
}

// validateProvenance enforces the provenance rules shared by inputs and
// constraints: the tier must be declared, and unknown provenance forbids a
// value.
func validateProvenance(recordID string, p Provenance, v Value) *ValidationError {
	if !KnownProvenance(p) {
		return &ValidationError{
			RecordID: recordID,
			Field:    "provenance",
			Rule:     RuleProvenanceInvalid,
			Detail:   fmt.Sprintf("unknown provenance %q", p),
		}
	}
	if p == ProvenanceUnknown && v.IsSet() {
		return &ValidationError{
			RecordID: recordID,
			Field:    "provenance",
			Rule:     RuleProvenanceUnknownValue,
			Detail:   "unknown provenance requires all value fields to be null",
		}
	}
	return nil
}

// ValidateInput checks a single input against the value, provenance, and
// evidence invariants plus basic shape rules.
func ValidateInput(in Input) *ValidationError {
	if strings.TrimSpace(in.Pointer) == "" {
		return &ValidationError{RecordID: in.ID, Field: "pointer", Rule: RulePointerMissing, Detail: "pointer is required"}
	}
	if !KnownDomain(in.Domain) {
		return &ValidationError{RecordID: in.ID, Field: "domain", Rule: RuleDomainInvalid, Detail: fmt.Sprintf("unknown domain %q", in.Domain)}
	}
	if !KnownFieldType(in.FieldType) {
		return &ValidationError{RecordID: in.ID, Field: "fieldType", Rule: RuleFieldTypeInvalid, Detail: fmt.Sprintf("unknown field type %q", in.FieldType)}
	}
	if !KnownActor(in.UpdatedBy) {
		return &ValidationError{RecordID: in.ID, Field: "updatedBy", Rule: RuleActorInvalid, Detail: fmt.Sprintf("updatedBy must be user, model, or system, got %q", in.UpdatedBy)}
	}
	if err := ValidateValue(in.ID, in.Value); err != nil {
		return err
	}
	if err := validateProvenance(in.ID, in.Provenance, in.Value); err != nil {
		return err
	}
	if in.Provenance == ProvenanceSourceBacked && len(in.SourceIDs) == 0 {
		return &ValidationError{
			RecordID: in.ID,
			Field:    "sourceIds",
			Rule:     RuleEvidenceMissing,
			Detail:   "source-backed input requires at least one linked source",
		}
	}
	return nil
}

// ValidateConstraint checks a single constraint against the value,
// provenance, and evidence invariants plus basic shape rules.
func ValidateConstraint(c Constraint) *ValidationError {
	if strings.TrimSpace(c.Key) == "" {
		return &ValidationError{RecordID: c.ID, Field: "key", Rule: RuleKeyMissing, Detail: "key is required"}
	}
	if !KnownDomain(c.Domain) {
		return &ValidationError{RecordID: c.ID, Field: "domain", Rule: RuleDomainInvalid, Detail: fmt.Sprintf("unknown domain %q", c.Domain)}
	}
	if err := ValidateValue(c.ID, c.Value); err != nil {
		return err
	}
	if err := validateProvenance(c.ID, c.Provenance, c.Value); err != nil {
		return err
	}
	if c.Provenance == ProvenanceSourceBacked && strings.TrimSpace(c.SourceID) == "" {
		return &ValidationError{
			RecordID: c.ID,
			Field:    "sourceId",
			Rule:     RuleEvidenceMissing,
			Detail:   "source-backed constraint requires exactly one source reference",
		}
	}
	return nil
}

// ValidateSource checks a single evidence source record.
func ValidateSource(s Source) *ValidationError {
	if !KnownSourceKind(s.Kind) {
		return &ValidationError{RecordID: s.ID, Field: "kind", Rule: RuleSourceKindInvalid, Detail: fmt.Sprintf("unknown source kind %q", s.Kind)}
	}
	if strings.TrimSpace(s.Title) == "" {
		return &ValidationError{RecordID: s.ID, Field: "title", Rule: RuleTitleMissing, Detail: "title is required"}
	}
	if s.ParseStatus != "" && !KnownParseStatus(s.ParseStatus) {
		return &ValidationError{RecordID: s.ID, Field: "parseStatus", Rule: RuleParseStatusInvalid, Detail: fmt.Sprintf("unknown parse status %q", s.ParseStatus)}
	}
	return nil
}

// ValidateInputs validates a batch in order. The first violation aborts the
// batch; nothing from a failing batch may be written.
func ValidateInputs(batch []Input) error {
	for i, in := range batch {
		if err := ValidateInput(in); err != nil {
			return &BatchError{Index: i, Err: err}
		}
	}
	return nil
}

// ValidateConstraints validates a batch in order, aborting on the first
// violation.
func ValidateConstraints(batch []Constraint) error {
	for i, c := range batch {
		if err := ValidateConstraint(c); err != nil {
			return &BatchError{Index: i, Err: err}
		}
	}
	return nil
}

// ValidateSources validates a batch in order, aborting on the first
// violation.
func ValidateSources(batch []Source) error {
	for i, s := range batch {
		if err := ValidateSource(s); err != nil {
			return &BatchError{Index: i, Err: err}
		}
	}
	return nil
}
