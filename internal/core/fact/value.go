// Package fact contains the pure business rules for intake facts.
// This is part of the Functional Core - no I/O, only pure functions.
package fact

import "strings"

// ValueKind discriminates which value field of a Value is populated.
type ValueKind string

const (
	KindString  ValueKind = "string"
	KindNumber  ValueKind = "number"
	KindBoolean ValueKind = "boolean"
	KindEnum    ValueKind = "enum"
	KindJSON    ValueKind = "json"
)

// KnownKind reports whether k is one of the declared value kinds.
func KnownKind(k ValueKind) bool {
	switch k {
	case KindString, KindNumber, KindBoolean, KindEnum, KindJSON:
		return true
	}
	return false
}

// Provenance is the asserted origin/trust tier of a fact's value.
type Provenance string

const (
	ProvenanceSourceBacked  Provenance = "source_backed"
	ProvenanceModelInferred Provenance = "model_inferred"
	ProvenanceUserEntered   Provenance = "user_entered"
	ProvenanceUnknown       Provenance = "unknown"
)

// KnownProvenance reports whether p is one of the declared provenance tiers.
func KnownProvenance(p Provenance) bool {
	switch p {
	case ProvenanceSourceBacked, ProvenanceModelInferred, ProvenanceUserEntered, ProvenanceUnknown:
		return true
	}
	return false
}

// Value is a discriminated one-of-N value. At most one of the five value
// fields is non-nil, selected by Kind. A Value with no field set is "unset";
// its Kind carries no meaning. Construct values through the typed
// constructors rather than struct literals so the discriminant stays honest.
type Value struct {
	Kind    ValueKind `json:"kind,omitempty"`
	String  *string   `json:"string,omitempty"`
	Number  *float64  `json:"number,omitempty"`
	Boolean *bool     `json:"boolean,omitempty"`
	Enum    *string   `json:"enum,omitempty"`
	JSON    *string   `json:"json,omitempty"`
}

// StringValue returns a string-kinded Value.
func StringValue(s string) Value {
	return Value{Kind: KindString, String: &s}
}

// NumberValue returns a number-kinded Value.
func NumberValue(n float64) Value {
	return Value{Kind: KindNumber, Number: &n}
}

// BoolValue returns a boolean-kinded Value.
func BoolValue(b bool) Value {
	return Value{Kind: KindBoolean, Boolean: &b}
}

// EnumValue returns an enum-kinded Value holding the selected option.
func EnumValue(option string) Value {
	return Value{Kind: KindEnum, Enum: &option}
}

// JSONValue returns a json-kinded Value holding a raw JSON document.
func JSONValue(raw string) Value {
	return Value{Kind: KindJSON, JSON: &raw}
}

// NoValue returns an unset Value. Used for required inputs that are
// acknowledged but not yet answered.
func NoValue() Value {
	return Value{}
}

// IsSet reports whether any value field is populated.
func (v Value) IsSet() bool {
	return v.String != nil || v.Number != nil || v.Boolean != nil || v.Enum != nil || v.JSON != nil
}

// IsEmpty reports whether the Value carries no usable information: either
// unset, or a set string-like field that is blank. Projection drops empty
// values so "no information" never overwrites downstream state.
func (v Value) IsEmpty() bool {
	switch {
	case !v.IsSet():
		return true
	case v.String != nil:
		return strings.TrimSpace(*v.String) == ""
	case v.Enum != nil:
		return strings.TrimSpace(*v.Enum) == ""
	case v.JSON != nil:
		return strings.TrimSpace(*v.JSON) == ""
	}
	return false
}

// Scalar returns the populated value as an untyped scalar suitable for
// writing into an execution-state tree, or nil when unset.
func (v Value) Scalar() any {
	switch {
	case v.String != nil:
		return *v.String
	case v.Number != nil:
		return *v.Number
	case v.Boolean != nil:
		return *v.Boolean
	case v.Enum != nil:
		return *v.Enum
	case v.JSON != nil:
		return *v.JSON
	}
	return nil
}

// setFields returns the names of the populated value fields in declaration
// order. Used by validation to detect one-of violations.
func (v Value) setFields() []string {
	var fields []string
	if v.String != nil {
		fields = append(fields, "valueString")
	}
	if v.Number != nil {
		fields = append(fields, "valueNumber")
	}
	if v.Boolean != nil {
		fields = append(fields, "valueBoolean")
	}
	if v.Enum != nil {
		fields = append(fields, "valueEnum")
	}
	if v.JSON != nil {
		fields = append(fields, "valueJson")
	}
	return fields
}

// fieldForKind maps a kind to the value field it selects.
func fieldForKind(k ValueKind) string {
	switch k {
	case KindString:
		return "valueString"
	case KindNumber:
		return "valueNumber"
	case KindBoolean:
		return "valueBoolean"
	case KindEnum:
		return "valueEnum"
	case KindJSON:
		return "valueJson"
	}
	return ""
}
