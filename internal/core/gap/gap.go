// Package gap computes which required context pointers remain unset in an
// execution-state tree. This is part of the Functional Core - no I/O, only
// pure functions: the answer depends on nothing but the state and the
// registry passed in.
package gap

import "strings"

// Severity classifies how much a missing pointer matters.
type Severity string

const (
	SeverityRequired Severity = "required"
	SeverityOptional Severity = "optional"
)

// Requirement is one entry of the external requirement registry.
type Requirement struct {
	Pointer  string   `yaml:"pointer"`
	Label    string   `yaml:"label"`
	Severity Severity `yaml:"severity"`
	Type     string   `yaml:"type"`
}

// MissingPointers returns the registry pointers of the requested severity
// whose value in state is absent, nil, or a blank string, in
// registry-declared order.
func MissingPointers(state map[string]any, registry []Requirement, severity Severity) []string {
	var missing []string
	for _, req := range registry {
		if req.Severity != severity {
			continue
		}
		if isUnset(lookup(state, req.Pointer)) {
			missing = append(missing, req.Pointer)
		}
	}
	return missing
}

// lookup walks a dot-separated pointer through nested containers.
func lookup(state map[string]any, pointer string) any {
	node := any(state)
	for _, seg := range strings.Split(pointer, ".") {
		container, ok := node.(map[string]any)
		if !ok {
			return nil
		}
		node, ok = container[seg]
		if !ok {
			return nil
		}
	}
	return node
}

func isUnset(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
