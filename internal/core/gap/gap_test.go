package gap

import (
	"reflect"
	"testing"
)

var testRegistry = []Requirement{
	{Pointer: "site.soil_type", Label: "Soil type", Severity: SeverityRequired, Type: "text"},
	{Pointer: "site.plot_count", Label: "Plot count", Severity: SeverityRequired, Type: "number"},
	{Pointer: "regulatory.setback_m", Label: "Setback", Severity: SeverityRequired, Type: "number"},
	{Pointer: "equity.priority_zone", Label: "Priority zone", Severity: SeverityRequired, Type: "boolean"},
	{Pointer: "site.notes", Label: "Site notes", Severity: SeverityOptional, Type: "text"},
}

func TestMissingPointers(t *testing.T) {
	tests := []struct {
		name     string
		state    map[string]any
		severity Severity
		want     []string
	}{
		{
			name:     "empty state misses everything required",
			state:    map[string]any{},
			severity: SeverityRequired,
			want:     []string{"site.soil_type", "site.plot_count", "regulatory.setback_m", "equity.priority_zone"},
		},
		{
			name: "filled pointers drop out in registry order",
			state: map[string]any{
				"site":       map[string]any{"soil_type": "loam"},
				"regulatory": map[string]any{"setback_m": 3.0},
			},
			severity: SeverityRequired,
			want:     []string{"site.plot_count", "equity.priority_zone"},
		},
		{
			name: "blank string counts as missing",
			state: map[string]any{
				"site": map[string]any{"soil_type": "  ", "plot_count": 14.0},
				"regulatory": map[string]any{
					"setback_m": 3.0,
				},
				"equity": map[string]any{"priority_zone": false},
			},
			severity: SeverityRequired,
			want:     []string{"site.soil_type"},
		},
		{
			name: "false and zero are information, not gaps",
			state: map[string]any{
				"site":       map[string]any{"soil_type": "loam", "plot_count": 0.0},
				"regulatory": map[string]any{"setback_m": 0.0},
				"equity":     map[string]any{"priority_zone": false},
			},
			severity: SeverityRequired,
			want:     nil,
		},
		{
			name:     "optional severity filters to optional entries",
			state:    map[string]any{},
			severity: SeverityOptional,
			want:     []string{"site.notes"},
		},
		{
			name: "scalar blocking the path counts as missing below it",
			state: map[string]any{
				"site": "not-a-container",
			},
			severity: SeverityOptional,
			want:     []string{"site.notes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MissingPointers(tt.state, testRegistry, tt.severity)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MissingPointers() = %v, want %v", got, tt.want)
			}
		})
	}
}

// Filling K of N required pointers must leave exactly N-K gaps.
func TestGapShrinkage(t *testing.T) {
	state := map[string]any{}
	if got := len(MissingPointers(state, testRegistry, SeverityRequired)); got != 4 {
		t.Fatalf("initial gaps = %d, want 4", got)
	}

	fills := []struct {
		section string
		key     string
		value   any
	}{
		{"site", "soil_type", "loam"},
		{"site", "plot_count", 14.0},
		{"regulatory", "setback_m", 3.0},
		{"equity", "priority_zone", true},
	}
	for k, fill := range fills {
		section, ok := state[fill.section].(map[string]any)
		if !ok {
			section = map[string]any{}
			state[fill.section] = section
		}
		section[fill.key] = fill.value

		want := 4 - (k + 1)
		if got := len(MissingPointers(state, testRegistry, SeverityRequired)); got != want {
			t.Errorf("after %d fills: gaps = %d, want %d", k+1, got, want)
		}
	}
}
