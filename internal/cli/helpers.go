// Package cli contains the cobra commands for the canopy binary. Commands
// stay thin: flag parsing and scope resolution here, behavior in the
// application services reached through the wire layer.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/canopy/internal/config"
	"github.com/example/canopy/internal/core/fact"
)

// resolveScope returns the effective scope ID: the explicit flag value if
// given, otherwise the scope pinned in .canopy/config.json in the current
// directory. The config may be nil when the flag was used outside a
// configured directory.
func resolveScope(explicit string) (string, *config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	cfg, cfgErr := config.LoadConfig(cwd)
	if explicit != "" {
		if cfgErr != nil {
			cfg = nil
		}
		return explicit, cfg, nil
	}
	if cfgErr != nil {
		return "", nil, fmt.Errorf("no scope given and no .canopy/config.json in this directory (run 'canopy init --scope <id>' first)")
	}
	if cfg.ScopeID == "" {
		return "", nil, fmt.Errorf("config has no scope_id; re-run 'canopy init --scope <id>'")
	}
	return cfg.ScopeID, cfg, nil
}

// valueFlags holds the mutually exclusive value flags shared by the input
// and constraint commands.
type valueFlags struct {
	stringVal string
	numberVal float64
	boolVal   bool
	enumVal   string
	jsonVal   string

	stringSet bool
	numberSet bool
	boolSet   bool
	enumSet   bool
	jsonSet   bool
}

// register adds the value flags to a command.
func (v *valueFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&v.stringVal, "string", "", "String value")
	cmd.Flags().Float64Var(&v.numberVal, "number", 0, "Number value")
	cmd.Flags().BoolVar(&v.boolVal, "bool", false, "Boolean value")
	cmd.Flags().StringVar(&v.enumVal, "enum", "", "Enum option value")
	cmd.Flags().StringVar(&v.jsonVal, "json", "", "Raw JSON value")
}

// parse turns the flags into a one-of value. At most one value flag may be
// set; none at all records an unset value (legitimate for unknown facts).
func (v *valueFlags) parse(cmd *cobra.Command) (fact.Value, error) {
	v.stringSet = cmd.Flags().Changed("string")
	v.numberSet = cmd.Flags().Changed("number")
	v.boolSet = cmd.Flags().Changed("bool")
	v.enumSet = cmd.Flags().Changed("enum")
	v.jsonSet = cmd.Flags().Changed("json")

	count := 0
	for _, set := range []bool{v.stringSet, v.numberSet, v.boolSet, v.enumSet, v.jsonSet} {
		if set {
			count++
		}
	}
	if count > 1 {
		return fact.NoValue(), fmt.Errorf("at most one of --string, --number, --bool, --enum, --json may be set")
	}

	switch {
	case v.stringSet:
		return fact.StringValue(v.stringVal), nil
	case v.numberSet:
		return fact.NumberValue(v.numberVal), nil
	case v.boolSet:
		return fact.BoolValue(v.boolVal), nil
	case v.enumSet:
		return fact.EnumValue(v.enumVal), nil
	case v.jsonSet:
		return fact.JSONValue(v.jsonVal), nil
	default:
		return fact.NoValue(), nil
	}
}
