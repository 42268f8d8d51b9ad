// Package registry loads the static lookup tables the projection and gap
// layers consume: the requirement registry (pointer -> label/severity/type)
// and the constraint key-to-pointer mapping. Defaults are compiled in;
// either table can be overridden by a YAML file under ~/.canopy/.
package registry

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/example/canopy/internal/core/gap"
)

//go:embed requirements.yaml
var defaultRequirementsYAML []byte

//go:embed constraint_keys.yaml
var defaultConstraintKeysYAML []byte

type requirementsFile struct {
	Requirements []gap.Requirement `yaml:"requirements"`
}

type keyMappingFile struct {
	Mappings []KeyMapping `yaml:"mappings"`
}

// KeyMapping binds one constraint key to one execution-state pointer.
type KeyMapping struct {
	Key     string `yaml:"key"`
	Pointer string `yaml:"pointer"`
}

// LoadRequirements returns the requirement registry, in declared order.
// overridePath may be empty; a missing override file falls back to the
// compiled-in defaults, but a present-and-broken one is an error (silently
// planning against the wrong registry would be worse than failing).
func LoadRequirements(overridePath string) ([]gap.Requirement, error) {
	data, err := readWithFallback(overridePath, defaultRequirementsYAML)
	if err != nil {
		return nil, err
	}

	var file requirementsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse requirement registry: %w", err)
	}
	for i, req := range file.Requirements {
		if req.Pointer == "" {
			return nil, fmt.Errorf("requirement %d has no pointer", i)
		}
		if req.Severity != gap.SeverityRequired && req.Severity != gap.SeverityOptional {
			return nil, fmt.Errorf("requirement %s has invalid severity %q", req.Pointer, req.Severity)
		}
	}
	return file.Requirements, nil
}

// LoadKeyMap returns the constraint key-to-pointer table.
func LoadKeyMap(overridePath string) (map[string]string, error) {
	data, err := readWithFallback(overridePath, defaultConstraintKeysYAML)
	if err != nil {
		return nil, err
	}

	var file keyMappingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse constraint key mapping: %w", err)
	}

	keyMap := make(map[string]string, len(file.Mappings))
	for i, m := range file.Mappings {
		if m.Key == "" || m.Pointer == "" {
			return nil, fmt.Errorf("mapping %d is incomplete (key %q, pointer %q)", i, m.Key, m.Pointer)
		}
		keyMap[m.Key] = m.Pointer
	}
	return keyMap, nil
}

func readWithFallback(path string, fallback []byte) ([]byte, error) {
	if path == "" {
		return fallback, nil
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return fallback, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
