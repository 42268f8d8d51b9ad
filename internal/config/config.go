package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Actor constants for the updated_by field on fact writes.
const (
	ActorUser   = "user"
	ActorModel  = "model"
	ActorSystem = "system"
)

// Config represents the flat canopy configuration for a working directory.
// A planner working a ward keeps one directory per scope; the config pins
// the scope so every command does not need a --scope flag.
type Config struct {
	Version string `json:"version"`
	ScopeID string `json:"scope_id"`         // e.g. ward-7
	Actor   string `json:"actor,omitempty"`  // default updated_by for fact writes
	RunID   string `json:"run_id,omitempty"` // pinned run for context resolution
}

// LoadConfig reads .canopy/config.json from the specified directory.
// Resolution order: cwd only (no home fallback).
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".canopy", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	canopyDir := filepath.Join(dir, ".canopy")
	if err := os.MkdirAll(canopyDir, 0755); err != nil {
		return fmt.Errorf("failed to create .canopy dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(canopyDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// EffectiveActor returns the configured actor, defaulting to "user".
func (c *Config) EffectiveActor() string {
	if c == nil || c.Actor == "" {
		return ActorUser
	}
	return c.Actor
}

// HomeDir returns the canopy home directory (~/.canopy), where the
// database and registry overrides live.
func HomeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".canopy"), nil
}

// RequirementsOverridePath returns the user override path for the
// requirement registry. The file may not exist; the registry loader
// falls back to its compiled-in defaults.
func RequirementsOverridePath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "requirements.yaml"), nil
}

// KeyMapOverridePath returns the user override path for the constraint
// key-to-pointer mapping.
func KeyMapOverridePath() (string, error) {
	dir, err := HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "constraint_keys.yaml"), nil
}
