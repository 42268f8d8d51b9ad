package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with development fixtures: one scope
// with a committed run and a draft run in progress, exercising sources,
// evidence links, constraints, and artifacts.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC().Format(time.RFC3339)
	earlier := time.Now().UTC().Add(-48 * time.Hour).Format(time.RFC3339)

	// Runs: RUN-001 committed two days ago, RUN-002 still a draft
	runs := []struct{ id, scopeID, status, committedAt, createdAt string }{
		{"RUN-001", "ward-7", "committed", earlier, earlier},
		{"RUN-002", "ward-7", "draft", "", now},
	}
	for _, r := range runs {
		var committed interface{}
		if r.committedAt != "" {
			committed = r.committedAt
		}
		if _, err := database.Exec(
			"INSERT INTO runs (id, scope_id, status, allow_partial, committed_at, created_at, updated_at) VALUES (?, ?, ?, 0, ?, ?, ?)",
			r.id, r.scopeID, r.status, committed, r.createdAt, r.createdAt,
		); err != nil {
			return fmt.Errorf("seed runs: %w", err)
		}
	}

	// Sources
	sources := []struct{ id, runID, kind, title, uri, parseStatus string }{
		{"SRC-001", "RUN-001", "file", "Ward 7 soil survey", "", "parsed"},
		{"SRC-002", "RUN-001", "gis", "Canopy cover layer", "gis://layers/canopy-2025", "parsed"},
		{"SRC-003", "RUN-002", "url", "Setback ordinance 14-302", "https://example.gov/ordinances/14-302", "pending"},
	}
	for _, s := range sources {
		var uri interface{}
		if s.uri != "" {
			uri = s.uri
		}
		if _, err := database.Exec(
			"INSERT INTO sources (id, run_id, kind, title, uri, parse_status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
			s.id, s.runID, s.kind, s.title, uri, s.parseStatus, now,
		); err != nil {
			return fmt.Errorf("seed sources: %w", err)
		}
	}

	// Inputs on the committed run
	inputs := []struct {
		id, runID, pointer, domain, fieldType, valueKind string
		valueString                                      string
		provenance, updatedBy                            string
	}{
		{"INP-001", "RUN-001", "site.address", "site", "text", "string", "1200 Elm St NW", "user_entered", "user"},
		{"INP-002", "RUN-001", "site.soil_type", "site", "select", "enum", "loam", "source_backed", "model"},
		{"INP-003", "RUN-001", "regulatory.permit.class", "regulatory", "select", "enum", "minor", "source_backed", "model"},
	}
	for _, in := range inputs {
		var vs, ve interface{}
		if in.valueKind == "string" {
			vs = in.valueString
		} else {
			ve = in.valueString
		}
		if _, err := database.Exec(
			`INSERT INTO inputs (id, run_id, pointer, domain, required, field_type, value_kind, value_string, value_enum, provenance, updated_by, updated_at)
			 VALUES (?, ?, ?, ?, 1, ?, ?, ?, ?, ?, ?, ?)`,
			in.id, in.runID, in.pointer, in.domain, in.fieldType, in.valueKind, vs, ve, in.provenance, in.updatedBy, now,
		); err != nil {
			return fmt.Errorf("seed inputs: %w", err)
		}
	}

	// Evidence links for the source-backed inputs
	links := []struct{ inputID, sourceID string }{
		{"INP-002", "SRC-001"},
		{"INP-003", "SRC-002"},
	}
	for _, l := range links {
		if _, err := database.Exec(
			"INSERT INTO input_sources (input_id, source_id, created_at) VALUES (?, ?, ?)",
			l.inputID, l.sourceID, now,
		); err != nil {
			return fmt.Errorf("seed input_sources: %w", err)
		}
	}

	// Constraints extracted from the soil survey
	constraints := []struct{ id, runID, key, valueKind string }{
		{"CON-001", "RUN-001", "site.soil_type", "enum"},
		{"CON-002", "RUN-001", "regulatory.setback_m", "number"},
	}
	for _, c := range constraints {
		var vn interface{}
		var ve interface{}
		if c.valueKind == "number" {
			vn = 4.5
		} else {
			ve = "loam"
		}
		if _, err := database.Exec(
			`INSERT INTO run_constraints (id, run_id, key, value_kind, value_number, value_enum, provenance, source_id, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, 'source_backed', 'SRC-001', ?)`,
			c.id, c.runID, c.key, c.valueKind, vn, ve, now,
		); err != nil {
			return fmt.Errorf("seed constraints: %w", err)
		}
	}

	// Artifacts on the committed run
	artifacts := []struct{ id, runID, artifactType, title string }{
		{"ART-001", "RUN-001", "summary", "Intake summary"},
		{"ART-002", "RUN-001", "site_map", "Plot and setback overlay"},
	}
	for _, a := range artifacts {
		if _, err := database.Exec(
			"INSERT INTO artifacts (id, run_id, artifact_type, title, superseded, created_at) VALUES (?, ?, ?, ?, 0, ?)",
			a.id, a.runID, a.artifactType, a.title, now,
		); err != nil {
			return fmt.Errorf("seed artifacts: %w", err)
		}
	}

	return nil
}
