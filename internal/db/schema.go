package db

// SchemaSQL is the complete modern schema for fresh canopy installs.
// This schema reflects the current state after all migrations.
//
// # Schema Drift Protection
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests use
// this schema via GetSchemaSQL(), which provides two layers of protection:
//
//  1. No hardcoded schemas: tests must use db.GetSchemaSQL() instead of
//     carrying their own CREATE TABLE statements.
//
//  2. Immediate failure on drift: if repository code references a column that
//     doesn't exist in this schema, tests fail immediately with "no such column".
//     This catches drift at development time, not production.
//
// When adding new columns or tables:
//  1. Add a migration in internal/db/migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Runs (intake attempts, versioned per scope)
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	scope_id TEXT NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('draft', 'committed', 'partial_committed')) DEFAULT 'draft',
	allow_partial INTEGER NOT NULL DEFAULT 0,
	committed_at TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

-- Sources (evidence documents attached to a run)
CREATE TABLE IF NOT EXISTS sources (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	kind TEXT NOT NULL CHECK(kind IN ('file', 'url', 'gis', 'api', 'manual')),
	title TEXT NOT NULL,
	uri TEXT,
	file_ref TEXT,
	mime_type TEXT,
	size_bytes INTEGER,
	parse_status TEXT NOT NULL CHECK(parse_status IN ('pending', 'parsed', 'failed', 'unsupported')) DEFAULT 'pending',
	excerpt TEXT,
	raw_metadata TEXT,
	created_at TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

-- Inputs (answered intake fields, one per pointer per run)
CREATE TABLE IF NOT EXISTS inputs (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	pointer TEXT NOT NULL,
	label TEXT,
	domain TEXT NOT NULL CHECK(domain IN ('site', 'regulatory', 'equity', 'biophysical')),
	required INTEGER NOT NULL DEFAULT 0,
	field_type TEXT NOT NULL CHECK(field_type IN ('text', 'select', 'boolean')),
	options_json TEXT,
	value_kind TEXT,
	value_string TEXT,
	value_number REAL,
	value_boolean INTEGER,
	value_enum TEXT,
	value_json TEXT,
	provenance TEXT NOT NULL CHECK(provenance IN ('source_backed', 'model_inferred', 'user_entered', 'unknown')) DEFAULT 'unknown',
	snippet TEXT,
	updated_by TEXT NOT NULL CHECK(updated_by IN ('user', 'model', 'system')),
	updated_at TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE,
	UNIQUE(run_id, pointer)
);

-- Input sources (evidence links, n:m between inputs and sources)
CREATE TABLE IF NOT EXISTS input_sources (
	input_id TEXT NOT NULL,
	source_id TEXT NOT NULL,
	created_at TEXT NOT NULL,
	PRIMARY KEY (input_id, source_id),
	FOREIGN KEY (input_id) REFERENCES inputs(id) ON DELETE CASCADE,
	FOREIGN KEY (source_id) REFERENCES sources(id) ON DELETE CASCADE
);

-- Constraints (keyed facts extracted from evidence or entered directly)
CREATE TABLE IF NOT EXISTS run_constraints (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	key TEXT NOT NULL,
	domain TEXT CHECK(domain IN ('site', 'regulatory', 'equity', 'biophysical')),
	label TEXT,
	value_kind TEXT,
	value_string TEXT,
	value_number REAL,
	value_boolean INTEGER,
	value_enum TEXT,
	value_json TEXT,
	provenance TEXT NOT NULL CHECK(provenance IN ('source_backed', 'model_inferred', 'user_entered', 'unknown')) DEFAULT 'unknown',
	source_id TEXT,
	snippet TEXT,
	created_at TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE,
	FOREIGN KEY (source_id) REFERENCES sources(id) ON DELETE SET NULL
);

-- Artifacts (derived outputs attached to a run, grouped by type)
CREATE TABLE IF NOT EXISTS artifacts (
	id TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	artifact_type TEXT NOT NULL,
	title TEXT NOT NULL,
	uri TEXT,
	superseded INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

-- Create indexes for common queries
CREATE INDEX IF NOT EXISTS idx_runs_scope ON runs(scope_id);
CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_sources_run ON sources(run_id);
CREATE INDEX IF NOT EXISTS idx_inputs_run ON inputs(run_id);
CREATE INDEX IF NOT EXISTS idx_inputs_pointer ON inputs(run_id, pointer);
CREATE INDEX IF NOT EXISTS idx_input_sources_source ON input_sources(source_id);
CREATE INDEX IF NOT EXISTS idx_constraints_run ON run_constraints(run_id);
CREATE INDEX IF NOT EXISTS idx_constraints_key ON run_constraints(run_id, key);
CREATE INDEX IF NOT EXISTS idx_artifacts_run ON artifacts(run_id);
CREATE INDEX IF NOT EXISTS idx_artifacts_type ON artifacts(run_id, artifact_type);
`

// InitSchema creates the database schema
func InitSchema() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	// Check if schema_version table exists to determine if this is a fresh install
	var tableCount int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}

	if tableCount == 0 {
		// Completely fresh install - create modern schema directly and mark
		// all migrations as applied so they never re-run.
		_, err = db.Exec(SchemaSQL)
		if err != nil {
			return err
		}
		_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (
				version INTEGER PRIMARY KEY,
				applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
			)
		`)
		if err != nil {
			return err
		}
		for i := 1; i <= latestSchemaVersion; i++ {
			_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", i)
			if err != nil {
				return err
			}
		}
		return nil
	}

	// schema_version table exists - run any pending migrations
	return RunMigrations()
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
