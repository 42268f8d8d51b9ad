package db

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// latestSchemaVersion must match the highest version in migrations.
// Fresh installs record every version up to this so migrations never re-run.
const latestSchemaVersion = 2

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "add_excerpt_to_sources",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_superseded_to_artifacts",
		Up:      migrationV2,
	},
}

// RunMigrations executes all pending migrations
func RunMigrations() error {
	db, err := GetDB()
	if err != nil {
		return fmt.Errorf("failed to get database: %w", err)
	}

	// Create schema_version table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	// Get current schema version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	// Run pending migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		fmt.Printf("Running migration %d: %s\n", migration.Version, migration.Name)

		// Begin transaction
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		// Run migration
		if err := migration.Up(db); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		// Record migration
		_, err = tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		// Commit transaction
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}

		fmt.Printf("✓ Migration %d completed\n", migration.Version)
	}

	return nil
}

// migrationV1 adds the excerpt column to sources so parsed evidence can carry
// a short extracted passage alongside its metadata
func migrationV1(db *sql.DB) error {
	_, err := db.Exec(`ALTER TABLE sources ADD COLUMN excerpt TEXT`)
	if err != nil {
		return fmt.Errorf("failed to add excerpt column: %w", err)
	}
	return nil
}

// migrationV2 adds the superseded flag to artifacts. Committed runs stay
// immutable, so replacing an artifact marks the old row instead of deleting it.
func migrationV2(db *sql.DB) error {
	_, err := db.Exec(`ALTER TABLE artifacts ADD COLUMN superseded INTEGER NOT NULL DEFAULT 0`)
	if err != nil {
		return fmt.Errorf("failed to add superseded column: %w", err)
	}
	return nil
}
