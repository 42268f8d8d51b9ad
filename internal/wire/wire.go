// Package wire provides dependency injection for the canopy application.
// It creates singleton services with lazy initialization.
package wire

import (
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	cliadapter "github.com/example/canopy/internal/adapters/cli"
	"github.com/example/canopy/internal/adapters/sqlite"
	"github.com/example/canopy/internal/app"
	"github.com/example/canopy/internal/config"
	"github.com/example/canopy/internal/db"
	"github.com/example/canopy/internal/ports/primary"
	"github.com/example/canopy/internal/registry"
)

var (
	intakeService     primary.IntakeService
	contextService    primary.ContextService
	projectionService primary.ProjectionService
	gapService        primary.GapService
	once              sync.Once
)

// IntakeService returns the singleton IntakeService instance.
func IntakeService() primary.IntakeService {
	once.Do(initServices)
	return intakeService
}

// ContextService returns the singleton ContextService instance.
func ContextService() primary.ContextService {
	once.Do(initServices)
	return contextService
}

// ProjectionService returns the singleton ProjectionService instance.
func ProjectionService() primary.ProjectionService {
	once.Do(initServices)
	return projectionService
}

// GapService returns the singleton GapService instance.
func GapService() primary.GapService {
	once.Do(initServices)
	return gapService
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	logger := newLogger()

	// Repository adapters (secondary ports) with injected DB
	runRepo := sqlite.NewRunRepository(database)
	sourceRepo := sqlite.NewSourceRepository(database)
	inputRepo := sqlite.NewInputRepository(database)
	constraintRepo := sqlite.NewConstraintRepository(database)
	artifactRepo := sqlite.NewArtifactRepository(database)

	// Static lookup tables; overrides live under ~/.canopy/
	reqPath, err := config.RequirementsOverridePath()
	if err != nil {
		log.Fatalf("failed to locate requirement registry: %v", err)
	}
	requirements, err := registry.LoadRequirements(reqPath)
	if err != nil {
		log.Fatalf("failed to load requirement registry: %v", err)
	}
	keyMapPath, err := config.KeyMapOverridePath()
	if err != nil {
		log.Fatalf("failed to locate constraint key mapping: %v", err)
	}
	keyMap, err := registry.LoadKeyMap(keyMapPath)
	if err != nil {
		log.Fatalf("failed to load constraint key mapping: %v", err)
	}

	// Services (primary ports implementation)
	intakeService = app.NewIntakeService(runRepo, sourceRepo, inputRepo, constraintRepo, artifactRepo, logger)
	contextService = app.NewContextService(runRepo, sourceRepo, inputRepo, constraintRepo, artifactRepo, logger)
	projectionService = app.NewProjectionService(keyMap, logger)
	gapService = app.NewGapService(requirements)
}

// newLogger builds the structured logger services share. Logs go to stderr
// so command output on stdout stays pipeable; CANOPY_DEBUG=1 raises the
// level to debug.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if os.Getenv("CANOPY_DEBUG") == "1" {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// IntakeAdapter returns a new IntakeAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func IntakeAdapter() *cliadapter.IntakeAdapter {
	return IntakeAdapterWithOutput(os.Stdout)
}

// IntakeAdapterWithOutput returns a new IntakeAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func IntakeAdapterWithOutput(out io.Writer) *cliadapter.IntakeAdapter {
	once.Do(initServices)
	return cliadapter.NewIntakeAdapter(intakeService, out)
}

// ContextAdapter returns a new ContextAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func ContextAdapter() *cliadapter.ContextAdapter {
	return ContextAdapterWithOutput(os.Stdout)
}

// ContextAdapterWithOutput returns a new ContextAdapter writing to the given output.
// This variant allows testing or alternate output destinations.
func ContextAdapterWithOutput(out io.Writer) *cliadapter.ContextAdapter {
	once.Do(initServices)
	return cliadapter.NewContextAdapter(contextService, projectionService, out)
}
