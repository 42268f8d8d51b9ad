// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// external systems.
package secondary

import "context"

// RunRepository defines the secondary port for run persistence.
type RunRepository interface {
	// Create persists a new run. ID and Status must be pre-populated by the
	// service layer.
	Create(ctx context.Context, run *RunRecord) error

	// GetByID retrieves a run by its ID.
	GetByID(ctx context.Context, id string) (*RunRecord, error)

	// ListByScope retrieves every run belonging to a scope.
	ListByScope(ctx context.Context, scopeID string) ([]*RunRecord, error)

	// Commit atomically transitions a draft run to the given terminal
	// status, stamping committedAt and recording the caller's allowPartial
	// acknowledgment. Returns ErrNotDraft if the run already left draft
	// (the transition is a single guarded UPDATE; concurrent committers
	// cannot both win).
	Commit(ctx context.Context, id, status, committedAt string, allowPartial bool) error

	// Touch bumps the run's updatedAt without any other change.
	Touch(ctx context.Context, id string) error

	// GetNextID returns the next available run ID.
	GetNextID(ctx context.Context) (string, error)
}

// RunRecord represents a run as stored in persistence.
type RunRecord struct {
	ID           string
	ScopeID      string
	Status       string
	AllowPartial bool
	CommittedAt  string // RFC3339, empty while draft
	CreatedAt    string // RFC3339
	UpdatedAt    string // RFC3339
}

// SourceRepository defines the secondary port for evidence source
// persistence.
type SourceRepository interface {
	// Upsert writes a source, overwriting an existing record with the same
	// ID. Re-submitting an unchanged record is a no-op.
	Upsert(ctx context.Context, source *SourceRecord) error

	// GetByID retrieves a source by its ID.
	GetByID(ctx context.Context, id string) (*SourceRecord, error)

	// ListByRun retrieves every source belonging to a run.
	ListByRun(ctx context.Context, runID string) ([]*SourceRecord, error)

	// UpdateParseStatus records what the external extractor made of the
	// source.
	UpdateParseStatus(ctx context.Context, id, status string) error
}

// SourceRecord represents an evidence source as stored in persistence.
type SourceRecord struct {
	ID          string
	RunID       string
	Kind        string
	Title       string
	URI         string
	FileRef     string
	MimeType    string
	SizeBytes   int64
	ParseStatus string
	Excerpt     string
	RawMetadata string // free-form JSON
	CreatedAt   string // RFC3339
}

// InputRepository defines the secondary port for input fact persistence,
// including the input-source evidence links.
type InputRepository interface {
	// Upsert writes an input, overwriting an existing record with the same
	// ID.
	Upsert(ctx context.Context, input *InputRecord) error

	// GetByID retrieves an input by its ID.
	GetByID(ctx context.Context, id string) (*InputRecord, error)

	// ListByRun retrieves every input belonging to a run.
	ListByRun(ctx context.Context, runID string) ([]*InputRecord, error)

	// LinkSource records an evidence link between an input and a source.
	// Linking the same pair twice is a no-op.
	LinkSource(ctx context.Context, inputID, sourceID string) error

	// ListLinks retrieves all evidence links for a run's inputs.
	ListLinks(ctx context.Context, runID string) ([]*InputSourceLink, error)
}

// InputRecord represents an input fact as stored in persistence. The value
// is five nullable columns gated by ValueKind; the adapter keeps that
// serialization boundary thin and the core enforces the one-of invariant
// before anything reaches here.
type InputRecord struct {
	ID           string
	RunID        string
	Pointer      string
	Label        string
	Domain       string
	Required     bool
	FieldType    string
	OptionsJSON  string // JSON array, empty when the field has no options
	ValueKind    string
	ValueString  *string
	ValueNumber  *float64
	ValueBoolean *bool
	ValueEnum    *string
	ValueJSON    *string
	Provenance   string
	Snippet      string
	UpdatedBy    string
	UpdatedAt    string // RFC3339
}

// InputSourceLink represents one input-to-source evidence edge.
type InputSourceLink struct {
	InputID  string
	SourceID string
}

// ConstraintRepository defines the secondary port for constraint
// persistence.
type ConstraintRepository interface {
	// Upsert writes a constraint, overwriting an existing record with the
	// same ID.
	Upsert(ctx context.Context, constraint *ConstraintRecord) error

	// ListByRun retrieves every constraint belonging to a run.
	ListByRun(ctx context.Context, runID string) ([]*ConstraintRecord, error)
}

// ConstraintRecord represents a constraint fact as stored in persistence.
type ConstraintRecord struct {
	ID           string
	RunID        string
	Key          string
	Domain       string
	Label        string
	ValueKind    string
	ValueString  *string
	ValueNumber  *float64
	ValueBoolean *bool
	ValueEnum    *string
	ValueJSON    *string
	Provenance   string
	SourceID     string // empty when no evidence reference
	Snippet      string
	CreatedAt    string // RFC3339
}

// ArtifactRepository defines the secondary port for artifact persistence.
type ArtifactRepository interface {
	// Upsert writes an artifact, overwriting an existing record with the
	// same ID.
	Upsert(ctx context.Context, artifact *ArtifactRecord) error

	// ListByRun retrieves every artifact belonging to a run.
	ListByRun(ctx context.Context, runID string) ([]*ArtifactRecord, error)

	// MarkSuperseded flags an artifact as replaced. Artifact rows on
	// committed runs are never deleted.
	MarkSuperseded(ctx context.Context, id string) error
}

// ArtifactRecord represents a generated artifact as stored in persistence.
// Superseded marks an artifact replaced after its run committed; the row is
// never deleted.
type ArtifactRecord struct {
	ID         string
	RunID      string
	Kind       string
	Title      string
	URI        string
	Superseded bool
	CreatedAt  string // RFC3339
}
