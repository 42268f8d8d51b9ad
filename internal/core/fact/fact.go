package fact

// Domain groups facts by the planning concern they inform.
type Domain string

const (
	DomainSite        Domain = "site"
	DomainRegulatory  Domain = "regulatory"
	DomainEquity      Domain = "equity"
	DomainBiophysical Domain = "biophysical"
)

// KnownDomain reports whether d is one of the declared domains.
func KnownDomain(d Domain) bool {
	switch d {
	case DomainSite, DomainRegulatory, DomainEquity, DomainBiophysical:
		return true
	}
	return false
}

// FieldType describes how an input is captured in the intake UI.
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeSelect  FieldType = "select"
	FieldTypeBoolean FieldType = "boolean"
)

// KnownFieldType reports whether t is one of the declared field types.
func KnownFieldType(t FieldType) bool {
	switch t {
	case FieldTypeText, FieldTypeSelect, FieldTypeBoolean:
		return true
	}
	return false
}

// Actor identifies who last wrote an input.
type Actor string

const (
	ActorUser   Actor = "user"
	ActorModel  Actor = "model"
	ActorSystem Actor = "system"
)

// KnownActor reports whether a is one of the declared actors.
func KnownActor(a Actor) bool {
	switch a {
	case ActorUser, ActorModel, ActorSystem:
		return true
	}
	return false
}

// SourceKind classifies a piece of evidence.
type SourceKind string

const (
	SourceKindFile   SourceKind = "file"
	SourceKindURL    SourceKind = "url"
	SourceKindGIS    SourceKind = "gis"
	SourceKindAPI    SourceKind = "api"
	SourceKindManual SourceKind = "manual"
)

// KnownSourceKind reports whether k is one of the declared source kinds.
func KnownSourceKind(k SourceKind) bool {
	switch k {
	case SourceKindFile, SourceKindURL, SourceKindGIS, SourceKindAPI, SourceKindManual:
		return true
	}
	return false
}

// ParseStatus tracks what the external document extractor made of a source.
type ParseStatus string

const (
	ParseStatusPending     ParseStatus = "pending"
	ParseStatusParsed      ParseStatus = "parsed"
	ParseStatusFailed      ParseStatus = "failed"
	ParseStatusUnsupported ParseStatus = "unsupported"
)

// KnownParseStatus reports whether s is one of the declared parse statuses.
func KnownParseStatus(s ParseStatus) bool {
	switch s {
	case ParseStatusPending, ParseStatusParsed, ParseStatusFailed, ParseStatusUnsupported:
		return true
	}
	return false
}

// Source is a piece of evidence attached to a run: an uploaded file, a URL,
// a GIS layer, an API pull, or a manual note.
type Source struct {
	ID          string      `json:"id"`
	RunID       string      `json:"runId"`
	Kind        SourceKind  `json:"kind"`
	Title       string      `json:"title"`
	URI         string      `json:"uri,omitempty"`
	FileRef     string      `json:"fileRef,omitempty"`
	MimeType    string      `json:"mimeType,omitempty"`
	SizeBytes   int64       `json:"sizeBytes,omitempty"`
	ParseStatus ParseStatus `json:"parseStatus"`
	Excerpt     string      `json:"excerpt,omitempty"`
	RawMetadata string      `json:"rawMetadata,omitempty"` // free-form JSON from the extractor
	CreatedAt   string      `json:"createdAt"`             // RFC3339
}

// Input is a fact that projects into downstream execution state at Pointer.
type Input struct {
	ID         string     `json:"id"`
	RunID      string     `json:"runId"`
	Pointer    string     `json:"pointer"`
	Label      string     `json:"label"`
	Domain     Domain     `json:"domain"`
	Required   bool       `json:"required"`
	FieldType  FieldType  `json:"fieldType"`
	Options    []string   `json:"options,omitempty"`
	Value      Value      `json:"value"`
	Provenance Provenance `json:"provenance"`
	Snippet    string     `json:"snippet,omitempty"`
	SourceIDs  []string   `json:"sourceIds,omitempty"` // linked evidence, many-to-many
	UpdatedBy  Actor      `json:"updatedBy,omitempty"`
	UpdatedAt  string     `json:"updatedAt"` // RFC3339
}

// Constraint is a regulatory or policy fact keyed by a domain-qualified
// identifier. Constraints reach downstream pointers only through the static
// key-to-pointer mapping.
type Constraint struct {
	ID         string     `json:"id"`
	RunID      string     `json:"runId"`
	Key        string     `json:"key"`
	Domain     Domain     `json:"domain"`
	Label      string     `json:"label"`
	Value      Value      `json:"value"`
	Provenance Provenance `json:"provenance"`
	SourceID   string     `json:"sourceId,omitempty"` // single evidence reference, optional unless source_backed
	Snippet    string     `json:"snippet,omitempty"`
	CreatedAt  string     `json:"createdAt"` // RFC3339
}

// Artifact is a generated output registered against a run, grouped by kind.
// Artifacts are the one record family that may still be written after the
// owning run commits (superseding renders).
type Artifact struct {
	ID        string `json:"id"`
	RunID     string `json:"runId"`
	Kind      string `json:"kind"`
	Title     string `json:"title"`
	URI       string `json:"uri,omitempty"`
	CreatedAt string `json:"createdAt"` // RFC3339
	// Superseded marks a replaced render. Kept for audit, excluded from
	// resolved views.
	Superseded bool `json:"superseded,omitempty"`
}
