package model

import "time"

// ClassificationLabel is the access-classification tag on a Document.
type ClassificationLabel string

const (
	LabelPublic       ClassificationLabel = "public"
	LabelInternal     ClassificationLabel = "internal"
	LabelConfidential ClassificationLabel = "confidential"
	LabelRestricted   ClassificationLabel = "restricted"
)

// DefaultLabel is assigned to documents at ingestion unless the source says otherwise.
const DefaultLabel = LabelInternal

// AllLabels lists every label in ascending sensitivity.
var AllLabels = []ClassificationLabel{LabelPublic, LabelInternal, LabelConfidential, LabelRestricted}

// Valid reports whether l is one of the known labels.
func (l ClassificationLabel) Valid() bool {
	switch l {
	case LabelPublic, LabelInternal, LabelConfidential, LabelRestricted:
		return true
	default:
		return false
	}
}

// ParseLabel converts raw input into a ClassificationLabel.
func ParseLabel(s string) (ClassificationLabel, error) {
	l := ClassificationLabel(s)
	if !l.Valid() {
		return "", InvalidArgument("unknown classification label")
	}
	return l, nil
}

// Document is an ingested source owned by exactly one workspace.
// The classification label is the only mutable attribute after ingestion.
type Document struct {
	ID                  string              `json:"id"`
	WorkspaceID         string              `json:"workspace_id"`
	Title               string              `json:"title"`
	SourceURL           *string             `json:"source_url"`
	License             *string             `json:"license"`
	AccessedAt          *time.Time          `json:"accessed_at"`
	ClassificationLabel ClassificationLabel `json:"classification_label"`
	StoragePath         string              `json:"-"`
	Text                string              `json:"-"`
	CreatedAt           time.Time           `json:"created_at"`
}

// Chunk is a retrievable passage of a Document. It carries no classification of
// its own: the owning document's current label is resolved at query time.
type Chunk struct {
	ID          string    `json:"id"`
	DocumentID  string    `json:"document_id"`
	WorkspaceID string    `json:"workspace_id"`
	ChunkIndex  int       `json:"chunk_index"`
	StartChar   int       `json:"start_char"`
	EndChar     int       `json:"end_char"`
	Content     string    `json:"content"`
	Embedding   []float32 `json:"-"`
	SourceTitle string    `json:"source_title"`
	SourceURL   *string   `json:"source_url"`
}

// ScoredChunk is a Chunk paired with its similarity to a query vector.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}
