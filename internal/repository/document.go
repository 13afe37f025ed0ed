package repository

import (
	"context"

	"docrag/internal/model"
)

// DocumentRepository defines data access for documents and their chunks.
// It is the classification store: the label on the document row is the only
// copy, and chunks resolve it through their document at query time.
type DocumentRepository interface {
	// ReplaceCorpus deletes every document and chunk of the workspace and inserts
	// the given ones in a single transaction.
	ReplaceCorpus(ctx context.Context, workspaceID string, docs []model.Document, chunks []model.Chunk) error

	// List returns the workspace's documents whose label is in labels, ordered by title then id.
	List(ctx context.Context, workspaceID string, labels []model.ClassificationLabel, pq PageQuery) (*PageResult[model.Document], error)

	// FindByID returns a document of the workspace, or model.ErrNotFound.
	FindByID(ctx context.Context, workspaceID, id string) (*model.Document, error)

	// UpdateClassification sets the document's label and returns the updated
	// document together with the label it replaced. model.ErrNotFound when the
	// document does not belong to the workspace.
	UpdateClassification(ctx context.Context, workspaceID, id string, label model.ClassificationLabel) (*model.Document, model.ClassificationLabel, error)

	// ClassificationMap returns the current label of each known document id.
	// Unknown or malformed ids are absent from the result.
	ClassificationMap(ctx context.Context, workspaceID string, documentIDs []string) (map[string]model.ClassificationLabel, error)
}

// ChunkIndex is the workspace-scoped vector similarity lookup.
type ChunkIndex interface {
	// SearchCandidates returns up to limit chunks of the workspace ordered by
	// similarity descending, then chunk id ascending.
	SearchCandidates(ctx context.Context, workspaceID string, vector []float32, limit int) ([]model.ScoredChunk, error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
