package postgres

import (
	"context"
	"database/sql"

	"github.com/pgvector/pgvector-go"

	"docrag/internal/model"
	"docrag/internal/repository"
)

// ChunkPostgres answers workspace-scoped similarity queries with pgvector's cosine distance.
type ChunkPostgres struct {
	db *sql.DB
}

// NewChunkPostgres creates a new ChunkPostgres index.
func NewChunkPostgres(db *sql.DB) *ChunkPostgres {
	return &ChunkPostgres{db: db}
}

var _ repository.ChunkIndex = (*ChunkPostgres)(nil)

// SearchCandidates returns the limit nearest chunks of the workspace.
// Labels are not joined here; the caller resolves current labels itself.
func (r *ChunkPostgres) SearchCandidates(ctx context.Context, workspaceID string, vector []float32, limit int) ([]model.ScoredChunk, error) {
	const q = `
		SELECT id, document_id, workspace_id, chunk_index, start_char, end_char, content, source_title, source_url,
		       1 - (embedding <=> $2) AS score
		FROM chunks
		WHERE workspace_id = $1
		ORDER BY embedding <=> $2 ASC, id ASC
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, q, workspaceID, pgvector.NewVector(vector), limit)
	if err != nil {
		return nil, model.StorageError("search chunks", err)
	}
	defer rows.Close()

	out := make([]model.ScoredChunk, 0, limit)
	for rows.Next() {
		var (
			sc        model.ScoredChunk
			sourceURL sql.NullString
		)
		if err := rows.Scan(
			&sc.Chunk.ID,
			&sc.Chunk.DocumentID,
			&sc.Chunk.WorkspaceID,
			&sc.Chunk.ChunkIndex,
			&sc.Chunk.StartChar,
			&sc.Chunk.EndChar,
			&sc.Chunk.Content,
			&sc.Chunk.SourceTitle,
			&sourceURL,
			&sc.Score,
		); err != nil {
			return nil, model.StorageError("scan chunk", err)
		}
		sc.Chunk.SourceURL = stringPtr(sourceURL)
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, model.StorageError("search chunks", err)
	}
	return out, nil
}
