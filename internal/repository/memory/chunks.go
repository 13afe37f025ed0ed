package memory

import (
	"context"
	"math"
	"sort"

	"docrag/internal/model"
	"docrag/internal/repository"
)

var _ repository.ChunkIndex = (*ChunkStore)(nil)

// ChunkStore is a brute-force cosine similarity index.
type ChunkStore struct {
	s *Store
}

// SearchCandidates scores every chunk of the workspace and returns the best limit.
func (c *ChunkStore) SearchCandidates(_ context.Context, workspaceID string, vector []float32, limit int) ([]model.ScoredChunk, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	chunks := c.s.chunks[workspaceID]
	scored := make([]model.ScoredChunk, 0, len(chunks))
	for _, ch := range chunks {
		scored = append(scored, model.ScoredChunk{Chunk: ch, Score: cosineSimilarity(vector, ch.Embedding)})
	}
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Chunk.ID < scored[j].Chunk.ID
	})
	if limit >= 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

// cosineSimilarity returns 0 for mismatched, empty or zero vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
