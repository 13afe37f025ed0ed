package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"docrag/internal/model"
	"docrag/internal/policy"
	"docrag/internal/repository/memory"
	"docrag/internal/repository/mocks"
)

var memberLabels = policy.AllowedLabels(model.RoleMember)

// seedCorpus stores one document per chunk so labels can be set per chunk.
// Chunk i gets score decreasing with i against the query vector {1, 0}.
func seedCorpus(t *testing.T, s *memory.Store, ws string, labels []model.ClassificationLabel) {
	t.Helper()
	docs := make([]model.Document, 0, len(labels))
	chunks := make([]model.Chunk, 0, len(labels))
	for i, l := range labels {
		doc := model.Document{ID: model.NewID(), Title: fmt.Sprintf("doc-%02d", i), ClassificationLabel: l}
		docs = append(docs, doc)
		chunks = append(chunks, model.Chunk{
			ID:         fmt.Sprintf("chunk-%02d", i),
			DocumentID: doc.ID,
			Content:    doc.Title,
			Embedding:  []float32{1, float32(i) / 10},
		})
	}
	require.NoError(t, s.Documents().ReplaceCorpus(context.Background(), ws, docs, chunks))
}

func repeat(l model.ClassificationLabel, n int) []model.ClassificationLabel {
	out := make([]model.ClassificationLabel, n)
	for i := range out {
		out[i] = l
	}
	return out
}

func TestSearch_BackfillsPastRestrictedCandidates(t *testing.T) {
	s := memory.NewStore()
	ws := model.NewID()
	// 45 restricted chunks outrank the 5 internal ones.
	labels := append(repeat(model.LabelRestricted, 45), repeat(model.LabelInternal, 5)...)
	seedCorpus(t, s, ws, labels)

	c := NewCoordinator(s.Chunks(), s.Documents(), Config{}, nil)
	res, err := c.Search(context.Background(), ws, []float32{1, 0}, 3, memberLabels)

	require.NoError(t, err)
	require.Len(t, res.Chunks, 3)
	for _, sc := range res.Chunks {
		assert.Contains(t, []string{"chunk-45", "chunk-46", "chunk-47", "chunk-48", "chunk-49"}, sc.Chunk.ID)
	}
	assert.Equal(t, "chunk-45", res.Chunks[0].Chunk.ID)
	assert.Equal(t, 45, res.Stats.FilteredByPolicy)
	assert.Equal(t, 48, res.Stats.CandidateResults)
	assert.Equal(t, 3, res.Stats.Rounds)
}

func TestSearch_AllRestrictedMemberGetsNothing(t *testing.T) {
	s := memory.NewStore()
	ws := model.NewID()
	seedCorpus(t, s, ws, repeat(model.LabelRestricted, 12))

	c := NewCoordinator(s.Chunks(), s.Documents(), Config{}, nil)
	res, err := c.Search(context.Background(), ws, []float32{1, 0}, 3, memberLabels)

	require.NoError(t, err)
	assert.Empty(t, res.Chunks)
	assert.Equal(t, 12, res.Stats.FilteredByPolicy)
}

func TestSearch_AdminSeesEverything(t *testing.T) {
	s := memory.NewStore()
	ws := model.NewID()
	seedCorpus(t, s, ws, repeat(model.LabelRestricted, 12))

	c := NewCoordinator(s.Chunks(), s.Documents(), Config{}, nil)
	res, err := c.Search(context.Background(), ws, []float32{1, 0}, 3, policy.AllowedLabels(model.RoleAdmin))

	require.NoError(t, err)
	require.Len(t, res.Chunks, 3)
	assert.Equal(t, 1, res.Stats.Rounds)
	assert.Zero(t, res.Stats.FilteredByPolicy)
}

func TestSearch_ResolvesCurrentLabel(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	ws := model.NewID()
	seedCorpus(t, s, ws, repeat(model.LabelInternal, 2))

	c := NewCoordinator(s.Chunks(), s.Documents(), Config{}, nil)
	res, err := c.Search(ctx, ws, []float32{1, 0}, 2, memberLabels)
	require.NoError(t, err)
	require.Len(t, res.Chunks, 2)

	_, _, err = s.Documents().UpdateClassification(ctx, ws, res.Chunks[0].Chunk.DocumentID, model.LabelRestricted)
	require.NoError(t, err)

	res, err = c.Search(ctx, ws, []float32{1, 0}, 2, memberLabels)
	require.NoError(t, err)
	assert.Len(t, res.Chunks, 1)
	assert.Equal(t, 1, res.Stats.FilteredByPolicy)
}

func TestSearch_DropsChunksWithoutDocument(t *testing.T) {
	s := memory.NewStore()
	ctx := context.Background()
	ws := model.NewID()
	seedCorpus(t, s, ws, repeat(model.LabelPublic, 2))

	c := NewCoordinator(s.Chunks(), s.Documents(), Config{}, nil)
	res, err := c.Search(ctx, ws, []float32{1, 0}, 2, memberLabels)
	require.NoError(t, err)
	s.Documents().DeleteDocument(ctx, res.Chunks[0].Chunk.DocumentID)

	res, err = c.Search(ctx, ws, []float32{1, 0}, 2, memberLabels)
	require.NoError(t, err)
	assert.Len(t, res.Chunks, 1)
	assert.Equal(t, 1, res.Stats.FilteredMissingMetadata)
}

func TestSearch_WorkspaceIsolation(t *testing.T) {
	s := memory.NewStore()
	wsA, wsB := model.NewID(), model.NewID()
	seedCorpus(t, s, wsA, repeat(model.LabelPublic, 3))

	c := NewCoordinator(s.Chunks(), s.Documents(), Config{}, nil)
	res, err := c.Search(context.Background(), wsB, []float32{1, 0}, 3, memberLabels)

	require.NoError(t, err)
	assert.Empty(t, res.Chunks)
}

func TestSearch_InvalidArguments(t *testing.T) {
	index := new(mocks.MockChunkIndex)
	labels := new(mocks.MockDocumentRepository)
	c := NewCoordinator(index, labels, Config{}, nil)
	ctx := context.Background()
	ws := model.NewID()

	_, err := c.Search(ctx, ws, []float32{1}, 0, memberLabels)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = c.Search(ctx, "not-a-uuid", []float32{1}, 3, memberLabels)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	_, err = c.Search(ctx, ws, nil, 3, memberLabels)
	assert.ErrorIs(t, err, model.ErrInvalidArgument)

	res, err := c.Search(ctx, ws, []float32{1}, 3, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Chunks)

	index.AssertNotCalled(t, "SearchCandidates", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_PoolGrowthIsBounded(t *testing.T) {
	index := new(mocks.MockChunkIndex)
	labels := new(mocks.MockDocumentRepository)
	ctx := context.Background()
	ws := model.NewID()

	full := func(n int) []model.ScoredChunk {
		out := make([]model.ScoredChunk, n)
		for i := range out {
			out[i] = model.ScoredChunk{Chunk: model.Chunk{ID: fmt.Sprintf("c%03d", i), DocumentID: "d"}, Score: 1}
		}
		return out
	}
	for _, pool := range []int{10, 20, 40} {
		index.On("SearchCandidates", mock.Anything, ws, mock.Anything, pool).Return(full(pool), nil).Once()
	}
	labels.On("ClassificationMap", mock.Anything, ws, []string{"d"}).
		Return(map[string]model.ClassificationLabel{"d": model.LabelRestricted}, nil)

	c := NewCoordinator(index, labels, Config{OverfetchMultiplier: 4, MinCandidatePool: 10, MaxCandidatePool: 40}, nil)
	res, err := c.Search(ctx, ws, []float32{1}, 2, memberLabels)

	require.NoError(t, err)
	assert.Empty(t, res.Chunks)
	assert.Equal(t, 3, res.Stats.Rounds)
	assert.Equal(t, 40, res.Stats.PoolSize)
	index.AssertExpectations(t)
	labels.AssertExpectations(t)
}

func TestSearch_StoreErrors(t *testing.T) {
	ctx := context.Background()
	ws := model.NewID()
	boom := model.StorageError("search chunks", errors.New("down"))

	index := new(mocks.MockChunkIndex)
	index.On("SearchCandidates", mock.Anything, ws, mock.Anything, 12).Return(nil, boom)
	c := NewCoordinator(index, new(mocks.MockDocumentRepository), Config{}, nil)

	_, err := c.Search(ctx, ws, []float32{1}, 3, memberLabels)
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
}

func TestInitialPool(t *testing.T) {
	c := NewCoordinator(nil, nil, Config{}, nil)
	assert.Equal(t, 10, c.InitialPool(1))
	assert.Equal(t, 12, c.InitialPool(3))
	assert.Equal(t, 200, c.InitialPool(100))
}
