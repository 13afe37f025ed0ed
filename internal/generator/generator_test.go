package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/model"
)

func TestExtractive(t *testing.T) {
	g := Extractive{}
	ctx := context.Background()

	answer, err := g.Generate(ctx, "q", nil)
	require.NoError(t, err)
	assert.Equal(t, NoResults, answer)

	answer, err = g.Generate(ctx, "q", []model.ScoredChunk{
		{Chunk: model.Chunk{Content: "best"}, Score: 0.9},
		{Chunk: model.Chunk{Content: "second"}, Score: 0.5},
	})
	require.NoError(t, err)
	assert.Equal(t, "best", answer)
	assert.False(t, g.UsesLLM())
}

func TestBuildContext(t *testing.T) {
	got := BuildContext([]model.ScoredChunk{
		{Chunk: model.Chunk{SourceTitle: "A", Content: "one"}},
		{Chunk: model.Chunk{SourceTitle: "B", Content: "two"}},
	})
	assert.Equal(t, "[Source: A] one\n\n[Source: B] two", got)
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "gemini-1.5-flash")
	assert.Error(t, err)
}
