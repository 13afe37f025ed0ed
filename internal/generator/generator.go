// Package generator produces the answer text from the passages that survived
// policy filtering. It never sees anything else.
package generator

import (
	"context"
	"strings"

	"docrag/internal/model"
)

// NoResults is the answer when no passage is available.
const NoResults = "no results"

// Generator answers question from chunks, which are already filtered and ranked.
type Generator interface {
	Generate(ctx context.Context, question string, chunks []model.ScoredChunk) (string, error)
	// UsesLLM reports whether answers come from a language model.
	UsesLLM() bool
}

// Extractive returns the best passage verbatim.
type Extractive struct{}

var _ Generator = Extractive{}

func (Extractive) Generate(_ context.Context, _ string, chunks []model.ScoredChunk) (string, error) {
	if len(chunks) == 0 {
		return NoResults, nil
	}
	return chunks[0].Chunk.Content, nil
}

func (Extractive) UsesLLM() bool { return false }

// BuildContext renders passages as "[Source: title] content" blocks.
func BuildContext(chunks []model.ScoredChunk) string {
	blocks := make([]string, 0, len(chunks))
	for _, sc := range chunks {
		blocks = append(blocks, "[Source: "+sc.Chunk.SourceTitle+"] "+sc.Chunk.Content)
	}
	return strings.Join(blocks, "\n\n")
}
