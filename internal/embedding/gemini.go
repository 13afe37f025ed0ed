package embedding

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini embeds text with a Gemini embedding model.
type Gemini struct {
	client *genai.Client
	model  string
	dim    int
}

var _ Embedder = (*Gemini)(nil)

// NewGemini creates a client for the given API key. dim must match the model's
// output size because the chunk column is created with a fixed dimension.
func NewGemini(ctx context.Context, apiKey, model string, dim int) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model, dim: dim}, nil
}

func (g *Gemini) Dimension() int { return g.dim }

func (g *Gemini) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	em := g.client.EmbeddingModel(g.model)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}
	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini returned %d embeddings for %d texts", len(res.Embeddings), len(texts))
	}

	out := make([][]float32, len(texts))
	for i, e := range res.Embeddings {
		if e == nil || len(e.Values) != g.dim {
			return nil, fmt.Errorf("gemini embedding %d has unexpected dimension", i)
		}
		out[i] = e.Values
	}
	return out, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
