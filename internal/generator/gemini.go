package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"google.golang.org/api/option"

	"docrag/internal/model"
)

const systemInstruction = "You are an assistant for internal documents. Answer using only the provided context. " +
	"If the answer is not in the context, say that you do not know. Keep answers concise."

// Gemini generates answers with a Gemini chat model.
type Gemini struct {
	client *genai.Client
	model  string
}

var _ Generator = (*Gemini)(nil)

// NewGemini creates a client for the given API key.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) UsesLLM() bool { return true }

func (g *Gemini) Generate(ctx context.Context, question string, chunks []model.ScoredChunk) (string, error) {
	if len(chunks) == 0 {
		return NoResults, nil
	}

	ctx, span := otel.Tracer("docrag/generator").Start(ctx, "generator.Gemini")
	defer span.End()

	m := g.client.GenerativeModel(g.model)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}

	prompt := "Question: " + question + "\n\nContext:\n" + BuildContext(chunks)
	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("gemini generate request failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	answer := strings.TrimSpace(b.String())
	if answer == "" {
		return "", fmt.Errorf("gemini returned an empty answer")
	}
	return answer, nil
}

// Close releases the underlying client.
func (g *Gemini) Close() error {
	return g.client.Close()
}
