package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"docrag/internal/embedding"
	"docrag/internal/generator"
	"docrag/internal/model"
	"docrag/internal/policy"
	"docrag/internal/repository"
	"docrag/internal/retrieval"
)

const (
	// FilteringModeInRetrieval means the allow-list is applied inside the
	// retrieval loop, before ranking is truncated to top_k.
	FilteringModeInRetrieval = "in_retrieval"

	excerptLength = 200
)

// Searcher is the policy-filtered retrieval step. *retrieval.Coordinator implements it.
type Searcher interface {
	Search(ctx context.Context, workspaceID string, vector []float32, topK int, allowed []model.ClassificationLabel) (retrieval.Result, error)
}

// QueryConfig bounds top_k.
type QueryConfig struct {
	DefaultTopK int
	MaxTopK     int
}

// Citation points at a passage the answer is grounded in.
type Citation struct {
	ChunkID     string  `json:"chunk_id"`
	DocumentID  string  `json:"document_id"`
	SourceTitle string  `json:"source_title"`
	SourceURL   *string `json:"source_url"`
	Score       float64 `json:"score"`
	Excerpt     string  `json:"excerpt"`
}

// PolicyInfo tells the caller how the classification policy shaped the result.
type PolicyInfo struct {
	PolicyEnforced              bool                        `json:"policy_enforced"`
	PolicyFilteringMode         string                      `json:"policy_filtering_mode"`
	AccessRole                  model.Role                  `json:"access_role"`
	AllowedClassificationLabels []model.ClassificationLabel `json:"allowed_classification_labels"`
	CandidateResults            int                         `json:"candidate_results"`
	ReturnedResults             int                         `json:"returned_results"`
	FilteredByPolicy            int                         `json:"filtered_by_policy"`
}

// QueryResult is the answer to a question with its citations.
type QueryResult struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
	Policy    PolicyInfo `json:"policy"`
}

// QueryService answers questions over a workspace corpus.
type QueryService interface {
	// Query answers question from the passages the actor's role may see.
	// topK 0 means the configured default.
	Query(ctx context.Context, actor model.Actor, workspaceID, question string, topK int) (*QueryResult, error)
}

type queryService struct {
	members   repository.MembershipRepository
	embedder  embedding.Embedder
	searcher  Searcher
	generator generator.Generator
	audit     Auditor
	logger    *slog.Logger
	cfg       QueryConfig
}

// NewQueryService wires the query pipeline.
func NewQueryService(
	members repository.MembershipRepository,
	embedder embedding.Embedder,
	searcher Searcher,
	gen generator.Generator,
	auditor Auditor,
	logger *slog.Logger,
	cfg QueryConfig,
) QueryService {
	if cfg.MaxTopK <= 0 {
		cfg.MaxTopK = 10
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = min(3, cfg.MaxTopK)
	}
	return &queryService{
		members:   members,
		embedder:  embedder,
		searcher:  searcher,
		generator: gen,
		audit:     auditor,
		logger:    logger.With("component", "query"),
		cfg:       cfg,
	}
}

func (s *queryService) Query(ctx context.Context, actor model.Actor, workspaceID, question string, topK int) (*QueryResult, error) {
	role, err := resolveRole(ctx, s.members, actor, workspaceID)
	if err != nil {
		return nil, err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, model.InvalidArgument("question is required")
	}
	if topK == 0 {
		topK = s.cfg.DefaultTopK
	}
	if topK < 1 || topK > s.cfg.MaxTopK {
		return nil, model.InvalidArgument(fmt.Sprintf("top_k must be between 1 and %d", s.cfg.MaxTopK))
	}

	allowed := policy.AllowedLabels(role)

	vectors, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed question: got %d vectors", len(vectors))
	}

	res, err := s.searcher.Search(ctx, workspaceID, vectors[0], topK, allowed)
	if err != nil {
		return nil, err
	}

	answer, llmUsed := s.answer(ctx, question, res.Chunks)

	citations := make([]Citation, 0, len(res.Chunks))
	for _, sc := range res.Chunks {
		citations = append(citations, Citation{
			ChunkID:     sc.Chunk.ID,
			DocumentID:  sc.Chunk.DocumentID,
			SourceTitle: sc.Chunk.SourceTitle,
			SourceURL:   sc.Chunk.SourceURL,
			Score:       sc.Score,
			Excerpt:     excerpt(sc.Chunk.Content),
		})
	}

	// Audit failures never change the response.
	_ = s.audit.Record(ctx, auditEntry(workspaceID, actor, model.ActionQuery, map[string]any{
		"question":                      question,
		"top_k":                         topK,
		"results":                       len(citations),
		"candidate_results":             res.Stats.CandidateResults,
		"filtered_by_policy":            res.Stats.FilteredByPolicy,
		"filtered_missing_metadata":     res.Stats.FilteredMissingMetadata,
		"access_role":                   string(role),
		"allowed_classification_labels": labelStrings(allowed),
		"llm_used":                      llmUsed,
		"retrieval_rounds":              res.Stats.Rounds,
	}))

	return &QueryResult{
		Answer:    answer,
		Citations: citations,
		Policy: PolicyInfo{
			PolicyEnforced:              true,
			PolicyFilteringMode:         FilteringModeInRetrieval,
			AccessRole:                  role,
			AllowedClassificationLabels: allowed,
			CandidateResults:            res.Stats.CandidateResults,
			ReturnedResults:             len(citations),
			FilteredByPolicy:            res.Stats.FilteredByPolicy,
		},
	}, nil
}

// answer runs the generator over the surviving passages. A failing language
// model falls back to the extractive answer.
func (s *queryService) answer(ctx context.Context, question string, chunks []model.ScoredChunk) (string, bool) {
	if len(chunks) == 0 {
		return generator.NoResults, false
	}
	text, err := s.generator.Generate(ctx, question, chunks)
	if err == nil {
		return text, s.generator.UsesLLM()
	}
	s.logger.Warn("generation_failed", "error", err.Error())
	text, _ = generator.Extractive{}.Generate(ctx, question, chunks)
	return text, false
}

func excerpt(content string) string {
	rs := []rune(content)
	if len(rs) <= excerptLength {
		return content
	}
	return string(rs[:excerptLength])
}
