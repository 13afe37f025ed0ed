// Package retrieval runs workspace-scoped similarity search and removes every
// candidate the caller may not see before anything downstream reads it.
//
// The coordinator over-fetches from the index and re-checks each candidate's
// current classification against the caller's allow-list. When too few
// candidates survive it widens the pool, so that the requested count is filled
// from allowed passages instead of being truncated by the filter.
package retrieval

import (
	"context"
	"slices"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"docrag/internal/metrics"
	"docrag/internal/model"
	"docrag/internal/policy"
	"docrag/internal/repository"
)

// LabelSource resolves the current classification of documents.
type LabelSource interface {
	ClassificationMap(ctx context.Context, workspaceID string, documentIDs []string) (map[string]model.ClassificationLabel, error)
}

// Config bounds the candidate pool. Zero values fall back to the defaults.
type Config struct {
	OverfetchMultiplier int
	MinCandidatePool    int
	MaxCandidatePool    int
}

const (
	DefaultOverfetchMultiplier = 4
	DefaultMinCandidatePool    = 10
	DefaultMaxCandidatePool    = 200
)

func (c Config) withDefaults() Config {
	if c.OverfetchMultiplier <= 0 {
		c.OverfetchMultiplier = DefaultOverfetchMultiplier
	}
	if c.MinCandidatePool <= 0 {
		c.MinCandidatePool = DefaultMinCandidatePool
	}
	if c.MaxCandidatePool <= 0 {
		c.MaxCandidatePool = DefaultMaxCandidatePool
	}
	if c.MaxCandidatePool < c.MinCandidatePool {
		c.MaxCandidatePool = c.MinCandidatePool
	}
	return c
}

// Stats describes how a search went. Counts refer to the last round.
type Stats struct {
	CandidateResults        int
	FilteredByPolicy        int
	FilteredMissingMetadata int
	Rounds                  int
	PoolSize                int
}

// Result is the filtered, ranked output of Search.
type Result struct {
	Chunks []model.ScoredChunk
	Stats  Stats
}

// Coordinator is safe for concurrent use.
type Coordinator struct {
	index   repository.ChunkIndex
	labels  LabelSource
	cfg     Config
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

// NewCoordinator wires the index and label source. m may be nil.
func NewCoordinator(index repository.ChunkIndex, labels LabelSource, cfg Config, m *metrics.Metrics) *Coordinator {
	return &Coordinator{
		index:   index,
		labels:  labels,
		cfg:     cfg.withDefaults(),
		metrics: m,
		tracer:  otel.Tracer("docrag/retrieval"),
	}
}

// InitialPool is max(topK*multiplier, min) capped at max.
func (c *Coordinator) InitialPool(topK int) int {
	return min(max(topK*c.cfg.OverfetchMultiplier, c.cfg.MinCandidatePool), c.cfg.MaxCandidatePool)
}

// Search returns at most topK chunks of the workspace whose document's current
// label is in allowed, ordered by score descending then chunk id ascending.
// An empty allow-list yields an empty result without querying the index.
func (c *Coordinator) Search(ctx context.Context, workspaceID string, vector []float32, topK int, allowed []model.ClassificationLabel) (Result, error) {
	if topK <= 0 {
		return Result{}, model.InvalidArgument("top_k must be positive")
	}
	if err := model.CheckID("workspace", workspaceID); err != nil {
		return Result{}, err
	}
	if len(vector) == 0 {
		return Result{}, model.InvalidArgument("empty query vector")
	}

	ctx, span := c.tracer.Start(ctx, "retrieval.Search", trace.WithAttributes(
		attribute.String("workspace.id", workspaceID),
		attribute.Int("retrieval.top_k", topK),
	))
	defer span.End()

	res := Result{Chunks: []model.ScoredChunk{}}
	if len(allowed) == 0 {
		return res, nil
	}

	pool := c.InitialPool(topK)
	for {
		res.Stats.Rounds++
		res.Stats.PoolSize = pool

		candidates, err := c.index.SearchCandidates(ctx, workspaceID, vector, pool)
		if err != nil {
			span.RecordError(err)
			return Result{}, err
		}

		survivors, byPolicy, missing, err := c.filter(ctx, workspaceID, candidates, allowed)
		if err != nil {
			span.RecordError(err)
			return Result{}, err
		}
		res.Stats.CandidateResults = len(candidates)
		res.Stats.FilteredByPolicy = byPolicy
		res.Stats.FilteredMissingMetadata = missing
		res.Chunks = survivors

		exhausted := len(candidates) < pool
		if len(survivors) >= topK || exhausted || pool >= c.cfg.MaxCandidatePool {
			break
		}
		pool = min(pool*2, c.cfg.MaxCandidatePool)
	}

	if len(res.Chunks) > topK {
		res.Chunks = res.Chunks[:topK]
	}

	span.SetAttributes(
		attribute.Int("retrieval.rounds", res.Stats.Rounds),
		attribute.Int("retrieval.pool_size", res.Stats.PoolSize),
		attribute.Int("retrieval.candidates", res.Stats.CandidateResults),
		attribute.Int("retrieval.returned", len(res.Chunks)),
	)
	c.metrics.ObserveRetrievalRounds(res.Stats.Rounds)
	c.metrics.AddFiltered(metrics.ReasonPolicy, res.Stats.FilteredByPolicy)
	c.metrics.AddFiltered(metrics.ReasonMissingMetadata, res.Stats.FilteredMissingMetadata)

	return res, nil
}

func (c *Coordinator) filter(ctx context.Context, workspaceID string, candidates []model.ScoredChunk, allowed []model.ClassificationLabel) ([]model.ScoredChunk, int, int, error) {
	if len(candidates) == 0 {
		return []model.ScoredChunk{}, 0, 0, nil
	}

	docIDs := make([]string, 0, len(candidates))
	for _, sc := range candidates {
		if !slices.Contains(docIDs, sc.Chunk.DocumentID) {
			docIDs = append(docIDs, sc.Chunk.DocumentID)
		}
	}
	labels, err := c.labels.ClassificationMap(ctx, workspaceID, docIDs)
	if err != nil {
		return nil, 0, 0, err
	}

	var byPolicy, missing int
	survivors := make([]model.ScoredChunk, 0, len(candidates))
	for _, sc := range candidates {
		label, ok := labels[sc.Chunk.DocumentID]
		switch {
		case !ok:
			missing++
		case !policy.Allows(allowed, label):
			byPolicy++
		default:
			survivors = append(survivors, sc)
		}
	}

	sort.SliceStable(survivors, func(i, j int) bool {
		if survivors[i].Score != survivors[j].Score {
			return survivors[i].Score > survivors[j].Score
		}
		return survivors[i].Chunk.ID < survivors[j].Chunk.ID
	})
	return survivors, byPolicy, missing, nil
}
