// Package bootstrap assembles the stores, policy-aware services and their
// infrastructure from an AppConfig. Both the API server and ragctl build on it.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"docrag/internal/audit"
	"docrag/internal/auth"
	"docrag/internal/config"
	"docrag/internal/database"
	"docrag/internal/database/migration"
	"docrag/internal/embedding"
	"docrag/internal/generator"
	handlers "docrag/internal/http/handler"
	"docrag/internal/ingestion"
	"docrag/internal/metrics"
	"docrag/internal/repository"
	"docrag/internal/repository/postgres"
	"docrag/internal/retrieval"
	"docrag/internal/service"
	"docrag/internal/storage"
)

// App holds the wired components. Close releases them in reverse order.
type App struct {
	DB       *sql.DB
	Registry *prometheus.Registry
	Tokens   *auth.TokenIssuer
	Users    repository.UserRepository
	Services handlers.Services

	closers []func() error
}

// New connects to PostgreSQL, ensures the schema, and wires every service.
// On error everything opened so far is closed again.
func New(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (_ *App, err error) {
	a := &App{Registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	a.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(a.Registry)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	a.Tokens, err = auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(ctx, cfg.Embedding, cfg.LLM.GeminiAPIKey)
	if err != nil {
		return nil, err
	}
	if c, ok := embedder.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}

	gen, err := newGenerator(ctx, cfg.LLM)
	if err != nil {
		return nil, err
	}
	if c, ok := gen.(interface{ Close() error }); ok {
		a.closers = append(a.closers, c.Close)
	}

	a.DB, err = database.NewPostgres(ctx, cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a.closers = append(a.closers, a.DB.Close)
	if err := database.RegisterPoolMetrics(a.Registry, a.DB); err != nil {
		return nil, fmt.Errorf("register pool metrics: %w", err)
	}

	if err := migration.EnsureMigrated(ctx, a.DB, logger, cfg.Database.Host, embedder.Dimension()); err != nil {
		return nil, err
	}

	var store storage.Storage
	if cfg.MinIO.Enabled() {
		store, err = storage.NewMinIO(ctx, cfg.MinIO)
		if err != nil {
			return nil, fmt.Errorf("initialize object storage: %w", err)
		}
	} else {
		logger.Warn("object_storage_disabled", "reason", "MINIO_ENDPOINT is empty")
	}

	users := postgres.NewUserPostgres(a.DB)
	a.Users = users
	workspaces := postgres.NewWorkspacePostgres(a.DB)
	members := postgres.NewMembershipPostgres(a.DB)
	documents := postgres.NewDocumentPostgres(a.DB)
	chunks := postgres.NewChunkPostgres(a.DB)

	auditLog := audit.New(postgres.NewAuditPostgres(a.DB), logger, m, audit.Options{
		WriteTimeout: cfg.Audit.WriteTimeout,
		DefaultLimit: cfg.Audit.DefaultLimit,
		MaxLimit:     cfg.Audit.MaxLimit,
	})
	coordinator := retrieval.NewCoordinator(chunks, documents, retrieval.Config{
		OverfetchMultiplier: cfg.Retrieval.OverfetchMultiplier,
		MinCandidatePool:    cfg.Retrieval.MinCandidatePool,
		MaxCandidatePool:    cfg.Retrieval.MaxCandidatePool,
	}, m)

	a.Services = handlers.Services{
		Auth:       service.NewAuthService(users, workspaces, a.Tokens, auditLog, logger),
		Workspaces: service.NewWorkspaceService(workspaces),
		Documents: service.NewDocumentService(documents, members, store, auditLog, logger, service.IngestDeps{
			Source:   os.DirFS(cfg.Ingest.DemoDir),
			Chunker:  ingestion.NewChunker(ingestion.WithChunkSize(cfg.Ingest.ChunkSize), ingestion.WithOverlap(cfg.Ingest.ChunkOverlap)),
			Embedder: embedder,
		}),
		Query: service.NewQueryService(members, embedder, coordinator, gen, auditLog, logger, service.QueryConfig{
			DefaultTopK: cfg.Retrieval.DefaultTopK,
			MaxTopK:     cfg.Retrieval.MaxTopK,
		}),
		Members: service.NewMembershipService(members, users, auditLog, m, logger),
		Audit:   service.NewAuditService(members, auditLog),
	}
	return a, nil
}

// Close releases every opened resource, newest first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func newEmbedder(ctx context.Context, cfg config.EmbeddingConfig, apiKey string) (embedding.Embedder, error) {
	switch cfg.Backend {
	case "", "hash":
		return embedding.NewHash(cfg.Dimension), nil
	case "gemini":
		e, err := embedding.NewGemini(ctx, apiKey, cfg.GeminiModel, cfg.Dimension)
		if err != nil {
			return nil, fmt.Errorf("gemini embedder: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown embedding backend %q", cfg.Backend)
	}
}

func newGenerator(ctx context.Context, cfg config.LLMConfig) (generator.Generator, error) {
	if !cfg.Enabled {
		return generator.Extractive{}, nil
	}
	g, err := generator.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, fmt.Errorf("gemini generator: %w", err)
	}
	return g, nil
}
