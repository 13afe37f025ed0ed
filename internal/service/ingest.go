package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"docrag/internal/embedding"
	"docrag/internal/ingestion"
	"docrag/internal/model"
	"docrag/internal/policy"
	"docrag/internal/storage"
)

// IngestDeps are the collaborators of the demo ingestion pipeline.
type IngestDeps struct {
	// Source holds the demo *.txt files at its root.
	Source   fs.FS
	Chunker  *ingestion.Chunker
	Embedder embedding.Embedder
}

// IngestResult reports the size of the corpus that replaced the old one.
type IngestResult struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

// IngestDemo parses the demo files, chunks and embeds them, archives each body
// in object storage and swaps the workspace corpus in one transaction. Archived
// bodies are deleted again when the database write fails.
func (s *documentService) IngestDemo(ctx context.Context, actor model.Actor, workspaceID string) (*IngestResult, error) {
	role, err := resolveRole(ctx, s.members, actor, workspaceID)
	if err != nil {
		if errors.Is(err, model.ErrForbidden) {
			s.recordIngestFailure(ctx, workspaceID, actor, ReasonForbidden)
		}
		return nil, err
	}
	if err := policy.AuthorizeIngest(role); err != nil {
		s.recordIngestFailure(ctx, workspaceID, actor, ReasonForbidden)
		return nil, err
	}
	if s.ingest.Source == nil || s.ingest.Chunker == nil || s.ingest.Embedder == nil {
		return nil, errors.New("demo ingestion is not configured")
	}

	docs, err := ingestion.LoadDir(s.ingest.Source)
	if err != nil {
		return nil, fmt.Errorf("load demo corpus: %w", err)
	}

	now := time.Now().UTC()
	var chunks []model.Chunk
	for i := range docs {
		docs[i].ID = model.NewID()
		docs[i].WorkspaceID = workspaceID
		docs[i].CreatedAt = now
		chunks = append(chunks, s.ingest.Chunker.Chunk(docs[i])...)
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		chunks[i].ID = model.NewID()
		texts[i] = chunks[i].Content
	}
	if len(texts) > 0 {
		vectors, err := s.ingest.Embedder.Embed(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks: %w", err)
		}
		if len(vectors) != len(chunks) {
			return nil, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(chunks))
		}
		for i := range chunks {
			chunks[i].Embedding = vectors[i]
		}
	}

	// TODO: remove the archived bodies of the corpus being replaced once the
	// new one is committed.
	keys, err := s.archive(ctx, docs)
	if err != nil {
		s.rollbackArchive(ctx, keys)
		s.recordIngestFailure(ctx, workspaceID, actor, ReasonStorageError)
		return nil, err
	}

	if err := s.repo.ReplaceCorpus(ctx, workspaceID, docs, chunks); err != nil {
		s.rollbackArchive(ctx, keys)
		s.recordIngestFailure(ctx, workspaceID, actor, ReasonStorageError)
		return nil, err
	}

	res := &IngestResult{Documents: len(docs), Chunks: len(chunks)}
	// Audit failures never change the response.
	_ = s.audit.Record(ctx, auditEntry(workspaceID, actor, model.ActionIngestDemo, map[string]any{
		"documents": res.Documents,
		"chunks":    res.Chunks,
	}))
	s.logger.Info("corpus_replaced", "workspace_id", workspaceID, "documents", res.Documents, "chunks", res.Chunks)
	return res, nil
}

// archive uploads each document body and records its key on the document.
// It returns the keys written so far, also on error.
func (s *documentService) archive(ctx context.Context, docs []model.Document) ([]string, error) {
	if s.store == nil {
		return nil, nil
	}
	keys := make([]string, 0, len(docs))
	for i := range docs {
		key := storage.DocumentKey(docs[i].WorkspaceID, docs[i].ID)
		info, err := s.store.Put(ctx, key, strings.NewReader(docs[i].Text), storage.PutObjectOptions{
			Size:        int64(len(docs[i].Text)),
			ContentType: "text/plain; charset=utf-8",
			Metadata: map[string]string{
				"document-id": docs[i].ID,
			},
		})
		if err != nil {
			return keys, fmt.Errorf("upload to storage: %w", err)
		}
		keys = append(keys, info.Key)
		docs[i].StoragePath = info.Key
	}
	return keys, nil
}

func (s *documentService) rollbackArchive(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
			s.logger.Warn("rollback_delete_failed", "key", key, "error", err.Error())
		}
	}
}

func (s *documentService) recordIngestFailure(ctx context.Context, workspaceID string, actor model.Actor, reason string) {
	// Audit failures never change the response.
	_ = s.audit.Record(ctx, failedEntry(workspaceID, actor, model.ActionIngestDemo, map[string]any{"reason": reason}))
}
