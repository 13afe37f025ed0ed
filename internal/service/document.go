package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"docrag/internal/model"
	"docrag/internal/policy"
	"docrag/internal/repository"
	"docrag/internal/storage"
)

// Inventory page bounds.
const (
	DefaultInventoryLimit = 50
	MaxInventoryLimit     = 200

	archiveURLExpiry = 15 * time.Minute
)

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items  []model.Document `json:"data"`
	Total  int              `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// DocumentDetail is a document plus a short-lived link to its archived body.
type DocumentDetail struct {
	model.Document
	ArchiveURL string `json:"archive_url,omitempty"`
}

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// List returns the documents the actor's role may see, using limit/offset and a total count.
	List(ctx context.Context, actor model.Actor, workspaceID string, limit, offset int) (*DocumentListResult, error)

	// Get returns a single document. A document the actor may not see is reported as not found.
	Get(ctx context.Context, actor model.Actor, workspaceID, documentID string) (*DocumentDetail, error)

	// UpdateClassification relabels a document. Admin only.
	UpdateClassification(ctx context.Context, actor model.Actor, workspaceID, documentID, label string) (*model.Document, error)

	// IngestDemo replaces the workspace corpus with the demo documents. Admin only.
	IngestDemo(ctx context.Context, actor model.Actor, workspaceID string) (*IngestResult, error)
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	repo    repository.DocumentRepository
	members repository.MembershipRepository
	store   storage.Storage
	audit   Auditor
	logger  *slog.Logger
	ingest  IngestDeps
}

// NewDocumentService constructs a new DocumentService. store may be nil, in
// which case document bodies are not archived.
func NewDocumentService(
	repo repository.DocumentRepository,
	members repository.MembershipRepository,
	store storage.Storage,
	auditor Auditor,
	logger *slog.Logger,
	ingest IngestDeps,
) DocumentService {
	return &documentService{
		repo:    repo,
		members: members,
		store:   store,
		audit:   auditor,
		logger:  logger.With("component", "documents"),
		ingest:  ingest,
	}
}

func (s *documentService) List(ctx context.Context, actor model.Actor, workspaceID string, limit, offset int) (*DocumentListResult, error) {
	role, err := resolveRole(ctx, s.members, actor, workspaceID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultInventoryLimit
	}
	limit = min(limit, MaxInventoryLimit)
	if offset < 0 {
		return nil, model.InvalidArgument("offset must not be negative")
	}

	res, err := s.repo.List(ctx, workspaceID, policy.AllowedLabels(role), repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}

	// Audit failures never change the response.
	_ = s.audit.Record(ctx, auditEntry(workspaceID, actor, model.ActionDocumentInventoryRead, map[string]any{
		"limit":    limit,
		"offset":   offset,
		"returned": len(res.Items),
	}))

	return &DocumentListResult{Items: res.Items, Total: res.Total, Limit: limit, Offset: offset}, nil
}

func (s *documentService) Get(ctx context.Context, actor model.Actor, workspaceID, documentID string) (*DocumentDetail, error) {
	role, err := resolveRole(ctx, s.members, actor, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := model.CheckID("document", documentID); err != nil {
		return nil, err
	}

	doc, err := s.repo.FindByID(ctx, workspaceID, documentID)
	if err != nil {
		return nil, err
	}
	if !policy.CanSee(role, doc.ClassificationLabel) {
		return nil, model.ErrNotFound
	}

	out := &DocumentDetail{Document: *doc}
	if s.store != nil && doc.StoragePath != "" {
		url, err := s.store.PresignGet(ctx, doc.StoragePath, archiveURLExpiry)
		if err != nil {
			// The metadata is still useful without the link.
			s.logger.Warn("presign_failed", "document_id", doc.ID, "error", err.Error())
		} else {
			out.ArchiveURL = url
		}
	}
	return out, nil
}

func (s *documentService) UpdateClassification(ctx context.Context, actor model.Actor, workspaceID, documentID, label string) (*model.Document, error) {
	if err := model.CheckID("workspace", workspaceID); err != nil {
		return nil, err
	}
	if err := model.CheckID("document", documentID); err != nil {
		return nil, err
	}

	payload := map[string]any{
		"document_id":          documentID,
		"classification_label": label,
	}
	fail := func(reason string, err error) (*model.Document, error) {
		payload["reason"] = reason
		// Audit failures never change the response.
		_ = s.audit.Record(ctx, failedEntry(workspaceID, actor, model.ActionDocumentClassificationUpdate, payload))
		return nil, err
	}

	role, err := resolveRole(ctx, s.members, actor, workspaceID)
	if err != nil {
		if errors.Is(err, model.ErrForbidden) {
			return fail(ReasonForbidden, err)
		}
		return nil, err
	}
	if err := policy.AuthorizeClassificationChange(role); err != nil {
		return fail(ReasonForbidden, err)
	}
	next, err := model.ParseLabel(label)
	if err != nil {
		return fail(ReasonInvalidLabel, err)
	}

	doc, previous, err := s.repo.UpdateClassification(ctx, workspaceID, documentID, next)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fail(ReasonDocumentNotFound, err)
		}
		return fail(ReasonStorageError, err)
	}

	payload["previous_label"] = string(previous)
	// Audit failures never change the response.
	_ = s.audit.Record(ctx, auditEntry(workspaceID, actor, model.ActionDocumentClassificationUpdate, payload))
	return doc, nil
}
