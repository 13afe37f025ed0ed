package service

import (
	"context"

	"docrag/internal/model"
	"docrag/internal/policy"
	"docrag/internal/repository"
)

// AuditReader reads the audit trail. *audit.Log implements it.
type AuditReader interface {
	List(ctx context.Context, workspaceID string, limit int) ([]model.AuditEvent, error)
}

// AuditService exposes a workspace's audit trail to its admins.
type AuditService interface {
	// List returns the newest events first. limit <= 0 means the default page size.
	List(ctx context.Context, actor model.Actor, workspaceID string, limit int) ([]model.AuditEvent, error)
}

type auditService struct {
	members repository.MembershipRepository
	reader  AuditReader
}

// NewAuditService constructs an AuditService.
func NewAuditService(members repository.MembershipRepository, reader AuditReader) AuditService {
	return &auditService{members: members, reader: reader}
}

func (s *auditService) List(ctx context.Context, actor model.Actor, workspaceID string, limit int) ([]model.AuditEvent, error) {
	role, err := resolveRole(ctx, s.members, actor, workspaceID)
	if err != nil {
		return nil, err
	}
	if err := policy.AuthorizeAuditRead(role); err != nil {
		return nil, err
	}
	return s.reader.List(ctx, workspaceID, limit)
}
