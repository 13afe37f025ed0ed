// Package service holds the use cases behind the HTTP API. Every operation
// takes the calling Actor and the workspace explicitly; nothing is read from
// ambient request state.
package service

import (
	"context"
	"errors"
	"fmt"

	"docrag/internal/audit"
	"docrag/internal/model"
	"docrag/internal/repository"
)

// Auditor records audit entries. *audit.Log implements it.
type Auditor interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Reasons attached to failed audit events.
const (
	ReasonForbidden        = "forbidden"
	ReasonDocumentNotFound = "document_not_found"
	ReasonInvalidLabel     = "invalid_label"
	ReasonUserNotFound     = "user_not_found"
	ReasonAlreadyMember    = "already_member"
	ReasonMemberNotFound   = "member_not_found"
	ReasonLastAdmin        = "last_admin"
	ReasonInvalidRole      = "invalid_role"
	ReasonInvalidPassword  = "invalid_credentials"
	ReasonStorageError     = "storage_error"
)

// resolveRole checks the workspace id and returns the actor's role in it.
// A caller that is not a member gets model.ErrForbidden.
func resolveRole(ctx context.Context, members repository.MembershipRepository, actor model.Actor, workspaceID string) (model.Role, error) {
	if err := model.CheckID("workspace", workspaceID); err != nil {
		return "", err
	}
	if actor.UserID == "" {
		return "", model.ErrUnauthenticated
	}
	role, err := members.GetRole(ctx, workspaceID, actor.UserID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", fmt.Errorf("%w: not a member of the workspace", model.ErrForbidden)
		}
		return "", err
	}
	return role, nil
}

func auditEntry(workspaceID string, actor model.Actor, action model.AuditAction, payload map[string]any) audit.Entry {
	return audit.Entry{
		WorkspaceID: workspaceID,
		UserID:      actor.UserID,
		Action:      action,
		Payload:     payload,
		Outcome:     model.OutcomeSuccess,
	}
}

func failedEntry(workspaceID string, actor model.Actor, action model.AuditAction, payload map[string]any) audit.Entry {
	e := auditEntry(workspaceID, actor, action, payload)
	e.Outcome = model.OutcomeFailure
	return e
}

func labelStrings(labels []model.ClassificationLabel) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = string(l)
	}
	return out
}

// denialReason names the audit reason for a failed role check.
func denialReason(err error) string {
	if errors.Is(err, model.ErrForbidden) || errors.Is(err, model.ErrUnauthenticated) {
		return ReasonForbidden
	}
	return ReasonStorageError
}
