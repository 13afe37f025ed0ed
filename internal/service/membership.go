package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"docrag/internal/metrics"
	"docrag/internal/model"
	"docrag/internal/policy"
	"docrag/internal/repository"
)

// MembershipService manages who belongs to a workspace. Every mutation keeps
// at least one admin in the workspace; the check and the change are applied by
// the store as one unit.
type MembershipService interface {
	List(ctx context.Context, actor model.Actor, workspaceID string) ([]model.WorkspaceMember, error)

	// Add grants role to the user registered under email. Unknown users and
	// existing members are both reported as model.ErrMemberAddRejected.
	Add(ctx context.Context, actor model.Actor, workspaceID, email, role string) (*model.WorkspaceMember, error)

	UpdateRole(ctx context.Context, actor model.Actor, workspaceID, userID, role string) (*model.WorkspaceMember, error)
	Remove(ctx context.Context, actor model.Actor, workspaceID, userID string) error
}

type membershipService struct {
	members repository.MembershipRepository
	users   repository.UserRepository
	audit   Auditor
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewMembershipService constructs a MembershipService. m may be nil.
func NewMembershipService(
	members repository.MembershipRepository,
	users repository.UserRepository,
	auditor Auditor,
	m *metrics.Metrics,
	logger *slog.Logger,
) MembershipService {
	return &membershipService{
		members: members,
		users:   users,
		audit:   auditor,
		metrics: m,
		logger:  logger.With("component", "membership"),
	}
}

func (s *membershipService) List(ctx context.Context, actor model.Actor, workspaceID string) ([]model.WorkspaceMember, error) {
	if _, err := resolveRole(ctx, s.members, actor, workspaceID); err != nil {
		return nil, err
	}
	members, err := s.members.List(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	// Audit failures never change the response.
	_ = s.audit.Record(ctx, auditEntry(workspaceID, actor, model.ActionWorkspaceMemberRead, map[string]any{
		"returned": len(members),
	}))
	return members, nil
}

func (s *membershipService) Add(ctx context.Context, actor model.Actor, workspaceID, email, role string) (*model.WorkspaceMember, error) {
	if err := model.CheckID("workspace", workspaceID); err != nil {
		return nil, err
	}
	if role == "" {
		role = string(model.RoleMember)
	}
	payload := map[string]any{"role": role}
	fail := func(reason string, err error) (*model.WorkspaceMember, error) {
		payload["reason"] = reason
		// Audit failures never change the response.
		_ = s.audit.Record(ctx, failedEntry(workspaceID, actor, model.ActionWorkspaceMemberAdd, payload))
		return nil, err
	}

	if err := s.authorize(ctx, actor, workspaceID); err != nil {
		return fail(denialReason(err), err)
	}
	next, err := model.ParseRole(role)
	if err != nil {
		return fail(ReasonInvalidRole, err)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fail(ReasonUserNotFound, model.ErrMemberAddRejected)
	}
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return fail(ReasonUserNotFound, model.ErrMemberAddRejected)
		}
		return fail(ReasonStorageError, err)
	}
	payload["target_user_id"] = user.ID

	member, err := s.members.Add(ctx, workspaceID, user.ID, next)
	if err != nil {
		if errors.Is(err, model.ErrConflict) {
			return fail(ReasonAlreadyMember, model.ErrMemberAddRejected)
		}
		return fail(ReasonStorageError, err)
	}

	// Audit failures never change the response.
	_ = s.audit.Record(ctx, auditEntry(workspaceID, actor, model.ActionWorkspaceMemberAdd, payload))
	return member, nil
}

func (s *membershipService) UpdateRole(ctx context.Context, actor model.Actor, workspaceID, userID, role string) (*model.WorkspaceMember, error) {
	if err := model.CheckID("workspace", workspaceID); err != nil {
		return nil, err
	}
	if err := model.CheckID("user", userID); err != nil {
		return nil, err
	}
	payload := map[string]any{"target_user_id": userID, "role": role}
	fail := func(reason string, err error) (*model.WorkspaceMember, error) {
		payload["reason"] = reason
		// Audit failures never change the response.
		_ = s.audit.Record(ctx, failedEntry(workspaceID, actor, model.ActionWorkspaceMemberRoleUpdate, payload))
		return nil, err
	}

	if err := s.authorize(ctx, actor, workspaceID); err != nil {
		return fail(denialReason(err), err)
	}
	next, err := model.ParseRole(role)
	if err != nil {
		return fail(ReasonInvalidRole, err)
	}

	member, err := s.members.UpdateRole(ctx, workspaceID, userID, next)
	if err != nil {
		return fail(s.mutationFailure(err), err)
	}

	// Audit failures never change the response.
	_ = s.audit.Record(ctx, auditEntry(workspaceID, actor, model.ActionWorkspaceMemberRoleUpdate, payload))
	return member, nil
}

func (s *membershipService) Remove(ctx context.Context, actor model.Actor, workspaceID, userID string) error {
	if err := model.CheckID("workspace", workspaceID); err != nil {
		return err
	}
	if err := model.CheckID("user", userID); err != nil {
		return err
	}
	payload := map[string]any{"target_user_id": userID}
	fail := func(reason string, err error) error {
		payload["reason"] = reason
		// Audit failures never change the response.
		_ = s.audit.Record(ctx, failedEntry(workspaceID, actor, model.ActionWorkspaceMemberRemove, payload))
		return err
	}

	if err := s.authorize(ctx, actor, workspaceID); err != nil {
		return fail(denialReason(err), err)
	}
	if err := s.members.Remove(ctx, workspaceID, userID); err != nil {
		return fail(s.mutationFailure(err), err)
	}

	// Audit failures never change the response.
	_ = s.audit.Record(ctx, auditEntry(workspaceID, actor, model.ActionWorkspaceMemberRemove, payload))
	return nil
}

func (s *membershipService) authorize(ctx context.Context, actor model.Actor, workspaceID string) error {
	role, err := resolveRole(ctx, s.members, actor, workspaceID)
	if err != nil {
		return err
	}
	return policy.AuthorizeMembershipMutation(role)
}

// mutationFailure names the audit reason for a failed update or removal.
func (s *membershipService) mutationFailure(err error) string {
	switch {
	case errors.Is(err, model.ErrQuorumViolation):
		s.metrics.QuorumViolation()
		return ReasonLastAdmin
	case errors.Is(err, model.ErrNotFound):
		return ReasonMemberNotFound
	default:
		return ReasonStorageError
	}
}
