package repository

import (
	"context"

	"docrag/internal/model"
)

// MembershipRepository holds workspace → user → role assignments.
//
// UpdateRole and Remove check the admin quorum and apply the change as one
// atomic unit.
type MembershipRepository interface {
	List(ctx context.Context, workspaceID string) ([]model.WorkspaceMember, error)

	// GetRole returns the user's role, or model.ErrNotFound when not a member.
	GetRole(ctx context.Context, workspaceID, userID string) (model.Role, error)

	// Add inserts a membership. model.ErrConflict when it already exists.
	Add(ctx context.Context, workspaceID, userID string, role model.Role) (*model.WorkspaceMember, error)

	// UpdateRole changes a member's role. model.ErrNotFound for non-members,
	// model.ErrQuorumViolation when the last admin would be demoted.
	UpdateRole(ctx context.Context, workspaceID, userID string, role model.Role) (*model.WorkspaceMember, error)

	// Remove deletes a membership. model.ErrNotFound for non-members,
	// model.ErrQuorumViolation when the last admin would be removed.
	Remove(ctx context.Context, workspaceID, userID string) error
}

// UserRepository stores accounts.
type UserRepository interface {
	// CreateWithWorkspace inserts the user, its default workspace and the admin
	// membership in one transaction. model.ErrConflict when the email is taken.
	CreateWithWorkspace(ctx context.Context, user model.User, ws model.Workspace) error

	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// WorkspaceRepository stores workspaces.
type WorkspaceRepository interface {
	// Create inserts the workspace with adminUserID as its sole admin.
	Create(ctx context.Context, ws model.Workspace, adminUserID string) error

	ListForUser(ctx context.Context, userID string) ([]model.WorkspaceWithRole, error)
}

// AuditRepository is the append-only audit event store.
type AuditRepository interface {
	Insert(ctx context.Context, ev *model.AuditEvent) error

	// List returns the workspace's events, newest first, at most limit rows.
	List(ctx context.Context, workspaceID string, limit int) ([]model.AuditEvent, error)
}
