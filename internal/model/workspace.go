package model

import "time"

// Role is a user's role inside a workspace.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember:
		return true
	default:
		return false
	}
}

// ParseRole converts raw input into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", InvalidArgument("unknown role")
	}
	return r, nil
}

// User is an account that can belong to workspaces.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Workspace is the isolation boundary for documents, members and audit events.
type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// WorkspaceWithRole is a workspace as seen by one of its members.
type WorkspaceWithRole struct {
	Workspace
	Role Role `json:"role"`
}

// WorkspaceMember is the (workspace, user, role) relation.
type WorkspaceMember struct {
	WorkspaceID string    `json:"workspace_id"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}

// Actor identifies the authenticated caller of an operation.
type Actor struct {
	UserID string
	Email  string
}
