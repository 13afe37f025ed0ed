package postgres

import (
	"context"
	"database/sql"
	"errors"

	"docrag/internal/model"
	"docrag/internal/policy"
	"docrag/internal/repository"
)

// MembershipPostgres is a PostgreSQL implementation of repository.MembershipRepository.
//
// Role changes and removals lock the workspace row before counting admins, so
// two concurrent demotions of the last two admins serialize and the second one
// observes the first.
type MembershipPostgres struct {
	db *sql.DB
}

// NewMembershipPostgres creates a new MembershipPostgres repository.
func NewMembershipPostgres(db *sql.DB) *MembershipPostgres {
	return &MembershipPostgres{db: db}
}

var _ repository.MembershipRepository = (*MembershipPostgres)(nil)

const (
	qLockWorkspace = `SELECT id FROM workspaces WHERE id = $1 FOR UPDATE`
	qMemberRole    = `SELECT role FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`
	qCountAdmins   = `SELECT COUNT(*) FROM workspace_members WHERE workspace_id = $1 AND role = 'admin'`
)

func (r *MembershipPostgres) List(ctx context.Context, workspaceID string) ([]model.WorkspaceMember, error) {
	const q = `
		SELECT m.workspace_id, m.user_id, u.email, m.role, m.created_at
		FROM workspace_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.workspace_id = $1
		ORDER BY m.created_at ASC, m.user_id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, workspaceID)
	if err != nil {
		return nil, model.StorageError("list members", err)
	}
	defer rows.Close()

	out := make([]model.WorkspaceMember, 0)
	for rows.Next() {
		var (
			m    model.WorkspaceMember
			role string
		)
		if err := rows.Scan(&m.WorkspaceID, &m.UserID, &m.Email, &role, &m.CreatedAt); err != nil {
			return nil, model.StorageError("scan member", err)
		}
		m.Role = model.Role(role)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, model.StorageError("list members", err)
	}
	return out, nil
}

func (r *MembershipPostgres) GetRole(ctx context.Context, workspaceID, userID string) (model.Role, error) {
	var role string
	if err := r.db.QueryRowContext(ctx, qMemberRole, workspaceID, userID).Scan(&role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", model.ErrNotFound
		}
		return "", model.StorageError("get role", err)
	}
	return model.Role(role), nil
}

func (r *MembershipPostgres) Add(ctx context.Context, workspaceID, userID string, role model.Role) (*model.WorkspaceMember, error) {
	const q = `
		WITH inserted AS (
			INSERT INTO workspace_members (workspace_id, user_id, role)
			VALUES ($1, $2, $3)
			RETURNING workspace_id, user_id, role, created_at
		)
		SELECT i.workspace_id, i.user_id, u.email, i.role, i.created_at
		FROM inserted i
		JOIN users u ON u.id = i.user_id
	`
	var (
		m       model.WorkspaceMember
		outRole string
	)
	err := r.db.QueryRowContext(ctx, q, workspaceID, userID, string(role)).
		Scan(&m.WorkspaceID, &m.UserID, &m.Email, &outRole, &m.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, model.ErrConflict
		}
		return nil, model.StorageError("add member", err)
	}
	m.Role = model.Role(outRole)
	return &m, nil
}

// lockAndCheck locks the workspace, reads the target's role and evaluates the
// admin quorum for the transition to next (nil means removal).
func lockAndCheck(ctx context.Context, tx *sql.Tx, workspaceID, userID string, next *model.Role) error {
	var locked string
	if err := tx.QueryRowContext(ctx, qLockWorkspace, workspaceID).Scan(&locked); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrNotFound
		}
		return model.StorageError("lock workspace", err)
	}

	var current string
	if err := tx.QueryRowContext(ctx, qMemberRole, workspaceID, userID).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.ErrNotFound
		}
		return model.StorageError("get role", err)
	}

	var admins int
	if err := tx.QueryRowContext(ctx, qCountAdmins, workspaceID).Scan(&admins); err != nil {
		return model.StorageError("count admins", err)
	}
	return policy.CheckAdminQuorum(admins, model.Role(current), next)
}

func (r *MembershipPostgres) UpdateRole(ctx context.Context, workspaceID, userID string, role model.Role) (*model.WorkspaceMember, error) {
	const q = `
		UPDATE workspace_members m
		SET role = $3
		FROM users u
		WHERE m.workspace_id = $1 AND m.user_id = $2 AND u.id = m.user_id
		RETURNING m.workspace_id, m.user_id, u.email, m.role, m.created_at
	`
	var m model.WorkspaceMember
	err := withTx(ctx, r.db, "update member role", func(tx *sql.Tx) error {
		if err := lockAndCheck(ctx, tx, workspaceID, userID, &role); err != nil {
			return err
		}
		var outRole string
		if err := tx.QueryRowContext(ctx, q, workspaceID, userID, string(role)).
			Scan(&m.WorkspaceID, &m.UserID, &m.Email, &outRole, &m.CreatedAt); err != nil {
			return model.StorageError("update member role", err)
		}
		m.Role = model.Role(outRole)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MembershipPostgres) Remove(ctx context.Context, workspaceID, userID string) error {
	const q = `DELETE FROM workspace_members WHERE workspace_id = $1 AND user_id = $2`
	return withTx(ctx, r.db, "remove member", func(tx *sql.Tx) error {
		if err := lockAndCheck(ctx, tx, workspaceID, userID, nil); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, q, workspaceID, userID); err != nil {
			return model.StorageError("remove member", err)
		}
		return nil
	})
}
