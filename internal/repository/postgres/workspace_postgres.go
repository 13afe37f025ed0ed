package postgres

import (
	"context"
	"database/sql"

	"docrag/internal/model"
	"docrag/internal/repository"
)

// WorkspacePostgres is a PostgreSQL implementation of repository.WorkspaceRepository.
type WorkspacePostgres struct {
	db *sql.DB
}

// NewWorkspacePostgres creates a new WorkspacePostgres repository.
func NewWorkspacePostgres(db *sql.DB) *WorkspacePostgres {
	return &WorkspacePostgres{db: db}
}

var _ repository.WorkspaceRepository = (*WorkspacePostgres)(nil)

func (r *WorkspacePostgres) Create(ctx context.Context, ws model.Workspace, adminUserID string) error {
	const (
		qWorkspace = `INSERT INTO workspaces (id, name, created_at) VALUES ($1, $2, $3)`
		qMember    = `INSERT INTO workspace_members (workspace_id, user_id, role, created_at) VALUES ($1, $2, $3, $4)`
	)
	return withTx(ctx, r.db, "create workspace", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, qWorkspace, ws.ID, ws.Name, ws.CreatedAt); err != nil {
			return model.StorageError("insert workspace", err)
		}
		if _, err := tx.ExecContext(ctx, qMember, ws.ID, adminUserID, string(model.RoleAdmin), ws.CreatedAt); err != nil {
			return model.StorageError("insert membership", err)
		}
		return nil
	})
}

func (r *WorkspacePostgres) ListForUser(ctx context.Context, userID string) ([]model.WorkspaceWithRole, error) {
	const q = `
		SELECT w.id, w.name, w.created_at, m.role
		FROM workspaces w
		JOIN workspace_members m ON m.workspace_id = w.id
		WHERE m.user_id = $1
		ORDER BY w.created_at ASC, w.id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, model.StorageError("list workspaces", err)
	}
	defer rows.Close()

	out := make([]model.WorkspaceWithRole, 0)
	for rows.Next() {
		var (
			w    model.WorkspaceWithRole
			role string
		)
		if err := rows.Scan(&w.ID, &w.Name, &w.CreatedAt, &role); err != nil {
			return nil, model.StorageError("scan workspace", err)
		}
		w.Role = model.Role(role)
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, model.StorageError("list workspaces", err)
	}
	return out, nil
}
