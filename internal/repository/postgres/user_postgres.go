package postgres

import (
	"context"
	"database/sql"
	"errors"

	"docrag/internal/model"
	"docrag/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func (r *UserPostgres) CreateWithWorkspace(ctx context.Context, user model.User, ws model.Workspace) error {
	const (
		qUser      = `INSERT INTO users (id, email, password_hash, created_at) VALUES ($1, $2, $3, $4)`
		qWorkspace = `INSERT INTO workspaces (id, name, created_at) VALUES ($1, $2, $3)`
		qMember    = `INSERT INTO workspace_members (workspace_id, user_id, role, created_at) VALUES ($1, $2, $3, $4)`
	)
	return withTx(ctx, r.db, "register user", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, qUser, user.ID, user.Email, user.PasswordHash, user.CreatedAt); err != nil {
			if isUniqueViolation(err) {
				return model.ErrConflict
			}
			return model.StorageError("insert user", err)
		}
		if _, err := tx.ExecContext(ctx, qWorkspace, ws.ID, ws.Name, ws.CreatedAt); err != nil {
			return model.StorageError("insert workspace", err)
		}
		if _, err := tx.ExecContext(ctx, qMember, ws.ID, user.ID, string(model.RoleAdmin), ws.CreatedAt); err != nil {
			return model.StorageError("insert membership", err)
		}
		return nil
	})
}

func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT id, email, password_hash, created_at FROM users WHERE email = $1`
	return r.findOne(ctx, q, email)
}

func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id, email, password_hash, created_at FROM users WHERE id = $1`
	return r.findOne(ctx, q, id)
}

func (r *UserPostgres) findOne(ctx context.Context, q string, arg string) (*model.User, error) {
	var u model.User
	if err := r.db.QueryRowContext(ctx, q, arg).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, model.StorageError("find user", err)
	}
	return &u, nil
}
