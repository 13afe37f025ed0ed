package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docrag/internal/model"
)

func TestUserPostgres_CreateWithWorkspace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()
	user := model.User{ID: userID, Email: "a@example.org", PasswordHash: "hash", CreatedAt: now}
	ws := model.Workspace{ID: wsID, Name: "a@example.org workspace", CreatedAt: now}

	t.Run("success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").
			WithArgs(userID, "a@example.org", "hash", now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO workspaces").
			WithArgs(wsID, ws.Name, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("INSERT INTO workspace_members").
			WithArgs(wsID, userID, "admin", now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		assert.NoError(t, repo.CreateWithWorkspace(ctx, user, ws))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("email taken", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pgconn.PgError{Code: "23505"})
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.CreateWithWorkspace(ctx, user, ws), model.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserPostgres_FindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserPostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE email = \\$1").
		WithArgs("nobody@example.org").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}))

	u, err := repo.FindByEmail(context.Background(), "nobody@example.org")
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Nil(t, u)
}

func TestWorkspacePostgres_ListForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewWorkspacePostgres(db)

	mock.ExpectQuery("SELECT (.+) FROM workspaces w JOIN workspace_members m").
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "created_at", "role"}).
			AddRow(wsID, "Main", time.Now(), "admin"))

	got, err := repo.ListForUser(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, model.RoleAdmin, got[0].Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}
