package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"docrag/internal/audit"
	"docrag/internal/auth"
	"docrag/internal/model"
	"docrag/internal/repository"
)

// DefaultWorkspaceName is given to the workspace created at registration.
const DefaultWorkspaceName = "Default workspace"

// TokenSigner issues bearer tokens. *auth.TokenIssuer implements it.
type TokenSigner interface {
	Issue(user model.User) (string, time.Time, error)
}

// AuthResult is returned by registration and login.
type AuthResult struct {
	AccessToken      string                   `json:"access_token"`
	TokenType        string                   `json:"token_type"`
	ExpiresAt        time.Time                `json:"expires_at"`
	User             model.User               `json:"user"`
	DefaultWorkspace *model.WorkspaceWithRole `json:"default_workspace"`
}

// AuthService registers accounts and logs them in.
type AuthService interface {
	// Register creates the user together with a workspace it administers.
	Register(ctx context.Context, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

type authService struct {
	users      repository.UserRepository
	workspaces repository.WorkspaceRepository
	tokens     TokenSigner
	audit      Auditor
	logger     *slog.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repository.UserRepository, workspaces repository.WorkspaceRepository, tokens TokenSigner, auditor Auditor, logger *slog.Logger) AuthService {
	return &authService{
		users:      users,
		workspaces: workspaces,
		tokens:     tokens,
		audit:      auditor,
		logger:     logger.With("component", "auth"),
	}
}

func (s *authService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	if len(email) < 3 || !strings.Contains(email, "@") {
		return nil, model.InvalidArgument("invalid email")
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidArgument, err)
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := model.User{ID: model.NewID(), Email: email, PasswordHash: hash, CreatedAt: now}
	ws := model.Workspace{ID: model.NewID(), Name: DefaultWorkspaceName, CreatedAt: now}
	if err := s.users.CreateWithWorkspace(ctx, user, ws); err != nil {
		return nil, err
	}

	// Audit failures never change the response.
	_ = s.audit.Record(ctx, audit.Entry{
		WorkspaceID: ws.ID,
		UserID:      user.ID,
		Action:      model.ActionAuthRegister,
		Payload:     map[string]any{"email": email},
	})

	return s.issue(user, &model.WorkspaceWithRole{Workspace: ws, Role: model.RoleAdmin})
}

func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = normalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, password) {
		e := audit.Entry{
			Action:  model.ActionAuthLogin,
			Payload: map[string]any{"email": email, "reason": ReasonInvalidPassword},
			Outcome: model.OutcomeFailure,
		}
		if user != nil {
			e.UserID = user.ID
		}
		// Audit failures never change the response.
		_ = s.audit.Record(ctx, e)
		return nil, fmt.Errorf("%w: invalid email or password", model.ErrUnauthenticated)
	}

	workspaces, err := s.workspaces.ListForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	var def *model.WorkspaceWithRole
	if len(workspaces) > 0 {
		def = &workspaces[0]
	}

	e := audit.Entry{UserID: user.ID, Action: model.ActionAuthLogin, Payload: map[string]any{"email": email}}
	if def != nil {
		e.WorkspaceID = def.ID
	}
	// Audit failures never change the response.
	_ = s.audit.Record(ctx, e)

	return s.issue(*user, def)
}

func (s *authService) issue(user model.User, ws *model.WorkspaceWithRole) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		AccessToken:      token,
		TokenType:        "bearer",
		ExpiresAt:        exp,
		User:             user,
		DefaultWorkspace: ws,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
