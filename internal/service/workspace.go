package service

import (
	"context"
	"time"
	"unicode/utf8"

	"docrag/internal/model"
	"docrag/internal/repository"
)

// WorkspaceService lists and creates workspaces for the caller.
type WorkspaceService interface {
	List(ctx context.Context, actor model.Actor) ([]model.WorkspaceWithRole, error)

	// Create makes a workspace with the actor as its only admin.
	Create(ctx context.Context, actor model.Actor, name string) (*model.WorkspaceWithRole, error)
}

type workspaceService struct {
	repo repository.WorkspaceRepository
}

// NewWorkspaceService constructs a WorkspaceService.
func NewWorkspaceService(repo repository.WorkspaceRepository) WorkspaceService {
	return &workspaceService{repo: repo}
}

func (s *workspaceService) List(ctx context.Context, actor model.Actor) ([]model.WorkspaceWithRole, error) {
	if actor.UserID == "" {
		return nil, model.ErrUnauthenticated
	}
	return s.repo.ListForUser(ctx, actor.UserID)
}

func (s *workspaceService) Create(ctx context.Context, actor model.Actor, name string) (*model.WorkspaceWithRole, error) {
	if actor.UserID == "" {
		return nil, model.ErrUnauthenticated
	}
	if n := utf8.RuneCountInString(name); n < 2 || n > 80 {
		return nil, model.InvalidArgument("workspace name must be 2 to 80 characters")
	}
	ws := model.Workspace{ID: model.NewID(), Name: name, CreatedAt: time.Now().UTC()}
	if err := s.repo.Create(ctx, ws, actor.UserID); err != nil {
		return nil, err
	}
	return &model.WorkspaceWithRole{Workspace: ws, Role: model.RoleAdmin}, nil
}
