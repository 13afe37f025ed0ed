package memory

import (
	"context"
	"sort"

	"docrag/internal/model"
	"docrag/internal/repository"
)

var (
	_ repository.UserRepository      = (*UserStore)(nil)
	_ repository.WorkspaceRepository = (*WorkspaceStore)(nil)
)

// UserStore is an in-memory implementation of repository.UserRepository.
type UserStore struct {
	s *Store
}

func (u *UserStore) CreateWithWorkspace(_ context.Context, user model.User, ws model.Workspace) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	if _, taken := u.s.emails[user.Email]; taken {
		return model.ErrConflict
	}
	u.s.users[user.ID] = user
	u.s.emails[user.Email] = user.ID
	u.s.workspaces[ws.ID] = ws
	u.s.members[memberKey{ws.ID, user.ID}] = model.WorkspaceMember{
		WorkspaceID: ws.ID,
		UserID:      user.ID,
		Role:        model.RoleAdmin,
		CreatedAt:   ws.CreatedAt,
	}
	return nil
}

func (u *UserStore) FindByEmail(_ context.Context, email string) (*model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	id, ok := u.s.emails[email]
	if !ok {
		return nil, model.ErrNotFound
	}
	user := u.s.users[id]
	return &user, nil
}

func (u *UserStore) FindByID(_ context.Context, id string) (*model.User, error) {
	u.s.mu.RLock()
	defer u.s.mu.RUnlock()

	user, ok := u.s.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &user, nil
}

// WorkspaceStore is an in-memory implementation of repository.WorkspaceRepository.
type WorkspaceStore struct {
	s *Store
}

func (w *WorkspaceStore) Create(_ context.Context, ws model.Workspace, adminUserID string) error {
	w.s.mu.Lock()
	defer w.s.mu.Unlock()

	if _, ok := w.s.users[adminUserID]; !ok {
		return model.ErrNotFound
	}
	if _, ok := w.s.workspaces[ws.ID]; ok {
		return model.ErrConflict
	}
	w.s.workspaces[ws.ID] = ws
	w.s.members[memberKey{ws.ID, adminUserID}] = model.WorkspaceMember{
		WorkspaceID: ws.ID,
		UserID:      adminUserID,
		Role:        model.RoleAdmin,
		CreatedAt:   ws.CreatedAt,
	}
	return nil
}

func (w *WorkspaceStore) ListForUser(_ context.Context, userID string) ([]model.WorkspaceWithRole, error) {
	w.s.mu.RLock()
	defer w.s.mu.RUnlock()

	out := make([]model.WorkspaceWithRole, 0)
	for k, wm := range w.s.members {
		if k.userID != userID {
			continue
		}
		if ws, ok := w.s.workspaces[k.workspaceID]; ok {
			out = append(out, model.WorkspaceWithRole{Workspace: ws, Role: wm.Role})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
