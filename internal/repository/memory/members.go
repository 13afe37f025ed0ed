package memory

import (
	"context"
	"sort"

	"docrag/internal/model"
	"docrag/internal/policy"
	"docrag/internal/repository"
)

var _ repository.MembershipRepository = (*MemberStore)(nil)

// MemberStore is an in-memory implementation of repository.MembershipRepository.
type MemberStore struct {
	s *Store
}

func (m *MemberStore) List(_ context.Context, workspaceID string) ([]model.WorkspaceMember, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	out := make([]model.WorkspaceMember, 0)
	for k, wm := range m.s.members {
		if k.workspaceID == workspaceID {
			out = append(out, m.s.withEmail(wm))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].UserID < out[j].UserID
	})
	return out, nil
}

func (m *MemberStore) GetRole(_ context.Context, workspaceID, userID string) (model.Role, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	wm, ok := m.s.members[memberKey{workspaceID, userID}]
	if !ok {
		return "", model.ErrNotFound
	}
	return wm.Role, nil
}

func (m *MemberStore) Add(_ context.Context, workspaceID, userID string, role model.Role) (*model.WorkspaceMember, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.workspaces[workspaceID]; !ok {
		return nil, model.ErrNotFound
	}
	if _, ok := m.s.users[userID]; !ok {
		return nil, model.ErrNotFound
	}
	key := memberKey{workspaceID, userID}
	if _, ok := m.s.members[key]; ok {
		return nil, model.ErrConflict
	}
	wm := model.WorkspaceMember{WorkspaceID: workspaceID, UserID: userID, Role: role, CreatedAt: m.s.now()}
	m.s.members[key] = wm
	out := m.s.withEmail(wm)
	return &out, nil
}

func (m *MemberStore) UpdateRole(_ context.Context, workspaceID, userID string, role model.Role) (*model.WorkspaceMember, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	key := memberKey{workspaceID, userID}
	wm, ok := m.s.members[key]
	if !ok {
		return nil, model.ErrNotFound
	}
	if err := policy.CheckAdminQuorum(m.s.adminCount(workspaceID), wm.Role, &role); err != nil {
		return nil, err
	}
	wm.Role = role
	m.s.members[key] = wm
	out := m.s.withEmail(wm)
	return &out, nil
}

func (m *MemberStore) Remove(_ context.Context, workspaceID, userID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	key := memberKey{workspaceID, userID}
	wm, ok := m.s.members[key]
	if !ok {
		return model.ErrNotFound
	}
	if err := policy.CheckAdminQuorum(m.s.adminCount(workspaceID), wm.Role, nil); err != nil {
		return err
	}
	delete(m.s.members, key)
	return nil
}

// adminCount must be called with mu held.
func (s *Store) adminCount(workspaceID string) int {
	n := 0
	for k, wm := range s.members {
		if k.workspaceID == workspaceID && wm.Role == model.RoleAdmin {
			n++
		}
	}
	return n
}

// withEmail must be called with mu held.
func (s *Store) withEmail(wm model.WorkspaceMember) model.WorkspaceMember {
	if u, ok := s.users[wm.UserID]; ok {
		wm.Email = u.Email
	}
	return wm
}
