package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docrag/internal/model"
	"docrag/internal/repository"
)

type MockMembershipRepository struct {
	mock.Mock
}

var _ repository.MembershipRepository = (*MockMembershipRepository)(nil)

func (m *MockMembershipRepository) List(ctx context.Context, workspaceID string) ([]model.WorkspaceMember, error) {
	args := m.Called(ctx, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkspaceMember), args.Error(1)
}

func (m *MockMembershipRepository) GetRole(ctx context.Context, workspaceID, userID string) (model.Role, error) {
	args := m.Called(ctx, workspaceID, userID)
	return args.Get(0).(model.Role), args.Error(1)
}

func (m *MockMembershipRepository) Add(ctx context.Context, workspaceID, userID string, role model.Role) (*model.WorkspaceMember, error) {
	args := m.Called(ctx, workspaceID, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkspaceMember), args.Error(1)
}

func (m *MockMembershipRepository) UpdateRole(ctx context.Context, workspaceID, userID string, role model.Role) (*model.WorkspaceMember, error) {
	args := m.Called(ctx, workspaceID, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkspaceMember), args.Error(1)
}

func (m *MockMembershipRepository) Remove(ctx context.Context, workspaceID, userID string) error {
	args := m.Called(ctx, workspaceID, userID)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) CreateWithWorkspace(ctx context.Context, user model.User, ws model.Workspace) error {
	args := m.Called(ctx, user, ws)
	return args.Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type MockAuditRepository struct {
	mock.Mock
}

var _ repository.AuditRepository = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) Insert(ctx context.Context, ev *model.AuditEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, workspaceID string, limit int) ([]model.AuditEvent, error) {
	args := m.Called(ctx, workspaceID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditEvent), args.Error(1)
}
