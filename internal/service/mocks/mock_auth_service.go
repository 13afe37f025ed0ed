package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docrag/internal/model"
	"docrag/internal/service"
)

type MockAuthService struct {
	mock.Mock
}

var _ service.AuthService = (*MockAuthService)(nil)

func (m *MockAuthService) Register(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AuthResult), args.Error(1)
}

type MockWorkspaceService struct {
	mock.Mock
}

var _ service.WorkspaceService = (*MockWorkspaceService)(nil)

func (m *MockWorkspaceService) List(ctx context.Context, actor model.Actor) ([]model.WorkspaceWithRole, error) {
	args := m.Called(ctx, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkspaceWithRole), args.Error(1)
}

func (m *MockWorkspaceService) Create(ctx context.Context, actor model.Actor, name string) (*model.WorkspaceWithRole, error) {
	args := m.Called(ctx, actor, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkspaceWithRole), args.Error(1)
}

type MockAuditService struct {
	mock.Mock
}

var _ service.AuditService = (*MockAuditService)(nil)

func (m *MockAuditService) List(ctx context.Context, actor model.Actor, workspaceID string, limit int) ([]model.AuditEvent, error) {
	args := m.Called(ctx, actor, workspaceID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AuditEvent), args.Error(1)
}
