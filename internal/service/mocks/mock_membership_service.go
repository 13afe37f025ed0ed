package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docrag/internal/model"
	"docrag/internal/service"
)

type MockMembershipService struct {
	mock.Mock
}

var _ service.MembershipService = (*MockMembershipService)(nil)

func (m *MockMembershipService) List(ctx context.Context, actor model.Actor, workspaceID string) ([]model.WorkspaceMember, error) {
	args := m.Called(ctx, actor, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.WorkspaceMember), args.Error(1)
}

func (m *MockMembershipService) Add(ctx context.Context, actor model.Actor, workspaceID, email, role string) (*model.WorkspaceMember, error) {
	args := m.Called(ctx, actor, workspaceID, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkspaceMember), args.Error(1)
}

func (m *MockMembershipService) UpdateRole(ctx context.Context, actor model.Actor, workspaceID, userID, role string) (*model.WorkspaceMember, error) {
	args := m.Called(ctx, actor, workspaceID, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.WorkspaceMember), args.Error(1)
}

func (m *MockMembershipService) Remove(ctx context.Context, actor model.Actor, workspaceID, userID string) error {
	args := m.Called(ctx, actor, workspaceID, userID)
	return args.Error(0)
}
