package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docrag/internal/model"
	"docrag/internal/service"
)

type MockQueryService struct {
	mock.Mock
}

var _ service.QueryService = (*MockQueryService)(nil)

func (m *MockQueryService) Query(ctx context.Context, actor model.Actor, workspaceID, question string, topK int) (*service.QueryResult, error) {
	args := m.Called(ctx, actor, workspaceID, question, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.QueryResult), args.Error(1)
}
