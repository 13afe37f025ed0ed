package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docrag/internal/model"
	"docrag/internal/service"
)

type MockDocumentService struct {
	mock.Mock
}

var _ service.DocumentService = (*MockDocumentService)(nil)

func (m *MockDocumentService) List(ctx context.Context, actor model.Actor, workspaceID string, limit, offset int) (*service.DocumentListResult, error) {
	args := m.Called(ctx, actor, workspaceID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, actor model.Actor, workspaceID, documentID string) (*service.DocumentDetail, error) {
	args := m.Called(ctx, actor, workspaceID, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentDetail), args.Error(1)
}

func (m *MockDocumentService) UpdateClassification(ctx context.Context, actor model.Actor, workspaceID, documentID, label string) (*model.Document, error) {
	args := m.Called(ctx, actor, workspaceID, documentID, label)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) IngestDemo(ctx context.Context, actor model.Actor, workspaceID string) (*service.IngestResult, error) {
	args := m.Called(ctx, actor, workspaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IngestResult), args.Error(1)
}
