package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"docrag/internal/model"
	"docrag/internal/repository"
)

type MockDocumentRepository struct {
	mock.Mock
}

var _ repository.DocumentRepository = (*MockDocumentRepository)(nil)

func (m *MockDocumentRepository) ReplaceCorpus(ctx context.Context, workspaceID string, docs []model.Document, chunks []model.Chunk) error {
	args := m.Called(ctx, workspaceID, docs, chunks)
	return args.Error(0)
}

func (m *MockDocumentRepository) List(ctx context.Context, workspaceID string, labels []model.ClassificationLabel, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, workspaceID, labels, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Document]), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, workspaceID, id string) (*model.Document, error) {
	args := m.Called(ctx, workspaceID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) UpdateClassification(ctx context.Context, workspaceID, id string, label model.ClassificationLabel) (*model.Document, model.ClassificationLabel, error) {
	args := m.Called(ctx, workspaceID, id, label)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*model.Document), args.Get(1).(model.ClassificationLabel), args.Error(2)
}

func (m *MockDocumentRepository) ClassificationMap(ctx context.Context, workspaceID string, documentIDs []string) (map[string]model.ClassificationLabel, error) {
	args := m.Called(ctx, workspaceID, documentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]model.ClassificationLabel), args.Error(1)
}

type MockChunkIndex struct {
	mock.Mock
}

var _ repository.ChunkIndex = (*MockChunkIndex)(nil)

func (m *MockChunkIndex) SearchCandidates(ctx context.Context, workspaceID string, vector []float32, limit int) ([]model.ScoredChunk, error) {
	args := m.Called(ctx, workspaceID, vector, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ScoredChunk), args.Error(1)
}
