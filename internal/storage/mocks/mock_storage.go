package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"docrag/internal/storage"
)

// MockStorage drains the body passed to Put and hands it to the expectation as
// a string, so tests can match on archived text.
type MockStorage struct {
	mock.Mock
}

var _ storage.Storage = (*MockStorage)(nil)

func (m *MockStorage) Put(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) (storage.ObjectInfo, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return storage.ObjectInfo{}, err
	}
	args := m.Called(ctx, key, string(body), opt)
	if f, ok := args.Get(0).(func(string) storage.ObjectInfo); ok {
		return f(key), args.Error(1)
	}
	return args.Get(0).(storage.ObjectInfo), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockStorage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, expiry)
	return args.String(0), args.Error(1)
}
