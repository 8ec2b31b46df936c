package gamestate

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, path string) (any, bool, error) {
	args := m.Called(ctx, path)
	return args.Get(0), args.Bool(1), args.Error(2)
}

func (m *MockStore) Set(ctx context.Context, path string, value any) error {
	args := m.Called(ctx, path, value)
	return args.Error(0)
}

func (m *MockStore) Increment(ctx context.Context, path string, delta int64) (int64, error) {
	args := m.Called(ctx, path, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStore) Update(ctx context.Context, patch map[string]any, meta UpdateMeta) error {
	args := m.Called(ctx, patch, meta)
	return args.Error(0)
}
