package gacha

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/event"
	"github.com/osse101/BrandishGacha_Go/internal/gamestate"
)

// MockPublisher records every published event.
type MockPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (m *MockPublisher) PublishWithRetry(_ context.Context, evt event.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, evt)
}

func (m *MockPublisher) Events() []event.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]event.Event(nil), m.events...)
}

func (m *MockPublisher) Count(t event.Type) int {
	n := 0
	for _, e := range m.Events() {
		if e.Type == t {
			n++
		}
	}
	return n
}

type MockWallet struct {
	mock.Mock
}

func (m *MockWallet) Balances(ctx context.Context) (domain.Cost, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Cost), args.Error(1)
}

func (m *MockWallet) Deduct(ctx context.Context, cost domain.Cost) error {
	args := m.Called(ctx, cost)
	return args.Error(0)
}

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

func (m *MockStore) Update(ctx context.Context, patch map[string]any, meta gamestate.UpdateMeta) error {
	args := m.Called(ctx, patch, meta)
	return args.Error(0)
}
