package handler

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/gacha"
)

// MockGachaService mocks the gacha.Service interface
type MockGachaService struct {
	mock.Mock
}

func (m *MockGachaService) PullBatch(ctx context.Context, poolID string, count int) (*domain.BatchResult, error) {
	args := m.Called(ctx, poolID, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BatchResult), args.Error(1)
}

func (m *MockGachaService) SwitchPool(ctx context.Context, poolID string) error {
	args := m.Called(ctx, poolID)
	return args.Error(0)
}

func (m *MockGachaService) ActivePool(ctx context.Context) string {
	args := m.Called(ctx)
	return args.String(0)
}

func (m *MockGachaService) Pools(ctx context.Context) []gacha.PoolView {
	args := m.Called(ctx)
	return args.Get(0).([]gacha.PoolView)
}

func (m *MockGachaService) Rates(ctx context.Context, poolID string) (gacha.RateTable, error) {
	args := m.Called(ctx, poolID)
	return args.Get(0).(gacha.RateTable), args.Error(1)
}

func (m *MockGachaService) Pity(ctx context.Context) map[string]domain.PityState {
	args := m.Called(ctx)
	return args.Get(0).(map[string]domain.PityState)
}

func (m *MockGachaService) History(ctx context.Context, limit int) []domain.PullResult {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.PullResult)
}

func (m *MockGachaService) Statistics(ctx context.Context) domain.Statistics {
	args := m.Called(ctx)
	return args.Get(0).(domain.Statistics)
}

func (m *MockGachaService) Balances(ctx context.Context) (domain.Cost, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Cost), args.Error(1)
}

func (m *MockGachaService) Simulate(ctx context.Context, poolID string, params gacha.SimParams) (*gacha.SimulationReport, error) {
	args := m.Called(ctx, poolID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gacha.SimulationReport), args.Error(1)
}

var _ gacha.Service = (*MockGachaService)(nil)
