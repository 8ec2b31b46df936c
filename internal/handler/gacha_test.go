package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/gacha"
)

func newTestRouter(svc gacha.Service, replay *ReplayCache) http.Handler {
	r := chi.NewRouter()
	r.Post("/pulls", HandlePull(svc, replay))
	r.Get("/pools", HandleListPools(svc))
	r.Post("/pools/active", HandleSwitchPool(svc))
	r.Get("/pools/{id}/rates", HandleGetRates(svc))
	r.Get("/pools/{id}/simulate", HandleSimulate(svc))
	r.Get("/pity", HandleGetPity(svc))
	r.Get("/history", HandleGetHistory(svc))
	r.Get("/stats", HandleGetStats(svc))
	r.Get("/balances", HandleGetBalances(svc))
	return r
}

func doRequest(h http.Handler, method, target string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func sampleBatch(pool string, count int) *domain.BatchResult {
	results := make([]domain.PullResult, count)
	for i := range results {
		results[i] = domain.PullResult{
			ID:         fmt.Sprintf("pull-%d", i+1),
			Rarity:     domain.RarityCommon,
			Item:       domain.Item{ID: "wooden_sword", Name: "Wooden Sword", Rarity: domain.RarityCommon, Category: "weapon"},
			PoolID:     pool,
			Timestamp:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			BatchIndex: i,
			Trigger:    domain.TriggerRate,
		}
	}
	return &domain.BatchResult{
		Results:   results,
		PoolID:    pool,
		Count:     count,
		TotalCost: domain.Cost{domain.CurrencyPrimary: 100 * int64(count)},
	}
}

func TestHandlePull(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		setupMock      func(*MockGachaService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "single pull",
			body: PullRequest{PoolID: "standard", Count: 1},
			setupMock: func(m *MockGachaService) {
				m.On("PullBatch", mock.Anything, "standard", 1).Return(sampleBatch("standard", 1), nil)
				m.On("Balances", mock.Anything).Return(domain.Cost{domain.CurrencyPrimary: 900}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"balances":{"primary":900}`,
		},
		{
			name: "active pool when pool omitted",
			body: `{"count":10}`,
			setupMock: func(m *MockGachaService) {
				m.On("PullBatch", mock.Anything, "", 10).Return(sampleBatch("standard", 10), nil)
				m.On("Balances", mock.Anything).Return(nil, assert.AnError)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"count":10`,
		},
		{
			name:           "invalid count",
			body:           PullRequest{PoolID: "standard", Count: 3},
			setupMock:      func(m *MockGachaService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"count":"Must be one of: 1 5 10"`,
		},
		{
			name:           "malformed json",
			body:           `{"count":`,
			setupMock:      func(m *MockGachaService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequest,
		},
		{
			name:           "unknown field",
			body:           `{"count":1,"free":true}`,
			setupMock:      func(m *MockGachaService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgInvalidRequest,
		},
		{
			name: "pool not found",
			body: PullRequest{PoolID: "missing", Count: 1},
			setupMock: func(m *MockGachaService) {
				m.On("PullBatch", mock.Anything, "missing", 1).Return(nil, fmt.Errorf("%w: missing", domain.ErrPoolNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   ErrMsgPoolNotFoundError,
		},
		{
			name: "no active pool",
			body: `{"count":1}`,
			setupMock: func(m *MockGachaService) {
				m.On("PullBatch", mock.Anything, "", 1).Return(nil, domain.ErrNoActivePool)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   ErrMsgNoActivePoolError,
		},
		{
			name: "insufficient resources",
			body: PullRequest{PoolID: "standard", Count: 10},
			setupMock: func(m *MockGachaService) {
				err := domain.NewInsufficientResourcesError(
					domain.Cost{domain.CurrencyPrimary: 900},
					domain.Cost{domain.CurrencyPrimary: 250})
				m.On("PullBatch", mock.Anything, "standard", 10).Return(nil, err)
			},
			expectedStatus: http.StatusPaymentRequired,
			expectedBody:   `"shortfall":{"primary":650}`,
		},
		{
			name: "expired pool",
			body: PullRequest{PoolID: "starfall", Count: 1},
			setupMock: func(m *MockGachaService) {
				m.On("PullBatch", mock.Anything, "starfall", 1).Return(nil, domain.ErrPoolUnavailable)
			},
			expectedStatus: http.StatusGone,
			expectedBody:   ErrMsgPoolUnavailableError,
		},
		{
			name: "pull in progress",
			body: PullRequest{PoolID: "standard", Count: 1},
			setupMock: func(m *MockGachaService) {
				m.On("PullBatch", mock.Anything, "standard", 1).Return(nil, domain.ErrPullInProgress)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   ErrMsgPullInProgressError,
		},
		{
			name: "store failure hides details",
			body: PullRequest{PoolID: "standard", Count: 1},
			setupMock: func(m *MockGachaService) {
				m.On("PullBatch", mock.Anything, "standard", 1).Return(nil, fmt.Errorf("%w: connection reset", domain.ErrStoreFailure))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   ErrMsgGenericServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &MockGachaService{}
			tt.setupMock(svc)

			w := doRequest(newTestRouter(svc, nil), http.MethodPost, "/pulls", tt.body, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandlePull_IdempotentReplay(t *testing.T) {
	svc := &MockGachaService{}
	svc.On("PullBatch", mock.Anything, "standard", 5).Return(sampleBatch("standard", 5), nil).Once()
	svc.On("Balances", mock.Anything).Return(domain.Cost{domain.CurrencyPrimary: 525}, nil).Once()

	router := newTestRouter(svc, NewReplayCache(8, time.Minute))
	headers := map[string]string{HeaderIdempotencyKey: "retry-abc"}

	first := doRequest(router, http.MethodPost, "/pulls", PullRequest{PoolID: "standard", Count: 5}, headers)
	require.Equal(t, http.StatusCreated, first.Code)

	second := doRequest(router, http.MethodPost, "/pulls", PullRequest{PoolID: "standard", Count: 5}, headers)
	require.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get(HeaderReplayed))

	svc.AssertNumberOfCalls(t, "PullBatch", 1)
}

func TestHandlePull_FailuresAreNotReplayed(t *testing.T) {
	svc := &MockGachaService{}
	svc.On("PullBatch", mock.Anything, "standard", 1).Return(nil, domain.ErrPullInProgress).Once()
	svc.On("PullBatch", mock.Anything, "standard", 1).Return(sampleBatch("standard", 1), nil).Once()
	svc.On("Balances", mock.Anything).Return(domain.Cost{}, nil)

	router := newTestRouter(svc, NewReplayCache(8, time.Minute))
	headers := map[string]string{HeaderIdempotencyKey: "retry-xyz"}

	first := doRequest(router, http.MethodPost, "/pulls", PullRequest{PoolID: "standard", Count: 1}, headers)
	assert.Equal(t, http.StatusConflict, first.Code)

	second := doRequest(router, http.MethodPost, "/pulls", PullRequest{PoolID: "standard", Count: 1}, headers)
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Empty(t, second.Header().Get(HeaderReplayed))
}

func TestHandleListPools(t *testing.T) {
	svc := &MockGachaService{}
	svc.On("ActivePool", mock.Anything).Return("standard")
	svc.On("Pools", mock.Anything).Return([]gacha.PoolView{
		{Pool: &domain.Pool{ID: "standard", Name: "Standard"}, Available: true, Active: true},
		{Pool: &domain.Pool{ID: "starfall", Name: "Starfall", TimeLimited: true}, Available: false},
	})

	w := doRequest(newTestRouter(svc, nil), http.MethodGet, "/pools", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Active string `json:"active"`
		Pools  []struct {
			Pool      domain.Pool `json:"pool"`
			Available bool        `json:"available"`
		} `json:"pools"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "standard", resp.Active)
	require.Len(t, resp.Pools, 2)
	assert.False(t, resp.Pools[1].Available)
}

func TestHandleGetRates(t *testing.T) {
	var rates gacha.RateTable
	rates[domain.RarityCommon] = 0.6
	rates[domain.RarityLegendary] = 0.4

	t.Run("discloses current rates", func(t *testing.T) {
		svc := &MockGachaService{}
		svc.On("Rates", mock.Anything, "standard").Return(rates, nil)
		svc.On("Pity", mock.Anything).Return(map[string]domain.PityState{"standard": {EpicMisses: 4, LegendaryMisses: 60}})

		w := doRequest(newTestRouter(svc, nil), http.MethodGet, "/pools/standard/rates", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp RatesResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 60, resp.Pity.LegendaryMisses)
		assert.InDelta(t, 0.4, resp.Rates.Get(domain.RarityLegendary), 1e-12)
	})

	t.Run("unknown pool", func(t *testing.T) {
		svc := &MockGachaService{}
		svc.On("Rates", mock.Anything, "nope").Return(gacha.RateTable{}, domain.ErrPoolNotFound)

		w := doRequest(newTestRouter(svc, nil), http.MethodGet, "/pools/nope/rates", nil, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid pool id", func(t *testing.T) {
		svc := &MockGachaService{}
		w := doRequest(newTestRouter(svc, nil), http.MethodGet, "/pools/BAD%20ID/rates", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "Rates", mock.Anything, mock.Anything)
	})
}

func TestHandleSwitchPool(t *testing.T) {
	t.Run("switches", func(t *testing.T) {
		svc := &MockGachaService{}
		svc.On("SwitchPool", mock.Anything, "armory").Return(nil)

		w := doRequest(newTestRouter(svc, nil), http.MethodPost, "/pools/active", SwitchPoolRequest{PoolID: "armory"}, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"active":"armory"`)
		svc.AssertExpectations(t)
	})

	t.Run("missing pool id", func(t *testing.T) {
		svc := &MockGachaService{}
		w := doRequest(newTestRouter(svc, nil), http.MethodPost, "/pools/active", `{}`, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "This field is required")
	})

	t.Run("expired pool", func(t *testing.T) {
		svc := &MockGachaService{}
		svc.On("SwitchPool", mock.Anything, "starfall").Return(domain.ErrPoolUnavailable)

		w := doRequest(newTestRouter(svc, nil), http.MethodPost, "/pools/active", SwitchPoolRequest{PoolID: "starfall"}, nil)
		assert.Equal(t, http.StatusGone, w.Code)
	})
}

func TestHandleGetHistory(t *testing.T) {
	t.Run("default limit", func(t *testing.T) {
		svc := &MockGachaService{}
		svc.On("History", mock.Anything, DefaultHistoryLimit).Return(sampleBatch("standard", 3).Results)

		w := doRequest(newTestRouter(svc, nil), http.MethodGet, "/history", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp HistoryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp.Count)
		assert.Equal(t, "pull-1", resp.Results[0].ID)
	})

	t.Run("custom limit", func(t *testing.T) {
		svc := &MockGachaService{}
		svc.On("History", mock.Anything, 1000).Return([]domain.PullResult{})

		w := doRequest(newTestRouter(svc, nil), http.MethodGet, "/history?limit=1000", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	for _, bad := range []string{"0", "-3", "1001", "ten"} {
		t.Run("invalid limit "+bad, func(t *testing.T) {
			svc := &MockGachaService{}
			w := doRequest(newTestRouter(svc, nil), http.MethodGet, "/history?limit="+bad, nil, nil)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), ErrMsgInvalidLimit)
		})
	}
}

func TestHandleGetStatsAndPity(t *testing.T) {
	svc := &MockGachaService{}
	svc.On("Statistics", mock.Anything).Return(domain.Statistics{TotalPulls: 20, LuckScore: 150})
	svc.On("Balances", mock.Anything).Return(domain.Cost{domain.CurrencyPrimary: 42}, nil)
	svc.On("Pity", mock.Anything).Return(map[string]domain.PityState{"standard": {EpicMisses: 2, LegendaryMisses: 12}})

	router := newTestRouter(svc, nil)

	w := doRequest(router, http.MethodGet, "/stats", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total_pulls":20`)
	assert.Contains(t, w.Body.String(), `"luck_score":150`)
	assert.Contains(t, w.Body.String(), `"primary":42`)

	w = doRequest(router, http.MethodGet, "/pity", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"legendary_misses":12`)

	w = doRequest(router, http.MethodGet, "/balances", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"primary":42}`+"\n", w.Body.String())
}

func TestHandleGetBalances_Error(t *testing.T) {
	svc := &MockGachaService{}
	svc.On("Balances", mock.Anything).Return(nil, fmt.Errorf("%w: timeout", domain.ErrStoreFailure))

	w := doRequest(newTestRouter(svc, nil), http.MethodGet, "/balances", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleSimulate(t *testing.T) {
	report := &gacha.SimulationReport{PoolID: "standard", Trials: 200, Seed: 7, Mean: 61.5, Max: 91}

	t.Run("runs with params", func(t *testing.T) {
		svc := &MockGachaService{}
		svc.On("Simulate", mock.Anything, "standard", gacha.SimParams{Trials: 200, Seed: 7}).Return(report, nil)

		w := doRequest(newTestRouter(svc, nil), http.MethodGet, "/pools/standard/simulate?trials=200&seed=7", nil, nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"mean":61.5`)
		svc.AssertExpectations(t)
	})

	t.Run("defaults trials", func(t *testing.T) {
		svc := &MockGachaService{}
		svc.On("Simulate", mock.Anything, "standard", gacha.SimParams{Trials: gacha.DefaultSimulationTrials}).Return(report, nil)

		w := doRequest(newTestRouter(svc, nil), http.MethodGet, "/pools/standard/simulate", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bad params", func(t *testing.T) {
		svc := &MockGachaService{}
		router := newTestRouter(svc, nil)

		w := doRequest(router, http.MethodGet, "/pools/standard/simulate?trials=0", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = doRequest(router, http.MethodGet, "/pools/standard/simulate?seed=-1", nil, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), ErrMsgInvalidSeed)
	})
}

func TestReplayCache(t *testing.T) {
	var nilCache *ReplayCache
	_, _, ok := nilCache.Get("k")
	assert.False(t, ok)
	nilCache.Set("k", 200, nil)
	assert.Equal(t, 0, nilCache.Len())

	cache := NewReplayCache(2, time.Minute)
	cache.Set("", 200, []byte("ignored"))
	assert.Equal(t, 0, cache.Len())

	body := []byte(`{"ok":true}`)
	cache.Set("a", 201, body)
	body[0] = 'X'

	status, got, ok := cache.Get("a")
	require.True(t, ok)
	assert.Equal(t, 201, status)
	assert.Equal(t, `{"ok":true}`, string(got))

	cache.Set("b", 201, nil)
	cache.Set("c", 201, nil)
	_, _, ok = cache.Get("a")
	assert.False(t, ok, "oldest entry evicted")
}
