package handler

import (
	"net/http"
	"strconv"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/gacha"
	"github.com/osse101/BrandishGacha_Go/internal/logger"
)

// PullRequest asks for a batch of pulls. An empty pool id targets the active pool.
type PullRequest struct {
	PoolID string `json:"pool_id,omitempty" validate:"omitempty,poolid"`
	Count  int    `json:"count" validate:"required,oneof=1 5 10"`
}

// PullResponse is the body of a successful pull
type PullResponse struct {
	Batch    *domain.BatchResult `json:"batch"`
	Balances domain.Cost         `json:"balances,omitempty"`
}

// SwitchPoolRequest changes the active pool
type SwitchPoolRequest struct {
	PoolID string `json:"pool_id" validate:"required,poolid"`
}

// PoolsResponse lists every configured pool
type PoolsResponse struct {
	Active string           `json:"active,omitempty"`
	Pools  []gacha.PoolView `json:"pools"`
}

// RatesResponse discloses the probabilities the next pull on a pool will use
type RatesResponse struct {
	PoolID string           `json:"pool_id"`
	Pity   domain.PityState `json:"pity"`
	Rates  gacha.RateTable  `json:"rates"`
}

// HistoryResponse holds the most recent pulls, oldest first
type HistoryResponse struct {
	Count   int                 `json:"count"`
	Results []domain.PullResult `json:"results"`
}

// StatsResponse combines lifetime statistics and wallet balances
type StatsResponse struct {
	Statistics domain.Statistics `json:"statistics"`
	Balances   domain.Cost       `json:"balances,omitempty"`
}

// HandlePull handles POST requests to perform a batch of pulls
// @Summary Pull
// @Description Pull 1, 5 or 10 times from a pool. Supports Idempotency-Key replay.
// @Tags gacha
// @Accept json
// @Produce json
// @Param request body PullRequest true "Pull details"
// @Success 201 {object} PullResponse
// @Failure 400 {object} ErrorResponse
// @Failure 402 {object} InsufficientResourcesResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /pulls [post]
func HandlePull(svc gacha.Service, replay *ReplayCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		key := r.Header.Get(HeaderIdempotencyKey)
		if len(key) > MaxIdempotencyKey {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
			return
		}
		if status, body, ok := replay.Get(key); ok {
			log.Info(LogMsgPullReplayed, "idempotency_key", key)
			w.Header().Set(HeaderReplayed, "true")
			respondRaw(w, status, body)
			return
		}

		var req PullRequest
		if !decodeRequest(w, r, &req, "pull") {
			return
		}

		batch, err := svc.PullBatch(r.Context(), req.PoolID, req.Count)
		if err != nil {
			respondServiceError(w, r, ErrMsgPullFailed, err)
			return
		}

		resp := PullResponse{Batch: batch}
		if balances, err := svc.Balances(r.Context()); err == nil {
			resp.Balances = balances
		} else {
			log.Warn(ErrMsgGetBalanceFailed, "error", err)
		}

		buf, err := encodeJSON(resp)
		if err != nil {
			respondServiceError(w, r, ErrMsgPullFailed, err)
			return
		}
		defer releaseBuffer(buf)

		replay.Set(key, http.StatusCreated, buf.Bytes())
		log.Info(LogMsgPullServed, "pool", batch.PoolID, "count", batch.Count, "idempotency_key", key)
		respondRaw(w, http.StatusCreated, buf.Bytes())
	}
}

// HandleListPools handles GET requests listing pools with availability
// @Summary List pools
// @Tags gacha
// @Produce json
// @Success 200 {object} PoolsResponse
// @Router /pools [get]
func HandleListPools(svc gacha.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, PoolsResponse{
			Active: svc.ActivePool(r.Context()),
			Pools:  svc.Pools(r.Context()),
		})
	}
}

// HandleGetRates handles GET requests for a pool's current effective rates
// @Summary Published rates
// @Description Effective probabilities for the next pull, including pity adjustments
// @Tags gacha
// @Produce json
// @Param id path string true "Pool ID"
// @Success 200 {object} RatesResponse
// @Failure 404 {object} ErrorResponse
// @Router /pools/{id}/rates [get]
func HandleGetRates(svc gacha.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poolID, ok := poolIDParam(w, r)
		if !ok {
			return
		}

		rates, err := svc.Rates(r.Context(), poolID)
		if err != nil {
			respondServiceError(w, r, ErrMsgGetRatesFailed, err)
			return
		}

		respondJSON(w, http.StatusOK, RatesResponse{
			PoolID: poolID,
			Pity:   svc.Pity(r.Context())[poolID],
			Rates:  rates,
		})
	}
}

// HandleSwitchPool handles POST requests changing the active pool
// @Summary Switch active pool
// @Tags gacha
// @Accept json
// @Produce json
// @Param request body SwitchPoolRequest true "Pool"
// @Success 200 {object} DataResponse
// @Failure 404 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /pools/active [post]
func HandleSwitchPool(svc gacha.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req SwitchPoolRequest
		if !decodeRequest(w, r, &req, "switch_pool") {
			return
		}

		if err := svc.SwitchPool(r.Context(), req.PoolID); err != nil {
			respondServiceError(w, r, ErrMsgSwitchPoolFailed, err)
			return
		}

		logger.FromContext(r.Context()).Info(LogMsgPoolSwitched, "pool", req.PoolID)
		respondJSON(w, http.StatusOK, DataResponse{
			Message: MsgPoolSwitchedSuccess,
			Data:    map[string]string{"active": req.PoolID},
		})
	}
}

// HandleGetPity handles GET requests for every pool's pity counters
// @Summary Pity counters
// @Tags gacha
// @Produce json
// @Success 200 {object} map[string]domain.PityState
// @Router /pity [get]
func HandleGetPity(svc gacha.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, svc.Pity(r.Context()))
	}
}

// HandleGetHistory handles GET requests for recent pulls
// @Summary Pull history
// @Tags gacha
// @Produce json
// @Param limit query int false "Number of results (1-1000)"
// @Success 200 {object} HistoryResponse
// @Failure 400 {object} ErrorResponse
// @Router /history [get]
func HandleGetHistory(svc gacha.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, ok := intQuery(w, r, "limit", DefaultHistoryLimit, 1, domain.HistoryLimit, ErrMsgInvalidLimit)
		if !ok {
			return
		}

		results := svc.History(r.Context(), limit)
		respondJSON(w, http.StatusOK, HistoryResponse{Count: len(results), Results: results})
	}
}

// HandleGetStats handles GET requests for lifetime statistics
// @Summary Statistics
// @Tags gacha
// @Produce json
// @Success 200 {object} StatsResponse
// @Router /stats [get]
func HandleGetStats(svc gacha.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := StatsResponse{Statistics: svc.Statistics(r.Context())}
		if balances, err := svc.Balances(r.Context()); err == nil {
			resp.Balances = balances
		} else {
			logger.FromContext(r.Context()).Warn(ErrMsgGetBalanceFailed, "error", err)
		}
		respondJSON(w, http.StatusOK, resp)
	}
}

// HandleGetBalances handles GET requests for wallet balances
// @Summary Balances
// @Tags gacha
// @Produce json
// @Success 200 {object} domain.Cost
// @Failure 500 {object} ErrorResponse
// @Router /balances [get]
func HandleGetBalances(svc gacha.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		balances, err := svc.Balances(r.Context())
		if err != nil {
			respondServiceError(w, r, ErrMsgGetBalanceFailed, err)
			return
		}
		respondJSON(w, http.StatusOK, balances)
	}
}

// HandleSimulate handles GET requests for a Monte Carlo pity summary
// @Summary Simulate pulls
// @Description Pulls-until-first-Legendary distribution for a pool. Does not touch the wallet or history.
// @Tags gacha
// @Produce json
// @Param id path string true "Pool ID"
// @Param trials query int false "Trials (default 10000)"
// @Param seed query int false "Seed for a reproducible run"
// @Success 200 {object} gacha.SimulationReport
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /pools/{id}/simulate [get]
func HandleSimulate(svc gacha.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		poolID, ok := poolIDParam(w, r)
		if !ok {
			return
		}

		trials, ok := intQuery(w, r, "trials", gacha.DefaultSimulationTrials, 1, gacha.MaxSimulationTrials, ErrMsgInvalidTrials)
		if !ok {
			return
		}

		var seed uint64
		if raw := r.URL.Query().Get("seed"); raw != "" {
			parsed, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				respondError(w, http.StatusBadRequest, ErrMsgInvalidSeed)
				return
			}
			seed = parsed
		}

		logger.FromContext(r.Context()).Info(LogMsgSimulationStart, "pool", poolID, "trials", trials, "seed", seed)

		report, err := svc.Simulate(r.Context(), poolID, gacha.SimParams{Trials: trials, Seed: seed})
		if err != nil {
			respondServiceError(w, r, ErrMsgSimulateFailed, err)
			return
		}
		respondJSON(w, http.StatusOK, report)
	}
}
