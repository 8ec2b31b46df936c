package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/osse101/BrandishGacha_Go/internal/logger"
)

const (
	statusOK          = "ok"
	statusUnavailable = "unavailable"

	// ReadinessTimeout bounds a single readiness probe.
	ReadinessTimeout = 2 * time.Second
)

// HealthResponse is the body of /healthz and /readyz.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker is a dependency that can be probed for reachability.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// HandleHealthz answers as long as the process can serve HTTP.
func HandleHealthz() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, HealthResponse{Status: statusOK})
	}
}

// HandleReadyz pings the save store. The in-memory store has nothing to
// probe and is passed as nil.
func HandleReadyz(store HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			respondJSON(w, http.StatusOK, HealthResponse{Status: statusOK})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), ReadinessTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			logger.FromContext(r.Context()).Error(LogMsgReadinessFailed, "error", err)
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:  statusUnavailable,
				Message: "game state store unreachable",
			})
			return
		}
		respondJSON(w, http.StatusOK, HealthResponse{Status: statusOK})
	}
}
