package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/osse101/BrandishGacha_Go/internal/domain"
	"github.com/osse101/BrandishGacha_Go/internal/logger"
)

// ErrorResponse is the body of every 4xx and 5xx the handlers write.
type ErrorResponse struct {
	Error string `json:"error"`
}

// DataResponse wraps a payload with an optional human message.
type DataResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// InsufficientResourcesResponse is returned with 402 when a pull cannot be paid for
type InsufficientResourcesResponse struct {
	Error     string      `json:"error"`
	Required  domain.Cost `json:"required"`
	Available domain.Cost `json:"available"`
	Shortfall domain.Cost `json:"shortfall"`
}

// encodeBuffers holds scratch buffers for response encoding. Buffers that grew
// past maxPooledBuffer (large history pages) are dropped instead of pooled.
var encodeBuffers = sync.Pool{
	New: func() any { return bytes.NewBuffer(make([]byte, 0, initialBufferSize)) },
}

const (
	initialBufferSize = 512
	maxPooledBuffer   = 64 << 10
)

// encodeJSON renders payload without HTML escaping; item names may contain '&' or '<'.
func encodeJSON(payload any) (*bytes.Buffer, error) {
	buf := encodeBuffers.Get().(*bytes.Buffer)
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		releaseBuffer(buf)
		return nil, err
	}
	return buf, nil
}

func releaseBuffer(buf *bytes.Buffer) {
	if buf.Cap() > maxPooledBuffer {
		return
	}
	buf.Reset()
	encodeBuffers.Put(buf)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	buf, err := encodeJSON(payload)
	if err != nil {
		slog.Error(LogMsgEncodeFailed, "error", err)
		w.Header().Set(headerContentType, contentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	defer releaseBuffer(buf)
	respondRaw(w, status, buf.Bytes())
}

// respondRaw writes a body that is already JSON, such as a replayed pull.
func respondRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set(headerContentType, contentTypeJSON)
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		slog.Debug(LogMsgWriteFailed, "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// Messages shown for service errors.
const (
	ErrMsgGenericServerError    = "Something went wrong"
	ErrMsgInvalidRequestError   = "Invalid request. Please check your inputs."
	ErrMsgPoolNotFoundError     = "Pool not found"
	ErrMsgInvalidPullCountError = "Pull count must be 1, 5 or 10"
	ErrMsgNoActivePoolError     = "No active pool selected. Switch to a pool or name one in the request."
	ErrMsgInsufficientError     = "Not enough currency for this pull"
	ErrMsgPoolUnavailableError  = "That pool is no longer available"
	ErrMsgPullInProgressError   = "A pull is already in progress. Try again shortly."
)

type errorStatus struct {
	target  error
	status  int
	message string
}

// errorStatuses is checked in order. ErrPoolNotFound and ErrInvalidPullCount
// also wrap ErrInvalidArgument, so they come before it.
var errorStatuses = []errorStatus{
	{domain.ErrPoolNotFound, http.StatusNotFound, ErrMsgPoolNotFoundError},
	{domain.ErrInvalidPullCount, http.StatusBadRequest, ErrMsgInvalidPullCountError},
	{domain.ErrNoActivePool, http.StatusBadRequest, ErrMsgNoActivePoolError},
	{domain.ErrInvalidArgument, http.StatusBadRequest, ErrMsgInvalidRequestError},
	{domain.ErrInsufficientResources, http.StatusPaymentRequired, ErrMsgInsufficientError},
	{domain.ErrPoolUnavailable, http.StatusGone, ErrMsgPoolUnavailableError},
	{domain.ErrPullInProgress, http.StatusConflict, ErrMsgPullInProgressError},
}

// statusFor maps a service error to the status and message a caller sees.
// Anything unrecognised is a 500 with a generic message.
func statusFor(err error) (int, string) {
	for _, es := range errorStatuses {
		if errors.Is(err, es.target) {
			return es.status, es.message
		}
	}
	return http.StatusInternalServerError, ErrMsgGenericServerError
}

// respondServiceError logs a failed service call and writes the mapped response.
// Insufficient resources carry the per-currency shortfall in the body.
func respondServiceError(w http.ResponseWriter, r *http.Request, opName string, err error) {
	status, message := statusFor(err)

	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(LogMsgServiceError, "operation", opName, "error", err)
	} else {
		log.Warn(LogMsgServiceError, "operation", opName, "error", err, "status", status)
	}

	var insufficient *domain.InsufficientResourcesError
	if errors.As(err, &insufficient) {
		respondJSON(w, status, InsufficientResourcesResponse{
			Error:     message,
			Required:  insufficient.Required,
			Available: insufficient.Available,
			Shortfall: insufficient.Shortfall,
		})
		return
	}

	respondError(w, status, message)
}
