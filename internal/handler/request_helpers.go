package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/osse101/BrandishGacha_Go/internal/logger"
)

// ValidationErrorResponse is the 400 body for a request that decoded but broke a field rule.
type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// decodeRequest reads a strict JSON body into dst and validates it. When it
// returns false the 400 has been written and the handler should stop.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}, action string) bool {
	log := logger.FromContext(r.Context())

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		log.Warn(LogMsgDecodeFailed, "action", action, "error", err)
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequest)
		return false
	}

	if err := validateRequest(dst); err != nil {
		fields := FormatValidationError(err)
		log.Debug(LogMsgValidationFailed, "action", action, "fields", fields)
		respondJSON(w, http.StatusBadRequest, ValidationErrorResponse{
			Error:  ErrMsgInvalidRequestSummary,
			Fields: fields,
		})
		return false
	}
	return true
}

// intQuery parses an optional integer query parameter bounded by [lo, hi].
// An absent parameter yields def.
func intQuery(w http.ResponseWriter, r *http.Request, name string, def, lo, hi int, errMsg string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err == nil && n >= lo && n <= hi {
		return n, true
	}
	logger.FromContext(r.Context()).Warn(LogMsgBadQueryParam, "param", name, "value", raw)
	respondError(w, http.StatusBadRequest, errMsg)
	return 0, false
}

func poolIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if !poolIDPattern.MatchString(id) {
		respondError(w, http.StatusBadRequest, ErrMsgMissingPoolID)
		return "", false
	}
	return id, true
}
