package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/diachron-labs/driftd/internal/domain"
	"github.com/diachron-labs/driftd/internal/logger"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps the domain error categories onto HTTP statuses:
// validation 400, missing reference 404, lifecycle conflict 409,
// broken invariant 422, lost-update race 409 with a retry hint.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, domain.ErrAlreadyExists):
		status, code = http.StatusConflict, "already_exists"
	case errors.Is(err, domain.ErrValidation):
		status, code = http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrReferential):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrState):
		status, code = http.StatusConflict, "state_conflict"
	case errors.Is(err, domain.ErrConsistency):
		status, code = http.StatusUnprocessableEntity, "consistency_violation"
	case errors.Is(err, domain.ErrConflict):
		status, code = http.StatusConflict, "concurrency_conflict"
		w.Header().Set("Retry-After", "1")
	}

	if status == http.StatusInternalServerError {
		logger.FromContext(r.Context()).Error("request failed", zap.Error(err))
		respondJSON(w, status, errorResponse{Code: code, Message: "internal error"})
		return
	}
	respondJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Code: "malformed_body", Message: "invalid JSON body"})
		return false
	}
	return true
}

func pathUUID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Code: "invalid_id", Message: "malformed " + param})
		return uuid.Nil, false
	}
	return id, true
}
