package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"clubhub-backend/internal/domain"
	"clubhub-backend/internal/github"
	"clubhub-backend/internal/logger"
)

const (
	CodeValidation      = "VALIDATION_FAILED"
	CodeUnauthenticated = "UNAUTHENTICATED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeRequestExists   = "REQUEST_EXISTS"
	CodeInvalidState    = "INVALID_TRANSITION"
	CodeUpstream        = "GITHUB_UNAVAILABLE"
	CodeRateLimited     = "RATE_LIMITED"
	CodeInternal        = "INTERNAL"
)

type apiError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields,omitempty"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	e := apiError{}
	e.Error.Code = code
	e.Error.Message = message
	writeJSON(w, status, e)
}

// writeError maps a service error onto the JSON error envelope.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		e := apiError{}
		e.Error.Code = CodeValidation
		e.Error.Message = verr.Error()
		e.Error.Fields = verr.Fields
		writeJSON(w, http.StatusBadRequest, e)
		return
	case errors.Is(err, domain.ErrNotFound):
		writeAPIError(w, http.StatusNotFound, CodeNotFound, "membership request not found")
		return
	case errors.Is(err, domain.ErrForbidden):
		writeAPIError(w, http.StatusForbidden, CodeForbidden, "forbidden")
		return
	case errors.Is(err, domain.ErrActiveRequestExists):
		writeAPIError(w, http.StatusConflict, CodeRequestExists, err.Error())
		return
	case errors.Is(err, domain.ErrInvalidTransition):
		writeAPIError(w, http.StatusConflict, CodeInvalidState, err.Error())
		return
	case errors.Is(err, domain.ErrUpstream), errors.Is(err, github.ErrUnexpectedStatus):
		logger.Warn("GitHub call failed", "request_id", requestIDFromContext(r.Context()), "path", r.URL.Path, "error", err)
		writeAPIError(w, http.StatusBadGateway, CodeUpstream, "github is unavailable, try again later")
		return
	}

	logger.Error("Request failed", "request_id", requestIDFromContext(r.Context()), "path", r.URL.Path, "error", err)
	writeAPIError(w, http.StatusInternalServerError, CodeInternal, "internal error")
}
