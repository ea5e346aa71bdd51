package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"teamspace-backend/internal/domain"
	"teamspace-backend/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

func writeErrorStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeError maps the domain error taxonomy onto HTTP status codes.
// Unknown errors become a generic 500 so that internals never leak.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotAMember):
		writeErrorStatus(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyMember):
		writeErrorStatus(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInsufficientPermissions):
		writeErrorStatus(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrCannotModifyOwner), errors.Is(err, domain.ErrCannotRemoveOwner):
		writeErrorStatus(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrInvalidToken):
		writeErrorStatus(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvitationDeactivated), errors.Is(err, domain.ErrInvitationExpired):
		writeErrorStatus(w, http.StatusGone, err.Error())
	case errors.Is(err, domain.ErrInvitationExhausted):
		writeErrorStatus(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidRole):
		writeErrorStatus(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error("internal error", "error", err)
		writeErrorStatus(w, http.StatusInternalServerError, "internal server error")
	}
}
