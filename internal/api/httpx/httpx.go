package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/account-service/internal/apperr"
	"github.com/example/account-service/internal/api/validate"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// WriteServiceError converts a service failure into the wire shape.
// Messages stay generic for anything credential-adjacent; unknown
// errors collapse to a bare 500.
func WriteServiceError(w http.ResponseWriter, err error) {
	var verrs validate.Errs
	if errors.As(err, &verrs) {
		WriteError(w, http.StatusBadRequest, "validation_error", "validation failed", verrs)
		return
	}
	switch {
	case errors.Is(err, apperr.ErrDuplicateEmail):
		WriteError(w, http.StatusConflict, "duplicate_email", apperr.ErrDuplicateEmail.Error(), nil)
	case errors.Is(err, apperr.ErrDuplicateUsername):
		WriteError(w, http.StatusConflict, "duplicate_username", apperr.ErrDuplicateUsername.Error(), nil)
	case errors.Is(err, apperr.ErrDuplicateLink):
		WriteError(w, http.StatusConflict, "duplicate_link", apperr.ErrDuplicateLink.Error(), nil)
	case errors.Is(err, apperr.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
	case errors.Is(err, apperr.ErrInvalidToken), errors.Is(err, apperr.ErrUnauthenticated):
		WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token", nil)
	case errors.Is(err, apperr.ErrInvalidOrExpiredToken):
		WriteError(w, http.StatusBadRequest, "invalid_or_expired_token", "invalid or expired token", nil)
	case errors.Is(err, apperr.ErrForbidden):
		WriteError(w, http.StatusForbidden, "forbidden", "access denied", nil)
	case errors.Is(err, apperr.ErrNotFound):
		WriteError(w, http.StatusNotFound, "not_found", "not found", nil)
	case errors.Is(err, apperr.ErrLastAdmin):
		WriteError(w, http.StatusConflict, "last_admin", apperr.ErrLastAdmin.Error(), nil)
	case errors.Is(err, apperr.ErrInvalidRole):
		WriteError(w, http.StatusBadRequest, "invalid_role", apperr.ErrInvalidRole.Error(), nil)
	case errors.Is(err, apperr.ErrStoreUnavailable):
		WriteError(w, http.StatusServiceUnavailable, "store_unavailable", "service temporarily unavailable", nil)
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
