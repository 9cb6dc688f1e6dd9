// Package apperr defines the error taxonomy shared by services,
// repositories and the HTTP layer. Callers match with errors.Is;
// anything not in this set reaches the transport as a generic 500.
package apperr

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrDuplicateEmail        = errors.New("email is already in use")
	ErrDuplicateUsername     = errors.New("username is already taken")
	ErrDuplicateLink         = errors.New("provider is already linked")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInvalidToken          = errors.New("invalid token")
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	ErrUnauthenticated       = errors.New("authentication required")
	ErrForbidden             = errors.New("forbidden")
	ErrLastAdmin             = errors.New("cannot remove the last admin")
	ErrInvalidRole           = errors.New("invalid role")
	ErrStoreUnavailable      = errors.New("store unavailable")
)

var known = []error{
	ErrNotFound, ErrDuplicateEmail, ErrDuplicateUsername, ErrDuplicateLink,
	ErrInvalidCredentials, ErrInvalidToken, ErrInvalidOrExpiredToken,
	ErrUnauthenticated, ErrForbidden, ErrLastAdmin, ErrInvalidRole,
	ErrStoreUnavailable,
}

// Known reports whether err already belongs to the taxonomy.
func Known(err error) bool {
	for _, k := range known {
		if errors.Is(err, k) {
			return true
		}
	}
	return false
}
