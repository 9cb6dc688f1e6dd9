package middleware

import (
	"net/http"

	"github.com/example/account-service/internal/api/httpx"
	repo "github.com/example/account-service/internal/repository"
)

// RequireRole is stage two of the gate: it decides WHAT the caller may
// do. The role comes from the credential store, not from the token, so
// demotions bite on the very next request. Must run after Authenticate.
func RequireRole(users repo.Users, need string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, ok := UserID(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "authentication required", nil)
				return
			}
			u, err := users.GetByID(r.Context(), uid)
			if err != nil {
				// a valid token for a since-deleted user is just invalid
				httpx.WriteError(w, http.StatusUnauthorized, "invalid_token", "invalid token", nil)
				return
			}
			if u.Role != need {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "access denied", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
