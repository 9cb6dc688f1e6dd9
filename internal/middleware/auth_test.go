package middleware_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/account-service/internal/apperr"
	"github.com/example/account-service/internal/auth"
	"github.com/example/account-service/internal/middleware"
	"github.com/example/account-service/internal/models"
)

// stubUsers serves only GetByID; the middleware needs nothing else.
type stubUsers struct {
	users map[string]models.User
	calls atomic.Int32
}

func (s *stubUsers) GetByID(_ context.Context, id string) (models.User, error) {
	s.calls.Add(1)
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return models.User{}, apperr.ErrNotFound
}

func (s *stubUsers) Create(context.Context, models.User) (models.User, error) {
	return models.User{}, apperr.ErrStoreUnavailable
}
func (s *stubUsers) GetByEmail(context.Context, string) (models.User, error) {
	return models.User{}, apperr.ErrNotFound
}
func (s *stubUsers) GetByLogin(context.Context, string) (models.User, error) {
	return models.User{}, apperr.ErrNotFound
}
func (s *stubUsers) List(context.Context) ([]models.User, error) { return nil, nil }
func (s *stubUsers) Update(context.Context, string, models.UserUpdate) (models.User, error) {
	return models.User{}, apperr.ErrStoreUnavailable
}
func (s *stubUsers) UpdatePassword(context.Context, string, string) error { return nil }
func (s *stubUsers) SetResetToken(context.Context, string, string, time.Time) error {
	return apperr.ErrNotFound
}
func (s *stubUsers) ConsumeResetToken(context.Context, string, string) (string, error) {
	return "", apperr.ErrInvalidOrExpiredToken
}
func (s *stubUsers) Delete(context.Context, string) error { return apperr.ErrNotFound }

func errCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Code
}

func TestAuthenticate(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)
	mw := middleware.NewAuthMiddleware(tm)

	var seenUID string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUID, _ = middleware.UserID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	h := mw.Authenticate(next)

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthenticated", errCode(t, rec))
	})

	t.Run("malformed token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer garbage")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_token", errCode(t, rec))
	})

	t.Run("expired token", func(t *testing.T) {
		expired, _, err := auth.NewTokenManager("test-secret", -time.Minute).Issue("user-1")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+expired)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, _, err := tm.Issue("user-1")
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "user-1", seenUID)
	})
}

func TestRequireRole(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)
	mw := middleware.NewAuthMiddleware(tm)
	users := &stubUsers{users: map[string]models.User{
		"admin-1": {ID: "admin-1", Role: models.RoleAdmin},
		"user-1":  {ID: "user-1", Role: models.RoleUser},
	}}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	h := mw.Authenticate(middleware.RequireRole(users, models.RoleAdmin)(next))

	do := func(t *testing.T, uid string) *httptest.ResponseRecorder {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if uid != "" {
			token, _, err := tm.Issue(uid)
			require.NoError(t, err)
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("unauthenticated stops before the role check", func(t *testing.T) {
		before := users.calls.Load()
		rec := do(t, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthenticated", errCode(t, rec))
		assert.Equal(t, before, users.calls.Load(), "store must not be consulted")
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		rec := do(t, "user-1")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "forbidden", errCode(t, rec))
	})

	t.Run("admin passes", func(t *testing.T) {
		rec := do(t, "admin-1")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("token for a deleted user is invalid", func(t *testing.T) {
		rec := do(t, "ghost")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_token", errCode(t, rec))
	})
}
