package repository

import (
	"context"
	"time"

	"github.com/example/account-service/internal/models"
)

type Users interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	// GetByLogin matches the identifier against username or email.
	GetByLogin(ctx context.Context, login string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	// Update applies the present fields only. Demoting the sole admin
	// fails with apperr.ErrLastAdmin.
	Update(ctx context.Context, id string, p models.UserUpdate) (models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	SetResetToken(ctx context.Context, email, token string, expires time.Time) error
	// ConsumeResetToken atomically matches an unexpired token, swaps in
	// the new password hash and clears the token, returning the user id.
	// A spent or expired token fails with apperr.ErrInvalidOrExpiredToken.
	ConsumeResetToken(ctx context.Context, token, passwordHash string) (string, error)
	// Delete removes the user and, via the store's cascade, their linked
	// accounts. Deleting the sole admin fails with apperr.ErrLastAdmin.
	Delete(ctx context.Context, id string) error
}

type Roles interface {
	GetByID(ctx context.Context, id int) (models.Role, error)
	GetByName(ctx context.Context, name string) (models.Role, error)
	List(ctx context.Context) ([]models.Role, error)
}

type LinkedAccounts interface {
	ListByUser(ctx context.Context, userID string) ([]models.LinkedAccount, error)
	GetByProvider(ctx context.Context, userID, provider string) (models.LinkedAccount, error)
	// Upsert inserts or refreshes the (user, provider) row.
	Upsert(ctx context.Context, la models.LinkedAccount) (models.LinkedAccount, error)
	Delete(ctx context.Context, id, userID string) error
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
