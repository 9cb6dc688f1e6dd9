package services

import (
	"context"
	"errors"
	"time"

	"github.com/example/account-service/internal/apperr"
	"github.com/example/account-service/internal/api/validate"
	"github.com/example/account-service/internal/auth"
	"github.com/example/account-service/internal/mailer"
	"github.com/example/account-service/internal/metrics"
	"github.com/example/account-service/internal/models"
	repo "github.com/example/account-service/internal/repository"
	"github.com/example/account-service/internal/worker"
)

// ResetService owns the reset-token lifecycle: issue on request,
// deliver out of band, consume exactly once.
type ResetService struct {
	users repo.Users
	audit repo.AuditLogs
	mail  mailer.Mailer
	wp    *worker.Pool
	ttl   time.Duration
}

func NewResetService(users repo.Users, audit repo.AuditLogs, mail mailer.Mailer, wp *worker.Pool, ttl time.Duration) *ResetService {
	return &ResetService{users: users, audit: audit, mail: mail, wp: wp, ttl: ttl}
}

// RequestReset never discloses whether the email exists: an unknown
// address is a silent no-op and the caller sees the same success shape
// either way. A new request overwrites any earlier token. The token
// leaves the process only through the mailer.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	if e := validate.Email(email); e != nil {
		return validate.Errs{*e}
	}
	token, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	err = s.users.SetResetToken(ctx, email, token, time.Now().Add(s.ttl))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("requested").Inc()
	s.wp.Submit(func() {
		_ = s.mail.SendPasswordReset(context.Background(), email, token)
	})
	return nil
}

// ConsumeReset spends the token: the store's conditional update clears
// it in the same statement that swaps the password, so a token can
// never be used twice.
func (s *ResetService) ConsumeReset(ctx context.Context, token, newPassword string) error {
	if token == "" {
		metrics.PasswordResetsTotal.WithLabelValues("rejected").Inc()
		return apperr.ErrInvalidOrExpiredToken
	}
	if e := validate.Password(newPassword); e != nil {
		return validate.Errs{*e}
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	userID, err := s.users.ConsumeResetToken(ctx, token, hash)
	if err != nil {
		if errors.Is(err, apperr.ErrInvalidOrExpiredToken) {
			metrics.PasswordResetsTotal.WithLabelValues("rejected").Inc()
		}
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues("completed").Inc()
	_ = s.audit.Create(ctx, models.AuditLog{
		EntityType: "user",
		EntityID:   &userID,
		Action:     "password_reset",
	})
	return nil
}
