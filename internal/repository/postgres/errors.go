package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/example/account-service/internal/apperr"
)

// Every store call is bounded; a slow database surfaces as
// apperr.ErrStoreUnavailable instead of a hung request.
const queryTimeout = 3 * time.Second

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}

// translate maps driver errors onto the apperr taxonomy so no raw
// storage error crosses the repository boundary.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if apperr.Known(err) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			switch {
			case strings.Contains(pgErr.ConstraintName, "email"):
				return apperr.ErrDuplicateEmail
			case strings.Contains(pgErr.ConstraintName, "username"):
				return apperr.ErrDuplicateUsername
			case strings.Contains(pgErr.ConstraintName, "provider"):
				return apperr.ErrDuplicateLink
			}
		case "23503": // foreign_key_violation
			if strings.Contains(pgErr.ConstraintName, "role") {
				return apperr.ErrInvalidRole
			}
		}
	}
	return fmt.Errorf("%w: %v", apperr.ErrStoreUnavailable, err)
}
