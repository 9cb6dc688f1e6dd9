package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/account-service/internal/apperr"
	"github.com/example/account-service/internal/models"
)

type linkedAccountsRepo struct{ pool *pgxpool.Pool }

const linkColumns = `id, user_id, provider, provider_user_id, access_token, refresh_token, token_expires_at, account_data, created_at`

func scanLink(row pgx.Row) (models.LinkedAccount, error) {
	var la models.LinkedAccount
	err := row.Scan(&la.ID, &la.UserID, &la.Provider, &la.ProviderUserID, &la.AccessToken, &la.RefreshToken, &la.TokenExpiresAt, &la.AccountData, &la.CreatedAt)
	return la, err
}

func (r *linkedAccountsRepo) ListByUser(ctx context.Context, userID string) ([]models.LinkedAccount, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx,
		`SELECT `+linkColumns+` FROM linked_accounts WHERE user_id=$1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []models.LinkedAccount
	for rows.Next() {
		la, err := scanLink(rows)
		if err != nil {
			return nil, translate(err)
		}
		out = append(out, la)
	}
	return out, translate(rows.Err())
}

func (r *linkedAccountsRepo) GetByProvider(ctx context.Context, userID, provider string) (models.LinkedAccount, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	la, err := scanLink(r.pool.QueryRow(ctx,
		`SELECT `+linkColumns+` FROM linked_accounts WHERE user_id=$1 AND provider=$2`, userID, provider))
	if err != nil {
		return models.LinkedAccount{}, translate(err)
	}
	return la, nil
}

// Upsert keeps the (user, provider) pair unique: a repeat callback for
// the same provider refreshes the existing row in place.
func (r *linkedAccountsRepo) Upsert(ctx context.Context, la models.LinkedAccount) (models.LinkedAccount, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if la.ID == "" {
		la.ID = uuid.NewString()
	}
	out, err := scanLink(r.pool.QueryRow(ctx, `
		INSERT INTO linked_accounts (id, user_id, provider, provider_user_id, access_token, refresh_token, token_expires_at, account_data)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (user_id, provider) DO UPDATE SET
		  provider_user_id = EXCLUDED.provider_user_id,
		  access_token     = EXCLUDED.access_token,
		  refresh_token    = EXCLUDED.refresh_token,
		  token_expires_at = EXCLUDED.token_expires_at,
		  account_data     = EXCLUDED.account_data
		RETURNING `+linkColumns,
		la.ID, la.UserID, la.Provider, la.ProviderUserID, la.AccessToken, la.RefreshToken, la.TokenExpiresAt, la.AccountData,
	))
	if err != nil {
		return models.LinkedAccount{}, translate(err)
	}
	return out, nil
}

func (r *linkedAccountsRepo) Delete(ctx context.Context, id, userID string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM linked_accounts WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
