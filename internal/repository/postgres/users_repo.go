package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/account-service/internal/apperr"
	"github.com/example/account-service/internal/models"
	"github.com/example/account-service/internal/repository"
)

type usersRepo struct{ pool *pgxpool.Pool }

func NewUsers(pool *pgxpool.Pool) repository.Users {
	return &usersRepo{pool: pool}
}

const userColumns = `u.id, u.username, u.name, u.email, u.phone_number, u.password_hash, u.role_id, r.name, u.created_at, u.updated_at`

const userSelect = `SELECT ` + userColumns + ` FROM users u JOIN user_roles r ON u.role_id = r.id`

func scanUser(row pgx.Row) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Name, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.RoleID, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *usersRepo) Create(ctx context.Context, u models.User) (models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users(id, username, name, email, phone_number, password_hash, role_id) VALUES($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Username, u.Name, u.Email, u.PhoneNumber, u.PasswordHash, u.RoleID,
	)
	if err != nil {
		return models.User{}, translate(err)
	}
	return r.GetByID(ctx, u.ID)
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE u.id=$1`, id))
	if err != nil {
		return models.User{}, translate(err)
	}
	return u, nil
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE lower(u.email)=lower($1)`, email))
	if err != nil {
		return models.User{}, translate(err)
	}
	return u, nil
}

func (r *usersRepo) GetByLogin(ctx context.Context, login string) (models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, userSelect+` WHERE u.username=$1 OR lower(u.email)=lower($1)`, login))
	if err != nil {
		return models.User{}, translate(err)
	}
	return u, nil
}

func (r *usersRepo) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, userSelect+` ORDER BY u.created_at DESC LIMIT 100`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, translate(err)
		}
		out = append(out, u)
	}
	return out, translate(rows.Err())
}

// Update applies present fields in one conditional statement. Role
// changes run under a row lock so a demotion cannot race another
// admin's demotion past the last-admin check.
func (r *usersRepo) Update(ctx context.Context, id string, p models.UserUpdate) (models.User, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var out models.User
	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		var roleID int
		if err := tx.QueryRow(ctx, `SELECT role_id FROM users WHERE id=$1 FOR UPDATE`, id).Scan(&roleID); err != nil {
			return err
		}
		if p.RoleID != nil && *p.RoleID != roleID {
			if err := guardLastAdmin(ctx, tx, roleID); err != nil {
				return err
			}
		}

		// phone is the one field where "present and empty" means clear
		phoneSet := p.PhoneNumber != nil
		var phone *string
		if phoneSet && *p.PhoneNumber != "" {
			phone = p.PhoneNumber
		}

		_, err := tx.Exec(ctx, `
			UPDATE users SET
			  name         = COALESCE($2, name),
			  email        = COALESCE($3, email),
			  username     = COALESCE($4, username),
			  phone_number = CASE WHEN $5 THEN $6 ELSE phone_number END,
			  role_id      = COALESCE($7, role_id),
			  updated_at   = now()
			WHERE id=$1`,
			id, p.Name, p.Email, p.Username, phoneSet, phone, p.RoleID,
		)
		if err != nil {
			return err
		}
		var scanErr error
		out, scanErr = scanUser(tx.QueryRow(ctx, userSelect+` WHERE u.id=$1`, id))
		return scanErr
	})
	if err != nil {
		return models.User{}, translate(err)
	}
	return out, nil
}

func (r *usersRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET password_hash=$2, updated_at=now() WHERE id=$1`, id, passwordHash)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func (r *usersRepo) SetResetToken(ctx context.Context, email, token string, expires time.Time) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET reset_token=$2, reset_token_expires=$3, updated_at=now() WHERE lower(email)=lower($1)`,
		email, token, expires,
	)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ConsumeResetToken is a single conditional update: the row-level
// atomicity of the store guarantees single use under concurrent
// attempts with the same token.
func (r *usersRepo) ConsumeResetToken(ctx context.Context, token, passwordHash string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var id string
	err := r.pool.QueryRow(ctx, `
		UPDATE users SET
		  password_hash       = $2,
		  reset_token         = NULL,
		  reset_token_expires = NULL,
		  updated_at          = now()
		WHERE reset_token=$1 AND reset_token_expires > now()
		RETURNING id`,
		token, passwordHash,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", apperr.ErrInvalidOrExpiredToken
	}
	if err != nil {
		return "", translate(err)
	}
	return id, nil
}

func (r *usersRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.Serializable}, func(tx pgx.Tx) error {
		var roleID int
		if err := tx.QueryRow(ctx, `SELECT role_id FROM users WHERE id=$1 FOR UPDATE`, id).Scan(&roleID); err != nil {
			return err
		}
		if err := guardLastAdmin(ctx, tx, roleID); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `DELETE FROM users WHERE id=$1`, id)
		return err
	})
	return translate(err)
}

// guardLastAdmin fails when the locked user is the only remaining
// admin and is about to lose that role or be removed.
func guardLastAdmin(ctx context.Context, tx pgx.Tx, roleID int) error {
	var isAdmin bool
	if err := tx.QueryRow(ctx, `SELECT name='admin' FROM user_roles WHERE id=$1`, roleID).Scan(&isAdmin); err != nil {
		return err
	}
	if !isAdmin {
		return nil
	}
	var admins int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM users WHERE role_id=$1`, roleID).Scan(&admins); err != nil {
		return err
	}
	if admins <= 1 {
		return apperr.ErrLastAdmin
	}
	return nil
}
