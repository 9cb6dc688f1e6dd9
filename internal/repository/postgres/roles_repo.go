package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/account-service/internal/models"
)

type rolesRepo struct{ pool *pgxpool.Pool }

func (r *rolesRepo) GetByID(ctx context.Context, id int) (models.Role, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var role models.Role
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM user_roles WHERE id=$1`, id).Scan(&role.ID, &role.Name)
	if err != nil {
		return models.Role{}, translate(err)
	}
	return role, nil
}

func (r *rolesRepo) GetByName(ctx context.Context, name string) (models.Role, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	var role models.Role
	err := r.pool.QueryRow(ctx, `SELECT id, name FROM user_roles WHERE name=$1`, name).Scan(&role.ID, &role.Name)
	if err != nil {
		return models.Role{}, translate(err)
	}
	return role, nil
}

func (r *rolesRepo) List(ctx context.Context) ([]models.Role, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	rows, err := r.pool.Query(ctx, `SELECT id, name FROM user_roles ORDER BY id`)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, translate(err)
		}
		out = append(out, role)
	}
	return out, translate(rows.Err())
}
