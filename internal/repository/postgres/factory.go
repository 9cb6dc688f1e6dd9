package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/example/account-service/internal/repository"
)

type Repositories struct {
	Users          repo.Users
	Roles          repo.Roles
	LinkedAccounts repo.LinkedAccounts
	AuditLogs      repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:          &usersRepo{pool},
		Roles:          &rolesRepo{pool},
		LinkedAccounts: &linkedAccountsRepo{pool},
		AuditLogs:      &auditLogsRepo{pool},
	}
}
