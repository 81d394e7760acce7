package postgres

import (
	repo "github.com/dyilmaz/community-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	Users     repo.Users
	Profiles  repo.Profiles
	Countries repo.Countries
	AuditLogs repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:     &usersRepo{pool},
		Profiles:  &profilesRepo{pool},
		Countries: &countriesRepo{pool},
		AuditLogs: &auditLogsRepo{pool},
	}
}
