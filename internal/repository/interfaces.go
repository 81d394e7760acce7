package repository

import (
	"context"

	"github.com/dyilmaz/community-backend/internal/models"
)

type Users interface {
	Create(ctx context.Context, firstName, lastName, email, passwordHash string) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

type Profiles interface {
	Create(ctx context.Context, p models.Profile) (models.Profile, error)
	Update(ctx context.Context, p models.Profile) (models.Profile, error)
	GetByUserID(ctx context.Context, userID int64) (models.Profile, error)
	GetByUsername(ctx context.Context, username string) (models.Profile, error)
	// SearchByUsername matches the term as a case-insensitive substring.
	SearchByUsername(ctx context.Context, term string) ([]models.Profile, error)
}

type Countries interface {
	List(ctx context.Context) ([]models.Country, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
