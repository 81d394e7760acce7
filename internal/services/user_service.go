package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dyilmaz/community-backend/internal/auth"
	"github.com/dyilmaz/community-backend/internal/metrics"
	"github.com/dyilmaz/community-backend/internal/models"
	repo "github.com/dyilmaz/community-backend/internal/repository"
	"github.com/dyilmaz/community-backend/internal/shared"
	"github.com/dyilmaz/community-backend/internal/worker"
	"github.com/google/uuid"
)

type UserService struct {
	users repo.Users
	audit repo.AuditLogs
	wp    *worker.Pool
}

func NewUserService(users repo.Users, audit repo.AuditLogs, wp *worker.Pool) *UserService {
	return &UserService{users: users, audit: audit, wp: wp}
}

// Register creates an account with a bcrypt-hashed credential. Plaintext
// passwords are never stored.
func (s *UserService) Register(ctx context.Context, firstName, lastName, email, password string) (models.User, error) {
	u := models.User{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Email:     strings.TrimSpace(email),
	}
	if err := u.Validate(); err != nil {
		return models.User{}, err
	}
	if password == "" {
		return models.User{}, errors.New("password required")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	created, err := s.users.Create(ctx, u.FirstName, u.LastName, u.Email, hash)
	if err != nil {
		return models.User{}, err
	}
	metrics.RegistrationsTotal.Inc()
	s.auditAsync("user", created.ID, "registered", map[string]any{"email": created.Email})
	return created, nil
}

// Authenticate verifies credentials. A missing account and a wrong password
// are distinguishable so the login form can show the right field error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return models.User{}, shared.ErrNotFound
		}
		return models.User{}, err
	}
	if err := auth.VerifyPassword(password, u.PasswordHash); err != nil {
		return models.User{}, shared.ErrInvalidCredential
	}
	return u, nil
}

func (s *UserService) GetByID(ctx context.Context, id int64) (models.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) auditAsync(entity string, id int64, action string, details map[string]any) {
	entityID := fmt.Sprintf("%d", id)
	s.wp.Submit(func() {
		_ = s.audit.Create(context.Background(), models.AuditLog{
			ID:         uuid.NewString(),
			EntityType: entity,
			EntityID:   &entityID,
			Action:     action,
			Details:    details,
		})
	})
}
