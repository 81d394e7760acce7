package postgres

import (
	"context"
	"errors"

	"github.com/dyilmaz/community-backend/internal/models"
	"github.com/dyilmaz/community-backend/internal/repository"
	"github.com/dyilmaz/community-backend/internal/shared"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type usersRepo struct{ pool *pgxpool.Pool }

func NewUsers(pool *pgxpool.Pool) repository.Users {
	return &usersRepo{pool: pool}
}

func (r *usersRepo) Create(ctx context.Context, firstName, lastName, email, passwordHash string) (models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users(first_name, last_name, email, password_hash)
		 VALUES($1,$2,$3,$4)
		 RETURNING id, first_name, last_name, email, password_hash, created_at`,
		firstName, lastName, email, passwordHash,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.User{}, shared.ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

func (r *usersRepo) GetByID(ctx context.Context, id int64) (models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, email, password_hash, created_at FROM users WHERE id=$1`, id,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, shared.ErrNotFound
	}
	return u, err
}

func (r *usersRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, first_name, last_name, email, password_hash, created_at FROM users WHERE email=$1`, email,
	).Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.User{}, shared.ErrNotFound
	}
	return u, err
}
