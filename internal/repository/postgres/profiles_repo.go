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

type profilesRepo struct{ pool *pgxpool.Pool }

func NewProfiles(pool *pgxpool.Pool) repository.Profiles {
	return &profilesRepo{pool: pool}
}

// mapWriteErr turns unique-constraint violations raised by concurrent
// writes into domain sentinels. The constraints are the authoritative
// arbiters; no pre-check is race-free.
func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "profiles_username_key":
			return shared.ErrDuplicateUsername
		case "profiles_user_id_key":
			return shared.ErrProfileExists
		}
	}
	return err
}

func (r *profilesRepo) Create(ctx context.Context, p models.Profile) (models.Profile, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO profiles(username, photo, country, bio, user_id)
		 VALUES($1,$2,$3,$4,$5)
		 RETURNING id, created_at, updated_at`,
		p.Username, p.Photo, p.Country, p.Bio, p.UserID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return models.Profile{}, mapWriteErr(err)
	}
	return p, nil
}

func (r *profilesRepo) Update(ctx context.Context, p models.Profile) (models.Profile, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE profiles
		    SET username=$2, photo=$3, country=$4, bio=$5, updated_at=now()
		  WHERE id=$1
		  RETURNING updated_at`,
		p.ID, p.Username, p.Photo, p.Country, p.Bio,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Profile{}, shared.ErrNotFound
	}
	if err != nil {
		return models.Profile{}, mapWriteErr(err)
	}
	return p, nil
}

func (r *profilesRepo) GetByUserID(ctx context.Context, userID int64) (models.Profile, error) {
	return r.get(ctx, `WHERE user_id=$1`, userID)
}

func (r *profilesRepo) GetByUsername(ctx context.Context, username string) (models.Profile, error) {
	return r.get(ctx, `WHERE username=$1`, username)
}

func (r *profilesRepo) get(ctx context.Context, where string, arg any) (models.Profile, error) {
	var p models.Profile
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, photo, country, bio, user_id, created_at, updated_at FROM profiles `+where, arg,
	).Scan(&p.ID, &p.Username, &p.Photo, &p.Country, &p.Bio, &p.UserID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Profile{}, shared.ErrNotFound
	}
	return p, err
}

func (r *profilesRepo) SearchByUsername(ctx context.Context, term string) ([]models.Profile, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, username, photo, country, bio, user_id, created_at, updated_at
		   FROM profiles
		  WHERE username ILIKE '%' || $1 || '%'
		  ORDER BY id`,
		term,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Profile
	for rows.Next() {
		var p models.Profile
		if err := rows.Scan(&p.ID, &p.Username, &p.Photo, &p.Country, &p.Bio, &p.UserID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
