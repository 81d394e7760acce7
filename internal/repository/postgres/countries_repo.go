package postgres

import (
	"context"

	"github.com/dyilmaz/community-backend/internal/models"
	"github.com/dyilmaz/community-backend/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

type countriesRepo struct{ pool *pgxpool.Pool }

func NewCountries(pool *pgxpool.Pool) repository.Countries {
	return &countriesRepo{pool: pool}
}

func (r *countriesRepo) List(ctx context.Context) ([]models.Country, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM countries ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Country
	for rows.Next() {
		var c models.Country
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
