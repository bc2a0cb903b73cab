package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/schoolhub/internal/domain/user"
)

var ErrSchoolNotFound = errors.New("school not found")

type SchoolsRepo struct {
	pool *pgxpool.Pool
}

func NewSchoolsRepo(pool *pgxpool.Pool) *SchoolsRepo {
	return &SchoolsRepo{pool: pool}
}

func (r *SchoolsRepo) GetByName(ctx context.Context, name string) (user.School, error) {
	var s user.School

	err := r.pool.QueryRow(
		ctx,
		`SELECT id, name FROM schools WHERE name = $1`,
		name,
	).Scan(&s.ID, &s.Name)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.School{}, ErrSchoolNotFound
		}

		return user.School{}, err
	}

	return s, nil
}
