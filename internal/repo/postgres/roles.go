package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/schoolhub/internal/domain/user"
)

var ErrRoleNotFound = errors.New("role not found")

// Roles are static reference data seeded at startup; the repo only reads.
type RolesRepo struct {
	pool *pgxpool.Pool
}

func NewRolesRepo(pool *pgxpool.Pool) *RolesRepo {
	return &RolesRepo{pool: pool}
}

func (r *RolesRepo) GetByName(ctx context.Context, name string) (user.Role, error) {
	var role user.Role

	err := r.pool.QueryRow(
		ctx,
		`SELECT id, name FROM roles WHERE name = $1`,
		name,
	).Scan(&role.ID, &role.Name)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.Role{}, ErrRoleNotFound
		}

		return user.Role{}, err
	}

	return role, nil
}
