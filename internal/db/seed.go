package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/geocoder89/schoolhub/internal/config"
	"github.com/geocoder89/schoolhub/internal/security"
)

// Reference data the auth flows depend on: registration links every new user
// to the parent role and the default school by name.
var seedRoles = []string{"admin", "teacher", "parent"}

const seedSchoolName = "Springfield Elementary"

// EnsureSeedData idempotently creates the reference roles, the default
// school and (when configured) a bootstrap admin user.
func EnsureSeedData(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	for _, name := range seedRoles {
		_, err := pool.Exec(ctx,
			`INSERT INTO roles (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
			uuid.NewString(), name,
		)

		if err != nil {
			return err
		}
	}

	_, err := pool.Exec(ctx,
		`INSERT INTO schools (id, name) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING`,
		uuid.NewString(), seedSchoolName,
	)

	if err != nil {
		return err
	}

	return ensureAdminUser(ctx, pool, cfg)
}

func ensureAdminUser(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	// check if the user exists

	var dummy string

	err := pool.QueryRow(ctx, `SELECT id FROM users WHERE email = $1`, cfg.AdminEmail).Scan(&dummy)

	if err == nil {
		return nil
	}

	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	var schoolID, roleID string

	err = pool.QueryRow(ctx, `SELECT id FROM schools WHERE name = $1`, seedSchoolName).Scan(&schoolID)

	if err != nil {
		return err
	}

	err = pool.QueryRow(ctx, `SELECT id FROM roles WHERE name = 'admin'`).Scan(&roleID)

	if err != nil {
		return err
	}

	userID := uuid.NewString()

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})

	if err != nil {
		return err
	}

	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, email, password_hash, name, school_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		`,
		userID, cfg.AdminEmail, hash, cfg.AdminName, schoolID,
	)

	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)`,
		userID, roleID,
	)

	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
