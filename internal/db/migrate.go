package db

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// register the pgx/v5 database driver for golang-migrate
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies all pending schema migrations. Already-applied versions
// are a no-op, so this is safe to run on every startup.
func Migrate(dbURL string) error {
	source, err := iofs.New(migrationsFS, "migrations")

	if err != nil {
		return err
	}

	// golang-migrate's pgx/v5 driver wants the pgx5:// scheme
	migrateURL := dbURL

	if rest, found := strings.CutPrefix(dbURL, "postgres://"); found {
		migrateURL = "pgx5://" + rest
	} else if rest, found := strings.CutPrefix(dbURL, "postgresql://"); found {
		migrateURL = "pgx5://" + rest
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL)

	if err != nil {
		_ = source.Close()
		return err
	}

	defer func() { _, _ = m.Close() }()

	err = m.Up()

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
