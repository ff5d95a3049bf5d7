// Package database connects to postgres and applies the embedded schema
// migrations.
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minesweeper-board/internal/config"
)

//go:embed migrations/*.sql
var Migrations embed.FS

func Connect(ctx context.Context, c config.Database) (*pgxpool.Pool, error) {
	poolConfig, err := c.PoolConfig()
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return pool, nil
}

func NewMigrator(url string, migrations fs.FS) (*migrate.Migrate, error) {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("unable to create migrations iofs: %w", err)
	}
	migrator, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return nil, fmt.Errorf("unable to create migrator: %w", err)
	}
	return migrator, nil
}

// Migrate brings the schema up to date. An already current schema is not
// an error.
func Migrate(url string, migrations fs.FS, log *logrus.Logger) error {
	migrator, err := NewMigrator(url, migrations)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	version, dirty, err := migrator.Version()
	if err != nil {
		return fmt.Errorf("failed to check migration version: %w", err)
	}
	log.WithFields(logrus.Fields{
		"version": version,
		"dirty":   dirty,
	}).Info("migration successful")
	return nil
}

// ConnectAndMigrate migrates the schema when configured to, then opens a
// connection pool.
func ConnectAndMigrate(
	ctx context.Context, c config.Database, log *logrus.Logger,
) (*pgxpool.Pool, error) {
	if c.Migrate {
		if err := Migrate(c.URL, Migrations, log); err != nil {
			return nil, err
		}
	}
	return Connect(ctx, c)
}
