package database

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "guildkeeper_schema_migrations"

// migrationDatabaseURL reads the environment directly so the migrate
// subcommands run without a bot token.
func migrationDatabaseURL() string {
	return ConstructDatabaseURL(os.Getenv("DATABASE_URL"), os.Getenv("DATABASE_NAME"))
}

// MigrateUp applies every pending migration
func MigrateUp() error {
	return withMigrator(migrationDatabaseURL(), func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				log.Info("Schema already up to date")
				return nil
			}
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		logVersion(m, "Schema migrated")
		return nil
	})
}

// MigrateDown rolls back stepsStr migrations
func MigrateDown(stepsStr string) error {
	steps, err := strconv.Atoi(stepsStr)
	if err != nil {
		return fmt.Errorf("invalid steps value %q: %w", stepsStr, err)
	}
	if steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", steps)
	}

	return withMigrator(migrationDatabaseURL(), func(m *migrate.Migrate) error {
		if err := m.Steps(-steps); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				log.Info("Nothing to roll back")
				return nil
			}
			return fmt.Errorf("failed to roll back %d migrations: %w", steps, err)
		}
		logVersion(m, "Schema rolled back")
		return nil
	})
}

// MigrateStatus logs the applied schema version
func MigrateStatus() error {
	return withMigrator(migrationDatabaseURL(), func(m *migrate.Migrate) error {
		logVersion(m, "Current schema version")
		return nil
	})
}

// RunMigrationsWithURL applies pending migrations to an explicit database,
// as the test containers need.
func RunMigrationsWithURL(databaseURL string) error {
	return withMigrator(databaseURL, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		return nil
	})
}

func logVersion(m *migrate.Migrate, msg string) {
	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.WithField("version", "none").Info(msg)
	case err != nil:
		log.WithError(err).Warn("Could not read schema version")
	default:
		log.WithFields(log.Fields{
			"version": version,
			"dirty":   dirty,
		}).Info(msg)
	}
}

// withMigrator opens a migrator over the embedded scripts, runs fn and
// closes both the source and the database handle.
func withMigrator(databaseURL string, fn func(m *migrate.Migrate) error) error {
	connConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}

	driver, err := postgres.WithInstance(stdlib.OpenDB(*connConfig.ConnConfig), &postgres.Config{
		MigrationsTable: migrationsTable,
	})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.WithFields(log.Fields{
				"source_error":   srcErr,
				"database_error": dbErr,
			}).Warn("Error closing migrator")
		}
	}()

	return fn(m)
}
