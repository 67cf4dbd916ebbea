package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scry-gen/internal/config"
	"github.com/phrazzld/scry-gen/internal/platform/postgres"
)

var errMigrateInMemory = errors.New("migrations need a database; database.in_memory is set")

// setupDatabase opens the database and applies pending migrations when
// configured to. In-memory mode returns a nil *sql.DB.
func setupDatabase(ctx context.Context, cfg *config.Config, log *slog.Logger) (*sql.DB, error) {
	if cfg.Database.InMemory {
		log.Warn("using in-memory store; data will not survive a restart")
		return nil, nil
	}

	db, err := postgres.Open(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.Info("database connection established")

	if cfg.Database.RunMigrations {
		if err := postgres.Migrate(ctx, db, log); err != nil {
			_ = db.Close()
			return nil, err
		}
		if version, err := postgres.MigrationVersion(ctx, db, log); err == nil {
			log.Info("database schema up to date", "version", version)
		}
	}
	return db, nil
}

// runMigrations executes a single migration command and returns.
func runMigrations(ctx context.Context, cfg *config.Config, log *slog.Logger, command string) error {
	if cfg.Database.InMemory {
		return errMigrateInMemory
	}

	db, err := postgres.Open(ctx, cfg.Database.URL, cfg.Database.MaxOpenConns)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	log.Info("running migration command", "command", command)
	return postgres.RunMigrationCommand(ctx, db, log, command)
}
