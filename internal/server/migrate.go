// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"

	"codeberg.org/skillnaav/portal/internal/config"
	"codeberg.org/skillnaav/portal/internal/database"
)

// MigrateCommand returns the schema maintenance subcommands.
// Opening the database applies pending migrations, so "down" always starts from the latest schema.
func MigrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Inspect or roll back the database schema",
		Commands: []*cli.Command{
			{
				Name:   "version",
				Usage:  "Print the current schema version",
				Action: migrateVersion,
			},
			{
				Name:   "down",
				Usage:  "Roll back the most recent migration",
				Action: migrateDown,
			},
		},
	}
}

func migrateVersion(_ context.Context, cmd *cli.Command) error {
	return withDatabase(cmd, func(db *sqlx.DB) error {
		version, err := database.Version(db.DB)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		_, err = fmt.Fprintf(cmd.Root().Writer, "schema version %d\n", version)
		return err
	})
}

func migrateDown(_ context.Context, cmd *cli.Command) error {
	return withDatabase(cmd, func(db *sqlx.DB) error {
		if err := database.MigrateDown(db.DB); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		version, err := database.Version(db.DB)
		if err != nil {
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		slog.Info("migration_rolled_back", "version", version)
		_, err = fmt.Fprintf(cmd.Root().Writer, "rolled back to schema version %d\n", version)
		return err
	})
}

func withDatabase(cmd *cli.Command, fn func(*sqlx.DB) error) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	return fn(db)
}
