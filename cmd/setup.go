package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/roster/internal/seed"
	"github.com/desertthunder/roster/internal/shared"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}
	config.ApplyEnv()

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// Seed imports a YAML seed file, or the built-in demo data.
func (r *Runner) Seed(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	demo := cmd.Bool("demo")

	var doc *seed.Document
	switch {
	case demo && path != "":
		return fmt.Errorf("%w: cannot use --demo with a seed file", shared.ErrInvalidArgument)
	case demo:
		doc = seed.Demo()
	case path == "":
		return fmt.Errorf("%w: seed file path or --demo", shared.ErrMissingArgument)
	default:
		var err error
		if doc, err = seed.Load(path); err != nil {
			return err
		}
	}

	store, err := r.Store(ctx)
	if err != nil {
		return err
	}

	res, err := seed.Apply(ctx, store, doc)
	if err != nil {
		r.writePlain("Partially seeded: %s\n", res)
		return fmt.Errorf("seed failed: %w", err)
	}

	r.logger.Info("seed complete", "accounts", res.Accounts, "members", res.Members, "songs", res.Songs)
	return r.writePlain("✓ Seeded %s\n", res)
}
