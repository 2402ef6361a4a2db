package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simon-dunk/Degree-Compass/internal/app"
	"github.com/simon-dunk/Degree-Compass/internal/config"
	"github.com/simon-dunk/Degree-Compass/internal/logging"
	"github.com/simon-dunk/Degree-Compass/internal/repository"
	"github.com/simon-dunk/Degree-Compass/internal/service"
	"github.com/simon-dunk/Degree-Compass/migrations"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cli holds what the persistent pre-run resolves for every subcommand.
type cli struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "degreeplan",
		Short:         "Degree audits and semester plans",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			if c.verbose {
				cfg.Logging.Level = "debug"
			}
			logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			c.cfg = cfg
			c.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "degreeplan.yaml", "path to the YAML config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newServeCmd(c),
		newMigrateCmd(c),
		newSeedCmd(c),
		newImportCatalogCmd(c),
		newAuditCmd(c),
		newPlanCmd(c),
	)
	return root
}

// openStore connects to the configured database and applies migrations.
func (c *cli) openStore(ctx context.Context) (*sql.DB, repository.Settings, error) {
	settings, err := c.cfg.StoreSettings()
	if err != nil {
		return nil, repository.Settings{}, err
	}

	db, err := repository.Open(ctx, settings.Dialect, c.cfg.Database.URL, c.cfg.PoolSettings())
	if err != nil {
		return nil, repository.Settings{}, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.logger.Debug("database connection successful", zap.String("driver", string(settings.Dialect)))

	if err := migrations.Up(ctx, db, settings.Dialect, settings.Tables); err != nil {
		_ = db.Close()
		return nil, repository.Settings{}, fmt.Errorf("failed to run migrations: %w", err)
	}
	c.logger.Debug("migrations completed successfully")
	return db, settings, nil
}

func (c *cli) openApp(ctx context.Context) (*app.App, func(), error) {
	db, settings, err := c.openStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	application := app.New(db, app.Options{
		Store: settings,
		Planner: service.PlannerOptions{
			DefaultSemesters: c.cfg.Planner.DefaultSemesters,
			MaxCredits:       c.cfg.Planner.MaxCredits,
		},
	}, c.logger)
	return application, func() { _ = db.Close() }, nil
}
