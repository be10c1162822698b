package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/a89529294/project-assembly-monorepo-sub001/internal/app"
	"github.com/a89529294/project-assembly-monorepo-sub001/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var cfg *config.Config

	root := &cobra.Command{
		Use:          "server",
		Short:        "ERP API server",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "path to configuration file")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cfg)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database tables",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cfg)
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Create the admin role and account",
			Long: `Create the admin role and the admin account unless they exist.

When auth.admin.password is empty a password is generated and printed once.`,
			RunE: func(cmd *cobra.Command, args []string) error {
				return seed(cmd.Context(), cfg, cmd.OutOrStdout())
			},
		},
	)
	return root
}

func serve(cfg *config.Config) error {
	a, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	return a.Run()
}

// withDatabase runs fn against a migrated database and closes it afterwards.
func withDatabase(cfg *config.Config, fn func(*gorm.DB, *slog.Logger) error) error {
	log, err := config.SetupLogger(&cfg.Log)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer log.Close()

	db, err := config.SetupDatabase(&cfg.Database, log.Logger)
	if err != nil {
		return fmt.Errorf("setup database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if err := app.Migrate(db); err != nil {
		return err
	}
	return fn(db, log.Logger)
}

func migrate(cfg *config.Config) error {
	return withDatabase(cfg, func(_ *gorm.DB, log *slog.Logger) error {
		log.Info("migration completed")
		return nil
	})
}

func seed(ctx context.Context, cfg *config.Config, out io.Writer) error {
	return withDatabase(cfg, func(db *gorm.DB, _ *slog.Logger) error {
		c, err := app.NewComponents(ctx, cfg, db)
		if err != nil {
			return err
		}
		defer c.Close()
		return app.Seed(ctx, cfg, db, c.RBAC, out)
	})
}
