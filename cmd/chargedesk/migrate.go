package main

import (
	"context"
	"fmt"

	"github.com/smallbiznis/chargedesk/internal/clock"
	"github.com/smallbiznis/chargedesk/internal/config"
	"github.com/smallbiznis/chargedesk/internal/migration"
	"github.com/smallbiznis/chargedesk/internal/observability"
	"github.com/smallbiznis/chargedesk/internal/seed"
	"github.com/smallbiznis/chargedesk/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type storeDeps struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Log   *zap.Logger
	Clock clock.Clock
}

func storeOptions(deps *storeDeps) []fx.Option {
	return []fx.Option{
		config.Module,
		observability.Module,
		db.Module,
		clock.Module,
		fx.Populate(deps),
	}
}

func migrate(ctx context.Context, deps storeDeps) error {
	sqlDB, err := deps.DB.DB()
	if err != nil {
		return err
	}
	if err := migration.RunMigrations(ctx, sqlDB, deps.Cfg.DBType); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	deps.Log.Info("migrations applied", zap.String("dialect", deps.Cfg.DBType))
	return nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			var deps storeDeps
			return runOnce(cmd.Context(), func(ctx context.Context) error {
				return migrate(ctx, deps)
			}, storeOptions(&deps)...)
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Apply migrations and load the synthetic case dataset",
		Long: `Apply migrations and replace every case table with a deterministic
synthetic dataset. Intended for local development only.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var deps storeDeps
			return runOnce(cmd.Context(), func(ctx context.Context) error {
				if err := migrate(ctx, deps); err != nil {
					return err
				}
				stats, err := seed.Load(ctx, deps.DB, deps.Clock.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d merchants, %d customers, %d transactions, %d chargebacks, %d events\n",
					stats.Merchants, stats.Customers, stats.Transactions, stats.Chargebacks, stats.Events)
				return nil
			}, storeOptions(&deps)...)
		},
	}
}
