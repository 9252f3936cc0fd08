package migration

import (
	"context"

	"github.com/smallbiznis/chargedesk/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(lc fx.Lifecycle, conn *gorm.DB, cfg config.Config, log *zap.Logger) {
		if !cfg.RunMigrations {
			return
		}
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				sqlDB, err := conn.DB()
				if err != nil {
					return err
				}
				if err := RunMigrations(ctx, sqlDB, cfg.DBType); err != nil {
					return err
				}
				log.Named("migration").Info("schema up to date", zap.String("dialect", cfg.DBType))
				return nil
			},
		})
	}),
)
