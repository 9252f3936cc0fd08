package main

import (
	"github.com/smallbiznis/chargedesk/internal/assistant"
	"github.com/smallbiznis/chargedesk/internal/chargeback"
	"github.com/smallbiznis/chargedesk/internal/clock"
	"github.com/smallbiznis/chargedesk/internal/config"
	"github.com/smallbiznis/chargedesk/internal/migration"
	"github.com/smallbiznis/chargedesk/internal/observability"
	"github.com/smallbiznis/chargedesk/internal/server"
	"github.com/smallbiznis/chargedesk/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and dashboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fx.New(
				// Core Infrastructure
				config.Module,
				observability.Module,
				db.Module,
				migration.Module,
				clock.Module,

				// Functional Domains
				chargeback.Module,
				assistant.Module,

				server.Module,
			)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
}
