package main

import (
	"context"
	"fmt"

	"github.com/smallbiznis/chargedesk/internal/caseview"
	"github.com/smallbiznis/chargedesk/internal/chargeback"
	"github.com/smallbiznis/chargedesk/internal/chargeback/domain"
	"github.com/smallbiznis/chargedesk/internal/chargeback/present"
	"github.com/smallbiznis/chargedesk/internal/config"
	"github.com/smallbiznis/chargedesk/internal/observability"
	"github.com/smallbiznis/chargedesk/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type casesDeps struct {
	fx.In

	Log       *zap.Logger
	Presenter *present.Presenter
	Display   *config.DisplayConfigHolder
	Service   domain.Service `optional:"true"`
}

func casesCmd() *cobra.Command {
	var remote string

	cmd := &cobra.Command{
		Use:   "cases",
		Short: "Print the ranked case list",
		Long: `Mount the case list once and print it as a table.

Reads the local store by default. With --remote the list is fetched from
the /api/chargebacks endpoint of a running instance.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []fx.Option{config.Module, observability.Module}
			if remote == "" {
				opts = append(opts, db.Module, chargeback.Module)
			} else {
				opts = append(opts, fx.Provide(present.New))
			}

			var deps casesDeps
			opts = append(opts, fx.Populate(&deps))

			return runOnce(cmd.Context(), func(ctx context.Context) error {
				var fetcher caseview.Fetcher = caseview.ServiceFetcher{Service: deps.Service}
				if remote != "" {
					fetcher = caseview.NewHTTPFetcher(remote, nil)
				}

				view := caseview.New(fetcher, deps.Presenter, deps.Log)
				state := view.Mount(ctx)
				if err := caseview.RenderText(cmd.OutOrStdout(), view.Snapshot(), deps.Display.Get()); err != nil {
					return err
				}
				if state == caseview.StateError {
					return fmt.Errorf("case list unavailable: %w", view.Err())
				}
				return nil
			}, opts...)
		},
	}

	cmd.Flags().StringVar(&remote, "remote", "", "base URL of a running instance, e.g. http://localhost:8080")
	return cmd
}
