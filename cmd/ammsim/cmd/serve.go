package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/paw-chain/pawswap/api"
	"github.com/paw-chain/pawswap/pkg/sandbox"
)

func newServeCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve [scenario]",
		Short: "Serve the HTTP API and /metrics over a chain, optionally seeded by a scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				chain *sandbox.Chain
				err   error
			)
			if len(args) == 1 {
				chain, _, err = e.runScenario(args[0])
			} else {
				chain, err = e.newChain()
			}
			if err != nil {
				return err
			}

			server, err := api.NewServer(chain, e.config.API, e.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if e.config.MetricsListen != "" {
				metrics := StartPrometheusServer(e.config.MetricsListen, e.logger)
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), e.config.API.ShutdownTimeout)
					defer cancel()
					_ = metrics.Shutdown(shutdownCtx)
				}()
			}

			e.logger.Info("serving chain", "height", chain.Height(), "api", e.config.API.Listen, "metrics", e.config.MetricsListen)
			return server.Start(ctx)
		},
	}

	apiCfg := api.DefaultConfig()
	cmd.Flags().String(FlagAPIListen, apiCfg.Listen, "API listen address")
	cmd.Flags().Int(FlagAPIRateLimitRPS, apiCfg.RateLimitRPS, "requests per second allowed per client, 0 disables limiting")
	cmd.Flags().StringSlice(FlagAPICORSOrigins, apiCfg.CORSOrigins, "allowed CORS origins")
	cmd.Flags().String(FlagMetricsListen, DefaultMetricsListen, "prometheus listen address, empty disables it")
	return cmd
}
