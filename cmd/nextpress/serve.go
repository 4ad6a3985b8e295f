package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leofalp/nextpress/internal/metrics"
	"github.com/leofalp/nextpress/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the optimization HTTP API",
		Long: `Serves POST /api/v1/optimize, GET /healthz and GET /metrics until
interrupted, then drains in-flight requests for up to the configured
shutdown timeout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			sc := a.cfg.Server

			collector := metrics.NewCollector("nextpress")
			opt, err := a.optimizer(collector)
			if err != nil {
				return err
			}

			srv := server.New(opt, server.Options{
				RequestTimeout: sc.RequestTimeout,
				MaxBodyBytes:   sc.MaxBodyBytes,
				RateLimit:      sc.RateLimit,
				RateBurst:      sc.RateBurst,
				Logger:         a.logger,
				Metrics:        collector,
			})

			a.logger.Info("starting server",
				slog.String("provider", a.cfg.Provider.Name),
				slog.String("addr", sc.Addr),
			)
			return srv.ListenAndServe(cmd.Context(), sc.Addr, sc.ShutdownTimeout)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, \":8080\")")
	return cmd
}
