package main

import (
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// workerCmd runs only the file workers, for deployments that start the
// API with --workers=false on several replicas.
func workerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the report file workers without the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			a.runWorkers(ctx)

			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", a.metrics.Handler())
				srv := &http.Server{Addr: metricsAddr, Handler: mux}
				go func() {
					if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						a.log.Error().Err(err).Msg("metrics server failed")
					}
				}()
				defer srv.Close()
			}

			a.log.Info().Dur("sweep_interval", cfg.Worker.SweepInterval).Msg("worker started")
			<-ctx.Done()
			a.log.Info().Msg("worker stopped")
			return nil
		},
	}
	cmd.Flags().String("metrics-addr", ":9091", "Address for the /metrics listener; empty disables it")
	return cmd
}
