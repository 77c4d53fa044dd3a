package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/elokman/health-api/internal/handler/appointment"
	authhandler "github.com/elokman/health-api/internal/handler/auth"
	chathandler "github.com/elokman/health-api/internal/handler/chat"
	"github.com/elokman/health-api/internal/handler/health"
	"github.com/elokman/health-api/internal/handler/healthhistory"
	"github.com/elokman/health-api/internal/handler/medication"
	reporthandler "github.com/elokman/health-api/internal/handler/report"
	userhandler "github.com/elokman/health-api/internal/handler/user"
	"github.com/elokman/health-api/internal/router"
	authsvc "github.com/elokman/health-api/internal/service/auth"
	"github.com/elokman/health-api/internal/service/chat"
	usersvc "github.com/elokman/health-api/internal/service/user"
	"github.com/elokman/health-api/pkg/auth"
	"github.com/elokman/health-api/pkg/security"
)

const jsonBodyLimit = 1 << 20

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			withWorkers, _ := cmd.Flags().GetBool("workers")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.serve(ctx, withWorkers)
		},
	}
	cmd.Flags().Bool("workers", true, "Run the background file workers in this process")
	return cmd
}

func (a *app) serve(ctx context.Context, withWorkers bool) error {
	cfg := a.cfg
	production := cfg.App.IsProduction()
	issuer := auth.NewTokenIssuer(cfg.JWT.Secret, cfg.JWT.Expiry)

	gemini := chat.NewClient(chat.ClientConfig{
		BaseURL: cfg.AI.BaseURL,
		Model:   cfg.AI.Model,
		APIKey:  cfg.AI.APIKey,
		Timeout: cfg.AI.Timeout,
	}, a.metrics)
	chatSvc := chat.NewService(chat.NewAssembler(a.repos), gemini, chat.Options{
		APIKey:     cfg.AI.APIKey,
		Production: production,
	}, a.metrics)
	if !chat.KeyValid(cfg.AI.APIKey) {
		a.log.Warn().Bool("production", production).Msg("GEMINI_API_KEY is missing or invalid")
	}

	r, err := router.NewRouter(router.Config{
		Production:  production,
		CORSOrigins: cfg.CORS.Origins(),
		BodyLimit:   jsonBodyLimit,
		UploadsDir:  cfg.Uploads.Dir,
		ChatRate:    rate.Limit(cfg.RateLimit.ChatRPS),
		ChatBurst:   cfg.RateLimit.ChatBurst,
	}, a.log, issuer, a.metrics, router.Handlers{
		Auth:          authhandler.NewHandler(authsvc.NewService(a.repos.Users, security.NewBcryptHasher(security.DefaultCost), issuer)),
		Health:        health.NewHandler(a.repos.Pinger),
		User:          userhandler.NewHandler(usersvc.NewService(a.repos)),
		Medication:    medication.NewHandler(a.repos.Medications),
		Appointment:   appointment.NewHandler(a.repos.Appointments),
		HealthHistory: healthhistory.NewHandler(a.repos.HealthHistory),
		Report:        reporthandler.NewHandler(a.repos.Reports, a.reports, cfg.Uploads.MaxSize),
		Chat:          chathandler.NewHandler(chatSvc, !production),
	})
	if err != nil {
		return err
	}

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	if withWorkers {
		a.runWorkers(workerCtx)
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Int("port", cfg.Server.Port).Str("env", cfg.App.Env).Str("driver", cfg.Database.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down server...")
	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	a.log.Info().Msg("server exited")
	return nil
}
