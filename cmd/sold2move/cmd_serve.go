package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"sold2move/internal/jobs"
	"sold2move/internal/lookup"
	"sold2move/internal/metrics"
	"sold2move/internal/middleware"
	"sold2move/internal/server"
)

// serveCmd runs the HTTP service
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the homeowner lookup HTTP service",
	Long: `Starts the JSON API, applies pending migrations and runs the stale entry reporter.

Endpoints:
  POST   /api/v1/homeowner-lookup
  POST   /functions/v1/homeowner-lookup
  GET    /api/v1/lookups/:key
  DELETE /api/v1/lookups/:key
  GET    /health, /ready, /metrics`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log := logrus.WithField("component", "serve")

	if err := cfg.Validate(); err != nil {
		return err
	}
	yamlCfg, err := loadYAML(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	log.WithField("backend", cfg.CacheBackend).Info("Cache store ready")

	provider, err := newProvider(cfg, yamlCfg)
	if err != nil {
		return err
	}

	metrics.Init(store)
	service := lookup.NewService(store, provider)

	var verifier middleware.TokenVerifier
	if cfg.IsAuthEnabled() {
		verifier = middleware.NewOIDCVerifier(ctx, cfg.AuthIssuer, cfg.AuthJWKSURL, cfg.AuthAudience)
		log.WithField("issuer", cfg.AuthIssuer).Info("JWT authentication enabled")
	}
	auth := middleware.NewAuthMiddleware(yamlCfg, verifier)

	srv := server.New(cfg)
	if err := srv.RegisterRoutes(store, service, auth); err != nil {
		return err
	}

	if cfg.StaleReportInterval > 0 {
		reporter := jobs.NewStaleReporter(store, cfg.StaleReportInterval, cfg.StaleAfter)
		go reporter.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")
	if err := srv.Shutdown(); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
		return err
	}
	log.Info("Server exited")
	return nil
}

// contextOrBackground returns the command context, which is nil when a run function is called directly.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
