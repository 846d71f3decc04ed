package server

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"sold2move/internal/handlers/api"
	"sold2move/internal/lookup"
	"sold2move/internal/middleware"
)

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(store lookup.ManagedStore, service *lookup.Service, auth *middleware.AuthMiddleware) error {
	requireAuth, err := s.authHandler(auth)
	if err != nil {
		return err
	}

	healthHandler := api.NewHealthHandler(store)
	lookupHandler := api.NewLookupHandler(service)
	cacheHandler := api.NewCacheHandler(store)

	// Probes and metrics are public
	s.App.Get("/health", healthHandler.Live)
	s.App.Get("/ready", healthHandler.Ready)
	s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := s.App.Group("/api/v1", requireAuth)
	v1.Post("/homeowner-lookup", lookupHandler.Lookup)
	v1.Get("/lookups/:key", cacheHandler.Get)
	v1.Delete("/lookups/:key", cacheHandler.Delete)

	// Path used by existing edge-function clients
	s.App.Post("/functions/v1/homeowner-lookup", requireAuth, lookupHandler.Lookup)

	return nil
}

// authHandler picks the auth middleware for API routes. Anonymous access is only
// allowed in development when no auth method is configured.
func (s *Server) authHandler(auth *middleware.AuthMiddleware) (fiber.Handler, error) {
	if auth != nil && auth.Enabled() {
		return auth.RequireAuth, nil
	}
	if !s.Cfg.IsDev() {
		return nil, errors.New("no API authentication configured: set AUTH_ISSUER and AUTH_JWKS_URL or declare api_clients in the config file")
	}
	logrus.WithField("component", "auth").Warn("No API authentication configured, allowing anonymous access in development")
	if auth == nil {
		auth = middleware.NewAuthMiddleware(nil, nil)
	}
	return auth.AllowAnonymous, nil
}
