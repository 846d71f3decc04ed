package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"sold2move/internal/config"
	"sold2move/internal/db"
	"sold2move/internal/db/hotcache"
	"sold2move/internal/db/sqlite"
	"sold2move/internal/lookup"
	"sold2move/internal/skiptrace"
)

// openDurable opens the configured durable store and applies migrations.
func openDurable(ctx context.Context, cfg *config.Config) (lookup.ManagedStore, error) {
	switch cfg.CacheBackend {
	case config.BackendSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return store, nil
	case config.BackendPostgres:
		database, err := db.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to database: %w", err)
		}
		if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
			database.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		return database, nil
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}
}

// openStore opens the durable store and layers the Redis hot tier over it when configured.
func openStore(ctx context.Context, cfg *config.Config) (lookup.ManagedStore, error) {
	store, err := openDurable(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.RedisURL == "" {
		return store, nil
	}
	log := logrus.WithField("component", "wire")
	hot, err := hotcache.NewRedis(store, cfg.RedisURL, cfg.HotCacheTTL)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, serving from the durable store only")
		return store, nil
	}
	log.WithField("ttl", cfg.HotCacheTTL).Info("Redis hot cache enabled")
	return hot, nil
}

// newProvider builds the skip-trace client from env settings and YAML headers.
func newProvider(cfg *config.Config, yamlCfg *config.YAMLConfig) (*skiptrace.Client, error) {
	return skiptrace.NewClient(skiptrace.ClientConfig{
		BaseURL: cfg.ProviderBaseURL,
		Path:    cfg.ProviderSkipTracePath,
		APIKey:  cfg.ProviderAPIKey,
		Timeout: cfg.ProviderTimeout,
		Headers: yamlCfg.ProviderHeaders(),
	})
}

// loadYAML loads the optional YAML overlay.
func loadYAML(cfg *config.Config) (*config.YAMLConfig, error) {
	yamlCfg, err := config.LoadYAMLConfig(cfg.ConfigFile)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", cfg.ConfigFile, err)
	}
	return yamlCfg, nil
}
