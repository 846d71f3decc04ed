package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// migrateCmd applies schema migrations
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending cache store migrations",
	Long: `Applies the embedded migrations for the configured CACHE_BACKEND and exits.
serve applies them on startup as well; this command is for deploy pipelines.`,
	Args: cobra.NoArgs,
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	store, err := openDurable(contextOrBackground(cmd), cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	logrus.WithFields(logrus.Fields{
		"component": "migrate",
		"backend":   cfg.CacheBackend,
	}).Info("Migrations completed successfully")
	return nil
}
