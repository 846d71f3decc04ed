package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sold2move/internal/config"
	"sold2move/internal/logging"
)

var (
	// Global flags
	logLevel   string
	configFile string

	// Loaded in PersistentPreRunE
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sold2move",
	Short: "Sold2Move homeowner lookup service",
	Long: `Resolves US property addresses to homeowner contact data through a
skip-trace provider, with a persisted read-through cache in front of it.

Configuration is read from environment variables (and a .env file when present).
Static API clients and extra provider headers live in the YAML config file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}
		if configFile != "" {
			cfg.ConfigFile = configFile
		}
		logging.Setup(cfg.LogLevel, cfg.LogFormat, cfg.IsDev())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML config file (overrides CONFIG_FILE)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(cacheCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
