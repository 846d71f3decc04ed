package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"sold2move/internal/models"
	"sold2move/internal/validation"
)

var cacheStaleAfter time.Duration

// cacheCmd groups cache inspection commands
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and invalidate cached lookups",
	Long: `Operator access to the lookup cache.

Available subcommands:
  show   - Print the cached record for a key
  delete - Invalidate a cached record so the next lookup refetches it
  stats  - Count cached records by state`,
}

var cacheShowCmd = &cobra.Command{
	Use:   "show [key]",
	Short: "Print the cached record for a key",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheShow,
}

var cacheDeleteCmd = &cobra.Command{
	Use:   "delete [key]",
	Short: "Invalidate the cached record for a key",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheDelete,
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Count cached records by state",
	Args:  cobra.NoArgs,
	RunE:  runCacheStats,
}

func init() {
	cacheStatsCmd.Flags().DurationVar(&cacheStaleAfter, "stale-after", 0, "Age after which successful records count as stale (default STALE_AFTER)")

	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheDeleteCmd)
	cacheCmd.AddCommand(cacheStatsCmd)
}

func parseKeyArg(arg string) (models.LookupKey, error) {
	if !validation.ValidateLookupKey(arg) {
		return "", fmt.Errorf("invalid lookup key %q: expected %d lowercase hex characters", arg, validation.LookupKeyLength)
	}
	return models.LookupKey(arg), nil
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	key, err := parseKeyArg(args[0])
	if err != nil {
		return err
	}

	ctx := contextOrBackground(cmd)
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	rec, err := store.GetLookup(ctx, key)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func runCacheDelete(cmd *cobra.Command, args []string) error {
	key, err := parseKeyArg(args[0])
	if err != nil {
		return err
	}

	ctx := contextOrBackground(cmd)
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.DeleteLookup(ctx, key); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", key)
	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	ctx := contextOrBackground(cmd)
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	staleAfter := cfg.StaleAfter
	if cacheStaleAfter > 0 {
		staleAfter = cacheStaleAfter
	}

	stats, err := store.LookupStats(ctx, time.Now().Add(-staleAfter))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total:     %d\n", stats.Total)
	fmt.Fprintf(out, "Succeeded: %d\n", stats.Succeeded)
	fmt.Fprintf(out, "Failed:    %d\n", stats.Failed)
	fmt.Fprintf(out, "Stale:     %d (older than %s)\n", stats.Stale, staleAfter)
	return nil
}
