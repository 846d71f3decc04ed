package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sold2move/internal/lookup"
	"sold2move/internal/models"
	"sold2move/internal/validation"
)

// addressFlags holds the address flags shared by lookup and key.
type addressFlags struct {
	propertyID string
	street     string
	city       string
	state      string
	zip        string
}

func (f *addressFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.street, "street", "", "Street address")
	cmd.Flags().StringVar(&f.city, "city", "", "City")
	cmd.Flags().StringVar(&f.state, "state", "", "State")
	cmd.Flags().StringVar(&f.zip, "zip", "", "ZIP code")
}

func (f *addressFlags) request() models.LookupRequest {
	return models.LookupRequest{
		PropertyID: f.propertyID,
		Street:     f.street,
		City:       f.city,
		State:      f.state,
		Zip:        f.zip,
	}
}

var (
	lookupAddr addressFlags
	lookupJSON bool

	keyAddr addressFlags
)

// lookupCmd performs one orchestrated lookup from the terminal
var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up the homeowner for an address",
	Long: `Runs the same cache-then-provider flow as the HTTP endpoint and prints the result.
Successful provider results are written to the cache.

Example:
  sold2move lookup --street "123 Main St" --city Austin --state TX --zip 78701`,
	Args: cobra.NoArgs,
	RunE: runLookup,
}

// keyCmd prints the normalized cache key for an address
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Print the normalized cache key for an address",
	Args:  cobra.NoArgs,
	RunE:  runKey,
}

func init() {
	lookupAddr.register(lookupCmd)
	lookupCmd.Flags().StringVar(&lookupAddr.propertyID, "property-id", "", "Property id checked before the address key")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "Print the JSON response envelope")

	keyAddr.register(keyCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	if err := cfg.ValidateProvider(); err != nil {
		return err
	}
	yamlCfg, err := loadYAML(cfg)
	if err != nil {
		return err
	}

	ctx := contextOrBackground(cmd)
	store, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	provider, err := newProvider(cfg, yamlCfg)
	if err != nil {
		return err
	}

	result, err := lookup.NewService(store, provider).Lookup(ctx, lookupAddr.request())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if lookupJSON {
		resp := models.LookupResponse{
			Success: result.Success,
			Data:    models.LookupData{Homeowner: result.Homeowner, FromCache: result.FromCache},
		}
		if !result.Success {
			resp.Message = "No homeowner data found for this address"
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	printHomeowner(cmd, result)
	return nil
}

func printHomeowner(cmd *cobra.Command, result *lookup.Result) {
	out := cmd.OutOrStdout()
	source := "provider"
	if result.FromCache {
		source = "cache"
	}
	fmt.Fprintf(out, "Key:       %s\n", result.Key)
	fmt.Fprintf(out, "Source:    %s\n", source)
	if !result.Success {
		fmt.Fprintln(out, "No homeowner data found for this address")
		return
	}

	h := result.Homeowner
	if h.FullName != nil {
		fmt.Fprintf(out, "Name:      %s\n", *h.FullName)
	}
	for _, e := range h.Emails {
		fmt.Fprintf(out, "Email:     %s (tested: %t)\n", e.Address, e.Verified)
	}
	for _, p := range h.PhoneNumbers {
		flags := []string{p.Type}
		if p.DoNotCall {
			flags = append(flags, "dnc")
		}
		fmt.Fprintf(out, "Phone:     %s [%s] score %d\n", p.Number, strings.Join(flags, ","), p.ConfidenceScore)
	}
	fmt.Fprintf(out, "Litigator: %t\n", h.IsLitigator)
}

func runKey(cmd *cobra.Command, args []string) error {
	req := keyAddr.request()
	addr := req.Address()
	if ok, missing := validation.ValidateAddress(addr); !ok {
		return fmt.Errorf("missing required address fields: %s", strings.Join(missing, ", "))
	}
	fmt.Fprintln(cmd.OutOrStdout(), validation.NormalizeAddress(addr))
	return nil
}
