package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/deckaudit/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "deckaudit",
	Short: "Deck Audit - tasking deck priority auditing",
	Long: `Deck Audit interrogates the active tasking order deck and reports
orders whose priority deviates from business policy.

It applies the priority-correction rules to every order, runs the
too-high/too-low, ending-digit, and SSR-consistency queries, and writes
a text report plus a CSV table of the changes needed.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadAppConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}
