package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/deckaudit/internal/logger"
	"github.com/matthieukhl/deckaudit/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the deck audit API server",
	Long: `Start the deck audit API server which provides:
- GET /api/health for monitoring
- GET /api/audit to run a full audit and return the report as JSON`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("Loading configuration...")
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer log.Sync()

	srv := server.NewServer(cfg, log)

	fmt.Printf("Starting server on %s...\n", cfg.Server.Addr)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
