package cmd

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/deckaudit/internal/audit"
	"github.com/matthieukhl/deckaudit/internal/config"
	"github.com/matthieukhl/deckaudit/internal/ingest"
	"github.com/matthieukhl/deckaudit/internal/policy"
)

var (
	ordersPath  string
	hotlistPath string
	policyPath  string
	resultsDir  string
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Run the deck audit and write the report files",
	Long: `Run the full deck audit: load the policy document and the active
orders, compute the suggested priority for every order, run all anomaly
queries, and write the text report and the changes-needed CSV into the
results directory.`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)

	auditCmd.Flags().StringVar(&ordersPath, "orders", "", "Path to the orders CSV (overrides config)")
	auditCmd.Flags().StringVar(&hotlistPath, "hotlist", "", "Path to the hotlist CSV (overrides config)")
	auditCmd.Flags().StringVar(&policyPath, "policy", "", "Path to the policy JSON (overrides config)")
	auditCmd.Flags().StringVar(&resultsDir, "out", "", "Results directory (overrides config)")
}

func runAudit(cmd *cobra.Command, args []string) error {
	fmt.Println("Loading configuration...")
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	applyFlagOverrides(cfg)

	fmt.Println("Loading policy document...")
	doc, err := policy.Load(cfg.Audit.PolicyPath)
	if err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}
	rules, err := doc.Compile()
	if err != nil {
		return fmt.Errorf("failed to compile policy: %w", err)
	}

	fmt.Println("Loading active orders...")
	orders, hotlist, err := ingest.Load(context.Background(), cfg)
	if err != nil {
		return fmt.Errorf("failed to load deck: %w", err)
	}
	fmt.Printf("Loaded %d orders (%d hotlist entries)\n", len(orders), len(hotlist))

	auditor, err := audit.NewAuditor(rules, orders, hotlist)
	if err != nil {
		return fmt.Errorf("failed to build auditor: %w", err)
	}

	fmt.Println("Running queries...")
	report := auditor.BuildReport()

	textPath, csvPath, err := writeReport(cfg, report)
	if err != nil {
		return err
	}

	fmt.Printf("Audited %d orders, %d need a priority change\n", len(auditor.Orders()), len(report.Changes))
	fmt.Printf("Report written to %s\n", textPath)
	fmt.Printf("Change table written to %s\n", csvPath)
	return nil
}

func applyFlagOverrides(cfg *config.Config) {
	if ordersPath != "" {
		cfg.Audit.OrdersPath = ordersPath
	}
	if hotlistPath != "" {
		cfg.Audit.HotlistPath = hotlistPath
	}
	if policyPath != "" {
		cfg.Audit.PolicyPath = policyPath
	}
	if resultsDir != "" {
		cfg.Audit.ResultsDir = resultsDir
	}
}

// writeReport persists the text report and the change-table CSV, named
// "<user> <timestamp> Text.txt" / "<user> <timestamp> Table.csv" like
// the rest of the audit tooling expects.
func writeReport(cfg *config.Config, report *audit.Report) (string, string, error) {
	if err := os.MkdirAll(cfg.Audit.ResultsDir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create results directory: %w", err)
	}

	user := cfg.Audit.Username
	if user == "" {
		user = "audit"
	}
	timestamp := time.Now().Format("2006-01-02 15-04-05")

	textPath := filepath.Join(cfg.Audit.ResultsDir, fmt.Sprintf("%s %s Text.txt", user, timestamp))
	if err := os.WriteFile(textPath, []byte(report.Text()), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write text report: %w", err)
	}

	csvPath := filepath.Join(cfg.Audit.ResultsDir, fmt.Sprintf("%s %s Table.csv", user, timestamp))
	f, err := os.Create(csvPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create change table: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	if err := writer.WriteAll(report.ChangeTable()); err != nil {
		return "", "", fmt.Errorf("failed to write change table: %w", err)
	}

	return textPath, csvPath, nil
}
