package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matthieukhl/deckaudit/internal/deck"
	"github.com/matthieukhl/deckaudit/internal/policy"
)

var checkPolicyPath string

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate the policy document",
	Long: `Load and compile the policy document without running an audit. This
catches configuration errors early: unknown digit keys, a customer in
two digit buckets, missing responsiveness thresholds, or override
priorities outside the valid range.`,
	RunE: checkConfig,
}

func init() {
	rootCmd.AddCommand(checkConfigCmd)

	checkConfigCmd.Flags().StringVar(&checkPolicyPath, "policy", "", "Path to the policy JSON (overrides config)")
}

func checkConfig(cmd *cobra.Command, args []string) error {
	path := checkPolicyPath
	if path == "" {
		cfg, err := loadAppConfig()
		if err != nil {
			return err
		}
		path = cfg.Audit.PolicyPath
	}

	fmt.Printf("Checking policy document %s...\n", path)
	doc, err := policy.Load(path)
	if err != nil {
		return fmt.Errorf("failed to load policy: %w", err)
	}

	rules, err := doc.Compile()
	if err != nil {
		return fmt.Errorf("policy validation failed: %w", err)
	}

	fmt.Println("Policy document is valid")
	fmt.Printf("  %d middle-digit buckets, %d ending-digit buckets\n",
		len(doc.QueryInputs.MiddleDigitCustomers), len(doc.QueryInputs.EndingDigitCustomers))
	fmt.Printf("  %d excluded priorities, %d ignored customer/priority combos\n",
		len(doc.ExcludedPriorities), len(doc.QueryInputs.IgnoredCustomerPriorities))
	fmt.Printf("  %d description overrides (%d partial), %d purchase-order overrides (%d partial)\n",
		len(doc.QueryInputs.ProjectFullDescriptions), len(doc.QueryInputs.ProjectPartialDescriptions),
		len(doc.QueryInputs.ProjectFullPurchaseOrders), len(doc.QueryInputs.ProjectPartialPurchaseOrders))
	for _, level := range deck.Levels {
		fmt.Printf("  %s: high threshold %d, low threshold %d\n",
			level.Display(), rules.HighLimit(level).Priority, rules.LowLimit(level).Priority)
	}
	return nil
}
