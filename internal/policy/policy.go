package policy

import (
	"encoding/json"
	"fmt"
	"os"
)

// Document is the policy configuration as it appears on disk. It mirrors
// the JSON maintained by the deck owners: digit buckets keyed by digit
// strings, thresholds keyed by responsiveness level, override tables
// keyed by description or purchase-order text.
//
// A Document is raw input. Compile it into Rules before use; all
// validation happens there so a bad document fails the run before any
// query executes.
type Document struct {
	ColumnsToDisplay   []string     `json:"columns_to_display"`
	ExcludedPriorities []int        `json:"excluded_priorities"`
	CustomerInfo       CustomerInfo `json:"customer_info"`
	QueryInputs        QueryInputs  `json:"query_inputs"`
}

// CustomerInfo maps customer identifiers to display names, partitioned
// by customer class.
type CustomerInfo struct {
	IDICustomers      map[string]string `json:"idi_customers"`
	InternalCustomers map[string]string `json:"internal_customers"`
	ExternalCustomers map[string]string `json:"external_customers"`
}

// QueryInputs holds the parameters the corrector and queries run on.
type QueryInputs struct {
	MiddleDigitCustomers      map[string][]string `json:"middle_digit_cust_list"`
	EndingDigitCustomers      map[string][]string `json:"ending_digit_cust_list"`
	IgnoredCustomerPriorities map[string][]int    `json:"customer_pri_combo_to_ignore"`

	OrdersAtHighPri map[string]Threshold `json:"orders_at_high_pri"`
	OrdersAtLowPri  map[string]Threshold `json:"orders_at_low_pri"`

	ProjectFullDescriptions      map[string]int `json:"project_full_descriptions"`
	ProjectPartialDescriptions   map[string]int `json:"project_partial_descriptions"`
	ProjectFullPurchaseOrders    map[string]int `json:"project_full_purchase_orders"`
	ProjectPartialPurchaseOrders map[string]int `json:"project_partial_purchase_orders"`

	SelectHighDollarValue float64  `json:"select_high_dollar_value"`
	ExcludedVehicles      []string `json:"excluded_vehicles"`
}

// Threshold is a priority cutoff with its per-level customer exemptions.
type Threshold struct {
	Priority          int      `json:"pri"`
	ExcludedCustomers []string `json:"excluded_cust"`
}

// Load reads a policy document from the given JSON file. Decoded with
// encoding/json rather than the viper stack used for the app config:
// viper lowercases every map key, which would corrupt the
// case-sensitive level names and override match strings.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}

	return &doc, nil
}
