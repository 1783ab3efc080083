package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePolicy = `{
  "columns_to_display": ["external_id", "tasking_priority", "sap_customer_identifier"],
  "excluded_priorities": [690],
  "customer_info": {
    "idi_customers": {"9001": "IDI One"},
    "internal_customers": {"5001": "Calibration"},
    "external_customers": {"1001": "Acme Imaging"}
  },
  "query_inputs": {
    "middle_digit_cust_list": {"3": ["M3"]},
    "ending_digit_cust_list": {"1": ["E1"]},
    "customer_pri_combo_to_ignore": {"IGN": [695]},
    "orders_at_high_pri": {
      "None": {"pri": 720},
      "Select": {"pri": 720, "excluded_cust": ["2002"]},
      "SelectPlus": {"pri": 710},
      "SOOPremium": {"pri": 700}
    },
    "orders_at_low_pri": {
      "None": {"pri": 750},
      "Select": {"pri": 760},
      "SelectPlus": {"pri": 770},
      "SOOPremium": {"pri": 790}
    },
    "project_full_descriptions": {"Babylon Vivid": 781},
    "project_partial_descriptions": {"Eastern Australia": 775},
    "project_full_purchase_orders": {"PO-7777": 761},
    "project_partial_purchase_orders": {"DAF": 765},
    "select_high_dollar_value": 40,
    "excluded_vehicles": ["WV03"]
  }
}`

func TestLoad(t *testing.T) {
	t.Run("reads the on-disk schema", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.json")
		require.NoError(t, os.WriteFile(path, []byte(samplePolicy), 0o644))

		doc, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, []int{690}, doc.ExcludedPriorities)
		assert.Equal(t, "Acme Imaging", doc.CustomerInfo.ExternalCustomers["1001"])
		assert.Equal(t, []string{"M3"}, doc.QueryInputs.MiddleDigitCustomers["3"])
		assert.Equal(t, 720, doc.QueryInputs.OrdersAtHighPri["Select"].Priority)
		assert.Equal(t, []string{"2002"}, doc.QueryInputs.OrdersAtHighPri["Select"].ExcludedCustomers)
		assert.Equal(t, 781, doc.QueryInputs.ProjectFullDescriptions["Babylon Vivid"])
		assert.Equal(t, 40.0, doc.QueryInputs.SelectHighDollarValue)

		_, err = doc.Compile()
		assert.NoError(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		assert.Error(t, err)
	})

	t.Run("malformed json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "policy.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
