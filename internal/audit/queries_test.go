package audit

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthieukhl/deckaudit/internal/deck"
	"github.com/matthieukhl/deckaudit/internal/policy"
)

func testDocument() *policy.Document {
	thresholds := func(none, sel, selPlus, soo int) map[string]policy.Threshold {
		return map[string]policy.Threshold{
			"None":       {Priority: none},
			"Select":     {Priority: sel},
			"SelectPlus": {Priority: selPlus},
			"SOOPremium": {Priority: soo},
		}
	}
	return &policy.Document{
		ColumnsToDisplay:   []string{"external_id", "tasking_priority", "sap_customer_identifier"},
		ExcludedPriorities: []int{690},
		CustomerInfo: policy.CustomerInfo{
			IDICustomers:      map[string]string{"9001": "IDI One"},
			InternalCustomers: map[string]string{"5001": "Calibration"},
			ExternalCustomers: map[string]string{"1001": "Acme Imaging"},
		},
		QueryInputs: policy.QueryInputs{
			MiddleDigitCustomers:         map[string][]string{"3": {"M3"}, "8": {"M8"}},
			EndingDigitCustomers:         map[string][]string{"1": {"E1", "9001"}, "6": {"E6"}},
			IgnoredCustomerPriorities:    map[string][]int{"IGN": {695}},
			OrdersAtHighPri:              thresholds(720, 720, 710, 700),
			OrdersAtLowPri:               thresholds(750, 760, 770, 790),
			ProjectFullDescriptions:      map[string]int{"Babylon Vivid": 781},
			ProjectPartialDescriptions:   map[string]int{"Eastern Australia": 775},
			ProjectFullPurchaseOrders:    map[string]int{"PO-7777": 761},
			ProjectPartialPurchaseOrders: map[string]int{"DAF": 765},
			SelectHighDollarValue:        40,
			ExcludedVehicles:             []string{"WV03"},
		},
	}
}

func testRules(t *testing.T) *policy.Rules {
	t.Helper()
	rules, err := testDocument().Compile()
	require.NoError(t, err)
	return rules
}

// ord builds an order that is in SSR sync and eligible on GE01, so it
// stays out of the consistency and vehicle filters unless a test says
// otherwise.
func ord(id, customer string, priority int, level deck.ResponsivenessLevel) deck.Order {
	return deck.Order{
		ID:              id,
		TaskingPriority: priority,
		SSRPriority:     priority,
		Customer:        customer,
		Responsiveness:  level,
		GE01:            true,
	}
}

func ids(orders []Order) []string {
	out := make([]string, 0, len(orders))
	for _, o := range orders {
		out = append(out, o.ID)
	}
	return out
}

func TestPrefilter(t *testing.T) {
	rules := testRules(t)

	t.Run("excluded priority never surfaces", func(t *testing.T) {
		kept := Prefilter(rules, []deck.Order{
			ord("A", "1001", 690, deck.LevelNone),
			ord("B", "1001", 700, deck.LevelNone),
		})
		require.Len(t, kept, 1)
		assert.Equal(t, "B", kept[0].ID)
	})

	t.Run("ignored customer priority combo", func(t *testing.T) {
		kept := Prefilter(rules, []deck.Order{
			ord("A", "IGN", 695, deck.LevelNone),
			ord("B", "IGN", 696, deck.LevelNone),
			ord("C", "1001", 695, deck.LevelNone),
		})
		require.Len(t, kept, 2)
		assert.Equal(t, []string{"B", "C"}, []string{kept[0].ID, kept[1].ID})
	})

	t.Run("order serviceable only by excluded vehicles", func(t *testing.T) {
		only := ord("A", "1001", 700, deck.LevelNone)
		only.GE01 = false
		only.WV03 = true

		mixed := ord("B", "1001", 700, deck.LevelNone)
		mixed.WV03 = true

		none := ord("C", "1001", 700, deck.LevelNone)
		none.GE01 = false

		kept := Prefilter(rules, []deck.Order{only, mixed, none})
		require.Len(t, kept, 2)
		assert.Equal(t, "B", kept[0].ID)
		assert.Equal(t, "C", kept[1].ID)
	})
}

func TestNewAuditor(t *testing.T) {
	rules := testRules(t)

	t.Run("empty deck after filtering is fatal", func(t *testing.T) {
		_, err := NewAuditor(rules, []deck.Order{ord("A", "1001", 690, deck.LevelNone)}, nil)
		assert.Error(t, err)

		_, err = NewAuditor(rules, nil, nil)
		assert.Error(t, err)
	})

	t.Run("unknown display column is fatal", func(t *testing.T) {
		doc := testDocument()
		doc.ColumnsToDisplay = append(doc.ColumnsToDisplay, "acquisition_mode")
		badRules, err := doc.Compile()
		require.NoError(t, err)

		_, err = NewAuditor(badRules, []deck.Order{ord("A", "1001", 700, deck.LevelNone)}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "acquisition_mode")
	})
}

func TestHighPriority(t *testing.T) {
	rules := testRules(t)

	t.Run("select threshold and exemptions", func(t *testing.T) {
		orders := []deck.Order{
			ord("S1", "1001", 715, deck.LevelSelect), // below 720, flagged
			ord("S2", "1001", 725, deck.LevelSelect), // above threshold
			ord("S3", "E1", 715, deck.LevelSelect),   // IDI class
			ord("S4", "1001", 715, deck.LevelSelect), // hotlist
			ord("S5", "1001", 715, deck.LevelNone),   // wrong level
		}
		highDollar := ord("S6", "1001", 715, deck.LevelSelect)
		highDollar.PricePerArea = 55 // above select_high_dollar_value
		orders = append(orders, highDollar)

		repriced := ord("S7", "1001", 715, deck.LevelSelect)
		repriced.Description = "Babylon Vivid"
		orders = append(orders, repriced)

		auditor, err := NewAuditor(rules, orders, []string{"S4"})
		require.NoError(t, err)

		assert.Equal(t, []string{"S1"}, ids(auditor.HighPriority(deck.LevelSelect)))
	})

	t.Run("selectplus keeps hotlist and IDI orders", func(t *testing.T) {
		orders := []deck.Order{
			ord("P1", "E1", 705, deck.LevelSelectPlus),
			ord("P2", "1001", 705, deck.LevelSelectPlus),
		}
		auditor, err := NewAuditor(rules, orders, []string{"P2"})
		require.NoError(t, err)

		assert.Equal(t, []string{"P2", "P1"}, ids(auditor.HighPriority(deck.LevelSelectPlus)))
	})

	t.Run("per-level excluded customers", func(t *testing.T) {
		doc := testDocument()
		doc.QueryInputs.OrdersAtHighPri["None"] = policy.Threshold{
			Priority:          720,
			ExcludedCustomers: []string{"2002"},
		}
		exRules, err := doc.Compile()
		require.NoError(t, err)

		orders := []deck.Order{
			ord("N1", "2002", 710, deck.LevelNone),
			ord("N2", "1001", 710, deck.LevelNone),
		}
		auditor, err := NewAuditor(exRules, orders, nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"N2"}, ids(auditor.HighPriority(deck.LevelNone)))
	})
}

func TestLowPriority(t *testing.T) {
	rules := testRules(t)

	t.Run("threshold and middle-digit pin", func(t *testing.T) {
		orders := []deck.Order{
			ord("L1", "1001", 784, deck.LevelNone), // above 750, flagged
			ord("L2", "M8", 784, deck.LevelNone),   // pinned to middle digit 8
			ord("L3", "M8", 780, deck.LevelNone),   // ending 0 is not pinned
			ord("L4", "M8", 764, deck.LevelNone),   // wrong middle digit, flagged
			ord("L5", "1001", 745, deck.LevelNone), // below threshold
		}
		repriced := ord("L6", "1001", 784, deck.LevelNone)
		repriced.PurchaseOrder = "DAF-12"
		orders = append(orders, repriced)

		auditor, err := NewAuditor(rules, orders, nil)
		require.NoError(t, err)

		assert.Equal(t, []string{"L1", "L3", "L4"}, ids(auditor.LowPriority(deck.LevelNone)))
	})
}

func TestEndingDigitMismatch(t *testing.T) {
	rules := testRules(t)

	orders := []deck.Order{
		ord("D1", "M3", 712, deck.LevelNone),       // suggested 734
		ord("D2", "E1", 705, deck.LevelNone),       // suggested 701
		ord("D3", "1001", 704, deck.LevelNone),     // suggested 704, in policy
		ord("D4", "E6", 705, deck.LevelSOOPremium), // mismatch but exempt tier
	}
	auditor, err := NewAuditor(rules, orders, nil)
	require.NoError(t, err)

	t.Run("flags whole-priority differences except SOOPremium", func(t *testing.T) {
		assert.Equal(t, []string{"D2", "D1"}, ids(auditor.EndingDigitMismatch()))
	})

	t.Run("directional partitions are disjoint and exhaustive", func(t *testing.T) {
		mismatch := auditor.EndingDigitMismatch()

		var shouldHave, shouldNot []string
		for digit := 0; digit <= 9; digit++ {
			shouldHave = append(shouldHave, ids(auditor.ShouldHaveDigit(digit))...)
			shouldNot = append(shouldNot, ids(auditor.ShouldNotHaveDigit(digit))...)
		}
		assert.ElementsMatch(t, ids(mismatch), shouldHave)
		assert.ElementsMatch(t, ids(mismatch), shouldNot)

		for _, o := range mismatch {
			current := o.TaskingPriority % 10
			suggested := o.SuggestedPriority % 10
			if current == suggested {
				continue
			}
			assert.NotContains(t, ids(auditor.ShouldHaveDigit(current)), o.ID)
			assert.NotContains(t, ids(auditor.ShouldNotHaveDigit(suggested)), o.ID)
		}
	})
}

func TestTaskingSSRMismatch(t *testing.T) {
	rules := testRules(t)

	synced := ord("R1", "1001", 744, deck.LevelNone)
	drifted := ord("R2", "1001", 744, deck.LevelNone)
	drifted.SSRPriority = 734

	auditor, err := NewAuditor(rules, []deck.Order{synced, drifted}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"R2"}, ids(auditor.TaskingSSRMismatch()))
}

func TestResultOrdering(t *testing.T) {
	rules := testRules(t)

	orders := []deck.Order{
		ord("Z", "3003", 710, deck.LevelNone),
		ord("A", "2002", 710, deck.LevelNone),
		ord("B", "2002", 711, deck.LevelNone),
		ord("C", "1001", 710, deck.LevelNone),
	}
	auditor, err := NewAuditor(rules, orders, nil)
	require.NoError(t, err)

	results := auditor.HighPriority(deck.LevelNone)
	require.Len(t, results, 4)

	customers := make([]string, 0, len(results))
	for _, o := range results {
		customers = append(customers, o.Customer)
	}
	assert.True(t, sort.StringsAreSorted(customers), "results not sorted by customer: %v", customers)
	assert.Equal(t, []string{"C", "A", "B", "Z"}, ids(results))
}
