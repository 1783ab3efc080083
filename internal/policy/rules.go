package policy

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/matthieukhl/deckaudit/internal/deck"
)

// Digit lookup order from the source policy. The order is significant
// only for surfacing ambiguous membership; a valid document has each
// customer in at most one bucket per table.
var (
	middleDigitOrder = []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 0}
	endingDigitOrder = []int{1, 2, 6, 7, 8, 9, 0}
)

// SuggestedPriorityColumn is the derived column appended to the
// configured display columns.
const SuggestedPriorityColumn = "suggested_priority"

// digitRule pins a set of customers to one digit.
type digitRule struct {
	digit     int
	customers map[string]bool
}

// digitTable is an ordered rule list with first-match-wins semantics.
type digitTable []digitRule

func (t digitTable) lookup(customer string) (int, bool) {
	for _, rule := range t {
		if rule.customers[customer] {
			return rule.digit, true
		}
	}
	return 0, false
}

// Limit is a compiled threshold.
type Limit struct {
	Priority          int
	excludedCustomers map[string]bool
}

// CustomerExcluded reports whether the customer is exempt from this limit.
func (l Limit) CustomerExcluded(customer string) bool {
	return l.excludedCustomers[customer]
}

// Rules is the validated, immutable form of a policy Document. All audit
// components read policy through Rules; nothing mutates it after Compile.
type Rules struct {
	middle digitTable
	ending digitTable

	excludedPriorities map[int]bool
	ignoredCombos      map[string]map[int]bool
	excludedVehicles   map[string]bool

	highPri map[deck.ResponsivenessLevel]Limit
	lowPri  map[deck.ResponsivenessLevel]Limit

	fullDescriptions      map[string]int
	partialDescriptions   map[string]int
	partialDescKeys       []string
	fullPurchaseOrders    map[string]int
	partialPurchaseOrders map[string]int
	partialPOKeys         []string

	customerNames map[string]string

	selectHighDollar float64
	displayColumns   []string
}

// Compile validates the document and builds the rule tables.
func (d *Document) Compile() (*Rules, error) {
	middle, err := buildDigitTable(d.QueryInputs.MiddleDigitCustomers, middleDigitOrder, "middle_digit_cust_list")
	if err != nil {
		return nil, err
	}
	ending, err := buildDigitTable(d.QueryInputs.EndingDigitCustomers, endingDigitOrder, "ending_digit_cust_list")
	if err != nil {
		return nil, err
	}

	highPri, err := buildLimits(d.QueryInputs.OrdersAtHighPri, "orders_at_high_pri")
	if err != nil {
		return nil, err
	}
	lowPri, err := buildLimits(d.QueryInputs.OrdersAtLowPri, "orders_at_low_pri")
	if err != nil {
		return nil, err
	}

	for name, overrides := range map[string]map[string]int{
		"project_full_descriptions":       d.QueryInputs.ProjectFullDescriptions,
		"project_partial_descriptions":    d.QueryInputs.ProjectPartialDescriptions,
		"project_full_purchase_orders":    d.QueryInputs.ProjectFullPurchaseOrders,
		"project_partial_purchase_orders": d.QueryInputs.ProjectPartialPurchaseOrders,
	} {
		for key, pri := range overrides {
			if pri < 700 || pri >= 810 {
				return nil, fmt.Errorf("%s[%q]: override priority %d outside [700, 810)", name, key, pri)
			}
		}
	}

	ignored := make(map[string]map[int]bool, len(d.QueryInputs.IgnoredCustomerPriorities))
	for customer, priorities := range d.QueryInputs.IgnoredCustomerPriorities {
		set := make(map[int]bool, len(priorities))
		for _, p := range priorities {
			set[p] = true
		}
		ignored[customer] = set
	}

	names := make(map[string]string)
	for _, partition := range []map[string]string{
		d.CustomerInfo.ExternalCustomers,
		d.CustomerInfo.InternalCustomers,
		d.CustomerInfo.IDICustomers,
	} {
		for id, name := range partition {
			names[id] = name
		}
	}

	r := &Rules{
		middle:                middle,
		ending:                ending,
		excludedPriorities:    toIntSet(d.ExcludedPriorities),
		ignoredCombos:         ignored,
		excludedVehicles:      toStringSet(d.QueryInputs.ExcludedVehicles),
		highPri:               highPri,
		lowPri:                lowPri,
		fullDescriptions:      d.QueryInputs.ProjectFullDescriptions,
		partialDescriptions:   d.QueryInputs.ProjectPartialDescriptions,
		partialDescKeys:       sortedKeys(d.QueryInputs.ProjectPartialDescriptions),
		fullPurchaseOrders:    d.QueryInputs.ProjectFullPurchaseOrders,
		partialPurchaseOrders: d.QueryInputs.ProjectPartialPurchaseOrders,
		partialPOKeys:         sortedKeys(d.QueryInputs.ProjectPartialPurchaseOrders),
		customerNames:         names,
		selectHighDollar:      d.QueryInputs.SelectHighDollarValue,
		displayColumns:        append(append([]string{}, d.ColumnsToDisplay...), SuggestedPriorityColumn),
	}

	return r, nil
}

// buildDigitTable converts a digit-keyed customer map into an ordered
// rule table, rejecting unknown digit keys and customers that appear in
// more than one bucket.
func buildDigitTable(buckets map[string][]string, order []int, name string) (digitTable, error) {
	allowed := make(map[int]bool, len(order))
	for _, d := range order {
		allowed[d] = true
	}
	for key := range buckets {
		digit, err := strconv.Atoi(key)
		if err != nil || !allowed[digit] {
			return nil, fmt.Errorf("%s: invalid digit key %q", name, key)
		}
	}

	seen := make(map[string]int)
	table := make(digitTable, 0, len(order))
	for _, digit := range order {
		customers := buckets[strconv.Itoa(digit)]
		if len(customers) == 0 {
			continue
		}
		set := make(map[string]bool, len(customers))
		for _, c := range customers {
			if prev, ok := seen[c]; ok {
				return nil, fmt.Errorf("%s: customer %q appears under digits %d and %d", name, c, prev, digit)
			}
			seen[c] = digit
			set[c] = true
		}
		table = append(table, digitRule{digit: digit, customers: set})
	}
	return table, nil
}

// buildLimits requires a threshold entry for every responsiveness level.
func buildLimits(thresholds map[string]Threshold, name string) (map[deck.ResponsivenessLevel]Limit, error) {
	limits := make(map[deck.ResponsivenessLevel]Limit, len(deck.Levels))
	for key, th := range thresholds {
		level, err := deck.ParseResponsiveness(key)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		limits[level] = Limit{
			Priority:          th.Priority,
			excludedCustomers: toStringSet(th.ExcludedCustomers),
		}
	}
	for _, level := range deck.Levels {
		if _, ok := limits[level]; !ok {
			return nil, fmt.Errorf("%s: missing threshold for level %q", name, level)
		}
	}
	return limits, nil
}

// MiddleDigitFor returns the forced middle digit for a customer, if any.
func (r *Rules) MiddleDigitFor(customer string) (int, bool) {
	return r.middle.lookup(customer)
}

// EndingDigitFor returns the forced ending digit for a customer, if any.
func (r *Rules) EndingDigitFor(customer string) (int, bool) {
	return r.ending.lookup(customer)
}

// IsIDICustomer reports whether the customer belongs to the IDI class
// (the ending-digit-1 group).
func (r *Rules) IsIDICustomer(customer string) bool {
	digit, ok := r.ending.lookup(customer)
	return ok && digit == 1
}

// OverridePriority resolves the description/PO override layer. Partial
// (substring) matches are applied first, then exact matches, so an exact
// match always wins for the same order. The boolean reports whether any
// override matched at all.
func (r *Rules) OverridePriority(description, purchaseOrder string) (int, bool) {
	priority := 0
	matched := false

	for _, key := range r.partialDescKeys {
		if strings.Contains(description, key) {
			priority = r.partialDescriptions[key]
			matched = true
		}
	}
	for _, key := range r.partialPOKeys {
		if strings.Contains(purchaseOrder, key) {
			priority = r.partialPurchaseOrders[key]
			matched = true
		}
	}
	if p, ok := r.fullDescriptions[description]; ok {
		priority = p
		matched = true
	}
	if p, ok := r.fullPurchaseOrders[purchaseOrder]; ok {
		priority = p
		matched = true
	}

	return priority, matched
}

// HighLimit returns the high-priority threshold for a level. Compile
// guarantees an entry exists for every level.
func (r *Rules) HighLimit(level deck.ResponsivenessLevel) Limit {
	return r.highPri[level]
}

// LowLimit returns the low-priority threshold for a level.
func (r *Rules) LowLimit(level deck.ResponsivenessLevel) Limit {
	return r.lowPri[level]
}

// PriorityExcluded reports whether the priority is dropped from all audits.
func (r *Rules) PriorityExcluded(priority int) bool {
	return r.excludedPriorities[priority]
}

// ComboIgnored reports whether this customer/priority combination is
// dropped from the audit.
func (r *Rules) ComboIgnored(customer string, priority int) bool {
	return r.ignoredCombos[customer][priority]
}

// VehicleExcluded reports whether a spacecraft is excluded from the audit.
func (r *Rules) VehicleExcluded(vehicle string) bool {
	return r.excludedVehicles[vehicle]
}

// CustomerName returns the display name for a customer, or "--" when the
// customer is not listed in any partition.
func (r *Rules) CustomerName(customer string) string {
	if name, ok := r.customerNames[customer]; ok {
		return name
	}
	return "--"
}

// SelectHighDollarValue is the price-per-area above which Select orders
// are exempt from the high-priority anomaly.
func (r *Rules) SelectHighDollarValue() float64 {
	return r.selectHighDollar
}

// DisplayColumns returns the configured report columns, with the
// suggested-priority column appended last.
func (r *Rules) DisplayColumns() []string {
	return r.displayColumns
}

func toIntSet(values []int) map[int]bool {
	set := make(map[int]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func toStringSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
