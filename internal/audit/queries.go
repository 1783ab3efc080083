package audit

import (
	"fmt"
	"sort"

	"github.com/matthieukhl/deckaudit/internal/deck"
	"github.com/matthieukhl/deckaudit/internal/policy"
)

// Auditor runs the anomaly queries over an annotated deck. The deck is
// pre-filtered and annotated exactly once at construction; every query
// after that is a stateless read.
type Auditor struct {
	rules   *policy.Rules
	hotlist map[string]bool
	orders  []Order
}

// NewAuditor pre-filters the deck, annotates it, and returns an Auditor
// ready to query. An empty deck after pre-filtering is fatal: it almost
// always means a bad extract, and an empty report would hide that.
func NewAuditor(rules *policy.Rules, orders []deck.Order, hotlist []string) (*Auditor, error) {
	for _, col := range rules.DisplayColumns() {
		if _, ok := columnValues[col]; !ok {
			return nil, fmt.Errorf("unknown display column %q", col)
		}
	}

	filtered := Prefilter(rules, orders)
	if len(filtered) == 0 {
		return nil, fmt.Errorf("no orders remain after pre-filtering (started with %d)", len(orders))
	}

	ids := make(map[string]bool, len(hotlist))
	for _, id := range hotlist {
		ids[id] = true
	}

	return &Auditor{
		rules:   rules,
		hotlist: ids,
		orders:  Annotate(rules, filtered),
	}, nil
}

// Prefilter drops the rows no audit should ever see: globally excluded
// priorities, ignored customer/priority combinations, and orders whose
// every eligible spacecraft is excluded. Returns a new slice.
func Prefilter(rules *policy.Rules, orders []deck.Order) []deck.Order {
	kept := make([]deck.Order, 0, len(orders))
	for _, o := range orders {
		if rules.PriorityExcluded(o.TaskingPriority) {
			continue
		}
		if rules.ComboIgnored(o.Customer, o.TaskingPriority) {
			continue
		}
		if allVehiclesExcluded(rules, o) {
			continue
		}
		kept = append(kept, o)
	}
	return kept
}

func allVehiclesExcluded(rules *policy.Rules, o deck.Order) bool {
	vehicles := o.EligibleVehicles()
	if len(vehicles) == 0 {
		return false
	}
	for _, v := range vehicles {
		if !rules.VehicleExcluded(v) {
			return false
		}
	}
	return true
}

// Orders returns the annotated deck.
func (a *Auditor) Orders() []Order {
	return a.orders
}

// HighPriority returns orders of the given level sitting below the
// level's threshold, minus the customers exempted for that level. For
// the Spec and Select tiers, orders legitimately boosted by manual or
// contractual arrangement are also dropped: hotlist orders, IDI-class
// customers, description/PO-overridden orders, and high-dollar Select
// orders.
func (a *Auditor) HighPriority(level deck.ResponsivenessLevel) []Order {
	limit := a.rules.HighLimit(level)
	var results []Order
	for _, o := range a.orders {
		if o.Responsiveness != level || o.TaskingPriority >= limit.Priority {
			continue
		}
		if limit.CustomerExcluded(o.Customer) {
			continue
		}
		if level == deck.LevelNone || level == deck.LevelSelect {
			if a.hotlist[o.ID] || a.rules.IsIDICustomer(o.Customer) || o.Overridden {
				continue
			}
			if level == deck.LevelSelect && o.PricePerArea > a.rules.SelectHighDollarValue() {
				continue
			}
		}
		results = append(results, o)
	}
	sortByCustomer(results)
	return results
}

// LowPriority returns orders of the given level sitting above the
// level's threshold, minus exempted customers, overridden orders, and
// orders already pinned to their customer's forced middle digit (any
// ending digit 1-9); those are held there by policy, not misfiled.
func (a *Auditor) LowPriority(level deck.ResponsivenessLevel) []Order {
	limit := a.rules.LowLimit(level)
	var results []Order
	for _, o := range a.orders {
		if o.Responsiveness != level || o.TaskingPriority <= limit.Priority {
			continue
		}
		if limit.CustomerExcluded(o.Customer) || o.Overridden {
			continue
		}
		if digit, ok := a.rules.MiddleDigitFor(o.Customer); ok &&
			deck.MiddleDigit(o.TaskingPriority) == digit &&
			deck.EndingDigit(o.TaskingPriority) != 0 {
			continue
		}
		results = append(results, o)
	}
	sortByCustomer(results)
	return results
}

// EndingDigitMismatch returns orders whose tasking priority differs from
// the suggested priority. SOOPremium orders are exempt from ending-digit
// policy entirely.
func (a *Auditor) EndingDigitMismatch() []Order {
	var results []Order
	for _, o := range a.orders {
		if o.Responsiveness == deck.LevelSOOPremium {
			continue
		}
		if o.TaskingPriority != o.SuggestedPriority {
			results = append(results, o)
		}
	}
	sortByCustomer(results)
	return results
}

// ShouldNotHaveDigit returns the mismatched orders currently carrying
// the given ending digit in error.
func (a *Auditor) ShouldNotHaveDigit(digit int) []Order {
	var results []Order
	for _, o := range a.EndingDigitMismatch() {
		if deck.EndingDigit(o.TaskingPriority) == digit {
			results = append(results, o)
		}
	}
	return results
}

// ShouldHaveDigit returns the mismatched orders whose suggested priority
// carries the given ending digit.
func (a *Auditor) ShouldHaveDigit(digit int) []Order {
	var results []Order
	for _, o := range a.EndingDigitMismatch() {
		if deck.EndingDigit(o.SuggestedPriority) == digit {
			results = append(results, o)
		}
	}
	return results
}

// TaskingSSRMismatch returns orders whose tasking priority disagrees
// with the priority tracked by the secondary system. A data-consistency
// check, not a policy check.
func (a *Auditor) TaskingSSRMismatch() []Order {
	var results []Order
	for _, o := range a.orders {
		if o.TaskingPriority != o.SSRPriority {
			results = append(results, o)
		}
	}
	sortByCustomer(results)
	return results
}

// sortByCustomer orders results by customer identifier ascending, with
// order ID as tiebreak so output is stable run to run.
func sortByCustomer(orders []Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		if orders[i].Customer != orders[j].Customer {
			return orders[i].Customer < orders[j].Customer
		}
		return orders[i].ID < orders[j].ID
	})
}
