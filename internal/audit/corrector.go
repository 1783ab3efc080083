package audit

import (
	"github.com/matthieukhl/deckaudit/internal/deck"
	"github.com/matthieukhl/deckaudit/internal/policy"
)

// Order is a deck order annotated with the derived audit columns.
type Order struct {
	deck.Order
	CustomerName      string
	SuggestedPriority int
	Overridden        bool // repriced by a description/PO override
}

// CorrectPriority returns the policy-correct priority for one order.
// The middle and ending digits are decided independently and combined
// additively: the middle digit comes from the customer's forced bucket
// or is preserved from the current priority; the ending digit comes
// from the customer's forced bucket, or defaults to 3 when the order is
// ineligible for every tracked spacecraft and 4 otherwise.
//
// Pure and total over valid inputs. The description/PO override layer
// is applied separately during annotation.
func CorrectPriority(rules *policy.Rules, priority int, customer string, ge01, wv02, wv01 bool) int {
	middle, ok := rules.MiddleDigitFor(customer)
	if !ok {
		middle = deck.MiddleDigit(priority)
	}

	ending, ok := rules.EndingDigitFor(customer)
	if !ok {
		if !ge01 && !wv02 && !wv01 {
			ending = 3
		} else {
			ending = 4
		}
	}

	return 700 + 10*middle + ending
}

// Annotate computes the suggested priority and customer display name for
// every order, returning a new slice. The input is never mutated and the
// result depends only on the orders and the rules, so re-annotating an
// unchanged deck yields identical output.
func Annotate(rules *policy.Rules, orders []deck.Order) []Order {
	annotated := make([]Order, 0, len(orders))
	for _, o := range orders {
		suggested := CorrectPriority(rules, o.TaskingPriority, o.Customer, o.GE01, o.WV02, o.WV01)
		overridden := false
		if pri, ok := rules.OverridePriority(o.Description, o.PurchaseOrder); ok {
			suggested = pri
			overridden = true
		}
		annotated = append(annotated, Order{
			Order:             o,
			CustomerName:      rules.CustomerName(o.Customer),
			SuggestedPriority: suggested,
			Overridden:        overridden,
		})
	}
	return annotated
}
