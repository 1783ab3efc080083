package audit

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/matthieukhl/deckaudit/internal/deck"
)

// columnValues maps a display-column name to its rendering. This is the
// full vocabulary a policy document may list under columns_to_display.
var columnValues = map[string]func(Order) string{
	"external_id":             func(o Order) string { return o.ID },
	"tasking_priority":        func(o Order) string { return strconv.Itoa(o.TaskingPriority) },
	"ssr_priority":            func(o Order) string { return strconv.Itoa(o.SSRPriority) },
	"sap_customer_identifier": func(o Order) string { return o.Customer },
	"customer_name":           func(o Order) string { return o.CustomerName },
	"responsiveness_level":    func(o Order) string { return o.Responsiveness.Display() },
	"order_description":       func(o Order) string { return o.Description },
	"purchase_order_header":   func(o Order) string { return o.PurchaseOrder },
	"price_per_area":          func(o Order) string { return strconv.FormatFloat(o.PricePerArea, 'f', 2, 64) },
	"suggested_priority":      func(o Order) string { return strconv.Itoa(o.SuggestedPriority) },
}

// Section is one block of the audit report: a heading and result table
// when the query matched anything, or an explicit no-orders line when it
// did not.
type Section struct {
	Heading      string
	EmptyMessage string
	Note         string
	Columns      []string
	Orders       []Order
}

// Report is the assembled audit output: the fixed sequence of query
// sections plus the combined change table.
type Report struct {
	Sections []Section
	// Changes is the ending-digit mismatch set, the orders needing a
	// priority change.
	Changes []Order

	columns []string
}

// BuildReport runs every query in the documented order: too-high and
// too-low for each responsiveness level, then ending-digit has/has-not
// for each digit, then the tasking/SSR consistency check.
func (a *Auditor) BuildReport() *Report {
	columns := a.rules.DisplayColumns()
	// High/low sections list current priorities only; the suggested
	// column (always last) is reserved for the digit and change tables.
	hlColumns := columns[:len(columns)-1]

	var sections []Section

	for _, level := range deck.Levels {
		limit := a.rules.HighLimit(level)
		sections = append(sections, Section{
			Heading:      fmt.Sprintf("These %s orders are prioritized higher than %d:", level.Display(), limit.Priority),
			EmptyMessage: fmt.Sprintf("No %s orders are prioritized higher than %d", level.Display(), limit.Priority),
			Note:         `Hotlist and IDI orders are excluded from the "high pri" results`,
			Columns:      hlColumns,
			Orders:       a.HighPriority(level),
		})
	}
	for _, level := range deck.Levels {
		limit := a.rules.LowLimit(level)
		sections = append(sections, Section{
			Heading:      fmt.Sprintf("These %s orders are prioritized lower than %d:", level.Display(), limit.Priority),
			EmptyMessage: fmt.Sprintf("No %s orders are prioritized lower than %d", level.Display(), limit.Priority),
			Columns:      hlColumns,
			Orders:       a.LowPriority(level),
		})
	}

	for digit := 0; digit <= 9; digit++ {
		sections = append(sections, Section{
			Heading:      fmt.Sprintf("These orders should not have an ending digit of %d", digit),
			EmptyMessage: fmt.Sprintf("No orders found with an erroneous ending digit of %d", digit),
			Columns:      columns,
			Orders:       a.ShouldNotHaveDigit(digit),
		})
		sections = append(sections, Section{
			Heading:      fmt.Sprintf("These orders should have an ending digit of %d", digit),
			EmptyMessage: fmt.Sprintf("No orders need to be changed to have an ending digit of %d", digit),
			Columns:      columns,
			Orders:       a.ShouldHaveDigit(digit),
		})
	}

	sections = append(sections, Section{
		Heading:      "These orders have a tasking priority that differs from the SSR priority:",
		EmptyMessage: "No orders have mismatched tasking and SSR priorities",
		Columns:      columns,
		Orders:       a.TaskingSSRMismatch(),
	})

	return &Report{
		Sections: sections,
		Changes:  a.EndingDigitMismatch(),
		columns:  columns,
	}
}

// Text renders the report as the human-readable block sequence.
func (r *Report) Text() string {
	var b strings.Builder
	for _, s := range r.Sections {
		if s.Note != "" {
			b.WriteString(s.Note)
			b.WriteString("\n\n")
		}
		if len(s.Orders) == 0 {
			b.WriteString(s.EmptyMessage)
		} else {
			b.WriteString(s.Heading)
			b.WriteString("\n")
			b.WriteString(renderTable(s.Orders, s.Columns))
		}
		b.WriteString("\n\n\n")
	}
	return b.String()
}

// ChangeTable returns the bulk-correction table, header row first,
// restricted to the display columns.
func (r *Report) ChangeTable() [][]string {
	rows := make([][]string, 0, len(r.Changes)+1)
	rows = append(rows, r.columns)
	for _, o := range r.Changes {
		rows = append(rows, renderRow(o, r.columns))
	}
	return rows
}

func renderTable(orders []Order, columns []string) string {
	var b strings.Builder
	w := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(columns, "\t"))
	for _, o := range orders {
		fmt.Fprintln(w, strings.Join(renderRow(o, columns), "\t"))
	}
	w.Flush()
	return b.String()
}

func renderRow(o Order, columns []string) []string {
	row := make([]string, 0, len(columns))
	for _, col := range columns {
		row = append(row, columnValues[col](o))
	}
	return row
}
