package ingest

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/matthieukhl/deckaudit/internal/deck"
)

// Column names expected in a deck extract. Optional columns may be
// absent; their fields default to zero values, except ssr_priority which
// defaults to the tasking priority (absent means "not tracked", not
// "out of sync").
var requiredOrderColumns = []string{
	"external_id",
	"tasking_priority",
	"sap_customer_identifier",
	"responsiveness_level",
	"ge01",
	"wv01",
	"wv02",
}

// ReadOrdersCSV reads a deck extract from a header-mapped CSV file.
func ReadOrdersCSV(path string) ([]deck.Order, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open orders file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read orders header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, col := range requiredOrderColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("orders file missing required column %q", col)
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read orders rows: %w", err)
	}

	orders := make([]deck.Order, 0, len(records))
	for i, record := range records {
		order, err := parseOrderRecord(record, index)
		if err != nil {
			return nil, fmt.Errorf("orders row %d: %w", i+2, err)
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func parseOrderRecord(record []string, index map[string]int) (deck.Order, error) {
	field := func(col string) string {
		i, ok := index[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	priority, err := strconv.Atoi(field("tasking_priority"))
	if err != nil {
		return deck.Order{}, fmt.Errorf("invalid tasking_priority %q", field("tasking_priority"))
	}

	level, err := deck.ParseResponsiveness(field("responsiveness_level"))
	if err != nil {
		return deck.Order{}, err
	}

	order := deck.Order{
		ID:              field("external_id"),
		TaskingPriority: priority,
		SSRPriority:     priority,
		Customer:        field("sap_customer_identifier"),
		Responsiveness:  level,
		Description:     field("order_description"),
		PurchaseOrder:   field("purchase_order_header"),
	}

	for col, flag := range map[string]*bool{
		"ge01": &order.GE01,
		"wv01": &order.WV01,
		"wv02": &order.WV02,
		"wv03": &order.WV03,
	} {
		raw := field(col)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return deck.Order{}, fmt.Errorf("invalid %s flag %q", col, raw)
		}
		*flag = v
	}

	if raw := field("ssr_priority"); raw != "" {
		ssr, err := strconv.Atoi(raw)
		if err != nil {
			return deck.Order{}, fmt.Errorf("invalid ssr_priority %q", raw)
		}
		order.SSRPriority = ssr
	}
	if raw := field("price_per_area"); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return deck.Order{}, fmt.Errorf("invalid price_per_area %q", raw)
		}
		order.PricePerArea = price
	}

	return order, nil
}

// ReadHotlistCSV reads the externally curated hotlist, a CSV with a
// "soli" column of privileged order identifiers.
func ReadHotlistCSV(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hotlist file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read hotlist header: %w", err)
	}

	soliIdx := -1
	for i, name := range header {
		if strings.TrimSpace(strings.ToLower(name)) == "soli" {
			soliIdx = i
			break
		}
	}
	if soliIdx == -1 {
		return nil, fmt.Errorf("hotlist file missing required column %q", "soli")
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read hotlist rows: %w", err)
	}

	ids := make([]string, 0, len(records))
	for _, record := range records {
		if soliIdx < len(record) {
			if id := strings.TrimSpace(record[soliIdx]); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids, nil
}
