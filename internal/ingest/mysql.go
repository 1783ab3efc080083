package ingest

import (
	"context"
	"fmt"

	"github.com/matthieukhl/deckaudit/internal/database"
	"github.com/matthieukhl/deckaudit/internal/deck"
)

// Store reads the deck and hotlist out of the order database.
type Store struct {
	db *database.DB
}

func NewStore(db *database.DB) *Store {
	return &Store{db: db}
}

// ActiveOrders fetches the active order deck.
func (s *Store) ActiveOrders(ctx context.Context) ([]deck.Order, error) {
	query := `
		SELECT
			external_id,
			tasking_priority,
			COALESCE(ssr_priority, tasking_priority) as ssr_priority,
			sap_customer_identifier,
			responsiveness_level,
			ge01,
			wv01,
			wv02,
			wv03,
			COALESCE(order_description, '') as order_description,
			COALESCE(purchase_order_header, '') as purchase_order_header,
			COALESCE(price_per_area, 0) as price_per_area
		FROM active_orders
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active orders: %w", err)
	}
	defer rows.Close()

	var orders []deck.Order
	for rows.Next() {
		var o deck.Order
		var level string

		err := rows.Scan(
			&o.ID,
			&o.TaskingPriority,
			&o.SSRPriority,
			&o.Customer,
			&level,
			&o.GE01,
			&o.WV01,
			&o.WV02,
			&o.WV03,
			&o.Description,
			&o.PurchaseOrder,
			&o.PricePerArea,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}

		o.Responsiveness, err = deck.ParseResponsiveness(level)
		if err != nil {
			return nil, fmt.Errorf("order %s: %w", o.ID, err)
		}

		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate order rows: %w", err)
	}

	return orders, nil
}

// HotlistIDs fetches the privileged order identifiers.
func (s *Store) HotlistIDs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT soli FROM hotlist_orders")
	if err != nil {
		return nil, fmt.Errorf("failed to query hotlist: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan hotlist row: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate hotlist rows: %w", err)
	}

	return ids, nil
}
