package ingest

import (
	"context"
	"fmt"

	"github.com/matthieukhl/deckaudit/internal/config"
	"github.com/matthieukhl/deckaudit/internal/database"
	"github.com/matthieukhl/deckaudit/internal/deck"
)

// Load reads the deck and hotlist from the configured source. A missing
// hotlist path with the csv source means no hotlist, not an error.
func Load(ctx context.Context, cfg *config.Config) ([]deck.Order, []string, error) {
	switch cfg.Audit.Source {
	case "", "csv":
		orders, err := ReadOrdersCSV(cfg.Audit.OrdersPath)
		if err != nil {
			return nil, nil, err
		}
		var hotlist []string
		if cfg.Audit.HotlistPath != "" {
			hotlist, err = ReadHotlistCSV(cfg.Audit.HotlistPath)
			if err != nil {
				return nil, nil, err
			}
		}
		return orders, hotlist, nil

	case "mysql":
		db, err := database.NewConnection(&cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		defer db.Close()

		store := NewStore(db)
		orders, err := store.ActiveOrders(ctx)
		if err != nil {
			return nil, nil, err
		}
		hotlist, err := store.HotlistIDs(ctx)
		if err != nil {
			return nil, nil, err
		}
		return orders, hotlist, nil
	}

	return nil, nil, fmt.Errorf("unknown order source %q", cfg.Audit.Source)
}
