package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bioskin/inventory/internal/model"
)

// GetSummary returns the item count, total quantity and total stock value
// (quantity × cost price, with a missing cost counted as zero).
func GetSummary(ctx context.Context, db *sql.DB) (*model.Summary, error) {
	if err := checkDB(db); err != nil {
		return nil, err
	}

	s := &model.Summary{}
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(id),
		        COALESCE(SUM(quantity), 0),
		        COALESCE(SUM(quantity * COALESCE(cost_price, 0)), 0)
		 FROM items`,
	).Scan(&s.TotalItems, &s.TotalQuantity, &s.TotalValue)
	if err != nil {
		return nil, fmt.Errorf("getting inventory summary: %w", err)
	}
	s.TotalValue = s.TotalValue.Round(2)
	return s, nil
}

// ListLowStock returns items whose quantity is below threshold, lowest
// first. A threshold of zero or less uses model.DefaultLowStockThreshold.
func ListLowStock(ctx context.Context, db *sql.DB, threshold int) ([]model.Item, error) {
	if err := checkDB(db); err != nil {
		return nil, err
	}
	if threshold <= 0 {
		threshold = model.DefaultLowStockThreshold
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items
		 WHERE quantity < ?
		 ORDER BY quantity ASC, name COLLATE NOCASE`, threshold,
	)
	if err != nil {
		return nil, fmt.Errorf("listing low stock items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}
