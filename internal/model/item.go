package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// The UI reads cost_price and total_value as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Item is a stock record. SKU is nil when the item has none; absent SKUs
// never collide with each other.
type Item struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	SKU         *string         `json:"sku"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Storage     string          `json:"storage,omitempty"`
	Variant     string          `json:"variant,omitempty"`
	Status      string          `json:"status"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Quantity    int             `json:"quantity"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SKUString returns the SKU or "" when absent.
func (i *Item) SKUString() string {
	if i.SKU == nil {
		return ""
	}
	return *i.SKU
}

// Item statuses.
const (
	ItemStatusHigh   = "High"
	ItemStatusNormal = "Normal"
	ItemStatusLow    = "Low"
)

// ParseItemStatus normalizes a status name case-insensitively. An empty
// string yields Normal.
func ParseItemStatus(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ItemStatusNormal, nil
	case "high":
		return ItemStatusHigh, nil
	case "normal":
		return ItemStatusNormal, nil
	case "low":
		return ItemStatusLow, nil
	}
	return "", fmt.Errorf("invalid status %q (want High, Normal or Low)", s)
}

// ItemInput carries the editable fields of an item for add and update.
type ItemInput struct {
	Name        string          `json:"name"`
	SKU         string          `json:"sku"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Storage     string          `json:"storage"`
	Variant     string          `json:"variant"`
	Status      string          `json:"status"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Quantity    int             `json:"quantity"`
}

// Normalize trims text fields and validates the input. Name is required;
// cost price and quantity must not be negative.
func (in *ItemInput) Normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.SKU = strings.TrimSpace(in.SKU)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Storage = strings.TrimSpace(in.Storage)
	in.Variant = strings.TrimSpace(in.Variant)

	if in.Name == "" {
		return fmt.Errorf("item name is required")
	}
	if in.CostPrice.IsNegative() {
		return fmt.Errorf("cost price must not be negative")
	}
	if in.Quantity < 0 {
		return fmt.Errorf("quantity must not be negative")
	}

	status, err := ParseItemStatus(in.Status)
	if err != nil {
		return err
	}
	in.Status = status
	return nil
}

// ItemFilter narrows ListItems. Empty fields are ignored.
type ItemFilter struct {
	Category string `json:"category"`
	Storage  string `json:"storage"`
	Search   string `json:"search"`
}

// Summary holds inventory-wide totals.
type Summary struct {
	TotalItems    int64           `json:"totalItems"`
	TotalQuantity int64           `json:"totalQuantity"`
	TotalValue    decimal.Decimal `json:"totalValue"`
}

// DefaultLowStockThreshold is used when no positive threshold is given.
const DefaultLowStockThreshold = 10
