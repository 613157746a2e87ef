package importer

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bioskin/inventory/internal/model"
)

// Adjustment is a validated bulk update row.
type Adjustment struct {
	Line     int
	SKU      string
	Quantity int
}

// validateAdjustment checks a bulk update row. It returns a row error when
// the SKU is empty or the quantity is not a number. Fractional quantities
// are truncated toward zero. Negative quantities are accepted; unknown SKUs
// are detected when the row is applied.
func validateAdjustment(d Draft) (Adjustment, string) {
	if d.SKU == "" {
		return Adjustment{}, fmt.Sprintf("Row %d: Missing SKU.", d.Line)
	}
	if !d.Quantity.OK {
		return Adjustment{}, fmt.Sprintf("Row %d (SKU: %s): Invalid quantity %q.", d.Line, d.SKU, d.Quantity.Raw)
	}
	return Adjustment{
		Line:     d.Line,
		SKU:      d.SKU,
		Quantity: d.Quantity.Value,
	}, ""
}

// NewItem is a validated initial import row.
type NewItem struct {
	Line  int
	Input model.ItemInput
}

// validateNewItem checks an initial import row. A missing SKU or name
// rejects the row. A missing, malformed or negative cost or quantity is
// replaced by zero with a warning, as is an unknown status by Normal.
func validateNewItem(d Draft) (item NewItem, warnings []string, rejection string) {
	if d.SKU == "" {
		return NewItem{}, nil, fmt.Sprintf("Row %d: Missing SKU.", d.Line)
	}
	if d.Name == "" {
		return NewItem{}, nil, fmt.Sprintf("Row %d (SKU: %s): Missing Name.", d.Line, d.SKU)
	}

	in := model.ItemInput{
		Name:        d.Name,
		SKU:         d.SKU,
		Description: d.Description,
		Category:    d.Category,
		Storage:     d.Storage,
		Variant:     d.Variant,
	}

	if d.Cost.OK && d.Cost.Value >= 0 {
		in.CostPrice = decimal.NewFromFloat(d.Cost.Value)
	} else {
		warnings = append(warnings, fmt.Sprintf("Row %d (SKU: %s): Invalid or missing Cost %q. Using 0.00.", d.Line, d.SKU, d.Cost.Raw))
	}

	if d.Quantity.OK && d.Quantity.Value >= 0 {
		in.Quantity = d.Quantity.Value
	} else {
		warnings = append(warnings, fmt.Sprintf("Row %d (SKU: %s): Invalid or missing Quantity %q. Using 0.", d.Line, d.SKU, d.Quantity.Raw))
	}

	status, err := model.ParseItemStatus(d.Status)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("Row %d (SKU: %s): Invalid Status %q. Using %s.", d.Line, d.SKU, d.Status, model.ItemStatusNormal))
		status = model.ItemStatusNormal
	}
	in.Status = status

	return NewItem{Line: d.Line, Input: in}, warnings, ""
}
