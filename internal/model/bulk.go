package model

// BulkResult is the outcome of one bulk update or initial import request.
// Success is true only when no row produced an error; warnings do not
// affect it.
type BulkResult struct {
	Success        bool     `json:"success"`
	ProcessedCount int      `json:"processedCount"`
	SuccessCount   int      `json:"successCount"`
	Errors         []string `json:"errors"`
	Warnings       []string `json:"warnings,omitempty"`
}

// Fail appends a row-level error.
func (r *BulkResult) Fail(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Warn appends a row-level warning.
func (r *BulkResult) Warn(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Finish sets Success from the accumulated errors and ensures Errors
// encodes as an empty list rather than null.
func (r *BulkResult) Finish() {
	if r.Errors == nil {
		r.Errors = []string{}
	}
	r.Success = len(r.Errors) == 0
}

// QuantityMode selects how a bulk update applies a file's quantity to an
// item's stored quantity.
type QuantityMode string

// Quantity modes.
const (
	QuantityAdd    QuantityMode = "add"
	QuantityDeduct QuantityMode = "deduct"
	QuantitySet    QuantityMode = "set"
)

// Valid reports whether m is a supported mode.
func (m QuantityMode) Valid() bool {
	switch m {
	case QuantityAdd, QuantityDeduct, QuantitySet:
		return true
	}
	return false
}
