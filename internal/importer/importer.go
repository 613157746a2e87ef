// Package importer turns uploaded spreadsheets and CSV files into bulk
// quantity updates and initial item imports.
package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/bioskin/inventory/internal/model"
	"github.com/bioskin/inventory/internal/store"
)

// ErrNoRows is returned when an upload holds no data rows.
var ErrNoRows = errors.New("no data rows found in the file")

// UpdateRequest is a bulk quantity update: the file, how to apply its
// quantities, and which columns hold SKU and quantity.
type UpdateRequest struct {
	File    Upload             `json:"fileData"`
	Mode    model.QuantityMode `json:"actionType"`
	Mapping ColumnMapping      `json:"columnMapping"`
}

// ProcessInventoryFile applies a bulk quantity update. All rows run in one
// transaction; a failing row is recorded in the result and does not undo
// the rows applied before or after it. The returned error is set only when
// nothing was applied: no database, an unknown mode or an unreadable file.
func ProcessInventoryFile(ctx context.Context, db *sql.DB, req UpdateRequest) (*model.BulkResult, error) {
	if db == nil {
		return nil, store.ErrNotInitialized
	}
	if !req.Mode.Valid() {
		return nil, fmt.Errorf("invalid action type: %s", req.Mode)
	}

	t, err := ReadTable(req.File)
	if err != nil {
		return nil, err
	}

	m := req.Mapping.withDefaults()
	if t.Kind == Keyed {
		for _, name := range []string{m.SKU, m.Quantity} {
			if headerIndex(t.Header, name) < 0 {
				return nil, fmt.Errorf("column %q not found in file header", name)
			}
		}
	}
	l := updateLayout(t, m)
	if len(t.Records) == 0 {
		return nil, ErrNoRows
	}

	res := &model.BulkResult{}
	addProblems(res, t)

	err = store.WithTx(ctx, db, func(tx *sql.Tx) error {
		for _, rec := range t.Records {
			res.ProcessedCount++

			adj, rejection := validateAdjustment(l.extract(rec))
			if rejection != "" {
				res.Fail(rejection)
				continue
			}

			n, err := store.AdjustQuantityBySKU(ctx, tx, req.Mode, adj.SKU, adj.Quantity)
			switch {
			case err != nil:
				res.Fail(fmt.Sprintf("Row %d (SKU: %s): DB Error - %s", adj.Line, adj.SKU, err))
			case n == 0:
				res.Fail(fmt.Sprintf("Row %d: SKU %q not found in database.", adj.Line, adj.SKU))
			default:
				res.SuccessCount++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("applying bulk update: %w", err)
	}

	res.Finish()
	log.Info().
		Str("file", req.File.Name).
		Str("mode", string(req.Mode)).
		Int("processed", res.ProcessedCount).
		Int("succeeded", res.SuccessCount).
		Int("errors", len(res.Errors)).
		Msg("bulk update complete")
	return res, nil
}

// ImportInitialItems inserts one new item per row of an upload laid out as
// SKU, Name, Description, Cost, Quantity with optional Category, Storage,
// Variant and Status columns after them. Failure semantics match
// ProcessInventoryFile; a duplicate SKU skips only its row.
func ImportInitialItems(ctx context.Context, db *sql.DB, u Upload) (*model.BulkResult, error) {
	if db == nil {
		return nil, store.ErrNotInitialized
	}

	t, err := ReadTable(u)
	if err != nil {
		return nil, err
	}

	switch t.Kind {
	case Keyed:
		var missing []string
		for _, h := range ImportHeaders {
			if headerIndex(t.Header, h) < 0 {
				missing = append(missing, h)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("CSV file is missing required headers: %s", strings.Join(missing, ", "))
		}
	case Positional:
		if len(t.Records) > 0 && isImportHeader(t.Records[0].Cells) {
			t.stripHeader()
		} else {
			log.Warn().Str("file", u.Name).Msg("spreadsheet header not recognized, reading columns by position")
		}
	}
	l := resolveLayout(t, importColumns)
	if len(t.Records) == 0 {
		return nil, ErrNoRows
	}

	res := &model.BulkResult{}
	addProblems(res, t)

	err = store.WithTx(ctx, db, func(tx *sql.Tx) error {
		for _, rec := range t.Records {
			res.ProcessedCount++

			item, warnings, rejection := validateNewItem(l.extract(rec))
			if rejection != "" {
				res.Fail(rejection)
				continue
			}
			for _, w := range warnings {
				res.Warn(w)
			}

			_, err := store.InsertItemTx(ctx, tx, item.Input)
			switch {
			case errors.Is(err, store.ErrDuplicateSKU):
				res.Fail(fmt.Sprintf("Row %d: SKU %q already exists in database. Skipped.", item.Line, item.Input.SKU))
			case err != nil:
				res.Fail(fmt.Sprintf("Row %d (SKU: %s): DB Error - %s", item.Line, item.Input.SKU, err))
			default:
				res.SuccessCount++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("applying initial import: %w", err)
	}

	res.Finish()
	log.Info().
		Str("file", u.Name).
		Int("processed", res.ProcessedCount).
		Int("succeeded", res.SuccessCount).
		Int("errors", len(res.Errors)).
		Int("warnings", len(res.Warnings)).
		Msg("initial import complete")
	return res, nil
}

func addProblems(res *model.BulkResult, t *Table) {
	if len(t.Problems) > 0 {
		res.Fail("CSV Parsing Errors: " + strings.Join(t.Problems, "; "))
	}
}
