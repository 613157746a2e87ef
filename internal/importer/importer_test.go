package importer

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bioskin/inventory/internal/db"
	"github.com/bioskin/inventory/internal/model"
	"github.com/bioskin/inventory/internal/store"
)

func xlsxUpload(t *testing.T, rows ...[]any) Upload {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return Upload{Name: "stock.xlsx", Type: mimeXLSX, Content: buf.Bytes()}
}

func csvUpload(content string) Upload {
	return Upload{Name: "stock.csv", Type: "text/csv", Content: []byte(content)}
}

func seedItem(t *testing.T, database *sql.DB, sku string, qty int) {
	t.Helper()
	_, err := store.CreateItem(context.Background(), database, model.ItemInput{
		Name: "Item " + sku, SKU: sku, Status: model.ItemStatusNormal,
		CostPrice: decimal.NewFromInt(10), Quantity: qty,
	})
	require.NoError(t, err)
}

func itemBySKU(t *testing.T, database *sql.DB, sku string) *model.Item {
	t.Helper()
	items, err := store.ListItems(context.Background(), database, model.ItemFilter{Search: sku})
	require.NoError(t, err)
	for i := range items {
		if items[i].SKUString() == sku {
			return &items[i]
		}
	}
	t.Fatalf("item with SKU %q not found", sku)
	return nil
}

func TestProcessInventoryFileModes(t *testing.T) {
	tests := []struct {
		mode model.QuantityMode
		qty  int
		want int
	}{
		{model.QuantitySet, 5, 5},
		{model.QuantityAdd, 5, 15},
		{model.QuantityDeduct, 15, -5},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			database := db.NewTestDB(t)
			seedItem(t, database, "KS-01", 10)

			res, err := ProcessInventoryFile(context.Background(), database, UpdateRequest{
				File: xlsxUpload(t, []any{"KS-01", tt.qty}),
				Mode: tt.mode,
			})
			require.NoError(t, err)
			assert.True(t, res.Success)
			assert.Equal(t, 1, res.ProcessedCount)
			assert.Equal(t, 1, res.SuccessCount)
			assert.Empty(t, res.Errors)
			assert.Equal(t, tt.want, itemBySKU(t, database, "KS-01").Quantity)
		})
	}
}

func TestProcessInventoryFileMappedHeader(t *testing.T) {
	database := db.NewTestDB(t)
	seedItem(t, database, "A", 1)
	seedItem(t, database, "B", 1)

	res, err := ProcessInventoryFile(context.Background(), database, UpdateRequest{
		File: xlsxUpload(t,
			[]any{"Qty", "Item SKU"},
			[]any{4, "A"},
			[]any{7, "B"},
		),
		Mode:    model.QuantityAdd,
		Mapping: ColumnMapping{SKU: "item sku", Quantity: "QTY"},
	})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, 5, itemBySKU(t, database, "A").Quantity)
	assert.Equal(t, 8, itemBySKU(t, database, "B").Quantity)
}

func TestProcessInventoryFileRowErrorsKeepGoodRows(t *testing.T) {
	database := db.NewTestDB(t)
	seedItem(t, database, "A", 10)
	seedItem(t, database, "B", 10)

	res, err := ProcessInventoryFile(context.Background(), database, UpdateRequest{
		File: xlsxUpload(t,
			[]any{"A", 1},
			[]any{"", 5},
			[]any{"B", "abc"},
			[]any{"ZZZ", 1},
			[]any{"B", 2.7},
		),
		Mode: model.QuantityAdd,
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 5, res.ProcessedCount)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, []string{
		`Row 2: Missing SKU.`,
		`Row 3 (SKU: B): Invalid quantity "abc".`,
		`Row 4: SKU "ZZZ" not found in database.`,
	}, res.Errors)

	assert.Equal(t, 11, itemBySKU(t, database, "A").Quantity)
	assert.Equal(t, 12, itemBySKU(t, database, "B").Quantity, "fractional quantity is truncated")
}

func TestProcessInventoryFileCSV(t *testing.T) {
	database := db.NewTestDB(t)
	seedItem(t, database, "A", 10)
	seedItem(t, database, "B", 10)

	res, err := ProcessInventoryFile(context.Background(), database, UpdateRequest{
		File: csvUpload("\xEF\xBB\xBFSKU,Quantity\nA,3\n\nB,x\n"),
		Mode: model.QuantitySet,
	})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 2, res.ProcessedCount)
	assert.Equal(t, 1, res.SuccessCount)
	assert.Equal(t, []string{`Row 4 (SKU: B): Invalid quantity "x".`}, res.Errors)
	assert.Equal(t, 3, itemBySKU(t, database, "A").Quantity)
}

func TestProcessInventoryFileFatal(t *testing.T) {
	database := db.NewTestDB(t)
	seedItem(t, database, "A", 10)
	ctx := context.Background()

	t.Run("nil database", func(t *testing.T) {
		_, err := ProcessInventoryFile(ctx, nil, UpdateRequest{File: csvUpload("SKU,Quantity\nA,1\n"), Mode: model.QuantitySet})
		assert.ErrorIs(t, err, store.ErrNotInitialized)
	})

	t.Run("invalid mode", func(t *testing.T) {
		_, err := ProcessInventoryFile(ctx, database, UpdateRequest{File: csvUpload("SKU,Quantity\nA,1\n"), Mode: "multiply"})
		assert.EqualError(t, err, "invalid action type: multiply")
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := ProcessInventoryFile(ctx, database, UpdateRequest{
			File: Upload{Name: "stock.txt", Type: "text/plain", Content: []byte("A 1")},
			Mode: model.QuantitySet,
		})
		assert.EqualError(t, err, "unsupported file type: text/plain")
	})

	t.Run("missing mapped column", func(t *testing.T) {
		_, err := ProcessInventoryFile(ctx, database, UpdateRequest{File: csvUpload("Code,Quantity\nA,1\n"), Mode: model.QuantitySet})
		assert.EqualError(t, err, `column "SKU" not found in file header`)
	})

	t.Run("header only", func(t *testing.T) {
		_, err := ProcessInventoryFile(ctx, database, UpdateRequest{
			File: xlsxUpload(t, []any{"SKU", "Quantity"}),
			Mode: model.QuantitySet,
		})
		assert.ErrorIs(t, err, ErrNoRows)
	})

	assert.Equal(t, 10, itemBySKU(t, database, "A").Quantity)
}

func TestImportInitialItemsXLSX(t *testing.T) {
	database := db.NewTestDB(t)

	res, err := ImportInitialItems(context.Background(), database, xlsxUpload(t,
		[]any{"SKU", "Name", "Description", "Cost", "Quantity"},
		[]any{"KS-01", "Kojic Soap", "Brightening", 60, 5},
		[]any{"SR-01", "Serum", "", "", -2},
		[]any{"KS-01", "Duplicate Soap", "", 1, 1},
		[]any{"", "No SKU"},
		[]any{"NN-01"},
	))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 5, res.ProcessedCount)
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, []string{
		`Row 4: SKU "KS-01" already exists in database. Skipped.`,
		`Row 5: Missing SKU.`,
		`Row 6 (SKU: NN-01): Missing Name.`,
	}, res.Errors)
	assert.Equal(t, []string{
		`Row 3 (SKU: SR-01): Invalid or missing Cost "". Using 0.00.`,
		`Row 3 (SKU: SR-01): Invalid or missing Quantity "-2". Using 0.`,
	}, res.Warnings)

	soap := itemBySKU(t, database, "KS-01")
	assert.Equal(t, "Kojic Soap", soap.Name)
	assert.Equal(t, "Brightening", soap.Description)
	assert.True(t, soap.CostPrice.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, 5, soap.Quantity)
	assert.Equal(t, model.ItemStatusNormal, soap.Status)

	serum := itemBySKU(t, database, "SR-01")
	assert.True(t, serum.CostPrice.IsZero())
	assert.Zero(t, serum.Quantity)
}

func TestImportInitialItemsWithoutHeader(t *testing.T) {
	database := db.NewTestDB(t)

	res, err := ImportInitialItems(context.Background(), database, xlsxUpload(t,
		[]any{"A1", "Alpha", "", 1.25, 3},
	))
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.SuccessCount)
	assert.True(t, itemBySKU(t, database, "A1").CostPrice.Equal(decimal.RequireFromString("1.25")))
}

func TestImportInitialItemsCSVOptionalColumns(t *testing.T) {
	database := db.NewTestDB(t)

	res, err := ImportInitialItems(context.Background(), database, csvUpload(
		"SKU,Name,Description,Cost,Quantity,Category,Storage Location,Variant,Status\n"+
			"T-1,Toner,,12.5,4,Skincare,Shelf A,100ml,high\n"+
			"T-2,Cleanser,,3,1,,,,urgent\n",
	))
	require.NoError(t, err)
	assert.True(t, res.Success, "warnings do not fail the import")
	assert.Equal(t, 2, res.SuccessCount)
	assert.Equal(t, []string{`Row 3 (SKU: T-2): Invalid Status "urgent". Using Normal.`}, res.Warnings)

	toner := itemBySKU(t, database, "T-1")
	assert.Equal(t, "Skincare", toner.Category)
	assert.Equal(t, "Shelf A", toner.Storage)
	assert.Equal(t, "100ml", toner.Variant)
	assert.Equal(t, model.ItemStatusHigh, toner.Status)
	assert.Equal(t, model.ItemStatusNormal, itemBySKU(t, database, "T-2").Status)
}

func TestImportInitialItemsCSVMissingHeaders(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := ImportInitialItems(context.Background(), database, csvUpload("SKU,Name,Description\nA,B,C\n"))
	assert.EqualError(t, err, "CSV file is missing required headers: Cost, Quantity")
}

func TestImportInitialItemsCSVParseProblems(t *testing.T) {
	database := db.NewTestDB(t)

	res, err := ImportInitialItems(context.Background(), database, csvUpload(
		"SKU,Name,Description,Cost,Quantity\nA,Alpha,,1,1\nB,Be\"ta,,1,1\n",
	))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 1, res.SuccessCount)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "CSV Parsing Errors: ")
}
