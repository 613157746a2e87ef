package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bioskin/inventory/internal/db"
	"github.com/bioskin/inventory/internal/model"
)

func newItem(t *testing.T, database *sql.DB, in model.ItemInput) *model.Item {
	t.Helper()
	require.NoError(t, in.Normalize())
	item, err := CreateItem(context.Background(), database, in)
	require.NoError(t, err)
	return item
}

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, database, model.ItemInput{
		Name: "Kojic Soap", SKU: "KS-01", CostPrice: decimal.NewFromInt(60), Quantity: 5,
		Category: "Soap", Storage: "Shelf A",
	})
	assert.Equal(t, "Kojic Soap", item.Name)
	assert.Equal(t, "KS-01", item.SKUString())
	assert.Equal(t, model.ItemStatusNormal, item.Status)
	assert.True(t, item.CostPrice.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, 5, item.Quantity)
	assert.False(t, item.UpdatedAt.Before(item.CreatedAt))

	got, err := GetItem(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item, got)

	missing, err := GetItem(ctx, database, 999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCreateItemDuplicateSKU(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	newItem(t, database, model.ItemInput{Name: "Kojic Soap", SKU: "KS-01"})

	in := model.ItemInput{Name: "Other Soap", SKU: "KS-01"}
	require.NoError(t, in.Normalize())
	_, err := CreateItem(ctx, database, in)
	assert.ErrorIs(t, err, ErrDuplicateSKU)
}

func TestItemsWithoutSKUDoNotCollide(t *testing.T) {
	database := db.NewTestDB(t)

	a := newItem(t, database, model.ItemInput{Name: "Sample A"})
	b := newItem(t, database, model.ItemInput{Name: "Sample B"})
	assert.Nil(t, a.SKU)
	assert.Nil(t, b.SKU)
}

func TestUpdateItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, database, model.ItemInput{Name: "Toner", SKU: "TN-01", Quantity: 3})

	in := model.ItemInput{Name: "Toner 100ml", SKU: "TN-01", Quantity: 7, Status: "high"}
	require.NoError(t, in.Normalize())
	changed, err := UpdateItem(ctx, database, item.ID, in)
	require.NoError(t, err)
	assert.True(t, changed)

	got, _ := GetItem(ctx, database, item.ID)
	assert.Equal(t, "Toner 100ml", got.Name)
	assert.Equal(t, 7, got.Quantity)
	assert.Equal(t, model.ItemStatusHigh, got.Status)

	changed, err = UpdateItem(ctx, database, item.ID, in)
	require.NoError(t, err)
	assert.False(t, changed, "identical data leaves the row unchanged")
}

func TestUpdateItemErrors(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	newItem(t, database, model.ItemInput{Name: "Toner", SKU: "TN-01"})
	serum := newItem(t, database, model.ItemInput{Name: "Serum", SKU: "SR-01"})

	in := model.ItemInput{Name: "Serum", SKU: "TN-01"}
	require.NoError(t, in.Normalize())
	_, err := UpdateItem(ctx, database, serum.ID, in)
	assert.ErrorIs(t, err, ErrDuplicateSKU)

	_, err = UpdateItem(ctx, database, 999, in)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, database, model.ItemInput{Name: "Delete Me"})
	require.NoError(t, DeleteItem(ctx, database, item.ID))

	got, err := GetItem(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "deletion is physical")

	assert.ErrorIs(t, DeleteItem(ctx, database, item.ID), ErrNotFound)
}

func TestListItemsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	newItem(t, database, model.ItemInput{Name: "toner", SKU: "TN-01", Category: "Skin", Storage: "Shelf A"})
	newItem(t, database, model.ItemInput{Name: "Kojic Soap", SKU: "KS-01", Category: "Soap", Storage: "Shelf B"})
	newItem(t, database, model.ItemInput{Name: "Brightening Serum", SKU: "SR-50%", Category: "skin", Storage: "shelf b"})

	names := func(items []model.Item) []string {
		var out []string
		for _, it := range items {
			out = append(out, it.Name)
		}
		return out
	}

	all, err := ListItems(ctx, database, model.ItemFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Brightening Serum", "Kojic Soap", "toner"}, names(all))

	skin, _ := ListItems(ctx, database, model.ItemFilter{Category: "SKIN"})
	assert.Equal(t, []string{"Brightening Serum", "toner"}, names(skin))

	shelfB, _ := ListItems(ctx, database, model.ItemFilter{Storage: "Shelf B"})
	assert.Equal(t, []string{"Brightening Serum", "Kojic Soap"}, names(shelfB))

	bySKU, _ := ListItems(ctx, database, model.ItemFilter{Search: "ks-"})
	assert.Equal(t, []string{"Kojic Soap"}, names(bySKU))

	byName, _ := ListItems(ctx, database, model.ItemFilter{Search: "SER", Category: "skin"})
	assert.Equal(t, []string{"Brightening Serum"}, names(byName))

	literal, _ := ListItems(ctx, database, model.ItemFilter{Search: "50%"})
	assert.Equal(t, []string{"Brightening Serum"}, names(literal))
}

func TestAdjustQuantityBySKU(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item := newItem(t, database, model.ItemInput{Name: "Toner", SKU: "TN-01", Quantity: 10})

	steps := []struct {
		mode model.QuantityMode
		qty  int
		want int
	}{
		{model.QuantityAdd, 5, 15},
		{model.QuantityDeduct, 20, -5},
		{model.QuantitySet, 42, 42},
	}
	for _, s := range steps {
		err := WithTx(ctx, database, func(tx *sql.Tx) error {
			n, err := AdjustQuantityBySKU(ctx, tx, s.mode, "TN-01", s.qty)
			assert.EqualValues(t, 1, n)
			return err
		})
		require.NoError(t, err)

		got, _ := GetItem(ctx, database, item.ID)
		assert.Equal(t, s.want, got.Quantity, "after %s %d", s.mode, s.qty)
	}

	err := WithTx(ctx, database, func(tx *sql.Tx) error {
		n, err := AdjustQuantityBySKU(ctx, tx, model.QuantitySet, "NOPE", 1)
		assert.Zero(t, n)
		return err
	})
	require.NoError(t, err)
}

func TestNilDatabase(t *testing.T) {
	ctx := context.Background()

	_, err := ListItems(ctx, nil, model.ItemFilter{})
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = GetSummary(ctx, nil)
	assert.ErrorIs(t, err, ErrNotInitialized)
	_, err = ListLowStock(ctx, nil, 10)
	assert.ErrorIs(t, err, ErrNotInitialized)
	assert.ErrorIs(t, DeleteItem(ctx, nil, 1), ErrNotInitialized)
}
