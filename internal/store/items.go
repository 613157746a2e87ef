package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/bioskin/inventory/internal/model"
)

const itemColumns = `id, name, sku, description, category, storage, variant, status,
	cost_price, quantity, created_at, updated_at`

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// CreateItem inserts a new item and returns it. in must be normalized.
// A colliding SKU yields ErrDuplicateSKU.
func CreateItem(ctx context.Context, db *sql.DB, in model.ItemInput) (*model.Item, error) {
	if err := checkDB(db); err != nil {
		return nil, err
	}

	id, err := insertItem(ctx, db, in)
	if err != nil {
		return nil, err
	}

	return GetItem(ctx, db, id)
}

// InsertItemTx inserts a new item inside tx and returns its ID.
func InsertItemTx(ctx context.Context, tx *sql.Tx, in model.ItemInput) (int64, error) {
	return insertItem(ctx, tx, in)
}

func insertItem(ctx context.Context, q execer, in model.ItemInput) (int64, error) {
	status := in.Status
	if status == "" {
		status = model.ItemStatusNormal
	}

	result, err := q.ExecContext(ctx,
		`INSERT INTO items (name, sku, description, category, storage, variant, status, cost_price, quantity)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, nullString(in.SKU), nullString(in.Description), nullString(in.Category),
		nullString(in.Storage), nullString(in.Variant), status,
		in.CostPrice.InexactFloat64(), in.Quantity,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("creating item: %w", ErrDuplicateSKU)
		}
		return 0, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("getting item id: %w", err)
	}
	return id, nil
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	if err := checkDB(db); err != nil {
		return nil, err
	}

	item, err := scanItem(db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns items matching filter, ordered by name case-insensitively.
// Category and storage match case-insensitively in full; search matches a
// case-insensitive substring of the name or SKU.
func ListItems(ctx context.Context, db *sql.DB, filter model.ItemFilter) ([]model.Item, error) {
	if err := checkDB(db); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if c := strings.TrimSpace(filter.Category); c != "" {
		where = append(where, `lower(category) = lower(?)`)
		args = append(args, c)
	}
	if s := strings.TrimSpace(filter.Storage); s != "" {
		where = append(where, `lower(storage) = lower(?)`)
		args = append(args, s)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		where = append(where, `(lower(name) LIKE ? ESCAPE '\' OR lower(sku) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern)
	}

	query := `SELECT ` + itemColumns + ` FROM items`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY name COLLATE NOCASE, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// UpdateItem replaces an item's editable fields. It reports false when the
// item exists but every field already had the given value. A missing item
// yields ErrNotFound and a colliding SKU yields ErrDuplicateSKU.
func UpdateItem(ctx context.Context, db *sql.DB, id int64, in model.ItemInput) (bool, error) {
	if err := checkDB(db); err != nil {
		return false, err
	}

	status := in.Status
	if status == "" {
		status = model.ItemStatusNormal
	}
	args := []any{
		in.Name, nullString(in.SKU), nullString(in.Description), nullString(in.Category),
		nullString(in.Storage), nullString(in.Variant), status,
		in.CostPrice.InexactFloat64(), in.Quantity,
	}

	result, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?1, sku = ?2, description = ?3, category = ?4, storage = ?5,
		        variant = ?6, status = ?7, cost_price = ?8, quantity = ?9,
		        updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?10
		   AND NOT (name IS ?1 AND sku IS ?2 AND description IS ?3 AND category IS ?4
		            AND storage IS ?5 AND variant IS ?6 AND status IS ?7
		            AND cost_price IS ?8 AND quantity IS ?9)`,
		append(args, id)...,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("updating item: %w", ErrDuplicateSKU)
		}
		return false, fmt.Errorf("updating item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("updating item: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	existing, err := GetItem(ctx, db, id)
	if err != nil {
		return false, err
	}
	if existing == nil {
		return false, ErrNotFound
	}
	return false, nil
}

// DeleteItem physically removes an item. A missing item yields ErrNotFound.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	if err := checkDB(db); err != nil {
		return err
	}

	result, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustQuantityBySKU applies a bulk quantity change to the item with the
// given SKU inside tx and returns the number of rows changed (0 when no
// item has that SKU). Deduct does not floor the result at zero.
func AdjustQuantityBySKU(ctx context.Context, tx *sql.Tx, mode model.QuantityMode, sku string, qty int) (int64, error) {
	var stmt string
	switch mode {
	case model.QuantityAdd:
		stmt = `UPDATE items SET quantity = COALESCE(quantity, 0) + ?, updated_at = CURRENT_TIMESTAMP WHERE sku = ?`
	case model.QuantityDeduct:
		stmt = `UPDATE items SET quantity = COALESCE(quantity, 0) - ?, updated_at = CURRENT_TIMESTAMP WHERE sku = ?`
	case model.QuantitySet:
		stmt = `UPDATE items SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE sku = ?`
	default:
		return 0, fmt.Errorf("invalid action type: %s", mode)
	}

	result, err := tx.ExecContext(ctx, stmt, qty, sku)
	if err != nil {
		return 0, fmt.Errorf("adjusting quantity: %w", err)
	}
	return result.RowsAffected()
}

func scanItem(row rowScanner) (*model.Item, error) {
	var (
		item                                             model.Item
		sku, description, category, storage, variant, st sql.NullString
		cost                                             decimal.NullDecimal
		quantity                                         sql.NullInt64
	)
	err := row.Scan(&item.ID, &item.Name, &sku, &description, &category, &storage, &variant, &st,
		&cost, &quantity, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if sku.Valid {
		item.SKU = &sku.String
	}
	item.Description = description.String
	item.Category = category.String
	item.Storage = storage.String
	item.Variant = variant.String
	item.Status = st.String
	if item.Status == "" {
		item.Status = model.ItemStatusNormal
	}
	if cost.Valid {
		item.CostPrice = cost.Decimal
	}
	item.Quantity = int(quantity.Int64)
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// nullString maps "" to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
