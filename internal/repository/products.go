package repository

import (
	"context"
)

// Product mirrors one row of the products table.
type Product struct {
	ID         int64
	Category   string
	Name       string
	PriceCents int32
	Stock      int32
	Sold       int32
}

const getProduct = `
SELECT id, category, name, price_cents, stock, sold
FROM products
WHERE id = $1
`

// GetProduct fetches a single product row by id.
func (q *Queries) GetProduct(ctx context.Context, id int64) (Product, error) {
	row := q.db.QueryRow(ctx, getProduct, id)
	var p Product
	err := row.Scan(&p.ID, &p.Category, &p.Name, &p.PriceCents, &p.Stock, &p.Sold)
	return p, err
}

const listProducts = `
SELECT id, category, name, price_cents, stock, sold
FROM products
ORDER BY category, name, id
`

// ListProducts returns the whole catalog in display order.
func (q *Queries) ListProducts(ctx context.Context) ([]Product, error) {
	rows, err := q.db.Query(ctx, listProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Category, &p.Name, &p.PriceCents, &p.Stock, &p.Sold); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const insertProduct = `
INSERT INTO products (id, category, name, price_cents, stock, sold)
VALUES ($1, $2, $3, $4, $5, $6)
`

// InsertProductParams contains parameters for InsertProduct.
type InsertProductParams struct {
	ID         int64
	Category   string
	Name       string
	PriceCents int32
	Stock      int32
	Sold       int32
}

// InsertProduct inserts a new product row. A duplicate id surfaces as a
// unique-constraint violation.
func (q *Queries) InsertProduct(ctx context.Context, arg InsertProductParams) error {
	_, err := q.db.Exec(ctx, insertProduct,
		arg.ID, arg.Category, arg.Name, arg.PriceCents, arg.Stock, arg.Sold)
	return err
}

const restockProduct = `
UPDATE products
SET stock = stock + $2
WHERE id = $1
`

// RestockProductParams contains parameters for RestockProduct.
type RestockProductParams struct {
	ID       int64
	Quantity int32
}

// RestockProduct atomically increases a product's stock. Returns the
// number of rows updated (zero for an unknown id).
func (q *Queries) RestockProduct(ctx context.Context, arg RestockProductParams) (int64, error) {
	tag, err := q.db.Exec(ctx, restockProduct, arg.ID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const consumeStock = `
UPDATE products
SET stock = stock - $2, sold = sold + $2
WHERE id = $1 AND stock >= $2
`

// ConsumeStockParams contains parameters for ConsumeStock.
type ConsumeStockParams struct {
	ID       int64
	Quantity int32
}

// ConsumeStock decrements stock and increments sold for a sale line. The
// stock >= quantity guard makes the update a no-op instead of driving
// stock negative; callers treat zero rows as insufficient stock and roll
// back the enclosing transaction.
func (q *Queries) ConsumeStock(ctx context.Context, arg ConsumeStockParams) (int64, error) {
	tag, err := q.db.Exec(ctx, consumeStock, arg.ID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const topSellingProducts = `
SELECT id, category, name, price_cents, stock, sold
FROM products
ORDER BY sold DESC, id ASC
LIMIT $1
`

// TopSellingProducts returns up to limit products by sold descending,
// id ascending.
func (q *Queries) TopSellingProducts(ctx context.Context, limit int32) ([]Product, error) {
	rows, err := q.db.Query(ctx, topSellingProducts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Category, &p.Name, &p.PriceCents, &p.Stock, &p.Sold); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const countProducts = `
SELECT COUNT(*) FROM products
`

// CountProducts returns the number of catalog rows.
func (q *Queries) CountProducts(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countProducts).Scan(&n)
	return n, err
}
