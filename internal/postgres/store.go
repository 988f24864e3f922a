// Package postgres implements domain.Store on PostgreSQL. Multi-line
// sales run in a single transaction whose per-line updates carry a
// stock >= quantity guard, so overlapping checkouts serialize at the row
// level and a losing checkout rolls back without any partial commit.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dukerupert/kiosk/internal/domain"
	"github.com/dukerupert/kiosk/internal/repository"
)

// uniqueViolation is the PostgreSQL error code for duplicate keys.
const uniqueViolation = "23505"

// Store is a PostgreSQL-backed implementation of domain.Store.
type Store struct {
	pool *pgxpool.Pool
	q    *repository.Queries
}

// Compile-time check that Store implements domain.Store.
var _ domain.Store = (*Store)(nil)

// NewStore creates a Store on top of the given connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool: pool,
		q:    repository.New(pool),
	}
}

// FindByID returns the current state of a product.
func (s *Store) FindByID(ctx context.Context, id int64) (domain.Product, error) {
	row, err := s.q.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, domain.Internal(err, "store.find", "failed to get product")
	}
	return mapRow(row), nil
}

// ListAll returns the catalog ordered by category then name.
func (s *Store) ListAll(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.q.ListProducts(ctx)
	if err != nil {
		return nil, domain.Internal(err, "store.list", "failed to list products")
	}
	out := make([]domain.Product, len(rows))
	for i, r := range rows {
		out[i] = mapRow(r)
	}
	return out, nil
}

// Register inserts a new product row.
func (s *Store) Register(ctx context.Context, p domain.Product) error {
	err := s.q.InsertProduct(ctx, repository.InsertProductParams{
		ID:         p.ID,
		Category:   p.Category,
		Name:       p.Name,
		PriceCents: p.PriceCents,
		Stock:      p.Stock,
		Sold:       p.Sold,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateProduct
		}
		return domain.Internal(err, "store.register", "failed to insert product")
	}
	return nil
}

// Restock atomically increases a product's stock by qty.
func (s *Store) Restock(ctx context.Context, id int64, qty int32) error {
	if qty <= 0 {
		return domain.ErrInvalidQuantity
	}

	rows, err := s.q.RestockProduct(ctx, repository.RestockProductParams{
		ID:       id,
		Quantity: qty,
	})
	if err != nil {
		return domain.Internal(err, "store.restock", "failed to restock product")
	}
	if rows == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

// ApplySale commits every line in one transaction. A line whose guarded
// update touches zero rows means the product is missing or short on
// stock; the transaction rolls back and the error names the product.
func (s *Store) ApplySale(ctx context.Context, lines []domain.SaleLine) error {
	for _, l := range lines {
		if l.Quantity <= 0 {
			return domain.ErrInvalidQuantity
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, "store.apply_sale", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	qtx := s.q.WithTx(tx)
	for _, l := range lines {
		rows, err := qtx.ConsumeStock(ctx, repository.ConsumeStockParams{
			ID:       l.ProductID,
			Quantity: l.Quantity,
		})
		if err != nil {
			return domain.Internal(err, "store.apply_sale", "failed to consume stock")
		}
		if rows == 0 {
			return s.insufficientStock(ctx, qtx, l)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, "store.apply_sale", "failed to commit sale")
	}
	return nil
}

// insufficientStock builds the rejection error for a failed line, reading
// the row inside the doomed transaction so Available reflects the state
// the commit actually saw.
func (s *Store) insufficientStock(ctx context.Context, qtx *repository.Queries, l domain.SaleLine) error {
	p, err := qtx.GetProduct(ctx, l.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &domain.InsufficientStockError{
				ProductID: l.ProductID,
				Requested: l.Quantity,
				Available: 0,
			}
		}
		return domain.Internal(err, "store.apply_sale", "failed to inspect product after rejected sale line")
	}
	return &domain.InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Requested:   l.Quantity,
		Available:   p.Stock,
	}
}

// TopSelling returns the top n products by Sold descending, id ascending.
func (s *Store) TopSelling(ctx context.Context, n int) ([]domain.Product, error) {
	if n <= 0 {
		return []domain.Product{}, nil
	}
	rows, err := s.q.TopSellingProducts(ctx, int32(n))
	if err != nil {
		return nil, domain.Internal(err, "store.top_selling", "failed to query top sellers")
	}
	out := make([]domain.Product, len(rows))
	for i, r := range rows {
		out[i] = mapRow(r)
	}
	return out, nil
}

// SeedIfEmpty imports products only when the table has no rows, matching
// the one-time import behavior of the seed file path.
func (s *Store) SeedIfEmpty(ctx context.Context, products []domain.Product) error {
	n, err := s.q.CountProducts(ctx)
	if err != nil {
		return domain.Internal(err, "store.seed", "failed to count products")
	}
	if n > 0 || len(products) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, "store.seed", "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	qtx := s.q.WithTx(tx)
	for _, p := range products {
		err := qtx.InsertProduct(ctx, repository.InsertProductParams{
			ID:         p.ID,
			Category:   p.Category,
			Name:       p.Name,
			PriceCents: p.PriceCents,
			Stock:      p.Stock,
			Sold:       p.Sold,
		})
		if err != nil {
			return domain.Internal(err, "store.seed", fmt.Sprintf("failed to seed product %d", p.ID))
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, "store.seed", "failed to commit seed import")
	}
	return nil
}

func mapRow(r repository.Product) domain.Product {
	return domain.Product{
		ID:         r.ID,
		Category:   r.Category,
		Name:       r.Name,
		PriceCents: r.PriceCents,
		Stock:      r.Stock,
		Sold:       r.Sold,
	}
}
