package domain

import (
	"context"
	"errors"
	"fmt"
)

// =============================================================================
// PRODUCT DOMAIN TYPES
// =============================================================================

// Product represents a catalog item for sale at the kiosk.
// Identity is the ID: two Product values denote the same entity iff their
// IDs match, regardless of the counters. Stock and Sold are only meaningful
// on the copy held by the Store; cart code must treat them as stale
// snapshots.
type Product struct {
	ID       int64
	Category string
	Name     string

	// PriceCents is the unit price in integer cents. Immutable after
	// creation.
	PriceCents int32

	// Stock is the quantity currently available for sale. Never negative.
	Stock int32

	// Sold is the lifetime quantity sold. Never negative, never decreases.
	Sold int32
}

// NewProduct creates a Product with validated fields and a zero Sold
// counter. IDs are assigned externally (seed file or admin registration).
func NewProduct(id int64, category, name string, priceCents, stock int32) (Product, error) {
	if priceCents < 0 {
		return Product{}, ErrNegativePrice
	}
	if stock < 0 {
		return Product{}, ErrNegativeStock
	}
	if name == "" {
		return Product{}, Invalid("product.new", "product name is required")
	}
	return Product{
		ID:         id,
		Category:   category,
		Name:       name,
		PriceCents: priceCents,
		Stock:      stock,
	}, nil
}

// RehydrateProduct reconstructs a Product from persisted state, including
// a non-zero Sold counter. Only persistence code should use this; regular
// creation goes through NewProduct so Sold always starts at zero.
func RehydrateProduct(id int64, category, name string, priceCents, stock, sold int32) (Product, error) {
	p, err := NewProduct(id, category, name, priceCents, stock)
	if err != nil {
		return Product{}, err
	}
	if sold < 0 {
		return Product{}, Invalid("product.rehydrate", "sold counter cannot be negative")
	}
	p.Sold = sold
	return p, nil
}

// SaleLine is one (product, quantity) pair of a sale to be committed
// against the Store.
type SaleLine struct {
	ProductID int64
	Quantity  int32
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store owns the authoritative stock/sold state for every Product.
// All mutations are serialized: two concurrent increments on the same
// product's stock are both reflected, and ApplySale is atomic across all
// of its lines. Implementations must be safe for concurrent use.
type Store interface {
	// FindByID returns the current state of a product.
	// Returns ErrProductNotFound for unknown ids.
	FindByID(ctx context.Context, id int64) (Product, error)

	// ListAll returns a snapshot of the whole catalog ordered by category
	// then name. Mutating the returned slice has no effect on the Store.
	ListAll(ctx context.Context) ([]Product, error)

	// Register adds a new product. Returns ErrDuplicateProduct when the
	// id is already taken.
	Register(ctx context.Context, p Product) error

	// Restock atomically increases a product's stock by qty.
	// qty must be positive; unknown ids return ErrProductNotFound.
	Restock(ctx context.Context, id int64, qty int32) error

	// ApplySale commits a sale: for every line, stock -= qty and
	// sold += qty. The commit is all-or-nothing: if any line's product
	// is missing or short on stock, no line is applied and the error
	// identifies the offending product via InsufficientStockError or
	// ErrProductNotFound. Quantities must be positive.
	ApplySale(ctx context.Context, lines []SaleLine) error

	// TopSelling returns the top n products by Sold descending, ties
	// broken by ID ascending. n <= 0 yields an empty slice; n larger
	// than the catalog returns the whole catalog in that order.
	TopSelling(ctx context.Context, n int) ([]Product, error)
}

// =============================================================================
// DOMAIN ERRORS
// =============================================================================

var (
	ErrProductNotFound  = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrDuplicateProduct = &Error{Code: ECONFLICT, Message: "Product id already registered"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
	ErrNegativePrice    = &Error{Code: EINVALID, Message: "Price cannot be negative"}
	ErrNegativeStock    = &Error{Code: EINVALID, Message: "Stock cannot be negative"}
)

// InsufficientStockError reports a sale line that exceeds the product's
// current stock, naming the offending product. Available is the stock at
// the moment the check ran (zero when the product no longer exists).
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Requested   int32
	Available   int32
}

// Error implements the error interface.
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q (id %d): requested %d, available %d",
		e.ProductName, e.ProductID, e.Requested, e.Available)
}

// IsInsufficientStock reports whether err is an InsufficientStockError
// and returns it for inspection.
func IsInsufficientStock(err error) (*InsufficientStockError, bool) {
	var e *InsufficientStockError
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
