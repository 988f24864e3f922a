package domain

import (
	"context"
	"time"
)

// ReceiptLine is one committed line of a sale.
type ReceiptLine struct {
	ProductID      int64
	Name           string
	Quantity       int32
	UnitPriceCents int32
	LineTotalCents int64
}

// Receipt is the record of a committed (or previewed) sale.
type Receipt struct {
	OrderID    string
	Lines      []ReceiptLine
	TotalCents int64
	CreatedAt  time.Time
}

// OrderLog receives a receipt after each successful checkout. Appending is
// best-effort: callers swallow errors because the commit's correctness
// never depends on logging succeeding.
type OrderLog interface {
	Append(ctx context.Context, r Receipt) error
}

// CheckoutService turns a cart into a committed sale, or rejects it
// without mutating anything.
type CheckoutService interface {
	// Preview revalidates the cart against live Store state and returns
	// the lines and total that a commit would produce. No side effects;
	// abandoning a previewed checkout is a no-op.
	Preview(ctx context.Context, cart *Cart) (*Receipt, error)

	// Checkout revalidates and atomically commits the sale, appends the
	// receipt to the order log, and clears the cart. Fails with
	// ErrEmptyCart, or InsufficientStockError naming the first offending
	// product, leaving the Store and the cart untouched.
	Checkout(ctx context.Context, cart *Cart) (*Receipt, error)
}
