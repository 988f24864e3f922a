package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dukerupert/kiosk/internal/domain"
	"github.com/dukerupert/kiosk/internal/telemetry"
)

// checkoutService implements the two-step checkout: Preview revalidates
// without side effects, Checkout revalidates and commits atomically.
type checkoutService struct {
	store    domain.Store
	orderLog domain.OrderLog
	metrics  *telemetry.BusinessMetrics
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

var _ domain.CheckoutService = (*checkoutService)(nil)

// NewCheckoutService creates a new CheckoutService instance. orderLog may
// be nil when no sink is configured.
func NewCheckoutService(store domain.Store, orderLog domain.OrderLog, metrics *telemetry.BusinessMetrics, logger *slog.Logger) domain.CheckoutService {
	return &checkoutService{
		store:    store,
		orderLog: orderLog,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
		newID:    func() string { return uuid.New().String() },
	}
}

// Preview revalidates every cart line against live stock and prices the
// order a commit would produce. The Store is not mutated; a customer can
// abandon a previewed checkout with zero cleanup.
func (s *checkoutService) Preview(ctx context.Context, cart *domain.Cart) (*domain.Receipt, error) {
	if cart.IsEmpty() {
		return nil, domain.ErrEmptyCart
	}

	receipt, err := s.price(ctx, cart)
	if err != nil {
		return nil, err
	}

	s.metrics.CheckoutPreviewed.Inc()
	return receipt, nil
}

// Checkout revalidates, commits the sale atomically, records the receipt,
// and clears the cart. On any rejection the Store and the cart are left
// exactly as they were.
func (s *checkoutService) Checkout(ctx context.Context, cart *domain.Cart) (*domain.Receipt, error) {
	if cart.IsEmpty() {
		s.metrics.CheckoutRejected.WithLabelValues("empty_cart").Inc()
		return nil, domain.ErrEmptyCart
	}

	receipt, err := s.price(ctx, cart)
	if err != nil {
		s.rejected(err)
		return nil, err
	}

	lines := make([]domain.SaleLine, 0, len(receipt.Lines))
	for _, l := range receipt.Lines {
		lines = append(lines, domain.SaleLine{ProductID: l.ProductID, Quantity: l.Quantity})
	}

	// The price pass above is advisory only: between it and ApplySale a
	// concurrent checkout may have drained stock. ApplySale rechecks every
	// line under its own serialization, so correctness rests there.
	if err := s.store.ApplySale(ctx, lines); err != nil {
		s.rejected(err)
		return nil, err
	}

	receipt.OrderID = s.newID()
	receipt.CreatedAt = s.now()

	if s.orderLog != nil {
		if err := s.orderLog.Append(ctx, *receipt); err != nil {
			// The sale is already committed; logging failures must not
			// surface to the customer.
			s.logger.Warn("order log append failed",
				"order_id", receipt.OrderID,
				"error", err,
			)
		}
	}

	var items int32
	for _, l := range lines {
		items += l.Quantity
	}
	s.metrics.CheckoutCompleted.Inc()
	s.metrics.ItemsSold.Add(float64(items))
	s.metrics.OrderValue.Observe(float64(receipt.TotalCents))

	cart.Clear()

	s.logger.Info("checkout committed",
		"order_id", receipt.OrderID,
		"lines", len(receipt.Lines),
		"items", items,
		"total_cents", receipt.TotalCents,
	)
	return receipt, nil
}

// price builds a receipt for the cart from live Store state, rejecting
// lines whose product is gone or short on stock.
func (s *checkoutService) price(ctx context.Context, cart *domain.Cart) (*domain.Receipt, error) {
	cartLines := cart.Lines()
	receipt := &domain.Receipt{
		Lines: make([]domain.ReceiptLine, 0, len(cartLines)),
	}

	for _, cl := range cartLines {
		p, err := s.store.FindByID(ctx, cl.ProductID)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				// A product withdrawn after it was carted reads as zero
				// availability rather than a bare not-found.
				return nil, &domain.InsufficientStockError{
					ProductID:   cl.ProductID,
					ProductName: cl.Name,
					Requested:   cl.Quantity,
					Available:   0,
				}
			}
			return nil, fmt.Errorf("failed to revalidate product %d: %w", cl.ProductID, err)
		}
		if p.Stock < cl.Quantity {
			return nil, &domain.InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   cl.Quantity,
				Available:   p.Stock,
			}
		}
		line := domain.ReceiptLine{
			ProductID:      p.ID,
			Name:           p.Name,
			Quantity:       cl.Quantity,
			UnitPriceCents: p.PriceCents,
		}
		line.LineTotalCents = int64(line.UnitPriceCents) * int64(line.Quantity)
		receipt.Lines = append(receipt.Lines, line)
		receipt.TotalCents += line.LineTotalCents
	}
	return receipt, nil
}

func (s *checkoutService) rejected(err error) {
	reason := "internal"
	if _, ok := domain.IsInsufficientStock(err); ok {
		reason = "insufficient_stock"
	} else if domain.IsCode(err, domain.EINVALID) {
		reason = "invalid"
	}
	s.metrics.CheckoutRejected.WithLabelValues(reason).Inc()
}
