package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dukerupert/kiosk/internal/domain"
	"github.com/dukerupert/kiosk/internal/service"
	"github.com/dukerupert/kiosk/internal/store"
)

// CheckoutHandler handles the two-step checkout flow
type CheckoutHandler struct {
	sessions *service.SessionManager
	checkout domain.CheckoutService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(sessions *service.SessionManager, checkout domain.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		sessions: sessions,
		checkout: checkout,
	}
}

// receiptView is the JSON shape of a priced or committed order.
type receiptView struct {
	OrderID   string            `json:"order_id,omitempty"`
	CreatedAt string            `json:"created_at,omitempty"`
	Lines     []receiptLineView `json:"lines"`
	Total     string            `json:"total"`
	Cents     int64             `json:"total_cents"`
}

type receiptLineView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

func toReceiptView(r *domain.Receipt) receiptView {
	view := receiptView{
		OrderID: r.OrderID,
		Lines:   make([]receiptLineView, 0, len(r.Lines)),
		Total:   store.FormatPrice64(r.TotalCents),
		Cents:   r.TotalCents,
	}
	if !r.CreatedAt.IsZero() {
		view.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}
	for _, l := range r.Lines {
		view.Lines = append(view.Lines, receiptLineView{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: store.FormatPrice(l.UnitPriceCents),
			LineTotal: store.FormatPrice64(l.LineTotalCents),
		})
	}
	return view
}

// Preview handles POST /checkout/preview
func (h *CheckoutHandler) Preview(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, http.StatusOK, h.checkout.Preview)
}

// Commit handles POST /checkout
func (h *CheckoutHandler) Commit(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, http.StatusCreated, h.checkout.Checkout)
}

func (h *CheckoutHandler) run(w http.ResponseWriter, r *http.Request, status int, op func(ctx context.Context, cart *domain.Cart) (*domain.Receipt, error)) {
	token := r.Header.Get(SessionTokenHeader)
	if token == "" {
		RespondError(w, r, domain.Invalid("session.token", fmt.Sprintf("%s header is required", SessionTokenHeader)))
		return
	}

	var receipt *domain.Receipt
	err := h.sessions.WithCart(token, func(cart *domain.Cart) error {
		var err error
		receipt, err = op(r.Context(), cart)
		return err
	})
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, status, toReceiptView(receipt))
}
