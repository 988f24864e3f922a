package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dukerupert/kiosk/internal/domain"
	"github.com/dukerupert/kiosk/internal/service"
	"github.com/dukerupert/kiosk/internal/store"
	"github.com/dukerupert/kiosk/internal/telemetry"
)

// SessionTokenHeader identifies the customer's kiosk session.
const SessionTokenHeader = "X-Session-Token"

// CartHandler handles session and cart routes
type CartHandler struct {
	sessions *service.SessionManager
	catalog  service.CatalogService
	metrics  *telemetry.BusinessMetrics
}

// NewCartHandler creates a new cart handler
func NewCartHandler(sessions *service.SessionManager, catalog service.CatalogService, metrics *telemetry.BusinessMetrics) *CartHandler {
	return &CartHandler{
		sessions: sessions,
		catalog:  catalog,
		metrics:  metrics,
	}
}

// cartView is the JSON shape of a cart.
type cartView struct {
	Lines    []cartLineView `json:"lines"`
	Subtotal string         `json:"subtotal"`
	Cents    int64          `json:"subtotal_cents"`
}

type cartLineView struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	LineTotal string `json:"line_total"`
}

func toCartView(cart *domain.Cart) cartView {
	lines := cart.Lines()
	view := cartView{
		Lines:    make([]cartLineView, 0, len(lines)),
		Subtotal: store.FormatPrice64(cart.SubtotalCents()),
		Cents:    cart.SubtotalCents(),
	}
	for _, l := range lines {
		view.Lines = append(view.Lines, cartLineView{
			ProductID: l.ProductID,
			Name:      l.Name,
			Category:  l.Category,
			Quantity:  l.Quantity,
			UnitPrice: store.FormatPrice(l.UnitPriceCents),
			LineTotal: store.FormatPrice64(l.LineTotalCents()),
		})
	}
	return view
}

// StartSession handles POST /sessions
func (h *CartHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	RespondJSON(w, http.StatusCreated, map[string]string{"token": s.Token})
}

// View handles GET /cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, r, func(cart *domain.Cart) (any, error) {
		return toCartView(cart), nil
	})
}

// addItemRequest is the body of POST /cart/items.
type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

// AddItem handles POST /cart/items. The stock check here is advisory, a
// courtesy so customers learn about shortages before the register;
// checkout revalidates against live stock regardless.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	h.withCart(w, r, func(cart *domain.Cart) (any, error) {
		wanted := cart.Quantity(product.ID) + req.Quantity
		if req.Quantity > 0 && wanted > product.Stock {
			return nil, &domain.InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   wanted,
				Available:   product.Stock,
			}
		}
		if err := cart.Add(product, req.Quantity); err != nil {
			return nil, err
		}
		h.metrics.ProductAddToCart.WithLabelValues(strconv.FormatInt(product.ID, 10)).Inc()
		return toCartView(cart), nil
	})
}

// adjustItemRequest is the body of PATCH /cart/items/{id}.
type adjustItemRequest struct {
	Delta int32 `json:"delta"`
}

// AdjustItem handles PATCH /cart/items/{id}
func (h *CartHandler) AdjustItem(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	var req adjustItemRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	h.withCart(w, r, func(cart *domain.Cart) (any, error) {
		if err := cart.Adjust(product, req.Delta); err != nil {
			return nil, err
		}
		return toCartView(cart), nil
	})
}

// RemoveItem handles DELETE /cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	h.withCart(w, r, func(cart *domain.Cart) (any, error) {
		cart.Remove(id)
		return toCartView(cart), nil
	})
}

// Clear handles DELETE /cart
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.withCart(w, r, func(cart *domain.Cart) (any, error) {
		if !cart.IsEmpty() {
			h.metrics.CartCleared.Inc()
		}
		cart.Clear()
		return toCartView(cart), nil
	})
}

// withCart resolves the session from the request and runs fn with its
// cart under the session lock, then writes the result.
func (h *CartHandler) withCart(w http.ResponseWriter, r *http.Request, fn func(cart *domain.Cart) (any, error)) {
	token := r.Header.Get(SessionTokenHeader)
	if token == "" {
		RespondError(w, r, domain.Invalid("session.token", fmt.Sprintf("%s header is required", SessionTokenHeader)))
		return
	}

	var result any
	err := h.sessions.WithCart(token, func(cart *domain.Cart) error {
		var err error
		result, err = fn(cart)
		return err
	})
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, result)
}
