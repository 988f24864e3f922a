package handler

import (
	"net/http"
	"strconv"

	"github.com/dukerupert/kiosk/internal/domain"
	"github.com/dukerupert/kiosk/internal/service"
)

// AdminHandler handles PIN-gated catalog administration
type AdminHandler struct {
	catalog service.CatalogService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(catalog service.CatalogService) *AdminHandler {
	return &AdminHandler{catalog: catalog}
}

// Inventory handles GET /admin/inventory
func (h *AdminHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		RespondError(w, r, err)
		return
	}

	views := make([]productView, 0, len(products))
	var units int64
	for _, p := range products {
		views = append(views, toProductView(p))
		units += int64(p.Stock)
	}
	RespondJSON(w, http.StatusOK, map[string]any{
		"products":    views,
		"total_units": units,
	})
}

// RegisterProduct handles POST /admin/products
func (h *AdminHandler) RegisterProduct(w http.ResponseWriter, r *http.Request) {
	var params service.RegisterProductParams
	if err := DecodeJSON(r, &params); err != nil {
		RespondError(w, r, err)
		return
	}

	product, err := h.catalog.RegisterProduct(r.Context(), params)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusCreated, toProductView(product))
}

// restockRequest is the body of POST /admin/products/{id}/restock.
type restockRequest struct {
	Quantity int32 `json:"quantity"`
}

// Restock handles POST /admin/products/{id}/restock
func (h *AdminHandler) Restock(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	var req restockRequest
	if err := DecodeJSON(r, &req); err != nil {
		RespondError(w, r, err)
		return
	}

	product, err := h.catalog.Restock(r.Context(), service.RestockParams{
		ProductID: id,
		Quantity:  req.Quantity,
	})
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, toProductView(product))
}

// TopSellers handles GET /admin/top-sellers?limit=n
func (h *AdminHandler) TopSellers(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondError(w, r, domain.Invalid("admin.top_sellers", "limit must be a positive integer"))
			return
		}
		limit = n
	}

	products, err := h.catalog.TopSelling(r.Context(), limit)
	if err != nil {
		RespondError(w, r, err)
		return
	}

	views := make([]productView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	RespondJSON(w, http.StatusOK, map[string]any{"products": views})
}
