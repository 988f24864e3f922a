package handler

import (
	"net/http"
	"strconv"

	"github.com/dukerupert/kiosk/internal/domain"
	"github.com/dukerupert/kiosk/internal/service"
	"github.com/dukerupert/kiosk/internal/store"
)

// ProductHandler serves the public catalog
type ProductHandler struct {
	catalog service.CatalogService
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog service.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// productView is the JSON shape of a catalog entry. Price is serialized
// both as integer cents and as a display string.
type productView struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Cents    int32  `json:"price_cents"`
	Stock    int32  `json:"stock"`
	Sold     int32  `json:"sold"`
}

func toProductView(p domain.Product) productView {
	return productView{
		ID:       p.ID,
		Category: p.Category,
		Name:     p.Name,
		Price:    store.FormatPrice(p.PriceCents),
		Cents:    p.PriceCents,
		Stock:    p.Stock,
		Sold:     p.Sold,
	}
}

// List handles GET /products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
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

// Get handles GET /products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := PathID(r, "id")
	if err != nil {
		RespondError(w, r, err)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		RespondError(w, r, err)
		return
	}
	RespondJSON(w, http.StatusOK, toProductView(product))
}

// PathID parses the named path segment as a positive integer id.
func PathID(r *http.Request, name string) (int64, error) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("request.path", "Invalid product id")
	}
	return id, nil
}
