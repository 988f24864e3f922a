package routes

import (
	"github.com/dukerupert/kiosk/internal/router"
)

// RegisterKioskRoutes registers the customer-facing routes. No
// authentication: a kiosk session token scopes each cart.
func RegisterKioskRoutes(r *router.Router, deps KioskDeps) {
	// Catalog
	r.Get("/products", deps.ProductHandler.List)
	r.Get("/products/{id}", deps.ProductHandler.Get)

	// Sessions
	r.Post("/sessions", deps.CartHandler.StartSession)

	// Cart
	r.Get("/cart", deps.CartHandler.View)
	r.Post("/cart/items", deps.CartHandler.AddItem)
	r.Patch("/cart/items/{id}", deps.CartHandler.AdjustItem)
	r.Delete("/cart/items/{id}", deps.CartHandler.RemoveItem)
	r.Delete("/cart", deps.CartHandler.Clear)

	// Checkout
	r.Post("/checkout/preview", deps.CheckoutHandler.Preview)
	r.Post("/checkout", deps.CheckoutHandler.Commit)
}
