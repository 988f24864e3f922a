package routes

import (
	"github.com/dukerupert/kiosk/internal/handler"
)

// KioskDeps contains dependencies for the customer-facing routes
type KioskDeps struct {
	// Catalog
	ProductHandler *handler.ProductHandler

	// Sessions and carts
	CartHandler *handler.CartHandler

	// Checkout
	CheckoutHandler *handler.CheckoutHandler
}

// AdminDeps contains dependencies for PIN-gated admin routes
type AdminDeps struct {
	AdminHandler *handler.AdminHandler

	// AdminPIN gates every route in the group
	AdminPIN string
}
