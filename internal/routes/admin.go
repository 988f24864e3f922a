package routes

import (
	"github.com/dukerupert/kiosk/internal/middleware"
	"github.com/dukerupert/kiosk/internal/router"
)

// RegisterAdminRoutes registers the operator routes behind the PIN gate.
func RegisterAdminRoutes(r *router.Router, deps AdminDeps) {
	admin := r.Group(middleware.RequireAdminPIN(deps.AdminPIN))

	admin.Get("/admin/inventory", deps.AdminHandler.Inventory)
	admin.Post("/admin/products", deps.AdminHandler.RegisterProduct)
	admin.Post("/admin/products/{id}/restock", deps.AdminHandler.Restock)
	admin.Get("/admin/top-sellers", deps.AdminHandler.TopSellers)
}
