// Package api serves the bridge between the desktop UI and the inventory
// database as a loopback JSON API.
package api

import (
	"database/sql"
	"net/http"

	"github.com/bioskin/inventory/internal/model"
)

// Options configures the router.
type Options struct {
	JWTSecret         string
	LowStockThreshold int
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(db *sql.DB, opts Options) http.Handler {
	mux := http.NewServeMux()

	if opts.LowStockThreshold <= 0 {
		opts.LowStockThreshold = model.DefaultLowStockThreshold
	}

	authHandler := &AuthHandler{DB: db, JWTSecret: opts.JWTSecret}
	usersHandler := &UsersHandler{DB: db}
	itemsHandler := &ItemsHandler{DB: db}
	inventoryHandler := &InventoryHandler{DB: db, LowStockThreshold: opts.LowStockThreshold}

	// Session.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("POST /api/auth/logout", optional(authHandler.Logout))
	mux.Handle("GET /api/auth/session", optional(authHandler.Session))
	mux.Handle("PUT /api/auth/password", withSession(authHandler.ChangePassword))

	// Users (admin only).
	mux.Handle("GET /api/users", withSession(adminOnly(usersHandler.List)))
	mux.Handle("POST /api/users", withSession(adminOnly(usersHandler.Create)))

	// Items. Delete answers non-admins with a permission-denied result.
	mux.Handle("GET /api/items", withSession(itemsHandler.List))
	mux.Handle("POST /api/items", withSession(itemsHandler.Create))
	mux.Handle("GET /api/items/{id}", withSession(itemsHandler.Get))
	mux.Handle("PUT /api/items/{id}", withSession(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", optional(itemsHandler.Delete))

	// Inventory.
	mux.Handle("GET /api/inventory/summary", withSession(inventoryHandler.Summary))
	mux.Handle("GET /api/inventory/low-stock", withSession(inventoryHandler.LowStock))
	mux.Handle("POST /api/inventory/bulk-update", withSession(inventoryHandler.BulkUpdate))
	mux.Handle("POST /api/inventory/import", withSession(inventoryHandler.Import))

	return SessionMiddleware(opts.JWTSecret, db)(mux)
}
