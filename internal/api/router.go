package api

import (
	"net/http"

	"github.com/example/retail-backoffice/internal/api/middleware"
	"github.com/example/retail-backoffice/internal/auth"
	"go.uber.org/zap"
)

func NewRouter(handlers *Handlers, authHandlers *AuthHandlers, jwtService *auth.JWTService, logger *zap.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Auth
	authenticated := middleware.AuthMiddleware(jwtService)
	mux.HandleFunc("POST /auth/login", authHandlers.Login)
	mux.HandleFunc("POST /auth/refresh", authHandlers.Refresh)
	mux.HandleFunc("POST /auth/logout", authHandlers.Logout)
	mux.Handle("GET /auth/me", authenticated(http.HandlerFunc(authHandlers.Me)))

	api := http.NewServeMux()

	// Products
	api.HandleFunc("GET /api/products", handlers.GetProducts)
	api.HandleFunc("POST /api/products", handlers.CreateProduct)
	api.HandleFunc("GET /api/products/{id}", handlers.GetProduct)
	api.HandleFunc("PUT /api/products/{id}", handlers.UpdateProduct)
	api.HandleFunc("DELETE /api/products/{id}", handlers.DeleteProduct)

	// Inventory
	api.HandleFunc("GET /api/inventory", handlers.GetInventory)
	api.HandleFunc("GET /api/inventory/alerts", handlers.GetInventoryAlerts)
	api.HandleFunc("POST /api/inventory/sync", handlers.SyncInventory)
	api.HandleFunc("GET /api/inventory/{productId}", handlers.GetProductInventory)
	api.HandleFunc("POST /api/inventory/{productId}/adjust", handlers.AdjustStock)
	api.HandleFunc("POST /api/inventory/{productId}/stock-in", handlers.StockIn)
	api.HandleFunc("POST /api/inventory/{productId}/stock-out", handlers.StockOut)
	api.HandleFunc("PUT /api/inventory/{productId}/thresholds", handlers.SetThresholds)

	// Orders
	api.HandleFunc("GET /api/orders", handlers.GetOrders)
	api.HandleFunc("POST /api/orders", handlers.CreateOrder)
	api.HandleFunc("GET /api/orders/stats", handlers.GetOrderStats)
	api.HandleFunc("GET /api/orders/{id}", handlers.GetOrder)
	api.HandleFunc("DELETE /api/orders/{id}", handlers.DeleteOrder)
	api.HandleFunc("PUT /api/orders/{id}/status", handlers.UpdateOrderStatus)
	api.HandleFunc("POST /api/orders/{id}/notifications", handlers.SendOrderNotification)

	mux.Handle("/api/", authenticated(middleware.RequireRole(auth.RoleOperator)(api)))

	return middleware.Logging(logger)(mux)
}
