package api

import (
	"encoding/json"
	"net/http"

	"github.com/example/retail-backoffice/internal/command"
	"github.com/example/retail-backoffice/internal/query"
	"go.uber.org/zap"
)

type Handlers struct {
	cmdHandler   *command.Handler
	queryHandler *query.Handler
	logger       *zap.Logger
}

func NewHandlers(cmdHandler *command.Handler, queryHandler *query.Handler, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		cmdHandler:   cmdHandler,
		queryHandler: queryHandler,
		logger:       logger.Named("api"),
	}
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if statusFor(err) >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	respondDomainError(w, err)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondJSONError(w, "Invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

// Product Handlers

func (h *Handlers) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateProduct
	if !decode(w, r, &cmd) {
		return
	}

	product, err := h.cmdHandler.CreateProduct(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, product)
}

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.queryHandler.ListProducts(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.queryHandler.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateProduct
	if !decode(w, r, &cmd) {
		return
	}
	cmd.ProductID = r.PathValue("id")

	product, err := h.cmdHandler.UpdateProduct(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *Handlers) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	cmd := command.DeleteProduct{ProductID: r.PathValue("id")}
	if err := h.cmdHandler.DeleteProduct(r.Context(), cmd); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

// Inventory Handlers

func (h *Handlers) GetInventory(w http.ResponseWriter, r *http.Request) {
	views, err := h.queryHandler.ListInventory(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

func (h *Handlers) GetProductInventory(w http.ResponseWriter, r *http.Request) {
	view, err := h.queryHandler.GetInventory(r.Context(), r.PathValue("productId"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (h *Handlers) GetInventoryAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := h.queryHandler.InventoryAlerts(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, alerts)
}

func (h *Handlers) SyncInventory(w http.ResponseWriter, r *http.Request) {
	report, err := h.cmdHandler.SyncInventory(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *Handlers) AdjustStock(w http.ResponseWriter, r *http.Request) {
	var cmd command.AdjustStock
	if !decode(w, r, &cmd) {
		return
	}
	cmd.ProductID = r.PathValue("productId")

	res, err := h.cmdHandler.AdjustStock(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handlers) StockIn(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.cmdHandler.StockIn(r.Context(), command.StockIn{
		ProductID: r.PathValue("productId"),
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handlers) StockOut(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !decode(w, r, &req) {
		return
	}

	res, err := h.cmdHandler.StockOut(r.Context(), command.StockOut{
		ProductID: r.PathValue("productId"),
		Quantity:  req.Quantity,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handlers) SetThresholds(w http.ResponseWriter, r *http.Request) {
	var cmd command.SetThresholds
	if !decode(w, r, &cmd) {
		return
	}
	cmd.ProductID = r.PathValue("productId")

	rec, err := h.cmdHandler.SetThresholds(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

// Order Handlers

func (h *Handlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var cmd command.CreateOrder
	if !decode(w, r, &cmd) {
		return
	}

	o, err := h.cmdHandler.CreateOrder(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, o)
}

func (h *Handlers) GetOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.queryHandler.ListOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handlers) GetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.queryHandler.GetOrder(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, o)
}

func (h *Handlers) GetOrderStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.queryHandler.OrderStats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (h *Handlers) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var cmd command.UpdateOrderStatus
	if !decode(w, r, &cmd) {
		return
	}
	cmd.OrderID = r.PathValue("id")

	res, err := h.cmdHandler.UpdateOrderStatus(r.Context(), cmd)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *Handlers) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	cmd := command.DeleteOrder{OrderID: r.PathValue("id")}
	if err := h.cmdHandler.DeleteOrder(r.Context(), cmd); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Order deleted"})
}

func (h *Handlers) SendOrderNotification(w http.ResponseWriter, r *http.Request) {
	var cmd command.SendOrderNotification
	if !decode(w, r, &cmd) {
		return
	}
	cmd.OrderID = r.PathValue("id")

	if err := h.cmdHandler.SendOrderNotification(r.Context(), cmd); err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusAccepted, map[string]string{"message": "Notification sent"})
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
