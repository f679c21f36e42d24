package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/elshop/internal/api"
	"github.com/RoyceAzure/lab/elshop/internal/service"
	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	orderService service.IOrderService
}

func NewOrderHandler(orderService service.IOrderService) *OrderHandler {
	if orderService == nil {
		panic("orderService cannot be nil")
	}
	return &OrderHandler{orderService: orderService}
}

// GetOrder 查單筆訂單，帶項目與付款
// GET /api/v1/orders/{orderID}
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseUint(chi.URLParam(r, "orderID"), 10, 64)
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid order id", nil)
		return
	}

	order, err := h.orderService.GetOrder(r.Context(), uint(orderID))
	if err != nil {
		if errors.Is(err, service.ErrOrderNotExist) {
			api.ErrorJSON(w, http.StatusNotFound, "order not found", nil)
			return
		}
		api.ErrorJSON(w, http.StatusInternalServerError, "failed to load order", nil)
		return
	}
	api.SuccessJSON(w, order)
}

// ListOrders 客戶訂單歷史
// GET /api/v1/orders?customer_id=
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseUint(r.URL.Query().Get("customer_id"), 10, 64)
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid customer id", nil)
		return
	}

	orders, err := h.orderService.GetOrdersByCustomerID(r.Context(), uint(customerID))
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, "failed to load orders", nil)
		return
	}
	api.SuccessJSON(w, orders)
}
