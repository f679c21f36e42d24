package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/elshop/internal/api"
	"github.com/RoyceAzure/lab/elshop/internal/api/dto"
	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"github.com/RoyceAzure/lab/elshop/internal/service"
	"github.com/go-chi/chi/v5"
)

type CustomerHandler struct {
	customerService service.ICustomerService
}

func NewCustomerHandler(customerService service.ICustomerService) *CustomerHandler {
	if customerService == nil {
		panic("customerService cannot be nil")
	}
	return &CustomerHandler{customerService: customerService}
}

// CreateCustomer 建立客戶
// POST /api/v1/customers
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateCustomerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.Email == "" || req.FirstName == "" || req.LastName == "" {
		api.ErrorJSON(w, http.StatusBadRequest, "email, first_name and last_name are required", nil)
		return
	}

	customer, err := h.customerService.CreateCustomer(r.Context(), &model.Customer{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, "failed to create customer", nil)
		return
	}
	api.SuccessJSON(w, customer)
}

// GetCustomer 查單筆客戶
// GET /api/v1/customers/{customerID}
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseUint(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid customer id", nil)
		return
	}

	customer, err := h.customerService.GetCustomer(r.Context(), uint(customerID))
	if err != nil {
		if errors.Is(err, service.ErrCustomerNotExist) {
			api.ErrorJSON(w, http.StatusNotFound, "customer not found", nil)
			return
		}
		api.ErrorJSON(w, http.StatusInternalServerError, "failed to load customer", nil)
		return
	}
	api.SuccessJSON(w, customer)
}

// DeleteCustomer 刪除客戶，歷史訂單保留
// DELETE /api/v1/customers/{customerID}
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseUint(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid customer id", nil)
		return
	}

	if err := h.customerService.DeleteCustomer(r.Context(), uint(customerID)); err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, "failed to delete customer", nil)
		return
	}
	api.SuccessJSON(w, nil)
}

// ListAddresses 客戶地址清單
// GET /api/v1/customers/{customerID}/addresses
func (h *CustomerHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	customerID, err := strconv.ParseUint(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid customer id", nil)
		return
	}

	addresses, err := h.customerService.ListAddresses(r.Context(), uint(customerID))
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, "failed to load addresses", nil)
		return
	}
	api.SuccessJSON(w, addresses)
}
