package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/RoyceAzure/lab/elshop/internal/api"
	"github.com/RoyceAzure/lab/elshop/internal/api/dto"
	"github.com/RoyceAzure/lab/elshop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/elshop/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/elshop/internal/service"
)

type CheckoutHandler struct {
	checkoutService service.ICheckoutService
	cartRepo        *redis_repo.CartRepo
}

func NewCheckoutHandler(checkoutService service.ICheckoutService, cartRepo *redis_repo.CartRepo) *CheckoutHandler {
	if checkoutService == nil {
		panic("checkoutService cannot be nil")
	}
	if cartRepo == nil {
		panic("cartRepo cannot be nil")
	}
	return &CheckoutHandler{
		checkoutService: checkoutService,
		cartRepo:        cartRepo,
	}
}

// Checkout 把 session 購物車結帳成訂單
// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		api.ErrorJSON(w, http.StatusBadRequest, "missing X-Session-ID header", nil)
		return
	}

	var req dto.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	ctx := r.Context()

	cart, _, err := h.cartRepo.Get(ctx, sessionID)
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, "order could not be completed", nil)
		return
	}

	order, err := h.checkoutService.Checkout(ctx, req.CustomerID, cart, req.Address, req.PaymentMethod)
	if err != nil {
		writeCheckoutError(w, err)
		return
	}

	// 結帳成功，session 購物車一併清掉
	if err := h.cartRepo.Clear(ctx, sessionID); err != nil {
		// 訂單已成立，清購物車失敗只回報不翻案
		api.SuccessJSON(w, order)
		return
	}

	api.SuccessJSON(w, order)
}

// writeCheckoutError 把結帳錯誤對應到各自的使用者訊息
// InvalidAddressError 列出缺漏欄位，儲存層錯誤一律回generic訊息
func writeCheckoutError(w http.ResponseWriter, err error) {
	var addrErr *service.InvalidAddressError
	switch {
	case errors.Is(err, service.ErrEmptyCart):
		api.ErrorJSON(w, http.StatusBadRequest, "cart is empty", nil)
	case errors.Is(err, service.ErrInvalidCart):
		api.ErrorJSON(w, http.StatusBadRequest, "cart contains invalid items", nil)
	case errors.As(err, &addrErr):
		api.ErrorJSON(w, http.StatusBadRequest, "address is missing required fields", addrErr.Missing)
	case errors.Is(err, service.ErrInvalidPaymentMethod):
		api.ErrorJSON(w, http.StatusBadRequest, "payment method is not supported", nil)
	case errors.Is(err, service.ErrProductNotOrderable):
		api.ErrorJSON(w, http.StatusConflict, "a product in the cart is no longer available", nil)
	case errors.Is(err, db.ErrInsufficientStock):
		api.ErrorJSON(w, http.StatusConflict, "a product in the cart is out of stock", nil)
	case errors.Is(err, service.ErrLineTotalMismatch):
		// 資料完整性錯誤，對使用者仍是 generic 訊息
		api.ErrorJSON(w, http.StatusInternalServerError, "order could not be completed", nil)
	default:
		api.ErrorJSON(w, http.StatusInternalServerError, "order could not be completed", nil)
	}
}
