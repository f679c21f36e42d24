package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/elshop/internal/api"
	"github.com/RoyceAzure/lab/elshop/internal/api/dto"
	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"github.com/RoyceAzure/lab/elshop/internal/infra/repository/redis_repo"
	"github.com/RoyceAzure/lab/elshop/internal/pkg/util"
	"github.com/RoyceAzure/lab/elshop/internal/service"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	cartRepo       *redis_repo.CartRepo
	productService service.IProductService
}

func NewCartHandler(cartRepo *redis_repo.CartRepo, productService service.IProductService) *CartHandler {
	if cartRepo == nil {
		panic("cartRepo cannot be nil")
	}
	if productService == nil {
		panic("productService cannot be nil")
	}
	return &CartHandler{cartRepo: cartRepo, productService: productService}
}

func sessionIDFromRequest(r *http.Request) string {
	return r.Header.Get("X-Session-ID")
}

// GetCart 取目前 session 的購物車
// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		// 沒有 session 就發一個新的空購物車
		api.SuccessJSON(w, map[string]interface{}{
			"session_id": util.GenerateSessionID(),
			"items":      []interface{}{},
		})
		return
	}

	cart, _, err := h.cartRepo.Get(r.Context(), sessionID)
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, "failed to load cart", nil)
		return
	}
	api.SuccessJSON(w, cart)
}

// AddItem 加入商品，價格快照由伺服器端取得
// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		api.ErrorJSON(w, http.StatusBadRequest, "missing X-Session-ID header", nil)
		return
	}

	var req dto.AddCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	ctx := r.Context()
	cart, version, err := h.cartRepo.Get(ctx, sessionID)
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, "failed to load cart", nil)
		return
	}

	if err := h.productService.AddToCart(ctx, cart, req.ProductID, req.Quantity); err != nil {
		if errors.Is(err, service.ErrProductNotFound) || errors.Is(err, service.ErrProductNotOrderable) {
			api.ErrorJSON(w, http.StatusNotFound, "product not available", nil)
			return
		}
		api.ErrorJSON(w, http.StatusInternalServerError, "failed to add item", nil)
		return
	}

	h.saveCart(w, r, cart, version)
}

// SetQuantity 設定商品數量，0 表示移除
// PUT /api/v1/cart/items/{productID}
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		api.ErrorJSON(w, http.StatusBadRequest, "missing X-Session-ID header", nil)
		return
	}

	productID, err := strconv.ParseUint(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid product id", nil)
		return
	}

	var req dto.SetCartQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	ctx := r.Context()
	cart, version, err := h.cartRepo.Get(ctx, sessionID)
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, "failed to load cart", nil)
		return
	}

	cart.SetQuantity(uint(productID), req.Quantity)
	h.saveCart(w, r, cart, version)
}

// RemoveItem 移除商品
// DELETE /api/v1/cart/items/{productID}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		api.ErrorJSON(w, http.StatusBadRequest, "missing X-Session-ID header", nil)
		return
	}

	productID, err := strconv.ParseUint(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid product id", nil)
		return
	}

	ctx := r.Context()
	cart, version, err := h.cartRepo.Get(ctx, sessionID)
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, "failed to load cart", nil)
		return
	}

	cart.Remove(uint(productID))
	h.saveCart(w, r, cart, version)
}

// ClearCart 清空購物車
// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := sessionIDFromRequest(r)
	if sessionID == "" {
		api.ErrorJSON(w, http.StatusBadRequest, "missing X-Session-ID header", nil)
		return
	}

	if err := h.cartRepo.Clear(r.Context(), sessionID); err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, "failed to clear cart", nil)
		return
	}
	api.SuccessJSON(w, nil)
}

// saveCart CAS 寫回，版本衝突表示另一個請求先寫了，請呼叫端重試
func (h *CartHandler) saveCart(w http.ResponseWriter, r *http.Request, cart *model.Cart, version int64) {
	if err := h.cartRepo.Save(r.Context(), cart, version); err != nil {
		if errors.Is(err, redis_repo.ErrCartVersionConflict) {
			api.ErrorJSON(w, http.StatusConflict, "cart was modified by another request, please retry", nil)
			return
		}
		api.ErrorJSON(w, http.StatusInternalServerError, "failed to save cart", nil)
		return
	}
	api.SuccessJSON(w, cart)
}
