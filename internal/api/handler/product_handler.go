package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/RoyceAzure/lab/elshop/internal/api"
	"github.com/RoyceAzure/lab/elshop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/elshop/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	productService service.IProductService
}

func NewProductHandler(productService service.IProductService) *ProductHandler {
	if productService == nil {
		panic("productService cannot be nil")
	}
	return &ProductHandler{productService: productService}
}

// ListProducts 商品目錄分頁，支援分類與價格區間過濾
// GET /api/v1/products?page=&page_size=&category_id=&min_price=&max_price=
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	var filter db.CatalogFilter
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		categoryID, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			api.ErrorJSON(w, http.StatusBadRequest, "invalid category id", nil)
			return
		}
		id := uint(categoryID)
		filter.CategoryID = &id
	}
	if raw := r.URL.Query().Get("min_price"); raw != "" {
		minPrice, err := decimal.NewFromString(raw)
		if err != nil {
			api.ErrorJSON(w, http.StatusBadRequest, "invalid min price", nil)
			return
		}
		filter.MinPrice = &minPrice
	}
	if raw := r.URL.Query().Get("max_price"); raw != "" {
		maxPrice, err := decimal.NewFromString(raw)
		if err != nil {
			api.ErrorJSON(w, http.StatusBadRequest, "invalid max price", nil)
			return
		}
		filter.MaxPrice = &maxPrice
	}

	products, total, err := h.productService.GetCatalog(r.Context(), filter, page, pageSize)
	if err != nil {
		api.ErrorJSON(w, http.StatusInternalServerError, "failed to load products", nil)
		return
	}

	api.SuccessJSON(w, map[string]interface{}{
		"products": products,
		"total":    total,
		"page":     page,
	})
}

// GetProduct 單筆商品
// GET /api/v1/products/{productID}
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseUint(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		api.ErrorJSON(w, http.StatusBadRequest, "invalid product id", nil)
		return
	}

	product, err := h.productService.GetProduct(r.Context(), uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			api.ErrorJSON(w, http.StatusNotFound, "product not found", nil)
			return
		}
		api.ErrorJSON(w, http.StatusInternalServerError, "failed to load product", nil)
		return
	}
	api.SuccessJSON(w, product)
}
