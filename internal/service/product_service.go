package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"github.com/RoyceAzure/lab/elshop/internal/infra/repository/db"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

type IProductService interface {
	GetProduct(ctx context.Context, productID uint) (*model.Product, error)
	GetCatalog(ctx context.Context, filter db.CatalogFilter, page, pageSize int) ([]model.Product, int64, error)
	AddToCart(ctx context.Context, cart *model.Cart, productID uint, quantity int) error
}

type ProductService struct {
	productRepo db.IProductRepository
}

func NewProductService(productRepo db.IProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

func (p *ProductService) GetProduct(ctx context.Context, productID uint) (*model.Product, error) {
	product, err := p.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, db.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// GetCatalog 商品目錄，支援分類與價格區間過濾
func (p *ProductService) GetCatalog(ctx context.Context, filter db.CatalogFilter, page, pageSize int) ([]model.Product, int64, error) {
	return p.productRepo.GetProductsPaginated(ctx, filter, page, pageSize)
}

// AddToCart 以伺服器端當前價格做快照加入購物車
// 價格快照由這裡產生，呼叫端不能自帶價格
func (p *ProductService) AddToCart(ctx context.Context, cart *model.Cart, productID uint, quantity int) error {
	product, err := p.GetProduct(ctx, productID)
	if err != nil {
		return err
	}
	if !product.Active {
		return ErrProductNotOrderable
	}
	cart.Add(product.ProductID, product.BasePrice, quantity)
	return nil
}

var _ IProductService = (*ProductService)(nil)
