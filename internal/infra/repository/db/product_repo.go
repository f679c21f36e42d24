package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = errors.New("product not found")
	// ErrInsufficientStock 商品庫存不足
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrProductReferenced 商品仍被訂單項目引用，不可刪除
	ErrProductReferenced = errors.New("product is referenced by order items")
)

// CatalogFilter 商品目錄的查詢條件，nil 欄位表示不過濾
type CatalogFilter struct {
	CategoryID *uint
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
}

type ProductRepo struct {
	db *DbDao
}

func NewProductRepo(db *DbDao) *ProductRepo {
	return &ProductRepo{db: db}
}

// Create - 創建商品
func (s *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Create(product).Error
}

// Read - 根據ID查詢商品
func (s *ProductRepo) GetProductByID(ctx context.Context, productID uint) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).First(&product, productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Read - 根據SKU查詢商品
func (s *ProductRepo) GetProductBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	err := s.db.WithContext(ctx).Where("sku = ?", sku).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Read - 查詢上架中的商品
func (s *ProductRepo) GetActiveProducts(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	err := s.db.WithContext(ctx).Where("active = ?", true).Find(&products).Error
	return products, err
}

// 分頁查詢商品目錄，支援分類與價格區間過濾
func (s *ProductRepo) GetProductsPaginated(ctx context.Context, filter CatalogFilter, page, pageSize int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	offset := (page - 1) * pageSize

	query := s.db.WithContext(ctx).Model(&model.Product{}).Where("active = ?", true)
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.MinPrice != nil {
		query = query.Where("base_price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("base_price <= ?", *filter.MaxPrice)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := query.Offset(offset).Limit(pageSize).Order("product_id").Find(&products).Error

	return products, total, err
}

// Update - 更新商品
func (s *ProductRepo) UpdateProduct(ctx context.Context, product *model.Product) error {
	return s.db.WithContext(ctx).Save(product).Error
}

// DeductInventory 原子扣減庫存，庫存不足時不異動任何資料
// 單一倉庫行搭配 FOR UPDATE 行鎖，確保並發下不會扣到負數
func (s *ProductRepo) DeductInventory(ctx context.Context, productID uint, quantity int) error {
	result := s.db.WithContext(ctx).Exec(`
		UPDATE inventories SET quantity = quantity - ?
		WHERE inventory_id = (
			SELECT inventory_id FROM inventories
			WHERE product_id = ? AND quantity >= ?
			ORDER BY quantity DESC
			LIMIT 1
			FOR UPDATE
		)`, quantity, productID, quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrInsufficientStock
	}
	return nil
}

// AddInventory 原子加回庫存，用於進貨與取消釋放
func (s *ProductRepo) AddInventory(ctx context.Context, productID uint, warehouseID uint, quantity int) error {
	return s.db.WithContext(ctx).Model(&model.Inventory{}).
		Where("product_id = ? AND warehouse_id = ?", productID, warehouseID).
		Update("quantity", gorm.Expr("quantity + ?", quantity)).Error
}

// Read - 查詢商品總庫存（跨倉庫加總）
func (s *ProductRepo) GetProductStock(ctx context.Context, productID uint) (int, error) {
	var stock int64
	err := s.db.WithContext(ctx).Model(&model.Inventory{}).
		Where("product_id = ?", productID).
		Select("COALESCE(SUM(quantity), 0)").
		Row().
		Scan(&stock)
	return int(stock), err
}

// Delete - 硬刪除商品
// 被訂單項目引用的商品不可刪除 (RESTRICT)，庫存紀錄跟著商品一起刪
func (s *ProductRepo) HardDeleteProduct(ctx context.Context, productID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var referenced int64
		if err := tx.Model(&model.OrderItem{}).
			Where("product_id = ?", productID).
			Count(&referenced).Error; err != nil {
			return err
		}
		if referenced > 0 {
			return ErrProductReferenced
		}
		if err := tx.Unscoped().
			Where("product_id = ?", productID).
			Delete(&model.Inventory{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.Product{}, productID).Error
	})
}
