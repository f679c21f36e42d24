package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound 訂單不存在
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidStatusTransition 訂單狀態轉換不合法
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

type OrderRepo struct {
	db *DbDao
}

func NewOrderRepo(db *DbDao) *OrderRepo {
	return &OrderRepo{db: db}
}

// Create - 創建訂單
func (s *OrderRepo) CreateOrder(ctx context.Context, order *model.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

// Create - 新增訂單項目
func (s *OrderRepo) AddOrderItem(ctx context.Context, item *model.OrderItem) error {
	return s.db.WithContext(ctx).Create(item).Error
}

// Create - 創建付款紀錄
func (s *OrderRepo) CreatePayment(ctx context.Context, payment *model.Payment) error {
	return s.db.WithContext(ctx).Create(payment).Error
}

// Read - 根據ID查詢訂單，帶出項目與付款
func (s *OrderRepo) GetOrderByID(ctx context.Context, orderID uint) (*model.Order, error) {
	var order model.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Preload("Payments").
		First(&order, orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// Read - 根據ID查詢訂單項目，回傳的是儲存層實際落地的值
func (s *OrderRepo) GetOrderItemByID(ctx context.Context, orderItemID uint) (*model.OrderItem, error) {
	var item model.OrderItem
	err := s.db.WithContext(ctx).First(&item, orderItemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// Read - 根據客戶ID查詢訂單（訂單歷史）
func (s *OrderRepo) GetOrdersByCustomerID(ctx context.Context, customerID uint) ([]model.Order, error) {
	var orders []model.Order
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Preload("Payments").
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// 分頁查詢訂單
func (s *OrderRepo) GetOrdersPaginated(ctx context.Context, page, pageSize int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	offset := (page - 1) * pageSize

	if err := s.db.WithContext(ctx).Model(&model.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := s.db.WithContext(ctx).
		Preload("OrderItems").
		Offset(offset).Limit(pageSize).
		Order("order_id DESC").
		Find(&orders).Error

	return orders, total, err
}

// Update - 更新訂單金額欄位，只允許由定價流程呼叫
func (s *OrderRepo) UpdateOrderTotals(ctx context.Context, orderID uint, subtotal, tax, shipping, total decimal.Decimal) error {
	return s.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{
			"subtotal":      subtotal,
			"tax":           tax,
			"shipping_cost": shipping,
			"total":         total,
		}).Error
}

// Update - 更新訂單狀態，違反狀態機時拒絕
// 狀態檢查放進 WHERE 做條件式 UPDATE，兩個並發轉換只會有一個成功
func (s *OrderRepo) UpdateOrderStatus(ctx context.Context, orderID uint, status string) error {
	sources := model.StatusTransitionSources(status)
	if len(sources) == 0 {
		return ErrInvalidStatusTransition
	}

	result := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("order_id = ? AND status IN ?", orderID, sources).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// 分辨是訂單不存在還是目前狀態不允許轉換
		var count int64
		if err := s.db.WithContext(ctx).Model(&model.Order{}).
			Where("order_id = ?", orderID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrOrderNotFound
		}
		return ErrInvalidStatusTransition
	}
	return nil
}

// Delete - 硬刪除訂單，項目與付款由 CASCADE 帶走
func (s *OrderRepo) HardDeleteOrder(ctx context.Context, orderID uint) error {
	return s.db.WithContext(ctx).Unscoped().Delete(&model.Order{}, orderID).Error
}

// 取得客戶的訂單統計
func (s *OrderRepo) GetCustomerOrderStats(ctx context.Context, customerID uint) (decimal.Decimal, int, error) {
	var totalAmount decimal.Decimal
	var orderCount int64

	err := s.db.WithContext(ctx).Model(&model.Order{}).
		Where("customer_id = ? AND status IN ?", customerID, []string{model.OrderStatusPaid, model.OrderStatusShipped, model.OrderStatusCompleted}).
		Select("COALESCE(SUM(total), 0) as total_amount, COUNT(*) as order_count").
		Row().
		Scan(&totalAmount, &orderCount)

	return totalAmount, int(orderCount), err
}
