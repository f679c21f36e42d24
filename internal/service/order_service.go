package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"github.com/RoyceAzure/lab/elshop/internal/infra/repository/db"
)

var (
	ErrOrderNotExist = errors.New("order is not exist")
)

type IOrderService interface {
	GetOrder(ctx context.Context, orderID uint) (*model.Order, error)
	GetOrdersByCustomerID(ctx context.Context, customerID uint) ([]model.Order, error)
	GetOrdersPaginated(ctx context.Context, page, pageSize int) ([]model.Order, int64, error)
	UpdateOrderStatus(ctx context.Context, orderID uint, status string) error
}

// OrderService 訂單歷史與結帳後的狀態流轉
// paid 之後的轉換 (shipped, cancelled, completed) 由這裡操作，不屬於結帳核心
type OrderService struct {
	orderRepo db.IOrderRepository
}

func NewOrderService(orderRepo db.IOrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

func (o *OrderService) GetOrder(ctx context.Context, orderID uint) (*model.Order, error) {
	order, err := o.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, db.ErrOrderNotFound) {
			return nil, ErrOrderNotExist
		}
		return nil, err
	}
	return order, nil
}

func (o *OrderService) GetOrdersByCustomerID(ctx context.Context, customerID uint) ([]model.Order, error) {
	return o.orderRepo.GetOrdersByCustomerID(ctx, customerID)
}

func (o *OrderService) GetOrdersPaginated(ctx context.Context, page, pageSize int) ([]model.Order, int64, error) {
	return o.orderRepo.GetOrdersPaginated(ctx, page, pageSize)
}

/*
status:

	draft → paid → {shipped, cancelled} → completed

違反狀態機時回傳 db.ErrInvalidStatusTransition
*/
func (o *OrderService) UpdateOrderStatus(ctx context.Context, orderID uint, status string) error {
	return o.orderRepo.UpdateOrderStatus(ctx, orderID, status)
}

var _ IOrderService = (*OrderService)(nil)
