package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrCustomerNotFound 客戶不存在
	ErrCustomerNotFound = errors.New("customer not found")
)

type CustomerRepo struct {
	db *DbDao
}

func NewCustomerRepo(db *DbDao) *CustomerRepo {
	return &CustomerRepo{db: db}
}

// Create - 創建客戶
func (r *CustomerRepo) CreateCustomer(ctx context.Context, customer *model.Customer) (*model.Customer, error) {
	if err := r.db.WithContext(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

// Read - 根據ID查詢客戶
func (r *CustomerRepo) GetCustomerByID(ctx context.Context, customerID uint) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).First(&customer, customerID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Read - 根據Email查詢客戶
func (r *CustomerRepo) GetCustomerByEmail(ctx context.Context, email string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// Update - 更新客戶
func (r *CustomerRepo) UpdateCustomer(ctx context.Context, customer *model.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

// Delete - 刪除客戶，既有訂單的 customer_id 會被設為 NULL
func (r *CustomerRepo) DeleteCustomer(ctx context.Context, customerID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Order{}).
			Where("customer_id = ?", customerID).
			Update("customer_id", nil).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&model.Customer{}, customerID).Error
	})
}
