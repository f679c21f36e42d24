package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"gorm.io/gorm"
)

var (
	// ErrAddressNotFound 地址不存在
	ErrAddressNotFound = errors.New("address not found")
)

type AddressRepo struct {
	db *DbDao
}

func NewAddressRepo(db *DbDao) *AddressRepo {
	return &AddressRepo{db: db}
}

// Create - 創建地址
// is_default 為 true 時先取消同客戶同類型的舊預設，維持每個 (customer, type) 最多一筆預設
func (r *AddressRepo) CreateAddress(ctx context.Context, address *model.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if address.IsDefault {
			if err := tx.Model(&model.Address{}).
				Where("customer_id = ? AND type = ? AND is_default = ?", address.CustomerID, address.Type, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(address).Error
	})
}

// Read - 根據ID查詢地址
func (r *AddressRepo) GetAddressByID(ctx context.Context, addressID uint) (*model.Address, error) {
	var address model.Address
	err := r.db.WithContext(ctx).First(&address, addressID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// Read - 查詢客戶所有地址
func (r *AddressRepo) ListCustomerAddresses(ctx context.Context, customerID uint) ([]model.Address, error) {
	var addresses []model.Address
	err := r.db.WithContext(ctx).Where("customer_id = ?", customerID).Find(&addresses).Error
	return addresses, err
}

// FindCustomerAddress 以 (line1, city, country) 不分大小寫精確比對查詢既有地址
// 結帳重複使用同一地址時不會產生重複列
func (r *AddressRepo) FindCustomerAddress(ctx context.Context, customerID uint, line1, city, country string) (*model.Address, error) {
	var address model.Address
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND LOWER(line1) = LOWER(?) AND LOWER(city) = LOWER(?) AND LOWER(country) = LOWER(?)",
			customerID, line1, city, country).
		First(&address).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &address, nil
}

// Delete - 刪除地址
func (r *AddressRepo) DeleteAddress(ctx context.Context, addressID uint) error {
	return r.db.WithContext(ctx).Delete(&model.Address{}, addressID).Error
}
