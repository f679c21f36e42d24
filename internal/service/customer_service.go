package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"github.com/RoyceAzure/lab/elshop/internal/infra/repository/db"
)

var (
	ErrCustomerNotExist = errors.New("customer is not exist")
)

type ICustomerService interface {
	GetCustomer(ctx context.Context, customerID uint) (*model.Customer, error)
	CreateCustomer(ctx context.Context, customer *model.Customer) (*model.Customer, error)
	DeleteCustomer(ctx context.Context, customerID uint) error
	ListAddresses(ctx context.Context, customerID uint) ([]model.Address, error)
}

type CustomerService struct {
	customerRepo db.ICustomerRepository
	addressRepo  db.IAddressRepository
}

func NewCustomerService(customerRepo db.ICustomerRepository, addressRepo db.IAddressRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo, addressRepo: addressRepo}
}

func (c *CustomerService) GetCustomer(ctx context.Context, customerID uint) (*model.Customer, error) {
	customer, err := c.customerRepo.GetCustomerByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, db.ErrCustomerNotFound) {
			return nil, ErrCustomerNotExist
		}
		return nil, err
	}
	return customer, nil
}

func (c *CustomerService) CreateCustomer(ctx context.Context, customer *model.Customer) (*model.Customer, error) {
	return c.customerRepo.CreateCustomer(ctx, customer)
}

// DeleteCustomer 刪除客戶，歷史訂單保留但 customer_id 設為 NULL
func (c *CustomerService) DeleteCustomer(ctx context.Context, customerID uint) error {
	return c.customerRepo.DeleteCustomer(ctx, customerID)
}

func (c *CustomerService) ListAddresses(ctx context.Context, customerID uint) ([]model.Address, error) {
	return c.addressRepo.ListCustomerAddresses(ctx, customerID)
}

var _ ICustomerService = (*CustomerService)(nil)
