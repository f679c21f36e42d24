package dto

import (
	"github.com/RoyceAzure/lab/elshop/internal/service"
)

type CheckoutRequest struct {
	CustomerID    uint                 `json:"customer_id"`
	Address       service.AddressInput `json:"address"`
	PaymentMethod string               `json:"payment_method"`
}

type AddCartItemRequest struct {
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type SetCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type CreateCustomerRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}
