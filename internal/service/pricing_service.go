package service

import (
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidCart 購物車內容不合法（數量 <= 0 或價格/折扣為負）
	ErrInvalidCart = errors.New("invalid cart")
)

// PricingConfig 定價規則，預設值取自訂單總額計算程序
// 運費門檻 500、固定運費 9.99、稅率 0.20
type PricingConfig struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingCost      decimal.Decimal
}

func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		TaxRate:               decimal.NewFromFloat(0.20),
		FreeShippingThreshold: decimal.NewFromInt(500),
		FlatShippingCost:      decimal.NewFromFloat(9.99),
	}
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

// PricingService 純計算，不碰任何持久化狀態
type PricingService struct {
	cfg PricingConfig
}

func NewPricingService(cfg PricingConfig) *PricingService {
	return &PricingService{cfg: cfg}
}

// LineTotal 單一項目金額: unit_price * quantity - discount
// 不在中間值做捨入
func LineTotal(unitPrice decimal.Decimal, quantity int, discount decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Sub(discount)
}

// ValidateCartItems 檢查數量與金額欄位
func ValidateCartItems(items []model.CartItem) error {
	for _, item := range items {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: product %d quantity %d", ErrInvalidCart, item.ProductID, item.Quantity)
		}
		if item.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: product %d negative unit price", ErrInvalidCart, item.ProductID)
		}
		if item.Discount.IsNegative() {
			return fmt.Errorf("%w: product %d negative discount", ErrInvalidCart, item.ProductID)
		}
	}
	return nil
}

/*
ComputeTotals 計算訂單金額

	subtotal = Σ(unit_price * quantity - discount)
	shipping = 0 若 subtotal > FreeShippingThreshold，否則 FlatShippingCost
	tax      = round(subtotal * TaxRate, 2)
	total    = round(subtotal + tax + shipping, 2)

捨入採 half-up 取兩位，只套用在 tax 與 total
*/
func (p *PricingService) ComputeTotals(items []model.CartItem) (Totals, error) {
	if err := ValidateCartItems(items); err != nil {
		return Totals{}, err
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(LineTotal(item.UnitPrice, item.Quantity, item.Discount))
	}

	shipping := p.cfg.FlatShippingCost
	if subtotal.GreaterThan(p.cfg.FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	tax := subtotal.Mul(p.cfg.TaxRate).Round(2)
	total := subtotal.Add(tax).Add(shipping).Round(2)

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Total:    total,
	}, nil
}
