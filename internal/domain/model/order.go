package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	OrderStatusDraft     = "draft"     // 結帳中
	OrderStatusPaid      = "paid"      // 已付款
	OrderStatusShipped   = "shipped"   // 已出貨
	OrderStatusCancelled = "cancelled" // 已取消
	OrderStatusCompleted = "completed" // 已完成
)

const (
	PaymentMethodCard         = "card"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodPaypal       = "paypal"
	PaymentMethodCash         = "cash"
)

// 訂單狀態機: draft → paid → {shipped, cancelled} → completed
// checkout 核心只做 draft → paid，其餘轉換由外部流程操作
var orderStatusTransitions = map[string][]string{
	OrderStatusDraft:     {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:      {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:   {OrderStatusCompleted},
	OrderStatusCancelled: {},
	OrderStatusCompleted: {},
}

// IsValidStatusTransition 檢查訂單狀態轉換是否合法
func IsValidStatusTransition(from, to string) bool {
	for _, next := range orderStatusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusTransitionSources 回傳可以合法轉換到 to 的來源狀態清單
// 給條件式 UPDATE 當 WHERE 條件用，讓狀態檢查跟寫入是同一個語句
func StatusTransitionSources(to string) []string {
	var sources []string
	for from, nexts := range orderStatusTransitions {
		for _, next := range nexts {
			if next == to {
				sources = append(sources, from)
			}
		}
	}
	return sources
}

func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodPaypal, PaymentMethodCash:
		return true
	}
	return false
}

// FK 約束要掛在關聯欄位上 AutoMigrate 才會建出來，掛在外鍵欄位本身沒有效果
type Order struct {
	OrderID           uint            `gorm:"primaryKey" json:"order_id"`
	CustomerID        *uint           `gorm:"index" json:"customer_id"` // 客戶刪除時設為 NULL
	BillingAddressID  *uint           `json:"billing_address_id"`
	ShippingAddressID *uint           `json:"shipping_address_id"`
	Status            string          `gorm:"not null;type:varchar(20);default:draft" json:"status"`
	Currency          string          `gorm:"not null;type:varchar(3);default:EUR" json:"currency"`
	Subtotal          decimal.Decimal `gorm:"not null;type:decimal(12,2);default:0" json:"subtotal"`
	Tax               decimal.Decimal `gorm:"not null;type:decimal(12,2);default:0" json:"tax"`
	ShippingCost      decimal.Decimal `gorm:"not null;type:decimal(12,2);default:0" json:"shipping_cost"`
	Total             decimal.Decimal `gorm:"not null;type:decimal(12,2);default:0" json:"total"`
	Customer          *Customer       `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"-"`
	BillingAddress    *Address        `gorm:"foreignKey:BillingAddressID;constraint:OnDelete:SET NULL" json:"-"`
	ShippingAddress   *Address        `gorm:"foreignKey:ShippingAddressID;constraint:OnDelete:SET NULL" json:"-"`
	OrderItems        []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items"` // 一對多，級聯刪除
	Payments          []Payment       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"payments"`
	BaseModel
}

// 商品被訂單項目引用時不可刪除 (RESTRICT)
type OrderItem struct {
	OrderItemID uint            `gorm:"primaryKey" json:"order_item_id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   uint            `gorm:"not null;index" json:"product_id"`
	UnitPrice   decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"unit_price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Discount    decimal.Decimal `gorm:"not null;type:decimal(12,2);default:0" json:"discount"`
	LineTotal   decimal.Decimal `gorm:"not null;type:decimal(14,2)" json:"line_total"`
	Product     Product         `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
	BaseModel
}

type Payment struct {
	PaymentID      uint            `gorm:"primaryKey" json:"payment_id"`
	OrderID        uint            `gorm:"not null;index" json:"order_id"`
	Amount         decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"amount"`
	Method         string          `gorm:"not null;type:varchar(20)" json:"method"`
	PaidAt         time.Time       `gorm:"not null" json:"paid_at"`
	TransactionRef string          `gorm:"type:varchar(200)" json:"transaction_ref"`
	BaseModel
}
