package model

import (
	"github.com/shopspring/decimal"
)

// Cart 是呼叫端持有的值物件，不直接綁定任何儲存層
// 購物車持久化由 redis_repo 負責，結帳只消費 Snapshot
type Cart struct {
	SessionID string     `json:"session_id"`
	Items     []CartItem `json:"items"`
}

// UnitPrice 是加入購物車當下的價格快照，商品後續調價不影響快照
type CartItem struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
}

func NewCart(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Items: make([]CartItem, 0)}
}

func (c *Cart) find(productID uint) int {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Add 加入商品，已存在則累加數量，價格快照以第一次加入為準
func (c *Cart) Add(productID uint, unitPrice decimal.Decimal, quantity int) {
	if quantity <= 0 {
		return
	}
	if i := c.find(productID); i >= 0 {
		c.Items[i].Quantity += quantity
		return
	}
	c.Items = append(c.Items, CartItem{
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Discount:  decimal.Zero,
	})
}

// SetQuantity 設定商品數量，quantity <= 0 視為移除
func (c *Cart) SetQuantity(productID uint, quantity int) {
	i := c.find(productID)
	if i < 0 {
		return
	}
	if quantity <= 0 {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
		return
	}
	c.Items[i].Quantity = quantity
}

func (c *Cart) Remove(productID uint) {
	c.SetQuantity(productID, 0)
}

func (c *Cart) Clear() {
	c.Items = c.Items[:0]
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c *Cart) TotalQuantity() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// Snapshot 回傳深拷貝，供定價與結帳使用，不受後續購物車異動影響
func (c *Cart) Snapshot() *Cart {
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	return &Cart{SessionID: c.SessionID, Items: items}
}
