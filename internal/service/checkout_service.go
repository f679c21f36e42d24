package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"github.com/RoyceAzure/lab/elshop/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/elshop/internal/pkg/util"
	"github.com/rs/zerolog"
)

type CheckoutError error

var (
	// ErrEmptyCart 空購物車不可結帳
	ErrEmptyCart CheckoutError = errors.New("cart is empty")
	// ErrLineTotalMismatch 項目金額不變量被破壞，屬資料完整性錯誤而非使用者輸入錯誤
	ErrLineTotalMismatch CheckoutError = errors.New("line total mismatch")
	// ErrInvalidPaymentMethod 付款方式不在允許清單
	ErrInvalidPaymentMethod CheckoutError = errors.New("invalid payment method")
	// ErrProductNotOrderable 商品不存在或已下架
	ErrProductNotOrderable CheckoutError = errors.New("product not orderable")
	// ErrPersistence 儲存層在結帳交易中失敗，所有寫入已 rollback
	ErrPersistence CheckoutError = errors.New("persistence failure")
)

// InvalidAddressError 必填地址欄位缺漏，Missing 列出缺漏欄位名
type InvalidAddressError struct {
	Missing []string
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address: missing %v", e.Missing)
}

// AddressInput 結帳送進來的收件地址欄位
type AddressInput struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Validate 回傳缺漏的必填欄位 (line1, city, country)
func (a AddressInput) Validate() error {
	var missing []string
	if a.Line1 == "" {
		missing = append(missing, "line1")
	}
	if a.City == "" {
		missing = append(missing, "city")
	}
	if a.Country == "" {
		missing = append(missing, "country")
	}
	if len(missing) > 0 {
		return &InvalidAddressError{Missing: missing}
	}
	return nil
}

// InventoryReserver 庫存預留協作者，必須在結帳交易內執行
// nil 表示不做庫存預留
type InventoryReserver interface {
	Reserve(ctx context.Context, store db.UnifiedDB, productID uint, quantity int) error
}

// OrderEventPublisher 結帳成功 commit 後發佈訂單事件
type OrderEventPublisher interface {
	PublishOrderPaid(ctx context.Context, order *model.Order) error
}

type ICheckoutService interface {
	Checkout(ctx context.Context, customerID uint, cart *model.Cart, address AddressInput, paymentMethod string) (*model.Order, error)
}

// CheckoutService 把購物車原子性轉成 Order + OrderItems + Payment
// 金額一律由伺服器端重算，不信任呼叫端送來的總額
type CheckoutService struct {
	store     db.UnifiedDB
	pricing   *PricingService
	inventory InventoryReserver
	publisher OrderEventPublisher
	logger    zerolog.Logger
}

func NewCheckoutService(store db.UnifiedDB, pricing *PricingService, inventory InventoryReserver, publisher OrderEventPublisher, logger zerolog.Logger) *CheckoutService {
	if store == nil {
		panic("checkout service dependency store is nil")
	}
	if pricing == nil {
		panic("checkout service dependency pricing is nil")
	}
	return &CheckoutService{
		store:     store,
		pricing:   pricing,
		inventory: inventory,
		publisher: publisher,
		logger:    logger,
	}
}

/*
Checkout 結帳流程

 1. 空購物車 → ErrEmptyCart
 2. 驗證購物車項目與地址欄位
 3. 交易內：查或建收件地址 → 建 draft 訂單 → 逐項建 OrderItem →
    計算金額寫回訂單 → draft 轉 paid → 建 Payment → 扣庫存
 4. 交易外：清空購物車、發佈 order paid 事件

交易內任一步失敗整筆 rollback，購物車保持原狀讓客戶重試
*/
func (s *CheckoutService) Checkout(ctx context.Context, customerID uint, cart *model.Cart, address AddressInput, paymentMethod string) (*model.Order, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if err := ValidateCartItems(cart.Items); err != nil {
		return nil, err
	}
	if err := address.Validate(); err != nil {
		return nil, err
	}
	if !model.IsValidPaymentMethod(paymentMethod) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPaymentMethod, paymentMethod)
	}

	snapshot := cart.Snapshot()
	step := "begin"
	var orderID uint

	err := s.store.Transaction(ctx, func(store db.UnifiedDB) error {
		step = "resolve_address"
		shippingAddr, err := s.resolveShippingAddress(ctx, store, customerID, address)
		if err != nil {
			return err
		}

		step = "create_order"
		order := &model.Order{
			CustomerID:        &customerID,
			ShippingAddressID: &shippingAddr.AddressID,
			Status:            model.OrderStatusDraft,
			Currency:          "EUR",
		}
		if err := store.CreateOrder(ctx, order); err != nil {
			return err
		}
		orderID = order.OrderID

		step = "create_order_items"
		for _, item := range snapshot.Items {
			product, err := store.GetProductByID(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, db.ErrProductNotFound) {
					return fmt.Errorf("%w: product %d", ErrProductNotOrderable, item.ProductID)
				}
				return err
			}
			if !product.Active {
				return fmt.Errorf("%w: product %d inactive", ErrProductNotOrderable, item.ProductID)
			}

			orderItem := model.OrderItem{
				OrderID:   order.OrderID,
				ProductID: item.ProductID,
				UnitPrice: item.UnitPrice,
				Quantity:  item.Quantity,
				Discount:  item.Discount,
				LineTotal: LineTotal(item.UnitPrice, item.Quantity, item.Discount),
			}
			if err := store.AddOrderItem(ctx, &orderItem); err != nil {
				return err
			}
			// 原系統由 DB trigger 把關，這裡改成寫入後重讀實際落地的值重驗，
			// 欄位捨入或其他寫入路徑弄壞不變量時整筆交易作廢
			stored, err := store.GetOrderItemByID(ctx, orderItem.OrderItemID)
			if err != nil {
				return err
			}
			if !stored.LineTotal.Equal(LineTotal(stored.UnitPrice, stored.Quantity, stored.Discount)) {
				return fmt.Errorf("%w: product %d", ErrLineTotalMismatch, item.ProductID)
			}

			if s.inventory != nil {
				step = "reserve_inventory"
				if err := s.inventory.Reserve(ctx, store, item.ProductID, item.Quantity); err != nil {
					return err
				}
				step = "create_order_items"
			}
		}

		step = "compute_totals"
		totals, err := s.pricing.ComputeTotals(snapshot.Items)
		if err != nil {
			return err
		}
		if err := store.UpdateOrderTotals(ctx, order.OrderID, totals.Subtotal, totals.Tax, totals.Shipping, totals.Total); err != nil {
			return err
		}

		step = "mark_paid"
		if err := store.UpdateOrderStatus(ctx, order.OrderID, model.OrderStatusPaid); err != nil {
			return err
		}

		step = "create_payment"
		payment := &model.Payment{
			OrderID:        order.OrderID,
			Amount:         totals.Total,
			Method:         paymentMethod,
			PaidAt:         time.Now().UTC(),
			TransactionRef: util.GenerateTransactionRef(),
		}
		return store.CreatePayment(ctx, payment)
	})
	if err != nil {
		return nil, s.checkoutError(ctx, err, customerID, step, snapshot)
	}

	order, err := s.store.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// 只有成功才清空購物車
	cart.Clear()

	if s.publisher != nil {
		if err := s.publisher.PublishOrderPaid(ctx, order); err != nil {
			// 事件發佈失敗不影響已 commit 的訂單
			s.logger.Error().Err(err).Uint("order_id", order.OrderID).Msg("publish order paid event failed")
		}
	}

	return order, nil
}

func (s *CheckoutService) resolveShippingAddress(ctx context.Context, store db.UnifiedDB, customerID uint, input AddressInput) (*model.Address, error) {
	existing, err := store.FindCustomerAddress(ctx, customerID, input.Line1, input.City, input.Country)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, db.ErrAddressNotFound) {
		return nil, err
	}

	addr := &model.Address{
		CustomerID: customerID,
		Type:       model.AddressTypeShipping,
		Line1:      input.Line1,
		Line2:      input.Line2,
		City:       input.City,
		State:      input.State,
		PostalCode: input.PostalCode,
		Country:    input.Country,
		IsDefault:  false,
	}
	if err := store.CreateAddress(ctx, addr); err != nil {
		// 兩個分頁同時結帳可能撞唯一鍵，重查一次
		if retry, retryErr := store.FindCustomerAddress(ctx, customerID, input.Line1, input.City, input.Country); retryErr == nil {
			return retry, nil
		}
		return nil, err
	}
	return addr, nil
}

// checkoutError 分類錯誤：領域錯誤原樣回傳，儲存層錯誤包成 ErrPersistence 並留 log
func (s *CheckoutService) checkoutError(ctx context.Context, err error, customerID uint, step string, cart *model.Cart) error {
	var addrErr *InvalidAddressError
	switch {
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInvalidCart),
		errors.Is(err, ErrLineTotalMismatch),
		errors.Is(err, ErrInvalidPaymentMethod),
		errors.Is(err, ErrProductNotOrderable),
		errors.Is(err, db.ErrInsufficientStock),
		errors.As(err, &addrErr):
		return err
	}

	s.logger.Error().
		Err(err).
		Uint("customer_id", customerID).
		Str("step", step).
		Int("cart_items", len(cart.Items)).
		Msg("checkout failed, transaction rolled back")
	return fmt.Errorf("%w at %s: %v", ErrPersistence, step, err)
}
