package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"github.com/RoyceAzure/lab/elshop/internal/infra/repository/db"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

var errForcedFailure = errors.New("forced storage failure")

// fakeStore 記憶體版 UnifiedDB，Transaction 失敗時還原整個狀態
// 沒實作到的方法走 embedded nil interface，誤用會直接 panic
type fakeStore struct {
	db.UnifiedDB

	products  map[uint]model.Product
	inventory map[uint]int
	addresses []model.Address
	orders    map[uint]*model.Order
	items     []model.OrderItem
	payments  []model.Payment

	nextAddressID uint
	nextOrderID   uint
	nextItemID    uint
	nextPaymentID uint

	// 指定哪個操作要強制失敗，模擬儲存層錯誤
	failOn string

	// 模擬儲存層寫歪 line_total（欄位捨入、其他寫入路徑）
	corruptLineTotal bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products:  make(map[uint]model.Product),
		inventory: make(map[uint]int),
		orders:    make(map[uint]*model.Order),
	}
}

func (f *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for k, v := range f.products {
		c.products[k] = v
	}
	for k, v := range f.inventory {
		c.inventory[k] = v
	}
	c.addresses = append([]model.Address(nil), f.addresses...)
	for k, v := range f.orders {
		order := *v
		c.orders[k] = &order
	}
	c.items = append([]model.OrderItem(nil), f.items...)
	c.payments = append([]model.Payment(nil), f.payments...)
	c.nextAddressID = f.nextAddressID
	c.nextOrderID = f.nextOrderID
	c.nextItemID = f.nextItemID
	c.nextPaymentID = f.nextPaymentID
	c.failOn = f.failOn
	c.corruptLineTotal = f.corruptLineTotal
	return c
}

func (f *fakeStore) restore(snapshot *fakeStore) {
	f.products = snapshot.products
	f.inventory = snapshot.inventory
	f.addresses = snapshot.addresses
	f.orders = snapshot.orders
	f.items = snapshot.items
	f.payments = snapshot.payments
	f.nextAddressID = snapshot.nextAddressID
	f.nextOrderID = snapshot.nextOrderID
	f.nextItemID = snapshot.nextItemID
	f.nextPaymentID = snapshot.nextPaymentID
}

// Transaction fn 失敗時整個狀態回滾，模擬 DB 交易語義
func (f *fakeStore) Transaction(ctx context.Context, fn func(store db.UnifiedDB) error) error {
	snapshot := f.clone()
	if err := fn(f); err != nil {
		f.restore(snapshot)
		return err
	}
	return nil
}

func (f *fakeStore) GetProductByID(ctx context.Context, productID uint) (*model.Product, error) {
	product, ok := f.products[productID]
	if !ok {
		return nil, db.ErrProductNotFound
	}
	return &product, nil
}

func (f *fakeStore) FindCustomerAddress(ctx context.Context, customerID uint, line1, city, country string) (*model.Address, error) {
	for i := range f.addresses {
		a := f.addresses[i]
		if a.CustomerID == customerID &&
			strings.EqualFold(a.Line1, line1) &&
			strings.EqualFold(a.City, city) &&
			strings.EqualFold(a.Country, country) {
			return &a, nil
		}
	}
	return nil, db.ErrAddressNotFound
}

func (f *fakeStore) CreateAddress(ctx context.Context, address *model.Address) error {
	if f.failOn == "CreateAddress" {
		return errForcedFailure
	}
	f.nextAddressID++
	address.AddressID = f.nextAddressID
	f.addresses = append(f.addresses, *address)
	return nil
}

func (f *fakeStore) CreateOrder(ctx context.Context, order *model.Order) error {
	if f.failOn == "CreateOrder" {
		return errForcedFailure
	}
	f.nextOrderID++
	order.OrderID = f.nextOrderID
	stored := *order
	f.orders[order.OrderID] = &stored
	return nil
}

func (f *fakeStore) AddOrderItem(ctx context.Context, item *model.OrderItem) error {
	if f.failOn == "AddOrderItem" {
		return errForcedFailure
	}
	f.nextItemID++
	item.OrderItemID = f.nextItemID
	stored := *item
	if f.corruptLineTotal {
		stored.LineTotal = stored.LineTotal.Add(decimal.RequireFromString("0.01"))
	}
	f.items = append(f.items, stored)
	return nil
}

func (f *fakeStore) GetOrderItemByID(ctx context.Context, orderItemID uint) (*model.OrderItem, error) {
	for i := range f.items {
		if f.items[i].OrderItemID == orderItemID {
			item := f.items[i]
			return &item, nil
		}
	}
	return nil, db.ErrOrderNotFound
}

func (f *fakeStore) DeductInventory(ctx context.Context, productID uint, quantity int) error {
	stock, ok := f.inventory[productID]
	if !ok || stock < quantity {
		return db.ErrInsufficientStock
	}
	f.inventory[productID] = stock - quantity
	return nil
}

func (f *fakeStore) UpdateOrderTotals(ctx context.Context, orderID uint, subtotal, tax, shipping, total decimal.Decimal) error {
	if f.failOn == "UpdateOrderTotals" {
		return errForcedFailure
	}
	order, ok := f.orders[orderID]
	if !ok {
		return db.ErrOrderNotFound
	}
	order.Subtotal = subtotal
	order.Tax = tax
	order.ShippingCost = shipping
	order.Total = total
	return nil
}

func (f *fakeStore) UpdateOrderStatus(ctx context.Context, orderID uint, status string) error {
	if f.failOn == "UpdateOrderStatus" {
		return errForcedFailure
	}
	order, ok := f.orders[orderID]
	if !ok {
		return db.ErrOrderNotFound
	}
	if !model.IsValidStatusTransition(order.Status, status) {
		return db.ErrInvalidStatusTransition
	}
	order.Status = status
	return nil
}

func (f *fakeStore) CreatePayment(ctx context.Context, payment *model.Payment) error {
	if f.failOn == "CreatePayment" {
		return errForcedFailure
	}
	f.nextPaymentID++
	payment.PaymentID = f.nextPaymentID
	f.payments = append(f.payments, *payment)
	return nil
}

func (f *fakeStore) GetOrderByID(ctx context.Context, orderID uint) (*model.Order, error) {
	order, ok := f.orders[orderID]
	if !ok {
		return nil, db.ErrOrderNotFound
	}
	result := *order
	for _, item := range f.items {
		if item.OrderID == orderID {
			result.OrderItems = append(result.OrderItems, item)
		}
	}
	for _, payment := range f.payments {
		if payment.OrderID == orderID {
			result.Payments = append(result.Payments, payment)
		}
	}
	return &result, nil
}

type fakePublisher struct {
	published []uint
	failNext  bool
}

func (p *fakePublisher) PublishOrderPaid(ctx context.Context, order *model.Order) error {
	if p.failNext {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, order.OrderID)
	return nil
}

type CheckoutServiceTestSuite struct {
	suite.Suite
	store     *fakeStore
	publisher *fakePublisher
	svc       *CheckoutService
}

// SetupTest 在每個測試前執行
func (suite *CheckoutServiceTestSuite) SetupTest() {
	suite.store = newFakeStore()
	suite.store.products[1] = model.Product{
		ProductID: 1,
		SKU:       "T1",
		Name:      "Test Product",
		BasePrice: decimal.RequireFromString("5000"),
		Active:    true,
	}
	suite.store.products[2] = model.Product{
		ProductID: 2,
		SKU:       "T2",
		Name:      "Retired Product",
		BasePrice: decimal.RequireFromString("10"),
		Active:    false,
	}
	suite.store.inventory[1] = 10

	suite.publisher = &fakePublisher{}
	suite.svc = NewCheckoutService(
		suite.store,
		NewPricingService(DefaultPricingConfig()),
		nil,
		suite.publisher,
		zerolog.Nop(),
	)
}

func (suite *CheckoutServiceTestSuite) validAddress() AddressInput {
	return AddressInput{
		Line1:   "1 Main Street",
		City:    "Riga",
		Country: "LV",
	}
}

func (suite *CheckoutServiceTestSuite) cartWith(productID uint, price string, qty int) *model.Cart {
	cart := model.NewCart("sess-1")
	cart.Add(productID, decimal.RequireFromString(price), qty)
	return cart
}

func (suite *CheckoutServiceTestSuite) TestCheckoutSuccess() {
	cart := suite.cartWith(1, "5000", 2)

	order, err := suite.svc.Checkout(context.Background(), 7, cart, suite.validAddress(), model.PaymentMethodCard)
	require.NoError(suite.T(), err)

	require.Equal(suite.T(), model.OrderStatusPaid, order.Status)
	require.True(suite.T(), order.Subtotal.Equal(decimal.RequireFromString("10000")), "subtotal = %s", order.Subtotal)
	require.True(suite.T(), order.Tax.Equal(decimal.RequireFromString("2000")), "tax = %s", order.Tax)
	require.True(suite.T(), order.ShippingCost.IsZero(), "shipping = %s", order.ShippingCost)
	require.True(suite.T(), order.Total.Equal(decimal.RequireFromString("12000")), "total = %s", order.Total)

	require.Len(suite.T(), order.OrderItems, 1)
	require.True(suite.T(), order.OrderItems[0].LineTotal.Equal(decimal.RequireFromString("10000")))
	require.Equal(suite.T(), 2, order.OrderItems[0].Quantity)

	require.Len(suite.T(), order.Payments, 1)
	require.True(suite.T(), order.Payments[0].Amount.Equal(order.Total))
	require.Equal(suite.T(), model.PaymentMethodCard, order.Payments[0].Method)
	require.NotEmpty(suite.T(), order.Payments[0].TransactionRef)

	// 成功後購物車清空，事件發佈
	require.True(suite.T(), cart.IsEmpty())
	require.Equal(suite.T(), []uint{order.OrderID}, suite.publisher.published)
}

func (suite *CheckoutServiceTestSuite) TestCheckoutEmptyCart() {
	cart := model.NewCart("sess-1")

	_, err := suite.svc.Checkout(context.Background(), 7, cart, suite.validAddress(), model.PaymentMethodCard)
	require.ErrorIs(suite.T(), err, ErrEmptyCart)
	require.Empty(suite.T(), suite.store.orders)

	_, err = suite.svc.Checkout(context.Background(), 7, nil, suite.validAddress(), model.PaymentMethodCard)
	require.ErrorIs(suite.T(), err, ErrEmptyCart)
}

func (suite *CheckoutServiceTestSuite) TestCheckoutInvalidAddress() {
	cart := suite.cartWith(1, "5000", 1)

	_, err := suite.svc.Checkout(context.Background(), 7, cart, AddressInput{Line1: "1 Main Street"}, model.PaymentMethodCard)

	var addrErr *InvalidAddressError
	require.ErrorAs(suite.T(), err, &addrErr)
	require.ElementsMatch(suite.T(), []string{"city", "country"}, addrErr.Missing)

	// 什麼都沒寫入，購物車原封不動
	require.Empty(suite.T(), suite.store.orders)
	require.Empty(suite.T(), suite.store.items)
	require.Empty(suite.T(), suite.store.addresses)
	require.Empty(suite.T(), suite.store.payments)
	require.False(suite.T(), cart.IsEmpty())
}

func (suite *CheckoutServiceTestSuite) TestCheckoutInvalidCart() {
	cart := model.NewCart("sess-1")
	cart.Items = append(cart.Items, model.CartItem{
		ProductID: 1,
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("-5"),
		Discount:  decimal.Zero,
	})

	_, err := suite.svc.Checkout(context.Background(), 7, cart, suite.validAddress(), model.PaymentMethodCard)
	require.ErrorIs(suite.T(), err, ErrInvalidCart)
	require.Empty(suite.T(), suite.store.orders)
}

func (suite *CheckoutServiceTestSuite) TestCheckoutInvalidPaymentMethod() {
	cart := suite.cartWith(1, "5000", 1)

	_, err := suite.svc.Checkout(context.Background(), 7, cart, suite.validAddress(), "bitcoin")
	require.ErrorIs(suite.T(), err, ErrInvalidPaymentMethod)
	require.Empty(suite.T(), suite.store.orders)
}

func (suite *CheckoutServiceTestSuite) TestCheckoutInactiveProduct() {
	cart := suite.cartWith(2, "10", 1)

	_, err := suite.svc.Checkout(context.Background(), 7, cart, suite.validAddress(), model.PaymentMethodCard)
	require.ErrorIs(suite.T(), err, ErrProductNotOrderable)

	// 交易內失敗全數回滾
	require.Empty(suite.T(), suite.store.orders)
	require.Empty(suite.T(), suite.store.addresses)
	require.False(suite.T(), cart.IsEmpty())
}

func (suite *CheckoutServiceTestSuite) TestCheckoutUnknownProduct() {
	cart := suite.cartWith(99, "10", 1)

	_, err := suite.svc.Checkout(context.Background(), 7, cart, suite.validAddress(), model.PaymentMethodCard)
	require.ErrorIs(suite.T(), err, ErrProductNotOrderable)
	require.Empty(suite.T(), suite.store.orders)
}

func (suite *CheckoutServiceTestSuite) TestCheckoutAddressReuse() {
	cart := suite.cartWith(1, "5000", 1)
	_, err := suite.svc.Checkout(context.Background(), 7, cart, suite.validAddress(), model.PaymentMethodCard)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), suite.store.addresses, 1)

	// 同客戶同地址（大小寫不同）再結一次，不產生重複地址列
	cart2 := suite.cartWith(1, "5000", 1)
	addr := AddressInput{Line1: "1 MAIN STREET", City: "riga", Country: "lv"}
	_, err = suite.svc.Checkout(context.Background(), 7, cart2, addr, model.PaymentMethodCard)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), suite.store.addresses, 1)

	// 不同客戶要有自己的地址列
	cart3 := suite.cartWith(1, "5000", 1)
	_, err = suite.svc.Checkout(context.Background(), 8, cart3, suite.validAddress(), model.PaymentMethodCard)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), suite.store.addresses, 2)
}

func (suite *CheckoutServiceTestSuite) TestCheckoutLineTotalGuard() {
	// 儲存層落地的 line_total 跟 unit_price*qty-discount 對不上時整筆交易作廢
	suite.store.corruptLineTotal = true
	cart := suite.cartWith(1, "5000", 2)

	_, err := suite.svc.Checkout(context.Background(), 7, cart, suite.validAddress(), model.PaymentMethodCard)
	require.ErrorIs(suite.T(), err, ErrLineTotalMismatch)

	require.Empty(suite.T(), suite.store.orders)
	require.Empty(suite.T(), suite.store.items)
	require.Empty(suite.T(), suite.store.payments)
	require.False(suite.T(), cart.IsEmpty())
}

func (suite *CheckoutServiceTestSuite) TestCheckoutRollbackOnPaymentFailure() {
	// OrderItem 建立後、Payment 建立前注入儲存層錯誤
	suite.store.failOn = "CreatePayment"
	cart := suite.cartWith(1, "5000", 2)

	_, err := suite.svc.Checkout(context.Background(), 7, cart, suite.validAddress(), model.PaymentMethodCard)
	require.ErrorIs(suite.T(), err, ErrPersistence)

	// rollback 完整性：Order, OrderItem, Payment, Address 都是零列
	require.Empty(suite.T(), suite.store.orders)
	require.Empty(suite.T(), suite.store.items)
	require.Empty(suite.T(), suite.store.payments)
	require.Empty(suite.T(), suite.store.addresses)

	// 購物車保留讓客戶重試
	require.False(suite.T(), cart.IsEmpty())
	require.Empty(suite.T(), suite.publisher.published)
}

func (suite *CheckoutServiceTestSuite) TestCheckoutInventoryReservation() {
	svc := NewCheckoutService(
		suite.store,
		NewPricingService(DefaultPricingConfig()),
		NewInventoryService(),
		nil,
		zerolog.Nop(),
	)

	cart := suite.cartWith(1, "5000", 2)
	_, err := svc.Checkout(context.Background(), 7, cart, suite.validAddress(), model.PaymentMethodCard)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 8, suite.store.inventory[1])

	// 超賣要被擋下並完整回滾
	cart2 := suite.cartWith(1, "5000", 99)
	_, err = svc.Checkout(context.Background(), 7, cart2, suite.validAddress(), model.PaymentMethodCard)
	require.ErrorIs(suite.T(), err, db.ErrInsufficientStock)
	require.Equal(suite.T(), 8, suite.store.inventory[1])
	require.Len(suite.T(), suite.store.orders, 1)
	require.False(suite.T(), cart2.IsEmpty())
}

func (suite *CheckoutServiceTestSuite) TestCheckoutPublisherFailureDoesNotFailOrder() {
	suite.publisher.failNext = true
	cart := suite.cartWith(1, "5000", 1)

	order, err := suite.svc.Checkout(context.Background(), 7, cart, suite.validAddress(), model.PaymentMethodCard)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), model.OrderStatusPaid, order.Status)
	require.True(suite.T(), cart.IsEmpty())
}

func TestCheckoutServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CheckoutServiceTestSuite))
}
