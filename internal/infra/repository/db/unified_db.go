package db

import (
	"context"

	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// UnifiedDB 統一的資料庫介面
// Transaction 內拿到的 UnifiedDB 綁定同一個交易，整塊一起 commit 或 rollback
type UnifiedDB interface {
	InitMigrate() error

	// fn 回傳錯誤時整個交易 rollback
	Transaction(ctx context.Context, fn func(store UnifiedDB) error) error

	// Product 相關操作
	IProductRepository

	// Order 相關操作
	IOrderRepository

	// Customer 相關操作
	ICustomerRepository

	// Address 相關操作
	IAddressRepository
}

// IProductRepository Product 相關操作介面
type IProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, productID uint) (*model.Product, error)
	GetProductBySKU(ctx context.Context, sku string) (*model.Product, error)
	GetActiveProducts(ctx context.Context) ([]model.Product, error)
	GetProductsPaginated(ctx context.Context, filter CatalogFilter, page, pageSize int) ([]model.Product, int64, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeductInventory(ctx context.Context, productID uint, quantity int) error
	AddInventory(ctx context.Context, productID uint, warehouseID uint, quantity int) error
	GetProductStock(ctx context.Context, productID uint) (int, error)
	HardDeleteProduct(ctx context.Context, productID uint) error
}

// IOrderRepository Order 相關操作介面
type IOrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	AddOrderItem(ctx context.Context, item *model.OrderItem) error
	CreatePayment(ctx context.Context, payment *model.Payment) error
	GetOrderByID(ctx context.Context, orderID uint) (*model.Order, error)
	GetOrderItemByID(ctx context.Context, orderItemID uint) (*model.OrderItem, error)
	GetOrdersByCustomerID(ctx context.Context, customerID uint) ([]model.Order, error)
	GetOrdersPaginated(ctx context.Context, page, pageSize int) ([]model.Order, int64, error)
	UpdateOrderTotals(ctx context.Context, orderID uint, subtotal, tax, shipping, total decimal.Decimal) error
	UpdateOrderStatus(ctx context.Context, orderID uint, status string) error
	HardDeleteOrder(ctx context.Context, orderID uint) error
	GetCustomerOrderStats(ctx context.Context, customerID uint) (decimal.Decimal, int, error)
}

// ICustomerRepository Customer 相關操作介面
type ICustomerRepository interface {
	CreateCustomer(ctx context.Context, customer *model.Customer) (*model.Customer, error)
	GetCustomerByID(ctx context.Context, customerID uint) (*model.Customer, error)
	GetCustomerByEmail(ctx context.Context, email string) (*model.Customer, error)
	UpdateCustomer(ctx context.Context, customer *model.Customer) error
	DeleteCustomer(ctx context.Context, customerID uint) error
}

// IAddressRepository Address 相關操作介面
type IAddressRepository interface {
	CreateAddress(ctx context.Context, address *model.Address) error
	GetAddressByID(ctx context.Context, addressID uint) (*model.Address, error)
	ListCustomerAddresses(ctx context.Context, customerID uint) ([]model.Address, error)
	FindCustomerAddress(ctx context.Context, customerID uint, line1, city, country string) (*model.Address, error)
	DeleteAddress(ctx context.Context, addressID uint) error
}

// UnifiedDBImpl 統一資料庫實現
type UnifiedDBImpl struct {
	db    *gorm.DB
	dbDao *DbDao
	*ProductRepo
	*OrderRepo
	*CustomerRepo
	*AddressRepo
}

// NewUnifiedDB 創建新的統一資料庫實例
func NewUnifiedDB(db *gorm.DB) *UnifiedDBImpl {
	dbDao := NewDbDao(db)
	return &UnifiedDBImpl{
		db:           db,
		dbDao:        dbDao,
		ProductRepo:  NewProductRepo(dbDao),
		OrderRepo:    NewOrderRepo(dbDao),
		CustomerRepo: NewCustomerRepo(dbDao),
		AddressRepo:  NewAddressRepo(dbDao),
	}
}

func (u *UnifiedDBImpl) InitMigrate() error {
	return u.dbDao.InitMigrate()
}

// Transaction 把整組 repo 綁在同一個 gorm 交易上執行 fn
func (u *UnifiedDBImpl) Transaction(ctx context.Context, fn func(store UnifiedDB) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewUnifiedDB(tx))
	})
}

var _ UnifiedDB = (*UnifiedDBImpl)(nil)
