package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type ProductRepoTestSuite struct {
	suite.Suite
	db          *gorm.DB
	productRepo *ProductRepo
}

// SetupSuite 在測試套件開始前執行
func (suite *ProductRepoTestSuite) SetupSuite() {
	skipWithoutTestDb(suite.T())
	db := getTestDbConn(suite.T())

	suite.db = db
	suite.productRepo = NewProductRepo(NewDbDao(db))
}

// SetupTest 在每個測試前執行
func (suite *ProductRepoTestSuite) SetupTest() {
	truncateAll(suite.db)
}

// TearDownSuite 在測試套件結束後執行
func (suite *ProductRepoTestSuite) TearDownSuite() {
	if suite.db == nil {
		return
	}
	sqlDB, _ := suite.db.DB()
	sqlDB.Close()
}

func (suite *ProductRepoTestSuite) createProduct(sku string, active bool) *model.Product {
	product := &model.Product{
		SKU:       sku,
		Name:      "Product " + sku,
		BasePrice: decimal.RequireFromString("19.99"),
		Active:    active,
	}
	require.NoError(suite.T(), suite.productRepo.CreateProduct(context.Background(), product))
	return product
}

func (suite *ProductRepoTestSuite) createWarehouse(name string) *model.Warehouse {
	warehouse := &model.Warehouse{Name: name}
	require.NoError(suite.T(), suite.db.Create(warehouse).Error)
	return warehouse
}

func (suite *ProductRepoTestSuite) TestCreateAndGetProduct() {
	product := suite.createProduct("SKU-1", true)
	require.NotZero(suite.T(), product.ProductID)

	found, err := suite.productRepo.GetProductByID(context.Background(), product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), "SKU-1", found.SKU)
	require.True(suite.T(), found.BasePrice.Equal(product.BasePrice))

	bySku, err := suite.productRepo.GetProductBySKU(context.Background(), "SKU-1")
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), product.ProductID, bySku.ProductID)
}

func (suite *ProductRepoTestSuite) TestGetProduct_NotFound() {
	found, err := suite.productRepo.GetProductByID(context.Background(), 999)
	require.ErrorIs(suite.T(), err, ErrProductNotFound)
	require.Nil(suite.T(), found)

	found, err = suite.productRepo.GetProductBySKU(context.Background(), "NOPE")
	require.ErrorIs(suite.T(), err, ErrProductNotFound)
	require.Nil(suite.T(), found)
}

func (suite *ProductRepoTestSuite) TestGetActiveProducts() {
	suite.createProduct("SKU-1", true)
	suite.createProduct("SKU-2", true)
	suite.createProduct("SKU-3", false)

	products, err := suite.productRepo.GetActiveProducts(context.Background())
	require.NoError(suite.T(), err)
	require.Len(suite.T(), products, 2)
}

func (suite *ProductRepoTestSuite) TestGetProductsPaginated() {
	for i := 1; i <= 12; i++ {
		suite.createProduct(fmt.Sprintf("SKU-%d", i), true)
	}
	// 下架商品不進目錄
	suite.createProduct("SKU-INACTIVE", false)

	products, total, err := suite.productRepo.GetProductsPaginated(context.Background(), CatalogFilter{}, 1, 10)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), products, 10)
	require.Equal(suite.T(), int64(12), total)

	products, _, err = suite.productRepo.GetProductsPaginated(context.Background(), CatalogFilter{}, 2, 10)
	require.NoError(suite.T(), err)
	require.Len(suite.T(), products, 2)
}

func (suite *ProductRepoTestSuite) TestGetProductsPaginated_Filtered() {
	ctx := context.Background()

	category := &model.Category{Name: "Books"}
	require.NoError(suite.T(), suite.db.Create(category).Error)

	cheap := suite.createProduct("SKU-CHEAP", true)
	cheap.CategoryID = &category.CategoryID
	cheap.BasePrice = decimal.RequireFromString("5.00")
	require.NoError(suite.T(), suite.productRepo.UpdateProduct(ctx, cheap))

	pricey := suite.createProduct("SKU-PRICEY", true)
	pricey.CategoryID = &category.CategoryID
	pricey.BasePrice = decimal.RequireFromString("80.00")
	require.NoError(suite.T(), suite.productRepo.UpdateProduct(ctx, pricey))

	// 沒分類的商品
	suite.createProduct("SKU-OTHER", true)

	// 只過濾分類
	products, total, err := suite.productRepo.GetProductsPaginated(ctx, CatalogFilter{CategoryID: &category.CategoryID}, 1, 10)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(2), total)
	require.Len(suite.T(), products, 2)

	// 分類加價格區間
	minPrice := decimal.RequireFromString("10")
	maxPrice := decimal.RequireFromString("100")
	products, total, err = suite.productRepo.GetProductsPaginated(ctx, CatalogFilter{
		CategoryID: &category.CategoryID,
		MinPrice:   &minPrice,
		MaxPrice:   &maxPrice,
	}, 1, 10)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), int64(1), total)
	require.Len(suite.T(), products, 1)
	require.Equal(suite.T(), "SKU-PRICEY", products[0].SKU)
}

func (suite *ProductRepoTestSuite) TestGetProductsPaginated_CountError() {
	// context 取消時要回傳錯誤，不能默默回 total=0
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := suite.productRepo.GetProductsPaginated(ctx, CatalogFilter{}, 1, 10)
	require.Error(suite.T(), err)
}

func (suite *ProductRepoTestSuite) TestDeductInventory() {
	ctx := context.Background()
	product := suite.createProduct("SKU-1", true)
	warehouse := suite.createWarehouse("W1")

	require.NoError(suite.T(), suite.db.Create(&model.Inventory{
		ProductID:   product.ProductID,
		WarehouseID: warehouse.WarehouseID,
		Quantity:    10,
	}).Error)

	require.NoError(suite.T(), suite.productRepo.DeductInventory(ctx, product.ProductID, 4))

	stock, err := suite.productRepo.GetProductStock(ctx, product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), 6, stock)
}

func (suite *ProductRepoTestSuite) TestDeductInventory_Insufficient() {
	ctx := context.Background()
	product := suite.createProduct("SKU-1", true)
	warehouse := suite.createWarehouse("W1")

	require.NoError(suite.T(), suite.db.Create(&model.Inventory{
		ProductID:   product.ProductID,
		WarehouseID: warehouse.WarehouseID,
		Quantity:    3,
	}).Error)

	// 庫存不足不扣任何東西
	err := suite.productRepo.DeductInventory(ctx, product.ProductID, 5)
	require.ErrorIs(suite.T(), err, ErrInsufficientStock)

	stock, _ := suite.productRepo.GetProductStock(ctx, product.ProductID)
	require.Equal(suite.T(), 3, stock)
}

func (suite *ProductRepoTestSuite) TestDeductInventory_PicksWarehouseWithStock() {
	ctx := context.Background()
	product := suite.createProduct("SKU-1", true)
	w1 := suite.createWarehouse("W1")
	w2 := suite.createWarehouse("W2")

	// 兩個倉庫，只有一個夠扣
	require.NoError(suite.T(), suite.db.Create(&model.Inventory{
		ProductID: product.ProductID, WarehouseID: w1.WarehouseID, Quantity: 2,
	}).Error)
	require.NoError(suite.T(), suite.db.Create(&model.Inventory{
		ProductID: product.ProductID, WarehouseID: w2.WarehouseID, Quantity: 8,
	}).Error)

	require.NoError(suite.T(), suite.productRepo.DeductInventory(ctx, product.ProductID, 5))

	stock, _ := suite.productRepo.GetProductStock(ctx, product.ProductID)
	require.Equal(suite.T(), 5, stock)

	// 量少的那個倉庫不動
	var small model.Inventory
	suite.db.Where("warehouse_id = ?", w1.WarehouseID).First(&small)
	require.Equal(suite.T(), 2, small.Quantity)
}

func (suite *ProductRepoTestSuite) TestAddInventory() {
	ctx := context.Background()
	product := suite.createProduct("SKU-1", true)
	warehouse := suite.createWarehouse("W1")

	require.NoError(suite.T(), suite.db.Create(&model.Inventory{
		ProductID:   product.ProductID,
		WarehouseID: warehouse.WarehouseID,
		Quantity:    1,
	}).Error)

	require.NoError(suite.T(), suite.productRepo.AddInventory(ctx, product.ProductID, warehouse.WarehouseID, 9))

	stock, _ := suite.productRepo.GetProductStock(ctx, product.ProductID)
	require.Equal(suite.T(), 10, stock)
}

// 被訂單項目引用的商品不可刪除，未被引用的連同庫存一起刪掉
func (suite *ProductRepoTestSuite) TestHardDeleteProduct_ReferencedByOrderItem() {
	ctx := context.Background()
	product := suite.createProduct("SKU-1", true)

	customer := &model.Customer{Email: "a@example.com", FirstName: "Test", LastName: "Customer"}
	require.NoError(suite.T(), suite.db.Create(customer).Error)
	order := &model.Order{CustomerID: &customer.CustomerID, Status: model.OrderStatusDraft, Currency: "EUR"}
	require.NoError(suite.T(), suite.db.Create(order).Error)
	require.NoError(suite.T(), suite.db.Create(&model.OrderItem{
		OrderID:   order.OrderID,
		ProductID: product.ProductID,
		UnitPrice: product.BasePrice,
		Quantity:  1,
		LineTotal: product.BasePrice,
	}).Error)

	err := suite.productRepo.HardDeleteProduct(ctx, product.ProductID)
	require.ErrorIs(suite.T(), err, ErrProductReferenced)

	// 商品還在
	found, err := suite.productRepo.GetProductByID(ctx, product.ProductID)
	require.NoError(suite.T(), err)
	require.Equal(suite.T(), product.ProductID, found.ProductID)
}

func (suite *ProductRepoTestSuite) TestHardDeleteProduct_Unreferenced() {
	ctx := context.Background()
	product := suite.createProduct("SKU-1", true)
	warehouse := suite.createWarehouse("W1")
	require.NoError(suite.T(), suite.db.Create(&model.Inventory{
		ProductID:   product.ProductID,
		WarehouseID: warehouse.WarehouseID,
		Quantity:    3,
	}).Error)

	require.NoError(suite.T(), suite.productRepo.HardDeleteProduct(ctx, product.ProductID))

	_, err := suite.productRepo.GetProductByID(ctx, product.ProductID)
	require.ErrorIs(suite.T(), err, ErrProductNotFound)

	var count int64
	suite.db.Table("inventories").Where("product_id = ?", product.ProductID).Count(&count)
	require.Zero(suite.T(), count)
}

func TestProductRepoTestSuite(t *testing.T) {
	suite.Run(t, new(ProductRepoTestSuite))
}
