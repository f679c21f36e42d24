package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category 商品分類，parent 為 NULL 表示頂層分類
type Category struct {
	CategoryID uint      `gorm:"primaryKey" json:"category_id"`
	Name       string    `gorm:"not null;type:varchar(100);unique" json:"name"`
	ParentID   *uint     `gorm:"index" json:"parent_id"`
	Parent     *Category `gorm:"foreignKey:ParentID;constraint:OnDelete:SET NULL" json:"-"`
	BaseModel
}

type Product struct {
	ProductID   uint            `gorm:"primaryKey" json:"product_id"`
	SKU         string          `gorm:"column:sku;not null;type:varchar(50);unique" json:"sku"`
	Name        string          `gorm:"not null;type:varchar(200)" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	CategoryID  *uint           `gorm:"index" json:"category_id"`
	BasePrice   decimal.Decimal `gorm:"not null;type:decimal(12,2)" json:"base_price"`
	WeightKg    decimal.Decimal `gorm:"not null;type:decimal(8,3);default:0" json:"weight_kg"`
	Active      bool            `gorm:"not null;default:true" json:"active"`
	Category    *Category       `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL" json:"-"`
	BaseModel
}

type Warehouse struct {
	WarehouseID uint   `gorm:"primaryKey" json:"warehouse_id"`
	Name        string `gorm:"not null;type:varchar(200);unique" json:"name"`
	Location    string `gorm:"type:varchar(255)" json:"location"`
	BaseModel
}

// 每個 (product, warehouse) 只有一筆庫存紀錄
type Inventory struct {
	InventoryID   uint       `gorm:"primaryKey" json:"inventory_id"`
	ProductID     uint       `gorm:"not null;uniqueIndex:idx_inventory_product_warehouse" json:"product_id"`
	WarehouseID   uint       `gorm:"not null;uniqueIndex:idx_inventory_product_warehouse" json:"warehouse_id"`
	Quantity      int        `gorm:"not null;default:0" json:"quantity"`
	Reserved      int        `gorm:"not null;default:0" json:"reserved"`
	LastRestocked *time.Time `gorm:"null" json:"last_restocked"`
	Product       Product    `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"-"`
	Warehouse     Warehouse  `gorm:"foreignKey:WarehouseID;constraint:OnDelete:RESTRICT" json:"-"`
	BaseModel
}
