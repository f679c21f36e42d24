package service

import (
	"context"

	"github.com/RoyceAzure/lab/elshop/internal/infra/repository/db"
)

// InventoryService 預設的庫存預留實作
// 扣減走條件式 UPDATE 帶 floor，必須跟訂單建立在同一個交易內執行
type InventoryService struct{}

func NewInventoryService() *InventoryService {
	return &InventoryService{}
}

func (s *InventoryService) Reserve(ctx context.Context, store db.UnifiedDB, productID uint, quantity int) error {
	return store.DeductInventory(ctx, productID, quantity)
}

var _ InventoryReserver = (*InventoryService)(nil)
