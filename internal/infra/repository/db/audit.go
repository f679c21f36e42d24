package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/RoyceAzure/lab/elshop/internal/domain/model"
	"gorm.io/gorm"
)

type auditActorKey struct{}

// WithAuditActor 在 ctx 上掛上操作者，稽核列的 changed_by 會取用
func WithAuditActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, auditActorKey{}, actor)
}

func auditActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(auditActorKey{}).(string); ok {
		return actor
	}
	return ""
}

// 原系統以 DB trigger 對 products 與 orders 寫稽核表
// Go 這邊不保留 procedural trigger，改用 gorm callback 在同一交易內寫入
var auditedTables = map[string]struct{}{
	"orders":   {},
	"products": {},
}

// RegisterAuditCallbacks 註冊稽核 callback，需在開始服務前呼叫一次
func RegisterAuditCallbacks(db *gorm.DB) error {
	if err := db.Callback().Create().After("gorm:create").
		Register("elshop:audit_create", auditCallback("INSERT")); err != nil {
		return err
	}
	if err := db.Callback().Update().After("gorm:update").
		Register("elshop:audit_update", auditCallback("UPDATE")); err != nil {
		return err
	}
	return db.Callback().Delete().After("gorm:delete").
		Register("elshop:audit_delete", auditCallback("DELETE"))
}

func auditCallback(operation string) func(tx *gorm.DB) {
	return func(tx *gorm.DB) {
		if tx.Error != nil || tx.Statement == nil {
			return
		}
		if _, ok := auditedTables[tx.Statement.Table]; !ok {
			return
		}

		rowData, err := json.Marshal(tx.Statement.Dest)
		if err != nil {
			rowData = []byte("{}")
		}

		logEntry := model.AuditLog{
			TableName: tx.Statement.Table,
			Operation: operation,
			RowData:   string(rowData),
			ChangedAt: time.Now().UTC(),
			ChangedBy: auditActorFromContext(tx.Statement.Context),
		}

		// 同一連線（同一交易）寫入，避免觸發其他 callback
		if err := tx.Session(&gorm.Session{NewDB: true, SkipHooks: true}).
			Create(&logEntry).Error; err != nil {
			_ = tx.AddError(err)
		}
	}
}
