package model

import (
	"time"
)

// AuditLog 對應原本由 DB trigger 寫入的稽核表，改由 gorm callback 寫入
type AuditLog struct {
	AuditLogID uint      `gorm:"primaryKey" json:"audit_log_id"`
	TableName  string    `gorm:"not null;type:varchar(100)" json:"table_name"`
	Operation  string    `gorm:"not null;type:varchar(10)" json:"operation"` // INSERT, UPDATE, DELETE
	RowData    string    `gorm:"type:jsonb" json:"row_data"`
	ChangedAt  time.Time `gorm:"not null;default:now()" json:"changed_at"`
	ChangedBy  string    `gorm:"type:varchar(100)" json:"changed_by"`
}
