package db

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// 整合測試需要本機 Postgres，設 ELSHOP_TEST_DB=1 才會跑
func skipWithoutTestDb(t *testing.T) {
	if os.Getenv("ELSHOP_TEST_DB") == "" {
		t.Skip("set ELSHOP_TEST_DB=1 to run db integration tests")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getTestDbConn(t *testing.T) *gorm.DB {
	db, err := GetDbConn(
		envOr("POSTGRES_DB", "lab_elshop_test"),
		envOr("POSTGRES_HOST", "localhost"),
		envOr("POSTGRES_PORT", "5432"),
		envOr("POSTGRES_USER", "royce"),
		envOr("POSTGRES_PASSWORD", "password"),
	)
	require.NoError(t, err)
	require.NoError(t, NewDbDao(db).InitMigrate())
	return db
}

// 清空所有資料表，FK 順序由子到父
func truncateAll(db *gorm.DB) {
	for _, table := range []string{
		"payments", "order_items", "orders",
		"addresses", "customers",
		"inventories", "warehouses", "products", "categories",
		"audit_logs",
	} {
		db.Exec("DELETE FROM " + table)
	}
}
