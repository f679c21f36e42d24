package util

import (
	"github.com/google/uuid"
)

// GenerateTransactionRef 付款交易參考編號，接上真正金流前先以 uuid 代替
func GenerateTransactionRef() string {
	return uuid.New().String()
}

// GenerateSessionID 購物車 session 識別
func GenerateSessionID() string {
	return uuid.New().String()
}
