package model

const (
	AddressTypeBilling  = "billing"
	AddressTypeShipping = "shipping"
	AddressTypeOther    = "other"
)

type Customer struct {
	CustomerID uint      `gorm:"primaryKey" json:"customer_id"`
	Email      string    `gorm:"unique;not null;type:varchar(254)" json:"email"`
	FirstName  string    `gorm:"not null;type:varchar(100)" json:"first_name"`
	LastName   string    `gorm:"not null;type:varchar(100)" json:"last_name"`
	Phone      string    `gorm:"type:varchar(30)" json:"phone"`
	Addresses  []Address `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"addresses,omitempty"` // 一對多，級聯刪除
	BaseModel
}

// 客戶被刪除時 Order.customer_id 會被設為 NULL，地址則跟著客戶一起刪除
type Address struct {
	AddressID  uint   `gorm:"primaryKey" json:"address_id"`
	CustomerID uint   `gorm:"not null;index" json:"customer_id"`
	Type       string `gorm:"not null;type:varchar(20)" json:"type"` // billing, shipping, other
	Line1      string `gorm:"not null;type:varchar(255)" json:"line1"`
	Line2      string `gorm:"type:varchar(255)" json:"line2"`
	City       string `gorm:"not null;type:varchar(100)" json:"city"`
	State      string `gorm:"type:varchar(100)" json:"state"`
	PostalCode string `gorm:"type:varchar(20)" json:"postal_code"`
	Country    string `gorm:"not null;type:varchar(50)" json:"country"`
	IsDefault  bool   `gorm:"not null;default:false" json:"is_default"`
	BaseModel
}
