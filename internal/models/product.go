package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product catalog entry. Code is the admin-assigned product id shown on
// invoices. Line items snapshot Price and Tax at invoicing time, so later
// edits never touch past invoices.
type Product struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Code     string `gorm:"size:40;not null;unique" json:"productId"`
	Category string `gorm:"not null;index" json:"category"`
	Name     string `gorm:"not null" json:"name"`
	// Tax is a percentage, e.g. 18.00 for 18%.
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Tax       decimal.Decimal `gorm:"type:decimal(5,2);not null" json:"tax"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
