package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses. The shop records invoices at the point of sale, so Paid
// is the default.
const (
	StatusPaid   = "Paid"
	StatusUnpaid = "Unpaid"
)

// Invoice rows are immutable after creation except for Status and PDFURL.
// GrandTotal = Subtotal + Tax - Discount.
type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"size:40;not null;unique" json:"invoiceNumber"`
	CustomerID    uint            `gorm:"not null;index" json:"customerId"`
	Customer      Customer        `gorm:"foreignKey:CustomerID" json:"customer"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax"`
	Discount      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount"`
	GrandTotal    decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"grandTotal"`
	Status        string          `gorm:"size:20;not null;default:'Paid'" json:"status"`
	PDFURL        string          `gorm:"column:pdf_url" json:"pdfUrl"`
	Items         []InvoiceItem   `gorm:"foreignKey:InvoiceID" json:"items"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// InvoiceItem freezes the product's unit price and the computed tax amount at
// creation time. Tax here is an amount, not a percentage.
type InvoiceItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	InvoiceID uint            `gorm:"not null;index" json:"invoiceId"`
	ProductID uint            `gorm:"not null;index" json:"productId"`
	Product   Product         `gorm:"foreignKey:ProductID" json:"product"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Tax       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"tax"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
