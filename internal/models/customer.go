package models

import "time"

// Customer is deduplicated by phone number: the phone is the unique business
// key, email is optional contact data.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     *string   `json:"email"`
	Phone     string    `gorm:"size:20;not null;unique" json:"phone"`
	Invoices  []Invoice `gorm:"foreignKey:CustomerID" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
