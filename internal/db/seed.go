package db

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/namanabbad02/invoice-app/internal/models"
)

// Seed inserts a small demo catalog. Existing codes are left untouched so the
// seed is safe to re-run.
func Seed(conn *gorm.DB) {
	products := []models.Product{
		{Code: "EJ-RING-001", Category: "Rings", Name: "Gold Plated Ring", Price: decimal.NewFromFloat(1499.00), Tax: decimal.NewFromFloat(3.00)},
		{Code: "EJ-NECK-001", Category: "Necklaces", Name: "Kundan Necklace Set", Price: decimal.NewFromFloat(3299.00), Tax: decimal.NewFromFloat(3.00)},
		{Code: "EJ-EARR-001", Category: "Earrings", Name: "Pearl Drop Earrings", Price: decimal.NewFromFloat(899.00), Tax: decimal.NewFromFloat(3.00)},
		{Code: "EJ-BANG-001", Category: "Bangles", Name: "Antique Bangle Pair", Price: decimal.NewFromFloat(1899.00), Tax: decimal.NewFromFloat(3.00)},
	}
	for _, p := range products {
		var existing models.Product
		err := conn.Where("code = ?", p.Code).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			conn.Create(&p)
		}
	}
}
