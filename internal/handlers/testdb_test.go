package handlers

import (
	"fmt"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/namanabbad02/invoice-app/internal/db"
	"github.com/namanabbad02/invoice-app/internal/models"
)

var testDBSeq int

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:handlers_%s_%d?mode=memory&cache=shared", t.Name(), testDBSeq)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func mustCreateProduct(t *testing.T, conn *gorm.DB, code, price, tax string) models.Product {
	t.Helper()
	p := models.Product{
		Code:     code,
		Category: "Rings",
		Name:     "Product " + code,
		Price:    decimal.RequireFromString(price),
		Tax:      decimal.RequireFromString(tax),
	}
	if err := conn.Create(&p).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}
