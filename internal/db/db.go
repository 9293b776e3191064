package db

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	migrate "github.com/golang-migrate/migrate/v4"
	// Blank imports register the mysql driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/namanabbad02/invoice-app/internal/config"
	"github.com/namanabbad02/invoice-app/internal/models"
)

// DSN builds a go-sql-driver DSN from config. Timestamps are stored in UTC;
// dashboard queries convert to the business timezone at read time.
func DSN(c config.DB) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&multiStatements=true",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// ConnectAndMigrate opens the MySQL database with a bounded retry loop, then
// brings the schema up to date: SQL migrations via golang-migrate when
// MIGRATIONS=1, AutoMigrate otherwise (dev convenience). DB_SEED=1 seeds a
// small demo catalog.
func ConnectAndMigrate(c config.DB, log *logrus.Logger) (*gorm.DB, error) {
	dsn := DSN(c)

	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "1" {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel), TranslateError: true}

	var conn *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		conn, err = gorm.Open(mysql.Open(dsn), cfg)
		if err == nil {
			break
		}
		log.WithError(err).Warn("retrying DB connection")
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}

	if v := strings.ToLower(os.Getenv("MIGRATIONS")); v == "1" || v == "true" || v == "yes" {
		if err := runSQLMigrations(c); err != nil {
			return nil, fmt.Errorf("sql migrations failed: %w", err)
		}
	} else if err := AutoMigrate(conn); err != nil {
		return nil, err
	}

	// sanity check: ensure required core tables exist
	for _, table := range []string{"users", "customers", "products", "invoices", "invoice_items"} {
		if !conn.Migrator().HasTable(table) {
			return nil, errors.New("missing table after migration: " + table)
		}
	}

	if v := strings.ToLower(os.Getenv("DB_SEED")); v == "1" || v == "true" || v == "yes" {
		Seed(conn)
	}
	return conn, nil
}

// AutoMigrate applies the gorm schema for every model, in FK order.
func AutoMigrate(conn *gorm.DB) error {
	for _, m := range []any{
		&models.User{}, &models.Customer{}, &models.Product{}, &models.Invoice{}, &models.InvoiceItem{},
	} {
		if err := conn.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// runSQLMigrations executes migrations in ./migrations using the golang-migrate
// file source. golang-migrate's mysql driver wants a mysql:// prefixed DSN.
func runSQLMigrations(c config.DB) error {
	dsn := fmt.Sprintf("mysql://%s:%s@tcp(%s:%s)/%s?multiStatements=true",
		url.QueryEscape(c.User), url.QueryEscape(c.Password), c.Host, c.Port, c.Name)
	m, err := migrate.New("file://migrations", dsn)
	if err != nil {
		return err
	}
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
