package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/namanabbad02/invoice-app/internal/models"
)

// seedInvoice writes an invoice (and one line item) with an explicit creation
// time, bypassing the service so tests control the clock.
func seedInvoice(t *testing.T, conn *gorm.DB, customerID uint, p models.Product, qty int, at time.Time) models.Invoice {
	t.Helper()
	price := p.Price.Mul(decimal.NewFromInt(int64(qty)))
	inv := models.Invoice{
		InvoiceNumber: NewInvoiceNumber(),
		CustomerID:    customerID,
		Subtotal:      price,
		Tax:           decimal.Zero,
		Discount:      decimal.Zero,
		GrandTotal:    price,
		Status:        models.StatusPaid,
		CreatedAt:     at,
	}
	if err := conn.Create(&inv).Error; err != nil {
		t.Fatalf("seed invoice: %v", err)
	}
	item := models.InvoiceItem{
		InvoiceID: inv.ID,
		ProductID: p.ID,
		Quantity:  qty,
		Price:     p.Price,
		Tax:       decimal.Zero,
		CreatedAt: at,
	}
	if err := conn.Create(&item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return inv
}

func seedCustomer(t *testing.T, conn *gorm.DB, phone string) models.Customer {
	t.Helper()
	c := models.Customer{Name: "Customer " + phone, Phone: phone}
	if err := conn.Create(&c).Error; err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return c
}

func TestDashboardKPIs(t *testing.T) {
	conn := openTestDB(t)
	svc := NewDashboardService(conn, "+05:30")
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	ring := mustCreateProduct(t, conn, "EJ-RING", "100.00", "0.00")
	chain := mustCreateProduct(t, conn, "EJ-CHAIN", "40.00", "0.00")
	c := seedCustomer(t, conn, "+919876500010")

	seedInvoice(t, conn, c.ID, ring, 1, now.Add(-2*time.Hour))          // today
	seedInvoice(t, conn, c.ID, chain, 3, now.AddDate(0, 0, -4))         // this month
	seedInvoice(t, conn, c.ID, ring, 5, now.AddDate(0, -2, 0))          // outside month
	seedInvoice(t, conn, c.ID, chain, 1, now.Add(-30*24*time.Hour*12))  // long ago

	kpis, err := svc.KPIs(context.Background(), now)
	if err != nil {
		t.Fatalf("kpis: %v", err)
	}
	if got := kpis.TodaysRevenue.StringFixed(2); got != "100.00" {
		t.Errorf("todays revenue = %s, want 100.00", got)
	}
	if got := kpis.MonthlyRevenue.StringFixed(2); got != "220.00" {
		t.Errorf("monthly revenue = %s, want 220.00", got)
	}
	if kpis.BestSellingProduct.Name != "Product EJ-CHAIN" {
		t.Errorf("best seller = %q, want the chain", kpis.BestSellingProduct.Name)
	}
	if kpis.BestSellingProduct.Quantity != 3 {
		t.Errorf("best seller quantity = %d, want 3", kpis.BestSellingProduct.Quantity)
	}
}

func TestDashboardKPIsEmpty(t *testing.T) {
	conn := openTestDB(t)
	svc := NewDashboardService(conn, "+05:30")

	kpis, err := svc.KPIs(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("kpis: %v", err)
	}
	if !kpis.TodaysRevenue.IsZero() || !kpis.MonthlyRevenue.IsZero() {
		t.Errorf("expected zero revenue, got %+v", kpis)
	}
	if kpis.BestSellingProduct.Name != "N/A" {
		t.Errorf("best seller = %q, want N/A", kpis.BestSellingProduct.Name)
	}
}

func TestTopProducts(t *testing.T) {
	conn := openTestDB(t)
	svc := NewDashboardService(conn, "+05:30")
	now := time.Now().UTC()

	cheap := mustCreateProduct(t, conn, "EJ-CHEAP", "10.00", "0.00")
	dear := mustCreateProduct(t, conn, "EJ-DEAR", "500.00", "0.00")
	c := seedCustomer(t, conn, "+919876500011")

	seedInvoice(t, conn, c.ID, cheap, 10, now)
	seedInvoice(t, conn, c.ID, dear, 1, now)

	byQty, err := svc.TopProducts(context.Background(), "quantity")
	if err != nil {
		t.Fatalf("top products: %v", err)
	}
	if len(byQty) != 2 || byQty[0].Name != "Product EJ-CHEAP" {
		t.Errorf("by quantity first = %+v", byQty)
	}

	byRevenue, err := svc.TopProducts(context.Background(), "revenue")
	if err != nil {
		t.Fatalf("top products by revenue: %v", err)
	}
	if len(byRevenue) != 2 || byRevenue[0].Name != "Product EJ-DEAR" {
		t.Errorf("by revenue first = %+v", byRevenue)
	}
	if got := byRevenue[0].TotalRevenue.StringFixed(2); got != "500.00" {
		t.Errorf("revenue = %s, want 500.00", got)
	}
}

func TestCategorySalesDropsZeroRevenue(t *testing.T) {
	conn := openTestDB(t)
	svc := NewDashboardService(conn, "+05:30")
	now := time.Now().UTC()

	ring := mustCreateProduct(t, conn, "EJ-R1", "100.00", "0.00")
	mustCreateProduct(t, conn, "EJ-B1", "50.00", "0.00") // never sold
	c := seedCustomer(t, conn, "+919876500012")
	seedInvoice(t, conn, c.ID, ring, 2, now)

	rows, err := svc.CategorySales(context.Background())
	if err != nil {
		t.Fatalf("category sales: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %+v, want only the selling category", rows)
	}
	if got := rows[0].TotalRevenue.StringFixed(2); got != "200.00" {
		t.Errorf("revenue = %s, want 200.00", got)
	}
}

func TestRecentInvoices(t *testing.T) {
	conn := openTestDB(t)
	svc := NewDashboardService(conn, "+05:30")
	now := time.Now().UTC()

	p := mustCreateProduct(t, conn, "EJ-R2", "10.00", "0.00")
	c := seedCustomer(t, conn, "+919876500013")
	for i := 0; i < 7; i++ {
		seedInvoice(t, conn, c.ID, p, 1, now.Add(-time.Duration(i)*time.Hour))
	}

	invs, err := svc.RecentInvoices(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(invs) != 5 {
		t.Fatalf("len = %d, want 5", len(invs))
	}
	if invs[0].CreatedAt.Before(invs[4].CreatedAt) {
		t.Error("invoices not ordered newest first")
	}
	if invs[0].Customer.ID == 0 {
		t.Error("customer not preloaded")
	}
}

func TestRevenueTrendHourlyBucketsInBusinessTime(t *testing.T) {
	conn := openTestDB(t)
	svc := NewDashboardService(conn, "+05:30")
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	p := mustCreateProduct(t, conn, "EJ-R3", "100.00", "0.00")
	c := seedCustomer(t, conn, "+919876500014")
	// 10:00 UTC is 15:30 at +05:30
	seedInvoice(t, conn, c.ID, p, 1, time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC))

	points, err := svc.RevenueTrend(context.Background(), "hourly", now)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if len(points) != 24 {
		t.Fatalf("points = %d, want 24 zero-filled hours", len(points))
	}
	for _, pt := range points {
		want := 0.0
		if pt.Label == "15:00" {
			want = 100.0
		}
		if pt.Revenue != want {
			t.Errorf("bucket %s revenue = %v, want %v", pt.Label, pt.Revenue, want)
		}
	}
}

func TestRevenueTrendDaily(t *testing.T) {
	conn := openTestDB(t)
	svc := NewDashboardService(conn, "+05:30")
	now := time.Date(2026, 8, 15, 12, 0, 0, 0, time.UTC)

	p := mustCreateProduct(t, conn, "EJ-R4", "50.00", "0.00")
	c := seedCustomer(t, conn, "+919876500015")
	seedInvoice(t, conn, c.ID, p, 1, now.AddDate(0, 0, -1))
	seedInvoice(t, conn, c.ID, p, 2, now.AddDate(0, 0, -2))
	seedInvoice(t, conn, c.ID, p, 1, now.AddDate(0, 0, -10)) // outside window

	points, err := svc.RevenueTrend(context.Background(), "daily", now)
	if err != nil {
		t.Fatalf("trend: %v", err)
	}
	if len(points) != 2 {
		t.Fatalf("points = %+v, want 2 days with sales", points)
	}
	total := points[0].Revenue + points[1].Revenue
	if total != 150.0 {
		t.Errorf("total in window = %v, want 150", total)
	}
}

func TestOffsetMinutes(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"+05:30", 330},
		{"-08:00", -480},
		{"+00:00", 0},
		{"+5", 300},
	}
	for _, tc := range cases {
		if got := offsetMinutes(tc.in); got != tc.want {
			t.Errorf("offsetMinutes(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
