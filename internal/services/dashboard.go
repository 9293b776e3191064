package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/namanabbad02/invoice-app/internal/models"
)

// DashboardService runs the read-only aggregation queries behind the
// dashboard. Nothing is cached; every call hits the database.
//
// Timestamps are stored in UTC. Buckets (hour of day, calendar day) are
// computed in the business timezone, so the SQL converts before grouping.
// MySQL gets CONVERT_TZ with the configured offset; the sqlite dialect used
// in tests gets the equivalent datetime() modifier.
type DashboardService struct {
	db       *gorm.DB
	tzOffset string
}

func NewDashboardService(db *gorm.DB, tzOffset string) *DashboardService {
	return &DashboardService{db: db, tzOffset: tzOffset}
}

type KPIs struct {
	TodaysRevenue      decimal.Decimal `json:"todaysRevenue"`
	MonthlyRevenue     decimal.Decimal `json:"monthlyRevenue"`
	MonthlyDiscount    decimal.Decimal `json:"monthlyDiscount"`
	BestSellingProduct BestSeller      `json:"bestSellingProduct"`
}

type BestSeller struct {
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
}

type ProductSales struct {
	Name          string          `json:"name"`
	TotalQuantity int64           `json:"totalQuantity"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

type CategorySales struct {
	Category     string          `json:"category"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
}

type TrendPoint struct {
	Label   string  `json:"label"`
	Revenue float64 `json:"revenue"`
}

func (s *DashboardService) KPIs(ctx context.Context, now time.Time) (*KPIs, error) {
	dayFrom, dayTo := dayBounds(now)
	monthFrom, monthTo := monthBounds(now)

	today, err := s.sumInvoices(ctx, "grand_total", dayFrom, dayTo)
	if err != nil {
		return nil, err
	}
	monthly, err := s.sumInvoices(ctx, "grand_total", monthFrom, monthTo)
	if err != nil {
		return nil, err
	}
	discount, err := s.sumInvoices(ctx, "discount", monthFrom, monthTo)
	if err != nil {
		return nil, err
	}

	best := BestSeller{Name: "N/A"}
	var row struct {
		Name          string
		TotalQuantity int64
	}
	res := s.db.WithContext(ctx).Table("invoice_items").
		Select("products.name AS name, SUM(invoice_items.quantity) AS total_quantity").
		Joins("JOIN products ON products.id = invoice_items.product_id").
		Where("invoice_items.created_at BETWEEN ? AND ?", monthFrom, monthTo).
		Group("products.id, products.name").
		Order("total_quantity DESC").
		Limit(1).
		Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected > 0 {
		best = BestSeller{Name: row.Name, Quantity: row.TotalQuantity}
	}

	return &KPIs{
		TodaysRevenue:      today,
		MonthlyRevenue:     monthly,
		MonthlyDiscount:    discount,
		BestSellingProduct: best,
	}, nil
}

func (s *DashboardService) sumInvoices(ctx context.Context, column string, from, to time.Time) (decimal.Decimal, error) {
	var out decimal.NullDecimal
	row := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Select("SUM(" + column + ")").
		Where("created_at BETWEEN ? AND ?", from, to).
		Row()
	if err := row.Scan(&out); err != nil {
		return decimal.Zero, err
	}
	if !out.Valid {
		return decimal.Zero, nil
	}
	return out.Decimal, nil
}

// TopProducts returns the five best products, ordered by quantity sold or by
// revenue (quantity x snapshot price).
func (s *DashboardService) TopProducts(ctx context.Context, by string) ([]ProductSales, error) {
	order := "total_quantity DESC"
	if by == "revenue" {
		order = "total_revenue DESC"
	}
	var rows []ProductSales
	err := s.db.WithContext(ctx).Table("invoice_items").
		Select("products.name AS name, SUM(invoice_items.quantity) AS total_quantity, SUM(invoice_items.quantity * invoice_items.price) AS total_revenue").
		Joins("JOIN products ON products.id = invoice_items.product_id").
		Group("products.id, products.name").
		Order(order).
		Limit(5).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CategorySales returns revenue per product category, dropping categories
// with no revenue.
func (s *DashboardService) CategorySales(ctx context.Context) ([]CategorySales, error) {
	var rows []CategorySales
	err := s.db.WithContext(ctx).Table("invoice_items").
		Select("products.category AS category, SUM(invoice_items.quantity * invoice_items.price) AS total_revenue").
		Joins("JOIN products ON products.id = invoice_items.product_id").
		Group("products.category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := rows[:0]
	for _, r := range rows {
		if r.TotalRevenue.IsPositive() {
			out = append(out, r)
		}
	}
	return out, nil
}

// RecentInvoices returns the latest n invoices with customers attached.
func (s *DashboardService) RecentInvoices(ctx context.Context, n int) ([]models.Invoice, error) {
	var invs []models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Order("created_at DESC").
		Limit(n).
		Find(&invs).Error
	return invs, err
}

// RevenueTrend buckets grand totals by hour of today (period "hourly",
// 24 zero-filled points) or by day over the last 7 days (default).
func (s *DashboardService) RevenueTrend(ctx context.Context, period string, now time.Time) ([]TrendPoint, error) {
	if period == "hourly" {
		return s.hourlyTrend(ctx, now)
	}
	return s.dailyTrend(ctx, now)
}

func (s *DashboardService) hourlyTrend(ctx context.Context, now time.Time) ([]TrendPoint, error) {
	from, to := dayBounds(now)
	expr, arg := s.hourBucket()
	var rows []struct {
		Bucket  int
		Revenue float64
	}
	err := s.db.WithContext(ctx).Table("invoices").
		Select(expr+" AS bucket, SUM(grand_total) AS revenue", arg).
		Where("created_at BETWEEN ? AND ?", from, to).
		Group("bucket").
		Order("bucket ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	byHour := make(map[int]float64, len(rows))
	for _, r := range rows {
		byHour[r.Bucket] = r.Revenue
	}
	points := make([]TrendPoint, 0, 24)
	for h := 0; h < 24; h++ {
		points = append(points, TrendPoint{Label: fmt.Sprintf("%02d:00", h), Revenue: byHour[h]})
	}
	return points, nil
}

func (s *DashboardService) dailyTrend(ctx context.Context, now time.Time) ([]TrendPoint, error) {
	from, _ := dayBounds(now.AddDate(0, 0, -6))
	_, to := dayBounds(now)
	expr, arg := s.dayBucket()
	var rows []struct {
		Bucket  string
		Revenue float64
	}
	err := s.db.WithContext(ctx).Table("invoices").
		Select(expr+" AS bucket, SUM(grand_total) AS revenue", arg).
		Where("created_at BETWEEN ? AND ?", from, to).
		Group("bucket").
		Order("bucket ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	points := make([]TrendPoint, 0, len(rows))
	for _, r := range rows {
		points = append(points, TrendPoint{Label: weekdayLabel(r.Bucket), Revenue: r.Revenue})
	}
	return points, nil
}

func (s *DashboardService) hourBucket() (expr string, arg any) {
	if s.db.Dialector.Name() == "mysql" {
		return "HOUR(CONVERT_TZ(created_at, '+00:00', ?))", s.tzOffset
	}
	return "CAST(strftime('%H', datetime(created_at, ?)) AS INTEGER)", s.sqliteModifier()
}

func (s *DashboardService) dayBucket() (expr string, arg any) {
	if s.db.Dialector.Name() == "mysql" {
		return "DATE(CONVERT_TZ(created_at, '+00:00', ?))", s.tzOffset
	}
	return "date(datetime(created_at, ?))", s.sqliteModifier()
}

// sqliteModifier turns "+05:30" into the "+330 minutes" form sqlite's
// datetime() accepts.
func (s *DashboardService) sqliteModifier() string {
	return fmt.Sprintf("%+d minutes", offsetMinutes(s.tzOffset))
}

func offsetMinutes(offset string) int {
	v := strings.TrimSpace(offset)
	sign := 1
	if strings.HasPrefix(v, "-") {
		sign = -1
	}
	v = strings.TrimLeft(v, "+-")
	hh, mm := v, "0"
	if i := strings.IndexByte(v, ':'); i >= 0 {
		hh, mm = v[:i], v[i+1:]
	}
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	return sign * (h*60 + m)
}

// weekdayLabel turns a DATE() bucket like "2026-08-31" into "Mon".
func weekdayLabel(bucket string) string {
	if len(bucket) > 10 {
		bucket = bucket[:10]
	}
	d, err := time.Parse("2006-01-02", bucket)
	if err != nil {
		return bucket
	}
	return d.Weekday().String()[:3]
}

func dayBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

func monthBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0).Add(-time.Nanosecond)
}
