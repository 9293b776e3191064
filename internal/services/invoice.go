package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/namanabbad02/invoice-app/internal/models"
)

// Errors the handler maps onto HTTP statuses.
var (
	ErrProductNotFound      = errors.New("one or more products not found")
	ErrDiscountExceedsTotal = errors.New("discount exceeds subtotal plus tax")
	ErrPhoneConflict        = errors.New("a customer with this phone number already exists")
)

// CustomerInput is the customer block of an invoice request. Phone is the
// dedup key and must already be validated as E.164 by the caller.
type CustomerInput struct {
	Name  string
	Email *string
	Phone string
}

type ItemInput struct {
	ProductID uint
	Quantity  int
}

type CreateInvoiceInput struct {
	Customer CustomerInput
	Items    []ItemInput
	Discount decimal.Decimal
}

// InvoiceService owns the invoice-creation transaction and totals math.
type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

var hundred = decimal.NewFromInt(100)

// Create runs the all-or-nothing invoice transaction: find-or-create the
// customer by phone, re-price every line from the current product rows,
// compute totals, persist invoice + items. Client-submitted prices are never
// trusted. Returns the committed invoice with customer and items populated.
func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*models.Invoice, error) {
	if in.Discount.IsNegative() {
		in.Discount = decimal.Zero
	}
	var created models.Invoice
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := findOrCreateCustomer(tx, in.Customer)
		if err != nil {
			return err
		}

		ids := make([]uint, 0, len(in.Items))
		seen := map[uint]bool{}
		for _, it := range in.Items {
			if !seen[it.ProductID] {
				seen[it.ProductID] = true
				ids = append(ids, it.ProductID)
			}
		}
		var products []models.Product
		if err := tx.Where("id IN ?", ids).Find(&products).Error; err != nil {
			return err
		}
		if len(products) != len(ids) {
			return ErrProductNotFound
		}
		byID := make(map[uint]models.Product, len(products))
		for _, p := range products {
			byID[p.ID] = p
		}

		subtotal := decimal.Zero
		totalTax := decimal.Zero
		items := make([]models.InvoiceItem, 0, len(in.Items))
		for _, it := range in.Items {
			p := byID[it.ProductID]
			qty := decimal.NewFromInt(int64(it.Quantity))
			lineAmount := p.Price.Mul(qty)
			lineTax := lineAmount.Mul(p.Tax).Div(hundred).Round(2)
			subtotal = subtotal.Add(lineAmount)
			totalTax = totalTax.Add(lineTax)
			items = append(items, models.InvoiceItem{
				ProductID: p.ID,
				Quantity:  it.Quantity,
				Price:     p.Price,
				Tax:       lineTax,
			})
		}

		if in.Discount.GreaterThan(subtotal.Add(totalTax)) {
			return ErrDiscountExceedsTotal
		}
		grandTotal := subtotal.Add(totalTax).Sub(in.Discount)

		inv := models.Invoice{
			InvoiceNumber: NewInvoiceNumber(),
			CustomerID:    customer.ID,
			Subtotal:      subtotal,
			Tax:           totalTax,
			Discount:      in.Discount,
			GrandTotal:    grandTotal,
			Status:        models.StatusPaid,
		}
		if err := tx.Create(&inv).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = inv.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		inv.Customer = *customer
		inv.Items = items
		created = inv
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost the find-or-create race on the phone unique index
			return nil, ErrPhoneConflict
		}
		return nil, err
	}
	return &created, nil
}

// findOrCreateCustomer looks the customer up by phone and refreshes
// name/email when the submitted details differ.
func findOrCreateCustomer(tx *gorm.DB, in CustomerInput) (*models.Customer, error) {
	var c models.Customer
	err := tx.Where("phone = ?", in.Phone).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c = models.Customer{Name: in.Name, Email: in.Email, Phone: in.Phone}
		if err := tx.Create(&c).Error; err != nil {
			return nil, err
		}
		return &c, nil
	}
	if err != nil {
		return nil, err
	}
	if c.Name != in.Name || !equalEmail(c.Email, in.Email) {
		c.Name = in.Name
		c.Email = in.Email
		if err := tx.Save(&c).Error; err != nil {
			return nil, err
		}
	}
	return &c, nil
}

func equalEmail(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// NewInvoiceNumber returns a human-readable unique number. Nanoseconds rather
// than milliseconds: two requests in the same millisecond must not collide on
// the unique column.
func NewInvoiceNumber() string {
	return fmt.Sprintf("INV-%d", time.Now().UnixNano())
}

// Load fetches an invoice with customer and items(+product) attached.
func (s *InvoiceService) Load(ctx context.Context, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items.Product").
		First(&inv, id).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}
