// Package pdf renders invoices as PDF documents. Rendering is a pure
// function of its inputs plus the two footer QR targets; failures are fatal
// to the single request only and nothing is retried here.
package pdf

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/namanabbad02/invoice-app/internal/models"
)

const (
	businessName    = "Embellish Jewels"
	businessTagline = "by Nakul"
	businessCity    = "Jaipur, Rajasthan, 302112"
	businessEmail   = "support@embellishjewels.com"
	supportLine     = "For support or returns, contact us at embellish.nj@gmail.com or WhatsApp +91-8618486616"
)

var (
	headerGold = props.Color{Red: 200, Green: 169, Blue: 81}
	stripeGrey = props.Color{Red: 250, Green: 250, Blue: 250}
	darkText   = props.Color{Red: 51, Green: 51, Blue: 51}
	mutedText  = props.Color{Red: 119, Green: 119, Blue: 119}
	white      = props.Color{Red: 255, Green: 255, Blue: 255}
	paidGreen  = props.Color{Red: 0, Green: 128, Blue: 0}
	unpaidRed  = props.Color{Red: 200, Green: 0, Blue: 0}
)

// Data is everything a render needs; the renderer never touches the database.
type Data struct {
	Invoice  models.Invoice
	Customer models.Customer
	Items    []models.InvoiceItem
}

// Renderer holds the QR targets printed in the footer.
type Renderer struct {
	FeedbackURL  string
	InstagramURL string
}

func NewRenderer(feedbackURL, instagramURL string) *Renderer {
	return &Renderer{FeedbackURL: feedbackURL, InstagramURL: instagramURL}
}

// Render assembles the invoice document and returns the PDF bytes.
func (r *Renderer) Render(d Data) ([]byte, error) {
	if d.Invoice.ID == 0 && d.Invoice.InvoiceNumber == "" {
		return nil, fmt.Errorf("pdf: empty invoice")
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(15).
		Build()
	m := maroto.New(cfg)

	r.addHeader(m)
	addInvoiceMeta(m, d.Invoice)
	addCustomerBlock(m, d.Customer)
	addItemsTable(m, d.Items)
	addTotals(m, d.Invoice)
	if err := r.addFooter(m); err != nil {
		return nil, err
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generate: %w", err)
	}
	return doc.GetBytes(), nil
}

func (r *Renderer) addHeader(m core.Maroto) {
	m.AddRow(10,
		text.NewCol(6, businessName, props.Text{Size: 18, Style: fontstyle.Bold, Color: &darkText}),
		text.NewCol(6, businessTagline, props.Text{Size: 11, Align: align.Right, Color: &mutedText}),
	)
	m.AddRow(5,
		col.New(6),
		text.NewCol(6, businessCity, props.Text{Size: 9, Align: align.Right, Color: &mutedText}),
	)
	m.AddRow(5,
		col.New(6),
		text.NewCol(6, businessEmail, props.Text{Size: 9, Align: align.Right, Color: &mutedText}),
	)
	m.AddRow(8, line.NewCol(12, props.Line{SizePercent: 100}))
}

func addInvoiceMeta(m core.Maroto, inv models.Invoice) {
	statusText := "UNPAID"
	statusColor := &unpaidRed
	if inv.Status == models.StatusPaid {
		statusText = "PAID"
		statusColor = &paidGreen
	}
	m.AddRow(12,
		text.NewCol(8, "INVOICE", props.Text{Size: 22, Style: fontstyle.Bold, Color: &darkText}),
		text.NewCol(4, statusText, props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right, Color: statusColor}),
	)
	m.AddRow(5, text.NewCol(12, "Invoice #: "+inv.InvoiceNumber, props.Text{Size: 10, Color: &mutedText}))
	m.AddRow(7, text.NewCol(12, "Date: "+inv.CreatedAt.Format("02/01/2006"), props.Text{Size: 10, Color: &mutedText}))
}

func addCustomerBlock(m core.Maroto, c models.Customer) {
	email := ""
	if c.Email != nil {
		email = *c.Email
	}
	rows := []core.Row{
		row.New(6).Add(text.NewCol(12, "Customer Details", props.Text{Size: 11, Style: fontstyle.Bold, Color: &darkText})),
		row.New(5).Add(text.NewCol(12, c.Name, props.Text{Size: 10})),
	}
	if email != "" {
		rows = append(rows, row.New(5).Add(text.NewCol(12, email, props.Text{Size: 10})))
	}
	rows = append(rows,
		row.New(5).Add(text.NewCol(12, c.Phone, props.Text{Size: 10})),
		row.New(6).Add(col.New(12)),
	)
	m.AddRows(rows...)
}

func addItemsTable(m core.Maroto, items []models.InvoiceItem) {
	m.AddRow(8, text.NewCol(12, "Order Summary", props.Text{Size: 12, Style: fontstyle.Bold, Color: &darkText}))

	header := row.New(7).Add(
		text.NewCol(6, "Product", props.Text{Size: 10, Style: fontstyle.Bold, Color: &white}),
		text.NewCol(2, "Qty", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Center, Color: &white}),
		text.NewCol(2, "Price", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right, Color: &white}),
		text.NewCol(2, "Total", props.Text{Size: 10, Style: fontstyle.Bold, Align: align.Right, Color: &white}),
	).WithStyle(&props.Cell{BackgroundColor: &headerGold})
	rows := []core.Row{header}

	for i, item := range items {
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		tr := row.New(6).Add(
			text.NewCol(6, item.Product.Name, props.Text{Size: 9}),
			text.NewCol(2, itoa(item.Quantity), props.Text{Size: 9, Align: align.Center}),
			text.NewCol(2, money(item.Price), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, money(lineTotal), props.Text{Size: 9, Align: align.Right}),
		)
		if i%2 == 0 {
			tr.WithStyle(&props.Cell{BackgroundColor: &stripeGrey})
		}
		rows = append(rows, tr)
	}
	m.AddRows(rows...)
}

func addTotals(m core.Maroto, inv models.Invoice) {
	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Subtotal", props.Text{Size: 10, Top: 4}),
		text.NewCol(2, money(inv.Subtotal), props.Text{Size: 10, Align: align.Right, Top: 4}),
	)
	m.AddRow(5,
		col.New(8),
		text.NewCol(2, "Tax", props.Text{Size: 10}),
		text.NewCol(2, money(inv.Tax), props.Text{Size: 10, Align: align.Right}),
	)
	if inv.Discount.IsPositive() {
		// cap the printed discount so a malformed row can never show a
		// negative grand total
		discount := inv.Discount
		if max := inv.Subtotal.Add(inv.Tax); discount.GreaterThan(max) {
			discount = max
		}
		m.AddRow(5,
			col.New(8),
			text.NewCol(2, "Discount", props.Text{Size: 10}),
			text.NewCol(2, "- "+money(discount), props.Text{Size: 10, Align: align.Right}),
		)
	}
	m.AddRow(8,
		col.New(8),
		text.NewCol(2, "Grand Total", props.Text{Size: 12, Style: fontstyle.Bold, Color: &darkText}),
		text.NewCol(2, money(inv.GrandTotal), props.Text{Size: 12, Style: fontstyle.Bold, Align: align.Right, Color: &darkText}),
	)
}

func (r *Renderer) addFooter(m core.Maroto) error {
	instaQR, err := qrcode.Encode(r.InstagramURL, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("pdf: instagram qr: %w", err)
	}
	feedbackQR, err := qrcode.Encode(r.FeedbackURL, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("pdf: feedback qr: %w", err)
	}

	m.AddRow(12, text.NewCol(12, "Thank you for shopping with Embellish Jewels", props.Text{
		Size: 10, Style: fontstyle.Italic, Align: align.Center, Color: &mutedText, Top: 6,
	}))
	m.AddRow(6, text.NewCol(12, supportLine, props.Text{Size: 8, Align: align.Center, Color: &mutedText}))

	m.AddRow(24,
		col.New(2),
		image.NewFromBytesCol(4, instaQR, extension.Png, props.Rect{Center: true, Percent: 80}),
		image.NewFromBytesCol(4, feedbackQR, extension.Png, props.Rect{Center: true, Percent: 80}),
		col.New(2),
	)
	m.AddRow(5,
		col.New(2),
		text.NewCol(4, "Follow us on Instagram", props.Text{Size: 8, Align: align.Center}),
		text.NewCol(4, "Share your feedback", props.Text{Size: 8, Align: align.Center}),
		col.New(2),
	)

	m.AddRow(6, text.NewCol(12, "This is a computer-generated invoice and does not require any signature.", props.Text{
		Size: 8, Style: fontstyle.Italic, Align: align.Center, Color: &mutedText, Top: 2,
	}))
	m.AddRow(4, text.NewCol(12, "Generated on: "+time.Now().Format("02/01/2006 15:04"), props.Text{
		Size: 8, Align: align.Center, Color: &mutedText,
	}))
	return nil
}

func money(d decimal.Decimal) string {
	return "Rs. " + d.StringFixed(2)
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}
