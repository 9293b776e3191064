package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/namanabbad02/invoice-app/internal/drive"
	"github.com/namanabbad02/invoice-app/internal/httpx"
	"github.com/namanabbad02/invoice-app/internal/models"
	"github.com/namanabbad02/invoice-app/internal/pdf"
	"github.com/namanabbad02/invoice-app/internal/services"
)

// Delivery ports. The concrete adapters (SMTP, Google Drive, Twilio) satisfy
// these; tests plug in stubs. A nil port means the channel is not configured.
type (
	Mailer interface {
		SendInvoice(ctx context.Context, to, invoiceNumber string, pdf []byte) error
	}
	Uploader interface {
		UploadInvoicePDF(ctx context.Context, name string, pdf []byte) (string, error)
	}
	Messenger interface {
		SendInvoiceLink(ctx context.Context, phone, invoiceNumber, pdfURL string) error
	}
)

var phonePattern = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

const phoneFormatHint = "Phone number must be in E.164 format (e.g., +919876543210)."

// InvoiceHandler drives invoice creation and the delivery channels.
type InvoiceHandler struct {
	DB        *gorm.DB
	Svc       *services.InvoiceService
	Renderer  *pdf.Renderer
	Mailer    Mailer
	Uploader  Uploader
	Messenger Messenger
	Log       *logrus.Logger
}

type createInvoiceRequest struct {
	Customer struct {
		Name  string  `json:"name" validate:"required"`
		Email *string `json:"email" validate:"omitempty,email"`
		Phone string  `json:"phone" validate:"required"`
	} `json:"customer"`
	Items []struct {
		ID       uint `json:"id" validate:"required"`
		Quantity int  `json:"quantity" validate:"required,gt=0"`
	} `json:"items" validate:"required,min=1,dive"`
	Discount decimal.Decimal `json:"discount"`
}

// Create runs the invoice transaction and then, best-effort, emails the PDF.
// A committed invoice with a failed email leg returns 202 rather than 201;
// the invoice itself is never rolled back for a delivery failure.
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if !phonePattern.MatchString(req.Customer.Phone) {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_phone_format", phoneFormatHint)
		return
	}

	in := services.CreateInvoiceInput{
		Customer: services.CustomerInput{
			Name:  req.Customer.Name,
			Email: req.Customer.Email,
			Phone: req.Customer.Phone,
		},
		Discount: req.Discount,
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, services.ItemInput{ProductID: it.ID, Quantity: it.Quantity})
	}

	inv, err := h.Svc.Create(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrProductNotFound):
			httpx.JSONError(w, http.StatusNotFound, "product_not_found", err.Error())
		case errors.Is(err, services.ErrDiscountExceedsTotal):
			httpx.JSONError(w, http.StatusBadRequest, "invalid_discount", err.Error())
		case errors.Is(err, services.ErrPhoneConflict):
			httpx.JSONError(w, http.StatusBadRequest, "phone_conflict", err.Error())
		default:
			h.Log.WithError(err).Error("invoices: create")
			httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		}
		return
	}

	// reload with products attached: the response and the email PDF both
	// want full line items, not bare FK rows
	full, err := h.Svc.Load(r.Context(), inv.ID)
	if err != nil {
		h.Log.WithError(err).WithField("invoice", inv.InvoiceNumber).
			Warn("invoices: reload after create failed")
		full = inv
	}

	status := http.StatusCreated
	if emailErr := h.emailInvoice(r.Context(), full); emailErr != nil {
		h.Log.WithError(emailErr).WithField("invoice", full.InvoiceNumber).
			Warn("invoices: created but email failed")
		status = http.StatusAccepted
	}
	httpx.JSON(w, status, full)
}

// emailInvoice renders and mails the PDF. Returns nil when the customer has
// no email address or no mailer is configured, with a log line either way.
func (h *InvoiceHandler) emailInvoice(ctx context.Context, inv *models.Invoice) error {
	if inv.Customer.Email == nil || *inv.Customer.Email == "" {
		h.Log.WithField("invoice", inv.InvoiceNumber).Info("invoices: no customer email, skipping send")
		return nil
	}
	if h.Mailer == nil {
		h.Log.WithField("invoice", inv.InvoiceNumber).Info("invoices: mailer not configured, skipping send")
		return nil
	}
	bytes, err := h.Renderer.Render(pdf.Data{Invoice: *inv, Customer: inv.Customer, Items: inv.Items})
	if err != nil {
		return err
	}
	return h.Mailer.SendInvoice(ctx, *inv.Customer.Email, inv.InvoiceNumber, bytes)
}

type invoicePage struct {
	Items  []models.Invoice `json:"items"`
	Total  int64            `json:"total"`
	Limit  int              `json:"limit"`
	Offset int              `json:"offset"`
}

// List returns invoices newest-first, paginated by limit/offset or page.
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	if limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	offset := queryInt(r, "offset", 0)
	if page := queryInt(r, "page", 0); page > 0 {
		offset = (page - 1) * limit
	}
	if offset < 0 {
		offset = 0
	}

	var total int64
	if err := h.DB.WithContext(r.Context()).Model(&models.Invoice{}).Count(&total).Error; err != nil {
		h.Log.WithError(err).Error("invoices: count")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	var invs []models.Invoice
	err := h.DB.WithContext(r.Context()).
		Preload("Customer").
		Preload("Items.Product").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&invs).Error
	if err != nil {
		h.Log.WithError(err).Error("invoices: list")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, invoicePage{Items: invs, Total: total, Limit: limit, Offset: offset})
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.loadByPath(w, r)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, inv)
}

// PDF streams the rendered invoice as a download.
func (h *InvoiceHandler) PDF(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.loadByPath(w, r)
	if !ok {
		return
	}
	bytes, err := h.Renderer.Render(pdf.Data{Invoice: *inv, Customer: inv.Customer, Items: inv.Items})
	if err != nil {
		h.Log.WithError(err).WithField("invoice", inv.InvoiceNumber).Error("invoices: render pdf")
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=invoice-%s.pdf", inv.InvoiceNumber))
	w.Header().Set("Content-Length", strconv.Itoa(len(bytes)))
	_, _ = w.Write(bytes)
}

// ResendEmail re-sends the invoice PDF to the stored customer email.
func (h *InvoiceHandler) ResendEmail(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.loadByPath(w, r)
	if !ok {
		return
	}
	if inv.Customer.Email == nil || *inv.Customer.Email == "" {
		httpx.JSONError(w, http.StatusBadRequest, "no_customer_email",
			"This customer has no email address on file.")
		return
	}
	if h.Mailer == nil {
		httpx.JSONError(w, http.StatusServiceUnavailable, "email_not_configured", nil)
		return
	}
	bytes, err := h.Renderer.Render(pdf.Data{Invoice: *inv, Customer: inv.Customer, Items: inv.Items})
	if err != nil {
		h.Log.WithError(err).WithField("invoice", inv.InvoiceNumber).Error("invoices: render pdf")
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	if err := h.Mailer.SendInvoice(r.Context(), *inv.Customer.Email, inv.InvoiceNumber, bytes); err != nil {
		h.Log.WithError(err).WithField("invoice", inv.InvoiceNumber).Error("invoices: resend email")
		httpx.JSONError(w, http.StatusInternalServerError, "email_send_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Invoice email sent."})
}

// Upload renders the PDF, pushes it to cloud storage, stores the direct
// download link on the invoice and returns it.
func (h *InvoiceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.loadByPath(w, r)
	if !ok {
		return
	}
	if h.Uploader == nil {
		httpx.JSONError(w, http.StatusServiceUnavailable, "drive_not_configured", nil)
		return
	}
	bytes, err := h.Renderer.Render(pdf.Data{Invoice: *inv, Customer: inv.Customer, Items: inv.Items})
	if err != nil {
		h.Log.WithError(err).WithField("invoice", inv.InvoiceNumber).Error("invoices: render pdf")
		httpx.JSONError(w, http.StatusInternalServerError, "pdf_generation_failed", nil)
		return
	}
	link, err := h.Uploader.UploadInvoicePDF(r.Context(),
		fmt.Sprintf("invoice-%s.pdf", inv.InvoiceNumber), bytes)
	if err != nil {
		h.Log.WithError(err).WithField("invoice", inv.InvoiceNumber).Error("invoices: upload pdf")
		httpx.JSONError(w, http.StatusInternalServerError, "upload_failed", nil)
		return
	}
	pdfURL := drive.DirectDownloadLink(link)
	err = h.DB.WithContext(r.Context()).Model(&models.Invoice{}).
		Where("id = ?", inv.ID).
		Update("pdf_url", pdfURL).Error
	if err != nil {
		h.Log.WithError(err).WithField("invoice", inv.InvoiceNumber).Error("invoices: save pdf url")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{
		"message": "Invoice uploaded.",
		"pdfUrl":  pdfURL,
	})
}

// SendWhatsApp messages the customer the stored PDF link. The invoice must
// have been uploaded first.
func (h *InvoiceHandler) SendWhatsApp(w http.ResponseWriter, r *http.Request) {
	inv, ok := h.loadByPath(w, r)
	if !ok {
		return
	}
	if inv.PDFURL == "" {
		httpx.JSONError(w, http.StatusBadRequest, "no_pdf_url",
			"Upload the invoice PDF before sending it over WhatsApp.")
		return
	}
	if h.Messenger == nil {
		httpx.JSONError(w, http.StatusServiceUnavailable, "whatsapp_not_configured", nil)
		return
	}
	if err := h.Messenger.SendInvoiceLink(r.Context(), inv.Customer.Phone, inv.InvoiceNumber, inv.PDFURL); err != nil {
		h.Log.WithError(err).WithField("invoice", inv.InvoiceNumber).Error("invoices: whatsapp send")
		httpx.JSONError(w, http.StatusInternalServerError, "whatsapp_send_failed", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "Invoice sent over WhatsApp."})
}

// loadByPath fetches the invoice addressed by {id}, writing the error
// response itself when the id is bad or unknown.
func (h *InvoiceHandler) loadByPath(w http.ResponseWriter, r *http.Request) (*models.Invoice, bool) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return nil, false
	}
	inv, err := h.Svc.Load(r.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "Invoice not found", nil)
		return nil, false
	}
	if err != nil {
		h.Log.WithError(err).Error("invoices: load")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return nil, false
	}
	return inv, true
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
