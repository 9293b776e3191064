// Package server wires handlers, middleware and routes into one http.Handler.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/namanabbad02/invoice-app/internal/auth"
	"github.com/namanabbad02/invoice-app/internal/handlers"
	"github.com/namanabbad02/invoice-app/internal/httpx"
	"github.com/namanabbad02/invoice-app/internal/models"
	"github.com/namanabbad02/invoice-app/internal/pdf"
	"github.com/namanabbad02/invoice-app/internal/services"
)

// Deps carries everything the router needs. Mailer, Uploader and Messenger
// may be nil when the corresponding channel is not configured.
type Deps struct {
	DB        *gorm.DB
	Renderer  *pdf.Renderer
	Mailer    handlers.Mailer
	Uploader  handlers.Uploader
	Messenger handlers.Messenger
	TZOffset  string
	Log       *logrus.Logger
}

// New builds the full route table. Registration, login, catalog reads and
// invoice creation are public so the storefront terminal works without a
// session; everything else needs a bearer token.
func New(d Deps) http.Handler {
	auth.SetUserVerifier(func(ctx context.Context, uid uint) bool {
		var n int64
		if err := d.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Count(&n).Error; err != nil {
			return false
		}
		return n > 0
	})

	authH := &handlers.AuthHandler{DB: d.DB, Log: d.Log}
	productH := &handlers.ProductHandler{DB: d.DB, Log: d.Log}
	invoiceH := &handlers.InvoiceHandler{
		DB:        d.DB,
		Svc:       services.NewInvoiceService(d.DB),
		Renderer:  d.Renderer,
		Mailer:    d.Mailer,
		Uploader:  d.Uploader,
		Messenger: d.Messenger,
		Log:       d.Log,
	}
	dashH := &handlers.DashboardHandler{
		Svc: services.NewDashboardService(d.DB, d.TZOffset),
		Log: d.Log,
	}

	mux := http.NewServeMux()

	health := func(w http.ResponseWriter, r *http.Request) {
		if err := d.DB.WithContext(r.Context()).Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "database_unreachable", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
	mux.HandleFunc("GET /health", health)
	mux.HandleFunc("GET /healthz", health)

	mux.HandleFunc("POST /api/users/register", authH.Register)
	mux.HandleFunc("POST /api/users/login", authH.Login)

	mux.HandleFunc("GET /api/products", productH.List)
	mux.HandleFunc("GET /api/categories", productH.Categories)
	mux.Handle("POST /api/products", auth.Protect(http.HandlerFunc(productH.Create)))
	mux.Handle("PUT /api/products/{id}", auth.Protect(http.HandlerFunc(productH.Update)))
	mux.Handle("DELETE /api/products/{id}", auth.Protect(http.HandlerFunc(productH.Delete)))

	mux.HandleFunc("POST /api/invoices", invoiceH.Create)
	mux.Handle("GET /api/invoices", auth.Protect(http.HandlerFunc(invoiceH.List)))
	mux.Handle("GET /api/invoices/{id}", auth.Protect(http.HandlerFunc(invoiceH.Get)))
	mux.Handle("GET /api/invoices/{id}/pdf", auth.Protect(http.HandlerFunc(invoiceH.PDF)))
	mux.Handle("POST /api/invoices/{id}/resend", auth.Protect(http.HandlerFunc(invoiceH.ResendEmail)))
	mux.Handle("POST /api/invoices/{id}/resend-email", auth.Protect(http.HandlerFunc(invoiceH.ResendEmail)))
	mux.Handle("POST /api/invoices/{id}/upload", auth.Protect(http.HandlerFunc(invoiceH.Upload)))
	mux.Handle("POST /api/invoices/{id}/send-whatsapp", auth.Protect(http.HandlerFunc(invoiceH.SendWhatsApp)))

	mux.Handle("GET /api/dashboard/kpis", auth.Protect(http.HandlerFunc(dashH.KPIs)))
	mux.Handle("GET /api/dashboard/top-products", auth.Protect(http.HandlerFunc(dashH.TopProducts)))
	mux.Handle("GET /api/dashboard/category-sales", auth.Protect(http.HandlerFunc(dashH.CategorySales)))
	mux.Handle("GET /api/dashboard/recent-invoices", auth.Protect(http.HandlerFunc(dashH.RecentInvoices)))
	mux.Handle("GET /api/dashboard/revenue-trend", auth.Protect(http.HandlerFunc(dashH.RevenueTrend)))

	return withRecover(withLogging(mux, d.Log), d.Log)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withLogging(next http.Handler, log *logrus.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   rec.status,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

func withRecover(next http.Handler, log *logrus.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.WithField("panic", rec).Error("handler panic")
				httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
