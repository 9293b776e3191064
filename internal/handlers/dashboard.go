package handlers

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/namanabbad02/invoice-app/internal/httpx"
	"github.com/namanabbad02/invoice-app/internal/services"
)

// DashboardHandler is a thin wrapper over the aggregation service.
type DashboardHandler struct {
	Svc *services.DashboardService
	Log *logrus.Logger
}

func (h *DashboardHandler) KPIs(w http.ResponseWriter, r *http.Request) {
	kpis, err := h.Svc.KPIs(r.Context(), time.Now())
	if err != nil {
		h.Log.WithError(err).Error("dashboard: kpis")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, kpis)
}

func (h *DashboardHandler) TopProducts(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.TopProducts(r.Context(), r.URL.Query().Get("by"))
	if err != nil {
		h.Log.WithError(err).Error("dashboard: top products")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *DashboardHandler) CategorySales(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Svc.CategorySales(r.Context())
	if err != nil {
		h.Log.WithError(err).Error("dashboard: category sales")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, rows)
}

func (h *DashboardHandler) RecentInvoices(w http.ResponseWriter, r *http.Request) {
	invs, err := h.Svc.RecentInvoices(r.Context(), 5)
	if err != nil {
		h.Log.WithError(err).Error("dashboard: recent invoices")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, invs)
}

func (h *DashboardHandler) RevenueTrend(w http.ResponseWriter, r *http.Request) {
	points, err := h.Svc.RevenueTrend(r.Context(), r.URL.Query().Get("period"), time.Now())
	if err != nil {
		h.Log.WithError(err).Error("dashboard: revenue trend")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, points)
}
