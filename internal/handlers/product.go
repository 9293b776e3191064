package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/namanabbad02/invoice-app/internal/httpx"
	"github.com/namanabbad02/invoice-app/internal/models"
)

// ProductHandler serves the catalog. Reads are public so the point-of-sale
// form can load products without a session; writes require a token.
type ProductHandler struct {
	DB  *gorm.DB
	Log *logrus.Logger
}

type productRequest struct {
	ProductID string          `json:"productId" validate:"required,max=40"`
	Category  string          `json:"category" validate:"required"`
	Name      string          `json:"name" validate:"required"`
	Price     decimal.Decimal `json:"price"`
	Tax       decimal.Decimal `json:"tax"`
}

func (p productRequest) check() (string, bool) {
	if p.Price.IsNegative() {
		return "Price must not be negative.", false
	}
	if p.Tax.IsNegative() || p.Tax.GreaterThan(decimal.NewFromInt(100)) {
		return "Tax must be a percentage between 0 and 100.", false
	}
	return "", true
}

// List returns the whole catalog ordered by category then name.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	var products []models.Product
	if err := h.DB.WithContext(r.Context()).Order("category, name").Find(&products).Error; err != nil {
		h.Log.WithError(err).Error("products: list")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

// Categories returns the distinct category names in use.
func (h *ProductHandler) Categories(w http.ResponseWriter, r *http.Request) {
	var categories []string
	err := h.DB.WithContext(r.Context()).Model(&models.Product{}).
		Distinct().Order("category").Pluck("category", &categories).Error
	if err != nil {
		h.Log.WithError(err).Error("products: categories")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, categories)
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "All fields are required.", nil)
		return
	}
	if msg, ok := req.check(); !ok {
		httpx.JSONError(w, http.StatusBadRequest, msg, nil)
		return
	}

	product := models.Product{
		Code:     req.ProductID,
		Category: req.Category,
		Name:     req.Name,
		Price:    req.Price,
		Tax:      req.Tax,
	}
	if err := h.DB.WithContext(r.Context()).Create(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.JSONError(w, http.StatusBadRequest,
				fmt.Sprintf("Product ID %q already exists.", req.ProductID), nil)
			return
		}
		h.Log.WithError(err).Error("products: create")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if err := validate.Struct(req); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "All fields are required.", nil)
		return
	}
	if msg, ok := req.check(); !ok {
		httpx.JSONError(w, http.StatusBadRequest, msg, nil)
		return
	}

	var product models.Product
	err := h.DB.WithContext(r.Context()).First(&product, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "Product not found", nil)
		return
	}
	if err != nil {
		h.Log.WithError(err).Error("products: load for update")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}

	product.Code = req.ProductID
	product.Category = req.Category
	product.Name = req.Name
	product.Price = req.Price
	product.Tax = req.Tax
	if err := h.DB.WithContext(r.Context()).Save(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			httpx.JSONError(w, http.StatusBadRequest,
				fmt.Sprintf("Product ID %q already exists.", req.ProductID), nil)
			return
		}
		h.Log.WithError(err).Error("products: update")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return
	}
	res := h.DB.WithContext(r.Context()).Delete(&models.Product{}, id)
	if res.Error != nil {
		h.Log.WithError(res.Error).Error("products: delete")
		httpx.JSONError(w, http.StatusInternalServerError, "server_error", nil)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "Product not found", nil)
		return
	}
	httpx.NoContent(w)
}

// pathID parses the {id} segment of the matched route.
func pathID(r *http.Request) (uint, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
