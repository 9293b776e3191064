package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/namanabbad02/invoice-app/internal/models"
)

func TestProductCreateAndList(t *testing.T) {
	conn := openTestDB(t)
	h := &ProductHandler{DB: conn, Log: quietLogger()}

	body := `{"productId":"EJ-RING-001","category":"Rings","name":"Gold Ring","price":"1500.00","tax":"3.00"}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var products []models.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &products); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(products) != 1 || products[0].Code != "EJ-RING-001" {
		t.Fatalf("products = %+v", products)
	}
	if got := products[0].Price.StringFixed(2); got != "1500.00" {
		t.Errorf("price = %s, want 1500.00", got)
	}
}

func TestProductCreateDuplicateCode(t *testing.T) {
	conn := openTestDB(t)
	h := &ProductHandler{DB: conn, Log: quietLogger()}
	mustCreateProduct(t, conn, "EJ-DUP", "10.00", "0.00")

	body := `{"productId":"EJ-DUP","category":"Rings","name":"Another","price":"20.00","tax":"0.00"}`
	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "EJ-DUP") {
		t.Errorf("body should name the conflicting code: %s", rec.Body)
	}
}

func TestProductCreateValidation(t *testing.T) {
	conn := openTestDB(t)
	h := &ProductHandler{DB: conn, Log: quietLogger()}

	cases := []struct {
		name string
		body string
	}{
		{"missing fields", `{"productId":"EJ-X"}`},
		{"negative price", `{"productId":"EJ-X","category":"Rings","name":"X","price":"-1.00","tax":"0.00"}`},
		{"tax over 100", `{"productId":"EJ-X","category":"Rings","name":"X","price":"1.00","tax":"101.00"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(tc.body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestProductUpdate(t *testing.T) {
	conn := openTestDB(t)
	h := &ProductHandler{DB: conn, Log: quietLogger()}
	p := mustCreateProduct(t, conn, "EJ-UPD", "10.00", "0.00")

	body := `{"productId":"EJ-UPD","category":"Chains","name":"Renamed","price":"25.00","tax":"5.00"}`
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/api/products/%d", p.ID), strings.NewReader(body))
	req.SetPathValue("id", fmt.Sprint(p.ID))
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	var updated models.Product
	if err := conn.First(&updated, p.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if updated.Name != "Renamed" || updated.Category != "Chains" {
		t.Errorf("updated = %+v", updated)
	}
}

func TestProductUpdateNotFound(t *testing.T) {
	conn := openTestDB(t)
	h := &ProductHandler{DB: conn, Log: quietLogger()}

	body := `{"productId":"EJ-NONE","category":"Rings","name":"X","price":"1.00","tax":"0.00"}`
	req := httptest.NewRequest(http.MethodPut, "/api/products/999", strings.NewReader(body))
	req.SetPathValue("id", "999")
	rec := httptest.NewRecorder()
	h.Update(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestProductDelete(t *testing.T) {
	conn := openTestDB(t)
	h := &ProductHandler{DB: conn, Log: quietLogger()}
	p := mustCreateProduct(t, conn, "EJ-DEL", "10.00", "0.00")

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/products/%d", p.ID), nil)
	req.SetPathValue("id", fmt.Sprint(p.ID))
	rec := httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/products/%d", p.ID), nil)
	req.SetPathValue("id", fmt.Sprint(p.ID))
	rec = httptest.NewRecorder()
	h.Delete(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestCategories(t *testing.T) {
	conn := openTestDB(t)
	h := &ProductHandler{DB: conn, Log: quietLogger()}
	mustCreateProduct(t, conn, "EJ-C1", "10.00", "0.00")
	mustCreateProduct(t, conn, "EJ-C2", "10.00", "0.00")

	rec := httptest.NewRecorder()
	h.Categories(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var categories []string
	if err := json.Unmarshal(rec.Body.Bytes(), &categories); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(categories) != 1 || categories[0] != "Rings" {
		t.Errorf("categories = %v, want deduplicated [Rings]", categories)
	}
}
