package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap/zaptest"

	"github.com/dmwangi/soko-api/internal/models"
)

func setupCartTest(t *testing.T) (sqlmock.Sqlmock, *gin.Engine) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	h := &Handlers{
		DB:        db,
		Logger:    zaptest.NewLogger(t),
		JWTSecret: []byte("test-secret"),
		JWTExpiry: time.Hour,
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(asUser(42, models.RoleBuyer))
	router.POST("/cart", h.AddToCart)
	router.GET("/cart", h.GetCart)
	router.PUT("/cart/:itemId", h.UpdateCartItem)
	router.DELETE("/cart/:itemId", h.RemoveFromCart)

	return mock, router
}

func productLookupRows(price float64, discount interface{}, stock int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "price", "discount_price", "stock_quantity"}).
		AddRow(7, "Vintage Lamp", price, discount, stock)
}

func TestAddToCart_NewItem_SnapshotsDiscountPrice(t *testing.T) {
	mock, router := setupCartTest(t)

	mock.ExpectQuery("SELECT id, name, price, discount_price, stock_quantity FROM products").
		WithArgs(int64(7)).
		WillReturnRows(productLookupRows(100, 80.0, 5))
	mock.ExpectQuery("SELECT id, quantity FROM cart_items").
		WithArgs(int64(42), int64(7)).
		WillReturnError(sql.ErrNoRows)
	// The discounted price, not the list price, gets stored on the line.
	mock.ExpectExec("INSERT INTO cart_items").
		WithArgs(int64(42), int64(7), 2, 80.0).
		WillReturnResult(sqlmock.NewResult(1, 1))

	w := postJSON(router, "/cart", map[string]interface{}{"productId": 7, "quantity": 2})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestAddToCart_ExistingItem_MergesQuantity(t *testing.T) {
	mock, router := setupCartTest(t)

	mock.ExpectQuery("SELECT id, name, price, discount_price, stock_quantity FROM products").
		WithArgs(int64(7)).
		WillReturnRows(productLookupRows(100, nil, 10))
	mock.ExpectQuery("SELECT id, quantity FROM cart_items").
		WithArgs(int64(42), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity"}).AddRow(3, 2))
	mock.ExpectExec("UPDATE cart_items SET quantity").
		WithArgs(5, 100.0, sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := postJSON(router, "/cart", map[string]interface{}{"productId": 7, "quantity": 3})

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestAddToCart_MergedQuantityExceedsStock(t *testing.T) {
	mock, router := setupCartTest(t)

	mock.ExpectQuery("SELECT id, name, price, discount_price, stock_quantity FROM products").
		WithArgs(int64(7)).
		WillReturnRows(productLookupRows(100, nil, 4))
	mock.ExpectQuery("SELECT id, quantity FROM cart_items").
		WithArgs(int64(42), int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "quantity"}).AddRow(3, 3))

	// 3 already in the cart plus 2 more exceeds a stock of 4.
	w := postJSON(router, "/cart", map[string]interface{}{"productId": 7, "quantity": 2})

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Unexpected database calls were made: %v", err)
	}
}

func TestAddToCart_InactiveProduct(t *testing.T) {
	mock, router := setupCartTest(t)

	mock.ExpectQuery("SELECT id, name, price, discount_price, stock_quantity FROM products").
		WithArgs(int64(7)).
		WillReturnError(sql.ErrNoRows)

	w := postJSON(router, "/cart", map[string]interface{}{"productId": 7})

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestGetCart_SummaryIncludesTax(t *testing.T) {
	mock, router := setupCartTest(t)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "product_id", "quantity", "price", "created_at", "updated_at",
		"name", "image_url", "stock_quantity", "current_price", "item_total",
	}).
		AddRow(1, 42, 7, 2, 80.0, now, now, "Vintage Lamp", nil, 5, 80.0, 160.0).
		AddRow(2, 42, 9, 1, 40.0, now, now, "Desk Globe", "globe.jpg", 3, 40.0, 40.0)

	mock.ExpectQuery("SELECT ci.id, ci.user_id").
		WithArgs(int64(42)).
		WillReturnRows(rows)

	req := httptest.NewRequest("GET", "/cart", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp struct {
		Items   []json.RawMessage `json:"items"`
		Summary struct {
			TotalItems int     `json:"totalItems"`
			Subtotal   float64 `json:"subtotal"`
			TaxAmount  float64 `json:"taxAmount"`
			Total      float64 `json:"total"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Items) != 2 {
		t.Errorf("Expected 2 cart lines, got %d", len(resp.Items))
	}
	if resp.Summary.TotalItems != 3 {
		t.Errorf("Expected 3 total items, got %d", resp.Summary.TotalItems)
	}
	if resp.Summary.Subtotal != 200 {
		t.Errorf("Expected subtotal 200, got %v", resp.Summary.Subtotal)
	}
	if resp.Summary.TaxAmount != 20 {
		t.Errorf("Expected tax 20, got %v", resp.Summary.TaxAmount)
	}
	if resp.Summary.Total != 220 {
		t.Errorf("Expected total 220, got %v", resp.Summary.Total)
	}
}

func TestUpdateCartItem_ResnapshotsPrice(t *testing.T) {
	mock, router := setupCartTest(t)

	mock.ExpectQuery("SELECT p.stock_quantity, p.price, p.discount_price").
		WithArgs("3", int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"stock_quantity", "price", "discount_price"}).
			AddRow(10, 100.0, 75.0))
	mock.ExpectExec("UPDATE cart_items SET quantity").
		WithArgs(4, 75.0, sqlmock.AnyArg(), "3").
		WillReturnResult(sqlmock.NewResult(0, 1))

	body, _ := json.Marshal(map[string]int{"quantity": 4})
	req := httptest.NewRequest("PUT", "/cart/3", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestRemoveFromCart_MissingItem(t *testing.T) {
	mock, router := setupCartTest(t)

	mock.ExpectExec("DELETE FROM cart_items").
		WithArgs("99", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	req := httptest.NewRequest("DELETE", "/cart/99", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}
