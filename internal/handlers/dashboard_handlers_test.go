package handlers

import (
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

func setupDashboardTest(t *testing.T) (sqlmock.Sqlmock, *gin.Engine) {
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
	router.GET("/dashboard", h.GetDashboard)

	return mock, router
}

func TestGetDashboard_Aggregates(t *testing.T) {
	mock, router := setupDashboardTest(t)

	now := time.Now()
	mock.ExpectQuery("SELECT id, order_number, status, total_amount, created_at").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_number", "status", "total_amount", "created_at"}).
			AddRow(12, "ORD-2-bbbb", "pending", 50.0, now).
			AddRow(11, "ORD-1-aaaa", "delivered", 100.0, now.Add(-time.Hour)))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM cart_items`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM wishlist`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT COUNT\(\*\),`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "completed", "active", "spent"}).
			AddRow(2, 1, 1, 100.0))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp struct {
		RecentOrders []recentOrder  `json:"recentOrders"`
		Stats        DashboardStats `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.RecentOrders) != 2 {
		t.Errorf("Expected 2 recent orders, got %d", len(resp.RecentOrders))
	}
	if resp.Stats.CartItems != 3 || resp.Stats.WishlistItems != 2 {
		t.Errorf("Unexpected cart/wishlist counts: %+v", resp.Stats)
	}
	if resp.Stats.TotalOrders != 2 || resp.Stats.CompletedOrders != 1 || resp.Stats.ActiveOrders != 1 {
		t.Errorf("Unexpected order stats: %+v", resp.Stats)
	}
	if resp.Stats.TotalSpent != 100 {
		t.Errorf("Expected total spent 100, got %v", resp.Stats.TotalSpent)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("Database expectations were not met: %v", err)
	}
}

func TestGetDashboard_EmptyAccount(t *testing.T) {
	mock, router := setupDashboardTest(t)

	mock.ExpectQuery("SELECT id, order_number, status, total_amount, created_at").
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_number", "status", "total_amount", "created_at"}))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM cart_items`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM wishlist`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT COUNT\(\*\),`).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows([]string{"total", "completed", "active", "spent"}).
			AddRow(0, 0, 0, 0.0))

	req := httptest.NewRequest("GET", "/dashboard", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}

	var resp struct {
		RecentOrders []recentOrder  `json:"recentOrders"`
		Stats        DashboardStats `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.RecentOrders == nil {
		t.Error("Expected an empty list, not null")
	}
	if resp.Stats != (DashboardStats{}) {
		t.Errorf("Expected zeroed stats, got %+v", resp.Stats)
	}
}
