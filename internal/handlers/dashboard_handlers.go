package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmwangi/soko-api/internal/models"
)

// DashboardStats are the KPI counters shown on the account dashboard.
type DashboardStats struct {
	CartItems       int     `json:"cartItems"`
	WishlistItems   int     `json:"wishlistItems"`
	TotalOrders     int     `json:"totalOrders"`
	CompletedOrders int     `json:"completedOrders"`
	ActiveOrders    int     `json:"activeOrders"`
	TotalSpent      float64 `json:"totalSpent"`
}

// recentOrder is the trimmed header shape for the dashboard order list.
type recentOrder struct {
	ID          int64              `json:"id"`
	OrderNumber string             `json:"orderNumber"`
	Status      models.OrderStatus `json:"status"`
	TotalAmount float64            `json:"totalAmount"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// GetDashboard aggregates the caller's recent orders, cart/wishlist counts,
// and order statistics into a single response.
func (h *Handlers) GetDashboard(c *gin.Context) {
	userID := currentUserID(c)

	rows, err := h.DB.Query(`
		SELECT id, order_number, status, total_amount, created_at
		FROM orders
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT 5`, userID)
	if err != nil {
		h.Logger.Error("dashboard: recent orders query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching dashboard data"})
		return
	}
	defer rows.Close()

	recent := []recentOrder{}
	for rows.Next() {
		var o recentOrder
		if err := rows.Scan(&o.ID, &o.OrderNumber, &o.Status, &o.TotalAmount, &o.CreatedAt); err != nil {
			h.Logger.Error("dashboard: recent order scan failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching dashboard data"})
			return
		}
		recent = append(recent, o)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("dashboard: rows error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching dashboard data"})
		return
	}

	stats := DashboardStats{}

	if err := h.DB.QueryRow("SELECT COUNT(*) FROM cart_items WHERE user_id = ?", userID).Scan(&stats.CartItems); err != nil {
		h.Logger.Error("dashboard: cart count failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching dashboard data"})
		return
	}

	if err := h.DB.QueryRow("SELECT COUNT(*) FROM wishlist WHERE user_id = ?", userID).Scan(&stats.WishlistItems); err != nil {
		h.Logger.Error("dashboard: wishlist count failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching dashboard data"})
		return
	}

	// COALESCE keeps the sum at 0 instead of NULL for users with no orders.
	var totalSpent sql.NullFloat64
	err = h.DB.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'delivered' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status IN ('pending', 'confirmed', 'processing', 'shipped') THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN status = 'delivered' THEN total_amount ELSE 0 END), 0)
		FROM orders
		WHERE user_id = ?`, userID,
	).Scan(&stats.TotalOrders, &stats.CompletedOrders, &stats.ActiveOrders, &totalSpent)
	if err != nil {
		h.Logger.Error("dashboard: order stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching dashboard data"})
		return
	}
	stats.TotalSpent = totalSpent.Float64

	c.JSON(http.StatusOK, gin.H{
		"recentOrders": recent,
		"stats":        stats,
	})
}
