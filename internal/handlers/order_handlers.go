package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmwangi/soko-api/internal/database"
	"github.com/dmwangi/soko-api/internal/models"
)

// OrderItemInput is one submitted line item. Name and image are optional
// snapshots; the stored total is always quantity × price.
type OrderItemInput struct {
	ProductID    int64   `json:"product_id" binding:"required"`
	Quantity     int     `json:"quantity" binding:"required,gte=1"`
	Price        float64 `json:"price" binding:"gte=0"`
	ProductName  *string `json:"product_name"`
	ProductImage *string `json:"product_image"`
}

// CreateOrderInput is the JSON body for POST /api/orders.
type CreateOrderInput struct {
	Items           []OrderItemInput       `json:"items" binding:"required,min=1,dive"`
	ShippingAddress models.ShippingAddress `json:"shipping_address" binding:"required"`
	PaymentMethod   *string                `json:"payment_method" binding:"omitempty,oneof=cod card upi netbanking"`
	TotalAmount     float64                `json:"total_amount" binding:"gte=0"`
}

// newOrderNumber builds a human-traceable unique order identifier:
// a millisecond timestamp plus a short random suffix.
func newOrderNumber() string {
	return fmt.Sprintf("ORD-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// CreateOrder is the one multi-statement write path in the API. The header
// and all line items are written inside a single transaction: either every
// row commits or none do. Validation failures never open a transaction, and
// any mid-flight error rolls the whole order back.
func (h *Handlers) CreateOrder(c *gin.Context) {
	userID := currentUserID(c)

	var input CreateOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No items provided or invalid body: " + err.Error()})
		return
	}

	addressJSON, err := json.Marshal(input.ShippingAddress)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shipping address"})
		return
	}

	orderNumber := newOrderNumber()
	now := time.Now()

	var orderID int64
	err = database.WithTx(c.Request.Context(), h.DB, func(tx *sql.Tx) error {
		result, err := tx.Exec(`
			INSERT INTO orders (user_id, order_number, status, total_amount, payment_method, shipping_address, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			userID, orderNumber, models.OrderPending, input.TotalAmount,
			input.PaymentMethod, string(addressJSON), now, now)
		if err != nil {
			return fmt.Errorf("insert order header: %w", err)
		}

		orderID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("order header id: %w", err)
		}

		for _, item := range input.Items {
			_, err := tx.Exec(`
				INSERT INTO order_items (order_id, product_id, product_name, product_image, quantity, price, total, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				orderID, item.ProductID, item.ProductName, item.ProductImage,
				item.Quantity, item.Price, float64(item.Quantity)*item.Price, now)
			if err != nil {
				return fmt.Errorf("insert order item (product %d): %w", item.ProductID, err)
			}
		}

		// Stock is adjusted at fulfilment, not at order creation.
		return nil
	})
	if err != nil {
		h.Logger.Error("createOrder: transaction failed",
			zap.Int64("userID", userID),
			zap.String("orderNumber", orderNumber),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating order"})
		return
	}

	// The order is only readable here because the transaction committed.
	order, err := h.fetchOrder(orderID, userID)
	if err != nil {
		h.Logger.Error("createOrder: readback failed", zap.Int64("orderID", orderID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating order"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Order created",
		"order":   order,
	})
}

// fetchOrder reads a single order header owned by userID.
func (h *Handlers) fetchOrder(orderID, userID int64) (*models.Order, error) {
	var o models.Order
	err := h.DB.QueryRow(`
		SELECT id, user_id, order_number, status, total_amount, payment_method, shipping_address, created_at, updated_at
		FROM orders WHERE id = ? AND user_id = ? LIMIT 1`, orderID, userID,
	).Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.Status, &o.TotalAmount,
		&o.PaymentMethod, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// GetMyOrders lists the caller's orders, newest first.
func (h *Handlers) GetMyOrders(c *gin.Context) {
	userID := currentUserID(c)

	rows, err := h.DB.Query(`
		SELECT id, user_id, order_number, status, total_amount, payment_method, shipping_address, created_at, updated_at
		FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		h.Logger.Error("getMyOrders: query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching orders"})
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.Status, &o.TotalAmount,
			&o.PaymentMethod, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt); err != nil {
			h.Logger.Error("getMyOrders: scan failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching orders"})
			return
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("getMyOrders: rows error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// GetOrder returns one order plus its line items. Orders belonging to other
// users are indistinguishable from missing ones (404 either way).
func (h *Handlers) GetOrder(c *gin.Context) {
	userID := currentUserID(c)
	orderID := c.Param("id")

	var o models.Order
	err := h.DB.QueryRow(`
		SELECT id, user_id, order_number, status, total_amount, payment_method, shipping_address, created_at, updated_at
		FROM orders WHERE id = ? AND user_id = ? LIMIT 1`, orderID, userID,
	).Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.Status, &o.TotalAmount,
		&o.PaymentMethod, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		h.Logger.Error("getOrder: query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching order"})
		return
	}

	rows, err := h.DB.Query(`
		SELECT id, order_id, product_id, product_name, product_image, quantity, price, total, created_at
		FROM order_items WHERE order_id = ?`, o.ID)
	if err != nil {
		h.Logger.Error("getOrder: items query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching order"})
		return
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.ProductImage, &it.Quantity, &it.Price, &it.Total, &it.CreatedAt); err != nil {
			h.Logger.Error("getOrder: item scan failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching order"})
			return
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("getOrder: rows error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": o,
		"items": items,
	})
}

// CancelOrder sets the caller's own order to cancelled. A missing or
// foreign order returns 404 with no status change.
func (h *Handlers) CancelOrder(c *gin.Context) {
	userID := currentUserID(c)
	orderID := c.Param("id")

	var id int64
	err := h.DB.QueryRow("SELECT id FROM orders WHERE id = ? AND user_id = ? LIMIT 1", orderID, userID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		h.Logger.Error("cancelOrder: lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error cancelling order"})
		return
	}

	if _, err := h.DB.Exec("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
		models.OrderCancelled, time.Now(), id); err != nil {
		h.Logger.Error("cancelOrder: update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error cancelling order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order cancelled"})
}

// GetAllOrders lists every order in the system. Admin-only.
func (h *Handlers) GetAllOrders(c *gin.Context) {
	rows, err := h.DB.Query(`
		SELECT id, user_id, order_number, status, total_amount, payment_method, shipping_address, created_at, updated_at
		FROM orders ORDER BY created_at DESC`)
	if err != nil {
		h.Logger.Error("getAllOrders: query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching orders"})
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.OrderNumber, &o.Status, &o.TotalAmount,
			&o.PaymentMethod, &o.ShippingAddress, &o.CreatedAt, &o.UpdatedAt); err != nil {
			h.Logger.Error("getAllOrders: scan failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching orders"})
			return
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("getAllOrders: rows error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// UpdateOrderStatusInput is the JSON body for PUT /api/orders/admin/:id/status.
type UpdateOrderStatusInput struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// UpdateOrderStatus moves an order to a new status. Admin-only; the status
// must come from the fixed enumeration.
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	orderID := c.Param("id")

	var input UpdateOrderStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !input.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order status"})
		return
	}

	result, err := h.DB.Exec("UPDATE orders SET status = ?, updated_at = ? WHERE id = ?",
		input.Status, time.Now(), orderID)
	if err != nil {
		h.Logger.Error("updateOrderStatus: update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating order status"})
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
}
