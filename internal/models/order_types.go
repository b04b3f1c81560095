package models

import (
	"database/sql"
	"time"
)

// OrderStatus is the closed set of order lifecycle states. Admin status
// updates are validated against this enum before touching the database.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// Valid reports whether s is one of the known order statuses.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderConfirmed, OrderProcessing, OrderShipped,
		OrderDelivered, OrderCancelled, OrderRefunded:
		return true
	}
	return false
}

// ShippingAddress is snapshotted into the order header as JSON at creation
// time. It is a copy, not a live reference to the user's profile address.
type ShippingAddress struct {
	FullName string `json:"fullName" binding:"required"`
	Address  string `json:"address" binding:"required"`
	City     string `json:"city" binding:"required"`
	State    string `json:"state" binding:"required"`
	ZipCode  string `json:"zipCode" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
	Country  string `json:"country"`
}

// Order is the header record for the 'orders' table.
type Order struct {
	ID              int64          `json:"id" db:"id"`
	UserID          int64          `json:"userId" db:"user_id"`
	OrderNumber     string         `json:"orderNumber" db:"order_number"`
	Status          OrderStatus    `json:"status" db:"status"`
	TotalAmount     float64        `json:"totalAmount" db:"total_amount"`
	PaymentMethod   sql.NullString `json:"paymentMethod,omitempty" db:"payment_method"`
	ShippingAddress string         `json:"shippingAddress" db:"shipping_address"` // JSON snapshot
	CreatedAt       time.Time      `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time      `json:"updatedAt" db:"updated_at"`
}

// OrderItem is one line of an order. Product name/image/price are snapshotted
// at purchase time so historical orders survive later product edits or
// deletion. Rows are written once, inside the order transaction, and never
// updated afterward.
type OrderItem struct {
	ID           int64          `json:"id" db:"id"`
	OrderID      int64          `json:"orderId" db:"order_id"`
	ProductID    int64          `json:"productId" db:"product_id"`
	ProductName  sql.NullString `json:"productName,omitempty" db:"product_name"`
	ProductImage sql.NullString `json:"productImage,omitempty" db:"product_image"`
	Quantity     int            `json:"quantity" db:"quantity"`
	Price        float64        `json:"price" db:"price"`
	Total        float64        `json:"total" db:"total"`
	CreatedAt    time.Time      `json:"createdAt" db:"created_at"`
}
