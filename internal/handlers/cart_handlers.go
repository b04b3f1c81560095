package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmwangi/soko-api/internal/models"
)

// cart line items hang directly off the user; there is no cart header row.

// AddToCartInput is the JSON body for POST /api/users/cart.
type AddToCartInput struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"omitempty,gte=1"`
}

// AddToCart upserts a cart line: adding a product already in the cart merges
// quantities. The stored price is snapshotted at add-time, preferring the
// discount price when one is set.
func (h *Handlers) AddToCart(c *gin.Context) {
	userID := currentUserID(c)

	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	var product models.Product
	err := h.DB.QueryRow(
		"SELECT id, name, price, discount_price, stock_quantity FROM products WHERE id = ? AND is_active = true",
		input.ProductID,
	).Scan(&product.ID, &product.Name, &product.Price, &product.DiscountPrice, &product.StockQuantity)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.Logger.Error("addToCart: product lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding product to cart"})
		return
	}

	if product.StockQuantity < input.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock available"})
		return
	}

	price := product.FinalPrice()

	var existingID int64
	var existingQty int
	err = h.DB.QueryRow(
		"SELECT id, quantity FROM cart_items WHERE user_id = ? AND product_id = ?",
		userID, input.ProductID,
	).Scan(&existingID, &existingQty)

	switch {
	case err == nil:
		newQuantity := existingQty + input.Quantity
		if product.StockQuantity < newQuantity {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock available for the total quantity"})
			return
		}
		if _, err := h.DB.Exec(
			"UPDATE cart_items SET quantity = ?, price = ?, updated_at = ? WHERE id = ?",
			newQuantity, price, time.Now(), existingID); err != nil {
			h.Logger.Error("addToCart: update failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding product to cart"})
			return
		}
	case err == sql.ErrNoRows:
		if _, err := h.DB.Exec(
			"INSERT INTO cart_items (user_id, product_id, quantity, price) VALUES (?, ?, ?, ?)",
			userID, input.ProductID, input.Quantity, price); err != nil {
			h.Logger.Error("addToCart: insert failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding product to cart"})
			return
		}
	default:
		h.Logger.Error("addToCart: lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding product to cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product added to cart"})
}

// cartLine is the joined row shape returned by GetCart.
type cartLine struct {
	models.CartItem
	Name         string         `json:"name"`
	ImageURL     sql.NullString `json:"imageUrl,omitempty"`
	Stock        int            `json:"stock"`
	CurrentPrice float64        `json:"currentPrice"`
	ItemTotal    float64        `json:"itemTotal"`
}

const cartTaxRate = 0.1

// GetCart returns the cart lines joined with live product data plus a
// subtotal/tax/total summary.
func (h *Handlers) GetCart(c *gin.Context) {
	userID := currentUserID(c)

	rows, err := h.DB.Query(`
		SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.price, ci.created_at, ci.updated_at,
		       p.name, p.image_url, p.stock_quantity,
		       CASE WHEN p.discount_price IS NOT NULL THEN p.discount_price ELSE p.price END AS current_price,
		       (ci.quantity * ci.price) AS item_total
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.user_id = ? AND p.is_active = true
		ORDER BY ci.created_at DESC`, userID)
	if err != nil {
		h.Logger.Error("getCart: query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching cart"})
		return
	}
	defer rows.Close()

	items := []cartLine{}
	var subtotal float64
	var totalItems int

	for rows.Next() {
		var line cartLine
		if err := rows.Scan(&line.ID, &line.UserID, &line.ProductID, &line.Quantity,
			&line.Price, &line.CreatedAt, &line.UpdatedAt,
			&line.Name, &line.ImageURL, &line.Stock, &line.CurrentPrice, &line.ItemTotal); err != nil {
			h.Logger.Error("getCart: scan failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching cart"})
			return
		}
		subtotal += line.ItemTotal
		totalItems += line.Quantity
		items = append(items, line)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("getCart: rows error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching cart"})
		return
	}

	taxAmount := subtotal * cartTaxRate

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"summary": gin.H{
			"totalItems": totalItems,
			"subtotal":   subtotal,
			"taxAmount":  taxAmount,
			"total":      subtotal + taxAmount,
		},
	})
}

// UpdateCartItemInput is the JSON body for PUT /api/users/cart/:itemId.
type UpdateCartItemInput struct {
	Quantity int `json:"quantity" binding:"required,gte=1"`
}

// UpdateCartItem changes the quantity of one cart line, re-snapshotting the
// price and re-checking stock.
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	userID := currentUserID(c)
	itemID := c.Param("itemId")

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var stock int
	var price, discountPrice sql.NullFloat64
	err := h.DB.QueryRow(`
		SELECT p.stock_quantity, p.price, p.discount_price
		FROM cart_items ci
		JOIN products p ON ci.product_id = p.id
		WHERE ci.id = ? AND ci.user_id = ? AND p.is_active = true`, itemID, userID,
	).Scan(&stock, &price, &discountPrice)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
			return
		}
		h.Logger.Error("updateCartItem: lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating cart item"})
		return
	}

	if stock < input.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Insufficient stock available"})
		return
	}

	newPrice := price.Float64
	if discountPrice.Valid {
		newPrice = discountPrice.Float64
	}

	if _, err := h.DB.Exec(
		"UPDATE cart_items SET quantity = ?, price = ?, updated_at = ? WHERE id = ?",
		input.Quantity, newPrice, time.Now(), itemID); err != nil {
		h.Logger.Error("updateCartItem: update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating cart item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart item updated"})
}

// RemoveFromCart deletes one cart line owned by the caller.
func (h *Handlers) RemoveFromCart(c *gin.Context) {
	userID := currentUserID(c)
	itemID := c.Param("itemId")

	result, err := h.DB.Exec("DELETE FROM cart_items WHERE id = ? AND user_id = ?", itemID, userID)
	if err != nil {
		h.Logger.Error("removeFromCart: delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error removing item from cart"})
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Item removed from cart"})
}

// ClearCart empties the caller's cart.
func (h *Handlers) ClearCart(c *gin.Context) {
	userID := currentUserID(c)

	if _, err := h.DB.Exec("DELETE FROM cart_items WHERE user_id = ?", userID); err != nil {
		h.Logger.Error("clearCart: delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error clearing cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
}
