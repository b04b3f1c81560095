package handlers

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmwangi/soko-api/internal/models"
)

// AddToWishlistInput is the JSON body for POST /api/users/wishlist.
type AddToWishlistInput struct {
	ProductID int64 `json:"productId" binding:"required"`
}

// AddToWishlist records a (user, product) pair, rejecting duplicates.
func (h *Handlers) AddToWishlist(c *gin.Context) {
	userID := currentUserID(c)

	var input AddToWishlistInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var productID int64
	err := h.DB.QueryRow("SELECT id FROM products WHERE id = ? AND is_active = true", input.ProductID).Scan(&productID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.Logger.Error("addToWishlist: product lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding product to wishlist"})
		return
	}

	var existingID int64
	err = h.DB.QueryRow("SELECT id FROM wishlist WHERE user_id = ? AND product_id = ?", userID, input.ProductID).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Product already in wishlist"})
		return
	} else if err != sql.ErrNoRows {
		h.Logger.Error("addToWishlist: lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding product to wishlist"})
		return
	}

	if _, err := h.DB.Exec("INSERT INTO wishlist (user_id, product_id) VALUES (?, ?)", userID, input.ProductID); err != nil {
		h.Logger.Error("addToWishlist: insert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding product to wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product added to wishlist"})
}

// wishlistLine is the joined row shape returned by GetWishlist.
type wishlistLine struct {
	WishlistID int64          `json:"wishlistId"`
	AddedAt    time.Time      `json:"addedAt"`
	Product    models.Product `json:"product"`
	FinalPrice float64        `json:"finalPrice"`
}

// GetWishlist lists the caller's wishlist joined with product data,
// newest first.
func (h *Handlers) GetWishlist(c *gin.Context) {
	userID := currentUserID(c)

	rows, err := h.DB.Query(`
		SELECT w.id, w.created_at,
		       p.id, p.seller_id, p.name, p.slug, p.description, p.price, p.discount_price,
		       p.stock_quantity, p.image_url, p.is_active, p.rating, p.review_count,
		       p.created_at, p.updated_at
		FROM wishlist w
		JOIN products p ON w.product_id = p.id
		WHERE w.user_id = ? AND p.is_active = true
		ORDER BY w.created_at DESC`, userID)
	if err != nil {
		h.Logger.Error("getWishlist: query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching wishlist"})
		return
	}
	defer rows.Close()

	wishlist := []wishlistLine{}
	for rows.Next() {
		var line wishlistLine
		var p models.Product
		if err := rows.Scan(&line.WishlistID, &line.AddedAt,
			&p.ID, &p.SellerID, &p.Name, &p.Slug, &p.Description, &p.Price, &p.DiscountPrice,
			&p.StockQuantity, &p.ImageURL, &p.IsActive, &p.Rating, &p.ReviewCount,
			&p.CreatedAt, &p.UpdatedAt); err != nil {
			h.Logger.Error("getWishlist: scan failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching wishlist"})
			return
		}
		line.Product = p
		line.FinalPrice = p.FinalPrice()
		wishlist = append(wishlist, line)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("getWishlist: rows error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"wishlist": wishlist})
}

// RemoveFromWishlist deletes one wishlist entry by product id.
func (h *Handlers) RemoveFromWishlist(c *gin.Context) {
	userID := currentUserID(c)
	productID := c.Param("productId")

	result, err := h.DB.Exec("DELETE FROM wishlist WHERE user_id = ? AND product_id = ?", userID, productID)
	if err != nil {
		h.Logger.Error("removeFromWishlist: delete failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error removing product from wishlist"})
		return
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found in wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product removed from wishlist"})
}
