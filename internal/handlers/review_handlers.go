package handlers

import (
	"database/sql"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dmwangi/soko-api/internal/models"
)

// AddReviewInput is the JSON body for POST /api/users/reviews.
type AddReviewInput struct {
	ProductID int64   `json:"productId" binding:"required"`
	Rating    int     `json:"rating" binding:"required,gte=1,lte=5"`
	Title     *string `json:"title"`
	Comment   *string `json:"comment"`
}

// AddProductReview creates one review per (user, product). The verified-
// purchase flag is computed by checking for a delivered order item matching
// the reviewer and product; the product's aggregate rating is recomputed
// afterwards.
func (h *Handlers) AddProductReview(c *gin.Context) {
	userID := currentUserID(c)

	var input AddReviewInput
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
		h.Logger.Error("addReview: product lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding review"})
		return
	}

	var existingID int64
	err = h.DB.QueryRow("SELECT id FROM product_reviews WHERE user_id = ? AND product_id = ?", userID, input.ProductID).Scan(&existingID)
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You have already reviewed this product"})
		return
	} else if err != sql.ErrNoRows {
		h.Logger.Error("addReview: duplicate check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding review"})
		return
	}

	// Verified purchase: the reviewer once received a delivered order
	// containing this product.
	var orderItemID int64
	isVerified := false
	err = h.DB.QueryRow(`
		SELECT oi.id
		FROM order_items oi
		JOIN orders o ON oi.order_id = o.id
		WHERE o.user_id = ? AND oi.product_id = ? AND o.status = ?
		LIMIT 1`, userID, input.ProductID, models.OrderDelivered).Scan(&orderItemID)
	switch {
	case err == nil:
		isVerified = true
	case err == sql.ErrNoRows:
		// not a verified purchase
	default:
		h.Logger.Error("addReview: purchase check failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding review"})
		return
	}

	if _, err := h.DB.Exec(`
		INSERT INTO product_reviews (product_id, user_id, rating, title, comment, is_verified_purchase)
		VALUES (?, ?, ?, ?, ?, ?)`,
		input.ProductID, userID, input.Rating, input.Title, input.Comment, isVerified); err != nil {
		h.Logger.Error("addReview: insert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding review"})
		return
	}

	if err := h.recomputeProductRating(input.ProductID); err != nil {
		// The review itself persisted; log and keep going.
		h.Logger.Error("addReview: rating recompute failed",
			zap.Int64("productID", input.ProductID), zap.Error(err))
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":            "Review added",
		"isVerifiedPurchase": isVerified,
	})
}

// recomputeProductRating refreshes the denormalized aggregate rating and
// review count on the product row.
func (h *Handlers) recomputeProductRating(productID int64) error {
	var avgRating sql.NullFloat64
	var reviewCount int
	err := h.DB.QueryRow(
		"SELECT AVG(rating), COUNT(*) FROM product_reviews WHERE product_id = ?",
		productID,
	).Scan(&avgRating, &reviewCount)
	if err != nil {
		return err
	}

	rounded := math.Round(avgRating.Float64*100) / 100
	_, err = h.DB.Exec("UPDATE products SET rating = ?, review_count = ? WHERE id = ?",
		rounded, reviewCount, productID)
	return err
}

// GetProductReviews lists the reviews for one product, newest first. Public.
func (h *Handlers) GetProductReviews(c *gin.Context) {
	productID := c.Param("id")

	rows, err := h.DB.Query(`
		SELECT r.id, r.product_id, r.user_id, r.rating, r.title, r.comment, r.is_verified_purchase, r.created_at
		FROM product_reviews r
		WHERE r.product_id = ?
		ORDER BY r.created_at DESC`, productID)
	if err != nil {
		h.Logger.Error("getReviews: query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching reviews"})
		return
	}
	defer rows.Close()

	reviews := []models.ProductReview{}
	for rows.Next() {
		var r models.ProductReview
		if err := rows.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Title,
			&r.Comment, &r.IsVerifiedPurchase, &r.CreatedAt); err != nil {
			h.Logger.Error("getReviews: scan failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching reviews"})
			return
		}
		reviews = append(reviews, r)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("getReviews: rows error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}
