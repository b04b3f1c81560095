package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"github.com/dmwangi/soko-api/internal/models"
)

const productColumns = `id, seller_id, name, slug, description, price, discount_price,
	stock_quantity, image_url, is_active, rating, review_count, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }, p *models.Product) error {
	return row.Scan(&p.ID, &p.SellerID, &p.Name, &p.Slug, &p.Description, &p.Price,
		&p.DiscountPrice, &p.StockQuantity, &p.ImageURL, &p.IsActive,
		&p.Rating, &p.ReviewCount, &p.CreatedAt, &p.UpdatedAt)
}

// ListProducts is the public catalog listing with pagination and an optional
// name search. Only active products are shown.
func (h *Handlers) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := "SELECT " + productColumns + " FROM products WHERE is_active = true"
	args := []interface{}{}
	if search := c.Query("search"); search != "" {
		query += " AND name LIKE ?"
		args = append(args, "%"+search+"%")
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		h.Logger.Error("listProducts: query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching products"})
		return
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := scanProduct(rows, &p); err != nil {
			h.Logger.Error("listProducts: scan failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching products"})
			return
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		h.Logger.Error("listProducts: rows error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"metadata": gin.H{"page": page, "limit": limit},
	})
}

// GetProduct returns one active product by id. Public.
func (h *Handlers) GetProduct(c *gin.Context) {
	var p models.Product
	err := scanProduct(h.DB.QueryRow(
		"SELECT "+productColumns+" FROM products WHERE id = ? AND is_active = true", c.Param("id")), &p)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		h.Logger.Error("getProduct: query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"product": p})
}

// CreateProductInput is the JSON body for POST /api/products.
type CreateProductInput struct {
	Name          string   `json:"name" binding:"required"`
	Description   *string  `json:"description"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	DiscountPrice *float64 `json:"discountPrice" binding:"omitempty,gt=0"`
	StockQuantity int      `json:"stockQuantity" binding:"gte=0"`
	ImageURL      *string  `json:"imageUrl"`
}

// CreateProduct adds a catalog entry owned by the authenticated user.
func (h *Handlers) CreateProduct(c *gin.Context) {
	sellerID := currentUserID(c)

	var input CreateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.DiscountPrice != nil && *input.DiscountPrice >= input.Price {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Discount price must be below the list price"})
		return
	}

	result, err := h.DB.Exec(`
		INSERT INTO products (seller_id, name, slug, description, price, discount_price, stock_quantity, image_url, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, true)`,
		sellerID, input.Name, slug.Make(input.Name), input.Description,
		input.Price, input.DiscountPrice, input.StockQuantity, input.ImageURL)
	if err != nil {
		h.Logger.Error("createProduct: insert failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating product"})
		return
	}

	productID, err := result.LastInsertId()
	if err != nil {
		h.Logger.Error("createProduct: LastInsertId failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating product"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":   "Product created",
		"productId": productID,
	})
}

// UpdateProductInput carries the mutable product fields; pointers distinguish
// "not provided" from zero values.
type UpdateProductInput struct {
	Name          *string  `json:"name"`
	Description   *string  `json:"description"`
	Price         *float64 `json:"price" binding:"omitempty,gt=0"`
	DiscountPrice *float64 `json:"discountPrice" binding:"omitempty,gt=0"`
	StockQuantity *int     `json:"stockQuantity" binding:"omitempty,gte=0"`
	ImageURL      *string  `json:"imageUrl"`
	IsActive      *bool    `json:"isActive"`
}

// UpdateProduct applies the provided fields. Only the owning seller or an
// admin may modify a product.
func (h *Handlers) UpdateProduct(c *gin.Context) {
	productID := c.Param("id")

	if !h.canManageProduct(c, productID) {
		return
	}

	var input UpdateProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sets := []string{}
	args := []interface{}{}
	if input.Name != nil {
		sets = append(sets, "name = ?", "slug = ?")
		args = append(args, *input.Name, slug.Make(*input.Name))
	}
	if input.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *input.Description)
	}
	if input.Price != nil {
		sets = append(sets, "price = ?")
		args = append(args, *input.Price)
	}
	if input.DiscountPrice != nil {
		sets = append(sets, "discount_price = ?")
		args = append(args, *input.DiscountPrice)
	}
	if input.StockQuantity != nil {
		sets = append(sets, "stock_quantity = ?")
		args = append(args, *input.StockQuantity)
	}
	if input.ImageURL != nil {
		sets = append(sets, "image_url = ?")
		args = append(args, *input.ImageURL)
	}
	if input.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, *input.IsActive)
	}

	if len(sets) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields provided"})
		return
	}

	query := "UPDATE products SET " + joinSets(sets) + ", updated_at = ? WHERE id = ?"
	args = append(args, time.Now(), productID)

	if _, err := h.DB.Exec(query, args...); err != nil {
		h.Logger.Error("updateProduct: update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product updated"})
}

// DeleteProduct soft-deletes by clearing is_active, keeping historical order
// items intact. Owner or admin only.
func (h *Handlers) DeleteProduct(c *gin.Context) {
	productID := c.Param("id")

	if !h.canManageProduct(c, productID) {
		return
	}

	if _, err := h.DB.Exec("UPDATE products SET is_active = false, updated_at = ? WHERE id = ?",
		time.Now(), productID); err != nil {
		h.Logger.Error("deleteProduct: update failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// canManageProduct checks ownership (or admin role) and writes the error
// response itself when the check fails.
func (h *Handlers) canManageProduct(c *gin.Context, productID string) bool {
	var sellerID int64
	err := h.DB.QueryRow("SELECT seller_id FROM products WHERE id = ?", productID).Scan(&sellerID)
	if err != nil {
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return false
		}
		h.Logger.Error("canManageProduct: lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return false
	}

	if sellerID != currentUserID(c) && currentUserRole(c) != models.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: not your product"})
		return false
	}
	return true
}
