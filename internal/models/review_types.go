package models

import (
	"database/sql"
	"time"
)

// ProductReview maps the 'product_reviews' table. One review per (user,
// product); IsVerifiedPurchase is computed at creation time by checking for a
// delivered order item referencing the same user and product.
type ProductReview struct {
	ID                 int64          `json:"id" db:"id"`
	ProductID          int64          `json:"productId" db:"product_id"`
	UserID             int64          `json:"userId" db:"user_id"`
	Rating             int            `json:"rating" db:"rating"`
	Title              sql.NullString `json:"title,omitempty" db:"title"`
	Comment            sql.NullString `json:"comment,omitempty" db:"comment"`
	IsVerifiedPurchase bool           `json:"isVerifiedPurchase" db:"is_verified_purchase"`
	CreatedAt          time.Time      `json:"createdAt" db:"created_at"`
}
