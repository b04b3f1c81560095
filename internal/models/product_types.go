package models

import (
	"database/sql"
	"time"
)

// Product is a seller-owned catalog entry for the 'products' table.
type Product struct {
	ID            int64           `json:"id" db:"id"`
	SellerID      int64           `json:"sellerId" db:"seller_id"`
	Name          string          `json:"name" db:"name"`
	Slug          string          `json:"slug" db:"slug"`
	Description   sql.NullString  `json:"description,omitempty" db:"description"`
	Price         float64         `json:"price" db:"price"`
	DiscountPrice sql.NullFloat64 `json:"discountPrice,omitempty" db:"discount_price"`
	StockQuantity int             `json:"stockQuantity" db:"stock_quantity"`
	ImageURL      sql.NullString  `json:"imageUrl,omitempty" db:"image_url"`
	IsActive      bool            `json:"isActive" db:"is_active"`
	Rating        float64         `json:"rating" db:"rating"`
	ReviewCount   int             `json:"reviewCount" db:"review_count"`
	CreatedAt     time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time       `json:"updatedAt" db:"updated_at"`
}

// FinalPrice is the price a buyer actually pays: the discount price when one
// is set, the list price otherwise.
func (p *Product) FinalPrice() float64 {
	if p.DiscountPrice.Valid {
		return p.DiscountPrice.Float64
	}
	return p.Price
}
