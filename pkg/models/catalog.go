package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Navigation is a top-level site menu entry grouping categories.
type Navigation struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	LastScrapedAt time.Time  `json:"last_scraped_at"`
	Categories    []Category `json:"categories,omitempty"`
}

// Category is a browsable taxonomy node. Products attach to leaf
// categories by convention, not enforced.
type Category struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	ProductCount  int       `json:"product_count"` // advisory, not authoritative
	LastScrapedAt time.Time `json:"last_scraped_at"`
	NavigationID  int64     `json:"navigation_id"`
	ParentID      *int64    `json:"parent_id,omitempty"`
}

// Product is a catalog item sourced from the external retailer.
// SourceURL is the canonical external page URL and the re-fetch target;
// together with SourceID it is the idempotency key for re-scraping.
type Product struct {
	ID            int64           `json:"id"`
	SourceID      string          `json:"source_id,omitempty"`
	Title         string          `json:"title"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency,omitempty"`
	ImageURL      string          `json:"image_url,omitempty"`
	Author        string          `json:"author,omitempty"`
	SourceURL     string          `json:"source_url"`
	LastScrapedAt time.Time       `json:"last_scraped_at"`
	CategoryID    int64           `json:"category_id"`
	Detail        *ProductDetail  `json:"detail,omitempty"`
	Reviews       []Review        `json:"reviews,omitempty"`
}

// ProductDetail is the enrichment record populated by deep scraping.
// RatingsAvg and ReviewsCount reflect the freshest observed snapshot:
// they are derived from the reviews scraped in the same pass, not
// recomputed from the full review table.
type ProductDetail struct {
	ID           int64   `json:"id"`
	ProductID    int64   `json:"product_id"`
	Description  string  `json:"description,omitempty"`
	Specs        SpecMap `json:"specs,omitempty"`
	RatingsAvg   float64 `json:"ratings_avg"`
	ReviewsCount int     `json:"reviews_count"`
}

// Review is a single customer review. Rows accumulate and are never
// overwritten; (product_id, author, text) is the dedup key.
type Review struct {
	ID        int64     `json:"id"`
	ProductID int64     `json:"product_id"`
	Author    string    `json:"author"`
	Rating    float64   `json:"rating"` // typically 1-5, half-steps allowed
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ViewHistory records a product page view by an anonymous browser
// session (client-generated user id).
type ViewHistory struct {
	ID       int64     `json:"id"`
	UserID   string    `json:"user_id"`
	Product  *Product  `json:"product,omitempty"`
	ViewedAt time.Time `json:"viewed_at"`
}
