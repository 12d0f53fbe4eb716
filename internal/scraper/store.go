package scraper

import (
	"context"
	"time"

	"bookhub/pkg/models"
)

// Store is the slice of the catalog store the pipeline writes through.
// All writes are upserts keyed by natural keys (slug, source_id,
// source_url, product_id), so re-ordering concurrent operations is
// safe. Implemented by catalog.Repo.
type Store interface {
	UpsertNavigation(ctx context.Context, title, slug string, at time.Time) (*models.Navigation, error)
	UpsertCategory(ctx context.Context, c *models.Category) (*models.Category, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error)

	UpsertProduct(ctx context.Context, p *models.Product) (*models.Product, error)
	FindProductByID(ctx context.Context, id int64) (*models.Product, error)
	FindProductBySourceID(ctx context.Context, sourceID string) (*models.Product, error)
	UpdateProductImage(ctx context.Context, id int64, imageURL string) error
	TouchProduct(ctx context.Context, id int64, at time.Time) error

	UpsertProductDetail(ctx context.Context, d *models.ProductDetail) error
	InsertReview(ctx context.Context, rev *models.Review) (bool, error)
}
