package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bookhub/pkg/models"
)

// Repo is the catalog store. Every write is an idempotent upsert keyed
// by a natural key (slug, source_id, source_url, product_id), which is
// what makes concurrent scrape writers safe without locking.
type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

// --- navigations ---

// UpsertNavigation creates the navigation on first discovery and only
// refreshes last_scraped_at on re-discovery.
func (r *Repo) UpsertNavigation(ctx context.Context, title, slug string, at time.Time) (*models.Navigation, error) {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO navigations (title, slug, last_scraped_at)
		VALUES (?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
		  last_scraped_at = excluded.last_scraped_at
	`, title, slug, at)
	if err != nil {
		return nil, fmt.Errorf("upsert navigation %q: %w", slug, err)
	}
	return r.FindNavigationBySlug(ctx, slug)
}

func (r *Repo) FindNavigationBySlug(ctx context.Context, slug string) (*models.Navigation, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, title, slug, last_scraped_at
		FROM navigations
		WHERE slug = ?
	`, slug)

	var n models.Navigation
	var scraped sql.NullTime
	if err := row.Scan(&n.ID, &n.Title, &n.Slug, &scraped); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan navigation: %w", err)
	}
	n.LastScrapedAt = scraped.Time
	return &n, nil
}

// ListNavigations returns all navigations with their categories attached.
func (r *Repo) ListNavigations(ctx context.Context) ([]models.Navigation, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, slug, last_scraped_at
		FROM navigations
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list navigations: %w", err)
	}
	defer rows.Close()

	var out []models.Navigation
	for rows.Next() {
		var n models.Navigation
		var scraped sql.NullTime
		if err := rows.Scan(&n.ID, &n.Title, &n.Slug, &scraped); err != nil {
			return nil, fmt.Errorf("scan navigation row: %w", err)
		}
		n.LastScrapedAt = scraped.Time
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}

	for i := range out {
		cats, err := r.listCategoriesByNavigation(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Categories = cats
	}
	return out, nil
}

// --- categories ---

func (r *Repo) UpsertCategory(ctx context.Context, c *models.Category) (*models.Category, error) {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO categories (title, slug, product_count, last_scraped_at, navigation_id, parent_id)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
		  last_scraped_at = excluded.last_scraped_at
	`, c.Title, c.Slug, c.ProductCount, c.LastScrapedAt, c.NavigationID, c.ParentID)
	if err != nil {
		return nil, fmt.Errorf("upsert category %q: %w", c.Slug, err)
	}
	return r.FindCategoryBySlug(ctx, c.Slug)
}

func (r *Repo) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, title, slug, product_count, last_scraped_at, navigation_id, parent_id
		FROM categories
		WHERE slug = ?
	`, slug)
	return scanCategory(row)
}

func (r *Repo) ListSubcategories(ctx context.Context, parentID int64) ([]models.Category, error) {
	return r.listCategories(ctx, `WHERE parent_id = ?`, parentID)
}

func (r *Repo) listCategoriesByNavigation(ctx context.Context, navID int64) ([]models.Category, error) {
	return r.listCategories(ctx, `WHERE navigation_id = ?`, navID)
}

func (r *Repo) listCategories(ctx context.Context, where string, arg any) ([]models.Category, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, title, slug, product_count, last_scraped_at, navigation_id, parent_id
		FROM categories `+where+` ORDER BY id ASC
	`, arg)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	out := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCategory(row rowScanner) (*models.Category, error) {
	var c models.Category
	var scraped sql.NullTime
	var parent sql.NullInt64
	if err := row.Scan(&c.ID, &c.Title, &c.Slug, &c.ProductCount, &scraped, &c.NavigationID, &parent); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan category: %w", err)
	}
	c.LastScrapedAt = scraped.Time
	if parent.Valid {
		c.ParentID = &parent.Int64
	}
	return &c, nil
}

// --- products ---

const productCols = `id, source_id, title, price, currency, image_url, author, source_url, last_scraped_at, category_id`

// UpsertProduct inserts the product or, when the source_id (or the
// source_url, for legacy rows without one) already exists, overwrites
// title/price/image/author/last_scraped_at in place. A product is never
// duplicated for the same source_id or source_url.
func (r *Repo) UpsertProduct(ctx context.Context, p *models.Product) (*models.Product, error) {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO products (source_id, title, price, currency, image_url, author, source_url, last_scraped_at, category_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id) DO UPDATE SET
		  title = excluded.title,
		  price = excluded.price,
		  image_url = excluded.image_url,
		  author = excluded.author,
		  last_scraped_at = excluded.last_scraped_at
		ON CONFLICT(source_url) DO UPDATE SET
		  source_id = excluded.source_id,
		  title = excluded.title,
		  price = excluded.price,
		  image_url = excluded.image_url,
		  author = excluded.author,
		  last_scraped_at = excluded.last_scraped_at
	`, nullStr(p.SourceID), p.Title, p.Price, nullStr(p.Currency), nullStr(p.ImageURL),
		nullStr(p.Author), p.SourceURL, p.LastScrapedAt, p.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("upsert product %q: %w", p.SourceURL, err)
	}

	if p.SourceID != "" {
		return r.FindProductBySourceID(ctx, p.SourceID)
	}
	row := r.DB.QueryRowContext(ctx, `SELECT `+productCols+` FROM products WHERE source_url = ?`, p.SourceURL)
	return scanProduct(row)
}

// FindProductByID loads the product with its detail, if any.
func (r *Repo) FindProductByID(ctx context.Context, id int64) (*models.Product, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if err != nil || p == nil {
		return p, err
	}

	detail, err := r.FindDetailByProduct(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Detail = detail
	return p, nil
}

func (r *Repo) FindProductBySourceID(ctx context.Context, sourceID string) (*models.Product, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+productCols+` FROM products WHERE source_id = ?`, sourceID)
	return scanProduct(row)
}

func (r *Repo) UpdateProductImage(ctx context.Context, id int64, imageURL string) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE products SET image_url = ? WHERE id = ?`, imageURL, id); err != nil {
		return fmt.Errorf("update product image: %w", err)
	}
	return nil
}

func (r *Repo) TouchProduct(ctx context.Context, id int64, at time.Time) error {
	if _, err := r.DB.ExecContext(ctx, `UPDATE products SET last_scraped_at = ? WHERE id = ?`, at, id); err != nil {
		return fmt.Errorf("touch product: %w", err)
	}
	return nil
}

func (r *Repo) ListProductsByCategory(ctx context.Context, categoryID int64, limit, offset int) ([]models.Product, error) {
	limit, offset = clampPage(limit, offset)
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+productCols+` FROM products
		WHERE category_id = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, categoryID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()
	return scanProducts(rows, limit)
}

func (r *Repo) CountProductsByCategory(ctx context.Context, categoryID int64) (int, error) {
	var total int
	row := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM products WHERE category_id = ?`, categoryID)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return total, nil
}

// SearchProducts matches the keyword against title and author.
func (r *Repo) SearchProducts(ctx context.Context, q string, limit, offset int) ([]models.Product, int, error) {
	limit, offset = clampPage(limit, offset)
	kw := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"

	var total int
	row := r.DB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM products
		WHERE LOWER(title) LIKE ? OR LOWER(author) LIKE ?
	`, kw, kw)
	if err := row.Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("search count: %w", err)
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+productCols+` FROM products
		WHERE LOWER(title) LIKE ? OR LOWER(author) LIKE ?
		ORDER BY last_scraped_at DESC
		LIMIT ? OFFSET ?
	`, kw, kw, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()

	out, err := scanProducts(rows, limit)
	return out, total, err
}

func scanProducts(rows *sql.Rows, capacity int) ([]models.Product, error) {
	out := make([]models.Product, 0, capacity)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func scanProduct(row rowScanner) (*models.Product, error) {
	var (
		p        models.Product
		sourceID sql.NullString
		price    decimal.NullDecimal
		currency sql.NullString
		image    sql.NullString
		author   sql.NullString
		scraped  sql.NullTime
	)
	if err := row.Scan(&p.ID, &sourceID, &p.Title, &price, &currency, &image, &author,
		&p.SourceURL, &scraped, &p.CategoryID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	p.SourceID = sourceID.String
	p.Price = price.Decimal
	p.Currency = currency.String
	p.ImageURL = image.String
	p.Author = author.String
	p.LastScrapedAt = scraped.Time
	return &p, nil
}

// --- product details ---

// UpsertProductDetail overwrites the detail wholesale on each refresh.
func (r *Repo) UpsertProductDetail(ctx context.Context, d *models.ProductDetail) error {
	specsJSON, err := json.Marshal(d.Specs)
	if err != nil {
		return fmt.Errorf("marshal specs for product %d: %w", d.ProductID, err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO product_details (product_id, description, specs, ratings_avg, reviews_count)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(product_id) DO UPDATE SET
		  description = excluded.description,
		  specs = excluded.specs,
		  ratings_avg = excluded.ratings_avg,
		  reviews_count = excluded.reviews_count
	`, d.ProductID, d.Description, string(specsJSON), d.RatingsAvg, d.ReviewsCount)
	if err != nil {
		return fmt.Errorf("upsert detail for product %d: %w", d.ProductID, err)
	}
	return nil
}

func (r *Repo) FindDetailByProduct(ctx context.Context, productID int64) (*models.ProductDetail, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, product_id, description, specs, ratings_avg, reviews_count
		FROM product_details
		WHERE product_id = ?
	`, productID)

	var (
		d         models.ProductDetail
		desc      sql.NullString
		specsJSON sql.NullString
		avg       sql.NullFloat64
	)
	if err := row.Scan(&d.ID, &d.ProductID, &desc, &specsJSON, &avg, &d.ReviewsCount); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("scan detail: %w", err)
	}
	d.Description = desc.String
	d.RatingsAvg = avg.Float64
	if specsJSON.Valid && specsJSON.String != "" {
		_ = json.Unmarshal([]byte(specsJSON.String), &d.Specs)
	}
	return &d, nil
}

// --- reviews ---

// InsertReview adds the review unless one with the same
// (product, author, text) already exists. Returns whether a row was
// actually inserted.
func (r *Repo) InsertReview(ctx context.Context, rev *models.Review) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		INSERT OR IGNORE INTO reviews (product_id, author, rating, text, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rev.ProductID, rev.Author, rev.Rating, rev.Text, rev.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert review: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *Repo) ListReviewsByProduct(ctx context.Context, productID int64) ([]models.Review, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, product_id, author, rating, text, created_at
		FROM reviews
		WHERE product_id = ?
		ORDER BY created_at DESC, id DESC
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := []models.Review{}
	for rows.Next() {
		var rev models.Review
		var rating sql.NullFloat64
		var created sql.NullTime
		if err := rows.Scan(&rev.ID, &rev.ProductID, &rev.Author, &rating, &rev.Text, &created); err != nil {
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		rev.Rating = rating.Float64
		rev.CreatedAt = created.Time
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
