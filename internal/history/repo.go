package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"bookhub/pkg/models"
)

type Repo struct {
	DB *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db}
}

func (r *Repo) Add(ctx context.Context, userID string, productID int64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO view_history (user_id, product_id, viewed_at)
		VALUES (?, ?, ?)
	`, userID, productID, at)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

// ListByUser returns the most recent views first, product attached.
func (r *Repo) ListByUser(ctx context.Context, userID string, limit int) ([]models.ViewHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT h.id, h.user_id, h.viewed_at,
		       p.id, p.source_id, p.title, p.price, p.currency, p.image_url, p.author, p.source_url, p.last_scraped_at, p.category_id
		FROM view_history h
		JOIN products p ON p.id = h.product_id
		WHERE h.user_id = ?
		ORDER BY h.viewed_at DESC, h.id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := []models.ViewHistory{}
	for rows.Next() {
		var (
			h        models.ViewHistory
			p        models.Product
			sourceID sql.NullString
			price    decimal.NullDecimal
			currency sql.NullString
			image    sql.NullString
			author   sql.NullString
			scraped  sql.NullTime
		)
		if err := rows.Scan(&h.ID, &h.UserID, &h.ViewedAt,
			&p.ID, &sourceID, &p.Title, &price, &currency, &image, &author,
			&p.SourceURL, &scraped, &p.CategoryID); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		p.SourceID = sourceID.String
		p.Price = price.Decimal
		p.Currency = currency.String
		p.ImageURL = image.String
		p.Author = author.String
		p.LastScrapedAt = scraped.Time
		h.Product = &p
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows err: %w", err)
	}
	return out, nil
}
