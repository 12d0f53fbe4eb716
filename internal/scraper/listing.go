package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"bookhub/pkg/models"
	"bookhub/pkg/utils"
)

// Hit is one product-shaped object from the search index. The upstream
// schema is inconsistent across result shapes, so fields are read
// through prioritized alias chains.
type Hit map[string]any

// Str returns the first alias that holds a non-empty string.
func (h Hit) Str(aliases ...string) string {
	for _, k := range aliases {
		if s, ok := h[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

// Num returns the first alias that holds a non-zero number, or 0.
func (h Hit) Num(aliases ...string) float64 {
	for _, k := range aliases {
		switch v := h[k].(type) {
		case float64:
			if v != 0 {
				return v
			}
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && f != 0 {
				return f
			}
		}
	}
	return 0
}

// SearchIndex is the hosted product-search service queried for
// category listings: one call per listing fetch.
type SearchIndex interface {
	Query(ctx context.Context, query string, hitsPerPage int) ([]Hit, error)
}

// SearchIndexClient talks to the Algolia-hosted index the source site's
// own storefront uses.
type SearchIndexClient struct {
	AppID     string
	APIKey    string
	IndexName string
	Endpoint  string // override for tests; derived from AppID when empty
	Client    *http.Client
}

func NewSearchIndexClient(cfg utils.SearchConfig) *SearchIndexClient {
	return &SearchIndexClient{
		AppID:     cfg.AppID,
		APIKey:    cfg.APIKey,
		IndexName: cfg.IndexName,
		Client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *SearchIndexClient) Query(ctx context.Context, query string, hitsPerPage int) ([]Hit, error) {
	endpoint := c.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s-dsn.algolia.net", c.AppID)
	}

	payload := map[string]string{
		"params": fmt.Sprintf("query=%s&hitsPerPage=%d", url.QueryEscape(query), hitsPerPage),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("search index: marshal query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/1/indexes/%s/query", endpoint, c.IndexName), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("search index: build request: %w", err)
	}
	req.Header.Set("X-Algolia-API-Key", c.APIKey)
	req.Header.Set("X-Algolia-Application-Id", c.AppID)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Service: "search-index", Msg: err.Error()}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Service: "search-index", Status: resp.StatusCode, Msg: string(raw)}
	}

	var decoded struct {
		Hits []Hit `json:"hits"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &UpstreamError{Service: "search-index", Status: resp.StatusCode, Msg: "decode: " + err.Error()}
	}
	return decoded.Hits, nil
}

// DetailTrigger receives the fire-and-forget detail-scrape fan-out.
type DetailTrigger interface {
	Trigger(productID int64)
}

// ListingFetcher maps one bounded page of search-index hits for a
// category into canonical Product rows.
type ListingFetcher struct {
	Store       Store
	Index       SearchIndex
	Details     DetailTrigger // optional
	BaseURL     string
	HitsPerPage int
	Now         func() time.Time
}

func (f *ListingFetcher) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now().UTC()
}

// Run fetches listings for the category slug and upserts the products.
// Index errors abort the whole batch; a single malformed hit only skips
// that hit. Returns the number of products upserted.
func (f *ListingFetcher) Run(ctx context.Context, categorySlug string) (int, error) {
	cat, err := f.Store.FindCategoryBySlug(ctx, categorySlug)
	if err != nil {
		return 0, err
	}
	if cat == nil {
		return 0, fmt.Errorf("category %q: %w", categorySlug, ErrNotFound)
	}

	// "Fiction" instead of "Fiction Books" for better broad match
	query := strings.TrimSuffix(cat.Title, " Books")

	perPage := f.HitsPerPage
	if perPage <= 0 {
		perPage = 20
	}

	log.Infof("[scraper] querying search index for category %q with query %q", categorySlug, query)
	hits, err := f.Index.Query(ctx, query, perPage)
	if err != nil {
		return 0, fmt.Errorf("listing fetch for %q: %w", categorySlug, err)
	}
	log.Infof("[scraper] search index returned %d hits", len(hits))

	now := f.now()
	count := 0
	for _, hit := range hits {
		title := hit.Str("shortTitle", "title", "longTitle", "legacyTitle", "name")
		handle := hit.Str("productHandle", "handle", "slug", "objectID")
		if title == "" || handle == "" {
			log.Warnf("[scraper] skipping hit with missing title (%q) or handle (%q)", title, handle)
			continue
		}

		sourceID := hit.Str("objectID")
		if sourceID == "" {
			sourceID = handle
		}

		product := &models.Product{
			SourceID:      sourceID,
			Title:         title,
			Price:         decimal.NewFromFloat(hit.Num("bestConditionPrice", "fromPrice", "price")),
			Currency:      "USD",
			ImageURL:      hit.Str("imageURL", "image", "product_image", "imageUrl"),
			Author:        hit.Str("author", "vendor", "artist", "brand"),
			SourceURL:     fmt.Sprintf("%s/products/%s", f.BaseURL, handle),
			CategoryID:    cat.ID,
			LastScrapedAt: now,
		}

		saved, err := f.Store.UpsertProduct(ctx, product)
		if err != nil {
			log.Errorf("[scraper] upsert failed for hit %q: %v", sourceID, err)
			continue
		}
		count++

		if f.Details != nil {
			f.Details.Trigger(saved.ID)
		}
	}

	log.Infof("[scraper] saved %d products for category %q", count, categorySlug)
	return count, nil
}
