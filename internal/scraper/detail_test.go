package scraper

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhub/internal/catalog"
	"bookhub/pkg/models"
)

const detailPage = `
	<div class="product-description">A sweeping story of ambition and loss set against the glittering backdrop of the Jazz Age.</div>
	<table class="product-specs">
		<tr><th>ISBN</th><td>9780141182636</td></tr>
	</table>
	<div class="review-item">
		<span class="review-author">Priya K.</span>
		<span class="review-rating" aria-label="4 out of 5 stars"></span>
		<p class="review-text">Gripping from the first page.</p>
	</div>
	<div class="review-item">
		<span class="review-author">Tom W.</span>
		<span class="review-rating" aria-label="5 out of 5 stars"></span>
		<p class="review-text">A masterpiece.</p>
	</div>
`

func seedProduct(t *testing.T, repo *catalog.Repo, sourceURL string, scrapedAt time.Time) *models.Product {
	t.Helper()
	cat := seedCategory(t, repo, "Fiction Books", "fiction-books")

	p, err := repo.UpsertProduct(context.Background(), &models.Product{
		SourceID:      "obj-1",
		Title:         "The Great Gatsby",
		Price:         decimal.RequireFromString("12.99"),
		SourceURL:     sourceURL,
		CategoryID:    cat.ID,
		LastScrapedAt: scrapedAt,
	})
	require.NoError(t, err)
	return p
}

func TestDetailScrapeWritesDetailAndReviews(t *testing.T) {
	repo := newTestStore(t)
	now := time.Now().UTC()
	p := seedProduct(t, repo, "https://example.test/products/great-gatsby", now)

	fetcher := &fakeFetcher{pages: map[string]string{p.SourceURL: detailPage}}
	s := &DetailScraper{Store: repo, Fetcher: fetcher, Now: func() time.Time { return now }}

	ctx := context.Background()
	require.NoError(t, s.Run(ctx, p.ID, false))
	assert.Equal(t, 1, fetcher.calls)

	got, err := repo.FindProductByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Detail)
	assert.Contains(t, got.Detail.Description, "Jazz Age")
	assert.Equal(t, models.ScalarSpec("9780141182636"), got.Detail.Specs["ISBN"])
	assert.Equal(t, 4.5, got.Detail.RatingsAvg)
	assert.Equal(t, 2, got.Detail.ReviewsCount)

	reviews, err := repo.ListReviewsByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestDetailScrapeFreshnessGate(t *testing.T) {
	repo := newTestStore(t)
	now := time.Now().UTC()
	p := seedProduct(t, repo, "https://example.test/products/great-gatsby", now)

	fetcher := &fakeFetcher{pages: map[string]string{p.SourceURL: detailPage}}
	s := &DetailScraper{Store: repo, Fetcher: fetcher, Now: func() time.Time { return now }}

	ctx := context.Background()
	require.NoError(t, s.Run(ctx, p.ID, false))
	require.Equal(t, 1, fetcher.calls)

	// fresh detail, not forced: skipped with zero fetches
	require.NoError(t, s.Run(ctx, p.ID, false))
	assert.Equal(t, 1, fetcher.calls)

	// forced: fetched again, but reviews are deduplicated
	require.NoError(t, s.Run(ctx, p.ID, true))
	assert.Equal(t, 2, fetcher.calls)

	reviews, err := repo.ListReviewsByProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestDetailScrapeStaleProductRefetched(t *testing.T) {
	repo := newTestStore(t)
	now := time.Now().UTC()
	p := seedProduct(t, repo, "https://example.test/products/great-gatsby", now.Add(-48*time.Hour))

	fetcher := &fakeFetcher{pages: map[string]string{p.SourceURL: detailPage}}
	s := &DetailScraper{Store: repo, Fetcher: fetcher, Now: func() time.Time { return now }}

	ctx := context.Background()
	require.NoError(t, s.Run(ctx, p.ID, false))
	require.Equal(t, 1, fetcher.calls)

	// detail exists but last_scraped_at predates the freshness window;
	// the first run touched the product, so only a stale timestamp
	// triggers the second fetch
	require.NoError(t, s.Run(ctx, p.ID, false))
	assert.Equal(t, 1, fetcher.calls)

	require.NoError(t, repo.TouchProduct(ctx, p.ID, now.Add(-25*time.Hour)))
	require.NoError(t, s.Run(ctx, p.ID, false))
	assert.Equal(t, 2, fetcher.calls)
}

func TestDetailScrapeFailedFetchLeavesDataUntouched(t *testing.T) {
	repo := newTestStore(t)
	now := time.Now().UTC()
	p := seedProduct(t, repo, "https://example.test/products/great-gatsby", now.Add(-48*time.Hour))

	fetcher := &fakeFetcher{pages: map[string]string{p.SourceURL: detailPage}}
	s := &DetailScraper{Store: repo, Fetcher: fetcher, Now: func() time.Time { return now }}

	ctx := context.Background()
	require.NoError(t, s.Run(ctx, p.ID, true))

	fetcher.err = &NavigationError{URL: p.SourceURL, Err: context.DeadlineExceeded}
	err := s.Run(ctx, p.ID, true)
	require.Error(t, err)

	got, err := repo.FindProductByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Detail)
	assert.Contains(t, got.Detail.Description, "Jazz Age")
	assert.Equal(t, 2, got.Detail.ReviewsCount)
}

func TestDetailScrapeUnknownProductIsNoop(t *testing.T) {
	repo := newTestStore(t)
	fetcher := &fakeFetcher{}
	s := &DetailScraper{Store: repo, Fetcher: fetcher}

	require.NoError(t, s.Run(context.Background(), 99999, true))
	assert.Zero(t, fetcher.calls)
}

func TestDetailScrapeNoReviewWidget(t *testing.T) {
	repo := newTestStore(t)
	now := time.Now().UTC()
	p := seedProduct(t, repo, "https://example.test/products/great-gatsby", now)

	fetcher := &fakeFetcher{pages: map[string]string{
		p.SourceURL: `<div class="product-description">A sweeping story of ambition and loss set against the glittering backdrop of the Jazz Age.</div>`,
	}}
	s := &DetailScraper{Store: repo, Fetcher: fetcher, Now: func() time.Time { return now }}

	ctx := context.Background()
	require.NoError(t, s.Run(ctx, p.ID, true))

	got, err := repo.FindProductByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Detail)
	assert.Equal(t, 0, got.Detail.ReviewsCount)
	assert.Equal(t, 5.0, got.Detail.RatingsAvg) // documented default
}
