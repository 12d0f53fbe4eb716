package scraper

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	log "github.com/sirupsen/logrus"

	"bookhub/pkg/models"
)

// DetailScraper deep-scrapes one product page and reconciles the
// result into ProductDetail + Review rows.
//
// The freshness gate is the cost-control invariant: a product with an
// existing detail scraped within FreshFor is skipped entirely, with
// zero network fetches, unless force is set. The gate is keyed on
// Product.LastScrapedAt itself; there is deliberately no separate
// cache layer.
type DetailScraper struct {
	Store   Store
	Fetcher Fetcher

	FreshFor time.Duration // default 24h
	MinDelay time.Duration // politeness delay bounds
	MaxDelay time.Duration
	Now      func() time.Time
}

func (s *DetailScraper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *DetailScraper) freshFor() time.Duration {
	if s.FreshFor > 0 {
		return s.FreshFor
	}
	return 24 * time.Hour
}

// Run scrapes details for one product. An unknown product id is a
// no-op. Writes happen only after extraction fully succeeds, so a
// failed fetch never corrupts existing detail data.
func (s *DetailScraper) Run(ctx context.Context, productID int64, force bool) error {
	product, err := s.Store.FindProductByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		log.Debugf("[scraper] detail scrape for unknown product %d, nothing to do", productID)
		return nil
	}

	now := s.now()
	if !force && product.Detail != nil && now.Sub(product.LastScrapedAt) < s.freshFor() {
		log.Infof("[scraper] skipping detail scrape for %q (recently updated)", product.Title)
		return nil
	}

	log.Infof("[scraper] deep scraping details for %q", product.Title)

	if err := s.politenessDelay(ctx); err != nil {
		return err
	}

	doc, err := s.Fetcher.Fetch(ctx, product.SourceURL, FetchOptions{
		ScrollPasses: 2,
		ScrollDelay:  time.Second,
		Settle:       2 * time.Second,
	})
	if err != nil {
		return fmt.Errorf("detail fetch for product %d: %w", productID, err)
	}

	extracted := ExtractDetail(doc)

	detail := &models.ProductDetail{
		ProductID:    product.ID,
		Description:  extracted.Description,
		Specs:        extracted.Specs,
		RatingsAvg:   extracted.RatingsAvg(),
		ReviewsCount: len(extracted.Reviews),
	}
	if err := s.Store.UpsertProductDetail(ctx, detail); err != nil {
		return fmt.Errorf("save detail for product %d: %w", productID, err)
	}

	for _, rv := range extracted.Reviews {
		rv.ProductID = product.ID
		rv.CreatedAt = now
		if _, err := s.Store.InsertReview(ctx, &rv); err != nil {
			log.Warnf("[scraper] saving review by %q failed: %v", rv.Author, err)
		}
	}

	if err := s.Store.TouchProduct(ctx, product.ID, now); err != nil {
		return fmt.Errorf("touch product %d: %w", productID, err)
	}

	log.Infof("[scraper] updated details for %q (%d reviews)", product.Title, len(extracted.Reviews))
	return nil
}

// politenessDelay sleeps a randomized interval before hitting the
// source site. Zero bounds disable the delay.
func (s *DetailScraper) politenessDelay(ctx context.Context) error {
	if s.MaxDelay <= 0 {
		return nil
	}
	d := s.MinDelay
	if spread := s.MaxDelay - s.MinDelay; spread > 0 {
		d += time.Duration(rand.Int63n(int64(spread)))
	}

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
