package scraper

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// DetailPool caps the number of detail scrapes in flight at once.
// Listing fetches fan out one fire-and-forget scrape per hit; without
// a bound, a large category would open one headless-browser session
// per product simultaneously.
type DetailPool struct {
	run func(ctx context.Context, productID int64, force bool) error
	sem *semaphore.Weighted
	wg  sync.WaitGroup
}

func NewDetailPool(maxConcurrent int64, run func(ctx context.Context, productID int64, force bool) error) *DetailPool {
	if maxConcurrent <= 0 {
		maxConcurrent = 3
	}
	return &DetailPool{
		run: run,
		sem: semaphore.NewWeighted(maxConcurrent),
	}
}

// Trigger schedules a non-forced detail scrape for the product and
// returns immediately. Failures are logged, never propagated to the
// caller. The scrape runs on a background context: it is detached from
// the triggering request and runs to its own completion or failure.
func (p *DetailPool) Trigger(productID int64) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		ctx := context.Background()
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer p.sem.Release(1)

		if err := p.run(ctx, productID, false); err != nil {
			log.Errorf("[scraper] detail scrape failed for product %d: %v", productID, err)
		}
	}()
}

// Wait blocks until all triggered scrapes have finished. Used on
// shutdown and in tests.
func (p *DetailPool) Wait() {
	p.wg.Wait()
}
