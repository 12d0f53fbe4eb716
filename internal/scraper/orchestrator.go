package scraper

import (
	"context"
	"fmt"
	"strconv"

	log "github.com/sirupsen/logrus"

	"bookhub/pkg/models"
)

// Orchestrator is the public entry surface of the pipeline: pure
// sequencing and delegation plus scrape-job bookkeeping. It never
// crashes the host process on a component failure; errors are recorded
// on the job and returned to the caller.
type Orchestrator struct {
	Discovery *NavigationDiscoverer
	Listings  *ListingFetcher
	Details   *DetailScraper
	Jobs      *JobsRepo // optional
}

func (o *Orchestrator) RunNavigationDiscovery(ctx context.Context) error {
	jobID := o.startJob(ctx, models.TargetNavigation, o.Discovery.BaseURL)
	err := o.Discovery.Run(ctx)
	o.finishJob(ctx, jobID, err)
	if err != nil {
		return fmt.Errorf("navigation discovery: %w", err)
	}
	return nil
}

func (o *Orchestrator) RunListingFetch(ctx context.Context, categorySlug string) error {
	jobID := o.startJob(ctx, models.TargetCategory, categorySlug)
	_, err := o.Listings.Run(ctx, categorySlug)
	o.finishJob(ctx, jobID, err)
	return err
}

func (o *Orchestrator) RunDetailScrape(ctx context.Context, productID int64, force bool) error {
	jobID := o.startJob(ctx, models.TargetProduct, strconv.FormatInt(productID, 10))
	err := o.Details.Run(ctx, productID, force)
	o.finishJob(ctx, jobID, err)
	return err
}

func (o *Orchestrator) startJob(ctx context.Context, targetType, targetURL string) string {
	if o.Jobs == nil {
		return ""
	}
	id, err := o.Jobs.Start(ctx, targetType, targetURL)
	if err != nil {
		log.Warnf("[scraper] could not record scrape job: %v", err)
		return ""
	}
	return id
}

func (o *Orchestrator) finishJob(ctx context.Context, jobID string, runErr error) {
	if o.Jobs == nil || jobID == "" {
		return
	}
	if err := o.Jobs.Finish(ctx, jobID, runErr); err != nil {
		log.Warnf("[scraper] could not finish scrape job %s: %v", jobID, err)
	}
}
