package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"bookhub/internal/catalog"
	"bookhub/internal/scraper"
	"bookhub/pkg/database"
	"bookhub/pkg/utils"
)

func init() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log.SetOutput(os.Stdout)
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	op := flag.String("op", "navigation", "operation to run: navigation, listing or detail")
	slug := flag.String("slug", "", "category slug (listing)")
	productID := flag.Int64("id", 0, "product id (detail)")
	force := flag.Bool("force", false, "bypass the freshness gate (detail)")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall run timeout")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	repo := catalog.NewRepo(db)
	scrapeCfg := utils.LoadScraperConfig()
	fetcher := scraper.NewBrowserFetcher(scrapeCfg.BaseURL, scrapeCfg.NavTimeout)

	details := &scraper.DetailScraper{
		Store:    repo,
		Fetcher:  fetcher,
		FreshFor: scrapeCfg.FreshFor,
		MinDelay: scrapeCfg.MinScrapeDelay,
		MaxDelay: scrapeCfg.MaxScrapeDelay,
	}
	pool := scraper.NewDetailPool(scrapeCfg.MaxDetailJobs, details.Run)
	orc := &scraper.Orchestrator{
		Discovery: &scraper.NavigationDiscoverer{Store: repo, Fetcher: fetcher, BaseURL: scrapeCfg.BaseURL},
		Listings: &scraper.ListingFetcher{
			Store:   repo,
			Index:   scraper.NewSearchIndexClient(utils.LoadSearchConfig()),
			Details: pool,
			BaseURL: scrapeCfg.BaseURL,
		},
		Details: details,
		Jobs:    scraper.NewJobsRepo(db),
	}

	var err error
	switch *op {
	case "navigation":
		err = orc.RunNavigationDiscovery(ctx)
	case "listing":
		if *slug == "" {
			log.Fatal("listing requires -slug")
		}
		err = orc.RunListingFetch(ctx, *slug)
		// listing triggers fire-and-forget detail scrapes; wait for
		// them before exiting the process
		pool.Wait()
	case "detail":
		if *productID <= 0 {
			log.Fatal("detail requires -id")
		}
		err = orc.RunDetailScrape(ctx, *productID, *force)
	default:
		log.Fatalf("unknown op %q", *op)
	}

	if err != nil {
		log.Fatalf("scrape failed: %v", err)
	}
	log.Info("scrape finished")
}
