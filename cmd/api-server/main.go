package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"bookhub/internal/auth"
	"bookhub/internal/catalog"
	"bookhub/internal/history"
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

	// prices serialize as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

func main() {
	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "db_error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "db": "ok"})
	})

	// Catalog (public, read-only)
	repo := catalog.NewRepo(db)
	catalog.NewHandler(repo).RegisterRoutes(router)

	// View history (public)
	historyHandler := history.NewHandler(history.NewRepo(db))
	historyHandler.RegisterRoutes(router.Group("/history"))

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokens := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	auth.NewHandler(tokens, authCfg.AdminKey).RegisterRoutes(router.Group("/auth"))

	// Scraper pipeline
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

	scraperHandler := scraper.NewHandler(orc)
	triggers := router.Group("/scraper")
	triggers.Use(auth.AdminMiddleware(tokens))
	scraperHandler.RegisterTriggerRoutes(triggers)
	scraperHandler.RegisterJobRoutes(router.Group("/scraper"))

	httpSrv := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP API server listening on :8080")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Infof("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Errorf("server error: %v", err)
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("http shutdown error: %v", err)
	}

	// let in-flight detail scrapes finish their writes
	pool.Wait()
	log.Info("server stopped")
}
