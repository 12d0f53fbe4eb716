package scraper

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Handler exposes the scrape-trigger endpoints. Triggers answer with a
// best-effort status message immediately; the scrape itself runs on a
// background context and completion is observed by re-querying the
// catalog (or the job endpoints), not pushed.
type Handler struct {
	Orc *Orchestrator
}

func NewHandler(orc *Orchestrator) *Handler {
	return &Handler{Orc: orc}
}

// RegisterTriggerRoutes binds the mutation endpoints; mount behind auth.
func (h *Handler) RegisterTriggerRoutes(rg *gin.RouterGroup) {
	rg.POST("/navigation", h.scrapeNavigation)
	rg.POST("/products/:slug", h.scrapeProducts)
	rg.POST("/product/:id/details", h.scrapeDetail)
}

// RegisterJobRoutes binds the read-only job polling endpoints.
func (h *Handler) RegisterJobRoutes(rg *gin.RouterGroup) {
	rg.GET("/jobs", h.listJobs)
	rg.GET("/jobs/:id", h.getJob)
}

func (h *Handler) scrapeNavigation(c *gin.Context) {
	go func() {
		if err := h.Orc.RunNavigationDiscovery(context.Background()); err != nil {
			log.Errorf("[scraper] navigation discovery failed: %v", err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"message": "Navigation scrape started"})
}

func (h *Handler) scrapeProducts(c *gin.Context) {
	slug := c.Param("slug")
	go func() {
		if err := h.Orc.RunListingFetch(context.Background(), slug); err != nil {
			log.Errorf("[scraper] listing fetch for %q failed: %v", slug, err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"message": fmt.Sprintf("Started scraping products for category: %s", slug)})
}

func (h *Handler) scrapeDetail(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	go func() {
		if err := h.Orc.RunDetailScrape(context.Background(), id, true); err != nil {
			log.Errorf("[scraper] forced detail scrape for %d failed: %v", id, err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"message": fmt.Sprintf("Started detail refresh for product %d", id)})
}

func (h *Handler) listJobs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	jobs, err := h.Orc.Jobs.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": jobs})
}

func (h *Handler) getJob(c *gin.Context) {
	job, err := h.Orc.Jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}
