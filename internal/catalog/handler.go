package catalog

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// Handler serves the read-only browsing API over the catalog. All
// endpoints are public; mutations happen only through the scraper.
type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/navigation", h.listNavigation)
	r.GET("/categories/:slug", h.categoryBySlug)
	r.GET("/products/:id", h.productByID)
	r.GET("/search", h.search)
}

func (h *Handler) listNavigation(c *gin.Context) {
	navs, err := h.Repo.ListNavigations(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": navs})
}

func (h *Handler) categoryBySlug(c *gin.Context) {
	slug := strings.TrimSpace(c.Param("slug"))
	ctx := c.Request.Context()

	cat, err := h.Repo.FindCategoryBySlug(ctx, slug)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if cat == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}

	page := parseInt(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	limit := parseInt(c.Query("limit"), 20)

	subcats, err := h.Repo.ListSubcategories(ctx, cat.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}

	total, err := h.Repo.CountProductsByCategory(ctx, cat.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	products, err := h.Repo.ListProductsByCategory(ctx, cat.ID, limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category":      cat,
		"subcategories": subcats,
		"products":      products,
		"total":         total,
		"page":          page,
		"limit":         limit,
	})
}

func (h *Handler) productByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	ctx := c.Request.Context()

	p, err := h.Repo.FindProductByID(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	reviews, err := h.Repo.ListReviewsByProduct(ctx, p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	p.Reviews = reviews

	c.JSON(http.StatusOK, p)
}

func (h *Handler) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "q required"})
		return
	}

	page := parseInt(c.Query("page"), 1)
	if page < 1 {
		page = 1
	}
	limit := parseInt(c.Query("limit"), 20)

	items, total, err := h.Repo.SearchProducts(c.Request.Context(), q, limit, (page-1)*limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
