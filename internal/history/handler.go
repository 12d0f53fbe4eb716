package history

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler records and lists product views per anonymous browser
// session. The user id is a client-generated UUID persisted across
// reloads; there are no accounts.
type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.add)
	rg.GET("/:userId", h.listByUser)
}

type addReq struct {
	UserID    string `json:"user_id"`
	ProductID int64  `json:"product_id"`
}

func (h *Handler) add(c *gin.Context) {
	var req addReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if _, err := uuid.Parse(strings.TrimSpace(req.UserID)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id must be a UUID"})
		return
	}
	if req.ProductID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id required"})
		return
	}

	if err := h.Repo.Add(c.Request.Context(), req.UserID, req.ProductID, time.Now().UTC()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "recorded"})
}

func (h *Handler) listByUser(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	if _, err := uuid.Parse(userID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user id must be a UUID"})
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, err := h.Repo.ListByUser(c.Request.Context(), userID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
