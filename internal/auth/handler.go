package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Handler exchanges the operator's admin key for a short-lived JWT.
// There are no user accounts; the key is configured via environment.
type Handler struct {
	Tokens  TokenService
	keyHash []byte
}

func NewHandler(tokens TokenService, adminKey string) *Handler {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminKey), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash admin key: %v", err)
	}
	return &Handler{Tokens: tokens, keyHash: hash}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/token", h.issueToken)
}

type tokenReq struct {
	AdminKey string `json:"admin_key"`
}

func (h *Handler) issueToken(c *gin.Context) {
	var req tokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if err := bcrypt.CompareHashAndPassword(h.keyHash, []byte(req.AdminKey)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
		return
	}

	token, exp, err := h.Tokens.Sign(RoleAdmin)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token issue failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": exp,
	})
}
