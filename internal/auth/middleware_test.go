package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGuardedRouter(ts TokenService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	guarded := r.Group("/scraper")
	guarded.Use(AdminMiddleware(ts))
	guarded.POST("/navigation", func(c *gin.Context) {
		c.JSON(http.StatusAccepted, gin.H{"message": "ok"})
	})
	return r
}

func post(router *gin.Engine, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/scraper/navigation", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAdminMiddleware(t *testing.T) {
	ts := TokenService{Secret: []byte("test-secret"), Issuer: "bookhub", Duration: time.Hour}
	router := newGuardedRouter(ts)

	assert.Equal(t, http.StatusUnauthorized, post(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, post(router, "garbage").Code)

	token, _, err := ts.Sign(RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, post(router, token).Code)

	viewer, _, err := ts.Sign("viewer")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, post(router, viewer).Code)

	other := TokenService{Secret: []byte("different"), Issuer: "bookhub", Duration: time.Hour}
	forged, _, err := other.Sign(RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, post(router, forged).Code)
}
