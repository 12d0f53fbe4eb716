package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhub/internal/catalog"
	"bookhub/pkg/database"
	"bookhub/pkg/models"
)

func newTestRouter(t *testing.T) (*gin.Engine, *catalog.Repo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	r := gin.New()
	NewHandler(NewRepo(db)).RegisterRoutes(r.Group("/history"))
	return r, catalog.NewRepo(db)
}

func seedProduct(t *testing.T, repo *catalog.Repo) *models.Product {
	t.Helper()
	ctx := context.Background()

	nav, err := repo.UpsertNavigation(ctx, "Books", "books", time.Now().UTC())
	require.NoError(t, err)
	cat, err := repo.UpsertCategory(ctx, &models.Category{
		Title: "Fiction Books", Slug: "fiction-books", NavigationID: nav.ID, LastScrapedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	p, err := repo.UpsertProduct(ctx, &models.Product{
		SourceID:      "obj-1",
		Title:         "The Great Gatsby",
		Price:         decimal.RequireFromString("12.99"),
		SourceURL:     "https://example.test/products/great-gatsby",
		CategoryID:    cat.ID,
		LastScrapedAt: time.Now().UTC(),
	})
	require.NoError(t, err)
	return p
}

func TestRecordAndListHistory(t *testing.T) {
	router, repo := newTestRouter(t)
	p := seedProduct(t, repo)
	userID := uuid.NewString()

	body, _ := json.Marshal(map[string]any{"user_id": userID, "product_id": p.ID})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/history", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history/"+userID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []models.ViewHistory `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	require.NotNil(t, resp.Items[0].Product)
	assert.Equal(t, "The Great Gatsby", resp.Items[0].Product.Title)
	assert.Equal(t, userID, resp.Items[0].UserID)
}

func TestRecordHistoryRejectsBadInput(t *testing.T) {
	router, repo := newTestRouter(t)
	p := seedProduct(t, repo)

	cases := []map[string]any{
		{"user_id": "not-a-uuid", "product_id": p.ID},
		{"user_id": uuid.NewString(), "product_id": 0},
		{"user_id": "", "product_id": p.ID},
	}
	for _, payload := range cases {
		body, _ := json.Marshal(payload)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/history", strings.NewReader(string(body)))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code, "payload %v", payload)
	}
}

func TestListHistoryMostRecentFirst(t *testing.T) {
	router, repo := newTestRouter(t)
	p := seedProduct(t, repo)
	userID := uuid.NewString()

	historyRepo := NewRepo(repo.DB)
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, historyRepo.Add(ctx, userID, p.ID, base))
	require.NoError(t, historyRepo.Add(ctx, userID, p.ID, base.Add(30*time.Minute)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/history/"+userID, nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []models.ViewHistory `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 2)
	assert.True(t, resp.Items[0].ViewedAt.After(resp.Items[1].ViewedAt))
}
