package scraper

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"bookhub/internal/catalog"
	"bookhub/pkg/database"
)

func newTestStore(t *testing.T) *catalog.Repo {
	t.Helper()

	db, err := database.Open(database.Config{Path: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.Migrate(db))
	return catalog.NewRepo(db)
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

// fakeFetcher serves canned HTML per URL and counts fetches.
type fakeFetcher struct {
	pages map[string]string
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(_ context.Context, url string, _ FetchOptions) (*goquery.Document, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	html, ok := f.pages[url]
	if !ok {
		return nil, &NavigationError{URL: url, Err: ErrNotFound}
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}
