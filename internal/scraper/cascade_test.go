package scraper

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookhub/pkg/models"
)

const longDescription = "A sweeping story of ambition and loss set against the glittering backdrop of the Jazz Age, following a mysterious millionaire and the woman he cannot let go."

func TestExtractDetailDescriptionCascade(t *testing.T) {
	// later strategies only win when earlier ones yield nothing long enough
	doc := mustDoc(t, fmt.Sprintf(`
		<div class="product-description">too short</div>
		<div class="rte">%s</div>
	`, longDescription))

	got := ExtractDetail(doc)
	assert.Equal(t, longDescription, got.Description)
}

func TestExtractDetailDescriptionMissing(t *testing.T) {
	got := ExtractDetail(mustDoc(t, `<div class="unrelated">nothing here</div>`))
	assert.Empty(t, got.Description)
}

func TestExtractSpecs(t *testing.T) {
	doc := mustDoc(t, `
		<table class="product-specs">
			<tr><th>ISBN:</th><td>9780141182636</td></tr>
			<tr><th>Publisher</th><td>Penguin</td></tr>
			<tr><th>Binding</th><td>Binding</td></tr>
			<tr><th></th><td>orphan value</td></tr>
		</table>
	`)

	got := ExtractDetail(doc)
	assert.Equal(t, models.ScalarSpec("9780141182636"), got.Specs["ISBN"])
	assert.Equal(t, models.ScalarSpec("Penguin"), got.Specs["Publisher"])
	// identical label/value rows and empty labels are malformed markup
	assert.NotContains(t, got.Specs, "Binding")
	assert.Len(t, got.Specs, 3) // ISBN, Publisher, Recommendations
}

func TestExtractDetailAlwaysCarriesRecommendationsKey(t *testing.T) {
	got := ExtractDetail(mustDoc(t, `<html><body></body></html>`))

	val, ok := got.Specs[models.RecommendationsKey]
	require.True(t, ok)
	assert.True(t, val.IsList())
	assert.Empty(t, val.Recommendations)
}

func TestExtractRecommendationsCapped(t *testing.T) {
	html := `<div class="related-products">`
	for i := 0; i < 8; i++ {
		html += fmt.Sprintf(`<a href="/products/rec-%d">Recommendation %d</a>`, i, i)
	}
	html += `</div>`

	got := ExtractDetail(mustDoc(t, html))
	recs := got.Specs[models.RecommendationsKey].Recommendations
	require.Len(t, recs, 5)
	assert.Equal(t, "Recommendation 0", recs[0].Title)
	assert.Equal(t, "/products/rec-0", recs[0].URL)
}

func TestExtractReviewsFirstWidgetFamilyWins(t *testing.T) {
	// both a generic and a Judge.me widget are present; only the family
	// earlier in the cascade may contribute reviews
	doc := mustDoc(t, `
		<div class="review-item">
			<span class="review-author">Priya K.</span>
			<span class="review-rating" aria-label="Rated 4.5 out of 5 stars"></span>
			<p class="review-text">Gripping from the first page.</p>
		</div>
		<div class="jdgm-rev">
			<span class="jdgm-rev__author">Someone Else</span>
			<p class="jdgm-rev__body">Should be ignored.</p>
		</div>
	`)

	got := ExtractDetail(doc)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, "Priya K.", got.Reviews[0].Author)
	assert.Equal(t, 4.5, got.Reviews[0].Rating)
	assert.Equal(t, "Gripping from the first page.", got.Reviews[0].Text)
}

func TestExtractReviewsVendorWidget(t *testing.T) {
	doc := mustDoc(t, `
		<div class="jdgm-rev">
			<span class="jdgm-rev__author">Tom W.</span>
			<span class="jdgm-rev__rating">4 stars</span>
			<p class="jdgm-rev__body">Dark and clever.</p>
		</div>
	`)

	got := ExtractDetail(doc)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, "Tom W.", got.Reviews[0].Author)
	assert.Equal(t, 4.0, got.Reviews[0].Rating)
}

func TestExtractReviewsDropsEmptyAndDefaultsAuthor(t *testing.T) {
	doc := mustDoc(t, `
		<div class="review-item">
			<span class="review-author">No Body</span>
			<p class="review-text">   </p>
		</div>
		<div class="review-item">
			<p class="review-text">Anonymous but real.</p>
		</div>
	`)

	got := ExtractDetail(doc)
	require.Len(t, got.Reviews, 1)
	assert.Equal(t, "Anonymous", got.Reviews[0].Author)
	assert.Equal(t, 5.0, got.Reviews[0].Rating)
}

func TestParseRating(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"Rated 4.5 out of 5 stars", 4.5},
		{"3 stars", 3},
		{"5", 5},
		{"0 stars", 5},   // zero is unparseable noise, not a rating
		{"45 points", 5}, // clamped
		{"no digits here", 5},
		{"", 5},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parseRating(tc.in), "input %q", tc.in)
	}
}

func TestRatingsAvg(t *testing.T) {
	e := Extracted{Reviews: []models.Review{{Rating: 4}, {Rating: 5}}}
	assert.Equal(t, 4.5, e.RatingsAvg())

	assert.Equal(t, 5.0, Extracted{}.RatingsAvg())
}
