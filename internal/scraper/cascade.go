package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"bookhub/pkg/models"
)

// The source site's markup drifts between redesigns and widget vendors,
// so every extraction runs through an ordered cascade of strategies and
// short-circuits on the first structurally valid result. The cascades
// are data, not branching code; extend them when the site changes.

// textStrategy extracts the text of the first element matching the
// selector, valid only when it exceeds minLen. The length guard keeps
// empty or placeholder containers from winning the cascade.
type textStrategy struct {
	selector string
	minLen   int
}

var descriptionCascade = []textStrategy{
	{".product-description", 50},
	{".description", 50},
	{"#description", 50},
	{`[data-test-id="product-description"]`, 50},
	{".rte", 50}, // Shopify default
	{".product__description", 50},
	{"#product-details-tab-content-0", 50},
}

func firstText(doc *goquery.Document, cascade []textStrategy) string {
	for _, s := range cascade {
		text := strings.TrimSpace(doc.Find(s.selector).First().Text())
		if len(text) > s.minLen {
			return text
		}
	}
	return ""
}

// Spec rows: label/value pairs from the first table or list structure
// that yields any.
const (
	specRowSelector   = `.product-specs tr, .attributes tr, .specification-table tr, .product-info-list li, [data-test-id="product-specs"] tr, .product-accordion__row`
	specLabelSelector = `th, .label, span:first-child, dt`
	specValueSelector = `td, .value, span:last-child, dd`
)

func extractSpecs(doc *goquery.Document) models.SpecMap {
	specs := models.SpecMap{}
	doc.Find(specRowSelector).Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find(specLabelSelector).First().Text())
		value := strings.TrimSpace(row.Find(specValueSelector).First().Text())
		// identical label/value means a malformed row, not real data
		if label == "" || value == "" || label == value {
			return
		}
		specs[strings.TrimSuffix(label, ":")] = models.ScalarSpec(value)
	})
	return specs
}

// reviewWidget is one review-widget vendor's markup family. Families
// are tried in order and the first one matching at least one element
// wins; families are never merged, only one vendor's markup is trusted
// per page.
type reviewWidget struct {
	container string
	author    string
	rating    string
	text      string
}

var reviewWidgetCascade = []reviewWidget{
	{container: ".review-item"},
	{container: ".customer-review"},
	{container: ".yotpo-review", author: ".yotpo-user-name", rating: ".yotpo-review-stars", text: ".yotpo-main-content"},
	{container: ".jdgm-rev", author: ".jdgm-rev__author", rating: ".jdgm-rev__rating", text: ".jdgm-rev__body"},
	{container: ".spr-review", author: ".spr-review-header-byline strong", rating: ".spr-starratings", text: ".spr-review-content-body"},
	{container: ".stamped-review"},
	{container: ".okendo-review"},
	{container: ".product-accordion__review"},
}

const (
	genericAuthorSelector = ".review-author, .name"
	genericRatingSelector = ".review-rating, .rating"
	genericTextSelector   = ".review-text, .content"
)

func extractReviews(doc *goquery.Document) []models.Review {
	for _, w := range reviewWidgetCascade {
		elems := doc.Find(w.container)
		if elems.Length() == 0 {
			continue
		}

		var reviews []models.Review
		elems.Each(func(_ int, el *goquery.Selection) {
			if rev, ok := extractReview(el, w); ok {
				reviews = append(reviews, rev)
			}
		})
		return reviews
	}
	return nil
}

func extractReview(el *goquery.Selection, w reviewWidget) (models.Review, bool) {
	text := strings.TrimSpace(el.Find(joinSelectors(w.text, genericTextSelector)).First().Text())
	if text == "" {
		// a review without a body is noise
		return models.Review{}, false
	}

	author := strings.TrimSpace(el.Find(joinSelectors(w.author, genericAuthorSelector)).First().Text())
	if author == "" {
		author = "Anonymous"
	}

	ratingEl := el.Find(joinSelectors(w.rating, genericRatingSelector)).First()
	ratingText, ok := ratingEl.Attr("aria-label")
	if !ok || strings.TrimSpace(ratingText) == "" {
		ratingText = ratingEl.Text()
	}

	return models.Review{
		Author: author,
		Rating: parseRating(ratingText),
		Text:   text,
	}, true
}

func joinSelectors(specific, generic string) string {
	if specific == "" {
		return generic
	}
	return specific + ", " + generic
}

var ratingPattern = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)

// parseRating reads the first decimal number out of an aria-label or
// inline text ("Rated 4.5 out of 5 stars"). Half-steps are allowed;
// anything unparseable defaults to 5.
func parseRating(s string) float64 {
	m := ratingPattern.FindString(s)
	if m == "" {
		return 5
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || v <= 0 {
		return 5
	}
	if v > 5 {
		return 5
	}
	return v
}

const recommendationSelector = ".recommended-products a, .related-products a, .upsell a"

const maxRecommendations = 5

func extractRecommendations(doc *goquery.Document) []models.Recommendation {
	recs := []models.Recommendation{}
	doc.Find(recommendationSelector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		title := strings.TrimSpace(a.Text())
		href, _ := a.Attr("href")
		if title != "" && href != "" {
			recs = append(recs, models.Recommendation{Title: title, URL: href})
		}
		return len(recs) < maxRecommendations
	})
	return recs
}

// Extracted is the result of one successful detail-page extraction
// pass. Aggregates are derived from this snapshot only, never from
// previously stored reviews.
type Extracted struct {
	Description string
	Specs       models.SpecMap
	Reviews     []models.Review
}

// RatingsAvg is the arithmetic mean of the scraped review ratings, or
// 5 when no reviews were found (documented default).
func (e Extracted) RatingsAvg() float64 {
	if len(e.Reviews) == 0 {
		return 5
	}
	var sum float64
	for _, r := range e.Reviews {
		sum += r.Rating
	}
	return sum / float64(len(e.Reviews))
}

// ExtractDetail runs every cascade against a rendered product page.
// It is pure: callers persist the result only when the whole pass
// succeeded, so a failed fetch can never corrupt stored detail data.
func ExtractDetail(doc *goquery.Document) Extracted {
	specs := extractSpecs(doc)
	specs[models.RecommendationsKey] = models.RecommendationSpec(extractRecommendations(doc))

	return Extracted{
		Description: firstText(doc, descriptionCascade),
		Specs:       specs,
		Reviews:     extractReviews(doc),
	}
}
