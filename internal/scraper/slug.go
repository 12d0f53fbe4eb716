package scraper

import (
	"strings"
	"unicode"
)

// Slugify derives the canonical slug for a title: lowercase, runs of
// non-alphanumeric characters collapsed to a single '-', leading and
// trailing '-' trimmed. The derivation is deterministic so re-running
// discovery never creates duplicate rows for the same title.
func Slugify(title string) string {
	s := strings.ToLower(title)
	var b strings.Builder
	b.Grow(len(s))

	prevDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			prevDash = false
			continue
		}
		if !prevDash {
			b.WriteRune('-')
			prevDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
