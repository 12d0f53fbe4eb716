package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Fiction Books", "fiction-books"},
		{"Children's Books", "childrens-books"},
		{"Crime & Thriller", "crime-thriller"},
		{"  Rare   Books  ", "rare-books"},
		{"Sci-Fi / Fantasy", "sci-fi-fantasy"},
		{"DVDs", "dvds"},
		{"1984", "1984"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Slugify(tc.in), "input %q", tc.in)
	}
}

func TestSlugifyDeterministic(t *testing.T) {
	// slugifying a slug must be a no-op, otherwise re-discovery would
	// create duplicate rows for the same title
	for _, title := range []string{"Fiction Books", "Children's Books", "Sell Your Books"} {
		once := Slugify(title)
		assert.Equal(t, once, Slugify(once))
	}
}
