package scraper

import (
	"errors"
	"fmt"
)

// ErrNotFound marks a lookup by natural key (category slug, product id)
// that matched nothing. The operation stops with no partial work.
var ErrNotFound = errors.New("not found")

// ErrExtractionSkipped marks a single field or element that could not
// be extracted. It is never fatal: callers log it and fall back to a
// default or omit the field.
var ErrExtractionSkipped = errors.New("extraction skipped")

// NavigationError is a page-level failure: navigation timeout, DNS
// failure, or a non-2xx response after redirects. It aborts only the
// operation that issued the fetch.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// UpstreamError is a failed call to the hosted search index.
type UpstreamError struct {
	Service string
	Status  int
	Msg     string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.Status, e.Msg)
}
