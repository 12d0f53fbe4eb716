package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

// FetchOptions describes the interaction script run after navigation:
// scripted scroll passes with interleaved waits to trigger lazy-loaded
// content, plus a final settle wait.
type FetchOptions struct {
	ScrollPasses int
	ScrollDelay  time.Duration
	Settle       time.Duration
}

// Fetcher renders a single URL and returns the settled DOM.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts FetchOptions) (*goquery.Document, error)
}

// BrowserFetcher drives a headless Chrome session per fetch. Sessions
// are not shared across operations. Before the first fetch of a crawl
// session it probes the site's robots policy; the policy is advisory
// only, a disallow logs a warning and the fetch proceeds.
type BrowserFetcher struct {
	BaseURL string        // site root, used for the robots probe
	Timeout time.Duration // bounded navigation timeout
	Client  *http.Client  // robots probe only

	robotsOnce sync.Once
}

func NewBrowserFetcher(baseURL string, timeout time.Duration) *BrowserFetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &BrowserFetcher{
		BaseURL: baseURL,
		Timeout: timeout,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *BrowserFetcher) Fetch(ctx context.Context, url string, opts FetchOptions) (*goquery.Document, error) {
	f.robotsOnce.Do(func() { f.checkRobots(ctx) })

	ctx, cancel := context.WithTimeout(ctx, f.Timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.NoSandbox,
	)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	actions := []chromedp.Action{chromedp.Navigate(url)}
	for i := 1; i <= opts.ScrollPasses; i++ {
		js := fmt.Sprintf(`window.scrollTo(0, document.body.scrollHeight * %d / %d);`, i, opts.ScrollPasses)
		actions = append(actions, chromedp.Evaluate(js, nil))
		if opts.ScrollDelay > 0 {
			actions = append(actions, chromedp.Sleep(opts.ScrollDelay))
		}
	}
	if opts.Settle > 0 {
		actions = append(actions, chromedp.Sleep(opts.Settle))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return nil, &NavigationError{URL: url, Err: err}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &NavigationError{URL: url, Err: err}
	}
	return doc, nil
}

// checkRobots issues a best-effort GET against the robots policy. A
// root-level disallow is logged, not enforced.
func (f *BrowserFetcher) checkRobots(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/robots.txt", nil)
	if err != nil {
		return
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		log.Debugf("[scraper] robots.txt probe failed: %v", err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if strings.Contains(string(body), "Disallow: /") {
		log.Warn("[scraper] robots.txt may disallow scraping, proceeding with caution")
	}
}
