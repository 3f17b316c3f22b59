// Package browser loads listing search pages in headless Chrome and reads
// them with the configured card selectors.
package browser

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"investimmo-bot/config"
	"investimmo-bot/models"
	"investimmo-bot/scraper"
	"investimmo-bot/scraper/cards"
	"investimmo-bot/utils"
)

const name = "browser"

// Options configures the browser source.
type Options struct {
	ChromeBin      string
	Pages          int
	MaxConcurrency int
	RateLimitMs    int
	MaxRetries     int
	PageTimeout    time.Duration
}

// Source drives a headless Chrome instance per Fetch.
type Source struct {
	opts   Options
	sel    *config.Selectors
	logger *utils.Logger
	retry  *utils.RetryConfig
}

// New creates a browser Source.
func New(opts Options, sel *config.Selectors, logger *utils.Logger) *Source {
	if opts.Pages < 1 {
		opts.Pages = 1
	}
	if opts.PageTimeout <= 0 {
		opts.PageTimeout = 60 * time.Second
	}
	return &Source{
		opts:   opts,
		sel:    sel,
		logger: logger,
		retry: &utils.RetryConfig{
			MaxAttempts: opts.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
	}
}

func (s *Source) Name() string { return name }

// Fetch loads up to Pages result pages and returns their cards, skipping
// URLs already seen on an earlier page.
func (s *Source) Fetch(ctx context.Context, q scraper.Query) ([]*models.RawListing, error) {
	chromeBin := s.opts.ChromeBin
	if chromeBin == "" {
		chromeBin = findChromeBinary()
	}
	s.logger.Info("[browser] Using browser binary: %s", chromeBin)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 "+
			"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
	)
	if chromeBin != "" {
		opts = append(opts, chromedp.ExecPath(chromeBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelBrowser()

	// Start the browser before tabs are opened concurrently.
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("browser: start chrome: %w", err)
	}

	// Pages complete in any order; each one fills its own slot so the merge
	// below is always in page order.
	var (
		pages = make([][]*models.RawListing, s.opts.Pages)
		pool  = utils.NewWorkerPool(s.opts.MaxConcurrency, s.opts.RateLimitMs)
	)

	for page := 1; page <= s.opts.Pages; page++ {
		pageURL := scraper.SearchURL(s.sel.SearchURL, q, page)
		pageNum := page
		pool.Submit(func() error {
			found, err := s.scrapePage(browserCtx, pageURL, pageNum)
			if err != nil {
				return err
			}
			pages[pageNum-1] = found
			return nil
		})
	}

	err := pool.Wait()
	listings := scraper.MergePages(pages)
	if err != nil && len(listings) == 0 {
		return nil, err
	}
	if err != nil {
		s.logger.Warn("[browser] Some pages failed: %v", err)
	}

	if q.Limit > 0 && len(listings) > q.Limit {
		listings = listings[:q.Limit]
	}
	s.logger.Info("[browser] Collected %d listings for %s", len(listings), q.City)
	return listings, nil
}

func (s *Source) scrapePage(browserCtx context.Context, pageURL string, pageNum int) ([]*models.RawListing, error) {
	var html string

	err := s.retry.Do(browserCtx, fmt.Sprintf("browser-page-%d", pageNum), func() error {
		tabCtx, cancel := chromedp.NewContext(browserCtx)
		defer cancel()

		tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.opts.PageTimeout)
		defer cancelTimeout()

		wait := chromedp.WaitReady("body", chromedp.ByQuery)
		if s.sel.WaitFor != "" {
			wait = chromedp.WaitVisible(s.sel.WaitFor, chromedp.ByQuery)
		}

		return chromedp.Run(tabCtx,
			network.Enable(),
			network.SetExtraHTTPHeaders(network.Headers{
				"Accept-Language": "fr-FR,fr;q=0.9,en;q=0.6",
			}),
			chromedp.Navigate(pageURL),
			wait,
			chromedp.OuterHTML("html", &html, chromedp.ByQuery),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("browser: page %d (%s): %w", pageNum, pageURL, err)
	}

	found, err := cards.FromHTML(html, pageURL, s.sel, name)
	if err != nil {
		return nil, fmt.Errorf("browser: parse page %d: %w", pageNum, err)
	}
	s.logger.Debug("[browser] Page %d: %d cards", pageNum, len(found))
	return found, nil
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	for _, bin := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(bin); err == nil {
			return path
		}
	}

	for _, p := range []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium-browser",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}
