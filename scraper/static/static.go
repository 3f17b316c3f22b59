// Package static fetches listing search pages over plain HTTP with colly,
// for sites that render their results server-side.
package static

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"investimmo-bot/config"
	"investimmo-bot/models"
	"investimmo-bot/scraper"
	"investimmo-bot/scraper/cards"
	"investimmo-bot/utils"
)

const (
	name      = "static"
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Options configures the static source.
type Options struct {
	Pages          int
	MaxConcurrency int
	RateLimitMs    int
	Timeout        time.Duration
}

// Source visits result pages with a colly collector.
type Source struct {
	opts   Options
	sel    *config.Selectors
	logger *utils.Logger
}

// New creates a static Source.
func New(opts Options, sel *config.Selectors, logger *utils.Logger) *Source {
	if opts.Pages < 1 {
		opts.Pages = 1
	}
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Source{opts: opts, sel: sel, logger: logger}
}

func (s *Source) Name() string { return name }

func (s *Source) Fetch(ctx context.Context, q scraper.Query) ([]*models.RawListing, error) {
	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		colly.Async(true),
	)
	c.SetRequestTimeout(s.opts.Timeout)
	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: s.opts.MaxConcurrency,
		RandomDelay: time.Duration(s.opts.RateLimitMs) * time.Millisecond,
	}); err != nil {
		return nil, fmt.Errorf("static: limit rule: %w", err)
	}

	var (
		mu    sync.Mutex
		pages = make([][]*models.RawListing, s.opts.Pages)
		errs  []error
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.6")
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		pageURL := e.Request.URL.String()
		found := cards.Extract(e.DOM, pageURL, s.sel, name)
		s.logger.Debug("[static] %s: %d cards", pageURL, len(found))

		page, ok := e.Request.Ctx.GetAny("page").(int)
		if !ok || page < 1 || page > len(pages) {
			return
		}
		mu.Lock()
		pages[page-1] = found
		mu.Unlock()
	})

	c.OnError(func(r *colly.Response, err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, fmt.Errorf("static: %s (status %d): %w", r.Request.URL, r.StatusCode, err))
	})

	for page := 1; page <= s.opts.Pages; page++ {
		pageURL := scraper.SearchURL(s.sel.SearchURL, q, page)
		reqCtx := colly.NewContext()
		reqCtx.Put("page", page)
		if err := c.Request(http.MethodGet, pageURL, nil, reqCtx, nil); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("static: visit %s: %w", pageURL, err))
			mu.Unlock()
		}
	}
	c.Wait()
	listings := scraper.MergePages(pages)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		if len(listings) == 0 {
			return nil, errors.Join(errs...)
		}
		s.logger.Warn("[static] Some pages failed: %v", errors.Join(errs...))
	}

	if q.Limit > 0 && len(listings) > q.Limit {
		listings = listings[:q.Limit]
	}
	s.logger.Info("[static] Collected %d listings for %s", len(listings), q.City)
	return listings, nil
}
