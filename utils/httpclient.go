package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const userAgent = "investimmo-bot/1.0 (+https://github.com/investimmo-bot)"

// HTTPClient is the JSON client shared by the public API adapters
// (geocoding, DVF, SNCF). Requests are rate limited and retried.
type HTTPClient struct {
	client  *http.Client
	limiter *rate.Limiter
	retry   *RetryConfig
}

// HTTPClientOptions configures NewHTTPClient.
type HTTPClientOptions struct {
	Timeout    time.Duration
	RatePerSec float64
	MaxRetries int
	RetryDelay time.Duration
	Logger     *Logger
}

// NewHTTPClient builds an HTTPClient. A non-positive RatePerSec disables
// rate limiting.
func NewHTTPClient(opts HTTPClientOptions) *HTTPClient {
	limit := rate.Inf
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = time.Second
	}
	return &HTTPClient{
		client:  &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, 1),
		retry: &RetryConfig{
			MaxAttempts: opts.MaxRetries,
			BaseDelay:   opts.RetryDelay,
			Logger:      opts.Logger,
		},
	}
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// GetJSON issues a GET request and decodes the JSON body into out.
// Server errors (5xx) and transport errors are retried; 4xx are not.
func (c *HTTPClient) GetJSON(ctx context.Context, url string, out any, decorate func(*http.Request)) error {
	var permanent error

	err := c.retry.Do(ctx, "GET "+url, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			permanent = err
			return nil
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			permanent = err
			return nil
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", userAgent)
		if decorate != nil {
			decorate(req)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			_, _ = io.Copy(io.Discard, resp.Body)
			return &StatusError{URL: url, StatusCode: resp.StatusCode}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			_, _ = io.Copy(io.Discard, resp.Body)
			permanent = &StatusError{URL: url, StatusCode: resp.StatusCode}
			return nil
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			permanent = fmt.Errorf("decode %s: %w", url, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return permanent
}
