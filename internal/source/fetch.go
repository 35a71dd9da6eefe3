package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	domainerrors "github.com/sekitap/kitaplik/internal/errors"
)

// ErrNotFound is returned by fetches that hit a 404. Adapters translate it
// into a "no result" answer.
var ErrNotFound = errors.New("page not found")

// The catalog sites serve degraded or empty markup to obvious bots.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
	"Accept-Language": "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7",
	"Connection":      "keep-alive",
}

// Fetcher is the shared HTTP layer for all adapters: one client, one
// per-call timeout, browser-like headers.
type Fetcher struct {
	client *http.Client
}

// NewFetcher creates a Fetcher whose requests time out after the given
// duration.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// Get fetches url and returns the response body. 404 maps to ErrNotFound,
// 429 to a RateLimitError; other non-2xx statuses are plain errors.
func (f *Fetcher) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, domainerrors.NewRateLimitError(fmt.Sprintf("rate limited by %s", req.URL.Host))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("request returned status: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}
