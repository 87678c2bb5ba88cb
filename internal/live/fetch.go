package live

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/abduilm/lexuz-bot/internal/httpclient"
)

// maxBodyBytes bounds how much of a page is read before extraction.
const maxBodyBytes = 2 << 20

const userAgent = "Mozilla/5.0 (compatible; lexuz-bot/1.1)"

// PageFetcher retrieves raw page HTML with a bounded timeout.
type PageFetcher struct {
	client *http.Client
}

// NewPageFetcher creates a fetcher with the given per-request timeout.
func NewPageFetcher(timeout time.Duration) *PageFetcher {
	return &PageFetcher{client: httpclient.New(timeout)}
}

// Fetch downloads the page at url and returns its HTML.
func (f *PageFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "uz,ru;q=0.8,en;q=0.6")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", url, err)
	}
	return string(body), nil
}
