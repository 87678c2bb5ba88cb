// Package live implements the live-search deployment variant: a
// site-restricted web search followed by page fetching and main-content
// extraction within a character budget.
package live

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/abduilm/lexuz-bot/internal/domain"
	"github.com/abduilm/lexuz-bot/internal/httpclient"
)

// SearchConfig configures the Custom Search JSON API client. Credentials are
// read from the environment variables named here.
type SearchConfig struct {
	BaseURL     string
	APIKeyEnv   string
	EngineIDEnv string
	Timeout     time.Duration
}

// SearchClient queries the Google Programmable Search JSON API.
type SearchClient struct {
	baseURL  string
	apiKey   string
	engineID string
	client   *http.Client
}

// NewSearchClient creates a search client, failing fast on missing
// credentials.
func NewSearchClient(cfg SearchConfig) (*SearchClient, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing search API key in env %s", cfg.APIKeyEnv)
	}
	engineID := os.Getenv(cfg.EngineIDEnv)
	if engineID == "" {
		return nil, fmt.Errorf("missing search engine id in env %s", cfg.EngineIDEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.googleapis.com/customsearch/v1"
	}
	return &SearchClient{
		baseURL:  cfg.BaseURL,
		apiKey:   key,
		engineID: engineID,
		client:   httpclient.New(cfg.Timeout),
	}, nil
}

type searchResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Search returns at most limit ranked hits for the query. The API caps one
// page at 10 results.
func (c *SearchClient) Search(ctx context.Context, query string, limit int) ([]domain.SearchHit, error) {
	if limit < 1 {
		limit = 1
	}
	if limit > 10 {
		limit = 10
	}

	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("cx", c.engineID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	var out searchResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("search error (code %d): %s", out.Error.Code, out.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search error: status %d", resp.StatusCode)
	}

	hits := make([]domain.SearchHit, 0, len(out.Items))
	for _, it := range out.Items {
		hits = append(hits, domain.SearchHit{Title: it.Title, Link: it.Link, Snippet: it.Snippet})
	}
	return hits, nil
}
