package live

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/phuslu/log"

	"github.com/abduilm/lexuz-bot/internal/domain"
)

// Retriever runs a site-restricted search and turns surviving results into
// fetched, extracted pages. A single page failure drops that page only; a
// partial result set is acceptable.
type Retriever struct {
	searcher  domain.Searcher
	fetcher   domain.Fetcher
	extractor *Extractor
	trusted   string
}

// NewRetriever wires the search client, fetcher and extractor together for
// the given trusted domain.
func NewRetriever(searcher domain.Searcher, fetcher domain.Fetcher, extractor *Extractor, trustedDomain string) *Retriever {
	return &Retriever{searcher: searcher, fetcher: fetcher, extractor: extractor, trusted: trustedDomain}
}

// Retrieve searches `site:<domain> <question>` and fetches up to k pages.
// An empty slice with a nil error means no usable pages were found.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]domain.Page, error) {
	query := fmt.Sprintf("site:%s %s", r.trusted, question)
	hits, err := r.searcher.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("web search: %w", err)
	}

	pages := make([]domain.Page, 0, len(hits))
	for _, hit := range hits {
		// The API can return off-domain matches despite the site: filter;
		// check the resolved host.
		if !r.onTrustedDomain(hit.Link) {
			log.Debug().Str("url", hit.Link).Msg("Skipping off-domain search hit")
			continue
		}
		html, err := r.fetcher.Fetch(ctx, hit.Link)
		if err != nil {
			log.Warn().Err(err).Str("url", hit.Link).Msg("Page fetch failed, dropping source")
			continue
		}
		title, text, err := r.extractor.Extract(html, hit.Link)
		if err != nil {
			log.Warn().Err(err).Str("url", hit.Link).Msg("Content extraction failed, dropping source")
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		if title == "" {
			title = hit.Title
		}
		pages = append(pages, domain.Page{Title: title, URL: hit.Link, Text: text})
		if len(pages) >= k {
			break
		}
	}
	return pages, nil
}

func (r *Retriever) onTrustedDomain(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.Contains(u.Hostname(), r.trusted)
}
