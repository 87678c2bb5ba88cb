package sources

import (
	"strings"

	"github.com/abduilm/lexuz-bot/internal/domain"
	"github.com/abduilm/lexuz-bot/internal/rank"
)

// Extract filters the prompted passages down to a capped list of citable
// links on the trusted domain, deduplicated by exact URL and ordered as the
// passages were ranked.
func Extract(passages []domain.Passage, trustedDomain string, maxLinks int) []domain.Source {
	prefixes := rank.TrustedPrefixes(trustedDomain)
	out := make([]domain.Source, 0, maxLinks)
	seen := make(map[string]struct{}, maxLinks)
	for _, p := range passages {
		u := strings.TrimSpace(p.DocURL)
		if u == "" || !hasAnyPrefix(u, prefixes) {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		title := strings.TrimSpace(p.DocTitle)
		if title == "" {
			title = u
		}
		out = append(out, domain.Source{Title: title, URL: u})
		if len(out) >= maxLinks {
			break
		}
	}
	return out
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
