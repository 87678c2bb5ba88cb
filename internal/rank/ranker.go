package rank

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/abduilm/lexuz-bot/internal/domain"
	"github.com/abduilm/lexuz-bot/internal/index"
)

// Options holds the ranking thresholds and boost heuristics.
type Options struct {
	MinSimilarity      float64
	TrustedDomain      string
	Keywords           []string
	CuratedSourceTypes []string
	DomainBoost        float64
	KeywordBoost       float64
	CuratedBoost       float64
}

// Ranker scores indexed passages against a query embedding using cosine
// similarity plus additive trust/relevance boosts.
type Ranker struct {
	store    *index.Store
	embedder domain.Embedder
	opts     Options

	keywords []string
	curated  map[string]struct{}
	prefixes []string
}

// New creates a ranker over the given store. Keywords are lowered once so
// matching is case-insensitive substring containment.
func New(store *index.Store, embedder domain.Embedder, opts Options) *Ranker {
	keywords := make([]string, 0, len(opts.Keywords))
	for _, k := range opts.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	curated := make(map[string]struct{}, len(opts.CuratedSourceTypes))
	for _, t := range opts.CuratedSourceTypes {
		curated[t] = struct{}{}
	}
	return &Ranker{
		store:    store,
		embedder: embedder,
		opts:     opts,
		keywords: keywords,
		curated:  curated,
		prefixes: TrustedPrefixes(opts.TrustedDomain),
	}
}

// TrustedPrefixes returns the secure and insecure URL prefixes for the
// trusted publication domain.
func TrustedPrefixes(domain string) []string {
	return []string{"https://" + domain, "http://" + domain}
}

// Rank embeds the question and returns at most k passages ordered by
// adjusted score descending, deduplicated by (doc URL, doc title). The
// result is empty when no candidate clears the minimum similarity.
func (r *Ranker) Rank(ctx context.Context, question string, k int) ([]domain.RankedPassage, error) {
	if k < 1 {
		k = 1
	}
	query, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	index.Normalize(query)

	sims, err := r.store.Similarities(query)
	if err != nil {
		return nil, err
	}

	order := argsortDesc(sims)

	// Over-fetch so deduplication below cannot starve the final list when
	// many chunks come from the same document.
	pool := 4 * k
	if pool < k {
		pool = k
	}
	if pool > len(order) {
		pool = len(order)
	}

	candidates := make([]domain.RankedPassage, 0, pool)
	for _, idx := range order[:pool] {
		sim := sims[idx]
		if sim < r.opts.MinSimilarity {
			continue
		}
		p := r.store.Passage(idx)
		candidates = append(candidates, domain.RankedPassage{Score: sim + r.boost(p), Passage: p})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	out := make([]domain.RankedPassage, 0, k)
	seen := make(map[[2]string]struct{}, k)
	for _, c := range candidates {
		key := [2]string{c.Passage.DocURL, c.Passage.DocTitle}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
		if len(out) >= k {
			break
		}
	}
	return out, nil
}

// boost computes the additive adjustment for trust and relevance signals.
func (r *Ranker) boost(p domain.Passage) float64 {
	var b float64
	for _, prefix := range r.prefixes {
		if strings.HasPrefix(p.DocURL, prefix) {
			b += r.opts.DomainBoost
			break
		}
	}
	if r.hasKeyword(p.ChunkText) || r.hasKeyword(p.DocTitle) {
		b += r.opts.KeywordBoost
	}
	if _, ok := r.curated[p.SourceType]; ok {
		b += r.opts.CuratedBoost
	}
	return b
}

func (r *Ranker) hasKeyword(s string) bool {
	if s == "" {
		return false
	}
	s = strings.ToLower(s)
	for _, k := range r.keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool {
		return vals[idxs[i]] > vals[idxs[j]]
	})
	return idxs
}
