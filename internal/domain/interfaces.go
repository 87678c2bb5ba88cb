package domain

import "context"

// Passage is one indexed chunk of a source document, positionally aligned
// with its embedding vector in the index.
type Passage struct {
	DocTitle   string            `json:"doc_title"`
	DocURL     string            `json:"doc_url"`
	SourceType string            `json:"source_type"`
	ChunkText  string            `json:"chunk_text"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// RankedPassage pairs a passage with its adjusted similarity score.
// Scores are not probabilities; only the relative ordering matters.
type RankedPassage struct {
	Score   float64
	Passage Passage
}

// Source is a citable link shown alongside an answer, unique by URL.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Answer is the service-level response to one question.
type Answer struct {
	Text    string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// Page is one fetched web page in the live variant.
type Page struct {
	Title string
	URL   string
	Text  string
}

// SearchHit is one ranked result from the external search API.
type SearchHit struct {
	Title   string
	Link    string
	Snippet string
}

// Embedder converts free text into a numeric vector representation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Completer generates text from a system instruction and a user message
// using the named model.
type Completer interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
}

// Searcher issues a query against the external search API and returns at
// most limit ranked hits.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]SearchHit, error)
}

// Fetcher retrieves the raw HTML of a single page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Retriever turns a question into at most k usable trusted-domain pages.
type Retriever interface {
	Retrieve(ctx context.Context, question string, k int) ([]Page, error)
}

// AskService answers a single question end to end.
type AskService interface {
	Ask(ctx context.Context, question string) (Answer, error)
}
