package live

import (
	"fmt"
	"regexp"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/abduilm/lexuz-bot/internal/prompt"
)

var blankRunsRe = regexp.MustCompile(`\n{3,}`)

// Extractor pulls the primary content region out of a fetched page. It tries
// the configured structural selectors in order and falls back to full-page
// text when none matches or the match is too short.
type Extractor struct {
	selectors []string
	minChars  int
	maxChars  int
}

// NewExtractor creates an extractor. maxChars is the per-page character
// budget; minChars is the minimum a selector match must yield before the
// extractor settles for it.
func NewExtractor(selectors []string, minChars, maxChars int) *Extractor {
	return &Extractor{selectors: selectors, minChars: minChars, maxChars: maxChars}
}

// Extract returns the page title and its main content as plain text, cleaned
// and truncated to the budget.
func (e *Extractor) Extract(html, sourceURL string) (title, text string, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", "", fmt.Errorf("parse %s: %w", sourceURL, err)
	}
	doc.Find("script, style, nav, footer, aside").Remove()

	title = extractTitle(doc)

	conv := md.NewConverter(sourceURL, true, nil)
	for _, selector := range e.selectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		candidate := strings.TrimSpace(conv.Convert(sel))
		if len([]rune(candidate)) >= e.minChars {
			text = candidate
			break
		}
	}
	if text == "" {
		if body := doc.Find("body").First(); body.Length() > 0 {
			text = strings.TrimSpace(conv.Convert(body))
		}
		if text == "" {
			text = strings.TrimSpace(doc.Text())
		}
	}

	text = blankRunsRe.ReplaceAllString(text, "\n\n")
	text = prompt.Truncate(text, e.maxChars)
	return title, text, nil
}

// extractTitle tries the usual candidates in order of reliability.
func extractTitle(doc *goquery.Document) string {
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return ""
}
