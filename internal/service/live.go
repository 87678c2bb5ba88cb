package service

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/abduilm/lexuz-bot/internal/answer"
	"github.com/abduilm/lexuz-bot/internal/domain"
	"github.com/abduilm/lexuz-bot/internal/llm"
	"github.com/abduilm/lexuz-bot/internal/prompt"
)

// NoPagesAnswer is returned when the site-restricted search yields no usable
// pages. No completion call is made in that case.
const NoPagesAnswer = "Lex.uz dan mos sahifalar topilmadi. Savolni boshqacha ifodalab ko'ring."

// QuotaAnswer is the degraded response when the completion quota is
// exhausted: the caller still gets the fetched official links.
const QuotaAnswer = "Hozircha javob tayyorlab bo'lmadi (so'rovlar limiti tugagan). Quyidagi rasmiy manbalarni ko'rib chiqing."

// LiveOptions carries the live-variant knobs.
type LiveOptions struct {
	ResultCount int
	ChatModel   string
}

// LiveService answers questions from freshly fetched trusted-domain pages
// instead of a precomputed index.
type LiveService struct {
	retriever domain.Retriever
	completer domain.Completer
	builder   *prompt.Builder
	opts      LiveOptions
}

// NewLive creates the live-variant ask service.
func NewLive(retriever domain.Retriever, completer domain.Completer, builder *prompt.Builder, opts LiveOptions) *LiveService {
	return &LiveService{retriever: retriever, completer: completer, builder: builder, opts: opts}
}

// Ask answers one question with the default result count.
func (s *LiveService) Ask(ctx context.Context, question string) (domain.Answer, error) {
	return s.AskN(ctx, question, s.opts.ResultCount)
}

// AskN answers one question using at most k fetched pages. Quota exhaustion
// on the completion call degrades to the fixed message plus the full source
// list instead of failing the request.
func (s *LiveService) AskN(ctx context.Context, question string, k int) (domain.Answer, error) {
	if k < 1 {
		k = s.opts.ResultCount
	}
	pages, err := s.retriever.Retrieve(ctx, question, k)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("qidiruv xatosi: %w", err)
	}
	if len(pages) == 0 {
		log.Info().Msg("No trusted-domain pages found")
		return domain.Answer{Text: NoPagesAnswer, Sources: []domain.Source{}}, nil
	}

	blocks := make([]prompt.Passage, len(pages))
	for i, p := range pages {
		blocks[i] = prompt.Passage{Title: p.Title, URL: p.URL, Text: p.Text}
	}
	cites := pageSources(pages)

	log.Info().Int("pages", len(pages)).Str("model", s.opts.ChatModel).Msg("Answering from live pages")

	raw, err := s.completer.Complete(ctx, s.opts.ChatModel, prompt.System, s.builder.User(question, blocks))
	if err != nil {
		if llm.IsQuotaExhausted(err) {
			log.Warn().Err(err).Msg("Completion quota exhausted, returning bare sources")
			return domain.Answer{Text: QuotaAnswer, Sources: cites}, nil
		}
		return domain.Answer{}, fmt.Errorf("LLM xatosi: %w", err)
	}

	return domain.Answer{Text: answer.Sanitize(raw), Sources: cites}, nil
}

func pageSources(pages []domain.Page) []domain.Source {
	out := make([]domain.Source, 0, len(pages))
	seen := make(map[string]struct{}, len(pages))
	for _, p := range pages {
		if _, ok := seen[p.URL]; ok {
			continue
		}
		seen[p.URL] = struct{}{}
		title := p.Title
		if title == "" {
			title = p.URL
		}
		out = append(out, domain.Source{Title: title, URL: p.URL})
	}
	return out
}
