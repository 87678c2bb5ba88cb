// Package service orchestrates the ask flow for both deployment variants:
// retrieve passages, build a grounded prompt, call the completion model,
// sanitize the answer and extract citations.
package service

import (
	"context"
	"fmt"

	"github.com/phuslu/log"

	"github.com/abduilm/lexuz-bot/internal/answer"
	"github.com/abduilm/lexuz-bot/internal/domain"
	"github.com/abduilm/lexuz-bot/internal/prompt"
	"github.com/abduilm/lexuz-bot/internal/rank"
	"github.com/abduilm/lexuz-bot/internal/sources"
)

// FallbackAnswer is returned when no indexed passage clears the similarity
// threshold. Not an error: the caller gets a polite "try rephrasing".
const FallbackAnswer = "Chummadim. Savolni aniqroq yozib ko'ring."

// Options carries the local-variant knobs.
type Options struct {
	TopK          int
	EscalateSim   float64
	ChatModel     string
	FallbackModel string
	TrustedDomain string
	MaxSources    int
}

// LocalService answers questions from the precomputed local index.
type LocalService struct {
	ranker    *rank.Ranker
	completer domain.Completer
	builder   *prompt.Builder
	opts      Options
}

// NewLocal creates the local-variant ask service.
func NewLocal(ranker *rank.Ranker, completer domain.Completer, builder *prompt.Builder, opts Options) *LocalService {
	return &LocalService{ranker: ranker, completer: completer, builder: builder, opts: opts}
}

// Ask runs the full local flow: rank, prompt, complete, sanitize, cite.
// When retrieval confidence is weak the request escalates once to the
// stronger fallback model; this is a one-shot model choice, not a retry.
func (s *LocalService) Ask(ctx context.Context, question string) (domain.Answer, error) {
	ranked, err := s.ranker.Rank(ctx, question, s.opts.TopK)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("LLM xatosi: %w", err)
	}
	if len(ranked) == 0 {
		log.Info().Msg("No passage cleared the similarity threshold")
		return domain.Answer{Text: FallbackAnswer, Sources: []domain.Source{}}, nil
	}

	picks := make([]domain.Passage, len(ranked))
	blocks := make([]prompt.Passage, len(ranked))
	for i, r := range ranked {
		picks[i] = r.Passage
		blocks[i] = prompt.Passage{Title: r.Passage.DocTitle, URL: r.Passage.DocURL, Text: r.Passage.ChunkText}
	}

	model := s.opts.ChatModel
	if ranked[0].Score < s.opts.EscalateSim {
		model = s.opts.FallbackModel
	}
	log.Info().
		Int("passages", len(ranked)).
		Float64("best_score", ranked[0].Score).
		Str("model", model).
		Msg("Answering from local index")

	raw, err := s.completer.Complete(ctx, model, prompt.System, s.builder.User(question, blocks))
	if err != nil {
		return domain.Answer{}, fmt.Errorf("LLM xatosi: %w", err)
	}

	return domain.Answer{
		Text:    answer.Sanitize(raw),
		Sources: sources.Extract(picks, s.opts.TrustedDomain, s.opts.MaxSources),
	}, nil
}
