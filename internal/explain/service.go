// Package explain turns knowledge-base symptom labels into text a parent
// can act on. Curated text is preferred; a configured model fills gaps and
// its answers are cached in the store.
package explain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iatro-health/iatro/internal/llm"
	"github.com/iatro-health/iatro/internal/store"
)

// Explanation sources.
const (
	SourceStatic   = "static"
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

var errEmptyExplanation = errors.New("empty explanation")

// Purpose tags model requests made by this package.
const Purpose = "explanation"

// Service resolves lay explanations. Provider and cache are optional.
type Service struct {
	provider llm.Provider
	cache    store.ExplanationRepo
	cfg      Config
	log      zerolog.Logger

	now func() time.Time
}

// NewService creates an explanation service. A nil provider restricts it
// to curated and formatted text; a nil cache disables caching.
func NewService(provider llm.Provider, cache store.ExplanationRepo, cfg Config, log zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		cache:    cache,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

type explanationOutput struct {
	Explanation string `json:"explanation"`
}

// Explain returns the explanation for symptom. Curated text comes first,
// then the cache, then the model. Failures along the way are logged and
// end in the formatted fallback, so Explain always yields text.
func (s *Service) Explain(ctx context.Context, symptom string) store.Explanation {
	if text, ok := Lookup(symptom); ok {
		return store.Explanation{Symptom: symptom, Text: text, Source: SourceStatic}
	}

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, symptom)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Str("symptom", symptom).Msg("explanation cache lookup failed")
		case cached != nil:
			return *cached
		}
	}

	if s.provider != nil {
		text, model, err := s.generate(ctx, symptom)
		if err == nil {
			e := store.Explanation{
				Symptom:   symptom,
				Text:      text,
				Source:    SourceLLM,
				Model:     model,
				CreatedAt: s.now(),
			}
			if s.cache != nil {
				if err := s.cache.Put(ctx, e); err != nil {
					s.log.Warn().Err(err).Str("symptom", symptom).Msg("failed to cache explanation")
				}
			}
			return e
		}
		s.log.Warn().Err(err).Str("symptom", symptom).Msg("explanation generation failed, using fallback")
	}

	return store.Explanation{Symptom: symptom, Text: Static(symptom), Source: SourceFallback}
}

// Text is Explain without the metadata.
func (s *Service) Text(ctx context.Context, symptom string) string {
	return s.Explain(ctx, symptom).Text
}

func (s *Service) generate(ctx context.Context, symptom string) (string, string, error) {
	ctx = llm.WithPurpose(ctx, Purpose)

	req := llm.Prompt(explanationSystemPrompt, buildExplanationUserMessage(symptom), ExplanationSchema)
	req.MaxTokens = s.cfg.MaxTokens
	req.Temperature = s.cfg.Temperature

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return "", "", err
	}

	var out explanationOutput
	if err := resp.Decode(&out); err != nil {
		return "", "", err
	}
	text := strings.TrimSpace(out.Explanation)
	if text == "" {
		return "", "", &llm.ErrInvalidResponse{Content: resp.Content, Err: errEmptyExplanation}
	}
	if !strings.HasSuffix(text, ".") {
		text += "."
	}

	model := resp.Model
	if model == "" {
		model = s.provider.ModelID()
	}
	return text, model, nil
}
