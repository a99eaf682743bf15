package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iatro-health/iatro/internal/store"
)

// NewProvider builds the configured provider. Calls flow
// caller → timeout → retry → recording → vendor SDK, so each attempt is
// recorded separately. It returns ErrDisabled when cfg selects no provider.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo, log zerolog.Logger) (Provider, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		// Mock replies need no retry or timeout.
		return WithRecording(NewMockProvider(), ProviderMock, events, log), nil
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	log = log.With().Str("provider", cfg.Provider).Logger()
	p := WithRecording(base, cfg.Provider, events, log)
	p = WithRetry(p, cfg.Retry, log)
	return WithTimeout(p, cfg.Timeout), nil
}
