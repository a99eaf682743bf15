package llm

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/iatro-health/iatro/internal/store"
)

// RecordingProvider stores every request and its outcome as an LLM event
// and emits a debug log line. Recording failures are logged, never returned.
type RecordingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	log      zerolog.Logger
}

// WithRecording wraps p. events may be nil to log only.
func WithRecording(p Provider, provider string, events store.EventRepo, log zerolog.Logger) Provider {
	return &RecordingProvider{inner: p, provider: provider, events: events, log: log}
}

func (l *RecordingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	data := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: requestBody(req),
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
		data.ResponseBody = string(resp.Content)
	}
	if err != nil {
		data.ErrorMessage = err.Error()
	}

	l.log.Debug().
		Str("provider", data.Provider).
		Str("model", data.Model).
		Str("purpose", data.Purpose).
		Int64("latency_ms", data.LatencyMs).
		Int("input_tokens", data.InputTokens).
		Int("output_tokens", data.OutputTokens).
		Bool("success", data.Success).
		Msg("llm request")

	if l.events != nil {
		// Record even when ctx is already cancelled.
		if recErr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), data); recErr != nil {
			l.log.Warn().Err(recErr).Msg("failed to record LLM request event")
		}
	}
	return resp, err
}

func (l *RecordingProvider) ModelID() string {
	return l.inner.ModelID()
}

type recordedRequest struct {
	System      string         `json:"system,omitempty"`
	Messages    []Message      `json:"messages"`
	Schema      string         `json:"schema,omitempty"`
	Definition  map[string]any `json:"definition,omitempty"`
	MaxTokens   int            `json:"max_tokens"`
	Temperature float64        `json:"temperature,omitempty"`
}

// requestBody renders req as indented JSON for later inspection.
func requestBody(req Request) string {
	rec := recordedRequest{
		System:      req.System,
		Messages:    req.Messages,
		MaxTokens:   req.maxTokens(),
		Temperature: req.Temperature,
	}
	if req.Schema != nil {
		rec.Schema = req.Schema.Name
		rec.Definition = req.Schema.Definition
	}
	b, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return ""
	}
	return string(b)
}
