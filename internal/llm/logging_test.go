package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/iatro-health/iatro/internal/store"
)

type fakeEvents struct {
	store.EventRepo // unused methods panic

	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (f *fakeEvents) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, data)
	return f.err
}

func TestRecording_Success(t *testing.T) {
	events := &fakeEvents{}
	mock := NewMockProvider(MockResponse{
		Content: json.RawMessage(`{"explanation":"Fast breathing."}`),
		Usage:   Usage{InputTokens: 12, OutputTokens: 4},
	})
	p := WithRecording(mock, "mock", events, zerolog.Nop())

	ctx := WithPurpose(context.Background(), "explanation")
	req := Prompt("Explain plainly.", "Tachypnea", explanationTestSchema())
	if _, err := p.Generate(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(events.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events.events))
	}
	e := events.events[0]
	if e.Purpose != "explanation" || e.Provider != "mock" || !e.Success {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.InputTokens != 12 || e.OutputTokens != 4 {
		t.Fatalf("unexpected usage: %d/%d", e.InputTokens, e.OutputTokens)
	}
	if e.ResponseBody != `{"explanation":"Fast breathing."}` {
		t.Fatalf("unexpected response body: %s", e.ResponseBody)
	}

	var body recordedRequest
	if err := json.Unmarshal([]byte(e.RequestBody), &body); err != nil {
		t.Fatalf("request body is not JSON: %v", err)
	}
	if body.Schema != "test-explanation" || body.Messages[0].Content != "Tachypnea" {
		t.Fatalf("unexpected request body: %+v", body)
	}
}

func TestRecording_FailureAndRepoError(t *testing.T) {
	var buf bytes.Buffer
	events := &fakeEvents{err: errors.New("disk full")}
	mock := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}})
	p := WithRecording(mock, "mock", events, zerolog.New(&buf))

	_, err := p.Generate(context.Background(), Request{})
	var rl *ErrRateLimit
	if !errors.As(err, &rl) {
		t.Fatalf("expected provider error to pass through, got: %v", err)
	}
	if events.events[0].Success || events.events[0].ErrorMessage == "" {
		t.Fatalf("failure not recorded: %+v", events.events[0])
	}
	if !strings.Contains(buf.String(), "failed to record LLM request event") {
		t.Fatalf("repo error not logged: %q", buf.String())
	}
}

func TestRecording_NilRepo(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`"ok"`)})
	p := WithRecording(mock, "mock", nil, zerolog.Nop())
	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", p.ModelID())
	}
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	if _, err := NewProvider(ctx, DefaultConfig(), nil, zerolog.Nop()); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got: %v", err)
	}

	if _, err := NewProvider(ctx, Config{Provider: ProviderAnthropic}, nil, zerolog.Nop()); err == nil {
		t.Fatal("expected missing key error")
	}

	p, err := NewProvider(ctx, Config{Provider: ProviderMock}, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", p.ModelID())
	}

	cfg := DefaultConfig()
	cfg.Provider = ProviderOpenAI
	cfg.OpenAI.APIKey = "sk-test"
	p, err = NewProvider(ctx, cfg, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-4o-mini" {
		t.Fatalf("expected 'gpt-4o-mini', got %q", p.ModelID())
	}
}
