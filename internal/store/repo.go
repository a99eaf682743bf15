package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	After   int64     // sequence > After
	Before  int64     // sequence < Before
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // LLM events only
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMRequestEvent is a stored LLM request.
type LLMRequestEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM requests for one purpose.
type LLMUsage struct {
	Purpose      string
	Calls        int
	Failures     int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// Session outcomes.
const (
	OutcomeFinalized = "finalized"
	OutcomeAbandoned = "abandoned"
)

// SessionRecord is the persisted summary of a diagnostic session.
type SessionRecord struct {
	ID           string
	Sequence     int64
	StartedAt    time.Time
	EndedAt      time.Time
	Preset       string
	Status       string
	Reason       string
	Outcome      string
	TopDiseaseID int64
	TopDisease   string
	TopBelief    float64
	Confidence   float64
	Steps        int
}

// StepRecord is one applied event within a session.
type StepRecord struct {
	SessionID    string
	Sequence     int64
	Step         int
	Kind         string
	Symptoms     []string
	TopDiseaseID int64
	TopBelief    float64
	Confidence   float64
	Timestamp    time.Time
}

// EventRepo provides append and query access to session and LLM events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error)
	// GetLLMEvent returns nil when the event does not exist.
	GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error)
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	StartSession(ctx context.Context, rec SessionRecord) error
	AppendStep(ctx context.Context, step StepRecord) error
	// FinishSession stores the final status, reason and top diagnosis.
	FinishSession(ctx context.Context, rec SessionRecord) error
	ListSessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error)
	// GetSession returns nil when the session does not exist.
	GetSession(ctx context.Context, id string) (*SessionRecord, []StepRecord, error)
}

// Explanation is a cached lay explanation of a symptom.
type Explanation struct {
	Symptom   string
	Text      string
	Source    string // "static", "llm" or "fallback"
	Model     string
	CreatedAt time.Time
}

// ExplanationRepo caches lay explanations.
type ExplanationRepo interface {
	// Get returns nil when nothing is cached for the symptom.
	Get(ctx context.Context, symptom string) (*Explanation, error)
	Put(ctx context.Context, e Explanation) error
}
