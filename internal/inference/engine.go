package inference

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iatro-health/iatro/internal/knowledge"
)

// Engine holds a knowledge base and the values derived from it once:
// scarcity boosts, required hits and the cluster table. It is read-only
// after construction and may create sessions from several goroutines.
type Engine struct {
	base     *knowledge.Base
	cfg      Config
	log      zerolog.Logger
	ids      []int64
	scarcity map[int64]float64
	required map[int64]int
	clusters ClusterTable
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for warnings and state changes.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine validates cfg and precomputes per-knowledge-base data.
func NewEngine(base *knowledge.Base, cfg Config, opts ...Option) (*Engine, error) {
	if base == nil || len(base.Diseases) == 0 {
		return nil, knowledge.ErrEmptyKnowledgeBase
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}

	e := &Engine{
		base:     base,
		cfg:      cfg,
		log:      zerolog.Nop(),
		ids:      base.IDs(),
		required: make(map[int64]int, len(base.Diseases)),
		clusters: NewClusterTable(base.Evidence.Symptoms()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.scarcity = ScarcityBoosts(base.Evidence, e.ids, cfg)
	for _, id := range e.ids {
		e.required[id] = RequiredHits(base.Evidence, id, cfg)
	}
	return e, nil
}

func (e *Engine) Config() Config        { return e.cfg }
func (e *Engine) Base() *knowledge.Base { return e.base }

// Scarcity returns the boost for a disease.
func (e *Engine) Scarcity(id int64) float64 { return e.scarcity[id] }

// RequiredHits returns the per-disease evidence requirement.
func (e *Engine) RequiredHits(id int64) int { return e.required[id] }

// Cluster returns the cluster of a symptom.
func (e *Engine) Cluster(symptom string) Cluster { return e.clusters.Of(symptom) }

// ClusterSize counts the evidence-backed symptoms of one cluster.
type ClusterSize struct {
	Cluster  Cluster
	Symptoms int
}

// ClusterSizes counts symptoms per cluster, in Clusters order. Empty
// clusters are included.
func (e *Engine) ClusterSizes() []ClusterSize {
	counts := make(map[Cluster]int)
	for _, sym := range e.base.Evidence.Symptoms() {
		counts[e.Cluster(sym)]++
	}
	all := Clusters()
	out := make([]ClusterSize, 0, len(all))
	for _, c := range all {
		out = append(out, ClusterSize{Cluster: c, Symptoms: counts[c]})
	}
	return out
}

func (e *Engine) severity(id int64) float64 {
	d, ok := e.base.Disease(id)
	if !ok {
		return knowledge.DefaultTriageSeverity
	}
	return d.Severity()
}

// Preview ranks the first n symptoms a fresh session would consider,
// without applying any stopping rule.
func (e *Engine) Preview(n int) []Ranked {
	return SelectSymptoms(Inputs{
		Beliefs:  e.base.Priors,
		Evidence: e.base.Evidence,
		Clusters: e.clusters,
		Scarcity: e.scarcity,
		Config:   e.cfg,
	}, n)
}

// NewSession starts a session at the prior beliefs.
func (e *Engine) NewSession() *Session {
	s := &Session{engine: e, ctrl: NewController(e.cfg)}
	s.Reset()
	return s
}
