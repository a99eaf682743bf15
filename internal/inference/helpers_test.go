package inference

import (
	"context"
	"testing"

	"github.com/iatro-health/iatro/internal/knowledge"
)

type lr struct {
	disease int64
	pos     float64
}

// buildBase makes a knowledge base with uniform priors over n diseases and
// the given positive LRs per symptom.
func buildBase(t *testing.T, n int, evidence map[string][]lr) *knowledge.Base {
	t.Helper()
	diseases := make([]knowledge.Disease, n)
	for i := range diseases {
		diseases[i] = knowledge.Disease{ID: int64(i + 1), Name: string(rune('A' + i))}
	}
	var rows []knowledge.EvidenceRow
	for sym, lrs := range evidence {
		for _, l := range lrs {
			rows = append(rows, knowledge.EvidenceRow{Symptom: sym, DiseaseID: l.disease, LRPos: knowledge.Float(l.pos)})
		}
	}
	b, err := knowledge.Build(diseases, nil, rows)
	if err != nil {
		t.Fatalf("build base: %v", err)
	}
	return b
}

func sampleEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	b, err := knowledge.SampleProvider{}.Load(context.Background())
	if err != nil {
		t.Fatalf("load sample: %v", err)
	}
	e, err := NewEngine(b, cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func mustEngine(t *testing.T, b *knowledge.Base, cfg Config) *Engine {
	t.Helper()
	e, err := NewEngine(b, cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func sum(m map[int64]float64) float64 {
	var s float64
	for _, v := range m {
		s += v
	}
	return s
}

func approx(a, b, tol float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}
