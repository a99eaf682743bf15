package autotest

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iatro-health/iatro/internal/inference"
	"github.com/iatro-health/iatro/internal/knowledge"
)

// smallBase: disease 1 ("Alpha") owns A1..A3, disease 2 ("Beta") owns B1
// and shares A1 weakly, disease 3 ("Gamma") has a single symptom.
func smallBase(t *testing.T) *knowledge.Base {
	t.Helper()
	diseases := []knowledge.Disease{
		{ID: 1, Name: "Alpha"},
		{ID: 2, Name: "Beta"},
		{ID: 3, Name: "Gamma"},
	}
	row := func(sym string, id int64, lr float64) knowledge.EvidenceRow {
		return knowledge.EvidenceRow{Symptom: sym, DiseaseID: id, LRPos: knowledge.Float(lr)}
	}
	b, err := knowledge.Build(diseases, nil, []knowledge.EvidenceRow{
		row("A1", 1, 6), row("A1", 2, 1.5),
		row("A2", 1, 4),
		row("A3", 1, 2),
		row("B1", 2, 8), row("B1", 1, 0.5),
		row("G1", 3, 3),
	})
	require.NoError(t, err)
	return b
}

func engineFor(t *testing.T, b *knowledge.Base) *inference.Engine {
	t.Helper()
	e, err := inference.NewEngine(b, inference.Strict())
	require.NoError(t, err)
	return e
}

func sampleEngine(t *testing.T) *inference.Engine {
	t.Helper()
	b, err := knowledge.SampleProvider{}.Load(context.Background())
	require.NoError(t, err)
	return engineFor(t, b)
}

func TestPickTarget(t *testing.T) {
	ev := smallBase(t).Evidence
	got, ok := pickTarget(ev, []string{"B1", "G1", "A3", "A1"}, 1)
	require.True(t, ok)
	assert.Equal(t, "A3", got)

	_, ok = pickTarget(ev, []string{"B1", "G1"}, 1)
	assert.False(t, ok)
}

func TestPaths(t *testing.T) {
	ev := smallBase(t).Evidence

	assert.Equal(t, []string{"A1", "A2", "A3"}, OptimalPath(ev, 1))
	assert.Equal(t, []string{"B1", "G1", "A1", "A2", "A3"}, AdversarialPath(ev, 1))
	assert.Empty(t, OptimalPath(ev, 99))
}

func TestRandomPath_Seeded(t *testing.T) {
	ev := sampleEngine(t).Base().Evidence

	a := RandomPath(ev, newRand(7, 3, 0))
	b := RandomPath(ev, newRand(7, 3, 0))
	c := RandomPath(ev, newRand(8, 3, 0))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	seen := make(map[string]bool)
	for _, s := range a {
		assert.False(t, seen[s], "duplicate %q", s)
		seen[s] = true
	}
	assert.Len(t, a, min(pathLength, len(ev)))
}

func TestSuboptimalPath_NoNoiseIsOptimal(t *testing.T) {
	ev := smallBase(t).Evidence
	got := SuboptimalPath(ev, 1, newRand(1, 1, 0), 0)
	assert.Equal(t, OptimalPath(ev, 1), got)
}

func TestReplay_ErrorsAndWarnings(t *testing.T) {
	r := NewRunner(engineFor(t, smallBase(t)), Options{MaxSteps: 10}, zerolog.Nop())

	res := r.Replay(1, ScenarioOptimal, []string{"A1", "Nope", "A1", "A2"})
	assert.Equal(t, []string{"unknown symptom: Nope"}, res.Errors)
	assert.Equal(t, []string{"symptom A1 already asked, skipping"}, res.Warnings)
	assert.Equal(t, res.Steps, len(res.Path))
	assert.Len(t, res.Trajectory, res.Steps+1)
	assert.Equal(t, res.Correct, res.TopDiseaseID == 1)
	assert.Equal(t, res.Converged, res.Finalized && res.Correct)
}

func TestReplay_MaxSteps(t *testing.T) {
	r := NewRunner(engineFor(t, smallBase(t)), Options{MaxSteps: 1}, zerolog.Nop())
	res := r.Replay(1, ScenarioOptimal, []string{"A3", "A2", "A1"})
	assert.LessOrEqual(t, res.Steps, 1)
	if !res.Finalized && res.Reason == "" {
		t.Error("unfinished replay should carry a stop reason")
	}
}

func TestDrive_SampleKnowledgeBase(t *testing.T) {
	e := sampleEngine(t)
	r := NewRunner(e, Options{MaxSteps: 6}, zerolog.Nop())

	for _, id := range r.Select().Targets {
		res := r.Drive(id)
		assert.LessOrEqual(t, res.Steps, 6, res.Disease)
		assert.Len(t, res.Trajectory, res.Steps+1, res.Disease)
		assert.NotEmpty(t, res.Reason, res.Disease)
		for _, sym := range res.Path {
			lr, ok := e.Base().Evidence.PositiveLR(sym, id)
			assert.True(t, ok && lr > 1, "%s: picked %q without LR+ > 1", res.Disease, sym)
		}
	}
}

func TestSelect(t *testing.T) {
	e := engineFor(t, smallBase(t))

	sel := NewRunner(e, Options{MinEvidence: 2}, zerolog.Nop()).Select()
	assert.Equal(t, []int64{1, 2}, sel.Targets)
	assert.Equal(t, []int64{3}, sel.Skipped)

	sel = NewRunner(e, Options{MinEvidence: 1, Only: []string{"gamma", " ALPHA ", "Delta"}}, zerolog.Nop()).Select()
	assert.Equal(t, []int64{3, 1}, sel.Targets)
	assert.Equal(t, []string{"Delta"}, sel.Unknown)
}

func TestRun_DeterministicAcrossWorkers(t *testing.T) {
	e := sampleEngine(t)
	opts := Options{MaxSteps: 8, MinEvidence: 2, Scenarios: AllScenarios, RandomRuns: 2, Seed: 42}

	opts.Workers = 1
	serial, err := NewRunner(e, opts, zerolog.Nop()).Run(t.Context())
	require.NoError(t, err)
	opts.Workers = 8
	parallel, err := NewRunner(e, opts, zerolog.Nop()).Run(t.Context())
	require.NoError(t, err)

	if !reflect.DeepEqual(serial.Results, parallel.Results) {
		t.Error("results depend on worker count")
	}
	assert.Equal(t, serial.Summary, parallel.Summary)
	assert.NotEmpty(t, serial.Results)

	successes, runs := serial.TargetSuccess()
	assert.Equal(t, serial.Summary.Tested, runs)
	assert.LessOrEqual(t, successes, runs)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err := NewRunner(sampleEngine(t), Options{}, zerolog.Nop()).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregate(t *testing.T) {
	results := []Result{
		{DiseaseID: 1, Disease: "Alpha", Finalized: true, Correct: true, Converged: true, Steps: 2, Confidence: 0.9, TopBelief: 0.7},
		{DiseaseID: 1, Disease: "Alpha", Finalized: true, Correct: true, Converged: true, Steps: 4, Confidence: 0.7, TopBelief: 0.5},
		{DiseaseID: 1, Disease: "Alpha", Finalized: true, Correct: false, Steps: 3},
		{DiseaseID: 2, Disease: "Beta", Reason: StopNoTarget, Steps: 1},
	}
	got := Aggregate(results)
	require.Len(t, got, 2)

	a := got[0]
	assert.Equal(t, 3, a.Runs)
	assert.Equal(t, 3, a.Finalized)
	assert.Equal(t, 2, a.Converged)
	assert.InDelta(t, 2.0/3.0, a.ConvergenceRate, 1e-12)
	assert.InDelta(t, 3.0, a.AvgSteps, 1e-12)
	assert.Equal(t, 2, a.MinSteps)
	assert.Equal(t, 4, a.MaxSteps)
	assert.InDelta(t, 0.8, a.AvgConfidence, 1e-12)
	assert.InDelta(t, 0.6, a.AvgFinalProb, 1e-12)
	assert.Equal(t, map[string]int{"wrong diagnosis": 1}, a.FailureModes)

	b := got[1]
	assert.Zero(t, b.ConvergenceRate)
	assert.Equal(t, map[string]int{StopNoTarget: 1}, b.FailureModes)
}

func TestDetectAnomalies(t *testing.T) {
	results := []Result{
		{Disease: "Alpha", Converged: true, Steps: 3, Confidence: 0.9, TopBelief: 0.7, Trajectory: []float64{0.3, 0.5, 0.7}},
		{Disease: "Beta", Scenario: ScenarioAdversarial, Trajectory: []float64{0.3, 0.9, 0.1}},
	}
	got := DetectAnomalies(results)
	require.Len(t, got, 1)
	assert.Equal(t, "Beta", got[0].Disease)
	assert.Equal(t, []string{"failed to converge", "target belief decreased", "high target belief variance"}, got[0].Notes)
}

func TestReport_WriteJSON(t *testing.T) {
	rep, err := NewRunner(engineFor(t, smallBase(t)), Options{MinEvidence: 1}, zerolog.Nop()).Run(t.Context())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteJSON(&buf))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	for _, key := range []string{"timestamp", "summary", "diseases", "results"} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, 3, rep.Summary.Tested)
}

func TestParseScenario(t *testing.T) {
	sc, ok := ParseScenario("adversarial")
	assert.True(t, ok)
	assert.Equal(t, ScenarioAdversarial, sc)
	_, ok = ParseScenario("chaotic")
	assert.False(t, ok)
}
