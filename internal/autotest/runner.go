// Package autotest measures how well the engine converges on each disease
// by simulating sessions in which the child has that disease.
package autotest

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/iatro-health/iatro/internal/inference"
	"github.com/iatro-health/iatro/internal/knowledge"
)

// Options controls a run.
type Options struct {
	MaxSteps    int
	MinEvidence int
	Only        []string // disease names, case-insensitive; empty tests all
	Scenarios   []Scenario
	RandomRuns  int
	Seed        uint64
	Workers     int
}

// DefaultOptions mirrors the interactive defaults: six steps, diseases with
// at least two evidence-backed symptoms, the target scenario only.
func DefaultOptions() Options {
	return Options{
		MaxSteps:    6,
		MinEvidence: 2,
		Scenarios:   []Scenario{ScenarioTarget},
		RandomRuns:  3,
		Seed:        1,
	}
}

// Stop reasons for sessions that did not finalize.
const (
	StopMaxSteps      = "max steps reached"
	StopPathExhausted = "path exhausted"
	StopNoTarget      = "no target symptom offered"
)

// Result is one simulated session.
type Result struct {
	DiseaseID    int64     `json:"disease_id"`
	Disease      string    `json:"disease"`
	Scenario     Scenario  `json:"scenario"`
	Finalized    bool      `json:"finalized"`
	Correct      bool      `json:"correct"`
	Converged    bool      `json:"converged"`
	Steps        int       `json:"steps"`
	TopDiseaseID int64     `json:"top_disease_id"`
	TopDisease   string    `json:"top_disease"`
	TopBelief    float64   `json:"top_belief"`
	TargetBelief float64   `json:"target_belief"`
	Confidence   float64   `json:"confidence"`
	Hits         int       `json:"hits"`
	Required     int       `json:"required"`
	Reason       string    `json:"reason"`
	Path         []string  `json:"path"`
	Trajectory   []float64 `json:"trajectory"`
	Errors       []string  `json:"errors,omitempty"`
	Warnings     []string  `json:"warnings,omitempty"`
}

// Runner simulates sessions against one engine.
type Runner struct {
	engine *inference.Engine
	opts   Options
	log    zerolog.Logger
}

// NewRunner fills defaults for zero-valued options.
func NewRunner(e *inference.Engine, opts Options, log zerolog.Logger) *Runner {
	def := DefaultOptions()
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = def.MaxSteps
	}
	if opts.MinEvidence < 0 {
		opts.MinEvidence = 0
	}
	if len(opts.Scenarios) == 0 {
		opts.Scenarios = def.Scenarios
	}
	if opts.RandomRuns <= 0 {
		opts.RandomRuns = def.RandomRuns
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{engine: e, opts: opts, log: log}
}

// Selection is the outcome of target filtering.
type Selection struct {
	Targets []int64
	Skipped []int64  // below the evidence minimum
	Unknown []string // names in Only that match no disease
}

// Select applies Only and MinEvidence.
func (r *Runner) Select() Selection {
	b := r.engine.Base()
	var sel Selection

	candidates := b.IDs()
	if len(r.opts.Only) > 0 {
		byName := make(map[string]int64, len(b.Diseases))
		for _, d := range b.Diseases {
			byName[strings.ToLower(d.Name)] = d.ID
		}
		candidates = nil
		for _, name := range r.opts.Only {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			id, ok := byName[strings.ToLower(name)]
			if !ok {
				sel.Unknown = append(sel.Unknown, name)
				continue
			}
			candidates = append(candidates, id)
		}
	}

	for _, id := range candidates {
		if b.Evidence.BackedCount(id) < r.opts.MinEvidence {
			sel.Skipped = append(sel.Skipped, id)
			continue
		}
		sel.Targets = append(sel.Targets, id)
	}
	return sel
}

// Run simulates every selected scenario for every target and aggregates
// the results. Results keep target order, then scenario order.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	sel := r.Select()
	for _, name := range sel.Unknown {
		r.log.Warn().Str("disease", name).Msg("unknown disease in filter")
	}

	perTarget := make([][]Result, len(sel.Targets))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, id := range sel.Targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			perTarget[i] = r.RunDisease(id)
			r.log.Debug().
				Int64("disease", id).
				Int("runs", len(perTarget[i])).
				Msg("disease simulated")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("autotest: %w", err)
	}

	var results []Result
	for _, rs := range perTarget {
		results = append(results, rs...)
	}
	return newReport(r.engine, r.opts, sel, results), nil
}

// RunDisease runs every configured scenario for one target.
func (r *Runner) RunDisease(target int64) []Result {
	ev := r.engine.Base().Evidence
	var out []Result
	for _, sc := range r.opts.Scenarios {
		switch sc {
		case ScenarioTarget:
			out = append(out, r.Drive(target))
		case ScenarioOptimal:
			out = append(out, r.Replay(target, sc, OptimalPath(ev, target)))
		case ScenarioAdversarial:
			out = append(out, r.Replay(target, sc, AdversarialPath(ev, target)))
		case ScenarioSuboptimal:
			for run := 0; run < r.opts.RandomRuns; run++ {
				rng := newRand(r.opts.Seed, target, run)
				noise := suboptimalNoise + float64(run)*suboptimalNoiseUp
				out = append(out, r.Replay(target, sc, SuboptimalPath(ev, target, rng, noise)))
			}
		case ScenarioRandom:
			for run := 0; run < r.opts.RandomRuns; run++ {
				rng := newRand(r.opts.Seed, target, 1000+run)
				out = append(out, r.Replay(target, sc, RandomPath(ev, rng)))
			}
		}
	}
	return out
}

// Drive runs a live session, answering with the target picker until the
// session finalizes, no offered symptom favors the target, or MaxSteps
// confirmations have been made.
func (r *Runner) Drive(target int64) Result {
	s := r.engine.NewSession()
	ev := r.engine.Base().Evidence
	res := r.begin(target, ScenarioTarget, s)

	d := s.Next()
	for d.Status == inference.StatusAsking {
		if res.Steps >= r.opts.MaxSteps {
			res.Reason = StopMaxSteps
			break
		}
		sym, ok := pickTarget(ev, d.Offered, target)
		if !ok {
			res.Reason = StopNoTarget
			break
		}
		next, err := s.Apply(inference.Confirm(sym))
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			break
		}
		res.Warnings = append(res.Warnings, next.Warnings...)
		r.stepped(&res, s, target, sym)
		d = next
	}
	return r.finish(res, s, target)
}

// Replay confirms path in order. Unknown symptoms are recorded as errors
// and repeats as warnings; neither counts as a step. At most MaxSteps path
// entries are consumed.
func (r *Runner) Replay(target int64, sc Scenario, path []string) Result {
	s := r.engine.NewSession()
	ev := r.engine.Base().Evidence
	res := r.begin(target, sc, s)
	asked := make(map[string]bool)

	res.Reason = StopPathExhausted
	if len(path) > r.opts.MaxSteps {
		res.Reason = StopMaxSteps
	}
	for _, sym := range path[:min(r.opts.MaxSteps, len(path))] {
		if s.Status() == inference.StatusFinalized {
			break
		}
		if !ev.Has(sym) {
			res.Errors = append(res.Errors, fmt.Sprintf("unknown symptom: %s", sym))
			continue
		}
		if asked[sym] {
			res.Warnings = append(res.Warnings, fmt.Sprintf("symptom %s already asked, skipping", sym))
			continue
		}
		asked[sym] = true
		next, err := s.Apply(inference.Confirm(sym))
		if err != nil {
			res.Errors = append(res.Errors, err.Error())
			continue
		}
		res.Warnings = append(res.Warnings, next.Warnings...)
		r.stepped(&res, s, target, sym)
	}
	return r.finish(res, s, target)
}

func (r *Runner) begin(target int64, sc Scenario, s *inference.Session) Result {
	return Result{
		DiseaseID:  target,
		Disease:    name(r.engine.Base(), target),
		Scenario:   sc,
		Trajectory: []float64{s.Beliefs()[target]},
	}
}

func (r *Runner) stepped(res *Result, s *inference.Session, target int64, sym string) {
	res.Steps++
	res.Path = append(res.Path, sym)
	res.Trajectory = append(res.Trajectory, s.Beliefs()[target])
}

func (r *Runner) finish(res Result, s *inference.Session, target int64) Result {
	b := r.engine.Base()
	if ranked := s.Ranked(); len(ranked) > 0 {
		res.TopDiseaseID = ranked[0].DiseaseID
		res.TopDisease = name(b, ranked[0].DiseaseID)
		res.TopBelief = ranked[0].Belief
	}
	res.TargetBelief = s.Beliefs()[target]
	res.Confidence, _ = s.Confidence()
	hits := s.TopHits()
	res.Hits, res.Required = hits.Hits, hits.Required

	if s.Status() == inference.StatusFinalized {
		res.Reason = string(s.Reason())
		res.Finalized = converging(s.Reason())
	}
	res.Correct = res.TopDiseaseID == target
	res.Converged = res.Finalized && res.Correct
	return res
}

// converging reports whether a stop reason means the engine settled on an
// answer rather than giving up.
func converging(reason inference.Reason) bool {
	return reason == inference.ReasonEvidenceSatisfied || reason == inference.ReasonConfidentOrCollapsed
}

func name(b *knowledge.Base, id int64) string {
	if d, ok := b.Disease(id); ok && d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("disease #%d", id)
}
