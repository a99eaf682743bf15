package autotest

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"time"

	"github.com/iatro-health/iatro/internal/inference"
)

// DiseaseMetrics aggregates the runs for one target. Step, confidence and
// probability averages cover converged runs only.
type DiseaseMetrics struct {
	DiseaseID       int64          `json:"disease_id"`
	Disease         string         `json:"disease"`
	EvidenceCount   int            `json:"evidence_count"`
	Runs            int            `json:"runs"`
	Finalized       int            `json:"finalized"`
	Converged       int            `json:"converged"`
	ConvergenceRate float64        `json:"convergence_rate"`
	AvgSteps        float64        `json:"avg_steps"`
	MinSteps        int            `json:"min_steps"`
	MaxSteps        int            `json:"max_steps"`
	AvgConfidence   float64        `json:"avg_confidence"`
	AvgFinalProb    float64        `json:"avg_final_prob"`
	FailureModes    map[string]int `json:"failure_modes"`
}

// Summary covers all runs.
type Summary struct {
	Tested          int     `json:"tested"`
	Skipped         int     `json:"skipped"`
	Runs            int     `json:"runs"`
	Finalized       int     `json:"finalized"`
	Converged       int     `json:"converged"`
	ConvergenceRate float64 `json:"convergence_rate"`
	AvgSteps        float64 `json:"avg_steps"`
	AvgConfidence   float64 `json:"avg_confidence"`
}

// Anomaly flags a run that falls outside the typical range of converged
// runs or failed to converge.
type Anomaly struct {
	Disease  string   `json:"disease"`
	Scenario Scenario `json:"scenario"`
	Notes    []string `json:"notes"`
}

// Report is the full outcome of a Run.
type Report struct {
	Timestamp   time.Time        `json:"timestamp"`
	MaxSteps    int              `json:"max_steps"`
	MinEvidence int              `json:"min_evidence"`
	Scenarios   []Scenario       `json:"scenarios"`
	Seed        uint64           `json:"seed"`
	Summary     Summary          `json:"summary"`
	Diseases    []DiseaseMetrics `json:"diseases"`
	Results     []Result         `json:"results"`
	Anomalies   []Anomaly        `json:"anomalies"`
	Skipped     []string         `json:"skipped,omitempty"`
	Unknown     []string         `json:"unknown,omitempty"`
}

func newReport(e *inference.Engine, opts Options, sel Selection, results []Result) *Report {
	b := e.Base()
	rep := &Report{
		Timestamp:   time.Now().UTC(),
		MaxSteps:    opts.MaxSteps,
		MinEvidence: opts.MinEvidence,
		Scenarios:   opts.Scenarios,
		Seed:        opts.Seed,
		Results:     results,
		Unknown:     sel.Unknown,
	}
	for _, id := range sel.Skipped {
		rep.Skipped = append(rep.Skipped, name(b, id))
	}

	rep.Diseases = Aggregate(results)
	for i := range rep.Diseases {
		rep.Diseases[i].EvidenceCount = b.Evidence.BackedCount(rep.Diseases[i].DiseaseID)
	}

	rep.Summary = summarize(results)
	rep.Summary.Tested = len(sel.Targets)
	rep.Summary.Skipped = len(sel.Skipped)
	rep.Anomalies = DetectAnomalies(results)
	return rep
}

// Aggregate groups results by disease, in first-seen order.
func Aggregate(results []Result) []DiseaseMetrics {
	index := make(map[int64]int)
	var out []DiseaseMetrics
	var confSum, probSum []float64

	for _, r := range results {
		i, ok := index[r.DiseaseID]
		if !ok {
			i = len(out)
			index[r.DiseaseID] = i
			out = append(out, DiseaseMetrics{
				DiseaseID:    r.DiseaseID,
				Disease:      r.Disease,
				FailureModes: make(map[string]int),
			})
			confSum = append(confSum, 0)
			probSum = append(probSum, 0)
		}
		m := &out[i]
		m.Runs++
		if r.Finalized {
			m.Finalized++
		}
		if !r.Converged {
			m.FailureModes[failureMode(r)]++
			continue
		}
		if m.Converged == 0 || r.Steps < m.MinSteps {
			m.MinSteps = r.Steps
		}
		if r.Steps > m.MaxSteps {
			m.MaxSteps = r.Steps
		}
		m.Converged++
		m.AvgSteps += float64(r.Steps)
		confSum[i] += r.Confidence
		probSum[i] += r.TopBelief
	}

	for i := range out {
		m := &out[i]
		m.ConvergenceRate = float64(m.Converged) / float64(m.Runs)
		if m.Converged > 0 {
			n := float64(m.Converged)
			m.AvgSteps /= n
			m.AvgConfidence = confSum[i] / n
			m.AvgFinalProb = probSum[i] / n
		}
	}
	return out
}

func failureMode(r Result) string {
	if r.Finalized && !r.Correct {
		return "wrong diagnosis"
	}
	if r.Reason == "" {
		return StopMaxSteps
	}
	return r.Reason
}

func summarize(results []Result) Summary {
	s := Summary{Runs: len(results)}
	var steps, conf float64
	for _, r := range results {
		if r.Finalized {
			s.Finalized++
		}
		if r.Converged {
			s.Converged++
			steps += float64(r.Steps)
			conf += r.Confidence
		}
	}
	if s.Runs > 0 {
		s.ConvergenceRate = float64(s.Converged) / float64(s.Runs)
	}
	if s.Converged > 0 {
		s.AvgSteps = steps / float64(s.Converged)
		s.AvgConfidence = conf / float64(s.Converged)
	}
	return s
}

// band is mean ± 2 standard deviations.
type band struct{ lo, hi float64 }

func newBand(xs []float64) band {
	if len(xs) == 0 {
		return band{math.Inf(-1), math.Inf(1)}
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))
	var variance float64
	for _, x := range xs {
		variance += (x - mean) * (x - mean)
	}
	sd := math.Sqrt(variance / float64(len(xs)))
	return band{mean - 2*sd, mean + 2*sd}
}

// DetectAnomalies flags non-converged runs, converged runs whose steps,
// confidence or final probability fall outside mean ± 2σ of all converged
// runs, and runs whose target belief fell or swung by more than 0.5.
func DetectAnomalies(results []Result) []Anomaly {
	var steps, conf, prob []float64
	for _, r := range results {
		if r.Converged {
			steps = append(steps, float64(r.Steps))
			conf = append(conf, r.Confidence)
			prob = append(prob, r.TopBelief)
		}
	}
	stepBand, confBand, probBand := newBand(steps), newBand(conf), newBand(prob)

	var out []Anomaly
	for _, r := range results {
		var notes []string
		if r.Converged {
			if s := float64(r.Steps); s < stepBand.lo || s > stepBand.hi {
				notes = append(notes, fmt.Sprintf("unusual step count: %d", r.Steps))
			}
			if r.Confidence < confBand.lo {
				notes = append(notes, fmt.Sprintf("low confidence: %.3f", r.Confidence))
			}
			if r.TopBelief < probBand.lo {
				notes = append(notes, fmt.Sprintf("low final probability: %.3f", r.TopBelief))
			}
		} else {
			notes = append(notes, "failed to converge")
		}
		if t := r.Trajectory; len(t) > 1 {
			if t[len(t)-1] < t[0] {
				notes = append(notes, "target belief decreased")
			}
			lo, hi := t[0], t[0]
			for _, p := range t {
				lo, hi = min(lo, p), max(hi, p)
			}
			if hi-lo > 0.5 {
				notes = append(notes, "high target belief variance")
			}
		}
		if len(notes) > 0 {
			out = append(out, Anomaly{Disease: r.Disease, Scenario: r.Scenario, Notes: notes})
		}
	}
	return out
}

// Failures counts non-converged runs per disease, most failures first.
func (rep *Report) Failures() []DiseaseFailures {
	counts := make(map[string]int)
	for _, r := range rep.Results {
		if !r.Converged {
			counts[r.Disease]++
		}
	}
	out := make([]DiseaseFailures, 0, len(counts))
	for d, n := range counts {
		out = append(out, DiseaseFailures{Disease: d, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Disease < out[j].Disease
	})
	return out
}

// TargetSuccess counts target-picker runs that finalized on an answer
// within the step limit, against all target-picker runs.
func (rep *Report) TargetSuccess() (successes, runs int) {
	for _, r := range rep.Results {
		if r.Scenario != ScenarioTarget {
			continue
		}
		runs++
		if r.Finalized && r.Steps <= rep.MaxSteps {
			successes++
		}
	}
	return successes, runs
}

// DiseaseFailures is a failure count for one disease.
type DiseaseFailures struct {
	Disease string
	Count   int
}

// WriteJSON writes the indented report.
func (rep *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rep); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}
