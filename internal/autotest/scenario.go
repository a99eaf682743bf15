package autotest

import (
	"math/rand/v2"
	"sort"

	"github.com/iatro-health/iatro/internal/knowledge"
)

// Scenario names a way of answering during a simulated session.
type Scenario string

const (
	// ScenarioTarget drives a live session, always confirming the first
	// offered symptom that favors the target.
	ScenarioTarget Scenario = "target"
	// ScenarioOptimal replays the target's symptoms by descending LR+.
	ScenarioOptimal Scenario = "optimal"
	// ScenarioSuboptimal mixes competitor symptoms into the optimal path.
	ScenarioSuboptimal Scenario = "suboptimal"
	// ScenarioAdversarial replays competitor symptoms before the target's.
	ScenarioAdversarial Scenario = "adversarial"
	// ScenarioRandom replays a seeded random sample of all symptoms.
	ScenarioRandom Scenario = "random"
)

// AllScenarios lists every scenario in reporting order.
var AllScenarios = []Scenario{
	ScenarioTarget, ScenarioOptimal, ScenarioSuboptimal, ScenarioAdversarial, ScenarioRandom,
}

// ParseScenario validates a scenario name.
func ParseScenario(s string) (Scenario, bool) {
	for _, sc := range AllScenarios {
		if string(sc) == s {
			return sc, true
		}
	}
	return "", false
}

const (
	pathLength        = 10
	adversarialLead   = 3
	competitorPool    = 5
	competitorMargin  = 1.5
	suboptimalNoise   = 0.3
	suboptimalNoiseUp = 0.1
)

// pickTarget returns the first offered symptom with LR+ > 1 for target.
func pickTarget(ev knowledge.EvidenceMap, offered []string, target int64) (string, bool) {
	for _, sym := range offered {
		if lr, ok := ev.PositiveLR(sym, target); ok && lr > 1 {
			return sym, true
		}
	}
	return "", false
}

// targetSymptoms returns symptoms with LR+ > 1 for target, strongest first.
func targetSymptoms(ev knowledge.EvidenceMap, target int64) []string {
	var out []string
	for _, sym := range ev.BackedSymptoms(target) {
		if lr, _ := ev.PositiveLR(sym, target); lr > 1 {
			out = append(out, sym)
		}
	}
	return out
}

// competitorSymptoms returns symptoms whose best LR+ for another disease
// exceeds the target's LR+ by the competitor margin, most misleading first.
func competitorSymptoms(ev knowledge.EvidenceMap, target int64) []string {
	type pair struct {
		symptom string
		lr      float64
	}
	var pairs []pair
	for _, sym := range ev.Symptoms() {
		targetLR, _ := ev.PositiveLR(sym, target)
		var best float64
		for id, e := range ev[sym] {
			if id != target && e.LRPos != nil && *e.LRPos > best {
				best = *e.LRPos
			}
		}
		if best > targetLR*competitorMargin {
			pairs = append(pairs, pair{sym, best})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].lr > pairs[j].lr })
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.symptom
	}
	return out
}

// OptimalPath is the target's strongest symptoms in order.
func OptimalPath(ev knowledge.EvidenceMap, target int64) []string {
	syms := targetSymptoms(ev, target)
	return syms[:min(pathLength, len(syms))]
}

// AdversarialPath leads with competitor symptoms, then the target's.
func AdversarialPath(ev knowledge.EvidenceMap, target int64) []string {
	comp := competitorSymptoms(ev, target)
	path := append([]string(nil), comp[:min(adversarialLead, len(comp))]...)
	syms := targetSymptoms(ev, target)
	return append(path, syms[:min(pathLength-len(path), len(syms))]...)
}

// SuboptimalPath walks the optimal path but, with probability noise,
// substitutes a competitor symptom at each position.
func SuboptimalPath(ev knowledge.EvidenceMap, target int64, rng *rand.Rand, noise float64) []string {
	syms := targetSymptoms(ev, target)
	comp := competitorSymptoms(ev, target)
	comp = comp[:min(competitorPool, len(comp))]

	n := min(pathLength, len(syms))
	path := make([]string, 0, n)
	for i := 0; i < n; i++ {
		if len(comp) > 0 && rng.Float64() < noise {
			path = append(path, comp[rng.IntN(len(comp))])
			continue
		}
		path = append(path, syms[i])
	}
	return path
}

// RandomPath samples up to pathLength distinct symptoms.
func RandomPath(ev knowledge.EvidenceMap, rng *rand.Rand) []string {
	all := ev.Symptoms()
	perm := rng.Perm(len(all))
	n := min(pathLength, len(all))
	path := make([]string, n)
	for i := 0; i < n; i++ {
		path[i] = all[perm[i]]
	}
	return path
}

// newRand derives a deterministic source per disease and run so results do
// not depend on worker scheduling.
func newRand(seed uint64, target int64, run int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(target)<<16|uint64(run)))
}
