package inference

import (
	"math"
	"sort"

	"github.com/iatro-health/iatro/internal/knowledge"
)

// Inputs is the state the selector and updater read. None of it is
// modified.
type Inputs struct {
	Beliefs  map[int64]float64
	Evidence knowledge.EvidenceMap
	Asked    map[string]bool
	Clusters ClusterTable
	Strength map[Cluster]float64
	Scarcity map[int64]float64
	Config   Config
}

// SelectSymptoms ranks unasked symptoms by expected diagnostic value and
// returns at most n of them (all of them if n <= 0).
//
// A symptom scores Σ belief(d) × ln(LR+) × (1 + scarcity(d)) over the
// diseases whose LR+ is at least MinSelectLR, scaled up when its cluster
// has already produced confirmed findings. Symptoms without a qualifying
// disease or with a zero score are left out.
func SelectSymptoms(in Inputs, n int) []Ranked {
	ids := sortedIDs(in.Beliefs)
	var ranked []Ranked

	for _, symptom := range in.Evidence.Symptoms() {
		if in.Asked[symptom] {
			continue
		}
		var score float64
		qualified := false
		for _, id := range ids {
			lr, ok := in.Evidence.PositiveLR(symptom, id)
			if !ok || lr < in.Config.MinSelectLR {
				continue
			}
			qualified = true
			score += in.Beliefs[id] * math.Max(0, math.Log(lr)) * (1 + in.Scarcity[id])
		}
		if !qualified || score <= 0 {
			continue
		}
		strength := math.Min(in.Config.ClusterBoostMax, in.Strength[in.Clusters.Of(symptom)])
		score *= 1 + 0.5*strength
		ranked = append(ranked, Ranked{Symptom: symptom, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Symptom < ranked[j].Symptom
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func sortedIDs(beliefs map[int64]float64) []int64 {
	ids := make([]int64, 0, len(beliefs))
	for id := range beliefs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
