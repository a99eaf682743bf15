package inference

import (
	"fmt"
	"math"
)

const (
	beliefEpsilon = 1e-12
	minLR         = 1e-9
)

// UpdatePosteriors applies a confirmed symptom to the beliefs and returns
// the renormalized result. The input map is not modified.
//
// Diseases without an LR+ for the symptom are multiplied by
// CoveragePenalty. The others have their odds multiplied by
// LR+^(1+extra), where extra combines the cluster, scarcity and stage
// boosts and is capped at AlphaCap-1. The stage term scales with the
// disease's current belief, so the result depends on the order in which
// symptoms are confirmed. StrictBayes drops all three boosts.
//
// If the updated beliefs sum to zero (or overflow), the input beliefs are
// returned with ErrDegenerateRenormalization.
func UpdatePosteriors(in Inputs, symptom string) (map[int64]float64, error) {
	if !in.Evidence.Has(symptom) {
		return in.Beliefs, fmt.Errorf("%w: %q", ErrUnknownSymptom, symptom)
	}
	cfg := in.Config
	clusterBoost := math.Min(cfg.ClusterBoostMax, in.Strength[in.Clusters.Of(symptom)])

	ids := sortedIDs(in.Beliefs)
	updated := make(map[int64]float64, len(ids))
	var total float64
	for _, id := range ids {
		prior := in.Beliefs[id]
		post := prior
		effective := 1.0

		if lr, ok := in.Evidence.PositiveLR(symptom, id); !ok {
			post *= cfg.CoveragePenalty
		} else {
			extra := 0.0
			if !cfg.StrictBayes {
				extra = math.Min(cfg.AlphaCap-1, clusterBoost+in.Scarcity[id]+cfg.StageBoostMax*prior)
			}
			effective = math.Pow(math.Max(minLR, lr), 1+extra)
		}

		post = clamp(post, beliefEpsilon, 1-beliefEpsilon)
		odds := post / (1 - post) * effective
		var p float64
		if math.IsInf(odds, 1) {
			p = 1
		} else {
			p = odds / (1 + odds)
		}
		updated[id] = p
		total += p
	}

	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return in.Beliefs, ErrDegenerateRenormalization
	}
	for id := range updated {
		updated[id] /= total
	}
	return updated, nil
}
