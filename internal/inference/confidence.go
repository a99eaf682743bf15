package inference

import "sort"

// RankBeliefs returns candidates by descending belief, ties by ascending ID.
func RankBeliefs(beliefs map[int64]float64) []Candidate {
	out := make([]Candidate, 0, len(beliefs))
	for id, p := range beliefs {
		out = append(out, Candidate{DiseaseID: id, Belief: p})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Belief != out[j].Belief {
			return out[i].Belief > out[j].Belief
		}
		return out[i].DiseaseID < out[j].DiseaseID
	})
	return out
}

// EvaluateConfidence scores how settled the beliefs are:
//
//	confidence = clamp(top × (1 + gapWeight × (top − second)) × severity(top), 0, 1)
//
// It returns the confidence and the gap top − second. Severity inflates the
// score for urgent top candidates; the result is a triage heuristic, not a
// probability. A nil severity function counts as 1.
func EvaluateConfidence(beliefs map[int64]float64, severity func(id int64) float64, gapWeight float64) (confidence, gap float64) {
	ranked := RankBeliefs(beliefs)
	if len(ranked) == 0 {
		return 0, 0
	}
	top := ranked[0].Belief
	second := 0.0
	if len(ranked) > 1 {
		second = ranked[1].Belief
	}
	gap = top - second

	sev := 1.0
	if severity != nil {
		sev = severity(ranked[0].DiseaseID)
	}
	return clamp(top*(1+gapWeight*gap)*sev, 0, 1), gap
}
