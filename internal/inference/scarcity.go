package inference

import (
	"math"
	"sort"

	"github.com/iatro-health/iatro/internal/knowledge"
)

// ScarcityBoosts computes a per-disease boost that favors diseases with
// fewer evidence-backed symptoms than the reference count.
//
// The reference is the element at index n/2 of the sorted counts, which
// is the upper median for even n. Counts are floored at 1.
func ScarcityBoosts(ev knowledge.EvidenceMap, ids []int64, cfg Config) map[int64]float64 {
	boosts := make(map[int64]float64, len(ids))
	if len(ids) == 0 {
		return boosts
	}

	counts := make(map[int64]int, len(ids))
	sorted := make([]int, 0, len(ids))
	for _, id := range ids {
		c := max(1, ev.BackedCount(id))
		counts[id] = c
		sorted = append(sorted, c)
	}
	sort.Ints(sorted)
	median := float64(sorted[len(sorted)/2])

	for _, id := range ids {
		raw := median/float64(counts[id]) - 1.0
		boosts[id] = clamp(cfg.ScarcityWeight*raw, 0, cfg.ScarcityBoostMax)
	}
	return boosts
}

// RequiredHits returns how many confirmed evidence-backed symptoms a
// disease needs before it may finalize on per-disease evidence.
func RequiredHits(ev knowledge.EvidenceMap, id int64, cfg Config) int {
	n := ev.BackedCount(id)
	req := int(math.Ceil(cfg.RequiredHitsRatio * float64(n)))
	return max(cfg.RequiredHitsMin, min(cfg.RequiredHitsMax, req))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
