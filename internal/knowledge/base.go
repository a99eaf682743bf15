package knowledge

import (
	"context"
	"errors"
	"sort"
)

// ErrEmptyKnowledgeBase is returned when a source holds no diseases.
var ErrEmptyKnowledgeBase = errors.New("knowledge: empty knowledge base")

// Provider loads a knowledge base from some source.
type Provider interface {
	Load(ctx context.Context) (*Base, error)
}

// Base is a loaded knowledge base. It is read-only once built and may be
// shared between concurrent sessions.
type Base struct {
	Diseases []Disease // sorted by ID
	Priors   map[int64]float64
	Evidence EvidenceMap

	// Excluded holds diseases left out of the candidate set because the
	// prior data has no positive prevalence for them.
	Excluded []Disease

	index map[int64]int
}

// Build assembles a Base from raw records.
//
// Priors for unknown diseases are dropped and the rest normalized to sum
// to 1; with no usable prior data every disease gets a uniform prior.
// When prior data exists, diseases without a positive prior are not
// candidates: they move to Excluded and their evidence is dropped along
// with rows that reference unknown diseases.
func Build(diseases []Disease, priors map[int64]float64, rows []EvidenceRow) (*Base, error) {
	if len(diseases) == 0 {
		return nil, ErrEmptyKnowledgeBase
	}

	known := make(map[int64]bool, len(diseases))
	for _, d := range diseases {
		known[d.ID] = true
	}
	var total float64
	for id, p := range priors {
		if known[id] && p > 0 {
			total += p
		}
	}

	b := &Base{
		Diseases: make([]Disease, 0, len(diseases)),
		Priors:   make(map[int64]float64, len(diseases)),
		Evidence: make(EvidenceMap),
		index:    make(map[int64]int, len(diseases)),
	}
	for _, d := range diseases {
		if total > 0 && priors[d.ID] <= 0 {
			b.Excluded = append(b.Excluded, d)
			continue
		}
		b.Diseases = append(b.Diseases, d)
	}
	sort.Slice(b.Diseases, func(i, j int) bool { return b.Diseases[i].ID < b.Diseases[j].ID })
	sort.Slice(b.Excluded, func(i, j int) bool { return b.Excluded[i].ID < b.Excluded[j].ID })
	for i := range b.Diseases {
		if b.Diseases[i].TriageSeverity <= 0 {
			b.Diseases[i].TriageSeverity = DefaultTriageSeverity
		}
		d := b.Diseases[i]
		b.index[d.ID] = i
		if total > 0 {
			b.Priors[d.ID] = priors[d.ID] / total
		} else {
			b.Priors[d.ID] = 1.0 / float64(len(b.Diseases))
		}
	}

	for _, row := range rows {
		if _, ok := b.index[row.DiseaseID]; !ok {
			continue
		}
		b.Evidence.Merge(row)
	}
	return b, nil
}

// Disease looks up a disease by ID.
func (b *Base) Disease(id int64) (Disease, bool) {
	i, ok := b.index[id]
	if !ok {
		return Disease{}, false
	}
	return b.Diseases[i], true
}

// IDs returns the disease IDs in ascending order.
func (b *Base) IDs() []int64 {
	ids := make([]int64, len(b.Diseases))
	for i, d := range b.Diseases {
		ids[i] = d.ID
	}
	return ids
}

// Stats summarizes the size of a knowledge base.
type Stats struct {
	Diseases      int
	Symptoms      int
	EvidencePairs int
	PositiveLRs   int
}

// Stats counts diseases, symptoms and evidence pairs.
func (b *Base) Stats() Stats {
	s := Stats{Diseases: len(b.Diseases), Symptoms: len(b.Evidence)}
	for _, byDisease := range b.Evidence {
		for _, e := range byDisease {
			s.EvidencePairs++
			if e.LRPos != nil {
				s.PositiveLRs++
			}
		}
	}
	return s
}
