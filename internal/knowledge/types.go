package knowledge

import "sort"

// DefaultTriageSeverity is used when a disease has no recorded severity.
const DefaultTriageSeverity = 1.0

// Disease is a candidate diagnosis.
type Disease struct {
	ID             int64
	Name           string
	TriageSeverity float64
	Description    string
}

// Severity returns the triage severity, falling back to DefaultTriageSeverity.
func (d Disease) Severity() float64 {
	if d.TriageSeverity <= 0 {
		return DefaultTriageSeverity
	}
	return d.TriageSeverity
}

// EvidenceEntry holds the likelihood ratios recorded for one
// (symptom, disease) pair. Either field may be unknown.
type EvidenceEntry struct {
	LRPos *float64
	LRNeg *float64
}

// EvidenceRow is one raw evidence record as read from a source.
type EvidenceRow struct {
	Symptom   string
	DiseaseID int64
	LRPos     *float64
	LRNeg     *float64
}

// EvidenceMap maps symptom label -> disease ID -> entry.
type EvidenceMap map[string]map[int64]EvidenceEntry

// Merge folds a raw row into the map. The first known value of each
// ratio wins; later rows only fill fields that are still unknown.
func (m EvidenceMap) Merge(row EvidenceRow) {
	byDisease, ok := m[row.Symptom]
	if !ok {
		byDisease = make(map[int64]EvidenceEntry)
		m[row.Symptom] = byDisease
	}
	entry, seen := byDisease[row.DiseaseID]
	if !seen {
		byDisease[row.DiseaseID] = EvidenceEntry{LRPos: row.LRPos, LRNeg: row.LRNeg}
		return
	}
	if entry.LRPos == nil && row.LRPos != nil {
		entry.LRPos = row.LRPos
	}
	if entry.LRNeg == nil && row.LRNeg != nil {
		entry.LRNeg = row.LRNeg
	}
	byDisease[row.DiseaseID] = entry
}

// Has reports whether the symptom appears in the map at all.
func (m EvidenceMap) Has(symptom string) bool {
	_, ok := m[symptom]
	return ok
}

// PositiveLR returns LR+ for the pair, if recorded.
func (m EvidenceMap) PositiveLR(symptom string, diseaseID int64) (float64, bool) {
	entry, ok := m[symptom][diseaseID]
	if !ok || entry.LRPos == nil {
		return 0, false
	}
	return *entry.LRPos, true
}

// Symptoms returns all symptom labels in sorted order.
func (m EvidenceMap) Symptoms() []string {
	out := make([]string, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// BackedCount returns how many symptoms carry an LR+ for the disease.
func (m EvidenceMap) BackedCount(diseaseID int64) int {
	n := 0
	for _, byDisease := range m {
		if e, ok := byDisease[diseaseID]; ok && e.LRPos != nil {
			n++
		}
	}
	return n
}

// Coverage returns how many diseases have an LR+ for the symptom.
func (m EvidenceMap) Coverage(symptom string) int {
	n := 0
	for _, e := range m[symptom] {
		if e.LRPos != nil {
			n++
		}
	}
	return n
}

// BackedSymptoms returns the symptoms with an LR+ for the disease, sorted
// by descending LR+ and then by label.
func (m EvidenceMap) BackedSymptoms(diseaseID int64) []string {
	type pair struct {
		symptom string
		lr      float64
	}
	var pairs []pair
	for s, byDisease := range m {
		if e, ok := byDisease[diseaseID]; ok && e.LRPos != nil {
			pairs = append(pairs, pair{s, *e.LRPos})
		}
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].lr != pairs[j].lr {
			return pairs[i].lr > pairs[j].lr
		}
		return pairs[i].symptom < pairs[j].symptom
	})
	out := make([]string, len(pairs))
	for i, p := range pairs {
		out[i] = p.symptom
	}
	return out
}

// DeriveRatios fills in missing likelihood ratios from sensitivity and
// specificity: LR+ = sens/(1-spec), LR- = (1-sens)/spec.
func DeriveRatios(lrPos, lrNeg, sensitivity, specificity *float64) (*float64, *float64) {
	if sensitivity == nil || specificity == nil {
		return lrPos, lrNeg
	}
	sens, spec := *sensitivity, *specificity
	if lrPos == nil && spec < 1 {
		v := sens / (1 - spec)
		lrPos = &v
	}
	if lrNeg == nil && spec > 0 {
		v := (1 - sens) / spec
		lrNeg = &v
	}
	return lrPos, lrNeg
}

// Float returns a pointer to v.
func Float(v float64) *float64 { return &v }
