package inference

import (
	"math"
	"testing"

	"github.com/iatro-health/iatro/internal/knowledge"
)

func inputsFor(b *knowledge.Base, cfg Config) Inputs {
	return Inputs{
		Beliefs:  b.Priors,
		Evidence: b.Evidence,
		Asked:    map[string]bool{},
		Clusters: NewClusterTable(b.Evidence.Symptoms()),
		Strength: map[Cluster]float64{},
		Scarcity: map[int64]float64{},
		Config:   cfg,
	}
}

func TestSelectSymptoms_Score(t *testing.T) {
	b := buildBase(t, 2, map[string][]lr{
		"Fever": {{1, 4}, {2, 2}},
	})
	in := inputsFor(b, Strict())
	in.Scarcity = map[int64]float64{1: 0.5}

	got := SelectSymptoms(in, 5)
	if len(got) != 1 {
		t.Fatalf("got %d symptoms, want 1", len(got))
	}
	want := 0.5*math.Log(4)*1.5 + 0.5*math.Log(2)
	if !approx(got[0].Score, want, 1e-12) {
		t.Errorf("score = %v, want %v", got[0].Score, want)
	}
}

func TestSelectSymptoms_ExcludesAsked(t *testing.T) {
	b := buildBase(t, 2, map[string][]lr{
		"A1": {{1, 5}},
		"A2": {{1, 3}},
		"B1": {{2, 2}},
	})
	in := inputsFor(b, Strict())
	in.Asked = map[string]bool{"A1": true}

	for _, r := range SelectSymptoms(in, 0) {
		if r.Symptom == "A1" {
			t.Errorf("asked symptom A1 was offered")
		}
	}
}

func TestSelectSymptoms_ExcludesUninformative(t *testing.T) {
	b := buildBase(t, 3, map[string][]lr{
		"Weak":    {{1, 0.5}, {2, 0.9}},
		"Neutral": {{1, 1.0}},
		"Strong":  {{3, 6}},
	})
	got := SelectSymptoms(inputsFor(b, Strict()), 0)
	if len(got) != 1 || got[0].Symptom != "Strong" {
		t.Errorf("got %v, want only Strong", got)
	}
}

func TestSelectSymptoms_NoPositiveEvidence(t *testing.T) {
	b, err := knowledge.Build([]knowledge.Disease{{ID: 1}, {ID: 2}}, nil, []knowledge.EvidenceRow{
		{Symptom: "X", DiseaseID: 1, LRNeg: knowledge.Float(0.3)},
	})
	if err != nil {
		t.Fatal(err)
	}
	if got := SelectSymptoms(inputsFor(b, Strict()), 5); len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestSelectSymptoms_OrderAndTruncate(t *testing.T) {
	b := buildBase(t, 1, map[string][]lr{
		"a": {{1, 2}},
		"b": {{1, 8}},
		"c": {{1, 4}},
		"d": {{1, 4}},
	})
	got := SelectSymptoms(inputsFor(b, Strict()), 3)
	want := []string{"b", "c", "d"}
	if len(got) != len(want) {
		t.Fatalf("got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Symptom != want[i] {
			t.Errorf("rank %d = %q, want %q", i, got[i].Symptom, want[i])
		}
	}
}

func TestSelectSymptoms_ClusterReinforcement(t *testing.T) {
	// Equal raw scores; the explored respiratory cluster wins.
	b := buildBase(t, 1, map[string][]lr{
		"Cough":    {{1, 3}},
		"Vomiting": {{1, 3}},
	})
	in := inputsFor(b, Strict())
	in.Strength = map[Cluster]float64{ClusterRespiratory: 5}

	got := SelectSymptoms(in, 0)
	if got[0].Symptom != "Cough" {
		t.Fatalf("top = %q, want Cough", got[0].Symptom)
	}
	// Strength is capped at ClusterBoostMax.
	ratio := got[0].Score / got[1].Score
	if !approx(ratio, 1+0.5*Strict().ClusterBoostMax, 1e-12) {
		t.Errorf("boost ratio = %v, want %v", ratio, 1+0.5*Strict().ClusterBoostMax)
	}
}
