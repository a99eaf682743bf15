package inference

import "testing"

func TestClassifySymptom(t *testing.T) {
	tests := []struct {
		label string
		want  Cluster
	}{
		{"Barking cough", ClusterRespiratory},
		{"WHEEZING", ClusterRespiratory},
		{"Chest retractions", ClusterRespiratory},
		{"Ear pain", ClusterENT},
		{"Sore throat", ClusterENT},
		{"Nasal congestion", ClusterENT},
		{"Vomiting", ClusterGI},
		{"Signs of dehydration", ClusterGI},
		{"Dysuria (painful urination)", ClusterGU},
		{"Vesicular rash on hands", ClusterSkin},
		{"Itchy eyes", ClusterSkin}, // skin is checked before eye
		{"Eye redness", ClusterEye},
		{"Eyelids stuck shut on waking", ClusterEye},
		{"Fever", ClusterGeneral},
		{"", ClusterGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			if got := ClassifySymptom(tt.label); got != tt.want {
				t.Errorf("ClassifySymptom(%q) = %q, want %q", tt.label, got, tt.want)
			}
		})
	}
}

func TestClusterTable(t *testing.T) {
	table := NewClusterTable([]string{"Stridor", "Headache"})
	if len(table) != 2 {
		t.Fatalf("table size = %d, want 2", len(table))
	}
	if got := table.Of("Stridor"); got != ClusterRespiratory {
		t.Errorf("Of(Stridor) = %q, want respiratory", got)
	}
	// Labels outside the table are classified on demand.
	if got := table.Of("Diarrhea"); got != ClusterGI {
		t.Errorf("Of(Diarrhea) = %q, want gi", got)
	}
}

func TestClusters_GeneralLast(t *testing.T) {
	all := Clusters()
	if len(all) != 7 {
		t.Fatalf("got %d clusters, want 7", len(all))
	}
	if all[len(all)-1] != ClusterGeneral {
		t.Errorf("last cluster = %q, want general", all[len(all)-1])
	}
}

func TestEngine_ClusterSizes(t *testing.T) {
	e := sampleEngine(t, Strict())
	sizes := e.ClusterSizes()

	all := Clusters()
	if len(sizes) != len(all) {
		t.Fatalf("got %d sizes, want %d", len(sizes), len(all))
	}
	total := 0
	for i, cs := range sizes {
		if cs.Cluster != all[i] {
			t.Errorf("sizes[%d] = %q, want %q", i, cs.Cluster, all[i])
		}
		total += cs.Symptoms
	}
	if want := len(e.Base().Evidence.Symptoms()); total != want {
		t.Errorf("cluster sizes sum to %d, want %d", total, want)
	}
	if sizes[0].Symptoms == 0 {
		t.Error("sample base has no respiratory symptoms")
	}
	if got := e.Cluster("Barking cough"); got != ClusterRespiratory {
		t.Errorf("Cluster(Barking cough) = %q, want respiratory", got)
	}
}
