package inference

import "testing"

func TestEvaluateConfidence(t *testing.T) {
	tests := []struct {
		name     string
		beliefs  map[int64]float64
		severity map[int64]float64
		gapW     float64
		wantConf float64
		wantGap  float64
	}{
		{"empty", map[int64]float64{}, nil, 1, 0, 0},
		{"single", map[int64]float64{1: 0.4}, nil, 1, 0.4 * 1.4, 0.4},
		{"two", map[int64]float64{1: 0.6, 2: 0.3, 3: 0.1}, nil, 1, 0.6 * 1.3, 0.3},
		{"gap weight", map[int64]float64{1: 0.6, 2: 0.3, 3: 0.1}, nil, 0.8, 0.6 * (1 + 0.8*0.3), 0.3},
		{"severity scales", map[int64]float64{1: 0.5, 2: 0.5}, map[int64]float64{1: 1.5}, 1, 0.75, 0},
		{"clamped", map[int64]float64{1: 0.9, 2: 0.1}, map[int64]float64{1: 2}, 1, 1, 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sev := func(id int64) float64 {
				if v, ok := tt.severity[id]; ok {
					return v
				}
				return 1
			}
			conf, gap := EvaluateConfidence(tt.beliefs, sev, tt.gapW)
			if !approx(conf, tt.wantConf, 1e-12) {
				t.Errorf("confidence = %v, want %v", conf, tt.wantConf)
			}
			if !approx(gap, tt.wantGap, 1e-12) {
				t.Errorf("gap = %v, want %v", gap, tt.wantGap)
			}
			if conf < 0 || conf > 1 {
				t.Errorf("confidence %v outside [0,1]", conf)
			}
		})
	}
}

func TestEvaluateConfidence_NilSeverity(t *testing.T) {
	conf, _ := EvaluateConfidence(map[int64]float64{7: 0.5, 8: 0.5}, nil, 1)
	if !approx(conf, 0.5, 1e-12) {
		t.Errorf("confidence = %v, want 0.5", conf)
	}
}

func TestRankBeliefs_TiesByID(t *testing.T) {
	got := RankBeliefs(map[int64]float64{3: 0.25, 1: 0.25, 2: 0.5})
	want := []int64{2, 1, 3}
	for i, id := range want {
		if got[i].DiseaseID != id {
			t.Errorf("rank %d = %d, want %d", i, got[i].DiseaseID, id)
		}
	}
}
