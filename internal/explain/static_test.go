package explain

import "testing"

func TestStatic(t *testing.T) {
	tests := []struct {
		symptom string
		want    string
	}{
		{"Stridor", "High-pitched noisy breathing, especially when inhaling."},
		{"Rhinorrhea (runny nose)", "Runny nose with clear or colored mucus."},
		{"Bradycardia (SLOW heart rate)", "Slow heart rate."},
		{"Rash ( spotty )", "Spotty."},
		{"Odd (a) and (b)", "A) and (b."},
		{"Cyanosis", "Plain terms: cyanosis."},
		{"Joint Swelling", "Plain terms: joint swelling."},
		{"Half (open", "Plain terms: half (open."},
	}
	for _, tt := range tests {
		t.Run(tt.symptom, func(t *testing.T) {
			if got := Static(tt.symptom); got != tt.want {
				t.Errorf("Static(%q) = %q, want %q", tt.symptom, got, tt.want)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	if _, ok := Lookup("Sneezing"); !ok {
		t.Error("expected curated entry for Sneezing")
	}
	if _, ok := Lookup("sneezing"); ok {
		t.Error("lookup should be case-sensitive")
	}
}

func TestLayTable_WellFormed(t *testing.T) {
	for symptom, text := range layTable {
		if text == "" || text[len(text)-1] != '.' {
			t.Errorf("%q: text %q should end with a period", symptom, text)
		}
	}
}
