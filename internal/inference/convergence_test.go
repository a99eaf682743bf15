package inference

import "testing"

func asking() Signals {
	return Signals{
		TopBelief:   0.3,
		TopHits:     0,
		TopRequired: 2,
		Confidence:  0.3,
		Viable:      5,
		Asked:       1,
		Available:   3,
	}
}

func TestController_Rules(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		mutate func(*Signals)
		streak int
		want   Reason
	}{
		{"keeps asking", Strict(), func(*Signals) {}, 0, ReasonNone},
		{"evidence satisfied", Strict(), func(s *Signals) { s.TopHits, s.TopBelief = 2, 0.55 }, 0, ReasonEvidenceSatisfied},
		{"hits without belief", Strict(), func(s *Signals) { s.TopHits, s.TopBelief = 3, 0.54 }, 0, ReasonNone},
		{"confident", Strict(), func(s *Signals) { s.Confidence, s.EvidenceAnswers = 0.9, 3 }, 0, ReasonConfidentOrCollapsed},
		{"confident too early", Strict(), func(s *Signals) { s.Confidence, s.EvidenceAnswers = 0.95, 2 }, 0, ReasonNone},
		{"collapsed", Strict(), func(s *Signals) { s.Viable = 2 }, 0, ReasonConfidentOrCollapsed},
		{"stalled", Strict(), func(*Signals) {}, 2, ReasonStalled},
		{"step limit off", Strict(), func(s *Signals) { s.Asked = 500 }, 0, ReasonNone},
		{"step limit", Lenient(), func(s *Signals) { s.Asked = 20 }, 0, ReasonStepLimit},
		{"exhausted", Strict(), func(s *Signals) { s.Available = 0 }, 0, ReasonExhausted},
		{"evidence beats collapse", Strict(), func(s *Signals) { s.TopHits, s.TopBelief, s.Viable = 2, 0.9, 1 }, 0, ReasonEvidenceSatisfied},
		{"stalled beats exhausted", Strict(), func(s *Signals) { s.Available = 0 }, 2, ReasonStalled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(tt.cfg)
			for i := 0; i < tt.streak; i++ {
				c.RecordNonePresent()
			}
			sig := asking()
			tt.mutate(&sig)
			status, reason := c.Evaluate(sig, "evaluate")
			if reason != tt.want {
				t.Errorf("reason = %q, want %q", reason, tt.want)
			}
			wantStatus := StatusAsking
			if tt.want != ReasonNone {
				wantStatus = StatusFinalized
			}
			if status != wantStatus {
				t.Errorf("status = %q, want %q", status, wantStatus)
			}
		})
	}
}

func TestController_FinalizedIsTerminal(t *testing.T) {
	c := NewController(Strict())
	sig := asking()
	sig.Available = 0
	c.Evaluate(sig, "evaluate")

	status, reason := c.Evaluate(asking(), "confirm")
	if status != StatusFinalized || reason != ReasonExhausted {
		t.Errorf("got (%q, %q), want finalized/exhausted", status, reason)
	}
	tr := c.Transition()
	if tr == nil || tr.From != StatusAsking || tr.To != StatusFinalized || tr.Trigger != "evaluate" {
		t.Errorf("transition = %+v", tr)
	}

	c.Reset()
	if c.Status() != StatusAsking || c.Transition() != nil {
		t.Errorf("reset did not restore asking state")
	}
}

func TestController_RecordGain(t *testing.T) {
	c := NewController(Strict())
	c.RecordGain(0.30, 0.34)
	c.RecordGain(0.34, 0.30)
	if c.LowGainStreak() != 2 {
		t.Fatalf("streak = %d, want 2", c.LowGainStreak())
	}
	c.RecordGain(0.30, 0.40)
	if c.LowGainStreak() != 0 {
		t.Errorf("streak = %d after large gain, want 0", c.LowGainStreak())
	}
}
