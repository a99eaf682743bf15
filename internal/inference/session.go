package inference

import (
	"errors"
	"fmt"
	"maps"
)

// Session is one diagnostic conversation. It is not safe for concurrent
// use; independent sessions from the same Engine may run in parallel.
type Session struct {
	engine *Engine
	ctrl   *Controller

	beliefs         map[int64]float64
	asked           map[string]bool
	askedOrder      []string
	strength        map[Cluster]float64
	hits            map[int64]int
	evidenceAnswers int
	offered         []string
	trajectory      []Step
}

// Reset discards all progress and returns to the priors.
func (s *Session) Reset() {
	s.beliefs = maps.Clone(s.engine.base.Priors)
	s.asked = make(map[string]bool)
	s.askedOrder = nil
	s.strength = make(map[Cluster]float64)
	s.hits = make(map[int64]int)
	s.evidenceAnswers = 0
	s.offered = nil
	s.trajectory = nil
	s.ctrl.Reset()
}

func (s *Session) inputs() Inputs {
	e := s.engine
	return Inputs{
		Beliefs:  s.beliefs,
		Evidence: e.base.Evidence,
		Asked:    s.asked,
		Clusters: e.clusters,
		Strength: s.strength,
		Scarcity: e.scarcity,
		Config:   e.cfg,
	}
}

// Next evaluates the stopping rules and, while asking, returns the next
// ranked batch. Calling it repeatedly without an event returns the same
// decision.
func (s *Session) Next() Decision {
	return s.next("evaluate")
}

func (s *Session) next(trigger string) Decision {
	if s.ctrl.Status() == StatusFinalized {
		s.offered = nil
		return Decision{Status: StatusFinalized, Reason: s.ctrl.Reason()}
	}

	batch := SelectSymptoms(s.inputs(), s.engine.cfg.BatchSize)
	status, reason := s.ctrl.Evaluate(s.signals(len(batch)), trigger)
	if status == StatusFinalized {
		s.offered = nil
		top := s.top()
		s.engine.log.Debug().
			Str("reason", string(reason)).
			Int64("top_disease", top.DiseaseID).
			Float64("top_belief", top.Belief).
			Int("asked", len(s.askedOrder)).
			Msg("session finalized")
		return Decision{Status: status, Reason: reason}
	}

	s.offered = make([]string, len(batch))
	for i, r := range batch {
		s.offered[i] = r.Symptom
	}
	return Decision{Status: status, Offered: append([]string(nil), s.offered...)}
}

func (s *Session) signals(available int) Signals {
	top := s.top()
	conf, _ := s.Confidence()
	viable := 0
	for _, p := range s.beliefs {
		if p > s.engine.cfg.CandidateFloor {
			viable++
		}
	}
	return Signals{
		TopBelief:       top.Belief,
		TopHits:         s.hits[top.DiseaseID],
		TopRequired:     s.engine.required[top.DiseaseID],
		Confidence:      conf,
		EvidenceAnswers: s.evidenceAnswers,
		Viable:          viable,
		Asked:           len(s.askedOrder),
		Available:       available,
	}
}

// Apply reports the driver's answer and returns the next decision.
//
// A confirmed symptom need not have been offered, but it must be known and
// not yet asked. Unknown symptoms leave the state unchanged and return an
// error wrapping ErrUnknownSymptom. A degenerate update keeps the previous
// beliefs and is reported through Decision.Warnings.
func (s *Session) Apply(ev Event) (Decision, error) {
	if s.ctrl.Status() == StatusFinalized {
		return Decision{Status: StatusFinalized, Reason: s.ctrl.Reason()}, ErrFinalized
	}

	var warnings []string
	switch ev.Kind {
	case EventConfirm:
		w, err := s.confirm(ev.Symptom)
		if err != nil {
			return s.current(), err
		}
		warnings = w
	case EventSkip, EventNonePresent:
		if len(s.offered) == 0 {
			return s.current(), ErrNotOffered
		}
		dismissed := s.offered
		for _, sym := range dismissed {
			s.markAsked(sym)
		}
		if ev.Kind == EventNonePresent {
			s.ctrl.RecordNonePresent()
		}
		s.record(ev.Kind, dismissed)
	default:
		return s.current(), fmt.Errorf("unknown event kind %q", ev.Kind)
	}

	d := s.next(string(ev.Kind))
	d.Warnings = warnings
	return d, nil
}

func (s *Session) confirm(symptom string) ([]string, error) {
	e := s.engine
	if !e.base.Evidence.Has(symptom) {
		e.log.Warn().Str("symptom", symptom).Msg("ignoring unknown symptom")
		return nil, fmt.Errorf("confirm %q: %w", symptom, ErrUnknownSymptom)
	}
	if s.asked[symptom] {
		return nil, fmt.Errorf("confirm %q: %w", symptom, ErrAlreadyAsked)
	}

	s.markAsked(symptom)
	cl := e.clusters.Of(symptom)
	s.strength[cl] = min(e.cfg.ClusterBoostMax, s.strength[cl]+e.cfg.ClusterBoostPerHit)

	backed := false
	for id, entry := range e.base.Evidence[symptom] {
		if entry.LRPos != nil {
			s.hits[id]++
			backed = true
		}
	}
	if backed {
		s.evidenceAnswers++
	}

	var warnings []string
	prevTop := s.top().Belief
	updated, err := UpdatePosteriors(s.inputs(), symptom)
	switch {
	case errors.Is(err, ErrDegenerateRenormalization):
		e.log.Warn().Str("symptom", symptom).Msg("belief update degenerate, keeping previous beliefs")
		warnings = append(warnings, fmt.Sprintf("update for %q was degenerate; beliefs unchanged", symptom))
	case err != nil:
		return nil, err
	default:
		s.beliefs = updated
	}
	s.ctrl.RecordGain(prevTop, s.top().Belief)
	s.record(EventConfirm, []string{symptom})
	return warnings, nil
}

func (s *Session) markAsked(symptom string) {
	if s.asked[symptom] {
		return
	}
	s.asked[symptom] = true
	s.askedOrder = append(s.askedOrder, symptom)
}

func (s *Session) record(kind EventKind, symptoms []string) {
	top := s.top()
	conf, _ := s.Confidence()
	s.trajectory = append(s.trajectory, Step{
		Index:      len(s.trajectory) + 1,
		Kind:       kind,
		Symptoms:   append([]string(nil), symptoms...),
		TopID:      top.DiseaseID,
		TopBelief:  top.Belief,
		Confidence: conf,
		Beliefs:    maps.Clone(s.beliefs),
	})
	s.offered = nil
}

func (s *Session) current() Decision {
	return Decision{
		Status:  s.ctrl.Status(),
		Reason:  s.ctrl.Reason(),
		Offered: append([]string(nil), s.offered...),
	}
}

func (s *Session) top() Candidate {
	ranked := RankBeliefs(s.beliefs)
	if len(ranked) == 0 {
		return Candidate{}
	}
	return ranked[0]
}

// Beliefs returns a copy of the current beliefs.
func (s *Session) Beliefs() map[int64]float64 { return maps.Clone(s.beliefs) }

// Ranked returns the candidates by descending belief.
func (s *Session) Ranked() []Candidate { return RankBeliefs(s.beliefs) }

// Confidence returns the current confidence and top-two gap.
func (s *Session) Confidence() (float64, float64) {
	return EvaluateConfidence(s.beliefs, s.engine.severity, s.engine.cfg.GapWeight)
}

// HitRatios returns confirmed evidence hits per disease, ordered by ID.
func (s *Session) HitRatios() []HitRatio {
	out := make([]HitRatio, 0, len(s.engine.ids))
	for _, id := range s.engine.ids {
		out = append(out, HitRatio{DiseaseID: id, Hits: s.hits[id], Required: s.engine.required[id]})
	}
	return out
}

// TopHits returns the hit ratio of the current top candidate.
func (s *Session) TopHits() HitRatio {
	id := s.top().DiseaseID
	return HitRatio{DiseaseID: id, Hits: s.hits[id], Required: s.engine.required[id]}
}

func (s *Session) Status() Status          { return s.ctrl.Status() }
func (s *Session) Reason() Reason          { return s.ctrl.Reason() }
func (s *Session) EvidenceAnswers() int    { return s.evidenceAnswers }
func (s *Session) LowGainStreak() int      { return s.ctrl.LowGainStreak() }
func (s *Session) Transition() *Transition { return s.ctrl.Transition() }
func (s *Session) Asked() []string         { return append([]string(nil), s.askedOrder...) }
func (s *Session) Trajectory() []Step      { return append([]Step(nil), s.trajectory...) }

// ClusterStrength returns the accumulated boost per cluster.
func (s *Session) ClusterStrength() map[Cluster]float64 { return maps.Clone(s.strength) }
