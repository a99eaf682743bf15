package console

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iatro-health/iatro/internal/inference"
	"github.com/iatro-health/iatro/internal/store"
)

// recorder writes session history. Storage failures are logged and never
// interrupt the conversation; after a failed start nothing more is written.
type recorder struct {
	events store.EventRepo
	log    zerolog.Logger
	id     string
	now    func() time.Time
}

func newRecorder(events store.EventRepo, log zerolog.Logger, id string, now func() time.Time) *recorder {
	return &recorder{events: events, log: log.With().Str("session", id).Logger(), id: id, now: now}
}

func (r *recorder) start(ctx context.Context, preset string) {
	if r.events == nil {
		return
	}
	err := r.events.StartSession(ctx, store.SessionRecord{
		ID:        r.id,
		StartedAt: r.now(),
		Preset:    preset,
		Status:    string(inference.StatusAsking),
	})
	if err != nil {
		r.log.Warn().Err(err).Msg("failed to record session start")
		r.events = nil
	}
}

func (r *recorder) step(ctx context.Context, s *inference.Session) {
	if r.events == nil {
		return
	}
	traj := s.Trajectory()
	if len(traj) == 0 {
		return
	}
	st := traj[len(traj)-1]
	err := r.events.AppendStep(ctx, store.StepRecord{
		SessionID:    r.id,
		Step:         st.Index,
		Kind:         string(st.Kind),
		Symptoms:     st.Symptoms,
		TopDiseaseID: st.TopID,
		TopBelief:    st.TopBelief,
		Confidence:   st.Confidence,
		Timestamp:    r.now(),
	})
	if err != nil {
		r.log.Warn().Err(err).Int("step", st.Index).Msg("failed to record session step")
	}
}

func (r *recorder) finish(ctx context.Context, s *inference.Session, e *inference.Engine, outcome string) {
	if r.events == nil {
		return
	}
	rec := store.SessionRecord{
		ID:      r.id,
		EndedAt: r.now(),
		Status:  string(s.Status()),
		Reason:  string(s.Reason()),
		Outcome: outcome,
	}
	if ranked := s.Ranked(); len(ranked) > 0 {
		rec.TopDiseaseID = ranked[0].DiseaseID
		rec.TopDisease = diseaseName(e.Base(), ranked[0].DiseaseID)
		rec.TopBelief = ranked[0].Belief
	}
	rec.Confidence, _ = s.Confidence()
	if err := r.events.FinishSession(ctx, rec); err != nil {
		r.log.Warn().Err(err).Msg("failed to record session end")
	}
}
