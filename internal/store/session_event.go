package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
)

var sessionColumns = []any{
	"id", "sequence", "started_at", "ended_at", "preset", "status", "reason",
	"outcome", "top_disease_id", "top_disease", "top_belief", "confidence", "steps",
}

func (r *eventRepo) StartSession(ctx context.Context, rec SessionRecord) error {
	if rec.ID == "" {
		return errors.New("session id is required")
	}
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	started := rec.StartedAt
	if started.IsZero() {
		started = time.Now()
	}

	ds := r.dialect.Insert("sessions").Rows(goqu.Record{
		"id":         rec.ID,
		"sequence":   seqNum,
		"started_at": started.UnixMilli(),
		"preset":     rec.Preset,
		"status":     rec.Status,
		"steps":      0,
	})
	if _, err := execDS(ctx, r.db, ds); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendStep(ctx context.Context, step StepRecord) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}
	symptoms, err := json.Marshal(step.Symptoms)
	if err != nil {
		return fmt.Errorf("marshal symptoms: %w", err)
	}
	ts := step.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	ins := r.dialect.Insert("session_steps").Rows(goqu.Record{
		"sequence":       seqNum,
		"session_id":     step.SessionID,
		"step":           step.Step,
		"kind":           step.Kind,
		"symptoms":       string(symptoms),
		"top_disease_id": step.TopDiseaseID,
		"top_belief":     step.TopBelief,
		"confidence":     step.Confidence,
		"created_at":     ts.UnixMilli(),
	})
	if _, err := execDS(ctx, tx, ins); err != nil {
		return fmt.Errorf("save step: %w", err)
	}

	upd := r.dialect.Update("sessions").
		Set(goqu.Record{"steps": goqu.L("steps + 1")}).
		Where(goqu.C("id").Eq(step.SessionID))
	if _, err := execDS(ctx, tx, upd); err != nil {
		return fmt.Errorf("bump step count: %w", err)
	}
	return tx.Commit()
}

func (r *eventRepo) FinishSession(ctx context.Context, rec SessionRecord) error {
	ended := rec.EndedAt
	if ended.IsZero() {
		ended = time.Now()
	}
	ds := r.dialect.Update("sessions").Set(goqu.Record{
		"ended_at":       ended.UnixMilli(),
		"status":         rec.Status,
		"reason":         rec.Reason,
		"outcome":        rec.Outcome,
		"top_disease_id": rec.TopDiseaseID,
		"top_disease":    rec.TopDisease,
		"top_belief":     rec.TopBelief,
		"confidence":     rec.Confidence,
	}).Where(goqu.C("id").Eq(rec.ID))

	res, err := execDS(ctx, r.db, ds)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("session %s not found", rec.ID)
	}
	return nil
}

// ListSessions returns sessions newest first.
func (r *eventRepo) ListSessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error) {
	ds := r.dialect.From("sessions").Select(sessionColumns...)
	if opts.After > 0 {
		ds = ds.Where(goqu.C("sequence").Gt(opts.After))
	}
	if opts.Before > 0 {
		ds = ds.Where(goqu.C("sequence").Lt(opts.Before))
	}
	if !opts.From.IsZero() {
		ds = ds.Where(goqu.C("started_at").Gte(opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		ds = ds.Where(goqu.C("started_at").Lte(opts.To.UnixMilli()))
	}
	ds = ds.Order(goqu.C("sequence").Desc())
	if opts.Limit > 0 {
		ds = ds.Limit(uint(opts.Limit))
	}

	rows, err := queryDS(ctx, r.db, ds)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		rec, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetSession(ctx context.Context, id string) (*SessionRecord, []StepRecord, error) {
	row, err := queryRowDS(ctx, r.db, r.dialect.From("sessions").
		Select(sessionColumns...).
		Where(goqu.C("id").Eq(id)))
	if err != nil {
		return nil, nil, err
	}
	rec, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	rows, err := queryDS(ctx, r.db, r.dialect.From("session_steps").
		Select("session_id", "sequence", "step", "kind", "symptoms",
			"top_disease_id", "top_belief", "confidence", "created_at").
		Where(goqu.C("session_id").Eq(id)).
		Order(goqu.C("step").Asc()))
	if err != nil {
		return nil, nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var steps []StepRecord
	for rows.Next() {
		var (
			s        StepRecord
			symptoms string
			topID    sql.NullInt64
			top, c   sql.NullFloat64
			created  int64
		)
		if err := rows.Scan(&s.SessionID, &s.Sequence, &s.Step, &s.Kind, &symptoms,
			&topID, &top, &c, &created); err != nil {
			return nil, nil, fmt.Errorf("scan step: %w", err)
		}
		if err := json.Unmarshal([]byte(symptoms), &s.Symptoms); err != nil {
			return nil, nil, fmt.Errorf("decode step symptoms: %w", err)
		}
		s.TopDiseaseID = topID.Int64
		s.TopBelief = top.Float64
		s.Confidence = c.Float64
		s.Timestamp = time.UnixMilli(created)
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return &rec, steps, nil
}

func scanSession(s scanner) (SessionRecord, error) {
	var (
		rec                     SessionRecord
		started                 int64
		ended, topID            sql.NullInt64
		reason, outcome, topDis sql.NullString
		top, conf               sql.NullFloat64
	)
	err := s.Scan(&rec.ID, &rec.Sequence, &started, &ended, &rec.Preset, &rec.Status,
		&reason, &outcome, &topID, &topDis, &top, &conf, &rec.Steps)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, err
	}
	if err != nil {
		return rec, fmt.Errorf("scan session: %w", err)
	}
	rec.StartedAt = time.UnixMilli(started)
	if ended.Valid {
		rec.EndedAt = time.UnixMilli(ended.Int64)
	}
	rec.Reason = reason.String
	rec.Outcome = outcome.String
	rec.TopDiseaseID = topID.Int64
	rec.TopDisease = topDis.String
	rec.TopBelief = top.Float64
	rec.Confidence = conf.Float64
	return rec, nil
}
