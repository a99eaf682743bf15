package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
)

var llmEventColumns = []any{
	"id", "sequence", "created_at", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success",
	"error_message", "request_body", "response_body",
}

func (r *eventRepo) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	ds := r.dialect.Insert("llm_request_events").Rows(goqu.Record{
		"sequence":      seqNum,
		"created_at":    time.Now().UnixMilli(),
		"provider":      data.Provider,
		"model":         data.Model,
		"purpose":       data.Purpose,
		"input_tokens":  data.InputTokens,
		"output_tokens": data.OutputTokens,
		"latency_ms":    data.LatencyMs,
		"success":       data.Success,
		"error_message": data.ErrorMessage,
		"request_body":  data.RequestBody,
		"response_body": data.ResponseBody,
	})
	if _, err := execDS(ctx, r.db, ds); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// QueryLLMEvents returns matching events, newest first.
func (r *eventRepo) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMRequestEvent, error) {
	ds := r.dialect.From("llm_request_events").Select(llmEventColumns...)
	if opts.After > 0 {
		ds = ds.Where(goqu.C("sequence").Gt(opts.After))
	}
	if opts.Before > 0 {
		ds = ds.Where(goqu.C("sequence").Lt(opts.Before))
	}
	if !opts.From.IsZero() {
		ds = ds.Where(goqu.C("created_at").Gte(opts.From.UnixMilli()))
	}
	if !opts.To.IsZero() {
		ds = ds.Where(goqu.C("created_at").Lte(opts.To.UnixMilli()))
	}
	if opts.Purpose != "" {
		ds = ds.Where(goqu.C("purpose").Eq(opts.Purpose))
	}
	ds = ds.Order(goqu.C("sequence").Desc())
	if opts.Limit > 0 {
		ds = ds.Limit(uint(opts.Limit))
	}

	rows, err := queryDS(ctx, r.db, ds)
	if err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var out []LLMRequestEvent
	for rows.Next() {
		e, err := scanLLMEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *eventRepo) GetLLMEvent(ctx context.Context, id int) (*LLMRequestEvent, error) {
	ds := r.dialect.From("llm_request_events").
		Select(llmEventColumns...).
		Where(goqu.C("id").Eq(id))
	row, err := queryRowDS(ctx, r.db, ds)
	if err != nil {
		return nil, err
	}
	e, err := scanLLMEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// LLMUsageByPurpose aggregates calls, failures and tokens per purpose.
func (r *eventRepo) LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error) {
	ds := r.dialect.From("llm_request_events").Select(
		goqu.C("purpose"),
		goqu.COUNT("*"),
		goqu.L("COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0)"),
		goqu.COALESCE(goqu.SUM("input_tokens"), 0),
		goqu.COALESCE(goqu.SUM("output_tokens"), 0),
		goqu.COALESCE(goqu.AVG("latency_ms"), 0),
	).GroupBy("purpose").Order(goqu.C("purpose").Asc())

	rows, err := queryDS(ctx, r.db, ds)
	if err != nil {
		return nil, fmt.Errorf("query LLM usage: %w", err)
	}
	defer rows.Close()

	var out []LLMUsage
	for rows.Next() {
		var (
			u       LLMUsage
			purpose sql.NullString
			avg     float64
		)
		if err := rows.Scan(&purpose, &u.Calls, &u.Failures, &u.InputTokens, &u.OutputTokens, &avg); err != nil {
			return nil, fmt.Errorf("scan LLM usage: %w", err)
		}
		u.Purpose = purpose.String
		u.AvgLatencyMs = int64(avg)
		out = append(out, u)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanLLMEvent(s scanner) (LLMRequestEvent, error) {
	var (
		e                                LLMRequestEvent
		created                          int64
		provider, model, purpose, errMsg sql.NullString
		reqBody, respBody                sql.NullString
		inTokens, outTokens, latency     sql.NullInt64
		success                          sql.NullBool
	)
	err := s.Scan(&e.ID, &e.Sequence, &created, &provider, &model, &purpose,
		&inTokens, &outTokens, &latency, &success, &errMsg, &reqBody, &respBody)
	if errors.Is(err, sql.ErrNoRows) {
		return e, err
	}
	if err != nil {
		return e, fmt.Errorf("scan LLM event: %w", err)
	}
	e.Timestamp = time.UnixMilli(created)
	e.Provider = provider.String
	e.Model = model.String
	e.Purpose = purpose.String
	e.InputTokens = int(inTokens.Int64)
	e.OutputTokens = int(outTokens.Int64)
	e.LatencyMs = latency.Int64
	e.Success = success.Bool
	e.ErrorMessage = errMsg.String
	e.RequestBody = reqBody.String
	e.ResponseBody = respBody.String
	return e, nil
}
