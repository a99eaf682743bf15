package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
)

type explanationRepo struct {
	db      *sql.DB
	dialect goqu.DialectWrapper
}

func (r *explanationRepo) Get(ctx context.Context, symptom string) (*Explanation, error) {
	row, err := queryRowDS(ctx, r.db, r.dialect.From("explanations").
		Select("symptom", "text", "source", "model", "created_at").
		Where(goqu.C("symptom").Eq(symptom)))
	if err != nil {
		return nil, err
	}

	var (
		e       Explanation
		model   sql.NullString
		created int64
	)
	switch err := row.Scan(&e.Symptom, &e.Text, &e.Source, &model, &created); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("get explanation: %w", err)
	}
	e.Model = model.String
	e.CreatedAt = time.UnixMilli(created)
	return &e, nil
}

// Put replaces any cached explanation for the symptom.
func (r *explanationRepo) Put(ctx context.Context, e Explanation) error {
	if e.Symptom == "" || e.Text == "" {
		return errors.New("explanation needs a symptom and text")
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := execDS(ctx, tx, r.dialect.Delete("explanations").Where(goqu.C("symptom").Eq(e.Symptom))); err != nil {
		return fmt.Errorf("clear explanation: %w", err)
	}
	if _, err := execDS(ctx, tx, r.dialect.Insert("explanations").Rows(goqu.Record{
		"symptom":    e.Symptom,
		"text":       e.Text,
		"source":     e.Source,
		"model":      e.Model,
		"created_at": created.UnixMilli(),
	})); err != nil {
		return fmt.Errorf("save explanation: %w", err)
	}
	return tx.Commit()
}
