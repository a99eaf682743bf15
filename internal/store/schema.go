package store

import (
	"context"
	"database/sql"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
)

// Knowledge tables follow the layout of the curated pediatric database so
// existing files can be opened directly.
var knowledgeSchema = []string{
	`CREATE TABLE IF NOT EXISTS diseases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		description TEXT,
		triage_severity REAL
	)`,
	`CREATE TABLE IF NOT EXISTS disease_priors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		disease_id INTEGER NOT NULL REFERENCES diseases(id) ON DELETE CASCADE,
		prevalence REAL,
		age_min_months INTEGER,
		age_max_months INTEGER,
		region TEXT,
		source TEXT,
		year INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS phenotypes (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS disease_phenotype_evidence (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		disease_id INTEGER NOT NULL REFERENCES diseases(id) ON DELETE CASCADE,
		phenotype_id INTEGER NOT NULL REFERENCES phenotypes(id) ON DELETE CASCADE,
		sensitivity REAL,
		specificity REAL,
		lr_pos REAL,
		lr_neg REAL,
		notes TEXT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_evidence_disease ON disease_phenotype_evidence(disease_id)`,
}

// migrate creates the knowledge tables with plain DDL and hands the event
// tables to ent's migration engine.
func migrate(ctx context.Context, db *sql.DB, drv dialect.Driver) error {
	for _, stmt := range knowledgeSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec schema: %w", err)
		}
	}

	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("init ent migration: %w", err)
	}
	if err := m.Create(ctx, eventTables...); err != nil {
		return fmt.Errorf("create event tables: %w", err)
	}
	return nil
}
