package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"

	"github.com/iatro-health/iatro/internal/knowledge"
)

// KnowledgeRepo reads and writes the disease, prior and evidence tables.
// It satisfies knowledge.Provider.
type KnowledgeRepo struct {
	db      *sql.DB
	dialect goqu.DialectWrapper
}

var _ knowledge.Provider = (*KnowledgeRepo)(nil)

// ImportResult counts rows written by Import.
type ImportResult struct {
	Diseases  int
	Symptoms  int
	Evidence  int
	Priors    int
	Refreshed int // diseases that already existed
}

// Load reads the full knowledge base. Evidence rows are joined to symptom
// names; a missing triage severity becomes knowledge.DefaultTriageSeverity.
func (r *KnowledgeRepo) Load(ctx context.Context) (*knowledge.Base, error) {
	diseases, err := r.loadDiseases(ctx)
	if err != nil {
		return nil, err
	}
	if len(diseases) == 0 {
		return nil, knowledge.ErrEmptyKnowledgeBase
	}

	priors, err := r.loadPriors(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := r.loadEvidence(ctx)
	if err != nil {
		return nil, err
	}
	return knowledge.Build(diseases, priors, rows)
}

func (r *KnowledgeRepo) loadDiseases(ctx context.Context) ([]knowledge.Disease, error) {
	rows, err := queryDS(ctx, r.db, r.dialect.From("diseases").
		Select("id", "name", "triage_severity", "description").
		Order(goqu.C("id").Asc()))
	if err != nil {
		return nil, fmt.Errorf("query diseases: %w", err)
	}
	defer rows.Close()

	var out []knowledge.Disease
	for rows.Next() {
		var (
			d        knowledge.Disease
			severity sql.NullFloat64
			desc     sql.NullString
		)
		if err := rows.Scan(&d.ID, &d.Name, &severity, &desc); err != nil {
			return nil, fmt.Errorf("scan disease: %w", err)
		}
		d.TriageSeverity = knowledge.DefaultTriageSeverity
		if severity.Valid {
			d.TriageSeverity = severity.Float64
		}
		d.Description = desc.String
		out = append(out, d)
	}
	return out, rows.Err()
}

// loadPriors keeps the last non-null prevalence per disease.
func (r *KnowledgeRepo) loadPriors(ctx context.Context) (map[int64]float64, error) {
	rows, err := queryDS(ctx, r.db, r.dialect.From("disease_priors").
		Select("disease_id", "prevalence").
		Where(goqu.C("prevalence").IsNotNull()).
		Order(goqu.C("id").Asc()))
	if err != nil {
		return nil, fmt.Errorf("query priors: %w", err)
	}
	defer rows.Close()

	priors := make(map[int64]float64)
	for rows.Next() {
		var (
			id int64
			p  float64
		)
		if err := rows.Scan(&id, &p); err != nil {
			return nil, fmt.Errorf("scan prior: %w", err)
		}
		priors[id] = p
	}
	return priors, rows.Err()
}

func (r *KnowledgeRepo) loadEvidence(ctx context.Context) ([]knowledge.EvidenceRow, error) {
	ds := r.dialect.From(goqu.T("disease_phenotype_evidence").As("dpe")).
		Join(goqu.T("phenotypes").As("p"), goqu.On(goqu.I("p.id").Eq(goqu.I("dpe.phenotype_id")))).
		Select(goqu.I("dpe.disease_id"), goqu.I("p.name"), goqu.I("dpe.lr_pos"), goqu.I("dpe.lr_neg")).
		Order(goqu.I("dpe.id").Asc())
	rows, err := queryDS(ctx, r.db, ds)
	if err != nil {
		return nil, fmt.Errorf("query evidence: %w", err)
	}
	defer rows.Close()

	var out []knowledge.EvidenceRow
	for rows.Next() {
		var (
			row          knowledge.EvidenceRow
			lrPos, lrNeg sql.NullFloat64
		)
		if err := rows.Scan(&row.DiseaseID, &row.Symptom, &lrPos, &lrNeg); err != nil {
			return nil, fmt.Errorf("scan evidence: %w", err)
		}
		if lrPos.Valid {
			row.LRPos = knowledge.Float(lrPos.Float64)
		}
		if lrNeg.Valid {
			row.LRNeg = knowledge.Float(lrNeg.Float64)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Import writes a document in a single transaction. Diseases and symptoms
// are matched by name; a disease's priors and evidence are replaced by the
// document's.
func (r *KnowledgeRepo) Import(ctx context.Context, doc *knowledge.Document) (ImportResult, error) {
	var res ImportResult
	if doc == nil {
		return res, knowledge.ErrEmptyKnowledgeBase
	}
	if err := doc.Validate(); err != nil {
		return res, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return res, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	symptomIDs := make(map[string]int64)
	for _, dis := range doc.Diseases {
		dis.Name = strings.TrimSpace(dis.Name)
		id, existed, err := r.upsertDisease(ctx, tx, dis)
		if err != nil {
			return res, err
		}
		res.Diseases++
		if existed {
			res.Refreshed++
		}

		if _, err := execDS(ctx, tx, r.dialect.Delete("disease_priors").Where(goqu.C("disease_id").Eq(id))); err != nil {
			return res, fmt.Errorf("clear priors for %q: %w", dis.Name, err)
		}
		if dis.Prior != nil {
			if _, err := execDS(ctx, tx, r.dialect.Insert("disease_priors").Rows(goqu.Record{
				"disease_id": id,
				"prevalence": *dis.Prior,
				"source":     "import",
			})); err != nil {
				return res, fmt.Errorf("save prior for %q: %w", dis.Name, err)
			}
			res.Priors++
		}

		if _, err := execDS(ctx, tx, r.dialect.Delete("disease_phenotype_evidence").Where(goqu.C("disease_id").Eq(id))); err != nil {
			return res, fmt.Errorf("clear evidence for %q: %w", dis.Name, err)
		}
		for _, ev := range dis.Evidence {
			ev.Symptom = strings.TrimSpace(ev.Symptom)
			pid, ok := symptomIDs[ev.Symptom]
			if !ok {
				var created bool
				pid, created, err = r.ensurePhenotype(ctx, tx, ev.Symptom)
				if err != nil {
					return res, err
				}
				symptomIDs[ev.Symptom] = pid
				if created {
					res.Symptoms++
				}
			}
			lrPos, lrNeg := knowledge.DeriveRatios(ev.LRPos, ev.LRNeg, ev.Sensitivity, ev.Specificity)
			if _, err := execDS(ctx, tx, r.dialect.Insert("disease_phenotype_evidence").Rows(goqu.Record{
				"disease_id":   id,
				"phenotype_id": pid,
				"sensitivity":  nullFloat(ev.Sensitivity),
				"specificity":  nullFloat(ev.Specificity),
				"lr_pos":       nullFloat(lrPos),
				"lr_neg":       nullFloat(lrNeg),
				"notes":        ev.Notes,
			})); err != nil {
				return res, fmt.Errorf("save evidence %q for %q: %w", ev.Symptom, dis.Name, err)
			}
			res.Evidence++
		}
	}

	if err := tx.Commit(); err != nil {
		return res, fmt.Errorf("commit: %w", err)
	}
	return res, nil
}

// Seed imports the bundled sample knowledge base.
func (r *KnowledgeRepo) Seed(ctx context.Context) (ImportResult, error) {
	doc, err := knowledge.SampleDocument()
	if err != nil {
		return ImportResult{}, err
	}
	return r.Import(ctx, doc)
}

// Empty reports whether no diseases are stored.
func (r *KnowledgeRepo) Empty(ctx context.Context) (bool, error) {
	row, err := queryRowDS(ctx, r.db, r.dialect.From("diseases").Select(goqu.COUNT("*")))
	if err != nil {
		return false, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return false, fmt.Errorf("count diseases: %w", err)
	}
	return n == 0, nil
}

func (r *KnowledgeRepo) upsertDisease(ctx context.Context, tx *sql.Tx, dis knowledge.DiseaseDoc) (int64, bool, error) {
	var severity any
	if dis.TriageSeverity > 0 {
		severity = dis.TriageSeverity
	}
	id, err := r.lookupID(ctx, tx, "diseases", dis.Name)
	if err != nil {
		return 0, false, err
	}
	if id != 0 {
		_, err := execDS(ctx, tx, r.dialect.Update("diseases").Set(goqu.Record{
			"description":     dis.Description,
			"triage_severity": severity,
		}).Where(goqu.C("id").Eq(id)))
		if err != nil {
			return 0, false, fmt.Errorf("update disease %q: %w", dis.Name, err)
		}
		return id, true, nil
	}

	res, err := execDS(ctx, tx, r.dialect.Insert("diseases").Rows(goqu.Record{
		"name":            dis.Name,
		"description":     dis.Description,
		"triage_severity": severity,
	}))
	if err != nil {
		return 0, false, fmt.Errorf("insert disease %q: %w", dis.Name, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("disease id: %w", err)
	}
	return id, false, nil
}

func (r *KnowledgeRepo) ensurePhenotype(ctx context.Context, tx *sql.Tx, name string) (int64, bool, error) {
	id, err := r.lookupID(ctx, tx, "phenotypes", name)
	if err != nil || id != 0 {
		return id, false, err
	}
	res, err := execDS(ctx, tx, r.dialect.Insert("phenotypes").Rows(goqu.Record{"name": name}))
	if err != nil {
		return 0, false, fmt.Errorf("insert symptom %q: %w", name, err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("symptom id: %w", err)
	}
	return id, true, nil
}

// lookupID returns 0 when no row has the name.
func (r *KnowledgeRepo) lookupID(ctx context.Context, tx *sql.Tx, table, name string) (int64, error) {
	row, err := queryRowDS(ctx, tx, r.dialect.From(table).Select("id").Where(goqu.C("name").Eq(name)))
	if err != nil {
		return 0, err
	}
	var id int64
	switch err := row.Scan(&id); {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("lookup %s %q: %w", table, name, err)
	}
	return id, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
