package knowledge

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is the YAML knowledge-base format. Diseases receive IDs in file
// order starting at 1.
type Document struct {
	Diseases []DiseaseDoc `yaml:"diseases"`
}

// DiseaseDoc describes one disease and its evidence.
type DiseaseDoc struct {
	Name           string        `yaml:"name"`
	Description    string        `yaml:"description,omitempty"`
	TriageSeverity float64       `yaml:"triage_severity,omitempty"`
	Prior          *float64      `yaml:"prior,omitempty"`
	Evidence       []EvidenceDoc `yaml:"evidence,omitempty"`
}

// EvidenceDoc is one symptom record for a disease. Missing ratios are
// derived from sensitivity and specificity when both are present.
type EvidenceDoc struct {
	Symptom     string   `yaml:"symptom"`
	LRPos       *float64 `yaml:"lr_pos,omitempty"`
	LRNeg       *float64 `yaml:"lr_neg,omitempty"`
	Sensitivity *float64 `yaml:"sensitivity,omitempty"`
	Specificity *float64 `yaml:"specificity,omitempty"`
	Notes       string   `yaml:"notes,omitempty"`
}

// ParseDocument decodes and validates a YAML knowledge base.
func ParseDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse knowledge base: %w", err)
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks names and numeric ranges.
func (d *Document) Validate() error {
	if len(d.Diseases) == 0 {
		return ErrEmptyKnowledgeBase
	}
	var errs []error
	seen := make(map[string]bool, len(d.Diseases))
	for i, dis := range d.Diseases {
		name := strings.TrimSpace(dis.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("disease %d: missing name", i+1))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("disease %q: duplicate name", name))
		}
		seen[name] = true
		if dis.Prior != nil && (*dis.Prior < 0 || *dis.Prior > 1) {
			errs = append(errs, fmt.Errorf("disease %q: prior %v outside [0,1]", name, *dis.Prior))
		}
		for _, ev := range dis.Evidence {
			if strings.TrimSpace(ev.Symptom) == "" {
				errs = append(errs, fmt.Errorf("disease %q: evidence with empty symptom", name))
			}
			if ev.LRPos != nil && *ev.LRPos <= 0 {
				errs = append(errs, fmt.Errorf("disease %q, symptom %q: lr_pos must be positive", name, ev.Symptom))
			}
		}
	}
	return errors.Join(errs...)
}

// Records flattens the document into the raw inputs of Build.
func (d *Document) Records() ([]Disease, map[int64]float64, []EvidenceRow) {
	diseases := make([]Disease, 0, len(d.Diseases))
	priors := make(map[int64]float64)
	var rows []EvidenceRow
	for i, dis := range d.Diseases {
		id := int64(i + 1)
		diseases = append(diseases, Disease{
			ID:             id,
			Name:           strings.TrimSpace(dis.Name),
			TriageSeverity: dis.TriageSeverity,
			Description:    dis.Description,
		})
		if dis.Prior != nil {
			priors[id] = *dis.Prior
		}
		for _, ev := range dis.Evidence {
			lrPos, lrNeg := DeriveRatios(ev.LRPos, ev.LRNeg, ev.Sensitivity, ev.Specificity)
			rows = append(rows, EvidenceRow{
				Symptom:   strings.TrimSpace(ev.Symptom),
				DiseaseID: id,
				LRPos:     lrPos,
				LRNeg:     lrNeg,
			})
		}
	}
	return diseases, priors, rows
}

// Base builds a knowledge base from the document.
func (d *Document) Base() (*Base, error) {
	return Build(d.Records())
}

// FileProvider loads a knowledge base from a YAML file.
type FileProvider struct {
	Path string
}

// Load reads and parses the file.
func (p *FileProvider) Load(ctx context.Context) (*Base, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p.Path)
	if err != nil {
		return nil, fmt.Errorf("read knowledge base: %w", err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Path, err)
	}
	return doc.Base()
}
