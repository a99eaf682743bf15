package console

import (
	"context"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/iatro-health/iatro/internal/inference"
	"github.com/iatro-health/iatro/internal/knowledge"
	"github.com/iatro-health/iatro/internal/ui/theme"
)

// Explainer provides lay text for a symptom.
type Explainer interface {
	Text(ctx context.Context, symptom string) string
}

// staticExplainer is used when no Explainer is configured.
type staticExplainer struct{}

func (staticExplainer) Text(context.Context, string) string { return "" }

var reasonMessages = map[inference.Reason]string{
	inference.ReasonEvidenceSatisfied:    "Early finalize criteria met (per-disease).",
	inference.ReasonConfidentOrCollapsed: "Stopping criteria met.",
	inference.ReasonStalled:              "Insufficient progress. Finalizing.",
	inference.ReasonExhausted:            "No further high-value symptoms remain. Finalizing.",
}

func reasonMessage(r inference.Reason, maxSteps int) string {
	if r == inference.ReasonStepLimit {
		return fmt.Sprintf("Maximum steps (%d) reached. Finalizing.", maxSteps)
	}
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

func diseaseName(b *knowledge.Base, id int64) string {
	if d, ok := b.Disease(id); ok && d.Name != "" {
		return d.Name
	}
	return fmt.Sprintf("disease #%d", id)
}

// renderCandidates prints the leading n diagnoses with severity and
// description.
func renderCandidates(w io.Writer, b *knowledge.Base, ranked []inference.Candidate, n int) {
	lipgloss.Fprintln(w, theme.Title.Render("Current top diagnoses:"))
	for i, c := range ranked {
		if i >= n {
			break
		}
		d, _ := b.Disease(c.DiseaseID)
		name := theme.Body.Render(diseaseName(b, c.DiseaseID))
		if i == 0 {
			name = theme.Leading.Render(diseaseName(b, c.DiseaseID))
		}
		lipgloss.Fprintf(w, "%s (P=%.3f) %s\n", name, c.Belief, theme.Bar(c.Belief, 20))
		lipgloss.Fprintf(w, "  Triage severity: %s\n", theme.Severity(d.Severity()).Render(fmt.Sprintf("%.1f", d.Severity())))
		if d.Description != "" {
			lipgloss.Fprintf(w, "  Description: %s\n", theme.Subtitle.Render(d.Description))
		}
	}
}

// renderProgress prints the confidence line for a session.
func renderProgress(w io.Writer, s *inference.Session) {
	conf, gap := s.Confidence()
	hits := s.TopHits()
	lipgloss.Fprintf(w, "Current confidence: %.2f (gap=%.2f), answered with evidence: %d, top disease hits %d/%d\n",
		conf, gap, s.EvidenceAnswers(), hits.Hits, hits.Required)
}

// renderOptions prints numbered symptoms with lay text and positive LR
// coverage.
func renderOptions(ctx context.Context, w io.Writer, ex Explainer, b *knowledge.Base, symptoms []string) {
	for i, sym := range symptoms {
		lipgloss.Fprintf(w, "%s %s\n", theme.Option.Render(fmt.Sprintf("%d.", i+1)), theme.Body.Render(sym))
		if text := ex.Text(ctx, sym); text != "" {
			lipgloss.Fprintf(w, "   What it means: %s\n", theme.Hint.Render(text))
		}
		lipgloss.Fprintf(w, "   Positive LR coverage: %d diseases\n", b.Evidence.Coverage(sym))
	}
}

// renderFinal prints the final ranking as percentages.
func renderFinal(w io.Writer, b *knowledge.Base, ranked []inference.Candidate, n int) {
	lipgloss.Fprintln(w)
	lipgloss.Fprintln(w, theme.Rule.Render(strings.Repeat("=", 50)))
	lipgloss.Fprintln(w, theme.Title.Render("Final Diagnosis:"))
	for i, c := range ranked {
		if i >= n {
			break
		}
		lipgloss.Fprintf(w, "%s: %.1f%%\n", diseaseName(b, c.DiseaseID), c.Belief*100)
	}
}

// Preview prints the n highest-value symptoms a fresh session would offer.
func Preview(ctx context.Context, w io.Writer, e *inference.Engine, ex Explainer, n int) {
	if ex == nil {
		ex = staticExplainer{}
	}
	ranked := e.Preview(n)
	symptoms := make([]string, len(ranked))
	for i, r := range ranked {
		symptoms[i] = r.Symptom
	}
	lipgloss.Fprintln(w, theme.Title.Render("Recommended next symptoms (with plain-language help):"))
	renderOptions(ctx, w, ex, e.Base(), symptoms)
}
