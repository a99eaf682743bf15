// Package console runs a diagnostic session on a line-oriented terminal.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iatro-health/iatro/internal/inference"
	"github.com/iatro-health/iatro/internal/store"
	"github.com/iatro-health/iatro/internal/ui/theme"
)

const (
	defaultTopN   = 3
	defaultFinalN = 5
)

// Options configures a Driver. Engine, In and Out are required.
type Options struct {
	Engine    *inference.Engine
	Explainer Explainer
	Events    store.EventRepo // nil disables session history
	Preset    string
	In        io.Reader
	Out       io.Writer
	Log       zerolog.Logger

	TopN   int // diagnoses shown per step
	FinalN int // diagnoses in the final summary

	NewID func() string
	Now   func() time.Time
}

// Result summarizes a finished run.
type Result struct {
	SessionID string
	Outcome   string
	Reason    inference.Reason
	Ranked    []inference.Candidate
	Steps     int
}

// Driver reads answers from In and writes the conversation to Out.
type Driver struct {
	opts Options
}

// New creates a Driver, filling defaults for optional fields.
func New(opts Options) *Driver {
	if opts.Explainer == nil {
		opts.Explainer = staticExplainer{}
	}
	if opts.TopN <= 0 {
		opts.TopN = defaultTopN
	}
	if opts.FinalN <= 0 {
		opts.FinalN = defaultFinalN
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Driver{opts: opts}
}

// Run drives one session until it finalizes, the user quits, input ends
// or ctx is cancelled.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	o := d.opts
	e := o.Engine
	s := e.NewSession()
	rec := newRecorder(o.Events, o.Log, o.NewID(), o.Now)
	rec.start(ctx, o.Preset)

	w := o.Out
	scanner := bufio.NewScanner(o.In)

	lipgloss.Fprintln(w, theme.Title.Render("\nPediatric Disease Diagnosis System"))
	lipgloss.Fprintln(w, theme.Rule.Render(strings.Repeat("-", 34)))
	lipgloss.Fprintln(w, theme.Subtitle.Render("Select symptoms the child HAS. No need to confirm negatives."))

	outcome := store.OutcomeFinalized
	dec := s.Next()
loop:
	for {
		if err := ctx.Err(); err != nil {
			rec.finish(context.WithoutCancel(ctx), s, e, store.OutcomeAbandoned)
			return d.result(rec.id, store.OutcomeAbandoned, s), err
		}

		lipgloss.Fprintln(w)
		renderCandidates(w, e.Base(), s.Ranked(), o.TopN)
		renderProgress(w, s)

		if dec.Status == inference.StatusFinalized {
			lipgloss.Fprintln(w, "\n"+reasonMessage(dec.Reason, e.Config().MaxSteps))
			break
		}

		lipgloss.Fprintln(w, theme.Title.Render("\nNext symptom options (choose one that IS present):"))
		renderOptions(ctx, w, o.Explainer, e.Base(), dec.Offered)

		for {
			lipgloss.Fprintf(w, "\nChoose symptom 1-%d that the child HAS (or '0' for none, 's' to skip, 'q' to quit): ", len(dec.Offered))
			if !scanner.Scan() {
				lipgloss.Fprintln(w, "\nExiting.")
				outcome = store.OutcomeAbandoned
				break loop
			}
			ev, quit, ok := parseChoice(scanner.Text(), dec.Offered)
			if quit {
				outcome = store.OutcomeAbandoned
				break loop
			}
			if !ok {
				lipgloss.Fprintln(w, theme.Bad.Render("Invalid selection; try again."))
				continue
			}

			next, err := s.Apply(ev)
			if err != nil {
				// Offered symptoms are always known and unasked.
				return d.result(rec.id, outcome, s), fmt.Errorf("apply %s: %w", ev.Kind, err)
			}
			for _, warning := range next.Warnings {
				lipgloss.Fprintln(w, theme.Hint.Render(warning))
			}
			rec.step(ctx, s)
			dec = next
			break
		}
	}

	res := d.result(rec.id, outcome, s)
	if outcome == store.OutcomeFinalized {
		renderFinal(w, e.Base(), res.Ranked, o.FinalN)
	}
	rec.finish(ctx, s, e, outcome)
	return res, scanner.Err()
}

func (d *Driver) result(id, outcome string, s *inference.Session) Result {
	return Result{
		SessionID: id,
		Outcome:   outcome,
		Reason:    s.Reason(),
		Ranked:    s.Ranked(),
		Steps:     len(s.Trajectory()),
	}
}

// parseChoice maps a typed answer to an event. quit reports "q"; ok is
// false for anything unrecognized.
func parseChoice(input string, offered []string) (ev inference.Event, quit, ok bool) {
	choice := strings.ToLower(strings.TrimSpace(input))
	switch choice {
	case "q", "quit":
		return inference.Event{}, true, false
	case "0", "none", "n":
		return inference.NonePresent(), false, true
	case "s", "skip":
		return inference.Skip(), false, true
	}
	idx, err := strconv.Atoi(choice)
	if err != nil || idx < 1 || idx > len(offered) {
		return inference.Event{}, false, false
	}
	return inference.Confirm(offered[idx-1]), false, true
}
