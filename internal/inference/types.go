package inference

// Status is the convergence state of a session.
type Status string

const (
	StatusAsking    Status = "asking"
	StatusFinalized Status = "finalized"
)

// Reason explains why a session finalized.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonEvidenceSatisfied    Reason = "per-disease evidence satisfied"
	ReasonConfidentOrCollapsed Reason = "global confidence or candidate collapse"
	ReasonStalled              Reason = "stalled progress"
	ReasonStepLimit            Reason = "step limit reached"
	ReasonExhausted            Reason = "no informative symptoms remain"
)

// EventKind identifies what the driver reported.
type EventKind string

const (
	EventConfirm     EventKind = "confirm"
	EventSkip        EventKind = "skip"
	EventNonePresent EventKind = "none"
)

// Event is a driver response to an offered batch.
type Event struct {
	Kind    EventKind
	Symptom string // set for EventConfirm
}

// Confirm reports that symptom is present.
func Confirm(symptom string) Event { return Event{Kind: EventConfirm, Symptom: symptom} }

// Skip dismisses the offered batch without information.
func Skip() Event { return Event{Kind: EventSkip} }

// NonePresent reports that none of the offered symptoms are present.
func NonePresent() Event { return Event{Kind: EventNonePresent} }

// Decision is what the session wants next.
type Decision struct {
	Status   Status
	Reason   Reason
	Offered  []string
	Warnings []string
}

// Ranked is a symptom with its selection score.
type Ranked struct {
	Symptom string
	Score   float64
}

// Candidate is a disease with its current belief.
type Candidate struct {
	DiseaseID int64
	Belief    float64
}

// HitRatio is a disease's confirmed evidence hits against its requirement.
type HitRatio struct {
	DiseaseID int64
	Hits      int
	Required  int
}

// Step records one applied event and the state it produced.
type Step struct {
	Index      int
	Kind       EventKind
	Symptoms   []string // confirmed symptom, or the dismissed batch
	TopID      int64
	TopBelief  float64
	Confidence float64
	Beliefs    map[int64]float64
}
