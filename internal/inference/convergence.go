package inference

// Signals is the session state the controller decides on.
type Signals struct {
	TopBelief       float64
	TopHits         int
	TopRequired     int
	Confidence      float64
	EvidenceAnswers int
	Viable          int // diseases with belief above CandidateFloor
	Asked           int
	Available       int // symptoms the selector would offer
}

// Transition records the controller leaving the asking state.
type Transition struct {
	From    Status
	To      Status
	Reason  Reason
	Trigger string // event kind or "evaluate"
}

// Controller decides between asking and finalizing. Once finalized it stays
// finalized until Reset.
type Controller struct {
	cfg        Config
	status     Status
	reason     Reason
	lowGain    int
	transition *Transition
}

// NewController returns a controller in the asking state.
func NewController(cfg Config) *Controller {
	return &Controller{cfg: cfg, status: StatusAsking}
}

// Evaluate applies the stopping rules in priority order; the first rule that
// fires finalizes the session.
func (c *Controller) Evaluate(sig Signals, trigger string) (Status, Reason) {
	if c.status == StatusFinalized {
		return c.status, c.reason
	}
	if r := c.rule(sig); r != ReasonNone {
		c.transition = &Transition{From: c.status, To: StatusFinalized, Reason: r, Trigger: trigger}
		c.status = StatusFinalized
		c.reason = r
	}
	return c.status, c.reason
}

func (c *Controller) rule(sig Signals) Reason {
	cfg := c.cfg
	switch {
	case sig.TopHits >= sig.TopRequired && sig.TopBelief >= cfg.EarlyFinalizeTopP:
		return ReasonEvidenceSatisfied
	case sig.Confidence >= cfg.SuccessConfidence && sig.EvidenceAnswers >= cfg.MinEvidenceAnswers,
		sig.Viable <= 2:
		return ReasonConfidentOrCollapsed
	case c.lowGain >= cfg.LowGainLimit:
		return ReasonStalled
	case cfg.MaxSteps > 0 && sig.Asked >= cfg.MaxSteps:
		return ReasonStepLimit
	case sig.Available == 0:
		return ReasonExhausted
	}
	return ReasonNone
}

// RecordGain updates the low-gain streak after a confirmed symptom moved the
// top belief from prev to next.
func (c *Controller) RecordGain(prev, next float64) {
	if next-prev < c.cfg.LowGainThreshold {
		c.lowGain++
	} else {
		c.lowGain = 0
	}
}

// RecordNonePresent counts a dismissed batch as a low-gain step.
func (c *Controller) RecordNonePresent() {
	c.lowGain++
}

func (c *Controller) Status() Status          { return c.status }
func (c *Controller) Reason() Reason          { return c.reason }
func (c *Controller) LowGainStreak() int      { return c.lowGain }
func (c *Controller) Transition() *Transition { return c.transition }

// Reset returns the controller to its initial state.
func (c *Controller) Reset() {
	*c = Controller{cfg: c.cfg, status: StatusAsking}
}
