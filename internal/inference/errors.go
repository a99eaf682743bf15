package inference

import "errors"

var (
	// ErrUnknownSymptom is returned when a confirmed symptom has no entry in
	// the evidence map. The session state is left unchanged.
	ErrUnknownSymptom = errors.New("unknown symptom")

	// ErrDegenerateRenormalization is returned by UpdatePosteriors when the
	// updated beliefs sum to zero. The previous beliefs are kept.
	ErrDegenerateRenormalization = errors.New("degenerate renormalization")

	ErrAlreadyAsked = errors.New("symptom already asked")
	ErrFinalized    = errors.New("session finalized")
	ErrNotOffered   = errors.New("no symptoms offered")
)
