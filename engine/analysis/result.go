package analysis

import (
	"fmt"

	"github.com/latticedyn/hexsweep/engine/domain"
)

// Step names used in per-step failure reporting. StepInvocation marks a
// failure of the solver invocation as a whole, before any step produced a
// payload.
const (
	StepStatic     = "static"
	StepBuckle     = "buckle"
	StepFrequency  = "frequency"
	StepSSD        = "ssd"
	StepInvocation = "invocation"
)

// StaticResult summarizes the linear static solution.
type StaticResult struct {
	MaxVonMises     float64 `json:"max_von_mises"`              // N/cm²
	MaxDisplacement float64 `json:"max_displacement,omitempty"` // cm
	ReactionForce   float64 `json:"reaction_force,omitempty"`   // N
}

// BucklingResult carries the extracted buckling eigenvalues in ascending
// order. The first is the scale factor on the applied load at which buckling
// onset occurs.
type BucklingResult struct {
	LoadFactors []float64 `json:"load_factors"`
}

// FrequencyResult carries the extracted natural frequencies in Hz,
// ascending.
type FrequencyResult struct {
	NaturalFrequencies []float64 `json:"natural_frequencies"`
}

// FRFPoint is one sample of the forced-response curve.
type FRFPoint struct {
	Frequency float64 `json:"f"` // Hz
	Response  float64 `json:"r"` // aggregate response metric, non-negative
}

// FRFCurve is the steady-state response over the swept frequency range,
// ordered by strictly increasing frequency.
type FRFCurve []FRFPoint

// Validate checks the ordering invariant and non-negativity of the response
// metric. Violations are extraction errors: they mean the payload is
// malformed, not that the structure behaved unexpectedly.
func (c FRFCurve) Validate() error {
	if len(c) < 2 {
		return &domain.ExtractionError{Field: "frf", Wrapped: fmt.Errorf("curve has %d samples, need at least 2", len(c))}
	}
	for i := range c {
		if i > 0 && c[i].Frequency <= c[i-1].Frequency {
			return &domain.ExtractionError{Field: "frf", Wrapped: fmt.Errorf("frequencies not strictly increasing at sample %d", i)}
		}
		if c[i].Response < 0 {
			return &domain.ExtractionError{Field: "frf", Wrapped: fmt.Errorf("negative response at sample %d", i)}
		}
	}
	return nil
}

// Response is what a solver adapter returns for one Request: a typed payload
// per requested step, or a failure message for the steps that did not
// produce one. A step absent from both maps means the solver never ran it.
type Response struct {
	JobID     string           `json:"job_id"`
	Static    *StaticResult    `json:"static,omitempty"`
	Buckling  *BucklingResult  `json:"buckling,omitempty"`
	Frequency *FrequencyResult `json:"frequency,omitempty"`
	FRF       FRFCurve         `json:"frf,omitempty"`

	// StepErrors maps a step name to the solver's diagnostic message.
	StepErrors map[string]string `json:"step_errors,omitempty"`
}

// Failed reports whether the named step ended in failure, with its message.
func (r *Response) Failed(step string) (string, bool) {
	msg, ok := r.StepErrors[step]
	return msg, ok
}
