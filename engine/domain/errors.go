package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for per-point geometry rejection and run-level
// configuration problems.
var (
	ErrBadSideLength   = errors.New("side length must be positive")
	ErrBetaOutOfRange  = errors.New("slenderness ratio outside [1/20, 1/5]")
	ErrThetaOutOfRange = errors.New("configuration angle outside [10°, 30°]")
	ErrBadCellCount    = errors.New("cell counts must be at least 1")
	ErrBadMaterial     = errors.New("material constants must be positive")

	ErrEmptySweepRange = errors.New("empty sweep range")
	ErrBadLoadCase     = errors.New("invalid load case")
	ErrBadFreqRange    = errors.New("invalid frequency range")
)

// GeometryError marks a design point whose (β,θ) combination or cell layout
// cannot produce a valid lattice. It aborts only that sweep point.
type GeometryError struct {
	Config  LatticeConfig
	Wrapped error
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry %s: %v", e.Config.Label(), e.Wrapped)
}

func (e *GeometryError) Unwrap() error { return e.Wrapped }

// SolverError marks an external solver failure, non-convergence or timeout.
// The sweep records the reason and continues with the remaining points.
type SolverError struct {
	Step    string // which analysis step failed, "" for the whole invocation
	Wrapped error
}

func (e *SolverError) Error() string {
	if e.Step == "" {
		return fmt.Sprintf("solver: %v", e.Wrapped)
	}
	return fmt.Sprintf("solver step %s: %v", e.Step, e.Wrapped)
}

func (e *SolverError) Unwrap() error { return e.Wrapped }

// ExtractionError marks a malformed or incomplete result payload. Like a
// solver failure it is localized to the sweep point that produced it.
//
// A missing bandgap is never an ExtractionError: "no qualifying attenuation
// range" is a legitimate analysis outcome, not a payload defect.
type ExtractionError struct {
	Field   string
	Wrapped error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Field, e.Wrapped)
}

func (e *ExtractionError) Unwrap() error { return e.Wrapped }
