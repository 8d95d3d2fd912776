package extract

import (
	"fmt"

	"github.com/latticedyn/hexsweep/engine/analysis"
	"github.com/latticedyn/hexsweep/engine/domain"
)

// Metrics are the scalar performance figures of one design point.
// Bandgap is nil when no qualifying attenuation range exists; that is a
// valid outcome, distinct from zero and never coerced to it.
type Metrics struct {
	MaxStress    float64   `json:"max_stress"`    // peak von Mises, N/cm²
	SafetyFactor float64   `json:"safety_factor"` // σ_yield / MaxStress
	Plasticity   bool      `json:"plasticity"`    // SafetyFactor < 1
	LoadFactor   float64   `json:"load_factor"`   // first buckling eigenvalue
	CriticalLoad float64   `json:"critical_load"` // LoadFactor × applied load, N
	Unstable     bool      `json:"unstable"`      // LoadFactor < 1
	FirstModeHz  float64   `json:"first_mode_hz"` // first natural frequency
	MaxDispl     float64   `json:"max_displ"`     // static peak displacement, cm
	Bandgaps     []Bandgap `json:"bandgaps,omitempty"`
	Bandgap      *Bandgap  `json:"bandgap,omitempty"` // first significant gap
}

// FromResponse converts a solver response into design metrics. A failed or
// missing step and any malformed payload yield an error localized to the
// sweep point; callers record it and move on.
func FromResponse(cfg domain.LatticeConfig, req *analysis.Request, resp *analysis.Response, params BandgapParams) (*Metrics, error) {
	if resp == nil {
		return nil, &domain.ExtractionError{Field: "response", Wrapped: fmt.Errorf("nil payload")}
	}

	m := &Metrics{}

	if msg, failed := resp.Failed(analysis.StepStatic); failed {
		return nil, &domain.SolverError{Step: analysis.StepStatic, Wrapped: fmt.Errorf("%s", msg)}
	}
	if resp.Static == nil {
		return nil, &domain.ExtractionError{Field: "static", Wrapped: fmt.Errorf("missing payload")}
	}
	if resp.Static.MaxVonMises <= 0 {
		return nil, &domain.ExtractionError{Field: "static.max_von_mises", Wrapped: fmt.Errorf("non-positive stress %g", resp.Static.MaxVonMises)}
	}
	m.MaxStress = resp.Static.MaxVonMises
	m.MaxDispl = resp.Static.MaxDisplacement
	m.SafetyFactor = cfg.Material.YieldStress / m.MaxStress
	m.Plasticity = m.SafetyFactor < 1

	if msg, failed := resp.Failed(analysis.StepBuckle); failed {
		return nil, &domain.SolverError{Step: analysis.StepBuckle, Wrapped: fmt.Errorf("%s", msg)}
	}
	if resp.Buckling == nil || len(resp.Buckling.LoadFactors) == 0 {
		return nil, &domain.ExtractionError{Field: "buckling.load_factors", Wrapped: fmt.Errorf("missing eigenvalues")}
	}
	m.LoadFactor = resp.Buckling.LoadFactors[0]
	if req != nil && req.Steps.Static != nil {
		m.CriticalLoad = m.LoadFactor * req.Steps.Static.Load
	}
	m.Unstable = m.LoadFactor < 1

	// The frequency step is informational; its absence does not fail the
	// point.
	if resp.Frequency != nil && len(resp.Frequency.NaturalFrequencies) > 0 {
		m.FirstModeHz = resp.Frequency.NaturalFrequencies[0]
	}

	if msg, failed := resp.Failed(analysis.StepSSD); failed {
		return nil, &domain.SolverError{Step: analysis.StepSSD, Wrapped: fmt.Errorf("%s", msg)}
	}
	if len(resp.FRF) == 0 {
		return nil, &domain.ExtractionError{Field: "frf", Wrapped: fmt.Errorf("missing curve")}
	}
	gaps, err := DetectBandgaps(resp.FRF, params)
	if err != nil {
		return nil, err
	}
	m.Bandgaps = gaps
	if len(gaps) > 0 {
		first := gaps[0]
		m.Bandgap = &first
	}
	return m, nil
}
