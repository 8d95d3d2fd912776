// Package analysis defines the solver-agnostic job descriptor for one design
// point (geometry, material, boundary conditions and the four analysis
// steps) together with the typed result payloads a solver returns.
// Translating a Request into any particular solver's native input is the
// adapter's job, never this package's.
package analysis

import (
	"github.com/google/uuid"

	"github.com/latticedyn/hexsweep/engine/domain"
	"github.com/latticedyn/hexsweep/engine/lattice"
)

// Default load case: a 10 kN aggregate compressive load, 1e4 N harmonic
// forcing swept over 0-1000 Hz in 100 intervals with 2% structural damping,
// 10 buckling modes and 20 natural frequencies.
const (
	DefaultStaticLoad       = 10e3
	DefaultForcingAmplitude = 1e4
	DefaultFreqMin          = 0
	DefaultFreqMax          = 1000
	DefaultSSDIntervals     = 100
	DefaultDamping          = 0.02
	DefaultBuckleModes      = 10
	DefaultFrequencyModes   = 20
)

// StaticStep requests a linear static solution under the aggregate
// compressive load applied across the top-boundary joints.
type StaticStep struct {
	Load float64 `json:"load"` // aggregate compressive force, N
}

// BuckleStep requests linear buckling eigenvalue extraction.
type BuckleStep struct {
	Modes int `json:"modes"`
}

// FrequencyStep requests natural frequency extraction.
type FrequencyStep struct {
	Modes int `json:"modes"`
}

// SSDStep requests a steady-state dynamics sweep: a harmonic nodal force
// F_y = F0·e^{iωt} on every top joint, ω swept over [FreqMin, FreqMax].
type SSDStep struct {
	FreqMin   float64 `json:"freq_min"`  // Hz
	FreqMax   float64 `json:"freq_max"`  // Hz
	Intervals int     `json:"intervals"` // sample count is Intervals+1
	Amplitude float64 `json:"amplitude"` // F0, N
	Damping   float64 `json:"damping"`   // structural damping ratio
}

// Steps is the ordered step list of one solver invocation. A nil step is
// simply not requested.
type Steps struct {
	Static    *StaticStep    `json:"static,omitempty"`
	Buckle    *BuckleStep    `json:"buckle,omitempty"`
	Frequency *FrequencyStep `json:"frequency,omitempty"`
	SSD       *SSDStep       `json:"ssd,omitempty"`
}

// Request is the complete job descriptor handed to a solver adapter.
// FixedVertexIDs carry the fully-fixed (all degrees of freedom) bottom
// support; LoadedVertexIDs receive the static and harmonic forces.
type Request struct {
	JobID  string               `json:"job_id"`
	Label  string               `json:"label"`
	Config domain.LatticeConfig `json:"config"`
	Graph  *lattice.Graph       `json:"graph"`

	FixedVertexIDs  []int `json:"fixed_vertex_ids"`
	LoadedVertexIDs []int `json:"loaded_vertex_ids"`

	Steps Steps `json:"steps"`
}

// LoadCase carries the externally configurable load parameters of a sweep.
// Zero values fall back to the documented defaults.
type LoadCase struct {
	StaticLoad       float64 `json:"static_load"`
	ForcingAmplitude float64 `json:"forcing_amplitude"`
	FreqMin          float64 `json:"freq_min"`
	FreqMax          float64 `json:"freq_max"`
	SSDIntervals     int     `json:"ssd_intervals"`
	Damping          float64 `json:"damping"`
	BuckleModes      int     `json:"buckle_modes"`
	FrequencyModes   int     `json:"frequency_modes"`
}

// withDefaults fills unset load-case fields. FreqMin stays as given: zero is
// the documented lower bound, not an unset value.
func (lc LoadCase) withDefaults() LoadCase {
	if lc.StaticLoad == 0 {
		lc.StaticLoad = DefaultStaticLoad
	}
	if lc.ForcingAmplitude == 0 {
		lc.ForcingAmplitude = DefaultForcingAmplitude
	}
	if lc.FreqMax == 0 {
		lc.FreqMax = DefaultFreqMax
	}
	if lc.SSDIntervals == 0 {
		lc.SSDIntervals = DefaultSSDIntervals
	}
	if lc.Damping == 0 {
		lc.Damping = DefaultDamping
	}
	if lc.BuckleModes == 0 {
		lc.BuckleModes = DefaultBuckleModes
	}
	if lc.FrequencyModes == 0 {
		lc.FrequencyModes = DefaultFrequencyModes
	}
	return lc
}

// BuildRequest maps a generated lattice and its load case to the job
// descriptor: bottom wall fully fixed, top wall loaded, all four steps
// requested.
func BuildRequest(cfg domain.LatticeConfig, g *lattice.Graph, lc LoadCase) (*Request, error) {
	lc = lc.withDefaults()
	if lc.StaticLoad <= 0 || lc.ForcingAmplitude <= 0 {
		return nil, domain.ErrBadLoadCase
	}
	if lc.SSDIntervals < 1 || lc.Damping < 0 || lc.BuckleModes < 1 || lc.FrequencyModes < 1 {
		return nil, domain.ErrBadLoadCase
	}
	if lc.FreqMax <= lc.FreqMin || lc.FreqMin < 0 {
		return nil, domain.ErrBadFreqRange
	}
	return &Request{
		JobID:           uuid.NewString(),
		Label:           cfg.Label(),
		Config:          cfg,
		Graph:           g,
		FixedVertexIDs:  g.BottomVertexIDs(),
		LoadedVertexIDs: g.TopVertexIDs(),
		Steps: Steps{
			Static:    &StaticStep{Load: lc.StaticLoad},
			Buckle:    &BuckleStep{Modes: lc.BuckleModes},
			Frequency: &FrequencyStep{Modes: lc.FrequencyModes},
			SSD: &SSDStep{
				FreqMin:   lc.FreqMin,
				FreqMax:   lc.FreqMax,
				Intervals: lc.SSDIntervals,
				Amplitude: lc.ForcingAmplitude,
				Damping:   lc.Damping,
			},
		},
	}, nil
}
