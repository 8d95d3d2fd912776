// Package surrogate implements a closed-form frame estimator that stands in
// for the FE backend. It treats the lattice as a pin-jointed frame of
// circular-section beams and answers every analysis step from beam theory:
// axial stress for statics, Euler loads for buckling, pinned-beam modes for
// frequencies, and modal superposition with structural damping for the
// forced-response sweep. The numbers are coarse but deterministic, which is
// what sweeps in development and orchestrator tests need.
package surrogate

import (
	"context"
	"fmt"
	"math"

	"github.com/latticedyn/hexsweep/engine/analysis"
	"github.com/latticedyn/hexsweep/engine/domain"
)

// Estimator answers solver requests from closed-form beam theory.
type Estimator struct{}

// New returns an Estimator.
func New() *Estimator { return &Estimator{} }

// Solve computes every requested step. It never contacts anything external,
// so the only use of ctx is honoring cancellation between steps.
func (e *Estimator) Solve(ctx context.Context, req *analysis.Request) (*analysis.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Graph == nil || len(req.Graph.Vertices) == 0 {
		return nil, &domain.SolverError{Step: analysis.StepStatic, Wrapped: fmt.Errorf("request carries no lattice graph")}
	}
	if len(req.LoadedVertexIDs) == 0 || len(req.FixedVertexIDs) == 0 {
		return nil, &domain.SolverError{Step: analysis.StepStatic, Wrapped: domain.ErrBadLoadCase}
	}

	f := frame{
		cfg:    req.Config,
		nLoad:  len(req.LoadedVertexIDs),
		height: req.Graph.MaxY - req.Graph.MinY,
	}

	resp := &analysis.Response{JobID: req.JobID}
	if s := req.Steps.Static; s != nil {
		resp.Static = f.static(s)
	}
	if s := req.Steps.Buckle; s != nil {
		resp.Buckling = f.buckling(s, req.Steps.Static)
	}
	if s := req.Steps.Frequency; s != nil {
		resp.Frequency = f.frequencies(s.Modes)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s := req.Steps.SSD; s != nil {
		resp.FRF = f.forcedResponse(s)
	}
	return resp, nil
}

// frame caches the section and placement quantities every step shares.
type frame struct {
	cfg    domain.LatticeConfig
	nLoad  int
	height float64
}

func (f frame) section() (area, inertia float64) {
	r := f.cfg.SectionRadius()
	area = math.Pi * r * r
	inertia = math.Pi * math.Pow(r, 4) / 4
	return area, inertia
}

// memberForce is the axial force one loaded-wall member carries under the
// aggregate load F, amplified for the inclination of the cell walls.
func (f frame) memberForce(load float64) float64 {
	theta := f.cfg.ThetaDeg * math.Pi / 180
	return load / float64(f.nLoad) / math.Cos(theta)
}

func (f frame) static(s *analysis.StaticStep) *analysis.StaticResult {
	area, _ := f.section()
	e := f.cfg.Material.YoungsModulus
	return &analysis.StaticResult{
		MaxVonMises:     f.memberForce(s.Load) / area,
		MaxDisplacement: s.Load * f.height / (e * area * float64(f.nLoad)),
		ReactionForce:   s.Load,
	}
}

// buckling scales the Euler critical load of one member against the member
// force from the static step. Higher modes follow the (n·π/L)² stiffening of
// the pinned column.
func (f frame) buckling(s *analysis.BuckleStep, static *analysis.StaticStep) *analysis.BucklingResult {
	load := float64(analysis.DefaultStaticLoad)
	if static != nil {
		load = static.Load
	}
	_, inertia := f.section()
	l := f.cfg.SideLength
	pcr := math.Pi * math.Pi * f.cfg.Material.YoungsModulus * inertia / (l * l)
	base := pcr / f.memberForce(load)

	factors := make([]float64, s.Modes)
	for n := range factors {
		k := float64(n + 1)
		factors[n] = base * k * k
	}
	return &analysis.BucklingResult{LoadFactors: factors}
}

// frequencies returns the first modes natural frequencies of a simply
// supported member, in Hz ascending.
func (f frame) frequencies(modes int) *analysis.FrequencyResult {
	area, inertia := f.section()
	l := f.cfg.SideLength
	mu := f.cfg.Material.Density * area // mass per unit length
	c := math.Sqrt(f.cfg.Material.YoungsModulus * inertia / mu)

	out := make([]float64, modes)
	for n := range out {
		k := float64(n+1) * math.Pi / l
		out[n] = k * k * c / (2 * math.Pi)
	}
	return &analysis.FrequencyResult{NaturalFrequencies: out}
}

// forcedResponse synthesizes the steady-state sweep by complex modal
// superposition of damped accelerance terms. Member modes of a cm-scale
// lattice sit far above any practical sweep band, so the retained spectrum
// is compressed into the band, with slenderness and wall angle setting the
// compression. The result keeps the resonance/antiresonance texture of a
// measured driving-point FRF: peaks at the mapped modes, deep valleys
// between them.
func (f frame) forcedResponse(s *analysis.SSDStep) analysis.FRFCurve {
	modes := f.frequencies(analysis.DefaultFrequencyModes).NaturalFrequencies
	span := s.FreqMax - s.FreqMin
	scale := (1 + f.cfg.Beta + f.cfg.ThetaDeg/360) * modes[len(modes)-1]
	mapped := make([]float64, len(modes))
	for i, fn := range modes {
		mapped[i] = s.FreqMin + span*fn/scale
	}

	n := s.Intervals + 1
	step := span / float64(s.Intervals)
	curve := make(analysis.FRFCurve, n)
	for i := 0; i < n; i++ {
		freq := s.FreqMin + float64(i)*step
		var re, im float64
		for _, fn := range mapped {
			d1 := fn*fn - freq*freq
			d2 := 2 * s.Damping * fn * freq
			den := d1*d1 + d2*d2
			if den == 0 {
				continue
			}
			re += freq * freq * d1 / den
			im -= freq * freq * d2 / den
		}
		curve[i] = analysis.FRFPoint{Frequency: freq, Response: s.Amplitude * math.Hypot(re, im)}
	}
	return curve
}
