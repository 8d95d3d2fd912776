// Package optimize ranks finished sweep records. A record competes only if
// it is structurally feasible: no plasticity, no buckling below the applied
// load, and a defined bandgap. Feasible records are scored on where the
// bandgap starts and how wide it is, both normalized over the feasible set.
package optimize

import (
	"github.com/latticedyn/hexsweep/engine/sweep"
)

// Weights balances the two bandgap objectives. Onset rewards a low gap
// onset frequency, Width a wide gap.
type Weights struct {
	Onset float64 `json:"onset"`
	Width float64 `json:"width"`
}

// DefaultWeights treats both objectives equally.
var DefaultWeights = Weights{Onset: 0.5, Width: 0.5}

// normalized returns weights scaled to sum 1, falling back to the defaults
// when both are zero or negative.
func (w Weights) normalized() Weights {
	if w.Onset < 0 {
		w.Onset = 0
	}
	if w.Width < 0 {
		w.Width = 0
	}
	sum := w.Onset + w.Width
	if sum == 0 {
		return DefaultWeights
	}
	return Weights{Onset: w.Onset / sum, Width: w.Width / sum}
}

// Outcome is the annotated sweep: every record with Feasible and Score
// filled in, and Best pointing at the winner inside Records. Best is nil
// when no record is feasible; an empty feasible set is a result, not an
// error.
type Outcome struct {
	Records []sweep.Record `json:"records"`
	Best    *sweep.Record  `json:"best,omitempty"`
}

// feasible reports whether a record may compete.
func feasible(r *sweep.Record) bool {
	m := r.Metrics
	return !r.Failed && m != nil &&
		m.SafetyFactor > 1 &&
		m.LoadFactor > 1 &&
		m.Bandgap != nil
}

// Evaluate scores the records and selects the best feasible one. Records
// are copied, annotated and returned in their input order; scores lie in
// [0, 1] with higher better. Ties go to the smaller β, then the smaller θ.
func Evaluate(records []sweep.Record, w Weights) Outcome {
	w = w.normalized()
	out := Outcome{Records: make([]sweep.Record, len(records))}
	copy(out.Records, records)

	// Normalization ranges over the feasible set only
	var (
		minOnset, maxOnset float64
		minWidth, maxWidth float64
		any                bool
	)
	for i := range out.Records {
		r := &out.Records[i]
		if !feasible(r) {
			continue
		}
		g := r.Metrics.Bandgap
		if !any {
			minOnset, maxOnset = g.OnsetHz, g.OnsetHz
			minWidth, maxWidth = g.WidthHz, g.WidthHz
			any = true
			continue
		}
		minOnset = min(minOnset, g.OnsetHz)
		maxOnset = max(maxOnset, g.OnsetHz)
		minWidth = min(minWidth, g.WidthHz)
		maxWidth = max(maxWidth, g.WidthHz)
	}
	if !any {
		return out
	}

	var best *sweep.Record
	for i := range out.Records {
		r := &out.Records[i]
		if !feasible(r) {
			continue
		}
		r.Feasible = true
		g := r.Metrics.Bandgap
		r.Score = w.Onset*unit(maxOnset-g.OnsetHz, maxOnset-minOnset) +
			w.Width*unit(g.WidthHz-minWidth, maxWidth-minWidth)
		if best == nil || better(r, best) {
			best = r
		}
	}
	out.Best = best
	return out
}

// unit maps num/den into [0,1]; a degenerate range scores 1 so a lone
// feasible record gets full marks.
func unit(num, den float64) float64 {
	if den == 0 {
		return 1
	}
	return num / den
}

// better orders candidates by score, then ascending β, then ascending θ.
func better(a, b *sweep.Record) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.Config.Beta != b.Config.Beta {
		return a.Config.Beta < b.Config.Beta
	}
	return a.Config.ThetaDeg < b.Config.ThetaDeg
}
