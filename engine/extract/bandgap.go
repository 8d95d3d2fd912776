// Package extract converts raw solver payloads into the typed design
// metrics the optimizer consumes: stress safety factor, buckling load
// factor, natural frequencies and vibration bandgaps detected on the
// forced-response curve.
package extract

import (
	"errors"

	"github.com/latticedyn/hexsweep/engine/analysis"
)

// BandgapParams tunes the detector. Both knobs exist to reject single-sample
// noise dips: a dip only counts when the response stays below
// ThresholdFraction of the curve's global peak over at least MinWidthHz.
//
// Which response metric constitutes the canonical curve (aggregate strain
// energy vs. nodal displacement amplitude) is deliberately left to the
// caller; the detector only sees ordered (frequency, response) pairs.
type BandgapParams struct {
	ThresholdFraction float64 `json:"threshold_fraction"`
	MinWidthHz        float64 `json:"min_width_hz"`
}

// DefaultBandgapParams: 10% of the global peak, with a 20 Hz minimum width
// rejecting single-sample dips.
var DefaultBandgapParams = BandgapParams{
	ThresholdFraction: 0.10,
	MinWidthHz:        20,
}

var errBadParams = errors.New("bandgap params: threshold must be in (0,1) and min width non-negative")

// Bandgap is one qualifying attenuation sub-range of the response curve.
type Bandgap struct {
	OnsetHz float64 `json:"onset_hz"`
	EndHz   float64 `json:"end_hz"`
	WidthHz float64 `json:"width_hz"`
}

// DetectBandgaps scans the frequency-ordered curve for maximal contiguous
// runs where the response stays below params.ThresholdFraction of the global
// peak for a span of at least params.MinWidthHz, with the response above
// threshold immediately outside both ends. A run touching the curve boundary
// has no outside sample there and qualifies on the other conditions alone.
// Gaps are returned in ascending frequency; an empty slice is the legitimate
// "no bandgap in range" outcome, never an error.
func DetectBandgaps(curve analysis.FRFCurve, params BandgapParams) ([]Bandgap, error) {
	if params.ThresholdFraction <= 0 || params.ThresholdFraction >= 1 || params.MinWidthHz < 0 {
		return nil, errBadParams
	}
	if err := curve.Validate(); err != nil {
		return nil, err
	}

	peak := 0.0
	for _, p := range curve {
		if p.Response > peak {
			peak = p.Response
		}
	}
	if peak == 0 {
		// A flat-zero curve carries no transmission information at all.
		return nil, nil
	}
	threshold := params.ThresholdFraction * peak

	var gaps []Bandgap
	start := -1 // index of first in-run sample, -1 when outside a run
	for i, p := range curve {
		below := p.Response < threshold
		switch {
		case below && start < 0:
			start = i
		case !below && start >= 0:
			if g, ok := qualify(curve, start, i-1, params); ok {
				gaps = append(gaps, g)
			}
			start = -1
		}
	}
	if start >= 0 {
		if g, ok := qualify(curve, start, len(curve)-1, params); ok {
			gaps = append(gaps, g)
		}
	}
	return gaps, nil
}

// qualify applies the minimum-width criterion to the run curve[lo..hi].
func qualify(curve analysis.FRFCurve, lo, hi int, params BandgapParams) (Bandgap, bool) {
	onset := curve[lo].Frequency
	end := curve[hi].Frequency
	width := end - onset
	if width < params.MinWidthHz {
		return Bandgap{}, false
	}
	return Bandgap{OnsetHz: onset, EndHz: end, WidthHz: width}, true
}
