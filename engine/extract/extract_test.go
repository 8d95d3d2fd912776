package extract

import (
	"errors"
	"math"
	"testing"

	"github.com/latticedyn/hexsweep/engine/analysis"
	"github.com/latticedyn/hexsweep/engine/domain"
)

// synthCurve samples [0,1000] Hz at 1 Hz with baseline response 1.0 and a
// flat near-zero dip over [f0, f0+width].
func synthCurve(f0, width float64) analysis.FRFCurve {
	var c analysis.FRFCurve
	for f := 0.0; f <= 1000; f++ {
		r := 1.0
		if f >= f0 && f <= f0+width {
			r = 0.01
		}
		c = append(c, analysis.FRFPoint{Frequency: f, Response: r})
	}
	return c
}

func TestDetectBandgapKnownDip(t *testing.T) {
	cases := []struct{ f0, width float64 }{
		{200, 150},
		{1, 50},
		{900, 100}, // extends to the end of the range
		{450, 25},
	}
	p := BandgapParams{ThresholdFraction: 0.1, MinWidthHz: 20}
	for _, tc := range cases {
		gaps, err := DetectBandgaps(synthCurve(tc.f0, tc.width), p)
		if err != nil {
			t.Fatal(err)
		}
		if len(gaps) != 1 {
			t.Fatalf("f0=%g: got %d gaps, want 1", tc.f0, len(gaps))
		}
		g := gaps[0]
		if math.Abs(g.OnsetHz-tc.f0) > 1.5 {
			t.Errorf("f0=%g: onset %g", tc.f0, g.OnsetHz)
		}
		if math.Abs(g.WidthHz-tc.width) > 1.5 {
			t.Errorf("f0=%g: width %g, want %g", tc.f0, g.WidthHz, tc.width)
		}
	}
}

func TestDetectBandgapNoDip(t *testing.T) {
	var flat analysis.FRFCurve
	for f := 0.0; f <= 1000; f += 10 {
		flat = append(flat, analysis.FRFPoint{Frequency: f, Response: 1 + 0.01*math.Sin(f)})
	}
	gaps, err := DetectBandgaps(flat, DefaultBandgapParams)
	if err != nil {
		t.Fatal(err)
	}
	if len(gaps) != 0 {
		t.Fatalf("expected no gaps, got %v", gaps)
	}
}

// A single-sample noise dip is narrower than the minimum width and must be
// rejected.
func TestDetectBandgapRejectsNoiseDip(t *testing.T) {
	c := synthCurve(500, 0) // one low sample at 500 Hz
	gaps, err := DetectBandgaps(c, BandgapParams{ThresholdFraction: 0.1, MinWidthHz: 20})
	if err != nil {
		t.Fatal(err)
	}
	if len(gaps) != 0 {
		t.Fatalf("noise dip detected as bandgap: %v", gaps)
	}
}

func TestDetectBandgapMultiple(t *testing.T) {
	var c analysis.FRFCurve
	for f := 0.0; f <= 1000; f++ {
		r := 1.0
		if (f >= 100 && f <= 180) || (f >= 600 && f <= 700) {
			r = 0.02
		}
		c = append(c, analysis.FRFPoint{Frequency: f, Response: r})
	}
	gaps, err := DetectBandgaps(c, BandgapParams{ThresholdFraction: 0.1, MinWidthHz: 20})
	if err != nil {
		t.Fatal(err)
	}
	if len(gaps) != 2 {
		t.Fatalf("got %d gaps, want 2", len(gaps))
	}
	if gaps[0].OnsetHz > gaps[1].OnsetHz {
		t.Fatal("gaps not in ascending frequency order")
	}
}

func TestDetectBandgapBadParams(t *testing.T) {
	c := synthCurve(200, 100)
	for _, p := range []BandgapParams{
		{ThresholdFraction: 0, MinWidthHz: 20},
		{ThresholdFraction: 1.2, MinWidthHz: 20},
		{ThresholdFraction: 0.1, MinWidthHz: -1},
	} {
		if _, err := DetectBandgaps(c, p); err == nil {
			t.Fatalf("params %+v: expected error", p)
		}
	}
}

func goodResponse(stress float64) *analysis.Response {
	return &analysis.Response{
		Static:    &analysis.StaticResult{MaxVonMises: stress, MaxDisplacement: 0.002},
		Buckling:  &analysis.BucklingResult{LoadFactors: []float64{2.5, 3.1}},
		Frequency: &analysis.FrequencyResult{NaturalFrequencies: []float64{120, 340}},
		FRF:       synthCurve(300, 100),
	}
}

func testConfig() domain.LatticeConfig {
	return domain.LatticeConfig{
		SideLength: 0.3, Beta: 0.1, ThetaDeg: 15,
		NumCols: 2, NumRows: 2,
		Material: domain.AluminumB4C,
	}
}

func testRequest(load float64) *analysis.Request {
	return &analysis.Request{Steps: analysis.Steps{Static: &analysis.StaticStep{Load: load}}}
}

func TestSafetyFactorHalvesWhenLoadDoubles(t *testing.T) {
	cfg := testConfig()
	p := DefaultBandgapParams

	// Linear analysis: doubling the load doubles the stress field.
	m1, err := FromResponse(cfg, testRequest(10e3), goodResponse(100e3), p)
	if err != nil {
		t.Fatal(err)
	}
	m2, err := FromResponse(cfg, testRequest(20e3), goodResponse(200e3), p)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(m1.SafetyFactor-276000.0/100e3) > 1e-9 {
		t.Errorf("safety factor %g", m1.SafetyFactor)
	}
	if math.Abs(m2.SafetyFactor-m1.SafetyFactor/2) > 1e-9 {
		t.Errorf("doubling load: SF %g, want %g", m2.SafetyFactor, m1.SafetyFactor/2)
	}
}

func TestFromResponseFlags(t *testing.T) {
	cfg := testConfig()
	resp := goodResponse(300e3) // above yield
	resp.Buckling.LoadFactors = []float64{0.8}
	m, err := FromResponse(cfg, testRequest(10e3), resp, DefaultBandgapParams)
	if err != nil {
		t.Fatal(err)
	}
	if !m.Plasticity || !m.Unstable {
		t.Fatalf("flags not raised: %+v", m)
	}
	if math.Abs(m.CriticalLoad-0.8*10e3) > 1e-9 {
		t.Errorf("critical load %g", m.CriticalLoad)
	}
	if m.FirstModeHz != 120 {
		t.Errorf("first mode %g", m.FirstModeHz)
	}
	if m.Bandgap == nil || m.Bandgap.OnsetHz > 301 {
		t.Errorf("bandgap missing or wrong: %+v", m.Bandgap)
	}
}

func TestFromResponseUndefinedBandgapIsNotError(t *testing.T) {
	resp := goodResponse(100e3)
	resp.FRF = nil
	for f := 0.0; f <= 1000; f += 10 {
		resp.FRF = append(resp.FRF, analysis.FRFPoint{Frequency: f, Response: 1})
	}
	m, err := FromResponse(testConfig(), testRequest(10e3), resp, DefaultBandgapParams)
	if err != nil {
		t.Fatal(err)
	}
	if m.Bandgap != nil || len(m.Bandgaps) != 0 {
		t.Fatalf("expected undefined bandgap, got %+v", m.Bandgap)
	}
}

func TestFromResponseFailures(t *testing.T) {
	cfg := testConfig()
	req := testRequest(10e3)
	p := DefaultBandgapParams

	resp := goodResponse(100e3)
	resp.StepErrors = map[string]string{analysis.StepBuckle: "did not converge"}
	_, err := FromResponse(cfg, req, resp, p)
	var se *domain.SolverError
	if !errors.As(err, &se) {
		t.Fatalf("want SolverError, got %v", err)
	}

	resp = goodResponse(100e3)
	resp.Static = nil
	_, err = FromResponse(cfg, req, resp, p)
	var xe *domain.ExtractionError
	if !errors.As(err, &xe) {
		t.Fatalf("want ExtractionError, got %v", err)
	}

	resp = goodResponse(100e3)
	resp.FRF = analysis.FRFCurve{{Frequency: 10, Response: 1}, {Frequency: 5, Response: 1}}
	if _, err = FromResponse(cfg, req, resp, p); !errors.As(err, &xe) {
		t.Fatalf("want ExtractionError for bad curve, got %v", err)
	}
}
