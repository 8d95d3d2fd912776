package surrogate

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/latticedyn/hexsweep/engine/analysis"
	"github.com/latticedyn/hexsweep/engine/domain"
	"github.com/latticedyn/hexsweep/engine/lattice"
)

func testRequest(t *testing.T, lc analysis.LoadCase) *analysis.Request {
	t.Helper()
	cfg := domain.LatticeConfig{
		SideLength: 0.3,
		Beta:       1.0 / 15.0,
		ThetaDeg:   15,
		NumCols:    3,
		NumRows:    2,
		Material:   domain.AluminumB4C,
	}
	g, err := lattice.Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	req, err := analysis.BuildRequest(cfg, g, lc)
	if err != nil {
		t.Fatal(err)
	}
	return req
}

func TestSolveDeterministic(t *testing.T) {
	req := testRequest(t, analysis.LoadCase{})
	est := New()

	a, err := est.Solve(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	b, err := est.Solve(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}

	if a.Static.MaxVonMises != b.Static.MaxVonMises {
		t.Fatal("static result not deterministic")
	}
	if a.Buckling.LoadFactors[0] != b.Buckling.LoadFactors[0] {
		t.Fatal("buckling result not deterministic")
	}
	if len(a.FRF) != len(b.FRF) {
		t.Fatal("FRF length differs between runs")
	}
	for i := range a.FRF {
		if a.FRF[i] != b.FRF[i] {
			t.Fatalf("FRF sample %d differs between runs", i)
		}
	}
}

func TestStaticScalesWithLoad(t *testing.T) {
	est := New()
	base, err := est.Solve(context.Background(), testRequest(t, analysis.LoadCase{StaticLoad: 10e3}))
	if err != nil {
		t.Fatal(err)
	}
	doubled, err := est.Solve(context.Background(), testRequest(t, analysis.LoadCase{StaticLoad: 20e3}))
	if err != nil {
		t.Fatal(err)
	}

	if ratio := doubled.Static.MaxVonMises / base.Static.MaxVonMises; math.Abs(ratio-2) > 1e-9 {
		t.Fatalf("stress should double with load, ratio = %g", ratio)
	}
	if doubled.Static.ReactionForce != 20e3 {
		t.Fatalf("reaction should equal applied load, got %g", doubled.Static.ReactionForce)
	}
	if ratio := doubled.Buckling.LoadFactors[0] / base.Buckling.LoadFactors[0]; math.Abs(ratio-0.5) > 1e-9 {
		t.Fatalf("load factor should halve when load doubles, ratio = %g", ratio)
	}
}

func TestBucklingFactorsAscending(t *testing.T) {
	resp, err := New().Solve(context.Background(), testRequest(t, analysis.LoadCase{}))
	if err != nil {
		t.Fatal(err)
	}
	factors := resp.Buckling.LoadFactors
	if len(factors) != analysis.DefaultBuckleModes {
		t.Fatalf("expected %d modes, got %d", analysis.DefaultBuckleModes, len(factors))
	}
	if factors[0] <= 0 {
		t.Fatalf("first load factor should be positive, got %g", factors[0])
	}
	for i := 1; i < len(factors); i++ {
		if factors[i] <= factors[i-1] {
			t.Fatalf("load factors not ascending at mode %d", i)
		}
	}
}

func TestNaturalFrequenciesAscending(t *testing.T) {
	resp, err := New().Solve(context.Background(), testRequest(t, analysis.LoadCase{}))
	if err != nil {
		t.Fatal(err)
	}
	freqs := resp.Frequency.NaturalFrequencies
	if len(freqs) != analysis.DefaultFrequencyModes {
		t.Fatalf("expected %d modes, got %d", analysis.DefaultFrequencyModes, len(freqs))
	}
	for i, f := range freqs {
		if f <= 0 {
			t.Fatalf("frequency %d not positive", i)
		}
		if i > 0 && f <= freqs[i-1] {
			t.Fatalf("frequencies not ascending at mode %d", i)
		}
	}
}

func TestFRFHasResonantTexture(t *testing.T) {
	resp, err := New().Solve(context.Background(), testRequest(t, analysis.LoadCase{}))
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.FRF) != analysis.DefaultSSDIntervals+1 {
		t.Fatalf("expected %d samples, got %d", analysis.DefaultSSDIntervals+1, len(resp.FRF))
	}
	if err := resp.FRF.Validate(); err != nil {
		t.Fatalf("curve should validate: %v", err)
	}

	// A curve with resonances and antiresonances spans orders of magnitude.
	peak, valley := 0.0, math.Inf(1)
	for _, p := range resp.FRF[1:] { // skip the zero-response DC sample
		if p.Response > peak {
			peak = p.Response
		}
		if p.Response < valley {
			valley = p.Response
		}
	}
	if peak <= 0 || valley >= peak/10 {
		t.Fatalf("expected dynamic range, peak %g valley %g", peak, valley)
	}
}

func TestFRFShiftsWithGeometry(t *testing.T) {
	est := New()
	mk := func(beta float64) analysis.FRFCurve {
		cfg := domain.LatticeConfig{
			SideLength: 0.3, Beta: beta, ThetaDeg: 15,
			NumCols: 3, NumRows: 2, Material: domain.AluminumB4C,
		}
		g, err := lattice.Generate(cfg)
		if err != nil {
			t.Fatal(err)
		}
		req, err := analysis.BuildRequest(cfg, g, analysis.LoadCase{})
		if err != nil {
			t.Fatal(err)
		}
		resp, err := est.Solve(context.Background(), req)
		if err != nil {
			t.Fatal(err)
		}
		return resp.FRF
	}

	thin, thick := mk(1.0/18.0), mk(1.0/6.0)
	same := true
	for i := range thin {
		if thin[i].Response != thick[i].Response {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different slenderness should change the response curve")
	}
}

func TestSolveSkipsAbsentSteps(t *testing.T) {
	req := testRequest(t, analysis.LoadCase{})
	req.Steps = analysis.Steps{Static: &analysis.StaticStep{Load: 10e3}}

	resp, err := New().Solve(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Static == nil {
		t.Fatal("requested step missing")
	}
	if resp.Buckling != nil || resp.Frequency != nil || resp.FRF != nil {
		t.Fatal("unrequested steps should stay nil")
	}
}

func TestSolveHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Solve(ctx, testRequest(t, analysis.LoadCase{})); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestSolveRejectsEmptyGraph(t *testing.T) {
	req := testRequest(t, analysis.LoadCase{})
	req.Graph = nil
	_, err := New().Solve(context.Background(), req)
	var se *domain.SolverError
	if !errors.As(err, &se) {
		t.Fatalf("want SolverError, got %v", err)
	}
}
