package optimize

import (
	"testing"

	"github.com/latticedyn/hexsweep/engine/domain"
	"github.com/latticedyn/hexsweep/engine/extract"
	"github.com/latticedyn/hexsweep/engine/sweep"
)

func record(beta, theta, sf, lf float64, gap *extract.Bandgap) sweep.Record {
	return sweep.Record{
		Config: domain.LatticeConfig{SideLength: 0.3, Beta: beta, ThetaDeg: theta},
		Metrics: &extract.Metrics{
			SafetyFactor: sf,
			LoadFactor:   lf,
			Bandgap:      gap,
		},
	}
}

func gap(onset, width float64) *extract.Bandgap {
	return &extract.Bandgap{OnsetHz: onset, EndHz: onset + width, WidthHz: width}
}

func TestEvaluateEmptyFeasibleSet(t *testing.T) {
	records := []sweep.Record{
		record(0.1, 15, 0.8, 2.0, gap(200, 100)), // plasticity
		record(0.1, 20, 2.0, 0.5, gap(200, 100)), // unstable
		record(0.1, 25, 2.0, 2.0, nil),           // no bandgap
		{Label: "failed", Failed: true},
	}
	out := Evaluate(records, DefaultWeights)
	if out.Best != nil {
		t.Fatalf("expected no winner, got %s", out.Best.Label)
	}
	for _, r := range out.Records {
		if r.Feasible || r.Score != 0 {
			t.Fatalf("infeasible record annotated feasible: %+v", r)
		}
	}
	if len(out.Records) != len(records) {
		t.Fatal("all records should be returned")
	}
}

func TestEvaluateOnsetOnly(t *testing.T) {
	records := []sweep.Record{
		record(0.10, 15, 2, 2, gap(400, 100)),
		record(0.12, 15, 2, 2, gap(150, 100)), // lowest onset
		record(0.14, 15, 2, 2, gap(300, 100)),
	}
	out := Evaluate(records, Weights{Onset: 1})
	if out.Best == nil || out.Best.Config.Beta != 0.12 {
		t.Fatalf("expected lowest-onset record to win, got %+v", out.Best)
	}
	if out.Best.Score != 1 {
		t.Fatalf("winner should score 1, got %g", out.Best.Score)
	}
}

func TestEvaluateWidthOnly(t *testing.T) {
	records := []sweep.Record{
		record(0.10, 15, 2, 2, gap(100, 50)),
		record(0.12, 15, 2, 2, gap(500, 300)), // widest
	}
	out := Evaluate(records, Weights{Width: 1})
	if out.Best == nil || out.Best.Config.Beta != 0.12 {
		t.Fatalf("expected widest-gap record to win, got %+v", out.Best)
	}
}

func TestEvaluateBalancedTradeoff(t *testing.T) {
	// A: early narrow gap. B: late wide gap. C: dominated on both axes.
	records := []sweep.Record{
		record(0.10, 15, 2, 2, gap(100, 50)),
		record(0.12, 15, 2, 2, gap(500, 250)),
		record(0.14, 15, 2, 2, gap(500, 50)),
	}
	out := Evaluate(records, DefaultWeights)
	if out.Best == nil {
		t.Fatal("expected a winner")
	}
	if out.Best.Config.Beta == 0.14 {
		t.Fatal("dominated record must not win")
	}
	// A and B each win one axis fully → both score 0.5, tie-break on β
	if out.Best.Config.Beta != 0.10 {
		t.Fatalf("tie should go to smaller β, got %g", out.Best.Config.Beta)
	}
}

func TestEvaluateTieBreakTheta(t *testing.T) {
	records := []sweep.Record{
		record(0.10, 25, 2, 2, gap(200, 100)),
		record(0.10, 15, 2, 2, gap(200, 100)),
	}
	out := Evaluate(records, DefaultWeights)
	if out.Best == nil || out.Best.Config.ThetaDeg != 15 {
		t.Fatalf("tie should go to smaller θ, got %+v", out.Best)
	}
}

func TestEvaluateLoneFeasibleRecord(t *testing.T) {
	records := []sweep.Record{
		record(0.10, 15, 2, 2, gap(200, 100)),
		record(0.12, 15, 0.5, 2, gap(100, 300)),
	}
	out := Evaluate(records, DefaultWeights)
	if out.Best == nil || out.Best.Config.Beta != 0.10 {
		t.Fatal("lone feasible record should win")
	}
	if out.Best.Score != 1 {
		t.Fatalf("lone feasible record should score 1, got %g", out.Best.Score)
	}
}

func TestEvaluateZeroWeightsFallBack(t *testing.T) {
	records := []sweep.Record{
		record(0.10, 15, 2, 2, gap(100, 50)),
		record(0.12, 15, 2, 2, gap(400, 300)),
	}
	out := Evaluate(records, Weights{})
	if out.Best == nil {
		t.Fatal("expected a winner with default weights")
	}
	for _, r := range out.Records {
		if r.Feasible && (r.Score < 0 || r.Score > 1) {
			t.Fatalf("score out of range: %g", r.Score)
		}
	}
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	records := []sweep.Record{record(0.10, 15, 2, 2, gap(200, 100))}
	Evaluate(records, DefaultWeights)
	if records[0].Feasible || records[0].Score != 0 {
		t.Fatal("input slice must stay untouched")
	}
}
