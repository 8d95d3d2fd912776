package main

import (
	"math"
	"testing"

	"github.com/latticedyn/hexsweep/engine/domain"
)

func TestParseFloatsList(t *testing.T) {
	got, err := parseFloats("0.05, 0.0667,0.1")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{0.05, 0.0667, 0.1}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("value %d = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestParseFloatsRange(t *testing.T) {
	got, err := parseFloats("10:30:5")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{10, 15, 20, 25, 30}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("value %d = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestParseFloatsRangeEndpointsInBounds(t *testing.T) {
	// The default beta range ends exactly on BetaMax; the generated endpoint
	// must not drift past it, or the boundary point always fails validation.
	got, err := parseFloats("0.05:0.2:0.01")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 16 {
		t.Fatalf("expected 16 values, got %d: %v", len(got), got)
	}
	if got[0] != 0.05 || got[len(got)-1] != 0.2 {
		t.Fatalf("endpoints %g..%g, want 0.05..0.2", got[0], got[len(got)-1])
	}
	for _, beta := range []float64{got[0], got[len(got)-1]} {
		cfg := domain.LatticeConfig{
			SideLength: 0.3, Beta: beta, ThetaDeg: 15,
			NumCols: 2, NumRows: 2, Material: domain.AluminumB4C,
		}
		if err := cfg.Validate(); err != nil {
			t.Fatalf("endpoint beta %v rejected: %v", beta, err)
		}
	}
}

func TestParseFloatsRangeInteriorStep(t *testing.T) {
	got, err := parseFloats("0:1:0.1")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 11 {
		t.Fatalf("expected 11 values, got %d: %v", len(got), got)
	}
	for i, v := range got {
		if math.Abs(v-float64(i)*0.1) > 1e-12 {
			t.Fatalf("value %d = %v", i, v)
		}
	}
}

func TestParseFloatsRejectsBadInput(t *testing.T) {
	for _, s := range []string{"", " , ", "1:0:1", "1:2:0", "1:2:-1", "a,b"} {
		if _, err := parseFloats(s); err == nil {
			t.Fatalf("input %q should be rejected", s)
		}
	}
}
