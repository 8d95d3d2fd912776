//go:build integration

package store

import (
	"context"
	"os"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/latticedyn/hexsweep/engine/domain"
	"github.com/latticedyn/hexsweep/engine/extract"
	"github.com/latticedyn/hexsweep/engine/lattice"
	"github.com/latticedyn/hexsweep/engine/sweep"
)

func testDriver(t *testing.T) neo4j.DriverWithContext {
	t.Helper()
	url := os.Getenv("NEO4J_URL")
	if url == "" {
		url = "neo4j://localhost:7687"
	}
	driver, err := neo4j.NewDriverWithContext(url, neo4j.NoAuth())
	if err != nil {
		t.Fatalf("neo4j connect: %v", err)
	}
	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		t.Fatalf("neo4j verify: %v", err)
	}
	t.Cleanup(func() {
		sess := driver.NewSession(ctx, neo4j.SessionConfig{})
		sess.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
		sess.Close(ctx)
		driver.Close(ctx)
	})
	return driver
}

func TestNeo4j_SaveLattice(t *testing.T) {
	driver := testDriver(t)
	s := New(driver, nil)
	ctx := context.Background()

	cfg := domain.LatticeConfig{
		SideLength: 0.3, Beta: 1.0 / 15.0, ThetaDeg: 15,
		NumCols: 2, NumRows: 2, Material: domain.AluminumB4C,
	}
	g, err := lattice.Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.SaveLattice(ctx, cfg.Label(), g); err != nil {
		t.Fatalf("SaveLattice: %v", err)
	}

	sess := driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)
	result, err := sess.Run(ctx, `MATCH (:Joint {design: $d})-[r:BEAM]->() RETURN count(r) AS beams`, map[string]any{"d": cfg.Label()})
	if err != nil {
		t.Fatal(err)
	}
	if !result.Next(ctx) {
		t.Fatal("no count row")
	}
	beams, _ := result.Record().Get("beams")
	if beams.(int64) != int64(len(g.Edges)) {
		t.Fatalf("stored %v beams, lattice has %d", beams, len(g.Edges))
	}
}

func TestNeo4j_SaveRecordAndRank(t *testing.T) {
	driver := testDriver(t)
	s := New(driver, nil)
	ctx := context.Background()

	recs := []sweep.Record{
		{
			Label:    "b0_1000_t15",
			Config:   domain.LatticeConfig{Beta: 0.1, ThetaDeg: 15},
			Feasible: true,
			Score:    0.4,
			Metrics:  &extract.Metrics{SafetyFactor: 2, LoadFactor: 2},
		},
		{
			Label:    "b0_1000_t25",
			Config:   domain.LatticeConfig{Beta: 0.1, ThetaDeg: 25},
			Feasible: true,
			Score:    0.9,
			Metrics:  &extract.Metrics{SafetyFactor: 3, LoadFactor: 3},
		},
		{
			Label:  "b0_5000_t15",
			Config: domain.LatticeConfig{Beta: 0.5, ThetaDeg: 15},
			Failed: true, FailReason: "out of bounds",
		},
	}
	for i := range recs {
		if err := s.SaveRecord(ctx, &recs[i]); err != nil {
			t.Fatalf("SaveRecord: %v", err)
		}
	}

	top, err := s.TopDesigns(ctx, 10)
	if err != nil {
		t.Fatalf("TopDesigns: %v", err)
	}
	if len(top) != 2 {
		t.Fatalf("expected 2 feasible designs, got %d", len(top))
	}
	if top[0].Label != "b0_1000_t25" || top[0].Score != 0.9 {
		t.Fatalf("wrong ranking order: %+v", top)
	}

	// Saving the same label again updates rather than duplicates
	recs[1].Score = 0.95
	if err := s.SaveRecord(ctx, &recs[1]); err != nil {
		t.Fatal(err)
	}
	top, err = s.TopDesigns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || top[0].Score != 0.95 {
		t.Fatalf("expected updated score, got %+v", top)
	}
}
