// Package store persists sweep artifacts to Neo4j. A lattice becomes Joint
// nodes linked by BEAM relationships; a finished sweep point becomes one
// Design node carrying its metrics, feasibility and score. The Store
// satisfies sweep.Sink, so the orchestrator can persist records as they
// complete.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/latticedyn/hexsweep/engine/lattice"
	"github.com/latticedyn/hexsweep/engine/sweep"
)

// Store provides sweep persistence on top of a Neo4j driver.
type Store struct {
	driver neo4j.DriverWithContext
	log    *slog.Logger
}

// New creates a Store.
func New(driver neo4j.DriverWithContext, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}
	return &Store{driver: driver, log: log}
}

var _ sweep.Sink = (*Store)(nil)

// SaveLattice writes the lattice under the given design label in one
// transaction: every vertex as a Joint node, every edge as a BEAM
// relationship carrying the section radius.
func (s *Store) SaveLattice(ctx context.Context, label string, g *lattice.Graph) error {
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	_, err := sess.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, v := range g.Vertices {
			cypher := `MERGE (j:Joint {id: $id}) SET j.design = $design, j.x = $x, j.y = $y`
			if _, err := tx.Run(ctx, cypher, map[string]any{
				"id":     jointID(label, v.ID),
				"design": label,
				"x":      v.X,
				"y":      v.Y,
			}); err != nil {
				return nil, err
			}
		}
		for _, e := range g.Edges {
			cypher := `MATCH (a:Joint {id: $from}), (b:Joint {id: $to})
			 MERGE (a)-[r:BEAM]->(b)
			 SET r.radius = $radius`
			if _, err := tx.Run(ctx, cypher, map[string]any{
				"from":   jointID(label, e.A),
				"to":     jointID(label, e.B),
				"radius": e.Radius,
			}); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("save lattice %s: %w", label, err)
	}
	s.log.Debug("lattice saved", "design", label, "joints", len(g.Vertices), "beams", len(g.Edges))
	return nil
}

// SaveRecord creates or updates the Design node of one sweep point.
func (s *Store) SaveRecord(ctx context.Context, rec *sweep.Record) error {
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MERGE (d:Design {label: $label}) SET d += $props`
	_, err := sess.Run(ctx, cypher, map[string]any{
		"label": rec.Label,
		"props": designProps(rec),
	})
	if err != nil {
		return fmt.Errorf("save record %s: %w", rec.Label, err)
	}
	return nil
}

// DesignSummary is the ranking view of a stored Design node.
type DesignSummary struct {
	Label    string
	Beta     float64
	ThetaDeg float64
	Score    float64
	Feasible bool
}

// TopDesigns returns stored feasible designs ordered by descending score.
func (s *Store) TopDesigns(ctx context.Context, limit int) ([]DesignSummary, error) {
	if limit <= 0 {
		limit = 10
	}
	sess := s.driver.NewSession(ctx, neo4j.SessionConfig{})
	defer sess.Close(ctx)

	cypher := `MATCH (d:Design {feasible: true})
	 RETURN d ORDER BY d.score DESC LIMIT $limit`
	result, err := sess.Run(ctx, cypher, map[string]any{"limit": limit})
	if err != nil {
		return nil, err
	}

	var out []DesignSummary
	for result.Next(ctx) {
		node, _, err := neo4j.GetRecordValue[dbtype.Node](result.Record(), "d")
		if err != nil {
			return nil, err
		}
		out = append(out, summaryFromProps(node.Props))
	}
	return out, result.Err()
}

// jointID namespaces a vertex ID under its design so lattices of different
// sweep points never collide.
func jointID(label string, vertexID int) string {
	return fmt.Sprintf("%s/j%d", label, vertexID)
}

// designProps flattens a sweep record into Neo4j node properties. Bandgap
// properties are written only when the gap exists; absence in the node
// mirrors absence in the metrics.
func designProps(rec *sweep.Record) map[string]any {
	props := map[string]any{
		"label":       rec.Label,
		"beta":        rec.Config.Beta,
		"theta_deg":   rec.Config.ThetaDeg,
		"side_length": rec.Config.SideLength,
		"num_cols":    int64(rec.Config.NumCols),
		"num_rows":    int64(rec.Config.NumRows),
		"failed":      rec.Failed,
		"feasible":    rec.Feasible,
		"score":       rec.Score,
		"duration_ms": rec.Duration.Milliseconds(),
	}
	if rec.FailReason != "" {
		props["fail_reason"] = rec.FailReason
	}
	if m := rec.Metrics; m != nil {
		props["max_stress"] = m.MaxStress
		props["safety_factor"] = m.SafetyFactor
		props["plasticity"] = m.Plasticity
		props["load_factor"] = m.LoadFactor
		props["critical_load"] = m.CriticalLoad
		props["unstable"] = m.Unstable
		props["first_mode_hz"] = m.FirstModeHz
		props["max_displ"] = m.MaxDispl
		if m.Bandgap != nil {
			props["bandgap_onset_hz"] = m.Bandgap.OnsetHz
			props["bandgap_end_hz"] = m.Bandgap.EndHz
			props["bandgap_width_hz"] = m.Bandgap.WidthHz
		}
	}
	return props
}

// summaryFromProps reconstructs a ranking row from node properties.
func summaryFromProps(props map[string]any) DesignSummary {
	return DesignSummary{
		Label:    strProp(props, "label"),
		Beta:     floatProp(props, "beta"),
		ThetaDeg: floatProp(props, "theta_deg"),
		Score:    floatProp(props, "score"),
		Feasible: boolProp(props, "feasible"),
	}
}

func strProp(props map[string]any, key string) string {
	if v, ok := props[key].(string); ok {
		return v
	}
	return ""
}

func floatProp(props map[string]any, key string) float64 {
	if v, ok := props[key].(float64); ok {
		return v
	}
	return 0
}

func boolProp(props map[string]any, key string) bool {
	if v, ok := props[key].(bool); ok {
		return v
	}
	return false
}
