// Package lattice generates the deduplicated hexagonal beam-lattice graph for
// a honeycomb connecting-rod core. Hexagon centers sit on a triangular grid,
// every cell is rotated uniformly by the configuration angle, and vertices
// and edges shared between adjacent cells collapse to a single beam element
// through a tolerance-parameterized spatial index.
package lattice

import (
	"math"
	"sort"
)

// MergeTol is the explicit vertex-merge tolerance in cm. Two vertices whose
// coordinates agree within this distance per axis are the same physical
// joint. It is deliberately a few orders of magnitude above float64 noise
// and a few below any beam length the design space can produce.
const MergeTol = 1e-6

// Vertex is a lattice joint. IDs are assigned in discovery order, so
// regenerating the same config yields the identical vertex sequence.
type Vertex struct {
	ID int     `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Edge is one beam element between two joints, with its circular section
// radius. Endpoints are stored with A < B so an edge has a single identity.
type Edge struct {
	A      int     `json:"a"`
	B      int     `json:"b"`
	Radius float64 `json:"radius"`
}

// Graph is the deduplicated beam lattice plus its bounding box. It is built
// once per sweep point and never mutated afterwards.
type Graph struct {
	Vertices []Vertex `json:"vertices"`
	Edges    []Edge   `json:"edges"`
	Tol      float64  `json:"tol"`
	MinX     float64  `json:"min_x"`
	MaxX     float64  `json:"max_x"`
	MinY     float64  `json:"min_y"`
	MaxY     float64  `json:"max_y"`
}

// BottomVertexIDs returns the joints on the bottom boundary wall, in
// ascending x order. These receive the fully-fixed support.
func (g *Graph) BottomVertexIDs() []int {
	return g.wallVertices(func(v Vertex) bool { return math.Abs(v.Y-g.MinY) <= g.Tol })
}

// TopVertexIDs returns the joints on the top boundary wall, in ascending x
// order. These receive the static and harmonic loads.
func (g *Graph) TopVertexIDs() []int {
	return g.wallVertices(func(v Vertex) bool { return math.Abs(v.Y-g.MaxY) <= g.Tol })
}

func (g *Graph) wallVertices(on func(Vertex) bool) []int {
	var ids []int
	for _, v := range g.Vertices {
		if on(v) {
			ids = append(ids, v.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return g.Vertices[ids[i]].X < g.Vertices[ids[j]].X })
	return ids
}

// builder accumulates vertices and edges with tolerance-based deduplication.
// The spatial index buckets vertices by floor(coord/tol); a lookup probes the
// target bucket and its eight neighbours, so two vertices within tol of each
// other always land in probed buckets.
type builder struct {
	tol    float64
	radius float64
	verts  []Vertex
	bucket map[[2]int64][]int
	seen   map[[2]int]struct{}
	edges  []Edge
}

func newBuilder(tol, radius float64) *builder {
	return &builder{
		tol:    tol,
		radius: radius,
		bucket: make(map[[2]int64][]int),
		seen:   make(map[[2]int]struct{}),
	}
}

// vertex returns the ID of the joint at (x, y), merging with an existing
// joint when one lies within tol on both axes.
func (b *builder) vertex(x, y float64) int {
	bx := int64(math.Floor(x / b.tol))
	by := int64(math.Floor(y / b.tol))
	for dx := int64(-1); dx <= 1; dx++ {
		for dy := int64(-1); dy <= 1; dy++ {
			for _, id := range b.bucket[[2]int64{bx + dx, by + dy}] {
				v := b.verts[id]
				if math.Abs(v.X-x) <= b.tol && math.Abs(v.Y-y) <= b.tol {
					return id
				}
			}
		}
	}
	id := len(b.verts)
	b.verts = append(b.verts, Vertex{ID: id, X: x, Y: y})
	key := [2]int64{bx, by}
	b.bucket[key] = append(b.bucket[key], id)
	return id
}

// edge records the beam between two joints unless the same endpoint pair has
// been recorded already. Degenerate edges (both ends merged into one joint)
// are dropped.
func (b *builder) edge(a, c int) {
	if a == c {
		return
	}
	if a > c {
		a, c = c, a
	}
	key := [2]int{a, c}
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	b.edges = append(b.edges, Edge{A: a, B: c, Radius: b.radius})
}
