package lattice

import (
	"math"

	"github.com/latticedyn/hexsweep/engine/domain"
)

// Generate builds the beam-lattice graph for one design point. The config is
// validated against the documented (β,θ) bounds first; inside those bounds
// the layout is a stated precondition and no self-intersection check is run.
func Generate(cfg domain.LatticeConfig) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return build(cfg), nil
}

// build places hexagon centers on the triangular grid (horizontal spacing
// L·√3, vertical spacing 1.5·L, odd rows offset by half a column), emits the
// six rotated cell vertices and walls per center, then closes the perimeter.
func build(cfg domain.LatticeConfig) *Graph {
	L := cfg.SideLength
	hSpacing := L * math.Sqrt(3)
	vSpacing := 1.5 * L
	theta := cfg.ThetaDeg * math.Pi / 180

	// Pointy-top cell vertices at 30°+60k, all rotated by θ about the center.
	var local [6][2]float64
	for k := 0; k < 6; k++ {
		ang := float64(30+60*k)*math.Pi/180 + theta
		local[k][0] = L * math.Cos(ang)
		local[k][1] = L * math.Sin(ang)
	}

	b := newBuilder(MergeTol, cfg.SectionRadius())
	for row := 0; row < cfg.NumRows; row++ {
		for col := 0; col < cfg.NumCols; col++ {
			cx := float64(col) * hSpacing
			if row%2 == 1 {
				cx += hSpacing / 2
			}
			cy := float64(row) * vSpacing

			var ids [6]int
			for k := 0; k < 6; k++ {
				ids[k] = b.vertex(cx+local[k][0], cy+local[k][1])
			}
			for k := 0; k < 6; k++ {
				b.edge(ids[k], ids[(k+1)%6])
			}
		}
	}

	minX, maxX := b.verts[0].X, b.verts[0].X
	minY, maxY := b.verts[0].Y, b.verts[0].Y
	for _, v := range b.verts {
		minX = math.Min(minX, v.X)
		maxX = math.Max(maxX, v.X)
		minY = math.Min(minY, v.Y)
		maxY = math.Max(maxY, v.Y)
	}

	closePerimeter(b, minX, maxX, minY, maxY)

	return &Graph{
		Vertices: b.verts,
		Edges:    b.edges,
		Tol:      b.tol,
		MinX:     minX,
		MaxX:     maxX,
		MinY:     minY,
		MaxY:     maxY,
	}
}

// closePerimeter appends the four boundary walls: each wall is a chain of
// beams linking the outermost lattice joints that touch the bounding box,
// plus the four box corners. Chains reuse existing joints through the merge
// index, and the edge dedup drops chain segments that coincide with cell
// walls already present.
func closePerimeter(b *builder, minX, maxX, minY, maxY float64) {
	bl := b.vertex(minX, minY)
	br := b.vertex(maxX, minY)
	tl := b.vertex(minX, maxY)
	tr := b.vertex(maxX, maxY)

	chainWall(b, bl, br, func(v Vertex) (bool, float64) {
		return math.Abs(v.Y-minY) <= b.tol, v.X
	})
	chainWall(b, tl, tr, func(v Vertex) (bool, float64) {
		return math.Abs(v.Y-maxY) <= b.tol, v.X
	})
	chainWall(b, bl, tl, func(v Vertex) (bool, float64) {
		return math.Abs(v.X-minX) <= b.tol, v.Y
	})
	chainWall(b, br, tr, func(v Vertex) (bool, float64) {
		return math.Abs(v.X-maxX) <= b.tol, v.Y
	})
}

// chainWall links every joint on one wall (selected by `on`, ordered by the
// coordinate it returns) into consecutive beam segments from one corner to
// the other.
func chainWall(b *builder, cornerA, cornerB int, on func(Vertex) (bool, float64)) {
	type walled struct {
		id  int
		pos float64
	}
	var line []walled
	for _, v := range b.verts {
		if ok, pos := on(v); ok {
			line = append(line, walled{id: v.ID, pos: pos})
		}
	}
	// Insertion sort keeps this allocation-free; wall populations are tiny.
	for i := 1; i < len(line); i++ {
		for j := i; j > 0 && line[j].pos < line[j-1].pos; j-- {
			line[j], line[j-1] = line[j-1], line[j]
		}
	}
	prev := cornerA
	for _, w := range line {
		if w.id == cornerA || w.id == cornerB {
			continue
		}
		b.edge(prev, w.id)
		prev = w.id
	}
	b.edge(prev, cornerB)
}
