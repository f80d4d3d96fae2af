package navgraph

import (
	"math"

	"github.com/dmaris/platnav/pkg/world"
)

// cellKey is an integer grid cell coordinate.
type cellKey struct {
	X int
	Y int
}

// spatialGrid buckets node indices by position in uniform square
// cells. It is a pure derived view of the node list and is rebuilt
// from scratch on every generation, never patched incrementally.
type spatialGrid struct {
	cellSize float64
	buckets  map[cellKey][]int
	built    bool
}

func newSpatialGrid(cellSize float64) *spatialGrid {
	return &spatialGrid{cellSize: cellSize}
}

func (g *spatialGrid) cellOf(p world.Vec2) cellKey {
	return cellKey{
		X: int(math.Floor(p.X / g.cellSize)),
		Y: int(math.Floor(p.Y / g.cellSize)),
	}
}

// build indexes every node by its cell. An empty node list leaves the
// grid unbuilt, and queries fall back to a linear scan.
func (g *spatialGrid) build(nodes []Node) {
	g.buckets = make(map[cellKey][]int)
	g.built = len(nodes) > 0
	for i, n := range nodes {
		key := g.cellOf(n.Position)
		g.buckets[key] = append(g.buckets[key], i)
	}
}

func (g *spatialGrid) clear() {
	g.buckets = nil
	g.built = false
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// nearest returns the index of the node closest to pos within maxDist,
// expanding outward ring by ring from the query cell. A ring whose
// minimum possible distance exceeds the best match found so far cannot
// improve the result, so the search stops there.
func (g *spatialGrid) nearest(nodes []Node, pos world.Vec2, maxDist float64) (int, bool) {
	if !g.built {
		return nearestLinear(nodes, pos, maxDist)
	}

	center := g.cellOf(pos)
	best := -1
	bestDist := maxDist

	maxRing := int(math.Ceil(maxDist/g.cellSize)) + 1
	for ring := 0; ring <= maxRing; ring++ {
		// A cell on ring r is at least (r-1) cell widths away.
		minPossible := float64(ring-1) * g.cellSize
		if minPossible > bestDist {
			break
		}

		g.visitRing(center, ring, func(idxs []int) {
			for _, i := range idxs {
				d := nodes[i].Position.Dist(pos)
				if d <= bestDist && (best == -1 || d < bestDist) {
					best = i
					bestDist = d
				}
			}
		})
	}

	if best == -1 {
		return 0, false
	}
	return best, true
}

// rangeQuery appends every node within radius of pos to out. The
// buffer is cleared first and reused, so steady-state calls do not
// allocate, and no scratch state lives on the grid itself.
func (g *spatialGrid) rangeQuery(nodes []Node, pos world.Vec2, radius float64, out *[]Node) {
	*out = (*out)[:0]

	if !g.built {
		for _, n := range nodes {
			if n.Position.Dist(pos) <= radius {
				*out = append(*out, n)
			}
		}
		return
	}

	center := g.cellOf(pos)
	rings := int(math.Ceil(radius / g.cellSize))
	for cy := center.Y - rings; cy <= center.Y+rings; cy++ {
		for cx := center.X - rings; cx <= center.X+rings; cx++ {
			for _, i := range g.buckets[cellKey{X: cx, Y: cy}] {
				if nodes[i].Position.Dist(pos) <= radius {
					*out = append(*out, nodes[i])
				}
			}
		}
	}
}

// visitRing calls fn for every non-empty bucket on the square ring of
// Chebyshev radius ring around center. Ring 0 is the center cell.
func (g *spatialGrid) visitRing(center cellKey, ring int, fn func(idxs []int)) {
	if ring == 0 {
		if b := g.buckets[center]; len(b) > 0 {
			fn(b)
		}
		return
	}
	for cx := center.X - ring; cx <= center.X+ring; cx++ {
		if b := g.buckets[cellKey{X: cx, Y: center.Y - ring}]; len(b) > 0 {
			fn(b)
		}
		if b := g.buckets[cellKey{X: cx, Y: center.Y + ring}]; len(b) > 0 {
			fn(b)
		}
	}
	for cy := center.Y - ring + 1; cy <= center.Y+ring-1; cy++ {
		if b := g.buckets[cellKey{X: center.X - ring, Y: cy}]; len(b) > 0 {
			fn(b)
		}
		if b := g.buckets[cellKey{X: center.X + ring, Y: cy}]; len(b) > 0 {
			fn(b)
		}
	}
}

// nearestLinear is the unindexed fallback. It must return exactly what
// the indexed path would, which the tests rely on as a consistency
// check.
func nearestLinear(nodes []Node, pos world.Vec2, maxDist float64) (int, bool) {
	best := -1
	bestDist := maxDist
	for i, n := range nodes {
		d := n.Position.Dist(pos)
		if d <= bestDist && (best == -1 || d < bestDist) {
			best = i
			bestDist = d
		}
	}
	if best == -1 {
		return 0, false
	}
	return best, true
}
