package navgraph

import (
	"math"
	"sort"

	"github.com/dmaris/platnav/pkg/world"
)

// Walkability thresholds. These are heuristics tuned against
// representative level geometry, not guaranteed-correct invariants;
// in particular the raycast check can misclassify very thin or
// overlapping platforms, which dedupEdges patches after the fact.
const (
	minEdgeSpan      = 0.1 // horizontal span below which an edge is a wall
	maxWalkableSlope = 0.5 // |dy/dx| above which an edge is too steep
	standingHeight   = 1.0 // ray origin height above the edge midpoint
	surfaceRayLength = 1.5 // downward verification ray length
	surfaceTolerance = 0.2 // max |hitY - midY| for a top edge
	clearanceRatio   = 0.8 // required headroom as a fraction of standingHeight
	mergeThreshold   = 0.1 // max y difference and x gap when merging edges
	dedupThreshold   = 0.5 // y window within which overlapping edges collapse
)

// edgeSpan is a walkable top edge: a sorted horizontal extent at a
// surface height. Spans are short-lived intermediate records.
type edgeSpan struct {
	Left  float64
	Right float64
	Y     float64
}

func (e edgeSpan) width() float64 { return e.Right - e.Left }

func (e edgeSpan) overlaps(o edgeSpan) bool {
	return e.Left <= o.Right && o.Left <= e.Right
}

// ---------------------------------------------------------------------------
// Top edge classification
// ---------------------------------------------------------------------------

// extractTopEdges scans one point path (treated as a closed loop) and
// returns the edges that represent walkable top surfaces. Degenerate
// paths with fewer than 3 points yield nothing.
func extractTopEdges(w world.World, path []world.Vec2, mask world.Layer) []edgeSpan {
	if len(path) < 3 {
		return nil
	}

	var edges []edgeSpan
	for i := range path {
		p1 := path[i]
		p2 := path[(i+1)%len(path)]

		// Near-vertical edges are walls.
		dx := math.Abs(p2.X - p1.X)
		if dx < minEdgeSpan {
			continue
		}

		// Gentle ramps up to the slope threshold are walkable.
		slope := math.Abs((p2.Y - p1.Y) / (p2.X - p1.X))
		if slope > maxWalkableSlope {
			continue
		}

		// Verify with a downward ray above the midpoint: the hit must
		// land on the edge itself with standing clearance above it.
		// This rejects undersides and surfaces without headroom.
		mid := p1.Add(p2).Scale(0.5)
		origin := world.Vec2{X: mid.X, Y: mid.Y + standingHeight}
		hit, ok := w.Raycast(origin, world.Vec2{X: 0, Y: -1}, surfaceRayLength, mask)
		if !ok {
			continue
		}
		if math.Abs(hit.Point.Y-mid.Y) > surfaceTolerance {
			continue
		}
		if origin.Y-hit.Point.Y <= clearanceRatio*standingHeight {
			continue
		}

		left, right := p1.X, p2.X
		if left > right {
			left, right = right, left
		}
		edges = append(edges, edgeSpan{Left: left, Right: right, Y: mid.Y})
	}
	return edges
}

// ---------------------------------------------------------------------------
// Post-processing
// ---------------------------------------------------------------------------

// mergeEdges unions edges that sit at the same height with touching
// or overlapping horizontal ranges. This is what makes multi-path
// shapes come out as one continuous surface instead of fragments.
func mergeEdges(edges []edgeSpan) []edgeSpan {
	if len(edges) < 2 {
		return edges
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Y != edges[j].Y {
			return edges[i].Y > edges[j].Y
		}
		return edges[i].Left < edges[j].Left
	})

	merged := []edgeSpan{edges[0]}
	for _, next := range edges[1:] {
		cur := &merged[len(merged)-1]
		sameHeight := math.Abs(next.Y-cur.Y) < mergeThreshold
		touching := next.Left <= cur.Right+mergeThreshold && next.Right >= cur.Left-mergeThreshold
		if sameHeight && touching {
			if next.Left < cur.Left {
				cur.Left = next.Left
			}
			if next.Right > cur.Right {
				cur.Right = next.Right
			}
			cur.Y = (cur.Y + next.Y) / 2
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// dedupEdges drops edges that overlap a higher edge in x with a y
// value inside the dedup window. The lower edge is an internal
// artifact, e.g. the top of a platform embedded in another.
func dedupEdges(edges []edgeSpan) []edgeSpan {
	if len(edges) < 2 {
		return edges
	}

	drop := make([]bool, len(edges))
	for i := range edges {
		if drop[i] {
			continue
		}
		for j := range edges {
			if i == j || drop[j] {
				continue
			}
			if !edges[i].overlaps(edges[j]) {
				continue
			}
			if math.Abs(edges[i].Y-edges[j].Y) >= dedupThreshold {
				continue
			}
			// Keep the higher surface.
			if edges[j].Y < edges[i].Y {
				drop[j] = true
			}
		}
	}

	kept := edges[:0]
	for i, e := range edges {
		if !drop[i] {
			kept = append(kept, e)
		}
	}
	return kept
}
