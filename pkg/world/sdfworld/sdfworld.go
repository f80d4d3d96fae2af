// Package sdfworld implements the world.World query interface for
// static level geometry using the github.com/deadsy/sdfx signed
// distance field library. Rays are resolved by sphere tracing the
// shape's distance field; overlap queries use path bounding boxes.
package sdfworld

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"

	"github.com/dmaris/platnav/pkg/world"
)

// Compile-time interface check.
var _ world.World = (*World)(nil)

// Sphere tracing parameters. The epsilon bounds how far a reported
// hit point can sit off the true surface; it must stay well under the
// navgraph surface tolerance.
const (
	traceEpsilon  = 1e-4
	traceMaxSteps = 256
)

// StaticShape is one static collision shape: a distance field plus
// its outline paths and collision layer. Shapes are immutable after
// creation and compared by identity.
type StaticShape struct {
	layer world.Layer
	paths [][]world.Vec2
	field sdf.SDF2
	min   world.Vec2
	max   world.Vec2
}

// Layer returns the shape's collision layer.
func (s *StaticShape) Layer() world.Layer { return s.layer }

// Paths returns the shape's world-space outline paths.
func (s *StaticShape) Paths() [][]world.Vec2 { return s.paths }

// World is a static shape set answering overlap and ray queries.
// It is not safe for concurrent mutation; build it fully before
// handing it to a generator.
type World struct {
	shapes []*StaticShape
}

// New returns an empty static world.
func New() *World {
	return &World{}
}

// Shapes returns all shapes in insertion order.
func (w *World) Shapes() []*StaticShape { return w.shapes }

func toV2(p world.Vec2) v2.Vec { return v2.Vec{X: p.X, Y: p.Y} }

// ---------------------------------------------------------------------------
// Shape construction
// ---------------------------------------------------------------------------

// AddBox adds an axis-aligned box of the given center and size.
func (w *World) AddBox(center, size world.Vec2, layer world.Layer) (*StaticShape, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("sdfworld: box size must be positive, got %gx%g", size.X, size.Y)
	}
	box := sdf.Box2D(toV2(size), 0)
	field := sdf.Transform2D(box, sdf.Translate2d(toV2(center)))
	return w.add(field, layer, [][]world.Vec2{world.BoxPath(center, size)}), nil
}

// AddPolygon adds a closed polygon, possibly with several disjoint
// rings sharing one shape identity. Rings with fewer than 3 points
// are skipped without error, matching how imperfect designer geometry
// is treated everywhere else.
func (w *World) AddPolygon(layer world.Layer, rings ...[]world.Vec2) (*StaticShape, error) {
	var fields []sdf.SDF2
	var paths [][]world.Vec2
	for _, ring := range rings {
		if len(ring) < 3 {
			continue
		}
		verts := make([]v2.Vec, len(ring))
		for i, p := range ring {
			verts[i] = toV2(p)
		}
		f, err := sdf.Polygon2D(verts)
		if err != nil {
			return nil, fmt.Errorf("sdfworld: polygon: %w", err)
		}
		fields = append(fields, f)
		paths = append(paths, ring)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("sdfworld: polygon has no usable rings")
	}
	return w.add(sdf.Union2D(fields...), layer, paths), nil
}

// AddPolyline adds an open point sequence, typically terrain. The
// distance field is the unsigned distance to the segment chain, so
// the line behaves as an infinitely thin solid under ray queries.
func (w *World) AddPolyline(points []world.Vec2, layer world.Layer) (*StaticShape, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("sdfworld: polyline needs at least 2 points, got %d", len(points))
	}
	pts := append([]world.Vec2(nil), points...)
	return w.add(&polylineSDF{points: pts}, layer, [][]world.Vec2{pts}), nil
}

func (w *World) add(field sdf.SDF2, layer world.Layer, paths [][]world.Vec2) *StaticShape {
	s := &StaticShape{layer: layer, paths: paths, field: field}
	first := true
	for _, path := range paths {
		min, max, ok := world.PathBounds(path)
		if !ok {
			continue
		}
		if first {
			s.min, s.max = min, max
			first = false
			continue
		}
		if min.X < s.min.X {
			s.min.X = min.X
		}
		if min.Y < s.min.Y {
			s.min.Y = min.Y
		}
		if max.X > s.max.X {
			s.max.X = max.X
		}
		if max.Y > s.max.Y {
			s.max.Y = max.Y
		}
	}
	w.shapes = append(w.shapes, s)
	return s
}

// ---------------------------------------------------------------------------
// world.World queries
// ---------------------------------------------------------------------------

// OverlapBox returns every shape on a matching layer whose bounds
// intersect the query box, in insertion order.
func (w *World) OverlapBox(center, size world.Vec2, mask world.Layer) []world.Shape {
	qmin := center.Sub(size.Scale(0.5))
	qmax := center.Add(size.Scale(0.5))

	var out []world.Shape
	for _, s := range w.shapes {
		if s.layer&mask == 0 {
			continue
		}
		if !world.BoundsOverlap(s.min, s.max, qmin, qmax) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// Raycast sphere-traces every matching shape and returns the nearest
// hit. Tracing on |distance| treats shape boundaries as the hit
// surface regardless of ring winding, which is exactly what a
// collision ray wants. A ray starting inside a solid reports a hit at
// its origin.
func (w *World) Raycast(origin, dir world.Vec2, maxDist float64, mask world.Layer) (world.RayHit, bool) {
	n := dir.Length()
	if n == 0 || maxDist <= 0 {
		return world.RayHit{}, false
	}
	dir = dir.Scale(1 / n)

	bestT := maxDist
	var bestShape *StaticShape
	for _, s := range w.shapes {
		if s.layer&mask == 0 {
			continue
		}
		if t, ok := s.trace(origin, dir, bestT); ok && t <= bestT {
			bestT = t
			bestShape = s
		}
	}
	if bestShape == nil {
		return world.RayHit{}, false
	}
	return world.RayHit{
		Point: origin.Add(dir.Scale(bestT)),
		Shape: bestShape,
	}, true
}

// trace marches the ray through the shape's distance field. dir must
// be normalized.
func (s *StaticShape) trace(origin, dir world.Vec2, maxDist float64) (float64, bool) {
	// An origin inside a closed solid hits at t=0. Marching |distance|
	// from inside would tunnel to the far face instead. Open polylines
	// have unsigned fields and never take this branch.
	if s.field.Evaluate(toV2(origin)) < 0 {
		return 0, true
	}

	t := 0.0
	for i := 0; i < traceMaxSteps; i++ {
		p := origin.Add(dir.Scale(t))
		d := math.Abs(s.field.Evaluate(toV2(p)))
		if d < traceEpsilon {
			return t, true
		}
		t += d
		if t > maxDist {
			return 0, false
		}
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// Polyline distance field
// ---------------------------------------------------------------------------

// polylineSDF is the unsigned distance to an open segment chain. It
// implements sdf.SDF2 directly since sdfx only ships closed polygons.
type polylineSDF struct {
	points []world.Vec2
}

func (p *polylineSDF) Evaluate(q v2.Vec) float64 {
	pt := world.Vec2{X: q.X, Y: q.Y}
	best := math.Inf(1)
	for i := 0; i+1 < len(p.points); i++ {
		if d := segmentDist(pt, p.points[i], p.points[i+1]); d < best {
			best = d
		}
	}
	return best
}

func (p *polylineSDF) BoundingBox() sdf.Box2 {
	min, max, _ := world.PathBounds(p.points)
	return sdf.Box2{Min: toV2(min), Max: toV2(max)}
}

// segmentDist returns the distance from p to the segment ab.
func segmentDist(p, a, b world.Vec2) float64 {
	ab := b.Sub(a)
	ap := p.Sub(a)
	len2 := ab.X*ab.X + ab.Y*ab.Y
	if len2 == 0 {
		return ap.Length()
	}
	t := (ap.X*ab.X + ap.Y*ab.Y) / len2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.Sub(a.Add(ab.Scale(t))).Length()
}
