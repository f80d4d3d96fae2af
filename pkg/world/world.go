// Package world defines the abstract static-geometry query interface.
// Implementations (sdfworld, engine adapters) answer overlap and ray
// queries against a 2D physics world behind this interface, so the
// graph generator stays engine-agnostic.
package world

import "math"

// Vec2 is a 2D world-space coordinate.
type Vec2 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Length returns the Euclidean length of v.
func (v Vec2) Length() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Length() }

// Layer is a collision layer bitmask. Shapes carry exactly one layer
// bit; queries filter with an OR of layer bits.
type Layer uint32

const (
	// LayerGround marks ordinary solid platforms and terrain.
	LayerGround Layer = 1 << iota
	// LayerOneWay marks platforms walkable from above only.
	LayerOneWay
	// LayerObstacle marks solid non-walkable blockers.
	LayerObstacle
)

// LayerAll matches every layer.
const LayerAll = LayerGround | LayerOneWay | LayerObstacle

// Shape is an opaque handle to one static collision shape.
// Implementations wrap their internal representation. Handles are
// compared by identity only and are never mutated by consumers.
type Shape interface {
	// Layer returns the collision layer the shape lives on.
	Layer() Layer

	// Paths enumerates the shape's outline as one or more world-space
	// point loops. A box contributes its four corners; a multi-path
	// polygon contributes one loop per disjoint ring. Open polylines
	// contribute their point sequence unclosed; callers treating a
	// path as a loop must tolerate the wrap edge.
	Paths() [][]Vec2
}

// RayHit reports the nearest intersection found by Raycast.
type RayHit struct {
	Point Vec2
	Shape Shape
}

// World answers static-geometry queries for graph generation.
// Implementations are not required to be safe for concurrent use.
type World interface {
	// OverlapBox returns every shape on a matching layer whose bounds
	// intersect the axis-aligned box of the given center and size.
	OverlapBox(center, size Vec2, mask Layer) []Shape

	// Raycast traces a ray from origin along dir (normalized by the
	// implementation if needed) up to maxDist, returning the nearest
	// hit on a matching layer.
	Raycast(origin, dir Vec2, maxDist float64, mask Layer) (RayHit, bool)
}
