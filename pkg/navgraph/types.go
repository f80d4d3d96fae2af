package navgraph

import (
	"time"

	"github.com/dmaris/platnav/pkg/world"
)

// NodeKind classifies a graph node by its place on a surface.
type NodeKind int

const (
	NodeSurface   NodeKind = iota // interior point of a walkable surface
	NodeLeftEdge                  // left end of a platform
	NodeRightEdge                 // right end of a platform
	NodeOneWay                    // point on a drop-through surface
)

func (k NodeKind) String() string {
	switch k {
	case NodeSurface:
		return "surface"
	case NodeLeftEdge:
		return "left-edge"
	case NodeRightEdge:
		return "right-edge"
	case NodeOneWay:
		return "one-way"
	default:
		return "unknown"
	}
}

// Node is a point on a walkable surface. Position.Y is the actual
// surface height, not the center of the originating shape.
type Node struct {
	ID       int
	Position world.Vec2
	Kind     NodeKind

	// SourceShape identifies the static shape the node came from.
	// It is used only to group nodes for link generation.
	SourceShape world.Shape

	// OneWay is true when the source shape sits on the one-way layer.
	OneWay bool
}

// LinkKind classifies a traversal edge between two nodes. The
// generator only produces walk links; the remaining kinds are reserved
// for a movement-capability solver to add after generation.
type LinkKind int

const (
	LinkWalk LinkKind = iota
	LinkJump
	LinkFall
	LinkDropThrough
)

func (k LinkKind) String() string {
	switch k {
	case LinkWalk:
		return "walk"
	case LinkJump:
		return "jump"
	case LinkFall:
		return "fall"
	case LinkDropThrough:
		return "drop-through"
	default:
		return "unknown"
	}
}

// Link is a directed traversal edge between two node IDs.
// Walk links always come in symmetric pairs with equal cost.
type Link struct {
	From int
	To   int
	Kind LinkKind
	Cost float64
}

// Meta describes one generation run.
type Meta struct {
	BuildID     string
	GeneratedAt time.Time
	NodeCount   int
	LinkCount   int
}
