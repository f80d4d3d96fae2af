package navgraph

import "github.com/dmaris/platnav/pkg/world"

// placeNodes converts one walkable edge into positioned nodes.
//
// Narrow platforms get a single center node. Wider platforms get a
// node at each end, inset from the surface ends, plus interior nodes
// at even spacing. The interior spacing is recomputed from the node
// count so the remainder is distributed evenly instead of leaving a
// partial gap at one end.
// Edge nodes keep their LeftEdge/RightEdge kind even on one-way
// platforms; boundary marks matter to jump/fall-off logic, and the
// OneWay field still carries the drop-through flag. Only interior
// surface nodes take the OneWay kind.
func placeNodes(e edgeSpan, shape world.Shape, oneWay bool, cfg Config, nextID func() int) []Node {
	surfaceKind := NodeSurface
	if oneWay {
		surfaceKind = NodeOneWay
	}

	if e.width() < cfg.MinPlatformWidth {
		return []Node{{
			ID:          nextID(),
			Position:    world.Vec2{X: (e.Left + e.Right) / 2, Y: e.Y},
			Kind:        surfaceKind,
			SourceShape: shape,
			OneWay:      oneWay,
		}}
	}

	nodes := []Node{{
		ID:          nextID(),
		Position:    world.Vec2{X: e.Left + cfg.EdgeInset, Y: e.Y},
		Kind:        NodeLeftEdge,
		SourceShape: shape,
		OneWay:      oneWay,
	}}

	innerWidth := e.width() - 2*cfg.EdgeInset
	count := int(innerWidth / cfg.Spacing())
	if count > 0 {
		step := innerWidth / float64(count+1)
		for i := 1; i <= count; i++ {
			nodes = append(nodes, Node{
				ID:          nextID(),
				Position:    world.Vec2{X: e.Left + cfg.EdgeInset + float64(i)*step, Y: e.Y},
				Kind:        surfaceKind,
				SourceShape: shape,
				OneWay:      oneWay,
			})
		}
	}

	nodes = append(nodes, Node{
		ID:          nextID(),
		Position:    world.Vec2{X: e.Right - cfg.EdgeInset, Y: e.Y},
		Kind:        NodeRightEdge,
		SourceShape: shape,
		OneWay:      oneWay,
	})
	return nodes
}
