package navgraph

import (
	"math"
	"testing"

	"github.com/dmaris/platnav/pkg/world"
)

// markerShape is a distinct shape identity for grouping tests.
type markerShape struct{ layer world.Layer }

func (m *markerShape) Layer() world.Layer    { return m.layer }
func (m *markerShape) Paths() [][]world.Vec2 { return nil }

func surfaceNodes(shape world.Shape, y float64, xs ...float64) []Node {
	nodes := make([]Node, len(xs))
	for i, x := range xs {
		nodes[i] = Node{
			ID:          i,
			Position:    world.Vec2{X: x, Y: y},
			Kind:        NodeSurface,
			SourceShape: shape,
		}
	}
	return nodes
}

func hasLink(links []Link, from, to int) (Link, bool) {
	for _, l := range links {
		if l.From == from && l.To == to {
			return l, true
		}
	}
	return Link{}, false
}

func TestBuildWalkLinksPathGraph(t *testing.T) {
	shape := &markerShape{layer: world.LayerGround}
	nodes := surfaceNodes(shape, 0, 0.3, 1.6, 2.9, 4.2)

	links := buildWalkLinks(nodes)
	if len(links) != 6 {
		t.Fatalf("link count = %d, want 6 (3 bidirectional pairs)", len(links))
	}

	// Adjacent pairs only: no clique edge across the middle.
	if _, ok := hasLink(links, 0, 2); ok {
		t.Error("non-adjacent nodes 0 and 2 linked")
	}
	for i := 0; i < 3; i++ {
		fwd, ok := hasLink(links, i, i+1)
		if !ok {
			t.Fatalf("missing link %d -> %d", i, i+1)
		}
		rev, ok := hasLink(links, i+1, i)
		if !ok {
			t.Fatalf("missing reverse link %d -> %d", i+1, i)
		}
		if fwd.Cost != rev.Cost {
			t.Errorf("asymmetric cost: %g vs %g", fwd.Cost, rev.Cost)
		}
		if fwd.Kind != LinkWalk {
			t.Errorf("link kind = %s, want walk", fwd.Kind)
		}
		if math.Abs(fwd.Cost-1.3) > 1e-9 {
			t.Errorf("link cost = %g, want 1.3", fwd.Cost)
		}
	}
}

func TestBuildWalkLinksGapNotCrossed(t *testing.T) {
	// Two platforms at the same height, 5 units apart: farther than
	// maxXGap, so no walk link crosses the gap.
	shape := &markerShape{layer: world.LayerGround}
	nodes := surfaceNodes(shape, 0, 0, 2, 7, 9)

	links := buildWalkLinks(nodes)
	if _, ok := hasLink(links, 1, 2); ok {
		t.Error("walk link crosses a 5-unit gap")
	}
	if _, ok := hasLink(links, 0, 1); !ok {
		t.Error("missing link on left platform")
	}
	if _, ok := hasLink(links, 2, 3); !ok {
		t.Error("missing link on right platform")
	}
}

func TestBuildWalkLinksSeparateShapes(t *testing.T) {
	// Same positions, different source shapes: never linked.
	a := &markerShape{layer: world.LayerGround}
	b := &markerShape{layer: world.LayerGround}
	nodes := []Node{
		{ID: 0, Position: world.Vec2{X: 0, Y: 0}, SourceShape: a},
		{ID: 1, Position: world.Vec2{X: 1, Y: 0}, SourceShape: b},
	}
	if links := buildWalkLinks(nodes); len(links) != 0 {
		t.Errorf("nodes on different shapes linked: %v", links)
	}
}

func TestBuildWalkLinksHeightBands(t *testing.T) {
	shape := &markerShape{layer: world.LayerGround}

	// Minor height variance within one band still links.
	nodes := []Node{
		{ID: 0, Position: world.Vec2{X: 0, Y: 2.0}, SourceShape: shape},
		{ID: 1, Position: world.Vec2{X: 1, Y: 2.1}, SourceShape: shape},
	}
	if links := buildWalkLinks(nodes); len(links) != 2 {
		t.Errorf("link count = %d, want 2 for same-band nodes", len(links))
	}

	// Distinct levels on one shape stay unlinked.
	nodes = []Node{
		{ID: 0, Position: world.Vec2{X: 0, Y: 0}, SourceShape: shape},
		{ID: 1, Position: world.Vec2{X: 1, Y: 3}, SourceShape: shape},
	}
	if links := buildWalkLinks(nodes); len(links) != 0 {
		t.Errorf("nodes on distinct levels linked: %v", links)
	}
}

func TestBuildWalkLinksSymmetry(t *testing.T) {
	shape := &markerShape{layer: world.LayerGround}
	nodes := surfaceNodes(shape, 0, 0, 1, 2, 3, 4, 5)

	links := buildWalkLinks(nodes)
	for _, l := range links {
		rev, ok := hasLink(links, l.To, l.From)
		if !ok {
			t.Errorf("link %d -> %d has no reverse", l.From, l.To)
			continue
		}
		if rev.Cost != l.Cost {
			t.Errorf("link %d <-> %d costs differ: %g vs %g", l.From, l.To, l.Cost, rev.Cost)
		}
	}
}
