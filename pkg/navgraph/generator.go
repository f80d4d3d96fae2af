package navgraph

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmaris/platnav/pkg/world"
)

// State tracks the generator lifecycle.
type State int

const (
	StateNotGenerated State = iota
	StateGenerating
	StateGenerated
)

// Generator builds and owns one platform graph. It performs no
// internal locking: Generate and Clear must not run concurrently with
// anything else, while the query methods are read-only and safe for
// multiple readers once generation has completed.
type Generator struct {
	cfg   Config
	world world.World
	log   *zap.Logger

	state  State
	nodes  []Node
	links  []Link
	byID   map[int]int // node id -> index in nodes
	grid   *spatialGrid
	nextID int
	meta   Meta
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger injects a diagnostics logger. The default is a no-op
// logger, so generation stays silent unless the caller opts in.
func WithLogger(log *zap.Logger) Option {
	return func(g *Generator) { g.log = log }
}

// NewGenerator creates a Generator over the given world. The config
// is validated here, before any generation can run, because a bad
// value rejected mid-generation would leave a partially built graph.
func NewGenerator(w world.World, cfg Config, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{
		cfg:   cfg,
		world: w,
		log:   zap.NewNop(),
		grid:  newSpatialGrid(cfg.CellSize),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// ---------------------------------------------------------------------------
// Generation
// ---------------------------------------------------------------------------

// Generate builds the graph for the configured scan region, replacing
// any previous graph. Re-running against unchanged static geometry
// produces the same nodes and links.
func (g *Generator) Generate() {
	g.GenerateRegion(g.cfg.ScanCenter, g.cfg.ScanSize)
}

// GenerateRegion builds the graph for an explicit region.
func (g *Generator) GenerateRegion(center, size world.Vec2) {
	g.Clear()
	g.state = StateGenerating

	start := time.Now()
	g.meta = Meta{
		BuildID:     uuid.NewString(),
		GeneratedAt: start,
	}

	shapes := g.world.OverlapBox(center, size, g.cfg.platformMask())
	for _, shape := range shapes {
		if shape == nil {
			continue
		}
		g.generateForShape(shape)
	}

	g.links = buildWalkLinks(g.nodes)

	g.byID = make(map[int]int, len(g.nodes))
	for i, n := range g.nodes {
		g.byID[n.ID] = i
	}
	g.grid.build(g.nodes)

	g.meta.NodeCount = len(g.nodes)
	g.meta.LinkCount = len(g.links)
	g.state = StateGenerated

	g.log.Info("platform graph generated",
		zap.String("build_id", g.meta.BuildID),
		zap.Int("shapes", len(shapes)),
		zap.Int("nodes", len(g.nodes)),
		zap.Int("links", len(g.links)),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// generateForShape extracts walkable edges from every path of one
// shape and places nodes along them. Merging and deduplication run
// over the shape's full edge set so multi-path shapes come out whole.
func (g *Generator) generateForShape(shape world.Shape) {
	oneWay := shape.Layer()&g.cfg.OneWayMask != 0

	// Verification rays include obstacles: a surface with an obstacle
	// in its headroom is not standable and gets rejected.
	rayMask := g.cfg.platformMask() | g.cfg.ObstacleMask

	var edges []edgeSpan
	for _, path := range shape.Paths() {
		edges = append(edges, extractTopEdges(g.world, path, rayMask)...)
	}
	edges = dedupEdges(mergeEdges(edges))

	for _, e := range edges {
		g.nodes = append(g.nodes, placeNodes(e, shape, oneWay, g.cfg, g.takeID)...)
	}
}

func (g *Generator) takeID() int {
	id := g.nextID
	g.nextID++
	return id
}

// Clear discards nodes, links, and index, and resets the id counter.
func (g *Generator) Clear() {
	g.nodes = nil
	g.links = nil
	g.byID = nil
	g.grid.clear()
	g.nextID = 0
	g.meta = Meta{}
	g.state = StateNotGenerated
}

// ---------------------------------------------------------------------------
// Query API
// ---------------------------------------------------------------------------

// State returns the current lifecycle state.
func (g *Generator) State() State { return g.state }

// Meta returns metadata for the most recent generation.
func (g *Generator) Meta() Meta { return g.meta }

// GetNode returns the node with the given id.
func (g *Generator) GetNode(id int) (Node, bool) {
	i, ok := g.byID[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// FindNearestNode returns the node closest to pos within maxDist.
// Before generation it reports no match rather than erroring.
func (g *Generator) FindNearestNode(pos world.Vec2, maxDist float64) (Node, bool) {
	i, ok := g.grid.nearest(g.nodes, pos, maxDist)
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// FindNodesInRange returns all nodes within radius of pos.
func (g *Generator) FindNodesInRange(pos world.Vec2, radius float64) []Node {
	var out []Node
	g.grid.rangeQuery(g.nodes, pos, radius, &out)
	return out
}

// FindNodesInRangeBuf is the non-allocating variant: it clears and
// fills the caller-provided buffer, returning the filled slice.
func (g *Generator) FindNodesInRangeBuf(pos world.Vec2, radius float64, buf *[]Node) []Node {
	g.grid.rangeQuery(g.nodes, pos, radius, buf)
	return *buf
}

// GetOutgoingLinks returns every link leaving the given node. The link
// list is small relative to the node count, so a linear filter is
// enough; links are not indexed.
func (g *Generator) GetOutgoingLinks(id int) []Link {
	var out []Link
	for _, l := range g.links {
		if l.From == id {
			out = append(out, l)
		}
	}
	return out
}

// Nodes returns a copy of the node list.
func (g *Generator) Nodes() []Node {
	return append([]Node(nil), g.nodes...)
}

// Links returns a copy of the link list.
func (g *Generator) Links() []Link {
	return append([]Link(nil), g.links...)
}
