package navgraph

import (
	"math"
	"sort"

	"github.com/dmaris/platnav/pkg/world"
)

// Walk linking bounds. Pairs beyond either bound are left unlinked so
// that no "walk" link ever crosses a visible gap.
const (
	maxXGap  = 3.0 // max horizontal gap between linked neighbors
	maxYDiff = 0.5 // max height difference between linked neighbors
)

// surfaceKey groups nodes that lie on the same logical walking
// surface: same source shape, same quantized height band. Quantizing
// absorbs floating-point height variance while keeping visually
// distinct levels apart.
type surfaceKey struct {
	shape world.Shape
	band  int
}

// buildWalkLinks connects adjacent same-surface nodes with symmetric
// walk links. Only neighbors in x-sorted order are considered, so each
// surface becomes a sparse path graph rather than a clique.
func buildWalkLinks(nodes []Node) []Link {
	groups := make(map[surfaceKey][]int)
	for i, n := range nodes {
		key := surfaceKey{
			shape: n.SourceShape,
			band:  int(math.Round(n.Position.Y / maxYDiff)),
		}
		groups[key] = append(groups[key], i)
	}

	var links []Link
	for _, idxs := range groups {
		sort.Slice(idxs, func(a, b int) bool {
			return nodes[idxs[a]].Position.X < nodes[idxs[b]].Position.X
		})

		for i := 0; i+1 < len(idxs); i++ {
			a := nodes[idxs[i]]
			b := nodes[idxs[i+1]]
			if b.Position.X-a.Position.X > maxXGap {
				continue
			}
			if math.Abs(b.Position.Y-a.Position.Y) > maxYDiff {
				continue
			}
			cost := a.Position.Dist(b.Position)
			links = append(links,
				Link{From: a.ID, To: b.ID, Kind: LinkWalk, Cost: cost},
				Link{From: b.ID, To: a.ID, Kind: LinkWalk, Cost: cost},
			)
		}
	}
	return links
}
