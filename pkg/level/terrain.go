package level

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/dmaris/platnav/pkg/world"
)

// terrainFrequency controls how quickly terrain height varies along x.
const terrainFrequency = 0.05

// Terrain samples smooth noise into an open heightline from x=from to
// x=to at the given step, centered vertically on base. The same seed
// always produces the same line, so generated graphs stay
// deterministic.
func Terrain(seed int64, from, to, step, amplitude, base float64) ([]world.Vec2, error) {
	if step <= 0 {
		return nil, fmt.Errorf("terrain step must be positive, got %g", step)
	}
	if to <= from {
		return nil, fmt.Errorf("terrain range is empty: from %g to %g", from, to)
	}

	noise := opensimplex.New(seed)
	var points []world.Vec2
	for x := from; x <= to; x += step {
		y := base + amplitude*noise.Eval2(x*terrainFrequency, 0)
		points = append(points, world.Vec2{X: x, Y: y})
	}
	return points, nil
}
