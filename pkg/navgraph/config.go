package navgraph

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/dmaris/platnav/pkg/world"
)

// Config controls one generation run. Validate it before calling
// Generate; a bad value mid-generation would leave a partially built,
// unusable graph.
type Config struct {
	// ScanCenter and ScanSize bound the region queried for shapes.
	ScanCenter world.Vec2 `yaml:"scan_center"`
	ScanSize   world.Vec2 `yaml:"scan_size"`

	// NodeSpacing is the interior node spacing along a surface.
	// DenseNodeSpacing is used instead when DenseSpacing is set.
	NodeSpacing      float64 `yaml:"node_spacing" validate:"gt=0"`
	DenseNodeSpacing float64 `yaml:"dense_node_spacing" validate:"gt=0"`
	DenseSpacing     bool    `yaml:"dense_spacing"`

	// EdgeInset offsets edge nodes inward from the surface ends.
	EdgeInset float64 `yaml:"edge_inset" validate:"gte=0"`

	// MinPlatformWidth is the width below which a platform gets a
	// single center node instead of edge + interior nodes.
	MinPlatformWidth float64 `yaml:"min_platform_width" validate:"gt=0"`

	// CellSize is the spatial grid bucket size.
	CellSize float64 `yaml:"spatial_grid_cell_size" validate:"gt=0"`

	// Layer masks for shape classification and ray queries. Ground and
	// one-way shapes are walkable sources; the obstacle mask joins the
	// surface verification rays so blocked headroom rejects a surface.
	GroundMask   world.Layer `yaml:"ground_mask"`
	OneWayMask   world.Layer `yaml:"one_way_mask"`
	ObstacleMask world.Layer `yaml:"obstacle_mask"`
}

// DefaultConfig returns a Config with the standard tuning values.
// The scan region defaults to a 100x100 box around the origin.
func DefaultConfig() Config {
	return Config{
		ScanSize:         world.Vec2{X: 100, Y: 100},
		NodeSpacing:      1.5,
		DenseNodeSpacing: 0.75,
		EdgeInset:        0.3,
		MinPlatformWidth: 1.0,
		CellSize:         4.0,
		GroundMask:       world.LayerGround,
		OneWayMask:       world.LayerOneWay,
		ObstacleMask:     world.LayerObstacle,
	}
}

// Spacing returns the effective interior node spacing.
func (c Config) Spacing() float64 {
	if c.DenseSpacing {
		return c.DenseNodeSpacing
	}
	return c.NodeSpacing
}

// platformMask returns the mask used for walkability ray checks.
func (c Config) platformMask() world.Layer {
	return c.GroundMask | c.OneWayMask
}

var validate = validator.New()

// Validate rejects configurations that would corrupt generation.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("navgraph config: %w", err)
	}
	if c.ScanSize.X <= 0 || c.ScanSize.Y <= 0 {
		return fmt.Errorf("navgraph config: scan size must be positive, got %gx%g", c.ScanSize.X, c.ScanSize.Y)
	}
	if c.GroundMask == 0 {
		return fmt.Errorf("navgraph config: ground mask must not be empty")
	}
	return nil
}
