package level

import (
	"strings"
	"testing"

	"github.com/dmaris/platnav/pkg/world"
)

func evalLevel(t *testing.T, source string) *Level {
	t.Helper()
	lvl, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("Evaluate: %v", evalErrs[0])
	}
	return lvl
}

func evalErrors(t *testing.T, source string) []EvalError {
	t.Helper()
	lvl, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if lvl != nil {
		t.Fatal("Evaluate returned a level alongside errors")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors, got none")
	}
	return evalErrs
}

func TestEvaluateEmptySource(t *testing.T) {
	lvl := evalLevel(t, "   \n\t  ")
	if lvl.ShapeCount() != 0 {
		t.Errorf("empty source produced %d shapes", lvl.ShapeCount())
	}
}

func TestEvaluatePlatform(t *testing.T) {
	lvl := evalLevel(t, `(platform :x 5 :y -0.5 :w 10 :h 1)`)
	if len(lvl.Boxes) != 1 {
		t.Fatalf("box count = %d, want 1", len(lvl.Boxes))
	}
	b := lvl.Boxes[0]
	if b.Center != (world.Vec2{X: 5, Y: -0.5}) {
		t.Errorf("center = %v", b.Center)
	}
	if b.Size != (world.Vec2{X: 10, Y: 1}) {
		t.Errorf("size = %v", b.Size)
	}
	if b.Layer != world.LayerGround {
		t.Errorf("layer = %v, want ground", b.Layer)
	}
}

func TestEvaluateBoxDefaults(t *testing.T) {
	// Height defaults to 1, center to the origin.
	lvl := evalLevel(t, `(platform :w 4)`)
	b := lvl.Boxes[0]
	if b.Size.Y != 1 {
		t.Errorf("default height = %g, want 1", b.Size.Y)
	}
	if b.Center != (world.Vec2{}) {
		t.Errorf("default center = %v, want origin", b.Center)
	}
}

func TestEvaluateOneWayKebab(t *testing.T) {
	lvl := evalLevel(t, `(one-way :x 0 :y 4 :w 6 :h 0.5)`)
	if len(lvl.Boxes) != 1 {
		t.Fatalf("box count = %d, want 1", len(lvl.Boxes))
	}
	if lvl.Boxes[0].Layer != world.LayerOneWay {
		t.Errorf("layer = %v, want one-way", lvl.Boxes[0].Layer)
	}
}

func TestEvaluateObstacle(t *testing.T) {
	lvl := evalLevel(t, `(obstacle :x 2 :y 1 :w 2 :h 2)`)
	if len(lvl.Boxes) != 1 || lvl.Boxes[0].Layer != world.LayerObstacle {
		t.Fatalf("obstacle not recorded: %+v", lvl.Boxes)
	}
}

func TestEvaluatePolygon(t *testing.T) {
	lvl := evalLevel(t, `(polygon :layer :obstacle [0 0  4 0  4 2  0 2])`)
	if len(lvl.Polygons) != 1 {
		t.Fatalf("polygon count = %d, want 1", len(lvl.Polygons))
	}
	p := lvl.Polygons[0]
	if p.Layer != world.LayerObstacle {
		t.Errorf("layer = %v, want obstacle", p.Layer)
	}
	if len(p.Rings) != 1 || len(p.Rings[0]) != 4 {
		t.Fatalf("rings = %v", p.Rings)
	}
	if p.Rings[0][2] != (world.Vec2{X: 4, Y: 2}) {
		t.Errorf("ring point = %v, want (4,2)", p.Rings[0][2])
	}
}

func TestEvaluatePolygonMultiRing(t *testing.T) {
	lvl := evalLevel(t, `(polygon [0 0  2 0  2 2] [5 0  7 0  7 2])`)
	if len(lvl.Polygons) != 1 || len(lvl.Polygons[0].Rings) != 2 {
		t.Fatalf("rings = %+v", lvl.Polygons)
	}
	if lvl.Polygons[0].Layer != world.LayerGround {
		t.Errorf("default polygon layer = %v, want ground", lvl.Polygons[0].Layer)
	}
}

func TestEvaluatePolyline(t *testing.T) {
	lvl := evalLevel(t, `(polyline :layer :ground [0 0  4 2  8 0])`)
	if len(lvl.Polylines) != 1 {
		t.Fatalf("polyline count = %d, want 1", len(lvl.Polylines))
	}
	pts := lvl.Polylines[0].Points
	if len(pts) != 3 || pts[1] != (world.Vec2{X: 4, Y: 2}) {
		t.Errorf("points = %v", pts)
	}
}

func TestEvaluateTerrain(t *testing.T) {
	src := `(terrain :seed 7 :from 0 :to 20 :step 2 :amplitude 3 :base 1)`
	a := evalLevel(t, src)
	if len(a.Polylines) != 1 {
		t.Fatalf("polyline count = %d, want 1", len(a.Polylines))
	}
	pts := a.Polylines[0].Points
	if len(pts) != 11 {
		t.Errorf("point count = %d, want 11", len(pts))
	}
	for _, p := range pts {
		if p.Y < 1-3 || p.Y > 1+3 {
			t.Errorf("terrain point y = %g outside amplitude band", p.Y)
		}
	}

	// Same seed, same terrain.
	b := evalLevel(t, src)
	for i := range pts {
		if pts[i] != b.Polylines[0].Points[i] {
			t.Fatalf("terrain differs at point %d with identical seed", i)
		}
	}
}

func TestEvaluateSemicolonComments(t *testing.T) {
	lvl := evalLevel(t, `
; the main floor
(platform :x 0 :y 0 :w 10) ; trailing note
;; ignored (platform :x 99 :y 99 :w 1)
`)
	if len(lvl.Boxes) != 1 {
		t.Errorf("box count = %d, want 1", len(lvl.Boxes))
	}
}

func TestEvaluateDefinitions(t *testing.T) {
	lvl := evalLevel(t, `
(def floor-w 10)
(defn step [i] (platform :x (* i 5) :y i :w 4))
(platform :x 0 :y 0 :w floor-w)
(step 1)
(step 2)
`)
	if len(lvl.Boxes) != 3 {
		t.Fatalf("box count = %d, want 3", len(lvl.Boxes))
	}
	if lvl.Boxes[0].Size.X != 10 {
		t.Errorf("floor width = %g, want 10", lvl.Boxes[0].Size.X)
	}
	if lvl.Boxes[2].Center.X != 10 {
		t.Errorf("last step x = %g, want 10", lvl.Boxes[2].Center.X)
	}
}

func TestEvaluateBadArguments(t *testing.T) {
	errs := evalErrors(t, `(platform :x 0 :y 0 :w -5)`)
	if !strings.Contains(errs[0].Message, "size must be positive") {
		t.Errorf("error = %q", errs[0].Message)
	}

	errs = evalErrors(t, `(polygon :layer :lava [0 0 1 0 1 1])`)
	if !strings.Contains(errs[0].Message, "invalid layer") {
		t.Errorf("error = %q", errs[0].Message)
	}

	errs = evalErrors(t, `(polyline [0 0 1])`)
	if !strings.Contains(errs[0].Message, "even number") {
		t.Errorf("error = %q", errs[0].Message)
	}
}

func TestEvaluateParseError(t *testing.T) {
	lvl, evalErrs, err := NewEngine().Evaluate(`(platform :x 0`)
	if err != nil {
		t.Fatalf("parse failure escalated to fatal: %v", err)
	}
	if lvl != nil || len(evalErrs) == 0 {
		t.Fatalf("lvl=%v errs=%v, want nil level with eval errors", lvl, evalErrs)
	}
}

func TestBuildWorld(t *testing.T) {
	lvl := evalLevel(t, `
(platform :x 5 :y -0.5 :w 10 :h 1)
(one-way :x 5 :y 4 :w 6 :h 0.5)
(polyline [20 0  30 5])
`)
	w, err := lvl.BuildWorld()
	if err != nil {
		t.Fatalf("BuildWorld: %v", err)
	}
	if len(w.Shapes()) != 3 {
		t.Fatalf("world shape count = %d, want 3", len(w.Shapes()))
	}

	hit, ok := w.Raycast(world.Vec2{X: 5, Y: 2}, world.Vec2{X: 0, Y: -1}, 5, world.LayerGround)
	if !ok {
		t.Fatal("ray over the floor missed")
	}
	if hit.Shape.Layer() != world.LayerGround {
		t.Errorf("hit layer = %v, want ground", hit.Shape.Layer())
	}
}

func TestPreprocessSource(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{`(platform :x 1)`, `(platform "__kw_x" 1)`},
		{`(one-way :w 2)`, `(one_way "__kw_w" 2)`},
		{`:one-way`, `"__kw_one-way"`},
		{`; note`, `// note`},
		{`(- 5 2)`, `(- 5 2)`},
		{`(def a-b 1)`, `(def a_b 1)`},
		{`"a ; :kw - text"`, `"a ; :kw - text"`},
		{`"esc \" ;"`, `"esc \" ;"`},
	}
	for _, c := range cases {
		if got := preprocessSource(c.in); got != c.want {
			t.Errorf("preprocessSource(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTerrainFunction(t *testing.T) {
	pts, err := Terrain(42, -10, 10, 5, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 5 {
		t.Errorf("point count = %d, want 5", len(pts))
	}
	if pts[0].X != -10 || pts[len(pts)-1].X != 10 {
		t.Errorf("x range [%g, %g], want [-10, 10]", pts[0].X, pts[len(pts)-1].X)
	}

	if _, err := Terrain(1, 0, 10, 0, 1, 0); err == nil {
		t.Error("zero step accepted")
	}
	if _, err := Terrain(1, 10, 0, 1, 1, 0); err == nil {
		t.Error("inverted range accepted")
	}
}

func TestEvalErrorString(t *testing.T) {
	if got := (EvalError{Line: 3, Message: "bad"}).Error(); got != "line 3: bad" {
		t.Errorf("got %q", got)
	}
	if got := (EvalError{Message: "bad"}).Error(); got != "bad" {
		t.Errorf("got %q", got)
	}
}
