package level

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/dmaris/platnav/pkg/world"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// kwPrefix marks keyword names rewritten by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites level script source before zygomys sees it:
//
//  1. :keyword -> "__kw_keyword" string literals, so keywords need no
//     global symbol registration.
//  2. kebab-case -> underscore form for identifiers (one-way ->
//     one_way), since zygomys reads a bare hyphen as subtraction.
//  3. ; line comments -> // comments, zygomys's comment syntax.
//
// All three respect string literal boundaries.
func preprocessSource(source string) string {
	out := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Copy string literals untouched.
		if b[i] == '"' {
			out = append(out, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					out = append(out, b[i], b[i+1])
					i += 2
					continue
				}
				out = append(out, b[i])
				i++
			}
			if i < len(b) {
				out = append(out, b[i])
				i++
			}
			continue
		}
		// Lisp ; comments become // comments.
		if b[i] == ';' {
			out = append(out, '/', '/')
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}
			continue
		}
		// :keyword -> "__kw_keyword". Keyword names keep hyphens.
		if b[i] == ':' && i+1 < len(b) && isLetter(b[i+1]) {
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j
			continue
		}
		// Kebab identifier hyphen -> underscore, minus operator kept.
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isLetter(b[i+1]) {
			out = append(out, '_')
			i++
			continue
		}
		out = append(out, b[i])
		i++
	}
	return string(out)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// ---------------------------------------------------------------------------
// Argument parsing
// ---------------------------------------------------------------------------

// isKW reports whether s is a preprocessed keyword, returning its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds a parsed mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok && i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
			continue
		}
		if ok {
			result.kw[name] = zygo.SexpNull
			i++
			continue
		}
		result.positional = append(result.positional, args[i])
		i++
	}
	return result
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// kwFloat reads an optional keyword float, keeping def when absent.
func kwFloat(pa kwArgs, name string, def float64) (float64, error) {
	v, ok := pa.kw[name]
	if !ok {
		return def, nil
	}
	f, err := toFloat64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// toLayer converts a :ground / :one-way / :obstacle keyword.
func toLayer(s zygo.Sexp) (world.Layer, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return 0, fmt.Errorf("expected layer keyword, got %T (%s)", s, s.SexpString(nil))
	}
	name := strings.TrimPrefix(str.S, kwPrefix)
	switch name {
	case "ground":
		return world.LayerGround, nil
	case "one-way":
		return world.LayerOneWay, nil
	case "obstacle":
		return world.LayerObstacle, nil
	}
	return 0, fmt.Errorf("invalid layer %q, expected ground, one-way, or obstacle", name)
}

// toPoints converts a flat [x y x y ...] list into a point sequence.
func toPoints(s zygo.Sexp) ([]world.Vec2, error) {
	var raw []zygo.Sexp
	switch v := s.(type) {
	case *zygo.SexpPair:
		arr, err := zygo.ListToArray(v)
		if err != nil {
			return nil, err
		}
		raw = arr
	case *zygo.SexpArray:
		raw = v.Val
	default:
		return nil, fmt.Errorf("expected point list, got %T", s)
	}
	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("point list needs an even number of values, got %d", len(raw))
	}
	points := make([]world.Vec2, 0, len(raw)/2)
	for i := 0; i < len(raw); i += 2 {
		x, err := toFloat64(raw[i])
		if err != nil {
			return nil, err
		}
		y, err := toFloat64(raw[i+1])
		if err != nil {
			return nil, err
		}
		points = append(points, world.Vec2{X: x, Y: y})
	}
	return points, nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the level DSL builtins into a zygomys
// environment. The builtins append shape definitions to lvl as user
// code runs. Source must be preprocessed with preprocessSource first.
func registerBuiltins(env *zygo.Zlisp, lvl *Level) {

	// boxBuiltin handles the shared (:x :y :w :h) box form.
	boxBuiltin := func(form string, layer world.Layer) func(*zygo.Zlisp, string, []zygo.Sexp) (zygo.Sexp, error) {
		return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			pa := parseArgs(args)
			var b BoxDef
			var err error
			if b.Center.X, err = kwFloat(pa, "x", 0); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", form, err)
			}
			if b.Center.Y, err = kwFloat(pa, "y", 0); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", form, err)
			}
			if b.Size.X, err = kwFloat(pa, "w", 0); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", form, err)
			}
			if b.Size.Y, err = kwFloat(pa, "h", 1); err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", form, err)
			}
			if b.Size.X <= 0 || b.Size.Y <= 0 {
				return zygo.SexpNull, fmt.Errorf("%s: size must be positive, got %gx%g", form, b.Size.X, b.Size.Y)
			}
			b.Layer = layer
			lvl.Boxes = append(lvl.Boxes, b)
			return zygo.SexpNull, nil
		}
	}

	// -----------------------------------------------------------------------
	// (platform :x 0 :y 0 :w 10 :h 1)
	// -----------------------------------------------------------------------
	env.AddFunction("platform", boxBuiltin("platform", world.LayerGround))

	// -----------------------------------------------------------------------
	// (one-way :x 0 :y 4 :w 6 :h 0.5)
	// -----------------------------------------------------------------------
	env.AddFunction("one_way", boxBuiltin("one-way", world.LayerOneWay))

	// -----------------------------------------------------------------------
	// (obstacle :x 0 :y 0 :w 2 :h 2)
	// -----------------------------------------------------------------------
	env.AddFunction("obstacle", boxBuiltin("obstacle", world.LayerObstacle))

	// -----------------------------------------------------------------------
	// (polygon :layer :ground [x y x y ...] ...)
	// -----------------------------------------------------------------------
	env.AddFunction("polygon", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		layer := world.LayerGround
		if v, ok := pa.kw["layer"]; ok {
			l, err := toLayer(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
			}
			layer = l
		}
		if len(pa.positional) == 0 {
			return zygo.SexpNull, fmt.Errorf("polygon: needs at least one ring")
		}
		var rings [][]world.Vec2
		for _, p := range pa.positional {
			ring, err := toPoints(p)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polygon: %w", err)
			}
			rings = append(rings, ring)
		}
		lvl.Polygons = append(lvl.Polygons, PolygonDef{Rings: rings, Layer: layer})
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (polyline :layer :ground [x y x y ...])
	// -----------------------------------------------------------------------
	env.AddFunction("polyline", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		layer := world.LayerGround
		if v, ok := pa.kw["layer"]; ok {
			l, err := toLayer(v)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("polyline: %w", err)
			}
			layer = l
		}
		if len(pa.positional) != 1 {
			return zygo.SexpNull, fmt.Errorf("polyline: needs exactly one point list")
		}
		points, err := toPoints(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("polyline: %w", err)
		}
		if len(points) < 2 {
			return zygo.SexpNull, fmt.Errorf("polyline: needs at least 2 points, got %d", len(points))
		}
		lvl.Polylines = append(lvl.Polylines, PolylineDef{Points: points, Layer: layer})
		return zygo.SexpNull, nil
	})

	// -----------------------------------------------------------------------
	// (terrain :seed 1 :from -50 :to 50 :step 2 :amplitude 4 :base 0)
	// -----------------------------------------------------------------------
	env.AddFunction("terrain", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		var err error
		var seed, from, to, step, amplitude, base float64
		if seed, err = kwFloat(pa, "seed", 0); err != nil {
			return zygo.SexpNull, fmt.Errorf("terrain: %w", err)
		}
		if from, err = kwFloat(pa, "from", -50); err != nil {
			return zygo.SexpNull, fmt.Errorf("terrain: %w", err)
		}
		if to, err = kwFloat(pa, "to", 50); err != nil {
			return zygo.SexpNull, fmt.Errorf("terrain: %w", err)
		}
		if step, err = kwFloat(pa, "step", 2); err != nil {
			return zygo.SexpNull, fmt.Errorf("terrain: %w", err)
		}
		if amplitude, err = kwFloat(pa, "amplitude", 4); err != nil {
			return zygo.SexpNull, fmt.Errorf("terrain: %w", err)
		}
		if base, err = kwFloat(pa, "base", 0); err != nil {
			return zygo.SexpNull, fmt.Errorf("terrain: %w", err)
		}
		points, err := Terrain(int64(seed), from, to, step, amplitude, base)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("terrain: %w", err)
		}
		lvl.Polylines = append(lvl.Polylines, PolylineDef{Points: points, Layer: world.LayerGround})
		return zygo.SexpNull, nil
	})
}
