// Package level provides the Lisp level-definition engine. It wraps
// zygomys in a sandboxed environment and produces a static shape set
// from a level script, ready to load into a query world.
package level

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/dmaris/platnav/pkg/world"
	"github.com/dmaris/platnav/pkg/world/sdfworld"
)

// EvalError is a non-fatal error from a level script, such as a parse
// error or a bad builtin argument.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// BoxDef is an axis-aligned box shape definition.
type BoxDef struct {
	Center world.Vec2
	Size   world.Vec2
	Layer  world.Layer
}

// PolygonDef is a closed polygon definition, possibly multi-ring.
type PolygonDef struct {
	Rings [][]world.Vec2
	Layer world.Layer
}

// PolylineDef is an open point-sequence definition.
type PolylineDef struct {
	Points []world.Vec2
	Layer  world.Layer
}

// Level is the shape set produced by evaluating a script.
type Level struct {
	Boxes     []BoxDef
	Polygons  []PolygonDef
	Polylines []PolylineDef
}

// ShapeCount returns the total number of shape definitions.
func (l *Level) ShapeCount() int {
	return len(l.Boxes) + len(l.Polygons) + len(l.Polylines)
}

// BuildWorld loads the level's shapes into a fresh static world.
func (l *Level) BuildWorld() (*sdfworld.World, error) {
	w := sdfworld.New()
	for _, b := range l.Boxes {
		if _, err := w.AddBox(b.Center, b.Size, b.Layer); err != nil {
			return nil, err
		}
	}
	for _, p := range l.Polygons {
		if _, err := w.AddPolygon(p.Layer, p.Rings...); err != nil {
			return nil, err
		}
	}
	for _, p := range l.Polylines {
		if _, err := w.AddPolyline(p.Points, p.Layer); err != nil {
			return nil, err
		}
	}
	return w, nil
}

// Engine wraps the zygomys interpreter for level evaluation. Each
// Evaluate call runs in a fresh sandbox so results are deterministic.
type Engine struct {
	mu         sync.Mutex
	generation uint64
}

// NewEngine creates a new Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Evaluate runs a level script and produces its shape set.
//
// Return semantics:
//   - On success: level + nil errors + nil error
//   - On parse/eval failure: nil level + eval errors + nil error
//   - On fatal failure (timeout, panic): nil + nil + error
func (e *Engine) Evaluate(source string) (*Level, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		lvl, evalErrs := e.evaluate(source)
		ch <- evalResult{level: lvl, errors: evalErrs}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate runs one script in a fresh sandboxed environment.
func (e *Engine) evaluate(source string) (*Level, []EvalError) {
	// An empty script is a valid, empty level.
	if strings.TrimSpace(source) == "" {
		return &Level{}, nil
	}

	// Sandbox mode keeps user scripts away from the filesystem and
	// syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	lvl := &Level{}
	registerBuiltins(env, lvl)

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return nil, parseZygomysError(err)
	}
	if _, err := env.Run(); err != nil {
		return nil, parseZygomysError(err)
	}
	return lvl, nil
}

// linePattern matches zygomys errors that carry "on line N: ...".
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into EvalError values,
// extracting line information when the message carries it.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
