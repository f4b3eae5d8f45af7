package rules

import (
	"regexp"
	"strings"

	"github.com/nstehr/gridlife/model"
)

// Grid is the cell storage the engine reads and writes.
type Grid interface {
	Read(x, y int) model.Color
	Write(x, y int, p model.ColorPatch)
	ReadNeighbors(x, y int) map[model.Compass]model.Color
}

// Spawner creates agents on behalf of a spawn action. Implementations must
// not make the new agent visible to the tick that is currently running.
type Spawner interface {
	Spawn(x, y int, seed model.Agent)
}

// SpawnFunc adapts a function to Spawner.
type SpawnFunc func(x, y int, seed model.Agent)

func (f SpawnFunc) Spawn(x, y int, seed model.Agent) { f(x, y, seed) }

// Context is what a rule sees while it is evaluated. The agent is live, so
// action steps observe earlier steps; the cell colors are a snapshot taken
// when the context was built.
type Context struct {
	Agent       *model.Agent
	Cell        model.Color
	Surrounding map[model.Compass]model.Color

	notify Notifier
}

// NewContext snapshots the agent's cell and its 8 neighbors.
func NewContext(a *model.Agent, g Grid) Context {
	return newContext(a, g, Discard)
}

func newContext(a *model.Agent, g Grid, n Notifier) Context {
	return Context{
		Agent:       a,
		Cell:        g.Read(a.X, a.Y),
		Surrounding: g.ReadNeighbors(a.X, a.Y),
		notify:      n,
	}
}

func (c Context) notice(msg string, args ...any) {
	if c.notify != nil {
		c.notify.Notice(msg, args...)
	}
}

var agentFields = map[string]func(*model.Agent) Value{
	"id":        func(a *model.Agent) Value { return TextValue(a.ID) },
	"x":         func(a *model.Agent) Value { return NumberValue(float64(a.X)) },
	"y":         func(a *model.Agent) Value { return NumberValue(float64(a.Y)) },
	"direction": func(a *model.Agent) Value { return TextValue(string(a.Direction)) },
	"r":         func(a *model.Agent) Value { return NumberValue(float64(a.R)) },
	"g":         func(a *model.Agent) Value { return NumberValue(float64(a.G)) },
	"b":         func(a *model.Agent) Value { return NumberValue(float64(a.B)) },
	"rules":     func(a *model.Agent) Value { return TextValue(a.Rules) },
}

// AgentField reads a named agent field, falling back to rule-assigned attributes.
func AgentField(a *model.Agent, name string) Value {
	if get, ok := agentFields[name]; ok {
		return get(a)
	}
	if v, ok := a.Attrs[name]; ok {
		return valueOf(v)
	}
	return Value{}
}

// ColorField reads r, g or b.
func ColorField(c model.Color, name string) Value {
	if v, ok := c.Channel(name); ok {
		return NumberValue(float64(v))
	}
	return Value{}
}

// dottedPath recognizes strings shaped like a variable reference.
var dottedPath = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*(\.[A-Za-z0-9_-]+)+$`)

// Reference is a scope.field variable path.
type Reference struct {
	Path  string
	Scope string
	Field string
}

// ParseReference reports whether s is a reference: a dotted path whose first
// segment is ant, cell or a compass direction. Other dotted strings such as
// "v1.2" are plain text. A known scope with a malformed tail still parses and
// later resolves to Unresolved.
func ParseReference(s string) (Reference, bool) {
	if !dottedPath.MatchString(s) {
		return Reference{}, false
	}
	parts := strings.Split(s, ".")
	if !knownScope(parts[0]) {
		return Reference{}, false
	}
	ref := Reference{Path: s}
	if len(parts) == 2 {
		ref.Scope, ref.Field = parts[0], parts[1]
	}
	return ref, true
}

func knownScope(s string) bool {
	if s == "ant" || s == "cell" {
		return true
	}
	_, ok := model.ParseCompass(s)
	return ok
}

func (r Reference) String() string { return r.Path }

// Resolve looks up a reference. Anything it cannot find is Unresolved.
func (c Context) Resolve(r Reference) Value {
	if r.Scope == "" {
		c.notice("invalid variable reference", "ref", r.Path)
		return Value{}
	}

	var v Value
	switch r.Scope {
	case "ant":
		v = AgentField(c.Agent, r.Field)
	case "cell":
		v = ColorField(c.Cell, r.Field)
	default:
		dir, ok := model.ParseCompass(r.Scope)
		if !ok {
			c.notice("unknown variable source", "ref", r.Path, "scope", r.Scope)
			return Value{}
		}
		cell, ok := c.Surrounding[dir]
		if !ok {
			c.notice("neighbor missing from context", "ref", r.Path)
			return Value{}
		}
		v = ColorField(cell, r.Field)
	}

	if !v.Resolved() {
		c.notice("unresolved variable reference", "ref", r.Path)
	}
	return v
}
