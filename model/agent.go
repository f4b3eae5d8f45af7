package model

import (
	"maps"

	"github.com/google/uuid"
)

// Agent is a positioned, colored, rule-driven actor on the grid.
// Rules holds the rule list source text; the driver compiles it.
type Agent struct {
	ID        string    `json:"id"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Direction Direction `json:"direction"`
	Color
	Rules string `json:"rules"`
	// Attrs holds fields assigned by rules that are not part of the fixed
	// agent record. Values are float64 or string.
	Attrs map[string]any `json:"attrs,omitempty"`
}

// NewAgent places a red, up-facing agent with a fresh ID and no rules.
func NewAgent(x, y int) *Agent {
	return &Agent{
		ID:        NewAgentID(),
		X:         x,
		Y:         y,
		Direction: Up,
		Color:     Color{R: 255, G: 0, B: 0},
	}
}

func NewAgentID() string {
	return "agent_" + uuid.NewString()
}

// Position returns the agent's coordinate.
func (a *Agent) Position() Point { return Point{X: a.X, Y: a.Y} }

// Clone returns a deep copy.
func (a *Agent) Clone() *Agent {
	out := *a
	if a.Attrs != nil {
		out.Attrs = maps.Clone(a.Attrs)
	}
	return &out
}

// SetAttr stores a free-form attribute.
func (a *Agent) SetAttr(key string, v any) {
	if a.Attrs == nil {
		a.Attrs = make(map[string]any)
	}
	a.Attrs[key] = v
}
