package rules

import (
	"github.com/nstehr/gridlife/model"
)

// Interpreter runs one agent's rule list for one tick.
// Exactly one rule fires per call, or none: the first whose condition holds.
type Interpreter struct {
	notify Notifier
}

// NewInterpreter returns an interpreter reporting diagnostics to n.
// A nil n discards them.
func NewInterpreter(n Notifier) *Interpreter {
	if n == nil {
		n = Discard
	}
	return &Interpreter{notify: n}
}

// Notifier returns the interpreter's diagnostic sink.
func (in *Interpreter) Notifier() Notifier { return in.notify }

// Run evaluates rs for agent a and executes the first matching rule. It
// returns the position of the fired rule in rs.Rules, or -1.
func (in *Interpreter) Run(a *model.Agent, rs *RuleSet, g Grid, sp Spawner) int {
	if rs.Len() == 0 {
		return -1
	}

	ctx := newContext(a, g, in.notify)
	for i := range rs.Rules {
		r := &rs.Rules[i]
		if !Evaluate(r.Condition, ctx) {
			continue
		}
		Execute(r.Action, ctx, g, sp)
		return i
	}
	return -1
}
