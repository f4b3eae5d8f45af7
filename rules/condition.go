package rules

import "github.com/nstehr/gridlife/model"

// Evaluate reports whether cond holds in ctx. A nil condition always holds.
func Evaluate(cond *Condition, ctx Context) bool {
	if cond == nil {
		return true
	}
	switch cond.Kind {
	case AnyOf:
		for i := range cond.Group {
			if evaluateBase(&cond.Group[i], ctx) {
				return true
			}
		}
		return false
	case AllOf:
		for i := range cond.Group {
			if !evaluateBase(&cond.Group[i], ctx) {
				return false
			}
		}
		return true
	}
	return evaluateBase(&cond.Base, ctx)
}

func evaluateBase(b *BaseCondition, ctx Context) bool {
	for _, f := range b.Agent {
		if !f.Value.Match(AgentField(ctx.Agent, f.Name), ctx) {
			return false
		}
	}

	for _, f := range b.Cell {
		if !f.Value.Match(ColorField(ctx.Cell, f.Name), ctx) {
			return false
		}
	}

	for _, n := range b.Surrounding {
		cell, ok := ctx.Surrounding[model.Compass(n.Direction)]
		if !ok {
			return false
		}
		for _, f := range n.Fields {
			if !f.Value.Match(ColorField(cell, f.Name), ctx) {
				return false
			}
		}
	}

	return true
}
