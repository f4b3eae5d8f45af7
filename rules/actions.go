package rules

import (
	"github.com/nstehr/gridlife/model"
)

type resolvedField struct {
	name  string
	value Value
}

// resolveFields evaluates a whole field map before any of it is applied, so
// a map like {r: "ant.g", g: "ant.r"} swaps rather than copies.
func resolveFields(fields []Field, ctx Context) []resolvedField {
	out := make([]resolvedField, len(fields))
	for i, f := range fields {
		out[i] = resolvedField{name: f.Name, value: f.Value.Resolve(ctx)}
	}
	return out
}

// Execute applies act to the agent in ctx. The order is fixed: agent state,
// turn, cell state at the pre-move position, move, then spawn relative to
// the post-move position. sp may be nil, in which case spawns are skipped.
func Execute(act Action, ctx Context, g Grid, sp Spawner) {
	a := ctx.Agent

	if len(act.SetAgent) > 0 {
		applyAgentFields(a, resolveFields(act.SetAgent, ctx), ctx, false)
	}

	if act.Turn != "" {
		a.Direction = a.Direction.Turn(act.Turn)
	}

	if len(act.SetCell) > 0 {
		if p := cellPatch(resolveFields(act.SetCell, ctx), ctx); !p.Empty() {
			g.Write(a.X, a.Y, p)
		}
	}

	if act.Move {
		dx, dy := a.Direction.Delta()
		a.X += dx
		a.Y += dy
	}

	if act.Spawn != nil {
		spawn(act.Spawn, ctx, sp)
	}
}

// applyAgentFields writes resolved fields onto a. Identity and position are
// never assignable; rules is assignable only when seeding a spawn.
func applyAgentFields(a *model.Agent, fields []resolvedField, ctx Context, seeding bool) {
	for _, f := range fields {
		if !f.value.Resolved() {
			ctx.notice("agent field skipped: unresolved value", "agent", a.ID, "field", f.name)
			continue
		}
		switch f.name {
		case "direction":
			d, ok := model.ParseDirection(f.value.Str)
			if f.value.Kind != Text || !ok {
				ctx.notice("invalid direction, keeping current", "agent", a.ID, "value", f.value.String(), "direction", a.Direction)
				continue
			}
			a.Direction = d
		case "r", "g", "b":
			n, ok := f.value.Float()
			if !ok {
				ctx.notice("agent color skipped: not a number", "agent", a.ID, "field", f.name, "value", f.value.String())
				continue
			}
			setChannel(&a.Color, f.name, model.ChannelValue(n))
		case "rules":
			if !seeding || f.value.Kind != Text {
				ctx.notice("agent field is read-only", "agent", a.ID, "field", f.name)
				continue
			}
			a.Rules = f.value.Str
		case "id", "x", "y":
			ctx.notice("agent field is read-only", "agent", a.ID, "field", f.name)
		default:
			a.SetAttr(f.name, f.value.Any())
		}
	}
}

func setChannel(c *model.Color, name string, v int) {
	switch name {
	case "r":
		c.R = v
	case "g":
		c.G = v
	case "b":
		c.B = v
	}
}

// cellPatch keeps only the channels that resolved to a number.
func cellPatch(fields []resolvedField, ctx Context) model.ColorPatch {
	var p model.ColorPatch
	for _, f := range fields {
		switch f.name {
		case "r", "g", "b":
		default:
			ctx.notice("cell field ignored", "field", f.name)
			continue
		}
		n, ok := f.value.Float()
		if !ok {
			ctx.notice("cell channel skipped: not a number", "field", f.name, "value", f.value.String())
			continue
		}
		p = p.With(f.name, model.ChannelValue(n))
	}
	return p
}

// spawn seeds a child from the parent and hands it to sp. The child inherits
// color, direction, rules and attributes unless the directive overrides them.
func spawn(d *SpawnDirective, ctx Context, sp Spawner) {
	parent := ctx.Agent
	if sp == nil {
		ctx.notice("spawn skipped: no spawner", "agent", parent.ID)
		return
	}

	seed := parent.Clone()
	seed.ID = ""
	if len(d.Agent) > 0 {
		applyAgentFields(seed, resolveFields(d.Agent, ctx), ctx, true)
	}

	dx, dy := d.Direction.Offset()
	seed.X, seed.Y = parent.X+dx, parent.Y+dy
	sp.Spawn(seed.X, seed.Y, *seed)
}
