package rules

import (
	"fmt"
	"sort"

	"github.com/nstehr/gridlife/model"
)

// compileRule turns one decoded array element into a Rule, compiling every
// expression it contains. The element has already passed schema validation;
// the type checks here guard against a schema that is looser than the code.
func compileRule(index int, raw any) (Rule, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Rule{}, fmt.Errorf("rule must be an object, got %T", raw)
	}

	rawAction, ok := obj["action"].(map[string]any)
	if !ok {
		return Rule{}, fmt.Errorf("rule has no action")
	}
	action, err := compileAction(rawAction)
	if err != nil {
		return Rule{}, fmt.Errorf("action: %w", err)
	}

	r := Rule{Index: index, Action: action}
	if rawCond, present := obj["condition"]; present && rawCond != nil {
		condObj, ok := rawCond.(map[string]any)
		if !ok {
			return Rule{}, fmt.Errorf("condition must be an object, got %T", rawCond)
		}
		cond, err := compileCondition(condObj)
		if err != nil {
			return Rule{}, fmt.Errorf("condition: %w", err)
		}
		r.Condition = cond
	}
	return r, nil
}

// compileCondition checks "or" before "and"; an object carrying either key
// is a group and its other keys are ignored.
func compileCondition(obj map[string]any) (*Condition, error) {
	for _, g := range []struct {
		key  string
		kind ConditionKind
	}{{"or", AnyOf}, {"and", AllOf}} {
		raw, ok := obj[g.key]
		if !ok {
			continue
		}
		items, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%s must be an array", g.key)
		}
		group := make([]BaseCondition, 0, len(items))
		for i, item := range items {
			itemObj, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be an object", g.key, i)
			}
			b, err := compileBase(itemObj)
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", g.key, i, err)
			}
			group = append(group, b)
		}
		return &Condition{Kind: g.kind, Group: group}, nil
	}

	b, err := compileBase(obj)
	if err != nil {
		return nil, err
	}
	return &Condition{Kind: BaseKind, Base: b}, nil
}

func compileBase(obj map[string]any) (BaseCondition, error) {
	var b BaseCondition
	var err error

	if raw, ok := pick(obj, "agentState", "antState"); ok {
		if b.Agent, err = compileFields(raw); err != nil {
			return b, fmt.Errorf("agentState: %w", err)
		}
	}
	if raw, ok := obj["cellState"]; ok {
		if b.Cell, err = compileFields(raw); err != nil {
			return b, fmt.Errorf("cellState: %w", err)
		}
	}
	if raw, ok := obj["surroundingCells"]; ok {
		dirs, ok := raw.(map[string]any)
		if !ok {
			return b, fmt.Errorf("surroundingCells must be an object")
		}
		for _, dir := range sortedKeys(dirs) {
			fields, err := compileFields(dirs[dir])
			if err != nil {
				return b, fmt.Errorf("surroundingCells.%s: %w", dir, err)
			}
			b.Surrounding = append(b.Surrounding, NeighborMatch{Direction: dir, Fields: fields})
		}
	}
	return b, nil
}

func compileAction(obj map[string]any) (Action, error) {
	var a Action
	var err error

	if raw, ok := pick(obj, "setAgentState", "setAntState"); ok {
		if a.SetAgent, err = compileFields(raw); err != nil {
			return a, fmt.Errorf("setAgentState: %w", err)
		}
	}
	if raw, ok := obj["setCellState"]; ok {
		if a.SetCell, err = compileFields(raw); err != nil {
			return a, fmt.Errorf("setCellState: %w", err)
		}
	}
	if raw, ok := obj["turn"]; ok {
		s, _ := raw.(string)
		t, ok := model.ParseTurn(s)
		if !ok {
			return a, fmt.Errorf("invalid turn %v", raw)
		}
		a.Turn = t
	}
	if raw, ok := obj["move"]; ok {
		move, ok := raw.(bool)
		if !ok {
			return a, fmt.Errorf("move must be a boolean")
		}
		a.Move = move
	}
	if raw, ok := obj["spawn"]; ok {
		spawnObj, ok := raw.(map[string]any)
		if !ok {
			return a, fmt.Errorf("spawn must be an object")
		}
		s, _ := spawnObj["direction"].(string)
		dir, ok := model.ParseCompass(s)
		if !ok {
			return a, fmt.Errorf("invalid spawn direction %v", spawnObj["direction"])
		}
		d := &SpawnDirective{Direction: dir}
		if rawFields, ok := pick(spawnObj, "agentState", "antState"); ok {
			if d.Agent, err = compileFields(rawFields); err != nil {
				return a, fmt.Errorf("spawn.agentState: %w", err)
			}
		}
		a.Spawn = d
	}
	return a, nil
}

// compileFields compiles a field map in key order so diagnostics are stable.
func compileFields(raw any) ([]Field, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("field map must be an object, got %T", raw)
	}
	fields := make([]Field, 0, len(obj))
	for _, name := range sortedKeys(obj) {
		op, err := CompileOperand(obj[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		fields = append(fields, Field{Name: name, Value: op})
	}
	return fields, nil
}

// pick returns the first key present; later keys are accepted aliases.
func pick(obj map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok {
			return v, true
		}
	}
	return nil, false
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// expressions lists every compiled expression in the rule, for load-time
// diagnostics.
func (r *Rule) expressions() []*Expression {
	var out []*Expression
	collect := func(fields []Field) {
		for _, f := range fields {
			if f.Value.IsExpression() {
				out = append(out, f.Value.Expression())
			}
		}
	}
	collectBase := func(b *BaseCondition) {
		collect(b.Agent)
		collect(b.Cell)
		for _, n := range b.Surrounding {
			collect(n.Fields)
		}
	}
	if c := r.Condition; c != nil {
		collectBase(&c.Base)
		for i := range c.Group {
			collectBase(&c.Group[i])
		}
	}
	collect(r.Action.SetAgent)
	collect(r.Action.SetCell)
	if r.Action.Spawn != nil {
		collect(r.Action.Spawn.Agent)
	}
	return out
}
