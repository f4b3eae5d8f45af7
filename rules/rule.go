package rules

import (
	"github.com/nstehr/gridlife/model"
)

// Rule is the atomic unit of agent behavior: an optional condition and the
// action to run when it holds.
type Rule struct {
	Index     int        // position in the source array
	Condition *Condition // nil always matches
	Action    Action
}

// ConditionKind tags the three condition shapes.
type ConditionKind uint8

const (
	BaseKind ConditionKind = iota
	AnyOf                  // {"or": [...]}
	AllOf                  // {"and": [...]}
)

// Condition is either a single base condition or an and/or group of them.
type Condition struct {
	Kind  ConditionKind
	Base  BaseCondition   // BaseKind
	Group []BaseCondition // AnyOf, AllOf
}

// Field pairs a field name with the operand expected for it (in a
// condition) or assigned to it (in an action).
type Field struct {
	Name  string
	Value Operand
}

// NeighborMatch holds the expected fields for one surrounding cell.
// Direction is kept as written; names outside the 8 compass points fail
// the condition when evaluated.
type NeighborMatch struct {
	Direction string
	Fields    []Field
}

// BaseCondition is the AND of every present subsection.
type BaseCondition struct {
	Agent       []Field
	Cell        []Field
	Surrounding []NeighborMatch
}

// Action is applied in a fixed order: agent state, turn, cell state, move, spawn.
type Action struct {
	SetAgent []Field
	SetCell  []Field
	Turn     model.Turn // empty for no turn
	Move     bool
	Spawn    *SpawnDirective
}

// SpawnDirective asks for a new agent one cell away from the actor.
type SpawnDirective struct {
	Direction model.Compass
	Agent     []Field
}

// RuleSet is a parsed rule list. Rules keep author order.
type RuleSet struct {
	Source string
	Rules  []Rule
}

// Len is the number of usable rules.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rules)
}
