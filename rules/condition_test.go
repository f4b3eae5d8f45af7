package rules

import (
	"testing"

	"github.com/nstehr/gridlife/model"
)

func TestToleranceMatch(t *testing.T) {
	ctx := NewContext(testAgent(0, 0, 100, 0, 0), model.NewGrid())
	op := mustOperand(t, map[string]any{"value": "ant.r", "tolerance": 10.0})

	tests := []struct {
		actual float64
		want   bool
	}{
		{105, true},
		{110, true}, // boundary is inclusive
		{90, true},
		{111, false},
		{89, false},
	}
	for _, tc := range tests {
		if got := op.Match(NumberValue(tc.actual), ctx); got != tc.want {
			t.Errorf("Match(%v) with ant.r=100±10 = %v, want %v", tc.actual, got, tc.want)
		}
	}
}

func TestToleranceIgnoredForText(t *testing.T) {
	a := testAgent(0, 0, 0, 0, 0)
	a.Direction = model.Left
	ctx := NewContext(a, model.NewGrid())

	op := mustOperand(t, map[string]any{"value": "ant.direction", "tolerance": 5.0})
	if !op.Match(TextValue("left"), ctx) {
		t.Error("text comparison with tolerance should fall back to equality")
	}
	if op.Match(TextValue("right"), ctx) {
		t.Error("text comparison should not match a different value")
	}
}

func TestFieldMatchKinds(t *testing.T) {
	g := model.NewGrid()
	g.Write(1, 0, model.FullPatch(model.Color{R: 10, G: 20, B: 30}))
	ctx := NewContext(testAgent(0, 0, 10, 0, 0), g)

	tests := []struct {
		name     string
		expected any
		actual   Value
		want     bool
	}{
		{"literal number", 240.0, NumberValue(240), true},
		{"literal number mismatch", 240.0, NumberValue(241), false},
		{"literal text", "up", TextValue("up"), true},
		{"text never equals number", "240", NumberValue(240), false},
		{"expression", "ant.r * 2", NumberValue(20), true},
		{"expression mismatch", "ant.r * 2", NumberValue(21), false},
		{"reference", "right.r", NumberValue(10), true},
		{"reference mismatch", "right.g", NumberValue(10), false},
		{"unknown scope is text", "foo.r", TextValue("foo.r"), true},
		{"unknown scope text is not a number", "foo.r", NumberValue(0), false},
		{"unknown field never matches", "cell.q", NumberValue(0), false},
		{"object without tolerance", map[string]any{"value": "right.b"}, NumberValue(30), true},
		{"object literal value", map[string]any{"value": 7.0}, NumberValue(7), true},
	}
	for _, tc := range tests {
		op := mustOperand(t, tc.expected)
		if got := op.Match(tc.actual, ctx); got != tc.want {
			t.Errorf("%s: Match = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestUnresolvedActualNeverMatches(t *testing.T) {
	ctx := NewContext(testAgent(0, 0, 0, 0, 0), model.NewGrid())
	op := mustOperand(t, "cell.q")
	if op.Match(Value{}, ctx) {
		t.Error("two unresolved values must not match")
	}
}

func TestEvaluateConditions(t *testing.T) {
	g := model.NewGrid()
	g.Write(0, -1, model.FullPatch(model.Color{R: 255}))
	ctx := NewContext(testAgent(0, 0, 255, 0, 0), g)

	tests := []struct {
		name string
		json string
		want bool
	}{
		{"no condition", `[{"action":{}}]`, true},
		{"empty base", `[{"condition":{},"action":{}}]`, true},
		{"cell match", `[{"condition":{"cellState":{"r":240,"g":240,"b":240}},"action":{}}]`, true},
		{"cell mismatch", `[{"condition":{"cellState":{"r":240,"g":0}},"action":{}}]`, false},
		{"agent and cell", `[{"condition":{"agentState":{"r":255,"direction":"up"},"cellState":{"b":240}},"action":{}}]`, true},
		{"agent alias", `[{"condition":{"antState":{"r":"up.r"}},"action":{}}]`, true},
		{"neighbor", `[{"condition":{"surroundingCells":{"up":{"r":255,"g":0}}},"action":{}}]`, true},
		{"neighbor mismatch", `[{"condition":{"surroundingCells":{"up":{"r":255},"down":{"r":255}}},"action":{}}]`, false},
		{"absent neighbor direction", `[{"condition":{"surroundingCells":{"north":{}}},"action":{}}]`, false},
		{"or any", `[{"condition":{"or":[{"cellState":{"r":0}},{"surroundingCells":{"up":{"r":255}}}]},"action":{}}]`, true},
		{"or none", `[{"condition":{"or":[{"cellState":{"r":0}},{"cellState":{"g":0}}]},"action":{}}]`, false},
		{"and all", `[{"condition":{"and":[{"cellState":{"r":240}},{"agentState":{"r":255}}]},"action":{}}]`, true},
		{"and one fails", `[{"condition":{"and":[{"cellState":{"r":240}},{"agentState":{"r":0}}]},"action":{}}]`, false},
		{"empty or", `[{"condition":{"or":[]},"action":{}}]`, false},
		{"empty and", `[{"condition":{"and":[]},"action":{}}]`, true},
	}
	for _, tc := range tests {
		rs := mustParse(t, tc.json)
		if got := Evaluate(rs.Rules[0].Condition, ctx); got != tc.want {
			t.Errorf("%s: Evaluate = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestResolveScopes(t *testing.T) {
	g := model.NewGrid()
	g.Write(-1, 1, model.FullPatch(model.Color{R: 1, G: 2, B: 3}))
	a := testAgent(0, 0, 9, 8, 7)
	a.SetAttr("mood", "calm")
	rec := &recorder{}
	ctx := newContext(a, g, rec)

	tests := []struct {
		path string
		want Value
	}{
		{"ant.r", NumberValue(9)},
		{"ant.direction", TextValue("up")},
		{"ant.id", TextValue("a1")},
		{"ant.mood", TextValue("calm")},
		{"cell.g", NumberValue(240)},
		{"down-left.b", NumberValue(3)},
	}
	for _, tc := range tests {
		ref, ok := ParseReference(tc.path)
		if !ok {
			t.Fatalf("ParseReference(%q) failed", tc.path)
		}
		if got := ctx.Resolve(ref); !got.Equal(tc.want) {
			t.Errorf("Resolve(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}

	for _, path := range []string{"ant.r.x", "cell.direction", "up.mood"} {
		ref, ok := ParseReference(path)
		if !ok {
			t.Fatalf("ParseReference(%q) failed", path)
		}
		if got := ctx.Resolve(ref); got.Resolved() {
			t.Errorf("Resolve(%q) = %v, want unresolved", path, got)
		}
	}
	if got := ctx.Resolve(Reference{Path: "nowhere.r", Scope: "nowhere", Field: "r"}); got.Resolved() {
		t.Errorf("Resolve(nowhere.r) = %v, want unresolved", got)
	}
	if !rec.has("unknown variable source") {
		t.Errorf("expected unknown source notice, got %v", rec.notices)
	}
}

func TestParseReferenceScopes(t *testing.T) {
	tests := []struct {
		s    string
		want bool
	}{
		{"ant.r", true},
		{"cell.b", true},
		{"up-right.g", true},
		{"ant.r.x", true},
		{"v1.2", false},
		{"example.com", false},
		{"nowhere.r", false},
		{"north.r", false},
		{"ant", false},
	}
	for _, tc := range tests {
		if _, got := ParseReference(tc.s); got != tc.want {
			t.Errorf("ParseReference(%q) = %v, want %v", tc.s, got, tc.want)
		}
	}
}

func TestDottedTextMatchesLiterally(t *testing.T) {
	a := testAgent(0, 0, 0, 0, 0)
	a.SetAttr("version", "v1.2")
	rs := mustParse(t, `[{"condition":{"agentState":{"version":"v1.2"}},"action":{"move":true}}]`)

	if got := NewInterpreter(nil).Run(a, rs, model.NewGrid(), nil); got != 0 {
		t.Errorf("Run fired %d, want 0", got)
	}
}
