package rules

import (
	"testing"

	"github.com/nstehr/gridlife/model"
)

func TestParseUnreadableText(t *testing.T) {
	tests := []struct {
		name string
		text string
		msg  string
	}{
		{"broken json", "{not valid", "invalid rule list JSON"},
		{"empty", "", "invalid rule list JSON"},
		{"object", `{"action":{}}`, "rule list must be an array"},
		{"number", `42`, "rule list must be an array"},
	}
	for _, tc := range tests {
		rec := &recorder{}
		rs, report := ParseWithReport(tc.text, rec)
		if rs.Len() != 0 {
			t.Errorf("%s: got %d rules, want 0", tc.name, rs.Len())
		}
		if report.Invalid == nil {
			t.Errorf("%s: expected report.Invalid", tc.name)
		}
		if !rec.has(tc.msg) {
			t.Errorf("%s: notices %v, want %q", tc.name, rec.notices, tc.msg)
		}
	}
}

func TestParseEmptyArray(t *testing.T) {
	rs, report := ParseWithReport(`[]`, nil)
	if rs.Len() != 0 || report.Invalid != nil || len(report.Dropped) != 0 {
		t.Errorf("Parse([]) = %d rules, report %+v", rs.Len(), report)
	}
}

func TestParseDropsInvalidElements(t *testing.T) {
	text := `[
		{"action":{"move":true}},
		{"condition":{}},
		"not a rule",
		{"action":{"turn":"sideways"}},
		{"action":{"spawn":{}}},
		{"action":{"spawn":{"direction":"north"}}},
		{"condition":{"cellState":{"r":{"value":1,"tolerance":-2}}},"action":{}},
		{"condition":{"cellState":{"r":[1]}},"action":{}},
		{"action":{"move":"yes"}},
		{"condition":{"or":{}},"action":{}},
		{"action":{"turn":"left"}}
	]`
	rec := &recorder{}
	rs, report := ParseWithReport(text, rec)

	if rs.Len() != 2 {
		t.Fatalf("kept %d rules, want 2", rs.Len())
	}
	if rs.Rules[0].Index != 0 || rs.Rules[1].Index != 10 {
		t.Errorf("indexes = %d,%d, want 0,10", rs.Rules[0].Index, rs.Rules[1].Index)
	}
	if !rs.Rules[0].Action.Move || rs.Rules[1].Action.Turn != model.TurnLeft {
		t.Error("kept rules are out of order")
	}
	if len(report.Dropped) != 9 || report.Kept != 2 {
		t.Errorf("report kept=%d dropped=%d, want 2 and 9", report.Kept, len(report.Dropped))
	}
	for i, d := range report.Dropped {
		if d.Index != i+1 {
			t.Errorf("dropped[%d].Index = %d, want %d", i, d.Index, i+1)
		}
		if d.Reason == "" {
			t.Errorf("dropped[%d] has no reason", i)
		}
	}
	if got := len(rec.notices); got != 9 {
		t.Errorf("notices = %d, want one per dropped rule", got)
	}
}

func TestParseKeepsSource(t *testing.T) {
	text := `[{"action":{"move":true}}]`
	if rs := Parse(text, nil); rs.Source != text {
		t.Errorf("Source = %q, want %q", rs.Source, text)
	}
}

func TestParseAliases(t *testing.T) {
	rs := mustParse(t, `[{"condition":{"antState":{"r":1}},"action":{"setAntState":{"g":2},"spawn":{"direction":"up","antState":{"b":3}}}}]`)
	r := rs.Rules[0]
	if len(r.Condition.Base.Agent) != 1 || r.Condition.Base.Agent[0].Name != "r" {
		t.Errorf("antState not read as agentState: %+v", r.Condition.Base)
	}
	if len(r.Action.SetAgent) != 1 || r.Action.SetAgent[0].Name != "g" {
		t.Errorf("setAntState not read as setAgentState: %+v", r.Action)
	}
	if len(r.Action.Spawn.Agent) != 1 || r.Action.Spawn.Agent[0].Name != "b" {
		t.Errorf("spawn antState not read: %+v", r.Action.Spawn)
	}
}

func TestParseOrBeforeAnd(t *testing.T) {
	rs := mustParse(t, `[{"condition":{"and":[{"cellState":{"r":0}}],"or":[{"cellState":{"r":240}}]},"action":{}}]`)
	c := rs.Rules[0].Condition
	if c.Kind != AnyOf || len(c.Group) != 1 {
		t.Errorf("condition kind = %v, want AnyOf", c.Kind)
	}
}

func TestParseReportsBadExpressions(t *testing.T) {
	rec := &recorder{}
	rs := Parse(`[{"action":{"setCellState":{"r":"2 ** 3"}}}]`, rec)
	if rs.Len() != 1 {
		t.Fatalf("rule with a bad expression should be kept, got %d rules", rs.Len())
	}
	if !rec.has("expression will evaluate to 0") {
		t.Errorf("expected load-time notice, got %v", rec.notices)
	}
}

func TestPresetsParseCleanly(t *testing.T) {
	names := Presets()
	if len(names) < 12 {
		t.Fatalf("found %d presets, want at least 12", len(names))
	}
	for _, name := range names {
		text, ok := Preset(name)
		if !ok {
			t.Errorf("Preset(%q) missing", name)
			continue
		}
		rec := &recorder{}
		rs, report := ParseWithReport(text, rec)
		if report.Invalid != nil || len(report.Dropped) > 0 {
			t.Errorf("preset %s: invalid=%v dropped=%v", name, report.Invalid, report.Dropped)
		}
		if rs.Len() == 0 {
			t.Errorf("preset %s has no rules", name)
		}
		if len(rec.notices) > 0 {
			t.Errorf("preset %s: notices %v", name, rec.notices)
		}
		if PresetTitle(name) == name {
			t.Errorf("preset %s has no title", name)
		}
	}
	if _, ok := Preset(DefaultPreset); !ok {
		t.Error("default preset is missing")
	}
	if _, ok := Preset("nope"); ok {
		t.Error("Preset(nope) should not exist")
	}
}

func TestParseNullConditionAlwaysMatches(t *testing.T) {
	rs, report := ParseWithReport(`[{"condition":null,"action":{"move":true}}]`, nil)
	if rs.Len() != 1 || len(report.Dropped) != 0 {
		t.Fatalf("kept %d, dropped %v; want the rule kept", rs.Len(), report.Dropped)
	}
	if rs.Rules[0].Condition != nil {
		t.Errorf("condition = %+v, want nil", rs.Rules[0].Condition)
	}

	a := testAgent(0, 0, 0, 0, 0)
	if got := NewInterpreter(nil).Run(a, rs, model.NewGrid(), nil); got != 0 || a.Y != -1 {
		t.Errorf("Run = %d, agent y = %d; want rule 0 fired and a move up", got, a.Y)
	}
}
