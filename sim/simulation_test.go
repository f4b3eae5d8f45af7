package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/nstehr/gridlife/model"
	"github.com/nstehr/gridlife/rules"
)

func quietSim(maxAgents int) *Simulation {
	return New(Options{
		MaxAgents: maxAgents,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func TestAddAgent_Defaults(t *testing.T) {
	s := quietSim(0)
	id, err := s.AddAgent(model.Agent{X: 2, Y: 3, Color: model.Color{R: 300}})
	if err != nil {
		t.Fatalf("AddAgent: %v", err)
	}
	agents := s.Agents()
	if len(agents) != 1 || agents[0].ID != id {
		t.Fatalf("agents = %+v", agents)
	}
	a := agents[0]
	if a.ID == "" || a.Direction != model.Up || a.R != 255 {
		t.Errorf("agent = %+v, want fresh id, facing up, clamped color", a)
	}
	want, _ := rules.Preset(rules.DefaultPreset)
	if a.Rules != want {
		t.Error("agent without rules did not get the default preset")
	}
}

func TestAddAgent_Limit(t *testing.T) {
	s := quietSim(1)
	if _, err := s.AddAgent(model.Agent{}); err != nil {
		t.Fatalf("first AddAgent: %v", err)
	}
	if _, err := s.AddAgent(model.Agent{}); !errors.Is(err, ErrAgentLimit) {
		t.Errorf("second AddAgent error = %v, want ErrAgentLimit", err)
	}
}

func TestStep_Langton(t *testing.T) {
	s := quietSim(0)
	text, _ := rules.Preset("langton")
	s.AddAgent(model.Agent{Direction: model.Up, Color: model.Color{R: 255}, Rules: text})

	r := s.Step()
	if r.Tick != 1 || r.Fired != 1 || r.Idle != 0 || r.Painted != 1 {
		t.Errorf("tick 1 report = %+v", r)
	}
	if got := s.Cell(0, 0); got != (model.Color{R: 255}) {
		t.Errorf("cell (0,0) = %v, want red", got)
	}
	a := s.Agents()[0]
	if a.X != 1 || a.Y != 0 || a.Direction != model.Right {
		t.Errorf("after tick 1 agent at (%d,%d) facing %s, want (1,0) right", a.X, a.Y, a.Direction)
	}

	s.Step()
	a = s.Agents()[0]
	if a.X != 1 || a.Y != 1 || a.Direction != model.Down {
		t.Errorf("after tick 2 agent at (%d,%d) facing %s, want (1,1) down", a.X, a.Y, a.Direction)
	}
	if s.Cell(1, 0) != (model.Color{R: 255}) {
		t.Error("tick 2 did not paint (1,0)")
	}
}

func TestStep_SpawnDeferred(t *testing.T) {
	s := quietSim(0)
	// paints its cell blue and spawns right; a spawned agent evaluated in the
	// same tick would paint (1,0) too
	text := `[{"condition":{"cellState":{"r":240}},"action":{"setCellState":{"r":0,"g":0,"b":255},"spawn":{"direction":"right"}}}]`
	s.AddAgent(model.Agent{Rules: text})

	r := s.Step()
	if len(r.Spawned) != 1 || r.Agents != 2 {
		t.Fatalf("report = %+v, want one spawn and two agents", r)
	}
	if got := s.Cell(1, 0); got != model.DefaultCellColor {
		t.Errorf("cell (1,0) = %v: spawned agent ran in its birth tick", got)
	}
	child := s.Agents()[1]
	if child.X != 1 || child.Y != 0 || child.ID == "" || child.Rules != text {
		t.Errorf("child = %+v", child)
	}

	s.Step()
	if got := s.Cell(1, 0); got != (model.Color{B: 255}) {
		t.Errorf("cell (1,0) = %v after tick 2, want blue", got)
	}
}

func TestStep_SpawnLimit(t *testing.T) {
	s := quietSim(2)
	text := `[{"action":{"spawn":{"direction":"down"}}}]`
	s.AddAgent(model.Agent{Rules: text})

	r := s.Step()
	if r.Agents != 2 || len(r.Spawned) != 1 {
		t.Fatalf("tick 1 = %+v", r)
	}
	r = s.Step()
	if r.Agents != 2 || r.SpawnsDropped != 2 {
		t.Errorf("tick 2 = %+v, want 2 agents and 2 dropped spawns", r)
	}
	if s.DroppedSpawns() != 2 {
		t.Errorf("DroppedSpawns = %d, want 2", s.DroppedSpawns())
	}
	if !hasEvent(r.Events, EventAgentLimit) {
		t.Errorf("events = %+v, want agent_limit", r.Events)
	}
}

func TestStep_MalformedRulesIdle(t *testing.T) {
	s := quietSim(0)
	s.AddAgent(model.Agent{X: 4, Y: 4, Rules: "{not valid"})

	r := s.Step()
	if r.Fired != 0 || r.Idle != 1 || r.Painted != 0 {
		t.Errorf("report = %+v, want one idle agent and no paint", r)
	}
	if a := s.Agents()[0]; a.X != 4 || a.Y != 4 {
		t.Errorf("agent moved to (%d,%d)", a.X, a.Y)
	}
	if !hasEvent(r.Events, EventAllIdle) {
		t.Errorf("events = %+v, want all_idle", r.Events)
	}
}

func TestSetRules(t *testing.T) {
	s := quietSim(0)
	id, _ := s.AddAgent(model.Agent{})

	report, err := s.SetRules(id, `[{"action":{"move":true}},{"condition":{}}]`)
	if err != nil {
		t.Fatalf("SetRules: %v", err)
	}
	if report.Kept != 1 || len(report.Dropped) != 1 {
		t.Errorf("report = %+v, want 1 kept and 1 dropped", report)
	}

	s.Step()
	if a := s.Agents()[0]; a.Y != -1 {
		t.Errorf("agent y = %d, want -1 after moving up", a.Y)
	}

	if _, err := s.SetRules("missing", "[]"); !errors.Is(err, ErrUnknownAgent) {
		t.Errorf("SetRules(missing) error = %v, want ErrUnknownAgent", err)
	}
}

func TestRuleCacheDropsUnusedText(t *testing.T) {
	s := quietSim(0)
	id, _ := s.AddAgent(model.Agent{})
	other, _ := s.AddAgent(model.Agent{X: 3, Rules: `[{"action":{"turn":"left"}}]`})
	s.Step()
	if len(s.cache) != 2 {
		t.Fatalf("cache = %d entries, want 2", len(s.cache))
	}

	for i := range 5 {
		text := fmt.Sprintf(`[{"action":{"setAgentState":{"gen":%d}}}]`, i)
		if _, err := s.SetRules(id, text); err != nil {
			t.Fatalf("SetRules: %v", err)
		}
	}
	if len(s.cache) != 2 {
		t.Errorf("cache = %d entries after repeated SetRules, want 2", len(s.cache))
	}

	s.RemoveAgent(other)
	if len(s.cache) != 1 {
		t.Errorf("cache = %d entries after RemoveAgent, want 1", len(s.cache))
	}

	s.Clear()
	if len(s.cache) != 0 {
		t.Errorf("cache = %d entries after Clear, want 0", len(s.cache))
	}
}

func TestRemoveAndClear(t *testing.T) {
	s := quietSim(0)
	id, _ := s.AddAgent(model.Agent{})
	s.AddAgent(model.Agent{X: 5})
	s.Step()

	if !s.RemoveAgent(id) || s.RemoveAgent(id) {
		t.Error("RemoveAgent should succeed once")
	}
	if n := len(s.Agents()); n != 1 {
		t.Errorf("agents = %d, want 1", n)
	}

	s.Clear()
	ws := s.Snapshot()
	if len(ws.Agents) != 0 || len(ws.Cells) != 0 || ws.Tick != 1 {
		t.Errorf("snapshot after Clear = %+v", ws)
	}
}

func TestSnapshotOrder(t *testing.T) {
	s := quietSim(0)
	text := `[{"action":{"setCellState":{"r":1},"move":true,"turn":"right"}}]`
	s.AddAgent(model.Agent{Rules: text})
	for range 4 {
		s.Step()
	}

	ws := s.Snapshot()
	if ws.Tick != 4 || len(ws.Cells) != 4 {
		t.Fatalf("snapshot tick=%d cells=%d, want 4 and 4", ws.Tick, len(ws.Cells))
	}
	for i := 1; i < len(ws.Cells); i++ {
		a, b := ws.Cells[i-1].Point, ws.Cells[i].Point
		if a.Y > b.Y || (a.Y == b.Y && a.X >= b.X) {
			t.Errorf("cells out of order: %v before %v", a, b)
		}
	}
	if _, ok := ws.Agent(s.Agents()[0].ID); !ok {
		t.Error("snapshot is missing the agent")
	}
}

func TestSubscribe(t *testing.T) {
	s := quietSim(0)
	s.AddAgent(model.Agent{})

	var got []int
	s.Subscribe(func(r TickReport) { got = append(got, r.Tick) })
	s.Step()
	s.Step()

	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("observer saw ticks %v, want [1 2]", got)
	}
}

func TestRun_MaxTicks(t *testing.T) {
	s := quietSim(0)
	s.AddAgent(model.Agent{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Run(ctx, MinInterval, 3); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if s.Tick() != 3 {
		t.Errorf("Tick = %d, want 3", s.Tick())
	}
}

func TestRun_Cancel(t *testing.T) {
	s := quietSim(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx, time.Second, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Run error = %v, want context.Canceled", err)
	}
}

func TestClampInterval(t *testing.T) {
	tests := []struct {
		in, want time.Duration
	}{
		{0, DefaultInterval},
		{-5, DefaultInterval},
		{10 * time.Millisecond, MinInterval},
		{50 * time.Millisecond, 50 * time.Millisecond},
		{300 * time.Millisecond, 300 * time.Millisecond},
		{5 * time.Second, MaxInterval},
	}
	for _, tc := range tests {
		if got := ClampInterval(tc.in); got != tc.want {
			t.Errorf("ClampInterval(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func hasEvent(events []Event, kind EventKind) bool {
	for _, e := range events {
		if e.Kind == kind {
			return true
		}
	}
	return false
}
