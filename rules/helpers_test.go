package rules

import (
	"slices"
	"testing"

	"github.com/nstehr/gridlife/model"
)

// recorder is a Notifier that keeps every message for assertions.
type recorder struct {
	notices []string
}

func (r *recorder) Notice(msg string, args ...any) {
	r.notices = append(r.notices, msg)
}

func (r *recorder) has(msg string) bool {
	return slices.Contains(r.notices, msg)
}

func mustOperand(t *testing.T, raw any) Operand {
	t.Helper()
	op, err := CompileOperand(raw)
	if err != nil {
		t.Fatalf("CompileOperand(%v): %v", raw, err)
	}
	return op
}

func mustParse(t *testing.T, text string) *RuleSet {
	t.Helper()
	rs, report := ParseWithReport(text, Discard)
	if report.Invalid != nil || len(report.Dropped) > 0 {
		t.Fatalf("parse: invalid=%v dropped=%v", report.Invalid, report.Dropped)
	}
	return rs
}

// testAgent returns an up-facing agent at (x, y) with color (r, g, b).
func testAgent(x, y, r, g, b int) *model.Agent {
	return &model.Agent{ID: "a1", X: x, Y: y, Direction: model.Up, Color: model.Color{R: r, G: g, B: b}}
}

type spawnCall struct {
	x, y int
	seed model.Agent
}

type spawnLog struct {
	calls []spawnCall
}

func (s *spawnLog) Spawn(x, y int, seed model.Agent) {
	s.calls = append(s.calls, spawnCall{x: x, y: y, seed: seed})
}
