package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nstehr/gridlife/model"
	"github.com/nstehr/gridlife/rules"
	"github.com/nstehr/gridlife/sim"
	"github.com/nstehr/gridlife/store"
)

// ruleSource is the set of flags that pick a rule list.
type ruleSource struct {
	preset   string
	file     string
	rulebook string
}

func (f *ruleSource) empty() bool {
	return f.preset == "" && f.file == "" && f.rulebook == ""
}

// text resolves the flags to rule-list text. Exactly one flag may be set.
func (f *ruleSource) text() (string, error) {
	set := 0
	for _, v := range []string{f.preset, f.file, f.rulebook} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return "", fmt.Errorf("use only one of --preset, --rules, --rulebook")
	}

	switch {
	case f.preset != "":
		text, ok := rules.Preset(f.preset)
		if !ok {
			return "", fmt.Errorf("unknown preset %q (see 'gridlife presets')", f.preset)
		}
		return text, nil
	case f.file != "":
		data, err := os.ReadFile(f.file)
		if err != nil {
			return "", fmt.Errorf("read rules: %w", err)
		}
		return string(data), nil
	case f.rulebook != "":
		rb, err := store.Open(cfg.DBPath)
		if err != nil {
			return "", err
		}
		defer rb.Close()
		e, err := rb.Load(f.rulebook)
		if err != nil {
			return "", err
		}
		return e.Rules, nil
	}
	return "", nil
}

// parsePoint reads "x,y".
func parsePoint(s string) (model.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return model.Point{}, fmt.Errorf("position %q: want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return model.Point{}, fmt.Errorf("position %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return model.Point{}, fmt.Errorf("position %q: %w", s, err)
	}
	return model.Point{X: x, Y: y}, nil
}

// populate places the starting agents. Explicit --at positions win; then a
// rule flag alone places one agent at the origin; otherwise the agents in
// the config file are used.
func populate(s *sim.Simulation, src *ruleSource, at []string) (int, error) {
	text, err := src.text()
	if err != nil {
		return 0, err
	}

	var agents []model.Agent
	switch {
	case len(at) > 0 || !src.empty() || len(cfg.Agents) == 0:
		if len(at) == 0 {
			at = []string{"0,0"}
		}
		for _, pos := range at {
			p, err := parsePoint(pos)
			if err != nil {
				return 0, err
			}
			a := model.NewAgent(p.X, p.Y)
			a.Rules = text
			agents = append(agents, *a)
		}
	default:
		for _, spec := range cfg.Agents {
			a, err := spec.Agent(configDir())
			if err != nil {
				return 0, err
			}
			agents = append(agents, a)
		}
	}

	for _, a := range agents {
		if _, err := s.AddAgent(a); err != nil {
			return 0, err
		}
	}
	return len(agents), nil
}

// configDir is where relative rules_file entries resolve.
func configDir() string {
	if flagConfig != "" {
		return filepath.Dir(flagConfig)
	}
	return "."
}

func newSimulation() *sim.Simulation {
	return sim.New(sim.Options{
		MaxAgents:     cfg.MaxAgents,
		DefaultPreset: cfg.DefaultPreset,
	})
}
