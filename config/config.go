// Package config loads gridlife settings from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nstehr/gridlife/model"
	"github.com/nstehr/gridlife/rules"
	"github.com/nstehr/gridlife/sim"
)

// Config is the whole settings file.
type Config struct {
	TickIntervalMs int         `yaml:"tick_interval_ms"`
	MaxAgents      int         `yaml:"max_agents"`
	DefaultPreset  string      `yaml:"default_preset"`
	DBPath         string      `yaml:"db_path"`
	LogLevel       string      `yaml:"log_level"`
	LogFormat      string      `yaml:"log_format"`
	ObserverAddr   string      `yaml:"observer_addr"`
	Agents         []AgentSpec `yaml:"agents"`
}

// AgentSpec places one agent at startup. RulesFile wins over Preset; with
// neither the simulation's default preset applies.
type AgentSpec struct {
	X         int          `yaml:"x"`
	Y         int          `yaml:"y"`
	Direction string       `yaml:"direction"`
	Color     *model.Color `yaml:"color"`
	Preset    string       `yaml:"preset"`
	RulesFile string       `yaml:"rules_file"`
}

var (
	logLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	logFormats = map[string]bool{"text": true, "json": true, "pretty": true}
)

// TickInterval is the configured interval as a duration.
func (c Config) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// Validate clamps numeric fields into range and fills blanks with defaults.
// Unknown enum values and bad agent specs are reported as one joined error.
func (c *Config) Validate() error {
	c.TickIntervalMs = int(sim.ClampInterval(c.TickInterval()) / time.Millisecond)
	if c.MaxAgents <= 0 {
		c.MaxAgents = sim.DefaultMaxAgents
	}
	if c.DefaultPreset == "" {
		c.DefaultPreset = rules.DefaultPreset
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}

	var errs []error
	if _, ok := rules.Preset(c.DefaultPreset); !ok {
		errs = append(errs, fmt.Errorf("default_preset: unknown preset %q", c.DefaultPreset))
	}
	if !logLevels[c.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level: unknown level %q", c.LogLevel))
	}
	if !logFormats[c.LogFormat] {
		errs = append(errs, fmt.Errorf("log_format: unknown format %q", c.LogFormat))
	}
	for i := range c.Agents {
		a := &c.Agents[i]
		if a.Direction == "" {
			a.Direction = string(model.Up)
		}
		if _, ok := model.ParseDirection(a.Direction); !ok {
			errs = append(errs, fmt.Errorf("agents[%d]: invalid direction %q", i, a.Direction))
		}
		if a.Preset != "" {
			if _, ok := rules.Preset(a.Preset); !ok {
				errs = append(errs, fmt.Errorf("agents[%d]: unknown preset %q", i, a.Preset))
			}
		}
		if a.Color != nil {
			clamped := a.Color.Clamp()
			a.Color = &clamped
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Agent builds the agent described by s. Relative rule files resolve
// against baseDir.
func (s AgentSpec) Agent(baseDir string) (model.Agent, error) {
	a := model.NewAgent(s.X, s.Y)
	if d, ok := model.ParseDirection(s.Direction); ok {
		a.Direction = d
	}
	if s.Color != nil {
		a.Color = s.Color.Clamp()
	}

	switch {
	case s.RulesFile != "":
		path := s.RulesFile
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return model.Agent{}, fmt.Errorf("config: read rules %s: %w", path, err)
		}
		a.Rules = string(data)
	case s.Preset != "":
		text, ok := rules.Preset(s.Preset)
		if !ok {
			return model.Agent{}, fmt.Errorf("config: unknown preset %q", s.Preset)
		}
		a.Rules = text
	}
	return *a, nil
}
