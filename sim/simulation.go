package sim

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/nstehr/gridlife/model"
	"github.com/nstehr/gridlife/rules"
)

var (
	ErrAgentLimit   = errors.New("agent limit reached")
	ErrUnknownAgent = errors.New("unknown agent")
)

// DefaultMaxAgents caps the population when Options.MaxAgents is unset.
const DefaultMaxAgents = 500

type Options struct {
	MaxAgents     int
	DefaultPreset string
	Logger        *slog.Logger
}

// Simulation owns the grid and the agent population and advances them one
// tick at a time. All methods are safe for concurrent use.
type Simulation struct {
	mu sync.Mutex

	grid    *model.Grid
	agents  []*model.Agent
	pending []model.Agent
	tick    int

	// Compiled rule sets keyed by source text, so agents sharing a preset
	// share one compilation.
	cache map[string]compiled

	interp        *rules.Interpreter
	log           *slog.Logger
	maxAgents     int
	defaultRules  string
	droppedSpawns int

	observers []func(TickReport)
}

func New(opts Options) *Simulation {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxAgents <= 0 {
		opts.MaxAgents = DefaultMaxAgents
	}
	defaultRules, ok := rules.Preset(opts.DefaultPreset)
	if !ok {
		defaultRules, _ = rules.Preset(rules.DefaultPreset)
	}
	return &Simulation{
		grid:         model.NewGrid(),
		cache:        make(map[string]compiled),
		interp:       rules.NewInterpreter(rules.SlogNotifier{Logger: logger}),
		log:          logger,
		maxAgents:    opts.MaxAgents,
		defaultRules: defaultRules,
	}
}

// AddAgent places a copy of a. An empty ID gets a fresh one and empty rules
// get the default preset. It returns the agent's ID.
func (s *Simulation) AddAgent(a model.Agent) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.agents) >= s.maxAgents {
		return "", fmt.Errorf("add agent at (%d,%d): %w", a.X, a.Y, ErrAgentLimit)
	}
	added := s.insertLocked(a)
	s.log.Info("agent added", "agent", added.ID, "x", added.X, "y", added.Y)
	return added.ID, nil
}

func (s *Simulation) insertLocked(a model.Agent) *model.Agent {
	p := a.Clone()
	if p.ID == "" {
		p.ID = model.NewAgentID()
	}
	if p.Rules == "" {
		p.Rules = s.defaultRules
	}
	if _, ok := model.ParseDirection(string(p.Direction)); !ok {
		p.Direction = model.Up
	}
	p.Color = p.Color.Clamp()
	s.agents = append(s.agents, p)
	return p
}

// SetRules replaces an agent's rule list. The text is compiled on the next
// tick that needs it; a report of dropped rules is returned now.
func (s *Simulation) SetRules(id, text string) (rules.ParseReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.findLocked(id)
	if a == nil {
		return rules.ParseReport{}, fmt.Errorf("set rules for %s: %w", id, ErrUnknownAgent)
	}
	_, report := s.ruleSetLocked(text)
	a.Rules = text
	s.pruneCacheLocked()
	s.log.Info("agent rules replaced", "agent", id, "kept", report.Kept, "dropped", len(report.Dropped))
	return report, nil
}

func (s *Simulation) RemoveAgent(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, a := range s.agents {
		if a.ID == id {
			s.agents = append(s.agents[:i], s.agents[i+1:]...)
			s.pruneCacheLocked()
			s.log.Info("agent removed", "agent", id)
			return true
		}
	}
	return false
}

func (s *Simulation) findLocked(id string) *model.Agent {
	for _, a := range s.agents {
		if a.ID == id {
			return a
		}
	}
	return nil
}

type compiled struct {
	rs     *rules.RuleSet
	report rules.ParseReport
}

// ruleSetLocked returns the compiled set for text, compiling it on first use.
// Parse notices are emitted once per distinct text.
func (s *Simulation) ruleSetLocked(text string) (*rules.RuleSet, rules.ParseReport) {
	if c, ok := s.cache[text]; ok {
		return c.rs, c.report
	}
	rs, report := rules.ParseWithReport(text, s.interp.Notifier())
	s.cache[text] = compiled{rs: rs, report: report}
	return rs, report
}

// pruneCacheLocked drops compiled sets that no agent uses any more.
func (s *Simulation) pruneCacheLocked() {
	inUse := make(map[string]bool, len(s.agents))
	for _, a := range s.agents {
		inUse[a.Rules] = true
	}
	for text := range s.cache {
		if !inUse[text] {
			delete(s.cache, text)
		}
	}
}

// Step runs one tick: every agent present at the start of the tick runs its
// rules once, in insertion order. Agents spawned during the tick join the
// population afterwards.
func (s *Simulation) Step() TickReport {
	s.mu.Lock()
	start := time.Now()

	s.tick++
	report := TickReport{Tick: s.tick}
	spawner := rules.SpawnFunc(func(x, y int, seed model.Agent) {
		seed.X, seed.Y = x, y
		s.pending = append(s.pending, seed)
	})

	for _, a := range s.agents {
		rs, _ := s.ruleSetLocked(a.Rules)
		fired := s.interp.Run(a, rs, s.grid, spawner)
		if fired < 0 {
			report.Idle++
			continue
		}
		report.Fired++
	}

	for _, seed := range s.pending {
		if len(s.agents) >= s.maxAgents {
			s.droppedSpawns++
			report.SpawnsDropped++
			continue
		}
		child := s.insertLocked(seed)
		report.Spawned = append(report.Spawned, child.ID)
	}
	s.pending = s.pending[:0]
	if report.SpawnsDropped > 0 {
		s.interp.Notifier().Notice("spawns dropped: agent limit reached", "tick", s.tick, "dropped", report.SpawnsDropped, "limit", s.maxAgents)
	}

	report.Agents = len(s.agents)
	report.Painted = s.grid.Painted()
	report.Duration = time.Since(start)
	report.Events = detectEvents(report, s.maxAgents)
	observers := append([]func(TickReport){}, s.observers...)
	s.mu.Unlock()

	for _, fn := range observers {
		fn(report)
	}
	return report
}

// Subscribe registers fn to receive every tick report. It is called outside
// the simulation lock.
func (s *Simulation) Subscribe(fn func(TickReport)) {
	s.mu.Lock()
	s.observers = append(s.observers, fn)
	s.mu.Unlock()
}

// Tick is the number of completed ticks.
func (s *Simulation) Tick() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// Agents returns copies of the current agents in insertion order.
func (s *Simulation) Agents() []model.Agent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Agent, len(s.agents))
	for i, a := range s.agents {
		out[i] = *a.Clone()
	}
	return out
}

// Cell reads one grid cell.
func (s *Simulation) Cell(x, y int) model.Color {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid.Read(x, y)
}

// Snapshot copies the whole state. Cells are sorted by row then column.
func (s *Simulation) Snapshot() model.WorldState {
	s.mu.Lock()
	defer s.mu.Unlock()

	ws := model.WorldState{Tick: s.tick, Agents: make([]model.Agent, len(s.agents))}
	for i, a := range s.agents {
		ws.Agents[i] = *a.Clone()
	}
	for p, c := range s.grid.Cells() {
		ws.Cells = append(ws.Cells, model.Cell{Point: p, Color: c})
	}
	sort.Slice(ws.Cells, func(i, j int) bool {
		a, b := ws.Cells[i].Point, ws.Cells[j].Point
		if a.Y != b.Y {
			return a.Y < b.Y
		}
		return a.X < b.X
	})
	return ws
}

// Clear resets the grid and removes every agent. The tick counter keeps
// counting.
func (s *Simulation) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.grid.Clear()
	s.agents = nil
	s.pending = nil
	clear(s.cache)
	s.log.Info("simulation cleared", "tick", s.tick)
}

// DroppedSpawns is the total number of spawns refused by the agent limit.
func (s *Simulation) DroppedSpawns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.droppedSpawns
}
