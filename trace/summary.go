package trace

import (
	"errors"
	"io"
	"time"
)

// Summary aggregates a whole trace.
type Summary struct {
	Ticks         int
	FirstTick     int
	LastTick      int
	PeakAgents    int
	FinalAgents   int
	FinalPainted  int
	Spawned       int
	SpawnsDropped int
	Fired         int
	Idle          int
	StepTime      time.Duration
	Events        map[string]int
}

// Summarize reads every remaining tick from tr.
func Summarize(tr *Reader) (Summary, error) {
	s := Summary{Events: make(map[string]int)}
	for {
		tm, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return s, nil
		}
		if err != nil {
			return s, err
		}
		r := tm.Report
		if s.Ticks == 0 {
			s.FirstTick = r.Tick
		}
		s.Ticks++
		s.LastTick = r.Tick
		s.PeakAgents = max(s.PeakAgents, r.Agents)
		s.FinalAgents = r.Agents
		s.FinalPainted = r.Painted
		s.Spawned += len(r.Spawned)
		s.SpawnsDropped += r.SpawnsDropped
		s.Fired += r.Fired
		s.Idle += r.Idle
		s.StepTime += r.Duration
		for _, e := range r.Events {
			s.Events[string(e.Kind)]++
		}
	}
}
