package sim

import (
	"context"
	"time"
)

const (
	MinInterval     = 50 * time.Millisecond
	MaxInterval     = 2000 * time.Millisecond
	DefaultInterval = 200 * time.Millisecond
)

// ClampInterval keeps a tick interval inside [MinInterval, MaxInterval].
// Zero or negative means DefaultInterval.
func ClampInterval(d time.Duration) time.Duration {
	switch {
	case d <= 0:
		return DefaultInterval
	case d < MinInterval:
		return MinInterval
	case d > MaxInterval:
		return MaxInterval
	}
	return d
}

// Run steps the simulation every interval until ctx is cancelled or, when
// maxTicks is positive, that many ticks have run. It returns ctx.Err() on
// cancellation and nil otherwise.
func (s *Simulation) Run(ctx context.Context, interval time.Duration, maxTicks int) error {
	interval = ClampInterval(interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.log.Info("simulation started", "interval", interval, "maxTicks", maxTicks)
	ran := 0
	for {
		select {
		case <-ctx.Done():
			s.log.Info("simulation stopped", "tick", s.Tick())
			return ctx.Err()
		case <-ticker.C:
			r := s.Step()
			for _, e := range r.Events {
				if e.Kind != EventSpawned {
					s.log.Debug("tick event", "tick", e.Tick, "kind", e.Kind, "detail", e.Detail)
				}
			}
			ran++
			if maxTicks > 0 && ran >= maxTicks {
				s.log.Info("simulation finished", "tick", r.Tick, "agents", r.Agents)
				return nil
			}
		}
	}
}
