package sim

import (
	"fmt"
	"time"
)

// TickReport summarizes one Step.
type TickReport struct {
	Tick          int           `json:"tick"`
	Agents        int           `json:"agents"`
	Fired         int           `json:"fired"`
	Idle          int           `json:"idle"`
	Spawned       []string      `json:"spawned,omitempty"`
	SpawnsDropped int           `json:"spawnsDropped,omitempty"`
	Painted       int           `json:"painted"`
	Duration      time.Duration `json:"durationNs"`
	Events        []Event       `json:"events,omitempty"`
}

// EventKind identifies a notable change in a tick.
type EventKind string

const (
	EventSpawned      EventKind = "spawned"
	EventAgentLimit   EventKind = "agent_limit"
	EventAllIdle      EventKind = "all_idle"
	EventPopulationUp EventKind = "population_doubled"
)

// Event is a notable change detected from a tick report.
type Event struct {
	Kind   EventKind `json:"kind"`
	Tick   int       `json:"tick"`
	Detail string    `json:"detail"`
}

// detectEvents derives events from a finished report. Population is
// measured after spawns are appended.
func detectEvents(r TickReport, maxAgents int) []Event {
	var events []Event
	if n := len(r.Spawned); n > 0 {
		events = append(events, Event{
			Kind:   EventSpawned,
			Tick:   r.Tick,
			Detail: fmt.Sprintf("%d agent(s) spawned", n),
		})
		before := r.Agents - n
		if before > 0 && r.Agents >= 2*before {
			events = append(events, Event{
				Kind:   EventPopulationUp,
				Tick:   r.Tick,
				Detail: fmt.Sprintf("population grew from %d to %d", before, r.Agents),
			})
		}
	}
	if r.SpawnsDropped > 0 {
		events = append(events, Event{
			Kind:   EventAgentLimit,
			Tick:   r.Tick,
			Detail: fmt.Sprintf("%d spawn(s) dropped at limit %d", r.SpawnsDropped, maxAgents),
		})
	}
	if r.Agents > 0 && r.Fired == 0 {
		events = append(events, Event{
			Kind:   EventAllIdle,
			Tick:   r.Tick,
			Detail: "no agent matched a rule",
		})
	}
	return events
}
