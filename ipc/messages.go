package ipc

import (
	"github.com/nstehr/gridlife/model"
	"github.com/nstehr/gridlife/sim"
)

// Message types sent by the server.
const (
	TypeHello = "hello"
	TypeAck   = "ack"
	TypeTick  = "tick"
)

// Version is bumped when an envelope payload changes shape.
const Version = 1

// HelloMessage opens a trace file and greets each observer client.
type HelloMessage struct {
	Version        int      `json:"version"`
	TickIntervalMs int      `json:"tickIntervalMs"`
	MaxAgents      int      `json:"maxAgents"`
	Presets        []string `json:"presets,omitempty"`
}

// TickMessage carries one tick report. State is included when the sender
// wants full frames (traces always do; the observer does on request).
type TickMessage struct {
	Report sim.TickReport    `json:"report"`
	State  *model.WorldState `json:"state,omitempty"`
}

// AckMessage answers a client command.
type AckMessage struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
	ID     string `json:"id,omitempty"`
}
