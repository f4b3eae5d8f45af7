package ipc

import "github.com/nstehr/gridlife/model"

// Command types accepted from observer clients.
const (
	TypePlaceAgent  = "place_agent"
	TypeSetRules    = "set_rules"
	TypeRemoveAgent = "remove_agent"
	TypeClear       = "clear"
	TypeSubscribe   = "subscribe"
)

// PlaceAgentCommand adds an agent. Rules wins over Preset; both empty
// means the server's default preset.
type PlaceAgentCommand struct {
	X         int             `json:"x"`
	Y         int             `json:"y"`
	Direction model.Direction `json:"direction,omitempty"`
	Color     *model.Color    `json:"color,omitempty"`
	Preset    string          `json:"preset,omitempty"`
	Rules     string          `json:"rules,omitempty"`
}

type SetRulesCommand struct {
	ID     string `json:"id"`
	Preset string `json:"preset,omitempty"`
	Rules  string `json:"rules,omitempty"`
}

type RemoveAgentCommand struct {
	ID string `json:"id"`
}

// SubscribeCommand toggles full world state in tick envelopes.
type SubscribeCommand struct {
	FullState bool `json:"fullState"`
}
