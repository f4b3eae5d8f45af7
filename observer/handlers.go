package observer

import (
	"errors"
	"fmt"

	"github.com/nstehr/gridlife/ipc"
	"github.com/nstehr/gridlife/model"
	"github.com/nstehr/gridlife/rules"
)

func (s *Server) dispatcher(c *client) *ipc.Dispatcher {
	return ipc.NewDispatcher(map[string]ipc.Handler{
		ipc.TypePlaceAgent:  s.handlePlaceAgent,
		ipc.TypeSetRules:    s.handleSetRules,
		ipc.TypeRemoveAgent: s.handleRemoveAgent,
		ipc.TypeClear:       s.handleClear,
		ipc.TypeSubscribe: func(env ipc.Envelope) (*ipc.Envelope, error) {
			var cmd ipc.SubscribeCommand
			if err := env.Decode(&cmd); err != nil {
				return nil, err
			}
			c.fullState.Store(cmd.FullState)
			return nil, nil
		},
	})
}

// ruleText picks explicit rules over a preset name. Both empty is "".
func ruleText(rulesText, preset string) (string, error) {
	if rulesText != "" {
		return rulesText, nil
	}
	if preset == "" {
		return "", nil
	}
	text, ok := rules.Preset(preset)
	if !ok {
		return "", fmt.Errorf("unknown preset %q", preset)
	}
	return text, nil
}

func (s *Server) handlePlaceAgent(env ipc.Envelope) (*ipc.Envelope, error) {
	var cmd ipc.PlaceAgentCommand
	if err := env.Decode(&cmd); err != nil {
		return nil, err
	}
	text, err := ruleText(cmd.Rules, cmd.Preset)
	if err != nil {
		return nil, err
	}

	a := model.NewAgent(cmd.X, cmd.Y)
	if cmd.Direction != "" {
		d, ok := model.ParseDirection(string(cmd.Direction))
		if !ok {
			return nil, fmt.Errorf("invalid direction %q", cmd.Direction)
		}
		a.Direction = d
	}
	if cmd.Color != nil {
		a.Color = cmd.Color.Clamp()
	}
	a.Rules = text

	id, err := s.sim.AddAgent(*a)
	if err != nil {
		return nil, err
	}
	return ack(ipc.AckMessage{Status: "ok", ID: id})
}

func (s *Server) handleSetRules(env ipc.Envelope) (*ipc.Envelope, error) {
	var cmd ipc.SetRulesCommand
	if err := env.Decode(&cmd); err != nil {
		return nil, err
	}
	text, err := ruleText(cmd.Rules, cmd.Preset)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, errors.New("set_rules needs rules or preset")
	}
	report, err := s.sim.SetRules(cmd.ID, text)
	if err != nil {
		return nil, err
	}
	msg := ipc.AckMessage{Status: "ok", ID: cmd.ID}
	if report.Invalid != nil {
		msg.Error = report.Invalid.Error()
	} else if n := len(report.Dropped); n > 0 {
		msg.Error = fmt.Sprintf("%d rule(s) dropped", n)
	}
	return ack(msg)
}

func (s *Server) handleRemoveAgent(env ipc.Envelope) (*ipc.Envelope, error) {
	var cmd ipc.RemoveAgentCommand
	if err := env.Decode(&cmd); err != nil {
		return nil, err
	}
	if !s.sim.RemoveAgent(cmd.ID) {
		return nil, fmt.Errorf("unknown agent %q", cmd.ID)
	}
	return ack(ipc.AckMessage{Status: "ok", ID: cmd.ID})
}

func (s *Server) handleClear(ipc.Envelope) (*ipc.Envelope, error) {
	s.sim.Clear()
	return nil, nil
}

func ack(msg ipc.AckMessage) (*ipc.Envelope, error) {
	env, err := ipc.NewEnvelope(ipc.TypeAck, msg)
	if err != nil {
		return nil, err
	}
	return &env, nil
}
