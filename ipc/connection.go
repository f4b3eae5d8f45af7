package ipc

import (
	"fmt"
	"log/slog"
)

// Handler processes a received envelope. Return nil to send no reply.
type Handler func(env Envelope) (*Envelope, error)

// Dispatcher routes envelopes to handlers by type. It is not safe to
// register handlers while Dispatch is running.
type Dispatcher struct {
	handlers map[string]Handler
}

func NewDispatcher(handlers map[string]Handler) *Dispatcher {
	if handlers == nil {
		handlers = make(map[string]Handler)
	}
	return &Dispatcher{handlers: handlers}
}

func (d *Dispatcher) RegisterHandler(msgType string, handler Handler) {
	d.handlers[msgType] = handler
}

// Dispatch runs the handler for env. Unknown types and handler failures are
// answered with an error ack so the client always gets a reply.
func (d *Dispatcher) Dispatch(env Envelope) Envelope {
	handler, ok := d.handlers[env.Type]
	if !ok {
		slog.Warn("no handler for message type", "type", env.Type)
		return errorAck(fmt.Errorf("unknown message type %q", env.Type))
	}

	resp, err := handler(env)
	if err != nil {
		slog.Error("handler error", "type", env.Type, "error", err)
		return errorAck(err)
	}
	if resp == nil {
		ack, _ := NewEnvelope(TypeAck, AckMessage{Status: "ok"})
		return ack
	}
	return *resp
}

func errorAck(err error) Envelope {
	ack, _ := NewEnvelope(TypeAck, AckMessage{Status: "error", Error: err.Error()})
	return ack
}
