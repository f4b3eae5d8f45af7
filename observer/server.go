// Package observer streams tick envelopes to websocket clients and accepts
// agent commands from them.
package observer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nstehr/gridlife/ipc"
	"github.com/nstehr/gridlife/sim"
)

const sendBuffer = 64

type client struct {
	id        string
	out       chan []byte
	fullState atomic.Bool
}

// Server is an http.Handler serving /ws, /state and /healthz.
type Server struct {
	sim   *sim.Simulation
	hello ipc.HelloMessage
	log   *slog.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.Mutex
	clients map[string]*client
	dropped atomic.Uint64

	mux *http.ServeMux
}

// NewServer wires a server to s. Every tick of s is broadcast to connected
// clients.
func NewServer(s *sim.Simulation, hello ipc.HelloMessage, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	srv := &Server{
		sim:     s,
		hello:   hello,
		log:     logger,
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}
	srv.mux.HandleFunc("/ws", srv.handleWS)
	srv.mux.HandleFunc("/state", srv.handleState)
	srv.mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	s.Subscribe(srv.Broadcast)
	return srv
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(rw, r)
}

// Clients is the number of connected websocket clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Dropped counts envelopes skipped because a client's buffer was full.
func (s *Server) Dropped() uint64 { return s.dropped.Load() }

// Broadcast sends a tick envelope to every client. Slow clients miss ticks
// rather than stall the simulation.
func (s *Server) Broadcast(report sim.TickReport) {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	wantState := false
	for _, c := range s.clients {
		clients = append(clients, c)
		wantState = wantState || c.fullState.Load()
	}
	s.mu.Unlock()
	if len(clients) == 0 {
		return
	}

	light, err := encode(ipc.TypeTick, ipc.TickMessage{Report: report})
	if err != nil {
		s.log.Error("encode tick", "error", err)
		return
	}
	full := light
	if wantState {
		state := s.sim.Snapshot()
		if full, err = encode(ipc.TypeTick, ipc.TickMessage{Report: report, State: &state}); err != nil {
			s.log.Error("encode tick state", "error", err)
			return
		}
	}

	for _, c := range clients {
		msg := light
		if c.fullState.Load() {
			msg = full
		}
		select {
		case c.out <- msg:
		default:
			s.dropped.Add(1)
		}
	}
}

func (s *Server) handleState(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		rw.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rw.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(rw).Encode(s.sim.Snapshot())
}

func (s *Server) handleWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	c := &client{
		id:  fmt.Sprintf("O%d", s.nextID.Add(1)),
		out: make(chan []byte, sendBuffer),
	}
	hello, err := encode(ipc.TypeHello, s.hello)
	if err != nil {
		return
	}
	c.out <- hello

	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
	s.log.Info("observer connected", "client", c.id, "remote", r.RemoteAddr)
	defer func() {
		s.mu.Lock()
		delete(s.clients, c.id)
		s.mu.Unlock()
		s.log.Info("observer disconnected", "client", c.id)
	}()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	writeErr := make(chan error, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				writeErr <- ctx.Err()
				return
			case b := <-c.out:
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					writeErr <- err
					return
				}
			}
		}
	}()

	dispatcher := s.dispatcher(c)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		var env ipc.Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			s.log.Warn("bad observer message", "client", c.id, "error", err)
			continue
		}
		resp, err := json.Marshal(dispatcher.Dispatch(env))
		if err != nil {
			continue
		}
		select {
		case c.out <- resp:
		case <-ctx.Done():
		}
	}

	cancel()
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

	select {
	case <-writeErr:
	case <-time.After(500 * time.Millisecond):
	}
}

func encode(msgType string, v any) ([]byte, error) {
	env, err := ipc.NewEnvelope(msgType, v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}
