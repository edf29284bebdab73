package main

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/blobsim/game"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Client is one websocket observer. Writes are serialized.
type Client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// Send writes v as JSON.
func (c *Client) Send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

// Server steps a simulation and streams it to websocket clients. Control
// messages are applied between ticks.
type Server struct {
	mu    sync.Mutex // guards sim and views
	sim   *game.Simulation
	views []game.AgentView
	every int

	clientsMu sync.Mutex
	clients   map[*Client]struct{}
}

// NewServer creates a server that sends a frame every `every` ticks.
func NewServer(sim *game.Simulation, every int) *Server {
	return &Server{
		sim:     sim,
		every:   max(1, every),
		clients: make(map[*Client]struct{}),
	}
}

// Handler returns the HTTP handler serving /ws, and static files from
// staticDir if it is not empty.
func (s *Server) Handler(staticDir string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.serveWS)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	return mux
}

// Run steps the simulation at its target tick rate until ctx is cancelled
// or maxTicks ticks have run (0 = no cap).
func (s *Server) Run(ctx context.Context, maxTicks int) error {
	for {
		frame, rate, done := s.Step(maxTicks)
		if frame != nil {
			s.broadcast(frame)
		}
		if done {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second / time.Duration(max(1, rate))):
		}
	}
}

// Step runs one tick. It returns the frame to broadcast, or nil between
// frames, the current target tick rate, and whether the tick cap is reached.
func (s *Server) Step(maxTicks int) (frame *Frame, rate int, done bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sim.Step()
	tick := s.sim.Tick()
	if tick%s.every == 0 {
		var f Frame
		f, s.views = newFrame(s.sim, s.views)
		frame = &f
	}
	return frame, s.sim.TargetTickRate(), maxTicks > 0 && tick >= maxTicks
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	client := &Client{conn: conn}

	s.mu.Lock()
	cfg := newConfigMessage(s.sim, s.every)
	s.mu.Unlock()
	if err := client.Send(cfg); err != nil {
		conn.Close()
		return
	}

	s.clientsMu.Lock()
	s.clients[client] = struct{}{}
	n := len(s.clients)
	s.clientsMu.Unlock()
	slog.Info("client connected", "remote", r.RemoteAddr, "clients", n)

	for {
		var msg ControlMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		reply, reset := s.handle(msg)
		if err := client.Send(reply); err != nil {
			break
		}
		if reset {
			s.mu.Lock()
			cfg := newConfigMessage(s.sim, s.every)
			s.mu.Unlock()
			s.broadcast(cfg)
		}
	}

	s.drop(client)
	slog.Info("client disconnected", "remote", r.RemoteAddr)
}

// handle applies a control message. reset reports whether the world was
// rebuilt, so clients need a new config.
func (s *Server) handle(msg ControlMessage) (reply Reply, reset bool) {
	reply = Reply{Type: TypeOK, Request: msg.Type, Param: msg.Param}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Type {
	case TypeSet:
		if err := s.sim.Set(msg.Param, msg.Value); err != nil {
			reply.Type, reply.Error = TypeError, err.Error()
			return reply, false
		}
		slog.Info("tunable set", "param", msg.Param, "value", msg.Value, "tick", s.sim.Tick())
		return reply, msg.Param == game.ParamWorldSize
	case TypeReset:
		s.sim.Reset()
		return reply, true
	default:
		reply.Type, reply.Error = TypeError, "unknown message type "+msg.Type
		return reply, false
	}
}

// broadcast sends v to every client, dropping the ones that fail.
func (s *Server) broadcast(v any) {
	s.clientsMu.Lock()
	list := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		list = append(list, c)
	}
	s.clientsMu.Unlock()

	for _, c := range list {
		if err := c.Send(v); err != nil {
			slog.Warn("client send failed", "error", err)
			s.drop(c)
		}
	}
}

func (s *Server) drop(c *Client) {
	s.clientsMu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.clientsMu.Unlock()
	if ok {
		c.conn.Close()
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	return len(s.clients)
}
