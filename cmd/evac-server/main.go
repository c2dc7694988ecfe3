// evac-server runs one evacuation simulation and streams per-tick
// snapshots to WebSocket clients on /ws. Clients can pause, resume,
// change speed, and reset to a new seed.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/evac-lab/evacsim/internal/sim"
	"github.com/evac-lab/evacsim/internal/stream"
)

var upgrader = websocket.Upgrader{
	// The viewer client is served from anywhere during development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// server owns the run and serializes all access to it: the tick loop and
// client commands both go through mu.
type server struct {
	hub *stream.Hub

	mu     sync.Mutex
	cfg    sim.Config
	run    *sim.Run
	paused bool
	ticker *time.Ticker
}

func main() {
	var (
		addr   string
		humans int
		collab float64
		seed   int64
		width  int
		height int
		exits  int
		floor  string
		ticks  int
		rate   float64
	)
	flag.StringVar(&addr, "addr", ":8080", "listen address")
	flag.IntVar(&humans, "humans", 20, "number of evacuees")
	flag.Float64Var(&collab, "collab", 0.5, "collaboration factor in [0,1]")
	flag.Int64Var(&seed, "seed", 42, "RNG seed")
	flag.IntVar(&width, "width", 40, "generated floorplan width")
	flag.IntVar(&height, "height", 25, "generated floorplan height")
	flag.IntVar(&exits, "exits", 2, "generated floorplan exit count")
	flag.StringVar(&floor, "floor", "", "floorplan file (overrides generation)")
	flag.IntVar(&ticks, "ticks", 500, "tick budget per run")
	flag.Float64Var(&rate, "rate", 4, "simulation ticks per second")
	flag.Parse()

	cfg := sim.Config{
		GenWidth:      width,
		GenHeight:     height,
		GenExits:      exits,
		Humans:        humans,
		Collaboration: collab,
		Seed:          seed,
		MaxTicks:      ticks,
	}
	if floor != "" {
		data, err := os.ReadFile(floor)
		if err != nil {
			slog.Error("read floorplan", "path", floor, "err", err)
			os.Exit(1)
		}
		cfg.Floorplan = string(data)
	}

	run, err := sim.NewRun(cfg)
	if err != nil {
		slog.Error("start run", "err", err)
		os.Exit(1)
	}

	s := &server{
		hub:    stream.NewHub(),
		cfg:    cfg,
		run:    run,
		ticker: time.NewTicker(intervalFor(rate)),
	}
	go s.loop()

	http.HandleFunc("/ws", s.handleWS)
	http.HandleFunc("/", s.handleStatus)

	slog.Info("listening", "addr", addr, "seed", cfg.Seed, "humans", cfg.Humans)
	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("serve", "err", err)
		os.Exit(1)
	}
}

func intervalFor(ticksPerSec float64) time.Duration {
	if ticksPerSec <= 0 {
		ticksPerSec = 1
	}
	return time.Duration(float64(time.Second) / ticksPerSec)
}

// loop advances the run on the ticker and broadcasts the state. Once the
// run terminates it keeps broadcasting the final snapshot so late
// joiners still see the outcome.
func (s *server) loop() {
	for range s.ticker.C {
		s.mu.Lock()
		if !s.paused && !s.run.Done() {
			s.run.Step()
			if s.run.Done() {
				sum := s.run.Summary()
				slog.Info("run finished", "seed", s.cfg.Seed, "reason", sum.Reason,
					"escaped", sum.Escaped, "dead", sum.Dead, "ticks", sum.Ticks)
			}
		}
		msg := s.snapshotMessage()
		s.mu.Unlock()

		if s.hub.Count() > 0 {
			s.hub.Broadcast(msg)
		}
	}
}

// snapshotMessage builds the broadcast payload; callers hold mu.
func (s *server) snapshotMessage() stream.ServerMessage {
	msg := stream.ServerMessage{Type: stream.MessageTypeSnapshot}
	snap := s.run.Snapshot()
	msg.Snapshot = &snap
	if s.run.Done() {
		sum := s.run.Summary()
		msg.Type = stream.MessageTypeSummary
		msg.Summary = &sum
	}
	return msg
}

// handleStatus serves a one-line JSON status for health checks.
func (s *server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	status := map[string]any{
		"tick":    s.run.Tick(),
		"reason":  s.run.Reason().String(),
		"seed":    s.cfg.Seed,
		"paused":  s.paused,
		"clients": s.hub.Count(),
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(status)
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("upgrade", "err", err)
		return
	}
	conn := stream.NewConnection(ws)
	s.hub.Add(conn)
	go conn.WritePump()

	// Immediate state for the new client, ahead of the next tick.
	s.mu.Lock()
	msg := s.snapshotMessage()
	s.mu.Unlock()
	conn.Send(msg)

	slog.Info("client connected", "remote", r.RemoteAddr, "clients", s.hub.Count())
	conn.ReadPump(s)
	s.hub.Remove(conn)
	slog.Info("client disconnected", "remote", r.RemoteAddr, "clients", s.hub.Count())
}

// HandleMessage routes one client command.
func (s *server) HandleMessage(conn *stream.Connection, message []byte) {
	var cmd stream.ClientCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		conn.Send(stream.ServerMessage{Type: stream.MessageTypeError, Error: "malformed command"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd.Type {
	case stream.CommandPause:
		s.paused = true
	case stream.CommandResume:
		s.paused = false
	case stream.CommandSpeed:
		s.ticker.Reset(intervalFor(cmd.TicksPerSec))
	case stream.CommandReset:
		if cmd.Seed != nil {
			s.cfg.Seed = *cmd.Seed
		} else {
			s.cfg.Seed++
		}
		run, err := sim.NewRun(s.cfg)
		if err != nil {
			conn.Send(stream.ServerMessage{Type: stream.MessageTypeError, Error: err.Error()})
			return
		}
		s.run = run
		s.paused = false
		slog.Info("run reset", "seed", s.cfg.Seed)
	default:
		conn.Send(stream.ServerMessage{Type: stream.MessageTypeError, Error: "unknown command " + cmd.Type})
	}
}
