package stream

import "github.com/evac-lab/evacsim/internal/sim"

// Server-to-client message types.
const (
	MessageTypeSnapshot = "snapshot"
	MessageTypeSummary  = "summary"
	MessageTypeError    = "error"
)

// Client-to-server command types.
const (
	CommandReset  = "reset"
	CommandPause  = "pause"
	CommandResume = "resume"
	CommandSpeed  = "speed"
)

// ServerMessage is the envelope for everything the server pushes.
type ServerMessage struct {
	Type     string        `json:"type"`
	Snapshot *sim.Snapshot `json:"snapshot,omitempty"`
	Summary  *sim.Summary  `json:"summary,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// ClientCommand is a control message from a viewer client.
type ClientCommand struct {
	Type string `json:"type"`

	// Seed applies to reset; nil reuses the next sequential seed.
	Seed *int64 `json:"seed,omitempty"`

	// TicksPerSec applies to speed.
	TicksPerSec float64 `json:"ticks_per_sec,omitempty"`
}
