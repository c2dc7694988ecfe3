package sim

import "fmt"

// Status is the per-agent state machine tag.
type Status uint8

const (
	StatusHealthy      Status = iota // mobile, acting normally
	StatusPanicked                   // mobile but fleeing, won't attempt rescues
	StatusIncapacitated              // immobile, dies in place unless rescued
	StatusBeingRescued               // immobile, carried by a helper
	StatusEscaped                    // terminal: reached an exit
	StatusDead                       // terminal
)

func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusPanicked:
		return "panicked"
	case StatusIncapacitated:
		return "incapacitated"
	case StatusBeingRescued:
		return "being_rescued"
	case StatusEscaped:
		return "escaped"
	case StatusDead:
		return "dead"
	default:
		return "unknown"
	}
}

// Terminal reports whether the status is an end state.
func (s Status) Terminal() bool {
	return s == StatusEscaped || s == StatusDead
}

// Mobile reports whether the agent can move on its own this tick.
func (s Status) Mobile() bool {
	return s == StatusHealthy || s == StatusPanicked
}

// Agent is one evacuee. Position changes only through the grid's
// movement API, driven by the scheduler.
type Agent struct {
	ID            int
	Pos           Coord
	Status        Status
	Collaboration float64 // propensity in [0,1] to attempt/persist in rescues
	VisionRadius  int

	exposure     int                // accumulated heavy-smoke exposure
	knownExits   map[Coord]struct{} // exits seen at any point this run
	view         *View              // perception for the current tick
	rescueTarget int                // incapacitated agent this one is heading for, 0 = none
}

// Label is the short name used in event logs, e.g. "H3".
func (a *Agent) Label() string {
	return fmt.Sprintf("H%d", a.ID)
}

// learnExits remembers every exit currently in view. Knowledge persists
// after the exit leaves the visible set.
func (a *Agent) learnExits() {
	for _, e := range a.view.Exits {
		a.knownExits[e] = struct{}{}
	}
}

// nearestKnownExit returns the closest remembered exit, or false when the
// agent has not seen one yet. Scan order over the map does not matter:
// ties are broken by comparing coordinates, keeping runs reproducible.
func (a *Agent) nearestKnownExit() (Coord, bool) {
	var best Coord
	bestD := -1
	for e := range a.knownExits {
		d := chebyshev(a.Pos, e)
		if bestD < 0 || d < bestD || (d == bestD && (e.Y < best.Y || (e.Y == best.Y && e.X < best.X))) {
			best, bestD = e, d
		}
	}
	return best, bestD >= 0
}

// KnowsExit reports whether the agent has ever seen an exit.
func (a *Agent) KnowsExit() bool {
	return len(a.knownExits) > 0
}

// Exposure returns the current accumulated heavy-smoke exposure.
func (a *Agent) Exposure() int {
	return a.exposure
}
