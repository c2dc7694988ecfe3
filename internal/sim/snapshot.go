package sim

// CellSnapshot is the read-only view of one cell.
type CellSnapshot struct {
	Kind  string `json:"kind"`
	Fire  bool   `json:"fire,omitempty"`
	Smoke string `json:"smoke,omitempty"`
	Agent int    `json:"agent,omitempty"`
}

// AgentSnapshot is the read-only view of one agent.
type AgentSnapshot struct {
	ID            int     `json:"id"`
	X             int     `json:"x"`
	Y             int     `json:"y"`
	Status        string  `json:"status"`
	Collaboration float64 `json:"collaboration"`
	Exposure      int     `json:"exposure"`
}

// Snapshot is the per-tick state exposed to the viewer and the snapshot
// server. It copies everything: consumers may hold it across ticks.
type Snapshot struct {
	Tick   int             `json:"tick"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Cells  []CellSnapshot  `json:"cells"` // row-major, len = width*height
	Agents []AgentSnapshot `json:"agents"`
	Reason string          `json:"reason"`
}

// Summary is the run-level result reported at termination.
type Summary struct {
	Ticks         int    `json:"ticks"`
	Initial       int    `json:"initial"`
	Escaped       int    `json:"escaped"`
	Dead          int    `json:"dead"`
	Incapacitated int    `json:"incapacitated"` // still down when the run ended
	Reason        string `json:"reason"`
}

// EscapedPct returns the share of agents that escaped, in percent.
func (s Summary) EscapedPct() float64 {
	if s.Initial == 0 {
		return 0
	}
	return float64(s.Escaped) / float64(s.Initial) * 100
}

// Snapshot captures the current grid and agent state.
func (r *Run) Snapshot() Snapshot {
	snap := Snapshot{
		Tick:   r.tick,
		Width:  r.grid.Width,
		Height: r.grid.Height,
		Cells:  make([]CellSnapshot, len(r.grid.cells)),
		Reason: r.reason.String(),
	}
	for i, c := range r.grid.cells {
		cs := CellSnapshot{Kind: c.Kind.String(), Fire: c.Fire, Agent: c.Agent}
		if c.Smoke != SmokeNone {
			cs.Smoke = c.Smoke.String()
		}
		snap.Cells[i] = cs
	}
	for _, a := range r.agents {
		snap.Agents = append(snap.Agents, AgentSnapshot{
			ID:            a.ID,
			X:             a.Pos.X,
			Y:             a.Pos.Y,
			Status:        a.Status.String(),
			Collaboration: a.Collaboration,
			Exposure:      a.exposure,
		})
	}
	return snap
}

// Summary reports the run outcome so far; meaningful once Done.
func (r *Run) Summary() Summary {
	incap := 0
	for _, a := range r.agents {
		if a.Status == StatusIncapacitated || a.Status == StatusBeingRescued {
			incap++
		}
	}
	return Summary{
		Ticks:         r.tick,
		Initial:       len(r.agents),
		Escaped:       r.escaped,
		Dead:          r.dead,
		Incapacitated: incap,
		Reason:        r.reason.String(),
	}
}
