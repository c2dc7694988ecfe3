package sim

import (
	"fmt"
	"math/rand"
)

// TerminationReason classifies how a run ended. Hitting the tick budget
// is a normal outcome, not an error.
type TerminationReason int

const (
	ReasonRunning     TerminationReason = iota // not terminated yet
	ReasonAllEscaped                           // every agent reached an exit
	ReasonAllResolved                          // all agents terminal, at least one dead
	ReasonMaxTicks                             // tick budget exhausted
)

func (t TerminationReason) String() string {
	switch t {
	case ReasonAllEscaped:
		return "all_escaped"
	case ReasonAllResolved:
		return "all_resolved"
	case ReasonMaxTicks:
		return "max_ticks"
	case ReasonRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Run owns one simulation: the grid, the agents, the rescue pairings,
// and the tick counter. It is single-threaded; callers must not mutate
// grid or agent state outside Step.
type Run struct {
	cfg  Config
	grid *Grid
	rng  *rand.Rand

	agents     []*Agent // spawn order, fixed
	agentsByID map[int]*Agent

	// Rescue pairing is a transient relation, not ownership: helper id →
	// helped id, mirrored by claimed (helped id → helper id). Cleared on
	// abandonment, revival, escape, or death.
	rescues map[int]int
	claimed map[int]int

	tick    int
	escaped int
	dead    int
	reason  TerminationReason

	// Log records structured events; tests and the batch reporter read it.
	Log *EventLog

	order []*Agent // per-tick shuffle buffer
}

// NewRun validates cfg, builds the grid, ignites the fire, and spawns
// agents on free floor cells. All randomness comes from cfg.Seed.
func NewRun(cfg Config) (*Run, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.MaxTicks == 0 {
		cfg.MaxTicks = DefaultMaxTicks
	}
	if cfg.VisionRadius == 0 {
		cfg.VisionRadius = DefaultVisionRadius
	}

	var grid *Grid
	var err error
	if cfg.Floorplan != "" {
		grid, err = ParseFloorplan(cfg.Floorplan)
	} else {
		grid, err = GenerateFloorplan(cfg.GenWidth, cfg.GenHeight, cfg.GenExits, cfg.Seed)
	}
	if err != nil {
		return nil, err
	}

	r := &Run{
		cfg:        cfg,
		grid:       grid,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		agentsByID: make(map[int]*Agent),
		rescues:    make(map[int]int),
		claimed:    make(map[int]int),
		reason:     ReasonRunning,
		Log:        NewEventLog(cfg.Verbose),
	}

	if err := r.ignite(); err != nil {
		return nil, err
	}
	if err := r.spawnAgents(); err != nil {
		return nil, err
	}
	return r, nil
}

// ignite lights the configured ignition points, or one random non-wall
// cell when none are given.
func (r *Run) ignite() error {
	if len(r.cfg.Ignitions) == 0 {
		for {
			c := Coord{r.rng.Intn(r.grid.Width), r.rng.Intn(r.grid.Height)}
			if r.grid.at(c).Kind != KindWall {
				r.cfg.Ignitions = []Coord{c}
				break
			}
		}
	}
	for _, c := range r.cfg.Ignitions {
		if err := igniteAt(r.grid, c); err != nil {
			return err
		}
	}
	return nil
}

// spawnAgents places humans on random free floor cells, never on fire.
func (r *Run) spawnAgents() error {
	var free []Coord
	for y := 0; y < r.grid.Height; y++ {
		for x := 0; x < r.grid.Width; x++ {
			c := Coord{x, y}
			cell := r.grid.at(c)
			if cell.Kind == KindFloor && !cell.Fire && cell.Agent == 0 {
				free = append(free, c)
			}
		}
	}
	if r.cfg.Humans > len(free) {
		return configErrorf("humans", "%d agents but only %d free floor cells", r.cfg.Humans, len(free))
	}
	perm := r.rng.Perm(len(free))
	for i := 0; i < r.cfg.Humans; i++ {
		a := &Agent{
			ID:            i + 1, // 0 is the empty-cell sentinel
			Pos:           free[perm[i]],
			Status:        StatusHealthy,
			Collaboration: r.cfg.collaborationFor(i),
			VisionRadius:  r.cfg.VisionRadius,
			knownExits:    make(map[Coord]struct{}),
		}
		if err := r.grid.PlaceAgent(a.ID, a.Pos); err != nil {
			return err
		}
		r.agents = append(r.agents, a)
		r.agentsByID[a.ID] = a
	}
	return nil
}

// Grid exposes the grid for read-only inspection (viewer, tests).
func (r *Run) Grid() *Grid { return r.grid }

// Tick returns the current tick count.
func (r *Run) Tick() int { return r.tick }

// Reason returns the termination reason, ReasonRunning while active.
func (r *Run) Reason() TerminationReason { return r.reason }

// Agents returns the agents in spawn order, including terminal ones.
func (r *Run) Agents() []*Agent { return r.agents }

// Done reports whether the run has terminated.
func (r *Run) Done() bool { return r.reason != ReasonRunning }

// Step advances the run one tick in fixed phase order: hazard growth,
// visibility, decisions, application, termination. Decisions are all
// computed against the post-hazard pre-movement grid, then applied
// sequentially in a per-tick RNG-shuffled order; a move whose target is
// taken by the time it applies is dropped.
func (r *Run) Step() {
	if r.Done() {
		return
	}
	r.tick++

	// 1. Hazard.
	advanceHazard(r.grid, r.rng)
	r.applyHazardDamage()

	// 2. Visibility + knowledge for everyone still on the grid.
	for _, a := range r.agents {
		if a.Status.Terminal() {
			continue
		}
		a.view = ComputeView(r.grid, a.Pos, a.VisionRadius)
		a.learnExits()
		r.Log.AddVerbose(r.tick, a.Label(), "vision", "exits_known",
			fmt.Sprintf("%d", len(a.knownExits)), float64(len(a.knownExits)))
	}

	// 3. Decisions, in a fresh shuffled order each tick for fairness.
	r.order = r.order[:0]
	for _, a := range r.agents {
		if a.Status.Mobile() {
			r.order = append(r.order, a)
		}
	}
	r.rng.Shuffle(len(r.order), func(i, j int) {
		r.order[i], r.order[j] = r.order[j], r.order[i]
	})
	intents := make([]intent, len(r.order))
	for i, a := range r.order {
		intents[i] = r.decide(a)
	}

	// 4. Application, same order. The decision phase never moves anyone,
	// so every intent was computed against the same grid state.
	for i, a := range r.order {
		if !a.Status.Mobile() { // may have been abandoned-on / changed mid-phase
			continue
		}
		r.apply(a, intents[i])
	}

	// 5. Termination.
	r.checkTermination()
}

// RunToEnd steps until the run terminates and returns the summary.
func (r *Run) RunToEnd() Summary {
	for !r.Done() {
		r.Step()
	}
	return r.Summary()
}

// applyHazardDamage hurts agents standing in fire or heavy smoke.
// Deterministic thresholds: fire downs a mobile agent immediately and
// kills a downed one; heavy smoke accumulates exposure that downs at
// exposureIncapacitate and kills at exposureDeath. A carried agent out
// of heavy smoke sheds exposure and revives at zero.
func (r *Run) applyHazardDamage() {
	for _, a := range r.agents {
		if a.Status.Terminal() {
			continue
		}
		cell := r.grid.at(a.Pos)
		switch {
		case cell.Fire:
			if a.Status.Mobile() {
				if a.exposure < exposureIncapacitate {
					a.exposure = exposureIncapacitate
				}
				r.setStatus(a, StatusIncapacitated)
				r.dropPairingsOf(a)
			} else {
				r.kill(a, "burned")
			}
		case cell.Smoke == SmokeHeavy:
			a.exposure++
			r.Log.AddVerbose(r.tick, a.Label(), "hazard", "exposure",
				fmt.Sprintf("%d", a.exposure), float64(a.exposure))
			if a.Status.Mobile() && a.exposure >= exposureIncapacitate {
				r.setStatus(a, StatusIncapacitated)
				r.dropPairingsOf(a)
			} else if !a.Status.Mobile() && a.exposure >= exposureDeath {
				r.kill(a, "suffocated")
			}
		case a.Status == StatusBeingRescued && a.exposure > 0:
			a.exposure--
			if a.exposure == 0 {
				r.revive(a)
			}
		}
	}
}

// apply commits one intent to the grid.
func (r *Run) apply(a *Agent, in intent) {
	switch in.kind {
	case intentAdopt:
		r.adopt(a, in.target)
	case intentAbandon:
		r.abandonRescue(a.ID, in.target)
	case intentMove:
		r.moveAgent(a, in.to)
	}
}

// adopt begins a rescue: the helped agent is carried from now on.
func (r *Run) adopt(helper *Agent, helpedID int) {
	helped := r.agentsByID[helpedID]
	if helped == nil || helped.Status != StatusIncapacitated {
		return // died or was adopted since the decision was made
	}
	if chebyshev(helper.Pos, helped.Pos) > 1 {
		return
	}
	if _, busy := r.rescues[helper.ID]; busy {
		return
	}
	if r.claimed[helpedID] != 0 {
		return
	}
	r.rescues[helper.ID] = helpedID
	r.claimed[helpedID] = helper.ID
	helper.rescueTarget = 0
	r.setStatus(helped, StatusBeingRescued)
	r.Log.Add(r.tick, helper.Label(), "rescue", "adopt",
		fmt.Sprintf("carrying %s", helped.Label()), 0)
}

// moveAgent steps an agent one cell, dragging a carried agent into the
// vacated cell. Stepping onto an exit escapes the agent (and anyone it
// carries). Blocked moves are dropped: the agent stays put.
func (r *Run) moveAgent(a *Agent, to Coord) {
	if chebyshev(a.Pos, to) != 1 || !r.grid.IsPassable(to) {
		return // target taken or invalid by application time
	}
	from := a.Pos
	helped := r.carriedBy(a)

	if r.grid.at(to).Kind == KindExit {
		r.escape(a)
		if helped != nil {
			r.escape(helped)
		}
		return
	}

	if err := r.grid.MoveAgent(a.ID, from, to); err != nil {
		return
	}
	a.Pos = to
	r.Log.AddVerbose(r.tick, a.Label(), "move", "position",
		fmt.Sprintf("(%d,%d)", to.X, to.Y), 0)

	if helped != nil {
		if err := r.grid.MoveAgent(helped.ID, helped.Pos, from); err == nil {
			helped.Pos = from
		}
	}
}

// carriedBy returns the agent helper is carrying, or nil.
func (r *Run) carriedBy(helper *Agent) *Agent {
	id, ok := r.rescues[helper.ID]
	if !ok {
		return nil
	}
	return r.agentsByID[id]
}

// escape removes an agent from the grid as a success.
func (r *Run) escape(a *Agent) {
	if a.Status.Terminal() {
		return
	}
	if err := r.grid.RemoveAgent(a.ID, a.Pos); err != nil {
		return
	}
	r.dropPairingsOf(a)
	a.Status = StatusEscaped
	r.escaped++
	r.Log.Add(r.tick, a.Label(), "status", "escaped", "reached exit", 0)
}

// kill removes an agent from the grid as a failure.
func (r *Run) kill(a *Agent, cause string) {
	if a.Status.Terminal() {
		return
	}
	if err := r.grid.RemoveAgent(a.ID, a.Pos); err != nil {
		return
	}
	r.dropPairingsOf(a)
	a.Status = StatusDead
	r.dead++
	r.Log.Add(r.tick, a.Label(), "status", "died", cause, 0)
}

// revive returns a carried agent to health; it walks on its own again.
func (r *Run) revive(a *Agent) {
	if helperID, ok := r.claimed[a.ID]; ok {
		delete(r.rescues, helperID)
		delete(r.claimed, a.ID)
	}
	r.setStatus(a, StatusHealthy)
	r.Log.Add(r.tick, a.Label(), "rescue", "revived", "recovered while carried", 0)
}

// abandonRescue drops a carried agent back to incapacitated in place.
func (r *Run) abandonRescue(helperID, helpedID int) {
	delete(r.rescues, helperID)
	delete(r.claimed, helpedID)
	helped := r.agentsByID[helpedID]
	if helped == nil {
		return
	}
	if helped.Status == StatusBeingRescued {
		r.setStatus(helped, StatusIncapacitated)
	}
	if helper := r.agentsByID[helperID]; helper != nil {
		r.Log.Add(r.tick, helper.Label(), "rescue", "abandon",
			fmt.Sprintf("dropped %s near fire", helped.Label()), 0)
	}
}

// dropPairingsOf clears any rescue relation involving a, in either role.
// A helper going down strands its helped agent as incapacitated again.
func (r *Run) dropPairingsOf(a *Agent) {
	if helpedID, ok := r.rescues[a.ID]; ok {
		delete(r.rescues, a.ID)
		delete(r.claimed, helpedID)
		if helped := r.agentsByID[helpedID]; helped != nil && helped.Status == StatusBeingRescued {
			r.setStatus(helped, StatusIncapacitated)
		}
	}
	if helperID, ok := r.claimed[a.ID]; ok {
		delete(r.claimed, a.ID)
		delete(r.rescues, helperID)
	}
}

// setStatus transitions an agent's state and logs the change.
func (r *Run) setStatus(a *Agent, s Status) {
	if a.Status == s {
		return
	}
	r.Log.Add(r.tick, a.Label(), "status", "change",
		fmt.Sprintf("%s → %s", a.Status, s), 0)
	a.Status = s
}

// checkTermination resolves the run when every agent is terminal or the
// tick budget is spent. Incapacitated agents are not terminal: the run
// keeps going until they are rescued out, die, or ticks run out.
func (r *Run) checkTermination() {
	allTerminal := true
	for _, a := range r.agents {
		if !a.Status.Terminal() {
			allTerminal = false
			break
		}
	}
	switch {
	case allTerminal && r.dead == 0:
		r.reason = ReasonAllEscaped
	case allTerminal:
		r.reason = ReasonAllResolved
	case r.tick >= r.cfg.MaxTicks:
		r.reason = ReasonMaxTicks
	}
}

// StatusCounts tallies agents by status.
func (r *Run) StatusCounts() map[Status]int {
	counts := make(map[Status]int)
	for _, a := range r.agents {
		counts[a.Status]++
	}
	return counts
}
