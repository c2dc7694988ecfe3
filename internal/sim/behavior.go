package sim

// Chance that a panicked agent takes a random step instead of a
// considered one. Panic trades planning for motion.
const panicRandomStepChance = 0.3

// intentKind classifies what an agent wants to do this tick.
type intentKind uint8

const (
	intentStay intentKind = iota
	intentMove
	intentAdopt   // begin carrying an adjacent incapacitated agent
	intentAbandon // drop the carried agent in place
)

// intent is one agent's proposed action, computed against the
// post-hazard, pre-movement grid and applied later by the scheduler.
type intent struct {
	kind   intentKind
	to     Coord // move destination (intentMove)
	target int   // agent id to adopt (intentAdopt)
}

// decide runs the per-tick decision policy for one mobile agent.
// Priority order: keep carrying (or abandon), adopt/approach a visible
// incapacitated agent, head for an exit, flee, wander.
func (r *Run) decide(a *Agent) intent {
	r.updateMood(a)

	// 1. Already carrying someone. Abandonment is returned as an intent
	// like any other decision, so agents deciding later this tick still
	// see the carried agent's pre-movement state.
	if helpedID, ok := r.rescues[a.ID]; ok {
		if r.hazardAdjacent(a.Pos) && r.rng.Float64() > a.Collaboration {
			return intent{kind: intentAbandon, target: helpedID}
		}
		if exit, ok := a.nearestKnownExit(); ok {
			if step, ok := r.stepToward(a, exit); ok {
				return intent{kind: intentMove, to: step}
			}
		}
		if step, ok := r.fleeStep(a); ok {
			return intent{kind: intentMove, to: step}
		}
		return intent{kind: intentStay}
	}

	// 2. Rescue intent. Panicked agents never volunteer.
	if a.Status == StatusHealthy {
		if target := r.visibleIncapacitated(a); target != nil {
			if a.rescueTarget == target.ID || r.rng.Float64() < a.Collaboration {
				a.rescueTarget = target.ID
				if chebyshev(a.Pos, target.Pos) <= 1 {
					return intent{kind: intentAdopt, target: target.ID}
				}
				if step, ok := r.stepToward(a, target.Pos); ok {
					return intent{kind: intentMove, to: step}
				}
			}
		} else {
			a.rescueTarget = 0
		}
	}

	// 3. Head for the nearest known exit, avoiding visible hazard.
	if a.Status == StatusPanicked && r.rng.Float64() < panicRandomStepChance {
		if step, ok := r.wanderStep(a); ok {
			return intent{kind: intentMove, to: step}
		}
	}
	if exit, ok := a.nearestKnownExit(); ok {
		if step, ok := r.stepToward(a, exit); ok {
			return intent{kind: intentMove, to: step}
		}
		return intent{kind: intentStay}
	}

	// No exit known: put distance between self and visible fire.
	if step, ok := r.fleeStep(a); ok {
		return intent{kind: intentMove, to: step}
	}
	if step, ok := r.wanderStep(a); ok {
		return intent{kind: intentMove, to: step}
	}
	return intent{kind: intentStay}
}

// updateMood applies the panic transitions: fire in view with no known
// exit panics a healthy agent; learning an exit calms a panicked one.
func (r *Run) updateMood(a *Agent) {
	switch a.Status {
	case StatusHealthy:
		if len(a.view.Fires) > 0 && !a.KnowsExit() {
			r.setStatus(a, StatusPanicked)
		}
	case StatusPanicked:
		if a.KnowsExit() {
			r.setStatus(a, StatusHealthy)
		}
	}
}

// visibleIncapacitated returns the nearest visible agent awaiting rescue,
// or nil. Agents already claimed by another helper are skipped.
func (r *Run) visibleIncapacitated(a *Agent) *Agent {
	var best *Agent
	bestD := -1
	for _, id := range a.view.Agents {
		other := r.agentsByID[id]
		if other == nil || other.Status != StatusIncapacitated {
			continue
		}
		if r.claimed[id] != 0 && r.claimed[id] != a.ID {
			continue
		}
		d := chebyshev(a.Pos, other.Pos)
		if bestD < 0 || d < bestD {
			best, bestD = other, d
		}
	}
	return best
}

// hazardAdjacent reports whether any burning cell touches c.
func (r *Run) hazardAdjacent(c Coord) bool {
	var nbuf [8]Coord
	for _, n := range r.grid.Neighbors(c, nbuf[:0]) {
		if r.grid.at(n).Fire {
			return true
		}
	}
	return false
}

// stepToward picks the adjacent cell that best approaches target:
// passable, never into fire while an alternative exists, lower smoke
// preferred, and strictly deterministic tie-breaks via the fixed
// neighbor scan order.
func (r *Run) stepToward(a *Agent, target Coord) (Coord, bool) {
	var nbuf [8]Coord
	var best Coord
	bestScore := 0
	found := false
	for _, n := range r.grid.Neighbors(a.Pos, nbuf[:0]) {
		if !r.grid.IsPassable(n) {
			continue
		}
		score := stepScore(r.grid, n, target)
		if !found || score < bestScore {
			best, bestScore, found = n, score, true
		}
	}
	if !found {
		return Coord{}, false
	}
	return best, true
}

// stepScore ranks a candidate step: distance dominates, then fire, then
// smoke. Fire carries a penalty large enough that an agent only ever
// steps into flames when every approach burns.
func stepScore(g *Grid, to, target Coord) int {
	score := chebyshev(to, target) * 16
	cell := g.at(to)
	if cell.Fire {
		score += 4096
	}
	score += int(cell.Smoke) * 4
	return score
}

// fleeStep maximizes distance from the nearest visible burning cell.
// Returns false when no fire is visible or no step improves distance.
func (r *Run) fleeStep(a *Agent) (Coord, bool) {
	fire, ok := a.view.NearestFire()
	if !ok {
		return Coord{}, false
	}
	var nbuf [8]Coord
	best := a.Pos
	bestD := chebyshev(a.Pos, fire)
	for _, n := range r.grid.Neighbors(a.Pos, nbuf[:0]) {
		if !r.grid.IsPassable(n) || r.grid.at(n).Fire {
			continue
		}
		if d := chebyshev(n, fire); d > bestD {
			best, bestD = n, d
		}
	}
	if best == a.Pos {
		return Coord{}, false
	}
	return best, true
}

// wanderStep picks a uniformly random passable neighbor.
func (r *Run) wanderStep(a *Agent) (Coord, bool) {
	var nbuf [8]Coord
	var open []Coord
	for _, n := range r.grid.Neighbors(a.Pos, nbuf[:0]) {
		if r.grid.IsPassable(n) && !r.grid.at(n).Fire {
			open = append(open, n)
		}
	}
	if len(open) == 0 {
		return Coord{}, false
	}
	return open[r.rng.Intn(len(open))], true
}
