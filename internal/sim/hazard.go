package sim

import "math/rand"

// Hazard constants. These are behaviorally load-bearing: comparative
// collaboration-factor experiments are only meaningful if they stay
// stable between runs, so change them deliberately.
const (
	// Per-tick chance that a burning cell ignites one non-wall neighbor.
	fireSpreadChanceFloor     = 0.08
	fireSpreadChanceFurniture = 0.25 // furniture is flammable and catches faster

	// Smoke exposure accounting. Heavy smoke adds one exposure point per
	// tick; a mobile agent collapses at the first threshold and an
	// incapacitated agent suffocates at the second.
	exposureIncapacitate = 6
	exposureDeath        = 12
)

// advanceHazard grows fire and smoke by one tick. Fire ignition draws
// from rng in a fixed scan order (row-major over burning cells, fixed
// neighbor order), so runs are reproducible given the seed.
//
// Smoke is strictly monotonic: levels are only ever raised. A burning
// cell saturates itself and pushes one level into each non-wall
// neighbor; away from fire, smoke creeps into any cell with at least
// two strictly smokier neighbors.
func advanceHazard(g *Grid, rng *rand.Rand) {
	// Collect burning cells first: cells ignited this tick must not
	// spread or smoke until the next tick.
	var burning []Coord
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.at(Coord{x, y}).Fire {
				burning = append(burning, Coord{x, y})
			}
		}
	}
	if len(burning) == 0 {
		return // nothing ignited yet: hazard update is a no-op
	}

	// Smoke creep is computed against pre-tick levels so a wave cannot
	// cross the whole grid in one tick.
	prev := make([]SmokeLevel, len(g.cells))
	for i := range g.cells {
		prev[i] = g.cells[i].Smoke
	}

	var nbuf []Coord
	for _, c := range burning {
		cell := g.at(c)
		raiseSmoke(cell, SmokeHeavy)
		nbuf = g.Neighbors(c, nbuf)
		for _, n := range nbuf {
			ncell := g.at(n)
			if ncell.Kind == KindWall {
				continue
			}
			raiseSmoke(ncell, prev[n.Y*g.Width+n.X]+1)
			if ncell.Fire {
				continue
			}
			chance := fireSpreadChanceFloor
			if ncell.Kind == KindFurniture {
				chance = fireSpreadChanceFurniture
			}
			if rng.Float64() < chance {
				ncell.Fire = true
			}
		}
	}

	// Diffusion: pre-tick comparison, applied after fire smoke.
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := Coord{x, y}
			cell := g.at(c)
			if cell.Kind == KindWall || cell.Smoke >= SmokeHeavy {
				continue
			}
			own := prev[y*g.Width+x]
			smokier := 0
			nbuf = g.Neighbors(c, nbuf)
			for _, n := range nbuf {
				if prev[n.Y*g.Width+n.X] > own {
					smokier++
				}
			}
			if smokier >= 2 {
				raiseSmoke(cell, own+1)
			}
		}
	}
}

// raiseSmoke lifts a cell's smoke to at least level, clamped to heavy.
// Never lowers it.
func raiseSmoke(cell *Cell, level SmokeLevel) {
	if level > SmokeHeavy {
		level = SmokeHeavy
	}
	if cell.Smoke < level {
		cell.Smoke = level
	}
}

// igniteAt marks a configured ignition point. Walls cannot burn.
func igniteAt(g *Grid, c Coord) error {
	cell, err := g.CellAt(c)
	if err != nil {
		return err
	}
	if cell.Kind == KindWall {
		return configErrorf("ignitions", "ignition point (%d,%d) is a wall", c.X, c.Y)
	}
	cell.Fire = true
	raiseSmoke(cell, SmokeHeavy)
	return nil
}
