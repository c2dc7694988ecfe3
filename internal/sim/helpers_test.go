package sim

import (
	"strings"
	"testing"
)

// mustParse builds a grid straight from a plan literal, without the
// at-least-one-exit rule ParseFloorplan enforces: focused hazard and LOS
// tests often use exit-less corridors.
func mustParse(t *testing.T, plan string) *Grid {
	t.Helper()
	var rows []string
	for _, line := range strings.Split(plan, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line != "" {
			rows = append(rows, line)
		}
	}
	if len(rows) == 0 {
		t.Fatal("empty plan literal")
	}
	g := NewGrid(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != g.Width {
			t.Fatalf("plan line %d is %d cells wide, expected %d", y, len(row), g.Width)
		}
		for x := range row {
			c := Coord{x, y}
			switch row[x] {
			case symWall:
				g.setKind(c, KindWall)
			case symFurniture:
				g.setKind(c, KindFurniture)
			case symExit:
				g.setKind(c, KindExit)
			case symFloor:
				g.setKind(c, KindFloor)
			default:
				t.Fatalf("unknown plan symbol %q at (%d,%d)", row[x], x, y)
			}
		}
	}
	return g
}

// arrange teleports the first len(coords) agents to fixed positions so a
// test can build an exact tableau regardless of random spawn placement.
func arrange(t *testing.T, r *Run, coords ...Coord) {
	t.Helper()
	for i := range coords {
		a := r.agents[i]
		if err := r.grid.RemoveAgent(a.ID, a.Pos); err != nil {
			t.Fatalf("remove agent %d: %v", a.ID, err)
		}
	}
	for i, c := range coords {
		a := r.agents[i]
		if err := r.grid.PlaceAgent(a.ID, c); err != nil {
			t.Fatalf("place agent %d at %v: %v", a.ID, c, err)
		}
		a.Pos = c
	}
}

// mustRun builds a run, failing the test on config errors.
func mustRun(t *testing.T, cfg Config) *Run {
	t.Helper()
	r, err := NewRun(cfg)
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	return r
}

// checkConservation verifies active + escaped + dead == initial.
func checkConservation(t *testing.T, r *Run) {
	t.Helper()
	active := 0
	for _, a := range r.Agents() {
		if !a.Status.Terminal() {
			active++
		}
	}
	if total := active + r.escaped + r.dead; total != len(r.Agents()) {
		t.Errorf("tick %d: conservation broken: active=%d escaped=%d dead=%d initial=%d",
			r.Tick(), active, r.escaped, r.dead, len(r.Agents()))
	}
}

// checkExclusion verifies at most one agent per cell and that every
// non-terminal agent's recorded position matches grid occupancy.
func checkExclusion(t *testing.T, r *Run) {
	t.Helper()
	seen := map[int]Coord{}
	g := r.Grid()
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := Coord{x, y}
			id := g.at(c).Agent
			if id == 0 {
				continue
			}
			if prev, dup := seen[id]; dup {
				t.Fatalf("tick %d: agent %d occupies both %v and %v", r.Tick(), id, prev, c)
			}
			seen[id] = c
		}
	}
	for _, a := range r.Agents() {
		if a.Status.Terminal() {
			continue
		}
		if pos, ok := seen[a.ID]; !ok || pos != a.Pos {
			t.Fatalf("tick %d: agent %d at %v but grid says %v (found=%v)",
				r.Tick(), a.ID, a.Pos, pos, ok)
		}
	}
}

// checkSmokeMonotone compares per-cell smoke against a previous sample
// and returns the new sample.
func checkSmokeMonotone(t *testing.T, r *Run, prev []SmokeLevel) []SmokeLevel {
	t.Helper()
	g := r.Grid()
	cur := make([]SmokeLevel, len(g.cells))
	for i, c := range g.cells {
		cur[i] = c.Smoke
		if prev != nil && c.Smoke < prev[i] {
			t.Errorf("tick %d: smoke decreased at cell %d: %s -> %s",
				r.Tick(), i, prev[i], c.Smoke)
		}
	}
	return cur
}
