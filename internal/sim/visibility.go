package sim

// View is what one agent perceives this tick: the visible cell set plus
// indexes over its hazard-relevant contents. Smoke makes the set
// asymmetric and directional — a heavy plume eats the vision budget on
// the rays that cross it while leaving other directions clear.
type View struct {
	Origin  Coord
	Visible map[Coord]struct{}
	Fires   []Coord // visible burning cells
	Exits   []Coord // visible exit cells
	Agents  []int   // ids of visible agents, observer excluded
}

// Sees reports whether c is in the visible set.
func (v *View) Sees(c Coord) bool {
	_, ok := v.Visible[c]
	return ok
}

// NearestFire returns the closest visible burning cell by Chebyshev
// distance, or false when no fire is visible.
func (v *View) NearestFire() (Coord, bool) {
	return nearestOf(v.Origin, v.Fires)
}

// NearestExit returns the closest visible exit, or false if none.
func (v *View) NearestExit() (Coord, bool) {
	return nearestOf(v.Origin, v.Exits)
}

func nearestOf(from Coord, cands []Coord) (Coord, bool) {
	if len(cands) == 0 {
		return Coord{}, false
	}
	best := cands[0]
	bestD := chebyshev(from, best)
	for _, c := range cands[1:] {
		if d := chebyshev(from, c); d < bestD {
			best, bestD = c, d
		}
	}
	return best, true
}

// ComputeView ray-casts from origin out to radius and collects everything
// an observer there can perceive. Each candidate cell is judged by its
// own rasterized ray from the observer: a wall or an exhausted budget
// anywhere before the target hides it, no matter what neighboring rays
// can see. The ray buffer is reused across candidates to keep the scan
// allocation-free.
func ComputeView(g *Grid, origin Coord, radius int) *View {
	v := &View{
		Origin:  origin,
		Visible: make(map[Coord]struct{}),
	}
	if !g.InBounds(origin) {
		return v
	}
	v.Visible[origin] = struct{}{}

	var ray []Coord
	minX, maxX := origin.X-radius, origin.X+radius
	minY, maxY := origin.Y-radius, origin.Y+radius
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			c := Coord{x, y}
			if c == origin || !g.InBounds(c) {
				continue
			}
			ray = Line(origin, c, ray)
			if targetVisible(g, ray, radius) {
				v.Visible[c] = struct{}{}
			}
		}
	}

	// Collect in row-major scan order, not map order: nearest-of ties must
	// break the same way every run for reproducibility.
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			c := Coord{x, y}
			if !g.InBounds(c) || !v.Sees(c) {
				continue
			}
			cell := g.at(c)
			if cell.Fire {
				v.Fires = append(v.Fires, c)
			}
			if cell.Kind == KindExit {
				v.Exits = append(v.Exits, c)
			}
			if cell.Agent != 0 && c != origin {
				v.Agents = append(v.Agents, cell.Agent)
			}
		}
	}
	return v
}
