package sim

// Line rasterizes the straight line from a to b inclusive using
// Bresenham's algorithm, appending to dst. The returned cells are
// ordered from a to b, and the cell set is symmetric: Line(a,b) visits
// the same cells as Line(b,a).
func Line(a, b Coord, dst []Coord) []Coord {
	dst = dst[:0]

	x1, y1 := a.X, a.Y
	x2, y2 := b.X, b.Y
	dx := x2 - x1
	dy := y2 - y1

	steep := abs(dy) > abs(dx)
	if steep {
		x1, y1 = y1, x1
		x2, y2 = y2, x2
	}
	swapped := false
	if x1 > x2 {
		x1, x2 = x2, x1
		y1, y2 = y2, y1
		swapped = true
	}
	dx = x2 - x1
	dy = y2 - y1

	errAcc := dx / 2
	ystep := 1
	if y1 >= y2 {
		ystep = -1
	}

	y := y1
	for x := x1; x <= x2; x++ {
		if steep {
			dst = append(dst, Coord{y, x})
		} else {
			dst = append(dst, Coord{x, y})
		}
		errAcc -= abs(dy)
		if errAcc < 0 {
			y += ystep
			errAcc += dx
		}
	}
	if swapped {
		for i, j := 0, len(dst)-1; i < j; i, j = i+1, j-1 {
			dst[i], dst[j] = dst[j], dst[i]
		}
	}
	return dst
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// targetVisible walks the ray from the observer to its final cell and
// reports whether that cell is visible, spending vision budget as it
// goes. Each traversed cell costs 1 plus its smoke cost; once the
// budget is spent the rest of the ray is dark. A wall cell is itself
// visible but blocks everything beyond it, so a wall strictly between
// observer and target always hides the target. The observer's own cell
// is free.
func targetVisible(g *Grid, ray []Coord, budget int) bool {
	for i, c := range ray {
		if !g.InBounds(c) {
			return false
		}
		if i == 0 {
			continue
		}
		cell := g.at(c)
		budget -= 1 + cell.Smoke.visionCost()
		if budget < 0 {
			return false
		}
		if cell.Kind == KindWall {
			return i == len(ray)-1
		}
	}
	return true
}
