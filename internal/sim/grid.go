package sim

// CellKind identifies the fixed terrain of a cell.
type CellKind uint8

const (
	KindFloor     CellKind = iota // open walkable floor
	KindWall                      // structural wall: blocks movement, LOS, fire
	KindFurniture                 // walk-around obstacle, burns readily
	KindExit                      // fire exit: an agent stepping here escapes
)

func (k CellKind) String() string {
	switch k {
	case KindFloor:
		return "floor"
	case KindWall:
		return "wall"
	case KindFurniture:
		return "furniture"
	case KindExit:
		return "exit"
	default:
		return "unknown"
	}
}

// SmokeLevel is an ordered smoke density. It only ever increases.
type SmokeLevel uint8

const (
	SmokeNone SmokeLevel = iota
	SmokeLight
	SmokeHeavy
)

func (s SmokeLevel) String() string {
	switch s {
	case SmokeNone:
		return "none"
	case SmokeLight:
		return "light"
	case SmokeHeavy:
		return "heavy"
	default:
		return "unknown"
	}
}

// visionCost is the extra vision budget consumed when a ray traverses
// smoke of this level, on top of the base cost of 1 per cell.
func (s SmokeLevel) visionCost() int {
	switch s {
	case SmokeLight:
		return 1
	case SmokeHeavy:
		return 3
	default:
		return 0
	}
}

// Coord is an integer grid coordinate. X is the column, Y the row.
type Coord struct {
	X int
	Y int
}

// neighborOffsets is the fixed 8-connected (Moore) neighborhood, in a
// stable order so iteration-dependent tie-breaks are deterministic.
var neighborOffsets = [8]Coord{
	{0, -1}, {1, -1}, {1, 0}, {1, 1},
	{0, 1}, {-1, 1}, {-1, 0}, {-1, -1},
}

// chebyshev returns the Chebyshev (king-move) distance between a and b,
// the natural metric on an 8-connected grid.
func chebyshev(a, b Coord) int {
	dx := a.X - b.X
	if dx < 0 {
		dx = -dx
	}
	dy := a.Y - b.Y
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}

// Cell is one grid cell: fixed terrain plus mutable hazard and occupancy.
type Cell struct {
	Kind  CellKind
	Fire  bool
	Smoke SmokeLevel
	Agent int // occupying agent id, 0 = empty
}

// Grid is the shared floor-plan substrate. Dimensions, terrain, and the
// exit set are fixed at construction; fire, smoke, and agent occupancy
// mutate during the run. All agent position changes must go through
// PlaceAgent / MoveAgent / RemoveAgent so the one-agent-per-cell
// invariant holds.
type Grid struct {
	Width  int
	Height int
	cells  []Cell  // row-major: index = y*Width + x
	exits  []Coord // collected at construction, immutable
}

// NewGrid creates a grid of open floor.
func NewGrid(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		cells:  make([]Cell, width*height),
	}
}

// InBounds reports whether c lies on the grid.
func (g *Grid) InBounds(c Coord) bool {
	return c.X >= 0 && c.X < g.Width && c.Y >= 0 && c.Y < g.Height
}

// CellAt returns a pointer to the cell at c, or ErrInvalidCoordinate.
func (g *Grid) CellAt(c Coord) (*Cell, error) {
	if !g.InBounds(c) {
		return nil, ErrInvalidCoordinate
	}
	return &g.cells[c.Y*g.Width+c.X], nil
}

// at is the unchecked accessor for internal hot paths. Callers must have
// bounds-checked c already.
func (g *Grid) at(c Coord) *Cell {
	return &g.cells[c.Y*g.Width+c.X]
}

// setKind fixes the terrain of a cell during construction.
func (g *Grid) setKind(c Coord, k CellKind) {
	if !g.InBounds(c) {
		return
	}
	cell := g.at(c)
	cell.Kind = k
	if k == KindExit {
		g.exits = append(g.exits, c)
	}
}

// Exits returns the immutable exit set.
func (g *Grid) Exits() []Coord {
	return g.exits
}

// IsPassable reports whether an agent may step into c: in bounds, not a
// wall or furniture, and either unoccupied or an exit (exits never block
// because arriving agents leave the grid immediately).
func (g *Grid) IsPassable(c Coord) bool {
	if !g.InBounds(c) {
		return false
	}
	cell := g.at(c)
	switch cell.Kind {
	case KindWall, KindFurniture:
		return false
	case KindExit:
		return true
	}
	return cell.Agent == 0
}

// Neighbors appends the in-bounds 8-connected neighbors of c to dst and
// returns it. Passing a reused slice avoids per-call allocation.
func (g *Grid) Neighbors(c Coord, dst []Coord) []Coord {
	dst = dst[:0]
	for _, off := range neighborOffsets {
		n := Coord{c.X + off.X, c.Y + off.Y}
		if g.InBounds(n) {
			dst = append(dst, n)
		}
	}
	return dst
}

// PlaceAgent puts agent id at c. The cell must be empty walkable floor;
// placing onto a wall or an occupied cell is a programming error.
func (g *Grid) PlaceAgent(id int, c Coord) error {
	if !g.InBounds(c) {
		return ErrInvalidCoordinate
	}
	cell := g.at(c)
	if cell.Kind == KindWall || cell.Kind == KindFurniture {
		invariantf("agent %d placed on %s at (%d,%d)", id, cell.Kind, c.X, c.Y)
	}
	if cell.Agent != 0 && cell.Agent != id {
		invariantf("agent %d placed on cell (%d,%d) occupied by agent %d", id, c.X, c.Y, cell.Agent)
	}
	cell.Agent = id
	return nil
}

// MoveAgent relocates agent id from to dst. Same invariants as PlaceAgent.
func (g *Grid) MoveAgent(id int, from, to Coord) error {
	if !g.InBounds(from) || !g.InBounds(to) {
		return ErrInvalidCoordinate
	}
	src := g.at(from)
	if src.Agent != id {
		invariantf("agent %d moved from (%d,%d) which holds agent %d", id, from.X, from.Y, src.Agent)
	}
	src.Agent = 0
	return g.PlaceAgent(id, to)
}

// RemoveAgent clears agent id from c (escape or death).
func (g *Grid) RemoveAgent(id int, c Coord) error {
	if !g.InBounds(c) {
		return ErrInvalidCoordinate
	}
	cell := g.at(c)
	if cell.Agent != id {
		invariantf("agent %d removed from (%d,%d) which holds agent %d", id, c.X, c.Y, cell.Agent)
	}
	cell.Agent = 0
	return nil
}
