package sim

import (
	"math/rand"
	"strings"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Floorplan symbols, one rune per cell.
const (
	symWall      = '#'
	symFloor     = '.'
	symFurniture = 'F'
	symExit      = 'E'
)

// Furniture generation tuning. Noise above the threshold becomes clutter,
// so the threshold directly controls how crowded generated plans are.
const (
	furnitureNoiseThreshold = 0.68
	furnitureNoiseScale     = 0.35
	partitionSpacing        = 7 // interior wall every N columns
	doorGapEvery            = 4 // gap every N cells along a partition
)

// ParseFloorplan builds a grid from a textual plan. Lines must be equal
// length; at least one exit is required. Whitespace-only leading and
// trailing lines are ignored.
func ParseFloorplan(plan string) (*Grid, error) {
	var rows []string
	for _, line := range strings.Split(plan, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		rows = append(rows, line)
	}
	if len(rows) == 0 {
		return nil, configErrorf("floorplan", "plan is empty")
	}
	width := len(rows[0])
	for i, r := range rows {
		if len(r) != width {
			return nil, configErrorf("floorplan", "line %d is %d cells wide, expected %d", i, len(r), width)
		}
	}

	g := NewGrid(width, len(rows))
	for y, row := range rows {
		for x, sym := range row {
			c := Coord{x, y}
			switch sym {
			case symWall:
				g.setKind(c, KindWall)
			case symFloor:
				g.setKind(c, KindFloor)
			case symFurniture:
				g.setKind(c, KindFurniture)
			case symExit:
				g.setKind(c, KindExit)
			default:
				return nil, configErrorf("floorplan", "unknown symbol %q at (%d,%d)", sym, x, y)
			}
		}
	}
	if len(g.exits) == 0 {
		return nil, configErrorf("floorplan", "plan has no exits")
	}
	return g, nil
}

// GenerateFloorplan procedurally builds an office-like plan: perimeter
// walls with exits cut into them, sparse interior partitions with door
// gaps, and furniture clutter where layered simplex noise runs high.
// Deterministic for a given seed.
func GenerateFloorplan(width, height int, exits int, seed int64) (*Grid, error) {
	if width < 6 || height < 6 {
		return nil, configErrorf("floorplan", "generated plan needs at least 6x6 cells, got %dx%d", width, height)
	}
	if exits < 1 {
		return nil, configErrorf("floorplan", "generated plan needs at least one exit")
	}

	g := NewGrid(width, height)
	noise := opensimplex.NewNormalized(seed)
	rng := rand.New(rand.NewSource(seed + 1))

	// Perimeter walls.
	for x := 0; x < width; x++ {
		g.setKind(Coord{x, 0}, KindWall)
		g.setKind(Coord{x, height - 1}, KindWall)
	}
	for y := 0; y < height; y++ {
		g.setKind(Coord{0, y}, KindWall)
		g.setKind(Coord{width - 1, y}, KindWall)
	}

	// Interior partitions with door gaps.
	for x := partitionSpacing; x < width-2; x += partitionSpacing {
		for y := 1; y < height-1; y++ {
			if y%doorGapEvery == 0 {
				continue // doorway
			}
			g.setKind(Coord{x, y}, KindWall)
		}
	}

	// Furniture from octave noise, skipping cells already walled.
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			c := Coord{x, y}
			if g.at(c).Kind != KindFloor {
				continue
			}
			n := octaveNoise(noise, float64(x)*furnitureNoiseScale, float64(y)*furnitureNoiseScale, 3, 1.0, 0.5)
			if n > furnitureNoiseThreshold {
				g.setKind(c, KindFurniture)
			}
		}
	}

	// Cut exits into the perimeter at random non-corner positions.
	for placed := 0; placed < exits; {
		var c Coord
		if rng.Intn(2) == 0 {
			x := 1 + rng.Intn(width-2)
			y := 0
			if rng.Intn(2) == 0 {
				y = height - 1
			}
			c = Coord{x, y}
		} else {
			y := 1 + rng.Intn(height-2)
			x := 0
			if rng.Intn(2) == 0 {
				x = width - 1
			}
			c = Coord{x, y}
		}
		if g.at(c).Kind == KindExit {
			continue
		}
		g.at(c).Kind = KindFloor // clear the wall before re-marking
		g.setKind(c, KindExit)
		placed++
	}
	return g, nil
}

// octaveNoise layers simplex noise octaves for a more natural clutter
// distribution than single-frequency noise.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxValue := 0.0
	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxValue += amplitude
		amplitude *= persistence
		frequency *= 2
	}
	return total / maxValue
}

// FormatFloorplan renders the grid terrain back to text, mainly for
// debugging generated plans.
func FormatFloorplan(g *Grid) string {
	var sb strings.Builder
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			switch g.at(Coord{x, y}).Kind {
			case KindWall:
				sb.WriteByte(symWall)
			case KindFurniture:
				sb.WriteByte(symFurniture)
			case KindExit:
				sb.WriteByte(symExit)
			default:
				sb.WriteByte(symFloor)
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
