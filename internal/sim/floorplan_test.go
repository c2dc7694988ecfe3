package sim

import (
	"strings"
	"testing"
)

func TestParseFloorplan_Valid(t *testing.T) {
	g, err := ParseFloorplan(`
#####
#..F#
#..E#
#####
`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if g.Width != 5 || g.Height != 4 {
		t.Fatalf("got %dx%d, want 5x4", g.Width, g.Height)
	}
	if len(g.Exits()) != 1 || g.Exits()[0] != (Coord{3, 2}) {
		t.Fatalf("exit set wrong: %v", g.Exits())
	}
	if g.at(Coord{3, 1}).Kind != KindFurniture {
		t.Error("expected furniture at (3,1)")
	}
}

func TestParseFloorplan_Rejects(t *testing.T) {
	cases := []struct {
		name string
		plan string
	}{
		{"empty", "   \n  \n"},
		{"ragged", "###\n####\n"},
		{"no_exits", "###\n#.#\n###\n"},
		{"bad_symbol", "###\n#xE\n###\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseFloorplan(tc.plan)
			if err == nil {
				t.Fatal("expected a config error")
			}
			if _, ok := err.(*ConfigError); !ok {
				t.Fatalf("expected *ConfigError, got %T: %v", err, err)
			}
		})
	}
}

func TestGenerateFloorplan_Properties(t *testing.T) {
	g, err := GenerateFloorplan(30, 20, 3, 42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(g.Exits()) != 3 {
		t.Fatalf("wanted 3 exits, got %d", len(g.Exits()))
	}
	// Perimeter is wall except where exits were cut.
	for x := 0; x < g.Width; x++ {
		for _, y := range []int{0, g.Height - 1} {
			k := g.at(Coord{x, y}).Kind
			if k != KindWall && k != KindExit {
				t.Errorf("perimeter cell (%d,%d) is %s", x, y, k)
			}
		}
	}
	// Exits sit on the perimeter.
	for _, e := range g.Exits() {
		if e.X != 0 && e.X != g.Width-1 && e.Y != 0 && e.Y != g.Height-1 {
			t.Errorf("exit %v not on perimeter", e)
		}
	}
	// There is open floor to walk on.
	floor := 0
	for y := 1; y < g.Height-1; y++ {
		for x := 1; x < g.Width-1; x++ {
			if g.at(Coord{x, y}).Kind == KindFloor {
				floor++
			}
		}
	}
	if floor < (g.Width*g.Height)/4 {
		t.Errorf("generated plan too cluttered: only %d floor cells", floor)
	}
}

func TestGenerateFloorplan_Deterministic(t *testing.T) {
	a, err := GenerateFloorplan(25, 15, 2, 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	b, err := GenerateFloorplan(25, 15, 2, 7)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if FormatFloorplan(a) != FormatFloorplan(b) {
		t.Error("same seed must generate identical plans")
	}
	c, err := GenerateFloorplan(25, 15, 2, 8)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if FormatFloorplan(a) == FormatFloorplan(c) {
		t.Error("different seeds should generate different plans")
	}
}

func TestFormatFloorplan_RoundTrip(t *testing.T) {
	plan := "#####\n#..F#\n#E..#\n#####\n"
	g, err := ParseFloorplan(plan)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := FormatFloorplan(g); got != plan {
		t.Errorf("round trip mismatch:\ngot:\n%s\nwant:\n%s", got, plan)
	}
	if !strings.Contains(FormatFloorplan(g), "E") {
		t.Error("formatted plan lost the exit")
	}
}
