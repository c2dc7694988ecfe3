package sim

import (
	"errors"
	"testing"
)

func TestGrid_OutOfBounds(t *testing.T) {
	g := NewGrid(5, 5)
	if _, err := g.CellAt(Coord{5, 0}); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if _, err := g.CellAt(Coord{0, -1}); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
	if err := g.PlaceAgent(1, Coord{-1, 2}); !errors.Is(err, ErrInvalidCoordinate) {
		t.Fatalf("expected ErrInvalidCoordinate, got %v", err)
	}
}

func TestGrid_Passability(t *testing.T) {
	g := mustParse(t, `
#####
#.FE#
#####
`)
	if g.IsPassable(Coord{0, 0}) {
		t.Error("wall should not be passable")
	}
	if g.IsPassable(Coord{2, 1}) {
		t.Error("furniture should not be passable")
	}
	if !g.IsPassable(Coord{1, 1}) {
		t.Error("open floor should be passable")
	}
	if !g.IsPassable(Coord{3, 1}) {
		t.Error("exit should be passable")
	}

	// Occupied floor blocks; occupied exits never do.
	if err := g.PlaceAgent(1, Coord{1, 1}); err != nil {
		t.Fatalf("place: %v", err)
	}
	if g.IsPassable(Coord{1, 1}) {
		t.Error("occupied floor should not be passable")
	}
}

func TestGrid_Neighbors(t *testing.T) {
	g := NewGrid(3, 3)
	var buf []Coord

	if n := g.Neighbors(Coord{1, 1}, buf); len(n) != 8 {
		t.Fatalf("center cell should have 8 neighbors, got %d", len(n))
	}
	if n := g.Neighbors(Coord{0, 0}, buf); len(n) != 3 {
		t.Fatalf("corner cell should have 3 neighbors, got %d", len(n))
	}
}

func TestGrid_MoveUpdatesOccupancy(t *testing.T) {
	g := NewGrid(4, 4)
	if err := g.PlaceAgent(7, Coord{1, 1}); err != nil {
		t.Fatalf("place: %v", err)
	}
	if err := g.MoveAgent(7, Coord{1, 1}, Coord{2, 1}); err != nil {
		t.Fatalf("move: %v", err)
	}
	if g.at(Coord{1, 1}).Agent != 0 {
		t.Error("source cell should be empty after move")
	}
	if g.at(Coord{2, 1}).Agent != 7 {
		t.Error("destination cell should hold the agent")
	}
	if err := g.RemoveAgent(7, Coord{2, 1}); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if g.at(Coord{2, 1}).Agent != 0 {
		t.Error("cell should be empty after removal")
	}
}

func TestGrid_PlaceOnWallPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("placing an agent on a wall must panic")
		}
	}()
	g := mustParse(t, `
###
#.#
###
`)
	_ = g.PlaceAgent(1, Coord{0, 0})
}

func TestGrid_DoubleOccupancyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("double occupancy must panic")
		}
	}()
	g := NewGrid(3, 3)
	_ = g.PlaceAgent(1, Coord{1, 1})
	_ = g.PlaceAgent(2, Coord{1, 1})
}
