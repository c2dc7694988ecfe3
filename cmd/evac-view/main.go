// evac-view is the interactive viewer: it renders a single evacuation
// run and lets you pause, change speed, reseed, and copy the run report
// to the clipboard.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/evac-lab/evacsim/internal/sim"
)

func main() {
	var (
		humans   int
		collab   float64
		seed     int64
		width    int
		height   int
		exits    int
		floor    string
		ticks    int
		cellSize int
	)
	flag.IntVar(&humans, "humans", 20, "number of evacuees")
	flag.Float64Var(&collab, "collab", 0.5, "collaboration factor in [0,1]")
	flag.Int64Var(&seed, "seed", 42, "RNG seed")
	flag.IntVar(&width, "width", 40, "generated floorplan width")
	flag.IntVar(&height, "height", 25, "generated floorplan height")
	flag.IntVar(&exits, "exits", 2, "generated floorplan exit count")
	flag.StringVar(&floor, "floor", "", "floorplan file (overrides generation)")
	flag.IntVar(&ticks, "ticks", 500, "tick budget")
	flag.IntVar(&cellSize, "cell", 24, "cell size in pixels")
	flag.Parse()

	cfg := sim.Config{
		GenWidth:      width,
		GenHeight:     height,
		GenExits:      exits,
		Humans:        humans,
		Collaboration: collab,
		Seed:          seed,
		MaxTicks:      ticks,
	}
	if floor != "" {
		data, err := os.ReadFile(floor)
		if err != nil {
			slog.Error("read floorplan", "path", floor, "err", err)
			os.Exit(1)
		}
		cfg.Floorplan = string(data)
	}

	v, err := newViewer(cfg, cellSize)
	if err != nil {
		slog.Error("start run", "err", err)
		os.Exit(1)
	}

	ebiten.SetWindowTitle("Evacuation Sim")
	ebiten.SetWindowSize(v.windowSize())
	if err := ebiten.RunGame(v); err != nil {
		slog.Error("viewer exited", "err", err)
		os.Exit(1)
	}
}
