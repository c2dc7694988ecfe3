package main

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/evac-lab/evacsim/internal/sim"
)

// hudHeight is the pixel strip below the grid reserved for status text.
const hudHeight = 72

var (
	floorCol     = color.RGBA{R: 38, G: 38, B: 42, A: 255}
	wallCol      = color.RGBA{R: 16, G: 16, B: 18, A: 255}
	furnitureCol = color.RGBA{R: 92, G: 64, B: 36, A: 255}
	exitCol      = color.RGBA{R: 40, G: 160, B: 70, A: 255}
	fireCol      = color.RGBA{R: 230, G: 90, B: 20, A: 255}

	lightSmokeCol = color.RGBA{R: 140, G: 140, B: 140, A: 90}
	heavySmokeCol = color.RGBA{R: 110, G: 110, B: 110, A: 185}

	statusCols = map[sim.Status]color.RGBA{
		sim.StatusHealthy:       {R: 120, G: 190, B: 255, A: 255},
		sim.StatusPanicked:      {R: 250, G: 210, B: 60, A: 255},
		sim.StatusIncapacitated: {R: 170, G: 70, B: 190, A: 255},
		sim.StatusBeingRescued:  {R: 80, G: 230, B: 220, A: 255},
	}
)

// viewer renders one run and owns its playback controls.
type viewer struct {
	cfg  sim.Config
	run  *sim.Run
	cell int

	simSpeed  float64 // ticks per frame: 0 = paused
	tickAccum float64
	prevKeys  map[ebiten.Key]bool

	notice      string // transient HUD message (clipboard feedback)
	noticeFrame int
}

func newViewer(cfg sim.Config, cell int) (*viewer, error) {
	run, err := sim.NewRun(cfg)
	if err != nil {
		return nil, err
	}
	return &viewer{
		cfg:      cfg,
		run:      run,
		cell:     cell,
		simSpeed: 0.25, // gentle default so the spread is watchable
		prevKeys: make(map[ebiten.Key]bool),
	}, nil
}

func (v *viewer) windowSize() (int, int) {
	g := v.run.Grid()
	return g.Width * v.cell, g.Height*v.cell + hudHeight
}

func (v *viewer) Update() error {
	v.handleInput()

	if v.simSpeed <= 0 || v.run.Done() {
		return nil
	}
	v.tickAccum += v.simSpeed
	for v.tickAccum >= 1.0 {
		v.tickAccum -= 1.0
		v.run.Step()
	}
	return nil
}

// handleInput processes playback keys, edge-triggered.
func (v *viewer) handleInput() {
	keys := []ebiten.Key{
		ebiten.KeySpace, ebiten.KeyEqual, ebiten.KeyMinus,
		ebiten.KeyN, ebiten.KeyR, ebiten.KeyC,
	}
	current := map[ebiten.Key]bool{}
	for _, k := range keys {
		current[k] = ebiten.IsKeyPressed(k)
	}
	pressed := func(k ebiten.Key) bool { return current[k] && !v.prevKeys[k] }

	switch {
	case pressed(ebiten.KeySpace):
		if v.simSpeed > 0 {
			v.simSpeed = 0
		} else {
			v.simSpeed = 0.25
		}
	case pressed(ebiten.KeyEqual):
		if v.simSpeed == 0 {
			v.simSpeed = 0.25
		} else if v.simSpeed < 8 {
			v.simSpeed *= 2
		}
	case pressed(ebiten.KeyMinus):
		if v.simSpeed > 0.125 {
			v.simSpeed /= 2
		}
	case pressed(ebiten.KeyN):
		v.cfg.Seed++
		v.restart()
	case pressed(ebiten.KeyR):
		v.restart()
	case pressed(ebiten.KeyC):
		v.copyReport()
	}

	v.prevKeys = current
	if v.noticeFrame > 0 {
		v.noticeFrame--
		if v.noticeFrame == 0 {
			v.notice = ""
		}
	}
}

func (v *viewer) restart() {
	run, err := sim.NewRun(v.cfg)
	if err != nil {
		// The config was valid once; a reseed cannot invalidate it unless
		// the generated plan leaves too few floor cells.
		v.notice = fmt.Sprintf("restart failed: %v", err)
		v.noticeFrame = 240
		return
	}
	v.run = run
	v.tickAccum = 0
}

// copyReport puts the run summary and full event log on the clipboard.
func (v *viewer) copyReport() {
	var sb strings.Builder
	sum := v.run.Summary()
	fmt.Fprintf(&sb, "seed=%d collab=%.2f tick=%d reason=%s\n",
		v.cfg.Seed, v.cfg.Collaboration, v.run.Tick(), sum.Reason)
	fmt.Fprintf(&sb, "escaped=%d/%d dead=%d down=%d\n\n",
		sum.Escaped, sum.Initial, sum.Dead, sum.Incapacitated)
	sb.WriteString(v.run.Log.Format())

	if err := clipboard.WriteAll(sb.String()); err != nil {
		v.notice = fmt.Sprintf("clipboard: %v", err)
	} else {
		v.notice = "report copied to clipboard"
	}
	v.noticeFrame = 240
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 10, G: 10, B: 12, A: 255})

	g := v.run.Grid()
	cs := float32(v.cell)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			cell, err := g.CellAt(sim.Coord{X: x, Y: y})
			if err != nil {
				continue
			}
			px, py := float32(x)*cs, float32(y)*cs

			base := floorCol
			switch cell.Kind {
			case sim.KindWall:
				base = wallCol
			case sim.KindFurniture:
				base = furnitureCol
			case sim.KindExit:
				base = exitCol
			}
			vector.FillRect(screen, px, py, cs, cs, base, false)

			if cell.Fire {
				vector.FillRect(screen, px+1, py+1, cs-2, cs-2, fireCol, false)
			}
			switch cell.Smoke {
			case sim.SmokeLight:
				vector.FillRect(screen, px, py, cs, cs, lightSmokeCol, false)
			case sim.SmokeHeavy:
				vector.FillRect(screen, px, py, cs, cs, heavySmokeCol, false)
			}
		}
	}

	// Agents on top, as filled circles colored by status.
	for _, a := range v.run.Agents() {
		col, ok := statusCols[a.Status]
		if !ok {
			continue // escaped and dead agents are off the grid
		}
		cx := float32(a.Pos.X)*cs + cs/2
		cy := float32(a.Pos.Y)*cs + cs/2
		vector.FillCircle(screen, cx, cy, cs*0.35, col, true)
	}

	v.drawHUD(screen, g.Height*v.cell)
}

func (v *viewer) drawHUD(screen *ebiten.Image, top int) {
	counts := v.run.StatusCounts()
	line1 := fmt.Sprintf("tick=%d  speed=%.2fx  seed=%d  collab=%.2f  reason=%s",
		v.run.Tick(), v.simSpeed, v.cfg.Seed, v.cfg.Collaboration, v.run.Reason())
	line2 := fmt.Sprintf("healthy=%d panicked=%d down=%d carried=%d escaped=%d dead=%d",
		counts[sim.StatusHealthy], counts[sim.StatusPanicked],
		counts[sim.StatusIncapacitated], counts[sim.StatusBeingRescued],
		counts[sim.StatusEscaped], counts[sim.StatusDead])
	line3 := "space pause  +/- speed  N reseed  R restart  C copy report"
	if v.notice != "" {
		line3 = v.notice
	}

	ebitenutil.DebugPrintAt(screen, line1, 6, top+6)
	ebitenutil.DebugPrintAt(screen, line2, 6, top+24)
	ebitenutil.DebugPrintAt(screen, line3, 6, top+42)
}

func (v *viewer) Layout(_, _ int) (int, int) {
	return v.windowSize()
}
