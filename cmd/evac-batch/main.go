// evac-batch runs headless evacuation sweeps over the collaboration
// factor and reports per-factor aggregates. Results can optionally be
// persisted to SQLite for cross-invocation analysis.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/evac-lab/evacsim/internal/results"
	"github.com/evac-lab/evacsim/internal/sim"
)

type runStats struct {
	runIndex int
	seed     int64
	collab   float64

	summary sim.Summary

	firstPanicTick  int
	firstDownTick   int
	firstDeathTick  int
	firstEscapeTick int

	adopts   int
	abandons int
	revives  int
}

type factorStats struct {
	collab  float64
	runs    []runStats
	humans  int
	escaped int
	dead    int
	adopts  int
	ticks   int
}

func main() {
	var (
		runs     int
		ticks    int
		humans   int
		steps    int
		seedBase int64
		seedStep int64
		width    int
		height   int
		exits    int
		floor    string
		dbPath   string
	)
	flag.IntVar(&runs, "runs", 10, "runs per collaboration factor")
	flag.IntVar(&ticks, "ticks", 500, "tick budget per run")
	flag.IntVar(&humans, "humans", 20, "evacuees per run")
	flag.IntVar(&steps, "steps", 11, "sweep points across collaboration [0,1]")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.IntVar(&width, "width", 40, "generated floorplan width")
	flag.IntVar(&height, "height", 25, "generated floorplan height")
	flag.IntVar(&exits, "exits", 2, "generated floorplan exit count")
	flag.StringVar(&floor, "floor", "", "floorplan file (overrides generation)")
	flag.StringVar(&dbPath, "db", "", "SQLite path for result storage (empty = off)")
	flag.Parse()

	if runs <= 0 || ticks <= 0 || humans <= 0 || steps <= 0 {
		fmt.Println("error: -runs, -ticks, -humans, and -steps must be > 0")
		return
	}

	// One building for the whole sweep: factor comparisons are only
	// meaningful when every run evacuates the same floorplan.
	var plan string
	if floor != "" {
		data, err := os.ReadFile(floor)
		if err != nil {
			slog.Error("read floorplan", "path", floor, "err", err)
			os.Exit(1)
		}
		plan = string(data)
	} else {
		g, err := sim.GenerateFloorplan(width, height, exits, seedBase)
		if err != nil {
			slog.Error("generate floorplan", "err", err)
			os.Exit(1)
		}
		plan = sim.FormatFloorplan(g)
	}

	var db *results.DB
	if dbPath != "" {
		var err error
		db, err = results.Open(dbPath)
		if err != nil {
			slog.Error("open results db", "path", dbPath, "err", err)
			os.Exit(1)
		}
		defer db.Close()
	}

	fmt.Printf("=== Evacuation Sweep Report ===\n")
	fmt.Printf("runs_per_factor=%d ticks=%d humans=%d steps=%d seed_base=%d seed_step=%d\n\n",
		runs, ticks, humans, steps, seedBase, seedStep)

	factors := make([]factorStats, 0, steps)
	runIndex := 0
	for s := 0; s < steps; s++ {
		collab := 0.0
		if steps > 1 {
			collab = float64(s) / float64(steps-1)
		}
		fs := factorStats{collab: collab}
		for i := 0; i < runs; i++ {
			runIndex++
			seed := seedBase + int64(runIndex-1)*seedStep
			cfg := sim.Config{
				Floorplan:     plan,
				Humans:        humans,
				Collaboration: collab,
				Seed:          seed,
				MaxTicks:      ticks,
			}
			rs, err := runOnce(runIndex, collab, cfg)
			if err != nil {
				slog.Error("run failed", "run", runIndex, "seed", seed, "err", err)
				os.Exit(1)
			}
			fs.runs = append(fs.runs, rs)
			fs.humans += rs.summary.Initial
			fs.escaped += rs.summary.Escaped
			fs.dead += rs.summary.Dead
			fs.adopts += rs.adopts
			fs.ticks += rs.summary.Ticks
			if db != nil {
				if err := db.InsertRun(seed, collab, rs.summary); err != nil {
					slog.Error("persist run", "run", runIndex, "err", err)
					os.Exit(1)
				}
			}
		}
		factors = append(factors, fs)
		printFactor(fs)
	}

	printSweepTable(factors)

	if db != nil {
		printStoredSweep(db)
	}
}

func runOnce(runIndex int, collab float64, cfg sim.Config) (runStats, error) {
	r, err := sim.NewRun(cfg)
	if err != nil {
		return runStats{}, err
	}
	sum := r.RunToEnd()

	return runStats{
		runIndex:        runIndex,
		seed:            cfg.Seed,
		collab:          collab,
		summary:         sum,
		firstPanicTick:  r.Log.FirstTick("status", "change", "healthy → panicked"),
		firstDownTick:   r.Log.FirstTick("status", "change", "→ incapacitated"),
		firstDeathTick:  r.Log.FirstTick("status", "died", ""),
		firstEscapeTick: r.Log.FirstTick("status", "escaped", ""),
		adopts:          r.Log.Count("rescue", "adopt"),
		abandons:        r.Log.Count("rescue", "abandon"),
		revives:         r.Log.Count("rescue", "revived"),
	}, nil
}

func printFactor(fs factorStats) {
	fmt.Printf("--- Collaboration %.2f ---\n", fs.collab)
	for _, rs := range fs.runs {
		fmt.Printf("run %3d (seed=%d): escaped=%d/%d dead=%d down=%d ticks=%d reason=%s\n",
			rs.runIndex, rs.seed,
			rs.summary.Escaped, rs.summary.Initial,
			rs.summary.Dead, rs.summary.Incapacitated,
			rs.summary.Ticks, rs.summary.Reason)
		fmt.Printf("  phase_markers: first_panic=%s first_down=%s first_death=%s first_escape=%s\n",
			tickString(rs.firstPanicTick), tickString(rs.firstDownTick),
			tickString(rs.firstDeathTick), tickString(rs.firstEscapeTick))
		fmt.Printf("  rescue_events: adopt=%d abandon=%d revive=%d\n",
			rs.adopts, rs.abandons, rs.revives)
	}
	fmt.Println()
}

func printSweepTable(factors []factorStats) {
	fmt.Println("=== Sweep Aggregate ===")
	fmt.Println("collab  escaped%   dead%  adopts/run  avg_ticks")
	for _, fs := range factors {
		n := len(fs.runs)
		if n == 0 || fs.humans == 0 {
			continue
		}
		fmt.Printf("  %.2f   %6.1f  %6.1f      %6.1f     %6.1f\n",
			fs.collab,
			pct(fs.escaped, fs.humans),
			pct(fs.dead, fs.humans),
			float64(fs.adopts)/float64(n),
			float64(fs.ticks)/float64(n))
	}
	fmt.Println()
}

// printStoredSweep re-reads the aggregate from SQLite so the numbers
// shown reflect everything persisted, not just this invocation.
func printStoredSweep(db *results.DB) {
	points, err := db.Sweep()
	if err != nil {
		slog.Error("aggregate stored runs", "err", err)
		return
	}
	fmt.Println("=== Stored Sweep (all persisted runs) ===")
	fmt.Println("collab    runs  escaped%   dead%  avg_ticks")
	for _, p := range points {
		fmt.Printf("  %.2f  %6d   %6.1f  %6.1f     %6.1f\n",
			p.Collaboration, p.Runs, p.EscapedPct, p.DeadPct, p.AvgTicks)
	}
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func tickString(t int) string {
	if t < 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d", t)
}
