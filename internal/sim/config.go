package sim

// Default agent and run parameters.
const (
	DefaultVisionRadius = 8
	DefaultMaxTicks     = 500
)

// Config fully determines a run: the same config and seed always
// reproduce the same tick-by-tick outcome.
type Config struct {
	// Floorplan is the textual plan (see ParseFloorplan). When empty, a
	// plan is generated procedurally from GenWidth/GenHeight/GenExits.
	Floorplan string
	GenWidth  int
	GenHeight int
	GenExits  int

	// Humans is the number of evacuees, spawned on free floor cells.
	Humans int

	// Collaboration in [0,1] applies to every agent unless PerAgent
	// overrides it (indexed by spawn order, may be shorter than Humans).
	Collaboration float64
	PerAgent      []float64

	// Ignitions are the initial fire cells. Empty means one random
	// non-wall cell.
	Ignitions []Coord

	Seed         int64
	MaxTicks     int
	VisionRadius int

	// Verbose enables per-tick event-log entries (positions, exposure).
	Verbose bool
}

// validate checks everything that can be rejected before the grid is
// built. Grid-dependent checks (ignition on a wall, spawn capacity)
// happen in NewRun once the plan is parsed.
func (c *Config) validate() error {
	if c.Humans < 1 {
		return configErrorf("humans", "need at least one agent, got %d", c.Humans)
	}
	if c.Collaboration < 0 || c.Collaboration > 1 {
		return configErrorf("collaboration", "must be in [0,1], got %g", c.Collaboration)
	}
	for i, v := range c.PerAgent {
		if v < 0 || v > 1 {
			return configErrorf("per_agent", "agent %d collaboration must be in [0,1], got %g", i, v)
		}
	}
	if c.MaxTicks < 0 {
		return configErrorf("max_ticks", "must be >= 0, got %d", c.MaxTicks)
	}
	if c.VisionRadius < 0 {
		return configErrorf("vision_radius", "must be >= 0, got %d", c.VisionRadius)
	}
	return nil
}

// collaborationFor returns the collaboration factor for spawn index i.
func (c *Config) collaborationFor(i int) float64 {
	if i < len(c.PerAgent) {
		return c.PerAgent[i]
	}
	return c.Collaboration
}
