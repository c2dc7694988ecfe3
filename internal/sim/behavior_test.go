package sim

import "testing"

func TestRescue_AdoptCarryAndEscape(t *testing.T) {
	r := mustRun(t, Config{
		Floorplan: sealedFirePlan,
		Humans:    2,
		PerAgent:  []float64{1.0, 1.0},
		Ignitions: []Coord{sealedIgnition},
		Seed:      21,
		MaxTicks:  50,
	})
	arrange(t, r, Coord{2, 2}, Coord{3, 2})
	helper, helped := r.agents[0], r.agents[1]
	helped.Status = StatusIncapacitated
	helped.exposure = exposureIncapacitate

	sum := r.RunToEnd()

	if !r.Log.HasEvent("rescue", "adopt", helped.Label()) {
		t.Errorf("no adopt event for %s:\n%s", helped.Label(), r.Log.Format())
	}
	if helper.Status != StatusEscaped || helped.Status != StatusEscaped {
		t.Errorf("statuses = %s/%s, want both escaped\n%s",
			helper.Status, helped.Status, r.Log.Format())
	}
	if sum.Reason != ReasonAllEscaped.String() || sum.Escaped != 2 {
		t.Errorf("summary = %+v, want 2 escaped", sum)
	}
}

func TestRescue_CarriedAgentRevives(t *testing.T) {
	r := mustRun(t, Config{
		Floorplan: sealedFirePlan,
		Humans:    2,
		PerAgent:  []float64{1.0, 1.0},
		Ignitions: []Coord{sealedIgnition},
		Seed:      22,
		MaxTicks:  100,
	})
	arrange(t, r, Coord{8, 2}, Coord{7, 2})
	helped := r.agents[1]
	helped.Status = StatusIncapacitated
	helped.exposure = 2 // recovers after two carried ticks in clear air

	sum := r.RunToEnd()

	if !r.Log.HasEvent("rescue", "adopt", "") {
		t.Fatalf("no adopt event:\n%s", r.Log.Format())
	}
	if !r.Log.HasEvent("rescue", "revived", "") {
		t.Fatalf("no revive event:\n%s", r.Log.Format())
	}
	if sum.Reason != ReasonAllEscaped.String() || sum.Escaped != 2 {
		t.Errorf("summary = %+v, want both out on their own feet", sum)
	}
}

func TestRescue_ZeroCollaborationNeverVolunteers(t *testing.T) {
	r := mustRun(t, Config{
		Floorplan:     sealedFirePlan,
		Humans:        2,
		Collaboration: 0,
		Ignitions:     []Coord{sealedIgnition},
		Seed:          23,
		MaxTicks:      30,
	})
	arrange(t, r, Coord{4, 2}, Coord{5, 2})
	r.agents[1].Status = StatusIncapacitated

	sum := r.RunToEnd()

	if n := r.Log.Count("rescue", "adopt"); n != 0 {
		t.Errorf("%d adopt events with collaboration 0:\n%s", n, r.Log.Format())
	}
	if sum.Escaped != 1 || sum.Incapacitated != 1 {
		t.Errorf("summary = %+v, want 1 escaped 1 left behind", sum)
	}
	if sum.Reason != ReasonMaxTicks.String() {
		t.Errorf("reason = %s, want max_ticks while the downed agent lingers", sum.Reason)
	}
}

func TestRescue_AbandonNextToFire(t *testing.T) {
	r := mustRun(t, Config{
		Floorplan: sealedFirePlan,
		Humans:    2,
		Ignitions: []Coord{sealedIgnition},
		Seed:      24,
		MaxTicks:  50,
	})
	arrange(t, r, Coord{4, 2}, Coord{5, 2})
	helper, helped := r.agents[0], r.agents[1]
	helper.Collaboration = 0 // always gives up under pressure
	helped.Status = StatusBeingRescued
	helped.exposure = 3
	r.rescues[helper.ID] = helped.ID
	r.claimed[helped.ID] = helper.ID

	// Fire flanks the helper. Drive the decide/apply phases directly so
	// the tableau stays exactly as built.
	r.grid.at(Coord{3, 2}).Fire = true
	helper.view = ComputeView(r.grid, helper.Pos, helper.VisionRadius)
	helper.learnExits()
	in := r.decide(helper)

	// Deciding must not touch shared state: another agent deciding in
	// the same phase still sees the carried agent as carried.
	if helped.Status != StatusBeingRescued {
		t.Fatalf("decision phase mutated the carried agent: %s", helped.Status)
	}
	if len(r.rescues) != 1 || len(r.claimed) != 1 {
		t.Fatalf("decision phase mutated pairings: rescues=%v claimed=%v", r.rescues, r.claimed)
	}

	r.apply(helper, in)

	if helped.Status != StatusIncapacitated {
		t.Errorf("helped status = %s, want dropped back to incapacitated", helped.Status)
	}
	if len(r.rescues) != 0 || len(r.claimed) != 0 {
		t.Errorf("pairing not cleared: rescues=%v claimed=%v", r.rescues, r.claimed)
	}
	if !r.Log.HasEvent("rescue", "abandon", helped.Label()) {
		t.Errorf("no abandon event:\n%s", r.Log.Format())
	}
}

func TestRescue_HelperGoingDownStrandsHelped(t *testing.T) {
	r := mustRun(t, Config{
		Floorplan: sealedFirePlan,
		Humans:    2,
		Ignitions: []Coord{sealedIgnition},
		Seed:      25,
		MaxTicks:  50,
	})
	arrange(t, r, Coord{4, 2}, Coord{5, 2})
	helper, helped := r.agents[0], r.agents[1]
	helped.Status = StatusBeingRescued
	helped.exposure = 4
	r.rescues[helper.ID] = helped.ID
	r.claimed[helped.ID] = helper.ID

	r.grid.at(helper.Pos).Fire = true
	r.Step()

	if helper.Status != StatusIncapacitated {
		t.Fatalf("helper status = %s, want incapacitated by fire", helper.Status)
	}
	if helper.Exposure() < exposureIncapacitate {
		t.Errorf("helper exposure = %d, want floored at %d", helper.Exposure(), exposureIncapacitate)
	}
	if helped.Status == StatusBeingRescued {
		t.Error("helped agent still marked as carried after its helper went down")
	}
	if len(r.rescues) != 0 || len(r.claimed) != 0 {
		t.Errorf("pairing not cleared: rescues=%v claimed=%v", r.rescues, r.claimed)
	}

	// Immobile in flames: the next tick is fatal.
	r.Step()
	if helper.Status != StatusDead {
		t.Fatalf("helper status = %s, want dead\n%s", helper.Status, r.Log.Format())
	}
	if !r.Log.HasEvent("status", "died", "burned") {
		t.Error("expected a burned event in the log")
	}
}

// TestRescue_ProximityDeterminesSurvival pins the density effect down
// deterministically: a downed agent three ticks from suffocating is
// saved by an adjacent helper but not by one four cells away, because
// adoption requires adjacency and movement is one cell per tick.
func TestRescue_ProximityDeterminesSurvival(t *testing.T) {
	setup := func(t *testing.T, helperPos Coord) *Run {
		t.Helper()
		r := mustRun(t, Config{
			Floorplan: sealedFirePlan,
			Humans:    2,
			PerAgent:  []float64{1.0, 1.0},
			Ignitions: []Coord{sealedIgnition},
			Seed:      31,
			MaxTicks:  100,
		})
		arrange(t, r, helperPos, Coord{5, 2})
		victim := r.agents[1]
		victim.Status = StatusIncapacitated
		victim.exposure = exposureDeath - 3
		r.grid.at(victim.Pos).Smoke = SmokeHeavy
		return r
	}

	far := setup(t, Coord{1, 1}) // 3 moves to reach adjacency, too slow
	far.RunToEnd()
	if got := far.agents[1].Status; got != StatusDead {
		t.Errorf("distant helper: victim status = %s, want dead\n%s", got, far.Log.Format())
	}

	near := setup(t, Coord{4, 2}) // adopts on tick one, drags clear
	near.RunToEnd()
	if got := near.agents[1].Status; got == StatusDead {
		t.Errorf("adjacent helper: victim still died\n%s", near.Log.Format())
	}
	if near.dead >= far.dead {
		t.Errorf("deaths should fall with helper proximity: near=%d far=%d", near.dead, far.dead)
	}
}

func TestPanic_FireWithoutExitThenCalm(t *testing.T) {
	r := mustRun(t, Config{
		Floorplan: `
######################
#...................E#
######################
`,
		Humans:       1,
		Ignitions:    []Coord{{1, 1}},
		Seed:         17,
		VisionRadius: 7,
	})
	arrange(t, r, Coord{4, 1})
	a := r.agents[0]

	sum := r.RunToEnd()

	if !r.Log.HasEvent("status", "change", "healthy → panicked") {
		t.Errorf("agent never panicked at visible fire:\n%s", r.Log.Format())
	}
	if !r.Log.HasEvent("status", "change", "panicked → healthy") {
		t.Errorf("agent never calmed after learning the exit:\n%s", r.Log.Format())
	}
	if a.Status != StatusEscaped || sum.Reason != ReasonAllEscaped.String() {
		t.Errorf("status = %s, summary = %+v; want an escape down the corridor", a.Status, sum)
	}
}
