package main

import (
	"errors"
	"testing"
)

// fishArea is "1_2", the first default area with fish
const fishArea AreaID = 1

func testConfig(mutate func(*Config)) Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	if mutate != nil {
		mutate(&cfg)
	}
	return cfg
}

func newTestSimulation(t *testing.T, mutate func(*Config)) *Simulation {
	t.Helper()
	sim, err := NewSimulation(testConfig(mutate))
	if err != nil {
		t.Fatalf("NewSimulation: %v", err)
	}
	return sim
}

func singleSpecies(chance, difficulty float64) func(*Config) {
	return func(c *Config) {
		c.Species = []FishTypeInfo{{
			Name: "Test", Model: "test", TextureID: 1,
			MinSpeed: 0.5, MaxSpeed: 0.5,
			CatchChance: chance, Difficulty: difficulty,
			Points: 7, Scale: 1, HitRadius: 0.3,
			SpawnProbability: 1,
		}}
	}
}

func mustSpawn(t *testing.T, sim *Simulation, area AreaID) *Fish {
	t.Helper()
	f, err := sim.SpawnFish(area)
	if err != nil {
		t.Fatalf("SpawnFish(%d): %v", area, err)
	}
	return f
}

func TestSpawnFish(t *testing.T) {
	sim := newTestSimulation(t, nil)
	f := mustSpawn(t, sim, fishArea)

	if f.State() != FishSwimming {
		t.Fatalf("state = %s, want swimming", f.State())
	}
	if f.T != 0 || f.Hooked {
		t.Fatalf("fresh fish has T=%v hooked=%v", f.T, f.Hooked)
	}
	info := sim.Registry.Info(f.Type)
	if f.Speed < info.MinSpeed || f.Speed > info.MaxSpeed {
		t.Fatalf("speed %v outside [%v, %v]", f.Speed, info.MinSpeed, info.MaxSpeed)
	}
	if !sim.Navigator().InBounds(f.Position) {
		t.Fatalf("spawned off the grid at %+v", f.Position)
	}
	if f.Position != f.Window.At(1) {
		t.Fatalf("fish at %+v, want window slot 1 %+v", f.Position, f.Window.At(1))
	}
}

func TestSpawnFishOfType(t *testing.T) {
	sim := newTestSimulation(t, nil)

	f, err := sim.SpawnFishOfType(fishArea, 2)
	if err != nil {
		t.Fatalf("SpawnFishOfType: %v", err)
	}
	if f.Type != 2 {
		t.Fatalf("type = %d, want 2", f.Type)
	}

	f, err = sim.SpawnFishOfType(fishArea, 99)
	if err != nil {
		t.Fatalf("SpawnFishOfType(99): %v", err)
	}
	if f.Type != DefaultFishType {
		t.Fatalf("unknown type spawned as %d, want default", f.Type)
	}
}

func TestSpawnErrors(t *testing.T) {
	sim := newTestSimulation(t, func(c *Config) { c.MaxActiveFish = 2 })

	if _, err := sim.SpawnFish(AreaID(17)); !errors.Is(err, ErrUnknownArea) {
		t.Fatalf("bad area error = %v, want ErrUnknownArea", err)
	}

	mustSpawn(t, sim, fishArea)
	mustSpawn(t, sim, fishArea)
	if _, err := sim.SpawnFish(fishArea); !errors.Is(err, ErrPoolFull) {
		t.Fatalf("third spawn error = %v, want ErrPoolFull", err)
	}
	if sim.Pool.Len() != 2 {
		t.Fatalf("pool has %d fish, want 2", sim.Pool.Len())
	}
}

func TestFishIDsAreNotReused(t *testing.T) {
	sim := newTestSimulation(t, nil)

	a := mustSpawn(t, sim, fishArea)
	if !sim.DespawnFish(a.ID) {
		t.Fatalf("DespawnFish(%d) = false", a.ID)
	}
	if sim.DespawnFish(a.ID) {
		t.Fatalf("second DespawnFish(%d) = true", a.ID)
	}
	b := mustSpawn(t, sim, fishArea)
	if b.ID <= a.ID {
		t.Fatalf("new id %d not above old id %d", b.ID, a.ID)
	}
	if _, ok := sim.View(a.ID); ok {
		t.Fatalf("View of despawned fish succeeded")
	}
}

func TestDespawnAll(t *testing.T) {
	sim := newTestSimulation(t, nil)
	for i := 0; i < 4; i++ {
		mustSpawn(t, sim, fishArea)
	}
	if n := sim.DespawnAll(); n != 4 {
		t.Fatalf("DespawnAll() = %d, want 4", n)
	}
	if len(sim.Views()) != 0 {
		t.Fatalf("fish left after DespawnAll")
	}
}

func TestSetMaxActiveFishKeepsExistingFish(t *testing.T) {
	sim := newTestSimulation(t, nil)
	mustSpawn(t, sim, fishArea)
	mustSpawn(t, sim, fishArea)

	sim.SetMaxActiveFish(1)
	if sim.Pool.Len() != 2 {
		t.Fatalf("lowering the limit removed fish: %d left", sim.Pool.Len())
	}
	if _, err := sim.SpawnFish(fishArea); !errors.Is(err, ErrPoolFull) {
		t.Fatalf("spawn above lowered limit error = %v", err)
	}
}

func TestTickKeepsInvariants(t *testing.T) {
	for _, strategy := range []string{PathCatmullRom, PathBezier} {
		t.Run(strategy, func(t *testing.T) {
			sim := newTestSimulation(t, func(c *Config) { c.PathStrategy = strategy })
			for i := 0; i < 5; i++ {
				mustSpawn(t, sim, fishArea)
			}

			for tick := 0; tick < 600; tick++ {
				sim.Tick(1.0/30, nil)
				sim.Pool.Each(func(f *Fish) {
					if f.T < 0 || f.T >= 1 {
						t.Fatalf("tick %d: fish %d t=%v outside [0, 1)", tick, f.ID, f.T)
					}
					if !sim.Navigator().InBounds(f.Position) {
						t.Fatalf("tick %d: fish %d off the grid at %+v", tick, f.ID, f.Position)
					}
					for _, p := range f.Window.Points() {
						if !sim.Navigator().InBounds(p) {
							t.Fatalf("tick %d: fish %d waypoint %+v off the grid", tick, f.ID, p)
						}
					}
				})
			}
		})
	}
}

func TestTickPreservesRemainder(t *testing.T) {
	sim := newTestSimulation(t, singleSpecies(0.5, 0.5))
	f := mustSpawn(t, sim, fishArea)
	f.T = 0.9
	before := f.Window.Points()

	// speed 0.5 over 0.5s moves t by 0.25
	sim.Tick(0.5, nil)

	if f.T < 0.15-epsilon || f.T > 0.15+epsilon {
		t.Fatalf("t = %v after wrap, want 0.15", f.T)
	}
	if f.Window.At(0) != before[1] {
		t.Fatalf("window did not advance")
	}
}

func TestHeadingFollowsMovement(t *testing.T) {
	sim := newTestSimulation(t, nil)
	f := mustSpawn(t, sim, fishArea)

	for i := 0; i < 30; i++ {
		old := f.Position
		sim.Tick(1.0/30, nil)
		delta := f.Position.Sub(old)
		if delta.Length() > HeadingEpsilon && f.Heading != Heading(delta) {
			t.Fatalf("heading %v, want %v", f.Heading, Heading(delta))
		}
	}

	// No time passes: heading must not change
	heading := f.Heading
	sim.Tick(0, nil)
	if f.Heading != heading {
		t.Fatalf("heading changed without movement")
	}
}

func TestHookedFishDoNotMove(t *testing.T) {
	sim := newTestSimulation(t, nil)
	f := mustSpawn(t, sim, fishArea)
	f.Hooked = true
	pos, heading, window := f.Position, f.Heading, f.Window.Points()

	for i := 0; i < 100; i++ {
		sim.Tick(1.0/30, nil)
	}
	if f.Position != pos || f.Heading != heading || f.Window.Points() != window {
		t.Fatalf("hooked fish moved")
	}
}

func TestSimulationIsDeterministic(t *testing.T) {
	run := func() []FishView {
		sim := newTestSimulation(t, func(c *Config) { c.CatchModel = CatchModelInterest })
		for i := 0; i < 6; i++ {
			mustSpawn(t, sim, fishArea)
		}
		bait := Bait{Position: Vec3{Y: WaterPlaneY, Z: 3}, Radius: BaitRadius, Launched: true, InWater: true}
		for tick := 0; tick < 300; tick++ {
			sim.Tick(1.0/30, []Bait{bait})
			sim.TryHook(bait)
		}
		return sim.Views()
	}

	a, b := run(), run()
	if len(a) != len(b) {
		t.Fatalf("runs ended with %d and %d fish", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("fish %d differs between runs:\n%+v\n%+v", i, a[i], b[i])
		}
	}
}

func TestSpawnIfNeeded(t *testing.T) {
	sim := newTestSimulation(t, func(c *Config) {
		c.SpawnRate = 1
		c.MaxActiveFish = 3
	})

	// Area 0 has no fish and is skipped
	if got := sim.SpawnIfNeeded(0.5, []AreaID{0, fishArea}); len(got) != 0 {
		t.Fatalf("spawned %d fish after half a second", len(got))
	}
	got := sim.SpawnIfNeeded(0.5, []AreaID{0, fishArea})
	if len(got) != 1 || got[0].Area != fishArea {
		t.Fatalf("spawned %+v, want one fish in area %d", got, fishArea)
	}

	sim.SpawnIfNeeded(10, []AreaID{fishArea})
	if sim.Pool.Len() != 3 {
		t.Fatalf("pool has %d fish, want the limit of 3", sim.Pool.Len())
	}
	if sim.Pool.CountInArea(0) != 0 {
		t.Fatalf("fish spawned in an area without fish")
	}
}

func TestSetSpawnRateClampsNegative(t *testing.T) {
	sim := newTestSimulation(t, nil)
	sim.SetSpawnRate(-3)
	if sim.SpawnRate() != 0 {
		t.Fatalf("SpawnRate() = %v, want 0", sim.SpawnRate())
	}
}

func TestFishNear(t *testing.T) {
	sim := newTestSimulation(t, nil)
	f := mustSpawn(t, sim, fishArea)
	far := mustSpawn(t, sim, fishArea)

	f.Position = Vec3{X: 2, Y: -1, Z: 2}
	far.Position = Vec3{X: -7, Y: -1, Z: -7}
	sim.rebuildIndex()

	got := sim.FishNear(Vec3{X: 2.2, Y: -0.3, Z: 2}, 0.1)
	if len(got) != 1 || got[0].ID != f.ID {
		t.Fatalf("FishNear found %d fish, want only #%d", len(got), f.ID)
	}
}
