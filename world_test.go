package main

import (
	"testing"
)

func newTestWorld(t *testing.T, mutate func(*Config)) *World {
	t.Helper()
	world, err := NewWorld(testConfig(mutate))
	if err != nil {
		t.Fatalf("NewWorld: %v", err)
	}
	return world
}

func addTestAngler(w *World, id string, pos Vec3) *Angler {
	a := NewAngler(id, id, pos, nil)
	w.AddAngler(a)
	return a
}

func TestThrowPower(t *testing.T) {
	tests := []struct {
		charge float64
		want   float64
	}{
		{0, MinThrowPower},
		{1, MaxThrowPower},
		{0.5, 17.5},
		{-1, MinThrowPower},
		{3, MaxThrowPower},
	}
	for _, tt := range tests {
		if got := ThrowPower(tt.charge); got != tt.want {
			t.Errorf("ThrowPower(%v) = %v, want %v", tt.charge, got, tt.want)
		}
	}
}

func TestEnterFishing(t *testing.T) {
	world := newTestWorld(t, nil)

	// Origin lies in area 1_2, which has fish
	a := addTestAngler(world, "a", Vec3{})
	if !world.EnterFishing(a) {
		t.Fatal("EnterFishing refused an area with fish")
	}
	if a.Phase != PhaseFishing || a.Area != fishArea {
		t.Fatalf("phase=%s area=%d", a.Phase, a.Area)
	}
	if world.Sim.Pool.CountInArea(fishArea) != 1 {
		t.Fatalf("entering did not spawn a fish")
	}

	// Area 1_1 has none
	b := addTestAngler(world, "b", Vec3{X: -8, Z: 5})
	if world.EnterFishing(b) || b.Phase != PhaseNavigation {
		t.Fatal("EnterFishing accepted an empty area")
	}

	world.LeaveFishing(a)
	if a.Phase != PhaseNavigation || a.Bait.Launched {
		t.Fatalf("LeaveFishing left phase=%s launched=%v", a.Phase, a.Bait.Launched)
	}
}

func TestCastNeedsFishingPhase(t *testing.T) {
	world := newTestWorld(t, nil)
	a := addTestAngler(world, "a", Vec3{})

	if a.Cast(1) {
		t.Fatal("cast while navigating")
	}
	world.EnterFishing(a)
	if !a.Cast(0.5) {
		t.Fatal("cast refused while fishing")
	}
	if a.Cast(0.5) {
		t.Fatal("second cast while the bait is out")
	}
}

func TestBaitFlightLandsOnWater(t *testing.T) {
	world := newTestWorld(t, nil)
	a := addTestAngler(world, "a", Vec3{})
	world.EnterFishing(a)
	a.Cast(0)

	for i := 0; i < 100 && !a.Bait.InWater; i++ {
		a.UpdateBait(1.0 / 30)
	}
	if !a.Bait.InWater {
		t.Fatal("bait never reached the water")
	}
	if a.Bait.Position.Y != WaterPlaneY {
		t.Fatalf("bait rests at y=%v, want %v", a.Bait.Position.Y, WaterPlaneY)
	}
	// Boat faces -z at rotation 0
	if a.Bait.Position.Z >= 0 {
		t.Fatalf("bait landed behind the boat at %+v", a.Bait.Position)
	}
	if Distance2(a.Bait.Position.XZ(), Vec2{}) > BaitLostRange {
		t.Fatalf("bait flew too far: %+v", a.Bait.Position)
	}
}

func TestReelingBringsBaitBack(t *testing.T) {
	world := newTestWorld(t, nil)
	a := addTestAngler(world, "a", Vec3{})
	world.EnterFishing(a)
	a.Cast(1)

	for i := 0; i < 100 && !a.Bait.InWater; i++ {
		a.UpdateBait(1.0 / 30)
	}
	a.Reeling = true
	last := Distance2(a.Bait.Position.XZ(), a.Boat.Position.XZ())
	for i := 0; i < 1000 && a.Bait.Launched; i++ {
		a.UpdateBait(1.0 / 30)
		if !a.Bait.Launched {
			break
		}
		d := Distance2(a.Bait.Position.XZ(), a.Boat.Position.XZ())
		if d > last+epsilon {
			t.Fatalf("reeling moved the bait away: %v -> %v", last, d)
		}
		last = d
	}
	if a.Bait.Launched {
		t.Fatal("bait never came back")
	}
}

func TestBoatStaysOnValidWater(t *testing.T) {
	world := newTestWorld(t, nil)
	a := addTestAngler(world, "a", Vec3{})

	world.InputQueue <- AnglerInput{AnglerID: "a", Kind: InputMove, Throttle: 1, Turn: 0.3}
	for i := 0; i < 30*20; i++ {
		world.Update(1.0 / 30)
		if !world.Sim.Map.IsValidBoatPosition(a.Boat.Position) || !world.Sim.Map.OnMap(a.Boat.Position) {
			t.Fatalf("tick %d: boat on invalid water at %+v", i, a.Boat.Position)
		}
	}
	if a.Boat.Position == (Vec3{}) {
		t.Fatal("boat never moved")
	}
}

func TestCatchScoresAndRestocks(t *testing.T) {
	world := newTestWorld(t, singleSpecies(1, 0.5))
	a := addTestAngler(world, "a", Vec3{})
	world.EnterFishing(a)

	views := world.Sim.Views()
	if len(views) != 1 {
		t.Fatalf("%d fish after entering, want 1", len(views))
	}
	caught := views[0]

	a.Bait.Launched = true
	a.Bait.InWater = true
	a.Bait.Position = caught.Position
	world.ResolveHooks()

	if a.Score != 7 || a.Catches != 1 {
		t.Fatalf("score=%d catches=%d", a.Score, a.Catches)
	}
	if a.LastHook.Result != HookCaught || a.LastHook.FishID != caught.ID {
		t.Fatalf("last hook %+v", a.LastHook)
	}
	if a.Bait.Launched {
		t.Fatal("bait not returned after the catch")
	}
	if _, ok := world.Sim.View(caught.ID); ok {
		t.Fatal("caught fish still in the pool")
	}
	if world.Sim.Pool.CountInArea(fishArea) != 1 {
		t.Fatal("area not restocked after the catch")
	}
}

func TestEscapeReturnsBait(t *testing.T) {
	world := newTestWorld(t, singleSpecies(0, 0.5))
	a := addTestAngler(world, "a", Vec3{})
	world.EnterFishing(a)
	fish := world.Sim.Views()[0]

	a.Bait.Launched = true
	a.Bait.InWater = true
	a.Bait.Position = fish.Position
	world.ResolveHooks()

	if a.LastHook.Result != HookEscaped || a.Score != 0 {
		t.Fatalf("last hook %+v score %d", a.LastHook, a.Score)
	}
	if a.Bait.Launched {
		t.Fatal("bait not returned after the escape")
	}
	if world.Sim.Pool.Len() != 1 {
		t.Fatal("escaped fish left the pool")
	}
}

func TestInputsDriveFishingFlow(t *testing.T) {
	world := newTestWorld(t, nil)
	a := addTestAngler(world, "a", Vec3{})

	world.InputQueue <- AnglerInput{AnglerID: "a", Kind: InputFish, Seq: 1}
	world.InputQueue <- AnglerInput{AnglerID: "a", Kind: InputCast, Charge: 0.2, Seq: 2}
	world.InputQueue <- AnglerInput{AnglerID: "ghost", Kind: InputFish}
	world.Update(1.0 / 30)

	if a.Phase != PhaseFishing || !a.Bait.Launched || a.LastSeq != 2 {
		t.Fatalf("phase=%s launched=%v seq=%d", a.Phase, a.Bait.Launched, a.LastSeq)
	}

	world.InputQueue <- AnglerInput{AnglerID: "a", Kind: InputNavigate, Seq: 3}
	world.Update(1.0 / 30)
	if a.Phase != PhaseNavigation || a.Bait.Launched {
		t.Fatalf("navigate left phase=%s launched=%v", a.Phase, a.Bait.Launched)
	}
}

func TestLeaderboard(t *testing.T) {
	world := newTestWorld(t, nil)
	scores := map[string]int{"cod": 30, "eel": 50, "amy": 30, "bob": 10}
	for name, score := range scores {
		addTestAngler(world, name, Vec3{}).Score = score
	}

	board := world.GetLeaderboard()
	want := []string{"eel", "amy", "cod", "bob"}
	if len(board) != len(want) {
		t.Fatalf("leaderboard has %d entries", len(board))
	}
	for i, name := range want {
		if board[i].Name != name || board[i].Score != scores[name] {
			t.Errorf("rank %d = %+v, want %s", i, board[i], name)
		}
	}
}

func TestSpawnPoint(t *testing.T) {
	world := newTestWorld(t, nil)
	if got := world.SpawnPoint(); got != (Vec3{}) {
		t.Fatalf("SpawnPoint() = %+v, want the open map center", got)
	}

	blocked := newTestWorld(t, func(c *Config) {
		mask := append([]string(nil), c.ZoneMask...)
		row := []byte(mask[12])
		row[12] = '#'
		mask[12] = string(row)
		c.ZoneMask = mask
	})
	p := blocked.SpawnPoint()
	if !blocked.Sim.Map.IsValidBoatPosition(p) {
		t.Fatalf("SpawnPoint() = %+v is not valid water", p)
	}
}
