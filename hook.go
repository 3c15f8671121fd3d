package main

import (
	"log"
	"math"
)

// Bait is the angler's lure as seen by the fish subsystem
type Bait struct {
	Owner    string
	Position Vec3
	Velocity Vec3
	Launched bool
	InWater  bool
	Radius   float64
}

// HookResult is the outcome of one hook attempt
type HookResult int

const (
	HookNoCollision HookResult = iota
	HookEscaped
	HookCaught
)

func (r HookResult) String() string {
	switch r {
	case HookEscaped:
		return "escaped"
	case HookCaught:
		return "caught"
	default:
		return "no_collision"
	}
}

// HookOutcome reports a hook attempt in full
type HookOutcome struct {
	Result        HookResult `msgpack:"result"`
	FishID        FishID     `msgpack:"fishId"`
	Species       string     `msgpack:"species"`
	Points        int        `msgpack:"points"`
	Chance        float64    `msgpack:"chance"`
	Roll          float64    `msgpack:"roll"`
	AlreadyHooked bool       `msgpack:"alreadyHooked"`
}

// TryHook checks the bait against the nearest fish it touches and rolls for
// the catch. A bait out of the water never collides.
func (s *Simulation) TryHook(bait Bait) HookOutcome {
	if !bait.InWater {
		return HookOutcome{Result: HookNoCollision}
	}

	var target *Fish
	bestDist := math.Inf(1)
	for _, f := range s.FishNear(bait.Position, bait.Radius) {
		radius := s.Registry.Info(f.Type).Radius()
		if !SpheresOverlap(bait.Position, bait.Radius, f.Position, radius) {
			continue
		}
		if d := Distance(bait.Position, f.Position); d < bestDist {
			target, bestDist = f, d
		}
	}
	if target == nil {
		return HookOutcome{Result: HookNoCollision}
	}
	return s.resolveHook(target, bait)
}

// TryHookFish rolls a hook attempt against one specific fish. It reports
// false for unknown ids.
func (s *Simulation) TryHookFish(id FishID, bait Bait) (HookOutcome, bool) {
	f, ok := s.Pool.Get(id)
	if !ok {
		return HookOutcome{}, false
	}
	if !bait.InWater {
		return HookOutcome{Result: HookNoCollision, FishID: id}, true
	}
	radius := s.Registry.Info(f.Type).Radius()
	if !SpheresOverlap(bait.Position, bait.Radius, f.Position, radius) {
		return HookOutcome{Result: HookNoCollision, FishID: id}, true
	}
	return s.resolveHook(f, bait), true
}

func (s *Simulation) resolveHook(f *Fish, bait Bait) HookOutcome {
	info := s.Registry.Info(f.Type)
	out := HookOutcome{FishID: f.ID, Species: info.Name}

	if f.Hooked {
		out.Result = HookCaught
		out.AlreadyHooked = true
		return out
	}

	out.Chance = s.catchChance(f, info, bait)
	out.Roll = s.rng.Unit()

	// Unit() never returns 1, so a chance of 1 always hooks and 0 never does
	if out.Roll < out.Chance {
		f.Hooked = true
		f.HookedBy = bait.Owner
		f.Attracted = false
		out.Result = HookCaught
		out.Points = info.Points
		log.Printf("%s #%d hooked by %s (+%d points)", info.Name, f.ID, bait.Owner, info.Points)
		return out
	}

	if s.CatchModel == CatchModelInterest {
		f.flee()
	}
	out.Result = HookEscaped
	log.Printf("%s #%d escaped (%.0f%% chance, roll=%.2f)", info.Name, f.ID, out.Chance*100, out.Roll)
	return out
}

// catchChance returns the probability that a touching bait hooks f. The flat
// model uses the species chance as is; the interest model weighs difficulty,
// accumulated interest and how centered the bait is.
func (s *Simulation) catchChance(f *Fish, info FishTypeInfo, bait Bait) float64 {
	if s.CatchModel != CatchModelInterest {
		return info.CatchChance
	}

	reach := bait.Radius + info.Radius()
	distanceFactor := 1.0
	if reach > 0 {
		distanceFactor = 1 - 0.5*Clamp(Distance(bait.Position, f.Position)/reach, 0, 1)
	}
	difficultyFactor := 1.5 - info.Difficulty
	interestFactor := 0.5 + f.Interest

	chance := BaseCatchChance * difficultyFactor * interestFactor * distanceFactor
	return Clamp(chance, MinCatchChance, MaxCatchChance)
}

// updateInterest accrues interest while an in-water bait is within
// DetectionRadius and lets it decay otherwise. Fleeing fish ignore baits. It returns the bait position
// and true when the fish is keen and close enough to swim at it.
func (s *Simulation) updateInterest(f *Fish, dt float64, baits []Bait) (Vec3, bool) {
	var nearest *Bait
	bestDist := math.Inf(1)
	for i := range baits {
		b := &baits[i]
		if !b.InWater {
			continue
		}
		if d := Distance(b.Position, f.Position); d <= DetectionRadius && d < bestDist {
			nearest, bestDist = b, d
		}
	}

	if nearest == nil || f.Fleeing {
		f.Interest = math.Max(0, f.Interest-InterestDecayRate*dt)
		return Vec3{}, false
	}

	info := s.Registry.Info(f.Type)
	f.Interest = math.Min(1, f.Interest+(1-info.Difficulty)*dt)

	if bestDist > AttractionRadius || f.Interest <= AttractionThreshold {
		return Vec3{}, false
	}
	return nearest.Position, true
}

// HookedPoints returns the points a hooked fish is worth, or 0
func (s *Simulation) HookedPoints(id FishID) int {
	f, ok := s.Pool.Get(id)
	if !ok || !f.Hooked {
		return 0
	}
	return s.Registry.Info(f.Type).Points
}

// HookedName returns the species name of a hooked fish, or ""
func (s *Simulation) HookedName(id FishID) string {
	f, ok := s.Pool.Get(id)
	if !ok || !f.Hooked {
		return ""
	}
	return s.Registry.Info(f.Type).Name
}
