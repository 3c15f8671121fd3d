package main

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolFull is returned when a spawn would exceed the active fish limit
	ErrPoolFull = errors.New("fish pool is full")
	// ErrUnknownFish is returned for ids that are not in the pool
	ErrUnknownFish = errors.New("unknown fish")
)

// FishID is a stable handle for a fish. Ids are never reused.
type FishID uint64

// FishState is the lifecycle state of a fish
type FishState int

const (
	FishUnspawned FishState = iota
	FishSwimming
	FishHooked
)

func (s FishState) String() string {
	switch s {
	case FishSwimming:
		return "swimming"
	case FishHooked:
		return "hooked"
	default:
		return "unspawned"
	}
}

// Fish is the mutable simulation state of one fish
type Fish struct {
	ID        FishID
	Type      FishTypeID
	Area      AreaID
	Position  Vec3
	Heading   float64 // yaw in radians, derived from movement
	Speed     float64 // segments per second
	BaseSpeed float64
	Window    WaypointWindow
	T         float64 // progress along the current segment, in [0, 1)
	Hooked    bool
	HookedBy  string

	// Only driven by the interest catch model
	Interest  float64
	Attracted bool
	Fleeing   bool
	FleeTimer float64
}

// State returns the lifecycle state of the fish
func (f *Fish) State() FishState {
	if f == nil {
		return FishUnspawned
	}
	if f.Hooked {
		return FishHooked
	}
	return FishSwimming
}

// flee makes an escaped fish dart away for FleeDuration seconds
func (f *Fish) flee() {
	f.Fleeing = true
	f.FleeTimer = FleeDuration
	f.Speed = f.BaseSpeed * FleeSpeedMultiplier
	f.Interest = 0
}

// calm counts down the flee timer and restores the base speed when it ends
func (f *Fish) calm(dt float64) {
	if !f.Fleeing {
		return
	}
	f.FleeTimer -= dt
	if f.FleeTimer <= 0 {
		f.Fleeing = false
		f.FleeTimer = 0
		f.Speed = f.BaseSpeed
	}
}

// FishPool owns the active fish, keyed by id and iterated in spawn order
type FishPool struct {
	fish      map[FishID]*Fish
	order     []FishID
	nextID    FishID
	maxActive int
}

// NewFishPool creates a pool holding at most maxActive fish. A pool of size
// one behaves like the single-fish game.
func NewFishPool(maxActive int) *FishPool {
	if maxActive < 0 {
		maxActive = 0
	}
	return &FishPool{
		fish:      make(map[FishID]*Fish),
		nextID:    1,
		maxActive: maxActive,
	}
}

// Len returns the number of active fish
func (p *FishPool) Len() int {
	return len(p.order)
}

// MaxActive returns the active fish limit
func (p *FishPool) MaxActive() int {
	return p.maxActive
}

// SetMaxActive changes the limit. Fish above a lowered limit keep swimming;
// only new spawns are refused.
func (p *FishPool) SetMaxActive(n int) {
	if n < 0 {
		n = 0
	}
	p.maxActive = n
}

// Full reports whether another fish would exceed the limit
func (p *FishPool) Full() bool {
	return len(p.order) >= p.maxActive
}

// Add assigns an id to f and stores it
func (p *FishPool) Add(f *Fish) (FishID, error) {
	if p.Full() {
		return 0, fmt.Errorf("%w: %d/%d active", ErrPoolFull, len(p.order), p.maxActive)
	}
	f.ID = p.nextID
	p.nextID++
	p.fish[f.ID] = f
	p.order = append(p.order, f.ID)
	return f.ID, nil
}

// Get returns the fish with the given id
func (p *FishPool) Get(id FishID) (*Fish, bool) {
	f, ok := p.fish[id]
	return f, ok
}

// Remove deletes a fish; it reports false for unknown ids
func (p *FishPool) Remove(id FishID) bool {
	if _, ok := p.fish[id]; !ok {
		return false
	}
	delete(p.fish, id)
	for i, other := range p.order {
		if other == id {
			p.order = append(p.order[:i], p.order[i+1:]...)
			break
		}
	}
	return true
}

// Clear removes every fish and returns how many there were
func (p *FishPool) Clear() int {
	n := len(p.order)
	p.fish = make(map[FishID]*Fish)
	p.order = p.order[:0]
	return n
}

// Each calls fn for every fish in spawn order
func (p *FishPool) Each(fn func(*Fish)) {
	for _, id := range p.order {
		fn(p.fish[id])
	}
}

// CountInArea returns the number of fish that spawned in area
func (p *FishPool) CountInArea(area AreaID) int {
	n := 0
	for _, id := range p.order {
		if p.fish[id].Area == area {
			n++
		}
	}
	return n
}
