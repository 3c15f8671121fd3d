package main

import (
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"
)

// RNG is the simulation's random source. It is not safe for concurrent use
// and must only be touched from the goroutine that runs the simulation.
type RNG struct {
	seed int64
	r    *rand.Rand
}

// NewRNG creates a generator for the given seed. A zero seed is replaced by
// the wall clock the first time a value is drawn.
func NewRNG(seed int64) *RNG {
	return &RNG{seed: seed}
}

// Seed returns the seed in use, picking the clock seed first if needed
func (g *RNG) Seed() int64 {
	g.source()
	return g.seed
}

func (g *RNG) source() *rand.Rand {
	if g.r == nil {
		if g.seed == 0 {
			g.seed = time.Now().UnixNano()
		}
		// Non-cryptographic PRNG is intentional for deterministic replays.
		// #nosec G404
		g.r = rand.New(rand.NewPCG(seedWord(g.seed, "a"), seedWord(g.seed, "b")))
	}
	return g.r
}

// Unit returns a uniform value in [0, 1)
func (g *RNG) Unit() float64 {
	return g.source().Float64()
}

// Float returns a uniform value between min and max
func (g *RNG) Float(min, max float64) float64 {
	if min == max {
		return min
	}
	return min + g.Unit()*(max-min)
}

// Angle returns a uniform heading in [0, 2π)
func (g *RNG) Angle() float64 {
	return g.Float(0, TwoPi)
}

func seedWord(seed int64, salt string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(fmt.Sprintf("%d:%s", seed, salt)))
	return h.Sum64()
}

// Clamp restricts a value between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
