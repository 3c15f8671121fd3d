package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"
)

// ErrUnknownSpecies is returned when a species name cannot be resolved
var ErrUnknownSpecies = errors.New("unknown species")

// FishTypeID indexes a species in the registry
type FishTypeID int

// DefaultFishType is used whenever a species cannot be determined
const DefaultFishType FishTypeID = 0

// FishTypeInfo describes one species. Records are shared read-only by every
// fish of that species.
type FishTypeInfo struct {
	Name             string  `yaml:"name" msgpack:"name"`
	Model            string  `yaml:"model" msgpack:"model"`
	TextureID        int     `yaml:"texture_id" msgpack:"textureId"`
	MinSpeed         float64 `yaml:"min_speed" msgpack:"minSpeed"`
	MaxSpeed         float64 `yaml:"max_speed" msgpack:"maxSpeed"`
	CatchChance      float64 `yaml:"catch_chance" msgpack:"catchChance"`
	Difficulty       float64 `yaml:"difficulty" msgpack:"difficulty"`
	Points           int     `yaml:"points" msgpack:"points"`
	Scale            float64 `yaml:"scale" msgpack:"scale"`
	HitRadius        float64 `yaml:"hit_radius" msgpack:"hitRadius"`
	SpawnProbability float64 `yaml:"spawn_probability" msgpack:"spawnProbability"`
}

// Radius returns the collision radius, falling back to DefaultFishRadius
func (t FishTypeInfo) Radius() float64 {
	if t.HitRadius > 0 {
		return t.HitRadius
	}
	return DefaultFishRadius
}

// TypeRegistry is the immutable species table
type TypeRegistry struct {
	types []FishTypeInfo
}

// NewTypeRegistry copies the given table. An empty table gets the built-in
// species so that a default always exists.
func NewTypeRegistry(types []FishTypeInfo) *TypeRegistry {
	if len(types) == 0 {
		types = DefaultSpecies
	}
	table := make([]FishTypeInfo, len(types))
	copy(table, types)
	return &TypeRegistry{types: table}
}

// Len returns the number of species
func (r *TypeRegistry) Len() int {
	return len(r.types)
}

// All returns a copy of the species table in registry order
func (r *TypeRegistry) All() []FishTypeInfo {
	out := make([]FishTypeInfo, len(r.types))
	copy(out, r.types)
	return out
}

// Valid reports whether id names a species in the table
func (r *TypeRegistry) Valid(id FishTypeID) bool {
	return id >= 0 && int(id) < len(r.types)
}

// Info returns the species record for id. Unknown ids get the default species.
func (r *TypeRegistry) Info(id FishTypeID) FishTypeInfo {
	if !r.Valid(id) {
		return r.types[DefaultFishType]
	}
	return r.types[id]
}

// ChooseRandomType draws a species with probability proportional to its
// spawn weight. Weights are walked in table order; if rounding leaves the
// draw above the cumulative total, the default species is returned.
func (r *TypeRegistry) ChooseRandomType(rng *RNG) FishTypeID {
	roll := rng.Unit()
	cumulative := 0.0
	for i, t := range r.types {
		cumulative += t.SpawnProbability
		if roll < cumulative {
			return FishTypeID(i)
		}
	}
	return DefaultFishType
}

// Lookup resolves a species by name: exact match first, then unique-enough
// prefix, then the closest name within a small edit distance.
func (r *TypeRegistry) Lookup(name string) (FishTypeID, error) {
	token := normalizeName(name)
	if token == "" {
		return DefaultFishType, fmt.Errorf("%w: empty name", ErrUnknownSpecies)
	}

	for i, t := range r.types {
		if normalizeName(t.Name) == token {
			return FishTypeID(i), nil
		}
	}

	if len(token) >= 2 {
		for i, t := range r.types {
			if strings.HasPrefix(normalizeName(t.Name), token) {
				return FishTypeID(i), nil
			}
		}
	}

	best := -1
	bestDist := 0
	for i, t := range r.types {
		cand := normalizeName(t.Name)
		dist := levenshtein.ComputeDistance(token, cand)
		if dist > levenshteinLimit(len(cand)) {
			continue
		}
		if best < 0 || dist < bestDist {
			best, bestDist = i, dist
		}
	}
	if best < 0 {
		return DefaultFishType, fmt.Errorf("%w: %q", ErrUnknownSpecies, name)
	}
	return FishTypeID(best), nil
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
