package main

import (
	"fmt"
	"log"
)

// Simulation is the fish subsystem: the species table, the map, the fish
// pool and the random source, advanced one tick at a time. It is not safe for
// concurrent use; World serializes every call on its game loop.
type Simulation struct {
	Registry   *TypeRegistry
	Map        *FishingMap
	Path       PathStrategy
	CatchModel string
	Pool       *FishPool

	rng         *RNG
	nav         *Navigator
	spawnRate   float64
	spawnBudget map[AreaID]float64
	index       *Quadtree
}

// FishView is the read-only state of a fish handed to renderers and clients
type FishView struct {
	ID        FishID     `msgpack:"id"`
	Species   FishTypeID `msgpack:"species"`
	Name      string     `msgpack:"name"`
	Model     string     `msgpack:"model"`
	TextureID int        `msgpack:"textureId"`
	Scale     float64    `msgpack:"scale"`
	Area      AreaID     `msgpack:"area"`
	Position  Vec3       `msgpack:"position"`
	Heading   float64    `msgpack:"heading"`
	State     FishState  `msgpack:"state"`
	Fleeing   bool       `msgpack:"fleeing"`
	Interest  float64    `msgpack:"interest"`
}

// NewSimulation builds a simulation from a validated config
func NewSimulation(cfg Config) (*Simulation, error) {
	fishingMap, err := NewFishingMap(cfg.Areas, cfg.ZoneMask)
	if err != nil {
		return nil, fmt.Errorf("build map: %w", err)
	}

	rng := NewRNG(cfg.Seed)
	s := &Simulation{
		Registry:    NewTypeRegistry(cfg.Species),
		Map:         fishingMap,
		Path:        NewPathStrategy(cfg.PathStrategy),
		CatchModel:  cfg.CatchModel,
		Pool:        NewFishPool(cfg.MaxActiveFish),
		rng:         rng,
		nav:         NewNavigator(rng, MapSize, GridMargin),
		spawnBudget: make(map[AreaID]float64),
	}
	s.SetSpawnRate(cfg.SpawnRate)
	if s.CatchModel == "" {
		s.CatchModel = CatchModelFlat
	}
	s.rebuildIndex()

	log.Printf("Simulation ready: seed %d, %d species, %d areas, max %d fish",
		rng.Seed(), s.Registry.Len(), len(fishingMap.Areas()), s.Pool.MaxActive())
	return s, nil
}

// RNG exposes the simulation's random source
func (s *Simulation) RNG() *RNG {
	return s.rng
}

// Navigator exposes the grid the fish swim in
func (s *Simulation) Navigator() *Navigator {
	return s.nav
}

// SpawnFish spawns a fish of a randomly drawn species in area
func (s *Simulation) SpawnFish(area AreaID) (*Fish, error) {
	if err := s.checkSpawn(area); err != nil {
		return nil, err
	}
	return s.spawn(area, s.Registry.ChooseRandomType(s.rng))
}

// SpawnFishOfType spawns a fish of a fixed species in area. Unknown species
// ids spawn the default species.
func (s *Simulation) SpawnFishOfType(area AreaID, typ FishTypeID) (*Fish, error) {
	if err := s.checkSpawn(area); err != nil {
		return nil, err
	}
	if !s.Registry.Valid(typ) {
		typ = DefaultFishType
	}
	return s.spawn(area, typ)
}

func (s *Simulation) checkSpawn(area AreaID) error {
	if _, err := s.Map.Area(area); err != nil {
		return err
	}
	if s.Pool.Full() {
		return fmt.Errorf("%w: limit %d", ErrPoolFull, s.Pool.MaxActive())
	}
	return nil
}

func (s *Simulation) spawn(areaID AreaID, typ FishTypeID) (*Fish, error) {
	area, _ := s.Map.Area(areaID)
	info := s.Registry.Info(typ)
	center := area.Bounds.Center()

	start := s.nav.ClampToGrid(Vec3{
		X: center.X + s.rng.Float(-SpawnJitter, SpawnJitter),
		Y: s.rng.Float(SwimDepthMin, SwimDepthMax),
		Z: center.Z + s.rng.Float(-SpawnJitter, SpawnJitter),
	})

	f := &Fish{
		Type:    typ,
		Area:    areaID,
		Window:  s.Path.Init(start, s.nav),
		Speed:   s.rng.Float(info.MinSpeed, info.MaxSpeed),
		Heading: s.rng.Angle(),
	}
	f.BaseSpeed = f.Speed
	f.Position = s.nav.ClampToGrid(s.Path.Evaluate(0, f.Window.Points()))

	if _, err := s.Pool.Add(f); err != nil {
		return nil, err
	}
	s.rebuildIndex()

	log.Printf("Spawned %s #%d in area %s at (%.2f, %.2f, %.2f)",
		info.Name, f.ID, area.Name, f.Position.X, f.Position.Y, f.Position.Z)
	return f, nil
}

// DespawnFish removes a fish; it reports false for unknown ids
func (s *Simulation) DespawnFish(id FishID) bool {
	if !s.Pool.Remove(id) {
		return false
	}
	s.rebuildIndex()
	return true
}

// DespawnAll removes every fish and returns how many were removed
func (s *Simulation) DespawnAll() int {
	n := s.Pool.Clear()
	s.rebuildIndex()
	return n
}

// SetMaxActiveFish changes the active fish limit
func (s *Simulation) SetMaxActiveFish(n int) {
	s.Pool.SetMaxActive(n)
}

// SetSpawnRate sets how many fish per second auto-spawn in each fishing area
func (s *Simulation) SetSpawnRate(rate float64) {
	if rate < 0 {
		rate = 0
	}
	s.spawnRate = rate
}

// SpawnRate returns the auto-spawn rate
func (s *Simulation) SpawnRate() float64 {
	return s.spawnRate
}

// SpawnIfNeeded accrues spawn budget for each listed area and spawns fish
// when a whole fish is due. Areas without fish and a full pool are skipped.
func (s *Simulation) SpawnIfNeeded(dt float64, areas []AreaID) []*Fish {
	var spawned []*Fish
	for _, area := range areas {
		hasFish, err := s.Map.AreaHasFish(area)
		if err != nil || !hasFish {
			continue
		}
		s.spawnBudget[area] += s.spawnRate * dt
		for s.spawnBudget[area] >= 1 {
			s.spawnBudget[area]--
			f, err := s.SpawnFish(area)
			if err != nil {
				// Pool full; drop the budget so fish do not burst in later
				s.spawnBudget[area] = 0
				break
			}
			spawned = append(spawned, f)
		}
	}
	return spawned
}

// Tick advances every swimming fish by dt seconds. Baits drive interest and
// attraction when the interest catch model is active.
func (s *Simulation) Tick(dt float64, baits []Bait) {
	if dt <= 0 {
		return
	}
	s.Pool.Each(func(f *Fish) {
		s.updateFish(f, dt, baits)
	})
	s.rebuildIndex()
}

func (s *Simulation) updateFish(f *Fish, dt float64, baits []Bait) {
	if f.Hooked {
		return
	}
	old := f.Position

	target, attracted := Vec3{}, false
	if s.CatchModel == CatchModelInterest {
		target, attracted = s.updateInterest(f, dt, baits)
	}

	switch {
	case attracted:
		s.swimToward(f, target, dt)
	case f.Attracted:
		// Attraction ended: start a fresh path from where the fish is now
		f.Window = s.Path.Init(f.Position, s.nav)
		f.T = 0
		s.followPath(f, dt)
	default:
		s.followPath(f, dt)
	}
	f.Attracted = attracted

	movement := f.Position.Sub(old)
	if movement.Length() > HeadingEpsilon {
		f.Heading = Heading(movement)
	}

	f.calm(dt)
}

// followPath moves the fish along its spline. Progress past the end of a
// segment carries into the next one so the motion never stalls.
func (s *Simulation) followPath(f *Fish, dt float64) {
	f.T += f.Speed * dt
	for f.T >= 1 {
		f.T--
		s.Path.Advance(&f.Window, s.nav)
	}
	f.Position = s.nav.ClampToGrid(s.Path.Evaluate(f.T, f.Window.Points()))
}

func (s *Simulation) swimToward(f *Fish, target Vec3, dt float64) {
	toTarget := target.Sub(f.Position)
	distance := toTarget.Length()
	step := f.Speed * AttractSpeed * dt
	if distance <= step {
		f.Position = s.nav.ClampToGrid(target)
		return
	}
	f.Position = s.nav.ClampToGrid(f.Position.Add(toTarget.Mul(step / distance)))
}

func (s *Simulation) rebuildIndex() {
	min, max := s.nav.Bounds()
	s.index = NewQuadtree(Rect{X: min, Y: min, Width: max - min, Height: max - min}, 4)
	s.Pool.Each(func(f *Fish) {
		s.index.Insert(&FishEntity{Fish: f, Radius: s.Registry.Info(f.Type).Radius()})
	})
}

// FishNear returns the fish whose hit sphere reaches within radius of pos on
// the horizontal plane
func (s *Simulation) FishNear(pos Vec3, radius float64) []*Fish {
	found := s.index.QueryCircle(pos.XZ(), radius, nil)
	out := make([]*Fish, 0, len(found))
	for _, e := range found {
		if fe, ok := e.(*FishEntity); ok {
			out = append(out, fe.Fish)
		}
	}
	return out
}

// View returns the renderable state of one fish
func (s *Simulation) View(id FishID) (FishView, bool) {
	f, ok := s.Pool.Get(id)
	if !ok {
		return FishView{}, false
	}
	return s.view(f), true
}

// Views returns every active fish in spawn order
func (s *Simulation) Views() []FishView {
	views := make([]FishView, 0, s.Pool.Len())
	s.Pool.Each(func(f *Fish) {
		views = append(views, s.view(f))
	})
	return views
}

func (s *Simulation) view(f *Fish) FishView {
	info := s.Registry.Info(f.Type)
	return FishView{
		ID:        f.ID,
		Species:   f.Type,
		Name:      info.Name,
		Model:     info.Model,
		TextureID: info.TextureID,
		Scale:     info.Scale,
		Area:      f.Area,
		Position:  f.Position,
		Heading:   f.Heading,
		State:     f.State(),
		Fleeing:   f.Fleeing,
		Interest:  f.Interest,
	}
}
