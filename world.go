package main

import (
	"errors"
	"log"
	"sort"
	"sync"
	"time"
)

// InputKind tells the game loop what an angler asked for
type InputKind int

const (
	InputMove InputKind = iota
	InputCast
	InputReel
	InputFish
	InputNavigate
)

// AnglerInput is one queued request from a client
type AnglerInput struct {
	AnglerID string
	Kind     InputKind
	Throttle float64
	Turn     float64
	Steer    Vec2
	Charge   float64
	Reel     bool
	Seq      uint32
}

// World holds every angler around one fish simulation and runs the game loop
type World struct {
	Sim          *Simulation
	Anglers      map[string]*Angler
	InputQueue   chan AnglerInput
	CommandQueue chan CommandRequest
	mu           sync.RWMutex
	stop         chan struct{}
	stopOnce     sync.Once
}

// NewWorld creates a new world around a simulation built from cfg
func NewWorld(cfg Config) (*World, error) {
	sim, err := NewSimulation(cfg)
	if err != nil {
		return nil, err
	}
	return &World{
		Sim:          sim,
		Anglers:      make(map[string]*Angler),
		InputQueue:   make(chan AnglerInput, InputQueueSize),
		CommandQueue: make(chan CommandRequest, CommandQueueSize),
		stop:         make(chan struct{}),
	}, nil
}

// Start begins the game loop
func (w *World) Start() {
	go w.GameLoop()
	go w.BroadcastLoop()
}

// Stop ends both loops
func (w *World) Stop() {
	w.stopOnce.Do(func() { close(w.stop) })
}

// GameLoop runs the main game tick at TickRate
func (w *World) GameLoop() {
	ticker := time.NewTicker(time.Duration(TickInterval) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Update(float64(TickInterval) / 1000.0)
		case <-w.stop:
			return
		}
	}
}

// BroadcastLoop sends state updates at BroadcastRate and the leaderboard at 1Hz
func (w *World) BroadcastLoop() {
	stateTicker := time.NewTicker(time.Second / BroadcastRate)
	leaderboardTicker := time.NewTicker(time.Second)
	defer stateTicker.Stop()
	defer leaderboardTicker.Stop()

	for {
		select {
		case <-stateTicker.C:
			w.BroadcastState()
		case <-leaderboardTicker.C:
			w.BroadcastLeaderboard()
		case <-w.stop:
			return
		}
	}
}

// Update updates the game state for one tick
func (w *World) Update(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	// 1. Process input and admin commands
	w.ProcessInputs()
	w.ProcessCommands()

	// 2. Move boats and baits
	w.UpdateBoats(dt)
	w.UpdateBaits(dt)

	// 3. Move fish
	w.Sim.Tick(dt, w.baitsInWater())

	// 4. Resolve bites
	w.ResolveHooks()

	// 5. Keep the fishing areas stocked
	w.Sim.SpawnIfNeeded(dt, w.fishingAreas())
}

// ProcessInputs drains the input queue and applies it to the anglers
func (w *World) ProcessInputs() {
	for {
		select {
		case input := <-w.InputQueue:
			angler, exists := w.Anglers[input.AnglerID]
			if !exists {
				continue
			}
			angler.LastSeq = input.Seq
			w.applyInput(angler, input)
		default:
			return
		}
	}
}

func (w *World) applyInput(a *Angler, input AnglerInput) {
	switch input.Kind {
	case InputMove:
		a.Throttle = Clamp(input.Throttle, -1, 1)
		a.Turn = Clamp(input.Turn, -1, 1)
		steer := input.Steer
		if steer.Length() > 1 {
			steer = Vec2{X: steer.X / steer.Length(), Y: steer.Y / steer.Length()}
		}
		a.Steer = steer
	case InputCast:
		if a.Cast(input.Charge) {
			log.Printf("Angler %s cast with power %.1f", a.Name, ThrowPower(input.Charge))
		}
	case InputReel:
		if a.Bait.InWater {
			a.Reeling = input.Reel
		}
	case InputFish:
		w.EnterFishing(a)
	case InputNavigate:
		w.LeaveFishing(a)
	}
}

// EnterFishing switches an angler to the fishing phase when the boat floats
// over an area that has fish, and spawns one there
func (w *World) EnterFishing(a *Angler) bool {
	if a.Phase == PhaseFishing {
		return true
	}
	area := w.Sim.Map.AreaAt(a.Boat.Position)
	hasFish, err := w.Sim.Map.AreaHasFish(area)
	if err != nil || !hasFish {
		log.Printf("Angler %s tried to fish in an empty area", a.Name)
		return false
	}

	a.Phase = PhaseFishing
	a.Area = area
	a.Throttle, a.Turn = 0, 0
	a.ResetBait()

	if _, err := w.Sim.SpawnFish(area); err != nil && !errors.Is(err, ErrPoolFull) {
		log.Printf("Spawn for %s failed: %v", a.Name, err)
	}
	return true
}

// LeaveFishing returns an angler to navigation and brings the bait back
func (w *World) LeaveFishing(a *Angler) {
	a.Phase = PhaseNavigation
	a.ResetBait()
}

// UpdateBoats moves navigating boats, refusing moves onto invalid zone cells
func (w *World) UpdateBoats(dt float64) {
	for _, a := range w.Anglers {
		if a.Phase != PhaseNavigation {
			continue
		}
		a.Boat.Rotation += a.Turn * BoatTurnRate * dt
		if a.Throttle == 0 {
			continue
		}
		next := a.Boat.Position.Add(a.Boat.Forward().Mul(a.Throttle * BoatSpeed * dt))
		if w.Sim.Map.OnMap(next) && w.Sim.Map.IsValidBoatPosition(next) {
			a.Boat.Position = next
		}
	}
}

// UpdateBaits advances every bait
func (w *World) UpdateBaits(dt float64) {
	for _, a := range w.Anglers {
		a.UpdateBait(dt)
	}
}

func (w *World) baitsInWater() []Bait {
	baits := make([]Bait, 0, len(w.Anglers))
	for _, a := range w.sortedAnglers() {
		if a.Phase == PhaseFishing && a.Bait.InWater {
			baits = append(baits, a.Bait)
		}
	}
	return baits
}

// ResolveHooks rolls a hook attempt for every bait in the water. A catch
// scores, removes the fish and restocks the area; an escape returns the bait.
func (w *World) ResolveHooks() {
	for _, a := range w.sortedAnglers() {
		if a.Phase != PhaseFishing || !a.Bait.InWater {
			continue
		}

		out := w.Sim.TryHook(a.Bait)
		if out.Result == HookNoCollision {
			continue
		}
		a.LastHook = out

		switch out.Result {
		case HookCaught:
			a.Score += out.Points
			a.Catches++
			w.Sim.DespawnFish(out.FishID)
			a.ResetBait()
			log.Printf("Angler %s caught a %s (+%d, total %d)", a.Name, out.Species, out.Points, a.Score)
			if _, err := w.Sim.SpawnFish(a.Area); err != nil && !errors.Is(err, ErrPoolFull) {
				log.Printf("Respawn in area %d failed: %v", a.Area, err)
			}
		case HookEscaped:
			a.ResetBait()
		}

		if a.Client != nil {
			a.Client.SendMessage(ServerMessage{Type: "hook", Payload: out})
		}
	}
}

func (w *World) fishingAreas() []AreaID {
	seen := make(map[AreaID]bool)
	var areas []AreaID
	for _, a := range w.sortedAnglers() {
		if a.Phase == PhaseFishing && !seen[a.Area] {
			seen[a.Area] = true
			areas = append(areas, a.Area)
		}
	}
	sort.Slice(areas, func(i, j int) bool { return areas[i] < areas[j] })
	return areas
}

// sortedAnglers keeps per-tick resolution independent of map order
func (w *World) sortedAnglers() []*Angler {
	anglers := make([]*Angler, 0, len(w.Anglers))
	for _, a := range w.Anglers {
		anglers = append(anglers, a)
	}
	sort.Slice(anglers, func(i, j int) bool { return anglers[i].ID < anglers[j].ID })
	return anglers
}

// BroadcastState sends each angler its own state and the fish
func (w *World) BroadcastState() {
	w.mu.RLock()
	defer w.mu.RUnlock()

	fish := w.Sim.Views()
	for _, a := range w.Anglers {
		if a.Client == nil {
			continue
		}
		a.Client.SendMessage(ServerMessage{
			Type:    "state",
			Payload: w.BuildStateForAngler(a, fish),
		})
	}
}

// BroadcastLeaderboard sends leaderboard updates separately
func (w *World) BroadcastLeaderboard() {
	w.mu.RLock()
	defer w.mu.RUnlock()

	leaderboard := w.GetLeaderboard()
	for _, a := range w.Anglers {
		if a.Client == nil {
			continue
		}
		a.Client.SendMessage(ServerMessage{Type: "leaderboard", Payload: leaderboard})
	}
}

// BuildStateForAngler creates a state message for one angler
func (w *World) BuildStateForAngler(a *Angler, fish []FishView) GameStatePayload {
	return GameStatePayload{
		You: AnglerState{
			ID:       a.ID,
			Name:     a.Name,
			Phase:    a.Phase,
			Boat:     a.Boat.Position,
			Rotation: a.Boat.Rotation,
			Bait:     a.Bait.Position,
			Launched: a.Bait.Launched,
			InWater:  a.Bait.InWater,
			Area:     a.Area,
			Score:    a.Score,
			Catches:  a.Catches,
			Seq:      a.LastSeq,
		},
		Fish: fish,
	}
}

// GetLeaderboard returns the top anglers by score
func (w *World) GetLeaderboard() []LeaderboardEntry {
	anglers := make([]*Angler, 0, len(w.Anglers))
	for _, a := range w.Anglers {
		anglers = append(anglers, a)
	}

	sort.Slice(anglers, func(i, j int) bool {
		if anglers[i].Score != anglers[j].Score {
			return anglers[i].Score > anglers[j].Score
		}
		return anglers[i].Name < anglers[j].Name
	})

	leaderboard := make([]LeaderboardEntry, 0, LeaderboardSize)
	for i := 0; i < len(anglers) && i < LeaderboardSize; i++ {
		leaderboard = append(leaderboard, LeaderboardEntry{
			Name:    anglers[i].Name,
			Score:   anglers[i].Score,
			Catches: anglers[i].Catches,
		})
	}
	return leaderboard
}

// SpawnPoint returns where new boats start: the map center when it is open
// water, otherwise the first valid zone cell
func (w *World) SpawnPoint() Vec3 {
	if w.Sim.Map.IsValidBoatPosition(Vec3{}) {
		return Vec3{}
	}
	for row := 0; row < ZoneMaskSize; row++ {
		for col := 0; col < ZoneMaskSize; col++ {
			pos := w.Sim.Map.CellCenter(ZoneCell{Col: col, Row: row})
			if w.Sim.Map.IsValidBoatPosition(pos) {
				return pos
			}
		}
	}
	return Vec3{}
}

// AddAngler adds a new angler to the world
func (w *World) AddAngler(a *Angler) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.Anglers[a.ID] = a
	log.Printf("Added angler %s to world. Total anglers: %d", a.ID, len(w.Anglers))
}

// FindClient returns the connected client with the given id
func (w *World) FindClient(id string) *Client {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if a, ok := w.Anglers[id]; ok {
		return a.Client
	}
	return nil
}

// Disconnect removes an angler when its client goes away
func (w *World) Disconnect(client *Client) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if client.Angler != nil {
		delete(w.Anglers, client.Angler.ID)
		log.Printf("Angler %s disconnected. Total anglers: %d", client.Angler.ID, len(w.Anglers))
	}
	client.Close()
}

// speciesTable returns the species records sent to clients on the meta socket
func (w *World) speciesTable() []FishTypeInfo {
	return w.Sim.Registry.All()
}
