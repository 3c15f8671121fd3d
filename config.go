package main

import (
	"fmt"
	"log"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	TwoPi = 2 * math.Pi

	// Game loop configuration
	TickRate      = 30              // Simulation updates per second
	BroadcastRate = 15              // State broadcasts per second
	TickInterval  = 1000 / TickRate // milliseconds

	// Map configuration (map spans -MapSize/2 .. +MapSize/2 on x and z)
	MapScale     = 10.0
	MapSize      = MapScale * 2
	GridMargin   = 1.0 // fish keep this far from the map edge
	ZoneMaskSize = 25

	// Fish swimming
	SwimDepthMin      = -1.5
	SwimDepthMax      = -0.3
	MinMoveDistance   = 1.0
	MaxMoveDistance   = 3.0
	PickPointAttempts = 10
	CenterJitter      = 0.5 // radians of noise when steering back to the map center
	SpawnJitter       = 2.0
	AnchorJitter      = 1.0
	HeadingEpsilon    = 0.001

	// Hooking
	DefaultFishRadius   = 0.3
	BaseCatchChance     = 0.5
	MinCatchChance      = 0.05
	MaxCatchChance      = 0.95
	DetectionRadius     = 5.0
	AttractionRadius    = 2.0
	AttractionThreshold = 0.5
	InterestDecayRate   = 0.25 // interest lost per second with no bait around
	AttractSpeed        = 1.5  // world units per second per unit of segment speed
	FleeSpeedMultiplier = 1.5
	FleeDuration        = 3.0 // seconds

	// Boat and bait
	BoatSpeed       = 2.0
	BoatTurnRate    = 2.0
	BaitRadius      = 0.1
	WaterPlaneY     = -0.3
	Gravity         = 9.8
	MinThrowPower   = 5.0
	MaxThrowPower   = 30.0
	ReelSpeed       = 2.0
	BaitSteerSpeed  = 2.0
	BaitHoldHeight  = 0.5
	BaitLostRange   = MapSize // bait further than this from the boat is retrieved
	LeaderboardSize = 10

	// Network
	InputQueueSize   = 1024
	CommandQueueSize = 64
	WriteChannelSize = 256
	PingInterval     = 2000 // milliseconds
	MaxPlayerNameLen = 20
)

// Path strategies
const (
	PathCatmullRom = "catmull-rom"
	PathBezier     = "bezier"
)

// Catch models
const (
	CatchModelFlat     = "flat"
	CatchModelInterest = "interest"
)

// Config holds the tunables that can be overridden from a YAML file
type Config struct {
	Seed          int64          `yaml:"seed"`
	MaxActiveFish int            `yaml:"max_active_fish"`
	SpawnRate     float64        `yaml:"spawn_rate"` // fish per second per fishing area
	PathStrategy  string         `yaml:"path_strategy"`
	CatchModel    string         `yaml:"catch_model"`
	Species       []FishTypeInfo `yaml:"species"`
	Areas         []MapArea      `yaml:"areas"`
	ZoneMask      []string       `yaml:"zone_mask"`
}

// DefaultSpecies is the built-in species table. Weights sum to 1.0.
var DefaultSpecies = []FishTypeInfo{
	{
		Name: "Trout", Model: "Mesh_Trout", TextureID: 7,
		MinSpeed: 0.4, MaxSpeed: 0.7,
		CatchChance: 0.7, Difficulty: 0.3,
		Points: 10, Scale: 0.5, HitRadius: 0.3,
		SpawnProbability: 0.35,
	},
	{
		Name: "Piranha", Model: "Piranha", TextureID: 8,
		MinSpeed: 0.6, MaxSpeed: 0.9,
		CatchChance: 0.5, Difficulty: 0.5,
		Points: 20, Scale: 0.4, HitRadius: 0.25,
		SpawnProbability: 0.25,
	},
	{
		Name: "Kingfish", Model: "Mesh_Kingfish", TextureID: 6,
		MinSpeed: 0.5, MaxSpeed: 0.8,
		CatchChance: 0.4, Difficulty: 0.6,
		Points: 35, Scale: 0.7, HitRadius: 0.35,
		SpawnProbability: 0.2,
	},
	{
		Name: "Blowfish", Model: "Blowfish_01", TextureID: 9,
		MinSpeed: 0.3, MaxSpeed: 0.5,
		CatchChance: 0.6, Difficulty: 0.4,
		Points: 15, Scale: 0.45, HitRadius: 0.3,
		SpawnProbability: 0.12,
	},
	{
		Name: "Angler Fish", Model: "model", TextureID: 10,
		MinSpeed: 0.3, MaxSpeed: 0.6,
		CatchChance: 0.25, Difficulty: 0.8,
		Points: 60, Scale: 0.6, HitRadius: 0.3,
		SpawnProbability: 0.08,
	},
}

// DefaultZoneMask marks navigable water with '.' and shore or rocks with '#'
var DefaultZoneMask = []string{
	"#########################",
	"#.......................#",
	"#.......................#",
	"#....##.................#",
	"#....##.................#",
	"#.......................#",
	"#.......................#",
	"#...............###.....#",
	"#...............###.....#",
	"#.......................#",
	"#.......................#",
	"#.......................#",
	"#.......................#",
	"#.......................#",
	"#.......................#",
	"#.....###...............#",
	"#.....###...............#",
	"#.......................#",
	"#.......................#",
	"#..................##...#",
	"#..................##...#",
	"#.......................#",
	"#.......................#",
	"#.......................#",
	"#########################",
}

// DefaultAreas splits the map into two rows of three areas
func DefaultAreas() []MapArea {
	half := MapSize / 2
	colWidth := MapSize / 3
	rowHeight := MapSize / 2

	// has_fish per area, row by row
	hasFish := [2][3]bool{
		{false, true, false},
		{true, false, true},
	}

	areas := make([]MapArea, 0, 6)
	for row := 0; row < 2; row++ {
		// row 0 is the +z half of the map
		maxZ := half - rowHeight*float64(row)
		minZ := maxZ - rowHeight
		for col := 0; col < 3; col++ {
			minX := -half + colWidth*float64(col)
			areas = append(areas, MapArea{
				Name: fmt.Sprintf("%d_%d", row+1, col+1),
				Bounds: AABB{
					Min: Vec3{X: minX, Y: -0.5, Z: minZ},
					Max: Vec3{X: minX + colWidth, Y: 0.5, Z: maxZ},
				},
				HasFish: hasFish[row][col],
			})
		}
	}
	return areas
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() Config {
	species := make([]FishTypeInfo, len(DefaultSpecies))
	copy(species, DefaultSpecies)
	mask := make([]string, len(DefaultZoneMask))
	copy(mask, DefaultZoneMask)

	return Config{
		MaxActiveFish: 8,
		SpawnRate:     0.2,
		PathStrategy:  PathCatmullRom,
		CatchModel:    CatchModelFlat,
		Species:       species,
		Areas:         DefaultAreas(),
		ZoneMask:      mask,
	}
}

// LoadConfig reads a YAML file on top of the defaults. An empty path returns
// the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	log.Printf("Loaded config from %s (%d species, %d areas)", path, len(cfg.Species), len(cfg.Areas))
	return cfg, nil
}

// State frames carry species, area and texture ids in one byte and strings
// behind a 16-bit length
const (
	maxWireByte   = 0xFF
	maxWireString = 0xFFFF
)

// Validate checks the structural soundness of the config. Spawn weights need
// not sum to 1; the registry falls back to the default species when they fall
// short.
func (c Config) Validate() error {
	if len(c.Species) == 0 {
		return fmt.Errorf("at least one species is required")
	}
	if len(c.Species) > maxWireByte+1 {
		return fmt.Errorf("at most %d species are supported, got %d", maxWireByte+1, len(c.Species))
	}
	for i, sp := range c.Species {
		if sp.Name == "" {
			return fmt.Errorf("species %d has no name", i)
		}
		if len(sp.Name) > maxWireString || len(sp.Model) > maxWireString {
			return fmt.Errorf("species %d: name or model longer than %d bytes", i, maxWireString)
		}
		if sp.TextureID < 0 || sp.TextureID > maxWireByte {
			return fmt.Errorf("species %s: texture id %d outside [0, %d]", sp.Name, sp.TextureID, maxWireByte)
		}
		if sp.MinSpeed <= 0 || sp.MaxSpeed < sp.MinSpeed {
			return fmt.Errorf("species %s: invalid speed range [%g, %g]", sp.Name, sp.MinSpeed, sp.MaxSpeed)
		}
		if sp.CatchChance < 0 || sp.CatchChance > 1 {
			return fmt.Errorf("species %s: catch chance %g outside [0, 1]", sp.Name, sp.CatchChance)
		}
		if sp.Difficulty < 0 || sp.Difficulty > 1 {
			return fmt.Errorf("species %s: difficulty %g outside [0, 1]", sp.Name, sp.Difficulty)
		}
	}

	if len(c.Areas) == 0 {
		return fmt.Errorf("at least one area is required")
	}
	if len(c.Areas) > maxWireByte+1 {
		return fmt.Errorf("at most %d areas are supported, got %d", maxWireByte+1, len(c.Areas))
	}

	if len(c.ZoneMask) != ZoneMaskSize {
		return fmt.Errorf("zone mask needs %d rows, got %d", ZoneMaskSize, len(c.ZoneMask))
	}
	for i, row := range c.ZoneMask {
		if len(row) != ZoneMaskSize {
			return fmt.Errorf("zone mask row %d needs %d cells, got %d", i, ZoneMaskSize, len(row))
		}
	}

	switch c.PathStrategy {
	case PathCatmullRom, PathBezier:
	default:
		return fmt.Errorf("unknown path strategy: %s", c.PathStrategy)
	}

	switch c.CatchModel {
	case CatchModelFlat, CatchModelInterest:
	default:
		return fmt.Errorf("unknown catch model: %s", c.CatchModel)
	}

	if c.MaxActiveFish < 0 {
		return fmt.Errorf("max active fish must not be negative, got %d", c.MaxActiveFish)
	}
	if c.SpawnRate < 0 {
		return fmt.Errorf("spawn rate must not be negative, got %g", c.SpawnRate)
	}
	return nil
}
