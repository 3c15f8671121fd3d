package main

import (
	"fmt"
	"os"
	"strings"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "carpa.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults do not validate: %v", err)
	}
	if cfg.CatchModel != CatchModelFlat || cfg.PathStrategy != PathCatmullRom {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}

	total := 0.0
	for _, sp := range cfg.Species {
		total += sp.SpawnProbability
	}
	if total < 1-epsilon || total > 1+epsilon {
		t.Fatalf("default weights sum to %v", total)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
seed: 9
max_active_fish: 3
spawn_rate: 0.5
catch_model: interest
path_strategy: bezier
species:
  - name: Carp
    model: carp
    texture_id: 2
    min_speed: 0.2
    max_speed: 0.4
    catch_chance: 0.9
    difficulty: 0.1
    points: 5
    scale: 0.8
    spawn_probability: 1
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Seed != 9 || cfg.MaxActiveFish != 3 || cfg.SpawnRate != 0.5 {
		t.Fatalf("scalars not loaded: %+v", cfg)
	}
	if cfg.CatchModel != CatchModelInterest || cfg.PathStrategy != PathBezier {
		t.Fatalf("model/strategy not loaded: %s %s", cfg.CatchModel, cfg.PathStrategy)
	}
	if len(cfg.Species) != 1 || cfg.Species[0].Name != "Carp" || cfg.Species[0].Points != 5 {
		t.Fatalf("species not loaded: %+v", cfg.Species)
	}
	if cfg.Species[0].Radius() != DefaultFishRadius {
		t.Fatalf("missing hit_radius should fall back to %v", DefaultFishRadius)
	}
	if len(cfg.Areas) != 6 || len(cfg.ZoneMask) != ZoneMaskSize {
		t.Fatalf("omitted sections lost their defaults")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown model", "catch_model: magic\n"},
		{"unknown strategy", "path_strategy: zigzag\n"},
		{"negative limit", "max_active_fish: -1\n"},
		{"bad speed", "species:\n  - name: Slug\n    min_speed: 0\n    max_speed: 1\n"},
		{"bad chance", "species:\n  - name: Eel\n    min_speed: 1\n    max_speed: 1\n    catch_chance: 2\n"},
		{"short mask", "zone_mask: ['.....']\n"},
		{"not yaml", "species: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Fatalf("config accepted:\n%s", tt.body)
			}
		})
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestValidateWireLimits(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"texture id", func(c *Config) { c.Species[0].TextureID = 256 }},
		{"negative texture id", func(c *Config) { c.Species[0].TextureID = -1 }},
		{"long model", func(c *Config) { c.Species[0].Model = strings.Repeat("m", 1<<16) }},
		{"too many species", func(c *Config) {
			for i := len(c.Species); i <= 256; i++ {
				c.Species = append(c.Species, FishTypeInfo{Name: fmt.Sprintf("Fish %d", i), MinSpeed: 1, MaxSpeed: 1})
			}
		}},
		{"too many areas", func(c *Config) {
			for i := len(c.Areas); i <= 256; i++ {
				c.Areas = append(c.Areas, MapArea{Name: fmt.Sprintf("extra_%d", i)})
			}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("config accepted")
			}
		})
	}

	cfg := DefaultConfig()
	cfg.Species[0].TextureID = 255
	if err := cfg.Validate(); err != nil {
		t.Fatalf("texture id 255 rejected: %v", err)
	}
}
