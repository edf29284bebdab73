package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}

	if cfg.World.Size != 400 {
		t.Errorf("world.size = %d, want 400", cfg.World.Size)
	}
	if cfg.Perception.ScanRange != 7 {
		t.Errorf("perception.scan_range = %d, want 7", cfg.Perception.ScanRange)
	}
	if got := len(cfg.Neural.HiddenLayers); got != 3 {
		t.Errorf("len(neural.hidden_layers) = %d, want 3", got)
	}
	if cfg.Derived.NumInputs != 17 || cfg.Derived.NumOutputs != 7 {
		t.Errorf("derived dims = %d/%d, want 17/7", cfg.Derived.NumInputs, cfg.Derived.NumOutputs)
	}
}

func TestLoadOverridesOnlyPresentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := []byte("world:\n  size: 50\nmutation:\n  rate: 0.3\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.World.Size != 50 {
		t.Errorf("world.size = %d, want 50", cfg.World.Size)
	}
	if cfg.Mutation.Rate != 0.3 {
		t.Errorf("mutation.rate = %v, want 0.3", cfg.Mutation.Rate)
	}
	// Untouched keys keep their defaults
	if cfg.World.SpawnRate != 0.2 {
		t.Errorf("world.spawn_rate = %v, want default 0.2", cfg.World.SpawnRate)
	}
	if cfg.Mutation.Power != 0.5 {
		t.Errorf("mutation.power = %v, want default 0.5", cfg.Mutation.Power)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"zero size", func(c *Config) { c.World.Size = 0 }, "world.size"},
		{"spawn rate above one", func(c *Config) { c.World.SpawnRate = 1.5 }, "world.spawn_rate"},
		{"negative food rate", func(c *Config) { c.World.FoodRate = -0.1 }, "world.food_rate"},
		{"zero scan range", func(c *Config) { c.Perception.ScanRange = 0 }, "perception.scan_range"},
		{"zero cache", func(c *Config) { c.Perception.CacheSize = 0 }, "perception.cache_size"},
		{"food min above max", func(c *Config) { c.Food.MinAmount = 9 }, "food amounts"},
		{"no hidden layers", func(c *Config) { c.Neural.HiddenLayers = nil }, "neural.hidden_layers"},
		{"zero hidden layer", func(c *Config) { c.Neural.HiddenLayers = []int{4, 0} }, "hidden_layers[1]"},
		{"zero temperature", func(c *Config) { c.Decision.TemperatureMin = 0 }, "temperature_min"},
		{"unknown reseed", func(c *Config) { c.Extinction.Reseed = "clone" }, "extinction.reseed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := MustLoad("")
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := MustLoad("")
	clone := cfg.Clone()

	clone.Neural.HiddenLayers[0] = 99
	clone.Mutation.Rate = 0.9

	if cfg.Neural.HiddenLayers[0] == 99 {
		t.Error("clone shares hidden layer slice with original")
	}
	if cfg.Mutation.Rate == 0.9 {
		t.Error("clone shares mutation config with original")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg := MustLoad("")
	cfg.World.Size = 64

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.World.Size != 64 {
		t.Errorf("world.size = %d after round trip, want 64", loaded.World.Size)
	}
}
