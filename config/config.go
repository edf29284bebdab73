// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen       ScreenConfig       `yaml:"screen"`
	World        WorldConfig        `yaml:"world"`
	Food         FoodConfig         `yaml:"food"`
	Energy       EnergyConfig       `yaml:"energy"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Perception   PerceptionConfig   `yaml:"perception"`
	Decision     DecisionConfig     `yaml:"decision"`
	Combat       CombatConfig       `yaml:"combat"`
	Mutation     MutationConfig     `yaml:"mutation"`
	Neural       NeuralConfig       `yaml:"neural"`
	Extinction   ExtinctionConfig   `yaml:"extinction"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"` // Also the target tick rate of the viewer
}

// WorldConfig holds grid dimensions and spawn probabilities.
type WorldConfig struct {
	Size           int     `yaml:"size"`             // Side of the square grid
	SpawnRate      float64 `yaml:"spawn_rate"`       // Per-cell probability that anything spawns
	FoodRate       float64 `yaml:"food_rate"`        // Probability a spawned entity is food
	ResetFoodRate  float64 `yaml:"reset_food_rate"`  // Per-empty-cell food probability on replenishment
	ResetSpawnRate float64 `yaml:"reset_spawn_rate"` // Per-cell agent probability on reseeding
	FoodInterval   int     `yaml:"food_interval"`    // Ticks between replenishment passes
}

// FoodConfig holds food amounts.
type FoodConfig struct {
	MinAmount int `yaml:"min_amount"`
	MaxAmount int `yaml:"max_amount"`
}

// EnergyConfig holds the energy economy.
type EnergyConfig struct {
	Base         int `yaml:"base"`           // Energy of spawned founders, cap for children
	DecayPerTurn int `yaml:"decay_per_turn"` // Flat cost paid every tick
	MoveCost     int `yaml:"move_cost"`      // Extra cost of a successful move
	AttackDamage int `yaml:"attack_damage"`  // Energy removed from the target
	AttackCost   int `yaml:"attack_cost"`    // Energy paid by the attacker
	KinPenalty   int `yaml:"kin_penalty"`    // Energy paid for attacking kin
}

// ReproductionConfig holds mating parameters.
type ReproductionConfig struct {
	MinEnergy     int     `yaml:"min_energy"`     // Both partners need at least this
	Cost          int     `yaml:"cost"`           // Paid by each parent
	ChildBase     float64 `yaml:"child_base"`     // Child energy = base + fraction * parents' mean
	ChildFraction float64 `yaml:"child_fraction"` // Share of the parents' mean energy passed to the child
	MaxOffset     int     `yaml:"max_offset"`     // Child is placed at Manhattan distance 1..MaxOffset
}

// PerceptionConfig holds scan ranges and normalization scales.
type PerceptionConfig struct {
	ScanRange        int     `yaml:"scan_range"`         // Manhattan radius of the nearest-entity scan
	DensityScanRange int     `yaml:"density_scan_range"` // Side of each density quadrant
	ContactRange     int     `yaml:"contact_range"`      // Distance at which agents are in contact
	EatRange         int     `yaml:"eat_range"`
	HitRange         int     `yaml:"hit_range"`
	CacheSize        int     `yaml:"cache_size"` // Per-agent scan cache entries
	EnergyScale      float64 `yaml:"energy_scale"`
	AmountScale      float64 `yaml:"amount_scale"`
	FailScale        float64 `yaml:"fail_scale"`
	ContactScale     float64 `yaml:"contact_scale"`
}

// DecisionConfig holds penalty shaping and exploration parameters.
type DecisionConfig struct {
	PenaltyDecay   float64 `yaml:"penalty_decay"`
	FailPenalty    float64 `yaml:"fail_penalty"`
	PenaltyMax     float64 `yaml:"penalty_max"`
	LoopPenalty    float64 `yaml:"loop_penalty"`
	LoopWindow     int     `yaml:"loop_window"`
	TemperatureMin float64 `yaml:"temperature_min"`
	TemperatureMax float64 `yaml:"temperature_max"`
	Noise          float64 `yaml:"noise"`        // Half-width of the uniform tie-break noise
	EnergyScale    float64 `yaml:"energy_scale"` // Energy at which temperature reaches its minimum
}

// CombatConfig holds attack parameters.
type CombatConfig struct {
	HitCooldown int `yaml:"hit_cooldown"` // Ticks between attacks
}

// MutationConfig holds mutation parameters.
type MutationConfig struct {
	Rate  float64 `yaml:"rate"`  // Per-layer mutation probability
	Power float64 `yaml:"power"` // Standard deviation of the layer noise
}

// NeuralConfig holds policy network parameters.
type NeuralConfig struct {
	HiddenLayers []int   `yaml:"hidden_layers"`
	InitScale    float64 `yaml:"init_scale"` // Multiplier on the N(0,1) initial weights
}

// ExtinctionConfig controls what happens when the population dies out.
type ExtinctionConfig struct {
	Reseed      string `yaml:"reseed"`       // "fresh" or "champion"
	ReseedCount int    `yaml:"reseed_count"` // Minimum agents spawned from the champion
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow int `yaml:"stats_window"` // Ticks per stats window
	PerfWindow  int `yaml:"perf_window"`  // Ticks averaged by the perf collector
	HistorySize int `yaml:"history_size"` // Population history length
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	NumInputs  int // Perception vector length
	NumOutputs int // One score per action
}

// Reseed modes.
const (
	ReseedFresh    = "fresh"
	ReseedChampion = "champion"
)

// Perception vector layout: 3 food + 4 nearest agent + 8 density + 2 contact.
const (
	numInputs  = 17
	numOutputs = 7
)

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.computeDerived()

	return cfg, nil
}

// MustLoad is like Load but panics on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: failed to load: %v", err))
	}
	return cfg
}

// Validate reports configuration that the simulation cannot run with.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	rate := func(name string, v float64) {
		check(v >= 0 && v <= 1, "%s must be in [0,1], got %v", name, v)
	}

	check(c.World.Size >= 1, "world.size must be >= 1, got %d", c.World.Size)
	rate("world.spawn_rate", c.World.SpawnRate)
	rate("world.food_rate", c.World.FoodRate)
	rate("world.reset_food_rate", c.World.ResetFoodRate)
	rate("world.reset_spawn_rate", c.World.ResetSpawnRate)
	rate("mutation.rate", c.Mutation.Rate)
	check(c.World.FoodInterval >= 1, "world.food_interval must be >= 1, got %d", c.World.FoodInterval)
	check(c.Food.MinAmount >= 1 && c.Food.MinAmount <= c.Food.MaxAmount,
		"food amounts must satisfy 1 <= min <= max, got %d..%d", c.Food.MinAmount, c.Food.MaxAmount)
	check(c.Perception.ScanRange >= 1, "perception.scan_range must be >= 1, got %d", c.Perception.ScanRange)
	check(c.Perception.DensityScanRange >= 1, "perception.density_scan_range must be >= 1, got %d", c.Perception.DensityScanRange)
	check(c.Perception.CacheSize >= 1, "perception.cache_size must be >= 1, got %d", c.Perception.CacheSize)
	check(c.Reproduction.MaxOffset >= 1, "reproduction.max_offset must be >= 1, got %d", c.Reproduction.MaxOffset)
	check(c.Decision.LoopWindow >= 1, "decision.loop_window must be >= 1, got %d", c.Decision.LoopWindow)
	check(c.Decision.TemperatureMin > 0, "decision.temperature_min must be > 0, got %v", c.Decision.TemperatureMin)
	check(len(c.Neural.HiddenLayers) > 0, "neural.hidden_layers must not be empty")
	for i, n := range c.Neural.HiddenLayers {
		check(n > 0, "neural.hidden_layers[%d] must be > 0, got %d", i, n)
	}
	check(c.Extinction.Reseed == ReseedFresh || c.Extinction.Reseed == ReseedChampion,
		"extinction.reseed must be %q or %q, got %q", ReseedFresh, ReseedChampion, c.Extinction.Reseed)

	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.NumInputs = numInputs
	c.Derived.NumOutputs = numOutputs
}

// Clone returns a deep copy, so a run can mutate its tunables without
// affecting the config it was started from.
func (c *Config) Clone() *Config {
	out := *c
	out.Neural.HiddenLayers = append([]int(nil), c.Neural.HiddenLayers...)
	return &out
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
