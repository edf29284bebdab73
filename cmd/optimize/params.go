// Package main provides CMA-ES optimization for blob simulation parameters.
package main

import (
	"github.com/pthm-cable/blobsim/config"
	"github.com/pthm-cable/blobsim/game"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Tunable name, as accepted by game.Simulation.Set
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{
				Name: game.ParamFoodRate, Path: "world.food_rate", Min: 0.3, Max: 0.99, Default: 0.95,
				get: func(c *config.Config) float64 { return c.World.FoodRate },
				set: func(c *config.Config, v float64) { c.World.FoodRate = v },
			},
			{
				Name: game.ParamResetFoodRate, Path: "world.reset_food_rate", Min: 0, Max: 0.02, Default: 0.002,
				get: func(c *config.Config) float64 { return c.World.ResetFoodRate },
				set: func(c *config.Config, v float64) { c.World.ResetFoodRate = v },
			},
			{
				Name: game.ParamSpawnRate, Path: "world.spawn_rate", Min: 0.02, Max: 0.5, Default: 0.2,
				get: func(c *config.Config) float64 { return c.World.SpawnRate },
				set: func(c *config.Config, v float64) { c.World.SpawnRate = v },
			},
			{
				Name: game.ParamMutationRate, Path: "mutation.rate", Min: 0, Max: 0.5, Default: 0.1,
				get: func(c *config.Config) float64 { return c.Mutation.Rate },
				set: func(c *config.Config, v float64) { c.Mutation.Rate = v },
			},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg, in Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.get(cfg)
	}
	return v
}
