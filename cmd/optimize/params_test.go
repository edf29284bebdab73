package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/blobsim/config"
	"github.com/pthm-cable/blobsim/game"
)

func TestParamVector_NormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	norm := pv.Normalize(raw)
	for i, v := range norm {
		if v < 0 || v > 1 {
			t.Errorf("%s: default normalizes to %v, outside [0,1]", pv.Specs[i].Name, v)
		}
	}
	back := pv.Denormalize(norm)
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-12 {
			t.Errorf("%s: round trip %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestParamVector_Clamp(t *testing.T) {
	pv := NewParamVector()
	low := make([]float64, pv.Dim())
	high := make([]float64, pv.Dim())
	for i := range low {
		low[i], high[i] = -10, 10
	}
	for i, v := range pv.Clamp(low) {
		if v != pv.Specs[i].Min {
			t.Errorf("%s: clamp(-10) = %v, want %v", pv.Specs[i].Name, v, pv.Specs[i].Min)
		}
	}
	for i, v := range pv.Clamp(high) {
		if v != pv.Specs[i].Max {
			t.Errorf("%s: clamp(10) = %v, want %v", pv.Specs[i].Name, v, pv.Specs[i].Max)
		}
	}
}

func TestParamVector_ApplyAndExtract(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	pv := NewParamVector()

	values := []float64{0.5, 0.01, 0.1, 0.25}
	pv.ApplyToConfig(cfg, values)
	if cfg.World.FoodRate != 0.5 || cfg.World.ResetFoodRate != 0.01 ||
		cfg.World.SpawnRate != 0.1 || cfg.Mutation.Rate != 0.25 {
		t.Errorf("applied config = %+v, mutation %v", cfg.World, cfg.Mutation.Rate)
	}
	got := pv.ExtractFromConfig(cfg)
	for i := range values {
		if got[i] != values[i] {
			t.Errorf("%s: extracted %v, want %v", pv.Specs[i].Name, got[i], values[i])
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("applied config invalid: %v", err)
	}
}

func TestParamVector_NamesAreTunables(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.World.Size = 8
	sim, err := game.New(game.Options{Seed: 1, Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	defer sim.Close()

	for _, spec := range NewParamVector().Specs {
		if _, err := sim.Get(spec.Name); err != nil {
			t.Errorf("%s is not a simulation tunable: %v", spec.Name, err)
		}
	}
}

func TestComputeStability(t *testing.T) {
	tests := []struct {
		name string
		pops []int
		want func(float64) bool
	}{
		{"too short", []int{10, 10, 10}, func(v float64) bool { return v == 0 }},
		{"extinct", []int{5, 3, 0, 0, 0, 0}, func(v float64) bool { return v == 0 }},
		{"flat", []int{50, 20, 30, 30, 30, 30}, func(v float64) bool { return math.Abs(v-0.99) < 1e-9 }},
		{"noisy", []int{50, 20, 5, 60, 2, 80}, func(v float64) bool { return v > 0 && v < 0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeStability(tt.pops); !tt.want(got) {
				t.Errorf("computeStability(%v) = %v", tt.pops, got)
			}
		})
	}
}

func TestComputeFitness_SurvivalDominates(t *testing.T) {
	short := &runResult{survivalTicks: 100, populations: []int{1, 1, 1, 1, 1, 1}}
	long := &runResult{survivalTicks: 101, populations: []int{1, 90, 2, 70, 3, 60}}
	if computeFitness(long) >= computeFitness(short) {
		t.Errorf("longer survival should score lower: %v vs %v", computeFitness(long), computeFitness(short))
	}
}

func TestFitnessEvaluator_Evaluate(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.World.Size = 12
	before := cfg.World.SpawnRate

	const maxTicks = 20
	pv := NewParamVector()
	fe := NewFitnessEvaluator(pv, maxTicks, []int64{1, 2}, cfg)
	f := fe.Evaluate(pv.DefaultVector())

	if f > 0 || f < -(maxTicks+1) {
		t.Errorf("fitness %v outside [-%d, 0]", f, maxTicks+1)
	}
	if s := fe.LastSurvival(); s < 0 || s > maxTicks {
		t.Errorf("mean survival %v outside [0, %d]", s, maxTicks)
	}
	if fe.BestHallOfFame() == nil {
		t.Error("best hall of fame not recorded")
	}
	if cfg.World.SpawnRate != before {
		t.Error("evaluation modified the base config")
	}
}
