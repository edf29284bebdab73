package game

import (
	"fmt"
	"log/slog"
)

// Tunable names accepted by Set.
const (
	ParamMutationRate  = "mutation_rate"
	ParamFoodRate      = "food_rate"
	ParamResetFoodRate = "reset_food_rate"
	ParamSpawnRate     = "spawn_rate"
	ParamScanRange     = "scan_range"
	ParamBaseEnergy    = "base_energy"
	ParamTickRate      = "tick_rate"
	ParamWorldSize     = "world_size"
)

// Params lists the tunables in display order.
var Params = []string{
	ParamMutationRate, ParamFoodRate, ParamResetFoodRate, ParamSpawnRate,
	ParamScanRange, ParamBaseEnergy, ParamTickRate, ParamWorldSize,
}

func checkRate(name string, v float64) error {
	if v < 0 || v > 1 {
		return fmt.Errorf("%s must be in [0,1], got %v", name, v)
	}
	return nil
}

// SetMutationRate sets the per-layer mutation probability of new children.
func (s *Simulation) SetMutationRate(v float64) error {
	if err := checkRate(ParamMutationRate, v); err != nil {
		return err
	}
	s.cfg.Mutation.Rate = v
	return nil
}

// SetFoodRate sets the share of spawned entities that are food. It takes
// effect on the next world reset.
func (s *Simulation) SetFoodRate(v float64) error {
	if err := checkRate(ParamFoodRate, v); err != nil {
		return err
	}
	s.cfg.World.FoodRate = v
	return nil
}

// SetResetFoodRate sets the per-empty-cell food probability of replenishment.
func (s *Simulation) SetResetFoodRate(v float64) error {
	if err := checkRate(ParamResetFoodRate, v); err != nil {
		return err
	}
	s.cfg.World.ResetFoodRate = v
	return nil
}

// SetSpawnRate sets the per-cell spawn probability of world resets.
func (s *Simulation) SetSpawnRate(v float64) error {
	if err := checkRate(ParamSpawnRate, v); err != nil {
		return err
	}
	s.cfg.World.SpawnRate = v
	return nil
}

// SetScanRange sets the nearest-entity scan radius. Cached scans are dropped.
func (s *Simulation) SetScanRange(r int) error {
	if r < 1 {
		return fmt.Errorf("%s must be >= 1, got %d", ParamScanRange, r)
	}
	s.cfg.Perception.ScanRange = r
	s.world.ClearScanCache()
	return nil
}

// SetBaseEnergy sets the energy of new founders and the child energy cap.
func (s *Simulation) SetBaseEnergy(v int) error {
	if v < 1 {
		return fmt.Errorf("%s must be >= 1, got %d", ParamBaseEnergy, v)
	}
	s.cfg.Energy.Base = v
	return nil
}

// SetTargetTickRate sets the viewer's ticks per second.
func (s *Simulation) SetTargetTickRate(v int) error {
	if v < 1 {
		return fmt.Errorf("%s must be >= 1, got %d", ParamTickRate, v)
	}
	s.targetTickRate = v
	return nil
}

// TargetTickRate returns the viewer's ticks per second.
func (s *Simulation) TargetTickRate() int { return s.targetTickRate }

// Resize changes the grid size and resets the world. Records in the hall of
// fame are kept.
func (s *Simulation) Resize(size int) error {
	if size < 1 {
		return fmt.Errorf("%s must be >= 1, got %d", ParamWorldSize, size)
	}
	s.cfg.World.Size = size
	s.Reset()
	return nil
}

// Reset repopulates the world with fresh agents and food.
func (s *Simulation) Reset() {
	s.lifetimeTracker.Reset()
	s.world.ResetMap()
	s.registerFounders()
	s.agg = s.world.Aggregate()
	s.history.Reset()
	s.history.Push(s.world.LiveCount())
	slog.Info("world reset", "tick", s.world.Turn(), "size", s.world.Size(), "population", s.world.LiveCount())
}

// Set applies a tunable by name. Integer tunables truncate v.
func (s *Simulation) Set(name string, v float64) error {
	switch name {
	case ParamMutationRate:
		return s.SetMutationRate(v)
	case ParamFoodRate:
		return s.SetFoodRate(v)
	case ParamResetFoodRate:
		return s.SetResetFoodRate(v)
	case ParamSpawnRate:
		return s.SetSpawnRate(v)
	case ParamScanRange:
		return s.SetScanRange(int(v))
	case ParamBaseEnergy:
		return s.SetBaseEnergy(int(v))
	case ParamTickRate:
		return s.SetTargetTickRate(int(v))
	case ParamWorldSize:
		return s.Resize(int(v))
	default:
		return fmt.Errorf("unknown parameter %q", name)
	}
}

// Get returns a tunable by name.
func (s *Simulation) Get(name string) (float64, error) {
	switch name {
	case ParamMutationRate:
		return s.cfg.Mutation.Rate, nil
	case ParamFoodRate:
		return s.cfg.World.FoodRate, nil
	case ParamResetFoodRate:
		return s.cfg.World.ResetFoodRate, nil
	case ParamSpawnRate:
		return s.cfg.World.SpawnRate, nil
	case ParamScanRange:
		return float64(s.cfg.Perception.ScanRange), nil
	case ParamBaseEnergy:
		return float64(s.cfg.Energy.Base), nil
	case ParamTickRate:
		return float64(s.targetTickRate), nil
	case ParamWorldSize:
		return float64(s.cfg.World.Size), nil
	default:
		return 0, fmt.Errorf("unknown parameter %q", name)
	}
}
