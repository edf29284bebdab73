package world

import "github.com/mlange-42/ark/ecs"

// ResetFood spawns food in every empty cell with probability rate.
// Occupied cells are never overwritten.
func (w *World) ResetFood(rate float64) int {
	size := w.grid.Size()
	spawned := 0
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			if w.rng.Float64() >= rate || !w.grid.Empty(x, y) {
				continue
			}
			w.SpawnFood(x, y, w.foodAmount())
			spawned++
		}
	}
	return spawned
}

// ResetPopulation spawns founders from factory into agent-free cells with
// probability world.reset_spawn_rate. Food in a chosen cell is evicted.
func (w *World) ResetPopulation(factory PolicyFactory) int {
	size := w.grid.Size()
	rate := w.cfg.World.ResetSpawnRate
	spawned := 0
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			if w.rng.Float64() >= rate {
				continue
			}
			if _, taken := w.grid.AgentAt(x, y); taken {
				continue
			}
			w.SpawnAgent(x, y, w.cfg.Energy.Base, factory(w.rng))
			spawned++
		}
	}
	if spawned > 0 {
		w.ClearScanCache()
	}
	return spawned
}

// ResetMap removes every agent and food and repopulates the grid with the
// spawn algorithm. A changed world.size takes effect here.
func (w *World) ResetMap() {
	w.Clear()
	w.spawnAll(w.FreshPolicy)
}

// Clear removes every agent and food, leaving an empty grid of the current
// configured size.
func (w *World) Clear() {
	var all []ecs.Entity
	query := w.agentFilter.Query()
	for query.Next() {
		all = append(all, query.Entity())
	}
	for _, e := range all {
		w.ecs.RemoveEntity(e)
	}
	clear(w.brains)
	w.live = 0

	if w.cfg.World.Size != w.grid.Size() {
		w.grid = NewGrid(w.cfg.World.Size)
	} else {
		w.grid.Clear()
	}
	w.ClearScanCache()
}
