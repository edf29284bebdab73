// Package world owns the grid and the agent population.
package world

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/blobsim/components"
	"github.com/pthm-cable/blobsim/config"
	"github.com/pthm-cable/blobsim/neural"
)

// PolicyFactory creates a policy for a spawned founder.
type PolicyFactory func(rng *rand.Rand) *neural.Policy

// World holds the grid, the ECS population and the policies of its agents.
// It keeps agent positions and grid cells in sync on every spawn, move and
// removal.
type World struct {
	cfg *config.Config
	rng *rand.Rand

	ecs  *ecs.World
	grid *Grid

	agentMapper *ecs.Map4[
		components.Position,
		components.Energy,
		components.Organism,
		components.Memory,
	]
	agentFilter *ecs.Filter4[
		components.Position,
		components.Energy,
		components.Organism,
		components.Memory,
	]
	posMap    *ecs.Map1[components.Position]
	energyMap *ecs.Map1[components.Energy]
	orgMap    *ecs.Map1[components.Organism]
	memMap    *ecs.Map1[components.Memory]

	// Brain storage (per agent by ID)
	brains map[uint32]*neural.Policy

	nextID   uint32
	turn     int
	cacheGen uint64
	live     int
}

// New creates a world and populates it with the spawn algorithm.
func New(cfg *config.Config, rng *rand.Rand) *World {
	w := NewEmpty(cfg, rng)
	w.spawnAll(w.FreshPolicy)
	return w
}

// NewEmpty creates a world with an empty grid.
func NewEmpty(cfg *config.Config, rng *rand.Rand) *World {
	world := ecs.NewWorld()
	return &World{
		cfg:    cfg,
		rng:    rng,
		ecs:    world,
		grid:   NewGrid(cfg.World.Size),
		brains: make(map[uint32]*neural.Policy),
		nextID: 1,
		agentMapper: ecs.NewMap4[
			components.Position,
			components.Energy,
			components.Organism,
			components.Memory,
		](world),
		agentFilter: ecs.NewFilter4[
			components.Position,
			components.Energy,
			components.Organism,
			components.Memory,
		](world),
		posMap:    ecs.NewMap1[components.Position](world),
		energyMap: ecs.NewMap1[components.Energy](world),
		orgMap:    ecs.NewMap1[components.Organism](world),
		memMap:    ecs.NewMap1[components.Memory](world),
	}
}

// FreshPolicy creates a randomly initialized policy shaped by the config.
func (w *World) FreshPolicy(rng *rand.Rand) *neural.Policy {
	return neural.NewPolicy(rng,
		w.cfg.Derived.NumInputs, w.cfg.Derived.NumOutputs,
		w.cfg.Neural.HiddenLayers, w.cfg.Neural.InitScale)
}

// spawnAll visits every cell once and draws whether anything spawns there
// and whether it is food or an agent.
func (w *World) spawnAll(factory PolicyFactory) {
	size := w.grid.Size()
	rate := w.cfg.World.SpawnRate
	foodRate := w.cfg.World.FoodRate
	for x := 0; x < size; x++ {
		for y := 0; y < size; y++ {
			spawn := w.rng.Float64()
			kind := w.rng.Float64()
			if spawn >= rate {
				continue
			}
			if kind < foodRate {
				w.SpawnFood(x, y, w.foodAmount())
			} else if _, taken := w.grid.AgentAt(x, y); !taken {
				w.SpawnAgent(x, y, w.cfg.Energy.Base, factory(w.rng))
			}
		}
	}
}

func (w *World) foodAmount() int {
	lo, hi := w.cfg.Food.MinAmount, w.cfg.Food.MaxAmount
	return lo + w.rng.Intn(hi-lo+1)
}

// Config returns the config the world reads its tunables from.
func (w *World) Config() *config.Config { return w.cfg }

// Rand returns the world's random source.
func (w *World) Rand() *rand.Rand { return w.rng }

// Grid returns the grid. Callers must not mutate it directly.
func (w *World) Grid() *Grid { return w.grid }

// Size returns the side of the grid.
func (w *World) Size() int { return w.grid.Size() }

// Turn returns the current tick number.
func (w *World) Turn() int { return w.turn }

// AdvanceTurn moves to the next tick.
func (w *World) AdvanceTurn() { w.turn++ }

// CacheGen returns the scan cache generation.
func (w *World) CacheGen() uint64 { return w.cacheGen }

// ClearScanCache invalidates every agent's perception cache.
func (w *World) ClearScanCache() { w.cacheGen++ }

// LiveCount returns the number of live agents.
func (w *World) LiveCount() int { return w.live }

// FoodCount returns the number of food items on the grid.
func (w *World) FoodCount() int { return w.grid.Foods() }

// SpawnFood places food in (x, y). The cell must hold no agent.
func (w *World) SpawnFood(x, y, amount int) {
	if _, taken := w.grid.AgentAt(x, y); taken {
		panic(fmt.Sprintf("world: food spawned on agent at (%d,%d)", x, y))
	}
	w.grid.Place(x, y, Occupant{Kind: KindFood, Amount: amount})
}

// SpawnAgent creates a founder in (x, y), evicting any food there.
func (w *World) SpawnAgent(x, y, energy int, policy *neural.Policy) ecs.Entity {
	return w.spawn(x, y, energy, policy, [2]uint32{}, false)
}

// SpawnChild creates an agent descended from parents a and b.
func (w *World) SpawnChild(x, y, energy int, policy *neural.Policy, a, b uint32) ecs.Entity {
	return w.spawn(x, y, energy, policy, [2]uint32{a, b}, true)
}

func (w *World) spawn(x, y, energy int, policy *neural.Policy, parents [2]uint32, hasParents bool) ecs.Entity {
	if _, taken := w.grid.AgentAt(x, y); taken {
		panic(fmt.Sprintf("world: agent spawned on agent at (%d,%d)", x, y))
	}

	id := w.nextID
	w.nextID++

	pos := components.Position{X: x, Y: y}
	en := components.Energy{Value: energy, Alive: true}
	org := components.Organism{
		ID:          id,
		ParentIDs:   parents,
		HasParents:  hasParents,
		BirthTurn:   w.turn,
		LastHitTurn: w.turn - w.cfg.Combat.HitCooldown,
	}
	mem := components.NewMemory(w.cfg.Decision.LoopWindow, w.cfg.Perception.CacheSize)

	entity := w.agentMapper.NewEntity(&pos, &en, &org, &mem)
	w.brains[id] = policy
	w.grid.Place(x, y, Occupant{Kind: KindAgent, Agent: entity})
	w.live++
	return entity
}

// Alive reports whether the entity is a live agent.
func (w *World) Alive(e ecs.Entity) bool {
	return w.ecs.Alive(e) && w.energyMap.Get(e).Alive
}

// Components returns the component pointers of an agent. The pointers are
// invalidated by the next spawn.
func (w *World) Components(e ecs.Entity) (*components.Position, *components.Energy, *components.Organism, *components.Memory) {
	return w.agentMapper.Get(e)
}

// Position returns the agent's position.
func (w *World) Position(e ecs.Entity) *components.Position { return w.posMap.Get(e) }

// Energy returns the agent's energy.
func (w *World) Energy(e ecs.Entity) *components.Energy { return w.energyMap.Get(e) }

// Organism returns the agent's identity and timers.
func (w *World) Organism(e ecs.Entity) *components.Organism { return w.orgMap.Get(e) }

// Memory returns the agent's decision state.
func (w *World) Memory(e ecs.Entity) *components.Memory { return w.memMap.Get(e) }

// Policy returns the policy of the agent with the given ID.
func (w *World) Policy(id uint32) *neural.Policy { return w.brains[id] }

// AgentAt returns the agent in (x, y), if any.
func (w *World) AgentAt(x, y int) (ecs.Entity, bool) { return w.grid.AgentAt(x, y) }

// FoodAt returns the visible food amount in (x, y).
func (w *World) FoodAt(x, y int) (int, bool) { return w.grid.FoodAt(x, y) }

// FoodUnder returns the food in (x, y) as seen by the agent self.
func (w *World) FoodUnder(x, y int, self ecs.Entity) (int, bool) { return w.grid.FoodUnder(x, y, self) }

// MoveAgent moves an agent to (x, y). It fails if the target is outside
// the grid or holds another agent. Food in the target stays in place.
func (w *World) MoveAgent(e ecs.Entity, x, y int) bool {
	if !w.grid.InBounds(x, y) {
		return false
	}
	if _, taken := w.grid.AgentAt(x, y); taken {
		return false
	}
	pos := w.posMap.Get(e)
	w.grid.RemoveAgent(pos.X, pos.Y, e)
	w.grid.Push(x, y, Occupant{Kind: KindAgent, Agent: e})
	pos.X, pos.Y = x, y
	return true
}

// EatFood removes the food of (x, y) that eater can see and returns its
// amount. Food under another agent cannot be eaten.
func (w *World) EatFood(eater ecs.Entity, x, y int) (int, bool) {
	if _, ok := w.grid.FoodUnder(x, y, eater); !ok {
		return 0, false
	}
	return w.grid.RemoveFood(x, y)
}

// Remove takes an agent off the grid. Removing an agent that is not on the
// grid is a no-op.
func (w *World) Remove(e ecs.Entity) {
	pos := w.posMap.Get(e)
	w.grid.RemoveAgent(pos.X, pos.Y, e)
}

// Kill marks an agent dead and removes it from the grid. Its entity and
// policy stay readable until CleanupDead.
func (w *World) Kill(e ecs.Entity) bool {
	if !w.Alive(e) {
		return false
	}
	w.energyMap.Get(e).Alive = false
	w.Remove(e)
	w.memMap.Get(e).Cache.Clear()
	w.live--
	return true
}

// CleanupDead removes the entities and policies of dead agents. Each dead
// agent is passed to visit before it is removed. It must not be called while
// a query is open.
func (w *World) CleanupDead(visit func(e ecs.Entity)) int {
	var dead []ecs.Entity

	query := w.agentFilter.Query()
	for query.Next() {
		_, energy, _, _ := query.Get()
		if !energy.Alive {
			dead = append(dead, query.Entity())
		}
	}

	for _, e := range dead {
		if visit != nil {
			visit(e)
		}
		delete(w.brains, w.orgMap.Get(e).ID)
		w.ecs.RemoveEntity(e)
	}
	return len(dead)
}

// Snapshot appends the live agents in iteration order to dst.
func (w *World) Snapshot(dst []ecs.Entity) []ecs.Entity {
	query := w.agentFilter.Query()
	for query.Next() {
		_, energy, _, _ := query.Get()
		if energy.Alive {
			dst = append(dst, query.Entity())
		}
	}
	return dst
}

// CheckInvariants verifies that the grid and the population agree.
func (w *World) CheckInvariants() error {
	var errs []error
	size := w.grid.Size()
	onGrid := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			agents, foods := 0, 0
			for _, o := range w.grid.Cell(x, y) {
				switch o.Kind {
				case KindAgent:
					agents++
					if !w.Alive(o.Agent) {
						errs = append(errs, fmt.Errorf("dead agent on cell (%d,%d)", x, y))
						continue
					}
					if p := w.posMap.Get(o.Agent); p.X != x || p.Y != y {
						errs = append(errs, fmt.Errorf("agent on cell (%d,%d) has position (%d,%d)", x, y, p.X, p.Y))
					}
				case KindFood:
					foods++
				}
			}
			if agents > 1 {
				errs = append(errs, fmt.Errorf("%d agents share cell (%d,%d)", agents, x, y))
			}
			if foods > 1 {
				errs = append(errs, fmt.Errorf("%d foods share cell (%d,%d)", foods, x, y))
			}
			onGrid += agents
		}
	}
	if onGrid != w.live {
		errs = append(errs, fmt.Errorf("%d agents on grid, %d live", onGrid, w.live))
	}
	return errors.Join(errs...)
}
