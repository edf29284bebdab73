package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/blobsim/components"
	"github.com/pthm-cable/blobsim/config"
	"github.com/pthm-cable/blobsim/neural"
	"github.com/pthm-cable/blobsim/world"
)

// AgentView is a read-only copy of one agent's observable state.
type AgentView struct {
	Entity     ecs.Entity
	ID         uint32
	X, Y       int
	Energy     int
	LastAction components.Action // ActionNone before the first action
	ParentIDs  [2]uint32
	HasParents bool
	BirthTick  int

	// Behaviour aliases the agent's log and must not be modified. It is
	// valid until the next Step.
	Behaviour []components.Action
}

// Tick returns the number of completed ticks.
func (s *Simulation) Tick() int { return s.world.Turn() }

// Seed returns the RNG seed the run was started with.
func (s *Simulation) Seed() int64 { return s.seed }

// Population returns the live agent count.
func (s *Simulation) Population() int { return s.world.LiveCount() }

// FoodCount returns the number of food items on the grid, including food
// under an agent. Only the agent standing on such food can see or eat it.
func (s *Simulation) FoodCount() int { return s.world.FoodCount() }

// Size returns the side of the grid.
func (s *Simulation) Size() int { return s.world.Size() }

// Config returns the live config. Use the setters to change tunables.
func (s *Simulation) Config() *config.Config { return s.cfg }

// World returns the underlying world for read access.
func (s *Simulation) World() *world.World { return s.world }

// Aggregate returns the population aggregate computed at the end of the
// last tick.
func (s *Simulation) Aggregate() world.Aggregate { return s.agg }

// ActionHistogram counts the live agents' last actions, with agents that
// have not acted in the final slot.
func (s *Simulation) ActionHistogram() [components.NumActions + 1]int {
	return s.agg.Histogram()
}

// PopulationHistory returns recent population counts, oldest first.
func (s *Simulation) PopulationHistory() []int { return s.history.Values() }

// Extinctions returns how many times the population died out.
func (s *Simulation) Extinctions() int { return s.extinctions }

// LastExtinction returns the tick of the latest extinction, or -1.
func (s *Simulation) LastExtinction() int { return s.lastExtinction }

// Agents appends a view of every live agent to dst.
func (s *Simulation) Agents(dst []AgentView) []AgentView {
	s.snapshot = s.world.Snapshot(s.snapshot[:0])
	for _, e := range s.snapshot {
		dst = append(dst, s.view(e))
	}
	return dst
}

// Agent returns the view of one agent.
func (s *Simulation) Agent(e ecs.Entity) (AgentView, bool) {
	if !s.world.Alive(e) {
		return AgentView{}, false
	}
	return s.view(e), true
}

// AgentAt returns the view of the agent in (x, y).
func (s *Simulation) AgentAt(x, y int) (AgentView, bool) {
	if !s.world.Grid().InBounds(x, y) {
		return AgentView{}, false
	}
	e, ok := s.world.AgentAt(x, y)
	if !ok {
		return AgentView{}, false
	}
	return s.Agent(e)
}

// Policy returns the policy of a live agent by ID.
func (s *Simulation) Policy(id uint32) *neural.Policy { return s.world.Policy(id) }

func (s *Simulation) view(e ecs.Entity) AgentView {
	pos, energy, org, mem := s.world.Components(e)
	last, _ := mem.LastAction()
	n := len(mem.Behaviour)
	return AgentView{
		Entity:     e,
		ID:         org.ID,
		X:          pos.X,
		Y:          pos.Y,
		Energy:     energy.Value,
		LastAction: last,
		ParentIDs:  org.ParentIDs,
		HasParents: org.HasParents,
		BirthTick:  org.BirthTurn,
		Behaviour:  mem.Behaviour[:n:n],
	}
}
