// Package systems runs the per-agent perceive, decide and act cycle.
package systems

import (
	"math/rand"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/blobsim/components"
	"github.com/pthm-cable/blobsim/config"
	"github.com/pthm-cable/blobsim/world"
)

// Outcome reports what one agent's turn did.
type Outcome struct {
	Action  components.Action
	OK      bool
	Skipped bool // Agent was dead before acting

	Ate    int  // Food amount eaten
	Born   bool // A child was spawned
	Killed bool // The attack victim died
	Died   bool // The acting agent died this turn

	Child  ecs.Entity
	Victim ecs.Entity
}

// Engine executes agents against a world.
type Engine struct {
	w   *world.World
	cfg *config.Config
	rng *rand.Rand

	input   []float64
	offsets [][2]int
}

// NewEngine creates an engine for w, drawing randomness from w's source.
func NewEngine(w *world.World) *Engine {
	return &Engine{
		w:     w,
		cfg:   w.Config(),
		rng:   w.Rand(),
		input: make([]float64, 0, w.Config().Derived.NumInputs),
	}
}

// World returns the world the engine acts on.
func (en *Engine) World() *world.World { return en.w }

// Step runs the full cycle for one agent. A dead agent is skipped.
func (en *Engine) Step(e ecs.Entity) Outcome {
	if !en.w.Alive(e) {
		return Outcome{Skipped: true}
	}
	in := en.Perceive(e)
	policy := en.w.Policy(en.w.Organism(e).ID)
	scores := policy.Predict(in)
	return en.Apply(e, en.Decide(e, scores))
}

// Apply executes a specific action and settles the agent. It is Step
// without perception and inference.
func (en *Engine) Apply(e ecs.Entity, a components.Action) Outcome {
	if !en.w.Alive(e) {
		return Outcome{Action: a, Skipped: true}
	}
	out := en.Act(e, a)
	if en.Settle(e) {
		out.Died = true
	}
	return out
}

// Act dispatches the action, records it and updates the failure state.
// It does not apply the per-tick decay.
func (en *Engine) Act(e ecs.Entity, a components.Action) Outcome {
	out := Outcome{Action: a}

	switch {
	case a.IsMove():
		out.OK = en.move(e, a)
	case a == components.ActionEat:
		out.Ate, out.OK = en.eat(e)
	case a == components.ActionAttack:
		out.Victim, out.Killed, out.OK = en.attack(e)
	case a == components.ActionReproduce:
		out.Child, out.OK = en.reproduce(e)
		out.Born = out.OK
	default:
		panic("systems: unknown action " + a.String())
	}

	// Reproduction may have moved component storage
	org := en.w.Organism(e)
	mem := en.w.Memory(e)
	mem.Behaviour = append(mem.Behaviour, a)
	mem.Recent.Push(a)
	if out.OK {
		org.Fail = 0
	} else {
		org.Fail++
		mem.Penalties[a] = min(en.cfg.Decision.PenaltyMax, mem.Penalties[a]+en.cfg.Decision.FailPenalty)
	}
	return out
}

// Settle applies the flat decay and kills the agent if its energy is
// exhausted. It reports whether the agent died.
func (en *Engine) Settle(e ecs.Entity) bool {
	if !en.w.Alive(e) {
		return false
	}
	energy := en.w.Energy(e)
	energy.Value -= en.cfg.Energy.DecayPerTurn
	if energy.Value <= 0 {
		return en.w.Kill(e)
	}
	return false
}

// Decide shapes the policy scores with penalties, temperature and noise and
// returns the best action.
func (en *Engine) Decide(e ecs.Entity, scores []float64) components.Action {
	d := &en.cfg.Decision
	mem := en.w.Memory(e)
	energy := en.w.Energy(e)

	for i := range mem.Penalties {
		mem.Penalties[i] *= d.PenaltyDecay
	}
	if a, looping := mem.Recent.Looping(); looping {
		mem.Penalties[a] = min(d.PenaltyMax, mem.Penalties[a]+d.LoopPenalty)
	}

	temp := max(0.01, Temperature(float64(energy.Value), d))

	best, bestScore := components.ActionEat, 0.0
	for i, s := range scores[:components.NumActions] {
		pref := (s-mem.Penalties[i])/temp + (en.rng.Float64()*2-1)*d.Noise
		if i == 0 || pref > bestScore {
			best, bestScore = components.Action(i), pref
		}
	}
	return best
}

// Temperature is high when energy is low and falls linearly to
// temperature_min at decision.energy_scale.
func Temperature(energy float64, d *config.DecisionConfig) float64 {
	e := 0.0
	if d.EnergyScale > 0 {
		e = clamp(energy/d.EnergyScale, 0, 1)
	}
	return d.TemperatureMin + (1-e)*(d.TemperatureMax-d.TemperatureMin)
}
