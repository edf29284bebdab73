package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/blobsim/components"
	"github.com/pthm-cable/blobsim/neural"
)

// move steps one cell. Food does not block and is not eaten.
func (en *Engine) move(e ecs.Entity, a components.Action) bool {
	pos := en.w.Position(e)
	dx, dy := a.Delta()
	if !en.w.MoveAgent(e, pos.X+dx, pos.Y+dy) {
		return false
	}
	en.w.Energy(e).Value -= en.cfg.Energy.MoveCost
	return true
}

// eat consumes the nearest food if it is within perception.eat_range.
func (en *Engine) eat(e ecs.Entity) (int, bool) {
	f, ok := en.nearestFood(e, en.Scan(e))
	if !ok || f.Dist > en.cfg.Perception.EatRange {
		return 0, false
	}
	amount, ok := en.w.EatFood(e, f.X, f.Y)
	if !ok {
		return 0, false
	}
	en.w.Energy(e).Value += amount
	en.w.Memory(e).Cache.Clear()
	return amount, true
}

// attack hits the nearest agent within perception.hit_range. Kin are
// spared and the attacker pays energy.kin_penalty instead.
func (en *Engine) attack(e ecs.Entity) (victim ecs.Entity, killed, ok bool) {
	org := en.w.Organism(e)
	turn := en.w.Turn()
	if turn-org.LastHitTurn < en.cfg.Combat.HitCooldown {
		return victim, false, false
	}

	target, found := en.nearestAgent(en.Scan(e))
	if !found || target.Dist > en.cfg.Perception.HitRange {
		return victim, false, false
	}
	victim = target.Entity

	energy := en.w.Energy(e)
	if org.IsKin(en.w.Organism(victim)) {
		energy.Value -= en.cfg.Energy.KinPenalty
		return victim, false, false
	}

	victimEnergy := en.w.Energy(victim)
	victimEnergy.Value -= en.cfg.Energy.AttackDamage
	energy.Value -= en.cfg.Energy.AttackCost
	org.LastHitTurn = turn
	if victimEnergy.Value <= 0 {
		killed = en.w.Kill(victim)
	}
	return victim, killed, true
}

// reproduce mates with a random eligible contact and places the child in
// the first free cell of a shuffled ring of offsets.
func (en *Engine) reproduce(e ecs.Entity) (ecs.Entity, bool) {
	r := &en.cfg.Reproduction
	energy := en.w.Energy(e)
	if energy.Value < r.MinEnergy {
		return ecs.Entity{}, false
	}

	var eligible []components.Sighting
	for _, c := range en.contacts(en.Scan(e)) {
		if en.w.Energy(c.Entity).Value >= r.MinEnergy {
			eligible = append(eligible, c)
		}
	}
	if len(eligible) == 0 {
		return ecs.Entity{}, false
	}
	partner := eligible[en.rng.Intn(len(eligible))].Entity

	pos := en.w.Position(e)
	x, y, found := en.birthCell(pos.X, pos.Y)
	if !found {
		return ecs.Entity{}, false
	}

	org := en.w.Organism(e)
	partnerOrg := en.w.Organism(partner)
	child := neural.Crossover(en.rng,
		en.w.Policy(org.ID), en.w.Policy(partnerOrg.ID),
		en.cfg.Mutation.Rate, en.cfg.Mutation.Power)

	partnerEnergy := en.w.Energy(partner)
	mean := float64(energy.Value+partnerEnergy.Value) / 2
	childEnergy := int(min(float64(en.cfg.Energy.Base), r.ChildBase+r.ChildFraction*mean))
	energy.Value -= r.Cost
	partnerEnergy.Value -= r.Cost
	a, b := org.ID, partnerOrg.ID

	// Component pointers are invalid after the spawn
	born := en.w.SpawnChild(x, y, childEnergy, child, a, b)
	en.w.ClearScanCache()
	return born, true
}

// birthCell searches offsets at Manhattan distance 1..max_offset along the
// four axes in random order for a cell without an agent.
func (en *Engine) birthCell(x, y int) (int, int, bool) {
	en.offsets = en.offsets[:0]
	for d := 1; d <= en.cfg.Reproduction.MaxOffset; d++ {
		en.offsets = append(en.offsets, [2]int{d, 0}, [2]int{-d, 0}, [2]int{0, d}, [2]int{0, -d})
	}
	en.rng.Shuffle(len(en.offsets), func(i, j int) {
		en.offsets[i], en.offsets[j] = en.offsets[j], en.offsets[i]
	})

	grid := en.w.Grid()
	for _, off := range en.offsets {
		cx, cy := x+off[0], y+off[1]
		if !grid.InBounds(cx, cy) {
			continue
		}
		if _, taken := grid.AgentAt(cx, cy); !taken {
			return cx, cy, true
		}
	}
	return 0, 0, false
}
