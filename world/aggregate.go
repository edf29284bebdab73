package world

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/blobsim/components"
)

// Aggregate summarizes the live population.
type Aggregate struct {
	// Oldest has the longest behaviour log. Fittest has the most energy.
	// Both are only meaningful when Count > 0.
	Oldest  ecs.Entity
	Fittest ecs.Entity

	OldestActions int
	FittestEnergy int
	Count         int

	// LastActions holds each live agent's most recent action, ActionNone
	// for agents that have not acted yet.
	LastActions []components.Action
}

// Aggregate computes population aggregates in one pass. Ties go to the
// agent encountered first.
func (w *World) Aggregate() Aggregate {
	agg := Aggregate{LastActions: make([]components.Action, 0, w.live)}

	query := w.agentFilter.Query()
	for query.Next() {
		_, energy, _, mem := query.Get()
		if !energy.Alive {
			continue
		}
		e := query.Entity()
		n := len(mem.Behaviour)
		if agg.Count == 0 || n > agg.OldestActions {
			agg.Oldest, agg.OldestActions = e, n
		}
		if agg.Count == 0 || energy.Value > agg.FittestEnergy {
			agg.Fittest, agg.FittestEnergy = e, energy.Value
		}
		last, _ := mem.LastAction()
		agg.LastActions = append(agg.LastActions, last)
		agg.Count++
	}
	return agg
}

// Histogram counts the last actions by action, with agents that have not
// acted in the final slot.
func (a Aggregate) Histogram() [components.NumActions + 1]int {
	var h [components.NumActions + 1]int
	for _, act := range a.LastActions {
		if int(act) < components.NumActions {
			h[act]++
		} else {
			h[components.NumActions]++
		}
	}
	return h
}
