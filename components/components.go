// Package components defines ECS components for the simulation.
package components

import "fmt"

// Action is one of the choices an agent makes each tick.
// The value doubles as the index of the policy output scoring it.
type Action uint8

const (
	ActionEat       Action = iota
	ActionMoveDown         // y + 1
	ActionMoveUp           // y - 1
	ActionMoveRight        // x + 1
	ActionMoveLeft         // x - 1
	ActionAttack
	ActionReproduce
)

// NumActions is the number of distinct actions.
const NumActions = 7

// ActionNone marks an agent that has not acted yet.
const ActionNone Action = 255

var actionNames = [NumActions]string{"eat", "down", "up", "right", "left", "attack", "reproduce"}

// String returns the tag recorded in behaviour logs.
func (a Action) String() string {
	if int(a) < NumActions {
		return actionNames[a]
	}
	if a == ActionNone {
		return "none"
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// IsMove reports whether the action is one of the four moves.
func (a Action) IsMove() bool {
	return a >= ActionMoveDown && a <= ActionMoveLeft
}

// Delta returns the grid offset of a move action.
func (a Action) Delta() (dx, dy int) {
	switch a {
	case ActionMoveDown:
		return 0, 1
	case ActionMoveUp:
		return 0, -1
	case ActionMoveRight:
		return 1, 0
	case ActionMoveLeft:
		return -1, 0
	}
	panic(fmt.Sprintf("components: %v is not a move", a))
}

// Position is an agent's cell. The world keeps it in sync with the grid.
type Position struct {
	X, Y int
}

// Energy holds an agent's energy and liveness.
// Dead agents keep their entity until the end of the tick.
type Energy struct {
	Value int
	Alive bool
}

// Organism holds identity and action timers.
type Organism struct {
	ID          uint32
	ParentIDs   [2]uint32
	HasParents  bool
	BirthTurn   int
	LastHitTurn int
	Fail        int // Failures since the last success
}

// IsKin reports parent/child or sibling relation.
func (o *Organism) IsKin(other *Organism) bool {
	if o.HasParents && (o.ParentIDs[0] == other.ID || o.ParentIDs[1] == other.ID) {
		return true
	}
	if other.HasParents && (other.ParentIDs[0] == o.ID || other.ParentIDs[1] == o.ID) {
		return true
	}
	if o.HasParents && other.HasParents {
		for _, a := range o.ParentIDs {
			for _, b := range other.ParentIDs {
				if a == b {
					return true
				}
			}
		}
	}
	return false
}

// Memory holds per-agent decision state.
type Memory struct {
	Behaviour []Action // Every action ever chosen, in order
	Recent    ActionRing
	Penalties [NumActions]float64
	Cache     ScanCache
}

// NewMemory creates memory with the given loop window and cache capacity.
func NewMemory(loopWindow, cacheSize int) Memory {
	return Memory{
		Recent: NewActionRing(loopWindow),
		Cache:  NewScanCache(cacheSize),
	}
}

// LastAction returns the most recent action, or false if none was taken.
func (m *Memory) LastAction() (Action, bool) {
	if len(m.Behaviour) == 0 {
		return ActionNone, false
	}
	return m.Behaviour[len(m.Behaviour)-1], true
}

// Percentages returns the share of each action in the behaviour log, in percent.
func (m *Memory) Percentages() [NumActions]float64 {
	var out [NumActions]float64
	if len(m.Behaviour) == 0 {
		return out
	}
	for _, a := range m.Behaviour {
		out[a]++
	}
	for i := range out {
		out[i] = out[i] * 100 / float64(len(m.Behaviour))
	}
	return out
}
