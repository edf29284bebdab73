package world

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"
)

// Kind tags the occupant of a cell slot.
type Kind uint8

const (
	KindFood Kind = iota + 1
	KindAgent
)

// Occupant is one entry of a cell stack.
type Occupant struct {
	Kind   Kind
	Agent  ecs.Entity // KindAgent only
	Amount int        // KindFood only
}

// Grid is a square array of per-cell occupant stacks.
// A cell holds at most one agent and at most one food. Food stays in the
// stack when an agent steps onto it but is hidden from kind-aware lookups
// until the agent leaves.
type Grid struct {
	size   int
	cells  [][]Occupant
	agents int
	foods  int
}

// NewGrid creates an empty size x size grid.
func NewGrid(size int) *Grid {
	if size < 1 {
		panic(fmt.Sprintf("world: grid size must be >= 1, got %d", size))
	}
	return &Grid{size: size, cells: make([][]Occupant, size*size)}
}

// Size returns the side of the grid.
func (g *Grid) Size() int { return g.size }

// InBounds reports whether (x, y) is a cell of the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.size && y >= 0 && y < g.size
}

func (g *Grid) index(x, y int) int {
	if !g.InBounds(x, y) {
		panic(fmt.Sprintf("world: cell (%d,%d) outside %dx%d grid", x, y, g.size, g.size))
	}
	return y*g.size + x
}

// Cell returns the occupant stack of (x, y). The slice must not be modified.
func (g *Grid) Cell(x, y int) []Occupant {
	return g.cells[g.index(x, y)]
}

// AgentAt returns the agent in (x, y), if any.
func (g *Grid) AgentAt(x, y int) (ecs.Entity, bool) {
	for _, o := range g.cells[g.index(x, y)] {
		if o.Kind == KindAgent {
			return o.Agent, true
		}
	}
	return ecs.Entity{}, false
}

// FoodAt returns the amount of visible food in (x, y).
// Food under an agent is not visible.
func (g *Grid) FoodAt(x, y int) (int, bool) {
	return g.foodSeenBy(x, y, ecs.Entity{}, false)
}

// FoodUnder returns the food in (x, y) as seen by self: food under self is
// visible to it, food under any other agent is not.
func (g *Grid) FoodUnder(x, y int, self ecs.Entity) (int, bool) {
	return g.foodSeenBy(x, y, self, true)
}

func (g *Grid) foodSeenBy(x, y int, self ecs.Entity, hasSelf bool) (int, bool) {
	amount, found := 0, false
	for _, o := range g.cells[g.index(x, y)] {
		switch o.Kind {
		case KindAgent:
			if !hasSelf || o.Agent != self {
				return 0, false
			}
		case KindFood:
			amount, found = o.Amount, true
		}
	}
	return amount, found
}

// foodAmount returns the food in (x, y), hidden or not.
func (g *Grid) foodAmount(x, y int) (int, bool) {
	for _, o := range g.cells[g.index(x, y)] {
		if o.Kind == KindFood {
			return o.Amount, true
		}
	}
	return 0, false
}

// Empty reports whether (x, y) holds nothing at all.
func (g *Grid) Empty(x, y int) bool {
	return len(g.cells[g.index(x, y)]) == 0
}

// Agents returns the number of agents on the grid.
func (g *Grid) Agents() int { return g.agents }

// Foods returns the number of food items on the grid, including food under
// an agent.
func (g *Grid) Foods() int { return g.foods }

// Place sets the contents of the occupant's cell to exactly that occupant.
// Anything previously there is dropped from the grid.
func (g *Grid) Place(x, y int, o Occupant) {
	i := g.index(x, y)
	g.drop(i)
	g.cells[i] = append(g.cells[i][:0], o)
	g.count(o.Kind, 1)
}

// Push appends an occupant on top of the cell stack.
func (g *Grid) Push(x, y int, o Occupant) {
	i := g.index(x, y)
	g.cells[i] = append(g.cells[i], o)
	g.count(o.Kind, 1)
}

// RemoveAgent removes a specific agent from (x, y). Removing an absent
// agent is a no-op.
func (g *Grid) RemoveAgent(x, y int, e ecs.Entity) bool {
	i := g.index(x, y)
	for k, o := range g.cells[i] {
		if o.Kind == KindAgent && o.Agent == e {
			g.cells[i] = append(g.cells[i][:k], g.cells[i][k+1:]...)
			g.agents--
			return true
		}
	}
	return false
}

// RemoveFood removes the food of (x, y), hidden or not, and returns its amount.
func (g *Grid) RemoveFood(x, y int) (int, bool) {
	i := g.index(x, y)
	for k, o := range g.cells[i] {
		if o.Kind == KindFood {
			g.cells[i] = append(g.cells[i][:k], g.cells[i][k+1:]...)
			g.foods--
			return o.Amount, true
		}
	}
	return 0, false
}

// EachFood calls fn for every food on the grid, including food under an
// agent, so it visits exactly Foods() items.
func (g *Grid) EachFood(fn func(x, y, amount int)) {
	for y := 0; y < g.size; y++ {
		for x := 0; x < g.size; x++ {
			if amount, ok := g.foodAmount(x, y); ok {
				fn(x, y, amount)
			}
		}
	}
}

// Clear empties every cell.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
	g.agents, g.foods = 0, 0
}

func (g *Grid) drop(i int) {
	for _, o := range g.cells[i] {
		g.count(o.Kind, -1)
	}
	g.cells[i] = g.cells[i][:0]
}

func (g *Grid) count(k Kind, delta int) {
	switch k {
	case KindAgent:
		g.agents += delta
	case KindFood:
		g.foods += delta
	default:
		panic(fmt.Sprintf("world: unknown occupant kind %d", k))
	}
}
