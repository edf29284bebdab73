package systems

import (
	"slices"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/blobsim/components"
	"github.com/pthm-cable/blobsim/world"
)

// Quadrant is a density scan direction. North is toward y = 0.
type Quadrant uint8

const (
	NE Quadrant = iota
	NW
	SE
	SW
)

// Scan returns the agents and foods within perception.scan_range of the
// agent, nearest first. Results are cached per cell for the current tick
// and cache generation.
func (en *Engine) Scan(e ecs.Entity) components.ScanResult {
	pos := en.w.Position(e)
	mem := en.w.Memory(e)
	turn, gen := en.w.Turn(), en.w.CacheGen()
	if res, ok := mem.Cache.Lookup(pos.X, pos.Y, turn, gen); ok {
		return res
	}
	res := en.scan(e, pos.X, pos.Y)
	mem.Cache.Store(pos.X, pos.Y, turn, gen, res)
	return res
}

// scan visits the Manhattan diamond around (x, y). Ties in distance keep
// scan order. Food under self is reported at distance 0; food under any
// other agent is hidden.
func (en *Engine) scan(self ecs.Entity, x, y int) components.ScanResult {
	grid := en.w.Grid()
	r := en.cfg.Perception.ScanRange
	var res components.ScanResult

	for dx := -r; dx <= r; dx++ {
		span := r - abs(dx)
		for dy := -span; dy <= span; dy++ {
			cx, cy := x+dx, y+dy
			if !grid.InBounds(cx, cy) {
				continue
			}
			dist := abs(dx) + abs(dy)
			if other, ok := grid.AgentAt(cx, cy); ok && other != self {
				res.Agents = append(res.Agents, components.Sighting{Entity: other, X: cx, Y: cy, Dist: dist})
				continue
			}
			if amount, ok := grid.FoodUnder(cx, cy, self); ok {
				res.Foods = append(res.Foods, components.FoodSighting{X: cx, Y: cy, Amount: amount, Dist: dist})
			}
		}
	}

	slices.SortStableFunc(res.Agents, func(a, b components.Sighting) int { return a.Dist - b.Dist })
	slices.SortStableFunc(res.Foods, func(a, b components.FoodSighting) int { return a.Dist - b.Dist })
	return res
}

// nearestAgent returns the nearest sighting that is still a live agent in
// the sighted cell.
func (en *Engine) nearestAgent(res components.ScanResult) (components.Sighting, bool) {
	for _, s := range res.Agents {
		if en.sightingValid(s) {
			return s, true
		}
	}
	return components.Sighting{}, false
}

// nearestFood returns the nearest sighted food self can still see. Food in
// self's own cell is at distance 0.
func (en *Engine) nearestFood(self ecs.Entity, res components.ScanResult) (components.FoodSighting, bool) {
	for _, f := range res.Foods {
		if amount, ok := en.w.FoodUnder(f.X, f.Y, self); ok {
			f.Amount = amount
			return f, true
		}
	}
	return components.FoodSighting{}, false
}

func (en *Engine) sightingValid(s components.Sighting) bool {
	if !en.w.Alive(s.Entity) {
		return false
	}
	p := en.w.Position(s.Entity)
	return p.X == s.X && p.Y == s.Y
}

// contacts returns the live sighted agents within perception.contact_range.
func (en *Engine) contacts(res components.ScanResult) []components.Sighting {
	var out []components.Sighting
	for _, s := range res.Agents {
		if s.Dist > en.cfg.Perception.ContactRange {
			break
		}
		if en.sightingValid(s) {
			out = append(out, s)
		}
	}
	return out
}

// Density returns the fraction of cells of kind in the quadrant of side
// perception.density_scan_range next to (x, y). The quadrant is truncated
// at the grid edges; a quadrant with no cells has density 0.
func (en *Engine) Density(x, y int, q Quadrant, kind world.Kind) float64 {
	grid := en.w.Grid()
	r := en.cfg.Perception.DensityScanRange
	size := grid.Size()

	var x0, x1, y0, y1 int // half-open ranges
	switch q {
	case NE:
		x0, x1, y0, y1 = x+1, x+r+1, y-r, y
	case NW:
		x0, x1, y0, y1 = x-r, x, y-r, y
	case SE:
		x0, x1, y0, y1 = x+1, x+r+1, y+1, y+r+1
	case SW:
		x0, x1, y0, y1 = x-r, x, y+1, y+r+1
	}
	x0, x1 = max(x0, 0), min(x1, size)
	y0, y1 = max(y0, 0), min(y1, size)

	count, total := 0, 0
	for cx := x0; cx < x1; cx++ {
		for cy := y0; cy < y1; cy++ {
			total++
			_, agent := grid.AgentAt(cx, cy)
			switch {
			case kind == world.KindAgent && agent:
				count++
			case kind == world.KindFood && !agent:
				if _, ok := grid.FoodAt(cx, cy); ok {
					count++
				}
			}
		}
	}
	return clamp(float64(count)/float64(max(total, 1)), 0, 1)
}

// Perceive builds the perception vector of an agent:
//
//	0-2   nearest food dx, dy, amount
//	3-6   nearest agent dx, dy, energy, own failure count
//	7-10  agent density NE, NW, SE, SW
//	11-14 food density NE, NW, SE, SW
//	15-16 contact count, contact mean energy
//
// The returned slice is reused by the next call.
func (en *Engine) Perceive(e ecs.Entity) []float64 {
	p := &en.cfg.Perception
	pos := en.w.Position(e)
	org := en.w.Organism(e)
	res := en.Scan(e)
	in := en.input[:0]
	scan := float64(max(1, p.ScanRange))

	if f, ok := en.nearestFood(e, res); ok {
		in = append(in,
			norm(float64(f.X-pos.X), scan),
			norm(float64(f.Y-pos.Y), scan),
			norm(float64(f.Amount), p.AmountScale))
	} else {
		in = append(in, 0, 0, 0)
	}

	fail := norm(float64(org.Fail), p.FailScale)
	var contactCount, contactEnergy float64
	if s, ok := en.nearestAgent(res); ok {
		in = append(in,
			norm(float64(s.X-pos.X), scan),
			norm(float64(s.Y-pos.Y), scan),
			norm(float64(en.w.Energy(s.Entity).Value), p.EnergyScale),
			fail)
		contacts := en.contacts(res)
		for _, c := range contacts {
			contactEnergy += float64(en.w.Energy(c.Entity).Value)
		}
		if len(contacts) > 0 {
			contactCount = float64(len(contacts))
			contactEnergy /= contactCount
		}
	} else {
		in = append(in, 0, 0, 0, fail)
	}

	for _, kind := range [...]world.Kind{world.KindAgent, world.KindFood} {
		for q := NE; q <= SW; q++ {
			in = append(in, en.Density(pos.X, pos.Y, q, kind))
		}
	}

	in = append(in,
		norm(contactCount, p.ContactScale),
		norm(contactEnergy, p.EnergyScale))

	en.input = in
	return in
}

// norm divides by scale and clamps to [-1, 1].
func norm(v, scale float64) float64 {
	if scale == 0 {
		return 0
	}
	return clamp(v/scale, -1, 1)
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
