// Package telemetry provides population statistics, bookmarks, champions and run output.
package telemetry

import "github.com/pthm-cable/blobsim/components"

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks int

	// Current window tracking
	windowStart int

	// Event counters for current window
	births      int
	deaths      int
	kills       int
	meals       int
	foodEaten   int
	moves       int
	failed      int
	extinctions int
	choices     [components.NumActions]int
}

// NewCollector creates a collector flushing every windowTicks ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: windowTicks}
}

// RecordAction records an action choice and whether it succeeded.
func (c *Collector) RecordAction(a components.Action, ok bool) {
	if int(a) < components.NumActions {
		c.choices[a]++
	}
	if !ok {
		c.failed++
		return
	}
	if a.IsMove() {
		c.moves++
	}
}

// RecordMeal records food eaten.
func (c *Collector) RecordMeal(amount int) {
	c.meals++
	c.foodEaten += amount
}

// RecordBirth records a birth event.
func (c *Collector) RecordBirth() { c.births++ }

// RecordDeath records a death event.
func (c *Collector) RecordDeath() { c.deaths++ }

// RecordKill records an attack that killed its target.
func (c *Collector) RecordKill() { c.kills++ }

// RecordExtinction records a population wipe-out.
func (c *Collector) RecordExtinction() { c.extinctions++ }

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(tick int) bool {
	return tick-c.windowStart >= c.windowTicks
}

// Flush produces a WindowStats and resets counters for the next window.
// energies are the live agents' energies at the window end.
func (c *Collector) Flush(tick, population, food, oldestActions int, energies []float64) WindowStats {
	var total int
	for _, n := range c.choices {
		total += n
	}
	var failRate float64
	if total > 0 {
		failRate = float64(c.failed) / float64(total)
	}

	es := ComputeEnergyStats(energies)

	stats := WindowStats{
		WindowStartTick: c.windowStart,
		WindowEndTick:   tick,

		Population:    population,
		Food:          food,
		OldestActions: oldestActions,

		Births:      c.births,
		Deaths:      c.deaths,
		Kills:       c.kills,
		Meals:       c.meals,
		FoodEaten:   c.foodEaten,
		Moves:       c.moves,
		Failed:      c.failed,
		FailRate:    failRate,
		Extinctions: c.extinctions,

		ChoseEat:       c.choices[components.ActionEat],
		ChoseDown:      c.choices[components.ActionMoveDown],
		ChoseUp:        c.choices[components.ActionMoveUp],
		ChoseRight:     c.choices[components.ActionMoveRight],
		ChoseLeft:      c.choices[components.ActionMoveLeft],
		ChoseAttack:    c.choices[components.ActionAttack],
		ChoseReproduce: c.choices[components.ActionReproduce],

		EnergyMin:  es.Min,
		EnergyMax:  es.Max,
		EnergyMean: es.Mean,
		EnergyStd:  es.Std,
		EnergyP10:  es.P10,
		EnergyP50:  es.P50,
		EnergyP90:  es.P90,
	}

	// Reset for next window
	*c = Collector{windowTicks: c.windowTicks, windowStart: tick}

	return stats
}

// WindowTicks returns the number of ticks per window.
func (c *Collector) WindowTicks() int {
	return c.windowTicks
}
