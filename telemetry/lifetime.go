package telemetry

// LifetimeStats tracks per-agent statistics over its lifetime.
type LifetimeStats struct {
	BirthTick  int       `json:"birth_tick"`
	DeathTick  int       `json:"death_tick,omitempty"`
	Generation int       `json:"generation"` // 0 for founders
	ParentIDs  [2]uint32 `json:"parent_ids"`

	Children   int `json:"children"`
	Kills      int `json:"kills"`
	Meals      int `json:"meals"`
	FoodEaten  int `json:"food_eaten"`
	PeakEnergy int `json:"peak_energy"`
}

// LifetimeTracker manages per-agent lifetime statistics by agent ID.
type LifetimeTracker struct {
	stats map[uint32]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint32]*LifetimeStats),
	}
}

// Register creates lifetime stats for a founder.
func (lt *LifetimeTracker) Register(id uint32, birthTick, energy int) {
	lt.stats[id] = &LifetimeStats{BirthTick: birthTick, PeakEnergy: energy}
}

// RegisterChild creates lifetime stats for a child and credits its parents.
// The child's generation is one more than its older parent's.
func (lt *LifetimeTracker) RegisterChild(id uint32, birthTick, energy int, a, b uint32) {
	gen := 0
	for _, p := range [2]uint32{a, b} {
		if s := lt.stats[p]; s != nil {
			s.Children++
			gen = max(gen, s.Generation)
		}
	}
	lt.stats[id] = &LifetimeStats{
		BirthTick:  birthTick,
		Generation: gen + 1,
		ParentIDs:  [2]uint32{a, b},
		PeakEnergy: energy,
	}
}

// Get returns the lifetime stats for an agent, or nil if not found.
func (lt *LifetimeTracker) Get(id uint32) *LifetimeStats {
	return lt.stats[id]
}

// Remove removes an agent's stats and returns them.
func (lt *LifetimeTracker) Remove(id uint32, deathTick int) *LifetimeStats {
	stats := lt.stats[id]
	if stats != nil {
		stats.DeathTick = deathTick
	}
	delete(lt.stats, id)
	return stats
}

// RecordKill increments kill count.
func (lt *LifetimeTracker) RecordKill(id uint32) {
	if s := lt.stats[id]; s != nil {
		s.Kills++
	}
}

// RecordMeal adds a meal to the agent's total.
func (lt *LifetimeTracker) RecordMeal(id uint32, amount int) {
	if s := lt.stats[id]; s != nil {
		s.Meals++
		s.FoodEaten += amount
	}
}

// UpdateEnergy tracks peak energy.
func (lt *LifetimeTracker) UpdateEnergy(id uint32, energy int) {
	if s := lt.stats[id]; s != nil && energy > s.PeakEnergy {
		s.PeakEnergy = energy
	}
}

// Count returns the number of tracked agents.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// MaxGeneration returns the deepest generation among tracked agents.
func (lt *LifetimeTracker) MaxGeneration() int {
	gen := 0
	for _, s := range lt.stats {
		gen = max(gen, s.Generation)
	}
	return gen
}

// Reset forgets every agent.
func (lt *LifetimeTracker) Reset() {
	clear(lt.stats)
}
