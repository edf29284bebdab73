package components

import "github.com/mlange-42/ark/ecs"

// Sighting is an agent found by a neighborhood scan.
type Sighting struct {
	Entity ecs.Entity
	X, Y   int
	Dist   int
}

// FoodSighting is a food found by a neighborhood scan.
type FoodSighting struct {
	X, Y   int
	Amount int
	Dist   int
}

// ScanResult holds both nearest-first lists of one scan.
type ScanResult struct {
	Agents []Sighting
	Foods  []FoodSighting
}

type scanEntry struct {
	x, y   int
	turn   int
	gen    uint64
	result ScanResult
}

// ScanCache is a fixed-capacity FIFO cache of scan results keyed by cell.
// An entry is only valid for the turn and the world cache generation it was
// stored in; bumping the generation invalidates every agent's cache at once.
type ScanCache struct {
	entries []scanEntry
	next    int
	n       int
}

// NewScanCache creates a cache with room for capacity entries.
func NewScanCache(capacity int) ScanCache {
	if capacity < 1 {
		capacity = 1
	}
	return ScanCache{entries: make([]scanEntry, capacity)}
}

// Lookup returns the cached scan for (x, y) if it is still valid.
func (c *ScanCache) Lookup(x, y, turn int, gen uint64) (ScanResult, bool) {
	for i := 0; i < c.n; i++ {
		e := &c.entries[i]
		if e.x == x && e.y == y && e.turn == turn && e.gen == gen {
			return e.result, true
		}
	}
	return ScanResult{}, false
}

// Store records a scan, evicting the oldest entry when full.
func (c *ScanCache) Store(x, y, turn int, gen uint64, result ScanResult) {
	for i := 0; i < c.n; i++ {
		e := &c.entries[i]
		if e.x == x && e.y == y {
			e.turn, e.gen, e.result = turn, gen, result
			return
		}
	}
	c.entries[c.next] = scanEntry{x: x, y: y, turn: turn, gen: gen, result: result}
	c.next = (c.next + 1) % len(c.entries)
	if c.n < len(c.entries) {
		c.n++
	}
}

// Len returns the number of stored entries, valid or not.
func (c *ScanCache) Len() int { return c.n }

// Clear drops every entry.
func (c *ScanCache) Clear() {
	for i := range c.entries {
		c.entries[i] = scanEntry{}
	}
	c.next, c.n = 0, 0
}
