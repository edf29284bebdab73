package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Standard overlay IDs.
const (
	OverlayEnergyTint OverlayID = "energy_tint"
	OverlayLastAction OverlayID = "last_action"
	OverlayFood       OverlayID = "food"
	OverlayRecords    OverlayID = "records"
	OverlayScanRange  OverlayID = "scan_range"
	OverlayGridLines  OverlayID = "grid_lines"
	OverlayStats      OverlayID = "stats"
	OverlayPerf       OverlayID = "perf"
	OverlayTunables   OverlayID = "tunables"
	OverlayInspector  OverlayID = "inspector"
	OverlayLegend     OverlayID = "legend"
)

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID          OverlayID   // Unique identifier
	Name        string      // Display name
	Description string      // What this overlay shows
	Key         int32       // Keyboard key to toggle (0 = no key)
	KeyLabel    string      // Key label for display (e.g., "S", "V")
	Category    string      // Grouping (e.g., "grid", "panels")
	Exclusive   []OverlayID // Other overlays to disable when this is enabled
	Default     bool        // Enabled at startup
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

// NewOverlayRegistry creates a registry with default overlays.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	reg.registerDefaults()
	return reg
}

func (r *OverlayRegistry) registerDefaults() {
	// Grid overlays
	r.Register(OverlayDescriptor{
		ID:          OverlayEnergyTint,
		Name:        "Energy Tint",
		Description: "Shade agents by energy relative to base energy",
		Key:         rl.KeyE,
		KeyLabel:    "E",
		Category:    "grid",
		Exclusive:   []OverlayID{OverlayLastAction},
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayLastAction,
		Name:        "Last Action",
		Description: "Color agents by their most recent action",
		Key:         rl.KeyA,
		KeyLabel:    "A",
		Category:    "grid",
		Exclusive:   []OverlayID{OverlayEnergyTint},
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayFood,
		Name:        "Food",
		Description: "Draw food items",
		Key:         rl.KeyF,
		KeyLabel:    "F",
		Category:    "grid",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayRecords,
		Name:        "Records",
		Description: "Outline the fittest agent",
		Key:         rl.KeyR,
		KeyLabel:    "R",
		Category:    "grid",
		Default:     true,
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayScanRange,
		Name:        "Scan Range",
		Description: "Show the selected agent's scan and contact ranges",
		Key:         rl.KeyV,
		KeyLabel:    "V",
		Category:    "grid",
	})
	r.Register(OverlayDescriptor{
		ID:          OverlayGridLines,
		Name:        "Grid Lines",
		Description: "Draw cell borders when zoomed in",
		Key:         rl.KeyG,
		KeyLabel:    "G",
		Category:    "grid",
	})

	// Panels
	r.Register(OverlayDescriptor{
		ID:       OverlayStats,
		Name:     "Stats",
		Key:      rl.KeyS,
		KeyLabel: "S",
		Category: "panels",
		Default:  true,
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayTunables,
		Name:     "Tunables",
		Key:      rl.KeyT,
		KeyLabel: "T",
		Category: "panels",
		Default:  true,
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayInspector,
		Name:     "Inspector",
		Key:      rl.KeyI,
		KeyLabel: "I",
		Category: "panels",
		Default:  true,
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayLegend,
		Name:     "Overlay Keys",
		Key:      rl.KeyL,
		KeyLabel: "L",
		Category: "panels",
	})
	r.Register(OverlayDescriptor{
		ID:       OverlayPerf,
		Name:     "Performance",
		Key:      rl.KeyP,
		KeyLabel: "P",
		Category: "panels",
	})
}

// Register adds an overlay to the registry.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = desc.Default
}

// Toggle switches an overlay on/off and handles exclusivity.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	if _, ok := r.byID[id]; !ok {
		return false
	}
	r.SetEnabled(id, !r.enabled[id])
	return r.enabled[id]
}

// SetEnabled explicitly sets an overlay's state.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}
	r.enabled[id] = enabled
	if enabled {
		for _, excl := range desc.Exclusive {
			r.enabled[excl] = false
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// ByCategory returns overlays filtered by category.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeys toggles every overlay whose key was pressed this frame.
func (r *OverlayRegistry) HandleKeys() {
	for _, desc := range r.descriptors {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			r.Toggle(desc.ID)
		}
	}
}
