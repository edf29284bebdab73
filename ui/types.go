// Package ui provides the raylib viewer for the simulation. Panels are
// described by field descriptors so the inspector layout lives next to the
// data it shows rather than in drawing code.
package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// WidgetType specifies how a field should be rendered.
type WidgetType int

const (
	WidgetText      WidgetType = iota // Format applied to Getter, or TextGetter verbatim
	WidgetEnergyBar                   // Getter against Range.Max, colored by fill
)

// FieldRange bounds a bar widget's value.
type FieldRange struct {
	Min float32
	Max float32
}

// FieldDescriptor defines how to display a single piece of data.
type FieldDescriptor struct {
	ID         string            // Unique identifier for the field
	Label      string            // Display label
	Widget     WidgetType        // How to render
	Format     string            // Printf format for text (e.g., "%.2f")
	Range      FieldRange        // Value range for bars
	Visible    func(any) bool    // Optional visibility check (nil = always visible)
	Getter     func(any) float32 // Value extractor (for numeric fields)
	TextGetter func(any) string  // Value extractor (for text fields)
}

// SectionDescriptor defines a group of fields with a header.
type SectionDescriptor struct {
	ID      string            // Unique identifier
	Title   string            // Section header text
	Fields  []FieldDescriptor // Fields in this section
	Visible func(any) bool    // Optional visibility check for entire section
}

// Theme holds UI styling constants.
type Theme struct {
	Background     rl.Color
	GridBg         rl.Color
	Food           rl.Color
	AgentLow       rl.Color
	AgentHigh      rl.Color
	Highlight      rl.Color
	Selection      rl.Color
	PanelBg        rl.Color
	PanelBorder    rl.Color
	SectionHeader  rl.Color
	LabelColor     rl.Color
	ValueColor     rl.Color
	BarBg          rl.Color
	BarFill        rl.Color
	BarFillLow     rl.Color
	BarFillMedium  rl.Color
	BarFillHigh    rl.Color
	Padding        int32
	LineHeight     int32
	LabelWidth     int32
	BarHeight      int32
	FontSize       int32
	HeaderFontSize int32
}

// DefaultTheme returns the default UI theme.
func DefaultTheme() Theme {
	return Theme{
		Background:     rl.Color{R: 12, G: 14, B: 18, A: 255},
		GridBg:         rl.Color{R: 0, G: 0, B: 0, A: 255},
		Food:           rl.Color{R: 230, G: 200, B: 40, A: 255},
		AgentLow:       rl.Color{R: 120, G: 30, B: 30, A: 255},
		AgentHigh:      rl.Color{R: 90, G: 230, B: 255, A: 255},
		Highlight:      rl.Color{R: 255, G: 80, B: 200, A: 255},
		Selection:      rl.White,
		PanelBg:        rl.Color{R: 20, G: 25, B: 30, A: 240},
		PanelBorder:    rl.Color{R: 60, G: 70, B: 80, A: 255},
		SectionHeader:  rl.Yellow,
		LabelColor:     rl.LightGray,
		ValueColor:     rl.LightGray,
		BarBg:          rl.Color{R: 40, G: 40, B: 40, A: 255},
		BarFill:        rl.Color{R: 100, G: 150, B: 200, A: 255},
		BarFillLow:     rl.Color{R: 200, G: 100, B: 100, A: 255},
		BarFillMedium:  rl.Color{R: 200, G: 180, B: 100, A: 255},
		BarFillHigh:    rl.Color{R: 100, G: 200, B: 100, A: 255},
		Padding:        10,
		LineHeight:     16,
		LabelWidth:     80,
		BarHeight:      12,
		FontSize:       12,
		HeaderFontSize: 14,
	}
}

// energyColor interpolates between the low and high agent colors. ratio
// is clamped to [0, 1].
func (t Theme) energyColor(ratio float32) rl.Color {
	ratio = clampf(ratio, 0, 1)
	lerp := func(a, b uint8) uint8 { return uint8(float32(a) + (float32(b)-float32(a))*ratio) }
	return rl.Color{
		R: lerp(t.AgentLow.R, t.AgentHigh.R),
		G: lerp(t.AgentLow.G, t.AgentHigh.G),
		B: lerp(t.AgentLow.B, t.AgentHigh.B),
		A: 255,
	}
}

func clampf(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
