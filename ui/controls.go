package ui

import (
	"fmt"
	"log/slog"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/blobsim/game"
)

// Tunables is the write surface of the simulation used by the sliders.
type Tunables interface {
	Get(name string) (float64, error)
	Set(name string, v float64) error
}

// SliderSpec describes one tunable slider.
type SliderSpec struct {
	Param    string
	Label    string
	Min, Max float32
	Integer  bool
	Format   string
}

// DefaultSliders returns sliders for the runtime tunables. World size is
// applied by the Resize button, not on drag.
func DefaultSliders() []SliderSpec {
	return []SliderSpec{
		{Param: game.ParamMutationRate, Label: "Mutation rate", Min: 0, Max: 1, Format: "%.3f"},
		{Param: game.ParamFoodRate, Label: "Food rate", Min: 0, Max: 1, Format: "%.3f"},
		{Param: game.ParamResetFoodRate, Label: "Regrow rate", Min: 0, Max: 0.05, Format: "%.4f"},
		{Param: game.ParamSpawnRate, Label: "Spawn rate", Min: 0, Max: 1, Format: "%.3f"},
		{Param: game.ParamScanRange, Label: "Scan range", Min: 1, Max: 20, Integer: true, Format: "%.0f"},
		{Param: game.ParamBaseEnergy, Label: "Base energy", Min: 1, Max: 200, Integer: true, Format: "%.0f"},
		{Param: game.ParamTickRate, Label: "Ticks/s", Min: 1, Max: 240, Integer: true, Format: "%.0f"},
	}
}

// ControlAction is a button press reported by the controls panel.
type ControlAction int

const (
	ControlNone ControlAction = iota
	ControlTogglePause
	ControlStep
	ControlReset
	ControlResize
)

// ControlsPanel renders the tunable sliders and the overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	sliders  []SliderSpec

	// Pending world size, applied with ControlResize.
	size float32
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32, worldSize int) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		sliders:  DefaultSliders(),
		size:     float32(worldSize),
	}
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// PendingSize returns the world size selected on the resize slider.
func (c *ControlsPanel) PendingSize() int { return int(c.size) }

// Contains reports whether a screen point is over the panel.
func (c *ControlsPanel) Contains(p rl.Vector2) bool {
	return rl.CheckCollisionPointRec(p, rl.Rectangle{X: float32(c.x), Y: float32(c.y), Width: float32(c.width), Height: float32(c.height())})
}

func (c *ControlsPanel) height() int32 {
	r := c.renderer
	return r.Theme.Padding*2 + int32(len(c.sliders)+2)*34 + 40
}

// Draw renders the sliders and applies changed values to t. A rejected
// value is logged and the slider snaps back on the next frame.
func (c *ControlsPanel) Draw(t Tunables, paused bool) ControlAction {
	r := c.renderer
	padding := r.Theme.Padding
	r.DrawPanel(c.x, c.y, c.width, c.height())

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	w := float32(c.width - padding*2)

	rl.DrawText("Tunables", int32(x), int32(y), 16, rl.White)
	y += 22

	for _, s := range c.sliders {
		cur, err := t.Get(s.Param)
		if err != nil {
			continue
		}
		rl.DrawText(s.Label, int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
		rl.DrawText(fmt.Sprintf(s.Format, cur), int32(x+w-60), int32(y), r.Theme.FontSize, r.Theme.ValueColor)
		y += 14

		next := gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: w, Height: 14}, "", "", float32(cur), s.Min, s.Max)
		if s.Integer {
			next = float32(math.Round(float64(next)))
		}
		if float64(next) != cur {
			if err := t.Set(s.Param, float64(next)); err != nil {
				slog.Warn("rejected tunable", "param", s.Param, "value", next, "error", err)
			}
		}
		y += 20
	}

	// World size resets the run, so it only applies on the button.
	rl.DrawText("World size", int32(x), int32(y), r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(fmt.Sprintf("%.0f", c.size), int32(x+w-60), int32(y), r.Theme.FontSize, r.Theme.ValueColor)
	y += 14
	c.size = float32(math.Round(float64(gui.SliderBar(rl.Rectangle{X: x, Y: y, Width: w, Height: 14}, "", "", c.size, 10, 800))))
	y += 24

	action := ControlNone
	bw := (w - 15) / 4
	label := "Pause"
	if paused {
		label = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: bw, Height: 24}, label) {
		action = ControlTogglePause
	}
	if gui.Button(rl.Rectangle{X: x + bw + 5, Y: y, Width: bw, Height: 24}, "Step") {
		action = ControlStep
	}
	if gui.Button(rl.Rectangle{X: x + 2*(bw+5), Y: y, Width: bw, Height: 24}, "Reset") {
		action = ControlReset
	}
	if gui.Button(rl.Rectangle{X: x + 3*(bw+5), Y: y, Width: bw, Height: 24}, "Resize") {
		action = ControlResize
	}
	return action
}

// OverlayPanel lists the overlay toggles with their keys.
type OverlayPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewOverlayPanel creates a new overlay legend.
func NewOverlayPanel(x, y, width int32) *OverlayPanel {
	return &OverlayPanel{renderer: NewRenderer(), x: x, y: y, width: width}
}

// SetPosition updates the panel position.
func (o *OverlayPanel) SetPosition(x, y int32) {
	o.x = x
	o.y = y
}

// Draw renders the overlay legend.
func (o *OverlayPanel) Draw(overlays *OverlayRegistry) int32 {
	r := o.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	categories := overlays.Categories()
	totalItems := 0
	for _, cat := range categories {
		totalItems += len(overlays.ByCategory(cat)) + 1
	}
	panelHeight := int32(totalItems)*lineHeight + padding*3 + lineHeight
	r.DrawPanel(o.x, o.y, o.width, panelHeight)

	y := o.y + padding
	rl.DrawText("Overlays", o.x+padding, y, 16, rl.White)
	y += lineHeight + 4

	for _, category := range categories {
		rl.DrawText(categoryLabel(category), o.x+padding, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight
		for _, desc := range overlays.ByCategory(category) {
			o.drawToggle(o.x+padding, y, desc, overlays.IsEnabled(desc.ID), o.width-padding*2)
			y += lineHeight
		}
		y += 4
	}
	return y
}

func (o *OverlayPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := o.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	nameColor := r.Theme.LabelColor
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
		nameColor = rl.White
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

func categoryLabel(cat string) string {
	switch cat {
	case "grid":
		return "Grid"
	case "panels":
		return "Panels"
	default:
		return cat
	}
}
