package ui

import (
	"context"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/blobsim/camera"
	"github.com/pthm-cable/blobsim/components"
	"github.com/pthm-cable/blobsim/game"
)

const (
	panelWidth = 300

	// maxStepsPerFrame bounds catch-up when ticks fall behind the target rate.
	maxStepsPerFrame = 16

	controlsLegend = "Space: pause | N: step | Wheel: zoom | Right drag: pan | Click: select | Home: fit"
)

// actionColors tint agents by last action.
var actionColors = [components.NumActions]rl.Color{
	{R: 240, G: 200, B: 60, A: 255},  // eat
	{R: 80, G: 160, B: 255, A: 255},  // down
	{R: 80, G: 220, B: 255, A: 255},  // up
	{R: 100, G: 255, B: 160, A: 255}, // right
	{R: 60, G: 200, B: 120, A: 255},  // left
	{R: 255, G: 70, B: 70, A: 255},   // attack
	{R: 255, G: 120, B: 230, A: 255}, // reproduce
}

// Viewer draws the simulation in a raylib window. It reads only through
// the game getters and writes only through its setters.
type Viewer struct {
	sim      *game.Simulation
	cam      *camera.Camera
	renderer *Renderer
	overlays *OverlayRegistry

	hud       *HUD
	stats     *StatsPanel
	perf      *PerfPanel
	controls  *ControlsPanel
	legend    *OverlayPanel
	inspector *Inspector

	screenW, screenH int32
	paused           bool
	pacer            pacer
	selected         ecs.Entity
	hasSelection     bool
	views            []game.AgentView
}

// NewViewer creates a viewer. The raylib window must already be open.
func NewViewer(sim *game.Simulation) *Viewer {
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	size := float32(sim.Size())
	return &Viewer{
		sim:       sim,
		cam:       camera.New(float32(w), float32(h), size, size),
		renderer:  NewRenderer(),
		overlays:  NewOverlayRegistry(),
		hud:       NewHUD(),
		stats:     NewStatsPanel(10, 100, panelWidth),
		perf:      NewPerfPanel(10, h-140),
		controls:  NewControlsPanel(w-panelWidth-10, 10, panelWidth, sim.Size()),
		legend:    NewOverlayPanel(w/2-110, 100, 220),
		inspector: NewInspector(w-panelWidth-10, 380, panelWidth),
		screenW:   w,
		screenH:   h,
	}
}

// Run draws frames until the window closes, ctx is cancelled or maxTicks
// ticks have run (0 = no cap).
func (v *Viewer) Run(ctx context.Context, maxTicks int) error {
	for !rl.WindowShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		v.Update()
		v.Draw()
		if maxTicks > 0 && v.sim.Tick() >= maxTicks {
			break
		}
	}
	return nil
}

// Update handles input and advances the simulation at the target tick rate.
func (v *Viewer) Update() {
	v.sim.RecordFrame()
	v.handleResize()
	v.handleInput()

	if v.paused {
		return
	}
	for n := v.pacer.advance(float64(rl.GetFrameTime()), v.sim.TargetTickRate(), maxStepsPerFrame); n > 0; n-- {
		v.sim.Step()
	}
}

func (v *Viewer) handleResize() {
	w, h := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	if w == v.screenW && h == v.screenH {
		return
	}
	v.screenW, v.screenH = w, h
	v.cam.Resize(float32(w), float32(h))
	v.controls.SetPosition(w-panelWidth-10, 10)
	v.inspector.SetPosition(w-panelWidth-10, 380)
	v.perf.SetPosition(10, h-140)
	v.legend.SetPosition(w/2-110, 100)
}

func (v *Viewer) handleInput() {
	v.overlays.HandleKeys()

	if rl.IsKeyPressed(rl.KeySpace) {
		v.togglePause()
	}
	if rl.IsKeyPressed(rl.KeyN) && v.paused {
		v.sim.Step()
	}
	if rl.IsKeyPressed(rl.KeyHome) {
		v.cam.Reset()
	}

	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		mouse := rl.GetMousePosition()
		// Zoom around the cursor.
		bx, by := v.cam.ScreenToWorld(mouse.X, mouse.Y)
		if wheel > 0 {
			v.cam.ZoomBy(1.15)
		} else {
			v.cam.ZoomBy(1 / 1.15)
		}
		ax, ay := v.cam.ScreenToWorld(mouse.X, mouse.Y)
		v.cam.Pan((bx-ax)*v.cam.Zoom, (by-ay)*v.cam.Zoom)
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		v.cam.Pan(-d.X, -d.Y)
	}

	const panSpeed = 600
	dt := rl.GetFrameTime()
	if rl.IsKeyDown(rl.KeyLeft) {
		v.cam.Pan(-panSpeed*dt, 0)
	}
	if rl.IsKeyDown(rl.KeyRight) {
		v.cam.Pan(panSpeed*dt, 0)
	}
	if rl.IsKeyDown(rl.KeyUp) {
		v.cam.Pan(0, -panSpeed*dt)
	}
	if rl.IsKeyDown(rl.KeyDown) {
		v.cam.Pan(0, panSpeed*dt)
	}

	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		mouse := rl.GetMousePosition()
		if v.overlays.IsEnabled(OverlayTunables) && v.controls.Contains(mouse) {
			return
		}
		v.hasSelection = false
		if x, y, ok := v.cam.CellAt(mouse.X, mouse.Y); ok {
			if a, found := v.sim.AgentAt(x, y); found {
				v.selected, v.hasSelection = a.Entity, true
			}
		}
	}
}

func (v *Viewer) togglePause() {
	v.paused = !v.paused
	v.pacer.reset()
}

// Draw renders one frame.
func (v *Viewer) Draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	rl.ClearBackground(v.renderer.Theme.Background)
	v.drawGrid()

	if v.overlays.IsEnabled(OverlayStats) {
		hof := v.sim.HallOfFame()
		v.stats.Draw(StatsPanelData{
			Energy:     v.sim.EnergyStats(),
			BaseEnergy: v.sim.Config().Energy.Base,
			Histogram:  v.sim.ActionHistogram(),
			History:    v.sim.PopulationHistory(),
			Oldest:     hof.Oldest(),
			Fittest:    hof.Fittest(),
		})
	}
	if v.overlays.IsEnabled(OverlayPerf) {
		v.perf.Draw(v.sim.Perf())
	}
	if v.overlays.IsEnabled(OverlayInspector) {
		v.drawInspector()
	}
	if v.overlays.IsEnabled(OverlayLegend) {
		v.legend.Draw(v.overlays)
	}
	if v.overlays.IsEnabled(OverlayTunables) {
		v.applyControl(v.controls.Draw(v.sim, v.paused))
	}

	v.hud.Draw(HUDData{
		Title:          "Blob Simulation",
		Tick:           v.sim.Tick(),
		Population:     v.sim.Population(),
		Food:           v.sim.FoodCount(),
		Extinctions:    v.sim.Extinctions(),
		LastExtinction: v.sim.LastExtinction(),
		TickRate:       v.sim.TargetTickRate(),
		FPS:            rl.GetFPS(),
		Paused:         v.paused,
	})
	v.hud.DrawControls(v.screenH, controlsLegend)
}

func (v *Viewer) applyControl(a ControlAction) {
	switch a {
	case ControlTogglePause:
		v.togglePause()
	case ControlStep:
		if v.paused {
			v.sim.Step()
		}
	case ControlReset:
		v.sim.Reset()
		v.hasSelection = false
	case ControlResize:
		size := v.controls.PendingSize()
		if size == v.sim.Size() {
			return
		}
		if err := v.sim.Resize(size); err != nil {
			return
		}
		v.cam.SetWorld(float32(size), float32(size))
		v.hasSelection = false
	}
}

// cellRect returns the screen rectangle of a cell, at least one pixel wide.
func (v *Viewer) cellRect(x, y int) rl.Rectangle {
	sx, sy := v.cam.WorldToScreen(float32(x), float32(y))
	side := max(v.cam.Zoom, 1)
	return rl.Rectangle{X: sx, Y: sy, Width: side, Height: side}
}

func (v *Viewer) drawGrid() {
	theme := v.renderer.Theme
	size := v.sim.Size()

	// Grid background
	tl := v.cellRect(0, 0)
	rl.DrawRectangleRec(rl.Rectangle{X: tl.X, Y: tl.Y, Width: float32(size) * v.cam.Zoom, Height: float32(size) * v.cam.Zoom}, theme.GridBg)

	// Food first so agents on top of food hide it.
	if v.overlays.IsEnabled(OverlayFood) {
		maxAmount := float32(max(1, v.sim.Config().Food.MaxAmount))
		v.sim.World().Grid().EachFood(func(x, y, amount int) {
			if !v.cam.IsVisible(x, y) {
				return
			}
			c := theme.Food
			c.A = uint8(120 + 135*clampf(float32(amount)/maxAmount, 0, 1))
			rl.DrawRectangleRec(v.cellRect(x, y), c)
		})
	}

	base := float32(max(1, v.sim.Config().Energy.Base))
	byAction := v.overlays.IsEnabled(OverlayLastAction)
	tint := v.overlays.IsEnabled(OverlayEnergyTint)

	v.views = v.sim.Agents(v.views[:0])
	for _, a := range v.views {
		if !v.cam.IsVisible(a.X, a.Y) {
			continue
		}
		color := theme.AgentHigh
		switch {
		case byAction && int(a.LastAction) < components.NumActions:
			color = actionColors[a.LastAction]
		case byAction:
			color = rl.Gray
		case tint:
			color = theme.energyColor(float32(a.Energy) / base)
		}
		rl.DrawRectangleRec(v.cellRect(a.X, a.Y), color)
	}

	if v.overlays.IsEnabled(OverlayGridLines) && v.cam.Zoom >= 6 {
		v.drawGridLines()
	}

	if v.overlays.IsEnabled(OverlayRecords) && v.sim.Population() > 0 {
		if f, ok := v.sim.Agent(v.sim.Aggregate().Fittest); ok {
			v.outline(f.X, f.Y, 0, theme.Highlight)
		}
	}

	if sel, ok := v.selection(); ok {
		if v.overlays.IsEnabled(OverlayScanRange) {
			p := v.sim.Config().Perception
			v.outline(sel.X, sel.Y, p.ScanRange, rl.Fade(rl.SkyBlue, 0.6))
			v.outline(sel.X, sel.Y, p.ContactRange, rl.Fade(rl.Orange, 0.8))
		}
		v.outline(sel.X, sel.Y, 0, theme.Selection)
	}
}

// outline draws the bounding square of the cells within distance r of (x, y),
// clipped to the grid.
func (v *Viewer) outline(x, y, r int, color rl.Color) {
	size := v.sim.Size()
	x0, y0 := max(0, x-r), max(0, y-r)
	x1, y1 := min(size, x+r+1), min(size, y+r+1)
	sx, sy := v.cam.WorldToScreen(float32(x0), float32(y0))
	ex, ey := v.cam.WorldToScreen(float32(x1), float32(y1))
	rl.DrawRectangleLinesEx(rl.Rectangle{X: sx - 1, Y: sy - 1, Width: ex - sx + 2, Height: ey - sy + 2}, 1.5, color)
}

func (v *Viewer) drawGridLines() {
	minX, minY, maxX, maxY := v.cam.VisibleCells()
	color := rl.Color{R: 40, G: 40, B: 40, A: 255}
	for x := minX; x <= maxX; x++ {
		sx, sy := v.cam.WorldToScreen(float32(x), float32(minY))
		_, ey := v.cam.WorldToScreen(float32(x), float32(maxY))
		rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: sx, Y: ey}, color)
	}
	for y := minY; y <= maxY; y++ {
		sx, sy := v.cam.WorldToScreen(float32(minX), float32(y))
		ex, _ := v.cam.WorldToScreen(float32(maxX), float32(y))
		rl.DrawLineV(rl.Vector2{X: sx, Y: sy}, rl.Vector2{X: ex, Y: sy}, color)
	}
}

// selection returns the selected agent, dropping the selection once it dies.
func (v *Viewer) selection() (game.AgentView, bool) {
	if !v.hasSelection {
		return game.AgentView{}, false
	}
	a, ok := v.sim.Agent(v.selected)
	if !ok {
		v.hasSelection = false
	}
	return a, ok
}

func (v *Viewer) drawInspector() {
	a, ok := v.selection()
	if !ok {
		return
	}
	v.inspector.Draw(InspectorData{
		Agent:      a,
		Lifetime:   v.sim.Lifetime(a.ID),
		Policy:     v.sim.Policy(a.ID),
		BaseEnergy: v.sim.Config().Energy.Base,
		Tick:       v.sim.Tick(),
	})
}

// pacer converts frame time into a whole number of ticks at a target rate.
type pacer struct {
	acc float64
}

// advance adds dt seconds and returns how many ticks are due, at most limit.
// Time owed beyond the limit is dropped.
func (p *pacer) advance(dt float64, rate, limit int) int {
	if rate <= 0 {
		return 0
	}
	p.acc += dt * float64(rate)
	n := int(p.acc)
	p.acc -= float64(n)
	if n > limit {
		n = limit
	}
	return n
}

func (p *pacer) reset() { p.acc = 0 }
