package ui

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/blobsim/components"
	"github.com/pthm-cable/blobsim/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title          string
	Tick           int
	Population     int
	Food           int
	Extinctions    int
	LastExtinction int
	TickRate       int
	FPS            int32
	Paused         bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	rl.DrawText(
		fmt.Sprintf("Agents: %d | Food: %d | Extinctions: %d", data.Population, data.Food, data.Extinctions),
		10, 35, 16, rl.LightGray,
	)

	last := "never"
	if data.LastExtinction >= 0 {
		last = fmt.Sprintf("tick %d", data.LastExtinction)
	}
	rl.DrawText(
		fmt.Sprintf("Tick: %d | Rate: %d/s | FPS: %d | Last extinction: %s", data.Tick, data.TickRate, data.FPS, last),
		10, 55, 16, rl.LightGray,
	)

	if data.Paused {
		rl.DrawText("PAUSED", 10, 75, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// StatsPanelData holds the population readouts.
type StatsPanelData struct {
	Energy     telemetry.EnergyStats
	BaseEnergy int
	Histogram  [components.NumActions + 1]int
	History    []int
	Oldest     *telemetry.Champion
	Fittest    *telemetry.Champion
}

// StatsPanel renders energy stats, the last-action histogram and the
// population history.
type StatsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	labels   []string
}

// NewStatsPanel creates a new stats panel.
func NewStatsPanel(x, y, width int32) *StatsPanel {
	labels := make([]string, 0, components.NumActions+1)
	for a := components.Action(0); a < components.NumActions; a++ {
		labels = append(labels, a.String())
	}
	labels = append(labels, "none")
	return &StatsPanel{renderer: NewRenderer(), x: x, y: y, width: width, labels: labels}
}

// SetPosition updates the panel position.
func (s *StatsPanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Draw renders the panel and returns its bottom edge.
func (s *StatsPanel) Draw(data StatsPanelData) int32 {
	r := s.renderer
	padding := r.Theme.Padding
	lh := r.Theme.LineHeight
	inner := s.width - padding*2

	height := padding*2 + lh*int32(len(s.labels)+10) + 60
	r.DrawPanel(s.x, s.y, s.width, height)

	x, y := s.x+padding, s.y+padding
	y = r.DrawSectionHeader(x, y, "Energy")
	e := data.Energy
	y = r.DrawLabelValue(x, y, "Mean", fmt.Sprintf("%.1f (sd %.1f)", e.Mean, e.Std))
	y = r.DrawLabelValue(x, y, "Range", fmt.Sprintf("%.0f .. %.0f", e.Min, e.Max))
	y = r.DrawLabelValue(x, y, "p10/50/90", fmt.Sprintf("%.0f / %.0f / %.0f", e.P10, e.P50, e.P90))
	y = r.DrawEnergyBar(x, y, "Mean/base", float32(e.Mean), float32(data.BaseEnergy), inner)
	y += 4

	y = r.DrawSectionHeader(x, y, "Last action")
	y = r.DrawHistogram(x, y, s.labels, data.Histogram[:], inner)

	y = r.DrawSectionHeader(x, y, "Population")
	y = r.DrawSparkline(x, y, inner, 50, data.History, r.Theme.AgentHigh)

	y = r.DrawSectionHeader(x, y, "Records")
	y = r.DrawLabelValue(x, y, "Oldest", championLine(data.Oldest, true))
	y = r.DrawLabelValue(x, y, "Fittest", championLine(data.Fittest, false))
	return y
}

func championLine(c *telemetry.Champion, actions bool) string {
	if c == nil {
		return "-"
	}
	if actions {
		return fmt.Sprintf("#%d, %d actions @%d", c.AgentID, c.Actions, c.Tick)
	}
	return fmt.Sprintf("#%d, energy %d @%d", c.AgentID, c.Energy, c.Tick)
}

// PerfPanel renders the per-phase step timing.
type PerfPanel struct {
	x, y int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x := p.x
	y := p.y

	rl.DrawText("Step Performance", x, y, 16, rl.White)
	y += 20

	rl.DrawText(fmt.Sprintf("Tick: %s p95 %s (%.0f/s)",
		stats.AvgTickDuration.Round(time.Microsecond), stats.P95TickDuration.Round(time.Microsecond), stats.TicksPerSecond),
		x, y, 14, rl.Yellow)
	y += 16

	for _, phase := range telemetry.Phases() {
		avg := stats.PhaseAvg[phase]
		pct := stats.PhasePct[phase]

		color := rl.LightGray
		if pct > 50 {
			color = rl.Red
		} else if pct > 25 {
			color = rl.Orange
		}

		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", phase, avg.Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}
