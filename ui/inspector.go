package ui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/blobsim/components"
	"github.com/pthm-cable/blobsim/game"
	"github.com/pthm-cable/blobsim/neural"
	"github.com/pthm-cable/blobsim/telemetry"
)

// InspectorData holds everything the inspector shows for one agent.
type InspectorData struct {
	Agent      game.AgentView
	Lifetime   *telemetry.LifetimeStats // nil if untracked
	Policy     *neural.Policy
	BaseEnergy int
	Tick       int
}

// Inspector renders the selected agent panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
	sections []SectionDescriptor
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		sections: inspectorSections(),
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

func data(d any) *InspectorData { return d.(*InspectorData) }

func inspectorSections() []SectionDescriptor {
	hasLifetime := func(d any) bool { return data(d).Lifetime != nil }
	return []SectionDescriptor{
		{
			ID:    "state",
			Title: "State",
			Fields: []FieldDescriptor{
				{ID: "position", Label: "Cell", Widget: WidgetText, TextGetter: func(d any) string {
					a := data(d).Agent
					return fmt.Sprintf("(%d, %d)", a.X, a.Y)
				}},
				{ID: "energy", Label: "Energy", Widget: WidgetEnergyBar, Getter: func(d any) float32 {
					return float32(data(d).Agent.Energy)
				}},
				{ID: "age", Label: "Age", Widget: WidgetText, TextGetter: func(d any) string {
					dd := data(d)
					return fmt.Sprintf("%d ticks", dd.Tick-dd.Agent.BirthTick)
				}},
				{ID: "actions", Label: "Actions", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
					return float32(len(data(d).Agent.Behaviour))
				}},
				{ID: "last", Label: "Last", Widget: WidgetText, TextGetter: func(d any) string {
					return data(d).Agent.LastAction.String()
				}},
				{ID: "parents", Label: "Parents", Widget: WidgetText, TextGetter: func(d any) string {
					a := data(d).Agent
					if !a.HasParents {
						return "founder"
					}
					return fmt.Sprintf("#%d x #%d", a.ParentIDs[0], a.ParentIDs[1])
				}},
			},
		},
		{
			ID:      "lifetime",
			Title:   "Lifetime",
			Visible: hasLifetime,
			Fields: []FieldDescriptor{
				{ID: "generation", Label: "Generation", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
					return float32(data(d).Lifetime.Generation)
				}},
				{ID: "children", Label: "Children", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
					return float32(data(d).Lifetime.Children)
				}},
				{ID: "kills", Label: "Kills", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
					return float32(data(d).Lifetime.Kills)
				}},
				{ID: "meals", Label: "Meals", Widget: WidgetText, TextGetter: func(d any) string {
					lt := data(d).Lifetime
					return fmt.Sprintf("%d (%d food)", lt.Meals, lt.FoodEaten)
				}},
				{ID: "peak", Label: "Peak energy", Widget: WidgetText, Format: "%.0f", Getter: func(d any) float32 {
					return float32(data(d).Lifetime.PeakEnergy)
				}},
			},
		},
	}
}

// Draw renders the inspector panel and returns its bottom edge.
func (ins *Inspector) Draw(d InspectorData) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	contentWidth := ins.width - padding*2

	r.DrawPanel(ins.x, ins.y, ins.width, 520)

	x, y := ins.x+padding, ins.y+padding
	rl.DrawText(fmt.Sprintf("Agent #%d", d.Agent.ID), x, y, 16, rl.White)
	y += r.Theme.LineHeight + 6

	for _, sd := range ins.sections {
		if sd.ID == "state" {
			// The energy bar is scaled to the current base energy.
			for i := range sd.Fields {
				if sd.Fields[i].ID == "energy" {
					sd.Fields[i].Range = FieldRange{Max: float32(max(d.BaseEnergy, d.Agent.Energy))}
				}
			}
		}
		y = r.DrawSection(x, y, sd, &d, contentWidth)
	}

	y = r.DrawSectionHeader(x, y, "Behaviour")
	y = r.DrawHistogram(x, y, actionLabels(), behaviourCounts(d.Agent.Behaviour), contentWidth)

	if d.Policy != nil {
		y = r.DrawSectionHeader(x, y, "Policy")
		y = ins.drawPolicy(x, y, contentWidth, d.Policy)
	}
	return y
}

func actionLabels() []string {
	labels := make([]string, components.NumActions)
	for i := range labels {
		labels[i] = components.Action(i).String()
	}
	return labels
}

func behaviourCounts(log []components.Action) []int {
	counts := make([]int, components.NumActions)
	for _, a := range log {
		if int(a) < components.NumActions {
			counts[a]++
		}
	}
	return counts
}

// drawPolicy draws each weight matrix as a heatmap, red positive and
// blue negative. Weights beyond +-1 saturate relative to the layer's peak.
func (ins *Inspector) drawPolicy(x, y, width int32, p *neural.Policy) int32 {
	const maxCell = 6
	gap := int32(6)
	cx := x
	tallest := int32(0)

	for i := 0; i < p.NumLayers(); i++ {
		m := p.Layer(i)
		rows, cols := m.Dims()
		cell := int32(maxCell)
		for cell > 1 && cx+int32(cols)*cell > x+width {
			cell--
		}

		scale := 1.0
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				scale = max(scale, math.Abs(m.At(r, c)))
			}
		}

		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				rl.DrawRectangle(cx+int32(c)*cell, y+int32(r)*cell, cell, cell, weightColor(m.At(r, c)/scale))
			}
		}
		tallest = max(tallest, int32(rows)*cell)
		cx += int32(cols)*cell + gap
		if cx >= x+width {
			break
		}
	}
	return y + tallest + 8
}

func weightColor(v float64) rl.Color {
	a := uint8(math.Min(1, math.Abs(v)) * 255)
	if v < 0 {
		return rl.Color{R: 40, G: 60, B: a, A: 255}
	}
	return rl.Color{R: a, G: 40, B: 40, A: 255}
}
