package ui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Renderer handles all UI drawing with consistent styling.
type Renderer struct {
	Theme Theme
}

// NewRenderer creates a renderer with the default theme.
func NewRenderer() *Renderer {
	return &Renderer{Theme: DefaultTheme()}
}

// DrawPanel draws a panel background with border.
func (r *Renderer) DrawPanel(x, y, width, height int32) {
	rl.DrawRectangle(x, y, width, height, r.Theme.PanelBg)
	rl.DrawRectangleLines(x, y, width, height, r.Theme.PanelBorder)
}

// DrawSectionHeader draws a section header and returns the new Y position.
func (r *Renderer) DrawSectionHeader(x, y int32, title string) int32 {
	rl.DrawText(title, x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
	return y + r.Theme.LineHeight
}

// DrawLabelValue draws a label and value on the same line.
func (r *Renderer) DrawLabelValue(x, y int32, label, value string) int32 {
	rl.DrawText(label+":", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	rl.DrawText(value, x+r.Theme.LabelWidth, y, r.Theme.FontSize, r.Theme.ValueColor)
	return y + r.Theme.LineHeight
}

// bar draws a labelled track filled to ratio, with text right of it, and
// returns the next line's Y. reserve is the width kept for the text.
func (r *Renderer) bar(x, y int32, label string, ratio float32, fill rl.Color, text string, width, reserve int32) int32 {
	t := r.Theme
	barX := x + t.LabelWidth
	barWidth := max(0, width-t.LabelWidth-reserve)

	rl.DrawText(label, x, y, t.FontSize, t.LabelColor)
	rl.DrawRectangle(barX, y+2, barWidth, t.BarHeight, t.BarBg)
	rl.DrawRectangle(barX, y+2, int32(float32(barWidth)*clampf(ratio, 0, 1)), t.BarHeight, fill)
	rl.DrawText(text, barX+barWidth+5, y, t.FontSize, t.ValueColor)
	return y + t.LineHeight
}

// DrawEnergyBar draws current against limit, red below 30% and amber below 60%.
func (r *Renderer) DrawEnergyBar(x, y int32, label string, current, limit float32, width int32) int32 {
	var ratio float32
	if limit > 0 {
		ratio = current / limit
	}
	fill := r.Theme.BarFillHigh
	switch {
	case ratio < 0.3:
		fill = r.Theme.BarFillLow
	case ratio < 0.6:
		fill = r.Theme.BarFillMedium
	}
	return r.bar(x, y, label+":", ratio, fill, fmt.Sprintf("%.0f/%.0f", current, limit), width, 80) + 2
}

// DrawHistogram draws one horizontal bar per label, scaled to the largest count.
func (r *Renderer) DrawHistogram(x, y int32, labels []string, counts []int, width int32) int32 {
	peak := 1
	total := 0
	for _, c := range counts {
		peak = max(peak, c)
		total += c
	}

	for i, label := range labels {
		n := 0
		if i < len(counts) {
			n = counts[i]
		}
		pct := 0.0
		if total > 0 {
			pct = float64(n) * 100 / float64(total)
		}
		y = r.bar(x, y, label, float32(n)/float32(peak), r.Theme.BarFill, fmt.Sprintf("%5d %3.0f%%", n, pct), width, 70)
	}
	return y + 2
}

// DrawSparkline draws values as a line scaled to [0, max(values)].
func (r *Renderer) DrawSparkline(x, y, width, height int32, values []int, color rl.Color) int32 {
	rl.DrawRectangle(x, y, width, height, r.Theme.BarBg)
	if len(values) < 2 {
		return y + height + 4
	}

	peak := 1
	for _, v := range values {
		peak = max(peak, v)
	}
	step := float32(width) / float32(len(values)-1)
	point := func(i int) rl.Vector2 {
		return rl.Vector2{
			X: float32(x) + float32(i)*step,
			Y: float32(y+height) - float32(height)*float32(values[i])/float32(peak),
		}
	}
	prev := point(0)
	for i := 1; i < len(values); i++ {
		next := point(i)
		rl.DrawLineV(prev, next, color)
		prev = next
	}
	rl.DrawText(fmt.Sprintf("%d", peak), x+width-rl.MeasureText(fmt.Sprintf("%d", peak), 10)-2, y+2, 10, r.Theme.LabelColor)
	return y + height + 4
}

// DrawField renders a field based on its descriptor.
func (r *Renderer) DrawField(x, y int32, fd FieldDescriptor, data any, width int32) int32 {
	value := float32(0)
	if fd.Getter != nil {
		value = fd.Getter(data)
	}

	switch fd.Widget {
	case WidgetEnergyBar:
		return r.DrawEnergyBar(x, y, fd.Label, value, fd.Range.Max, width)
	default:
		text := fmt.Sprintf(fd.Format, value)
		if fd.TextGetter != nil {
			text = fd.TextGetter(data)
		}
		return r.DrawLabelValue(x, y, fd.Label, text)
	}
}

// DrawSection renders a section with header and fields.
func (r *Renderer) DrawSection(x, y int32, sd SectionDescriptor, data any, width int32) int32 {
	if sd.Visible != nil && !sd.Visible(data) {
		return y
	}
	if sd.Title != "" {
		y = r.DrawSectionHeader(x, y, sd.Title)
	}
	for _, fd := range sd.Fields {
		if fd.Visible != nil && !fd.Visible(data) {
			continue
		}
		y = r.DrawField(x, y, fd, data, width)
	}
	return y + 4 // Small gap after section
}
