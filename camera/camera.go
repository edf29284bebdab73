// Package camera provides a 2D camera for viewing a bounded grid.
package camera

import "math"

// Camera controls the viewport into the grid. Coordinates are in cells;
// Zoom is screen pixels per cell.
type Camera struct {
	// Position is the camera center in grid coordinates
	X, Y float32

	Zoom float32

	// Viewport dimensions (screen size)
	ViewportW, ViewportH float32

	// Grid dimensions in cells
	WorldW, WorldH float32

	// Zoom constraints. MinZoom fits the whole grid in the viewport.
	MinZoom, MaxZoom float32
}

// New creates a camera that shows the whole grid centered in the viewport.
func New(viewportW, viewportH, worldW, worldH float32) *Camera {
	c := &Camera{
		X:         worldW / 2,
		Y:         worldH / 2,
		ViewportW: viewportW,
		ViewportH: viewportH,
		WorldW:    worldW,
		WorldH:    worldH,
		MaxZoom:   48,
	}
	c.MinZoom = fitZoom(viewportW, viewportH, worldW, worldH)
	c.Zoom = c.MinZoom
	return c
}

func fitZoom(viewportW, viewportH, worldW, worldH float32) float32 {
	if worldW <= 0 || worldH <= 0 {
		return 1
	}
	return min(viewportW/worldW, viewportH/worldH)
}

// WorldToScreen converts grid coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	sx = c.ViewportW/2 + (wx-c.X)*c.Zoom
	sy = c.ViewportH/2 + (wy-c.Y)*c.Zoom
	return sx, sy
}

// ScreenToWorld converts screen coordinates to grid coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	wx = c.X + (sx-c.ViewportW/2)/c.Zoom
	wy = c.Y + (sy-c.ViewportH/2)/c.Zoom
	return wx, wy
}

// CellAt returns the cell under a screen point and whether it is on the grid.
func (c *Camera) CellAt(sx, sy float32) (x, y int, ok bool) {
	wx, wy := c.ScreenToWorld(sx, sy)
	x, y = int(math.Floor(float64(wx))), int(math.Floor(float64(wy)))
	ok = x >= 0 && y >= 0 && float32(x) < c.WorldW && float32(y) < c.WorldH
	return x, y, ok
}

// IsVisible reports whether cell (x, y) overlaps the viewport.
func (c *Camera) IsVisible(x, y int) bool {
	sx, sy := c.WorldToScreen(float32(x), float32(y))
	return sx+c.Zoom >= 0 && sy+c.Zoom >= 0 && sx <= c.ViewportW && sy <= c.ViewportH
}

// Resize updates viewport dimensions and recalculates zoom constraints.
func (c *Camera) Resize(viewportW, viewportH float32) {
	if viewportW == c.ViewportW && viewportH == c.ViewportH {
		return
	}
	c.ViewportW = viewportW
	c.ViewportH = viewportH
	c.MinZoom = fitZoom(viewportW, viewportH, c.WorldW, c.WorldH)
	c.SetZoom(c.Zoom)
}

// SetWorld changes the grid dimensions, e.g. after a resize, and
// shows the whole grid again.
func (c *Camera) SetWorld(worldW, worldH float32) {
	c.WorldW, c.WorldH = worldW, worldH
	c.MinZoom = fitZoom(c.ViewportW, c.ViewportH, worldW, worldH)
	c.Reset()
}

// Pan moves the camera by the given delta in screen pixels. The center
// stays on the grid.
func (c *Camera) Pan(dx, dy float32) {
	c.X = clamp(c.X+dx/c.Zoom, 0, c.WorldW)
	c.Y = clamp(c.Y+dy/c.Zoom, 0, c.WorldH)
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, max(c.MinZoom, c.MaxZoom))
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset centers the camera and fits the grid.
func (c *Camera) Reset() {
	c.X = c.WorldW / 2
	c.Y = c.WorldH / 2
	c.Zoom = c.MinZoom
}

// VisibleCells returns the half-open cell range on screen, clipped to the grid.
func (c *Camera) VisibleCells() (minX, minY, maxX, maxY int) {
	halfW := c.ViewportW / (2 * c.Zoom)
	halfH := c.ViewportH / (2 * c.Zoom)

	minX = max(0, int(math.Floor(float64(c.X-halfW))))
	minY = max(0, int(math.Floor(float64(c.Y-halfH))))
	maxX = min(int(c.WorldW), int(math.Ceil(float64(c.X+halfW))))
	maxY = min(int(c.WorldH), int(math.Ceil(float64(c.Y+halfH))))
	return
}

func clamp(x, lo, hi float32) float32 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
