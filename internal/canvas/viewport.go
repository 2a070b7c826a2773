package canvas

import "math"

// Viewport zoom bounds and wheel behavior.
const (
	MinScale      = 0.1
	MaxScale      = 10
	zoomIntensity = 0.1
	zoomStep      = 1.2
)

// Viewport maps between screen space and canvas space. It only affects
// input mapping and rendering; stored shape coordinates are never
// touched by pan or zoom.
type Viewport struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// NewViewport returns an identity viewport.
func NewViewport() *Viewport {
	return &Viewport{Scale: 1}
}

// ScreenToCanvas converts a screen point into canvas coordinates.
func (v *Viewport) ScreenToCanvas(p Point) Point {
	return Point{
		X: (p.X - v.OffsetX) / v.Scale,
		Y: (p.Y - v.OffsetY) / v.Scale,
	}
}

// CanvasToScreen converts a canvas point into screen coordinates.
func (v *Viewport) CanvasToScreen(p Point) Point {
	return Point{
		X: p.X*v.Scale + v.OffsetX,
		Y: p.Y*v.Scale + v.OffsetY,
	}
}

// ZoomAt clamps newScale to [MinScale, MaxScale] and recomputes the
// offset so the canvas point under the screen point stays fixed.
func (v *Viewport) ZoomAt(newScale float64, screen Point) {
	canvas := v.ScreenToCanvas(screen)
	v.Scale = math.Max(MinScale, math.Min(MaxScale, newScale))
	v.OffsetX = screen.X - canvas.X*v.Scale
	v.OffsetY = screen.Y - canvas.Y*v.Scale
}

// ZoomWheel applies one wheel notch of zoom centered on the screen point.
func (v *Viewport) ZoomWheel(deltaY float64, screen Point) {
	delta := zoomIntensity
	if deltaY > 0 {
		delta = -zoomIntensity
	}
	v.ZoomAt(v.Scale*(1+delta), screen)
}

// ZoomIn zooms one step toward the given screen point.
func (v *Viewport) ZoomIn(screen Point) {
	v.ZoomAt(v.Scale*zoomStep, screen)
}

// ZoomOut zooms one step away from the given screen point.
func (v *Viewport) ZoomOut(screen Point) {
	v.ZoomAt(v.Scale/zoomStep, screen)
}

// Pan shifts the view by a screen-space delta.
func (v *Viewport) Pan(dx, dy float64) {
	v.OffsetX += dx
	v.OffsetY += dy
}

// Reset restores the identity transform.
func (v *Viewport) Reset() {
	v.Scale = 1
	v.OffsetX = 0
	v.OffsetY = 0
}

// ZoomLevel returns the zoom as a whole percentage.
func (v *Viewport) ZoomLevel() int {
	return int(math.Round(v.Scale * 100))
}
