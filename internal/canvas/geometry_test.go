package canvas

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectHitTestNormalizesNegativeDimensions(t *testing.T) {
	// Drawn right-to-left, bottom-to-top.
	s := Shape{Type: ShapeRect, X: 100, Y: 100, Width: -50, Height: -50}

	assert.True(t, s.HitTest(Point{X: 75, Y: 75}, 1))
	assert.True(t, s.HitTest(Point{X: 50, Y: 50}, 1))
	assert.False(t, s.HitTest(Point{X: 101, Y: 75}, 1))
}

func TestEllipseHitTestUsesEllipseEquation(t *testing.T) {
	s := Shape{Type: ShapeEllipse, X: 0, Y: 0, Width: 100, Height: 50}

	assert.True(t, s.HitTest(Point{X: 50, Y: 25}, 1))  // center
	assert.True(t, s.HitTest(Point{X: 99, Y: 25}, 1))  // near right vertex
	assert.False(t, s.HitTest(Point{X: 95, Y: 48}, 1)) // inside box, outside ellipse
}

func TestPencilHitThresholdScalesWithZoom(t *testing.T) {
	s := Shape{Type: ShapePencil, Path: []Point{{X: 0, Y: 0}, {X: 100, Y: 0}}}

	// 8 units away: inside the 10-unit threshold at scale 1.
	assert.True(t, s.HitTest(Point{X: 50, Y: 8}, 1))
	// At 2x zoom the canvas-space threshold halves to 5.
	assert.False(t, s.HitTest(Point{X: 50, Y: 8}, 2))
	assert.True(t, s.HitTest(Point{X: 50, Y: 4}, 2))
}

func TestBounds(t *testing.T) {
	rect, ok := Shape{Type: ShapeRect, X: 10, Y: 10, Width: -5, Height: 20}.Bounds()
	require.True(t, ok)
	assert.Equal(t, Rect{X: 5, Y: 10, Width: 5, Height: 20}, rect)

	path, ok := Shape{Type: ShapePencil, Path: []Point{{X: 3, Y: 7}, {X: -1, Y: 2}}}.Bounds()
	require.True(t, ok)
	assert.Equal(t, Rect{X: -1, Y: 2, Width: 4, Height: 5}, path)

	_, ok = Shape{Type: ShapeEraser, Erase: []Point{{X: 1, Y: 1}}}.Bounds()
	assert.False(t, ok)
}

func TestHandleAt(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	assert.Equal(t, HandleNW, HandleAt(Point{X: 2, Y: -3}, bounds, 1))
	assert.Equal(t, HandleSE, HandleAt(Point{X: 99, Y: 104}, bounds, 1))
	assert.Equal(t, HandleN, HandleAt(Point{X: 50, Y: 3}, bounds, 1))
	assert.Equal(t, HandleE, HandleAt(Point{X: 103, Y: 50}, bounds, 1))
	assert.Equal(t, HandleRotate, HandleAt(Point{X: 50, Y: -30}, bounds, 1))
	assert.Equal(t, HandleNone, HandleAt(Point{X: 50, Y: 50}, bounds, 1))
}

func TestHandleAtScalesHitArea(t *testing.T) {
	bounds := Rect{X: 0, Y: 0, Width: 100, Height: 100}

	// 6 canvas units off the corner: a hit at scale 1 (8-unit zone),
	// a miss at 2x zoom (4-unit zone).
	assert.Equal(t, HandleNW, HandleAt(Point{X: 6, Y: 0}, bounds, 1))
	assert.Equal(t, HandleNone, HandleAt(Point{X: 6, Y: 0}, bounds, 2))
}

func TestMovePreservesShape(t *testing.T) {
	rect := Shape{Type: ShapeRect, X: 1, Y: 2, Width: 3, Height: 4}
	rect.Move(10, 20)
	assert.Equal(t, Shape{Type: ShapeRect, X: 11, Y: 22, Width: 3, Height: 4}, rect)

	pencil := Shape{Type: ShapePencil, Path: []Point{{X: 0, Y: 0}, {X: 1, Y: 1}}, CenterX: 0.5, CenterY: 0.5}
	pencil.Move(5, 5)
	assert.Equal(t, []Point{{X: 5, Y: 5}, {X: 6, Y: 6}}, pencil.Path)
	assert.Equal(t, 5.5, pencil.CenterX)
}

func TestResizeCorners(t *testing.T) {
	s := Shape{Type: ShapeRect, X: 0, Y: 0, Width: 100, Height: 100}
	s.Resize(HandleSE, 10, 20)
	assert.Equal(t, Shape{Type: ShapeRect, X: 0, Y: 0, Width: 110, Height: 120}, s)

	s = Shape{Type: ShapeRect, X: 0, Y: 0, Width: 100, Height: 100}
	s.Resize(HandleNW, 10, 20)
	assert.Equal(t, Shape{Type: ShapeRect, X: 10, Y: 20, Width: 90, Height: 80}, s)
}

func TestResizeEdges(t *testing.T) {
	s := Shape{Type: ShapeRect, X: 0, Y: 0, Width: 100, Height: 100}
	s.Resize(HandleE, 25, 999) // dy ignored for E
	assert.Equal(t, 125.0, s.Width)
	assert.Equal(t, 100.0, s.Height)

	s.Resize(HandleN, 999, -10)
	assert.Equal(t, -10.0, s.Y)
	assert.Equal(t, 110.0, s.Height)
}

func TestOppositeResizesCancel(t *testing.T) {
	orig := Shape{Type: ShapeRect, X: 5, Y: 5, Width: 50, Height: 60}
	s := orig
	s.Resize(HandleSE, 13, -7)
	s.Resize(HandleSE, -13, 7)
	assert.Equal(t, orig, s)
}

func TestResizePencilScalesPath(t *testing.T) {
	s := Shape{Type: ShapePencil, Path: []Point{{X: 0, Y: 0}, {X: 100, Y: 100}}}
	s.Resize(HandleSE, 100, 100)

	assert.Equal(t, Point{X: 0, Y: 0}, s.Path[0])
	assert.Equal(t, Point{X: 200, Y: 200}, s.Path[1])
	assert.Equal(t, 100.0, s.CenterX)
	assert.Equal(t, 100.0, s.CenterY)
}

func TestAngle(t *testing.T) {
	center := Point{X: 0, Y: 0}
	assert.InDelta(t, 0, Angle(center, Point{X: 1, Y: 0}), 1e-9)
	assert.InDelta(t, math.Pi/2, Angle(center, Point{X: 0, Y: 1}), 1e-9)
	assert.InDelta(t, math.Pi, Angle(center, Point{X: -1, Y: 0}), 1e-9)
}

func TestSetRotationPinsPencilCenter(t *testing.T) {
	s := Shape{Type: ShapePencil, Path: []Point{{X: 0, Y: 0}, {X: 10, Y: 10}}}
	s.SetRotation(1.5, Point{X: 5, Y: 5})
	assert.Equal(t, 1.5, s.Rotation)
	assert.Equal(t, 5.0, s.CenterX)
	assert.Equal(t, 5.0, s.CenterY)
}
