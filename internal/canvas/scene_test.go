package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeAtPicksTopmost(t *testing.T) {
	sc := NewScene()
	sc.Append(Shape{ID: "bottom", Type: ShapeRect, X: 0, Y: 0, Width: 100, Height: 100})
	sc.Append(Shape{ID: "top", Type: ShapeRect, X: 25, Y: 25, Width: 50, Height: 50})

	idx, ok := sc.ShapeAt(Point{X: 50, Y: 50}, 1)
	require.True(t, ok)
	assert.Equal(t, "top", sc.At(idx).ID)

	idx, ok = sc.ShapeAt(Point{X: 10, Y: 10}, 1)
	require.True(t, ok)
	assert.Equal(t, "bottom", sc.At(idx).ID)

	_, ok = sc.ShapeAt(Point{X: 500, Y: 500}, 1)
	assert.False(t, ok)
}

func TestShapeAtSkipsEraserStrokes(t *testing.T) {
	sc := NewScene()
	sc.Append(Shape{ID: "r", Type: ShapeRect, X: 0, Y: 0, Width: 100, Height: 100})
	sc.Append(Shape{ID: "e", Type: ShapeEraser, Erase: []Point{{X: 50, Y: 50}}})

	idx, ok := sc.ShapeAt(Point{X: 50, Y: 50}, 1)
	require.True(t, ok)
	assert.Equal(t, "r", sc.At(idx).ID)
}

func TestMarqueeSelectsByCenterContainment(t *testing.T) {
	sc := NewScene()
	// Center (50,50): inside the marquee.
	sc.Append(Shape{ID: "in", Type: ShapeRect, X: 0, Y: 0, Width: 100, Height: 100})
	// Overlaps the marquee but its center (150,50) lies outside.
	sc.Append(Shape{ID: "out", Type: ShapeRect, X: 90, Y: 0, Width: 120, Height: 100})
	// Center exactly on the boundary counts.
	sc.Append(Shape{ID: "edge", Type: ShapeRect, X: 80, Y: 80, Width: 40, Height: 40})

	selected := sc.MarqueeSelect(Rect{X: 0, Y: 0, Width: 100, Height: 100})
	require.Len(t, selected, 2)
	assert.Equal(t, "in", sc.At(selected[0]).ID)
	assert.Equal(t, "edge", sc.At(selected[1]).ID)
}

func TestReplaceAtIgnoresOutOfRange(t *testing.T) {
	sc := sceneWith("a")
	assert.False(t, sc.ReplaceAt(5, Shape{Type: ShapeRect}))
	assert.False(t, sc.ReplaceAt(-1, Shape{Type: ShapeRect}))
	assert.True(t, sc.ReplaceAt(0, Shape{ID: "b", Type: ShapeRect}))
	assert.Equal(t, "b", sc.At(0).ID)
}

func TestIndexByID(t *testing.T) {
	sc := sceneWith("a", "b", "c")

	idx, ok := sc.IndexByID("b")
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = sc.IndexByID("missing")
	assert.False(t, ok)
	_, ok = sc.IndexByID("")
	assert.False(t, ok)
}

func TestSnapshotIndependence(t *testing.T) {
	sc := NewScene()
	sc.Append(Shape{ID: "p", Type: ShapePencil, Path: []Point{{X: 1, Y: 1}}})

	snap := sc.Snapshot()
	sc.At(0).Path[0].X = 42

	assert.Equal(t, 1.0, snap[0].Path[0].X)
}
