package canvas

// Scene is the ordered collection of shapes that constitutes current
// canvas content. Slice order is the render z-order and the addressing
// key for position-targeted updates. A Scene is exclusively owned and
// mutated by its Controller; peers only observe it through relayed
// mutation events.
type Scene struct {
	shapes []Shape
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// Len returns the number of shapes.
func (sc *Scene) Len() int {
	return len(sc.shapes)
}

// At returns a pointer to the shape at index i for in-place mutation.
func (sc *Scene) At(i int) *Shape {
	return &sc.shapes[i]
}

// Append adds a shape at the top of the z-order and returns its index.
func (sc *Scene) Append(s Shape) int {
	sc.shapes = append(sc.shapes, s)
	return len(sc.shapes) - 1
}

// ReplaceAt overwrites the shape at index i. Out-of-range indices are
// ignored; a stale position-addressed update from a peer must not panic
// the applier.
func (sc *Scene) ReplaceAt(i int, s Shape) bool {
	if i < 0 || i >= len(sc.shapes) {
		return false
	}
	sc.shapes[i] = s
	return true
}

// RemoveAt deletes the shape at index i, shifting later shapes down.
func (sc *Scene) RemoveAt(i int) bool {
	if i < 0 || i >= len(sc.shapes) {
		return false
	}
	sc.shapes = append(sc.shapes[:i], sc.shapes[i+1:]...)
	return true
}

// IndexByID returns the index of the shape with the given stable ID.
func (sc *Scene) IndexByID(id string) (int, bool) {
	if id == "" {
		return 0, false
	}
	for i := range sc.shapes {
		if sc.shapes[i].ID == id {
			return i, true
		}
	}
	return 0, false
}

// Replace swaps in a wholesale new shape list (resync, undo, redo).
func (sc *Scene) Replace(shapes []Shape) {
	sc.shapes = shapes
}

// Shapes returns the underlying shape list. Callers must not retain the
// slice across mutations.
func (sc *Scene) Shapes() []Shape {
	return sc.shapes
}

// Snapshot returns a deep copy of the shape list.
func (sc *Scene) Snapshot() []Shape {
	out := make([]Shape, len(sc.shapes))
	for i, s := range sc.shapes {
		out[i] = s.Clone()
	}
	return out
}

// ShapeAt returns the index of the topmost selectable shape under the
// canvas-space point, searching from the top of the z-order down.
func (sc *Scene) ShapeAt(p Point, scale float64) (int, bool) {
	for i := len(sc.shapes) - 1; i >= 0; i-- {
		if sc.shapes[i].Selectable() && sc.shapes[i].HitTest(p, scale) {
			return i, true
		}
	}
	return 0, false
}

// MarqueeSelect returns the indices of all selectable shapes whose
// bounding-box center lies within the marquee rect, boundary inclusive.
func (sc *Scene) MarqueeSelect(marquee Rect) []int {
	var selected []int
	for i, s := range sc.shapes {
		if !s.Selectable() {
			continue
		}
		bounds, ok := s.Bounds()
		if !ok {
			continue
		}
		if marquee.Contains(bounds.Center()) {
			selected = append(selected, i)
		}
	}
	return selected
}
