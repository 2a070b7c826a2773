package canvas

import "math"

// Rect is an axis-aligned bounding box with non-negative dimensions.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Center returns the geometric center of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether the point lies inside the rect, boundary
// inclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// normalizedBox converts a possibly negative width/height box into a Rect.
func normalizedBox(x, y, w, h float64) Rect {
	return Rect{
		X:      math.Min(x, x+w),
		Y:      math.Min(y, y+h),
		Width:  math.Abs(w),
		Height: math.Abs(h),
	}
}

// pathBounds returns the min/max box over path points.
func pathBounds(path []Point) (Rect, bool) {
	if len(path) == 0 {
		return Rect{}, false
	}
	minX, minY := path[0].X, path[0].Y
	maxX, maxY := minX, minY
	for _, p := range path[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// Bounds returns the shape's bounding box. Eraser strokes have no bounds.
func (s Shape) Bounds() (Rect, bool) {
	switch s.Type {
	case ShapeRect, ShapeEllipse:
		return normalizedBox(s.X, s.Y, s.Width, s.Height), true
	case ShapePencil:
		return pathBounds(s.Path)
	default:
		return Rect{}, false
	}
}

// Center returns the point the shape rotates about: the geometric center
// for boxes, the stored center for pencil strokes.
func (s Shape) Center() (Point, bool) {
	if s.Type == ShapePencil {
		if s.CenterX != 0 || s.CenterY != 0 {
			return Point{X: s.CenterX, Y: s.CenterY}, true
		}
	}
	b, ok := s.Bounds()
	if !ok {
		return Point{}, false
	}
	return b.Center(), true
}

// distanceToSegment returns the distance from p to the segment a-b.
func distanceToSegment(p, a, b Point) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y
	lengthSq := dx*dx + dy*dy
	if lengthSq == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lengthSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(p.X-(a.X+t*dx), p.Y-(a.Y+t*dy))
}

// pencilHitThreshold is the screen-space pick distance for stroke paths.
const pencilHitThreshold = 10

// HitTest reports whether the canvas-space point lies on the shape.
// scale is the current viewport zoom; stroke pick thresholds shrink as
// the view zooms in so the hit area stays constant on screen.
func (s Shape) HitTest(p Point, scale float64) bool {
	switch s.Type {
	case ShapeRect:
		return normalizedBox(s.X, s.Y, s.Width, s.Height).Contains(p)
	case ShapeEllipse:
		cx := s.X + s.Width/2
		cy := s.Y + s.Height/2
		rx := math.Abs(s.Width / 2)
		ry := math.Abs(s.Height / 2)
		if rx == 0 || ry == 0 {
			return false
		}
		dx := (p.X - cx) / rx
		dy := (p.Y - cy) / ry
		return dx*dx+dy*dy <= 1
	case ShapePencil:
		threshold := pencilHitThreshold / scale
		for i := 0; i+1 < len(s.Path); i++ {
			if distanceToSegment(p, s.Path[i], s.Path[i+1]) < threshold {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Handle names one of the nine manipulation handles around a selection.
type Handle string

const (
	HandleNone   Handle = ""
	HandleNW     Handle = "nw"
	HandleNE     Handle = "ne"
	HandleSW     Handle = "sw"
	HandleSE     Handle = "se"
	HandleN      Handle = "n"
	HandleS      Handle = "s"
	HandleW      Handle = "w"
	HandleE      Handle = "e"
	HandleRotate Handle = "rotate"
)

const (
	handleHitSize        = 8
	rotateHandleDistance = 30
)

// HandleAt returns the handle under the canvas-space point for a
// selection with the given bounds. Handle hit sizes and the rotation
// handle offset are fixed screen-space distances, scaled by the inverse
// zoom.
func HandleAt(p Point, bounds Rect, scale float64) Handle {
	hit := handleHitSize / scale
	left, top := bounds.X, bounds.Y
	right, bottom := bounds.X+bounds.Width, bounds.Y+bounds.Height
	centerX := bounds.X + bounds.Width/2
	centerY := bounds.Y + bounds.Height/2

	// Rotation handle sits above top-center.
	rotateY := top - rotateHandleDistance/scale
	if math.Abs(p.X-centerX) < hit && math.Abs(p.Y-rotateY) < hit {
		return HandleRotate
	}

	corners := []struct {
		x, y   float64
		handle Handle
	}{
		{left, top, HandleNW},
		{right, top, HandleNE},
		{left, bottom, HandleSW},
		{right, bottom, HandleSE},
	}
	for _, c := range corners {
		if math.Abs(p.X-c.x) < hit && math.Abs(p.Y-c.y) < hit {
			return c.handle
		}
	}

	edges := []struct {
		x, y   float64
		handle Handle
	}{
		{centerX, top, HandleN},
		{centerX, bottom, HandleS},
		{left, centerY, HandleW},
		{right, centerY, HandleE},
	}
	for _, e := range edges {
		if math.Abs(p.X-e.x) < hit && math.Abs(p.Y-e.y) < hit {
			return e.handle
		}
	}
	return HandleNone
}

// Move translates the shape by (dx, dy), keeping its identity.
func (s *Shape) Move(dx, dy float64) {
	switch s.Type {
	case ShapeRect, ShapeEllipse:
		s.X += dx
		s.Y += dy
	case ShapePencil:
		for i := range s.Path {
			s.Path[i].X += dx
			s.Path[i].Y += dy
		}
		s.CenterX += dx
		s.CenterY += dy
	case ShapeEraser:
		for i := range s.Erase {
			s.Erase[i].X += dx
			s.Erase[i].Y += dy
		}
	}
}

// Resize adjusts the shape from the given handle by (dx, dy). Corner
// handles change both dimensions and reposition the origin, edge handles
// change one dimension. Pencil strokes are scaled per axis relative to
// their bounding box and translated, then their center is recomputed.
func (s *Shape) Resize(handle Handle, dx, dy float64) {
	switch s.Type {
	case ShapeRect, ShapeEllipse:
		switch handle {
		case HandleNW:
			s.X += dx
			s.Y += dy
			s.Width -= dx
			s.Height -= dy
		case HandleNE:
			s.Y += dy
			s.Width += dx
			s.Height -= dy
		case HandleSW:
			s.X += dx
			s.Width -= dx
			s.Height += dy
		case HandleSE:
			s.Width += dx
			s.Height += dy
		case HandleN:
			s.Y += dy
			s.Height -= dy
		case HandleS:
			s.Height += dy
		case HandleW:
			s.X += dx
			s.Width -= dx
		case HandleE:
			s.Width += dx
		}
	case ShapePencil:
		bounds, ok := pathBounds(s.Path)
		if !ok || bounds.Width == 0 || bounds.Height == 0 {
			return
		}
		scaleX, scaleY := 1.0, 1.0
		translateX, translateY := 0.0, 0.0
		switch handle {
		case HandleNW:
			scaleX = (bounds.Width - dx) / bounds.Width
			scaleY = (bounds.Height - dy) / bounds.Height
			translateX, translateY = dx, dy
		case HandleNE:
			scaleX = (bounds.Width + dx) / bounds.Width
			scaleY = (bounds.Height - dy) / bounds.Height
			translateY = dy
		case HandleSW:
			scaleX = (bounds.Width - dx) / bounds.Width
			scaleY = (bounds.Height + dy) / bounds.Height
			translateX = dx
		case HandleSE:
			scaleX = (bounds.Width + dx) / bounds.Width
			scaleY = (bounds.Height + dy) / bounds.Height
		case HandleN:
			scaleY = (bounds.Height - dy) / bounds.Height
			translateY = dy
		case HandleS:
			scaleY = (bounds.Height + dy) / bounds.Height
		case HandleW:
			scaleX = (bounds.Width - dx) / bounds.Width
			translateX = dx
		case HandleE:
			scaleX = (bounds.Width + dx) / bounds.Width
		}
		for i, p := range s.Path {
			s.Path[i].X = bounds.X + (p.X-bounds.X)*scaleX + translateX
			s.Path[i].Y = bounds.Y + (p.Y-bounds.Y)*scaleY + translateY
		}
		if newBounds, ok := pathBounds(s.Path); ok {
			c := newBounds.Center()
			s.CenterX = c.X
			s.CenterY = c.Y
		}
	}
}

// Angle returns the angle of the vector from center to p.
func Angle(center, p Point) float64 {
	return math.Atan2(p.Y-center.Y, p.X-center.X)
}

// SetRotation stores the rotation angle about the shape's center. Pencil
// strokes additionally pin the center the angle was computed against.
func (s *Shape) SetRotation(angle float64, center Point) {
	s.Rotation = angle
	if s.Type == ShapePencil {
		s.CenterX = center.X
		s.CenterY = center.Y
	}
}
