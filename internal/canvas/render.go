package canvas

// OpKind discriminates display-list entries.
type OpKind string

const (
	OpStrokeRect    OpKind = "stroke-rect"
	OpStrokeEllipse OpKind = "stroke-ellipse"
	OpStrokePath    OpKind = "stroke-path"
	OpFill          OpKind = "fill"
	OpEraseDisc     OpKind = "erase-disc"
	OpSelectionBox  OpKind = "selection-box"
	OpHandle        OpKind = "handle"
	OpMarquee       OpKind = "marquee"
)

// eraseDiscRadius is the screen-space radius of one eraser dab.
const eraseDiscRadius = 8

// DrawOp is one renderer-agnostic drawing instruction in canvas space.
// Ops are emitted in paint order; EraseDisc ops come last and must be
// composited subtractively (destination-out). Line widths and radii are
// already divided by the viewport scale so they stay constant on screen.
type DrawOp struct {
	Kind      OpKind
	Rect      Rect
	Path      []Point
	Center    Point
	Radius    float64
	Rotation  float64
	LineWidth float64
	Style     ShapeStyle
	Handle    Handle
	Selected  bool
}

// DisplayList flattens the scene, selection chrome and any active
// marquee into an ordered list of draw ops for a rendering surface. The
// surface applies the viewport translate/scale itself; every op is in
// canvas coordinates.
func (c *Controller) DisplayList() []DrawOp {
	scale := c.viewport.Scale
	var ops []DrawOp

	for i, s := range c.scene.Shapes() {
		if s.Type == ShapeEraser {
			continue
		}
		style := s.EffectiveStyle()
		selected := i == c.selected
		if _, in := c.selectedSet[i]; in {
			selected = true
		}

		switch s.Type {
		case ShapeRect, ShapeEllipse:
			box := normalizedBox(s.X, s.Y, s.Width, s.Height)
			if style.FillStyle != FillNone {
				ops = append(ops, DrawOp{
					Kind: OpFill, Rect: box, Rotation: s.Rotation, Style: style,
				})
			}
			kind := OpStrokeRect
			if s.Type == ShapeEllipse {
				kind = OpStrokeEllipse
			}
			ops = append(ops, DrawOp{
				Kind: kind, Rect: box, Rotation: s.Rotation,
				LineWidth: style.StrokeWidth / scale, Style: style, Selected: selected,
			})
		case ShapePencil:
			ops = append(ops, DrawOp{
				Kind: OpStrokePath, Path: s.Path, Rotation: s.Rotation,
				Center:    Point{X: s.CenterX, Y: s.CenterY},
				LineWidth: style.StrokeWidth / scale, Style: style, Selected: selected,
			})
		}

		if i == c.selected && len(c.selectedSet) == 0 {
			ops = append(ops, c.selectionOps(s, scale)...)
		}
	}

	if c.state == StateMarqueeSelecting {
		ops = append(ops, DrawOp{
			Kind: OpMarquee,
			Rect: normalizedBox(c.marqueeStart.X, c.marqueeStart.Y,
				c.marqueeEnd.X-c.marqueeStart.X, c.marqueeEnd.Y-c.marqueeStart.Y),
			LineWidth: 1 / scale,
		})
	}

	// Erase strokes are applied after everything else so they cut
	// through all content below.
	for _, s := range c.scene.Shapes() {
		if s.Type != ShapeEraser {
			continue
		}
		for _, p := range s.Erase {
			ops = append(ops, DrawOp{
				Kind: OpEraseDisc, Center: p, Radius: eraseDiscRadius / scale,
			})
		}
	}

	return ops
}

func (c *Controller) selectionOps(s Shape, scale float64) []DrawOp {
	bounds, ok := s.Bounds()
	if !ok {
		return nil
	}
	ops := []DrawOp{{
		Kind: OpSelectionBox, Rect: bounds, Rotation: s.Rotation, LineWidth: 1 / scale,
	}}

	half := handleHitSize / scale / 2
	left, top := bounds.X, bounds.Y
	right, bottom := bounds.X+bounds.Width, bounds.Y+bounds.Height
	centerX := bounds.X + bounds.Width/2
	centerY := bounds.Y + bounds.Height/2

	handles := []struct {
		x, y   float64
		handle Handle
	}{
		{left, top, HandleNW},
		{right, top, HandleNE},
		{left, bottom, HandleSW},
		{right, bottom, HandleSE},
		{centerX, top, HandleN},
		{centerX, bottom, HandleS},
		{left, centerY, HandleW},
		{right, centerY, HandleE},
		{centerX, top - rotateHandleDistance/scale, HandleRotate},
	}
	for _, h := range handles {
		ops = append(ops, DrawOp{
			Kind: OpHandle, Center: Point{X: h.x, Y: h.y}, Radius: half, Handle: h.handle,
		})
	}
	return ops
}
