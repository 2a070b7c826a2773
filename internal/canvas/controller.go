package canvas

import (
	"fmt"
	"sort"

	"github.com/adeebik/eraser/internal/protocol"
)

// Tool selects how pointer gestures are interpreted.
type Tool string

const (
	ToolSelect  Tool = "select"
	ToolRect    Tool = "rect"
	ToolEllipse Tool = "circle"
	ToolPencil  Tool = "pencil"
	ToolEraser  Tool = "eraser"
)

// State is the controller's interaction state between pointer-down and
// pointer-up.
type State int

const (
	StateIdle State = iota
	StateDrawing
	StatePanning
	StateDragging
	StateResizing
	StateRotating
	StateMarqueeSelecting
)

// Button identifies the pointer button that started a gesture.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonMiddle
	ButtonSecondary
)

// PointerEvent is a pointer gesture sample in screen coordinates.
type PointerEvent struct {
	X, Y          float64
	Button        Button
	PanModifier   bool // shift held
	MultiModifier bool // ctrl/cmd held
}

// WheelEvent is a scroll sample in screen coordinates.
type WheelEvent struct {
	X, Y         float64
	DeltaY       float64
	ZoomModifier bool // ctrl/cmd held
	PanModifier  bool // shift held
}

// Sender delivers outbound mutations to the room coordinator. Sends are
// fire-and-forget; transport loss surfaces through the session's close
// handling, not here.
type Sender interface {
	Send(t protocol.MessageType, payload any)
}

// duplicateOffset shifts a duplicated shape down-right so it does not
// land exactly on the original.
const duplicateOffset = 20

// Controller interprets input into scene mutations, keeps the local
// undo/redo history and the viewport transform, and serializes mutations
// toward the room. All methods must be called from a single goroutine.
type Controller struct {
	roomID string
	sender Sender

	scene    *Scene
	history  *History
	viewport *Viewport

	tool            Tool
	strokeColor     string
	strokeWidth     float64
	backgroundColor string
	fillStyle       FillStyle

	state       State
	currentPath []Point
	start       Point // gesture start, canvas space
	last        Point // previous sample, canvas space
	panStart    Point // pointer offset at pan start, screen space

	selected        int // single selection, -1 when none
	selectedSet     map[int]struct{}
	resizeHandle    Handle
	initialRotation float64
	dragAnchor      Point
	marqueeStart    Point
	marqueeEnd      Point

	// applyingRemote suppresses history pushes while a relayed peer
	// mutation is dispatched, so peers' edits never become local undo
	// steps.
	applyingRemote bool

	listeners []func()
}

// NewController builds a controller for a room. sender may be nil for a
// detached (offline) controller.
func NewController(roomID string, sender Sender) *Controller {
	style := DefaultStyle()
	return &Controller{
		roomID:          roomID,
		sender:          sender,
		scene:           NewScene(),
		history:         NewHistory(DefaultHistorySize),
		viewport:        NewViewport(),
		tool:            ToolPencil,
		strokeColor:     style.StrokeColor,
		strokeWidth:     style.StrokeWidth,
		backgroundColor: style.BackgroundColor,
		fillStyle:       style.FillStyle,
		selected:        -1,
		selectedSet:     make(map[int]struct{}),
	}
}

// LoadScene seeds the scene from the room's persisted mutation log and
// records it as history entry 0.
func (c *Controller) LoadScene(shapes []Shape) {
	c.scene.Replace(shapes)
	c.history.Push(c.scene)
	c.notify()
}

// OnStateChange registers a callback invoked synchronously after every
// operation that changes observable state.
func (c *Controller) OnStateChange(fn func()) {
	c.listeners = append(c.listeners, fn)
}

// Scene exposes the controller's scene for rendering and tests.
func (c *Controller) Scene() *Scene { return c.scene }

// Viewport exposes the viewport transform.
func (c *Controller) Viewport() *Viewport { return c.viewport }

// State returns the current interaction state.
func (c *Controller) State() State { return c.state }

// SetTool switches the active tool.
func (c *Controller) SetTool(t Tool) { c.tool = t }

// SetStrokeColor sets the stroke color for new shapes.
func (c *Controller) SetStrokeColor(color string) { c.strokeColor = color }

// SetStrokeWidth sets the stroke width for new shapes.
func (c *Controller) SetStrokeWidth(width float64) { c.strokeWidth = width }

// SetBackgroundColor sets the fill color for new shapes.
func (c *Controller) SetBackgroundColor(color string) { c.backgroundColor = color }

// SetFillStyle sets the fill pattern for new shapes.
func (c *Controller) SetFillStyle(fs FillStyle) { c.fillStyle = fs }

// SelectedIndex returns the single-selection index, or -1.
func (c *Controller) SelectedIndex() int { return c.selected }

// SelectedIndices returns the multi-selection set.
func (c *Controller) SelectedIndices() []int {
	out := make([]int, 0, len(c.selectedSet))
	for i := range c.selectedSet {
		out = append(out, i)
	}
	return out
}

// CanUndo reports whether an undo step is available.
func (c *Controller) CanUndo() bool { return c.history.CanUndo() }

// CanRedo reports whether a redo step is available.
func (c *Controller) CanRedo() bool { return c.history.CanRedo() }

func (c *Controller) currentStyle() *ShapeStyle {
	return &ShapeStyle{
		StrokeColor:     c.strokeColor,
		StrokeWidth:     c.strokeWidth,
		BackgroundColor: c.backgroundColor,
		FillStyle:       c.fillStyle,
	}
}

func (c *Controller) notify() {
	for _, fn := range c.listeners {
		fn()
	}
}

func (c *Controller) saveToHistory() {
	if c.applyingRemote {
		return
	}
	c.history.Push(c.scene)
	c.notify()
}

func (c *Controller) emit(t protocol.MessageType, payload any) {
	if c.sender == nil {
		return
	}
	c.sender.Send(t, payload)
}

// PointerDown starts a gesture according to the entry rules: middle
// button or primary+pan-modifier pans regardless of tool; the select
// tool grabs handles, shapes or a marquee; draw tools start accumulating
// a new shape.
func (c *Controller) PointerDown(e PointerEvent) {
	if e.Button == ButtonMiddle || (e.Button == ButtonPrimary && e.PanModifier) {
		c.state = StatePanning
		c.panStart = Point{X: e.X - c.viewport.OffsetX, Y: e.Y - c.viewport.OffsetY}
		return
	}
	if e.Button != ButtonPrimary {
		return
	}

	p := c.viewport.ScreenToCanvas(Point{X: e.X, Y: e.Y})

	if c.tool == ToolSelect {
		c.pointerDownSelect(p, e)
		return
	}

	c.state = StateDrawing
	c.start = p
	c.last = p
	if c.tool == ToolPencil || c.tool == ToolEraser {
		c.currentPath = []Point{p}
	}
}

func (c *Controller) pointerDownSelect(p Point, e PointerEvent) {
	// Handles are live only for a single selection.
	if c.selected >= 0 && len(c.selectedSet) == 0 {
		shape := c.scene.At(c.selected)
		if bounds, ok := shape.Bounds(); ok {
			switch handle := HandleAt(p, bounds, c.viewport.Scale); {
			case handle == HandleRotate:
				c.state = StateRotating
				center, _ := shape.Center()
				c.initialRotation = Angle(center, p) - shape.Rotation
				return
			case handle != HandleNone:
				c.state = StateResizing
				c.resizeHandle = handle
				c.dragAnchor = p
				return
			}
		}
	}

	if idx, ok := c.scene.ShapeAt(p, c.viewport.Scale); ok {
		if e.MultiModifier {
			if _, in := c.selectedSet[idx]; in {
				delete(c.selectedSet, idx)
				if c.selected == idx {
					c.selected = -1
				}
			} else {
				c.selectedSet[idx] = struct{}{}
				c.selected = idx
			}
		} else if _, in := c.selectedSet[idx]; !in {
			c.selectedSet = make(map[int]struct{})
			c.selected = idx
		}
		c.state = StateDragging
		c.dragAnchor = p
	} else if !e.MultiModifier {
		c.selected = -1
		c.selectedSet = make(map[int]struct{})
		c.state = StateMarqueeSelecting
		c.marqueeStart = p
		c.marqueeEnd = p
	}
	c.notify()
}

// PointerMove advances the active gesture.
func (c *Controller) PointerMove(e PointerEvent) {
	if c.state == StatePanning {
		c.viewport.OffsetX = e.X - c.panStart.X
		c.viewport.OffsetY = e.Y - c.panStart.Y
		c.notify()
		return
	}

	p := c.viewport.ScreenToCanvas(Point{X: e.X, Y: e.Y})

	switch c.state {
	case StateMarqueeSelecting:
		c.marqueeEnd = p
		c.notify()
	case StateRotating:
		if c.selected >= 0 {
			shape := c.scene.At(c.selected)
			if center, ok := shape.Center(); ok {
				shape.SetRotation(Angle(center, p)-c.initialRotation, center)
				c.notify()
			}
		}
	case StateResizing:
		if c.selected >= 0 {
			c.scene.At(c.selected).Resize(c.resizeHandle, p.X-c.dragAnchor.X, p.Y-c.dragAnchor.Y)
			c.dragAnchor = p
			c.notify()
		}
	case StateDragging:
		dx, dy := p.X-c.dragAnchor.X, p.Y-c.dragAnchor.Y
		if len(c.selectedSet) > 0 {
			for idx := range c.selectedSet {
				c.scene.At(idx).Move(dx, dy)
			}
		} else if c.selected >= 0 {
			c.scene.At(c.selected).Move(dx, dy)
		}
		c.dragAnchor = p
		c.notify()
	case StateDrawing:
		if c.tool == ToolPencil || c.tool == ToolEraser {
			c.currentPath = append(c.currentPath, p)
		}
		c.last = p
		c.notify()
	}
}

// PointerUp commits the active gesture: drawing appends a shape and
// emits a create mutation, drag/resize/rotate emit in-place updates or a
// full resync, marquee resolves the selection without any mutation.
func (c *Controller) PointerUp(e PointerEvent) {
	state := c.state
	c.state = StateIdle

	p := c.viewport.ScreenToCanvas(Point{X: e.X, Y: e.Y})

	switch state {
	case StatePanning:
		return

	case StateMarqueeSelecting:
		c.marqueeEnd = p
		marquee := normalizedBox(c.marqueeStart.X, c.marqueeStart.Y,
			c.marqueeEnd.X-c.marqueeStart.X, c.marqueeEnd.Y-c.marqueeStart.Y)
		c.selectedSet = make(map[int]struct{})
		for _, idx := range c.scene.MarqueeSelect(marquee) {
			c.selectedSet[idx] = struct{}{}
		}
		c.selected = -1
		if len(c.selectedSet) == 1 {
			for idx := range c.selectedSet {
				c.selected = idx
			}
			c.selectedSet = make(map[int]struct{})
		}
		c.notify()

	case StateResizing, StateRotating:
		c.resizeHandle = HandleNone
		if c.selected < 0 {
			return
		}
		c.saveToHistory()
		c.emitUpdate(c.selected)

	case StateDragging:
		c.saveToHistory()
		c.emitStateSync()

	case StateDrawing:
		c.commitDrawing(p)
	}
}

func (c *Controller) commitDrawing(p Point) {
	width := p.X - c.start.X
	height := p.Y - c.start.Y

	var shape Shape
	switch c.tool {
	case ToolRect, ToolEllipse:
		shape = Shape{
			ID:    NewShapeID(),
			Type:  ShapeType(c.tool),
			X:     c.start.X,
			Y:     c.start.Y,
			Width: width, Height: height,
			Style: c.currentStyle(),
		}
	case ToolPencil:
		center := c.start
		if bounds, ok := pathBounds(c.currentPath); ok {
			center = bounds.Center()
		}
		shape = Shape{
			ID:      NewShapeID(),
			Type:    ShapePencil,
			Path:    c.currentPath,
			CenterX: center.X,
			CenterY: center.Y,
			Style:   c.currentStyle(),
		}
	case ToolEraser:
		shape = Shape{
			ID:    NewShapeID(),
			Type:  ShapeEraser,
			Erase: c.currentPath,
		}
	default:
		c.currentPath = nil
		return
	}
	c.currentPath = nil

	c.scene.Append(shape)
	c.saveToHistory()
	c.emitCreate(shape)
}

// Wheel pans vertically by default, horizontally with the pan modifier,
// and zooms at the cursor with the zoom modifier.
func (c *Controller) Wheel(e WheelEvent) {
	switch {
	case e.ZoomModifier:
		c.viewport.ZoomWheel(e.DeltaY, Point{X: e.X, Y: e.Y})
	case e.PanModifier:
		c.viewport.Pan(-e.DeltaY, 0)
	default:
		c.viewport.Pan(0, -e.DeltaY)
	}
	c.notify()
}

// Undo restores the previous history snapshot and broadcasts the whole
// resulting scene. Full-state replication keeps the sender's replay
// idempotent at the cost of last-writer-wins against concurrent edits.
func (c *Controller) Undo() {
	shapes, ok := c.history.Undo()
	if !ok {
		return
	}
	c.scene.Replace(shapes)
	c.clearSelection()
	c.notify()
	c.emitStateSync()
}

// Redo restores the next history snapshot and broadcasts the scene.
func (c *Controller) Redo() {
	shapes, ok := c.history.Redo()
	if !ok {
		return
	}
	c.scene.Replace(shapes)
	c.clearSelection()
	c.notify()
	c.emitStateSync()
}

// ClearAll removes every shape and broadcasts a canvas clear.
func (c *Controller) ClearAll() {
	c.scene.Replace(nil)
	c.clearSelection()
	c.saveToHistory()
	c.emit(protocol.TypeClearCanvas, protocol.ClearCanvasPayload{RoomID: c.roomID})
}

// DeleteSelected removes the selected shape(s) and broadcasts a resync.
func (c *Controller) DeleteSelected() {
	switch {
	case len(c.selectedSet) > 0:
		indices := make([]int, 0, len(c.selectedSet))
		for idx := range c.selectedSet {
			indices = append(indices, idx)
		}
		// Remove from the top down so earlier removals do not shift
		// later targets.
		sort.Sort(sort.Reverse(sort.IntSlice(indices)))
		for _, idx := range indices {
			c.scene.RemoveAt(idx)
		}
	case c.selected >= 0:
		c.scene.RemoveAt(c.selected)
	default:
		return
	}
	c.clearSelection()
	c.saveToHistory()
	c.emitStateSync()
}

// DuplicateSelected copies the selected shape with a fresh ID, offset
// slightly, selects the copy and broadcasts its creation.
func (c *Controller) DuplicateSelected() {
	if c.selected < 0 {
		return
	}
	dup := c.scene.At(c.selected).Clone()
	dup.ID = NewShapeID()
	dup.Move(duplicateOffset, duplicateOffset)
	c.selected = c.scene.Append(dup)
	c.selectedSet = make(map[int]struct{})
	c.saveToHistory()
	c.emitCreate(dup)
}

// SelectedShapeStyle returns the style of the single selected shape.
func (c *Controller) SelectedShapeStyle() (ShapeStyle, bool) {
	if c.selected < 0 {
		return ShapeStyle{}, false
	}
	shape := c.scene.At(c.selected)
	if !shape.Selectable() {
		return ShapeStyle{}, false
	}
	return shape.EffectiveStyle(), true
}

// UpdateSelectedShapeStyle overwrites style fields of the selected shape
// and broadcasts the update.
func (c *Controller) UpdateSelectedShapeStyle(style ShapeStyle) {
	if c.selected < 0 {
		return
	}
	shape := c.scene.At(c.selected)
	if !shape.Selectable() {
		return
	}
	shape.Style = &style
	c.notify()
	c.emitUpdate(c.selected)
}

func (c *Controller) clearSelection() {
	c.selected = -1
	c.selectedSet = make(map[int]struct{})
}

func (c *Controller) emitCreate(shape Shape) {
	msg, err := MarshalShape(shape)
	if err != nil {
		return
	}
	c.emit(protocol.TypeChat, protocol.ChatPayload{Message: msg, RoomID: c.roomID})
}

func (c *Controller) emitUpdate(idx int) {
	shape := c.scene.At(idx)
	msg, err := MarshalShape(*shape)
	if err != nil {
		return
	}
	c.emit(protocol.TypeUpdate, protocol.UpdatePayload{
		ShapeIndex: idx,
		ShapeID:    shape.ID,
		Shape:      msg,
		RoomID:     c.roomID,
	})
}

func (c *Controller) emitStateSync() {
	msg, err := MarshalShapes(c.scene.Shapes())
	if err != nil {
		return
	}
	c.emit(protocol.TypeStateSync, protocol.StateSyncPayload{Shapes: msg, RoomID: c.roomID})
}

// ApplyRemote dispatches a relayed peer mutation into the scene. Remote
// mutations never enter the local history.
func (c *Controller) ApplyRemote(env protocol.Envelope) error {
	c.applyingRemote = true
	defer func() { c.applyingRemote = false }()

	switch env.Type {
	case protocol.TypeChat:
		var payload protocol.ChatPayload
		if err := protocol.DecodePayload(env, &payload); err != nil {
			return err
		}
		shape, err := UnmarshalShape(payload.Message)
		if err != nil {
			return err
		}
		c.scene.Append(shape)

	case protocol.TypeUpdate:
		var payload protocol.UpdatePayload
		if err := protocol.DecodePayload(env, &payload); err != nil {
			return err
		}
		shape, err := UnmarshalShape(payload.Shape)
		if err != nil {
			return err
		}
		if idx, ok := c.scene.IndexByID(payload.ShapeID); ok {
			c.scene.ReplaceAt(idx, shape)
		} else {
			c.scene.ReplaceAt(payload.ShapeIndex, shape)
		}

	case protocol.TypeStateSync:
		var payload protocol.StateSyncPayload
		if err := protocol.DecodePayload(env, &payload); err != nil {
			return err
		}
		shapes, err := UnmarshalShapes(payload.Shapes)
		if err != nil {
			return err
		}
		c.scene.Replace(shapes)
		c.clearSelection()

	case protocol.TypeClearCanvas:
		c.scene.Replace(nil)
		c.clearSelection()

	default:
		return fmt.Errorf("unexpected mutation type %q", env.Type)
	}

	c.notify()
	return nil
}
