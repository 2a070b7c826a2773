// Package canvas implements the client side of the collaborative canvas:
// shape geometry, the scene model, viewport transforms, bounded undo/redo
// history and the interaction state machine that turns pointer gestures
// into scene mutations.
package canvas

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ShapeType discriminates the shape variants.
type ShapeType string

const (
	ShapeRect    ShapeType = "rect"
	ShapeEllipse ShapeType = "circle"
	ShapePencil  ShapeType = "pencil"
	ShapeEraser  ShapeType = "eraser"
)

// FillStyle selects how a closed shape's interior is painted.
type FillStyle string

const (
	FillNone  FillStyle = "none"
	FillSolid FillStyle = "solid"
	FillHatch FillStyle = "hatch"
	FillDots  FillStyle = "dots"
)

// Point is a canvas-space coordinate pair.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ShapeStyle holds the rendering parameters of a shape. Eraser strokes
// carry no style.
type ShapeStyle struct {
	StrokeColor     string    `json:"strokeColor"`
	StrokeWidth     float64   `json:"strokeWidth"`
	BackgroundColor string    `json:"backgroundColor"`
	FillStyle       FillStyle `json:"fillStyle"`
}

// DefaultStyle is applied to shapes created without an explicit style.
func DefaultStyle() ShapeStyle {
	return ShapeStyle{
		StrokeColor:     "#ffffff",
		StrokeWidth:     2,
		BackgroundColor: "transparent",
		FillStyle:       FillNone,
	}
}

// Shape is the tagged variant replicated between peers. Rect and ellipse
// use the X/Y/Width/Height box, pencil uses Path with a stored rotation
// center, eraser uses ErasePoints. ID is assigned once at creation and
// survives every in-place mutation, so peers can address updates to it
// regardless of z-order changes.
type Shape struct {
	ID       string      `json:"id,omitempty"`
	Type     ShapeType   `json:"type"`
	X        float64     `json:"x,omitempty"`
	Y        float64     `json:"y,omitempty"`
	Width    float64     `json:"width,omitempty"`
	Height   float64     `json:"height,omitempty"`
	Path     []Point     `json:"path,omitempty"`
	Erase    []Point     `json:"erasePoints,omitempty"`
	CenterX  float64     `json:"centerX,omitempty"`
	CenterY  float64     `json:"centerY,omitempty"`
	Rotation float64     `json:"rotation,omitempty"`
	Style    *ShapeStyle `json:"style,omitempty"`
}

// NewShapeID returns a fresh stable identifier for a shape.
func NewShapeID() string {
	return uuid.NewString()
}

// Clone returns a deep copy of the shape.
func (s Shape) Clone() Shape {
	out := s
	if s.Path != nil {
		out.Path = make([]Point, len(s.Path))
		copy(out.Path, s.Path)
	}
	if s.Erase != nil {
		out.Erase = make([]Point, len(s.Erase))
		copy(out.Erase, s.Erase)
	}
	if s.Style != nil {
		style := *s.Style
		out.Style = &style
	}
	return out
}

// Selectable reports whether the shape participates in hit-testing and
// selection. Eraser strokes do not.
func (s Shape) Selectable() bool {
	return s.Type != ShapeEraser
}

// EffectiveStyle returns the shape's style, or the default when unset.
func (s Shape) EffectiveStyle() ShapeStyle {
	if s.Style != nil {
		return *s.Style
	}
	return DefaultStyle()
}

// MarshalShape encodes a shape for the wire.
func MarshalShape(s Shape) (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal shape: %w", err)
	}
	return string(raw), nil
}

// UnmarshalShape decodes a wire-encoded shape.
func UnmarshalShape(data string) (Shape, error) {
	var s Shape
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return Shape{}, fmt.Errorf("failed to unmarshal shape: %w", err)
	}
	if s.Type == "" {
		return Shape{}, fmt.Errorf("shape has no type")
	}
	return s, nil
}

// MarshalShapes encodes a full scene snapshot for the wire.
func MarshalShapes(shapes []Shape) (string, error) {
	raw, err := json.Marshal(shapes)
	if err != nil {
		return "", fmt.Errorf("failed to marshal shapes: %w", err)
	}
	return string(raw), nil
}

// UnmarshalShapes decodes a wire-encoded scene snapshot.
func UnmarshalShapes(data string) ([]Shape, error) {
	var shapes []Shape
	if err := json.Unmarshal([]byte(data), &shapes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shapes: %w", err)
	}
	return shapes, nil
}
