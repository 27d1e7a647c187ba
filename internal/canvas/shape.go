package canvas

import "image/color"

// Tool selects how pointer input is interpreted on the canvas. ToolNone means
// dragging pans the viewport instead of drawing.
type Tool int

const (
	ToolNone Tool = iota
	ToolFreehand
	ToolRectangle
	ToolEllipse
)

func (t Tool) String() string {
	switch t {
	case ToolNone:
		return "none"
	case ToolFreehand:
		return "freehand"
	case ToolRectangle:
		return "rectangle"
	case ToolEllipse:
		return "ellipse"
	default:
		return "unknown"
	}
}

// Shape is one marked region. Points are always image-space coordinates in
// drawing order. While Complete is false the slice holds the live-preview
// form (a sampled stroke for freehand, the two extremal corners for rectangle
// and ellipse); after finalize it holds the canonical polygon form.
type Shape struct {
	ID       string
	Tool     Tool
	Points   []Point
	Complete bool
	Color    color.RGBA
}

// Clone returns a deep copy; the point slice is never shared.
func (s Shape) Clone() Shape {
	out := s
	out.Points = make([]Point, len(s.Points))
	copy(out.Points, s.Points)
	return out
}

// Bounds reports the min/max extent of the shape's points. It deliberately
// never assumes a fixed point count, so the two-point live preview and the
// finalized polygon produce the same box. ok is false for an empty shape.
func (s Shape) Bounds() (min, max Point, ok bool) {
	if len(s.Points) == 0 {
		return Point{}, Point{}, false
	}
	min = s.Points[0]
	max = s.Points[0]
	for _, p := range s.Points[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max, true
}
