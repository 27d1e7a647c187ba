package canvas

import (
	"image/color"
	"math"
)

// freehandMinDistance is how far (in image-space units) the pointer must move
// before another freehand sample is kept. High-frequency pointer events would
// otherwise flood the stroke with near-duplicate points.
const freehandMinDistance = 2.0

// Ellipse finalization approximates the curve with a polygon whose point
// count grows with the radii, bounded on both ends.
const (
	ellipseMinPoints = 16
	ellipseMaxPoints = 64
)

// Builder accumulates pointer positions into the single in-progress shape.
// At most one shape is under construction at a time; Start while drawing is
// ignored.
type Builder struct {
	shape *Shape
	start Point
}

// Drawing reports whether a shape is currently under construction.
func (b *Builder) Drawing() bool { return b.shape != nil }

// Current returns the in-progress shape, or nil. Callers must not retain it
// across builder operations; the renderer reads it for live preview.
func (b *Builder) Current() *Shape { return b.shape }

// Start begins a new shape at p. A ToolNone tool or an already-active shape
// leaves the builder untouched.
func (b *Builder) Start(tool Tool, p Point, col color.RGBA) {
	if tool == ToolNone || b.shape != nil {
		return
	}
	b.start = p
	b.shape = &Shape{
		Tool:   tool,
		Points: []Point{p},
		Color:  col,
	}
}

// Update feeds the next pointer position into the in-progress shape.
func (b *Builder) Update(p Point) {
	if b.shape == nil {
		return
	}
	switch b.shape.Tool {
	case ToolFreehand:
		last := b.shape.Points[len(b.shape.Points)-1]
		if dist(last, p) > freehandMinDistance {
			b.shape.Points = append(b.shape.Points, p)
		}
	case ToolRectangle, ToolEllipse:
		// Live preview keeps only the anchor and the latest corner.
		b.shape.Points = []Point{b.start, p}
	}
}

// Finish finalizes the in-progress shape into its canonical stored form and
// clears the builder. ok is false when nothing was being drawn. A zero-area
// rectangle or ellipse still finalizes; the region reducer discards it later.
func (b *Builder) Finish() (Shape, bool) {
	if b.shape == nil {
		return Shape{}, false
	}
	s := *b.shape
	b.shape = nil
	switch s.Tool {
	case ToolRectangle:
		end := s.Points[len(s.Points)-1]
		s.Points = rectanglePolygon(b.start, end)
	case ToolEllipse:
		end := s.Points[len(s.Points)-1]
		s.Points = ellipsePolygon(b.start, end)
	}
	s.Complete = true
	return s, true
}

// Cancel drops the in-progress shape without finalizing it.
func (b *Builder) Cancel() { b.shape = nil }

// rectanglePolygon converts two opposite corners into the four corners in
// clockwise order starting at (min-x, min-y), rounded to whole pixels.
func rectanglePolygon(a, bp Point) []Point {
	x1 := math.Round(math.Min(a.X, bp.X))
	y1 := math.Round(math.Min(a.Y, bp.Y))
	x2 := math.Round(math.Max(a.X, bp.X))
	y2 := math.Round(math.Max(a.Y, bp.Y))
	return []Point{
		{X: x1, Y: y1},
		{X: x2, Y: y1},
		{X: x2, Y: y2},
		{X: x1, Y: y2},
	}
}

// ellipsePolygon samples the ellipse spanned by the two corners.
func ellipsePolygon(a, bp Point) []Point {
	cx := (a.X + bp.X) / 2
	cy := (a.Y + bp.Y) / 2
	rx := math.Abs(bp.X-a.X) / 2
	ry := math.Abs(bp.Y-a.Y) / 2
	n := ellipsePointCount(rx, ry)
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, Point{
			X: math.Round(cx + rx*math.Cos(theta)),
			Y: math.Round(cy + ry*math.Sin(theta)),
		})
	}
	return pts
}

func ellipsePointCount(rx, ry float64) int {
	n := int(math.Floor((rx + ry) / 4))
	if n < ellipseMinPoints {
		return ellipseMinPoints
	}
	if n > ellipseMaxPoints {
		return ellipseMaxPoints
	}
	return n
}

func dist(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}
