package canvas

import (
	"image"
	"image/color"
	"testing"
)

func TestImageScreenRect(t *testing.T) {
	vp := Viewport{Scale: 2, Translate: Point{X: 10, Y: 5}}
	got := ImageScreenRect(vp, image.Pt(100, 50))
	want := image.Rect(20, 10, 220, 110)
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestOutlineIgnoresPointCount(t *testing.T) {
	vp := Viewport{Scale: 1}
	preview := Shape{Tool: ToolRectangle, Points: []Point{{X: 50, Y: 80}, {X: 10, Y: 20}}}
	final := Shape{Tool: ToolRectangle, Complete: true,
		Points: []Point{{X: 10, Y: 20}, {X: 50, Y: 20}, {X: 50, Y: 80}, {X: 10, Y: 80}}}

	a, aClosed := outlinePoints(vp, preview)
	b, bClosed := outlinePoints(vp, final)
	if !aClosed || !bClosed {
		t.Fatal("rectangle outlines should be closed")
	}
	if len(a) != len(b) {
		t.Fatalf("outline sizes differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("outline %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestEllipseOutlineDualMode(t *testing.T) {
	vp := Viewport{Scale: 1}
	preview := Shape{Tool: ToolEllipse, Points: []Point{{X: 0, Y: 0}, {X: 100, Y: 60}}}
	pts, closed := outlinePoints(vp, preview)
	if !closed {
		t.Fatal("ellipse outline should be closed")
	}
	if len(pts) < ellipseMinPoints {
		t.Fatalf("expected at least %d points, got %d", ellipseMinPoints, len(pts))
	}
	for _, p := range pts {
		if p.X < -0.5 || p.X > 100.5 || p.Y < -0.5 || p.Y > 60.5 {
			t.Errorf("outline point %+v escapes the spanned box", p)
		}
	}
}

func TestRenderFillsCompletedShape(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 100, 100))
	shape := Shape{
		Tool:     ToolRectangle,
		Complete: true,
		Color:    color.RGBA{R: 255, A: 255},
		Points:   []Point{{X: 20, Y: 20}, {X: 60, Y: 20}, {X: 60, Y: 60}, {X: 20, Y: 60}},
	}
	Render(dst, nil, Viewport{Scale: 1}, []Shape{shape}, nil)

	if got := dst.RGBAAt(40, 40); got.R == 0 {
		t.Errorf("interior pixel not filled: %+v", got)
	}
	if got := dst.RGBAAt(90, 90); got != (color.RGBA{}) {
		t.Errorf("pixel outside the shape was touched: %+v", got)
	}
	// The fill is translucent, the outline solid.
	if got := dst.RGBAAt(40, 40); got.A == 255 {
		t.Errorf("interior should be translucent, got alpha %d", got.A)
	}
	if got := dst.RGBAAt(20, 40); got.A != 255 {
		t.Errorf("outline should be solid, got alpha %d", got.A)
	}
}

func TestRenderSkipsIncompleteInShapeList(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 50, 50))
	shape := Shape{
		Tool:   ToolRectangle,
		Color:  color.RGBA{G: 255, A: 255},
		Points: []Point{{X: 5, Y: 5}, {X: 40, Y: 40}},
	}
	Render(dst, nil, Viewport{Scale: 1}, []Shape{shape}, nil)
	if got := dst.RGBAAt(20, 20); got != (color.RGBA{}) {
		t.Errorf("incomplete shape in the committed list should not render: %+v", got)
	}
}

func TestDashedSegmentLeavesGaps(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 40, 3))
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	dashedSegment(dst, Point{X: 0, Y: 1}, Point{X: 39, Y: 1}, white, 1, 0)

	if dst.RGBAAt(2, 1) == (color.RGBA{}) {
		t.Error("expected a dash at x=2")
	}
	if dst.RGBAAt(8, 1) != (color.RGBA{}) {
		t.Error("expected a gap at x=8")
	}
	if dst.RGBAAt(12, 1) == (color.RGBA{}) {
		t.Error("expected the second dash at x=12")
	}
}

func TestSmoothStrokePreservesEndpoints(t *testing.T) {
	in := []Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 20, Y: 10}}
	out := smoothStroke(in)
	if out[0] != in[0] {
		t.Errorf("first point changed: %+v", out[0])
	}
	if out[len(out)-1] != in[len(in)-1] {
		t.Errorf("last point changed: %+v", out[len(out)-1])
	}
	if len(out) <= len(in) {
		t.Errorf("smoothing should add interpolated points, got %d from %d", len(out), len(in))
	}
}
