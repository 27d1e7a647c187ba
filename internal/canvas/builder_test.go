package canvas

import (
	"image/color"
	"testing"
)

var red = color.RGBA{R: 255, A: 255}

func TestFreehandDecimation(t *testing.T) {
	var b Builder
	b.Start(ToolFreehand, Point{X: 10, Y: 10}, red)
	// Everything within 2 image units of the last kept sample is dropped.
	for _, p := range []Point{{X: 11, Y: 10}, {X: 10, Y: 11.9}, {X: 8.5, Y: 10.5}, {X: 12, Y: 10}} {
		b.Update(p)
	}
	if got := len(b.Current().Points); got != 1 {
		t.Fatalf("expected 1 sample after sub-threshold moves, got %d", got)
	}
	b.Update(Point{X: 13, Y: 10})
	if got := len(b.Current().Points); got != 2 {
		t.Fatalf("expected the sample beyond the threshold to be kept, got %d points", got)
	}
}

func TestFreehandFinalizeKeepsStroke(t *testing.T) {
	var b Builder
	b.Start(ToolFreehand, Point{X: 0, Y: 0}, red)
	b.Update(Point{X: 5, Y: 0})
	b.Update(Point{X: 5, Y: 5})
	s, ok := b.Finish()
	if !ok {
		t.Fatal("expected a finalized shape")
	}
	if !s.Complete {
		t.Error("finalized shape not marked complete")
	}
	want := []Point{{X: 0, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 5}}
	if len(s.Points) != len(want) {
		t.Fatalf("expected %d points, got %d", len(want), len(s.Points))
	}
	for i := range want {
		if s.Points[i] != want[i] {
			t.Errorf("point %d: expected %+v, got %+v", i, want[i], s.Points[i])
		}
	}
	if b.Drawing() {
		t.Error("builder still drawing after finish")
	}
}

func TestRectangleLivePreviewIsTwoPoints(t *testing.T) {
	var b Builder
	b.Start(ToolRectangle, Point{X: 5, Y: 5}, red)
	for _, p := range []Point{{X: 10, Y: 10}, {X: 30, Y: 12}, {X: 8, Y: 40}} {
		b.Update(p)
		pts := b.Current().Points
		if len(pts) != 2 {
			t.Fatalf("live preview should hold exactly [start, latest], got %d points", len(pts))
		}
		if pts[0] != (Point{X: 5, Y: 5}) || pts[1] != p {
			t.Errorf("expected [start %v], got %v", p, pts)
		}
	}
}

func TestRectangleFinalizeClockwiseFromMin(t *testing.T) {
	var b Builder
	b.Start(ToolRectangle, Point{X: 50, Y: 80}, red)
	b.Update(Point{X: 10, Y: 20})
	s, ok := b.Finish()
	if !ok {
		t.Fatal("expected a finalized shape")
	}
	want := []Point{{X: 10, Y: 20}, {X: 50, Y: 20}, {X: 50, Y: 80}, {X: 10, Y: 80}}
	if len(s.Points) != 4 {
		t.Fatalf("expected 4 corners, got %d", len(s.Points))
	}
	for i := range want {
		if s.Points[i] != want[i] {
			t.Errorf("corner %d: expected %+v, got %+v", i, want[i], s.Points[i])
		}
	}
}

func TestRectangleFinalizeRounds(t *testing.T) {
	var b Builder
	b.Start(ToolRectangle, Point{X: 10.4, Y: 10.6}, red)
	b.Update(Point{X: 20.5, Y: 19.2})
	s, _ := b.Finish()
	want := []Point{{X: 10, Y: 11}, {X: 21, Y: 11}, {X: 21, Y: 19}, {X: 10, Y: 19}}
	for i := range want {
		if s.Points[i] != want[i] {
			t.Errorf("corner %d: expected %+v, got %+v", i, want[i], s.Points[i])
		}
	}
}

func TestEllipsePointCountBounds(t *testing.T) {
	cases := []struct {
		name       string
		start, end Point
		want       int
	}{
		{"large ellipse capped at 64", Point{}, Point{X: 2000, Y: 2000}, 64},
		{"small ellipse floored at 16", Point{}, Point{X: 40, Y: 40}, 16},
		{"mid-size adaptive", Point{}, Point{X: 200, Y: 200}, 50},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var b Builder
			b.Start(ToolEllipse, tc.start, red)
			b.Update(tc.end)
			s, ok := b.Finish()
			if !ok {
				t.Fatal("expected a finalized shape")
			}
			if len(s.Points) != tc.want {
				t.Errorf("expected %d polygon points, got %d", tc.want, len(s.Points))
			}
		})
	}
}

func TestEllipseFinalizeGeometry(t *testing.T) {
	var b Builder
	b.Start(ToolEllipse, Point{X: 0, Y: 0}, red)
	b.Update(Point{X: 100, Y: 60})
	s, _ := b.Finish()
	// Point 0 sits at angle zero: (cx + rx, cy).
	if s.Points[0] != (Point{X: 100, Y: 30}) {
		t.Errorf("expected first point (100,30), got %+v", s.Points[0])
	}
	min, max, _ := s.Bounds()
	if min.X < 0 || min.Y < 0 || max.X > 100 || max.Y > 60 {
		t.Errorf("polygon escapes the spanned box: min %+v max %+v", min, max)
	}
}

func TestStartIgnoredWhileDrawing(t *testing.T) {
	var b Builder
	b.Start(ToolFreehand, Point{X: 1, Y: 1}, red)
	b.Start(ToolRectangle, Point{X: 9, Y: 9}, red)
	if b.Current().Tool != ToolFreehand {
		t.Error("second Start replaced the in-progress shape")
	}
}

func TestStartWithNoToolIsNoop(t *testing.T) {
	var b Builder
	b.Start(ToolNone, Point{X: 1, Y: 1}, red)
	if b.Drawing() {
		t.Error("ToolNone should not begin a shape")
	}
	if _, ok := b.Finish(); ok {
		t.Error("Finish with no shape should report ok=false")
	}
}

func TestDegenerateRectangleFinalizes(t *testing.T) {
	var b Builder
	b.Start(ToolRectangle, Point{X: 7, Y: 7}, red)
	s, ok := b.Finish()
	if !ok || !s.Complete {
		t.Fatal("zero-area shape should still finalize")
	}
	min, max, _ := s.Bounds()
	if min != max {
		t.Errorf("expected degenerate bounds, got min %+v max %+v", min, max)
	}
}
