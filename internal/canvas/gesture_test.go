package canvas

import (
	"image"
	"math"
	"testing"
)

func newTestController(committed *[]Shape) *Controller {
	c := NewController(image.Pt(800, 600), func(s Shape) {
		*committed = append(*committed, s)
	})
	c.Fit(image.Pt(800, 600))
	return c
}

func TestPointerDrawCommitsImageSpaceShape(t *testing.T) {
	var committed []Shape
	c := newTestController(&committed)
	c.Tool = ToolRectangle
	// With a zoomed, panned viewport the stored coordinates must still be
	// image-space.
	c.Viewport = Viewport{Scale: 2, Translate: Point{X: 10, Y: 20}}

	c.PointerDown(Point{X: 100, Y: 100}, false)
	c.PointerMove(Point{X: 200, Y: 160})
	c.PointerUp(Point{X: 200, Y: 160})

	if len(committed) != 1 {
		t.Fatalf("expected 1 committed shape, got %d", len(committed))
	}
	s := committed[0]
	if !s.Complete {
		t.Error("committed shape not complete")
	}
	// Screen (100,100) -> image (40,30); screen (200,160) -> image (90,60).
	want := []Point{{X: 40, Y: 30}, {X: 90, Y: 30}, {X: 90, Y: 60}, {X: 40, Y: 60}}
	for i := range want {
		if s.Points[i] != want[i] {
			t.Errorf("corner %d: expected %+v, got %+v", i, want[i], s.Points[i])
		}
	}
}

func TestNoToolPansInsteadOfDrawing(t *testing.T) {
	var committed []Shape
	c := newTestController(&committed)
	c.Tool = ToolNone
	before := c.Viewport

	c.PointerDown(Point{X: 50, Y: 50}, false)
	c.PointerMove(Point{X: 80, Y: 40})
	c.PointerUp(Point{X: 80, Y: 40})

	if len(committed) != 0 {
		t.Fatal("panning must not commit shapes")
	}
	wantX := before.Translate.X + 30/before.Scale
	wantY := before.Translate.Y - 10/before.Scale
	if math.Abs(c.Viewport.Translate.X-wantX) > 1e-9 || math.Abs(c.Viewport.Translate.Y-wantY) > 1e-9 {
		t.Errorf("expected translate (%v,%v), got %+v", wantX, wantY, c.Viewport.Translate)
	}
}

func TestSecondaryButtonPansEvenWithTool(t *testing.T) {
	var committed []Shape
	c := newTestController(&committed)
	c.Tool = ToolFreehand
	before := c.Viewport.Translate

	c.PointerDown(Point{X: 10, Y: 10}, true)
	c.PointerMove(Point{X: 30, Y: 10})
	c.PointerUp(Point{X: 30, Y: 10})

	if len(committed) != 0 {
		t.Error("secondary-button drag drew a shape")
	}
	if c.Viewport.Translate == before {
		t.Error("secondary-button drag did not pan")
	}
}

func TestDownWhileDrawingIgnored(t *testing.T) {
	var committed []Shape
	c := newTestController(&committed)
	c.Tool = ToolFreehand

	c.PointerDown(Point{X: 10, Y: 10}, false)
	c.PointerDown(Point{X: 200, Y: 200}, false)
	c.PointerMove(Point{X: 50, Y: 10})
	c.PointerUp(Point{X: 50, Y: 10})

	if len(committed) != 1 {
		t.Fatalf("expected exactly 1 shape, got %d", len(committed))
	}
	if committed[0].Points[0] != (Point{X: 10, Y: 10}) {
		t.Errorf("reentrant press restarted the stroke: %+v", committed[0].Points[0])
	}
}

func TestWheelZoomStaysClamped(t *testing.T) {
	c := newTestController(&[]Shape{})
	for i := 0; i < 200; i++ {
		c.Wheel(Point{X: 400, Y: 300}, true)
	}
	if c.Viewport.Scale != MaxScale {
		t.Errorf("expected wheel zoom to pin at %v, got %v", MaxScale, c.Viewport.Scale)
	}
	for i := 0; i < 400; i++ {
		c.Wheel(Point{X: 400, Y: 300}, false)
	}
	if c.Viewport.Scale != MinScale {
		t.Errorf("expected wheel zoom to pin at %v, got %v", MinScale, c.Viewport.Scale)
	}
}

func TestPinchZoomsTowardMidpoint(t *testing.T) {
	c := newTestController(&[]Shape{})
	c.Tool = ToolNone
	start := c.Viewport.Scale

	c.TouchBegin(1, Point{X: 300, Y: 300})
	c.TouchBegin(2, Point{X: 500, Y: 300})
	// Before and after share midpoint (400,300); the gap doubles.
	mid := Point{X: 400, Y: 300}
	before := c.Viewport.ScreenToImage(mid, c.ImageSize)
	c.TouchMove(1, Point{X: 200, Y: 300})
	c.TouchMove(2, Point{X: 600, Y: 300})
	after := c.Viewport.ScreenToImage(mid, c.ImageSize)

	if c.Viewport.Scale <= start {
		t.Errorf("spreading touches should zoom in: %v -> %v", start, c.Viewport.Scale)
	}
	// The first TouchMove shifts the midpoint transiently, so allow a loose
	// tolerance on the anchored point.
	if math.Abs(before.X-after.X) > 60 || math.Abs(before.Y-after.Y) > 60 {
		t.Errorf("midpoint drifted too far: %+v -> %+v", before, after)
	}
	c.TouchEnd(1, Point{X: 200, Y: 300})
	c.TouchEnd(2, Point{X: 600, Y: 300})
	if c.phase != phaseIdle {
		t.Error("controller did not return to idle after pinch")
	}
}

func TestSecondTouchDoesNotInterruptDrawing(t *testing.T) {
	var committed []Shape
	c := newTestController(&committed)
	c.Tool = ToolFreehand

	c.TouchBegin(1, Point{X: 100, Y: 100})
	c.TouchBegin(2, Point{X: 500, Y: 500})
	c.TouchMove(1, Point{X: 140, Y: 100})
	c.TouchEnd(1, Point{X: 140, Y: 100})

	if len(committed) != 1 {
		t.Fatalf("expected the stroke to survive the second touch, got %d shapes", len(committed))
	}
	if committed[0].Tool != ToolFreehand {
		t.Errorf("unexpected tool %v", committed[0].Tool)
	}
}

func TestNoImageIsNoop(t *testing.T) {
	var committed []Shape
	c := NewController(image.Point{}, func(s Shape) { committed = append(committed, s) })
	c.Tool = ToolRectangle
	before := c.Viewport

	c.PointerDown(Point{X: 10, Y: 10}, false)
	c.PointerMove(Point{X: 90, Y: 90})
	c.PointerUp(Point{X: 90, Y: 90})
	c.Wheel(Point{X: 10, Y: 10}, true)
	c.Fit(image.Pt(300, 300))

	if len(committed) != 0 {
		t.Error("commands before an image loads must not produce shapes")
	}
	if c.Viewport != before {
		t.Errorf("viewport mutated before an image loaded: %+v", c.Viewport)
	}
}
