package canvas

import (
	"image"
	"math"
	"testing"
)

func TestFitToContainerIdempotent(t *testing.T) {
	img := image.Pt(1600, 1200)
	container := image.Pt(800, 500)
	first := FitToContainer(img, container)
	second := FitToContainer(img, container)
	if first != second {
		t.Errorf("fit not idempotent: %+v vs %+v", first, second)
	}
}

func TestFitToContainerNeverUpscales(t *testing.T) {
	vp := FitToContainer(image.Pt(100, 80), image.Pt(1000, 1000))
	if vp.Scale != 1 {
		t.Errorf("expected auto-fit to cap at 100%%, got scale %v", vp.Scale)
	}
	// A centred 100x80 image in a 1000x1000 container sits at (450, 460).
	screen := vp.ImageToScreen(Point{})
	if math.Abs(screen.X-450) > 1e-9 || math.Abs(screen.Y-460) > 1e-9 {
		t.Errorf("expected centred origin (450,460), got (%v,%v)", screen.X, screen.Y)
	}
}

func TestFitToContainerScalesDown(t *testing.T) {
	vp := FitToContainer(image.Pt(2000, 1000), image.Pt(500, 500))
	if math.Abs(vp.Scale-0.25) > 1e-9 {
		t.Errorf("expected scale 0.25, got %v", vp.Scale)
	}
}

func TestZoomClamping(t *testing.T) {
	vp := Viewport{Scale: 1}
	for i := 0; i < 50; i++ {
		vp = vp.ZoomAt(Point{X: 100, Y: 100}, 1.5)
		if vp.Scale < MinScale || vp.Scale > MaxScale {
			t.Fatalf("scale %v escaped clamp range after zoom in", vp.Scale)
		}
	}
	if vp.Scale != MaxScale {
		t.Errorf("expected scale pinned at %v, got %v", MaxScale, vp.Scale)
	}
	for i := 0; i < 50; i++ {
		vp = vp.ZoomAt(Point{X: 100, Y: 100}, 0.5)
		if vp.Scale < MinScale || vp.Scale > MaxScale {
			t.Fatalf("scale %v escaped clamp range after zoom out", vp.Scale)
		}
	}
	if vp.Scale != MinScale {
		t.Errorf("expected scale pinned at %v, got %v", MinScale, vp.Scale)
	}
}

func TestZoomAnchorInvariance(t *testing.T) {
	size := image.Pt(1000, 800)
	cases := []struct {
		name   string
		vp     Viewport
		anchor Point
		factor float64
	}{
		{"zoom in from identity", Viewport{Scale: 1}, Point{X: 300, Y: 200}, 1.5},
		{"zoom out translated", Viewport{Scale: 2, Translate: Point{X: -50, Y: 30}}, Point{X: 400, Y: 100}, 0.8},
		{"repeated wheel steps", Viewport{Scale: 0.5, Translate: Point{X: 120, Y: 80}}, Point{X: 250, Y: 250}, 1.1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := tc.vp.ScreenToImage(tc.anchor, size)
			after := tc.vp.ZoomAt(tc.anchor, tc.factor).ScreenToImage(tc.anchor, size)
			if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
				t.Errorf("anchor point moved: before (%v,%v), after (%v,%v)",
					before.X, before.Y, after.X, after.Y)
			}
		})
	}
}

func TestPanIsScaleInvariantOnScreen(t *testing.T) {
	vp := Viewport{Scale: 2}
	vp = vp.PanBy(Point{X: 10, Y: -4})
	if math.Abs(vp.Translate.X-5) > 1e-9 || math.Abs(vp.Translate.Y+2) > 1e-9 {
		t.Errorf("expected translate (5,-2), got (%v,%v)", vp.Translate.X, vp.Translate.Y)
	}
}

func TestScreenToImageClamp(t *testing.T) {
	size := image.Pt(640, 480)
	states := []Viewport{
		{Scale: 1},
		{Scale: 0.1, Translate: Point{X: 500, Y: -500}},
		{Scale: 5, Translate: Point{X: -10000, Y: 10000}},
	}
	probes := []Point{
		{X: -1e6, Y: -1e6},
		{X: 1e6, Y: 1e6},
		{X: 0, Y: 0},
		{X: 320, Y: 9999},
	}
	for _, vp := range states {
		for _, p := range probes {
			got := vp.ScreenToImage(p, size)
			if got.X < 0 || got.X > 640 || got.Y < 0 || got.Y > 480 {
				t.Errorf("clamp failed: %+v for screen %+v under %+v", got, p, vp)
			}
		}
	}
}
