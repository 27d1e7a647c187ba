package canvas

import "testing"

func TestReduceRectangle(t *testing.T) {
	shapes := []Shape{{
		Tool:     ToolRectangle,
		Complete: true,
		Points:   []Point{{X: 10, Y: 20}, {X: 50, Y: 20}, {X: 50, Y: 80}, {X: 10, Y: 80}},
	}}
	got := Reduce(shapes)
	if len(got) != 1 {
		t.Fatalf("expected 1 region, got %d", len(got))
	}
	want := Region{X: 10, Y: 20, Width: 40, Height: 60}
	if got[0] != want {
		t.Errorf("expected %+v, got %+v", want, got[0])
	}
}

func TestReduceSkipsIncompleteAndDegenerate(t *testing.T) {
	shapes := []Shape{
		{Tool: ToolFreehand, Complete: false, Points: []Point{{X: 1, Y: 1}, {X: 9, Y: 9}}},
		{Tool: ToolRectangle, Complete: true, Points: []Point{{X: 5, Y: 0}, {X: 5, Y: 0}, {X: 5, Y: 40}, {X: 5, Y: 40}}},
	}
	if got := Reduce(shapes); len(got) != 0 {
		t.Errorf("expected no regions, got %v", got)
	}
}

func TestReduceSkipsTooFewPoints(t *testing.T) {
	shapes := []Shape{{Tool: ToolFreehand, Complete: true, Points: []Point{{X: 3, Y: 3}}}}
	if got := Reduce(shapes); len(got) != 0 {
		t.Errorf("single-point shape should be skipped, got %v", got)
	}
}

func TestReduceFloorsAndCeils(t *testing.T) {
	shapes := []Shape{{
		Tool:     ToolFreehand,
		Complete: true,
		Points:   []Point{{X: 10.4, Y: 20.7}, {X: 50.2, Y: 33.1}, {X: 41.9, Y: 79.5}},
	}}
	got := Reduce(shapes)
	if len(got) != 1 {
		t.Fatalf("expected 1 region, got %d", len(got))
	}
	want := Region{X: 10, Y: 20, Width: 41, Height: 60}
	if got[0] != want {
		t.Errorf("expected %+v, got %+v", want, got[0])
	}
}

func TestReduceClampsNegativeOrigin(t *testing.T) {
	shapes := []Shape{{
		Tool:     ToolFreehand,
		Complete: true,
		Points:   []Point{{X: -15, Y: -5}, {X: 30, Y: 25}},
	}}
	got := Reduce(shapes)
	want := Region{X: 0, Y: 0, Width: 30, Height: 25}
	if len(got) != 1 || got[0] != want {
		t.Errorf("expected [%+v], got %v", want, got)
	}
}

func TestReducePreservesOrder(t *testing.T) {
	shapes := []Shape{
		{Tool: ToolRectangle, Complete: true, Points: []Point{{X: 100, Y: 100}, {X: 110, Y: 110}}},
		{Tool: ToolRectangle, Complete: true, Points: []Point{{X: 0, Y: 0}, {X: 10, Y: 10}}},
	}
	got := Reduce(shapes)
	if len(got) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(got))
	}
	if got[0].X != 100 || got[1].X != 0 {
		t.Errorf("shape order not preserved: %v", got)
	}
}
