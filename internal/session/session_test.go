package session

import (
	"image"
	"testing"

	"github.com/example/eraserpad/internal/canvas"
)

func freehand(points ...canvas.Point) canvas.Shape {
	return canvas.Shape{Tool: canvas.ToolFreehand, Points: points, Complete: true}
}

func TestAddAssignsID(t *testing.T) {
	s := New(image.Pt(100, 100))
	s.Add(freehand(canvas.Point{X: 1, Y: 2}, canvas.Point{X: 5, Y: 6}))
	got := s.Shapes()
	if len(got) != 1 {
		t.Fatalf("shapes = %d, want 1", len(got))
	}
	if got[0].ID == "" {
		t.Error("committed shape has empty ID")
	}
}

func TestAddKeepsExistingID(t *testing.T) {
	s := New(image.Pt(100, 100))
	sh := freehand(canvas.Point{X: 1, Y: 2}, canvas.Point{X: 5, Y: 6})
	sh.ID = "keep-me"
	s.Add(sh)
	if got := s.Shapes()[0].ID; got != "keep-me" {
		t.Errorf("ID = %q, want keep-me", got)
	}
}

func TestUndoRedo(t *testing.T) {
	s := New(image.Pt(100, 100))
	if s.Undo() {
		t.Error("Undo on empty session reported work done")
	}
	s.Add(freehand(canvas.Point{X: 0, Y: 0}, canvas.Point{X: 10, Y: 10}))
	s.Add(freehand(canvas.Point{X: 20, Y: 20}, canvas.Point{X: 30, Y: 30}))

	if !s.Undo() {
		t.Fatal("Undo returned false")
	}
	if got := len(s.Shapes()); got != 1 {
		t.Fatalf("after undo: %d shapes, want 1", got)
	}
	if !s.Redo() {
		t.Fatal("Redo returned false")
	}
	if got := len(s.Shapes()); got != 2 {
		t.Fatalf("after redo: %d shapes, want 2", got)
	}
	if s.Redo() {
		t.Error("Redo with empty stack reported work done")
	}
}

func TestAddInvalidatesRedo(t *testing.T) {
	s := New(image.Pt(100, 100))
	s.Add(freehand(canvas.Point{X: 0, Y: 0}, canvas.Point{X: 10, Y: 10}))
	s.Undo()
	s.Add(freehand(canvas.Point{X: 5, Y: 5}, canvas.Point{X: 15, Y: 15}))
	if s.CanRedo() {
		t.Error("redo stack survived a new commit")
	}
}

func TestClearIsUndoable(t *testing.T) {
	s := New(image.Pt(100, 100))
	s.Add(freehand(canvas.Point{X: 0, Y: 0}, canvas.Point{X: 10, Y: 10}))
	s.Clear()
	if got := len(s.Shapes()); got != 0 {
		t.Fatalf("after clear: %d shapes, want 0", got)
	}
	if !s.Undo() {
		t.Fatal("Undo after clear returned false")
	}
	if got := len(s.Shapes()); got != 1 {
		t.Fatalf("after undo of clear: %d shapes, want 1", got)
	}
}

func TestClearEmptyIsNoOp(t *testing.T) {
	s := New(image.Pt(100, 100))
	s.Clear()
	if s.CanUndo() {
		t.Error("clear on empty session recorded an undo point")
	}
}

func TestSnapshotsDoNotShareStorage(t *testing.T) {
	s := New(image.Pt(100, 100))
	s.Add(freehand(canvas.Point{X: 0, Y: 0}, canvas.Point{X: 10, Y: 10}))
	s.Shapes()[0].Points[0] = canvas.Point{X: 99, Y: 99}
	s.Undo()
	s.Redo()
	if got := s.Shapes()[0].Points[0]; got != (canvas.Point{X: 0, Y: 0}) {
		t.Errorf("history entry shares point storage: got %+v", got)
	}
}

func TestControllerCommitsIntoSession(t *testing.T) {
	s := New(image.Pt(100, 100))
	c := s.Controller
	c.Viewport = canvas.Viewport{Scale: 1}
	c.Tool = canvas.ToolRectangle
	c.PointerDown(canvas.Point{X: 10, Y: 10}, false)
	c.PointerMove(canvas.Point{X: 40, Y: 30})
	c.PointerUp(canvas.Point{X: 40, Y: 30})
	if got := len(s.Shapes()); got != 1 {
		t.Fatalf("controller commit: %d shapes, want 1", got)
	}
	if s.Shapes()[0].ID == "" {
		t.Error("controller-committed shape has empty ID")
	}
}

func TestHistoryDepthBounded(t *testing.T) {
	s := New(image.Pt(100, 100))
	s.maxHistory = 3
	for i := 0; i < 10; i++ {
		s.Add(freehand(canvas.Point{X: float64(i), Y: 0}, canvas.Point{X: float64(i) + 5, Y: 5}))
	}
	if got := len(s.undoStack); got != 3 {
		t.Fatalf("undo stack depth = %d, want 3", got)
	}
}
