// Package session owns the per-image editing state: the committed shape
// list with its undo/redo history, and the canvas controller that produces
// new shapes. One Session exists per open image and is discarded when the
// image changes.
package session

import (
	"image"

	"github.com/google/uuid"

	"github.com/example/eraserpad/internal/canvas"
)

const defaultMaxHistory = 50

// Session is the owning collaborator for completed shapes. The canvas
// controller commits finalized shapes here; undo, redo and clear never touch
// the controller's in-progress state.
type Session struct {
	Controller *canvas.Controller

	shapes     []canvas.Shape
	undoStack  [][]canvas.Shape
	redoStack  [][]canvas.Shape
	maxHistory int
}

// New creates a session for an image of the given size.
func New(imageSize image.Point) *Session {
	s := &Session{maxHistory: defaultMaxHistory}
	s.Controller = canvas.NewController(imageSize, s.Add)
	return s
}

// Add commits a shape, assigning an ID if the builder left it empty, and
// records an undo point.
func (s *Session) Add(sh canvas.Shape) {
	if sh.ID == "" {
		sh.ID = uuid.NewString()
	}
	s.pushUndo()
	s.redoStack = s.redoStack[:0]
	s.shapes = append(s.shapes, sh)
}

// Undo reverts the last committed change. It reports whether anything
// happened.
func (s *Session) Undo() bool {
	if len(s.undoStack) == 0 {
		return false
	}
	s.redoStack = append(s.redoStack, s.snapshot())
	last := s.undoStack[len(s.undoStack)-1]
	s.undoStack = s.undoStack[:len(s.undoStack)-1]
	s.shapes = last
	return true
}

// Redo reapplies the last undone change.
func (s *Session) Redo() bool {
	if len(s.redoStack) == 0 {
		return false
	}
	s.undoStack = append(s.undoStack, s.snapshot())
	last := s.redoStack[len(s.redoStack)-1]
	s.redoStack = s.redoStack[:len(s.redoStack)-1]
	s.shapes = last
	return true
}

// Clear removes all shapes, recording an undo point so the clear itself can
// be undone.
func (s *Session) Clear() {
	if len(s.shapes) == 0 {
		return
	}
	s.pushUndo()
	s.redoStack = s.redoStack[:0]
	s.shapes = nil
}

// Shapes returns the committed shapes in commit order. The slice is shared;
// callers must not mutate it.
func (s *Session) Shapes() []canvas.Shape { return s.shapes }

// Regions reduces the committed shapes to their rectangular regions.
func (s *Session) Regions() []canvas.Region { return canvas.Reduce(s.shapes) }

// Primary returns the first committed shape, the one legacy single-region
// payloads are built from. ok is false when the session is empty.
func (s *Session) Primary() (canvas.Shape, bool) {
	if len(s.shapes) == 0 {
		return canvas.Shape{}, false
	}
	return s.shapes[0], true
}

func (s *Session) CanUndo() bool { return len(s.undoStack) > 0 }
func (s *Session) CanRedo() bool { return len(s.redoStack) > 0 }

func (s *Session) pushUndo() {
	s.undoStack = append(s.undoStack, s.snapshot())
	if len(s.undoStack) > s.maxHistory {
		s.undoStack = s.undoStack[1:]
	}
}

// snapshot deep-copies the shape list; point slices are never shared between
// history entries.
func (s *Session) snapshot() []canvas.Shape {
	out := make([]canvas.Shape, len(s.shapes))
	for i, sh := range s.shapes {
		out[i] = sh.Clone()
	}
	return out
}
