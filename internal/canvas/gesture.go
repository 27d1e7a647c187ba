package canvas

import (
	"image"
	"image/color"
)

const (
	wheelZoomIn  = 1.1
	wheelZoomOut = 0.9
)

type gesturePhase int

const (
	phaseIdle gesturePhase = iota
	phasePanning
	phaseDrawing
	phasePinching
)

// Controller binds the viewport, the shape builder and the gesture state for
// one image. It is the session context: every piece of in-progress drawing
// state lives here, never in package globals, so multiple images can be
// edited side by side.
//
// Mouse and touch adapters feed it screen-space positions; depending on the
// active tool and button it pans, zooms, or forwards image-space coordinates
// to the builder. Finalized shapes are handed to the commit sink; the
// controller keeps no list of its own.
type Controller struct {
	Viewport  Viewport
	ImageSize image.Point
	Tool      Tool
	Color     color.RGBA

	Builder Builder

	commit func(Shape)

	phase      gesturePhase
	anchor     Point // last pan position, screen space
	touches    map[uint64]Point
	touchOrder []uint64
	pinchDist  float64
}

// NewController creates a controller for an image of the given size. commit
// receives each finalized shape; it may be nil.
func NewController(imageSize image.Point, commit func(Shape)) *Controller {
	return &Controller{
		Viewport:  Viewport{Scale: 1},
		ImageSize: imageSize,
		Color:     color.RGBA{R: 255, A: 255},
		commit:    commit,
		touches:   make(map[uint64]Point),
	}
}

func (c *Controller) ready() bool {
	return c.ImageSize.X > 0 && c.ImageSize.Y > 0
}

// Fit recomputes the viewport to fit the image inside container.
func (c *Controller) Fit(container image.Point) {
	if !c.ready() {
		return
	}
	c.Viewport = FitToContainer(c.ImageSize, container)
}

// PointerDown classifies a primary/secondary pointer press. Secondary covers
// middle click, right click and modifier+primary; those always pan, as does
// any press while no tool is selected.
func (c *Controller) PointerDown(p Point, secondary bool) {
	if !c.ready() || c.phase != phaseIdle {
		// A second press while panning or drawing is not expected from a
		// single pointer device; ignore it rather than restart the gesture.
		return
	}
	if c.Tool == ToolNone || secondary {
		c.phase = phasePanning
		c.anchor = p
		return
	}
	c.phase = phaseDrawing
	c.Builder.Start(c.Tool, c.Viewport.ScreenToImage(p, c.ImageSize), c.Color)
}

// PointerMove advances the active pan or draw gesture.
func (c *Controller) PointerMove(p Point) {
	switch c.phase {
	case phasePanning:
		c.Viewport = c.Viewport.PanBy(Point{X: p.X - c.anchor.X, Y: p.Y - c.anchor.Y})
		c.anchor = p
	case phaseDrawing:
		c.Builder.Update(c.Viewport.ScreenToImage(p, c.ImageSize))
	}
}

// PointerUp ends the active gesture, finalizing the shape if one was being
// drawn.
func (c *Controller) PointerUp(p Point) {
	if c.phase == phaseDrawing {
		c.Builder.Update(c.Viewport.ScreenToImage(p, c.ImageSize))
		c.finishShape()
	}
	c.phase = phaseIdle
}

// Wheel applies an instantaneous zoom step anchored at the cursor.
func (c *Controller) Wheel(p Point, in bool) {
	if !c.ready() {
		return
	}
	factor := wheelZoomOut
	if in {
		factor = wheelZoomIn
	}
	c.Viewport = c.Viewport.ZoomAt(p, factor)
}

// ZoomStep zooms by factor anchored at the given screen point; used by the
// keyboard and toolbar zoom controls.
func (c *Controller) ZoomStep(anchor Point, factor float64) {
	if !c.ready() {
		return
	}
	c.Viewport = c.Viewport.ZoomAt(anchor, factor)
}

// TouchBegin registers a touch point. The first touch behaves like a pointer
// press; a second touch converts a non-drawing gesture into a pinch zoom.
func (c *Controller) TouchBegin(id uint64, p Point) {
	if !c.ready() {
		return
	}
	if _, ok := c.touches[id]; !ok {
		c.touchOrder = append(c.touchOrder, id)
	}
	c.touches[id] = p
	switch len(c.touches) {
	case 1:
		c.PointerDown(p, false)
	case 2:
		if c.phase == phaseDrawing {
			// Drawing wins the tie-break; the extra finger is tracked but
			// does not interrupt the stroke.
			return
		}
		a, b := c.pinchPair()
		c.phase = phasePinching
		c.pinchDist = dist(a, b)
	}
}

// TouchMove advances the pan, draw or pinch gesture driven by touch id.
func (c *Controller) TouchMove(id uint64, p Point) {
	if _, ok := c.touches[id]; !ok {
		return
	}
	c.touches[id] = p
	if c.phase != phasePinching {
		if len(c.touchOrder) > 0 && c.touchOrder[0] == id {
			c.PointerMove(p)
		}
		return
	}
	a, b := c.pinchPair()
	d := dist(a, b)
	if c.pinchDist > 0 && d > 0 {
		mid := Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
		c.Viewport = c.Viewport.ZoomAt(mid, d/c.pinchDist)
	}
	c.pinchDist = d
}

// TouchEnd removes a touch point and, like PointerUp, returns to idle.
func (c *Controller) TouchEnd(id uint64, p Point) {
	if _, ok := c.touches[id]; !ok {
		return
	}
	delete(c.touches, id)
	for i, t := range c.touchOrder {
		if t == id {
			c.touchOrder = append(c.touchOrder[:i], c.touchOrder[i+1:]...)
			break
		}
	}
	if c.phase == phaseDrawing {
		c.Builder.Update(c.Viewport.ScreenToImage(p, c.ImageSize))
		c.finishShape()
	}
	c.phase = phaseIdle
	c.pinchDist = 0
}

// Panning reports whether a pan gesture is active; the editor uses it for
// the cursor hint.
func (c *Controller) Panning() bool { return c.phase == phasePanning }

func (c *Controller) pinchPair() (Point, Point) {
	return c.touches[c.touchOrder[0]], c.touches[c.touchOrder[1]]
}

func (c *Controller) finishShape() {
	if s, ok := c.Builder.Finish(); ok && c.commit != nil {
		c.commit(s)
	}
}
