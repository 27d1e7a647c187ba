package canvas

import "image"

const (
	// MinScale and MaxScale bound the viewport zoom level. Every mutation
	// clamps into this range.
	MinScale = 0.1
	MaxScale = 5.0
)

// Point is a position in image coordinates: pixels of the original image,
// independent of the current zoom and pan.
type Point struct {
	X, Y float64
}

// Viewport maps image coordinates to screen coordinates. Translate is stored
// in image-space units so that screen = (image + translate) * scale, the same
// convention the pan offset uses.
type Viewport struct {
	Scale     float64
	Translate Point
}

func clampScale(s float64) float64 {
	if s < MinScale {
		return MinScale
	}
	if s > MaxScale {
		return MaxScale
	}
	return s
}

// FitToContainer returns a viewport that fits imageSize inside containerSize,
// centred, never upscaling beyond 100%.
func FitToContainer(imageSize, containerSize image.Point) Viewport {
	if imageSize.X <= 0 || imageSize.Y <= 0 {
		return Viewport{Scale: 1}
	}
	sx := float64(containerSize.X) / float64(imageSize.X)
	sy := float64(containerSize.Y) / float64(imageSize.Y)
	scale := sx
	if sy < scale {
		scale = sy
	}
	if scale > 1 {
		scale = 1
	}
	scale = clampScale(scale)
	// Centre the scaled image; the pixel offset is converted back to
	// image-space units by dividing by the scale.
	tx := (float64(containerSize.X) - float64(imageSize.X)*scale) / 2 / scale
	ty := (float64(containerSize.Y) - float64(imageSize.Y)*scale) / 2 / scale
	return Viewport{Scale: scale, Translate: Point{X: tx, Y: ty}}
}

// ZoomAt scales the viewport by factor while keeping the image point under
// the screen-space anchor visually fixed.
func (v Viewport) ZoomAt(anchor Point, factor float64) Viewport {
	next := clampScale(v.Scale * factor)
	if next == v.Scale {
		return v
	}
	// Solving anchor/next - t' == anchor/old - t keeps the anchored image
	// point stationary on screen.
	v.Translate.X += anchor.X/next - anchor.X/v.Scale
	v.Translate.Y += anchor.Y/next - anchor.Y/v.Scale
	v.Scale = next
	return v
}

// PanBy shifts the viewport by a screen-space delta. The on-screen pan
// distance is the same at every zoom level.
func (v Viewport) PanBy(delta Point) Viewport {
	v.Translate.X += delta.X / v.Scale
	v.Translate.Y += delta.Y / v.Scale
	return v
}

// ImageToScreen converts an image-space point to screen space.
func (v Viewport) ImageToScreen(p Point) Point {
	return Point{
		X: (p.X + v.Translate.X) * v.Scale,
		Y: (p.Y + v.Translate.Y) * v.Scale,
	}
}

// ScreenToImage converts a screen-space point to image space, clamped to the
// image bounds so stray pointer positions never yield out-of-range
// coordinates.
func (v Viewport) ScreenToImage(p Point, imageSize image.Point) Point {
	out := Point{
		X: p.X/v.Scale - v.Translate.X,
		Y: p.Y/v.Scale - v.Translate.Y,
	}
	out.X = clampAxis(out.X, float64(imageSize.X))
	out.Y = clampAxis(out.Y, float64(imageSize.Y))
	return out
}

func clampAxis(val, max float64) float64 {
	if val < 0 {
		return 0
	}
	if val > max {
		return max
	}
	return val
}
