package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	xdraw "golang.org/x/image/draw"
)

// Rendering constants are in screen pixels. Because shapes are transformed to
// screen space before stroking, outline width and dash lengths stay constant
// no matter the zoom level.
const (
	strokeWidth   = 2
	dashOn        = 6
	dashOff       = 4
	fillAlpha     = 64
	shadowAlpha   = 80
	shadowOffsetX = 2
	shadowOffsetY = 2
)

// Render draws the image and all shapes into dst under the viewport
// transform. Completed shapes get a solid outline and a translucent fill; the
// in-progress shape gets a dashed outline over a soft shadow.
func Render(dst *image.RGBA, src image.Image, vp Viewport, shapes []Shape, inProgress *Shape) {
	if src != nil {
		target := ImageScreenRect(vp, src.Bounds().Size())
		xdraw.NearestNeighbor.Scale(dst, target, src, src.Bounds(), draw.Over, nil)
	}
	for _, s := range shapes {
		if !s.Complete {
			continue
		}
		drawCompleted(dst, vp, s)
	}
	if inProgress != nil {
		drawPreview(dst, vp, *inProgress)
	}
}

// ImageScreenRect reports where the image lands on screen under vp.
func ImageScreenRect(vp Viewport, size image.Point) image.Rectangle {
	min := vp.ImageToScreen(Point{})
	max := vp.ImageToScreen(Point{X: float64(size.X), Y: float64(size.Y)})
	return image.Rect(
		int(math.Round(min.X)), int(math.Round(min.Y)),
		int(math.Round(max.X)), int(math.Round(max.Y)),
	)
}

func drawCompleted(dst *image.RGBA, vp Viewport, s Shape) {
	outline, closed := outlinePoints(vp, s)
	if len(outline) < 2 {
		return
	}
	fill := s.Color
	fill.A = fillAlpha
	// The fill path always closes, even for an open freehand stroke.
	fillPolygon(dst, outline, fill)
	strokePolyline(dst, outline, closed, s.Color, strokeWidth)
}

func drawPreview(dst *image.RGBA, vp Viewport, s Shape) {
	outline, closed := outlinePoints(vp, s)
	if len(outline) < 2 {
		return
	}
	shadow := make([]Point, len(outline))
	for i, p := range outline {
		shadow[i] = Point{X: p.X + shadowOffsetX, Y: p.Y + shadowOffsetY}
	}
	strokePolyline(dst, shadow, closed, color.RGBA{A: shadowAlpha}, strokeWidth)
	dashedPolyline(dst, outline, closed, s.Color, strokeWidth)
}

// outlinePoints converts a shape into its screen-space outline. Rectangle and
// ellipse outlines are derived from the min/max of whatever points are
// present, so the two-point live preview and the finalized polygon render
// identically.
func outlinePoints(vp Viewport, s Shape) (pts []Point, closed bool) {
	min, max, ok := s.Bounds()
	if !ok {
		return nil, false
	}
	switch s.Tool {
	case ToolRectangle:
		corners := []Point{
			{X: min.X, Y: min.Y},
			{X: max.X, Y: min.Y},
			{X: max.X, Y: max.Y},
			{X: min.X, Y: max.Y},
		}
		return toScreen(vp, corners), true
	case ToolEllipse:
		return toScreen(vp, ellipseOutline(min, max)), true
	default:
		smoothed := smoothStroke(s.Points)
		// A freehand stroke is stored open; only the finalized fill treats
		// it as closed, which fillPolygon does implicitly.
		return toScreen(vp, smoothed), false
	}
}

func ellipseOutline(min, max Point) []Point {
	cx := (min.X + max.X) / 2
	cy := (min.Y + max.Y) / 2
	rx := (max.X - min.X) / 2
	ry := (max.Y - min.Y) / 2
	n := ellipsePointCount(rx, ry)
	pts := make([]Point, 0, n)
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		pts = append(pts, Point{X: cx + rx*math.Cos(theta), Y: cy + ry*math.Sin(theta)})
	}
	return pts
}

// smoothStroke replaces the straight segments between sparse freehand samples
// with quadratic curves through the segment midpoints, flattened back into
// short line segments.
func smoothStroke(pts []Point) []Point {
	if len(pts) < 3 {
		return pts
	}
	const steps = 8
	out := []Point{pts[0]}
	for i := 1; i < len(pts)-1; i++ {
		p0 := midpoint(pts[i-1], pts[i])
		p2 := midpoint(pts[i], pts[i+1])
		for s := 1; s <= steps; s++ {
			t := float64(s) / steps
			out = append(out, quadPoint(p0, pts[i], p2, t))
		}
	}
	out = append(out, pts[len(pts)-1])
	return out
}

func midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

func quadPoint(p0, p1, p2 Point, t float64) Point {
	u := 1 - t
	return Point{
		X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
		Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
	}
}

func toScreen(vp Viewport, pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = vp.ImageToScreen(p)
	}
	return out
}

func strokePolyline(dst *image.RGBA, pts []Point, closed bool, col color.RGBA, width int) {
	for i := 1; i < len(pts); i++ {
		blendLine(dst, pts[i-1], pts[i], col, width)
	}
	if closed && len(pts) > 2 {
		blendLine(dst, pts[len(pts)-1], pts[0], col, width)
	}
}

// dashedPolyline walks the outline keeping a running distance so the dash
// pattern flows continuously across segment boundaries.
func dashedPolyline(dst *image.RGBA, pts []Point, closed bool, col color.RGBA, width int) {
	n := len(pts)
	if n < 2 {
		return
	}
	segs := n - 1
	if closed {
		segs = n
	}
	carried := 0.0
	for i := 0; i < segs; i++ {
		a := pts[i]
		b := pts[(i+1)%n]
		carried = dashedSegment(dst, a, b, col, width, carried)
	}
}

// dashedSegment draws one segment of a dashed line. phase is the distance
// already consumed within the dash period; the updated phase is returned.
func dashedSegment(dst *image.RGBA, a, b Point, col color.RGBA, width int, phase float64) float64 {
	const period = dashOn + dashOff
	length := dist(a, b)
	if length == 0 {
		return phase
	}
	pos := 0.0
	for pos < length {
		inPhase := math.Mod(phase+pos, period)
		var run float64
		drawn := inPhase < dashOn
		if drawn {
			run = math.Min(dashOn-inPhase, length-pos)
		} else {
			run = math.Min(period-inPhase, length-pos)
		}
		if drawn {
			t0 := pos / length
			t1 := (pos + run) / length
			blendLine(dst,
				Point{X: a.X + (b.X-a.X)*t0, Y: a.Y + (b.Y-a.Y)*t0},
				Point{X: a.X + (b.X-a.X)*t1, Y: a.Y + (b.Y-a.Y)*t1},
				col, width)
		}
		pos += run
	}
	return math.Mod(phase+length, period)
}

// blendLine is Bresenham with a thickness spread and source-over blending.
func blendLine(dst *image.RGBA, a, b Point, col color.RGBA, thick int) {
	x0 := int(math.Round(a.X))
	y0 := int(math.Round(a.Y))
	x1 := int(math.Round(b.X))
	y1 := int(math.Round(b.Y))
	dx := math.Abs(float64(x1 - x0))
	dy := math.Abs(float64(y1 - y0))
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy
	for {
		blendThickPixel(dst, x0, y0, thick, col)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

func blendThickPixel(dst *image.RGBA, x, y, thick int, col color.RGBA) {
	r := thick / 2
	for dyy := -r; dyy <= r; dyy++ {
		for dxx := -r; dxx <= r; dxx++ {
			blendPixel(dst, x+dxx, y+dyy, col)
		}
	}
}

// fillPolygon scan-fills the polygon described by pts (implicitly closed)
// using even-odd crossings.
func fillPolygon(dst *image.RGBA, pts []Point, col color.RGBA) {
	if len(pts) < 3 {
		return
	}
	minY := math.Inf(1)
	maxY := math.Inf(-1)
	for _, p := range pts {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	y0 := int(math.Floor(minY))
	y1 := int(math.Ceil(maxY))
	for y := y0; y <= y1; y++ {
		fy := float64(y) + 0.5
		var xs []float64
		for i := range pts {
			a := pts[i]
			b := pts[(i+1)%len(pts)]
			if (a.Y <= fy && b.Y > fy) || (b.Y <= fy && a.Y > fy) {
				t := (fy - a.Y) / (b.Y - a.Y)
				xs = append(xs, a.X+t*(b.X-a.X))
			}
		}
		sortFloats(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(math.Ceil(xs[i])); x < int(math.Ceil(xs[i+1])); x++ {
				blendPixel(dst, x, y, col)
			}
		}
	}
}

func sortFloats(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

// blendPixel composites col over the destination pixel.
func blendPixel(dst *image.RGBA, x, y int, col color.RGBA) {
	if !(image.Pt(x, y).In(dst.Bounds())) {
		return
	}
	if col.A == 255 {
		dst.SetRGBA(x, y, col)
		return
	}
	old := dst.RGBAAt(x, y)
	a := uint32(col.A)
	inv := 255 - a
	dst.SetRGBA(x, y, color.RGBA{
		R: uint8((uint32(col.R)*a + uint32(old.R)*inv) / 255),
		G: uint8((uint32(col.G)*a + uint32(old.G)*inv) / 255),
		B: uint8((uint32(col.B)*a + uint32(old.B)*inv) / 255),
		A: uint8(a + uint32(old.A)*inv/255),
	})
}
