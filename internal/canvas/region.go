package canvas

import "math"

// Region is an axis-aligned rectangle in whole image pixels, the form the
// remote masking service accepts.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Reduce flattens completed shapes to their enclosing rectangles, preserving
// shape order. Incomplete shapes, shapes with fewer than two points, and
// shapes whose box collapses to zero width or height are skipped. Freehand
// strokes and ellipse polygons lose their outline here on purpose: the
// downstream mask is rectangular.
func Reduce(shapes []Shape) []Region {
	var out []Region
	for _, s := range shapes {
		if !s.Complete || len(s.Points) < 2 {
			continue
		}
		min, max, _ := s.Bounds()
		minX := int(math.Floor(math.Max(0, min.X)))
		minY := int(math.Floor(math.Max(0, min.Y)))
		maxX := int(math.Ceil(max.X))
		maxY := int(math.Ceil(max.Y))
		w := maxX - minX
		h := maxY - minY
		if w <= 0 || h <= 0 {
			continue
		}
		out = append(out, Region{X: minX, Y: minY, Width: w, Height: h})
	}
	return out
}
