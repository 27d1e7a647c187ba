package editor

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"log"
	"time"

	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/eraserpad/internal/canvas"
	"github.com/example/eraserpad/internal/render"
	"github.com/example/eraserpad/internal/theme"
)

const (
	toolbarButtonHeight = 24
	statusHeight        = 24

	swatchSize = 16
	swatchGap  = 4
)

// paletteColors are the stroke colors offered below the tool buttons.
var paletteColors = []color.RGBA{
	{0xff, 0x3b, 0x30, 0xff},
	{0xff, 0x95, 0x00, 0xff},
	{0xff, 0xcc, 0x00, 0xff},
	{0x34, 0xc7, 0x59, 0xff},
	{0x00, 0x7a, 0xff, 0xff},
	{0x00, 0x00, 0x00, 0xff},
}

func swatchRect(i, top, toolbarWidth int) image.Rectangle {
	perRow := (toolbarWidth - swatchGap) / (swatchSize + swatchGap)
	if perRow < 1 {
		perRow = 1
	}
	x := swatchGap + (i%perRow)*(swatchSize+swatchGap)
	y := top + swatchGap + (i/perRow)*(swatchSize+swatchGap)
	return image.Rect(x, y, x+swatchSize, y+swatchSize)
}

// frameDropThreshold limits how many consecutive frames can be canceled
// before a draw is allowed to complete so the UI stays responsive.
const frameDropThreshold = 10

type paintState struct {
	width, height int
	toolbarWidth  int

	src        image.Image
	vp         canvas.Viewport
	shapes     []canvas.Shape
	inProgress *canvas.Shape

	tool       canvas.Tool
	colorIdx   int
	showResult bool
	busy       bool
	shapeCount int
	buttons    []*CacheButton
	hoverBtn   int

	message      string
	messageUntil time.Time

	theme *theme.Theme
}

// drawBackdrop fills the window with the theme background; the canvas area
// paints its own checkerboard over it.
func drawBackdrop(dst *image.RGBA, th *theme.Theme) {
	draw.Draw(dst, dst.Bounds(), &image.Uniform{th.Background}, image.Point{}, draw.Src)
}

func drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{X: st.width, Y: st.height})
	if err != nil {
		log.Printf("new buffer: %v", err)
		return
	}
	defer b.Release()

	drawBackdrop(b.RGBA(), st.theme)
	if ctx.Err() != nil {
		return
	}

	// The canvas renders into its own buffer so viewport coordinates stay
	// zero-based, then lands right of the toolbar.
	cw := st.width - st.toolbarWidth
	ch := st.height - statusHeight
	if cw > 0 && ch > 0 && st.src != nil {
		canvasBuf := image.NewRGBA(image.Rect(0, 0, cw, ch))
		render.Checkerboard(canvasBuf, canvasBuf.Bounds(), 8, st.theme.CheckerLight, st.theme.CheckerDark)
		canvas.Render(canvasBuf, st.src, st.vp, st.shapes, st.inProgress)
		if ctx.Err() != nil {
			return
		}
		draw.Draw(b.RGBA(), image.Rect(st.toolbarWidth, 0, st.width, ch), canvasBuf, image.Point{}, draw.Src)
	}
	if ctx.Err() != nil {
		return
	}

	drawToolbar(b.RGBA(), st)
	drawStatusBar(b.RGBA(), st)

	if st.message != "" && time.Now().Before(st.messageUntil) {
		drawMessage(b.RGBA(), st)
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

func drawToolbar(dst *image.RGBA, st paintState) {
	bar := image.Rect(0, 0, st.toolbarWidth, st.height)
	draw.Draw(dst, bar, &image.Uniform{st.theme.ToolbarBackground}, image.Point{}, draw.Src)
	for i, btn := range st.buttons {
		state := StateDefault
		if i == st.hoverBtn {
			state = StateHover
		}
		if tb, ok := btn.Button.(*ToolButton); ok && tb.tool == st.tool && st.tool != canvas.ToolNone {
			state = StatePressed
		}
		btn.Draw(dst, state)
	}

	top := len(st.buttons) * toolbarButtonHeight
	for i, c := range paletteColors {
		r := swatchRect(i, top, st.toolbarWidth)
		draw.Draw(dst, r, &image.Uniform{c}, image.Point{}, draw.Src)
		if i == st.colorIdx {
			outlineRect(dst, r.Inset(-2), st.theme.ButtonBorder)
		}
	}
}

func outlineRect(dst *image.RGBA, r image.Rectangle, c color.RGBA) {
	u := &image.Uniform{c}
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

func drawStatusBar(dst *image.RGBA, st paintState) {
	y := st.height - statusHeight
	bar := image.Rect(0, y, st.width, st.height)
	draw.Draw(dst, bar, &image.Uniform{st.theme.StatusBackground}, image.Point{}, draw.Src)

	view := "original"
	if st.showResult {
		view = "result"
	}
	text := fmt.Sprintf("%s | zoom %d%% | %d shapes | %s", st.tool, int(st.vp.Scale*100+0.5), st.shapeCount, view)
	if st.busy {
		text += " | processing..."
	}
	d := &font.Drawer{Dst: dst, Src: &image.Uniform{st.theme.StatusText}, Face: basicfont.Face7x13,
		Dot: fixed.P(8, y+16)}
	d.DrawString(text)
}

func drawMessage(dst *image.RGBA, st paintState) {
	d := &font.Drawer{Face: basicfont.Face7x13}
	tw := d.MeasureString(st.message).Ceil()
	cx := st.toolbarWidth + (st.width-st.toolbarWidth)/2
	cy := (st.height - statusHeight) / 2
	box := image.Rect(cx-tw/2-8, cy-16, cx+tw/2+8, cy+16)
	draw.Draw(dst, box, &image.Uniform{st.theme.StatusBackground}, image.Point{}, draw.Src)
	d = &font.Drawer{Dst: dst, Src: &image.Uniform{st.theme.Foreground}, Face: basicfont.Face7x13,
		Dot: fixed.P(box.Min.X+8, cy+4)}
	d.DrawString(st.message)
}
