// Package editor is the interactive shiny window: it owns the event loop,
// routes mouse, touch and keyboard input into the canvas controller, and
// drives processing, saving and clipboard actions.
package editor

import (
	"context"
	"fmt"
	"image"
	"log"
	"sync"
	"time"
	"unicode"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
	"golang.org/x/mobile/event/touch"

	"github.com/example/eraserpad/internal/api"
	"github.com/example/eraserpad/internal/canvas"
	"github.com/example/eraserpad/internal/clipboard"
	"github.com/example/eraserpad/internal/config"
	"github.com/example/eraserpad/internal/imageio"
	"github.com/example/eraserpad/internal/notify"
	"github.com/example/eraserpad/internal/session"
	"github.com/example/eraserpad/internal/theme"
)

var toolbarWidth = 72

// Editor holds everything the window needs to run.
type Editor struct {
	Image    *image.RGBA
	Output   string
	Config   *config.Config
	Theme    *theme.Theme
	Client   *api.Client
	Notifier *notify.Notifier

	onClose   func()
	closeOnce sync.Once
}

// Option modifies an Editor during creation.
type Option func(*Editor)

// WithImage sets the image being edited.
func WithImage(img *image.RGBA) Option { return func(e *Editor) { e.Image = img } }

// WithOutput sets the file path used when saving.
func WithOutput(out string) Option { return func(e *Editor) { e.Output = out } }

// WithConfig supplies the loaded configuration.
func WithConfig(cfg *config.Config) Option { return func(e *Editor) { e.Config = cfg } }

// WithTheme sets the UI theme.
func WithTheme(th *theme.Theme) Option { return func(e *Editor) { e.Theme = th } }

// WithClient sets the processing service client.
func WithClient(c *api.Client) Option { return func(e *Editor) { e.Client = c } }

// WithNotifier sets the desktop notifier.
func WithNotifier(n *notify.Notifier) Option { return func(e *Editor) { e.Notifier = n } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(e *Editor) { e.onClose = fn } }

// New creates an Editor with the provided options.
func New(opts ...Option) *Editor {
	e := &Editor{
		Output: "edited.png",
		Config: config.New(),
		Theme:  theme.Default(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Editor) notifyClose() {
	e.closeOnce.Do(func() {
		if e.onClose != nil {
			e.onClose()
		}
	})
}

// secondaryPointer reports whether a mouse press should pan regardless of
// the selected tool: right or middle button, or alt/control held with the
// left button.
func secondaryPointer(b mouse.Button, mods key.Modifiers) bool {
	return b == mouse.ButtonRight || b == mouse.ButtonMiddle ||
		mods&(key.ModAlt|key.ModControl) != 0
}

// shortcutCandidates lists the lookup forms for one key event: the exact
// combination, the rune+modifier form, and, for unmodified presses only,
// the bare key code.
func shortcutCandidates(ev key.Event) []KeyShortcut {
	c := []KeyShortcut{
		{Rune: unicode.ToLower(ev.Rune), Code: ev.Code, Modifiers: ev.Modifiers},
		{Rune: unicode.ToLower(ev.Rune), Modifiers: ev.Modifiers},
	}
	if ev.Modifiers == 0 {
		c = append(c, KeyShortcut{Code: ev.Code})
	}
	return c
}

// processDone is delivered through the window event queue when a processing
// request finishes.
type processDone struct {
	result api.ProcessResult
	img    *image.RGBA
	err    error
}

// Run executes the UI loop using shiny's driver.
func (e *Editor) Run() { driver.Main(e.Main) }

func (e *Editor) Main(s screen.Screen) {
	src := e.Image
	if src == nil {
		log.Fatal("editor: no image")
	}
	th := e.Theme

	// Make the toolbar wide enough for all button labels.
	d := &font.Drawer{Face: basicfont.Face7x13}
	labels := []string{"F:Free", "X:Rect", "E:Ellipse", "V:Pan", "Go:Process", "Z:Undo", "Y:Redo", "Del:Clear", "S:Save", "C:Copy"}
	for _, lbl := range labels {
		if w := d.MeasureString(lbl).Ceil() + 8; w > toolbarWidth {
			toolbarWidth = w
		}
	}

	width := src.Bounds().Dx() + toolbarWidth
	height := src.Bounds().Dy() + statusHeight
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: "EraserPad"})
	if err != nil {
		log.Fatalf("new window: %v", err)
	}
	defer w.Release()
	defer e.notifyClose()

	sess := session.New(src.Bounds().Size())
	ctrl := sess.Controller
	ctrl.Color = th.Stroke
	ctrl.Tool = canvas.ToolFreehand
	ctrl.Fit(image.Pt(width-toolbarWidth, height-statusHeight))

	var (
		result       *image.RGBA
		showResult   bool
		busy         bool
		manualZoom   bool
		message      string
		messageUntil time.Time
		hoverBtn     = -1
		colorIdx     = -1
	)

	displayed := func() image.Image {
		if showResult && result != nil {
			return result
		}
		return src
	}

	say := func(format string, args ...any) {
		message = fmt.Sprintf(format, args...)
		log.Print(message)
		messageUntil = time.Now().Add(2 * time.Second)
		w.Send(paint.Event{})
	}

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
		}
	}()
	cancelPaint := func() {
		paintMu.Lock()
		if paintCancel != nil {
			paintCancel()
		}
		paintMu.Unlock()
	}

	keyboardAction := map[KeyShortcut]string{}
	actions := map[string]func(){}
	register := func(name string, keys KeyboardShortcuts, fn func()) {
		actions[name] = fn
		if keys != nil {
			for _, sc := range keys.KeyboardShortcuts() {
				keyboardAction[sc] = name
			}
		}
	}

	canvasCenter := func() canvas.Point {
		return canvas.Point{X: float64(width-toolbarWidth) / 2, Y: float64(height-statusHeight) / 2}
	}

	register("undo", shortcutList{{Rune: 'z', Modifiers: key.ModControl}}, func() {
		if !sess.Undo() {
			say("nothing to undo")
		}
	})
	register("redo", shortcutList{{Rune: 'y', Modifiers: key.ModControl}}, func() {
		if !sess.Redo() {
			say("nothing to redo")
		}
	})
	register("clear", shortcutList{{Code: key.CodeDeleteForward}, {Code: key.CodeDeleteBackspace}}, func() {
		sess.Clear()
	})
	register("cancel", shortcutList{{Code: key.CodeEscape}}, func() {
		ctrl.Builder.Cancel()
	})
	register("save", shortcutList{{Rune: 's', Modifiers: key.ModControl}}, func() {
		if err := imageio.Save(e.Output, displayed()); err != nil {
			say("save: %v", err)
			return
		}
		e.Notifier.Save(e.Output)
		say("saved %s", e.Output)
	})
	register("copy", shortcutList{{Rune: 'c', Modifiers: key.ModControl}}, func() {
		if err := clipboard.WriteImage(displayed()); err != nil {
			say("copy: %v", err)
			return
		}
		e.Notifier.Copy("image")
		say("image copied to clipboard")
	})
	register("toggle", shortcutList{{Code: key.CodeTab}}, func() {
		if result == nil {
			say("no processed result yet")
			return
		}
		showResult = !showResult
	})
	zoomIn := func() {
		ctrl.ZoomStep(canvasCenter(), 1.25)
		manualZoom = true
	}
	zoomOut := func() {
		ctrl.ZoomStep(canvasCenter(), 0.8)
		manualZoom = true
	}
	zoomFit := func() {
		ctrl.Fit(image.Pt(width-toolbarWidth, height-statusHeight))
		manualZoom = false
	}
	register("process", shortcutList{{Code: key.CodeReturnEnter}}, func() {
		if busy {
			say("processing already running")
			return
		}
		if e.Client == nil {
			say("no processing service configured")
			return
		}
		regions := sess.Regions()
		if len(regions) == 0 {
			say("draw a region first")
			return
		}
		primary, _ := sess.Primary()
		busy = true
		go e.runProcess(w, displayed(), primary, regions)
	})

	setTool := func(t canvas.Tool) {
		ctrl.Builder.Cancel()
		ctrl.Tool = t
	}

	buttons := []*CacheButton{
		{Button: &ToolButton{label: "F:Free", tool: canvas.ToolFreehand, theme: th, onSelect: func() { setTool(canvas.ToolFreehand) }}},
		{Button: &ToolButton{label: "X:Rect", tool: canvas.ToolRectangle, theme: th, onSelect: func() { setTool(canvas.ToolRectangle) }}},
		{Button: &ToolButton{label: "E:Ellipse", tool: canvas.ToolEllipse, theme: th, onSelect: func() { setTool(canvas.ToolEllipse) }}},
		{Button: &ToolButton{label: "V:Pan", tool: canvas.ToolNone, theme: th, onSelect: func() { setTool(canvas.ToolNone) }}},
		{Button: &ActionButton{label: "Go:Process", theme: th, onActivate: func() { actions["process"]() }}},
		{Button: &ActionButton{label: "Z:Undo", theme: th, onActivate: func() { actions["undo"]() }}},
		{Button: &ActionButton{label: "Y:Redo", theme: th, onActivate: func() { actions["redo"]() }}},
		{Button: &ActionButton{label: "Del:Clear", theme: th, onActivate: func() { actions["clear"]() }}},
		{Button: &ActionButton{label: "S:Save", theme: th, onActivate: func() { actions["save"]() }}},
		{Button: &ActionButton{label: "C:Copy", theme: th, onActivate: func() { actions["copy"]() }}},
	}
	for i, b := range buttons {
		b.SetRect(image.Rect(0, i*toolbarButtonHeight, toolbarWidth, (i+1)*toolbarButtonHeight))
	}

	handleAction := func(name string) {
		if fn, ok := actions[name]; ok {
			fn()
		}
		w.Send(paint.Event{})
	}

	canvasPoint := func(x, y float32) canvas.Point {
		return canvas.Point{X: float64(x) - float64(toolbarWidth), Y: float64(y)}
	}
	inCanvas := func(x, y float32) bool {
		return int(x) >= toolbarWidth && int(y) < height-statusHeight
	}

	for {
		ev := w.NextEvent()
		switch ev := ev.(type) {
		case lifecycle.Event:
			if ev.To == lifecycle.StageDead {
				cancelPaint()
				return
			}

		case processDone:
			busy = false
			if ev.err != nil {
				say("process: %v", ev.err)
				continue
			}
			result = ev.img
			showResult = true
			sess.Clear()
			if result.Bounds().Size() != ctrl.ImageSize {
				ctrl.ImageSize = result.Bounds().Size()
				ctrl.Fit(image.Pt(width-toolbarWidth, height-statusHeight))
				manualZoom = false
			}
			e.Notifier.Process(ev.result.RequestID, imageio.Thumbnail(result, 256))
			say("processed in %.1fs", ev.result.ProcessingTime)

		case size.Event:
			width = ev.WidthPx
			height = ev.HeightPx
			if !manualZoom {
				ctrl.Fit(image.Pt(width-toolbarWidth, height-statusHeight))
			}
			w.Send(paint.Event{})

		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			var inProgress *canvas.Shape
			if ctrl.Builder.Drawing() {
				snap := ctrl.Builder.Current().Clone()
				inProgress = &snap
			}
			st := paintState{
				width:        width,
				height:       height,
				toolbarWidth: toolbarWidth,
				src:          displayed(),
				vp:           ctrl.Viewport,
				shapes:       sess.Shapes(),
				inProgress:   inProgress,
				tool:         ctrl.Tool,
				colorIdx:     colorIdx,
				showResult:   showResult,
				busy:         busy,
				shapeCount:   len(sess.Shapes()),
				buttons:      buttons,
				hoverBtn:     hoverBtn,
				message:      message,
				messageUntil: messageUntil,
				theme:        th,
			}
			select {
			case paintCh <- st:
			default:
				<-paintCh
				paintCh <- st
			}

		case mouse.Event:
			if int(ev.X) < toolbarWidth {
				p := image.Pt(int(ev.X), int(ev.Y))
				hoverBtn = -1
				for i, btn := range buttons {
					if p.In(btn.Rect()) {
						hoverBtn = i
						if ev.Button == mouse.ButtonLeft && ev.Direction == mouse.DirPress {
							btn.Activate()
						}
						break
					}
				}
				if ev.Button == mouse.ButtonLeft && ev.Direction == mouse.DirPress {
					top := len(buttons) * toolbarButtonHeight
					for i := range paletteColors {
						if p.In(swatchRect(i, top, toolbarWidth)) {
							colorIdx = i
							ctrl.Color = paletteColors[i]
							break
						}
					}
				}
				w.Send(paint.Event{})
				continue
			}
			hoverBtn = -1

			switch ev.Button {
			case mouse.ButtonWheelUp, mouse.ButtonWheelDown:
				if ev.Direction != mouse.DirRelease && inCanvas(ev.X, ev.Y) {
					ctrl.Wheel(canvasPoint(ev.X, ev.Y), ev.Button == mouse.ButtonWheelUp)
					manualZoom = true
					w.Send(paint.Event{})
				}
				continue
			}

			switch ev.Direction {
			case mouse.DirPress:
				if !inCanvas(ev.X, ev.Y) {
					continue
				}
				ctrl.PointerDown(canvasPoint(ev.X, ev.Y), secondaryPointer(ev.Button, ev.Modifiers))
				w.Send(paint.Event{})
			case mouse.DirNone:
				ctrl.PointerMove(canvasPoint(ev.X, ev.Y))
				if ctrl.Builder.Drawing() || ctrl.Panning() {
					w.Send(paint.Event{})
				}
			case mouse.DirRelease:
				ctrl.PointerUp(canvasPoint(ev.X, ev.Y))
				w.Send(paint.Event{})
			}

		case touch.Event:
			id := uint64(ev.Sequence)
			p := canvasPoint(ev.X, ev.Y)
			switch ev.Type {
			case touch.TypeBegin:
				if inCanvas(ev.X, ev.Y) {
					ctrl.TouchBegin(id, p)
				}
			case touch.TypeMove:
				ctrl.TouchMove(id, p)
			case touch.TypeEnd:
				ctrl.TouchEnd(id, p)
			}
			w.Send(paint.Event{})

		case key.Event:
			if ev.Direction != key.DirPress {
				continue
			}
			matched := false
			for _, ks := range shortcutCandidates(ev) {
				if action, ok := keyboardAction[ks]; ok {
					handleAction(action)
					matched = true
					break
				}
			}
			if matched {
				continue
			}
			switch ev.Rune {
			case 'f', 'F':
				setTool(canvas.ToolFreehand)
				w.Send(paint.Event{})
			case 'x', 'X':
				setTool(canvas.ToolRectangle)
				w.Send(paint.Event{})
			case 'e', 'E':
				setTool(canvas.ToolEllipse)
				w.Send(paint.Event{})
			case 'v', 'V':
				setTool(canvas.ToolNone)
				w.Send(paint.Event{})
			case '+', '=':
				zoomIn()
				w.Send(paint.Event{})
			case '-':
				zoomOut()
				w.Send(paint.Event{})
			case '0':
				zoomFit()
				w.Send(paint.Event{})
			case 'q', 'Q':
				cancelPaint()
				return
			}
		}
	}
}

// runProcess performs a blocking processing request off the event loop and
// posts the outcome back through the window.
func (e *Editor) runProcess(w screen.Window, src image.Image, primary canvas.Shape, regions []canvas.Region) {
	res, img, err := processImage(context.Background(), e.Client, e.Config, src, primary, regions)
	w.Send(processDone{result: res, img: img, err: err})
}

// processImage submits one erase job. The service requires a polygon of at
// least three coordinates even when regions are supplied, so thin shapes
// fall back to the first region's corners.
func processImage(ctx context.Context, client *api.Client, cfg *config.Config, src image.Image, primary canvas.Shape, regions []canvas.Region) (api.ProcessResult, *image.RGBA, error) {
	dataURL, err := imageio.EncodeDataURL(src)
	if err != nil {
		return api.ProcessResult{}, nil, err
	}

	coords := api.PolygonCoordinates(primary)
	if len(coords) < 3 && len(regions) > 0 {
		r := regions[0]
		coords = []api.Coordinate{
			{X: float64(r.X), Y: float64(r.Y)},
			{X: float64(r.X + r.Width), Y: float64(r.Y)},
			{X: float64(r.X + r.Width), Y: float64(r.Y + r.Height)},
			{X: float64(r.X), Y: float64(r.Y + r.Height)},
		}
	}

	req := api.ProcessRequest{
		Image:             dataURL,
		Coordinates:       coords,
		Regions:           regions,
		Prompt:            cfg.Gen.Prompt,
		NumInferenceSteps: cfg.Gen.NumInferenceSteps,
		GuidanceScale:     cfg.Gen.GuidanceScale,
	}
	if cfg.Gen.HasSeed {
		seed := cfg.Gen.Seed
		req.Seed = &seed
	}

	res, err := client.Process(ctx, req)
	if err != nil {
		return api.ProcessResult{}, nil, err
	}
	out, _, err := imageio.DecodeDataURL(res.ProcessedImage)
	if err != nil {
		return api.ProcessResult{}, nil, fmt.Errorf("decode result: %w", err)
	}
	return res, imageio.ToRGBA(out), nil
}
