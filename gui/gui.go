// Package gui is the gioui editor window of osprite. It forwards pointer and
// keyboard input to the active session of a workspace and blits the frames
// produced by osprite.Renderer.
package gui

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/io/key"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"github.com/egtoney/osprite"
)

type (
	C = layout.Context
	D = layout.Dimensions
)

const (
	maxScreenX = 1366
	maxScreenY = 768

	// margin is the room left around the canvas in the initial window.
	margin = 64
)

var (
	statusBkgColor = color.NRGBA{R: 30, G: 30, B: 30, A: 0xff}
	statusFgColor  = color.NRGBA{R: 220, G: 220, B: 220, A: 0xff}
	errorFgColor   = color.NRGBA{R: 255, G: 110, B: 100, A: 0xff}
)

// pendingPaste is a paste requested from the clipboard and not delivered yet.
type pendingPaste struct {
	session *osprite.Session
	ticket  osprite.PasteTicket
}

type pasteResult struct {
	session *osprite.Session
	ticket  osprite.PasteTicket
	data    *osprite.PixelSlice
	err     error
}

// Gui is the editor window. Every session call happens on the goroutine
// running Run, only clipboard decoding is done elsewhere.
type Gui struct {
	ws       *osprite.Workspace
	defaults osprite.Options
	renderer *osprite.Renderer
	theme    *material.Theme
	ctx      layout.Context

	window struct {
		w, h  float64
		title string
	}

	frame    *image.NRGBA
	imageOp  paint.ImageOp
	rendered string

	status struct {
		msg string
		err bool
	}

	canvasTag int
	pasteTag  int
	clipWrite *string
	clipRead  bool
	pending   *pendingPaste
	pastes    chan pasteResult
}

// NewGUI initializes the Gio interface for the given workspace.
func NewGUI(ws *osprite.Workspace, defaults osprite.Options, opts osprite.RenderOptions) *Gui {
	gui := &Gui{
		ws:       ws,
		defaults: defaults,
		renderer: osprite.NewRenderer(opts),
		theme:    material.NewTheme(gofont.Collection()),
		ctx: layout.Context{
			Ops: new(op.Ops),
		},
		pastes: make(chan pasteResult),
	}
	gui.initWindow()

	return gui
}

// initWindow sizes the window around the active canvas.
func (g *Gui) initWindow() {
	w, h := float64(g.defaults.Width*g.defaults.Zoom), float64(g.defaults.Height*g.defaults.Zoom)
	if s := g.ws.Active(); s != nil {
		buf, z := s.Buffer(), s.Display().Zoom
		w, h = float64(buf.Width*z), float64(buf.Height*z)
	}
	g.window.w, g.window.h = windowSize(w+2*margin, h+2*margin)
	g.window.title = g.title()
}

func (g *Gui) title() string {
	if s := g.ws.Active(); s != nil {
		return fmt.Sprintf("osprite - %s", s)
	}
	return "osprite"
}

// windowSize shrinks w x h to fit the screen while keeping the aspect ratio.
func windowSize(w, h float64) (float64, float64) {
	if w > maxScreenX || h > maxScreenY {
		r := getRatio(w, h)
		w, h = w*r, h*r
	}
	return math.Round(w), math.Round(h)
}

// getRatio returns the scale factor fitting w x h inside the screen.
func getRatio(w, h float64) float64 {
	return math.Min(maxScreenX/w, maxScreenY/h)
}

// Run opens the window and processes its events until it is closed or the
// quit binding is pressed. The workspace is saved on exit.
func (g *Gui) Run() error {
	w := app.NewWindow(app.Title(g.window.title), app.Size(
		unit.Px(float32(g.window.w)),
		unit.Px(float32(g.window.h)),
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	unsubscribe := g.ws.Subscribe(osprite.ObserverFunc(func(e osprite.Event) {
		if e.Kind == osprite.EventStructuralChange {
			w.Option(app.Title(g.title()))
		}
	}))
	defer unsubscribe()

	for {
		select {
		case e := <-w.Events():
			switch e := e.(type) {
			case system.FrameEvent:
				g.draw(ctx, e)
			case key.Event:
				if e.State != key.Press {
					continue
				}
				if quit := g.handleKey(translateKey(e)); quit {
					g.save()
					return nil
				}
				w.Invalidate()
			case system.DestroyEvent:
				g.save()
				return e.Err
			}
		case res := <-g.pastes:
			g.applyPaste(res)
			w.Invalidate()
		}
	}
}

// draw lays out the canvas above the status bar.
func (g *Gui) draw(ctx context.Context, e system.FrameEvent) {
	g.ctx = layout.NewContext(g.ctx.Ops, e)

	paint.Fill(g.ctx.Ops, g.renderer.Options.Background.NRGBA())
	g.clipboardOps(ctx)

	layout.Flex{
		Axis: layout.Vertical,
	}.Layout(g.ctx,
		layout.Flexed(1, g.layoutCanvas),
		layout.Rigid(g.layoutStatus),
	)
	e.Frame(g.ctx.Ops)
}

// layoutCanvas handles the pointer input of the previous frame and paints
// the active session, rendering it again only when it changed.
func (g *Gui) layoutCanvas(gtx C) D {
	size := gtx.Constraints.Max
	s := g.ws.Active()
	if s == nil {
		return D{Size: size}
	}
	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()

	for _, ev := range gtx.Events(&g.canvasTag) {
		g.handlePointer(s, ev)
	}
	g.addPointerInput(gtx.Ops)

	if d := s.Display(); d.Width != float64(size.X) || d.Height != float64(size.Y) {
		s.SetViewport(0, 0, float64(size.X), float64(size.Y))
	}
	if g.frame == nil || g.frame.Bounds().Size() != size {
		g.frame = image.NewNRGBA(image.Rectangle{Max: size})
		g.rendered = ""
	}
	if s.ShouldRender() || g.rendered != s.ID {
		g.renderer.Render(s, g.frame)
		g.imageOp = paint.NewImageOp(g.frame)
		g.rendered = s.ID
	}
	g.imageOp.Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)

	return D{Size: size}
}

func (g *Gui) save() {
	if err := g.ws.Save(); err != nil {
		osprite.Logger().Error("save on exit failed", "error", err)
	}
}

// setStatus shows msg in the status bar.
func (g *Gui) setStatus(msg string) {
	g.status.msg, g.status.err = msg, false
}

// fail reports err in the status bar and the log.
func (g *Gui) fail(err error) {
	osprite.Logger().Warn("editor operation failed", "error", err)
	g.status.msg, g.status.err = err.Error(), true
}
