package gui

import (
	"context"
	"errors"
	"fmt"
	"image"

	"gioui.org/io/clipboard"
	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/op"
	"github.com/egtoney/osprite"
	"github.com/egtoney/osprite/utils"
)

const maxBrushSize = 64

// keyNames maps gio key names onto the names osprite.Session.HandleKey expects.
var keyNames = map[string]string{
	key.NameLeftArrow:      osprite.KeyLeft,
	key.NameRightArrow:     osprite.KeyRight,
	key.NameUpArrow:        osprite.KeyUp,
	key.NameDownArrow:      osprite.KeyDown,
	key.NameDeleteForward:  osprite.KeyDelete,
	key.NameDeleteBackward: osprite.KeyBackspace,
	key.NameEscape:         osprite.KeyEscape,
	key.NameTab:            "Tab",
}

func translateKey(e key.Event) osprite.KeyEvent {
	name := e.Name
	if n, ok := keyNames[name]; ok {
		name = n
	}
	return osprite.KeyEvent{
		Name:  name,
		Ctrl:  e.Modifiers.Contain(key.ModCtrl),
		Meta:  e.Modifiers.Contain(key.ModCommand),
		Shift: e.Modifiers.Contain(key.ModShift),
	}
}

type action int

const (
	actionNone action = iota
	actionQuit
	actionTool
	actionSwapColors
	actionZoomIn
	actionZoomOut
	actionBrushGrow
	actionBrushShrink
	actionCopy
	actionCut
	actionPaste
	actionSave
	actionNewSession
	actionCloseSession
	actionNextSession
	actionPrevSession
)

type binding struct {
	action action
	tool   osprite.Tool
}

var toolKeys = map[string]osprite.Tool{
	"M": osprite.ToolSelect,
	"P": osprite.ToolPencil,
	"E": osprite.ToolEraser,
	"I": osprite.ToolDropper,
	"Z": osprite.ToolZoom,
	"H": osprite.ToolPan,
}

var plainKeys = map[string]action{
	"X":               actionSwapColors,
	"+":               actionZoomIn,
	"=":               actionZoomIn,
	"-":               actionZoomOut,
	"]":               actionBrushGrow,
	"[":               actionBrushShrink,
	osprite.KeyEscape: actionQuit,
}

var shortcutKeys = map[string]action{
	"C": actionCopy,
	"X": actionCut,
	"V": actionPaste,
	"S": actionSave,
	"N": actionNewSession,
	"W": actionCloseSession,
	"Q": actionQuit,
}

// bindingFor returns the editor level binding of a key the session did not consume.
func bindingFor(k osprite.KeyEvent) binding {
	if k.InTextInput {
		return binding{}
	}
	if k.Ctrl || k.Meta {
		if k.Name == "Tab" {
			if k.Shift {
				return binding{action: actionPrevSession}
			}
			return binding{action: actionNextSession}
		}
		return binding{action: shortcutKeys[k.Name]}
	}
	if t, ok := toolKeys[k.Name]; ok {
		return binding{action: actionTool, tool: t}
	}
	return binding{action: plainKeys[k.Name]}
}

// handleKey offers k to the active session first and then to the editor
// bindings. Keys are ignored while a gesture is in flight. It reports
// whether the window should close.
func (g *Gui) handleKey(k osprite.KeyEvent) (quit bool) {
	s := g.ws.Active()
	if s != nil {
		if s.Pressed() {
			return false
		}
		consumed, err := s.HandleKey(k)
		if err != nil {
			g.fail(err)
		}
		if consumed {
			return false
		}
	}

	b := bindingFor(k)
	switch b.action {
	case actionQuit:
		return true
	case actionNewSession:
		if _, err := g.ws.Open(g.defaults); err != nil {
			g.fail(err)
		}
		return false
	case actionSave:
		if err := g.ws.Save(); err != nil {
			g.fail(err)
			return false
		}
		g.setStatus("workspace saved")
		return false
	case actionNextSession, actionPrevSession:
		g.cycleSession(b.action == actionNextSession)
		return false
	}
	if s == nil {
		return false
	}

	switch b.action {
	case actionTool:
		s.SetTool(b.tool)
	case actionSwapColors:
		s.SwapColors()
	case actionZoomIn:
		s.UpdateZoom(1, nil)
	case actionZoomOut:
		s.UpdateZoom(-1, nil)
	case actionBrushGrow, actionBrushShrink:
		p := s.Brush().Pencil
		if b.action == actionBrushGrow {
			p.Size++
		} else {
			p.Size--
		}
		p.Size = utils.Clamp(p.Size, 1, maxBrushSize)
		s.SetPencil(p)
	case actionCopy:
		g.copySelection(s.Copy())
	case actionCut:
		data, err := s.Cut()
		if err != nil {
			g.fail(err)
			break
		}
		g.copySelection(data)
	case actionPaste:
		g.clipRead = true
		g.pending = &pendingPaste{session: s, ticket: s.BeginPaste()}
	case actionCloseSession:
		if err := g.ws.Close(s.ID); err != nil {
			g.fail(err)
		}
	}
	return false
}

func (g *Gui) cycleSession(forward bool) {
	sessions := g.ws.Sessions()
	active := g.ws.Active()
	if len(sessions) < 2 || active == nil {
		return
	}
	i := 0
	for j, s := range sessions {
		if s.ID == active.ID {
			i = j
		}
	}
	if forward {
		i = (i + 1) % len(sessions)
	} else {
		i = (i - 1 + len(sessions)) % len(sessions)
	}
	if err := g.ws.SetActive(sessions[i].ID); err != nil {
		g.fail(err)
	}
}

// copySelection queues the selection for the system clipboard as a png data URL.
func (g *Gui) copySelection(data *osprite.PixelSlice) {
	if data == nil {
		return
	}
	text, err := osprite.EncodeDataURL(data)
	if err != nil {
		g.fail(err)
		return
	}
	g.clipWrite = &text
	g.setStatus(fmt.Sprintf("copied %dx%d", data.Width, data.Height))
}

// clipboardOps delivers clipboard contents requested in the previous frame
// and issues the pending clipboard requests.
func (g *Gui) clipboardOps(ctx context.Context) {
	for _, ev := range g.ctx.Events(&g.pasteTag) {
		ce, ok := ev.(clipboard.Event)
		if !ok {
			continue
		}
		g.deliverPaste(ctx, ce.Text)
	}
	if g.clipWrite != nil {
		clipboard.WriteOp{Text: *g.clipWrite}.Add(g.ctx.Ops)
		g.clipWrite = nil
	}
	if g.clipRead {
		clipboard.ReadOp{Tag: &g.pasteTag}.Add(g.ctx.Ops)
		g.clipRead = false
	}
}

// deliverPaste decodes the clipboard text of the pending paste off the event
// loop. Run applies the result, which the session rejects when its history
// moved on since the paste was requested. Text arriving without a request is
// dropped.
func (g *Gui) deliverPaste(ctx context.Context, text string) {
	p := g.pending
	if p == nil {
		return
	}
	g.pending = nil
	go func() {
		data, err := osprite.DecodeClipboardText(ctx, text)
		select {
		case g.pastes <- pasteResult{session: p.session, ticket: p.ticket, data: data, err: err}:
		case <-ctx.Done():
		}
	}()
}

func (g *Gui) applyPaste(res pasteResult) {
	if res.err != nil {
		g.fail(fmt.Errorf("paste: %w", res.err))
		return
	}
	if err := res.session.ApplyPaste(res.ticket, res.data); err != nil {
		if errors.Is(err, osprite.ErrStalePaste) {
			osprite.Logger().Debug("stale paste dropped", "session", res.session.ID)
			return
		}
		g.fail(fmt.Errorf("paste: %w", err))
		return
	}
	g.setStatus(fmt.Sprintf("pasted %dx%d", res.data.Width, res.data.Height))
}

func (g *Gui) addPointerInput(ops *op.Ops) {
	pointer.InputOp{
		Tag:   &g.canvasTag,
		Types: pointer.Press | pointer.Drag | pointer.Release | pointer.Move | pointer.Scroll,
		ScrollBounds: image.Rectangle{
			Min: image.Pt(0, -100),
			Max: image.Pt(0, 100),
		},
	}.Add(ops)
}

// pressButton maps the pressed mouse buttons onto a brush button.
func pressButton(b pointer.Buttons) (osprite.Button, bool) {
	switch {
	case b.Contain(pointer.ButtonPrimary):
		return osprite.ButtonPrimary, true
	case b.Contain(pointer.ButtonSecondary):
		return osprite.ButtonSecondary, true
	}
	return 0, false
}

// zoomDelta turns a scroll amount into a zoom step; scrolling up zooms in.
func zoomDelta(scroll float32) int {
	switch {
	case scroll < 0:
		return 1
	case scroll > 0:
		return -1
	}
	return 0
}

func (g *Gui) handlePointer(s *osprite.Session, ev event.Event) {
	e, ok := ev.(pointer.Event)
	if !ok {
		return
	}
	x, y := float64(e.Position.X), float64(e.Position.Y)

	var err error
	switch e.Type {
	case pointer.Press:
		if btn, ok := pressButton(e.Buttons); ok {
			err = s.HandleCursorStart(x, y, btn)
		}
	case pointer.Drag, pointer.Move:
		err = s.HandleCursorMove(x, y)
	case pointer.Release, pointer.Cancel:
		err = s.HandleCursorEnd()
	case pointer.Scroll:
		if d := zoomDelta(e.Scroll.Y); d != 0 {
			s.UpdateZoom(d, &osprite.Vec2{X: x, Y: y})
		}
	}
	if err != nil {
		g.fail(err)
	}
}
