package gui

import (
	"fmt"
	"strings"

	"gioui.org/layout"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
	"github.com/egtoney/osprite"
)

// statusText describes the active session followed by msg.
func statusText(s *osprite.Session, msg string) string {
	if s == nil {
		return strings.TrimSpace("no open document  " + msg)
	}
	b, p := s.Brush(), s.ImageCursor()
	parts := []string{
		s.String(),
		b.Tool.String(),
		fmt.Sprintf("%s %d", b.Pencil.Shape, b.Pencil.Size),
		fmt.Sprintf("%d%%", s.Display().Zoom*100),
		fmt.Sprintf("%d,%d", p.X, p.Y),
		s.Primary().Hex(),
	}
	if msg != "" {
		parts = append(parts, msg)
	}
	return strings.Join(parts, "  ")
}

// layoutStatus draws the status bar along the bottom of the window.
func (g *Gui) layoutStatus(gtx C) D {
	fg := statusFgColor
	if g.status.err {
		fg = errorFgColor
	}

	return layout.Stack{}.Layout(gtx,
		layout.Expanded(func(gtx C) D {
			paint.FillShape(gtx.Ops, statusBkgColor, clip.Rect{Max: gtx.Constraints.Min}.Op())
			return D{Size: gtx.Constraints.Min}
		}),
		layout.Stacked(func(gtx C) D {
			dims := layout.UniformInset(unit.Dp(4)).Layout(gtx, func(gtx C) D {
				lbl := material.Label(g.theme, unit.Sp(13), statusText(g.ws.Active(), g.status.msg))
				lbl.Color = fg
				lbl.MaxLines = 1
				return lbl.Layout(gtx)
			})
			dims.Size.X = gtx.Constraints.Max.X
			return dims
		}),
	)
}
