package osprite

import (
	"image"

	"github.com/egtoney/osprite/imop"
	"github.com/egtoney/osprite/utils"
)

// paint writes c at (x, y) of layer 0 and logs the write into the open change set.
func (s *Session) paint(x, y int, c imop.RGB, mode imop.BlendMode) error {
	old, written, ok := s.buffer.SetPixel(0, x, y, c, mode)
	if !ok || written == old {
		return nil
	}
	return s.history.PushChange(PixelChange{Layer: 0, X: x, Y: y, New: written, Old: old})
}

func usePencil(s *Session, _ Trigger, p image.Point) error {
	if !s.buffer.InImage(p.X, p.Y) {
		return nil
	}
	st, ok := s.brush.State.(*PencilState)
	if !ok {
		st = &PencilState{painted: make(map[image.Point]struct{})}
		s.brush.State = st
	}
	c := s.CurrentColor()

	for _, off := range s.brush.brushShape() {
		pt := p.Add(off)
		if _, done := st.painted[pt]; done {
			continue
		}
		st.painted[pt] = struct{}{}

		before, _ := s.buffer.GetPixel(0, pt.X, pt.Y)
		if err := s.paint(pt.X, pt.Y, c, s.brush.Pencil.Blend.Get()); err != nil {
			return err
		}
		if s.brush.Pencil.PixelPerfect && s.brush.Pencil.Size <= 1 {
			if err := s.pixelPerfect(st, trailPoint{p: pt, old: [4]uint8{before.R, before.G, before.B, before.A}}); err != nil {
				return err
			}
		}
	}
	return nil
}

// pixelPerfect removes the elbow pixel of an L shaped turn so one pixel
// wide strokes stay one pixel thin.
func (s *Session) pixelPerfect(st *PencilState, tp trailPoint) error {
	st.trail = append(st.trail, tp)
	if len(st.trail) < 3 {
		return nil
	}
	a, b, c := st.trail[len(st.trail)-3], st.trail[len(st.trail)-2], st.trail[len(st.trail)-1]

	adjacent := func(p, q image.Point) bool {
		d := p.Sub(q)
		return utils.Abs(d.X)+utils.Abs(d.Y) == 1
	}
	diagonal := func(p, q image.Point) bool {
		d := p.Sub(q)
		return utils.Abs(d.X) == 1 && utils.Abs(d.Y) == 1
	}

	if adjacent(a.p, b.p) && adjacent(b.p, c.p) && diagonal(a.p, c.p) {
		restore := imop.RGB{R: b.old[0], G: b.old[1], B: b.old[2], A: b.old[3]}
		if old, ok := s.buffer.writePixel(0, b.p.X, b.p.Y, restore); ok {
			if err := s.history.PushChange(PixelChange{Layer: 0, X: b.p.X, Y: b.p.Y, New: restore, Old: old}); err != nil {
				return err
			}
		}
		delete(st.painted, b.p)
		st.trail = append(st.trail[:len(st.trail)-2], c)
	}
	if len(st.trail) > 3 {
		st.trail = st.trail[len(st.trail)-3:]
	}
	return nil
}

func useEraser(s *Session, _ Trigger, p image.Point) error {
	if !s.buffer.InImage(p.X, p.Y) {
		return nil
	}
	st, ok := s.brush.State.(*EraserState)
	if !ok {
		st = &EraserState{erased: make(map[image.Point]struct{})}
		s.brush.State = st
	}
	for _, off := range s.brush.brushShape() {
		pt := p.Add(off)
		if _, done := st.erased[pt]; done {
			continue
		}
		st.erased[pt] = struct{}{}
		if err := s.paint(pt.X, pt.Y, imop.Clear, imop.Replace); err != nil {
			return err
		}
	}
	return nil
}

func useDropper(s *Session, trigger Trigger, p image.Point) error {
	if trigger != TriggerStart {
		return nil
	}
	c, ok := s.buffer.GetPixel(0, p.X, p.Y)
	if !ok {
		return nil
	}
	if s.brush.Button == ButtonSecondary {
		s.secondary = c
	} else {
		s.primary = c
	}
	s.emit(EventDirty)
	return nil
}

func useZoom(s *Session, trigger Trigger) error {
	if trigger != TriggerStart {
		return nil
	}
	delta := 1
	if s.brush.Button == ButtonSecondary {
		delta = -1
	}
	anchor := s.cursor
	s.display.UpdateZoom(delta, &anchor)
	s.emit(EventDirty)
	return nil
}

func usePan(s *Session, trigger Trigger) error {
	switch trigger {
	case TriggerStart:
		s.brush.State = &PanState{
			Baseline: Vec2{s.display.DX, s.display.DY},
			Cursor:   s.cursor,
		}
	case TriggerMove:
		st, ok := s.brush.State.(*PanState)
		if !ok {
			return nil
		}
		d := st.Baseline.Add(s.cursor.Sub(st.Cursor))
		s.display.DX, s.display.DY = d.X, d.Y
		s.emit(EventDirty)
	}
	return nil
}

func useSelect(s *Session, trigger Trigger, p image.Point) error {
	sel := s.selection

	switch trigger {
	case TriggerStart:
		if sel != nil && sel.Points.Contains(p) {
			sel.Moving = true
			sel.press = p
		}

	case TriggerMove:
		if sel != nil && sel.Moving {
			sel.Translation = p.Sub(sel.press)
			s.emit(EventSelectionChanged)
		}

	case TriggerEnd:
		if sel != nil && sel.Moving {
			old := sel.Points.Clone()
			moved := sel.Points.Translate(sel.Translation)
			sel.move(moved)
			s.emit(EventSelectionChanged)
			if moved.Equal(old) {
				return nil
			}
			return s.history.PushSelectionTransform(moved, old)
		}

		bounds := s.buffer.Bounds()
		clamp := func(q image.Point) image.Point {
			return image.Pt(utils.Clamp(q.X, 0, bounds.Dx()), utils.Clamp(q.Y, 0, bounds.Dy()))
		}
		start := s.display.ToImage(s.pointer(s.brush.Press.Start))
		points := RectPolygon(clamp(start), clamp(p))

		return s.replaceSelection(func(rec PixelRecorder) *Selection {
			if !s.startSelection(points, rec) {
				return nil
			}
			return s.selection
		})
	}
	return nil
}
