package osprite

import (
	"image"

	"github.com/egtoney/osprite/imop"
)

// Selection is a rectangular region lifted out of layer 0. While it exists
// the buffer area under Points is transparent and the pixels live in Data.
type Selection struct {
	Points      Polygon
	Translation image.Point
	Moving      bool
	Data        *PixelSlice

	// press is the image position where the current move started.
	press image.Point
}

func newSelection(points Polygon, data *PixelSlice) *Selection {
	return &Selection{Points: points.Clone(), Data: data.Clone()}
}

// Bounds returns the committed rectangle of the selection.
func (sel *Selection) Bounds() image.Rectangle {
	return sel.Points.Bounds()
}

// Placement returns the rectangle the selection is shown at, pending translation included.
func (sel *Selection) Placement() image.Rectangle {
	return sel.Bounds().Add(sel.Translation)
}

func (sel *Selection) move(points Polygon) {
	sel.Points = points.Clone()
	sel.Translation = image.Point{}
	sel.Moving = false
}

// Selection returns the live selection or nil.
func (s *Session) Selection() *Selection {
	return s.selection
}

// HasSelection reports whether a selection is live.
func (s *Session) HasSelection() bool {
	return s.selection != nil
}

// startSelection lifts the region outlined by points out of layer 0.
// Zero area outlines create nothing and return false.
func (s *Session) startSelection(points Polygon, rec PixelRecorder) bool {
	r := points.Bounds().Intersect(s.buffer.Bounds())
	if r.Empty() {
		return false
	}
	data := s.buffer.ExtractRegion(0, r, imop.Clear, rec)
	s.selection = &Selection{Points: points.Clone(), Data: data}
	s.emit(EventSelectionChanged)
	return true
}

// commitSelection writes the selection back into layer 0 at its
// committed location and removes it.
func (s *Session) commitSelection(rec PixelRecorder) {
	if s.selection == nil {
		return
	}
	s.buffer.InsertRegion(0, s.selection.Bounds().Min, s.selection.Data, rec)
	s.selection = nil
	s.emit(EventSelectionChanged)
}

// snapshot returns independent copies of the selection outline and pixels.
func (sel *Selection) snapshot() (Polygon, *PixelSlice) {
	if sel == nil {
		return nil, nil
	}
	return sel.Points.Clone(), sel.Data.Clone()
}

// replaceSelection commits the live selection, if any, and records a
// selection change ending with next in place. A nil next only clears.
// The caller owns the open change set.
func (s *Session) replaceSelection(next func(rec PixelRecorder) *Selection) error {
	var recErr error
	rec := s.history.recorder(&recErr)

	oldPoints, oldData := s.selection.snapshot()
	s.commitSelection(rec)

	sel := next(rec)
	if recErr != nil {
		return recErr
	}
	if sel == nil && oldPoints == nil {
		return nil
	}

	change := SelectionChange{OldPoints: oldPoints, OldData: oldData}
	if sel != nil {
		change.Points, change.Data = sel.snapshot()
	}
	return s.history.PushSelection(change)
}

// discardSelection removes the live selection without writing it back and
// records the removal. The caller owns the open change set.
func (s *Session) discardSelection() error {
	if s.selection == nil {
		return nil
	}
	oldPoints, oldData := s.selection.snapshot()
	s.selection = nil
	s.emit(EventSelectionChanged)
	return s.history.PushSelection(SelectionChange{OldPoints: oldPoints, OldData: oldData})
}

// floatSelection places detached pixels as the live selection with the
// top left corner at pt, without touching the buffer.
func (s *Session) floatSelection(data *PixelSlice, pt image.Point) *Selection {
	r := data.Bounds().Add(pt)
	s.selection = &Selection{Points: RectPolygon(r.Min, r.Max), Data: data.Clone()}
	s.emit(EventSelectionChanged)
	return s.selection
}
