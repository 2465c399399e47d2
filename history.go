package osprite

import (
	"errors"
	"fmt"
)

var (
	// ErrChangeSetOpen is returned when a change set is started while another one is open.
	ErrChangeSetOpen = errors.New("change set already open")
	// ErrNoChangeSet is returned when pushing into history without an open change set.
	ErrNoChangeSet = errors.New("no open change set")
	// ErrChangeSetType is returned when an entry does not match the type of the open change set.
	ErrChangeSetType = errors.New("change set type mismatch")
	// ErrNoSelection is returned when a selection transform is replayed without a live selection.
	ErrNoSelection = errors.New("no active selection")
)

// ChangeType tags the payload of a change set.
type ChangeType int

const (
	ChangeNone ChangeType = iota
	ChangePixel
	ChangeSelection
	ChangeSelectionTransform
)

func (t ChangeType) String() string {
	switch t {
	case ChangePixel:
		return "PIXEL"
	case ChangeSelection:
		return "SELECTION"
	case ChangeSelectionTransform:
		return "SELECTION_TRANSFORM"
	}
	return "NONE"
}

type pixelKey struct{ layer, x, y int }

// PixelDiff is an ordered list of pixel writes with at most one entry per
// pixel: repeated writes keep the first old color and the last new one.
type PixelDiff struct {
	Changes []PixelChange
	index   map[pixelKey]int
}

func (d *PixelDiff) add(c PixelChange) {
	if d.index == nil {
		d.index = make(map[pixelKey]int)
	}
	k := pixelKey{c.Layer, c.X, c.Y}
	if i, ok := d.index[k]; ok {
		d.Changes[i].New = c.New
		return
	}
	d.index[k] = len(d.Changes)
	d.Changes = append(d.Changes, c)
}

// prune drops the entries whose final color equals the original one.
func (d *PixelDiff) prune() {
	kept := d.Changes[:0]
	for _, c := range d.Changes {
		if c.New != c.Old {
			kept = append(kept, c)
		}
	}
	d.Changes = kept
	d.index = nil
}

func (d *PixelDiff) Len() int { return len(d.Changes) }

// SelectionChange records the creation or removal of a selection together with
// every pixel written while doing so. Points is nil when the selection was
// cleared. OldPoints is nil when no selection existed before.
type SelectionChange struct {
	Points    Polygon
	Data      *PixelSlice
	OldPoints Polygon
	OldData   *PixelSlice
	Pixels    PixelDiff
}

// SelectionTransform records a move of the live selection.
type SelectionTransform struct {
	Points    Polygon
	OldPoints Polygon
}

// ChangeSet is one undoable unit. Its payload is one of *PixelDiff,
// *SelectionChange or *SelectionTransform and fixes its type.
type ChangeSet struct {
	payload  any
	complete bool
}

// Type returns the type of the change set, ChangeNone while it is still empty.
func (c *ChangeSet) Type() ChangeType {
	switch c.payload.(type) {
	case *PixelDiff:
		return ChangePixel
	case *SelectionChange:
		return ChangeSelection
	case *SelectionTransform:
		return ChangeSelectionTransform
	}
	return ChangeNone
}

// Complete reports whether the change set was closed.
func (c *ChangeSet) Complete() bool { return c.complete }

// Pixels returns the pixel writes carried by the change set, if any.
func (c *ChangeSet) Pixels() *PixelDiff {
	switch p := c.payload.(type) {
	case *PixelDiff:
		return p
	case *SelectionChange:
		return &p.Pixels
	}
	return nil
}

// Selection returns the selection payload or nil.
func (c *ChangeSet) Selection() *SelectionChange {
	p, _ := c.payload.(*SelectionChange)
	return p
}

// Transform returns the transform payload or nil.
func (c *ChangeSet) Transform() *SelectionTransform {
	p, _ := c.payload.(*SelectionTransform)
	return p
}

// empty reports whether the change set has no effect for its type.
func (c *ChangeSet) empty() bool {
	switch p := c.payload.(type) {
	case *PixelDiff:
		return p.Len() == 0
	case *SelectionChange:
		return p.Points == nil && p.OldPoints == nil && p.Pixels.Len() == 0
	case *SelectionTransform:
		return p.Points.Equal(p.OldPoints)
	}
	return true
}

// History holds the undo and redo stacks and the change set being recorded.
type History struct {
	undo  []*ChangeSet
	redo  []*ChangeSet
	open  *ChangeSet
	epoch uint64
}

// Start opens a new change set and truncates the redo stack.
func (h *History) Start() error {
	if h.open != nil {
		return ErrChangeSetOpen
	}
	h.open = &ChangeSet{}
	h.redo = h.redo[:0]
	h.epoch++
	Logger().Debug("change set started", "epoch", h.epoch)
	return nil
}

// Open reports whether a change set is being recorded.
func (h *History) Open() bool { return h.open != nil }

// Epoch counts the change sets opened so far.
func (h *History) Epoch() uint64 { return h.epoch }

// PushChange appends a pixel write to the open change set.
func (h *History) PushChange(c PixelChange) error {
	if h.open == nil {
		return ErrNoChangeSet
	}
	switch p := h.open.payload.(type) {
	case nil:
		d := &PixelDiff{}
		d.add(c)
		h.open.payload = d
	case *PixelDiff:
		p.add(c)
	case *SelectionChange:
		p.Pixels.add(c)
	default:
		return fmt.Errorf("%w: pixel change into %v", ErrChangeSetType, h.open.Type())
	}
	return nil
}

// recorder returns a PixelRecorder logging into the open change set.
// The first error is kept in *err.
func (h *History) recorder(err *error) PixelRecorder {
	return func(c PixelChange) {
		if e := h.PushChange(c); e != nil && *err == nil {
			*err = e
		}
	}
}

// PushSelection records a selection creation or clear. A change set holding
// only pixel writes is promoted to a selection change set keeping them.
func (h *History) PushSelection(sc SelectionChange) error {
	if h.open == nil {
		return ErrNoChangeSet
	}
	switch p := h.open.payload.(type) {
	case nil:
		h.open.payload = &sc
	case *PixelDiff:
		sc.Pixels = *p
		h.open.payload = &sc
	case *SelectionChange:
		p.Points, p.Data = sc.Points, sc.Data
	default:
		return fmt.Errorf("%w: selection into %v", ErrChangeSetType, h.open.Type())
	}
	return nil
}

// PushSelectionTransform records a move of the live selection. Consecutive
// transforms coalesce into one undo step keeping the oldest points.
func (h *History) PushSelectionTransform(points, oldPoints Polygon) error {
	if h.open == nil {
		return ErrNoChangeSet
	}
	switch p := h.open.payload.(type) {
	case nil:
		t := &SelectionTransform{Points: points.Clone(), OldPoints: oldPoints.Clone()}
		if n := len(h.undo); n > 0 {
			if prev := h.undo[n-1].Transform(); prev != nil && prev.Points.Equal(oldPoints) {
				t.OldPoints = prev.OldPoints
				h.undo = h.undo[:n-1]
			}
		}
		h.open.payload = t
	case *SelectionTransform:
		p.Points = points.Clone()
	default:
		return fmt.Errorf("%w: selection transform into %v", ErrChangeSetType, h.open.Type())
	}
	return nil
}

// End closes the open change set. Change sets without effect are dropped.
// The kept change set is returned, nil otherwise.
func (h *History) End() (*ChangeSet, error) {
	if h.open == nil {
		return nil, ErrNoChangeSet
	}
	set := h.open
	h.open = nil
	set.complete = true

	if px := set.Pixels(); px != nil {
		px.prune()
	}
	if set.empty() {
		Logger().Debug("change set discarded", "epoch", h.epoch, "type", set.Type())
		return nil, nil
	}
	h.undo = append(h.undo, set)
	Logger().Debug("change set committed", "epoch", h.epoch, "type", set.Type(), "undo", len(h.undo))
	return set, nil
}

// CanUndo reports whether Undo has something to revert.
func (h *History) CanUndo() bool { return h.open == nil && len(h.undo) > 0 }

// CanRedo reports whether Redo has something to reapply.
func (h *History) CanRedo() bool { return h.open == nil && len(h.redo) > 0 }

// UndoLen returns the number of committed change sets.
func (h *History) UndoLen() int { return len(h.undo) }

// RedoLen returns the number of undone change sets.
func (h *History) RedoLen() int { return len(h.redo) }

// Peek returns the most recent committed change set, or nil.
func (h *History) Peek() *ChangeSet {
	if len(h.undo) == 0 {
		return nil
	}
	return h.undo[len(h.undo)-1]
}

// Abort drops the open change set after reverting what it recorded.
func (h *History) Abort(s *Session) {
	if h.open == nil {
		return
	}
	set := h.open
	h.open = nil
	if set.payload != nil {
		if px := set.Pixels(); px != nil {
			px.prune()
		}
		if err := revert(s, set); err != nil {
			Logger().Warn("abort could not revert change set", "error", err)
		}
	}
	Logger().Warn("change set aborted", "epoch", h.epoch, "type", set.Type())
}

// Undo reverts the most recent change set. It does nothing while a change set
// is open or when there is nothing to undo.
func (h *History) Undo(s *Session) error {
	if !h.CanUndo() {
		return nil
	}
	set := h.undo[len(h.undo)-1]
	if err := revert(s, set); err != nil {
		return err
	}
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, set)
	return nil
}

// Redo reapplies the most recently undone change set.
func (h *History) Redo(s *Session) error {
	if !h.CanRedo() {
		return nil
	}
	set := h.redo[len(h.redo)-1]
	if err := apply(s, set); err != nil {
		return err
	}
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, set)
	return nil
}

func revertPixels(s *Session, d *PixelDiff) {
	for i := len(d.Changes) - 1; i >= 0; i-- {
		c := d.Changes[i]
		s.buffer.writePixel(c.Layer, c.X, c.Y, c.Old)
	}
}

func applyPixels(s *Session, d *PixelDiff) {
	for _, c := range d.Changes {
		s.buffer.writePixel(c.Layer, c.X, c.Y, c.New)
	}
}

// revert undoes the effect of set on the session.
func revert(s *Session, set *ChangeSet) error {
	switch p := set.payload.(type) {
	case *PixelDiff:
		revertPixels(s, p)
	case *SelectionChange:
		s.selection = nil
		revertPixels(s, &p.Pixels)
		if p.OldPoints != nil {
			s.selection = newSelection(p.OldPoints, p.OldData)
		}
		s.emit(EventSelectionChanged)
	case *SelectionTransform:
		if s.selection == nil {
			return ErrNoSelection
		}
		s.selection.move(p.OldPoints)
		s.emit(EventSelectionChanged)
	}
	return nil
}

// apply replays the effect of set on the session.
func apply(s *Session, set *ChangeSet) error {
	switch p := set.payload.(type) {
	case *PixelDiff:
		applyPixels(s, p)
	case *SelectionChange:
		s.selection = nil
		applyPixels(s, &p.Pixels)
		if p.Points != nil {
			s.selection = newSelection(p.Points, p.Data)
		}
		s.emit(EventSelectionChanged)
	case *SelectionTransform:
		if s.selection == nil {
			return ErrNoSelection
		}
		s.selection.move(p.Points)
		s.emit(EventSelectionChanged)
	}
	return nil
}
