package osprite

import (
	"fmt"
	"image"

	"github.com/egtoney/osprite/imop"
	"github.com/egtoney/osprite/utils"
	"github.com/google/uuid"
)

const (
	DefaultWidth  = 128
	DefaultHeight = 128
	DefaultZoom   = 4
)

// Options configure a new session.
type Options struct {
	Name      string
	Width     int
	Height    int
	Zoom      int
	Primary   imop.RGB
	Secondary imop.RGB
	Tool      Tool
	Pencil    PencilOptions
}

// DefaultOptions returns the settings of a fresh document.
func DefaultOptions() Options {
	return Options{
		Name:      "untitled",
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Zoom:      DefaultZoom,
		Primary:   imop.Red,
		Secondary: imop.Clear,
		Tool:      ToolPencil,
		Pencil:    PencilOptions{Shape: ShapeSquare, Size: 1, Blend: imop.Blend{Mode: imop.Pencil}},
	}
}

// Session is one open document: its buffer, the live selection, the
// brush, the view transform, the two active colors and the history.
// It is not safe for concurrent use.
type Session struct {
	ID   string
	Name string

	buffer    *ImageBuffer
	selection *Selection
	brush     BrushState
	display   DisplayState
	primary   imop.RGB
	secondary imop.RGB
	history   History

	// cursor is the last pointer position relative to the viewport.
	cursor Vec2

	shouldRender bool
	pending      EventKind
	observers    []subscription
	nextSub      int
}

// NewSession creates a session holding a transparent buffer.
func NewSession(opts Options) (*Session, error) {
	buf, err := NewImageBuffer(opts.Width, opts.Height, 1)
	if err != nil {
		return nil, err
	}
	return newSession(uuid.NewString(), opts, buf), nil
}

// NewSessionFromImage creates a session whose buffer holds a copy of img.
func NewSessionFromImage(img image.Image, opts Options) (*Session, error) {
	buf, err := BufferFromImage(img)
	if err != nil {
		return nil, err
	}
	return newSession(uuid.NewString(), opts, buf), nil
}

func newSession(id string, opts Options, buf *ImageBuffer) *Session {
	if opts.Zoom == 0 {
		opts.Zoom = DefaultZoom
	}
	opts.Zoom = utils.Clamp(opts.Zoom, MinZoom, MaxZoom)
	opts.Pencil = opts.Pencil.normalize()
	s := &Session{
		ID:        id,
		Name:      opts.Name,
		buffer:    buf,
		primary:   opts.Primary,
		secondary: opts.Secondary,
		brush:     BrushState{Tool: opts.Tool, Pencil: opts.Pencil},
		display:   DisplayState{Zoom: opts.Zoom},
	}
	s.shouldRender = true
	return s
}

func (s *Session) String() string {
	return fmt.Sprintf("%s (%dx%d)", s.Name, s.buffer.Width, s.buffer.Height)
}

// Buffer returns the pixel buffer.
func (s *Session) Buffer() *ImageBuffer { return s.buffer }

// History returns the undo history.
func (s *Session) History() *History { return &s.history }

// Brush returns the brush state.
func (s *Session) Brush() BrushState { return s.brush }

// Display returns the view transform.
func (s *Session) Display() DisplayState { return s.display }

// Pressed reports whether a gesture is in flight.
func (s *Session) Pressed() bool { return s.brush.Press.Pressed }

// Cursor returns the last pointer position relative to the viewport.
func (s *Session) Cursor() Vec2 { return s.cursor }

func (s *Session) pointer(screen Vec2) Vec2 {
	return s.display.ToPointer(screen, s.buffer.Width, s.buffer.Height)
}

// ImageCursor returns the buffer pixel under the cursor.
func (s *Session) ImageCursor() image.Point {
	return s.display.ToImage(s.pointer(s.cursor))
}

// Origin returns the viewport position of the buffer's top left corner.
func (s *Session) Origin() Vec2 {
	return s.display.Origin(s.buffer.Width, s.buffer.Height)
}

// SetViewport updates the screen rectangle the session is displayed in.
func (s *Session) SetViewport(left, top, width, height float64) {
	defer s.flush()
	s.display.Resize(left, top, width, height)
	s.emit(EventDirty)
}

// UpdateZoom changes the zoom by delta steps around an optional viewport anchor.
func (s *Session) UpdateZoom(delta int, anchor *Vec2) {
	defer s.flush()
	s.display.UpdateZoom(delta, anchor)
	s.emit(EventDirty)
}

// Pan shifts the view by d screen pixels.
func (s *Session) Pan(d Vec2) {
	defer s.flush()
	s.display.DX += d.X
	s.display.DY += d.Y
	s.emit(EventDirty)
}

// Tool returns the active tool.
func (s *Session) Tool() Tool { return s.brush.Tool }

// SetTool selects the active tool. It is ignored while a gesture is in flight.
func (s *Session) SetTool(t Tool) {
	defer s.flush()
	if s.brush.Press.Pressed {
		return
	}
	s.brush.Tool = t
	s.emit(EventDirty)
}

// SetPencil updates the pencil footprint.
func (s *Session) SetPencil(opts PencilOptions) {
	defer s.flush()
	s.brush.Pencil = opts.normalize()
	s.emit(EventDirty)
}

// Primary returns the primary color.
func (s *Session) Primary() imop.RGB { return s.primary }

// Secondary returns the secondary color.
func (s *Session) Secondary() imop.RGB { return s.secondary }

// SetPrimary sets the primary color from any representation.
func (s *Session) SetPrimary(c imop.Color) {
	defer s.flush()
	s.primary = c.ToRGB()
	s.emit(EventDirty)
}

// SetSecondary sets the secondary color from any representation.
func (s *Session) SetSecondary(c imop.Color) {
	defer s.flush()
	s.secondary = c.ToRGB()
	s.emit(EventDirty)
}

// SwapColors exchanges the primary and secondary colors.
func (s *Session) SwapColors() {
	defer s.flush()
	s.primary, s.secondary = s.secondary, s.primary
	s.emit(EventDirty)
}

// CurrentColor returns the color of the button driving the gesture.
func (s *Session) CurrentColor() imop.RGB {
	if s.brush.Button == ButtonSecondary {
		return s.secondary
	}
	return s.primary
}

// ShouldRender reports whether something changed since the last MarkRendered.
func (s *Session) ShouldRender() bool { return s.shouldRender }

// MarkRendered clears the render flag.
func (s *Session) MarkRendered() { s.shouldRender = false }

// Undo reverts the last change set. It does nothing during a gesture.
func (s *Session) Undo() error {
	defer s.flush()
	if s.brush.Press.Pressed || !s.history.CanUndo() {
		return nil
	}
	if err := s.history.Undo(s); err != nil {
		return fmt.Errorf("undo: %w", err)
	}
	s.emit(EventContentChanged)
	return nil
}

// Redo reapplies the last undone change set. It does nothing during a gesture.
func (s *Session) Redo() error {
	defer s.flush()
	if s.brush.Press.Pressed || !s.history.CanRedo() {
		return nil
	}
	if err := s.history.Redo(s); err != nil {
		return fmt.Errorf("redo: %w", err)
	}
	s.emit(EventContentChanged)
	return nil
}

// record runs fn inside its own change set, the way keyboard and clipboard
// actions are recorded. It is refused during a gesture.
func (s *Session) record(fn func() error) error {
	if s.brush.Press.Pressed {
		return nil
	}
	if err := s.history.Start(); err != nil {
		return err
	}
	if err := fn(); err != nil {
		s.history.Abort(s)
		return err
	}
	set, err := s.history.End()
	if err != nil {
		return err
	}
	if set != nil {
		s.emit(EventContentChanged)
	}
	return nil
}

// NudgeSelection moves the selection by d pixels as an undoable step.
// Consecutive nudges collapse into one undo step.
func (s *Session) NudgeSelection(d image.Point) error {
	defer s.flush()
	if s.selection == nil || d == (image.Point{}) {
		return nil
	}
	return s.record(func() error {
		old := s.selection.Points.Clone()
		moved := old.Translate(d)
		s.selection.move(moved)
		s.emit(EventSelectionChanged)
		return s.history.PushSelectionTransform(moved, old)
	})
}

// DeleteSelection discards the selection and the pixels it holds.
func (s *Session) DeleteSelection() error {
	defer s.flush()
	if s.selection == nil {
		return nil
	}
	return s.record(s.discardSelection)
}

// CommitSelection writes the selection back into the buffer and removes it.
func (s *Session) CommitSelection() error {
	defer s.flush()
	if s.selection == nil {
		return nil
	}
	return s.record(func() error {
		return s.replaceSelection(func(PixelRecorder) *Selection { return nil })
	})
}

// SelectAll commits any selection and lifts the whole buffer.
func (s *Session) SelectAll() error {
	defer s.flush()
	return s.record(func() error {
		points := RectPolygon(image.Point{}, image.Pt(s.buffer.Width, s.buffer.Height))
		return s.replaceSelection(func(rec PixelRecorder) *Selection {
			if !s.startSelection(points, rec) {
				return nil
			}
			return s.selection
		})
	})
}

// Image flattens the session into an image: the buffer with the
// selection placed at its current location.
func (s *Session) Image() *image.NRGBA {
	img := s.buffer.Image(0)
	if sel := s.selection; sel != nil && sel.Data != nil {
		op := imop.InitOp()
		op.Set(imop.Copy)
		op.Draw(img, sel.Data.NRGBA(), sel.Placement().Min)
	}
	return img
}
