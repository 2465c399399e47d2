package osprite

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/egtoney/osprite/imop"
	"github.com/egtoney/osprite/utils"
)

// Tool identifies the active brush.
type Tool int

const (
	ToolSelect Tool = iota
	ToolPencil
	ToolEraser
	ToolDropper
	ToolZoom
	ToolPan
)

var toolNames = map[Tool]string{
	ToolSelect:  "select",
	ToolPencil:  "pencil",
	ToolEraser:  "eraser",
	ToolDropper: "dropper",
	ToolZoom:    "zoom",
	ToolPan:     "pan",
}

func (t Tool) String() string {
	if name, ok := toolNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tool(%d)", int(t))
}

// ParseTool returns the tool with the given name.
func ParseTool(name string) (Tool, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range toolNames {
		if n == name {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", name)
}

// Shape is the footprint of the pencil and the eraser.
type Shape int

const (
	ShapeSquare Shape = iota
	ShapeCircle
)

func (s Shape) String() string {
	if s == ShapeCircle {
		return "circle"
	}
	return "square"
}

// ParseShape returns the shape with the given name.
func ParseShape(name string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "square":
		return ShapeSquare, nil
	case "circle":
		return ShapeCircle, nil
	}
	return 0, fmt.Errorf("unknown brush shape %q", name)
}

// Button is the virtual brush button: primary paints with the primary color.
type Button int

const (
	ButtonPrimary Button = iota
	ButtonSecondary
)

// Trigger is the phase of a gesture a tool is invoked for.
type Trigger int

const (
	TriggerStart Trigger = iota
	TriggerMove
	TriggerEnd
)

// PencilOptions configure the pencil and eraser footprint.
type PencilOptions struct {
	Shape        Shape
	Size         int
	PixelPerfect bool
	// Blend is how the pencil combines its color with the pixels under it.
	// The empty mode means imop.Pencil.
	Blend imop.Blend
}

func (p PencilOptions) normalize() PencilOptions {
	if p.Size < 1 {
		p.Size = 1
	}
	if p.Blend.Mode == "" {
		p.Blend.Mode = imop.Pencil
	}
	return p
}

// Press tracks the gesture in flight, positions are viewport relative.
type Press struct {
	Pressed bool
	Start   Vec2
	Current Vec2
}

// ToolState is the scratch state a tool keeps between the triggers of one gesture.
type ToolState interface {
	Tool() Tool
}

// PencilState remembers the pixels painted during a stroke.
type PencilState struct {
	painted map[image.Point]struct{}
	trail   []trailPoint
}

type trailPoint struct {
	p   image.Point
	old [4]uint8
}

func (*PencilState) Tool() Tool { return ToolPencil }

// EraserState remembers the pixels erased during a stroke.
type EraserState struct {
	erased map[image.Point]struct{}
}

func (*EraserState) Tool() Tool { return ToolEraser }

// PanState is the view offset and cursor captured when a pan starts.
type PanState struct {
	Baseline Vec2
	Cursor   Vec2
}

func (*PanState) Tool() Tool { return ToolPan }

// BrushState is the tool configuration and the gesture being performed.
type BrushState struct {
	Tool   Tool
	Button Button
	Pencil PencilOptions
	Press  Press
	State  ToolState
}

// brushShape returns the offsets painted around the cursor pixel.
func (b *BrushState) brushShape() []image.Point {
	size := utils.Max(b.Pencil.Size, 1)
	lo := -int(math.Floor(float64(size) / 2))

	pts := make([]image.Point, 0, size*size)
	switch b.Pencil.Shape {
	case ShapeCircle:
		c := float64(lo) + float64(size-1)/2
		r2 := float64(size*size)/4 - float64(size)/4
		for y := lo; y < lo+size; y++ {
			for x := lo; x < lo+size; x++ {
				dx, dy := float64(x)-c, float64(y)-c
				if dx*dx+dy*dy <= r2 {
					pts = append(pts, image.Pt(x, y))
				}
			}
		}
	default:
		for y := lo; y < lo+size; y++ {
			for x := lo; x < lo+size; x++ {
				pts = append(pts, image.Pt(x, y))
			}
		}
	}
	return pts
}

// MouseButton maps a pointer button index onto a brush button:
// 0 is primary, 2 is secondary and anything else keeps current.
func MouseButton(index int, current Button) Button {
	switch index {
	case 0:
		return ButtonPrimary
	case 2:
		return ButtonSecondary
	}
	return current
}

// HandleCursorStart begins a gesture at the raw screen position (x, y).
// A start while a gesture is already in flight is ignored.
func (s *Session) HandleCursorStart(x, y float64, button Button) error {
	defer s.flush()
	if s.brush.Press.Pressed {
		return nil
	}
	s.cursor = s.display.ToViewport(Vec2{x, y})

	if err := s.history.Start(); err != nil {
		return fmt.Errorf("cursor start: %w", err)
	}

	s.brush.Press = Press{Pressed: true, Start: s.cursor, Current: s.cursor}
	s.brush.Button = button
	s.brush.State = nil

	if err := s.useBrush(TriggerStart); err != nil {
		s.abortGesture()
		return fmt.Errorf("cursor start: %w", err)
	}
	s.emit(EventDirty)
	return nil
}

// HandleCursorMove moves the cursor to the raw screen position (x, y).
// While pressed, every intermediate screen pixel is visited so fast
// motion does not leave gaps.
func (s *Session) HandleCursorMove(x, y float64) error {
	defer s.flush()
	next := s.display.ToViewport(Vec2{x, y})

	if !s.brush.Press.Pressed {
		if s.display.ToImage(s.pointer(next)) != s.ImageCursor() {
			s.emit(EventDirty)
		}
		s.cursor = next
		return nil
	}

	prev := s.cursor
	d := next.Sub(prev)
	steps := int(math.Max(math.Abs(d.X), math.Abs(d.Y)))

	for step := 1; step <= steps; step++ {
		s.cursor = prev.Add(d.Mul(float64(step) / float64(steps)))
		s.brush.Press.Current = s.cursor
		if err := s.useBrush(TriggerMove); err != nil {
			s.abortGesture()
			return fmt.Errorf("cursor move: %w", err)
		}
	}

	s.cursor = next
	s.brush.Press.Current = next
	if err := s.useBrush(TriggerMove); err != nil {
		s.abortGesture()
		return fmt.Errorf("cursor move: %w", err)
	}
	s.emit(EventDirty)
	return nil
}

// HandleCursorEnd finishes the gesture in flight and records it in history.
func (s *Session) HandleCursorEnd() error {
	defer s.flush()
	if !s.brush.Press.Pressed {
		return nil
	}

	if err := s.useBrush(TriggerEnd); err != nil {
		s.abortGesture()
		return fmt.Errorf("cursor end: %w", err)
	}

	set, err := s.history.End()
	s.brush.Press.Pressed = false
	s.brush.State = nil
	if err != nil {
		return fmt.Errorf("cursor end: %w", err)
	}
	if set != nil {
		s.emit(EventContentChanged)
	}
	s.emit(EventDirty)
	return nil
}

// abortGesture reverts the open change set and releases the press.
func (s *Session) abortGesture() {
	s.history.Abort(s)
	s.brush.Press.Pressed = false
	s.brush.State = nil
	if s.selection != nil {
		s.selection.Translation = image.Point{}
		s.selection.Moving = false
	}
	s.emit(EventDirty)
}

// useBrush invokes the active tool with the cursor position in image space.
func (s *Session) useBrush(trigger Trigger) error {
	if trigger != TriggerStart && !s.brush.Press.Pressed {
		return nil
	}
	p := s.ImageCursor()
	switch s.brush.Tool {
	case ToolSelect:
		return useSelect(s, trigger, p)
	case ToolPencil:
		return usePencil(s, trigger, p)
	case ToolEraser:
		return useEraser(s, trigger, p)
	case ToolDropper:
		return useDropper(s, trigger, p)
	case ToolZoom:
		return useZoom(s, trigger)
	case ToolPan:
		return usePan(s, trigger)
	}
	return nil
}
