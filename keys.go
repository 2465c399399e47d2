package osprite

import (
	"image"
	"strings"
)

// Key names understood by HandleKey.
const (
	KeyUndo      = "Z"
	KeyRedo      = "Y"
	KeyLeft      = "ArrowLeft"
	KeyRight     = "ArrowRight"
	KeyUp        = "ArrowUp"
	KeyDown      = "ArrowDown"
	KeyDelete    = "Delete"
	KeyBackspace = "Backspace"
	KeyEscape    = "Escape"
	KeySelectAll = "A"
)

// KeyEvent is a key press together with its modifier state. InTextInput is
// set when focus is inside a text field, in which case no shortcut fires.
type KeyEvent struct {
	Name        string
	Ctrl, Meta  bool
	Shift       bool
	InTextInput bool
}

func (k KeyEvent) shortcut() bool { return k.Ctrl || k.Meta }

var nudges = map[string]image.Point{
	KeyLeft:  {-1, 0},
	KeyRight: {1, 0},
	KeyUp:    {0, -1},
	KeyDown:  {0, 1},
}

// HandleKey applies the keyboard shortcut of k. It reports whether the key
// was consumed. Shortcuts are ignored inside text inputs and during a gesture.
func (s *Session) HandleKey(k KeyEvent) (bool, error) {
	if k.InTextInput || s.brush.Press.Pressed {
		return false, nil
	}
	name := k.Name
	if len(name) == 1 {
		name = strings.ToUpper(name)
	}

	switch {
	case k.shortcut() && name == KeyUndo && k.Shift:
		return true, s.Redo()
	case k.shortcut() && name == KeyUndo:
		return true, s.Undo()
	case k.shortcut() && name == KeyRedo:
		return true, s.Redo()
	case k.shortcut() && name == KeySelectAll:
		return true, s.SelectAll()
	case k.shortcut():
		return false, nil
	}

	if d, ok := nudges[name]; ok {
		if s.selection == nil {
			return false, nil
		}
		return true, s.NudgeSelection(d)
	}

	switch name {
	case KeyDelete, KeyBackspace:
		if s.selection == nil {
			return false, nil
		}
		return true, s.DeleteSelection()
	case KeyEscape:
		if s.selection == nil {
			return false, nil
		}
		return true, s.CommitSelection()
	}
	return false, nil
}
