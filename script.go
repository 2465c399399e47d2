package osprite

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/egtoney/osprite/imop"
)

// Command is one line of a gesture script.
type Command struct {
	Line int
	Name string
	Args []string
}

// Script is a parsed list of editor gestures replayed against a session.
//
// Coordinates given to down and move are raw screen positions unless
// "coords image" was issued, after which they address buffer pixels.
type Script struct {
	Commands []Command
}

// commandArity lists the accepted number of arguments, min and max.
var commandArity = map[string][2]int{
	"viewport":     {4, 4},
	"coords":       {1, 1},
	"tool":         {1, 1},
	"color":        {1, 1},
	"secondary":    {1, 1},
	"swap":         {0, 0},
	"size":         {1, 1},
	"shape":        {1, 1},
	"pixelperfect": {1, 1},
	"blend":        {1, 1},
	"down":         {2, 3},
	"move":         {2, 2},
	"up":           {0, 0},
	"click":        {2, 3},
	"line":         {4, 5},
	"undo":         {0, 0},
	"redo":         {0, 0},
	"zoom":         {1, 1},
	"pan":          {2, 2},
	"key":          {1, 4},
	"select":       {4, 4},
	"copy":         {0, 0},
	"cut":          {0, 0},
	"paste":        {0, 0},
	"commit":       {0, 0},
}

// ParseScript reads a script, one command per line. Blank lines and lines
// starting with # are skipped.
func ParseScript(r io.Reader) (*Script, error) {
	sc := &Script{}
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Fields(text)
		name := strings.ToLower(fields[0])
		arity, ok := commandArity[name]
		if !ok {
			return nil, fmt.Errorf("line %d: unknown command %q", line, fields[0])
		}
		if n := len(fields) - 1; n < arity[0] || n > arity[1] {
			return nil, fmt.Errorf("line %d: %s expects %d to %d arguments, got %d", line, name, arity[0], arity[1], n)
		}
		sc.Commands = append(sc.Commands, Command{Line: line, Name: name, Args: fields[1:]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return sc, nil
}

// scriptRunner holds the state of one script execution.
type scriptRunner struct {
	s         *Session
	imageMode bool
	clipboard *PixelSlice
}

// Run replays the script against s. The first failing command stops the run.
func (sc *Script) Run(s *Session) error {
	r := &scriptRunner{s: s}
	for _, cmd := range sc.Commands {
		if err := r.exec(cmd); err != nil {
			return fmt.Errorf("line %d: %s: %w", cmd.Line, cmd.Name, err)
		}
	}
	if s.Pressed() {
		return s.HandleCursorEnd()
	}
	return nil
}

func floats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", a)
		}
		out[i] = v
	}
	return out, nil
}

func parseSwitch(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid switch %q", v)
}

func parseButton(args []string) (Button, error) {
	if len(args) == 0 {
		return ButtonPrimary, nil
	}
	switch strings.ToLower(args[0]) {
	case "primary", "left":
		return ButtonPrimary, nil
	case "secondary", "right":
		return ButtonSecondary, nil
	}
	return 0, fmt.Errorf("invalid button %q", args[0])
}

// screen converts script coordinates into raw screen coordinates.
func (r *scriptRunner) screen(x, y float64) Vec2 {
	if !r.imageMode {
		return Vec2{x, y}
	}
	d := r.s.display
	z := float64(d.zoom())
	p := r.s.Origin().Add(Vec2{x*z + z/2, y*z + z/2})
	return p.Add(Vec2{d.Left, d.Top})
}

func (r *scriptRunner) exec(cmd Command) error {
	s := r.s
	switch cmd.Name {
	case "viewport":
		v, err := floats(cmd.Args)
		if err != nil {
			return err
		}
		s.SetViewport(v[0], v[1], v[2], v[3])

	case "coords":
		switch strings.ToLower(cmd.Args[0]) {
		case "image":
			r.imageMode = true
		case "screen":
			r.imageMode = false
		default:
			return fmt.Errorf("invalid coordinate space %q", cmd.Args[0])
		}

	case "tool":
		t, err := ParseTool(cmd.Args[0])
		if err != nil {
			return err
		}
		s.SetTool(t)

	case "color", "secondary":
		c, ok := imop.ParseHex(cmd.Args[0])
		if !ok {
			return fmt.Errorf("invalid hex color %q", cmd.Args[0])
		}
		if cmd.Name == "color" {
			s.SetPrimary(c)
		} else {
			s.SetSecondary(c)
		}

	case "swap":
		s.SwapColors()

	case "size":
		n, err := strconv.Atoi(cmd.Args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid size %q", cmd.Args[0])
		}
		p := s.brush.Pencil
		p.Size = n
		s.SetPencil(p)

	case "shape":
		shape, err := ParseShape(cmd.Args[0])
		if err != nil {
			return err
		}
		p := s.brush.Pencil
		p.Shape = shape
		s.SetPencil(p)

	case "pixelperfect":
		on, err := parseSwitch(cmd.Args[0])
		if err != nil {
			return err
		}
		p := s.brush.Pencil
		p.PixelPerfect = on
		s.SetPencil(p)

	case "blend":
		p := s.brush.Pencil
		if err := p.Blend.Set(imop.BlendMode(cmd.Args[0])); err != nil {
			return err
		}
		s.SetPencil(p)

	case "down", "click":
		v, err := floats(cmd.Args[:2])
		if err != nil {
			return err
		}
		b, err := parseButton(cmd.Args[2:])
		if err != nil {
			return err
		}
		p := r.screen(v[0], v[1])
		if err := s.HandleCursorMove(p.X, p.Y); err != nil {
			return err
		}
		if err := s.HandleCursorStart(p.X, p.Y, b); err != nil {
			return err
		}
		if cmd.Name == "click" {
			return s.HandleCursorEnd()
		}

	case "move":
		v, err := floats(cmd.Args)
		if err != nil {
			return err
		}
		p := r.screen(v[0], v[1])
		return s.HandleCursorMove(p.X, p.Y)

	case "up":
		return s.HandleCursorEnd()

	case "line":
		v, err := floats(cmd.Args[:4])
		if err != nil {
			return err
		}
		b, err := parseButton(cmd.Args[4:])
		if err != nil {
			return err
		}
		return r.drag(r.screen(v[0], v[1]), r.screen(v[2], v[3]), b)

	case "select":
		v, err := floats(cmd.Args)
		if err != nil {
			return err
		}
		prev := s.Tool()
		s.SetTool(ToolSelect)
		defer s.SetTool(prev)
		return r.drag(r.screen(v[0], v[1]), r.screen(v[2], v[3]), ButtonPrimary)

	case "undo":
		return s.Undo()

	case "redo":
		return s.Redo()

	case "zoom":
		n, err := strconv.Atoi(cmd.Args[0])
		if err != nil {
			return fmt.Errorf("invalid zoom delta %q", cmd.Args[0])
		}
		anchor := s.Cursor()
		s.UpdateZoom(n, &anchor)

	case "pan":
		v, err := floats(cmd.Args)
		if err != nil {
			return err
		}
		s.Pan(Vec2{v[0], v[1]})

	case "key":
		k := KeyEvent{Name: cmd.Args[0]}
		for _, mod := range cmd.Args[1:] {
			switch strings.ToLower(mod) {
			case "ctrl":
				k.Ctrl = true
			case "meta", "cmd":
				k.Meta = true
			case "shift":
				k.Shift = true
			default:
				return fmt.Errorf("invalid modifier %q", mod)
			}
		}
		_, err := s.HandleKey(k)
		return err

	case "copy":
		r.clipboard = s.Copy()

	case "cut":
		data, err := s.Cut()
		if err != nil {
			return err
		}
		r.clipboard = data

	case "paste":
		if r.clipboard == nil {
			return nil
		}
		return s.Paste(r.clipboard)

	case "commit":
		return s.CommitSelection()
	}
	return nil
}

// drag performs a full press, move and release gesture.
func (r *scriptRunner) drag(from, to Vec2, b Button) error {
	s := r.s
	if err := s.HandleCursorMove(from.X, from.Y); err != nil {
		return err
	}
	if err := s.HandleCursorStart(from.X, from.Y, b); err != nil {
		return err
	}
	if err := s.HandleCursorMove(to.X, to.Y); err != nil {
		return err
	}
	return s.HandleCursorEnd()
}
