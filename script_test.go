package osprite

import (
	"image"
	"strings"
	"testing"

	"github.com/egtoney/osprite/imop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScript(t *testing.T, s *Session, src string) error {
	t.Helper()
	sc, err := ParseScript(strings.NewReader(src))
	require.NoError(t, err)
	return sc.Run(s)
}

func TestScript_Parse(t *testing.T) {
	assert := assert.New(t)

	sc, err := ParseScript(strings.NewReader("# header\n\ntool pencil\n  DOWN 1 2 right\n"))
	assert.NoError(err)
	require.Len(t, sc.Commands, 2)
	assert.Equal(Command{Line: 3, Name: "tool", Args: []string{"pencil"}}, sc.Commands[0])
	assert.Equal(Command{Line: 4, Name: "down", Args: []string{"1", "2", "right"}}, sc.Commands[1])

	testCases := []struct {
		src  string
		want string
	}{
		{"tool pencil\nspray 1 2\n", "line 2: unknown command"},
		{"down 1\n", "line 1: down expects 2 to 3 arguments, got 1"},
		{"up now\n", "line 1: up expects 0 to 0 arguments, got 1"},
	}
	for _, tc := range testCases {
		_, err := ParseScript(strings.NewReader(tc.src))
		if assert.Error(err) {
			assert.Contains(err.Error(), tc.want)
		}
	}
}

func TestScript_Draw(t *testing.T) {
	assert := assert.New(t)
	opts := DefaultOptions()
	opts.Width, opts.Height = 8, 8
	s, err := NewSession(opts)
	require.NoError(t, err)

	err = runScript(t, s, `
viewport 0 0 64 64
coords image
color #00ff00
click 2 3
line 1 1 4 1
secondary #0000ff
click 6 6 secondary
tool eraser
click 2 1
undo
`)
	require.NoError(t, err)

	assert.Equal(imop.Green, pixel(s, 2, 3))
	for x := 1; x <= 4; x++ {
		assert.Equal(imop.Green, pixel(s, x, 1), "x=%d", x)
	}
	assert.Equal(imop.Blue, pixel(s, 6, 6))
	assert.Equal(ToolEraser, s.Tool())
	assert.Equal(3, s.History().UndoLen())
	assert.Equal(1, s.History().RedoLen())
}

func TestScript_Selection(t *testing.T) {
	assert := assert.New(t)
	s := newTestSession(t, 8, 8)
	s.buffer.writePixel(0, 2, 2, imop.Red)

	err := runScript(t, s, `
coords image
select 1 1 4 4
key ArrowRight
key ArrowDown
copy
commit
paste
`)
	require.NoError(t, err)

	assert.Equal(imop.Red, pixel(s, 3, 3))
	assert.Equal(image.Rect(0, 0, 3, 3), s.Selection().Bounds())
	assert.Equal(imop.Red, s.Selection().Data.At(1, 1))
	// select restores the previous tool.
	assert.Equal(ToolPencil, s.Tool())

	assert.NoError(runScript(t, s, "key z ctrl\nkey z ctrl\n"))
	assert.Equal(image.Rect(1, 1, 4, 4).Add(image.Pt(1, 1)), s.Selection().Bounds())
}

func TestScript_BrushOptions(t *testing.T) {
	assert := assert.New(t)
	s := newTestSession(t, 8, 8)

	err := runScript(t, s, "size 3\nshape circle\npixelperfect on\nblend replace\nswap\nzoom 2\npan 4 -2\n")
	require.NoError(t, err)
	assert.Equal(PencilOptions{Shape: ShapeCircle, Size: 3, PixelPerfect: true, Blend: imop.Blend{Mode: imop.Replace}}, s.Brush().Pencil)
	assert.Equal(imop.Clear, s.Primary())
	// Zooming 1 to 3 around the cursor at the viewport corner shifts the
	// view by twice the corner offset from the center.
	assert.Equal(3, s.Display().Zoom)
	assert.Equal(12.0, s.Display().DX)
	assert.Equal(6.0, s.Display().DY)
}

func TestScript_PencilBlend(t *testing.T) {
	testCases := []struct {
		blend string
		want  imop.RGB
	}{
		// A transparent pencil erases in pencil mode.
		{"pencil", imop.Clear},
		{"replace", imop.Clear},
		// Normal blending of a transparent color keeps the pixel.
		{"normal", imop.Red},
	}
	for _, tc := range testCases {
		t.Run(tc.blend, func(t *testing.T) {
			assert := assert.New(t)
			s := newTestSession(t, 8, 8)

			require.NoError(t, runScript(t, s, "click 2.5 2.5\nswap\nblend "+tc.blend+"\nclick 2.5 2.5\n"))
			brush := s.Brush()
			assert.Equal(imop.BlendMode(tc.blend), brush.Pencil.Blend.Get())
			assert.Equal(tc.want, pixel(s, 2, 2))
		})
	}

	t.Run("half alpha", func(t *testing.T) {
		assert := assert.New(t)
		s := newTestSession(t, 8, 8)
		half := imop.RGB{R: 0, G: 0, B: 255, A: 128}

		require.NoError(t, runScript(t, s, "click 2.5 2.5\nblend replace\ncolor #0000ff80\nclick 2.5 2.5\n"))
		assert.Equal(half, pixel(s, 2, 2))
	})
}

func TestScript_RunErrors(t *testing.T) {
	testCases := []struct {
		src  string
		want string
	}{
		{"size 0\n", "line 1: size: invalid size"},
		{"tool pencil\ncolor nothex\n", "line 2: color: invalid hex color"},
		{"coords polar\n", "coords: invalid coordinate space"},
		{"move a b\n", "invalid number"},
		{"pixelperfect maybe\n", "invalid switch"},
		{"blend multiply\n", "unsupported blend mode"},
		{"key z alt\n", "invalid modifier"},
		{"down 1 1 middle\n", "invalid button"},
		{"tool brush\n", "unknown tool"},
	}
	for _, tc := range testCases {
		t.Run(tc.want, func(t *testing.T) {
			s := newTestSession(t, 8, 8)
			err := runScript(t, s, tc.src)
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tc.want)
			}
		})
	}
}

func TestScript_ReleasesOpenGesture(t *testing.T) {
	s := newTestSession(t, 8, 8)
	require.NoError(t, runScript(t, s, "down 2.5 2.5\nmove 4.5 2.5\n"))
	assert.False(t, s.Pressed())
	assert.Equal(t, 1, s.History().UndoLen())
	assert.Equal(t, imop.Red, pixel(s, 4, 2))
}
