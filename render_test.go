package osprite

import (
	"image"
	"testing"

	"github.com/egtoney/osprite/imop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRenderSession returns an 8x8 session at zoom 2 centered in a 32x32
// viewport, so buffer pixel (x, y) covers screen (8+2x, 8+2y).
func newRenderSession(t *testing.T) *Session {
	t.Helper()
	opts := DefaultOptions()
	opts.Width, opts.Height, opts.Zoom = 8, 8, 2
	s, err := NewSession(opts)
	require.NoError(t, err)
	s.SetViewport(0, 0, 32, 32)
	return s
}

func TestRender_Frame(t *testing.T) {
	assert := assert.New(t)
	s := newRenderSession(t)
	s.buffer.writePixel(0, 3, 3, imop.Red)

	ro := DefaultRenderOptions()
	ro.ShowCursor = false
	r := NewRenderer(ro)
	dst := image.NewNRGBA(image.Rect(0, 0, 32, 32))

	assert.True(s.ShouldRender())
	r.Render(s, dst)
	assert.False(s.ShouldRender())

	assert.Equal(ro.Background.NRGBA(), dst.NRGBAAt(0, 0))
	assert.Equal(ro.Background.NRGBA(), dst.NRGBAAt(31, 31))
	assert.Equal(ro.CheckerLight.NRGBA(), dst.NRGBAAt(10, 10))
	assert.Equal(imop.Red.NRGBA(), dst.NRGBAAt(14, 14))
	assert.Equal(imop.Red.NRGBA(), dst.NRGBAAt(15, 15))
	assert.Equal(ro.CheckerLight.NRGBA(), dst.NRGBAAt(16, 16))
}

func TestRender_Cache(t *testing.T) {
	assert := assert.New(t)
	s := newRenderSession(t)
	r := NewRenderer(DefaultRenderOptions())
	dst := image.NewNRGBA(image.Rect(0, 0, 32, 32))

	r.Render(s, dst)
	r.Render(s, dst)
	assert.Equal(1, r.Rebuilds())

	// Panning does not touch the pixels.
	s.Pan(Vec2{3, 0})
	r.Render(s, dst)
	assert.Equal(1, r.Rebuilds())

	s.buffer.SetPixel(0, 2, 2, imop.Blue, imop.Normal)
	r.Render(s, dst)
	assert.Equal(2, r.Rebuilds())

	other := newRenderSession(t)
	r.Render(other, dst)
	assert.Equal(3, r.Rebuilds())
}

func TestRender_Selection(t *testing.T) {
	assert := assert.New(t)
	s := newRenderSession(t)
	s.buffer.writePixel(0, 2, 2, imop.Red)

	s.SetTool(ToolSelect)
	for _, step := range []func() error{
		func() error { return s.HandleCursorMove(10.5, 10.5) },
		func() error { return s.HandleCursorStart(10.5, 10.5, ButtonPrimary) },
		func() error { return s.HandleCursorMove(16.5, 16.5) },
		s.HandleCursorEnd,
	} {
		require.NoError(t, step())
	}
	require.Equal(t, image.Rect(1, 1, 4, 4), s.Selection().Bounds())

	r := NewRenderer(DefaultRenderOptions())
	dst := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	r.Render(s, dst)

	// The lifted pixel is drawn from the selection, framed by marching ants.
	assert.Equal(imop.Red.NRGBA(), dst.NRGBAAt(12, 12))
	assert.Equal(imop.White.NRGBA(), dst.NRGBAAt(10, 10))
	assert.Equal(imop.Black.NRGBA(), dst.NRGBAAt(14, 10))
}

func TestRender_CursorOutline(t *testing.T) {
	assert := assert.New(t)
	s := newRenderSession(t)
	s.SetPencil(PencilOptions{Size: 3})
	assert.NoError(s.HandleCursorMove(16.5, 16.5))

	ro := DefaultRenderOptions()
	r := NewRenderer(ro)
	dst := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	r.Render(s, dst)

	// Pixel (4, 4) is under the cursor, the 3x3 footprint spans 3..5.
	want := imop.Contrasting(ro.CheckerLight).NRGBA()
	assert.Equal(want, dst.NRGBAAt(14, 14))
	assert.Equal(want, dst.NRGBAAt(19, 14))
	assert.Equal(ro.CheckerLight.NRGBA(), dst.NRGBAAt(16, 16))
}

func TestRender_CursorOutlineShapes(t *testing.T) {
	testCases := []struct {
		shape Shape
		size  int
	}{
		{ShapeSquare, 3},
		{ShapeCircle, 3},
	}
	for _, tc := range testCases {
		t.Run(tc.shape.String(), func(t *testing.T) {
			assert := assert.New(t)
			s := newRenderSession(t)
			s.SetPencil(PencilOptions{Shape: tc.shape, Size: tc.size})
			assert.NoError(s.HandleCursorMove(16.5, 16.5))

			ro := DefaultRenderOptions()
			dst := image.NewNRGBA(image.Rect(0, 0, 32, 32))
			NewRenderer(ro).Render(s, dst)

			// The outline frames the whole 3x3 footprint around pixel (4, 4).
			want := imop.Contrasting(ro.CheckerLight).NRGBA()
			for _, pt := range []image.Point{{14, 14}, {19, 19}, {14, 17}, {19, 16}, {16, 14}} {
				assert.Equal(want, dst.NRGBAAt(pt.X, pt.Y), "%v", pt)
			}
			assert.Equal(ro.CheckerLight.NRGBA(), dst.NRGBAAt(16, 16))
		})
	}

	assert.Equal(t, image.Rect(-1, -1, 2, 2), shapeBounds([]image.Point{{0, -1}, {-1, 0}, {0, 0}, {1, 0}, {0, 1}}))
	assert.Equal(t, image.Rectangle{}, shapeBounds(nil))
}

func TestRender_SelectionReplacesCanvas(t *testing.T) {
	assert := assert.New(t)
	s := newTestSession(t, 8, 8)
	s.buffer.writePixel(0, 6, 6, imop.Red)
	selectRect(t, s, image.Pt(1, 1), image.Pt(4, 4))

	s.SetTool(ToolSelect)
	drag(t, s, ButtonPrimary, image.Pt(2, 2), image.Pt(6, 6))
	require.Equal(t, image.Rect(5, 5, 8, 8), s.Selection().Bounds())

	ro := DefaultRenderOptions()
	ro.ShowCursor = false
	dst := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	NewRenderer(ro).Render(s, dst)

	// The transparent selection hides the red pixel, as committing it would.
	assert.Equal(ro.CheckerLight.NRGBA(), dst.NRGBAAt(6, 6))
	assert.Equal(imop.Clear.NRGBA(), s.Image().NRGBAAt(6, 6))
}
