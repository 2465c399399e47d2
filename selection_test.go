package osprite

import (
	"image"
	"testing"

	"github.com/egtoney/osprite/imop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selectRect(t *testing.T, s *Session, p1, p2 image.Point) {
	t.Helper()
	prev := s.Tool()
	s.SetTool(ToolSelect)
	drag(t, s, ButtonPrimary, p1, p2)
	s.SetTool(prev)
}

func TestSelection_CreateUndoRedo(t *testing.T) {
	assert := assert.New(t)
	s := newTestSession(t, 8, 8)
	s.buffer.writePixel(0, 2, 2, imop.Red)
	s.buffer.writePixel(0, 5, 5, imop.Blue)

	selectRect(t, s, image.Pt(1, 1), image.Pt(4, 4))
	require.True(t, s.HasSelection())
	sel := s.Selection()
	assert.Equal(image.Rect(1, 1, 4, 4), sel.Bounds())
	assert.Equal(3, sel.Data.Width)
	assert.Equal(imop.Red, sel.Data.At(1, 1))
	assert.Equal(imop.Clear, pixel(s, 2, 2))
	assert.Equal(imop.Blue, pixel(s, 5, 5))

	set := s.History().Peek()
	assert.Equal(ChangeSelection, set.Type())
	assert.Nil(set.Selection().OldPoints)
	assert.Equal(1, set.Selection().Pixels.Len())

	assert.NoError(s.Undo())
	assert.False(s.HasSelection())
	assert.Equal(imop.Red, pixel(s, 2, 2))

	assert.NoError(s.Redo())
	require.True(t, s.HasSelection())
	assert.Equal(image.Rect(1, 1, 4, 4), s.Selection().Bounds())
	assert.Equal(imop.Red, s.Selection().Data.At(1, 1))
	assert.Equal(imop.Clear, pixel(s, 2, 2))
}

func TestSelection_ReverseDragAndClamp(t *testing.T) {
	assert := assert.New(t)
	s := newTestSession(t, 8, 8)

	selectRect(t, s, image.Pt(6, 6), image.Pt(2, 3))
	assert.Equal(image.Rect(2, 3, 6, 6), s.Selection().Bounds())

	// Dragging past the buffer edge is clamped to it.
	s = newTestSession(t, 8, 8)
	s.SetTool(ToolSelect)
	x, y := center(image.Pt(5, 5))
	require.NoError(t, s.HandleCursorMove(x, y))
	require.NoError(t, s.HandleCursorStart(x, y, ButtonPrimary))
	require.NoError(t, s.HandleCursorMove(20, 30))
	require.NoError(t, s.HandleCursorEnd())
	assert.Equal(image.Rect(5, 5, 8, 8), s.Selection().Bounds())
}

func TestSelection_ZeroArea(t *testing.T) {
	assert := assert.New(t)
	s := newTestSession(t, 8, 8)

	// Without a selection a click records nothing.
	s.SetTool(ToolSelect)
	click(t, s, image.Pt(3, 3), ButtonPrimary)
	assert.False(s.HasSelection())
	assert.Equal(0, s.History().UndoLen())

	s.buffer.writePixel(0, 2, 2, imop.Red)
	selectRect(t, s, image.Pt(1, 1), image.Pt(4, 4))
	assert.Equal(1, s.History().UndoLen())

	// Clicking outside of it commits the selection as an undoable clear.
	s.SetTool(ToolSelect)
	click(t, s, image.Pt(6, 6), ButtonPrimary)
	assert.False(s.HasSelection())
	assert.Equal(imop.Red, pixel(s, 2, 2))
	assert.Equal(2, s.History().UndoLen())
	assert.Equal(ChangeSelection, s.History().Peek().Type())

	assert.NoError(s.Undo())
	require.True(t, s.HasSelection())
	assert.Equal(imop.Clear, pixel(s, 2, 2))
	assert.Equal(imop.Red, s.Selection().Data.At(1, 1))
}

func TestSelection_Move(t *testing.T) {
	assert := assert.New(t)
	s := newTestSession(t, 8, 8)
	s.buffer.writePixel(0, 2, 2, imop.Red)
	selectRect(t, s, image.Pt(1, 1), image.Pt(4, 4))

	s.SetTool(ToolSelect)
	x, y := center(image.Pt(2, 2))
	require.NoError(t, s.HandleCursorMove(x, y))
	require.NoError(t, s.HandleCursorStart(x, y, ButtonPrimary))
	x, y = center(image.Pt(4, 3))
	require.NoError(t, s.HandleCursorMove(x, y))

	// While dragging only the translation changes.
	assert.Equal(image.Pt(2, 1), s.Selection().Translation)
	assert.Equal(image.Rect(1, 1, 4, 4), s.Selection().Bounds())
	assert.Equal(image.Rect(3, 2, 6, 5), s.Selection().Placement())

	require.NoError(t, s.HandleCursorEnd())
	assert.Equal(image.Rect(3, 2, 6, 5), s.Selection().Bounds())
	assert.Equal(image.Point{}, s.Selection().Translation)
	assert.Equal(ChangeSelectionTransform, s.History().Peek().Type())
	assert.Equal(imop.Red.NRGBA(), s.Image().NRGBAAt(4, 3))

	assert.NoError(s.Undo())
	assert.Equal(image.Rect(1, 1, 4, 4), s.Selection().Bounds())
	assert.NoError(s.Redo())
	assert.Equal(image.Rect(3, 2, 6, 5), s.Selection().Bounds())

	// Committing writes the pixels at the moved location.
	assert.NoError(s.CommitSelection())
	assert.False(s.HasSelection())
	assert.Equal(imop.Red, pixel(s, 4, 3))
	assert.Equal(imop.Clear, pixel(s, 2, 2))
}

func TestSelection_ImageMatchesCommit(t *testing.T) {
	testCases := []struct {
		name string
		data imop.RGB
	}{
		{"transparent over opaque", imop.Clear},
		{"half alpha over opaque", imop.RGB{R: 0, G: 0, B: 255, A: 128}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			s := newTestSession(t, 8, 8)
			s.buffer.writePixel(0, 2, 2, tc.data)
			s.buffer.writePixel(0, 6, 6, imop.Red)
			selectRect(t, s, image.Pt(1, 1), image.Pt(4, 4))

			// Drop the selection on top of the red pixel.
			s.SetTool(ToolSelect)
			drag(t, s, ButtonPrimary, image.Pt(2, 2), image.Pt(6, 6))
			require.Equal(t, image.Rect(5, 5, 8, 8), s.Selection().Bounds())

			flat := s.Image()
			assert.Equal(tc.data.NRGBA(), flat.NRGBAAt(6, 6))

			require.NoError(t, s.CommitSelection())
			assert.Equal(tc.data, pixel(s, 6, 6))
			assert.Equal(s.buffer.Image(0), flat)
		})
	}
}

func TestSelection_MoveWithoutDisplacement(t *testing.T) {
	assert := assert.New(t)
	s := newTestSession(t, 8, 8)
	selectRect(t, s, image.Pt(1, 1), image.Pt(4, 4))

	s.SetTool(ToolSelect)
	click(t, s, image.Pt(2, 2), ButtonPrimary)
	assert.True(s.HasSelection())
	assert.Equal(1, s.History().UndoLen())
}

func TestSelection_NudgeCoalescing(t *testing.T) {
	assert := assert.New(t)
	s := newTestSession(t, 8, 8)
	selectRect(t, s, image.Pt(1, 1), image.Pt(4, 4))

	for i := 0; i < 3; i++ {
		ok, err := s.HandleKey(KeyEvent{Name: KeyRight})
		assert.True(ok)
		assert.NoError(err)
	}
	assert.Equal(image.Rect(4, 1, 7, 4), s.Selection().Bounds())
	assert.Equal(2, s.History().UndoLen())

	assert.NoError(s.Undo())
	assert.Equal(image.Rect(1, 1, 4, 4), s.Selection().Bounds())

	// A nudge after an undo starts a new step.
	assert.NoError(s.NudgeSelection(image.Pt(0, 1)))
	assert.NoError(s.NudgeSelection(image.Pt(0, 1)))
	assert.Equal(2, s.History().UndoLen())
	assert.Equal(image.Rect(1, 3, 4, 6), s.Selection().Bounds())
}

func TestSelection_DeleteAndSelectAll(t *testing.T) {
	assert := assert.New(t)
	s := newTestSession(t, 8, 8)
	s.buffer.writePixel(0, 2, 2, imop.Red)
	s.buffer.writePixel(0, 0, 0, imop.Blue)

	ok, err := s.HandleKey(KeyEvent{Name: "a", Ctrl: true})
	assert.True(ok)
	assert.NoError(err)
	assert.Equal(image.Rect(0, 0, 8, 8), s.Selection().Bounds())
	assert.Equal(imop.Blue, s.Selection().Data.At(0, 0))

	ok, err = s.HandleKey(KeyEvent{Name: KeyDelete})
	assert.True(ok)
	assert.NoError(err)
	assert.False(s.HasSelection())
	assert.Equal(imop.Clear, pixel(s, 2, 2))

	assert.NoError(s.Undo())
	assert.True(s.HasSelection())
	assert.NoError(s.Undo())
	assert.False(s.HasSelection())
	assert.Equal(imop.Red, pixel(s, 2, 2))
	assert.Equal(imop.Blue, pixel(s, 0, 0))
}

func TestSelection_PaintWhileSelected(t *testing.T) {
	assert := assert.New(t)
	s := newTestSession(t, 8, 8)
	selectRect(t, s, image.Pt(1, 1), image.Pt(4, 4))

	// The pencil paints the buffer underneath the floating selection.
	click(t, s, image.Pt(2, 2), ButtonPrimary)
	assert.Equal(imop.Red, pixel(s, 2, 2))
	assert.True(s.HasSelection())
	assert.NoError(s.Undo())
	assert.Equal(imop.Clear, pixel(s, 2, 2))
	assert.True(s.HasSelection())
}
