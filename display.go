package osprite

import (
	"image"

	"github.com/egtoney/osprite/utils"
)

const (
	MinZoom = 1
	MaxZoom = 64
)

// DisplayState is the pan and zoom transform of a session together with the
// viewport it is shown in, all in screen pixels.
type DisplayState struct {
	DX, DY float64
	Zoom   int

	Left, Top     float64
	Width, Height float64
}

// Origin returns the screen position, relative to the viewport, of the
// top left corner of a bw x bh buffer.
func (d DisplayState) Origin(bw, bh int) Vec2 {
	z := float64(d.Zoom)
	return Vec2{
		X: (d.Width-z*float64(bw))/2 + d.DX,
		Y: (d.Height-z*float64(bh))/2 + d.DY,
	}
}

// ToViewport maps raw input coordinates into viewport relative coordinates.
func (d DisplayState) ToViewport(raw Vec2) Vec2 {
	return raw.Sub(Vec2{d.Left, d.Top})
}

// ToPointer maps viewport coordinates into pointer space: aligned with the
// buffer but still measured in screen pixels.
func (d DisplayState) ToPointer(screen Vec2, bw, bh int) Vec2 {
	return screen.Sub(d.Origin(bw, bh))
}

// ToImage maps pointer coordinates to the buffer pixel under them.
func (d DisplayState) ToImage(pointer Vec2) image.Point {
	return pointer.Mul(1 / float64(d.zoom())).Floor()
}

// ImageToGrid returns the pointer space top left corner of a buffer pixel.
func (d DisplayState) ImageToGrid(p image.Point) Vec2 {
	return FromPoint(p.Mul(d.zoom()))
}

// ImageToScreen returns the viewport position of the top left corner of a buffer pixel.
func (d DisplayState) ImageToScreen(p image.Point, bw, bh int) Vec2 {
	return d.ImageToGrid(p).Add(d.Origin(bw, bh))
}

func (d DisplayState) zoom() int {
	return utils.Max(d.Zoom, MinZoom)
}

// UpdateZoom changes the zoom by delta steps, clamped to [MinZoom, MaxZoom],
// and shifts the pan offset so the anchor stays at the same screen position.
// The anchor is in viewport coordinates; nil anchors on the viewport center.
func (d *DisplayState) UpdateZoom(delta int, anchor *Vec2) {
	z := d.zoom()
	next := utils.Clamp(z+delta, MinZoom, MaxZoom)
	if next == z {
		d.Zoom = z
		return
	}

	a := Vec2{d.Width / 2, d.Height / 2}
	if anchor != nil {
		a = *anchor
	}
	// Anchor relative to the viewport center with the pan removed.
	offset := a.Sub(Vec2{d.DX, d.DY}).Sub(Vec2{d.Width / 2, d.Height / 2})
	scale := float64(next)/float64(z) - 1

	d.DX -= offset.X * scale
	d.DY -= offset.Y * scale
	d.Zoom = next
}

// SetZoom jumps to an absolute zoom level anchored on the viewport center.
func (d *DisplayState) SetZoom(zoom int) {
	d.UpdateZoom(zoom-d.zoom(), nil)
}

// Resize updates the viewport rectangle.
func (d *DisplayState) Resize(left, top, width, height float64) {
	d.Left, d.Top, d.Width, d.Height = left, top, width, height
}

// Center resets the pan offset.
func (d *DisplayState) Center() {
	d.DX, d.DY = 0, 0
}
