package osprite

import (
	"fmt"
	"image"

	"github.com/egtoney/osprite/imop"
)

// Layer holds the RGBA8 pixels of one buffer layer in row-major order.
// Revision is bumped on every mutation so renderers know when to re-blit.
type Layer struct {
	Pix      []uint8
	Revision uint64
}

// ImageBuffer owns the pixel storage of a drawing. Its size never changes.
type ImageBuffer struct {
	Width, Height int
	Layers        []*Layer
}

// PixelChange is one logged pixel write.
type PixelChange struct {
	Layer int
	X, Y  int
	New   imop.RGB
	Old   imop.RGB
}

// PixelRecorder receives the pixel writes that must end up in history.
type PixelRecorder func(PixelChange)

// NewImageBuffer allocates a transparent buffer with the given number of layers.
func NewImageBuffer(width, height, layers int) (*ImageBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid buffer size %dx%d", width, height)
	}
	if layers < 1 {
		layers = 1
	}
	b := &ImageBuffer{Width: width, Height: height}
	for i := 0; i < layers; i++ {
		b.Layers = append(b.Layers, &Layer{Pix: make([]uint8, 4*width*height)})
	}
	return b, nil
}

// BufferFromImage creates a single layer buffer holding a copy of img.
func BufferFromImage(img image.Image) (*ImageBuffer, error) {
	src := toNRGBA(img)
	b, err := NewImageBuffer(src.Bounds().Dx(), src.Bounds().Dy(), 1)
	if err != nil {
		return nil, err
	}
	for y := 0; y < b.Height; y++ {
		copy(b.Layers[0].Pix[4*y*b.Width:4*(y+1)*b.Width], src.Pix[y*src.Stride:])
	}
	return b, nil
}

// Bounds returns the full buffer rectangle.
func (b *ImageBuffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// InImage reports whether (x, y) is addressable by the painting tools.
// The first row and column are treated as outside of the image.
func (b *ImageBuffer) InImage(x, y int) bool {
	return x > 0 && x < b.Width && y > 0 && y < b.Height
}

func (b *ImageBuffer) layer(i int) *Layer {
	if i < 0 || i >= len(b.Layers) {
		return nil
	}
	return b.Layers[i]
}

func (b *ImageBuffer) offset(x, y int) int {
	return 4 * (x + y*b.Width)
}

// at reads a pixel without any bounds check.
func (l *Layer) at(i int) imop.RGB {
	return imop.RGB{R: l.Pix[i], G: l.Pix[i+1], B: l.Pix[i+2], A: l.Pix[i+3]}
}

func (l *Layer) put(i int, c imop.RGB) {
	l.Pix[i], l.Pix[i+1], l.Pix[i+2], l.Pix[i+3] = c.R, c.G, c.B, c.A
}

// GetPixel returns the color at (x, y). The second value is false
// outside of the paintable area or for an unknown layer.
func (b *ImageBuffer) GetPixel(layer, x, y int) (imop.RGB, bool) {
	l := b.layer(layer)
	if l == nil || !b.InImage(x, y) {
		return imop.RGB{}, false
	}
	return l.at(b.offset(x, y)), true
}

// SetPixel blends c onto the pixel at (x, y) using mode and returns the previous
// and the written colors. The write is skipped only when the pixel already holds
// c and c is opaque. ok is false when nothing was written.
func (b *ImageBuffer) SetPixel(layer, x, y int, c imop.RGB, mode imop.BlendMode) (old, written imop.RGB, ok bool) {
	l := b.layer(layer)
	if l == nil || !b.InImage(x, y) {
		return imop.RGB{}, imop.RGB{}, false
	}
	i := b.offset(x, y)
	old = l.at(i)
	if imop.Equal(old, c) && c.A == 255 {
		return old, old, false
	}
	written = mode.Apply(old, c)
	l.put(i, written)
	l.Revision++
	return old, written, true
}

// writePixel replaces the pixel at (x, y) anywhere inside the buffer.
// Used by region inserts and history replay, which address row and column 0 too.
func (b *ImageBuffer) writePixel(layer, x, y int, c imop.RGB) (old imop.RGB, ok bool) {
	l := b.layer(layer)
	if l == nil || !image.Pt(x, y).In(b.Bounds()) {
		return imop.RGB{}, false
	}
	i := b.offset(x, y)
	old = l.at(i)
	if old == c {
		return old, false
	}
	l.put(i, c)
	l.Revision++
	return old, true
}

// ExtractRegion copies the part of r inside the buffer into a new slice
// and overwrites the source area with fill. When rec is not nil every
// overwritten pixel is reported to it.
func (b *ImageBuffer) ExtractRegion(layer int, r image.Rectangle, fill imop.RGB, rec PixelRecorder) *PixelSlice {
	l := b.layer(layer)
	r = r.Intersect(b.Bounds())
	if l == nil || r.Empty() {
		return nil
	}

	s := NewPixelSlice(r.Dx(), r.Dy())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		src := b.offset(r.Min.X, y)
		copy(s.Pix[4*(y-r.Min.Y)*s.Width:], l.Pix[src:src+4*s.Width])
		for x := r.Min.X; x < r.Max.X; x++ {
			if old, ok := b.writePixel(layer, x, y, fill); ok && rec != nil {
				rec(PixelChange{Layer: layer, X: x, Y: y, New: fill, Old: old})
			}
		}
	}
	l.Revision++
	return s
}

// InsertRegion writes the slice into the buffer with its top left corner at
// offset, replacing the existing pixels. Only the overlapping area is written.
// When rec is not nil every pixel that actually changed is reported to it.
func (b *ImageBuffer) InsertRegion(layer int, offset image.Point, s *PixelSlice, rec PixelRecorder) {
	if s == nil || b.layer(layer) == nil {
		return
	}
	area := s.Bounds().Add(offset).Intersect(b.Bounds())
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			c := s.At(x-offset.X, y-offset.Y)
			if old, ok := b.writePixel(layer, x, y, c); ok && rec != nil {
				rec(PixelChange{Layer: layer, X: x, Y: y, New: c, Old: old})
			}
		}
	}
}

// Image returns a copy of the layer as an NRGBA image.
func (b *ImageBuffer) Image(layer int) *image.NRGBA {
	img := image.NewNRGBA(b.Bounds())
	if l := b.layer(layer); l != nil {
		copy(img.Pix, l.Pix)
	}
	return img
}

// Revision returns the revision counter of the layer.
func (b *ImageBuffer) Revision(layer int) uint64 {
	if l := b.layer(layer); l != nil {
		return l.Revision
	}
	return 0
}

// Clone returns a deep copy of the buffer.
func (b *ImageBuffer) Clone() *ImageBuffer {
	c := &ImageBuffer{Width: b.Width, Height: b.Height}
	for _, l := range b.Layers {
		c.Layers = append(c.Layers, &Layer{Pix: append([]uint8(nil), l.Pix...), Revision: l.Revision})
	}
	return c
}

// PixelSlice is a detached rectangle of RGBA8 pixels.
type PixelSlice struct {
	Width, Height int
	Pix           []uint8
}

// NewPixelSlice allocates a transparent slice.
func NewPixelSlice(width, height int) *PixelSlice {
	return &PixelSlice{Width: width, Height: height, Pix: make([]uint8, 4*width*height)}
}

// SliceFromImage copies img into a new slice.
func SliceFromImage(img image.Image) *PixelSlice {
	src := toNRGBA(img)
	s := NewPixelSlice(src.Bounds().Dx(), src.Bounds().Dy())
	for y := 0; y < s.Height; y++ {
		copy(s.Pix[4*y*s.Width:4*(y+1)*s.Width], src.Pix[y*src.Stride:])
	}
	return s
}

// Bounds returns the slice rectangle anchored at the origin.
func (s *PixelSlice) Bounds() image.Rectangle {
	return image.Rect(0, 0, s.Width, s.Height)
}

// At returns the pixel at (x, y), or transparent outside the slice.
func (s *PixelSlice) At(x, y int) imop.RGB {
	if !image.Pt(x, y).In(s.Bounds()) {
		return imop.Clear
	}
	i := 4 * (x + y*s.Width)
	return imop.RGB{R: s.Pix[i], G: s.Pix[i+1], B: s.Pix[i+2], A: s.Pix[i+3]}
}

// Set replaces the pixel at (x, y). Points outside the slice are ignored.
func (s *PixelSlice) Set(x, y int, c imop.RGB) {
	if !image.Pt(x, y).In(s.Bounds()) {
		return
	}
	i := 4 * (x + y*s.Width)
	s.Pix[i], s.Pix[i+1], s.Pix[i+2], s.Pix[i+3] = c.R, c.G, c.B, c.A
}

// Clone returns a deep copy. A nil slice clones to nil.
func (s *PixelSlice) Clone() *PixelSlice {
	if s == nil {
		return nil
	}
	return &PixelSlice{Width: s.Width, Height: s.Height, Pix: append([]uint8(nil), s.Pix...)}
}

// NRGBA wraps the slice pixels into an image sharing the same storage.
func (s *PixelSlice) NRGBA() *image.NRGBA {
	return &image.NRGBA{Pix: s.Pix, Stride: 4 * s.Width, Rect: s.Bounds()}
}
