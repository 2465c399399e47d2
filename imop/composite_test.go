package imop

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComp_Basic(t *testing.T) {
	assert := assert.New(t)

	op := InitOp()
	assert.Equal(SrcOver, op.current)

	assert.Error(op.Set("unsupported_composite_operation"))
	assert.Equal(SrcOver, op.current)

	assert.Error(op.Set("dst_over"))
	assert.NoError(op.Set(Copy))
	assert.Equal(Copy, op.current)
}

func TestComp_Ops(t *testing.T) {
	assert := assert.New(t)

	cyan := color.NRGBA{R: 33, G: 150, B: 243, A: 255}
	magenta := color.NRGBA{R: 233, G: 30, B: 99, A: 255}
	transparent := color.NRGBA{}

	newImages := func() (*image.NRGBA, *image.NRGBA) {
		rect := image.Rect(0, 0, 10, 10)
		source := image.NewNRGBA(rect)
		backdrop := image.NewNRGBA(rect)
		draw.Draw(source, image.Rect(0, 4, 6, 10), &image.Uniform{cyan}, image.Point{}, draw.Src)
		draw.Draw(backdrop, image.Rect(4, 0, 10, 6), &image.Uniform{magenta}, image.Point{}, draw.Src)
		return source, backdrop
	}

	op := InitOp()

	source, backdrop := newImages()
	op.Draw(backdrop, source, image.Point{})
	assert.Equal(cyan, backdrop.At(5, 5))
	assert.Equal(magenta, backdrop.At(9, 0))
	assert.Equal(cyan, backdrop.At(0, 9))
	assert.Equal(transparent, backdrop.At(0, 0))

	source, backdrop = newImages()
	op.Set(Copy)
	op.Draw(backdrop, source, image.Point{})
	assert.Equal(transparent, backdrop.At(9, 0))
	assert.Equal(cyan, backdrop.At(5, 5))
}

func TestComp_Offset(t *testing.T) {
	assert := assert.New(t)

	dst := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	draw.Draw(src, src.Bounds(), &image.Uniform{Red.NRGBA()}, image.Point{}, draw.Src)

	InitOp().Draw(dst, src, image.Pt(3, 3))
	assert.Equal(Red.NRGBA(), dst.At(3, 3))
	assert.Equal(color.NRGBA{}, dst.At(2, 2))

	// Fully outside: nothing happens.
	InitOp().Draw(dst, src, image.Pt(-5, 0))
	assert.Equal(color.NRGBA{}, dst.At(0, 0))
}

func TestComp_Checkerboard(t *testing.T) {
	assert := assert.New(t)

	dst := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	Checkerboard(dst, image.Point{}, 4, White, Grey)

	assert.Equal(White.NRGBA(), dst.At(0, 0))
	assert.Equal(Grey.NRGBA(), dst.At(4, 0))
	assert.Equal(Grey.NRGBA(), dst.At(0, 4))
	assert.Equal(White.NRGBA(), dst.At(7, 7))

	Checkerboard(dst, image.Pt(2, 0), 4, White, Grey)
	assert.Equal(Grey.NRGBA(), dst.At(0, 0))
	assert.Equal(White.NRGBA(), dst.At(2, 0))
}
