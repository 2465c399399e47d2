package osprite

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/color/palette"
	"image/draw"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/egtoney/osprite/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImage_BufferFromImageTypes(t *testing.T) {
	rect := image.Rect(-1, -1, 15, 15)
	colors := palette.Plan9
	testCases := []struct {
		name string
		img  image.Image
	}{
		{
			name: "NRGBA",
			img:  makeNRGBAImage(rect, colors),
		},
		{
			name: "YCbCr-444",
			img:  makeYCbCrImage(rect, colors, image.YCbCrSubsampleRatio444),
		},
		{
			name: "YCbCr-420",
			img:  makeYCbCrImage(rect, colors, image.YCbCrSubsampleRatio420),
		},
		{
			name: "Paletted",
			img:  makePalettedImage(rect, colors),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := BufferFromImage(tc.img)
			require.NoError(t, err)
			r := tc.img.Bounds()
			assert.Equal(t, r.Dx(), b.Width)
			assert.Equal(t, r.Dy(), b.Height)

			img := b.Image(0)
			for y := r.Min.Y; y < r.Max.Y; y++ {
				got := img.Pix[(y-r.Min.Y)*img.Stride : (y-r.Min.Y+1)*img.Stride]
				if want := readRow(tc.img, y); !compareBytes(got, want, 1) {
					t.Errorf("row y=%d: got %v want %v", y, got, want)
				}
			}
		})
	}
}

func TestImage_EncodeDecode(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	draw.Draw(src, src.Bounds(), &image.Uniform{C: color.NRGBA{R: 255, G: 255, B: 255, A: 255}}, image.Point{}, draw.Src)

	for _, ext := range supportedExtensions {
		t.Run(ext, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, EncodeImage(&buf, "out"+ext, src))

			img, err := DecodeImage(&buf)
			require.NoError(t, err)
			assert.Equal(t, src.Bounds(), img.Bounds())

			c := color.NRGBAModel.Convert(img.At(2, 2)).(color.NRGBA)
			assert.InDelta(t, 255, int(c.R), 2)
			assert.InDelta(t, 255, int(c.B), 2)
			assert.Equal(t, uint8(255), c.A)
		})
	}

	var buf bytes.Buffer
	assert.Error(t, EncodeImage(&buf, "out.tga", src))
	assert.NoError(t, EncodeImage(&buf, "", src))
}

func TestImage_DecodeErrors(t *testing.T) {
	assert := assert.New(t)

	_, err := DecodeImage(strings.NewReader("not an image"))
	assert.True(errors.Is(err, ErrDecode))

	dir := t.TempDir()
	text := filepath.Join(dir, "notes.png")
	assert.NoError(os.WriteFile(text, []byte("plain text, definitely"), 0644))
	_, err = decodeImageFile(text)
	assert.ErrorIs(err, ErrDecode)

	_, err = decodeImageFile(filepath.Join(dir, "missing.png"))
	assert.Error(err)

	var buf bytes.Buffer
	assert.NoError(EncodeImage(&buf, "x.png", image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	file := filepath.Join(dir, "x.png")
	assert.NoError(os.WriteFile(file, buf.Bytes(), 0644))
	img, err := decodeImageFile(file)
	assert.NoError(err)
	assert.Equal(image.Rect(0, 0, 2, 2), img.Bounds())
}

func TestImage_Scale(t *testing.T) {
	assert := assert.New(t)

	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(1, 0, color.NRGBA{B: 255, A: 255})

	out := ScaleImage(src, 3)
	assert.Equal(image.Rect(0, 0, 6, 3), out.Bounds())
	// Nearest neighbour keeps hard pixel edges.
	assert.Equal(color.NRGBA{}, out.NRGBAAt(2, 2))
	assert.Equal(color.NRGBA{B: 255, A: 255}, out.NRGBAAt(3, 0))
	assert.Equal(color.NRGBA{B: 255, A: 255}, out.NRGBAAt(5, 2))

	assert.Same(src, ScaleImage(src, 1))
}

func makeYCbCrImage(rect image.Rectangle, colors []color.Color, sr image.YCbCrSubsampleRatio) *image.YCbCr {
	img := image.NewYCbCr(rect, sr)
	j := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			iy := img.YOffset(x, y)
			ic := img.COffset(x, y)
			c := color.NRGBAModel.Convert(colors[j]).(color.NRGBA)
			img.Y[iy], img.Cb[ic], img.Cr[ic] = color.RGBToYCbCr(c.R, c.G, c.B)
			j++
		}
	}
	return img
}

func makeNRGBAImage(rect image.Rectangle, colors []color.Color) *image.NRGBA {
	img := image.NewNRGBA(rect)
	fillDrawImage(img, colors)
	return img
}

func makePalettedImage(rect image.Rectangle, colors []color.Color) *image.Paletted {
	img := image.NewPaletted(rect, colors)
	i := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.SetColorIndex(x, y, uint8(i%len(colors)))
			i++
		}
	}
	return img
}

func fillDrawImage(img draw.Image, colors []color.Color) {
	colorsNRGBA := make([]color.NRGBA, len(colors))
	for i, c := range colors {
		nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
		nrgba.A = uint8(i % 256)
		colorsNRGBA[i] = nrgba
	}
	rect := img.Bounds()
	i := 0
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.Set(x, y, colorsNRGBA[i])
			i++
		}
	}
}

func readRow(img image.Image, y int) []uint8 {
	row := make([]byte, img.Bounds().Dx()*4)
	i := 0
	for x := img.Bounds().Min.X; x < img.Bounds().Max.X; x++ {
		c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
		row[i+0] = c.R
		row[i+1] = c.G
		row[i+2] = c.B
		row[i+3] = c.A
		i += 4
	}
	return row
}

func compareBytes(a, b []uint8, delta int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if utils.Abs(int(a[i])-int(b[i])) > delta {
			return false
		}
	}
	return true
}
