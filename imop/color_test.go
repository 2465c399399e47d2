package imop

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColor_ParseHex(t *testing.T) {
	testCases := []struct {
		in   string
		want RGB
		ok   bool
	}{
		{"ff0000", RGB{255, 0, 0, 255}, true},
		{"#ff000080", RGB{255, 0, 0, 128}, true},
		{"f00", RGB{255, 0, 0, 255}, true},
		{"f008", RGB{255, 0, 0, 136}, true},
		{"  00ff00  ", RGB{0, 255, 0, 255}, true},
		{"zz0000", RGB{}, false},
		{"ff00", RGB{255, 255, 0, 0}, true},
		{"12345", RGB{}, false},
		{"", RGB{}, false},
		{"#", RGB{}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseHex(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestColor_Hex(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("#ff000080", RGB{255, 0, 0, 128}.Hex())
	c, ok := ParseHex(Magenta.Hex())
	assert.True(ok)
	assert.Equal(Magenta, c)
}

func TestColor_Conversions(t *testing.T) {
	assert := assert.New(t)

	hsv := ToHSV(Red)
	assert.Equal(HSV{H: 0, S: 100, V: 100, A: 255}, hsv)
	assert.Equal(Red, hsv.ToRGB())

	hsl := ToHSL(Blue)
	assert.Equal(HSL{H: 240, S: 100, L: 50, A: 255}, hsl)
	assert.Equal(Blue, hsl.ToRGB())

	assert.Equal(Grey, ToRGB(ToHSV(Grey)))
	assert.Equal(Grey, ToRGB(ToHSL(Grey)))
	assert.Equal(uint8(42), ToHSL(RGB{10, 20, 30, 42}).A)

	// HSV and HSL views of the same color convert to each other through RGB.
	c := RGB{R: 18, G: 200, B: 77, A: 200}
	assert.Equal(c, ToRGB(ToHSL(ToHSV(c))))
}

func TestColor_ConversionRange(t *testing.T) {
	testCases := []struct {
		name string
		in   Color
	}{
		{"hsv out of range", HSV{H: 400, S: 150, V: -3}},
		{"hsv negative hue", HSV{H: -90, S: 50, V: 250, A: 255}},
		{"hsl out of range", HSL{H: 720, S: -20, L: 130, A: 255}},
		{"hsl in range", HSL{H: 120, S: 100, L: 25, A: 255}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			hsv := ToHSV(tc.in)
			assert.True(hsv.H >= 0 && hsv.H < 360, "hue %v", hsv.H)
			assert.True(hsv.S >= 0 && hsv.S <= 100, "saturation %v", hsv.S)
			assert.True(hsv.V >= 0 && hsv.V <= 100, "value %v", hsv.V)

			hsl := ToHSL(tc.in)
			assert.True(hsl.H >= 0 && hsl.H < 360, "hue %v", hsl.H)
			assert.True(hsl.S >= 0 && hsl.S <= 100, "saturation %v", hsl.S)
			assert.True(hsl.L >= 0 && hsl.L <= 100, "lightness %v", hsl.L)

			assert.Equal(tc.in.ToRGB(), hsv.ToRGB())
			assert.Equal(tc.in.ToRGB(), hsl.ToRGB())
		})
	}
}

func TestColor_RoundTrip(t *testing.T) {
	assert := assert.New(t)

	within := func(a, b float64) bool {
		d := a - b
		return d > -1 && d < 1
	}

	for r := 0; r < 256; r += 17 {
		for g := 0; g < 256; g += 51 {
			for b := 0; b < 256; b += 85 {
				c := RGB{uint8(r), uint8(g), uint8(b), 255}

				hsv := ToHSV(c)
				back := ToHSV(ToRGB(hsv))
				assert.True(within(hsv.S, back.S) && within(hsv.V, back.V), "hsv %v", c)

				hsl := ToHSL(c)
				backL := ToHSL(ToRGB(hsl))
				assert.True(within(hsl.S, backL.S) && within(hsl.L, backL.L), "hsl %v", c)

				assert.Equal(c, ToRGB(hsv))
				assert.Equal(c, ToRGB(hsl))
			}
		}
	}
}

func TestColor_Equal(t *testing.T) {
	assert := assert.New(t)

	assert.True(Equal(Red, HSV{H: 0, S: 100, V: 100, A: 255}))
	assert.False(Equal(Red, RGB{255, 0, 0, 254}))
	assert.False(Equal(nil, Red))
	assert.False(Equal(Red, nil))
}

func TestColor_FromColor(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(RGB{1, 2, 3, 4}, FromColor(color.NRGBA{1, 2, 3, 4}))
	assert.Equal(Clear, FromColor(nil))
	assert.Equal(Black, FromColor(color.Gray{}))
	assert.Equal(color.NRGBA{9, 8, 7, 6}, RGB{9, 8, 7, 6}.NRGBA())
}

func TestColor_Contrasting(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(Black, Contrasting(White))
	assert.Equal(White, Contrasting(Black))
	assert.Equal(Black, Contrasting(Yellow))
}
