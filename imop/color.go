package imop

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/egtoney/osprite/utils"
)

// Color is implemented by every color representation of the package.
// RGB is the canonical form, HSV and HSL are views converted through it.
type Color interface {
	color.Color
	ToRGB() RGB
}

// RGB is a non-premultiplied 8 bit per channel color.
type RGB struct {
	R, G, B, A uint8
}

// HSV holds the hue in degrees [0,360), saturation and value in percents [0,100].
type HSV struct {
	H, S, V float64
	A       uint8
}

// HSL holds the hue in degrees [0,360), saturation and lightness in percents [0,100].
type HSL struct {
	H, S, L float64
	A       uint8
}

var (
	Clear   = RGB{0, 0, 0, 0}
	White   = RGB{255, 255, 255, 255}
	Black   = RGB{0, 0, 0, 255}
	Grey    = RGB{128, 128, 128, 255}
	Red     = RGB{255, 0, 0, 255}
	Yellow  = RGB{255, 255, 0, 255}
	Green   = RGB{0, 255, 0, 255}
	Cyan    = RGB{0, 255, 255, 255}
	Blue    = RGB{0, 0, 255, 255}
	Magenta = RGB{255, 0, 255, 255}
)

// RGBA implements the color.Color interface.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

// ToRGB returns the color itself.
func (c RGB) ToRGB() RGB { return c }

// NRGBA converts the color to its image/color counterpart.
func (c RGB) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Hex formats the color as #rrggbbaa.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// String returns the CSS like rgba() notation of the color.
func (c RGB) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.R, c.G, c.B, float64(c.A)/255)
}

func (c HSV) RGBA() (r, g, b, a uint32) { return c.ToRGB().RGBA() }

// ToRGB converts the HSV color into RGB, clamping and rounding every channel.
func (c HSV) ToRGB() RGB {
	s := c.S / 100
	v := c.V / 100

	chroma := v * s
	r, g, b := hueToRGB(c.H, chroma)
	m := v - chroma

	return RGB{R: toChannel(r + m), G: toChannel(g + m), B: toChannel(b + m), A: c.A}
}

func (c HSL) RGBA() (r, g, b, a uint32) { return c.ToRGB().RGBA() }

// ToRGB converts the HSL color into RGB, clamping and rounding every channel.
func (c HSL) ToRGB() RGB {
	s := c.S / 100
	l := c.L / 100

	chroma := (1 - math.Abs(2*l-1)) * s
	r, g, b := hueToRGB(c.H, chroma)
	m := l - chroma/2

	return RGB{R: toChannel(r + m), G: toChannel(g + m), B: toChannel(b + m), A: c.A}
}

// hueToRGB returns the unshifted channel values for the given hue sector.
func hueToRGB(h, chroma float64) (r, g, b float64) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	x := chroma * (1 - math.Abs(math.Mod(h/60, 2)-1))

	switch {
	case h < 60:
		return chroma, x, 0
	case h < 120:
		return x, chroma, 0
	case h < 180:
		return 0, chroma, x
	case h < 240:
		return 0, x, chroma
	case h < 300:
		return x, 0, chroma
	default:
		return chroma, 0, x
	}
}

// toChannel maps a normalized [0,1] value to a clamped 8 bit channel.
func toChannel(v float64) uint8 {
	return uint8(utils.Clamp(math.Round(v*255), 0, 255))
}

// hue computes the hue in degrees of the normalized rgb triplet.
func hue(r, g, b, max, delta float64) float64 {
	if delta == 0 {
		return 0
	}
	var h float64
	switch max {
	case r:
		h = math.Mod((g-b)/delta, 6)
	case g:
		h = (b-r)/delta + 2
	default:
		h = (r-g)/delta + 4
	}
	h *= 60
	if h < 0 {
		h += 360
	}
	return h
}

// ToRGB converts any color representation into the canonical RGB form.
func ToRGB(c Color) RGB {
	return c.ToRGB()
}

// ToHSV converts any color representation into HSV. The input always goes
// through RGB, so the result is in range even for an HSV or HSL input.
func ToHSV(c Color) HSV {
	rgb := c.ToRGB()
	r, g, b := float64(rgb.R)/255, float64(rgb.G)/255, float64(rgb.B)/255

	max := utils.Max(r, utils.Max(g, b))
	min := utils.Min(r, utils.Min(g, b))
	delta := max - min

	var s float64
	if max != 0 {
		s = delta / max * 100
	}
	return HSV{H: hue(r, g, b, max, delta), S: s, V: max * 100, A: rgb.A}
}

// ToHSL converts any color representation into HSL.
func ToHSL(c Color) HSL {
	rgb := c.ToRGB()
	r, g, b := float64(rgb.R)/255, float64(rgb.G)/255, float64(rgb.B)/255

	max := utils.Max(r, utils.Max(g, b))
	min := utils.Min(r, utils.Min(g, b))
	delta := max - min
	l := (max + min) / 2

	var s float64
	if delta != 0 {
		if l <= 0.5 {
			s = delta / (max + min)
		} else {
			s = delta / (2 - max - min)
		}
	}
	return HSL{H: hue(r, g, b, max, delta), S: s * 100, L: l * 100, A: rgb.A}
}

// FromColor converts a standard library color into RGB.
func FromColor(c color.Color) RGB {
	if c == nil {
		return Clear
	}
	if ic, ok := c.(Color); ok {
		return ic.ToRGB()
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B, A: n.A}
}

// Equal reports whether the two colors are identical once normalized to RGB.
// A nil color is never equal to anything.
func Equal(a, b Color) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ToRGB() == b.ToRGB()
}

// ParseHex parses a 3, 4, 6 or 8 digit hexadecimal color, with or without
// the leading hash. Single digit components are doubled and a missing alpha
// component defaults to 255. The second return value is false on malformed input.
func ParseHex(s string) (RGB, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")

	var width int
	switch len(s) {
	case 3, 4:
		width = 1
	case 6, 8:
		width = 2
	default:
		return RGB{}, false
	}

	comp := [4]uint8{255, 255, 255, 255}
	for i := 0; i*width < len(s); i++ {
		part := s[i*width : (i+1)*width]
		if width == 1 {
			part += part
		}
		v, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return RGB{}, false
		}
		comp[i] = uint8(v)
	}
	return RGB{R: comp[0], G: comp[1], B: comp[2], A: comp[3]}, true
}

// Luminance returns the relative luminance of the color.
func Luminance(c RGB) float64 {
	normalize := func(v uint8) float64 {
		n := float64(v) / 255
		if n <= 0.03928 {
			return n / 12.92
		}
		return math.Pow((n+0.055)/1.055, 2.4)
	}
	return 0.2126*normalize(c.R) + 0.7152*normalize(c.G) + 0.0722*normalize(c.B)
}

// Contrasting returns black or white, whichever reads better over bg.
func Contrasting(bg RGB) RGB {
	lum := Luminance(bg)
	if (1.0+0.05)/(lum+0.05) > (lum+0.05)/0.05 {
		return White
	}
	return Black
}
