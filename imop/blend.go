// Package imop implements the color model of the editor: the RGB, HSV and HSL
// representations, the blend modes used when a brush writes a pixel and the
// Porter-Duff composition operations used to place layers over their backdrop.
package imop

import (
	"fmt"
	"math"

	"github.com/egtoney/osprite/utils"
)

// BlendMode selects how a new color is combined with the existing pixel color.
type BlendMode string

const (
	Normal  BlendMode = "normal"
	Replace BlendMode = "replace"
	Pencil  BlendMode = "pencil"
)

var blendModes = []BlendMode{Normal, Replace, Pencil}

// Blend holds the currently active blend mode. The zero value uses Normal.
type Blend struct {
	Mode BlendMode
}

// Set activates one of the supported blend modes.
func (o *Blend) Set(mode BlendMode) error {
	if !utils.Contains(blendModes, mode) {
		return fmt.Errorf("unsupported blend mode: %q", mode)
	}
	o.Mode = mode
	return nil
}

// Get returns the currently active blend mode.
func (o *Blend) Get() BlendMode {
	if len(o.Mode) > 0 {
		return o.Mode
	}
	return Normal
}

// Apply blends fg over bg. Unknown modes fall back to normal blending.
func (m BlendMode) Apply(bg, fg RGB) RGB {
	switch m {
	case Replace:
		return BlendReplace(bg, fg)
	case Pencil:
		return BlendPencil(bg, fg)
	default:
		return BlendNormal(bg, fg)
	}
}

// BlendNormal composites fg over bg using standard "over" alpha compositing.
func BlendNormal(bg, fg RGB) RGB {
	fgA := float64(fg.A) / 255
	bgA := float64(bg.A) / 255

	alpha := fgA + bgA*(1-fgA)
	if alpha == 0 {
		return Clear
	}

	mix := func(f, b uint8) uint8 {
		v := (float64(f)*fgA + float64(b)*bgA*(1-fgA)) / alpha
		return uint8(utils.Clamp(math.Round(v), 0, 255))
	}

	return RGB{
		R: mix(fg.R, bg.R),
		G: mix(fg.G, bg.G),
		B: mix(fg.B, bg.B),
		A: uint8(utils.Clamp(math.Round(255*alpha), 0, 255)),
	}
}

// BlendReplace ignores the background and returns fg.
func BlendReplace(_, fg RGB) RGB {
	return fg
}

// BlendPencil replaces the background with an opaque fg, erases it with
// a fully transparent fg and otherwise blends normally.
func BlendPencil(bg, fg RGB) RGB {
	switch fg.A {
	case 255:
		return fg
	case 0:
		return Clear
	}
	return BlendNormal(bg, fg)
}
