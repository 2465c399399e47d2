package imop

import (
	"fmt"
	"image"
	"image/color"

	"github.com/egtoney/osprite/utils"
)

// Porter-Duff operators supported by Composite.
const (
	Copy    = "copy"
	SrcOver = "src_over"
)

// Composite holds the currently active composition operator.
type Composite struct {
	current string
	ops     []string
}

// InitOp returns a Composite using the source-over operator.
func InitOp() *Composite {
	return &Composite{
		current: SrcOver,
		ops:     []string{Copy, SrcOver},
	}
}

// Set activates one of the supported composition operators.
func (op *Composite) Set(cop string) error {
	if !utils.Contains(op.ops, cop) {
		return fmt.Errorf("unsupported composite operation: %q", cop)
	}
	op.current = cop
	return nil
}

// Draw composites src over dst in place, placing the top left corner of src at pt.
// Only the overlapping area is touched.
func (op *Composite) Draw(dst, src *image.NRGBA, pt image.Point) {
	sb := src.Bounds()
	area := sb.Sub(sb.Min).Add(pt).Intersect(dst.Bounds())
	if area.Empty() {
		return
	}

	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			si := src.PixOffset(sb.Min.X+x-pt.X, sb.Min.Y+y-pt.Y)
			di := dst.PixOffset(x, y)

			s := src.Pix[si : si+4 : si+4]
			d := dst.Pix[di : di+4 : di+4]

			var out color.NRGBA
			switch op.current {
			case Copy:
				out = color.NRGBA{R: s[0], G: s[1], B: s[2], A: s[3]}
			default:
				out = BlendNormal(RGB{d[0], d[1], d[2], d[3]}, RGB{s[0], s[1], s[2], s[3]}).NRGBA()
			}
			d[0], d[1], d[2], d[3] = out.R, out.G, out.B, out.A
		}
	}
}

// Checkerboard fills dst with alternating cells of the light and dark colors,
// the usual backdrop shown under transparent pixels. The pattern is anchored at origin.
func Checkerboard(dst *image.NRGBA, origin image.Point, cell int, light, dark RGB) {
	if cell <= 0 {
		cell = 1
	}
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		cy := floorDiv(y-origin.Y, cell)
		for x := b.Min.X; x < b.Max.X; x++ {
			c := light
			if (floorDiv(x-origin.X, cell)+cy)%2 != 0 {
				c = dark
			}
			i := dst.PixOffset(x, y)
			dst.Pix[i+0], dst.Pix[i+1], dst.Pix[i+2], dst.Pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
