package osprite

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/egtoney/osprite/imop"
	xdraw "golang.org/x/image/draw"
)

// RenderOptions configure the look of a rendered frame.
type RenderOptions struct {
	CheckerSize  int
	CheckerLight imop.RGB
	CheckerDark  imop.RGB
	Background   imop.RGB
	ShowCursor   bool
}

// DefaultRenderOptions returns the grey checkerboard look of the editor.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		CheckerSize:  16,
		CheckerLight: imop.RGB{R: 204, G: 204, B: 204, A: 255},
		CheckerDark:  imop.RGB{R: 153, G: 153, B: 153, A: 255},
		Background:   imop.RGB{R: 48, G: 48, B: 48, A: 255},
		ShowCursor:   true,
	}
}

// Renderer composes a session into viewport sized frames on the CPU.
// The copy of layer 0 is only refreshed when the layer revision moves.
type Renderer struct {
	Options RenderOptions

	session  string
	revision uint64
	layer    *image.NRGBA
	rebuilds int
}

// NewRenderer creates a renderer with the given options.
func NewRenderer(opts RenderOptions) *Renderer {
	return &Renderer{Options: opts}
}

// Rebuilds returns how many times the layer cache was refreshed.
func (r *Renderer) Rebuilds() int { return r.rebuilds }

func (r *Renderer) layerImage(s *Session) *image.NRGBA {
	rev := s.buffer.Revision(0)
	if r.layer == nil || r.session != s.ID || r.revision != rev {
		r.layer = s.buffer.Image(0)
		r.session = s.ID
		r.revision = rev
		r.rebuilds++
		Logger().Debug("render cache rebuilt", "session", s.ID, "revision", rev)
	}
	return r.layer
}

// Render draws the session into dst, whose bounds are the viewport, and
// clears the session render flag.
func (r *Renderer) Render(s *Session, dst *image.NRGBA) {
	bg := r.Options.Background.NRGBA()
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	z := s.display.zoom()
	o := s.Origin()
	origin := image.Pt(int(math.Round(o.X)), int(math.Round(o.Y))).Add(dst.Bounds().Min)
	canvas := image.Rectangle{Min: origin, Max: origin.Add(image.Pt(s.buffer.Width*z, s.buffer.Height*z))}

	if visible := canvas.Intersect(dst.Bounds()); !visible.Empty() {
		imop.Checkerboard(dst.SubImage(visible).(*image.NRGBA), origin, r.Options.CheckerSize, r.Options.CheckerLight, r.Options.CheckerDark)
		layer := r.layerImage(s)
		xdraw.NearestNeighbor.Scale(dst, canvas, layer, layer.Bounds(), xdraw.Over, nil)
	}

	cell := func(rect image.Rectangle) image.Rectangle {
		return image.Rectangle{Min: rect.Min.Mul(z), Max: rect.Max.Mul(z)}.Add(origin)
	}

	if sel := s.selection; sel != nil {
		place := cell(sel.Placement())
		if sel.Data != nil {
			// Selected pixels replace the canvas under them once committed.
			if under := place.Intersect(canvas).Intersect(dst.Bounds()); !under.Empty() {
				imop.Checkerboard(dst.SubImage(under).(*image.NRGBA), origin, r.Options.CheckerSize, r.Options.CheckerLight, r.Options.CheckerDark)
			}
			src := sel.Data.NRGBA()
			xdraw.NearestNeighbor.Scale(dst, place, src, src.Bounds(), xdraw.Over, nil)
		}
		marchingAnts(dst, place)
	}

	if r.Options.ShowCursor && !s.brush.Press.Pressed {
		switch s.brush.Tool {
		case ToolPencil, ToolEraser:
			p := s.ImageCursor()
			area := shapeBounds(s.brush.brushShape()).Add(p)
			under, _ := s.buffer.GetPixel(0, p.X, p.Y)
			outline(dst, cell(area), imop.Contrasting(imop.BlendNormal(r.Options.CheckerLight, under)).NRGBA())
		}
	}
	s.MarkRendered()
}

// shapeBounds returns the smallest rectangle holding every offset of a brush shape.
func shapeBounds(shape []image.Point) image.Rectangle {
	if len(shape) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: shape[0], Max: shape[0].Add(image.Pt(1, 1))}
	for _, p := range shape[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return r
}

// outline draws a one pixel border just inside rect.
func outline(dst *image.NRGBA, rect image.Rectangle, c color.NRGBA) {
	if rect.Empty() {
		return
	}
	edges := []image.Rectangle{
		image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+1),
		image.Rect(rect.Min.X, rect.Max.Y-1, rect.Max.X, rect.Max.Y),
		image.Rect(rect.Min.X, rect.Min.Y, rect.Min.X+1, rect.Max.Y),
		image.Rect(rect.Max.X-1, rect.Min.Y, rect.Max.X, rect.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), &image.Uniform{C: c}, image.Point{}, draw.Src)
	}
}

// marchingAnts draws a dashed black and white border around rect.
func marchingAnts(dst *image.NRGBA, rect image.Rectangle) {
	const dash = 4
	b := dst.Bounds()
	put := func(x, y, i int) {
		if !image.Pt(x, y).In(b) {
			return
		}
		c := imop.White
		if (i/dash)%2 == 1 {
			c = imop.Black
		}
		dst.SetNRGBA(x, y, c.NRGBA())
	}
	for x := rect.Min.X; x < rect.Max.X; x++ {
		put(x, rect.Min.Y, x-rect.Min.X)
		put(x, rect.Max.Y-1, x-rect.Min.X)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		put(rect.Min.X, y, y-rect.Min.Y)
		put(rect.Max.X-1, y, y-rect.Min.Y)
	}
}
