package osprite

import (
	"image"
	"math"
)

// Vec2 is a point or a displacement in screen space.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Mul(k float64) Vec2 { return Vec2{v.X * k, v.Y * k} }

// Floor returns the integer point below and to the left of v.
func (v Vec2) Floor() image.Point {
	return image.Pt(int(math.Floor(v.X)), int(math.Floor(v.Y)))
}

// FromPoint converts an integer point into a Vec2.
func FromPoint(p image.Point) Vec2 {
	return Vec2{float64(p.X), float64(p.Y)}
}

// Polygon is a closed outline in image space. Selections are always
// axis aligned rectangles but are kept as polygons.
type Polygon []image.Point

// RectPolygon returns the four corner outline of two opposite corners,
// ordered p1, (p1.x, p2.y), p2, (p2.x, p1.y).
func RectPolygon(p1, p2 image.Point) Polygon {
	return Polygon{p1, image.Pt(p1.X, p2.Y), p2, image.Pt(p2.X, p1.Y)}
}

// Bounds returns the axis aligned bounding box of the polygon.
// The far edges are exclusive, so corners (1,1) and (4,4) cover 3x3 pixels.
func (p Polygon) Bounds() image.Rectangle {
	if len(p) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: p[0], Max: p[0]}
	for _, pt := range p[1:] {
		r.Min.X = min(r.Min.X, pt.X)
		r.Min.Y = min(r.Min.Y, pt.Y)
		r.Max.X = max(r.Max.X, pt.X)
		r.Max.Y = max(r.Max.Y, pt.Y)
	}
	return r
}

// Contains reports whether pt lies inside the polygon or on one of its edges.
func (p Polygon) Contains(pt image.Point) bool {
	px, py := float64(pt.X), float64(pt.Y)
	inside := false

	for i, j := 0, len(p)-1; i < len(p); j, i = i, i+1 {
		xi, yi := float64(p[i].X), float64(p[i].Y)
		xj, yj := float64(p[j].X), float64(p[j].Y)

		if (py-yi)*(xj-xi) == (px-xi)*(yj-yi) &&
			math.Min(xi, xj) <= px && px <= math.Max(xi, xj) &&
			math.Min(yi, yj) <= py && py <= math.Max(yi, yj) {
			return true
		}

		if (yi > py) != (yj > py) && px < (xj-xi)*(py-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// Translate returns a copy of the polygon moved by d.
func (p Polygon) Translate(d image.Point) Polygon {
	if p == nil {
		return nil
	}
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[i] = pt.Add(d)
	}
	return out
}

// Clone returns an independent copy of the polygon.
func (p Polygon) Clone() Polygon {
	return p.Translate(image.Point{})
}

// Equal reports whether both polygons have the same vertices in the same order.
func (p Polygon) Equal(o Polygon) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}
