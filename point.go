package canvas

import "math"

// Point represents a 2D point or vector in page coordinates.
type Point struct {
	X, Y float64
}

// Pt is a convenience function to create a Point.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Add returns the sum of two points (vector addition).
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the difference of two points (vector subtraction).
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul returns the point scaled by a scalar.
func (p Point) Mul(s float64) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Snap rounds both coordinates independently to the nearest multiple of
// step. A non-positive step returns the point unchanged.
func (p Point) Snap(step float64) Point {
	if step <= 0 {
		return p
	}
	return Point{
		X: math.Round(p.X/step) * step,
		Y: math.Round(p.Y/step) * step,
	}
}

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	Min  Point
	Size Point
}

// R constructs a Rect from a top-left corner and a width/height pair.
func R(x, y, w, h float64) Rect {
	return Rect{Min: Point{X: x, Y: y}, Size: Point{X: w, Y: h}}
}

// Max returns the bottom-right corner of the rectangle.
func (r Rect) Max() Point {
	return r.Min.Add(r.Size)
}

// Translate returns the rectangle shifted by d.
func (r Rect) Translate(d Point) Rect {
	return Rect{Min: r.Min.Add(d), Size: r.Size}
}

// Contains reports whether p lies inside the rectangle (edges inclusive
// on the top-left, exclusive on the bottom-right).
func (r Rect) Contains(p Point) bool {
	m := r.Max()
	return p.X >= r.Min.X && p.X < m.X && p.Y >= r.Min.Y && p.Y < m.Y
}
