// Package bbox implements arithmetic over axis-aligned bounding boxes.
package bbox

import (
	"math"

	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

// Equals reports whether every edge of a lies within tolerance of the same edge of b.
func Equals(a, b geometry.Bbox, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance &&
		math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.MaxX()-b.MaxX()) <= tolerance &&
		math.Abs(a.MaxY()-b.MaxY()) <= tolerance
}

func CenterPoint(b geometry.Bbox) geometry.Coordinate {
	return geometry.Coordinate{X: b.X + b.Width/2, Y: b.Y + b.Height/2}
}

// Union returns the smallest box containing both a and b. A zero-size box
// contributes its anchor point.
func Union(a, b geometry.Bbox) geometry.Bbox {
	minX := math.Min(a.X, b.X)
	minY := math.Min(a.Y, b.Y)
	maxX := math.Max(a.MaxX(), b.MaxX())
	maxY := math.Max(a.MaxY(), b.MaxY())
	return geometry.Bbox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Intersection returns the overlap of a and b. Boxes that only touch yield a
// box with zero width or height; disjoint boxes yield false.
func Intersection(a, b geometry.Bbox) (geometry.Bbox, bool) {
	minX := math.Max(a.X, b.X)
	minY := math.Max(a.Y, b.Y)
	maxX := math.Min(a.MaxX(), b.MaxX())
	maxY := math.Min(a.MaxY(), b.MaxY())
	if minX > maxX || minY > maxY {
		return geometry.Bbox{}, false
	}
	return geometry.Bbox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// Intersects reports whether a and b overlap or touch.
func Intersects(a, b geometry.Bbox) bool {
	_, ok := Intersection(a, b)
	return ok
}

// Contains reports whether every corner of inner lies in the closed range of outer.
func Contains(outer, inner geometry.Bbox) bool {
	return inner.X >= outer.X && inner.Y >= outer.Y &&
		inner.MaxX() <= outer.MaxX() && inner.MaxY() <= outer.MaxY()
}

// ContainsCoordinate is closed on the minimum edges and open on the maximum
// edges, so a coordinate on MaxX or MaxY is outside and a zero-size box
// contains nothing.
func ContainsCoordinate(b geometry.Bbox, c geometry.Coordinate) bool {
	return c.X >= b.X && c.X < b.MaxX() &&
		c.Y >= b.Y && c.Y < b.MaxY()
}

// Buffer grows b by distance on every side. A negative distance shrinks it.
func Buffer(b geometry.Bbox, distance float64) geometry.Bbox {
	return geometry.Bbox{
		X:      b.X - distance,
		Y:      b.Y - distance,
		Width:  b.Width + 2*distance,
		Height: b.Height + 2*distance,
	}
}

// Scale multiplies the width and height by factor, keeping the centre fixed.
func Scale(b geometry.Bbox, factor float64) geometry.Bbox {
	c := CenterPoint(b)
	w := b.Width * factor
	h := b.Height * factor
	return geometry.Bbox{X: c.X - w/2, Y: c.Y - h/2, Width: w, Height: h}
}

func IsEmpty(b geometry.Bbox) bool {
	return b.Width == 0 && b.Height == 0
}

// Expand returns the smallest box containing b and c.
func Expand(b geometry.Bbox, c geometry.Coordinate) geometry.Bbox {
	return Union(b, geometry.Bbox{X: c.X, Y: c.Y})
}
