// Package geomath holds planar analytic-geometry primitives: distances,
// segment intersection and point-in-ring tests.
package geomath

import (
	"fmt"
	"math"

	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

// TouchTolerance is the largest distance at which a coordinate is
// considered to lie on a geometry's boundary.
const TouchTolerance = 1e-10

// Distance returns the Euclidean distance between a and b.
func Distance(a, b geometry.Coordinate) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// DistanceToLine returns the perpendicular distance from p to the infinite
// line through a and b. The foot of the perpendicular is not clamped to the
// segment a-b; use DistanceToSegment for that. When a equals b the line is
// undefined and the distance to a is returned.
func DistanceToLine(a, b, p geometry.Coordinate) float64 {
	d := b.Sub(a)
	length := math.Hypot(d.X, d.Y)
	if length == 0 {
		return Distance(a, p)
	}
	return math.Abs(d.Cross(p.Sub(a))) / length
}

// DistanceToSegment returns the distance from p to the closest point of the
// bounded segment a-b.
func DistanceToSegment(a, b, p geometry.Coordinate) float64 {
	return Distance(Nearest(a, b, p), p)
}

// Nearest returns the point on the bounded segment a-b closest to p.
func Nearest(a, b, p geometry.Coordinate) geometry.Coordinate {
	d := b.Sub(a)
	lenSq := d.Dot(d)
	if lenSq == 0 {
		return a
	}
	u := p.Sub(a).Dot(d) / lenSq
	switch {
	case u <= 0:
		return a
	case u >= 1:
		return b
	default:
		return a.Add(d.Mul(u))
	}
}

// orientation returns >0 when p, q, r turn counter-clockwise, <0 when they
// turn clockwise and 0 when collinear.
func orientation(p, q, r geometry.Coordinate) float64 {
	return q.Sub(p).Cross(r.Sub(p))
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// onSegment reports whether r, known to be collinear with p-q, lies within
// the segment's extent.
func onSegment(p, q, r geometry.Coordinate) bool {
	return r.X >= math.Min(p.X, q.X) && r.X <= math.Max(p.X, q.X) &&
		r.Y >= math.Min(p.Y, q.Y) && r.Y <= math.Max(p.Y, q.Y)
}

// IntersectsLineSegment reports whether the bounded segments a1-a2 and b1-b2
// share at least one point. Touching endpoints and collinear overlap count.
func IntersectsLineSegment(a1, a2, b1, b2 geometry.Coordinate) bool {
	o1 := sign(orientation(a1, a2, b1))
	o2 := sign(orientation(a1, a2, b2))
	o3 := sign(orientation(b1, b2, a1))
	o4 := sign(orientation(b1, b2, a2))

	if o1 != o2 && o3 != o4 {
		return true
	}
	switch {
	case o1 == 0 && onSegment(a1, a2, b1):
		return true
	case o2 == 0 && onSegment(a1, a2, b2):
		return true
	case o3 == 0 && onSegment(b1, b2, a1):
		return true
	case o4 == 0 && onSegment(b1, b2, a2):
		return true
	}
	return false
}

// LineIntersection intersects the infinite lines through a1-a2 and b1-b2.
// Parallel distinct lines produce infinite components whose sign follows
// the direction of approach; coincident lines produce NaN. Check the result
// with Coordinate.IsFinite before treating it as a real point.
func LineIntersection(a1, a2, b1, b2 geometry.Coordinate) geometry.Coordinate {
	da := a1.Sub(a2)
	db := b1.Sub(b2)
	denom := da.Cross(db)
	detA := a1.Cross(a2)
	detB := b1.Cross(b2)
	return geometry.Coordinate{
		X: (detA*db.X - da.X*detB) / denom,
		Y: (detA*db.Y - da.Y*detB) / denom,
	}
}

// LineSegmentIntersection returns the crossing point of the bounded segments
// a1-a2 and b1-b2. Parallel segments, collinear ones included, report false.
func LineSegmentIntersection(a1, a2, b1, b2 geometry.Coordinate) (geometry.Coordinate, bool) {
	r := a2.Sub(a1)
	s := b2.Sub(b1)
	denom := r.Cross(s)
	if denom == 0 {
		return geometry.Coordinate{}, false
	}
	qp := b1.Sub(a1)
	t := qp.Cross(s) / denom
	u := qp.Cross(r) / denom
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return geometry.Coordinate{}, false
	}
	return a1.Add(r.Mul(t)), true
}

// IsWithin reports whether c lies in the interior of g using the even-odd
// rule. Geometries without area (points, lines) contain nothing.
func IsWithin(g geometry.Geometry, c geometry.Coordinate) bool {
	switch t := g.(type) {
	case geometry.Point, geometry.LineString, geometry.MultiPoint, geometry.MultiLineString:
		return false
	case geometry.LinearRing:
		return ringContains(t.Coordinates, c)
	case geometry.Polygon:
		return polygonContains(t, c)
	case geometry.MultiPolygon:
		for _, p := range t.Polygons {
			if polygonContains(p, c) {
				return true
			}
		}
		return false
	default:
		panic(fmt.Sprintf("geomath: unhandled geometry %T", g))
	}
}

func polygonContains(p geometry.Polygon, c geometry.Coordinate) bool {
	ext, ok := p.Exterior()
	if !ok || !ringContains(ext.Coordinates, c) {
		return false
	}
	for _, h := range p.Holes() {
		if ringContains(h.Coordinates, c) {
			return false
		}
	}
	return true
}

// ringContains casts a ray towards +X and counts edge crossings. The ring is
// treated as closed whether or not its last coordinate repeats the first.
func ringContains(ring []geometry.Coordinate, c geometry.Coordinate) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		pi, pj := ring[i], ring[j]
		if (pi.Y > c.Y) != (pj.Y > c.Y) {
			x := (pj.X-pi.X)*(c.Y-pi.Y)/(pj.Y-pi.Y) + pi.X
			if c.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Touches reports whether c lies on the boundary of g.
func Touches(g geometry.Geometry, c geometry.Coordinate) bool {
	switch t := g.(type) {
	case geometry.Point:
		return len(t.Coordinates) > 0 && t.Coordinates[0] == c
	case geometry.LineString:
		return onPath(t.Coordinates, c)
	case geometry.LinearRing:
		return onPath(t.Coordinates, c)
	case geometry.Polygon:
		for _, r := range t.Rings {
			if onPath(r.Coordinates, c) {
				return true
			}
		}
		return false
	case geometry.MultiPoint:
		for _, p := range t.Points {
			if Touches(p, c) {
				return true
			}
		}
		return false
	case geometry.MultiLineString:
		for _, l := range t.LineStrings {
			if onPath(l.Coordinates, c) {
				return true
			}
		}
		return false
	case geometry.MultiPolygon:
		for _, p := range t.Polygons {
			if Touches(p, c) {
				return true
			}
		}
		return false
	default:
		panic(fmt.Sprintf("geomath: unhandled geometry %T", g))
	}
}

func onPath(coords []geometry.Coordinate, c geometry.Coordinate) bool {
	if len(coords) == 1 {
		return Distance(coords[0], c) <= TouchTolerance
	}
	for i := 1; i < len(coords); i++ {
		if DistanceToSegment(coords[i-1], coords[i], c) <= TouchTolerance {
			return true
		}
	}
	return false
}
