package geomfn

import (
	"math"

	"github.com/mohammed-shakir/geomcore/pkg/geomath"
	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

// IsSimple reports whether no two non-adjacent segments of a line or ring
// meet. Collections are simple when every member is; crossings between
// different members are not considered.
func IsSimple(g geometry.Geometry) bool {
	switch t := g.(type) {
	case geometry.Point:
		return true
	case geometry.LineString:
		return pathIsSimple(t.Coordinates)
	case geometry.LinearRing:
		return pathIsSimple(t.Coordinates)
	case geometry.Polygon:
		for _, r := range t.Rings {
			if !IsSimple(r) {
				return false
			}
		}
		return true
	case geometry.MultiPoint:
		return true
	case geometry.MultiLineString:
		for _, l := range t.LineStrings {
			if !IsSimple(l) {
				return false
			}
		}
		return true
	case geometry.MultiPolygon:
		for _, p := range t.Polygons {
			if !IsSimple(p) {
				return false
			}
		}
		return true
	default:
		panic(unhandled(g))
	}
}

// pathIsSimple drops repeated consecutive vertices, then tests every pair
// of non-adjacent segments. The first and last segments of a closed path
// share its start vertex and count as adjacent.
func pathIsSimple(cs []geometry.Coordinate) bool {
	cs = dedupeConsecutive(cs)
	n := len(cs) - 1 // number of segments
	closed := n >= 2 && cs[0] == cs[n]
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if j == i+1 {
				if foldsBack(cs[i], cs[i+1], cs[j+1]) {
					return false
				}
				continue
			}
			if closed && i == 0 && j == n-1 {
				continue
			}
			if geomath.IntersectsLineSegment(cs[i], cs[i+1], cs[j], cs[j+1]) {
				return false
			}
		}
	}
	return true
}

func dedupeConsecutive(cs []geometry.Coordinate) []geometry.Coordinate {
	if len(cs) < 2 {
		return cs
	}
	out := make([]geometry.Coordinate, 1, len(cs))
	out[0] = cs[0]
	for _, c := range cs[1:] {
		if c != out[len(out)-1] {
			out = append(out, c)
		}
	}
	return out
}

// foldsBack reports whether the consecutive segments a-b and b-c overlap
// beyond their shared vertex b.
func foldsBack(a, b, c geometry.Coordinate) bool {
	if a == b || b == c {
		return false
	}
	return geomath.DistanceToSegment(a, b, c) == 0 || geomath.DistanceToSegment(b, c, a) == 0
}

// IsValid applies per-kind cardinality, closure and simplicity rules.
//
// A LineString needs zero or at least two coordinates. A LinearRing is
// either empty or has at least four coordinates, is closed and is simple.
// A Polygon is valid when it is empty, or when its exterior is non-empty,
// all of its rings are valid, no two rings meet, and every hole lies
// inside the exterior. Collections are valid when every member is.
func IsValid(g geometry.Geometry) bool {
	switch t := g.(type) {
	case geometry.Point:
		return len(t.Coordinates) <= 1
	case geometry.LineString:
		return len(t.Coordinates) != 1
	case geometry.LinearRing:
		return ringIsValid(t)
	case geometry.Polygon:
		return polygonIsValid(t)
	case geometry.MultiPoint:
		for _, p := range t.Points {
			if !IsValid(p) {
				return false
			}
		}
		return true
	case geometry.MultiLineString:
		for _, l := range t.LineStrings {
			if !IsValid(l) {
				return false
			}
		}
		return true
	case geometry.MultiPolygon:
		for _, p := range t.Polygons {
			if !polygonIsValid(p) {
				return false
			}
		}
		return true
	default:
		panic(unhandled(g))
	}
}

func ringIsValid(r geometry.LinearRing) bool {
	n := len(r.Coordinates)
	if n == 0 {
		return true
	}
	return n >= 4 && r.IsClosed() && pathIsSimple(r.Coordinates)
}

func polygonIsValid(p geometry.Polygon) bool {
	ext, ok := p.Exterior()
	if !ok {
		return true
	}
	if len(ext.Coordinates) == 0 || !ringIsValid(ext) {
		return false
	}
	var holes []geometry.LinearRing
	for _, h := range p.Holes() {
		if len(h.Coordinates) == 0 {
			continue
		}
		if !ringIsValid(h) {
			return false
		}
		for _, c := range h.Coordinates {
			if !geomath.IsWithin(ext, c) {
				return false
			}
		}
		holes = append(holes, h)
	}
	rings := append([]geometry.LinearRing{ext}, holes...)
	for i := range rings {
		for j := i + 1; j < len(rings); j++ {
			if pathsMeet(rings[i].Coordinates, rings[j].Coordinates) {
				return false
			}
		}
	}
	return true
}

func pathsMeet(a, b []geometry.Coordinate) bool {
	for _, sa := range pathSegments(a) {
		for _, sb := range pathSegments(b) {
			if geomath.IntersectsLineSegment(sa.A, sa.B, sb.A, sb.B) {
				return true
			}
		}
	}
	return false
}

// Intersects reports whether a and b share at least one point. Empty
// operands never intersect. Boundaries are compared segment by segment;
// when one operand is areal its interior is also tested against the
// other's vertices, so a geometry nested inside a polygon intersects it.
func Intersects(a, b geometry.Geometry) bool {
	if IsEmpty(a) || IsEmpty(b) {
		return false
	}
	if ba, ok := Bounds(a); ok {
		if bb, ok := Bounds(b); ok && !boxesMeet(ba, bb) {
			return false
		}
	}
	sb := segments(b)
	for _, x := range segments(a) {
		for _, y := range sb {
			if geomath.IntersectsLineSegment(x.A, x.B, y.A, y.B) {
				return true
			}
		}
	}
	return anyWithin(a, b) || anyWithin(b, a)
}

func boxesMeet(a, b geometry.Bbox) bool {
	return a.X <= b.MaxX() && b.X <= a.MaxX() && a.Y <= b.MaxY() && b.Y <= a.MaxY()
}

// anyWithin reports whether some vertex of inner lies in the interior of an
// areal outer.
func anyWithin(outer, inner geometry.Geometry) bool {
	if !isAreal(outer) {
		return false
	}
	found := false
	walkCoordinates(inner, func(c geometry.Coordinate) {
		if !found && geomath.IsWithin(outer, c) {
			found = true
		}
	})
	return found
}

// Equals compares kind, structure and coordinates within tolerance. Headers
// are not compared.
func Equals(a, b geometry.Geometry, tolerance float64) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch ta := a.(type) {
	case geometry.Point:
		return coordsEqual(ta.Coordinates, b.(geometry.Point).Coordinates, tolerance)
	case geometry.LineString:
		return coordsEqual(ta.Coordinates, b.(geometry.LineString).Coordinates, tolerance)
	case geometry.LinearRing:
		return coordsEqual(ta.Coordinates, b.(geometry.LinearRing).Coordinates, tolerance)
	case geometry.Polygon:
		tb := b.(geometry.Polygon)
		if len(ta.Rings) != len(tb.Rings) {
			return false
		}
		for i := range ta.Rings {
			if !coordsEqual(ta.Rings[i].Coordinates, tb.Rings[i].Coordinates, tolerance) {
				return false
			}
		}
		return true
	case geometry.MultiPoint:
		tb := b.(geometry.MultiPoint)
		if len(ta.Points) != len(tb.Points) {
			return false
		}
		for i := range ta.Points {
			if !Equals(ta.Points[i], tb.Points[i], tolerance) {
				return false
			}
		}
		return true
	case geometry.MultiLineString:
		tb := b.(geometry.MultiLineString)
		if len(ta.LineStrings) != len(tb.LineStrings) {
			return false
		}
		for i := range ta.LineStrings {
			if !Equals(ta.LineStrings[i], tb.LineStrings[i], tolerance) {
				return false
			}
		}
		return true
	case geometry.MultiPolygon:
		tb := b.(geometry.MultiPolygon)
		if len(ta.Polygons) != len(tb.Polygons) {
			return false
		}
		for i := range ta.Polygons {
			if !Equals(ta.Polygons[i], tb.Polygons[i], tolerance) {
				return false
			}
		}
		return true
	default:
		panic(unhandled(a))
	}
}

func coordsEqual(a, b []geometry.Coordinate, tolerance float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i].X-b[i].X) > tolerance || math.Abs(a[i].Y-b[i].Y) > tolerance {
			return false
		}
	}
	return true
}
