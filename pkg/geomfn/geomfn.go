// Package geomfn implements queries and transforms over geometry trees:
// bounds, centroid, area, length, distance, validity and intersection.
//
// Every function dispatches on the concrete variant. The variant set is
// sealed, so the default branches are unreachable and panic.
package geomfn

import (
	"fmt"

	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

// segment is a pair of consecutive coordinates. Isolated points are
// represented as degenerate segments with A == B.
type segment struct {
	A, B geometry.Coordinate
}

func unhandled(g geometry.Geometry) string {
	return fmt.Sprintf("geomfn: unhandled geometry %T", g)
}

// IsEmpty reports whether g has no coordinates (leaf kinds) or no members
// (composite kinds). It only inspects the top-level node: a MultiPoint
// holding one empty Point is not empty.
func IsEmpty(g geometry.Geometry) bool {
	switch t := g.(type) {
	case geometry.Point:
		return len(t.Coordinates) == 0
	case geometry.LineString:
		return len(t.Coordinates) == 0
	case geometry.LinearRing:
		return len(t.Coordinates) == 0
	case geometry.Polygon:
		return len(t.Rings) == 0
	case geometry.MultiPoint:
		return len(t.Points) == 0
	case geometry.MultiLineString:
		return len(t.LineStrings) == 0
	case geometry.MultiPolygon:
		return len(t.Polygons) == 0
	default:
		panic(unhandled(g))
	}
}

func isAreal(g geometry.Geometry) bool {
	k := g.Kind()
	return k == geometry.KindPolygon || k == geometry.KindMultiPolygon
}

// NumPoints counts every coordinate in the tree.
func NumPoints(g geometry.Geometry) int {
	n := 0
	walkCoordinates(g, func(geometry.Coordinate) { n++ })
	return n
}

// Coordinates flattens the tree into a single slice in traversal order.
func Coordinates(g geometry.Geometry) []geometry.Coordinate {
	var out []geometry.Coordinate
	walkCoordinates(g, func(c geometry.Coordinate) { out = append(out, c) })
	return out
}

func walkCoordinates(g geometry.Geometry, fn func(geometry.Coordinate)) {
	each := func(cs []geometry.Coordinate) {
		for _, c := range cs {
			fn(c)
		}
	}
	switch t := g.(type) {
	case geometry.Point:
		each(t.Coordinates)
	case geometry.LineString:
		each(t.Coordinates)
	case geometry.LinearRing:
		each(t.Coordinates)
	case geometry.Polygon:
		for _, r := range t.Rings {
			each(r.Coordinates)
		}
	case geometry.MultiPoint:
		for _, p := range t.Points {
			each(p.Coordinates)
		}
	case geometry.MultiLineString:
		for _, l := range t.LineStrings {
			each(l.Coordinates)
		}
	case geometry.MultiPolygon:
		for _, p := range t.Polygons {
			walkCoordinates(p, fn)
		}
	default:
		panic(unhandled(g))
	}
}

// Bounds returns the minimal box enclosing every coordinate of g, or false
// when g holds no coordinates.
func Bounds(g geometry.Geometry) (geometry.Bbox, bool) {
	var (
		minX, minY, maxX, maxY float64
		seen                   bool
	)
	walkCoordinates(g, func(c geometry.Coordinate) {
		if !seen {
			minX, maxX, minY, maxY = c.X, c.X, c.Y, c.Y
			seen = true
			return
		}
		minX = min(minX, c.X)
		maxX = max(maxX, c.X)
		minY = min(minY, c.Y)
		maxY = max(maxY, c.Y)
	})
	if !seen {
		return geometry.Bbox{}, false
	}
	return geometry.Bbox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

func pathSegments(cs []geometry.Coordinate) []segment {
	if len(cs) == 1 {
		return []segment{{A: cs[0], B: cs[0]}}
	}
	if len(cs) < 2 {
		return nil
	}
	out := make([]segment, 0, len(cs)-1)
	for i := 1; i < len(cs); i++ {
		out = append(out, segment{A: cs[i-1], B: cs[i]})
	}
	return out
}

// segments flattens g into its boundary segments; points become degenerate
// segments so they take part in segment intersection tests.
func segments(g geometry.Geometry) []segment {
	switch t := g.(type) {
	case geometry.Point:
		return pathSegments(t.Coordinates)
	case geometry.LineString:
		return pathSegments(t.Coordinates)
	case geometry.LinearRing:
		return pathSegments(t.Coordinates)
	case geometry.Polygon:
		var out []segment
		for _, r := range t.Rings {
			out = append(out, pathSegments(r.Coordinates)...)
		}
		return out
	case geometry.MultiPoint:
		var out []segment
		for _, p := range t.Points {
			out = append(out, pathSegments(p.Coordinates)...)
		}
		return out
	case geometry.MultiLineString:
		var out []segment
		for _, l := range t.LineStrings {
			out = append(out, pathSegments(l.Coordinates)...)
		}
		return out
	case geometry.MultiPolygon:
		var out []segment
		for _, p := range t.Polygons {
			out = append(out, segments(p)...)
		}
		return out
	default:
		panic(unhandled(g))
	}
}
