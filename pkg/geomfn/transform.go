package geomfn

import (
	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

// CoordinateFunc maps one coordinate to another and may fail, as a
// reprojection callback does for points outside its domain.
type CoordinateFunc func(geometry.Coordinate) (geometry.Coordinate, error)

// Transform applies m to every coordinate and returns a new geometry of the
// same shape, kind and header.
func Transform(g geometry.Geometry, m geometry.Matrix) geometry.Geometry {
	return TransformFunc(g, func(c geometry.Coordinate) (geometry.Coordinate, error) {
		return m.Apply(c), nil
	})
}

// TransformFunc applies fn to every coordinate. When fn fails for any
// coordinate the whole result is the empty geometry of g's kind, carrying
// g's root header. The error itself is dropped.
func TransformFunc(g geometry.Geometry, fn CoordinateFunc) geometry.Geometry {
	out, err := transformGeometry(g, fn)
	if err != nil {
		return geometry.Empty(g.Kind(), g.Base())
	}
	return out
}

func transformGeometry(g geometry.Geometry, fn CoordinateFunc) (geometry.Geometry, error) {
	switch t := g.(type) {
	case geometry.Point:
		cs, err := transformCoords(t.Coordinates, fn)
		return geometry.Point{Header: t.Header, Coordinates: cs}, err
	case geometry.LineString:
		cs, err := transformCoords(t.Coordinates, fn)
		return geometry.LineString{Header: t.Header, Coordinates: cs}, err
	case geometry.LinearRing:
		return transformRing(t, fn)
	case geometry.Polygon:
		return transformPolygon(t, fn)
	case geometry.MultiPoint:
		pts, err := transformMembers(t.Points, func(p geometry.Point) (geometry.Point, error) {
			cs, err := transformCoords(p.Coordinates, fn)
			return geometry.Point{Header: p.Header, Coordinates: cs}, err
		})
		return geometry.MultiPoint{Header: t.Header, Points: pts}, err
	case geometry.MultiLineString:
		ls, err := transformMembers(t.LineStrings, func(l geometry.LineString) (geometry.LineString, error) {
			cs, err := transformCoords(l.Coordinates, fn)
			return geometry.LineString{Header: l.Header, Coordinates: cs}, err
		})
		return geometry.MultiLineString{Header: t.Header, LineStrings: ls}, err
	case geometry.MultiPolygon:
		ps, err := transformMembers(t.Polygons, func(p geometry.Polygon) (geometry.Polygon, error) {
			return transformPolygon(p, fn)
		})
		return geometry.MultiPolygon{Header: t.Header, Polygons: ps}, err
	default:
		panic(unhandled(g))
	}
}

func transformRing(r geometry.LinearRing, fn CoordinateFunc) (geometry.LinearRing, error) {
	cs, err := transformCoords(r.Coordinates, fn)
	return geometry.LinearRing{Header: r.Header, Coordinates: cs}, err
}

func transformPolygon(p geometry.Polygon, fn CoordinateFunc) (geometry.Polygon, error) {
	rings, err := transformMembers(p.Rings, func(r geometry.LinearRing) (geometry.LinearRing, error) {
		return transformRing(r, fn)
	})
	return geometry.Polygon{Header: p.Header, Rings: rings}, err
}

// transformMembers maps each member through fn and stops at the first
// failure. A nil slice stays nil.
func transformMembers[T any](members []T, fn func(T) (T, error)) ([]T, error) {
	if members == nil {
		return nil, nil
	}
	out := make([]T, len(members))
	for i, m := range members {
		v, err := fn(m)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func transformCoords(cs []geometry.Coordinate, fn CoordinateFunc) ([]geometry.Coordinate, error) {
	if cs == nil {
		return nil, nil
	}
	out := make([]geometry.Coordinate, len(cs))
	for i, c := range cs {
		tc, err := fn(c)
		if err != nil {
			return nil, err
		}
		out[i] = tc
	}
	return out, nil
}
