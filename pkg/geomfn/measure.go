package geomfn

import (
	"math"

	"github.com/mohammed-shakir/geomcore/pkg/geomath"
	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

// Area returns the unsigned area of areal geometries and 0 for the rest.
// Holes are subtracted from their polygon's exterior.
func Area(g geometry.Geometry) float64 {
	switch t := g.(type) {
	case geometry.Point, geometry.LineString, geometry.LinearRing,
		geometry.MultiPoint, geometry.MultiLineString:
		return 0
	case geometry.Polygon:
		return polygonArea(t)
	case geometry.MultiPolygon:
		sum := 0.0
		for _, p := range t.Polygons {
			sum += polygonArea(p)
		}
		return sum
	default:
		panic(unhandled(g))
	}
}

func polygonArea(p geometry.Polygon) float64 {
	ext, ok := p.Exterior()
	if !ok {
		return 0
	}
	a := math.Abs(signedArea(ext.Coordinates))
	for _, h := range p.Holes() {
		a -= math.Abs(signedArea(h.Coordinates))
	}
	return a
}

// signedArea applies the shoelace formula; counter-clockwise rings are positive.
func signedArea(ring []geometry.Coordinate) float64 {
	n := len(ring)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := range n {
		j := (i + 1) % n
		sum += ring[i].Cross(ring[j])
	}
	return sum / 2
}

// Length sums segment lengths. Polygons contribute the perimeter of every
// ring; points contribute nothing.
func Length(g geometry.Geometry) float64 {
	switch t := g.(type) {
	case geometry.Point, geometry.MultiPoint:
		return 0
	case geometry.LineString:
		return pathLength(t.Coordinates)
	case geometry.LinearRing:
		return pathLength(t.Coordinates)
	case geometry.Polygon:
		sum := 0.0
		for _, r := range t.Rings {
			sum += pathLength(r.Coordinates)
		}
		return sum
	case geometry.MultiLineString:
		sum := 0.0
		for _, l := range t.LineStrings {
			sum += pathLength(l.Coordinates)
		}
		return sum
	case geometry.MultiPolygon:
		sum := 0.0
		for _, p := range t.Polygons {
			sum += Length(p)
		}
		return sum
	default:
		panic(unhandled(g))
	}
}

func pathLength(cs []geometry.Coordinate) float64 {
	sum := 0.0
	for i := 1; i < len(cs); i++ {
		sum += geomath.Distance(cs[i-1], cs[i])
	}
	return sum
}

// Distance returns the smallest distance between c and any point of g. A
// point inside an areal geometry is at distance 0.
//
// A nil c yields math.MaxFloat64 rather than an error, and so does an
// empty g; callers rely on that sentinel.
func Distance(g geometry.Geometry, c *geometry.Coordinate) float64 {
	if c == nil {
		return math.MaxFloat64
	}
	if isAreal(g) && geomath.IsWithin(g, *c) {
		return 0
	}
	best := math.MaxFloat64
	for _, s := range segments(g) {
		d := geomath.DistanceToSegment(s.A, s.B, *c)
		if d < best {
			best = d
		}
	}
	return best
}

// Centroid returns the centre of mass of g, or false when g is empty.
//
// Points average their coordinates, lines weight segment midpoints by
// segment length, polygons use the shoelace centroid of the exterior with
// the holes taken out. Collections weight member centroids by the member's
// own measure (count, length or area). Inputs whose weight is zero fall
// back to the plain average of their coordinates.
func Centroid(g geometry.Geometry) (geometry.Coordinate, bool) {
	if IsEmpty(g) {
		return geometry.Coordinate{}, false
	}
	switch t := g.(type) {
	case geometry.Point:
		return t.Coordinates[0], true
	case geometry.MultiPoint:
		return meanOf(Coordinates(t))
	case geometry.LineString:
		return pathCentroid(t.Coordinates)
	case geometry.LinearRing:
		return pathCentroid(t.Coordinates)
	case geometry.MultiLineString:
		var acc weighted
		for _, l := range t.LineStrings {
			if c, ok := pathCentroid(l.Coordinates); ok {
				acc.add(c, pathLength(l.Coordinates))
			}
		}
		return acc.result(Coordinates(t))
	case geometry.Polygon:
		return polygonCentroid(t)
	case geometry.MultiPolygon:
		var acc weighted
		for _, p := range t.Polygons {
			if c, ok := polygonCentroid(p); ok {
				acc.add(c, polygonArea(p))
			}
		}
		return acc.result(Coordinates(t))
	default:
		panic(unhandled(g))
	}
}

// weighted accumulates a weighted mean of centroids.
type weighted struct {
	sx, sy, w float64
}

func (a *weighted) add(c geometry.Coordinate, w float64) {
	a.sx += c.X * w
	a.sy += c.Y * w
	a.w += w
}

func (a *weighted) result(fallback []geometry.Coordinate) (geometry.Coordinate, bool) {
	if a.w == 0 {
		return meanOf(fallback)
	}
	return geometry.Coordinate{X: a.sx / a.w, Y: a.sy / a.w}, true
}

func meanOf(cs []geometry.Coordinate) (geometry.Coordinate, bool) {
	if len(cs) == 0 {
		return geometry.Coordinate{}, false
	}
	var sx, sy float64
	for _, c := range cs {
		sx += c.X
		sy += c.Y
	}
	n := float64(len(cs))
	return geometry.Coordinate{X: sx / n, Y: sy / n}, true
}

func pathCentroid(cs []geometry.Coordinate) (geometry.Coordinate, bool) {
	var acc weighted
	for i := 1; i < len(cs); i++ {
		a, b := cs[i-1], cs[i]
		mid := geometry.Coordinate{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
		acc.add(mid, geomath.Distance(a, b))
	}
	return acc.result(cs)
}

// ringMoments returns the unsigned area of a ring and its area centroid.
func ringMoments(ring []geometry.Coordinate) (float64, geometry.Coordinate) {
	n := len(ring)
	var a, cx, cy float64
	for i := range n {
		p, q := ring[i], ring[(i+1)%n]
		cross := p.Cross(q)
		a += cross
		cx += (p.X + q.X) * cross
		cy += (p.Y + q.Y) * cross
	}
	a /= 2
	if a == 0 {
		return 0, geometry.Coordinate{}
	}
	c := geometry.Coordinate{X: cx / (6 * a), Y: cy / (6 * a)}
	return math.Abs(a), c
}

func polygonCentroid(p geometry.Polygon) (geometry.Coordinate, bool) {
	ext, ok := p.Exterior()
	if !ok || len(ext.Coordinates) == 0 {
		return geometry.Coordinate{}, false
	}
	var acc weighted
	area, c := ringMoments(ext.Coordinates)
	acc.add(c, area)
	for _, h := range p.Holes() {
		ha, hc := ringMoments(h.Coordinates)
		acc.add(hc, -ha)
	}
	if acc.w <= 0 {
		return pathCentroid(ext.Coordinates)
	}
	return acc.result(ext.Coordinates)
}
