package geometry

import "fmt"

// Kind identifies one of the seven geometry variants.
type Kind int

const (
	KindPoint Kind = iota + 1
	KindLineString
	KindLinearRing
	KindPolygon
	KindMultiPoint
	KindMultiLineString
	KindMultiPolygon
)

var kindNames = map[Kind]string{
	KindPoint:           "Point",
	KindLineString:      "LineString",
	KindLinearRing:      "LinearRing",
	KindPolygon:         "Polygon",
	KindMultiPoint:      "MultiPoint",
	KindMultiLineString: "MultiLineString",
	KindMultiPolygon:    "MultiPolygon",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Kinds lists every variant in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindPoint, KindLineString, KindLinearRing, KindPolygon,
		KindMultiPoint, KindMultiLineString, KindMultiPolygon,
	}
}

// UnspecifiedPrecision marks a geometry whose precision is unknown.
const UnspecifiedPrecision = -1

// Header carries the attributes every geometry has regardless of kind.
// SRID 0 means unspecified. Precision is the number of significant
// decimal digits; it is advisory and never enforced by arithmetic.
type Header struct {
	SRID      int
	Precision int
}

// DefaultHeader is the header used by the convenience constructors.
func DefaultHeader() Header {
	return Header{SRID: 0, Precision: UnspecifiedPrecision}
}

// Base returns the header itself; it is promoted into every variant.
func (h Header) Base() Header { return h }

// Geometry is implemented only by the seven variant types of this package.
// Variants are immutable values: operations build new trees instead of
// mutating, so subtrees can be shared freely.
type Geometry interface {
	Kind() Kind
	Base() Header
	isGeometry()
}

// Point holds zero (empty) or one coordinate.
type Point struct {
	Header
	Coordinates []Coordinate
}

// LineString holds zero (empty) or more coordinates; valid ones have at least two.
type LineString struct {
	Header
	Coordinates []Coordinate
}

// LinearRing is a closed LineString. Closure and the minimum of four
// coordinates are expectations checked by validity tests, not by construction.
type LinearRing struct {
	Header
	Coordinates []Coordinate
}

// Polygon holds its exterior ring at index 0 followed by any holes.
type Polygon struct {
	Header
	Rings []LinearRing
}

type MultiPoint struct {
	Header
	Points []Point
}

type MultiLineString struct {
	Header
	LineStrings []LineString
}

type MultiPolygon struct {
	Header
	Polygons []Polygon
}

func (Point) Kind() Kind           { return KindPoint }
func (LineString) Kind() Kind      { return KindLineString }
func (LinearRing) Kind() Kind      { return KindLinearRing }
func (Polygon) Kind() Kind         { return KindPolygon }
func (MultiPoint) Kind() Kind      { return KindMultiPoint }
func (MultiLineString) Kind() Kind { return KindMultiLineString }
func (MultiPolygon) Kind() Kind    { return KindMultiPolygon }

func (Point) isGeometry()           {}
func (LineString) isGeometry()      {}
func (LinearRing) isGeometry()      {}
func (Polygon) isGeometry()         {}
func (MultiPoint) isGeometry()      {}
func (MultiLineString) isGeometry() {}
func (MultiPolygon) isGeometry()    {}

// Exterior returns the exterior ring and false when the polygon is empty.
func (p Polygon) Exterior() (LinearRing, bool) {
	if len(p.Rings) == 0 {
		return LinearRing{}, false
	}
	return p.Rings[0], true
}

// Holes returns the interior rings.
func (p Polygon) Holes() []LinearRing {
	if len(p.Rings) < 2 {
		return nil
	}
	return p.Rings[1:]
}

// IsClosed reports whether the ring's first and last coordinates are equal.
func (r LinearRing) IsClosed() bool {
	n := len(r.Coordinates)
	return n > 0 && r.Coordinates[0] == r.Coordinates[n-1]
}

func NewPoint(x, y float64) Point {
	return Point{Header: DefaultHeader(), Coordinates: []Coordinate{{X: x, Y: y}}}
}

func NewLineString(coords ...Coordinate) LineString {
	return LineString{Header: DefaultHeader(), Coordinates: coords}
}

func NewLinearRing(coords ...Coordinate) LinearRing {
	return LinearRing{Header: DefaultHeader(), Coordinates: coords}
}

func NewPolygon(exterior LinearRing, holes ...LinearRing) Polygon {
	rings := make([]LinearRing, 0, 1+len(holes))
	rings = append(rings, exterior)
	rings = append(rings, holes...)
	return Polygon{Header: DefaultHeader(), Rings: rings}
}

func NewMultiPoint(points ...Point) MultiPoint {
	return MultiPoint{Header: DefaultHeader(), Points: points}
}

func NewMultiLineString(lines ...LineString) MultiLineString {
	return MultiLineString{Header: DefaultHeader(), LineStrings: lines}
}

func NewMultiPolygon(polygons ...Polygon) MultiPolygon {
	return MultiPolygon{Header: DefaultHeader(), Polygons: polygons}
}

// Empty returns the empty geometry of kind k carrying header h.
func Empty(k Kind, h Header) Geometry {
	switch k {
	case KindPoint:
		return Point{Header: h}
	case KindLineString:
		return LineString{Header: h}
	case KindLinearRing:
		return LinearRing{Header: h}
	case KindPolygon:
		return Polygon{Header: h}
	case KindMultiPoint:
		return MultiPoint{Header: h}
	case KindMultiLineString:
		return MultiLineString{Header: h}
	case KindMultiPolygon:
		return MultiPolygon{Header: h}
	default:
		panic(fmt.Sprintf("geometry: unknown kind %d", int(k)))
	}
}

// WithHeader returns g with h stamped on every node of the tree.
func WithHeader(g Geometry, h Header) Geometry {
	switch t := g.(type) {
	case Point:
		t.Header = h
		return t
	case LineString:
		t.Header = h
		return t
	case LinearRing:
		t.Header = h
		return t
	case Polygon:
		return polygonWithHeader(t, h)
	case MultiPoint:
		t.Header = h
		t.Points = restamp(t.Points, func(p Point) Point { p.Header = h; return p })
		return t
	case MultiLineString:
		t.Header = h
		t.LineStrings = restamp(t.LineStrings, func(l LineString) LineString { l.Header = h; return l })
		return t
	case MultiPolygon:
		t.Header = h
		t.Polygons = restamp(t.Polygons, func(p Polygon) Polygon { return polygonWithHeader(p, h) })
		return t
	default:
		panic(fmt.Sprintf("geometry: unhandled type %T", g))
	}
}

// WithSRID stamps the root header of g, with its SRID replaced, on every node.
func WithSRID(g Geometry, srid int) Geometry {
	h := g.Base()
	h.SRID = srid
	return WithHeader(g, h)
}

func polygonWithHeader(p Polygon, h Header) Polygon {
	p.Header = h
	p.Rings = restamp(p.Rings, func(r LinearRing) LinearRing { r.Header = h; return r })
	return p
}

// restamp copies members through fn. A nil slice stays nil.
func restamp[T any](members []T, fn func(T) T) []T {
	if members == nil {
		return nil
	}
	out := make([]T, len(members))
	for i, m := range members {
		out[i] = fn(m)
	}
	return out
}
