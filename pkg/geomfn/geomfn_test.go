package geomfn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

var c = geometry.C

func ring(cs ...geometry.Coordinate) geometry.LinearRing { return geometry.NewLinearRing(cs...) }

func squareRing(x, y, size float64) geometry.LinearRing {
	return ring(c(x, y), c(x+size, y), c(x+size, y+size), c(x, y+size), c(x, y))
}

func TestIsEmpty_Structural(t *testing.T) {
	assert.True(t, IsEmpty(geometry.Point{}))
	assert.True(t, IsEmpty(geometry.MultiPolygon{}))
	assert.False(t, IsEmpty(geometry.NewPoint(1, 2)))

	// A MultiPoint holding an empty Point has one member and is not empty.
	mp := geometry.NewMultiPoint(geometry.Point{})
	assert.False(t, IsEmpty(mp))
	assert.Equal(t, 0, NumPoints(mp))
}

func TestNumPointsAndCoordinates(t *testing.T) {
	p := geometry.NewPolygon(squareRing(0, 0, 10), squareRing(2, 2, 2))
	assert.Equal(t, 10, NumPoints(p))
	assert.Equal(t, c(2, 2), Coordinates(p)[5])
	assert.Equal(t, 0, NumPoints(geometry.LineString{}))
}

func TestBounds(t *testing.T) {
	g := geometry.NewMultiLineString(
		geometry.NewLineString(c(-1, 2), c(3, 4)),
		geometry.LineString{},
		geometry.NewLineString(c(0, -5)),
	)
	b, ok := Bounds(g)
	require.True(t, ok)
	assert.Equal(t, geometry.NewBbox(-1, -5, 4, 9), b)

	_, ok = Bounds(geometry.MultiPoint{})
	assert.False(t, ok)
}

func TestArea(t *testing.T) {
	assert.Equal(t, 100.0, Area(geometry.NewPolygon(squareRing(0, 0, 10))))

	withHole := geometry.NewPolygon(squareRing(0, 0, 10), squareRing(4, 4, 2))
	assert.Equal(t, 96.0, Area(withHole))

	// Clockwise winding gives the same magnitude.
	cw := geometry.NewPolygon(ring(c(0, 0), c(0, 10), c(10, 10), c(10, 0), c(0, 0)))
	assert.Equal(t, 100.0, Area(cw))

	mp := geometry.NewMultiPolygon(withHole, geometry.NewPolygon(squareRing(20, 20, 1)))
	assert.Equal(t, 97.0, Area(mp))

	assert.Equal(t, 0.0, Area(squareRing(0, 0, 10)), "a bare ring has no area")
	assert.Equal(t, 0.0, Area(geometry.Polygon{}))
}

func TestLength(t *testing.T) {
	assert.Equal(t, 0.0, Length(geometry.NewPoint(1, 1)))
	assert.Equal(t, 10.0, Length(geometry.NewLineString(c(0, 0), c(3, 4), c(6, 8))))
	assert.Equal(t, 48.0, Length(geometry.NewPolygon(squareRing(0, 0, 10), squareRing(4, 4, 2))))
	assert.Equal(t, 40.0, Length(squareRing(0, 0, 10)))
}

func TestCentroid(t *testing.T) {
	cases := []struct {
		name string
		g    geometry.Geometry
		want geometry.Coordinate
	}{
		{"point", geometry.NewPoint(3, 4), c(3, 4)},
		{"multipoint", geometry.NewMultiPoint(geometry.NewPoint(0, 0), geometry.NewPoint(4, 0), geometry.NewPoint(2, 6)), c(2, 2)},
		{"linestring", geometry.NewLineString(c(0, 0), c(10, 0), c(10, 10)), c(7.5, 2.5)},
		{"square", geometry.NewPolygon(squareRing(0, 0, 10)), c(5, 5)},
		{"square with hole", geometry.NewPolygon(squareRing(0, 0, 10), squareRing(1, 1, 2)), c(5.125, 5.125)},
		{"multipolygon", geometry.NewMultiPolygon(
			geometry.NewPolygon(squareRing(0, 0, 2)),
			geometry.NewPolygon(squareRing(10, 0, 2)),
		), c(6, 1)},
		{"multilinestring", geometry.NewMultiLineString(
			geometry.NewLineString(c(0, 0), c(2, 0)),
			geometry.NewLineString(c(0, 10), c(6, 10)),
		), c(2.5, 7.5)},
		{"zero length line", geometry.NewLineString(c(2, 2), c(2, 2)), c(2, 2)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Centroid(tc.g)
			require.True(t, ok)
			assert.InDelta(t, tc.want.X, got.X, 1e-9)
			assert.InDelta(t, tc.want.Y, got.Y, 1e-9)
		})
	}

	_, ok := Centroid(geometry.LineString{})
	assert.False(t, ok)
}

func TestDistance(t *testing.T) {
	poly := geometry.NewPolygon(squareRing(0, 0, 10))
	inside, outside := c(5, 5), c(15, 5)

	assert.Equal(t, 0.0, Distance(poly, &inside))
	assert.Equal(t, 5.0, Distance(poly, &outside))

	line := geometry.NewLineString(c(0, 0), c(10, 0))
	above := c(5, 3)
	assert.Equal(t, 3.0, Distance(line, &above))

	pt := geometry.NewPoint(0, 0)
	far := c(3, 4)
	assert.Equal(t, 5.0, Distance(pt, &far))
}

func TestDistance_Sentinels(t *testing.T) {
	assert.Equal(t, math.MaxFloat64, Distance(geometry.NewPoint(0, 0), nil))
	origin := c(0, 0)
	assert.Equal(t, math.MaxFloat64, Distance(geometry.LineString{}, &origin))
}

func TestIsSimple(t *testing.T) {
	assert.True(t, IsSimple(geometry.NewLineString(c(0, 0), c(10, 0), c(10, 10))))
	assert.True(t, IsSimple(geometry.NewLineString(c(0, 0), c(5, 0), c(10, 0))), "collinear continuation")
	assert.False(t, IsSimple(geometry.NewLineString(c(0, 0), c(10, 10), c(10, 0), c(0, 10))))
	assert.False(t, IsSimple(geometry.NewLineString(c(0, 0), c(10, 0), c(5, 0))), "folds back")
	assert.True(t, IsSimple(squareRing(0, 0, 10)))
	assert.True(t, IsSimple(geometry.NewMultiPoint(geometry.NewPoint(1, 1), geometry.NewPoint(1, 1))))
	assert.True(t, IsSimple(geometry.NewLineString(c(0, 0), c(10, 0), c(10, 10), c(0, 0))), "closed line")
	assert.True(t, IsSimple(geometry.NewLineString(c(0, 0), c(10, 0), c(10, 0), c(10, 10))), "repeated vertex")
	assert.True(t, IsSimple(ring(c(0, 0), c(10, 0), c(10, 0), c(10, 10), c(0, 10), c(0, 0))), "ring with repeated vertex")
	assert.False(t, IsSimple(geometry.NewLineString(c(0, 0), c(10, 0), c(10, 10), c(5, -5))), "line crossing its first segment")
}

func TestIsValid(t *testing.T) {
	bowtie := ring(c(0, 0), c(10, 10), c(10, 0), c(0, 10), c(0, 0))
	cases := []struct {
		name string
		g    geometry.Geometry
		want bool
	}{
		{"empty point", geometry.Point{}, true},
		{"line with one coordinate", geometry.NewLineString(c(1, 1)), false},
		{"empty line", geometry.LineString{}, true},
		{"line", geometry.NewLineString(c(0, 0), c(1, 1)), true},
		{"closed ring", squareRing(0, 0, 1), true},
		{"open ring", ring(c(0, 0), c(1, 0), c(1, 1), c(0, 1)), false},
		{"short ring", ring(c(0, 0), c(1, 0), c(0, 0)), false},
		{"bowtie ring", bowtie, false},
		{"bowtie polygon", geometry.NewPolygon(bowtie), false},
		{"empty polygon", geometry.Polygon{}, true},
		{"polygon with hole", geometry.NewPolygon(squareRing(0, 0, 10), squareRing(4, 4, 2)), true},
		{"hole outside", geometry.NewPolygon(squareRing(0, 0, 10), squareRing(20, 20, 2)), false},
		{"hole crossing exterior", geometry.NewPolygon(squareRing(0, 0, 10), squareRing(8, 8, 4)), false},
		{"polygon with repeated vertex", geometry.NewPolygon(ring(c(0, 0), c(10, 0), c(10, 0), c(10, 10), c(0, 10), c(0, 0))), true},
		{"ring collapsing to a spike", ring(c(0, 0), c(10, 0), c(10, 0), c(0, 0)), false},
		{"empty exterior", geometry.NewPolygon(geometry.LinearRing{}, squareRing(4, 4, 2)), false},
		{"multipolygon with bowtie", geometry.NewMultiPolygon(geometry.NewPolygon(squareRing(0, 0, 1)), geometry.NewPolygon(bowtie)), false},
		{"multilinestring", geometry.NewMultiLineString(geometry.NewLineString(c(0, 0), c(1, 1)), geometry.LineString{}), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsValid(tc.g))
		})
	}
}

func TestIntersects(t *testing.T) {
	poly := geometry.NewPolygon(squareRing(0, 0, 10))
	cases := []struct {
		name string
		a, b geometry.Geometry
		want bool
	}{
		{"crossing lines", geometry.NewLineString(c(0, 0), c(10, 10)), geometry.NewLineString(c(0, 10), c(10, 0)), true},
		{"disjoint lines", geometry.NewLineString(c(0, 0), c(1, 0)), geometry.NewLineString(c(0, 5), c(1, 5)), false},
		{"point inside polygon", poly, geometry.NewPoint(3, 3), true},
		{"point on boundary", poly, geometry.NewPoint(10, 3), true},
		{"point outside", poly, geometry.NewPoint(30, 3), false},
		{"nested polygon", poly, geometry.NewPolygon(squareRing(2, 2, 1)), true},
		{"line crossing edge", poly, geometry.NewLineString(c(-5, 5), c(5, 5)), true},
		{"equal points", geometry.NewPoint(1, 1), geometry.NewMultiPoint(geometry.NewPoint(0, 0), geometry.NewPoint(1, 1)), true},
		{"empty operand", poly, geometry.LineString{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Intersects(tc.a, tc.b))
			assert.Equal(t, tc.want, Intersects(tc.b, tc.a))
		})
	}
}

func TestEquals(t *testing.T) {
	a := geometry.NewLineString(c(0, 0), c(1, 1))
	b := geometry.NewLineString(c(0, 0), c(1, 1.0000001))
	assert.True(t, Equals(a, b, 1e-6))
	assert.False(t, Equals(a, b, 1e-9))
	assert.False(t, Equals(a, geometry.LinearRing(a), 1))
	assert.True(t, Equals(geometry.WithSRID(a, 4326), a, 0), "headers are ignored")
}
