package wkt

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

var keywords = map[geometry.Kind]string{
	geometry.KindPoint:           "POINT",
	geometry.KindLineString:      "LINESTRING",
	geometry.KindLinearRing:      "LINEARRING",
	geometry.KindPolygon:         "POLYGON",
	geometry.KindMultiPoint:      "MULTIPOINT",
	geometry.KindMultiLineString: "MULTILINESTRING",
	geometry.KindMultiPolygon:    "MULTIPOLYGON",
}

// Marshal formats g as WKT, e.g. "POINT (10.0 20.0)" or "LINESTRING EMPTY".
// Precision in the header is not applied; coordinates are written with the
// shortest representation that round-trips.
func Marshal(g geometry.Geometry) string {
	var b strings.Builder
	b.WriteString(keywords[g.Kind()])
	b.WriteByte(' ')
	writeBody(&b, g)
	return b.String()
}

// MarshalEWKT formats g as WKT prefixed with "SRID=<srid>;".
func MarshalEWKT(g geometry.Geometry) string {
	return fmt.Sprintf("%s%d;%s", sridPrefix, g.Base().SRID, Marshal(g))
}

func writeBody(b *strings.Builder, g geometry.Geometry) {
	switch t := g.(type) {
	case geometry.Point:
		writeCoords(b, t.Coordinates)
	case geometry.LineString:
		writeCoords(b, t.Coordinates)
	case geometry.LinearRing:
		writeCoords(b, t.Coordinates)
	case geometry.Polygon:
		writeMembers(b, len(t.Rings), func(i int) { writeCoords(b, t.Rings[i].Coordinates) })
	case geometry.MultiPoint:
		writeMembers(b, len(t.Points), func(i int) { writeCoords(b, t.Points[i].Coordinates) })
	case geometry.MultiLineString:
		writeMembers(b, len(t.LineStrings), func(i int) { writeCoords(b, t.LineStrings[i].Coordinates) })
	case geometry.MultiPolygon:
		writeMembers(b, len(t.Polygons), func(i int) { writeBody(b, t.Polygons[i]) })
	default:
		panic(fmt.Sprintf("wkt: unhandled geometry %T", g))
	}
}

func writeMembers(b *strings.Builder, n int, member func(i int)) {
	if n == 0 {
		b.WriteString("EMPTY")
		return
	}
	b.WriteByte('(')
	for i := range n {
		if i > 0 {
			b.WriteString(", ")
		}
		member(i)
	}
	b.WriteByte(')')
}

func writeCoords(b *strings.Builder, cs []geometry.Coordinate) {
	writeMembers(b, len(cs), func(i int) {
		b.WriteString(formatFloat(cs[i].X))
		b.WriteByte(' ')
		b.WriteString(formatFloat(cs[i].Y))
	})
}

// formatFloat always keeps at least one fractional digit: 10 becomes "10.0".
// NaN and infinities are written as Go formats them; Unmarshal rejects them.
func formatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsNaN(v) || math.IsInf(v, 0) || strings.ContainsRune(s, '.') {
		return s
	}
	return s + ".0"
}
