// Package polyline converts line geometries to and from Google encoded
// polylines. Geometries use X for longitude and Y for latitude; the
// encoding stores latitude first at five decimal places.
package polyline

import (
	"errors"
	"fmt"

	"github.com/twpayne/go-polyline"

	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

var (
	ErrUnsupportedKind = errors.New("polyline: only LineString and LinearRing can be encoded")
	ErrOutOfRange      = errors.New("polyline: coordinate outside longitude/latitude range")
)

func Encode(g geometry.Geometry) (string, error) {
	var cs []geometry.Coordinate
	switch t := g.(type) {
	case geometry.LineString:
		cs = t.Coordinates
	case geometry.LinearRing:
		cs = t.Coordinates
	default:
		return "", fmt.Errorf("%w: got %s", ErrUnsupportedKind, g.Kind())
	}

	coords := make([][]float64, 0, len(cs))
	for _, c := range cs {
		if !inRange(c) {
			return "", fmt.Errorf("%w: %s", ErrOutOfRange, c)
		}
		coords = append(coords, []float64{c.Y, c.X})
	}
	return string(polyline.EncodeCoords(coords)), nil
}

// Decode returns the LineString for encoded, stamped with srid.
func Decode(encoded string, srid int) (geometry.LineString, error) {
	coords, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return geometry.LineString{}, fmt.Errorf("decode polyline: %w", err)
	}
	if len(rest) > 0 {
		return geometry.LineString{}, fmt.Errorf("decode polyline: %d trailing bytes", len(rest))
	}

	hdr := geometry.DefaultHeader()
	hdr.SRID = srid
	cs := make([]geometry.Coordinate, 0, len(coords))
	for _, ll := range coords {
		c := geometry.Coordinate{X: ll[1], Y: ll[0]}
		if !inRange(c) {
			return geometry.LineString{}, fmt.Errorf("%w: %s", ErrOutOfRange, c)
		}
		cs = append(cs, c)
	}
	if len(cs) == 0 {
		return geometry.LineString{Header: hdr}, nil
	}
	return geometry.LineString{Header: hdr, Coordinates: cs}, nil
}

func inRange(c geometry.Coordinate) bool {
	return c.IsFinite() && c.X >= -180 && c.X <= 180 && c.Y >= -90 && c.Y <= 90
}
