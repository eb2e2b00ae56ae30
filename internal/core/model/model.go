// Package model defines the request and response shapes shared by the HTTP
// API, the feature store and the ingest path.
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

type Cells []string

// BBox is the wire form of a query rectangle: min and max corners.
type BBox struct {
	X1, Y1 float64
	X2, Y2 float64
}

// String representation matching the bbox query parameter
func (b BBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.X1, b.Y1, b.X2, b.Y2)
}

func (b BBox) Geometry() geometry.Bbox {
	return geometry.BboxFromCorners(geometry.C(b.X1, b.Y1), geometry.C(b.X2, b.Y2))
}

// ParseBBox parses "x1,y1,x2,y2". Corners may be given in any order but
// must be finite.
func ParseBBox(s string) (BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return BBox{}, errors.New("expected 4 comma-separated values: x1,y1,x2,y2")
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return BBox{}, fmt.Errorf("value %d: %w", i+1, err)
		}
		if !geometry.C(f, 0).IsFinite() {
			return BBox{}, fmt.Errorf("value %d: not finite", i+1)
		}
		v[i] = f
	}
	return BBox{X1: v[0], Y1: v[1], X2: v[2], Y2: v[3]}, nil
}

// Bounds is the JSON rendering of a geometry.Bbox.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

func BoundsOf(b geometry.Bbox) *Bounds {
	return &Bounds{MinX: b.X, MinY: b.Y, MaxX: b.MaxX(), MaxY: b.MaxY()}
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p *Point) Coordinate() *geometry.Coordinate {
	if p == nil {
		return nil
	}
	c := geometry.C(p.X, p.Y)
	return &c
}

// GeometryRequest carries WKT or EWKT text. SRID, when set, overrides the
// SRID of the parsed text.
type GeometryRequest struct {
	WKT  string `json:"wkt"`
	SRID *int   `json:"srid,omitempty"`
}

type Summary struct {
	Kind      string  `json:"kind"`
	SRID      int     `json:"srid"`
	Empty     bool    `json:"empty"`
	NumPoints int     `json:"num_points"`
	Valid     bool    `json:"valid"`
	Simple    bool    `json:"simple"`
	Area      float64 `json:"area"`
	Length    float64 `json:"length"`
	Centroid  *Point  `json:"centroid,omitempty"`
	Bounds    *Bounds `json:"bounds,omitempty"`
	WKT       string  `json:"wkt"`
	EWKT      string  `json:"ewkt"`
}

// PairRequest carries two geometries. Tolerance is only read by equals.
type PairRequest struct {
	A         string  `json:"a"`
	B         string  `json:"b"`
	Tolerance float64 `json:"tolerance,omitempty"`
}

type DistanceRequest struct {
	WKT   string `json:"wkt"`
	Point *Point `json:"point,omitempty"`
}

type PointRequest struct {
	WKT   string `json:"wkt"`
	Point *Point `json:"point"`
}

// Matrix is the affine transform in row order: x' = a*x + b*y + c,
// y' = d*x + e*y + f.
type Matrix [6]float64

func (m Matrix) Geometry() geometry.Matrix {
	return geometry.Matrix{XX: m[0], XY: m[1], DX: m[2], YX: m[3], YY: m[4], DY: m[5]}
}

type TransformRequest struct {
	WKT    string `json:"wkt"`
	Matrix Matrix `json:"matrix"`
}

type CellsRequest struct {
	WKT       string `json:"wkt"`
	Res       *int   `json:"res,omitempty"`
	ParentRes *int   `json:"parent_res,omitempty"`
	ChildRes  *int   `json:"child_res,omitempty"`
}

type CellsResponse struct {
	Res   int   `json:"res"`
	Cells Cells `json:"cells"`
}

// Feature is a stored geometry as served by the layer API.
type Feature struct {
	Layer     string  `json:"layer"`
	ID        string  `json:"id"`
	EWKT      string  `json:"ewkt"`
	Bounds    *Bounds `json:"bounds,omitempty"`
	Version   int64   `json:"version"`
	UpdatedAt int64   `json:"updated_at"`
}

type FeatureCollection struct {
	Layer    string    `json:"layer"`
	BBox     string    `json:"bbox"`
	Features []Feature `json:"features"`
}
