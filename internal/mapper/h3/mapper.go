// Package h3mapper covers geometries with H3 cells. Coordinates are read as
// X = longitude and Y = latitude in degrees.
//
// A cover is conservative: polygon interiors are filled by cell centre and
// every boundary, line and point sample also adds the cell's immediate
// neighbours, so any cell the geometry touches is part of the result.
package h3mapper

import (
	"fmt"
	"math"
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/mohammed-shakir/geomcore/internal/core/model"
	"github.com/mohammed-shakir/geomcore/internal/mapper"
	"github.com/mohammed-shakir/geomcore/pkg/geomfn"
	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

const DefaultMaxCells = 50_000

// average hexagon edge length in km, indexed by resolution
var edgeKm = [16]float64{
	1281.256011, 483.0568391, 182.5129565, 68.97922179,
	26.07175968, 9.854090990, 3.724532667, 1.406475763,
	0.531414010, 0.200786148, 0.075863783, 0.028663897,
	0.010830188, 0.004092010, 0.001546100, 0.000584169,
}

const kmPerDegree = 111.32

type Mapper struct {
	maxCells int
}

type Option func(*Mapper)

// WithMaxCells bounds the size of a single cover; 0 or less disables the
// bound.
func WithMaxCells(n int) Option {
	return func(m *Mapper) { m.maxCells = n }
}

func New(opts ...Option) *Mapper {
	m := &Mapper{maxCells: DefaultMaxCells}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Mapper) CellsForBbox(b geometry.Bbox, res int) (model.Cells, error) {
	if err := validateRes(res); err != nil {
		return nil, err
	}
	if err := checkRange(b); err != nil {
		return nil, err
	}
	perimeter := 2 * (b.Width + b.Height)
	if err := m.checkEstimate(b.Width*b.Height, perimeter, res); err != nil {
		return nil, err
	}

	ring := []geometry.Coordinate{
		{X: b.X, Y: b.Y},
		{X: b.MaxX(), Y: b.Y},
		{X: b.MaxX(), Y: b.MaxY()},
		{X: b.X, Y: b.MaxY()},
		{X: b.X, Y: b.Y},
	}
	c := m.newCover(res)
	if b.Width > 0 && b.Height > 0 {
		c.fill(ring, nil)
	}
	c.path(ring)
	return c.result()
}

func (m *Mapper) CellsForGeometry(g geometry.Geometry, res int) (model.Cells, error) {
	if err := validateRes(res); err != nil {
		return nil, err
	}
	b, ok := geomfn.Bounds(g)
	if !ok {
		return model.Cells{}, nil
	}
	if err := checkRange(b); err != nil {
		return nil, err
	}
	area := 0.0
	if k := g.Kind(); k == geometry.KindPolygon || k == geometry.KindMultiPolygon {
		area = b.Width * b.Height
	}
	if err := m.checkEstimate(area, geomfn.Length(g), res); err != nil {
		return nil, err
	}

	c := m.newCover(res)
	c.geometry(g)
	return c.result()
}

// checkEstimate rejects covers whose predicted size is over the limit
// before any cell is computed. areaDeg2 and lengthDeg are in squared
// degrees and degrees.
func (m *Mapper) checkEstimate(areaDeg2, lengthDeg float64, res int) error {
	if m.maxCells <= 0 {
		return nil
	}
	e := edgeKm[res]
	cellArea := 3 * math.Sqrt(3) / 2 * e * e
	n := areaDeg2*kmPerDegree*kmPerDegree/cellArea + 7*lengthDeg/stepDegrees(res)
	if n > float64(m.maxCells) {
		return fmt.Errorf("%w: ~%.0f cells at res %d (limit %d)", mapper.ErrTooManyCells, n, res, m.maxCells)
	}
	return nil
}

func stepDegrees(res int) float64 {
	return edgeKm[res] / kmPerDegree / 2
}

func checkRange(b geometry.Bbox) error {
	if b.X < -180 || b.MaxX() > 180 || b.Y < -90 || b.MaxY() > 90 ||
		!b.Min().IsFinite() || !b.Max().IsFinite() {
		return fmt.Errorf("%w: %s", mapper.ErrNotGeographic, b)
	}
	return nil
}

func validateRes(res int) error {
	if res < 0 || res > 15 {
		return fmt.Errorf("invalid H3 resolution %d (must be 0..15)", res)
	}
	return nil
}

type cover struct {
	res   int
	limit int
	seen  map[h3.Cell]struct{}
	last  h3.Cell
	err   error
}

func (m *Mapper) newCover(res int) *cover {
	return &cover{res: res, limit: m.maxCells, seen: make(map[h3.Cell]struct{})}
}

func (c *cover) add(cells ...h3.Cell) {
	for _, x := range cells {
		c.seen[x] = struct{}{}
	}
	if c.limit > 0 && len(c.seen) > c.limit && c.err == nil {
		c.err = fmt.Errorf("%w: more than %d cells at res %d", mapper.ErrTooManyCells, c.limit, c.res)
	}
}

func (c *cover) fail(err error) {
	if c.err == nil {
		c.err = err
	}
}

func (c *cover) geometry(g geometry.Geometry) {
	switch t := g.(type) {
	case geometry.Point:
		for _, p := range t.Coordinates {
			c.point(p)
		}
	case geometry.LineString:
		c.path(t.Coordinates)
	case geometry.LinearRing:
		c.path(t.Coordinates)
	case geometry.Polygon:
		c.polygon(t)
	case geometry.MultiPoint:
		for _, p := range t.Points {
			c.geometry(p)
		}
	case geometry.MultiLineString:
		for _, l := range t.LineStrings {
			c.path(l.Coordinates)
		}
	case geometry.MultiPolygon:
		for _, p := range t.Polygons {
			c.polygon(p)
		}
	default:
		c.fail(fmt.Errorf("h3: unhandled geometry %T", g))
	}
}

func (c *cover) point(p geometry.Coordinate) {
	cell, err := h3.LatLngToCell(latLng(p), c.res)
	if err != nil {
		c.fail(fmt.Errorf("h3 cell for %s: %w", p, err))
		return
	}
	c.add(cell)
}

// path samples every segment at half the cell edge length and adds each
// sampled cell together with its neighbours.
func (c *cover) path(cs []geometry.Coordinate) {
	if len(cs) == 1 {
		c.sample(cs[0])
		return
	}
	step := stepDegrees(c.res)
	for i := 1; i < len(cs) && c.err == nil; i++ {
		a, b := cs[i-1], cs[i]
		d := b.Sub(a)
		n := int(math.Ceil(math.Hypot(d.X, d.Y) / step))
		if n == 0 {
			c.sample(a)
			continue
		}
		for j := 0; j <= n && c.err == nil; j++ {
			c.sample(a.Add(d.Mul(float64(j) / float64(n))))
		}
	}
}

func (c *cover) sample(p geometry.Coordinate) {
	cell, err := h3.LatLngToCell(latLng(p), c.res)
	if err != nil {
		c.fail(fmt.Errorf("h3 cell for %s: %w", p, err))
		return
	}
	if cell == c.last {
		return
	}
	c.last = cell
	disk, err := h3.GridDisk(cell, 1)
	if err != nil {
		c.fail(fmt.Errorf("h3 grid disk: %w", err))
		return
	}
	c.add(disk...)
}

func (c *cover) polygon(p geometry.Polygon) {
	ext, ok := p.Exterior()
	if !ok {
		return
	}
	var holes [][]geometry.Coordinate
	for _, h := range p.Holes() {
		holes = append(holes, h.Coordinates)
	}
	c.fill(ext.Coordinates, holes)
	for _, r := range p.Rings {
		c.path(r.Coordinates)
	}
}

// fill adds the cells whose centres lie inside the ring minus its holes.
func (c *cover) fill(outer []geometry.Coordinate, holes [][]geometry.Coordinate) {
	loop := toLoop(outer)
	if len(loop) < 3 || c.err != nil {
		return
	}
	poly := h3.GeoPolygon{GeoLoop: loop}
	for _, h := range holes {
		if hl := toLoop(h); len(hl) >= 3 {
			poly.Holes = append(poly.Holes, hl)
		}
	}
	cells, err := h3.PolygonToCells(poly, c.res)
	if err != nil {
		c.fail(fmt.Errorf("h3 polyfill: %w", err))
		return
	}
	c.add(cells...)
}

func (c *cover) result() (model.Cells, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := make(model.Cells, 0, len(c.seen))
	for cell := range c.seen {
		out = append(out, cell.String())
	}
	sort.Strings(out)
	return out, nil
}

func latLng(p geometry.Coordinate) h3.LatLng {
	return h3.LatLng{Lat: p.Y, Lng: p.X}
}

// toLoop converts a ring to an h3.GeoLoop, dropping the closing vertex.
func toLoop(ring []geometry.Coordinate) h3.GeoLoop {
	loop := make(h3.GeoLoop, 0, len(ring))
	for _, p := range ring {
		loop = append(loop, latLng(p))
	}
	if n := len(loop); n >= 2 && loop[0] == loop[n-1] {
		loop = loop[:n-1]
	}
	return loop
}
