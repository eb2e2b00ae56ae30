package h3mapper

import (
	"errors"
	"reflect"
	"sort"
	"testing"

	h3 "github.com/uber/h3-go/v4"

	"github.com/mohammed-shakir/geomcore/internal/mapper"
	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

var _ mapper.Interface = (*Mapper)(nil)

func c(x, y float64) geometry.Coordinate { return geometry.C(x, y) }

func stockholmBox() geometry.Bbox {
	return geometry.BboxFromCorners(c(17.95, 59.30), c(18.15, 59.40))
}

func TestBbox_HappyPath_SortedUnique(t *testing.T) {
	m := New()

	cells, err := m.CellsForBbox(stockholmBox(), 8)
	if err != nil {
		t.Fatalf("CellsForBbox err: %v", err)
	}
	if len(cells) == 0 {
		t.Fatalf("expected non-empty cells for bbox")
	}
	if !sort.StringsAreSorted([]string(cells)) {
		t.Fatalf("cells must be sorted")
	}
	if hasDups(cells) {
		t.Fatalf("cells must be de-duplicated")
	}
}

func TestPolygon_SubsetOfBboxAndDeterministic(t *testing.T) {
	m := New()
	poly := geometry.NewPolygon(geometry.NewLinearRing(
		c(18.00, 59.32), c(18.12, 59.32), c(18.12, 59.38), c(18.00, 59.38), c(18.00, 59.32),
	))
	res := 9
	cp, err := m.CellsForGeometry(poly, res)
	if err != nil {
		t.Fatalf("polygon: %v", err)
	}
	cb, err := m.CellsForBbox(stockholmBox(), res)
	if err != nil {
		t.Fatalf("bbox: %v", err)
	}
	if len(cp) == 0 {
		t.Fatalf("expected non-empty polygon coverage")
	}
	if !sort.StringsAreSorted([]string(cp)) || hasDups(cp) {
		t.Fatalf("polygon cells must be sorted + unique")
	}
	cp2, err := m.CellsForGeometry(poly, res)
	if err != nil {
		t.Fatalf("polygon second call: %v", err)
	}
	if !reflect.DeepEqual(cp, cp2) {
		t.Fatalf("expected identical output for identical input")
	}
	inBox := make(map[string]struct{}, len(cb))
	for _, x := range cb {
		inBox[x] = struct{}{}
	}
	for _, x := range cp {
		if _, ok := inBox[x]; !ok {
			t.Fatalf("polygon cell %s missing from enclosing bbox cover", x)
		}
	}
}

func TestPoint_IsItsOwnCell(t *testing.T) {
	m := New()
	p := geometry.NewPoint(18.0686, 59.3293)
	cells, err := m.CellsForGeometry(p, 8)
	if err != nil {
		t.Fatalf("point: %v", err)
	}
	want, err := h3.LatLngToCell(h3.LatLng{Lat: 59.3293, Lng: 18.0686}, 8)
	if err != nil {
		t.Fatalf("LatLngToCell: %v", err)
	}
	if len(cells) != 1 || cells[0] != want.String() {
		t.Fatalf("cells=%v want [%s]", cells, want)
	}
}

func TestLine_CoversEveryVertexCell(t *testing.T) {
	m := New()
	line := geometry.NewLineString(c(18.00, 59.30), c(18.05, 59.33), c(18.10, 59.31))
	cells, err := m.CellsForGeometry(line, 9)
	if err != nil {
		t.Fatalf("line: %v", err)
	}
	for _, v := range line.Coordinates {
		cell, err := h3.LatLngToCell(h3.LatLng{Lat: v.Y, Lng: v.X}, 9)
		if err != nil {
			t.Fatalf("LatLngToCell: %v", err)
		}
		if !contains(cells, cell.String()) {
			t.Fatalf("vertex %s cell %s not covered", v, cell)
		}
	}
}

func TestDegenerateBbox_StillCovered(t *testing.T) {
	m := New()
	cells, err := m.CellsForBbox(geometry.NewBbox(18.0686, 59.3293, 0, 0), 8)
	if err != nil {
		t.Fatalf("zero-size bbox: %v", err)
	}
	if len(cells) != 7 {
		t.Fatalf("expected the point cell and its ring, got %d cells", len(cells))
	}
}

func TestEmptyGeometry_NoCells(t *testing.T) {
	cells, err := New().CellsForGeometry(geometry.Empty(geometry.KindPolygon, geometry.DefaultHeader()), 8)
	if err != nil || len(cells) != 0 {
		t.Fatalf("cells=%v err=%v", cells, err)
	}
}

func TestBounds_InvalidInputs(t *testing.T) {
	m := New()
	bb := geometry.BboxFromCorners(c(11, 55), c(12, 56))

	if _, err := m.CellsForBbox(bb, -1); err == nil {
		t.Fatalf("expected error for res=-1")
	}
	if _, err := m.CellsForBbox(bb, 16); err == nil {
		t.Fatalf("expected error for res=16")
	}

	projected := geometry.NewPoint(674000, 6580000)
	if _, err := m.CellsForGeometry(projected, 8); !errors.Is(err, mapper.ErrNotGeographic) {
		t.Fatalf("err=%v want ErrNotGeographic", err)
	}
}

func TestMaxCells_RejectsHugeCovers(t *testing.T) {
	m := New(WithMaxCells(100))
	world := geometry.BboxFromCorners(c(-170, -80), c(170, 80))
	if _, err := m.CellsForBbox(world, 8); !errors.Is(err, mapper.ErrTooManyCells) {
		t.Fatalf("err=%v want ErrTooManyCells", err)
	}

	europe := geometry.BboxFromCorners(c(-10, 35), c(30, 70))
	unbounded := New(WithMaxCells(0))
	cells, err := unbounded.CellsForBbox(europe, 2)
	if err != nil || len(cells) == 0 {
		t.Fatalf("res 2 cover without limit: cells=%d err=%v", len(cells), err)
	}
}

func hasDups(s []string) bool {
	seen := map[string]struct{}{}
	for _, v := range s {
		if _, ok := seen[v]; ok {
			return true
		}
		seen[v] = struct{}{}
	}
	return false
}
