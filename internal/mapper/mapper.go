// Package mapper converts geometries and query rectangles into H3 cells.
package mapper

import (
	"errors"

	"github.com/mohammed-shakir/geomcore/internal/core/model"
	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

var (
	ErrTooManyCells  = errors.New("cover exceeds cell limit")
	ErrNotGeographic = errors.New("coordinates outside longitude/latitude range")
)

// Interface maps geometry onto a discrete global grid. Cover methods may
// fail with ErrTooManyCells or ErrNotGeographic; callers fall back to a
// non-indexed path on either.
type Interface interface {
	CellsForBbox(b geometry.Bbox, res int) (model.Cells, error)
	CellsForGeometry(g geometry.Geometry, res int) (model.Cells, error)
	Parents(cells model.Cells, res int) (model.Cells, error)
	Children(cells model.Cells, res int) (model.Cells, error)
}
