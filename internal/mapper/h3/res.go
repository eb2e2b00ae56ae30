package h3mapper

import (
	"fmt"
	"math"
	"sort"

	h3 "github.com/uber/h3-go/v4"

	"github.com/mohammed-shakir/geomcore/internal/core/model"
	"github.com/mohammed-shakir/geomcore/internal/mapper"
)

func parseCell(cell string) (h3.Cell, error) {
	var c h3.Cell
	if err := c.UnmarshalText([]byte(cell)); err != nil {
		return 0, fmt.Errorf("parse cell: %w", err)
	}
	if !c.IsValid() {
		return 0, fmt.Errorf("invalid h3 cell %q", cell)
	}
	return c, nil
}

func (m *Mapper) ToParent(cell string, parentRes int) (string, error) {
	if err := validateRes(parentRes); err != nil {
		return "", err
	}
	c, err := parseCell(cell)
	if err != nil {
		return "", err
	}
	curRes := c.Resolution()
	if parentRes > curRes {
		return "", fmt.Errorf("parentRes %d must be <= cell resolution %d", parentRes, curRes)
	}
	if parentRes == curRes {
		return cell, nil
	}

	p, err := c.Parent(parentRes)
	if err != nil {
		return "", fmt.Errorf("h3 parent: %w", err)
	}
	return p.String(), nil
}

// Parents coarsens a cover to parentRes, sorted and de-duplicated.
func (m *Mapper) Parents(cells model.Cells, parentRes int) (model.Cells, error) {
	seen := make(map[string]struct{}, len(cells))
	out := make(model.Cells, 0, len(cells))
	for _, cell := range cells {
		p, err := m.ToParent(cell, parentRes)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out, nil
}

func (m *Mapper) ToChildren(cell string, childRes int) (model.Cells, error) {
	if err := validateRes(childRes); err != nil {
		return nil, err
	}
	c, err := parseCell(cell)
	if err != nil {
		return nil, err
	}
	curRes := c.Resolution()
	if childRes < curRes {
		return nil, fmt.Errorf("childRes %d must be >= cell resolution %d", childRes, curRes)
	}
	if childRes == curRes {
		return model.Cells{cell}, nil
	}

	kids, err := c.Children(childRes)
	if err != nil {
		return nil, fmt.Errorf("h3 children: %w", err)
	}
	out := make(model.Cells, 0, len(kids))
	for _, k := range kids {
		out = append(out, k.String())
	}
	sort.Strings(out)
	return out, nil
}

// Children refines a cover to childRes, sorted and de-duplicated. The
// refined size is bounded up front by seven children per level, so an
// oversized request fails with mapper.ErrTooManyCells before any cell is
// expanded.
func (m *Mapper) Children(cells model.Cells, childRes int) (model.Cells, error) {
	if err := validateRes(childRes); err != nil {
		return nil, err
	}
	if m.maxCells > 0 {
		n := 0.0
		for _, cell := range cells {
			c, err := parseCell(cell)
			if err != nil {
				return nil, err
			}
			n += math.Pow(7, float64(childRes-c.Resolution()))
		}
		if n > float64(m.maxCells) {
			return nil, fmt.Errorf("%w: up to %.0f cells at res %d (limit %d)", mapper.ErrTooManyCells, n, childRes, m.maxCells)
		}
	}
	seen := make(map[string]struct{}, len(cells))
	out := make(model.Cells, 0, len(cells))
	for _, cell := range cells {
		kids, err := m.ToChildren(cell, childRes)
		if err != nil {
			return nil, err
		}
		for _, k := range kids {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}
