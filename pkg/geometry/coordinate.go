// Package geometry defines the planar geometry model: coordinates, bounding
// boxes, affine matrices and the seven OGC simple-feature kinds.
package geometry

import (
	"fmt"
	"math"
)

// Coordinate is an immutable 2-D point.
type Coordinate struct {
	X float64
	Y float64
}

func C(x, y float64) Coordinate { return Coordinate{X: x, Y: y} }

func (c Coordinate) String() string {
	return fmt.Sprintf("(%g, %g)", c.X, c.Y)
}

// IsFinite reports whether both components are neither NaN nor infinite.
func (c Coordinate) IsFinite() bool {
	return !math.IsNaN(c.X) && !math.IsInf(c.X, 0) && !math.IsNaN(c.Y) && !math.IsInf(c.Y, 0)
}

func (c Coordinate) Sub(o Coordinate) Coordinate { return Coordinate{X: c.X - o.X, Y: c.Y - o.Y} }

func (c Coordinate) Add(o Coordinate) Coordinate { return Coordinate{X: c.X + o.X, Y: c.Y + o.Y} }

func (c Coordinate) Mul(f float64) Coordinate { return Coordinate{X: c.X * f, Y: c.Y * f} }

// Cross returns the z component of the cross product c x o.
func (c Coordinate) Cross(o Coordinate) float64 { return c.X*o.Y - c.Y*o.X }

func (c Coordinate) Dot(o Coordinate) float64 { return c.X*o.X + c.Y*o.Y }
