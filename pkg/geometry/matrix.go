package geometry

import (
	"errors"
	"math"
)

// ErrSingularMatrix is returned by Invert for a matrix with zero determinant.
var ErrSingularMatrix = errors.New("matrix is not invertible")

// Matrix is a 2x3 affine transform:
//
//	x' = XX*x + XY*y + DX
//	y' = YX*x + YY*y + DY
type Matrix struct {
	XX, XY float64
	YX, YY float64
	DX, DY float64
}

func Identity() Matrix {
	return Matrix{XX: 1, YY: 1}
}

func Translate(dx, dy float64) Matrix {
	return Matrix{XX: 1, YY: 1, DX: dx, DY: dy}
}

func Scale(sx, sy float64) Matrix {
	return Matrix{XX: sx, YY: sy}
}

// Rotate returns a counter-clockwise rotation by angle radians about the origin.
func Rotate(angle float64) Matrix {
	s, c := math.Sincos(angle)
	return Matrix{XX: c, XY: -s, YX: s, YY: c}
}

func (m Matrix) Apply(c Coordinate) Coordinate {
	return Coordinate{
		X: m.XX*c.X + m.XY*c.Y + m.DX,
		Y: m.YX*c.X + m.YY*c.Y + m.DY,
	}
}

// Multiply returns the transform that applies o first and then m.
func (m Matrix) Multiply(o Matrix) Matrix {
	return Matrix{
		XX: m.XX*o.XX + m.XY*o.YX,
		XY: m.XX*o.XY + m.XY*o.YY,
		YX: m.YX*o.XX + m.YY*o.YX,
		YY: m.YX*o.XY + m.YY*o.YY,
		DX: m.XX*o.DX + m.XY*o.DY + m.DX,
		DY: m.YX*o.DX + m.YY*o.DY + m.DY,
	}
}

func (m Matrix) Determinant() float64 {
	return m.XX*m.YY - m.XY*m.YX
}

func (m Matrix) Invert() (Matrix, error) {
	det := m.Determinant()
	if det == 0 || math.IsNaN(det) {
		return Matrix{}, ErrSingularMatrix
	}
	inv := 1 / det
	return Matrix{
		XX: m.YY * inv,
		XY: -m.XY * inv,
		YX: -m.YX * inv,
		YY: m.XX * inv,
		DX: (m.XY*m.DY - m.YY*m.DX) * inv,
		DY: (m.YX*m.DX - m.XX*m.DY) * inv,
	}, nil
}
