package geometry

import "fmt"

// Bbox is an axis-aligned rectangle anchored at its minimum corner.
// Width and Height are normally non-negative; a box with both equal to
// zero is the degenerate box at a single point.
type Bbox struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

func NewBbox(x, y, width, height float64) Bbox {
	return Bbox{X: x, Y: y, Width: width, Height: height}
}

// BboxFromCorners builds the box spanning two arbitrary corner points.
func BboxFromCorners(a, b Coordinate) Bbox {
	minX, maxX := a.X, b.X
	if minX > maxX {
		minX, maxX = maxX, minX
	}
	minY, maxY := a.Y, b.Y
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	return Bbox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

func (b Bbox) MaxX() float64 { return b.X + b.Width }

func (b Bbox) MaxY() float64 { return b.Y + b.Height }

func (b Bbox) Min() Coordinate { return Coordinate{X: b.X, Y: b.Y} }

func (b Bbox) Max() Coordinate { return Coordinate{X: b.MaxX(), Y: b.MaxY()} }

// String matches the wfs/wms bbox parameter order minx,miny,maxx,maxy.
func (b Bbox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f", b.X, b.Y, b.MaxX(), b.MaxY())
}
