package bbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohammed-shakir/geomcore/pkg/geometry"
)

func TestCenterPoint(t *testing.T) {
	assert.Equal(t, geometry.C(5, 5), CenterPoint(geometry.NewBbox(0, 0, 10, 10)))
}

func TestUnion(t *testing.T) {
	got := Union(geometry.NewBbox(-10, -10, 0, 0), geometry.NewBbox(0, 0, 10, 10))
	assert.Equal(t, geometry.NewBbox(-10, -10, 20, 20), got)
}

func TestUnion_DegenerateBoxActsAsPoint(t *testing.T) {
	got := Union(geometry.Bbox{}, geometry.NewBbox(5, 5, 5, 5))
	assert.Equal(t, geometry.NewBbox(0, 0, 10, 10), got)
}

func TestUnion_Idempotent(t *testing.T) {
	b := geometry.NewBbox(1.5, -3, 7, 2.25)
	assert.Equal(t, b, Union(b, b))
}

func TestIntersection(t *testing.T) {
	a := geometry.NewBbox(0, 0, 10, 10)

	got, ok := Intersection(a, geometry.NewBbox(5, 5, 10, 10))
	require.True(t, ok)
	assert.Equal(t, geometry.NewBbox(5, 5, 5, 5), got)

	got, ok = Intersection(a, geometry.NewBbox(10, 0, 5, 5))
	require.True(t, ok, "touching boxes overlap on an edge")
	assert.Equal(t, geometry.NewBbox(10, 0, 0, 5), got)

	_, ok = Intersection(a, geometry.NewBbox(20, 20, 1, 1))
	assert.False(t, ok)
	_, ok = Intersection(a, geometry.NewBbox(11, 0, 5, 5))
	assert.False(t, ok)
}

func TestIntersects_Symmetric(t *testing.T) {
	boxes := []geometry.Bbox{
		geometry.NewBbox(0, 0, 10, 10),
		geometry.NewBbox(10, 10, 1, 1),
		geometry.NewBbox(-5, 2, 3, 3),
		geometry.NewBbox(3, 3, 1, 1),
		geometry.NewBbox(100, 100, 0, 0),
	}
	for _, a := range boxes {
		for _, b := range boxes {
			assert.Equal(t, Intersects(a, b), Intersects(b, a), "a=%v b=%v", a, b)
		}
	}
	assert.True(t, Intersects(boxes[0], boxes[1]))
	assert.False(t, Intersects(boxes[0], boxes[2]))
}

func TestContains(t *testing.T) {
	outer := geometry.NewBbox(0, 0, 10, 10)
	assert.True(t, Contains(outer, geometry.NewBbox(2, 2, 3, 3)))
	assert.True(t, Contains(outer, outer))
	assert.False(t, Contains(outer, geometry.NewBbox(8, 8, 3, 3)))
}

func TestContainsCoordinate_MaxEdgeExcluded(t *testing.T) {
	b := geometry.NewBbox(0, 0, 10, 10)
	assert.True(t, ContainsCoordinate(b, geometry.C(0, 0)))
	assert.True(t, ContainsCoordinate(b, geometry.C(9.999, 5)))
	assert.False(t, ContainsCoordinate(b, geometry.C(10, 5)))
	assert.False(t, ContainsCoordinate(b, geometry.C(5, 10)))
	assert.False(t, ContainsCoordinate(geometry.Bbox{}, geometry.C(0, 0)))
}

func TestBufferAndScale(t *testing.T) {
	b := geometry.NewBbox(0, 0, 10, 4)
	assert.Equal(t, geometry.NewBbox(-1, -1, 12, 6), Buffer(b, 1))
	assert.Equal(t, geometry.NewBbox(-5, -2, 20, 8), Scale(b, 2))
	assert.Equal(t, CenterPoint(b), CenterPoint(Scale(b, 0.5)))
}

func TestIsEmpty(t *testing.T) {
	assert.True(t, IsEmpty(geometry.Bbox{}))
	assert.True(t, IsEmpty(geometry.NewBbox(3, 4, 0, 0)))
	assert.False(t, IsEmpty(geometry.NewBbox(0, 0, 0, 1)))
}

func TestEquals(t *testing.T) {
	a := geometry.NewBbox(0, 0, 10, 10)
	assert.True(t, Equals(a, geometry.NewBbox(0.0001, 0, 10, 10), 0.001))
	assert.False(t, Equals(a, geometry.NewBbox(0.1, 0, 10, 10), 0.001))
}

func TestExpand(t *testing.T) {
	got := Expand(geometry.NewBbox(0, 0, 1, 1), geometry.C(5, -2))
	assert.Equal(t, geometry.NewBbox(0, -2, 5, 3), got)
}
