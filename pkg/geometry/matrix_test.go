package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrix_Apply(t *testing.T) {
	m := Matrix{XX: 2, XY: 1, YX: 0, YY: 3, DX: 5, DY: -1}
	got := m.Apply(C(1, 2))
	assert.Equal(t, C(9, 5), got)
}

func TestMatrix_MultiplyAppliesRightOperandFirst(t *testing.T) {
	m := Translate(10, 0).Multiply(Scale(2, 2))
	assert.Equal(t, C(12, 2), m.Apply(C(1, 1)))

	m = Scale(2, 2).Multiply(Translate(10, 0))
	assert.Equal(t, C(22, 2), m.Apply(C(1, 1)))
}

func TestMatrix_RotateQuarterTurn(t *testing.T) {
	got := Rotate(math.Pi / 2).Apply(C(1, 0))
	assert.InDelta(t, 0, got.X, 1e-12)
	assert.InDelta(t, 1, got.Y, 1e-12)
}

func TestMatrix_InvertRoundTrip(t *testing.T) {
	m := Translate(3, -7).Multiply(Rotate(0.3)).Multiply(Scale(2, 0.5))
	inv, err := m.Invert()
	require.NoError(t, err)

	id := m.Multiply(inv)
	assert.InDelta(t, 1, id.XX, 1e-12)
	assert.InDelta(t, 0, id.XY, 1e-12)
	assert.InDelta(t, 0, id.YX, 1e-12)
	assert.InDelta(t, 1, id.YY, 1e-12)
	assert.InDelta(t, 0, id.DX, 1e-12)
	assert.InDelta(t, 0, id.DY, 1e-12)

	p := C(4.5, -2.25)
	back := inv.Apply(m.Apply(p))
	assert.InDelta(t, p.X, back.X, 1e-12)
	assert.InDelta(t, p.Y, back.Y, 1e-12)
}

func TestMatrix_InvertSingular(t *testing.T) {
	_, err := Scale(0, 1).Invert()
	assert.ErrorIs(t, err, ErrSingularMatrix)
}
