package matrix_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svg2pptx/svg2pptx/matrix"
)

func TestComposeIdentity(t *testing.T) {
	m := matrix.New(2, 0, 0, 3, 5, 7)
	assert.Equal(t, m, m.Compose(matrix.Identity))
	assert.Equal(t, m, matrix.Identity.Compose(m))
}

func TestComposeOrder(t *testing.T) {
	translate := matrix.Translation(10, 0)
	scale := matrix.Scaling(2, 2)

	// translate.Compose(scale) applies scale first, then translate.
	p := translate.Compose(scale).TransformPoint(matrix.Point{X: 1, Y: 1})
	assert.Equal(t, matrix.Point{X: 12, Y: 2}, p)
}

func TestInverseRoundTrip(t *testing.T) {
	m := matrix.New(2, 0.3, -0.1, 1.5, 4, -6)
	inv, err := m.Inverse()
	require.NoError(t, err)

	inv2, err := inv.Inverse()
	require.NoError(t, err)

	assert.InDelta(t, m.A, inv2.A, 1e-9)
	assert.InDelta(t, m.B, inv2.B, 1e-9)
	assert.InDelta(t, m.C, inv2.C, 1e-9)
	assert.InDelta(t, m.D, inv2.D, 1e-9)
	assert.InDelta(t, m.E, inv2.E, 1e-9)
	assert.InDelta(t, m.F, inv2.F, 1e-9)
}

func TestInverseSingular(t *testing.T) {
	m := matrix.New(1, 2, 2, 4, 0, 0)
	_, err := m.Inverse()
	assert.Error(t, err)
	var singular matrix.SingularError
	assert.ErrorAs(t, err, &singular)
}

func TestTransformPointsMatchesScalar(t *testing.T) {
	m := matrix.New(1.1, 0.2, -0.3, 0.9, 3, -2)
	pts := make([]matrix.Point, 150)
	for i := range pts {
		pts[i] = matrix.Point{X: float64(i), Y: float64(i) * 2}
	}

	batch := m.TransformPoints(pts)
	for i, p := range pts {
		assert.Equal(t, m.TransformPoint(p), batch[i])
	}
}

func TestDecomposeRecoversScaleAndRotation(t *testing.T) {
	angle := math.Pi / 6
	m := matrix.Rotation(angle).Compose(matrix.Scaling(2, 3))
	d := m.Decompose()
	assert.InDelta(t, angle, d.Rotation, 1e-9)
	assert.InDelta(t, 2.0, d.ScaleX, 1e-9)
	assert.InDelta(t, 3.0, d.ScaleY, 1e-9)
}

func TestIsAxisAligned(t *testing.T) {
	assert.True(t, matrix.Scaling(2, 3).IsAxisAligned(1e-9))
	assert.False(t, matrix.Rotation(0.1).IsAxisAligned(1e-9))
}
