package transform_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svg2pptx/svg2pptx/matrix"
	"github.com/svg2pptx/svg2pptx/transform"
)

func TestTranslate(t *testing.T) {
	m, err := transform.Parse("translate(5,10)")
	require.NoError(t, err)
	assert.Equal(t, matrix.Point{X: 15, Y: 30}, m.TransformPoint(matrix.Point{X: 10, Y: 20}))
}

func TestScaleSingleArg(t *testing.T) {
	m, err := transform.Parse("scale(2)")
	require.NoError(t, err)
	assert.Equal(t, matrix.Point{X: 20, Y: 40}, m.TransformPoint(matrix.Point{X: 10, Y: 20}))
}

func TestNestedTranslateScale(t *testing.T) {
	// translate(10,20) scale(2) applied to (5,10) == (5*2+10, 10*2+20)
	m, err := transform.Parse("translate(10,20) scale(2)")
	require.NoError(t, err)
	p := m.TransformPoint(matrix.Point{X: 5, Y: 10})
	assert.Equal(t, matrix.Point{X: 20, Y: 40}, p)
}

func TestMatrixFunction(t *testing.T) {
	m, err := transform.Parse("matrix(1,0,0,1,5,6)")
	require.NoError(t, err)
	assert.Equal(t, matrix.Point{X: 6, Y: 8}, m.TransformPoint(matrix.Point{X: 1, Y: 2}))
}

func TestRotateAboutCenter(t *testing.T) {
	m, err := transform.Parse("rotate(90,10,10)")
	require.NoError(t, err)
	p := m.TransformPoint(matrix.Point{X: 10, Y: 0})
	assert.InDelta(t, 20, p.X, 1e-9)
	assert.InDelta(t, 10, p.Y, 1e-9)
}

func TestEmptyIsIdentity(t *testing.T) {
	m, err := transform.Parse("")
	require.NoError(t, err)
	assert.True(t, m.IsIdentity(1e-12))
}

func TestUnknownFunction(t *testing.T) {
	_, err := transform.Parse("frobnicate(1)")
	assert.Error(t, err)
}
