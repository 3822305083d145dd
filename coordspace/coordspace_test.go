package coordspace_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svg2pptx/svg2pptx/coordspace"
	"github.com/svg2pptx/svg2pptx/matrix"
)

func TestPushComposesWithCurrent(t *testing.T) {
	s := coordspace.New(matrix.Translation(100, 0))
	s.Push(matrix.Scaling(2, 2))

	x, y := s.Apply(5, 5)
	assert.Equal(t, 110.0, x)
	assert.Equal(t, 10.0, y)
}

func TestPopRestoresPrevious(t *testing.T) {
	s := coordspace.New(matrix.Identity)
	s.Push(matrix.Translation(10, 0))
	require.NoError(t, s.Pop())

	x, _ := s.Apply(1, 1)
	assert.Equal(t, 1.0, x)
}

func TestPopUnderflow(t *testing.T) {
	s := coordspace.New(matrix.Identity)
	assert.ErrorIs(t, s.Pop(), coordspace.ErrUnderflow)
}

func TestApplyVectorIgnoresTranslation(t *testing.T) {
	s := coordspace.New(matrix.Translation(50, 50))
	x, y := s.ApplyVector(1, 2)
	assert.Equal(t, 1.0, x)
	assert.Equal(t, 2.0, y)
}
