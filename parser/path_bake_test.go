package parser

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svg2pptx/svg2pptx/coordspace"
	"github.com/svg2pptx/svg2pptx/ir"
	"github.com/svg2pptx/svg2pptx/matrix"
)

func TestBakePathMoveLineClose(t *testing.T) {
	space := coordspace.New(matrix.Identity)
	segs, err := bakePath("M0,0 L10,0 L10,10 Z", space)
	require.NoError(t, err)
	require.Len(t, segs, 4)
	assert.Equal(t, ir.SegMoveTo, segs[0].Kind)
	assert.Equal(t, ir.Point{X: 10, Y: 0}, segs[1].To)
	assert.Equal(t, ir.SegClose, segs[3].Kind)
}

func TestBakePathBakesCTM(t *testing.T) {
	space := coordspace.New(matrix.Translation(100, 0))
	segs, err := bakePath("M0,0 L10,10", space)
	require.NoError(t, err)
	assert.Equal(t, ir.Point{X: 100, Y: 0}, segs[0].To)
	assert.Equal(t, ir.Point{X: 110, Y: 10}, segs[1].To)
}

func TestBakePathQuadraticPromotedToCubic(t *testing.T) {
	space := coordspace.New(matrix.Identity)
	segs, err := bakePath("M0,0 Q5,5 10,0", space)
	require.NoError(t, err)
	require.Len(t, segs, 2)
	assert.Equal(t, ir.SegCubicBezier, segs[1].Kind)
	assert.Equal(t, ir.Point{X: 10, Y: 0}, segs[1].To)
	// control points are the 2/3 degree-elevation of the single quad control point
	assert.InDelta(t, 10.0/3.0, segs[1].CP1.X, 1e-9)
	assert.InDelta(t, 10.0/3.0, segs[1].CP1.Y, 1e-9)
}

func TestBakePathSmoothCubicReflectsPreviousControl(t *testing.T) {
	space := coordspace.New(matrix.Identity)
	segs, err := bakePath("M0,0 C0,10 10,10 10,0 S20,-10 20,0", space)
	require.NoError(t, err)
	require.Len(t, segs, 3)
	// reflection of (10,10) about current point (10,0) is (10,-10)
	assert.InDelta(t, 10.0, segs[2].CP1.X, 1e-9)
	assert.InDelta(t, -10.0, segs[2].CP1.Y, 1e-9)
}

func TestBakePathHorizontalVerticalLineTo(t *testing.T) {
	space := coordspace.New(matrix.Identity)
	segs, err := bakePath("M5,5 H15 V25", space)
	require.NoError(t, err)
	require.Len(t, segs, 3)
	assert.Equal(t, ir.Point{X: 15, Y: 5}, segs[1].To)
	assert.Equal(t, ir.Point{X: 15, Y: 25}, segs[2].To)
}

func TestArcToCubicsSemicircle(t *testing.T) {
	segs := arcToCubics(pathPoint{X: -10, Y: 0}, pathPoint{X: 10, Y: 0}, 10, 10, 0, false, true)
	require.NotEmpty(t, segs)
	last := segs[len(segs)-1]
	assert.InDelta(t, 10.0, last.to.X, 1e-6)
	assert.InDelta(t, 0.0, last.to.Y, 1e-6)
}

func TestArcToCubicsDegenerateRadiusIsStraightLine(t *testing.T) {
	segs := arcToCubics(pathPoint{X: 0, Y: 0}, pathPoint{X: 10, Y: 10}, 0, 5, 0, false, true)
	require.Len(t, segs, 1)
	assert.Equal(t, pathPoint{X: 10, Y: 10}, segs[0].to)
}

func TestArcToCubicsSamePointIsEmpty(t *testing.T) {
	segs := arcToCubics(pathPoint{X: 5, Y: 5}, pathPoint{X: 5, Y: 5}, 10, 10, 0, false, true)
	assert.Empty(t, segs)
}

func TestQuadToCubicControlsMidpoint(t *testing.T) {
	c1, c2 := quadToCubicControls(pathPoint{X: 0, Y: 0}, pathPoint{X: 5, Y: 10}, pathPoint{X: 10, Y: 0})
	assert.InDelta(t, 10.0/3.0, c1.X, 1e-9)
	assert.InDelta(t, 20.0/3.0, c1.Y, 1e-9)
	assert.InDelta(t, 20.0/3.0, c2.X, 1e-9)
	assert.InDelta(t, 20.0/3.0, c2.Y, 1e-9)
}

func TestResolveAxisPointHorizontalRelative(t *testing.T) {
	p := resolveAxisPoint(pathPoint{X: 5, Y: math.NaN()}, pathPoint{X: 10, Y: 10}, false)
	assert.Equal(t, pathPoint{X: 15, Y: 10}, p)
}
