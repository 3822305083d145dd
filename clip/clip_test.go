package clip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svg2pptx/svg2pptx/clip"
	"github.com/svg2pptx/svg2pptx/ir"
)

func TestAnalyzeAxisAlignedRectangle(t *testing.T) {
	cp := ir.ClipPath{Kind: ir.ClipShapes, Shapes: []ir.Node{
		&ir.Rectangle{Bounds: ir.Rect{X: 1, Y: 2, Width: 10, Height: 20}},
	}}
	g, pg := clip.Analyze(cp)
	require.True(t, g.AxisAlignedRect)
	assert.True(t, pg.AxisAlignedRect)
	assert.Equal(t, ir.Rect{X: 1, Y: 2, Width: 10, Height: 20}, g.Rect)
}

func TestAnalyzeRoundedRectangleIsNotAxisAligned(t *testing.T) {
	cp := ir.ClipPath{Kind: ir.ClipShapes, Shapes: []ir.Node{
		&ir.Rectangle{Bounds: ir.Rect{Width: 10, Height: 10}, CornerRadius: 3},
	}}
	g, _ := clip.Analyze(cp)
	assert.False(t, g.AxisAlignedRect)
}

func TestAnalyzePathShapeReportsSegmentCount(t *testing.T) {
	cp := ir.ClipPath{Kind: ir.ClipShapes, Shapes: []ir.Node{
		&ir.PathShape{Segments: []ir.Segment{
			{Kind: ir.SegMoveTo, To: ir.Point{X: 0, Y: 0}},
			{Kind: ir.SegLineTo, To: ir.Point{X: 1, Y: 1}},
			{Kind: ir.SegClose},
		}},
	}}
	g, pg := clip.Analyze(cp)
	require.Len(t, g.Paths, 1)
	assert.Equal(t, 3, pg.SegmentCount)
}

func TestNativeRectReturnsBoundsForAxisAligned(t *testing.T) {
	g, _ := clip.Analyze(ir.ClipPath{Shapes: []ir.Node{
		&ir.Rectangle{Bounds: ir.Rect{Width: 5, Height: 5}},
	}})
	r, ok := clip.NativeRect(g)
	require.True(t, ok)
	assert.Equal(t, ir.Rect{Width: 5, Height: 5}, r)
}

func TestCustGeomNormalizesTo21600(t *testing.T) {
	g := clip.Geometry{Paths: []*ir.PathShape{{
		Segments: []ir.Segment{
			{Kind: ir.SegMoveTo, To: ir.Point{X: 0, Y: 0}},
			{Kind: ir.SegLineTo, To: ir.Point{X: 100, Y: 100}},
			{Kind: ir.SegClose},
		},
	}}}
	xml := clip.CustGeom(g, ir.NonZero)
	assert.Contains(t, xml, `<a:custGeom>`)
	assert.Contains(t, xml, `x="21600" y="21600"`)
	assert.Contains(t, xml, `fill="nonZero"`)
}

func TestCustGeomEvenOddFillAttribute(t *testing.T) {
	g := clip.Geometry{Paths: []*ir.PathShape{{
		Segments: []ir.Segment{
			{Kind: ir.SegMoveTo, To: ir.Point{X: 0, Y: 0}},
			{Kind: ir.SegLineTo, To: ir.Point{X: 10, Y: 10}},
		},
	}}}
	xml := clip.CustGeom(g, ir.EvenOdd)
	assert.Contains(t, xml, `fill="evenOdd"`)
}

func TestRasterMaskProducesBoundsSizedImage(t *testing.T) {
	g := clip.Geometry{AxisAlignedRect: true, Rect: ir.Rect{X: 0, Y: 0, Width: 10, Height: 10}}
	img := clip.RasterMask(g, ir.Rect{X: 0, Y: 0, Width: 20, Height: 15}, ir.NonZero)
	b := img.Bounds()
	assert.Equal(t, 20, b.Dx())
	assert.Equal(t, 15, b.Dy())
}
